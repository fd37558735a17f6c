// Package store persists what outlives a process: spin history, finished
// game scores and point balances. Open picks an implementation from a DSN.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xtding233/arcade-backend/internal/wallet"
)

// ErrNotFound is returned for players the store has never seen.
var ErrNotFound = errors.New("not found")

// ErrInsufficientPoints is the wallet's error, re-exported for callers that
// only import store.
var ErrInsufficientPoints = wallet.ErrInsufficientPoints

// SpinRecord is one completed wheel spin.
type SpinRecord struct {
	ID     string    `json:"id"`
	Player string    `json:"player"`
	Prize  string    `json:"prize"`
	Index  int       `json:"index"`
	At     time.Time `json:"at"`
}

// ScoreRecord is the final tally of one minigame session.
type ScoreRecord struct {
	ID       string        `json:"id"`
	Player   string        `json:"player"`
	Game     string        `json:"game"`
	Score    int           `json:"score"`
	Failures int           `json:"failures"`
	Elapsed  time.Duration `json:"elapsed"`
	At       time.Time     `json:"at"`
}

// Store is the persistence surface the server depends on.
type Store interface {
	SaveSpin(ctx context.Context, rec SpinRecord) error
	// RecentSpins returns up to limit spins for player, newest first.
	RecentSpins(ctx context.Context, player string, limit int) ([]SpinRecord, error)

	RecordScore(ctx context.Context, rec ScoreRecord) error
	// TopScores returns the best limit scores for game; ties go to the earlier run.
	TopScores(ctx context.Context, game string, limit int) ([]ScoreRecord, error)

	// Balance returns ErrNotFound for a player with no balance row.
	Balance(ctx context.Context, player string) (int, error)
	// AddPoints credits points, creating the player on first use.
	AddPoints(ctx context.Context, player string, points int) (int, error)
	// SpendPoints debits points atomically or fails with ErrInsufficientPoints
	// without touching the balance.
	SpendPoints(ctx context.Context, player string, points int) (int, error)

	Close() error
}

// Open returns the store for dsn:
//   - ""                       in-memory
//   - postgres:// postgresql:// PostgreSQL via lib/pq
//   - anything else            a SQLite file path
func Open(dsn string) (Store, error) {
	switch {
	case dsn == "":
		return NewMemory(), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return OpenPostgres(dsn)
	default:
		return OpenSQLite(dsn)
	}
}
