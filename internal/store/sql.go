package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// sqlStore serves both SQLite and PostgreSQL. Queries are written with ?
// placeholders and rebound for drivers that want $n.
type sqlStore struct {
	db     *sql.DB
	dollar bool
}

// OpenSQLite opens/creates a SQLite database at path and runs migrations.
func OpenSQLite(path string) (Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // SQLite is not concurrent for writes
	return newSQL(db, false)
}

// OpenPostgres connects to dsn and runs migrations.
func OpenPostgres(dsn string) (Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return newSQL(db, true)
}

func newSQL(db *sql.DB, dollar bool) (Store, error) {
	s := &sqlStore{db: db, dollar: dollar}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *sqlStore) Close() error { return s.db.Close() }

// rebind turns ? placeholders into $1, $2, ... for PostgreSQL.
func rebind(q string, dollar bool) string {
	if !dollar {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) q(query string) string { return rebind(query, s.dollar) }

func (s *sqlStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS spins (
			id TEXT PRIMARY KEY,
			player TEXT NOT NULL,
			prize TEXT NOT NULL,
			prize_index INTEGER NOT NULL,
			spun_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_spins_player_time ON spins(player, spun_at DESC)`,

		`CREATE TABLE IF NOT EXISTS scores (
			id TEXT PRIMARY KEY,
			player TEXT NOT NULL,
			game TEXT NOT NULL,
			score INTEGER NOT NULL,
			failures INTEGER NOT NULL,
			elapsed_ms BIGINT NOT NULL,
			recorded_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_game_score ON scores(game, score DESC)`,

		`CREATE TABLE IF NOT EXISTS balances (
			player TEXT PRIMARY KEY,
			points BIGINT NOT NULL CHECK (points >= 0)
		)`,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return tx.Commit()
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func (s *sqlStore) SaveSpin(ctx context.Context, rec SpinRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO spins (id, player, prize, prize_index, spun_at) VALUES (?, ?, ?, ?, ?)`),
		rec.ID, rec.Player, rec.Prize, rec.Index, toMillis(rec.At))
	return err
}

func (s *sqlStore) RecentSpins(ctx context.Context, player string, limit int) ([]SpinRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT id, player, prize, prize_index, spun_at FROM spins
		 WHERE player = ? ORDER BY spun_at DESC LIMIT ?`), player, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SpinRecord
	for rows.Next() {
		var rec SpinRecord
		var at int64
		if err := rows.Scan(&rec.ID, &rec.Player, &rec.Prize, &rec.Index, &at); err != nil {
			return nil, err
		}
		rec.At = fromMillis(at)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *sqlStore) RecordScore(ctx context.Context, rec ScoreRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO scores (id, player, game, score, failures, elapsed_ms, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		rec.ID, rec.Player, rec.Game, rec.Score, rec.Failures, rec.Elapsed.Milliseconds(), toMillis(rec.At))
	return err
}

func (s *sqlStore) TopScores(ctx context.Context, game string, limit int) ([]ScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT id, player, game, score, failures, elapsed_ms, recorded_at FROM scores
		 WHERE game = ? ORDER BY score DESC, recorded_at ASC LIMIT ?`), game, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScoreRecord
	for rows.Next() {
		var rec ScoreRecord
		var elapsed, at int64
		if err := rows.Scan(&rec.ID, &rec.Player, &rec.Game, &rec.Score, &rec.Failures, &elapsed, &at); err != nil {
			return nil, err
		}
		rec.Elapsed = time.Duration(elapsed) * time.Millisecond
		rec.At = fromMillis(at)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *sqlStore) Balance(ctx context.Context, player string) (int, error) {
	var points int
	err := s.db.QueryRowContext(ctx, s.q(`SELECT points FROM balances WHERE player = ?`), player).Scan(&points)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return points, err
}

func (s *sqlStore) AddPoints(ctx context.Context, player string, points int) (int, error) {
	if points < 0 {
		points = 0
	}
	var balance int
	err := s.db.QueryRowContext(ctx, s.q(
		`INSERT INTO balances (player, points) VALUES (?, ?)
		 ON CONFLICT (player) DO UPDATE SET points = balances.points + excluded.points
		 RETURNING points`), player, points).Scan(&balance)
	return balance, err
}

func (s *sqlStore) SpendPoints(ctx context.Context, player string, points int) (int, error) {
	if points < 0 {
		return 0, fmt.Errorf("cannot spend %d points", points)
	}
	var balance int
	err := s.db.QueryRowContext(ctx, s.q(
		`UPDATE balances SET points = points - ? WHERE player = ? AND points >= ?
		 RETURNING points`), points, player, points).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		if points == 0 {
			return 0, nil
		}
		return 0, ErrInsufficientPoints
	}
	return balance, err
}
