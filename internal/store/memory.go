package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/xtding233/arcade-backend/internal/wallet"
)

// memory keeps everything in maps. State is lost on restart.
type memory struct {
	mu      sync.RWMutex
	spins   map[string][]SpinRecord // per player, oldest first
	scores  map[string][]ScoreRecord
	wallets map[string]*wallet.Wallet
}

func NewMemory() Store {
	return &memory{
		spins:   make(map[string][]SpinRecord),
		scores:  make(map[string][]ScoreRecord),
		wallets: make(map[string]*wallet.Wallet),
	}
}

func (m *memory) SaveSpin(ctx context.Context, rec SpinRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spins[rec.Player] = append(m.spins[rec.Player], rec)
	return nil
}

func (m *memory) RecentSpins(ctx context.Context, player string, limit int) ([]SpinRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.spins[player]
	out := make([]SpinRecord, 0, min(limit, len(all)))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (m *memory) RecordScore(ctx context.Context, rec ScoreRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[rec.Game] = append(m.scores[rec.Game], rec)
	return nil
}

func (m *memory) TopScores(ctx context.Context, game string, limit int) ([]ScoreRecord, error) {
	m.mu.RLock()
	all := append([]ScoreRecord(nil), m.scores[game]...)
	m.mu.RUnlock()
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		return all[i].At.Before(all[j].At)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memory) Balance(ctx context.Context, player string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.wallets[player]
	if !ok {
		return 0, ErrNotFound
	}
	return w.Balance(), nil
}

func (m *memory) wallet(player string) *wallet.Wallet {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[player]
	if !ok {
		w = wallet.New(0)
		m.wallets[player] = w
	}
	return w
}

func (m *memory) AddPoints(ctx context.Context, player string, points int) (int, error) {
	return m.wallet(player).Earn(points), nil
}

func (m *memory) SpendPoints(ctx context.Context, player string, points int) (int, error) {
	m.mu.RLock()
	w, ok := m.wallets[player]
	m.mu.RUnlock()
	if !ok {
		if points > 0 {
			return 0, ErrInsufficientPoints
		}
		w = m.wallet(player)
	}
	return w.Spend(points)
}

func (m *memory) Close() error { return nil }
