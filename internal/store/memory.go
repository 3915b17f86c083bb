package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/akinori114514/game/internal/game"
)

type memoryEntry struct {
	state     game.GameState
	updatedAt time.Time
}

// Memory keeps snapshots in process. It is the default when no database is configured.
type Memory struct {
	mu    sync.RWMutex
	games map[string]memoryEntry
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{games: make(map[string]memoryEntry), now: time.Now}
}

func (m *Memory) SaveGame(_ context.Context, id string, s game.GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[id] = memoryEntry{state: s.Clone(), updatedAt: m.now().UTC()}
	return nil
}

func (m *Memory) LoadGame(_ context.Context, id string) (game.GameState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.games[id]
	if !ok {
		return game.GameState{}, game.ErrGameNotFound
	}
	return e.state.Clone(), nil
}

func (m *Memory) DeleteGame(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return game.ErrGameNotFound
	}
	delete(m.games, id)
	return nil
}

// ListGames returns the most recently saved games first.
func (m *Memory) ListGames(_ context.Context, limit int) ([]Summary, error) {
	m.mu.RLock()
	out := make([]Summary, 0, len(m.games))
	for id, e := range m.games {
		out = append(out, Summary{ID: id, Week: e.state.Week, Phase: e.state.Phase, UpdatedAt: e.updatedAt})
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit = clampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
