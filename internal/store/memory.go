// Package store provides the in-memory implementation of the game
// engine's persistence port.
package store

import (
	"context"
	"sync"

	"github.com/lox/cardczar/internal/game"
)

// entry pairs a game's state with the mutex that serializes its
// transactions. One mutex per game: a stalled update on one game never
// delays another.
type entry struct {
	mu    sync.Mutex
	state *game.State
}

// Memory is an in-memory game.Store. Updates run on a deep copy that
// is swapped in only when the transaction closure succeeds, so a
// failed precondition check rolls back by doing nothing. Views clone
// under the game lock and run the reader on the clone, so readers
// never hold up writers.
type Memory struct {
	mu    sync.RWMutex
	games map[string]*entry
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		games: make(map[string]*entry),
	}
}

// CreateGame persists a new game aggregate
func (m *Memory) CreateGame(ctx context.Context, state *game.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[state.Game.ID]; ok {
		return game.ErrGameExists
	}
	m.games[state.Game.ID] = &entry{state: state.Clone()}
	return nil
}

// View calls fn with a snapshot of the game's state
func (m *Memory) View(ctx context.Context, gameID string, fn func(*game.State) error) error {
	ent, err := m.entry(gameID)
	if err != nil {
		return err
	}
	ent.mu.Lock()
	snapshot := ent.state.Clone()
	ent.mu.Unlock()
	return fn(snapshot)
}

// Update runs fn inside the game's transaction lock and commits its
// mutations iff it returns nil
func (m *Memory) Update(ctx context.Context, gameID string, fn func(*game.State) error) error {
	ent, err := m.entry(gameID)
	if err != nil {
		return err
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	next := ent.state.Clone()
	if err := fn(next); err != nil {
		return err
	}
	ent.state = next
	return nil
}

// GameIDs returns the IDs of all stored games
func (m *Memory) GameIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.games))
	for id := range m.games {
		ids = append(ids, id)
	}
	return ids
}

func (m *Memory) entry(gameID string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ent, ok := m.games[gameID]
	if !ok {
		return nil, game.ErrGameNotFound
	}
	return ent, nil
}
