package store

import (
	"context"
	"sync"

	"github.com/promptparty/backend/internal/game"
)

// MemStore is an in-memory Store: rooms last for the process lifetime only.
// Selected in production with ROOMS_FILE=:memory:; also the store most tests
// run against.
type MemStore struct {
	mu    sync.Mutex
	rooms map[string]game.State
}

func NewMemStore() *MemStore {
	return &MemStore{rooms: map[string]game.State{}}
}

func (m *MemStore) Load(ctx context.Context) (map[string]game.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneRooms(m.rooms), nil
}

func (m *MemStore) Save(ctx context.Context, rooms map[string]game.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms = cloneRooms(rooms)
	return nil
}

// Snapshot exposes the last saved mapping. Test hook.
func (m *MemStore) Snapshot() map[string]game.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneRooms(m.rooms)
}

func cloneRooms(rooms map[string]game.State) map[string]game.State {
	out := make(map[string]game.State, len(rooms))
	for id, state := range rooms {
		out[id] = state.Clone()
	}
	return out
}
