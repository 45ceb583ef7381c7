package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/promptparty/backend/internal/game"
)

// Store persists the full room mapping wholesale. Save replaces the durable
// copy entirely; Load of a store that was never written returns an empty map.
type Store interface {
	Load(ctx context.Context) (map[string]game.State, error)
	Save(ctx context.Context, rooms map[string]game.State) error
}

// Keeper owns the authoritative in-memory mapping of room id to state and
// writes the whole mapping through to the Store on every Put. A failed write
// is logged and otherwise ignored: memory stays the source of truth and the
// next Put rewrites the full snapshot anyway.
type Keeper struct {
	mu     sync.Mutex
	store  Store
	rooms  map[string]game.State
	logger *zap.Logger
}

func NewKeeper(ctx context.Context, s Store, logger *zap.Logger) (*Keeper, error) {
	rooms, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = map[string]game.State{}
	}
	return &Keeper{store: s, rooms: rooms, logger: logger}, nil
}

// Put records the state for a room and synchronously attempts a full save.
// Callers broadcast only after Put returns, so observers never see a change
// whose persistence was not at least attempted.
func (k *Keeper) Put(ctx context.Context, id string, state game.State) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.rooms[id] = state.Clone()
	if err := k.store.Save(ctx, k.rooms); err != nil {
		k.logger.Warn("room snapshot save failed", zap.String("room", id), zap.Error(err))
	}
}

func (k *Keeper) Get(id string) (game.State, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	state, ok := k.rooms[id]
	if !ok {
		return game.State{}, false
	}
	return state.Clone(), true
}

func (k *Keeper) Has(id string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	_, ok := k.rooms[id]
	return ok
}

// RosterSizes lists every known room with its player count.
func (k *Keeper) RosterSizes() map[string]int {
	k.mu.Lock()
	defer k.mu.Unlock()

	out := make(map[string]int, len(k.rooms))
	for id, state := range k.rooms {
		out[id] = len(state.Players)
	}
	return out
}
