package hub

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/promptparty/backend/internal/game"
	"github.com/promptparty/backend/internal/room"
	"github.com/promptparty/backend/internal/store"
)

var ErrRoomExists = errors.New("room already exists")
var ErrRoomNotFound = errors.New("room does not exist")

type HubMsg interface{ isHubMsg() }

// Result answers CreateRoom and AttachRoom requests.
type Result struct {
	Room *room.Room
	Err  error
}

// CreateRoom makes a brand-new room. Fails with ErrRoomExists when the id is
// already known, live or persisted.
type CreateRoom struct {
	ID    string
	Reply chan Result
}

// AttachRoom resolves the live actor for an existing room, respawning it from
// the persisted snapshot if its membership was evicted earlier.
type AttachRoom struct {
	ID    string
	Reply chan Result
}

// RemoveRoom drops live-membership tracking for a room. Sent by the room
// actor itself when its last member leaves; the persisted state survives.
type RemoveRoom struct {
	ID string
}

type ShutdownHub struct{}

func (CreateRoom) isHubMsg()  {}
func (AttachRoom) isHubMsg()  {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

// Hub is the process-wide room registry. Like the rooms themselves it is a
// serialized actor, so two racing create intents for one id resolve to
// exactly one winner.
type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	keeper *store.Keeper
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, keeper *store.Keeper, logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		keeper: keeper,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				if h.keeper.Has(msg.ID) {
					msg.Reply <- Result{Err: ErrRoomExists}
					break
				}
				state := game.NewState()
				h.keeper.Put(h.ctx, msg.ID, state)
				rm := h.spawn(msg.ID, state)
				h.logger.Info("room created", zap.String("room", msg.ID))
				msg.Reply <- Result{Room: rm}

			case AttachRoom:
				if rm := h.liveRoom(msg.ID); rm != nil {
					msg.Reply <- Result{Room: rm}
					break
				}
				state, ok := h.keeper.Get(msg.ID)
				if !ok {
					msg.Reply <- Result{Err: ErrRoomNotFound}
					break
				}
				rm := h.spawn(msg.ID, state)
				h.logger.Info("room reattached", zap.String("room", msg.ID))
				msg.Reply <- Result{Room: rm}

			case RemoveRoom:
				if rm := h.rooms[msg.ID]; rm != nil && stopped(rm) {
					delete(h.rooms, msg.ID)
				}

			case ShutdownHub:
				for _, rm := range h.rooms {
					rm.Inbox() <- room.Shutdown{}
				}
				clear(h.rooms)
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) spawn(id string, state game.State) *room.Room {
	rm := room.New(h.ctx, id, state, h.keeper, h.notifyEmpty, h.logger)
	h.rooms[id] = rm
	return rm
}

// liveRoom filters out an actor that already stopped but whose RemoveRoom is
// still queued behind this message.
func (h *Hub) liveRoom(id string) *room.Room {
	rm := h.rooms[id]
	if rm == nil || stopped(rm) {
		return nil
	}
	return rm
}

func (h *Hub) notifyEmpty(id string) {
	h.inbox <- RemoveRoom{ID: id}
}

func stopped(rm *room.Room) bool {
	select {
	case <-rm.Done():
		return true
	default:
		return false
	}
}
