package room

import (
	"context"

	"go.uber.org/zap"

	"github.com/promptparty/backend/internal/game"
	"github.com/promptparty/backend/internal/store"
	"github.com/promptparty/backend/internal/types"
)

type Msg interface{ isRoomMsg() }

// Join registers a connection as a live member, applies the roster join,
// replays previously submitted prompts to the joiner alone, then broadcasts
// the room state. Joined, when non-nil, is closed once the actor has taken
// ownership of the member; a Join queued into an actor that stops first is
// never acknowledged, and the sender must re-resolve the room.
type Join struct {
	ClientID string
	Username string
	Outbox   chan types.ServerMessage
	Joined   chan struct{}
}

type Leave struct{ ClientID string }

// FromClient carries one protocol command from a joined connection.
type FromClient struct {
	ClientID string
	Cmd      game.Command
}

type Shutdown struct{}

// GetState reflects internal state without data races. Test hook.
type GetState struct {
	Reply chan View
}

type View struct {
	NumMembers int
	State      game.State
}

func (Join) isRoomMsg()       {}
func (Leave) isRoomMsg()      {}
func (FromClient) isRoomMsg() {}
func (Shutdown) isRoomMsg()   {}
func (GetState) isRoomMsg()   {}

// Room serializes all access to one room's state: every mutation, its
// persistence, and the fan-out it triggers happen inside the actor loop, so
// two members' commands can never interleave mid-operation. Rooms run
// independently of each other.
type Room struct {
	id      string
	inbox   chan Msg
	state   game.State
	members map[string]chan types.ServerMessage
	keeper  *store.Keeper
	onEmpty func(id string)
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

// New starts the actor goroutine. onEmpty is invoked (once) from the actor
// when the last live member leaves; the persisted state is untouched by it.
func New(parent context.Context, id string, initial game.State, keeper *store.Keeper, onEmpty func(string), logger *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		id:      id,
		inbox:   make(chan Msg, 64),
		state:   initial,
		members: make(map[string]chan types.ServerMessage),
		keeper:  keeper,
		onEmpty: onEmpty,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	go r.loop()
	return r
}

func (r *Room) ID() string { return r.id }

func (r *Room) Inbox() chan<- Msg { return r.inbox }

// Done is closed once the actor has stopped, either by eviction or shutdown.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.members[msg.ClientID] = msg.Outbox
				if msg.Joined != nil {
					close(msg.Joined)
				}

				effects, newState, err := game.Apply(r.state, game.Command{Type: game.CmdJoin, Username: msg.Username})
				if err != nil {
					break
				}
				r.state = newState
				r.keeper.Put(r.ctx, r.id, r.state)

				// Late joiners catch up on every prompt submitted so far
				// before anyone sees the refreshed roster.
				for _, replayed := range r.state.PromptReplay() {
					r.send(msg.ClientID, replayed)
				}
				r.deliver(msg.ClientID, effects)

			case Leave:
				ch, ok := r.members[msg.ClientID]
				if !ok {
					break
				}
				close(ch)
				delete(r.members, msg.ClientID)
				if r.maybeEvict() {
					return
				}

			case FromClient:
				effects, newState, err := game.Apply(r.state, msg.Cmd)
				if err != nil {
					break
				}
				r.state = newState
				r.keeper.Put(r.ctx, r.id, r.state)
				r.deliver(msg.ClientID, effects)
				if r.maybeEvict() {
					return
				}

			case GetState:
				msg.Reply <- View{NumMembers: len(r.members), State: r.state.Clone()}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) deliver(senderID string, effects []game.Effect) {
	for _, effect := range effects {
		switch effect.Scope {
		case game.ScopeBroadcast:
			r.broadcast(effect.Msg)
		case game.ScopeSender:
			r.send(senderID, effect.Msg)
		}
	}
}

func (r *Room) broadcast(msg types.ServerMessage) {
	for id, ch := range r.members {
		select {
		case ch <- msg:
			// ok
		default:
			// Member is slow/full - drop them.
			close(ch)
			delete(r.members, id)
		}
	}
}

func (r *Room) send(clientID string, msg types.ServerMessage) {
	ch, ok := r.members[clientID]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		close(ch)
		delete(r.members, clientID)
	}
}

// maybeEvict stops the actor once no live members remain. The keeper still
// holds the room's snapshot, so a later join respawns the actor from it.
func (r *Room) maybeEvict() bool {
	if len(r.members) > 0 {
		return false
	}
	r.logger.Info("room closed due to no active connections", zap.String("room", r.id))
	r.onEmpty(r.id)
	r.cancel()
	return true
}

func (r *Room) shutdown() {
	for id, ch := range r.members {
		close(ch)
		delete(r.members, id)
	}
	r.cancel()
}
