package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/promptparty/backend/internal/game"
	"github.com/promptparty/backend/internal/hub"
	"github.com/promptparty/backend/internal/room"
	"github.com/promptparty/backend/internal/types"
)

const writeTimeout = 3 * time.Second

// Handler drives one client session: join handshake against the hub, then a
// read loop dispatching protocol messages to the room actor. The handshake
// read is the only bounded wait; afterwards the session blocks until the
// client sends something or disconnects.
func Handler(h *hub.Hub, handshakeTimeout time.Duration, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomID")
		if roomID == "" {
			http.Error(w, "missing room id", http.StatusBadRequest)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		rm, username, ok := handshake(r, conn, h, roomID, handshakeTimeout)
		if !ok {
			return
		}

		out := make(chan types.ServerMessage, 32)
		clientID := uuid.NewString()

		rm, ok = joinRoom(h, rm, roomID, clientID, username, out)
		if !ok {
			sendError(r.Context(), conn, "Could not join room.")
			return
		}
		defer func() {
			select {
			case rm.Inbox() <- room.Leave{ClientID: clientID}:
			case <-rm.Done():
			}
		}()

		// Writer goroutine: sole sender on this connection, so outbound
		// messages keep the order the room emitted them in.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			// Channel closed by the room means we were dropped or the room
			// shut down; closing the conn unblocks the read loop below.
			defer conn.Close(websocket.StatusGoingAway, "room closed")
			for msg := range out {
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				// Disconnect, clean or otherwise. Leave happens in the defer.
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				logger.Debug("dropping unparseable frame", zap.String("room", roomID))
				continue
			}

			cmd, ok := toCommand(cm, username)
			if !ok {
				// Unknown types are ignored on purpose.
				continue
			}
			select {
			case rm.Inbox() <- room.FromClient{ClientID: clientID, Cmd: cmd}:
			case <-rm.Done():
				return
			}
		}
	}
}

// joinRoom registers the session with the room actor and waits for the
// acknowledgement. The actor can stop (last member gone) between the hub
// resolving it and the Join being processed; the inbox is buffered, so the
// send alone proves nothing. An unacknowledged Join is retried against a
// freshly resolved actor, which the hub respawns from the persisted snapshot.
func joinRoom(h *hub.Hub, rm *room.Room, roomID, clientID, username string, out chan types.ServerMessage) (*room.Room, bool) {
	for attempt := 0; attempt < 5; attempt++ {
		joined := make(chan struct{})
		select {
		case rm.Inbox() <- room.Join{ClientID: clientID, Username: username, Outbox: out, Joined: joined}:
		case <-rm.Done():
			next, ok := reattach(h, roomID)
			if !ok {
				return nil, false
			}
			rm = next
			continue
		}

		select {
		case <-joined:
			return rm, true
		case <-rm.Done():
			next, ok := reattach(h, roomID)
			if !ok {
				return nil, false
			}
			rm = next
		}
	}
	return nil, false
}

func reattach(h *hub.Hub, roomID string) (*room.Room, bool) {
	reply := make(chan hub.Result, 1)
	h.Inbox() <- hub.AttachRoom{ID: roomID, Reply: reply}
	res := <-reply
	if res.Err != nil || res.Room == nil {
		return nil, false
	}
	return res.Room, true
}

// handshake waits for the single USER_JOINED message and resolves it against
// the hub. Every failure path sends one ERROR frame and reports !ok, after
// which the caller closes the connection.
func handshake(r *http.Request, conn *websocket.Conn, h *hub.Hub, roomID string, timeout time.Duration) (*room.Room, string, bool) {
	// The read runs in its own goroutine: cancelling a websocket read
	// context tears the whole connection down, which would make the timeout
	// ERROR frame undeliverable.
	type readResult struct {
		data []byte
		err  error
	}
	first := make(chan readResult, 1)
	go func() {
		_, data, err := conn.Read(r.Context())
		first <- readResult{data: data, err: err}
	}()

	var data []byte
	select {
	case res := <-first:
		if res.err != nil {
			return nil, "", false
		}
		data = res.data
	case <-time.After(timeout):
		sendError(r.Context(), conn, "No message received after connection.")
		return nil, "", false
	}

	var cm types.ClientMessage
	if err := json.Unmarshal(data, &cm); err != nil || cm.Type != types.TypeUserJoined {
		sendError(r.Context(), conn, "First message must be USER_JOINED.")
		return nil, "", false
	}

	username := cm.Username
	if username == "" {
		username = "Anonymous"
	}

	reply := make(chan hub.Result, 1)
	switch cm.Intent {
	case types.IntentCreate:
		h.Inbox() <- hub.CreateRoom{ID: roomID, Reply: reply}
	case types.IntentJoin:
		h.Inbox() <- hub.AttachRoom{ID: roomID, Reply: reply}
	default:
		sendError(r.Context(), conn, fmt.Sprintf("Invalid intent: '%s'", cm.Intent))
		return nil, "", false
	}

	res := <-reply
	switch {
	case errors.Is(res.Err, hub.ErrRoomExists):
		sendError(r.Context(), conn, fmt.Sprintf("Room '%s' already exists.", roomID))
		return nil, "", false
	case errors.Is(res.Err, hub.ErrRoomNotFound):
		sendError(r.Context(), conn, fmt.Sprintf("Room '%s' does not exist.", roomID))
		return nil, "", false
	case res.Err != nil:
		sendError(r.Context(), conn, "Could not join room.")
		return nil, "", false
	}
	return res.Room, username, true
}

func toCommand(cm types.ClientMessage, username string) (game.Command, bool) {
	switch cm.Type {
	case types.TypeNewPrompts:
		return game.Command{Type: game.CmdSubmitPrompts, Username: username, Prompts: cm.Prompts}, true
	case types.TypePlayerReady:
		return game.Command{Type: game.CmdMarkReady, Username: username}, true
	case types.TypeDrawPrompt:
		return game.Command{Type: game.CmdDrawPrompt, Username: username}, true
	case types.TypeNextTurn:
		return game.Command{Type: game.CmdNextTurn, Username: username}, true
	default:
		return game.Command{}, false
	}
}

func sendError(ctx context.Context, conn *websocket.Conn, message string) {
	payload, _ := json.Marshal(types.NewError(message))
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(writeCtx, websocket.MessageText, payload)
}
