package game

import (
	"errors"
	"math/rand"
	"slices"

	"github.com/promptparty/backend/internal/types"
)

var ErrUnsupportedCommand = errors.New("unsupported command")

type CommandType string

const (
	CmdJoin          CommandType = "Join"
	CmdSubmitPrompts CommandType = "SubmitPrompts"
	CmdMarkReady     CommandType = "MarkReady"
	CmdDrawPrompt    CommandType = "DrawPrompt"
	CmdNextTurn      CommandType = "NextTurn"
)

type Command struct {
	Type     CommandType
	Username string
	Prompts  []string
}

// Scope says who receives an effect's message.
type Scope string

const (
	ScopeBroadcast Scope = "broadcast"
	ScopeSender    Scope = "sender"
)

// Effect is an outbound message produced by applying a command, tagged with
// its audience. The room actor delivers effects after persisting the state.
type Effect struct {
	Scope Scope
	Msg   types.ServerMessage
}

func broadcast(msg types.ServerMessage) Effect { return Effect{Scope: ScopeBroadcast, Msg: msg} }
func reply(msg types.ServerMessage) Effect     { return Effect{Scope: ScopeSender, Msg: msg} }

// shufflePile permutes the freshly built draw pile. Package-level so tests
// can pin the permutation.
var shufflePile = func(pile []string) {
	rand.Shuffle(len(pile), func(i, j int) {
		pile[i], pile[j] = pile[j], pile[i]
	})
}

// Apply runs one command against a room state and returns the effects to
// deliver plus the successor state. The input state is never mutated.
func Apply(s State, cmd Command) ([]Effect, State, error) {
	newState := s.Clone()

	switch cmd.Type {
	case CmdJoin:
		if !slices.Contains(newState.Players, cmd.Username) {
			newState.Players = append(newState.Players, cmd.Username)
		}
		effects := []Effect{
			broadcast(types.NewRoomState(newState.Players, newState.CurrentTurn())),
		}
		return effects, newState, nil

	case CmdSubmitPrompts:
		newState.PlayerPrompts[cmd.Username] = append(newState.PlayerPrompts[cmd.Username], cmd.Prompts...)
		effects := make([]Effect, 0, len(cmd.Prompts))
		for _, prompt := range cmd.Prompts {
			effects = append(effects, broadcast(types.NewPromptReceived(cmd.Username, prompt)))
		}
		return effects, newState, nil

	case CmdMarkReady:
		if !slices.Contains(newState.ReadyPlayers, cmd.Username) {
			newState.ReadyPlayers = append(newState.ReadyPlayers, cmd.Username)
		}

		if !sameMembers(newState.Players, newState.ReadyPlayers) {
			effects := []Effect{
				broadcast(types.NewPlayerReady(cmd.Username, len(newState.ReadyPlayers), len(newState.Players))),
			}
			return effects, newState, nil
		}

		// Everyone is ready: flatten all prompts in roster order and shuffle
		// them into the draw pile.
		pile := []string{}
		for _, player := range newState.Players {
			pile = append(pile, newState.PlayerPrompts[player]...)
		}
		shufflePile(pile)
		newState.DrawPile = pile

		effects := []Effect{broadcast(types.NewAllReady(len(pile)))}
		return effects, newState, nil

	case CmdDrawPrompt:
		if len(newState.DrawPile) == 0 {
			return []Effect{reply(types.NewNoPromptsLeft())}, newState, nil
		}
		drawn := newState.DrawPile[0]
		newState.DrawPile = newState.DrawPile[1:]
		return []Effect{reply(types.NewPromptDrawn(drawn))}, newState, nil

	case CmdNextTurn:
		if len(newState.Players) == 0 {
			return nil, newState, nil
		}
		newState.TurnIndex = (newState.TurnIndex + 1) % len(newState.Players)
		effects := []Effect{
			broadcast(types.NewTurnChanged(newState.Players[newState.TurnIndex])),
		}
		return effects, newState, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

// sameMembers compares two rosters as sets. Neither slice carries duplicates
// here, but readiness consensus is defined on membership, not order.
func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]bool, len(a))
	for _, name := range a {
		seen[name] = true
	}
	for _, name := range b {
		if !seen[name] {
			return false
		}
	}
	return true
}
