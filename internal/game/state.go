package game

import "github.com/promptparty/backend/internal/types"

// State is the full persisted snapshot of one room. The JSON tags are the
// durable layout; changing them breaks existing snapshot files.
type State struct {
	Players       []string            `json:"players"`
	PlayerPrompts map[string][]string `json:"player_prompts"`
	ReadyPlayers  []string            `json:"ready_players"`
	DrawPile      []string            `json:"draw_pile"`
	TurnIndex     int                 `json:"turn_index"`
}

func NewState() State {
	return State{
		Players:       []string{},
		PlayerPrompts: map[string][]string{},
		ReadyPlayers:  []string{},
		DrawPile:      []string{},
		TurnIndex:     0,
	}
}

// Clone deep-copies the state so snapshots handed to the keeper never alias
// the actor's working copy.
func (s State) Clone() State {
	out := State{
		Players:       append([]string{}, s.Players...),
		PlayerPrompts: make(map[string][]string, len(s.PlayerPrompts)),
		ReadyPlayers:  append([]string{}, s.ReadyPlayers...),
		DrawPile:      append([]string{}, s.DrawPile...),
		TurnIndex:     s.TurnIndex,
	}
	for player, prompts := range s.PlayerPrompts {
		out.PlayerPrompts[player] = append([]string{}, prompts...)
	}
	return out
}

// CurrentTurn returns the username holding the turn, nil for an empty roster.
func (s State) CurrentTurn() *string {
	if len(s.Players) == 0 {
		return nil
	}
	name := s.Players[s.TurnIndex]
	return &name
}

// PromptReplay lists every submitted prompt as an individual PROMPT_RECEIVED,
// in roster order then submission order. Sent to late joiners so they see the
// prompts contributed before they arrived.
func (s State) PromptReplay() []types.PromptReceived {
	var replay []types.PromptReceived
	for _, player := range s.Players {
		for _, prompt := range s.PlayerPrompts[player] {
			replay = append(replay, types.NewPromptReceived(player, prompt))
		}
	}
	return replay
}
