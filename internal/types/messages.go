package types

// Inbound message types (client -> server).
const (
	TypeUserJoined  = "USER_JOINED"
	TypeNewPrompts  = "NEW_PROMPTS"
	TypePlayerReady = "PLAYER_READY"
	TypeDrawPrompt  = "DRAW_PROMPT"
	TypeNextTurn    = "NEXT_TURN"
)

// Join intents carried by USER_JOINED.
const (
	IntentCreate = "create"
	IntentJoin   = "join"
)

// ClientMessage is the envelope for every inbound frame. Fields beyond Type
// are populated only for the message types that carry them.
type ClientMessage struct {
	Type     string   `json:"type"`
	Intent   string   `json:"intent,omitempty"`
	Username string   `json:"username,omitempty"`
	Prompts  []string `json:"prompts,omitempty"`
}

// ServerMessage is the closed set of outbound frames. Each variant marshals
// with exactly the fields the protocol defines for it.
type ServerMessage interface{ isServerMsg() }

type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type RoomState struct {
	Type        string   `json:"type"`
	Players     []string `json:"players"`
	CurrentTurn *string  `json:"currentTurn"`
}

type PromptReceived struct {
	Type   string `json:"type"`
	From   string `json:"from"`
	Count  int    `json:"count"`
	Prompt string `json:"prompt"`
}

type PlayerReady struct {
	Type         string `json:"type"`
	Username     string `json:"username"`
	ReadyCount   int    `json:"readyCount"`
	TotalPlayers int    `json:"totalPlayers"`
}

type AllReady struct {
	Type         string `json:"type"`
	DrawPileSize int    `json:"drawPileSize"`
}

type PromptDrawn struct {
	Type   string `json:"type"`
	Prompt string `json:"prompt"`
}

type NoPromptsLeft struct {
	Type string `json:"type"`
}

type TurnChanged struct {
	Type        string `json:"type"`
	CurrentTurn string `json:"currentTurn"`
}

func (Error) isServerMsg()          {}
func (RoomState) isServerMsg()      {}
func (PromptReceived) isServerMsg() {}
func (PlayerReady) isServerMsg()    {}
func (AllReady) isServerMsg()       {}
func (PromptDrawn) isServerMsg()    {}
func (NoPromptsLeft) isServerMsg()  {}
func (TurnChanged) isServerMsg()    {}

func NewError(message string) Error {
	return Error{Type: "ERROR", Message: message}
}

// NewRoomState keeps players non-nil so an empty roster marshals as [] and
// currentTurn as null when nobody holds the turn.
func NewRoomState(players []string, currentTurn *string) RoomState {
	if players == nil {
		players = []string{}
	}
	return RoomState{Type: "ROOM_STATE", Players: players, CurrentTurn: currentTurn}
}

func NewPromptReceived(from, prompt string) PromptReceived {
	return PromptReceived{Type: "PROMPT_RECEIVED", From: from, Count: 1, Prompt: prompt}
}

func NewPlayerReady(username string, readyCount, totalPlayers int) PlayerReady {
	return PlayerReady{Type: "PLAYER_READY", Username: username, ReadyCount: readyCount, TotalPlayers: totalPlayers}
}

func NewAllReady(drawPileSize int) AllReady {
	return AllReady{Type: "ALL_READY", DrawPileSize: drawPileSize}
}

func NewPromptDrawn(prompt string) PromptDrawn {
	return PromptDrawn{Type: "PROMPT_DRAWN", Prompt: prompt}
}

func NewNoPromptsLeft() NoPromptsLeft {
	return NoPromptsLeft{Type: "NO_PROMPTS_LEFT"}
}

func NewTurnChanged(currentTurn string) TurnChanged {
	return TurnChanged{Type: "TURN_CHANGED", CurrentTurn: currentTurn}
}
