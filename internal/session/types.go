package session

import (
	"errors"
	"time"

	"github.com/park285/cheese-chess/internal/rules"
)

var (
	ErrSessionNotFound = errors.New("chess session not found")
	ErrIllegalMove     = errors.New("illegal chess move")
	ErrNotYourTurn     = errors.New("not the human side's turn")
	ErrSelectorBusy    = errors.New("move selector is still thinking")
	ErrGameOver        = errors.New("chess game already finished")
	ErrNothingToUndo   = errors.New("no moves available to undo")
)

// Meta identifies who starts a session.
type Meta struct {
	Player string
}

// Record is the stored form of a session.
type Record struct {
	ID        string         `json:"id"`
	Player    string         `json:"player"`
	Game      rules.Snapshot `json:"game"`
	Thinking  bool           `json:"thinking"`
	Recorded  bool           `json:"recorded"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// State is a caller-owned view of a session. Game is a private copy.
type State struct {
	ID        string
	Player    string
	Game      *rules.Game
	Thinking  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MoveResult is returned by Play. Turn is nil when the AI has nothing to do.
type MoveResult struct {
	State *State
	Move  rules.Move
	Turn  *Turn
}

type EventType string

const (
	EventMove      EventType = "move"
	EventAIMove    EventType = "ai_move"
	EventUndo      EventType = "undo"
	EventReset     EventType = "reset"
	EventGameOver  EventType = "game_over"
	EventAbandoned EventType = "abandoned" // last event; the channel closes after it
)

// Event is published to subscribers of a session after each change.
type Event struct {
	Type      EventType
	SessionID string
	By        rules.Color
	Move      *rules.Move
	State     *State
}
