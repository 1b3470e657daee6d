package chessdto

import "time"

// CapturedPieces lists taken pieces by their own color, as FEN letters.
type CapturedPieces struct {
	Light []string `json:"light"`
	Dark  []string `json:"dark"`
}

// GameState is the public view of a session.
type GameState struct {
	SessionID string         `json:"session_id"`
	Player    string         `json:"player,omitempty"`
	FEN       string         `json:"fen"`
	Board     [8]string      `json:"board"` // rank 8 first, '.' for empty
	Turn      string         `json:"turn"`
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	Terminal  bool           `json:"terminal"`
	Winner    string         `json:"winner,omitempty"`
	Thinking  bool           `json:"thinking"`
	InCheck   bool           `json:"in_check"`
	MoveCount int            `json:"move_count"`
	LastMove  string         `json:"last_move,omitempty"`
	Captured  CapturedPieces `json:"captured"`
	History   []HistoryEntry `json:"history,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
