package chessdto

// Event is pushed over the session websocket.
type Event struct {
	Type      string     `json:"type"`
	SessionID string     `json:"session_id"`
	By        string     `json:"by,omitempty"`
	Move      string     `json:"move,omitempty"`
	State     *GameState `json:"state,omitempty"`
}
