package chessdto

type StartRequest struct {
	Player string `json:"player"`
}

type MoveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type UndoRequest struct {
	// Plies <= 0 rewinds to the human side's previous turn.
	Plies int `json:"plies"`
}

type MoveResponse struct {
	State     *GameState `json:"state"`
	Move      string     `json:"move"`
	AIPending bool       `json:"ai_pending"`
}

type DestinationsResponse struct {
	From         string   `json:"from"`
	Destinations []string `json:"destinations"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Message string `json:"message"`
}
