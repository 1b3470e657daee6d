package chessdto

// HistoryEntry is one applied move in coordinate notation.
type HistoryEntry struct {
	Ply      int    `json:"ply"`
	Side     string `json:"side"`
	Move     string `json:"move"`
	Piece    string `json:"piece"`
	Captured string `json:"captured,omitempty"`
}
