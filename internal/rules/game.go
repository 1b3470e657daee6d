package rules

// HistoryEntry records one applied move so it can be reverted exactly.
type HistoryEntry struct {
	From       Square `json:"from"`
	To         Square `json:"to"`
	Piece      Piece  `json:"piece"`
	Captured   Piece  `json:"captured"`
	SideToMove Color  `json:"side"`
}

// Game owns the board, turn, capture lists and undo history.
// It is not safe for concurrent use; callers serialise access.
type Game struct {
	board    Board
	turn     Color
	terminal bool
	winner   Color
	status   Status
	captured map[Color][]Piece
	history  []HistoryEntry
}

// NewGame returns the standard opening with light to move.
func NewGame() *Game {
	g := &Game{}
	g.Reset()
	return g
}

// NewGameFromBoard starts from an arbitrary position with empty history.
// The status reflects the position but the game is never terminal up front.
func NewGameFromBoard(b Board, turn Color) *Game {
	if turn != Dark {
		turn = Light
	}
	g := &Game{
		board:    b,
		turn:     turn,
		captured: map[Color][]Piece{},
	}
	g.status = g.advisoryStatus()
	return g
}

// Reset restores the opening position and clears history and captures.
func (g *Game) Reset() {
	g.board = StandardBoard()
	g.turn = Light
	g.terminal = false
	g.winner = NoColor
	g.status = StatusNormal
	g.captured = map[Color][]Piece{}
	g.history = nil
}

func (g *Game) Board() Board       { return g.board }
func (g *Game) Turn() Color        { return g.turn }
func (g *Game) Terminal() bool     { return g.terminal }
func (g *Game) Winner() Color      { return g.winner }
func (g *Game) Status() Status     { return g.status }
func (g *Game) HistoryLen() int    { return len(g.history) }
func (g *Game) At(sq Square) Piece { return g.board.At(sq) }

// History returns a copy of the move stack, oldest first.
func (g *Game) History() []HistoryEntry {
	return append([]HistoryEntry(nil), g.history...)
}

// Captured returns a copy of the pieces of color c that have been taken.
func (g *Game) Captured(c Color) []Piece {
	return append([]Piece(nil), g.captured[c]...)
}

// LastMove reports the most recent applied move, if any.
func (g *Game) LastMove() (Move, bool) {
	if len(g.history) == 0 {
		return Move{}, false
	}
	last := g.history[len(g.history)-1]
	return Move{From: last.From, To: last.To}, true
}

func (g *Game) LegalDestinations(sq Square) []Square {
	return g.board.Destinations(sq)
}

// IsLegalMove reports whether the side to move owns from and can reach to.
func (g *Game) IsLegalMove(from, to Square) bool {
	p := g.board.At(from)
	if p.IsEmpty() || p.Color != g.turn {
		return false
	}
	for _, d := range g.board.Destinations(from) {
		if d == to {
			return true
		}
	}
	return false
}

func (g *Game) IsKingInCheck(c Color) bool { return g.board.KingInCheck(c) }

func (g *Game) HasAnyLegalMove(c Color) bool { return g.board.HasAnyMove(c) }

// AllMoves enumerates every pseudo-legal move of c.
func (g *Game) AllMoves(c Color) []Move { return g.board.Moves(c) }

// Move applies from->to only if it is legal and the game is still running.
// Declined requests leave the state untouched and return false.
func (g *Game) Move(from, to Square) bool {
	if g.terminal || !g.IsLegalMove(from, to) {
		return false
	}
	g.ApplyMove(from, to)
	return true
}

// ApplyMove performs an already validated move, flips the turn and resolves
// the resulting status. Capturing a king ends the game immediately and skips
// the status table.
func (g *Game) ApplyMove(from, to Square) Status {
	mover := g.board.At(from)
	target := g.board.At(to)
	g.history = append(g.history, HistoryEntry{
		From:       from,
		To:         to,
		Piece:      mover,
		Captured:   target,
		SideToMove: g.turn,
	})

	if target.Type == King {
		g.captured[target.Color] = append(g.captured[target.Color], target)
		g.board.set(to, mover)
		g.board.set(from, NoPiece)
		g.terminal = true
		g.winner = mover.Color
		g.status = StatusKingCaptured
		g.turn = g.turn.Opponent()
		return g.status
	}

	if !target.IsEmpty() {
		g.captured[target.Color] = append(g.captured[target.Color], target)
	}
	placed := mover
	if mover.Type == Pawn && to.Row == mover.Color.promotionRow() {
		placed = Piece{Type: Queen, Color: mover.Color}
	}
	g.board.set(to, placed)
	g.board.set(from, NoPiece)
	g.turn = g.turn.Opponent()
	g.resolveStatus()
	return g.status
}

// resolveStatus applies the status table for the side now to move.
func (g *Game) resolveStatus() {
	if g.terminal {
		return
	}
	side := g.turn
	inCheck := g.board.KingInCheck(side)
	hasMoves := g.board.HasAnyMove(side)
	switch {
	case inCheck && !hasMoves:
		g.terminal = true
		g.winner = side.Opponent()
		g.status = StatusCheckmate
	case !inCheck && !hasMoves:
		g.terminal = true
		g.winner = NoColor
		g.status = StatusStalemate
	case inCheck:
		g.status = StatusCheck
	default:
		g.status = StatusNormal
	}
}

func (g *Game) advisoryStatus() Status {
	if g.board.KingInCheck(g.turn) {
		return StatusCheck
	}
	return StatusNormal
}

// Undo reverts the most recent move. It is a no-op on an empty history.
func (g *Game) Undo() bool {
	if len(g.history) == 0 {
		return false
	}
	last := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]

	g.board.set(last.From, last.Piece)
	g.board.set(last.To, last.Captured)
	if !last.Captured.IsEmpty() {
		list := g.captured[last.Captured.Color]
		if len(list) > 0 {
			g.captured[last.Captured.Color] = list[:len(list)-1]
		}
	}
	g.turn = last.SideToMove
	g.terminal = false
	g.winner = NoColor
	g.status = g.advisoryStatus()
	return true
}

// Clone returns a deep copy.
func (g *Game) Clone() *Game {
	out := &Game{
		board:    g.board,
		turn:     g.turn,
		terminal: g.terminal,
		winner:   g.winner,
		status:   g.status,
		captured: make(map[Color][]Piece, len(g.captured)),
		history:  append([]HistoryEntry(nil), g.history...),
	}
	for c, list := range g.captured {
		out.captured[c] = append([]Piece(nil), list...)
	}
	return out
}
