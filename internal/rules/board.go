package rules

import "strings"

// Board is an 8x8 grid indexed [row][col]. It is a value; copies are independent.
type Board [8][8]Piece

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

var (
	knightOffsets = [8][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets   = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	rookRays      = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	bishopRays    = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
)

// StandardBoard returns the opening position: dark on rows 0-1, light on rows 6-7.
func StandardBoard() Board {
	var b Board
	for col := 0; col < 8; col++ {
		b[0][col] = Piece{Type: backRank[col], Color: Dark}
		b[1][col] = Piece{Type: Pawn, Color: Dark}
		b[6][col] = Piece{Type: Pawn, Color: Light}
		b[7][col] = Piece{Type: backRank[col], Color: Light}
	}
	return b
}

// At returns the piece on sq, or NoPiece when sq is empty or off the board.
func (b *Board) At(sq Square) Piece {
	if !sq.InBounds() {
		return NoPiece
	}
	return b[sq.Row][sq.Col]
}

func (b *Board) set(sq Square, p Piece) {
	b[sq.Row][sq.Col] = p
}

// Destinations lists the pseudo-legal targets of the piece on sq.
// Moves that leave the mover's own king attacked are not filtered out.
func (b *Board) Destinations(sq Square) []Square {
	piece := b.At(sq)
	if piece.IsEmpty() {
		return nil
	}

	var out []Square
	add := func(to Square) {
		if !to.InBounds() {
			return
		}
		if target := b.At(to); !target.IsEmpty() && target.Color == piece.Color {
			return
		}
		out = append(out, to)
	}

	switch piece.Type {
	case Pawn:
		dir := piece.Color.forward()
		one := Square{Row: sq.Row + dir, Col: sq.Col}
		if one.InBounds() && b.At(one).IsEmpty() {
			out = append(out, one)
			two := Square{Row: sq.Row + 2*dir, Col: sq.Col}
			if sq.Row == piece.Color.pawnStartRow() && b.At(two).IsEmpty() {
				out = append(out, two)
			}
		}
		for _, dc := range [2]int{-1, 1} {
			diag := Square{Row: sq.Row + dir, Col: sq.Col + dc}
			if target := b.At(diag); !target.IsEmpty() && target.Color != piece.Color {
				out = append(out, diag)
			}
		}
	case Knight:
		for _, off := range knightOffsets {
			add(Square{Row: sq.Row + off[0], Col: sq.Col + off[1]})
		}
	case King:
		for _, off := range kingOffsets {
			add(Square{Row: sq.Row + off[0], Col: sq.Col + off[1]})
		}
	case Rook:
		out = b.slide(sq, piece.Color, rookRays[:], out)
	case Bishop:
		out = b.slide(sq, piece.Color, bishopRays[:], out)
	case Queen:
		out = b.slide(sq, piece.Color, rookRays[:], out)
		out = b.slide(sq, piece.Color, bishopRays[:], out)
	}
	return out
}

// slide walks each ray until the edge or the first occupied square, which is
// included only when it holds an enemy piece.
func (b *Board) slide(from Square, color Color, rays [][2]int, out []Square) []Square {
	for _, ray := range rays {
		cur := Square{Row: from.Row + ray[0], Col: from.Col + ray[1]}
		for cur.InBounds() {
			target := b.At(cur)
			if target.IsEmpty() {
				out = append(out, cur)
			} else {
				if target.Color != color {
					out = append(out, cur)
				}
				break
			}
			cur = Square{Row: cur.Row + ray[0], Col: cur.Col + ray[1]}
		}
	}
	return out
}

// KingSquare locates the king of color c.
func (b *Board) KingSquare(c Color) (Square, bool) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if p := b[row][col]; p.Type == King && p.Color == c {
				return Square{Row: row, Col: col}, true
			}
		}
	}
	return Square{}, false
}

// KingInCheck reports whether any enemy piece can reach c's king.
// A board without that king is never in check.
func (b *Board) KingInCheck(c Color) bool {
	king, ok := b.KingSquare(c)
	if !ok {
		return false
	}
	enemy := c.Opponent()
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			from := Square{Row: row, Col: col}
			if b.At(from).Color != enemy || b.At(from).IsEmpty() {
				continue
			}
			for _, to := range b.Destinations(from) {
				if to == king {
					return true
				}
			}
		}
	}
	return false
}

// Moves enumerates every pseudo-legal move of color c in row-major order.
func (b *Board) Moves(c Color) []Move {
	var out []Move
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			from := Square{Row: row, Col: col}
			p := b.At(from)
			if p.IsEmpty() || p.Color != c {
				continue
			}
			for _, to := range b.Destinations(from) {
				out = append(out, Move{From: from, To: to})
			}
		}
	}
	return out
}

func (b *Board) HasAnyMove(c Color) bool {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			from := Square{Row: row, Col: col}
			p := b.At(from)
			if p.IsEmpty() || p.Color != c {
				continue
			}
			if len(b.Destinations(from)) > 0 {
				return true
			}
		}
	}
	return false
}

// WithMove returns a copy of b with the piece relocated. No promotion or
// bookkeeping happens; the copy is meant for look-ahead checks.
func (b *Board) WithMove(m Move) Board {
	next := *b
	p := next.At(m.From)
	next.set(m.To, p)
	next.set(m.From, NoPiece)
	return next
}

// String renders rank 8 first with '.' for empty squares.
func (b *Board) String() string {
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		sb.WriteByte(byte('8' - row))
		sb.WriteByte(' ')
		for col := 0; col < 8; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(b[row][col].String())
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h\n")
	return sb.String()
}
