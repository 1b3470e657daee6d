package rules

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

var toNotation = map[Piece]nchess.Piece{
	{Type: King, Color: Light}:   nchess.WhiteKing,
	{Type: Queen, Color: Light}:  nchess.WhiteQueen,
	{Type: Rook, Color: Light}:   nchess.WhiteRook,
	{Type: Bishop, Color: Light}: nchess.WhiteBishop,
	{Type: Knight, Color: Light}: nchess.WhiteKnight,
	{Type: Pawn, Color: Light}:   nchess.WhitePawn,
	{Type: King, Color: Dark}:    nchess.BlackKing,
	{Type: Queen, Color: Dark}:   nchess.BlackQueen,
	{Type: Rook, Color: Dark}:    nchess.BlackRook,
	{Type: Bishop, Color: Dark}:  nchess.BlackBishop,
	{Type: Knight, Color: Dark}:  nchess.BlackKnight,
	{Type: Pawn, Color: Dark}:    nchess.BlackPawn,
}

var fromNotation = func() map[nchess.Piece]Piece {
	out := make(map[nchess.Piece]Piece, len(toNotation))
	for k, v := range toNotation {
		out[v] = k
	}
	return out
}()

func notationSquare(sq Square) nchess.Square {
	return nchess.NewSquare(nchess.File(sq.Col), nchess.Rank(7-sq.Row))
}

// FEN encodes the position. Castling and en passant are not modelled, so
// those fields are always "-".
func (g *Game) FEN() string {
	return EncodeFEN(g.board, g.turn, len(g.history)/2+1)
}

// EncodeFEN renders a board and side to move as a FEN record.
func EncodeFEN(b Board, turn Color, fullMove int) string {
	placement := make(map[nchess.Square]nchess.Piece, 32)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := b[row][col]
			if p.IsEmpty() {
				continue
			}
			placement[notationSquare(Square{Row: row, Col: col})] = toNotation[p]
		}
	}
	side := "w"
	if turn == Dark {
		side = "b"
	}
	if fullMove < 1 {
		fullMove = 1
	}
	return fmt.Sprintf("%s %s - - 0 %d", nchess.NewBoard(placement).String(), side, fullMove)
}

// FromFEN builds a game from a FEN record. Castling and en passant fields are
// accepted but ignored; history starts empty.
func FromFEN(fen string) (*Game, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return nil, fmt.Errorf("empty fen")
	}
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	pos := nchess.NewGame(opt).Position()

	var b Board
	for sq, np := range pos.Board().SquareMap() {
		p, ok := fromNotation[np]
		if !ok {
			continue
		}
		b[7-int(sq.Rank())][int(sq.File())] = p
	}
	turn := Light
	if pos.Turn() == nchess.Black {
		turn = Dark
	}
	return NewGameFromBoard(b, turn), nil
}
