package rules

import (
	"fmt"
	"strings"
)

// Color identifies a side. Light is the human side and moves first.
type Color int

const (
	NoColor Color = iota
	Light
	Dark
)

// Opponent returns the other side; NoColor stays NoColor.
func (c Color) Opponent() Color {
	switch c {
	case Light:
		return Dark
	case Dark:
		return Light
	default:
		return NoColor
	}
}

func (c Color) String() string {
	switch c {
	case Light:
		return "light"
	case Dark:
		return "dark"
	default:
		return ""
	}
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor accepts light/dark (and white/black aliases). Empty input is NoColor.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return NoColor, nil
	case "light", "white", "w":
		return Light, nil
	case "dark", "black", "b":
		return Dark, nil
	default:
		return NoColor, fmt.Errorf("unknown color %q", s)
	}
}

// forward is the row delta of a pawn step.
func (c Color) forward() int {
	if c == Light {
		return -1
	}
	return 1
}

func (c Color) pawnStartRow() int {
	if c == Light {
		return 6
	}
	return 1
}

func (c Color) promotionRow() int {
	if c == Light {
		return 0
	}
	return 7
}

type PieceType int

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var pieceLetters = map[PieceType]byte{
	Pawn:   'p',
	Knight: 'n',
	Bishop: 'b',
	Rook:   'r',
	Queen:  'q',
	King:   'k',
}

func (t PieceType) String() string {
	switch t {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return ""
	}
}

// Piece is an immutable value. The zero Piece marks an empty square.
type Piece struct {
	Type  PieceType
	Color Color
}

var NoPiece = Piece{}

func NewPiece(t PieceType, c Color) Piece {
	return Piece{Type: t, Color: c}
}

func (p Piece) IsEmpty() bool { return p.Type == NoPieceType }

// Letter returns the FEN letter, uppercase for light. Empty pieces return "".
func (p Piece) Letter() string {
	b, ok := pieceLetters[p.Type]
	if !ok {
		return ""
	}
	if p.Color == Light {
		b -= 'a' - 'A'
	}
	return string(b)
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "."
	}
	return p.Letter()
}

func (p Piece) MarshalText() ([]byte, error) {
	return []byte(p.Letter()), nil
}

func (p *Piece) UnmarshalText(b []byte) error {
	parsed, err := ParsePiece(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePiece decodes a single FEN letter; "" and "." decode to NoPiece.
func ParsePiece(s string) (Piece, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return NoPiece, nil
	}
	if len(s) != 1 {
		return NoPiece, fmt.Errorf("invalid piece %q", s)
	}
	ch := s[0]
	color := Dark
	if ch >= 'A' && ch <= 'Z' {
		color = Light
		ch += 'a' - 'A'
	}
	for t, letter := range pieceLetters {
		if letter == ch {
			return Piece{Type: t, Color: color}, nil
		}
	}
	return NoPiece, fmt.Errorf("invalid piece %q", s)
}

// Square addresses a board cell. Row 0 is dark's back rank.
type Square struct {
	Row int
	Col int
}

func (s Square) InBounds() bool {
	return s.Row >= 0 && s.Row < 8 && s.Col >= 0 && s.Col < 8
}

// String renders algebraic notation: col 0 is file a, row 7 is rank 1.
func (s Square) String() string {
	if !s.InBounds() {
		return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
	}
	return string([]byte{byte('a' + s.Col), byte('1' + 7 - s.Row)})
}

func (s Square) MarshalText() ([]byte, error) {
	if !s.InBounds() {
		return nil, fmt.Errorf("square out of bounds: %d,%d", s.Row, s.Col)
	}
	return []byte(s.String()), nil
}

func (s *Square) UnmarshalText(b []byte) error {
	parsed, err := ParseSquare(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseSquare(s string) (Square, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Square{}, fmt.Errorf("invalid square %q", s)
	}
	return Square{Row: 7 - int(s[1]-'1'), Col: int(s[0] - 'a')}, nil
}

// Move is a from/to pair. Promotion is implied (always to a queen).
type Move struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

func (m Move) String() string { return m.From.String() + m.To.String() }

// ParseMove accepts "e2e4", "e2-e4" or "e2 e4".
func ParseMove(s string) (Move, error) {
	clean := strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(s))
	if len(clean) != 4 {
		return Move{}, fmt.Errorf("invalid move %q", s)
	}
	from, err := ParseSquare(clean[:2])
	if err != nil {
		return Move{}, err
	}
	to, err := ParseSquare(clean[2:])
	if err != nil {
		return Move{}, err
	}
	return Move{From: from, To: to}, nil
}

// Status is the outcome of the status table after a move.
type Status int

const (
	StatusNormal Status = iota
	StatusCheck
	StatusCheckmate
	StatusStalemate
	StatusKingCaptured
)

func (s Status) String() string {
	switch s {
	case StatusCheck:
		return "check"
	case StatusCheckmate:
		return "checkmate"
	case StatusStalemate:
		return "stalemate"
	case StatusKingCaptured:
		return "king-captured"
	default:
		return "normal"
	}
}

// Terminal reports whether the status ends the game.
func (s Status) Terminal() bool {
	return s == StatusCheckmate || s == StatusStalemate || s == StatusKingCaptured
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	switch strings.TrimSpace(string(b)) {
	case "", "normal":
		*s = StatusNormal
	case "check":
		*s = StatusCheck
	case "checkmate":
		*s = StatusCheckmate
	case "stalemate":
		*s = StatusStalemate
	case "king-captured":
		*s = StatusKingCaptured
	default:
		return fmt.Errorf("unknown status %q", b)
	}
	return nil
}
