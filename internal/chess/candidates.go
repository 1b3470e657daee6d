package chess

import "github.com/park285/cheese-chess/internal/rules"

// Tier names the rule that produced the candidate set.
type Tier int

const (
	TierCapture Tier = iota + 1
	TierSafe
	TierAny
)

func (t Tier) String() string {
	switch t {
	case TierCapture:
		return "capture"
	case TierSafe:
		return "safe"
	case TierAny:
		return "any"
	default:
		return "none"
	}
}

// PieceValue is the material weight used to rank captures.
func PieceValue(t rules.PieceType) int {
	switch t {
	case rules.Pawn:
		return 1
	case rules.Knight:
		return 3
	case rules.Bishop, rules.Rook:
		return 5
	case rules.Queen:
		return 20
	case rules.King:
		return 1000
	default:
		return 0
	}
}

// Classify narrows moves to the first non-empty tier:
// highest-value captures, then moves that leave color's king unattacked,
// then every move. moves must be non-empty.
func Classify(b *rules.Board, color rules.Color, moves []rules.Move) (Tier, []rules.Move) {
	best := 0
	var captures []rules.Move
	for _, m := range moves {
		target := b.At(m.To)
		if target.IsEmpty() || target.Color == color {
			continue
		}
		v := PieceValue(target.Type)
		switch {
		case v > best:
			best = v
			captures = append(captures[:0], m)
		case v == best:
			captures = append(captures, m)
		}
	}
	if len(captures) > 0 {
		return TierCapture, captures
	}

	var safe []rules.Move
	for _, m := range moves {
		next := b.WithMove(m)
		if !next.KingInCheck(color) {
			safe = append(safe, m)
		}
	}
	if len(safe) > 0 {
		return TierSafe, safe
	}
	return TierAny, moves
}
