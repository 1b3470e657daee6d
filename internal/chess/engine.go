package chess

import (
	"math/rand"
	"sync"
	"time"

	"github.com/park285/cheese-chess/internal/rules"
)

// Position is the read-only view the selector needs from a game.
type Position interface {
	Board() rules.Board
	AllMoves(c rules.Color) []rules.Move
}

// Engine picks moves with a one-ply heuristic: best capture, then a move
// that keeps the king safe, then anything. It keeps no state besides the
// random source and is safe for concurrent use.
type Engine struct {
	randMu sync.Mutex
	rand   *rand.Rand
}

func NewEngine() *Engine {
	return &Engine{rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Selection is the chosen move together with the tier that produced it.
type Selection struct {
	Move          rules.Move
	Tier          Tier
	CapturedValue int
	Candidates    int
}

// SelectMove returns a move for color, or false when it has none.
func (e *Engine) SelectMove(pos Position, color rules.Color) (rules.Move, bool) {
	sel, ok := e.Choose(pos, color)
	if !ok {
		return rules.Move{}, false
	}
	return sel.Move, true
}

// Choose is SelectMove with the reasoning attached. A nil pos, including a
// nil *rules.Game, has no move.
func (e *Engine) Choose(pos Position, color rules.Color) (Selection, bool) {
	if pos == nil {
		return Selection{}, false
	}
	if g, ok := pos.(*rules.Game); ok && g == nil {
		return Selection{}, false
	}
	board := pos.Board()
	moves := pos.AllMoves(color)
	if len(moves) == 0 {
		return Selection{}, false
	}

	tier, candidates := Classify(&board, color, moves)
	r := e.random()
	chosen := candidates[r.Intn(len(candidates))]
	return Selection{
		Move:          chosen,
		Tier:          tier,
		CapturedValue: PieceValue(board.At(chosen.To).Type),
		Candidates:    len(candidates),
	}, true
}

func (e *Engine) random() *rand.Rand {
	e.randMu.Lock()
	seed := e.rand.Int63()
	e.randMu.Unlock()
	return rand.New(rand.NewSource(seed))
}

func (e *Engine) SetRandomSeed(seed int64) {
	e.randMu.Lock()
	e.rand = rand.New(rand.NewSource(seed))
	e.randMu.Unlock()
}
