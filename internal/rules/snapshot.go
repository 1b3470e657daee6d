package rules

import (
	"errors"
	"fmt"
)

// Snapshot is the serialisable form of a Game. Board rows hold FEN letters
// ("" for empty), row 0 first.
type Snapshot struct {
	Board    [8][8]Piece    `json:"board"`
	Turn     Color          `json:"turn"`
	Terminal bool           `json:"terminal"`
	Winner   Color          `json:"winner,omitempty"`
	Status   Status         `json:"status"`
	Captured CapturedLists  `json:"captured"`
	History  []HistoryEntry `json:"history"`
}

// CapturedLists groups taken pieces by their own color.
type CapturedLists struct {
	Light []Piece `json:"light"`
	Dark  []Piece `json:"dark"`
}

func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Board:    g.board,
		Turn:     g.turn,
		Terminal: g.terminal,
		Winner:   g.winner,
		Status:   g.status,
		Captured: CapturedLists{
			Light: g.Captured(Light),
			Dark:  g.Captured(Dark),
		},
		History: g.History(),
	}
}

var ErrInvalidSnapshot = errors.New("invalid game snapshot")

// Restore rebuilds a Game from a snapshot after basic consistency checks.
func Restore(s Snapshot) (*Game, error) {
	if s.Turn != Light && s.Turn != Dark {
		return nil, fmt.Errorf("%w: turn %q", ErrInvalidSnapshot, s.Turn)
	}
	kings := map[Color]int{}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := s.Board[row][col]
			if p.IsEmpty() {
				continue
			}
			if p.Color != Light && p.Color != Dark {
				return nil, fmt.Errorf("%w: colorless piece at %s", ErrInvalidSnapshot, Square{Row: row, Col: col})
			}
			if p.Type == King {
				kings[p.Color]++
			}
		}
	}
	if kings[Light] > 1 || kings[Dark] > 1 {
		return nil, fmt.Errorf("%w: more than one king per side", ErrInvalidSnapshot)
	}
	for i, h := range s.History {
		if !h.From.InBounds() || !h.To.InBounds() || h.Piece.IsEmpty() {
			return nil, fmt.Errorf("%w: history entry %d", ErrInvalidSnapshot, i)
		}
	}
	g := &Game{
		board:    s.Board,
		turn:     s.Turn,
		terminal: s.Terminal,
		winner:   s.Winner,
		status:   s.Status,
		captured: map[Color][]Piece{
			Light: append([]Piece(nil), s.Captured.Light...),
			Dark:  append([]Piece(nil), s.Captured.Dark...),
		},
		history: append([]HistoryEntry(nil), s.History...),
	}
	return g, nil
}
