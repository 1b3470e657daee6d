package chesspresenter

import (
	"strings"
	"testing"
	"time"

	"github.com/park285/cheese-chess/internal/rules"
	"github.com/park285/cheese-chess/internal/session"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

func stateOf(g *rules.Game, thinking bool) *session.State {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &session.State{ID: "s1", Player: "kim", Game: g, Thinking: thinking, CreatedAt: now, UpdatedAt: now}
}

func TestGameStateOpening(t *testing.T) {
	a := NewAdapter(nil)
	st := a.GameState(stateOf(rules.NewGame(), false))
	if st == nil {
		t.Fatalf("nil state")
	}
	if st.Board[0] != "rnbqkbnr" || st.Board[7] != "RNBQKBNR" || st.Board[4] != "........" {
		t.Fatalf("unexpected board rows: %v", st.Board)
	}
	if st.Turn != "light" || st.Status != "normal" || st.Terminal {
		t.Fatalf("unexpected header: %+v", st)
	}
	if st.Message != "Light to move." {
		t.Fatalf("message: %q", st.Message)
	}
	if !strings.HasPrefix(st.FEN, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w") {
		t.Fatalf("fen: %q", st.FEN)
	}
}

func TestGameStateAfterCapture(t *testing.T) {
	g := rules.NewGame()
	moves := [][2]string{{"e2", "e4"}, {"d7", "d5"}, {"e4", "d5"}}
	for _, m := range moves {
		from, _ := rules.ParseSquare(m[0])
		to, _ := rules.ParseSquare(m[1])
		if !g.Move(from, to) {
			t.Fatalf("move %v rejected", m)
		}
	}
	a := NewAdapter(nil)
	st := a.GameState(stateOf(g, true))
	if st.MoveCount != 3 || st.LastMove != "e4d5" {
		t.Fatalf("history: %+v", st)
	}
	if len(st.Captured.Dark) != 1 || st.Captured.Dark[0] != "p" {
		t.Fatalf("captured: %+v", st.Captured)
	}
	if st.History[2].Captured != "p" || st.History[2].Side != "light" {
		t.Fatalf("history entry: %+v", st.History[2])
	}
	if st.Message != "The AI is thinking..." {
		t.Fatalf("thinking message: %q", st.Message)
	}
}

func TestStatusMessageTerminal(t *testing.T) {
	var b rules.Board
	b[7][7] = rules.NewPiece(rules.King, rules.Dark)
	b[6][6] = rules.NewPiece(rules.Queen, rules.Light)
	b[0][0] = rules.NewPiece(rules.King, rules.Light)
	g := rules.NewGameFromBoard(b, rules.Light)
	// light queen takes the king on h1
	if !g.Move(rules.Square{Row: 6, Col: 6}, rules.Square{Row: 7, Col: 7}) {
		t.Fatalf("king capture rejected")
	}
	a := NewAdapter(nil)
	st := a.GameState(stateOf(g, false))
	if !st.Terminal || st.Winner != "light" {
		t.Fatalf("expected light win: %+v", st)
	}
	if st.Message != "King captured! Light wins." {
		t.Fatalf("message: %q", st.Message)
	}
}

func TestEventAndDestinations(t *testing.T) {
	a := NewAdapter(nil)
	mv := rules.Move{From: rules.Square{Row: 6, Col: 4}, To: rules.Square{Row: 4, Col: 4}}
	ev := a.Event(session.Event{Type: session.EventMove, SessionID: "s1", By: rules.Light, Move: &mv})
	if ev.Type != "move" || ev.By != "light" || ev.Move != "e2e4" || ev.State != nil {
		t.Fatalf("unexpected event: %+v", ev)
	}

	resp := Destinations(mv.From, []rules.Square{{Row: 5, Col: 4}, {Row: 4, Col: 4}})
	if resp.From != "e2" || strings.Join(resp.Destinations, ",") != "e3,e4" {
		t.Fatalf("destinations: %+v", resp)
	}
}

func TestFormatterBoard(t *testing.T) {
	a := NewAdapter(nil)
	st := a.GameState(stateOf(rules.NewGame(), false))
	out := NewFormatter(false).Board(st)
	lines := strings.Split(out, "\n")
	if len(lines) != 9 {
		t.Fatalf("expected 9 lines, got %d", len(lines))
	}
	if lines[0] != "8 r n b q k b n r" || lines[8] != "  a b c d e f g h" {
		t.Fatalf("unexpected rendering:\n%s", out)
	}
	uni := NewFormatter(true).Board(st)
	if !strings.Contains(uni, "♔") {
		t.Fatalf("expected glyphs:\n%s", uni)
	}
}

func TestPresenterSends(t *testing.T) {
	var sent []string
	p := NewPresenter(nil, func(msg string) error {
		sent = append(sent, msg)
		return nil
	})
	if err := p.Board("  ", &chessdto.GameState{Message: "ok"}); err != nil {
		t.Fatalf("board: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("blank message should be skipped, got %d sends", len(sent))
	}
	if err := p.Message("hello"); err != nil || sent[1] != "hello" {
		t.Fatalf("message: %v %v", err, sent)
	}
}
