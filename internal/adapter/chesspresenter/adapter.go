package chesspresenter

import (
	"strings"

	"github.com/park285/cheese-chess/internal/msgcat"
	"github.com/park285/cheese-chess/internal/rules"
	"github.com/park285/cheese-chess/internal/session"
	"github.com/park285/cheese-chess/internal/stats"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

// Adapter maps session values onto wire DTOs. A nil catalog uses the embedded defaults.
type Adapter struct {
	catalog *msgcat.Catalog
}

func NewAdapter(catalog *msgcat.Catalog) *Adapter {
	if catalog == nil {
		catalog = msgcat.MustDefault()
	}
	return &Adapter{catalog: catalog}
}

func (a *Adapter) Catalog() *msgcat.Catalog { return a.catalog }

func (a *Adapter) GameState(st *session.State) *chessdto.GameState {
	if st == nil || st.Game == nil {
		return nil
	}
	g := st.Game
	board := g.Board()

	out := &chessdto.GameState{
		SessionID: st.ID,
		Player:    st.Player,
		FEN:       g.FEN(),
		Turn:      g.Turn().String(),
		Status:    g.Status().String(),
		Terminal:  g.Terminal(),
		Thinking:  st.Thinking,
		InCheck:   g.IsKingInCheck(g.Turn()),
		MoveCount: g.HistoryLen(),
		Captured: chessdto.CapturedPieces{
			Light: letters(g.Captured(rules.Light)),
			Dark:  letters(g.Captured(rules.Dark)),
		},
		History:   historyOf(g.History()),
		CreatedAt: st.CreatedAt,
		UpdatedAt: st.UpdatedAt,
	}
	for row := 0; row < 8; row++ {
		var sb strings.Builder
		for col := 0; col < 8; col++ {
			p := board[row][col]
			if p.IsEmpty() {
				sb.WriteByte('.')
				continue
			}
			sb.WriteString(p.Letter())
		}
		out.Board[row] = sb.String()
	}
	if g.Winner() != rules.NoColor {
		out.Winner = g.Winner().String()
	}
	if last, ok := g.LastMove(); ok {
		out.LastMove = last.String()
	}
	out.Message = a.StatusMessage(g, st.Thinking)
	return out
}

// StatusMessage is the one-line status shown under the board.
func (a *Adapter) StatusMessage(g *rules.Game, thinking bool) string {
	if thinking && !g.Terminal() {
		return a.catalog.Text("chess.status.thinking", nil, "The AI is thinking...")
	}
	data := map[string]string{
		"Side":   a.SideName(g.Turn()),
		"Winner": a.SideName(g.Winner()),
	}
	key := "chess.status." + strings.ReplaceAll(g.Status().String(), "-", "_")
	return a.catalog.Text(key, data, g.Status().String())
}

func (a *Adapter) SideName(c rules.Color) string {
	switch c {
	case rules.Light:
		return a.catalog.Text("chess.side.light", nil, "Light")
	case rules.Dark:
		return a.catalog.Text("chess.side.dark", nil, "Dark")
	default:
		return ""
	}
}

func (a *Adapter) MoveResponse(res *session.MoveResult) *chessdto.MoveResponse {
	if res == nil {
		return nil
	}
	return &chessdto.MoveResponse{
		State:     a.GameState(res.State),
		Move:      res.Move.String(),
		AIPending: res.Turn != nil,
	}
}

func (a *Adapter) Event(ev session.Event) chessdto.Event {
	out := chessdto.Event{
		Type:      string(ev.Type),
		SessionID: ev.SessionID,
		State:     a.GameState(ev.State),
	}
	if ev.By != rules.NoColor {
		out.By = ev.By.String()
	}
	if ev.Move != nil {
		out.Move = ev.Move.String()
	}
	return out
}

func Destinations(from rules.Square, squares []rules.Square) chessdto.DestinationsResponse {
	out := chessdto.DestinationsResponse{From: from.String(), Destinations: make([]string, 0, len(squares))}
	for _, sq := range squares {
		out.Destinations = append(out.Destinations, sq.String())
	}
	return out
}

func Profile(p *stats.Profile) *chessdto.Profile {
	if p == nil {
		return nil
	}
	return &chessdto.Profile{
		Player:       p.Player,
		GamesPlayed:  p.GamesPlayed,
		Wins:         p.Wins,
		Losses:       p.Losses,
		Draws:        p.Draws,
		Streak:       p.Streak,
		StreakType:   p.StreakType,
		LastResult:   p.LastResult,
		LastPlayedAt: p.LastPlayedAt,
	}
}

func historyOf(entries []rules.HistoryEntry) []chessdto.HistoryEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]chessdto.HistoryEntry, 0, len(entries))
	for i, e := range entries {
		h := chessdto.HistoryEntry{
			Ply:   i + 1,
			Side:  e.SideToMove.String(),
			Move:  rules.Move{From: e.From, To: e.To}.String(),
			Piece: e.Piece.Letter(),
		}
		if !e.Captured.IsEmpty() {
			h.Captured = e.Captured.Letter()
		}
		out = append(out, h)
	}
	return out
}

func letters(pieces []rules.Piece) []string {
	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		out = append(out, p.Letter())
	}
	return out
}
