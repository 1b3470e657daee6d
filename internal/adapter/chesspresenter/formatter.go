package chesspresenter

import (
	"fmt"
	"strings"

	"github.com/park285/cheese-chess/pkg/chessdto"
)

const recentMovesLimit = 6

// Formatter renders chess DTOs into plain-text blocks for terminals.
type Formatter struct {
	// Unicode swaps letters for chess glyphs.
	Unicode bool
}

func NewFormatter(unicode bool) *Formatter {
	return &Formatter{Unicode: unicode}
}

var glyphs = map[byte]string{
	'K': "♔", 'Q': "♕", 'R': "♖", 'B': "♗", 'N': "♘", 'P': "♙",
	'k': "♚", 'q': "♛", 'r': "♜", 'b': "♝", 'n': "♞", 'p': "♟",
}

// Board draws rank 8 at the top with file letters underneath.
func (f *Formatter) Board(state *chessdto.GameState) string {
	if state == nil {
		return ""
	}
	var sb strings.Builder
	for row, rank := range state.Board {
		sb.WriteString(fmt.Sprintf("%d ", 8-row))
		for col := 0; col < len(rank); col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(f.cell(rank[col]))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h")
	return sb.String()
}

func (f *Formatter) cell(c byte) string {
	if f != nil && f.Unicode {
		if g, ok := glyphs[c]; ok {
			return g
		}
	}
	return string(c)
}

func (f *Formatter) Status(state *chessdto.GameState) string {
	if state == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(f.Board(state))
	sb.WriteString("\n\n")
	if msg := strings.TrimSpace(state.Message); msg != "" {
		sb.WriteString(msg)
		sb.WriteByte('\n')
	}
	sb.WriteString(fmt.Sprintf("• moves %d", state.MoveCount))
	if state.LastMove != "" {
		sb.WriteString(fmt.Sprintf(" | last %s", state.LastMove))
	}
	sb.WriteByte('\n')
	if recent := formatRecentMoves(state.History); recent != "" {
		sb.WriteString("• recent ")
		sb.WriteString(recent)
		sb.WriteByte('\n')
	}
	appendCapturedLine(&sb, state.Captured)
	return strings.TrimRight(sb.String(), "\n")
}

func (f *Formatter) Destinations(resp chessdto.DestinationsResponse) string {
	if len(resp.Destinations) == 0 {
		return fmt.Sprintf("%s: no moves", resp.From)
	}
	return fmt.Sprintf("%s: %s", resp.From, strings.Join(resp.Destinations, " "))
}

func (f *Formatter) Profile(p *chessdto.Profile) string {
	if p == nil {
		return ""
	}
	line := fmt.Sprintf("%s: %dW %dL %dD (%d games)", p.Player, p.Wins, p.Losses, p.Draws, p.GamesPlayed)
	if p.Streak > 1 && p.StreakType != "" {
		line += fmt.Sprintf(" | %d %s streak", p.Streak, p.StreakType)
	}
	return line
}

func (f *Formatter) Help() string {
	return `commands
• <from> <to>   move a piece (e2 e4, e2e4)
• moves <sq>    list destinations
• undo [n]      take back moves
• reset         restart the game
• show          print the board
• quit`
}

func formatRecentMoves(history []chessdto.HistoryEntry) string {
	if len(history) == 0 {
		return ""
	}
	start := len(history) - recentMovesLimit
	if start < 0 {
		start = 0
	}
	parts := make([]string, 0, len(history)-start)
	for _, h := range history[start:] {
		mv := h.Move
		if h.Captured != "" {
			mv += "x" + h.Captured
		}
		parts = append(parts, mv)
	}
	return strings.Join(parts, " ")
}

func appendCapturedLine(sb *strings.Builder, captured chessdto.CapturedPieces) {
	if len(captured.Light) == 0 && len(captured.Dark) == 0 {
		return
	}
	sb.WriteString("• captured")
	if len(captured.Dark) > 0 {
		sb.WriteString(" light took ")
		sb.WriteString(strings.Join(captured.Dark, ""))
	}
	if len(captured.Light) > 0 {
		sb.WriteString(" dark took ")
		sb.WriteString(strings.Join(captured.Light, ""))
	}
	sb.WriteByte('\n')
}
