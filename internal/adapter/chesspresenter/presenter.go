package chesspresenter

import (
	"strings"

	"github.com/park285/cheese-chess/pkg/chessdto"
)

// Presenter delivers formatted messages and boards without coupling to the command layer.
type Presenter struct {
	formatter   *Formatter
	sendMessage func(message string) error
}

func NewPresenter(formatter *Formatter, sendMessage func(message string) error) *Presenter {
	if formatter == nil {
		formatter = NewFormatter(false)
	}
	return &Presenter{formatter: formatter, sendMessage: sendMessage}
}

func (p *Presenter) Formatter() *Formatter {
	if p == nil {
		return nil
	}
	return p.formatter
}

// Board sends an optional message followed by the rendered state.
func (p *Presenter) Board(message string, state *chessdto.GameState) error {
	if p == nil || p.sendMessage == nil {
		return nil
	}
	if text := strings.TrimSpace(message); text != "" {
		if err := p.sendMessage(text); err != nil {
			return err
		}
	}
	if state != nil {
		if err := p.sendMessage(p.formatter.Status(state)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Presenter) Message(message string) error {
	if p == nil || p.sendMessage == nil {
		return nil
	}
	if text := strings.TrimSpace(message); text != "" {
		return p.sendMessage(text)
	}
	return nil
}
