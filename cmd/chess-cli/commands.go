package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/park285/cheese-chess/internal/rules"
)

type commandKind int

const (
	cmdMove commandKind = iota
	cmdMoves
	cmdUndo
	cmdReset
	cmdShow
	cmdProfile
	cmdHelp
	cmdQuit
)

type command struct {
	kind  commandKind
	from  string
	to    string
	plies int
}

// parseCommand understands "e2 e4", "e2e4", "moves e2", "undo [n]", "reset",
// "show", "profile", "help" and "quit".
func parseCommand(line string) (command, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(line)))
	if len(fields) == 0 {
		return command{kind: cmdShow}, nil
	}
	switch fields[0] {
	case "quit", "exit", "q":
		return command{kind: cmdQuit}, nil
	case "help", "?":
		return command{kind: cmdHelp}, nil
	case "show", "board":
		return command{kind: cmdShow}, nil
	case "reset", "new":
		return command{kind: cmdReset}, nil
	case "profile", "stats":
		return command{kind: cmdProfile}, nil
	case "moves":
		if len(fields) != 2 {
			return command{}, fmt.Errorf("usage: moves <square>")
		}
		sq, err := rules.ParseSquare(fields[1])
		if err != nil {
			return command{}, err
		}
		return command{kind: cmdMoves, from: sq.String()}, nil
	case "undo":
		c := command{kind: cmdUndo}
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 1 {
				return command{}, fmt.Errorf("usage: undo [plies]")
			}
			c.plies = n
		}
		return c, nil
	}

	mv, err := rules.ParseMove(strings.Join(fields, " "))
	if err != nil {
		return command{}, fmt.Errorf("unknown command %q", line)
	}
	return command{kind: cmdMove, from: mv.From.String(), to: mv.To.String()}, nil
}
