package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	"github.com/park285/cheese-chess/internal/chessclient"
	appcfg "github.com/park285/cheese-chess/internal/config"
	"github.com/park285/cheese-chess/internal/msgcat"
	"github.com/park285/cheese-chess/pkg/chessdto"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	serverURL := flag.String("server", cfg.ServerURL, "chess server base URL")
	player := flag.String("player", cfg.DefaultPlayer, "player name for result tallies")
	unicode := flag.Bool("unicode", false, "draw pieces with chess glyphs")
	flag.Parse()

	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		log.Fatalf("messages: %v", err)
	}

	client := chessclient.NewClient(*serverURL,
		chessclient.WithTimeout(cfg.ClientTimeout()),
		chessclient.WithRetry(cfg.ClientRetry),
	)
	presenter := chesspresenter.NewPresenter(chesspresenter.NewFormatter(*unicode), func(message string) error {
		_, err := fmt.Fprintln(os.Stdout, message)
		return err
	})

	ctx := context.Background()
	state, err := client.Start(ctx, *player)
	if err != nil {
		log.Fatalf("start game: %v", err)
	}

	stream := client.Events(state.SessionID)
	stream.OnEvent(func(ev chessdto.Event) {
		if ev.Type != "ai_move" && ev.Type != "game_over" {
			return
		}
		msg := ""
		if ev.Type == "ai_move" {
			msg = catalog.Text("chess.move.ai", map[string]string{"Move": ev.Move}, ev.Move)
		}
		_ = presenter.Board(msg, ev.State)
		fmt.Print("> ")
	})
	if err := stream.Connect(ctx); err != nil {
		log.Printf("event stream unavailable, AI replies will show on the next command: %v", err)
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = stream.Close(cctx)
	}()

	_ = presenter.Message(presenter.Formatter().Help())
	_ = presenter.Board("", state)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		cmd, err := parseCommand(scanner.Text())
		if err != nil {
			_ = presenter.Message(err.Error())
			fmt.Print("> ")
			continue
		}
		if cmd.kind == cmdQuit {
			return
		}
		run(ctx, client, presenter, state.SessionID, *player, cmd)
		fmt.Print("> ")
	}
}

func run(ctx context.Context, client *chessclient.Client, presenter *chesspresenter.Presenter, id, player string, cmd command) {
	switch cmd.kind {
	case cmdHelp:
		_ = presenter.Message(presenter.Formatter().Help())
	case cmdShow:
		st, err := client.Status(ctx, id)
		if err != nil {
			_ = presenter.Message(chessclient.MessageOf(err))
			return
		}
		_ = presenter.Board("", st)
	case cmdMoves:
		d, err := client.Destinations(ctx, id, cmd.from)
		if err != nil {
			_ = presenter.Message(chessclient.MessageOf(err))
			return
		}
		_ = presenter.Message(presenter.Formatter().Destinations(*d))
	case cmdMove:
		res, err := client.Play(ctx, id, cmd.from, cmd.to)
		if err != nil {
			_ = presenter.Message(chessclient.MessageOf(err))
			return
		}
		_ = presenter.Board("", res.State)
	case cmdUndo:
		st, err := client.Undo(ctx, id, cmd.plies)
		if err != nil {
			_ = presenter.Message(chessclient.MessageOf(err))
			return
		}
		_ = presenter.Board("", st)
	case cmdReset:
		st, err := client.Reset(ctx, id)
		if err != nil {
			_ = presenter.Message(chessclient.MessageOf(err))
			return
		}
		_ = presenter.Board("", st)
	case cmdProfile:
		p, err := client.Profile(ctx, player)
		if err != nil {
			_ = presenter.Message(chessclient.MessageOf(err))
			return
		}
		_ = presenter.Message(presenter.Formatter().Profile(p))
	}
}
