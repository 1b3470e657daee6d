package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/park285/cheese-chess/internal/api"
	"github.com/park285/cheese-chess/internal/chessbuilder"
	appcfg "github.com/park285/cheese-chess/internal/config"
	"github.com/park285/cheese-chess/internal/obslog"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	deps, err := chessbuilder.New(cfg, logger)
	if err != nil {
		logger.Fatal("chess_init_failed", zap.Error(err))
	}

	srv, err := api.NewServer(deps.Manager, deps.Adapter, deps.Recorder, api.Options{
		Version:       version,
		DefaultPlayer: cfg.DefaultPlayer,
		MaxUndoPlies:  cfg.MaxUndoPlies,
	}, logger)
	if err != nil {
		logger.Fatal("http_init_failed", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen(cfg.HTTPAddr) }()

	logger.Info("chess_server_started",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("version", version),
		zap.Duration("ai_delay", cfg.AIDelay()),
		zap.Duration("session_ttl", cfg.SessionTTL()),
	)

	// Wait for termination signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("chess_server_stopping", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("http_listen_failed", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownGraceS)*time.Second)
	defer cancel()
	if err := srv.Close(ctx); err != nil {
		logger.Warn("http_shutdown_error", zap.Error(err))
	}
	if err := deps.Manager.Close(ctx); err != nil {
		logger.Warn("chess_turns_pending", zap.Error(err))
	}
	if err := deps.Close(); err != nil {
		logger.Warn("chess_deps_close_error", zap.Error(err))
	}
}
