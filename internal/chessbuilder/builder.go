package chessbuilder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/park285/cheese-chess/internal/adapter/chesspresenter"
	corechess "github.com/park285/cheese-chess/internal/chess"
	"github.com/park285/cheese-chess/internal/config"
	"github.com/park285/cheese-chess/internal/msgcat"
	"github.com/park285/cheese-chess/internal/session"
	"github.com/park285/cheese-chess/internal/stats"
	"go.uber.org/zap"
)

type Deps struct {
	Manager  *session.Manager
	Engine   *corechess.Engine
	Store    session.Store
	Repo     stats.Repository
	Recorder *stats.Recorder
	Catalog  *msgcat.Catalog
	Adapter  *chesspresenter.Adapter

	closers []func() error
}

// New wires the chess service. Redis and Postgres are optional; without them
// sessions and tallies live in process memory.
func New(cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	deps := &Deps{}

	// Engine
	deps.Engine = corechess.NewEngine()
	if cfg.AISeedSet {
		deps.Engine.SetRandomSeed(cfg.AISeed)
	}

	// Messages
	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	deps.Catalog = catalog
	deps.Adapter = chesspresenter.NewAdapter(catalog)

	// Session store (Redis optional)
	if strings.TrimSpace(cfg.RedisURL) != "" {
		rs, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL())
		if err != nil {
			return nil, fmt.Errorf("init redis store: %w", err)
		}
		deps.Store = rs
		deps.closers = append(deps.closers, rs.Close)
		logger.Info("chess_store_selected", zap.String("store", "redis"))
	} else {
		deps.Store = session.NewMemoryStore(cfg.SessionTTL())
		logger.Info("chess_store_selected", zap.String("store", "memory"))
	}

	// Tallies (DB optional)
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		repo, err := stats.NewPostgresRepository(cfg.DatabaseURL)
		if err != nil {
			_ = deps.Close()
			return nil, fmt.Errorf("init stats repository: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = repo.EnsureSchema(ctx)
		cancel()
		if err != nil {
			_ = repo.Close()
			_ = deps.Close()
			return nil, fmt.Errorf("ensure stats schema: %w", err)
		}
		deps.Repo = repo
		deps.closers = append(deps.closers, repo.Close)
	} else {
		deps.Repo = stats.NewMemoryRepository()
	}

	recorder, err := stats.NewRecorder(deps.Repo, logger)
	if err != nil {
		_ = deps.Close()
		return nil, err
	}
	deps.Recorder = recorder

	manager, err := session.NewManager(deps.Store, deps.Engine, recorder, session.Config{AIDelay: aiDelay(cfg)}, logger)
	if err != nil {
		_ = deps.Close()
		return nil, err
	}
	deps.Manager = manager
	return deps, nil
}

// aiDelay maps the configured milliseconds onto session.Config, where zero
// means the default and a negative value means no pause.
func aiDelay(cfg *config.AppConfig) time.Duration {
	if cfg.AIDelayMS <= 0 {
		return -1
	}
	return cfg.AIDelay()
}

// Close releases external connections in reverse order of creation.
func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	var first error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	d.closers = nil
	return first
}
