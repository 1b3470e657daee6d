package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	HTTPAddr string

	RedisURL    string
	DatabaseURL string

	AIDelayMS      int
	SessionTTLSec  int
	MaxUndoPlies   int
	AISeed         int64
	AISeedSet      bool
	MessagesDir    string
	DefaultPlayer  string
	ShutdownGraceS int

	// Clients
	ServerURL      string
	CompareBaseURL string
	ClientTimeoutS int
	ClientRetry    int
}

func (c *AppConfig) AIDelay() time.Duration {
	return time.Duration(c.AIDelayMS) * time.Millisecond
}

func (c *AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSec) * time.Second
}

func (c *AppConfig) ClientTimeout() time.Duration {
	return time.Duration(c.ClientTimeoutS) * time.Second
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:       ":8080",
		AIDelayMS:      1000,
		SessionTTLSec:  3600,
		MaxUndoPlies:   2,
		DefaultPlayer:  "guest",
		ShutdownGraceS: 10,
		ServerURL:      "http://127.0.0.1:8080",
		CompareBaseURL: "http://127.0.0.1:5000",
		ClientTimeoutS: 10,
		ClientRetry:    3,
	}

	if v := strings.TrimSpace(os.Getenv("CHESS_HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("CHESS_MESSAGES_DIR"))

	// 0 is allowed: the AI replies immediately
	if v := strings.TrimSpace(os.Getenv("CHESS_AI_DELAY_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.AIDelayMS = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_SESSION_TTL")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionTTLSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_MAX_UNDO_PLIES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxUndoPlies = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_AI_SEED")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.AISeed = n
			cfg.AISeedSet = true
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_DEFAULT_PLAYER")); v != "" {
		cfg.DefaultPlayer = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_SHUTDOWN_GRACE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ShutdownGraceS = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("CHESS_SERVER_URL")); v != "" {
		cfg.ServerURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("COMPARE_BASE_URL")); v != "" {
		cfg.CompareBaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("CLIENT_TIMEOUT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ClientTimeoutS = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CLIENT_RETRY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ClientRetry = n
		}
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("CHESS_HTTP_ADDR is required")
	}
	if cfg.RedisURL != "" && !strings.HasPrefix(cfg.RedisURL, "redis://") && !strings.HasPrefix(cfg.RedisURL, "rediss://") {
		return nil, errors.New("REDIS_URL must use redis:// or rediss://")
	}

	return cfg, nil
}
