package stats

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Recorder folds finished games into player profiles.
type Recorder struct {
	repo   Repository
	logger *zap.Logger

	// serialises read-modify-write per process
	mu sync.Mutex
}

func NewRecorder(repo Repository, logger *zap.Logger) (*Recorder, error) {
	if repo == nil {
		return nil, fmt.Errorf("stats repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{repo: repo, logger: logger}, nil
}

// Record applies res to the player's profile and returns the updated copy.
func (r *Recorder) Record(ctx context.Context, res Result) (*Profile, error) {
	player := strings.TrimSpace(res.Player)
	if player == "" {
		return nil, fmt.Errorf("player is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	profile, err := r.repo.GetProfile(ctx, player)
	if err != nil {
		return nil, err
	}
	profile = applyResult(profile, player, res)
	if err := r.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}

	r.logger.Info("chess_result_recorded",
		zap.String("player", player),
		zap.String("session_id", res.SessionID),
		zap.String("outcome", res.Outcome()),
		zap.String("status", res.Status.String()),
		zap.Int("plies", res.Plies),
		zap.Int("streak", profile.Streak),
	)
	return profile, nil
}

// Profile returns the stored tally, or nil when the player has none.
func (r *Recorder) Profile(ctx context.Context, player string) (*Profile, error) {
	return r.repo.GetProfile(ctx, strings.TrimSpace(player))
}
