package stats

import (
	"strings"
	"time"

	"github.com/park285/cheese-chess/internal/rules"
)

// Profile is the running win/loss tally of one player against the AI.
type Profile struct {
	Player       string    `json:"player"`
	GamesPlayed  int       `json:"games_played"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	Draws        int       `json:"draws"`
	Streak       int       `json:"streak"`
	StreakType   string    `json:"streak_type"`
	LastResult   string    `json:"last_result"`
	LastPlayedAt time.Time `json:"last_played_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// Result describes a finished game from the session layer. The human plays light.
type Result struct {
	Player    string
	SessionID string
	Winner    rules.Color
	Status    rules.Status
	Plies     int
	EndedAt   time.Time
}

const (
	OutcomeWin  = "win"
	OutcomeLoss = "loss"
	OutcomeDraw = "draw"
)

// Outcome is the result from the human side's point of view.
func (r Result) Outcome() string {
	switch r.Winner {
	case rules.Light:
		return OutcomeWin
	case rules.Dark:
		return OutcomeLoss
	default:
		return OutcomeDraw
	}
}

// applyResult folds a finished game into profile, creating it when nil.
func applyResult(profile *Profile, player string, res Result) *Profile {
	endedAt := res.EndedAt
	if endedAt.IsZero() {
		endedAt = time.Now()
	}
	if profile == nil {
		profile = &Profile{
			Player:    strings.TrimSpace(player),
			CreatedAt: endedAt,
		}
	}

	profile.GamesPlayed++
	profile.LastPlayedAt = endedAt
	profile.UpdatedAt = endedAt

	resultType := res.Outcome()
	switch resultType {
	case OutcomeWin:
		profile.Wins++
	case OutcomeLoss:
		profile.Losses++
	default:
		profile.Draws++
	}
	profile.LastResult = res.Status.String()

	if profile.StreakType == resultType {
		profile.Streak++
	} else {
		profile.Streak = 1
		profile.StreakType = resultType
	}
	return profile
}
