package chessdto

import "time"

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
}
