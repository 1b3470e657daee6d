package stats

import (
	"context"
	"testing"
	"time"

	"github.com/park285/cheese-chess/internal/rules"
)

func TestRecorderStreaks(t *testing.T) {
	rec, err := NewRecorder(NewMemoryRepository(), nil)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	steps := []struct {
		winner     rules.Color
		status     rules.Status
		wantStreak int
		wantType   string
	}{
		{rules.Light, rules.StatusCheckmate, 1, OutcomeWin},
		{rules.Light, rules.StatusKingCaptured, 2, OutcomeWin},
		{rules.Dark, rules.StatusCheckmate, 1, OutcomeLoss},
		{rules.NoColor, rules.StatusStalemate, 1, OutcomeDraw},
		{rules.NoColor, rules.StatusStalemate, 2, OutcomeDraw},
	}
	for i, s := range steps {
		p, err := rec.Record(ctx, Result{Player: "alice", Winner: s.winner, Status: s.status, EndedAt: now})
		if err != nil {
			t.Fatalf("step %d: Record: %v", i, err)
		}
		if p.Streak != s.wantStreak || p.StreakType != s.wantType {
			t.Fatalf("step %d: streak=%d/%s want %d/%s", i, p.Streak, p.StreakType, s.wantStreak, s.wantType)
		}
	}

	p, err := rec.Profile(ctx, "alice")
	if err != nil || p == nil {
		t.Fatalf("Profile: %v %v", p, err)
	}
	if p.GamesPlayed != 5 || p.Wins != 2 || p.Losses != 1 || p.Draws != 2 {
		t.Fatalf("unexpected tally: %+v", p)
	}
	if p.LastResult != "stalemate" || !p.LastPlayedAt.Equal(now) || !p.CreatedAt.Equal(now) {
		t.Fatalf("unexpected metadata: %+v", p)
	}
}

func TestRecorderRequiresPlayer(t *testing.T) {
	rec, _ := NewRecorder(NewMemoryRepository(), nil)
	if _, err := rec.Record(context.Background(), Result{Winner: rules.Light}); err == nil {
		t.Fatalf("expected error for empty player")
	}
	if _, err := NewRecorder(nil, nil); err == nil {
		t.Fatalf("expected error for nil repository")
	}
}

func TestMemoryRepositoryReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	if p, err := repo.GetProfile(ctx, "bob"); err != nil || p != nil {
		t.Fatalf("missing profile should be nil,nil; got %v,%v", p, err)
	}
	_ = repo.UpsertProfile(ctx, &Profile{Player: "bob", Wins: 1})
	p, _ := repo.GetProfile(ctx, "bob")
	p.Wins = 99
	again, _ := repo.GetProfile(ctx, "bob")
	if again.Wins != 1 {
		t.Fatalf("stored profile was mutated through a returned copy")
	}
}
