package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/wicketplay/fantasy-cricket/internal/domain/team"
	"github.com/wicketplay/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/wicketplay/fantasy-cricket/internal/platform/logging"
)

func TestTeamTotal(t *testing.T) {
	t.Parallel()

	points := map[string]int{"A": 10, "B": 20, "C": 30}

	tests := []struct {
		name string
		team team.Team
		want float64
	}{
		{
			name: "captain doubles and vice captain gets half extra",
			team: team.Team{Players: []string{"A", "B", "C"}, Captain: "C", ViceCaptain: "B"},
			want: 10 + 30 + 60,
		},
		{
			name: "unknown players score zero",
			team: team.Team{Players: []string{"A", "X"}, Captain: "X", ViceCaptain: "A"},
			want: 15,
		},
		{
			name: "captain precedence when both roles name one player",
			team: team.Team{Players: []string{"A", "B"}, Captain: "A", ViceCaptain: "A"},
			want: 20 + 20,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TeamTotal(tt.team, points); got != tt.want {
				t.Fatalf("TeamTotal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLeaderboardService_GetLeaderboard(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	teamRepo := memory.NewTeamRepository(
		team.Team{ID: "T1", ContestID: "C1", TotalPoints: 90, CreatedAt: base.Add(2 * time.Minute)},
		team.Team{ID: "T2", ContestID: "C1", TotalPoints: 120, CreatedAt: base},
		// Same score as T1 but entered first, so it ranks above it.
		team.Team{ID: "T3", ContestID: "C1", TotalPoints: 90, CreatedAt: base.Add(time.Minute)},
		team.Team{ID: "T4", ContestID: "other", TotalPoints: 500, CreatedAt: base},
	)
	svc := NewLeaderboardService(teamRepo, logging.NewNop())

	entries, err := svc.GetLeaderboard(context.Background(), "C1", 0)
	if err != nil {
		t.Fatalf("GetLeaderboard() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	wantOrder := []string{"T2", "T3", "T1"}
	for i, want := range wantOrder {
		if entries[i].Team.ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, entries[i].Team.ID)
		}
		if entries[i].Rank != i+1 {
			t.Fatalf("position %d: expected rank %d, got %d", i, i+1, entries[i].Rank)
		}
	}

	// The limit truncates rows, not ranks.
	top, err := svc.GetLeaderboard(context.Background(), "C1", 2)
	if err != nil {
		t.Fatalf("GetLeaderboard() with limit error = %v", err)
	}
	if len(top) != 2 || top[1].Team.ID != "T3" || top[1].Rank != 2 {
		t.Fatalf("unexpected limited leaderboard: %+v", top)
	}
}

func TestLeaderboardService_RecomputeTeamPoints(t *testing.T) {
	t.Parallel()

	teamRepo := memory.NewTeamRepository(
		team.Team{ID: "T1", MatchID: "M1", ContestID: "C1", Players: []string{"A", "B"}, Captain: "A", ViceCaptain: "B", TotalPoints: 999},
		team.Team{ID: "T2", MatchID: "M1", ContestID: "C1", Players: []string{"B"}, Captain: "B", ViceCaptain: "A"},
	)
	svc := NewLeaderboardService(teamRepo, logging.NewNop())

	points := map[string]int{"A": 10, "B": 40}
	if err := svc.RecomputeTeamPoints(context.Background(), "M1", points); err != nil {
		t.Fatalf("RecomputeTeamPoints() error = %v", err)
	}

	t1, _, _ := teamRepo.GetByID(context.Background(), "T1")
	if t1.TotalPoints != 20+60 {
		t.Fatalf("T1 total = %v, want 80", t1.TotalPoints)
	}
	t2, _, _ := teamRepo.GetByID(context.Background(), "T2")
	if t2.TotalPoints != 80 {
		t.Fatalf("T2 total = %v, want 80", t2.TotalPoints)
	}

	// Totals replace, never accumulate.
	if err := svc.RecomputeTeamPoints(context.Background(), "M1", points); err != nil {
		t.Fatalf("RecomputeTeamPoints() rerun error = %v", err)
	}
	t1, _, _ = teamRepo.GetByID(context.Background(), "T1")
	if t1.TotalPoints != 80 {
		t.Fatalf("rerun changed T1 total to %v", t1.TotalPoints)
	}
}
