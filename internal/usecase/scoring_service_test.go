package usecase

import (
	"context"
	"testing"

	"github.com/wicketplay/fantasy-cricket/internal/domain/cricket"
	"github.com/wicketplay/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/wicketplay/fantasy-cricket/internal/platform/logging"
)

func TestPointsFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stats cricket.Stats
		want  int
	}{
		{
			name:  "single run",
			stats: cricket.Stats{Runs: 1, BallsFaced: 2},
			want:  1,
		},
		{
			name:  "boundaries stack on runs",
			stats: cricket.Stats{Runs: 10, BallsFaced: 8, Fours: 1, Sixes: 1},
			want:  10 + 1 + 2,
		},
		{
			name:  "half century bonus",
			stats: cricket.Stats{Runs: 50, BallsFaced: 45, StrikeRate: 111.11},
			want:  50 + 8,
		},
		{
			name:  "century supersedes half century",
			stats: cricket.Stats{Runs: 100, BallsFaced: 80, StrikeRate: 125},
			want:  100 + 16,
		},
		{
			name:  "duck needs a ball faced",
			stats: cricket.Stats{Runs: 0, BallsFaced: 3},
			want:  -2,
		},
		{
			name:  "did not bat is not a duck",
			stats: cricket.Stats{Runs: 0, BallsFaced: 0},
			want:  0,
		},
		{
			name:  "strike rate bonus above 170",
			stats: cricket.Stats{Runs: 20, BallsFaced: 10, StrikeRate: 200},
			want:  20 + 6,
		},
		{
			name:  "strike rate bonus at 150",
			stats: cricket.Stats{Runs: 15, BallsFaced: 10, StrikeRate: 150},
			want:  15 + 4,
		},
		{
			name:  "strike rate bonus at 130",
			stats: cricket.Stats{Runs: 13, BallsFaced: 10, StrikeRate: 130},
			want:  13 + 2,
		},
		{
			name:  "strike rate penalty below 70",
			stats: cricket.Stats{Runs: 9, BallsFaced: 14, StrikeRate: 64.28},
			want:  9 - 2,
		},
		{
			name:  "strike rate penalty below 60",
			stats: cricket.Stats{Runs: 5, BallsFaced: 12, StrikeRate: 41.66},
			want:  5 - 4,
		},
		{
			name:  "no strike rate bonus under ten balls",
			stats: cricket.Stats{Runs: 18, BallsFaced: 9, StrikeRate: 200},
			want:  18,
		},
		{
			name:  "wickets and maidens",
			stats: cricket.Stats{Wickets: 2, OversBowled: 4, Maidens: 1, EconomyRate: 7.5},
			want:  2*25 + 12,
		},
		{
			name:  "five wicket haul bonus",
			stats: cricket.Stats{Wickets: 5, OversBowled: 4, EconomyRate: 8},
			want:  5*25 + 16,
		},
		{
			name:  "economy bonus under five",
			stats: cricket.Stats{Wickets: 1, OversBowled: 4, EconomyRate: 4.5},
			want:  25 + 6,
		},
		{
			name:  "economy penalty at eleven",
			stats: cricket.Stats{Wickets: 1, OversBowled: 3, EconomyRate: 11},
			want:  25 - 4,
		},
		{
			name:  "economy penalty at ten",
			stats: cricket.Stats{Wickets: 0, OversBowled: 2, EconomyRate: 10.2},
			want:  -2,
		},
		{
			name:  "no economy bonus under two overs",
			stats: cricket.Stats{Wickets: 1, OversBowled: 1, EconomyRate: 3},
			want:  25,
		},
		{
			name:  "fielding points",
			stats: cricket.Stats{Catches: 2, Stumpings: 1, RunOuts: 1},
			want:  2*8 + 12 + 12,
		},
		{
			name: "all rounder combines disciplines",
			stats: cricket.Stats{
				Runs: 55, BallsFaced: 30, Fours: 3, Sixes: 1, StrikeRate: 183.33,
				Wickets: 1, OversBowled: 2, EconomyRate: 6.5,
				Catches: 1,
			},
			// 55 + 3 + 2 + 8 fifty + 6 SR, 25 + 2 ER, 8 catch.
			want: 74 + 27 + 8,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := PointsFor(tt.stats); got != tt.want {
				t.Fatalf("PointsFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoringService_RefreshMatch(t *testing.T) {
	t.Parallel()

	statsRepo := memory.NewPlayerStatsRepository()
	svc := NewScoringService(statsRepo, nil, logging.NewNop())

	scorecard := cricket.Scorecard{
		MatchExternalID: "ext-1",
		Players: map[string]cricket.Stats{
			"V Kohli":   {Runs: 82, BallsFaced: 50, Fours: 6, Sixes: 2, StrikeRate: 164},
			"J Bumrah":  {Wickets: 3, OversBowled: 4, EconomyRate: 5.5},
			"MS Dhoni":  {Runs: 0, BallsFaced: 1, Stumpings: 1},
			"R Jadeja":  {Catches: 2},
			"T Boult":   {},
		},
	}
	if err := svc.RefreshMatch(context.Background(), "M1", scorecard); err != nil {
		t.Fatalf("RefreshMatch() error = %v", err)
	}

	rows, err := statsRepo.ListByMatchID(context.Background(), "M1")
	if err != nil {
		t.Fatalf("ListByMatchID() error = %v", err)
	}
	if len(rows) != len(scorecard.Players) {
		t.Fatalf("expected %d rows, got %d", len(scorecard.Players), len(rows))
	}

	kohli, found, err := statsRepo.GetByMatchAndPlayer(context.Background(), "M1", "V Kohli")
	if err != nil || !found {
		t.Fatalf("GetByMatchAndPlayer() found=%t err=%v", found, err)
	}
	// 82 + 6 fours + 4 six points + 8 fifty + 4 SR bonus.
	if kohli.TotalPoints != 104 {
		t.Fatalf("expected 104 points, got %d", kohli.TotalPoints)
	}

	// A second run with the same snapshot must land on the same totals.
	if err := svc.RefreshMatch(context.Background(), "M1", scorecard); err != nil {
		t.Fatalf("RefreshMatch() rerun error = %v", err)
	}
	again, _, _ := statsRepo.GetByMatchAndPlayer(context.Background(), "M1", "V Kohli")
	if again.TotalPoints != kohli.TotalPoints {
		t.Fatalf("rerun changed points: %d -> %d", kohli.TotalPoints, again.TotalPoints)
	}
}

func TestScoringService_RefreshMatch_RequiresMatchID(t *testing.T) {
	t.Parallel()

	svc := NewScoringService(memory.NewPlayerStatsRepository(), nil, logging.NewNop())
	err := svc.RefreshMatch(context.Background(), "", cricket.Scorecard{})
	assertErrorIs(t, err, ErrInvalidInput)
}
