package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/wicketplay/fantasy-cricket/internal/domain/team"
	"github.com/wicketplay/fantasy-cricket/internal/platform/logging"
)

const (
	captainMultiplier     = 2.0
	viceCaptainMultiplier = 1.5
)

// LeaderboardEntry is one ranked row of a contest leaderboard.
type LeaderboardEntry struct {
	Team team.Team
	Rank int
}

// LeaderboardService recomputes fantasy team totals from per-player points
// and produces ranked contest leaderboards.
type LeaderboardService struct {
	teamRepo team.Repository
	logger   *logging.Logger
}

func NewLeaderboardService(teamRepo team.Repository, logger *logging.Logger) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeaderboardService{teamRepo: teamRepo, logger: logger}
}

// RecomputeTeamPoints overwrites every team total for the match from the
// latest per-player points. Totals replace the prior value, they never
// accumulate, so running the same snapshot twice lands on the same number.
func (s *LeaderboardService) RecomputeTeamPoints(ctx context.Context, matchID string, pointsByPlayer map[string]int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.Leaderboard.RecomputeTeamPoints")
	defer span.End()

	if matchID == "" {
		return fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	teams, err := s.teamRepo.ListByMatchID(ctx, matchID)
	if err != nil {
		return fmt.Errorf("list teams by match: %w", err)
	}

	for _, t := range teams {
		total := TeamTotal(t, pointsByPlayer)
		if err := s.teamRepo.UpdatePoints(ctx, t.ID, total); err != nil {
			s.logger.ErrorContext(ctx, "update team points failed",
				"team_id", t.ID,
				"match_id", matchID,
				"error", err,
			)
		}
	}
	return nil
}

// TeamTotal sums a team's selected players' points with the captain and
// vice-captain multipliers. A player gets at most one multiplier; the
// captain's takes precedence if a corrupt record names the same player for
// both roles.
func TeamTotal(t team.Team, pointsByPlayer map[string]int) float64 {
	var total float64
	for _, name := range t.Players {
		points := float64(pointsByPlayer[name])
		switch name {
		case t.Captain:
			points *= captainMultiplier
		case t.ViceCaptain:
			points *= viceCaptainMultiplier
		}
		total += points
	}
	return total
}

// GetLeaderboard returns up to limit entries ordered by total points
// descending, ties broken by earlier entry creation. Ranks are dense 1..n
// positions in that ordering and do not depend on the limit, so a team's
// rank is stable across page sizes.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, contestID string, limit int) ([]LeaderboardEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Leaderboard.GetLeaderboard")
	defer span.End()

	if contestID == "" {
		return nil, fmt.Errorf("%w: contest id is required", ErrInvalidInput)
	}

	teams, err := s.teamRepo.ListByContestID(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("list teams by contest: %w", err)
	}

	sort.SliceStable(teams, func(i, j int) bool {
		if teams[i].TotalPoints != teams[j].TotalPoints {
			return teams[i].TotalPoints > teams[j].TotalPoints
		}
		return teams[i].CreatedAt.Before(teams[j].CreatedAt)
	})

	entries := make([]LeaderboardEntry, 0, len(teams))
	for i, t := range teams {
		entries = append(entries, LeaderboardEntry{Team: t, Rank: i + 1})
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
