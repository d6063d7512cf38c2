package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/wicketplay/fantasy-cricket/internal/domain/cricket"
	"github.com/wicketplay/fantasy-cricket/internal/domain/playerstats"
	"github.com/wicketplay/fantasy-cricket/internal/platform/logging"
)

// Scoring rule values, applied per player against the cumulative
// match-to-date snapshot.
const (
	pointsPerRun       = 1
	pointsPerFour      = 1
	pointsPerSix       = 2
	pointsCentury      = 16
	pointsHalfCentury  = 8
	pointsDuck         = -2
	pointsPerWicket    = 25
	pointsPerMaiden    = 12
	pointsFiveWickets  = 16
	pointsPerCatch     = 8
	pointsPerStumping  = 12
	pointsPerRunOut    = 12
	minBallsForSRBonus = 10
	minOversForERBonus = 2
)

// PointsFor converts one canonical snapshot into fantasy points. It is a
// pure function: same snapshot in, same total out.
func PointsFor(stats cricket.Stats) int {
	return battingPoints(stats) + bowlingPoints(stats) + fieldingPoints(stats)
}

func battingPoints(stats cricket.Stats) int {
	points := stats.Runs*pointsPerRun +
		stats.Fours*pointsPerFour +
		stats.Sixes*pointsPerSix

	// Milestone bonuses are mutually exclusive: a century supersedes the
	// half-century, and a duck only penalizes a player who faced a ball.
	switch {
	case stats.Runs >= 100:
		points += pointsCentury
	case stats.Runs >= 50:
		points += pointsHalfCentury
	case stats.Runs == 0 && stats.BallsFaced > 0:
		points += pointsDuck
	}

	points += strikeRateBonus(stats)
	return points
}

func strikeRateBonus(stats cricket.Stats) int {
	if stats.BallsFaced < minBallsForSRBonus {
		return 0
	}
	sr := stats.StrikeRate
	switch {
	case sr > 170:
		return 6
	case sr >= 150:
		return 4
	case sr >= 130:
		return 2
	case sr < 60:
		return -4
	case sr < 70:
		return -2
	default:
		return 0
	}
}

func bowlingPoints(stats cricket.Stats) int {
	points := stats.Wickets*pointsPerWicket + stats.Maidens*pointsPerMaiden
	if stats.Wickets >= 5 {
		points += pointsFiveWickets
	}
	points += economyBonus(stats)
	return points
}

func economyBonus(stats cricket.Stats) int {
	if stats.OversBowled < minOversForERBonus {
		return 0
	}
	er := stats.EconomyRate
	switch {
	case er < 5:
		return 6
	case er < 6:
		return 4
	case er < 7:
		return 2
	case er >= 11:
		return -4
	case er >= 10:
		return -2
	default:
		return 0
	}
}

func fieldingPoints(stats cricket.Stats) int {
	return stats.Catches*pointsPerCatch +
		stats.Stumpings*pointsPerStumping +
		stats.RunOuts*pointsPerRunOut
}

// ScoringService persists per-player snapshots and triggers team total
// recomputation after every refresh.
type ScoringService struct {
	statsRepo  playerstats.Repository
	aggregator *LeaderboardService
	logger     *logging.Logger
	now        func() time.Time
}

func NewScoringService(statsRepo playerstats.Repository, aggregator *LeaderboardService, logger *logging.Logger) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoringService{
		statsRepo:  statsRepo,
		aggregator: aggregator,
		logger:     logger,
		now:        time.Now,
	}
}

// RefreshMatch upserts one PlayerStats row per player from the scorecard
// snapshot, overwriting whatever was there, then recomputes team totals for
// the match. Re-running with the same snapshot changes nothing.
func (s *ScoringService) RefreshMatch(ctx context.Context, matchID string, scorecard cricket.Scorecard) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.Scoring.RefreshMatch")
	defer span.End()

	if matchID == "" {
		return fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	pointsByPlayer := make(map[string]int, len(scorecard.Players))
	now := s.now()
	for name, stats := range scorecard.Players {
		total := PointsFor(stats)
		pointsByPlayer[name] = total

		record := playerstats.PlayerStats{
			MatchID:     matchID,
			PlayerName:  name,
			Runs:        stats.Runs,
			BallsFaced:  stats.BallsFaced,
			Fours:       stats.Fours,
			Sixes:       stats.Sixes,
			StrikeRate:  stats.StrikeRate,
			Wickets:     stats.Wickets,
			OversBowled: stats.OversBowled,
			Maidens:     stats.Maidens,
			EconomyRate: stats.EconomyRate,
			Catches:     stats.Catches,
			Stumpings:   stats.Stumpings,
			RunOuts:     stats.RunOuts,
			TotalPoints: total,
			UpdatedAt:   now,
		}
		if err := s.statsRepo.Upsert(ctx, record); err != nil {
			return fmt.Errorf("upsert player stats for %q: %w", name, err)
		}
	}

	if s.aggregator == nil {
		return nil
	}
	if err := s.aggregator.RecomputeTeamPoints(ctx, matchID, pointsByPlayer); err != nil {
		return fmt.Errorf("recompute team points: %w", err)
	}
	return nil
}
