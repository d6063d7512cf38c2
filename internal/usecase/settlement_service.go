package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wicketplay/fantasy-cricket/internal/domain/contest"
	"github.com/wicketplay/fantasy-cricket/internal/domain/team"
	"github.com/wicketplay/fantasy-cricket/internal/domain/wallet"
	"github.com/wicketplay/fantasy-cricket/internal/platform/logging"
)

// SettlementService ranks a finished contest and pays the prizes. Two
// idempotency layers keep retries harmless: the contest-status guard up
// front, and the per-(contest, rank) existence check on every winnings
// entry.
type SettlementService struct {
	contestRepo contest.Repository
	teamRepo    team.Repository
	leaderboard *LeaderboardService
	ledger      wallet.Ledger
	wallet      *WalletService
	notifier    Notifier
	logger      *logging.Logger
	now         func() time.Time
}

func NewSettlementService(
	contestRepo contest.Repository,
	teamRepo team.Repository,
	leaderboard *LeaderboardService,
	ledger wallet.Ledger,
	walletSvc *WalletService,
	notifier Notifier,
	logger *logging.Logger,
) *SettlementService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SettlementService{
		contestRepo: contestRepo,
		teamRepo:    teamRepo,
		leaderboard: leaderboard,
		ledger:      ledger,
		wallet:      walletSvc,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

// SettleContest pays a contest out exactly once. Credits happen before the
// status flip, so a crash mid-way leaves the contest unsettled and the next
// cycle resumes, skipping ranks that were already paid.
func (s *SettlementService) SettleContest(ctx context.Context, contestID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.Settlement.SettleContest")
	defer span.End()

	c, found, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		return fmt.Errorf("get contest: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: contest %s", ErrNotFound, contestID)
	}
	if c.Status == contest.StatusCompleted || c.Status == contest.StatusCancelled {
		return nil
	}

	entries, err := s.leaderboard.GetLeaderboard(ctx, c.ID, c.MaxSpots)
	if err != nil {
		return fmt.Errorf("get leaderboard: %w", err)
	}

	distribution := c.Distribution
	if len(distribution) == 0 {
		distribution = DefaultPrizeDistribution(c.PrizePool, c.JoinedUsers, c.MaxSpots)
	}

	byRank := make(map[int]LeaderboardEntry, len(entries))
	for _, e := range entries {
		byRank[e.Rank] = e
		if err := s.teamRepo.UpdateRank(ctx, e.Team.ID, e.Rank); err != nil {
			s.logger.ErrorContext(ctx, "record final rank failed",
				"contest_id", c.ID,
				"team_id", e.Team.ID,
				"rank", e.Rank,
				"error", err,
			)
		}
	}

	ranks := make([]int, 0, len(distribution))
	for rank := range distribution {
		ranks = append(ranks, rank)
	}
	sort.Ints(ranks)

	var failed int
	for _, rank := range ranks {
		amount := distribution[rank]
		entry, occupied := byRank[rank]
		if amount <= 0 || !occupied {
			continue
		}
		if err := s.payRank(ctx, c, entry, rank, amount); err != nil {
			failed++
			s.logger.ErrorContext(ctx, "prize credit failed",
				"contest_id", c.ID,
				"rank", rank,
				"user_id", entry.Team.UserID,
				"error", err,
			)
		}
	}
	if failed > 0 {
		// Leave the contest unsettled so the next cycle retries the
		// unpaid ranks.
		return fmt.Errorf("settle contest %s: %d prize credits failed", c.ID, failed)
	}

	if _, err := s.contestRepo.MarkCompleted(ctx, c.ID); err != nil {
		return fmt.Errorf("mark contest completed: %w", err)
	}

	s.logger.InfoContext(ctx, "contest settled",
		"contest_id", c.ID,
		"participants", c.JoinedUsers,
		"paid_ranks", len(ranks)-failed,
	)
	return nil
}

// SettleMatchContests settles every non-final contest of a completed match.
// Per-contest failures are isolated and raised to the operator channel so a
// stuck payout never blocks the other contests.
func (s *SettlementService) SettleMatchContests(ctx context.Context, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.Settlement.SettleMatchContests")
	defer span.End()

	contests, err := s.contestRepo.ListByMatchID(ctx, matchID)
	if err != nil {
		return fmt.Errorf("list contests: %w", err)
	}

	var failed int
	for _, c := range contests {
		if c.Status == contest.StatusCompleted || c.Status == contest.StatusCancelled {
			continue
		}
		if err := s.SettleContest(ctx, c.ID); err != nil {
			failed++
			s.logger.ErrorContext(ctx, "contest settlement failed",
				"contest_id", c.ID,
				"match_id", matchID,
				"error", err,
			)
			if alertErr := s.notifier.Alert(ctx,
				"Contest settlement failed",
				fmt.Sprintf("Contest %s (match %s) could not be settled: %v", c.ID, matchID, err),
			); alertErr != nil {
				s.logger.WarnContext(ctx, "settlement alert failed",
					"contest_id", c.ID,
					"error", alertErr,
				)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("settle match %s contests: %d contests failed", matchID, failed)
	}
	return nil
}

// CancelContest cancels an unsettled contest and refunds every entry fee.
// The status flip is the idempotency gate: only the caller that wins the
// conditional transition performs the refunds, so retries never pay twice.
func (s *SettlementService) CancelContest(ctx context.Context, contestID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.Settlement.CancelContest")
	defer span.End()

	c, found, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		return fmt.Errorf("get contest: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: contest %s", ErrNotFound, contestID)
	}
	if c.Status == contest.StatusCompleted || c.Status == contest.StatusCancelled {
		return nil
	}

	changed, err := s.contestRepo.UpdateStatus(ctx, c.ID, c.Status, contest.StatusCancelled)
	if err != nil {
		return fmt.Errorf("cancel contest: %w", err)
	}
	if !changed {
		return nil
	}

	if c.EntryFee > 0 {
		teams, err := s.teamRepo.ListByContestID(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("list contest entries: %w", err)
		}
		var failed int
		for _, t := range teams {
			if _, err := s.wallet.Credit(ctx, CreditInput{
				UserID:      t.UserID,
				Amount:      c.EntryFee,
				Type:        wallet.TypeDeposit,
				Description: fmt.Sprintf("entry fee refund for cancelled %s", c.Name),
				ContestID:   c.ID,
			}); err != nil {
				failed++
				s.logger.ErrorContext(ctx, "cancellation refund failed",
					"contest_id", c.ID,
					"user_id", t.UserID,
					"error", err,
				)
			}
		}
		if failed > 0 {
			if alertErr := s.notifier.Alert(ctx,
				"Contest cancellation refunds incomplete",
				fmt.Sprintf("Contest %s cancelled with %d of %d refunds failed.", c.ID, failed, len(teams)),
			); alertErr != nil {
				s.logger.WarnContext(ctx, "cancellation alert failed",
					"contest_id", c.ID,
					"error", alertErr,
				)
			}
			return fmt.Errorf("cancel contest %s: %d refunds failed", c.ID, failed)
		}
	}

	s.logger.InfoContext(ctx, "contest cancelled",
		"contest_id", c.ID,
		"refunded_entries", c.JoinedUsers,
	)
	return nil
}

// CancelMatchContests cancels and refunds every open contest of a match
// that will never be played.
func (s *SettlementService) CancelMatchContests(ctx context.Context, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.Settlement.CancelMatchContests")
	defer span.End()

	contests, err := s.contestRepo.ListByMatchID(ctx, matchID)
	if err != nil {
		return fmt.Errorf("list contests: %w", err)
	}

	var failed int
	for _, c := range contests {
		if c.Status == contest.StatusCompleted || c.Status == contest.StatusCancelled {
			continue
		}
		if err := s.CancelContest(ctx, c.ID); err != nil {
			failed++
			s.logger.ErrorContext(ctx, "contest cancellation failed",
				"contest_id", c.ID,
				"match_id", matchID,
				"error", err,
			)
		}
	}
	if failed > 0 {
		return fmt.Errorf("cancel match %s contests: %d contests failed", matchID, failed)
	}
	return nil
}

func (s *SettlementService) payRank(ctx context.Context, c contest.Contest, entry LeaderboardEntry, rank int, amount int64) error {
	exists, err := s.ledger.ExistsWinnings(ctx, c.ID, rank)
	if err != nil {
		return fmt.Errorf("check winnings: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := s.wallet.Credit(ctx, CreditInput{
		UserID:      entry.Team.UserID,
		Amount:      amount,
		Type:        wallet.TypeWinnings,
		Description: fmt.Sprintf("prize for rank %d in %s", rank, c.Name),
		ContestID:   c.ID,
		Rank:        rank,
	}); err != nil {
		return err
	}

	if err := s.notifier.Notify(ctx, entry.Team.UserID,
		"You won!",
		fmt.Sprintf("Rank %d in %s pays %d. Congratulations!", rank, c.Name, amount),
	); err != nil {
		s.logger.WarnContext(ctx, "winner notification failed",
			"contest_id", c.ID,
			"user_id", entry.Team.UserID,
			"error", err,
		)
	}
	return nil
}

// Default payout tiers by participant count. Shares are computed in integer
// arithmetic, so rounding dust stays in the pool rather than overpaying.
func DefaultPrizeDistribution(prizePool int64, joined, maxSpots int) map[int]int64 {
	if prizePool <= 0 {
		return nil
	}
	if maxSpots >= 100 {
		return largeContestDistribution(prizePool, maxSpots)
	}

	switch {
	case joined >= 10:
		return map[int]int64{
			1: prizePool * 50 / 100,
			2: prizePool * 30 / 100,
			3: prizePool * 20 / 100,
		}
	case joined >= 5:
		return map[int]int64{
			1: prizePool * 60 / 100,
			2: prizePool * 40 / 100,
		}
	default:
		return map[int]int64{1: prizePool}
	}
}

// largeContestDistribution pays the top three 25/15/10 percent and splits
// half the pool across the remaining winners. Winners is 30 percent of the
// slots, clamped to at least four so the split below rank three never
// divides by zero.
func largeContestDistribution(prizePool int64, maxSpots int) map[int]int64 {
	winners := maxSpots * 30 / 100
	if winners < 4 {
		winners = 4
	}

	dist := map[int]int64{
		1: prizePool * 25 / 100,
		2: prizePool * 15 / 100,
		3: prizePool * 10 / 100,
	}
	share := prizePool * 50 / 100 / int64(winners-3)
	for rank := 4; rank <= winners; rank++ {
		dist[rank] = share
	}
	return dist
}
