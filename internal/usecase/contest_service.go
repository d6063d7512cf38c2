package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/wicketplay/fantasy-cricket/internal/domain/contest"
	"github.com/wicketplay/fantasy-cricket/internal/domain/match"
	"github.com/wicketplay/fantasy-cricket/internal/domain/team"
	"github.com/wicketplay/fantasy-cricket/internal/domain/wallet"
	idgen "github.com/wicketplay/fantasy-cricket/internal/platform/id"
	"github.com/wicketplay/fantasy-cricket/internal/platform/logging"
)

// ContestService handles contest entry and contest queries.
type ContestService struct {
	contestRepo contest.Repository
	matchRepo   match.Repository
	teamRepo    team.Repository
	wallet      *WalletService
	idGen       idgen.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewContestService(
	contestRepo contest.Repository,
	matchRepo match.Repository,
	teamRepo team.Repository,
	walletSvc *WalletService,
	idGen idgen.Generator,
	logger *logging.Logger,
) *ContestService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ContestService{
		contestRepo: contestRepo,
		matchRepo:   matchRepo,
		teamRepo:    teamRepo,
		wallet:      walletSvc,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

// JoinContestInput carries one user's entry submission. Captain and
// vice-captain are required up front and must be two distinct members of
// the selected players.
type JoinContestInput struct {
	UserID      string
	ContestID   string
	Players     []string
	Captain     string
	ViceCaptain string
}

func (s *ContestService) JoinContest(ctx context.Context, input JoinContestInput) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Contest.JoinContest")
	defer span.End()

	if err := validateEntry(input); err != nil {
		return team.Team{}, err
	}

	c, found, err := s.contestRepo.GetByID(ctx, input.ContestID)
	if err != nil {
		return team.Team{}, fmt.Errorf("get contest: %w", err)
	}
	if !found {
		return team.Team{}, fmt.Errorf("%w: contest %s", ErrNotFound, input.ContestID)
	}
	if c.Status != contest.StatusOpen {
		return team.Team{}, fmt.Errorf("%w: contest %s is %s", ErrInvalidInput, c.ID, c.Status)
	}

	m, found, err := s.matchRepo.GetByID(ctx, c.MatchID)
	if err != nil {
		return team.Team{}, fmt.Errorf("get match: %w", err)
	}
	if !found {
		return team.Team{}, fmt.Errorf("%w: match %s", ErrNotFound, c.MatchID)
	}
	if m.Status != match.StatusUpcoming {
		return team.Team{}, fmt.Errorf("%w: entry closed, match is %s", ErrInvalidInput, m.Status)
	}

	joined, err := s.teamRepo.ExistsByUserAndContest(ctx, input.UserID, c.ID)
	if err != nil {
		return team.Team{}, fmt.Errorf("check existing entry: %w", err)
	}
	if joined {
		return team.Team{}, fmt.Errorf("%w: contest %s", ErrAlreadyJoined, c.ID)
	}

	// Take the slot first with a conditional increment so two racing
	// entries can never overshoot max_spots.
	taken, err := s.contestRepo.IncrementJoined(ctx, c.ID)
	if err != nil {
		return team.Team{}, fmt.Errorf("take contest slot: %w", err)
	}
	if !taken {
		return team.Team{}, fmt.Errorf("%w: contest %s", ErrContestFull, c.ID)
	}

	if c.EntryFee > 0 {
		if _, err := s.wallet.Debit(ctx, DebitInput{
			UserID:      input.UserID,
			Amount:      c.EntryFee,
			Type:        wallet.TypeContestEntry,
			Description: fmt.Sprintf("entry fee for %s", c.Name),
			ContestID:   c.ID,
		}); err != nil {
			s.releaseSlot(ctx, c.ID)
			return team.Team{}, err
		}
	}

	teamID, err := s.idGen.NewID(idgen.PrefixTeam)
	if err != nil {
		s.refundEntry(ctx, input.UserID, c)
		return team.Team{}, fmt.Errorf("generate team id: %w", err)
	}

	now := s.now()
	t := team.Team{
		ID:          teamID,
		UserID:      input.UserID,
		ContestID:   c.ID,
		MatchID:     c.MatchID,
		Players:     append([]string(nil), input.Players...),
		Captain:     input.Captain,
		ViceCaptain: input.ViceCaptain,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.teamRepo.Create(ctx, t); err != nil {
		s.refundEntry(ctx, input.UserID, c)
		return team.Team{}, fmt.Errorf("create team: %w", err)
	}

	s.logger.InfoContext(ctx, "contest entry accepted",
		"contest_id", c.ID,
		"user_id", input.UserID,
		"team_id", t.ID,
	)
	return t, nil
}

func (s *ContestService) releaseSlot(ctx context.Context, contestID string) {
	if err := s.contestRepo.DecrementJoined(ctx, contestID); err != nil {
		s.logger.ErrorContext(ctx, "release contest slot failed",
			"contest_id", contestID,
			"error", err,
		)
	}
}

func (s *ContestService) refundEntry(ctx context.Context, userID string, c contest.Contest) {
	s.releaseSlot(ctx, c.ID)
	if c.EntryFee <= 0 {
		return
	}
	if _, err := s.wallet.Credit(ctx, CreditInput{
		UserID:      userID,
		Amount:      c.EntryFee,
		Type:        wallet.TypeDeposit,
		Description: fmt.Sprintf("entry fee refund for %s", c.Name),
		ContestID:   c.ID,
	}); err != nil {
		s.logger.ErrorContext(ctx, "entry fee refund failed",
			"contest_id", c.ID,
			"user_id", userID,
			"error", err,
		)
	}
}

func validateEntry(input JoinContestInput) error {
	if input.UserID == "" || input.ContestID == "" {
		return fmt.Errorf("%w: user id and contest id are required", ErrInvalidInput)
	}
	if len(input.Players) != team.SquadSize {
		return fmt.Errorf("%w: exactly %d players required, got %d", ErrInvalidInput, team.SquadSize, len(input.Players))
	}

	seen := make(map[string]struct{}, len(input.Players))
	for _, p := range input.Players {
		if p == "" {
			return fmt.Errorf("%w: empty player name", ErrInvalidInput)
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("%w: duplicate player %q", ErrInvalidInput, p)
		}
		seen[p] = struct{}{}
	}

	if input.Captain == "" || input.ViceCaptain == "" {
		return fmt.Errorf("%w: captain and vice-captain are required", ErrInvalidInput)
	}
	if input.Captain == input.ViceCaptain {
		return fmt.Errorf("%w: captain and vice-captain must differ", ErrInvalidInput)
	}
	if _, ok := seen[input.Captain]; !ok {
		return fmt.Errorf("%w: captain %q is not in the selected players", ErrInvalidInput, input.Captain)
	}
	if _, ok := seen[input.ViceCaptain]; !ok {
		return fmt.Errorf("%w: vice-captain %q is not in the selected players", ErrInvalidInput, input.ViceCaptain)
	}
	return nil
}

// CreateContestInput is used by admin/sync flows to open a contest for a
// match.
type CreateContestInput struct {
	MatchID      string
	Name         string
	EntryFee     int64
	PrizePool    int64
	MaxSpots     int
	Distribution map[int]int64
}

func (s *ContestService) CreateContest(ctx context.Context, input CreateContestInput) (contest.Contest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Contest.CreateContest")
	defer span.End()

	if input.MatchID == "" || input.Name == "" {
		return contest.Contest{}, fmt.Errorf("%w: match id and name are required", ErrInvalidInput)
	}
	if input.MaxSpots <= 1 {
		return contest.Contest{}, fmt.Errorf("%w: max spots must be at least 2", ErrInvalidInput)
	}
	if input.EntryFee < 0 || input.PrizePool < 0 {
		return contest.Contest{}, fmt.Errorf("%w: amounts cannot be negative", ErrInvalidInput)
	}

	m, found, err := s.matchRepo.GetByID(ctx, input.MatchID)
	if err != nil {
		return contest.Contest{}, fmt.Errorf("get match: %w", err)
	}
	if !found {
		return contest.Contest{}, fmt.Errorf("%w: match %s", ErrNotFound, input.MatchID)
	}
	if m.Status != match.StatusUpcoming {
		return contest.Contest{}, fmt.Errorf("%w: match %s is %s", ErrInvalidInput, m.ID, m.Status)
	}

	var total int64
	for _, amount := range input.Distribution {
		total += amount
	}
	if total > input.PrizePool {
		return contest.Contest{}, fmt.Errorf("%w: distribution exceeds prize pool", ErrInvalidInput)
	}

	id, err := s.idGen.NewID(idgen.PrefixContest)
	if err != nil {
		return contest.Contest{}, fmt.Errorf("generate contest id: %w", err)
	}

	now := s.now()
	c := contest.Contest{
		ID:           id,
		MatchID:      input.MatchID,
		Name:         input.Name,
		EntryFee:     input.EntryFee,
		PrizePool:    input.PrizePool,
		MaxSpots:     input.MaxSpots,
		Status:       contest.StatusOpen,
		Distribution: input.Distribution,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.contestRepo.Create(ctx, c); err != nil {
		return contest.Contest{}, fmt.Errorf("create contest: %w", err)
	}
	return c, nil
}

func (s *ContestService) GetContest(ctx context.Context, contestID string) (contest.Contest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Contest.GetContest")
	defer span.End()

	c, found, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		return contest.Contest{}, fmt.Errorf("get contest: %w", err)
	}
	if !found {
		return contest.Contest{}, fmt.Errorf("%w: contest %s", ErrNotFound, contestID)
	}
	return c, nil
}

func (s *ContestService) ListContestsByMatch(ctx context.Context, matchID string) ([]contest.Contest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Contest.ListContestsByMatch")
	defer span.End()

	if matchID == "" {
		return nil, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	return s.contestRepo.ListByMatchID(ctx, matchID)
}

// ListUserEntries returns the user's contest entries, most recent first.
func (s *ContestService) ListUserEntries(ctx context.Context, userID string) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Contest.ListUserEntries")
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.teamRepo.ListByUserID(ctx, userID)
}
