package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/wicketplay/fantasy-cricket/internal/domain/contest"
	"github.com/wicketplay/fantasy-cricket/internal/domain/match"
	"github.com/wicketplay/fantasy-cricket/internal/domain/team"
	"github.com/wicketplay/fantasy-cricket/internal/platform/logging"
)

const (
	defaultRefreshInterval  = 5 * time.Minute
	defaultStartInterval    = 10 * time.Minute
	defaultCompleteInterval = 15 * time.Minute
	defaultPreStartWindow   = 30 * time.Minute
	defaultStartGraceWindow = 10 * time.Minute
	defaultFanOutWorkers    = 4
)

// SchedulerConfig tunes the three lifecycle phases. Zero values pick the
// defaults above; live sports data does not move faster than minutes.
type SchedulerConfig struct {
	RefreshInterval  time.Duration
	StartInterval    time.Duration
	CompleteInterval time.Duration
	PreStartWindow   time.Duration
	StartGraceWindow time.Duration
	FanOutWorkers    int
}

// SchedulerService drives the match lifecycle with three independent timer
// loops: live-score refresh, start detection, and completion detection.
// Every phase isolates per-item failures so one bad match never stalls the
// rest of a cycle.
type SchedulerService struct {
	matchRepo   match.Repository
	contestRepo contest.Repository
	teamRepo    team.Repository
	gateway     SportsGateway
	scoring     *ScoringService
	settlement  *SettlementService
	notifier    Notifier
	cfg         SchedulerConfig
	logger      *logging.Logger
	now         func() time.Time

	notifiedMu sync.Mutex
	notified   map[string]struct{}
}

func NewSchedulerService(
	matchRepo match.Repository,
	contestRepo contest.Repository,
	teamRepo team.Repository,
	gateway SportsGateway,
	scoring *ScoringService,
	settlement *SettlementService,
	notifier Notifier,
	cfg SchedulerConfig,
	logger *logging.Logger,
) *SchedulerService {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = defaultRefreshInterval
	}
	if cfg.StartInterval <= 0 {
		cfg.StartInterval = defaultStartInterval
	}
	if cfg.CompleteInterval <= 0 {
		cfg.CompleteInterval = defaultCompleteInterval
	}
	if cfg.PreStartWindow <= 0 {
		cfg.PreStartWindow = defaultPreStartWindow
	}
	if cfg.StartGraceWindow <= 0 {
		cfg.StartGraceWindow = defaultStartGraceWindow
	}
	if cfg.FanOutWorkers <= 0 {
		cfg.FanOutWorkers = defaultFanOutWorkers
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SchedulerService{
		matchRepo:   matchRepo,
		contestRepo: contestRepo,
		teamRepo:    teamRepo,
		gateway:     gateway,
		scoring:     scoring,
		settlement:  settlement,
		notifier:    notifier,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
		notified:    make(map[string]struct{}),
	}
}

// Run blocks until ctx is cancelled, driving the three phases on their own
// tickers. Each phase also fires once at startup.
func (s *SchedulerService) Run(ctx context.Context) {
	var wg sync.WaitGroup
	phases := []struct {
		name     string
		interval time.Duration
		run      func(context.Context) error
	}{
		{"live_refresh", s.cfg.RefreshInterval, s.RefreshLiveScores},
		{"start_detection", s.cfg.StartInterval, s.DetectMatchStarts},
		{"completion_detection", s.cfg.CompleteInterval, s.ProcessCompletedMatches},
	}

	for _, phase := range phases {
		phase := phase
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runPhase(ctx, phase.name, phase.interval, phase.run)
		}()
	}
	wg.Wait()
}

func (s *SchedulerService) runPhase(ctx context.Context, name string, interval time.Duration, run func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := run(ctx); err != nil {
			s.logger.ErrorContext(ctx, "scheduler phase failed",
				"phase", name,
				"error", err,
			)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RefreshLiveScores pulls the latest scorecard for every live match and
// runs the scoring refresh. Matches fan out on a bounded pool so one slow
// provider call does not delay the rest of the cycle.
func (s *SchedulerService) RefreshLiveScores(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.Scheduler.RefreshLiveScores")
	defer span.End()

	live, err := s.matchRepo.ListByStatus(ctx, match.StatusLive)
	if err != nil {
		return fmt.Errorf("list live matches: %w", err)
	}
	if len(live) == 0 {
		return nil
	}

	p := pool.New().WithMaxGoroutines(s.cfg.FanOutWorkers)
	for _, m := range live {
		m := m
		p.Go(func() {
			scorecard, ok := s.gateway.FetchLiveScorecard(ctx, m.ExternalID)
			if !ok {
				// Nothing this cycle; the next tick tries again.
				return
			}
			if err := s.scoring.RefreshMatch(ctx, m.ID, scorecard); err != nil {
				s.logger.ErrorContext(ctx, "live score refresh failed",
					"match_id", m.ID,
					"error", err,
				)
			}
		})
	}
	p.Wait()
	return nil
}

// DetectMatchStarts notifies participants of matches inside the pre-start
// window and transitions matches whose start time has recently passed to
// live, closing their contests to new entries. Re-detecting an already
// transitioned match is a no-op.
func (s *SchedulerService) DetectMatchStarts(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.Scheduler.DetectMatchStarts")
	defer span.End()

	// Only matches near their start time matter here: a windowed query keeps
	// the scan bounded as the fixture table grows.
	now := s.now()
	upcoming, err := s.matchRepo.ListUpcomingBetween(ctx, now.Add(-s.cfg.StartGraceWindow), now.Add(s.cfg.PreStartWindow))
	if err != nil {
		return fmt.Errorf("list upcoming matches: %w", err)
	}

	for _, m := range upcoming {
		switch {
		case m.StartsAt.After(now):
			if m.StartsAt.Sub(now) <= s.cfg.PreStartWindow {
				s.notifyStartingSoon(ctx, m)
			}
		case now.Sub(m.StartsAt) <= s.cfg.StartGraceWindow:
			s.transitionToLive(ctx, m)
		}
	}
	return nil
}

func (s *SchedulerService) notifyStartingSoon(ctx context.Context, m match.Match) {
	s.notifiedMu.Lock()
	_, done := s.notified[m.ID]
	if !done {
		s.notified[m.ID] = struct{}{}
	}
	s.notifiedMu.Unlock()
	if done {
		return
	}

	teams, err := s.teamRepo.ListByMatchID(ctx, m.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "list participants failed",
			"match_id", m.ID,
			"error", err,
		)
		return
	}

	seen := make(map[string]struct{}, len(teams))
	for _, t := range teams {
		if _, ok := seen[t.UserID]; ok {
			continue
		}
		seen[t.UserID] = struct{}{}
		if err := s.notifier.Notify(ctx, t.UserID,
			"Match starting soon",
			fmt.Sprintf("%s starts at %s. Entries close at the first ball.", m.Name, m.StartsAt.Format(time.Kitchen)),
		); err != nil {
			s.logger.WarnContext(ctx, "start notification failed",
				"match_id", m.ID,
				"user_id", t.UserID,
				"error", err,
			)
		}
	}
}

func (s *SchedulerService) transitionToLive(ctx context.Context, m match.Match) {
	changed, err := s.matchRepo.UpdateStatus(ctx, m.ID, match.StatusUpcoming, match.StatusLive)
	if err != nil {
		s.logger.ErrorContext(ctx, "match start transition failed",
			"match_id", m.ID,
			"error", err,
		)
		return
	}
	if !changed {
		return
	}
	s.logger.InfoContext(ctx, "match went live", "match_id", m.ID, "name", m.Name)

	contests, err := s.contestRepo.ListByMatchID(ctx, m.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "list contests failed",
			"match_id", m.ID,
			"error", err,
		)
		return
	}
	for _, c := range contests {
		if c.Status != contest.StatusOpen {
			continue
		}
		if _, err := s.contestRepo.UpdateStatus(ctx, c.ID, contest.StatusOpen, contest.StatusLive); err != nil {
			s.logger.ErrorContext(ctx, "close contest entry failed",
				"contest_id", c.ID,
				"error", err,
			)
		}
	}
}

// ProcessCompletedMatches asks the provider about every live match and, on
// a reported end, completes the match and settles each attached contest.
// Settlement is idempotent, so a retried cycle after a partial failure is
// safe.
func (s *SchedulerService) ProcessCompletedMatches(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.Scheduler.ProcessCompletedMatches")
	defer span.End()

	live, err := s.matchRepo.ListByStatus(ctx, match.StatusLive)
	if err != nil {
		return fmt.Errorf("list live matches: %w", err)
	}

	for _, m := range live {
		info, ok := s.gateway.FetchMatchStatus(ctx, m.ExternalID)
		if !ok || !info.Ended {
			continue
		}

		if _, err := s.matchRepo.UpdateStatus(ctx, m.ID, match.StatusLive, match.StatusCompleted); err != nil {
			s.logger.ErrorContext(ctx, "match completion transition failed",
				"match_id", m.ID,
				"error", err,
			)
			continue
		}
		s.logger.InfoContext(ctx, "match completed", "match_id", m.ID, "name", m.Name)
		if err := s.settlement.SettleMatchContests(ctx, m.ID); err != nil {
			// Per-contest failures were already logged and alerted; the
			// next cycle resumes the unsettled ones.
			s.logger.ErrorContext(ctx, "match settlement incomplete",
				"match_id", m.ID,
				"error", err,
			)
		}
	}
	return nil
}
