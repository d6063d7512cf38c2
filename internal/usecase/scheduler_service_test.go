package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/wicketplay/fantasy-cricket/internal/domain/contest"
	"github.com/wicketplay/fantasy-cricket/internal/domain/cricket"
	"github.com/wicketplay/fantasy-cricket/internal/domain/match"
	"github.com/wicketplay/fantasy-cricket/internal/domain/team"
	"github.com/wicketplay/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/wicketplay/fantasy-cricket/internal/platform/logging"
)

type schedulerFixture struct {
	svc         *SchedulerService
	matchRepo   *memory.MatchRepository
	contestRepo *memory.ContestRepository
	teamRepo    *memory.TeamRepository
	statsRepo   *memory.PlayerStatsRepository
	users       *memory.UserRepository
	notifier    *recordingNotifier
}

func newSchedulerFixture(t *testing.T, gateway SportsGateway, matches []match.Match, contests []contest.Contest, teams []team.Team, balances map[string]int64) schedulerFixture {
	t.Helper()

	matchRepo := memory.NewMatchRepository(matches...)
	contestRepo := memory.NewContestRepository(contests...)
	teamRepo := memory.NewTeamRepository(teams...)
	statsRepo := memory.NewPlayerStatsRepository()
	walletSvc, users, ledger := newFundedWallet(t, balances)

	leaderboard := NewLeaderboardService(teamRepo, logging.NewNop())
	scoring := NewScoringService(statsRepo, leaderboard, logging.NewNop())
	notifier := &recordingNotifier{}
	settlement := NewSettlementService(contestRepo, teamRepo, leaderboard, ledger, walletSvc, notifier, logging.NewNop())

	svc := NewSchedulerService(matchRepo, contestRepo, teamRepo, gateway, scoring, settlement, notifier, SchedulerConfig{}, logging.NewNop())
	return schedulerFixture{
		svc:         svc,
		matchRepo:   matchRepo,
		contestRepo: contestRepo,
		teamRepo:    teamRepo,
		statsRepo:   statsRepo,
		users:       users,
		notifier:    notifier,
	}
}

func TestSchedulerService_RefreshLiveScores(t *testing.T) {
	t.Parallel()

	gateway := &stubGateway{scorecards: map[string]cricket.Scorecard{
		"ext-1": {
			MatchExternalID: "ext-1",
			Players:         map[string]cricket.Stats{"V Kohli": {Runs: 30, BallsFaced: 20}},
		},
	}}
	fx := newSchedulerFixture(t, gateway,
		[]match.Match{
			{ID: "M1", ExternalID: "ext-1", Status: match.StatusLive},
			// No scorecard for this one; it is skipped this cycle.
			{ID: "M2", ExternalID: "ext-2", Status: match.StatusLive},
		},
		nil,
		[]team.Team{{ID: "T1", MatchID: "M1", ContestID: "C1", Players: []string{"V Kohli"}, Captain: "V Kohli", ViceCaptain: "X"}},
		nil,
	)

	if err := fx.svc.RefreshLiveScores(context.Background()); err != nil {
		t.Fatalf("RefreshLiveScores() error = %v", err)
	}

	row, found, _ := fx.statsRepo.GetByMatchAndPlayer(context.Background(), "M1", "V Kohli")
	if !found || row.TotalPoints != 30 {
		t.Fatalf("unexpected stats row: found=%t %+v", found, row)
	}
	t1, _, _ := fx.teamRepo.GetByID(context.Background(), "T1")
	if t1.TotalPoints != 60 {
		t.Fatalf("T1 total = %v, want 60 with captain multiplier", t1.TotalPoints)
	}
	if rows, _ := fx.statsRepo.ListByMatchID(context.Background(), "M2"); len(rows) != 0 {
		t.Fatalf("M2 should have no stats, got %d rows", len(rows))
	}
}

func TestSchedulerService_DetectMatchStarts_TransitionsToLive(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC)
	fx := newSchedulerFixture(t, &stubGateway{},
		[]match.Match{
			// Started five minutes ago, inside the grace window.
			{ID: "M1", ExternalID: "ext-1", Status: match.StatusUpcoming, StartsAt: now.Add(-5 * time.Minute)},
			// Started an hour ago; too stale to auto-start.
			{ID: "M2", ExternalID: "ext-2", Status: match.StatusUpcoming, StartsAt: now.Add(-time.Hour)},
			// Far in the future.
			{ID: "M3", ExternalID: "ext-3", Status: match.StatusUpcoming, StartsAt: now.Add(3 * time.Hour)},
		},
		[]contest.Contest{
			{ID: "C1", MatchID: "M1", Status: contest.StatusOpen},
			{ID: "C2", MatchID: "M1", Status: contest.StatusCancelled},
		},
		nil, nil,
	)
	fx.svc.now = func() time.Time { return now }

	if err := fx.svc.DetectMatchStarts(context.Background()); err != nil {
		t.Fatalf("DetectMatchStarts() error = %v", err)
	}

	m1, _, _ := fx.matchRepo.GetByID(context.Background(), "M1")
	if m1.Status != match.StatusLive {
		t.Fatalf("M1 status = %s, want live", m1.Status)
	}
	for _, id := range []string{"M2", "M3"} {
		m, _, _ := fx.matchRepo.GetByID(context.Background(), id)
		if m.Status != match.StatusUpcoming {
			t.Fatalf("%s status = %s, want upcoming", id, m.Status)
		}
	}

	// Open contests close to entries; final statuses stay put.
	c1, _, _ := fx.contestRepo.GetByID(context.Background(), "C1")
	if c1.Status != contest.StatusLive {
		t.Fatalf("C1 status = %s, want live", c1.Status)
	}
	c2, _, _ := fx.contestRepo.GetByID(context.Background(), "C2")
	if c2.Status != contest.StatusCancelled {
		t.Fatalf("C2 status = %s, want cancelled", c2.Status)
	}
}

func TestSchedulerService_DetectMatchStarts_NotifiesOnce(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 15, 0, 0, 0, time.UTC)
	fx := newSchedulerFixture(t, &stubGateway{},
		[]match.Match{
			{ID: "M1", ExternalID: "ext-1", Name: "IND vs AUS", Status: match.StatusUpcoming, StartsAt: now.Add(20 * time.Minute)},
		},
		nil,
		[]team.Team{
			{ID: "T1", MatchID: "M1", UserID: "U1"},
			{ID: "T2", MatchID: "M1", UserID: "U2"},
			// Second entry by U1 must not double-notify.
			{ID: "T3", MatchID: "M1", UserID: "U1"},
		},
		nil,
	)
	fx.svc.now = func() time.Time { return now }

	if err := fx.svc.DetectMatchStarts(context.Background()); err != nil {
		t.Fatalf("DetectMatchStarts() error = %v", err)
	}
	if len(fx.notifier.notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(fx.notifier.notifications))
	}

	// The match stays upcoming and the next cycle stays quiet.
	if err := fx.svc.DetectMatchStarts(context.Background()); err != nil {
		t.Fatalf("second DetectMatchStarts() error = %v", err)
	}
	if len(fx.notifier.notifications) != 2 {
		t.Fatalf("repeat cycle re-notified: %d notifications", len(fx.notifier.notifications))
	}
}

func TestSchedulerService_ProcessCompletedMatches(t *testing.T) {
	t.Parallel()

	gateway := &stubGateway{infoByExt: map[string]cricket.MatchInfo{
		"ext-1": {ExternalID: "ext-1", Ended: true},
		"ext-2": {ExternalID: "ext-2", Ended: false},
	}}
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	fx := newSchedulerFixture(t, gateway,
		[]match.Match{
			{ID: "M1", ExternalID: "ext-1", Status: match.StatusLive},
			{ID: "M2", ExternalID: "ext-2", Status: match.StatusLive},
		},
		[]contest.Contest{
			{ID: "C1", MatchID: "M1", Name: "Winner Takes All", PrizePool: 1000, MaxSpots: 10, JoinedUsers: 2, Status: contest.StatusLive},
		},
		[]team.Team{
			{ID: "T1", UserID: "U1", ContestID: "C1", MatchID: "M1", TotalPoints: 75, CreatedAt: base},
			{ID: "T2", UserID: "U2", ContestID: "C1", MatchID: "M1", TotalPoints: 40, CreatedAt: base},
		},
		map[string]int64{"U1": 0, "U2": 0},
	)

	if err := fx.svc.ProcessCompletedMatches(context.Background()); err != nil {
		t.Fatalf("ProcessCompletedMatches() error = %v", err)
	}

	m1, _, _ := fx.matchRepo.GetByID(context.Background(), "M1")
	if m1.Status != match.StatusCompleted {
		t.Fatalf("M1 status = %s, want completed", m1.Status)
	}
	m2, _, _ := fx.matchRepo.GetByID(context.Background(), "M2")
	if m2.Status != match.StatusLive {
		t.Fatalf("M2 status = %s, want live", m2.Status)
	}

	// Under five entrants the winner takes the whole pool.
	c1, _, _ := fx.contestRepo.GetByID(context.Background(), "C1")
	if c1.Status != contest.StatusCompleted {
		t.Fatalf("C1 status = %s, want completed", c1.Status)
	}
	if got := balanceOf(t, fx.users, "U1"); got != 1000 {
		t.Fatalf("U1 balance = %d, want 1000", got)
	}
	if got := balanceOf(t, fx.users, "U2"); got != 0 {
		t.Fatalf("U2 balance = %d, want 0", got)
	}
}
