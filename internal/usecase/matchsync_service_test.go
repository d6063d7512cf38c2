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

type matchSyncFixture struct {
	svc         *MatchSyncService
	matchRepo   *memory.MatchRepository
	contestRepo *memory.ContestRepository
	users       *memory.UserRepository
	notifier    *recordingNotifier
}

func newMatchSyncFixture(t *testing.T, gateway SportsGateway, matches []match.Match, contests []contest.Contest, teams []team.Team, balances map[string]int64) matchSyncFixture {
	t.Helper()

	matchRepo := memory.NewMatchRepository(matches...)
	contestRepo := memory.NewContestRepository(contests...)
	teamRepo := memory.NewTeamRepository(teams...)
	walletSvc, users, ledger := newFundedWallet(t, balances)
	leaderboard := NewLeaderboardService(teamRepo, logging.NewNop())
	notifier := &recordingNotifier{}
	settlement := NewSettlementService(contestRepo, teamRepo, leaderboard, ledger, walletSvc, notifier, logging.NewNop())
	svc := NewMatchSyncService(gateway, matchRepo, settlement, &seqIDGenerator{}, 2, logging.NewNop())
	return matchSyncFixture{
		svc:         svc,
		matchRepo:   matchRepo,
		contestRepo: contestRepo,
		users:       users,
		notifier:    notifier,
	}
}

func TestMatchSyncService_SyncUpcomingMatches(t *testing.T) {
	t.Parallel()

	starts := time.Date(2026, 5, 10, 14, 0, 0, 0, time.UTC)
	known := match.Match{
		ID:         "M1",
		ExternalID: "ext-1",
		Name:       "IND vs AUS",
		Venue:      "Wankhede",
		StartsAt:   starts,
		Status:     match.StatusUpcoming,
		RawPayload: []byte(`{"v":1}`),
	}
	rescheduled := starts.Add(24 * time.Hour)
	gateway := &stubGateway{upcoming: []cricket.RawMatch{
		{ExternalID: "ext-1", Name: "IND vs AUS", Venue: "Eden Gardens", StartsAt: rescheduled, Payload: []byte(`{"v":2}`)},
		{ExternalID: "ext-2", Name: "ENG vs NZ", TeamA: "ENG", TeamB: "NZ", Format: "T20", StartsAt: starts},
	}}
	fx := newMatchSyncFixture(t, gateway, []match.Match{known}, nil, nil, nil)

	created, err := fx.svc.SyncUpcomingMatches(context.Background())
	if err != nil {
		t.Fatalf("SyncUpcomingMatches() error = %v", err)
	}
	if created != 1 {
		t.Fatalf("created = %d, want 1", created)
	}

	// The known fixture keeps its ID but picks up the fresh payload and the
	// rescheduled details.
	existing, found, _ := fx.matchRepo.GetByExternalID(context.Background(), "ext-1")
	if !found || existing.ID != "M1" {
		t.Fatalf("unexpected existing match: found=%t %+v", found, existing)
	}
	if string(existing.RawPayload) != `{"v":2}` {
		t.Fatalf("payload not refreshed: %s", existing.RawPayload)
	}
	if !existing.StartsAt.Equal(rescheduled) {
		t.Fatalf("StartsAt = %s, want rescheduled %s", existing.StartsAt, rescheduled)
	}
	if existing.Venue != "Eden Gardens" {
		t.Fatalf("Venue = %q, want refreshed venue", existing.Venue)
	}

	fresh, found, _ := fx.matchRepo.GetByExternalID(context.Background(), "ext-2")
	if !found || fresh.Status != match.StatusUpcoming || !fresh.StartsAt.Equal(starts) {
		t.Fatalf("unexpected new match: found=%t %+v", found, fresh)
	}

	// A rerun of the same listing creates nothing.
	created, err = fx.svc.SyncUpcomingMatches(context.Background())
	if err != nil {
		t.Fatalf("rerun error = %v", err)
	}
	if created != 0 {
		t.Fatalf("rerun created = %d, want 0", created)
	}
}

func TestMatchSyncService_ResyncMatchStatuses(t *testing.T) {
	t.Parallel()

	matches := []match.Match{
		{ID: "M1", ExternalID: "ext-1", Status: match.StatusLive},
		{ID: "M2", ExternalID: "ext-2", Status: match.StatusUpcoming},
		{ID: "M3", ExternalID: "ext-3", Status: match.StatusLive},
	}
	contests := []contest.Contest{
		{ID: "C1", MatchID: "M1", Name: "Winner Takes All", PrizePool: 1000, MaxSpots: 10, JoinedUsers: 1, Status: contest.StatusLive},
		{ID: "C2", MatchID: "M2", Name: "Head To Head", EntryFee: 100, PrizePool: 180, MaxSpots: 2, JoinedUsers: 1, Status: contest.StatusOpen},
	}
	teams := []team.Team{
		{ID: "T1", UserID: "U1", ContestID: "C1", MatchID: "M1", TotalPoints: 90},
		{ID: "T2", UserID: "U2", ContestID: "C2", MatchID: "M2"},
	}
	gateway := &stubGateway{infoByExt: map[string]cricket.MatchInfo{
		"ext-1": {ExternalID: "ext-1", Ended: true},
		// ext-2 ended before it ever went live here.
		"ext-2": {ExternalID: "ext-2", Ended: true},
		"ext-3": {ExternalID: "ext-3", Ended: false},
	}}
	fx := newMatchSyncFixture(t, gateway, matches, contests, teams, map[string]int64{"U1": 0, "U2": 0})

	summary, err := fx.svc.ResyncMatchStatuses(context.Background())
	if err != nil {
		t.Fatalf("ResyncMatchStatuses() error = %v", err)
	}
	if summary.Checked != 3 || summary.Updated != 2 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	m1, _, _ := fx.matchRepo.GetByID(context.Background(), "M1")
	if m1.Status != match.StatusCompleted {
		t.Fatalf("M1 status = %s, want completed", m1.Status)
	}
	m2, _, _ := fx.matchRepo.GetByID(context.Background(), "M2")
	if m2.Status != match.StatusCancelled {
		t.Fatalf("M2 status = %s, want cancelled", m2.Status)
	}
	m3, _, _ := fx.matchRepo.GetByID(context.Background(), "M3")
	if m3.Status != match.StatusLive {
		t.Fatalf("M3 status = %s, want live", m3.Status)
	}

	// The completed match settled its contest.
	c1, _, _ := fx.contestRepo.GetByID(context.Background(), "C1")
	if c1.Status != contest.StatusCompleted {
		t.Fatalf("C1 status = %s, want completed", c1.Status)
	}
	if got := balanceOf(t, fx.users, "U1"); got != 1000 {
		t.Fatalf("U1 balance = %d, want the full prize pool", got)
	}

	// The abandoned match cancelled its contest and refunded the entry fee.
	c2, _, _ := fx.contestRepo.GetByID(context.Background(), "C2")
	if c2.Status != contest.StatusCancelled {
		t.Fatalf("C2 status = %s, want cancelled", c2.Status)
	}
	if got := balanceOf(t, fx.users, "U2"); got != 100 {
		t.Fatalf("U2 balance = %d, want the entry fee back", got)
	}
}

func TestMatchSyncService_ResyncMatchStatuses_Empty(t *testing.T) {
	t.Parallel()

	fx := newMatchSyncFixture(t, &stubGateway{}, nil, nil, nil, nil)
	summary, err := fx.svc.ResyncMatchStatuses(context.Background())
	if err != nil {
		t.Fatalf("ResyncMatchStatuses() error = %v", err)
	}
	if summary != (ResyncSummary{}) {
		t.Fatalf("expected zero summary, got %+v", summary)
	}
}
