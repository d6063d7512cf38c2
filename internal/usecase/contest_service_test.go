package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/wicketplay/fantasy-cricket/internal/domain/contest"
	"github.com/wicketplay/fantasy-cricket/internal/domain/match"
	"github.com/wicketplay/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/wicketplay/fantasy-cricket/internal/platform/logging"
)

var squad = []string{"P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8", "P9", "P10", "P11"}

func entryInput(userID, contestID string) JoinContestInput {
	return JoinContestInput{
		UserID:      userID,
		ContestID:   contestID,
		Players:     append([]string(nil), squad...),
		Captain:     "P1",
		ViceCaptain: "P2",
	}
}

func newContestFixture(t *testing.T, c contest.Contest, m match.Match, balances map[string]int64) (*ContestService, *memory.ContestRepository, *memory.TeamRepository, *memory.UserRepository) {
	t.Helper()

	contestRepo := memory.NewContestRepository(c)
	matchRepo := memory.NewMatchRepository(m)
	teamRepo := memory.NewTeamRepository()
	walletSvc, users, _ := newFundedWallet(t, balances)
	svc := NewContestService(contestRepo, matchRepo, teamRepo, walletSvc, &seqIDGenerator{}, logging.NewNop())
	return svc, contestRepo, teamRepo, users
}

func openContest() contest.Contest {
	return contest.Contest{
		ID:        "C1",
		MatchID:   "M1",
		Name:      "Head to Head",
		EntryFee:  100,
		PrizePool: 180,
		MaxSpots:  2,
		Status:    contest.StatusOpen,
	}
}

func upcomingMatch() match.Match {
	return match.Match{
		ID:       "M1",
		Name:     "IND vs AUS",
		Status:   match.StatusUpcoming,
		StartsAt: time.Now().Add(2 * time.Hour),
	}
}

func TestContestService_JoinContest(t *testing.T) {
	t.Parallel()

	svc, contestRepo, teamRepo, users := newContestFixture(t, openContest(), upcomingMatch(), map[string]int64{"U1": 500})

	tm, err := svc.JoinContest(context.Background(), entryInput("U1", "C1"))
	if err != nil {
		t.Fatalf("JoinContest() error = %v", err)
	}
	if tm.Captain != "P1" || tm.ViceCaptain != "P2" || len(tm.Players) != 11 {
		t.Fatalf("unexpected team: %+v", tm)
	}

	if got := balanceOf(t, users, "U1"); got != 400 {
		t.Fatalf("balance = %d, want 400 after entry fee", got)
	}
	c, _, _ := contestRepo.GetByID(context.Background(), "C1")
	if c.JoinedUsers != 1 {
		t.Fatalf("joined users = %d, want 1", c.JoinedUsers)
	}
	exists, _ := teamRepo.ExistsByUserAndContest(context.Background(), "U1", "C1")
	if !exists {
		t.Fatal("expected team record for U1")
	}
}

func TestContestService_JoinContest_Validation(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newContestFixture(t, openContest(), upcomingMatch(), map[string]int64{"U1": 500})

	tests := []struct {
		name   string
		mutate func(*JoinContestInput)
	}{
		{"missing user", func(in *JoinContestInput) { in.UserID = "" }},
		{"short squad", func(in *JoinContestInput) { in.Players = in.Players[:10] }},
		{"duplicate player", func(in *JoinContestInput) { in.Players[1] = "P1" }},
		{"empty player name", func(in *JoinContestInput) { in.Players[5] = "" }},
		{"missing captain", func(in *JoinContestInput) { in.Captain = "" }},
		{"captain equals vice captain", func(in *JoinContestInput) { in.ViceCaptain = "P1" }},
		{"captain outside squad", func(in *JoinContestInput) { in.Captain = "P99" }},
		{"vice captain outside squad", func(in *JoinContestInput) { in.ViceCaptain = "P99" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := entryInput("U1", "C1")
			tt.mutate(&in)
			_, err := svc.JoinContest(context.Background(), in)
			assertErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestContestService_JoinContest_DuplicateEntry(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newContestFixture(t, openContest(), upcomingMatch(), map[string]int64{"U1": 500})

	if _, err := svc.JoinContest(context.Background(), entryInput("U1", "C1")); err != nil {
		t.Fatalf("first JoinContest() error = %v", err)
	}
	_, err := svc.JoinContest(context.Background(), entryInput("U1", "C1"))
	assertErrorIs(t, err, ErrAlreadyJoined)
}

func TestContestService_JoinContest_Full(t *testing.T) {
	t.Parallel()

	balances := map[string]int64{"U1": 500, "U2": 500, "U3": 500}
	svc, _, _, _ := newContestFixture(t, openContest(), upcomingMatch(), balances)

	for _, user := range []string{"U1", "U2"} {
		if _, err := svc.JoinContest(context.Background(), entryInput(user, "C1")); err != nil {
			t.Fatalf("JoinContest(%s) error = %v", user, err)
		}
	}
	_, err := svc.JoinContest(context.Background(), entryInput("U3", "C1"))
	assertErrorIs(t, err, ErrContestFull)
}

func TestContestService_JoinContest_ConcurrentLastSlot(t *testing.T) {
	t.Parallel()

	c := openContest()
	c.MaxSpots = 3
	c.JoinedUsers = 2
	balances := map[string]int64{"U1": 500, "U2": 500, "U3": 500, "U4": 500}
	svc, contestRepo, _, _ := newContestFixture(t, c, upcomingMatch(), balances)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for _, user := range []string{"U1", "U2", "U3", "U4"} {
		user := user
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.JoinContest(context.Background(), entryInput(user, "C1")); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if accepted != 1 {
		t.Fatalf("expected exactly one accepted entry, got %d", accepted)
	}
	final, _, _ := contestRepo.GetByID(context.Background(), "C1")
	if final.JoinedUsers != 3 {
		t.Fatalf("joined users = %d, want 3", final.JoinedUsers)
	}
}

func TestContestService_JoinContest_InsufficientFundsReleasesSlot(t *testing.T) {
	t.Parallel()

	svc, contestRepo, teamRepo, _ := newContestFixture(t, openContest(), upcomingMatch(), map[string]int64{"U1": 50})

	_, err := svc.JoinContest(context.Background(), entryInput("U1", "C1"))
	assertErrorIs(t, err, ErrInsufficientFunds)

	c, _, _ := contestRepo.GetByID(context.Background(), "C1")
	if c.JoinedUsers != 0 {
		t.Fatalf("slot not released, joined users = %d", c.JoinedUsers)
	}
	exists, _ := teamRepo.ExistsByUserAndContest(context.Background(), "U1", "C1")
	if exists {
		t.Fatal("no team should exist after a failed entry")
	}
}

func TestContestService_JoinContest_EntryClosed(t *testing.T) {
	t.Parallel()

	t.Run("contest not open", func(t *testing.T) {
		t.Parallel()
		c := openContest()
		c.Status = contest.StatusLive
		svc, _, _, _ := newContestFixture(t, c, upcomingMatch(), map[string]int64{"U1": 500})
		_, err := svc.JoinContest(context.Background(), entryInput("U1", "C1"))
		assertErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("match already live", func(t *testing.T) {
		t.Parallel()
		m := upcomingMatch()
		m.Status = match.StatusLive
		svc, _, _, _ := newContestFixture(t, openContest(), m, map[string]int64{"U1": 500})
		_, err := svc.JoinContest(context.Background(), entryInput("U1", "C1"))
		assertErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown contest", func(t *testing.T) {
		t.Parallel()
		svc, _, _, _ := newContestFixture(t, openContest(), upcomingMatch(), map[string]int64{"U1": 500})
		_, err := svc.JoinContest(context.Background(), entryInput("U1", "missing"))
		assertErrorIs(t, err, ErrNotFound)
	})
}

func TestContestService_JoinContest_FreeEntry(t *testing.T) {
	t.Parallel()

	c := openContest()
	c.EntryFee = 0
	svc, _, _, users := newContestFixture(t, c, upcomingMatch(), map[string]int64{"U1": 0})

	if _, err := svc.JoinContest(context.Background(), entryInput("U1", "C1")); err != nil {
		t.Fatalf("JoinContest() error = %v", err)
	}
	if got := balanceOf(t, users, "U1"); got != 0 {
		t.Fatalf("free entry moved the balance to %d", got)
	}
}

func TestContestService_CreateContest(t *testing.T) {
	t.Parallel()

	svc, contestRepo, _, _ := newContestFixture(t, openContest(), upcomingMatch(), nil)

	created, err := svc.CreateContest(context.Background(), CreateContestInput{
		MatchID:   "M1",
		Name:      "Mega Contest",
		EntryFee:  50,
		PrizePool: 4500,
		MaxSpots:  100,
	})
	if err != nil {
		t.Fatalf("CreateContest() error = %v", err)
	}
	if created.Status != contest.StatusOpen {
		t.Fatalf("expected open contest, got %s", created.Status)
	}
	if _, found, _ := contestRepo.GetByID(context.Background(), created.ID); !found {
		t.Fatal("contest not persisted")
	}
}

func TestContestService_CreateContest_Validation(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newContestFixture(t, openContest(), upcomingMatch(), nil)

	tests := []struct {
		name  string
		input CreateContestInput
		want  error
	}{
		{
			name:  "missing name",
			input: CreateContestInput{MatchID: "M1", MaxSpots: 10},
			want:  ErrInvalidInput,
		},
		{
			name:  "single spot",
			input: CreateContestInput{MatchID: "M1", Name: "X", MaxSpots: 1},
			want:  ErrInvalidInput,
		},
		{
			name:  "negative fee",
			input: CreateContestInput{MatchID: "M1", Name: "X", MaxSpots: 10, EntryFee: -1},
			want:  ErrInvalidInput,
		},
		{
			name:  "unknown match",
			input: CreateContestInput{MatchID: "missing", Name: "X", MaxSpots: 10},
			want:  ErrNotFound,
		},
		{
			name: "distribution exceeds pool",
			input: CreateContestInput{
				MatchID: "M1", Name: "X", MaxSpots: 10, PrizePool: 100,
				Distribution: map[int]int64{1: 80, 2: 40},
			},
			want: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreateContest(context.Background(), tt.input)
			assertErrorIs(t, err, tt.want)
		})
	}
}
