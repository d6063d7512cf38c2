package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wicketplay/fantasy-cricket/internal/domain/cricket"
	"github.com/wicketplay/fantasy-cricket/internal/domain/userprofile"
	"github.com/wicketplay/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/wicketplay/fantasy-cricket/internal/platform/logging"
)

func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected error %v, got %v", target, err)
	}
}

// seqIDGenerator hands out deterministic IDs so tests can reference the
// records they create.
type seqIDGenerator struct {
	n int
}

func (g *seqIDGenerator) NewID(prefix string) (string, error) {
	g.n++
	return prefixed(prefix, g.n), nil
}

func prefixed(prefix string, n int) string {
	const digits = "0123456789"
	s := string(digits[n/10%10]) + string(digits[n%10])
	if prefix == "" {
		return s
	}
	return prefix + "_" + s
}

func newFundedWallet(t *testing.T, balances map[string]int64) (*WalletService, *memory.UserRepository, *memory.LedgerRepository) {
	t.Helper()

	users := make([]userprofile.User, 0, len(balances))
	for id, balance := range balances {
		users = append(users, userprofile.User{ID: id, Balance: balance, CreatedAt: time.Now()})
	}
	userRepo := memory.NewUserRepository(users...)
	ledger := memory.NewLedgerRepository(userRepo)
	return NewWalletService(ledger, userRepo, &seqIDGenerator{}, logging.NewNop()), userRepo, ledger
}

func balanceOf(t *testing.T, users *memory.UserRepository, userID string) int64 {
	t.Helper()
	u, found, err := users.GetByID(context.Background(), userID)
	if err != nil || !found {
		t.Fatalf("user %s lookup found=%t err=%v", userID, found, err)
	}
	return u.Balance
}

// stubProvider is a scripted CricketProvider.
type stubProvider struct {
	name       string
	matches    []cricket.RawMatch
	matchesErr error
	info       cricket.MatchInfo
	infoErr    error
	scorecard  cricket.RawScorecard
	cardErr    error
	listCalls  int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) ListMatches(context.Context) ([]cricket.RawMatch, error) {
	p.listCalls++
	return p.matches, p.matchesErr
}

func (p *stubProvider) MatchInfo(context.Context, string) (cricket.MatchInfo, error) {
	return p.info, p.infoErr
}

func (p *stubProvider) LiveScorecard(context.Context, string) (cricket.RawScorecard, error) {
	return p.scorecard, p.cardErr
}

// stubGateway feeds the sync and scheduler pipelines directly.
type stubGateway struct {
	upcoming   []cricket.RawMatch
	infoByExt  map[string]cricket.MatchInfo
	scorecards map[string]cricket.Scorecard
}

func (g *stubGateway) FetchUpcomingMatches(context.Context) []cricket.RawMatch {
	return g.upcoming
}

func (g *stubGateway) FetchMatchStatus(_ context.Context, externalID string) (cricket.MatchInfo, bool) {
	info, ok := g.infoByExt[externalID]
	return info, ok
}

func (g *stubGateway) FetchLiveScorecard(_ context.Context, externalID string) (cricket.Scorecard, bool) {
	card, ok := g.scorecards[externalID]
	return card, ok
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	notifications []notification
	broadcasts    []notification
	alerts        []notification
}

type notification struct {
	UserID  string
	Title   string
	Message string
}

func (n *recordingNotifier) Notify(_ context.Context, userID, title, message string) error {
	n.notifications = append(n.notifications, notification{UserID: userID, Title: title, Message: message})
	return nil
}

func (n *recordingNotifier) Broadcast(_ context.Context, title, message string) error {
	n.broadcasts = append(n.broadcasts, notification{Title: title, Message: message})
	return nil
}

func (n *recordingNotifier) Alert(_ context.Context, title, message string) error {
	n.alerts = append(n.alerts, notification{Title: title, Message: message})
	return nil
}
