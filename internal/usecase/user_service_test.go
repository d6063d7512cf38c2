package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/wicketplay/fantasy-cricket/internal/domain/userprofile"
	"github.com/wicketplay/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/wicketplay/fantasy-cricket/internal/platform/logging"
)

func newUserFixture(t *testing.T, bonus int64, seed ...userprofile.User) (*UserService, *memory.UserRepository) {
	t.Helper()

	userRepo := memory.NewUserRepository(seed...)
	ledger := memory.NewLedgerRepository(userRepo)
	walletSvc := NewWalletService(ledger, userRepo, &seqIDGenerator{}, logging.NewNop())
	return NewUserService(userRepo, walletSvc, &seqIDGenerator{}, bonus, logging.NewNop()), userRepo
}

func TestUserService_EnsureUser_CreatesOnce(t *testing.T) {
	t.Parallel()

	svc, _ := newUserFixture(t, 0)

	created, err := svc.EnsureUser(context.Background(), EnsureUserInput{
		TelegramID: 42, Username: "kohli_fan", FirstName: "Rahul",
	})
	if err != nil {
		t.Fatalf("EnsureUser() error = %v", err)
	}
	if created.ID == "" || created.ReferralCode == "" {
		t.Fatalf("incomplete profile: %+v", created)
	}

	again, err := svc.EnsureUser(context.Background(), EnsureUserInput{TelegramID: 42, Username: "renamed"})
	if err != nil {
		t.Fatalf("EnsureUser() second call error = %v", err)
	}
	if again.ID != created.ID || again.Username != "kohli_fan" {
		t.Fatalf("expected the existing profile back, got %+v", again)
	}
}

func TestUserService_EnsureUser_RequiresTelegramID(t *testing.T) {
	t.Parallel()

	svc, _ := newUserFixture(t, 0)
	_, err := svc.EnsureUser(context.Background(), EnsureUserInput{Username: "ghost"})
	assertErrorIs(t, err, ErrInvalidInput)
}

func TestUserService_EnsureUser_ReferralBonus(t *testing.T) {
	t.Parallel()

	referrer := userprofile.User{
		ID: "U_REF", TelegramID: 7, Username: "captain",
		ReferralCode: "ABCD1234", CreatedAt: time.Now(),
	}
	svc, userRepo := newUserFixture(t, 50, referrer)

	created, err := svc.EnsureUser(context.Background(), EnsureUserInput{
		TelegramID: 99, Username: "rookie", ReferralCode: "ABCD1234",
	})
	if err != nil {
		t.Fatalf("EnsureUser() error = %v", err)
	}
	if created.ReferredBy != "U_REF" {
		t.Fatalf("ReferredBy = %q, want U_REF", created.ReferredBy)
	}

	ref, _, _ := userRepo.GetByID(context.Background(), "U_REF")
	if ref.Balance != 50 {
		t.Fatalf("referrer balance = %d, want 50", ref.Balance)
	}
	if ref.ReferralCount != 1 || ref.ReferralEarnings != 50 {
		t.Fatalf("referral stats = %d/%d, want 1/50", ref.ReferralCount, ref.ReferralEarnings)
	}
}

func TestUserService_EnsureUser_UnknownReferralCode(t *testing.T) {
	t.Parallel()

	svc, _ := newUserFixture(t, 50)

	created, err := svc.EnsureUser(context.Background(), EnsureUserInput{
		TelegramID: 99, Username: "rookie", ReferralCode: "NOPE",
	})
	if err != nil {
		t.Fatalf("EnsureUser() error = %v", err)
	}
	if created.ReferredBy != "" {
		t.Fatalf("ReferredBy = %q, want empty", created.ReferredBy)
	}
}

func TestUserService_GetProfile(t *testing.T) {
	t.Parallel()

	seed := userprofile.User{ID: "U1", TelegramID: 5, Username: "existing"}
	svc, _ := newUserFixture(t, 0, seed)

	u, err := svc.GetProfile(context.Background(), "U1")
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if u.Username != "existing" {
		t.Fatalf("unexpected profile: %+v", u)
	}

	_, err = svc.GetProfile(context.Background(), "missing")
	assertErrorIs(t, err, ErrNotFound)

	_, err = svc.GetProfile(context.Background(), "")
	assertErrorIs(t, err, ErrInvalidInput)
}
