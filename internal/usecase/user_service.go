package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wicketplay/fantasy-cricket/internal/domain/userprofile"
	"github.com/wicketplay/fantasy-cricket/internal/domain/wallet"
	idgen "github.com/wicketplay/fantasy-cricket/internal/platform/id"
	"github.com/wicketplay/fantasy-cricket/internal/platform/logging"
)

// UserService manages profiles and the referral program.
type UserService struct {
	userRepo      userprofile.Repository
	wallet        *WalletService
	idGen         idgen.Generator
	referralBonus int64
	logger        *logging.Logger
	now           func() time.Time
}

func NewUserService(
	userRepo userprofile.Repository,
	walletSvc *WalletService,
	idGen idgen.Generator,
	referralBonus int64,
	logger *logging.Logger,
) *UserService {
	if logger == nil {
		logger = logging.Default()
	}
	return &UserService{
		userRepo:      userRepo,
		wallet:        walletSvc,
		idGen:         idGen,
		referralBonus: referralBonus,
		logger:        logger,
		now:           time.Now,
	}
}

// EnsureUserInput identifies a Telegram user on first contact.
type EnsureUserInput struct {
	TelegramID int64
	Username   string
	FirstName  string
	// ReferralCode, when present, is the code of the user who referred this
	// signup. Only honored on first creation.
	ReferralCode string
}

// EnsureUser returns the existing profile for the Telegram identity or
// creates one, crediting the referrer's bonus on first signup.
func (s *UserService) EnsureUser(ctx context.Context, input EnsureUserInput) (userprofile.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.User.EnsureUser")
	defer span.End()

	if input.TelegramID == 0 {
		return userprofile.User{}, fmt.Errorf("%w: telegram id is required", ErrInvalidInput)
	}

	existing, found, err := s.userRepo.GetByTelegramID(ctx, input.TelegramID)
	if err != nil {
		return userprofile.User{}, fmt.Errorf("get user by telegram id: %w", err)
	}
	if found {
		return existing, nil
	}

	id, err := s.idGen.NewID(idgen.PrefixUser)
	if err != nil {
		return userprofile.User{}, fmt.Errorf("generate user id: %w", err)
	}
	code, err := s.newReferralCode()
	if err != nil {
		return userprofile.User{}, err
	}

	var referrer userprofile.User
	referrerFound := false
	if trimmed := strings.TrimSpace(input.ReferralCode); trimmed != "" {
		referrer, referrerFound, err = s.userRepo.GetByReferralCode(ctx, trimmed)
		if err != nil {
			return userprofile.User{}, fmt.Errorf("get referrer: %w", err)
		}
	}

	now := s.now()
	u := userprofile.User{
		ID:           id,
		TelegramID:   input.TelegramID,
		Username:     input.Username,
		FirstName:    input.FirstName,
		ReferralCode: code,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if referrerFound {
		u.ReferredBy = referrer.ID
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		return userprofile.User{}, fmt.Errorf("create user: %w", err)
	}

	if referrerFound && s.referralBonus > 0 {
		s.creditReferrer(ctx, referrer, u)
	}
	return u, nil
}

// creditReferrer pays the signup bonus. A failed bonus never fails the
// signup itself.
func (s *UserService) creditReferrer(ctx context.Context, referrer, referred userprofile.User) {
	if _, err := s.wallet.Credit(ctx, CreditInput{
		UserID:      referrer.ID,
		Amount:      s.referralBonus,
		Type:        wallet.TypeReferral,
		Description: fmt.Sprintf("referral bonus for inviting %s", referred.Username),
	}); err != nil {
		s.logger.ErrorContext(ctx, "referral bonus credit failed",
			"referrer_id", referrer.ID,
			"referred_id", referred.ID,
			"error", err,
		)
		return
	}
	if err := s.userRepo.IncrementReferralStats(ctx, referrer.ID, s.referralBonus); err != nil {
		s.logger.ErrorContext(ctx, "referral stats update failed",
			"referrer_id", referrer.ID,
			"error", err,
		)
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (userprofile.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.User.GetProfile")
	defer span.End()

	if userID == "" {
		return userprofile.User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	u, found, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return userprofile.User{}, fmt.Errorf("get user: %w", err)
	}
	if !found {
		return userprofile.User{}, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return u, nil
}

func (s *UserService) newReferralCode() (string, error) {
	raw, err := s.idGen.NewID("")
	if err != nil {
		return "", fmt.Errorf("generate referral code: %w", err)
	}
	if len(raw) > 8 {
		raw = raw[:8]
	}
	return strings.ToUpper(raw), nil
}
