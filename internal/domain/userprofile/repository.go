package userprofile

import "context"

type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, bool, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (User, bool, error)
	GetByReferralCode(ctx context.Context, code string) (User, bool, error)
	// ListAll returns every registered user ordered by creation time. Used
	// by broadcast fan-out; the user base is bounded by Telegram onboarding.
	ListAll(ctx context.Context) ([]User, error)
	// IncrementReferralStats bumps the referrer's counters after a referral
	// bonus is credited.
	IncrementReferralStats(ctx context.Context, id string, earned int64) error
}
