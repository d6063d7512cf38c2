package userprofile

import "time"

// User owns a wallet and enters contests. Balance is a cached projection of
// the completed ledger entries; every balance mutation goes through the
// wallet ledger, never through a plain field write.
type User struct {
	ID               string
	TelegramID       int64
	Username         string
	FirstName        string
	Balance          int64
	ReferralCode     string
	ReferredBy       string
	ReferralCount    int
	ReferralEarnings int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
