package postgres

import (
	"database/sql"
	"time"

	"github.com/wicketplay/fantasy-cricket/internal/domain/userprofile"
)

type userTableModel struct {
	ID               string         `db:"id"`
	TelegramID       int64          `db:"telegram_id"`
	Username         string         `db:"username"`
	FirstName        string         `db:"first_name"`
	Balance          int64          `db:"balance"`
	ReferralCode     string         `db:"referral_code"`
	ReferredBy       sql.NullString `db:"referred_by"`
	ReferralCount    int            `db:"referral_count"`
	ReferralEarnings int64          `db:"referral_earnings"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func userToRow(u userprofile.User) userTableModel {
	referredBy := sql.NullString{}
	if u.ReferredBy != "" {
		referredBy = sql.NullString{String: u.ReferredBy, Valid: true}
	}
	return userTableModel{
		ID:               u.ID,
		TelegramID:       u.TelegramID,
		Username:         u.Username,
		FirstName:        u.FirstName,
		Balance:          u.Balance,
		ReferralCode:     u.ReferralCode,
		ReferredBy:       referredBy,
		ReferralCount:    u.ReferralCount,
		ReferralEarnings: u.ReferralEarnings,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func rowToUser(row userTableModel) userprofile.User {
	return userprofile.User{
		ID:               row.ID,
		TelegramID:       row.TelegramID,
		Username:         row.Username,
		FirstName:        row.FirstName,
		Balance:          row.Balance,
		ReferralCode:     row.ReferralCode,
		ReferredBy:       row.ReferredBy.String,
		ReferralCount:    row.ReferralCount,
		ReferralEarnings: row.ReferralEarnings,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}
