package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/wicketplay/fantasy-cricket/internal/domain/userprofile"
	qb "github.com/wicketplay/fantasy-cricket/internal/platform/querybuilder"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u userprofile.User) error {
	query, args, err := qb.InsertModel("users", userToRow(u), "")
	if err != nil {
		return fmt.Errorf("build insert user query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (userprofile.User, bool, error) {
	return r.getBy(ctx, qb.Eq("id", id))
}

func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (userprofile.User, bool, error) {
	return r.getBy(ctx, qb.Eq("telegram_id", telegramID))
}

func (r *UserRepository) GetByReferralCode(ctx context.Context, code string) (userprofile.User, bool, error) {
	return r.getBy(ctx, qb.Eq("referral_code", code))
}

func (r *UserRepository) getBy(ctx context.Context, cond qb.Condition) (userprofile.User, bool, error) {
	query, args, err := qb.Select("*").From("users").
		Where(cond).
		Limit(1).
		ToSQL()
	if err != nil {
		return userprofile.User{}, false, fmt.Errorf("build select user query: %w", err)
	}

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return userprofile.User{}, false, nil
		}
		return userprofile.User{}, false, fmt.Errorf("select user: %w", err)
	}
	return rowToUser(row), true, nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]userprofile.User, error) {
	query, args, err := qb.Select("*").From("users").
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select users query: %w", err)
	}

	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}

	out := make([]userprofile.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToUser(row))
	}
	return out, nil
}

func (r *UserRepository) IncrementReferralStats(ctx context.Context, id string, earned int64) error {
	query, args, err := qb.Update("users").
		SetExpr("referral_count", "referral_count + 1").
		SetExpr("referral_earnings", "referral_earnings + ?", earned).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update referral stats query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update referral stats: %w", err)
	}
	return nil
}
