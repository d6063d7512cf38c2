package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/wicketplay/fantasy-cricket/internal/domain/match"
	qb "github.com/wicketplay/fantasy-cricket/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Upsert never touches status: lifecycle transitions go through
// UpdateStatus so a provider refresh cannot move a match backward.
func (r *MatchRepository) Upsert(ctx context.Context, m match.Match) error {
	query, args, err := qb.InsertModel("matches", matchToRow(m),
		`ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			team_a = EXCLUDED.team_a,
			team_b = EXCLUDED.team_b,
			format = EXCLUDED.format,
			venue = EXCLUDED.venue,
			starts_at = EXCLUDED.starts_at,
			raw_payload = EXCLUDED.raw_payload,
			updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert match query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match: %w", err)
	}
	return nil
}

func (r *MatchRepository) GetByID(ctx context.Context, id string) (match.Match, bool, error) {
	return r.getByColumn(ctx, "id", id)
}

func (r *MatchRepository) GetByExternalID(ctx context.Context, externalID string) (match.Match, bool, error) {
	return r.getByColumn(ctx, "external_id", externalID)
}

func (r *MatchRepository) getByColumn(ctx context.Context, column, value string) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq(column, value)).
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("select match by %s: %w", column, err)
	}
	return rowToMatch(row), true, nil
}

func (r *MatchRepository) ListByStatus(ctx context.Context, status match.Status) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("status", string(status))).
		OrderBy("starts_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches by status: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToMatch(row))
	}
	return out, nil
}

func (r *MatchRepository) ListUpcomingBetween(ctx context.Context, from, to time.Time) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("status", string(match.StatusUpcoming)),
			qb.Expr("starts_at >= ?", from),
			qb.Expr("starts_at <= ?", to),
		).
		OrderBy("starts_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select upcoming matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select upcoming matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToMatch(row))
	}
	return out, nil
}

func (r *MatchRepository) UpdateStatus(ctx context.Context, id string, from, to match.Status) (bool, error) {
	query, args, err := qb.Update("matches").
		Set("status", string(to)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.Eq("status", string(from)),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build update match status query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update match status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update match status rows affected: %w", err)
	}
	return affected > 0, nil
}
