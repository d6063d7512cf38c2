package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/wicketplay/fantasy-cricket/internal/domain/contest"
	qb "github.com/wicketplay/fantasy-cricket/internal/platform/querybuilder"
)

type ContestRepository struct {
	db *sqlx.DB
}

func NewContestRepository(db *sqlx.DB) *ContestRepository {
	return &ContestRepository{db: db}
}

func (r *ContestRepository) Create(ctx context.Context, c contest.Contest) error {
	row, err := contestToRow(c)
	if err != nil {
		return err
	}
	query, args, err := qb.InsertModel("contests", row, "")
	if err != nil {
		return fmt.Errorf("build insert contest query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert contest: %w", err)
	}
	return nil
}

func (r *ContestRepository) GetByID(ctx context.Context, id string) (contest.Contest, bool, error) {
	query, args, err := qb.Select("*").From("contests").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return contest.Contest{}, false, fmt.Errorf("build select contest query: %w", err)
	}

	var row contestTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return contest.Contest{}, false, nil
		}
		return contest.Contest{}, false, fmt.Errorf("select contest: %w", err)
	}

	c, err := rowToContest(row)
	if err != nil {
		return contest.Contest{}, false, err
	}
	return c, true, nil
}

func (r *ContestRepository) ListByMatchID(ctx context.Context, matchID string) ([]contest.Contest, error) {
	query, args, err := qb.Select("*").From("contests").
		Where(qb.Eq("match_id", matchID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select contests query: %w", err)
	}

	var rows []contestTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select contests by match: %w", err)
	}

	out := make([]contest.Contest, 0, len(rows))
	for _, row := range rows {
		c, err := rowToContest(row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// IncrementJoined takes a slot with one conditional statement, so the
// capacity check and the bump cannot be split by a concurrent entry.
func (r *ContestRepository) IncrementJoined(ctx context.Context, id string) (bool, error) {
	query, args, err := qb.Update("contests").
		SetExpr("joined_users", "joined_users + 1").
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.Expr("joined_users < max_spots"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build increment joined query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("increment joined users: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("increment joined rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *ContestRepository) DecrementJoined(ctx context.Context, id string) error {
	query, args, err := qb.Update("contests").
		SetExpr("joined_users", "joined_users - 1").
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.Expr("joined_users > 0"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build decrement joined query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("decrement joined users: %w", err)
	}
	return nil
}

func (r *ContestRepository) UpdateStatus(ctx context.Context, id string, from, to contest.Status) (bool, error) {
	query, args, err := qb.Update("contests").
		Set("status", string(to)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.Eq("status", string(from)),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build update contest status query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update contest status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update contest status rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *ContestRepository) MarkCompleted(ctx context.Context, id string) (bool, error) {
	query, args, err := qb.Update("contests").
		Set("status", string(contest.StatusCompleted)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.Expr("status NOT IN (?, ?)", string(contest.StatusCompleted), string(contest.StatusCancelled)),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build mark contest completed query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark contest completed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark contest completed rows affected: %w", err)
	}
	return affected > 0, nil
}
