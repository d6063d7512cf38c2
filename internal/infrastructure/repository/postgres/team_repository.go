package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/wicketplay/fantasy-cricket/internal/domain/team"
	qb "github.com/wicketplay/fantasy-cricket/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Create(ctx context.Context, t team.Team) error {
	row, err := teamToRow(t)
	if err != nil {
		return err
	}
	query, args, err := qb.InsertModel("teams", row, "")
	if err != nil {
		return fmt.Errorf("build insert team query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert team: %w", err)
	}
	return nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("select team: %w", err)
	}

	t, err := rowToTeam(row)
	if err != nil {
		return team.Team{}, false, err
	}
	return t, true, nil
}

func (r *TeamRepository) ListByContestID(ctx context.Context, contestID string) ([]team.Team, error) {
	return r.list(ctx, "contest_id", contestID, []string{"created_at", "id"})
}

func (r *TeamRepository) ListByMatchID(ctx context.Context, matchID string) ([]team.Team, error) {
	return r.list(ctx, "match_id", matchID, []string{"created_at", "id"})
}

func (r *TeamRepository) ListByUserID(ctx context.Context, userID string) ([]team.Team, error) {
	return r.list(ctx, "user_id", userID, []string{"created_at DESC", "id"})
}

func (r *TeamRepository) list(ctx context.Context, column, value string, orderBy []string) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq(column, value)).
		OrderBy(orderBy...).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams by %s: %w", column, err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		t, err := rowToTeam(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *TeamRepository) ExistsByUserAndContest(ctx context.Context, userID, contestID string) (bool, error) {
	query, args, err := qb.Select("COUNT(1)").From("teams").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("contest_id", contestID),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build count teams query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("count teams: %w", err)
	}
	return count > 0, nil
}

func (r *TeamRepository) UpdatePoints(ctx context.Context, id string, totalPoints float64) error {
	query, args, err := qb.Update("teams").
		Set("total_points", totalPoints).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team points query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update team points: %w", err)
	}
	return nil
}

func (r *TeamRepository) UpdateRank(ctx context.Context, id string, rank int) error {
	query, args, err := qb.Update("teams").
		Set("rank", rank).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team rank query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update team rank: %w", err)
	}
	return nil
}
