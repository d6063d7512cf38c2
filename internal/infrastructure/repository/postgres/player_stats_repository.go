package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/wicketplay/fantasy-cricket/internal/domain/playerstats"
	qb "github.com/wicketplay/fantasy-cricket/internal/platform/querybuilder"
)

type PlayerStatsRepository struct {
	db *sqlx.DB
}

func NewPlayerStatsRepository(db *sqlx.DB) *PlayerStatsRepository {
	return &PlayerStatsRepository{db: db}
}

func (r *PlayerStatsRepository) Upsert(ctx context.Context, stats playerstats.PlayerStats) error {
	query, args, err := qb.InsertModel("player_stats", playerStatsToRow(stats),
		`ON CONFLICT (match_id, player_name) DO UPDATE SET
			runs = EXCLUDED.runs,
			balls_faced = EXCLUDED.balls_faced,
			fours = EXCLUDED.fours,
			sixes = EXCLUDED.sixes,
			strike_rate = EXCLUDED.strike_rate,
			wickets = EXCLUDED.wickets,
			overs_bowled = EXCLUDED.overs_bowled,
			maidens = EXCLUDED.maidens,
			economy_rate = EXCLUDED.economy_rate,
			catches = EXCLUDED.catches,
			stumpings = EXCLUDED.stumpings,
			run_outs = EXCLUDED.run_outs,
			total_points = EXCLUDED.total_points,
			updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert player stats query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert player stats: %w", err)
	}
	return nil
}

func (r *PlayerStatsRepository) GetByMatchAndPlayer(ctx context.Context, matchID, playerName string) (playerstats.PlayerStats, bool, error) {
	query, args, err := qb.Select("*").From("player_stats").
		Where(
			qb.Eq("match_id", matchID),
			qb.Eq("player_name", playerName),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return playerstats.PlayerStats{}, false, fmt.Errorf("build select player stats query: %w", err)
	}

	var row playerStatsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return playerstats.PlayerStats{}, false, nil
		}
		return playerstats.PlayerStats{}, false, fmt.Errorf("select player stats: %w", err)
	}
	return rowToPlayerStats(row), true, nil
}

func (r *PlayerStatsRepository) ListByMatchID(ctx context.Context, matchID string) ([]playerstats.PlayerStats, error) {
	query, args, err := qb.Select("*").From("player_stats").
		Where(qb.Eq("match_id", matchID)).
		OrderBy("total_points DESC", "player_name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select match player stats query: %w", err)
	}

	var rows []playerStatsTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select player stats by match: %w", err)
	}

	out := make([]playerstats.PlayerStats, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToPlayerStats(row))
	}
	return out, nil
}
