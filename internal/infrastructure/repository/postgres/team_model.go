package postgres

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/wicketplay/fantasy-cricket/internal/domain/team"
)

type teamTableModel struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	ContestID   string    `db:"contest_id"`
	MatchID     string    `db:"match_id"`
	Players     []byte    `db:"players"`
	Captain     string    `db:"captain"`
	ViceCaptain string    `db:"vice_captain"`
	TotalPoints float64   `db:"total_points"`
	Rank        *int      `db:"rank"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func teamToRow(t team.Team) (teamTableModel, error) {
	players, err := sonic.Marshal(t.Players)
	if err != nil {
		return teamTableModel{}, fmt.Errorf("encode players: %w", err)
	}
	return teamTableModel{
		ID:          t.ID,
		UserID:      t.UserID,
		ContestID:   t.ContestID,
		MatchID:     t.MatchID,
		Players:     players,
		Captain:     t.Captain,
		ViceCaptain: t.ViceCaptain,
		TotalPoints: t.TotalPoints,
		Rank:        t.Rank,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}, nil
}

func rowToTeam(row teamTableModel) (team.Team, error) {
	t := team.Team{
		ID:          row.ID,
		UserID:      row.UserID,
		ContestID:   row.ContestID,
		MatchID:     row.MatchID,
		Captain:     row.Captain,
		ViceCaptain: row.ViceCaptain,
		TotalPoints: row.TotalPoints,
		Rank:        row.Rank,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if len(row.Players) > 0 {
		if err := sonic.Unmarshal(row.Players, &t.Players); err != nil {
			return team.Team{}, fmt.Errorf("decode players: %w", err)
		}
	}
	return t, nil
}
