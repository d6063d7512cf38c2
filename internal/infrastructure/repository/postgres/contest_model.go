package postgres

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/wicketplay/fantasy-cricket/internal/domain/contest"
)

type contestTableModel struct {
	ID           string    `db:"id"`
	MatchID      string    `db:"match_id"`
	Name         string    `db:"name"`
	EntryFee     int64     `db:"entry_fee"`
	PrizePool    int64     `db:"prize_pool"`
	MaxSpots     int       `db:"max_spots"`
	JoinedUsers  int       `db:"joined_users"`
	Status       string    `db:"status"`
	Distribution []byte    `db:"distribution"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func contestToRow(c contest.Contest) (contestTableModel, error) {
	var distribution []byte
	if len(c.Distribution) > 0 {
		encoded, err := sonic.Marshal(c.Distribution)
		if err != nil {
			return contestTableModel{}, fmt.Errorf("encode distribution: %w", err)
		}
		distribution = encoded
	}
	return contestTableModel{
		ID:           c.ID,
		MatchID:      c.MatchID,
		Name:         c.Name,
		EntryFee:     c.EntryFee,
		PrizePool:    c.PrizePool,
		MaxSpots:     c.MaxSpots,
		JoinedUsers:  c.JoinedUsers,
		Status:       string(c.Status),
		Distribution: distribution,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}, nil
}

func rowToContest(row contestTableModel) (contest.Contest, error) {
	c := contest.Contest{
		ID:          row.ID,
		MatchID:     row.MatchID,
		Name:        row.Name,
		EntryFee:    row.EntryFee,
		PrizePool:   row.PrizePool,
		MaxSpots:    row.MaxSpots,
		JoinedUsers: row.JoinedUsers,
		Status:      contest.Status(row.Status),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if len(row.Distribution) > 0 {
		if err := sonic.Unmarshal(row.Distribution, &c.Distribution); err != nil {
			return contest.Contest{}, fmt.Errorf("decode distribution: %w", err)
		}
	}
	return c, nil
}
