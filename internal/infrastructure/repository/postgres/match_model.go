package postgres

import (
	"time"

	"github.com/wicketplay/fantasy-cricket/internal/domain/match"
)

type matchTableModel struct {
	ID         string    `db:"id"`
	ExternalID string    `db:"external_id"`
	Name       string    `db:"name"`
	TeamA      string    `db:"team_a"`
	TeamB      string    `db:"team_b"`
	Format     string    `db:"format"`
	Venue      string    `db:"venue"`
	StartsAt   time.Time `db:"starts_at"`
	Status     string    `db:"status"`
	RawPayload []byte    `db:"raw_payload"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func matchToRow(m match.Match) matchTableModel {
	return matchTableModel{
		ID:         m.ID,
		ExternalID: m.ExternalID,
		Name:       m.Name,
		TeamA:      m.TeamA,
		TeamB:      m.TeamB,
		Format:     m.Format,
		Venue:      m.Venue,
		StartsAt:   m.StartsAt,
		Status:     string(m.Status),
		RawPayload: m.RawPayload,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func rowToMatch(row matchTableModel) match.Match {
	return match.Match{
		ID:         row.ID,
		ExternalID: row.ExternalID,
		Name:       row.Name,
		TeamA:      row.TeamA,
		TeamB:      row.TeamB,
		Format:     row.Format,
		Venue:      row.Venue,
		StartsAt:   row.StartsAt,
		Status:     match.Status(row.Status),
		RawPayload: row.RawPayload,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
