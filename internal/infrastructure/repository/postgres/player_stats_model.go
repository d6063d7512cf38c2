package postgres

import (
	"time"

	"github.com/wicketplay/fantasy-cricket/internal/domain/playerstats"
)

type playerStatsTableModel struct {
	MatchID     string    `db:"match_id"`
	PlayerName  string    `db:"player_name"`
	Runs        int       `db:"runs"`
	BallsFaced  int       `db:"balls_faced"`
	Fours       int       `db:"fours"`
	Sixes       int       `db:"sixes"`
	StrikeRate  float64   `db:"strike_rate"`
	Wickets     int       `db:"wickets"`
	OversBowled float64   `db:"overs_bowled"`
	Maidens     int       `db:"maidens"`
	EconomyRate float64   `db:"economy_rate"`
	Catches     int       `db:"catches"`
	Stumpings   int       `db:"stumpings"`
	RunOuts     int       `db:"run_outs"`
	TotalPoints int       `db:"total_points"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func playerStatsToRow(s playerstats.PlayerStats) playerStatsTableModel {
	return playerStatsTableModel{
		MatchID:     s.MatchID,
		PlayerName:  s.PlayerName,
		Runs:        s.Runs,
		BallsFaced:  s.BallsFaced,
		Fours:       s.Fours,
		Sixes:       s.Sixes,
		StrikeRate:  s.StrikeRate,
		Wickets:     s.Wickets,
		OversBowled: s.OversBowled,
		Maidens:     s.Maidens,
		EconomyRate: s.EconomyRate,
		Catches:     s.Catches,
		Stumpings:   s.Stumpings,
		RunOuts:     s.RunOuts,
		TotalPoints: s.TotalPoints,
		UpdatedAt:   s.UpdatedAt,
	}
}

func rowToPlayerStats(row playerStatsTableModel) playerstats.PlayerStats {
	return playerstats.PlayerStats{
		MatchID:     row.MatchID,
		PlayerName:  row.PlayerName,
		Runs:        row.Runs,
		BallsFaced:  row.BallsFaced,
		Fours:       row.Fours,
		Sixes:       row.Sixes,
		StrikeRate:  row.StrikeRate,
		Wickets:     row.Wickets,
		OversBowled: row.OversBowled,
		Maidens:     row.Maidens,
		EconomyRate: row.EconomyRate,
		Catches:     row.Catches,
		Stumpings:   row.Stumpings,
		RunOuts:     row.RunOuts,
		TotalPoints: row.TotalPoints,
		UpdatedAt:   row.UpdatedAt,
	}
}
