package playerstats

import "time"

// PlayerStats is the latest canonical statistic snapshot for one player in
// one match, together with the fantasy points derived from it. Each refresh
// cycle overwrites the whole row, so the record is never a running delta.
type PlayerStats struct {
	MatchID     string
	PlayerName  string
	Runs        int
	BallsFaced  int
	Fours       int
	Sixes       int
	StrikeRate  float64
	Wickets     int
	OversBowled float64
	Maidens     int
	EconomyRate float64
	Catches     int
	Stumpings   int
	RunOuts     int
	TotalPoints int
	UpdatedAt   time.Time
}
