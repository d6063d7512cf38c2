package cricket

import "time"

// Stats is the provider-agnostic per-player statistic snapshot for one
// match. Values are cumulative match-to-date figures, not deltas.
type Stats struct {
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
}

// RawMatch is a provider match listing entry before it is persisted.
type RawMatch struct {
	ExternalID string
	Name       string
	TeamA      string
	TeamB      string
	Format     string
	Venue      string
	StartsAt   time.Time
	Ended      bool
	Status     string
	Payload    []byte
}

// MatchInfo is a provider's answer to a single-match status lookup.
type MatchInfo struct {
	ExternalID string
	Status     string
	Ended      bool
}

// RawScorecard carries per-player entries exactly as a provider shaped
// them. Field names differ between providers and are resolved by
// NormalizePlayerStats.
type RawScorecard struct {
	MatchExternalID string
	Entries         []map[string]any
}

// Scorecard is the canonical form the pipeline consumes.
type Scorecard struct {
	MatchExternalID string
	Players         map[string]Stats
}
