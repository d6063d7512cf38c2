package contest

import "time"

type Status string

const (
	StatusOpen      Status = "open"
	StatusLive      Status = "live"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Contest is one prize pool attached to a single match. Amounts are in the
// smallest currency unit.
type Contest struct {
	ID          string
	MatchID     string
	Name        string
	EntryFee    int64
	PrizePool   int64
	MaxSpots    int
	JoinedUsers int
	Status      Status
	// Distribution, when non-empty, is an explicit rank -> prize amount map
	// that overrides the default payout tiers at settlement time.
	Distribution map[int]int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (c Contest) IsFull() bool {
	return c.MaxSpots > 0 && c.JoinedUsers >= c.MaxSpots
}
