package match

import (
	"strings"
	"time"
)

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusLive      Status = "live"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Match is a real-world cricket fixture that contests attach to.
type Match struct {
	ID         string
	ExternalID string
	Name       string
	TeamA      string
	TeamB      string
	Format     string
	Venue      string
	StartsAt   time.Time
	Status     Status
	// RawPayload keeps the last provider payload verbatim for debugging
	// and reconciliation.
	RawPayload []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NormalizeStatus(raw string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusUpcoming, StatusLive, StatusCompleted, StatusCancelled:
		return Status(strings.ToLower(strings.TrimSpace(raw)))
	default:
		return StatusUpcoming
	}
}

func IsFinalStatus(s Status) bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether a status change is allowed. The lifecycle
// only moves forward: upcoming -> live -> completed, with cancellation
// possible from any non-final state.
func CanTransition(from, to Status) bool {
	if from == to {
		return false
	}
	switch to {
	case StatusLive:
		return from == StatusUpcoming
	case StatusCompleted:
		return from == StatusLive
	case StatusCancelled:
		return !IsFinalStatus(from)
	default:
		return false
	}
}
