package team

import "time"

// SquadSize is the number of real players a fantasy team selects.
const SquadSize = 11

// Team is one user's entry into one contest for one match.
type Team struct {
	ID          string
	UserID      string
	ContestID   string
	MatchID     string
	Players     []string
	Captain     string
	ViceCaptain string
	TotalPoints float64
	// Rank is nil until the owning contest settles.
	Rank      *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t Team) HasPlayer(name string) bool {
	for _, p := range t.Players {
		if p == name {
			return true
		}
	}
	return false
}
