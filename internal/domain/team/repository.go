package team

import "context"

type Repository interface {
	Create(ctx context.Context, t Team) error
	GetByID(ctx context.Context, id string) (Team, bool, error)
	// ListByContestID returns entries ordered by creation time ascending.
	ListByContestID(ctx context.Context, contestID string) ([]Team, error)
	ListByMatchID(ctx context.Context, matchID string) ([]Team, error)
	ListByUserID(ctx context.Context, userID string) ([]Team, error)
	ExistsByUserAndContest(ctx context.Context, userID, contestID string) (bool, error)
	// UpdatePoints overwrites the team's total, replacing the prior value.
	UpdatePoints(ctx context.Context, id string, totalPoints float64) error
	UpdateRank(ctx context.Context, id string, rank int) error
}
