package contest

import "context"

type Repository interface {
	Create(ctx context.Context, c Contest) error
	GetByID(ctx context.Context, id string) (Contest, bool, error)
	ListByMatchID(ctx context.Context, matchID string) ([]Contest, error)
	// IncrementJoined bumps joined_users only while joined_users < max_spots,
	// as a single conditional update. It reports whether a slot was taken.
	IncrementJoined(ctx context.Context, id string) (bool, error)
	// DecrementJoined releases a slot taken by IncrementJoined when the rest
	// of the entry flow fails.
	DecrementJoined(ctx context.Context, id string) error
	// UpdateStatus applies the transition only when the row is still in the
	// expected prior status and reports whether a row was changed.
	UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error)
	// MarkCompleted finalizes the contest unless it is already in a final
	// status. It reports whether this call performed the flip.
	MarkCompleted(ctx context.Context, id string) (bool, error)
}
