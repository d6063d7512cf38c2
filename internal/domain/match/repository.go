package match

import (
	"context"
	"time"
)

type Repository interface {
	Upsert(ctx context.Context, m Match) error
	GetByID(ctx context.Context, id string) (Match, bool, error)
	GetByExternalID(ctx context.Context, externalID string) (Match, bool, error)
	ListByStatus(ctx context.Context, status Status) ([]Match, error)
	ListUpcomingBetween(ctx context.Context, from, to time.Time) ([]Match, error)
	// UpdateStatus applies the transition only when the row is still in the
	// expected prior status. It reports whether a row was changed, so a
	// repeated transition is a detectable no-op rather than an error.
	UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error)
}
