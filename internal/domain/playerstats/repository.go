package playerstats

import "context"

type Repository interface {
	// Upsert replaces the (match, player) snapshot entirely.
	Upsert(ctx context.Context, stats PlayerStats) error
	GetByMatchAndPlayer(ctx context.Context, matchID, playerName string) (PlayerStats, bool, error)
	ListByMatchID(ctx context.Context, matchID string) ([]PlayerStats, error)
}
