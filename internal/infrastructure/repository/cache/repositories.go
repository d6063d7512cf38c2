package cache

import (
	"context"
	"time"

	"github.com/wicketplay/fantasy-cricket/internal/domain/match"
	"github.com/wicketplay/fantasy-cricket/internal/domain/playerstats"
	basecache "github.com/wicketplay/fantasy-cricket/internal/platform/cache"
)

// MatchRepository is a read-through cache in front of a match.Repository.
// Writes pass straight to the backing repository and drop every cached
// match entry, so readers never see a status older than the last write.
type MatchRepository struct {
	next  match.Repository
	cache *basecache.Store
}

func NewMatchRepository(next match.Repository, cache *basecache.Store) *MatchRepository {
	return &MatchRepository{next: next, cache: cache}
}

func (r *MatchRepository) Upsert(ctx context.Context, m match.Match) error {
	if err := r.next.Upsert(ctx, m); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "match:")
	return nil
}

func (r *MatchRepository) GetByID(ctx context.Context, id string) (match.Match, bool, error) {
	key := "match:id:" + id
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedMatch{value: item, exists: exists}, nil
	})
	if err != nil {
		return match.Match{}, false, err
	}

	cached, _ := v.(cachedMatch)
	return cached.value, cached.exists, nil
}

func (r *MatchRepository) GetByExternalID(ctx context.Context, externalID string) (match.Match, bool, error) {
	key := "match:ext:" + externalID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByExternalID(ctx, externalID)
		if err != nil {
			return nil, err
		}
		return cachedMatch{value: item, exists: exists}, nil
	})
	if err != nil {
		return match.Match{}, false, err
	}

	cached, _ := v.(cachedMatch)
	return cached.value, cached.exists, nil
}

func (r *MatchRepository) ListByStatus(ctx context.Context, status match.Status) ([]match.Match, error) {
	key := "match:status:" + string(status)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		return append([]match.Match(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]match.Match)
	return append([]match.Match(nil), items...), nil
}

// ListUpcomingBetween is not cached: the window endpoints shift on every
// call, so entries would never be hit twice.
func (r *MatchRepository) ListUpcomingBetween(ctx context.Context, from, to time.Time) ([]match.Match, error) {
	return r.next.ListUpcomingBetween(ctx, from, to)
}

func (r *MatchRepository) UpdateStatus(ctx context.Context, id string, from, to match.Status) (bool, error) {
	changed, err := r.next.UpdateStatus(ctx, id, from, to)
	if err != nil {
		return false, err
	}
	if changed {
		r.cache.DeletePrefix(ctx, "match:")
	}
	return changed, nil
}

type cachedMatch struct {
	value  match.Match
	exists bool
}

// PlayerStatsRepository caches per-match stat listings. Live refresh
// overwrites snapshots in bulk, so a single upsert invalidates the whole
// match listing rather than tracking individual players.
type PlayerStatsRepository struct {
	next  playerstats.Repository
	cache *basecache.Store
}

func NewPlayerStatsRepository(next playerstats.Repository, cache *basecache.Store) *PlayerStatsRepository {
	return &PlayerStatsRepository{next: next, cache: cache}
}

func (r *PlayerStatsRepository) Upsert(ctx context.Context, stats playerstats.PlayerStats) error {
	if err := r.next.Upsert(ctx, stats); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "stats:"+stats.MatchID)
	return nil
}

func (r *PlayerStatsRepository) GetByMatchAndPlayer(ctx context.Context, matchID, playerName string) (playerstats.PlayerStats, bool, error) {
	return r.next.GetByMatchAndPlayer(ctx, matchID, playerName)
}

func (r *PlayerStatsRepository) ListByMatchID(ctx context.Context, matchID string) ([]playerstats.PlayerStats, error) {
	key := "stats:" + matchID + ":list"
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByMatchID(ctx, matchID)
		if err != nil {
			return nil, err
		}
		return append([]playerstats.PlayerStats(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]playerstats.PlayerStats)
	return append([]playerstats.PlayerStats(nil), items...), nil
}
