package memory

import (
	"context"
	"sync"

	"github.com/wicketplay/fantasy-cricket/internal/domain/playerstats"
)

type PlayerStatsRepository struct {
	mu    sync.RWMutex
	items map[string]playerstats.PlayerStats
	order []string
}

func NewPlayerStatsRepository() *PlayerStatsRepository {
	return &PlayerStatsRepository{items: make(map[string]playerstats.PlayerStats)}
}

func statsKey(matchID, playerName string) string {
	return matchID + "|" + playerName
}

func (r *PlayerStatsRepository) Upsert(_ context.Context, stats playerstats.PlayerStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := statsKey(stats.MatchID, stats.PlayerName)
	if _, ok := r.items[key]; !ok {
		r.order = append(r.order, key)
	}
	r.items[key] = stats
	return nil
}

func (r *PlayerStatsRepository) GetByMatchAndPlayer(_ context.Context, matchID, playerName string) (playerstats.PlayerStats, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats, ok := r.items[statsKey(matchID, playerName)]
	return stats, ok, nil
}

func (r *PlayerStatsRepository) ListByMatchID(_ context.Context, matchID string) ([]playerstats.PlayerStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]playerstats.PlayerStats, 0, len(r.order))
	for _, key := range r.order {
		if r.items[key].MatchID == matchID {
			out = append(out, r.items[key])
		}
	}
	return out, nil
}
