package memory

import (
	"context"
	"sync"
	"time"

	"github.com/wicketplay/fantasy-cricket/internal/domain/match"
)

type MatchRepository struct {
	mu    sync.RWMutex
	items map[string]match.Match
	order []string
}

func NewMatchRepository(matches ...match.Match) *MatchRepository {
	r := &MatchRepository{items: make(map[string]match.Match, len(matches))}
	for _, m := range matches {
		r.items[m.ID] = m
		r.order = append(r.order, m.ID)
	}
	return r
}

func (r *MatchRepository) Upsert(_ context.Context, m match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[m.ID]; !ok {
		r.order = append(r.order, m.ID)
	}
	r.items[m.ID] = m
	return nil
}

func (r *MatchRepository) GetByID(_ context.Context, id string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[id]
	return m, ok, nil
}

func (r *MatchRepository) GetByExternalID(_ context.Context, externalID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if r.items[id].ExternalID == externalID {
			return r.items[id], true, nil
		}
	}
	return match.Match{}, false, nil
}

func (r *MatchRepository) ListByStatus(_ context.Context, status match.Status) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.order))
	for _, id := range r.order {
		if r.items[id].Status == status {
			out = append(out, r.items[id])
		}
	}
	return out, nil
}

func (r *MatchRepository) ListUpcomingBetween(_ context.Context, from, to time.Time) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.order))
	for _, id := range r.order {
		m := r.items[id]
		if m.Status != match.StatusUpcoming {
			continue
		}
		if m.StartsAt.Before(from) || m.StartsAt.After(to) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *MatchRepository) UpdateStatus(_ context.Context, id string, from, to match.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.items[id]
	if !ok || m.Status != from {
		return false, nil
	}
	m.Status = to
	r.items[id] = m
	return true, nil
}
