package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wicketplay/fantasy-cricket/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	items map[string]team.Team
	order []string
}

func NewTeamRepository(teams ...team.Team) *TeamRepository {
	r := &TeamRepository{items: make(map[string]team.Team, len(teams))}
	for _, t := range teams {
		r.items[t.ID] = t
		r.order = append(r.order, t.ID)
	}
	return r
}

func (r *TeamRepository) Create(_ context.Context, t team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[t.ID]; !ok {
		r.order = append(r.order, t.ID)
	}
	r.items[t.ID] = t
	return nil
}

func (r *TeamRepository) GetByID(_ context.Context, id string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	return t, ok, nil
}

func (r *TeamRepository) ListByContestID(_ context.Context, contestID string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.order))
	for _, id := range r.order {
		if r.items[id].ContestID == contestID {
			out = append(out, r.items[id])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *TeamRepository) ListByMatchID(_ context.Context, matchID string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.order))
	for _, id := range r.order {
		if r.items[id].MatchID == matchID {
			out = append(out, r.items[id])
		}
	}
	return out, nil
}

func (r *TeamRepository) ListByUserID(_ context.Context, userID string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.order))
	for _, id := range r.order {
		if r.items[id].UserID == userID {
			out = append(out, r.items[id])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *TeamRepository) ExistsByUserAndContest(_ context.Context, userID, contestID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		t := r.items[id]
		if t.UserID == userID && t.ContestID == contestID {
			return true, nil
		}
	}
	return false, nil
}

func (r *TeamRepository) UpdatePoints(_ context.Context, id string, totalPoints float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok {
		return nil
	}
	t.TotalPoints = totalPoints
	r.items[id] = t
	return nil
}

func (r *TeamRepository) UpdateRank(_ context.Context, id string, rank int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok {
		return nil
	}
	t.Rank = &rank
	r.items[id] = t
	return nil
}
