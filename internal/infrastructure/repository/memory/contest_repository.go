package memory

import (
	"context"
	"sync"

	"github.com/wicketplay/fantasy-cricket/internal/domain/contest"
)

type ContestRepository struct {
	mu    sync.Mutex
	items map[string]contest.Contest
	order []string
}

func NewContestRepository(contests ...contest.Contest) *ContestRepository {
	r := &ContestRepository{items: make(map[string]contest.Contest, len(contests))}
	for _, c := range contests {
		r.items[c.ID] = c
		r.order = append(r.order, c.ID)
	}
	return r
}

func (r *ContestRepository) Create(_ context.Context, c contest.Contest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[c.ID]; !ok {
		r.order = append(r.order, c.ID)
	}
	r.items[c.ID] = c
	return nil
}

func (r *ContestRepository) GetByID(_ context.Context, id string) (contest.Contest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]
	return c, ok, nil
}

func (r *ContestRepository) ListByMatchID(_ context.Context, matchID string) ([]contest.Contest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]contest.Contest, 0, len(r.order))
	for _, id := range r.order {
		if r.items[id].MatchID == matchID {
			out = append(out, r.items[id])
		}
	}
	return out, nil
}

// IncrementJoined mirrors the conditional single-statement update of the
// SQL implementation: the check and the bump happen under one lock.
func (r *ContestRepository) IncrementJoined(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]
	if !ok || c.IsFull() {
		return false, nil
	}
	c.JoinedUsers++
	r.items[id] = c
	return true, nil
}

func (r *ContestRepository) DecrementJoined(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]
	if !ok || c.JoinedUsers == 0 {
		return nil
	}
	c.JoinedUsers--
	r.items[id] = c
	return nil
}

func (r *ContestRepository) UpdateStatus(_ context.Context, id string, from, to contest.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	r.items[id] = c
	return true, nil
}

func (r *ContestRepository) MarkCompleted(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]
	if !ok || c.Status == contest.StatusCompleted || c.Status == contest.StatusCancelled {
		return false, nil
	}
	c.Status = contest.StatusCompleted
	r.items[id] = c
	return true, nil
}
