package memory

import (
	"context"
	"sync"

	"github.com/wicketplay/fantasy-cricket/internal/domain/userprofile"
)

type UserRepository struct {
	mu    sync.Mutex
	items map[string]userprofile.User
	order []string
}

func NewUserRepository(users ...userprofile.User) *UserRepository {
	r := &UserRepository{items: make(map[string]userprofile.User, len(users))}
	for _, u := range users {
		r.items[u.ID] = u
		r.order = append(r.order, u.ID)
	}
	return r
}

func (r *UserRepository) Create(_ context.Context, u userprofile.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[u.ID]; !ok {
		r.order = append(r.order, u.ID)
	}
	r.items[u.ID] = u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (userprofile.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	return u, ok, nil
}

func (r *UserRepository) GetByTelegramID(_ context.Context, telegramID int64) (userprofile.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		if r.items[id].TelegramID == telegramID {
			return r.items[id], true, nil
		}
	}
	return userprofile.User{}, false, nil
}

func (r *UserRepository) GetByReferralCode(_ context.Context, code string) (userprofile.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		if r.items[id].ReferralCode == code {
			return r.items[id], true, nil
		}
	}
	return userprofile.User{}, false, nil
}

func (r *UserRepository) ListAll(_ context.Context) ([]userprofile.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]userprofile.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *UserRepository) IncrementReferralStats(_ context.Context, id string, earned int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return nil
	}
	u.ReferralCount++
	u.ReferralEarnings += earned
	r.items[id] = u
	return nil
}

// adjustBalance is shared with the ledger repository, which owns balance
// mutations.
func (r *UserRepository) adjustBalance(id string, delta int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return false
	}
	if u.Balance+delta < 0 {
		return false
	}
	u.Balance += delta
	r.items[id] = u
	return true
}
