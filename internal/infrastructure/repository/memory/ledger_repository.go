package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/wicketplay/fantasy-cricket/internal/domain/wallet"
)

// LedgerRepository keeps transactions and the cached user balances in step
// under one lock, mirroring the single-transaction semantics of the SQL
// implementation.
type LedgerRepository struct {
	mu    sync.Mutex
	users *UserRepository
	items map[string]wallet.Transaction
	order []string
}

func NewLedgerRepository(users *UserRepository) *LedgerRepository {
	return &LedgerRepository{
		users: users,
		items: make(map[string]wallet.Transaction),
	}
}

func (r *LedgerRepository) ApplyCredit(_ context.Context, txn wallet.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[txn.ID]; ok {
		return fmt.Errorf("transaction %s already exists", txn.ID)
	}
	if txn.Type == wallet.TypeWinnings {
		for _, id := range r.order {
			existing := r.items[id]
			if existing.Type == wallet.TypeWinnings && existing.ContestID == txn.ContestID && existing.Rank == txn.Rank {
				return fmt.Errorf("winnings for contest %s rank %d already recorded", txn.ContestID, txn.Rank)
			}
		}
	}
	if !r.users.adjustBalance(txn.UserID, txn.Amount) {
		return fmt.Errorf("user %s not found", txn.UserID)
	}
	r.items[txn.ID] = txn
	r.order = append(r.order, txn.ID)
	return nil
}

func (r *LedgerRepository) ApplyDebit(_ context.Context, txn wallet.Transaction) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[txn.ID]; ok {
		return false, fmt.Errorf("transaction %s already exists", txn.ID)
	}
	if !r.users.adjustBalance(txn.UserID, -txn.Amount) {
		return false, nil
	}
	r.items[txn.ID] = txn
	r.order = append(r.order, txn.ID)
	return true, nil
}

func (r *LedgerRepository) GetByID(_ context.Context, id string) (wallet.Transaction, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	txn, ok := r.items[id]
	return txn, ok, nil
}

func (r *LedgerRepository) ListByUserID(_ context.Context, userID string, limit, offset int) ([]wallet.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]wallet.Transaction, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		if r.items[r.order[i]].UserID == userID {
			all = append(all, r.items[r.order[i]])
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *LedgerRepository) ExistsWinnings(_ context.Context, contestID string, rank int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		txn := r.items[id]
		if txn.Type == wallet.TypeWinnings && txn.ContestID == contestID && txn.Rank == rank {
			return true, nil
		}
	}
	return false, nil
}

func (r *LedgerRepository) UpdateStatus(_ context.Context, id string, from, to wallet.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	txn, ok := r.items[id]
	if !ok || txn.Status != from {
		return false, nil
	}
	txn.Status = to
	r.items[id] = txn
	return true, nil
}

func (r *LedgerRepository) ReleasePendingDebit(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	txn, ok := r.items[id]
	if !ok || txn.Status != wallet.StatusPending {
		return false, nil
	}
	if !r.users.adjustBalance(txn.UserID, txn.Amount) {
		return false, fmt.Errorf("user %s not found", txn.UserID)
	}
	txn.Status = wallet.StatusRejected
	r.items[id] = txn
	return true, nil
}
