package wallet

import "context"

// Ledger persists transactions and keeps the owner's cached balance in step
// with them. Credit and debit each run as one atomic unit: the conditional
// balance update and the ledger insert either both land or neither does.
type Ledger interface {
	// ApplyCredit records the transaction and increases the user's balance
	// by txn.Amount.
	ApplyCredit(ctx context.Context, txn Transaction) error
	// ApplyDebit decreases the balance by txn.Amount only while the balance
	// stays non-negative, then records the transaction. It reports whether
	// the debit was applied; false means insufficient funds and no writes.
	ApplyDebit(ctx context.Context, txn Transaction) (bool, error)
	GetByID(ctx context.Context, id string) (Transaction, bool, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]Transaction, error)
	// ExistsWinnings reports whether a winnings entry for the (contest, rank)
	// pair already exists.
	ExistsWinnings(ctx context.Context, contestID string, rank int) (bool, error)
	// UpdateStatus moves a pending entry forward and reports whether a row
	// changed. Used by the withdrawal approval flow.
	UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error)
	// ReleasePendingDebit rejects a pending debit-direction entry and adds
	// its amount back to the balance in the same atomic unit. It reports
	// whether the entry was still pending.
	ReleasePendingDebit(ctx context.Context, id string) (bool, error)
}
