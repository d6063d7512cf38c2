package wallet

import "time"

type Type string

const (
	TypeDeposit      Type = "deposit"
	TypeWithdraw     Type = "withdraw"
	TypeContestEntry Type = "contest_entry"
	TypeWinnings     Type = "winnings"
	TypeReferral     Type = "referral"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
	StatusFailed    Status = "failed"
)

// Transaction is one immutable ledger entry. Amount is always positive; the
// type decides the direction of the balance change. The sum of completed
// entries for a user is the source of truth their cached balance must match.
type Transaction struct {
	ID          string
	UserID      string
	Type        Type
	Amount      int64
	Status      Status
	Reference   string
	Description string
	// ContestID and Rank are set on winnings and contest_entry rows. The
	// (contest, rank) pair is unique across winnings rows so a retried
	// settlement cannot pay the same rank twice.
	ContestID string
	Rank      int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCredit reports whether a completed entry of this type increases the
// balance.
func (t Type) IsCredit() bool {
	switch t {
	case TypeDeposit, TypeWinnings, TypeReferral:
		return true
	default:
		return false
	}
}
