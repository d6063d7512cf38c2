package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/wicketplay/fantasy-cricket/internal/domain/userprofile"
	"github.com/wicketplay/fantasy-cricket/internal/domain/wallet"
	idgen "github.com/wicketplay/fantasy-cricket/internal/platform/id"
	"github.com/wicketplay/fantasy-cricket/internal/platform/logging"
)

// WalletService owns the credit/debit primitives. Every balance change goes
// through the ledger: one transaction row plus the conditional cached
// balance update, applied as a single unit by the Ledger implementation.
type WalletService struct {
	ledger   wallet.Ledger
	userRepo userprofile.Repository
	idGen    idgen.Generator
	logger   *logging.Logger
	now      func() time.Time
}

func NewWalletService(ledger wallet.Ledger, userRepo userprofile.Repository, idGen idgen.Generator, logger *logging.Logger) *WalletService {
	if logger == nil {
		logger = logging.Default()
	}
	return &WalletService{
		ledger:   ledger,
		userRepo: userRepo,
		idGen:    idGen,
		logger:   logger,
		now:      time.Now,
	}
}

// CreditInput describes a balance increase.
type CreditInput struct {
	UserID      string
	Amount      int64
	Type        wallet.Type
	Description string
	Reference   string
	ContestID   string
	Rank        int
}

// DebitInput describes a balance decrease.
type DebitInput struct {
	UserID      string
	Amount      int64
	Type        wallet.Type
	Description string
	ContestID   string
}

func (s *WalletService) Credit(ctx context.Context, input CreditInput) (wallet.Transaction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Wallet.Credit")
	defer span.End()

	if err := validateAmount(input.UserID, input.Amount); err != nil {
		return wallet.Transaction{}, err
	}
	if !input.Type.IsCredit() {
		return wallet.Transaction{}, fmt.Errorf("%w: %s is not a credit type", ErrInvalidInput, input.Type)
	}

	txn, err := s.newTransaction(input.UserID, input.Type, input.Amount, wallet.StatusCompleted)
	if err != nil {
		return wallet.Transaction{}, err
	}
	txn.Description = input.Description
	txn.Reference = input.Reference
	txn.ContestID = input.ContestID
	txn.Rank = input.Rank

	if err := s.ledger.ApplyCredit(ctx, txn); err != nil {
		return wallet.Transaction{}, fmt.Errorf("apply credit: %w", err)
	}
	return txn, nil
}

func (s *WalletService) Debit(ctx context.Context, input DebitInput) (wallet.Transaction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Wallet.Debit")
	defer span.End()

	if err := validateAmount(input.UserID, input.Amount); err != nil {
		return wallet.Transaction{}, err
	}
	if input.Type.IsCredit() {
		return wallet.Transaction{}, fmt.Errorf("%w: %s is not a debit type", ErrInvalidInput, input.Type)
	}

	txn, err := s.newTransaction(input.UserID, input.Type, input.Amount, wallet.StatusCompleted)
	if err != nil {
		return wallet.Transaction{}, err
	}
	txn.Description = input.Description
	txn.ContestID = input.ContestID

	applied, err := s.ledger.ApplyDebit(ctx, txn)
	if err != nil {
		return wallet.Transaction{}, fmt.Errorf("apply debit: %w", err)
	}
	if !applied {
		return wallet.Transaction{}, fmt.Errorf("%w: user %s cannot cover %d", ErrInsufficientFunds, input.UserID, input.Amount)
	}
	return txn, nil
}

func (s *WalletService) Deposit(ctx context.Context, userID string, amount int64, reference string) (wallet.Transaction, error) {
	return s.Credit(ctx, CreditInput{
		UserID:      userID,
		Amount:      amount,
		Type:        wallet.TypeDeposit,
		Description: "wallet deposit",
		Reference:   reference,
	})
}

// RequestWithdrawal puts the amount on hold: the balance drops immediately
// and the withdraw entry stays pending until an operator approves or
// rejects it.
func (s *WalletService) RequestWithdrawal(ctx context.Context, userID string, amount int64) (wallet.Transaction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Wallet.RequestWithdrawal")
	defer span.End()

	if err := validateAmount(userID, amount); err != nil {
		return wallet.Transaction{}, err
	}

	txn, err := s.newTransaction(userID, wallet.TypeWithdraw, amount, wallet.StatusPending)
	if err != nil {
		return wallet.Transaction{}, err
	}
	txn.Description = "withdrawal request"

	applied, err := s.ledger.ApplyDebit(ctx, txn)
	if err != nil {
		return wallet.Transaction{}, fmt.Errorf("apply withdrawal hold: %w", err)
	}
	if !applied {
		return wallet.Transaction{}, fmt.Errorf("%w: user %s cannot cover %d", ErrInsufficientFunds, userID, amount)
	}
	return txn, nil
}

func (s *WalletService) ApproveWithdrawal(ctx context.Context, transactionID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.Wallet.ApproveWithdrawal")
	defer span.End()

	txn, found, err := s.ledger.GetByID(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}
	if !found || txn.Type != wallet.TypeWithdraw {
		return fmt.Errorf("%w: withdrawal %s", ErrNotFound, transactionID)
	}

	changed, err := s.ledger.UpdateStatus(ctx, transactionID, wallet.StatusPending, wallet.StatusCompleted)
	if err != nil {
		return fmt.Errorf("complete withdrawal: %w", err)
	}
	if !changed {
		return fmt.Errorf("%w: withdrawal %s is not pending", ErrInvalidInput, transactionID)
	}
	return nil
}

// RejectWithdrawal releases the hold: the entry flips to rejected and the
// amount returns to the balance in the same atomic unit.
func (s *WalletService) RejectWithdrawal(ctx context.Context, transactionID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.Wallet.RejectWithdrawal")
	defer span.End()

	txn, found, err := s.ledger.GetByID(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}
	if !found || txn.Type != wallet.TypeWithdraw {
		return fmt.Errorf("%w: withdrawal %s", ErrNotFound, transactionID)
	}

	released, err := s.ledger.ReleasePendingDebit(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("release withdrawal hold: %w", err)
	}
	if !released {
		return fmt.Errorf("%w: withdrawal %s is not pending", ErrInvalidInput, transactionID)
	}
	return nil
}

func (s *WalletService) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]wallet.Transaction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Wallet.ListTransactions")
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.ledger.ListByUserID(ctx, userID, limit, offset)
}

func (s *WalletService) newTransaction(userID string, txType wallet.Type, amount int64, status wallet.Status) (wallet.Transaction, error) {
	id, err := s.idGen.NewID(idgen.PrefixTransaction)
	if err != nil {
		return wallet.Transaction{}, fmt.Errorf("generate transaction id: %w", err)
	}
	now := s.now()
	return wallet.Transaction{
		ID:        id,
		UserID:    userID,
		Type:      txType,
		Amount:    amount,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func validateAmount(userID string, amount int64) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	return nil
}
