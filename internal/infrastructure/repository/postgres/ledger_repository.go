package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/wicketplay/fantasy-cricket/internal/domain/wallet"
	qb "github.com/wicketplay/fantasy-cricket/internal/platform/querybuilder"
)

// LedgerRepository writes each ledger entry and its cached balance change
// inside one database transaction. The balance guard is a conditional
// single-statement update, never a read-modify-write.
type LedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) ApplyCredit(ctx context.Context, txn wallet.Transaction) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin credit tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET balance = balance + $1, updated_at = NOW() WHERE id = $2`,
		txn.Amount, txn.UserID,
	)
	if err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("credit balance rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("credit balance: user %s not found", txn.UserID)
	}

	if err := insertTransaction(ctx, tx, txn); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ledger entry already recorded for %s: %w", txn.ID, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit credit tx: %w", err)
	}
	return nil
}

func (r *LedgerRepository) ApplyDebit(ctx context.Context, txn wallet.Transaction) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin debit tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET balance = balance - $1, updated_at = NOW() WHERE id = $2 AND balance >= $1`,
		txn.Amount, txn.UserID,
	)
	if err != nil {
		return false, fmt.Errorf("debit balance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("debit balance rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if err := insertTransaction(ctx, tx, txn); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit debit tx: %w", err)
	}
	return true, nil
}

func insertTransaction(ctx context.Context, tx *sqlx.Tx, txn wallet.Transaction) error {
	query, args, err := qb.InsertModel("transactions", transactionToRow(txn), "")
	if err != nil {
		return fmt.Errorf("build insert transaction query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *LedgerRepository) GetByID(ctx context.Context, id string) (wallet.Transaction, bool, error) {
	query, args, err := qb.Select("*").From("transactions").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return wallet.Transaction{}, false, fmt.Errorf("build select transaction query: %w", err)
	}

	var row transactionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return wallet.Transaction{}, false, nil
		}
		return wallet.Transaction{}, false, fmt.Errorf("select transaction: %w", err)
	}
	return rowToTransaction(row), true, nil
}

func (r *LedgerRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]wallet.Transaction, error) {
	query, args, err := qb.Select("*").From("transactions").
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at DESC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select transactions query: %w", err)
	}
	if limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d OFFSET %d", query, limit, offset)
	}

	var rows []transactionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select transactions by user: %w", err)
	}

	out := make([]wallet.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToTransaction(row))
	}
	return out, nil
}

func (r *LedgerRepository) ExistsWinnings(ctx context.Context, contestID string, rank int) (bool, error) {
	query, args, err := qb.Select("COUNT(1)").From("transactions").
		Where(
			qb.Eq("type", string(wallet.TypeWinnings)),
			qb.Eq("contest_id", contestID),
			qb.Eq("rank", rank),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build count winnings query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("count winnings: %w", err)
	}
	return count > 0, nil
}

func (r *LedgerRepository) UpdateStatus(ctx context.Context, id string, from, to wallet.Status) (bool, error) {
	query, args, err := qb.Update("transactions").
		Set("status", string(to)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.Eq("status", string(from)),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build update transaction status query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update transaction status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update transaction status rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *LedgerRepository) ReleasePendingDebit(ctx context.Context, id string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin release tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var row transactionTableModel
	err = tx.GetContext(ctx, &row,
		`UPDATE transactions SET status = $1, updated_at = NOW()
		 WHERE id = $2 AND status = $3
		 RETURNING *`,
		string(wallet.StatusRejected), id, string(wallet.StatusPending),
	)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("reject pending transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET balance = balance + $1, updated_at = NOW() WHERE id = $2`,
		row.Amount, row.UserID,
	); err != nil {
		return false, fmt.Errorf("refund balance: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit release tx: %w", err)
	}
	return true, nil
}
