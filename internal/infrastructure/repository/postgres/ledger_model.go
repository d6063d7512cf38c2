package postgres

import (
	"database/sql"
	"time"

	"github.com/wicketplay/fantasy-cricket/internal/domain/wallet"
)

type transactionTableModel struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	Type        string         `db:"type"`
	Amount      int64          `db:"amount"`
	Status      string         `db:"status"`
	Reference   string         `db:"reference"`
	Description string         `db:"description"`
	ContestID   sql.NullString `db:"contest_id"`
	Rank        sql.NullInt64  `db:"rank"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func transactionToRow(txn wallet.Transaction) transactionTableModel {
	contestID := sql.NullString{}
	if txn.ContestID != "" {
		contestID = sql.NullString{String: txn.ContestID, Valid: true}
	}
	rank := sql.NullInt64{}
	if txn.Rank > 0 {
		rank = sql.NullInt64{Int64: int64(txn.Rank), Valid: true}
	}
	return transactionTableModel{
		ID:          txn.ID,
		UserID:      txn.UserID,
		Type:        string(txn.Type),
		Amount:      txn.Amount,
		Status:      string(txn.Status),
		Reference:   txn.Reference,
		Description: txn.Description,
		ContestID:   contestID,
		Rank:        rank,
		CreatedAt:   txn.CreatedAt,
		UpdatedAt:   txn.UpdatedAt,
	}
}

func rowToTransaction(row transactionTableModel) wallet.Transaction {
	return wallet.Transaction{
		ID:          row.ID,
		UserID:      row.UserID,
		Type:        wallet.Type(row.Type),
		Amount:      row.Amount,
		Status:      wallet.Status(row.Status),
		Reference:   row.Reference,
		Description: row.Description,
		ContestID:   row.ContestID.String,
		Rank:        int(row.Rank.Int64),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
