package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type transactionRepo struct{}

// NewTransactionRepository returns a pgx-backed TransactionRepository.
func NewTransactionRepository() TransactionRepository {
	return &transactionRepo{}
}

const txColumns = `id, user_id, type, amount, balance_after,
	external_transaction_id, target_transaction_id, entry_id, metadata, created_at`

func (r *transactionRepo) FindExisting(ctx context.Context, db DBTX, key domain.IdempotencyKey) (*domain.Transaction, error) {
	row := db.QueryRow(ctx, `
		SELECT `+txColumns+`
		FROM transactions
		WHERE user_id = $1 AND external_transaction_id = $2`,
		key.UserID, key.ExternalTransactionID)
	return scanTransaction(row)
}

func (r *transactionRepo) Insert(ctx context.Context, db DBTX, params domain.PostLedgerEntryParams, balanceAfter int64) (*domain.Transaction, error) {
	meta := params.Metadata
	if meta == nil {
		meta = json.RawMessage(`{}`)
	}

	row := db.QueryRow(ctx, `
		INSERT INTO transactions
		  (user_id, type, amount, balance_after,
		   external_transaction_id, target_transaction_id, entry_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+txColumns,
		params.UserID,
		string(params.Type),
		params.Amount,
		balanceAfter,
		params.ExternalTransactionID,
		params.TargetTransactionID,
		params.EntryID,
		meta,
	)
	return scanTransaction(row)
}

func (r *transactionRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Transaction, error) {
	row := db.QueryRow(ctx, `
		SELECT `+txColumns+`
		FROM transactions WHERE id = $1`, id)
	return scanTransaction(row)
}

func (r *transactionRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := db.Query(ctx, `
		SELECT `+txColumns+`
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		tx, err := scanTransactionRow(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	return txs, rows.Err()
}

func (r *transactionRepo) DailySumByType(ctx context.Context, db DBTX, userID uuid.UUID, txType domain.TransactionType) (int64, error) {
	var sum int64
	err := db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND type = $2
		  AND created_at >= date_trunc('day', now() AT TIME ZONE 'utc')`,
		userID, string(txType)).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("daily sum: %w", err)
	}
	return sum, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &tx.BalanceAfter,
		&tx.ExternalTransactionID, &tx.TargetTransactionID, &tx.EntryID,
		&tx.Metadata, &tx.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	return &tx, nil
}

func scanTransactionRow(rows pgx.Rows) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := rows.Scan(
		&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &tx.BalanceAfter,
		&tx.ExternalTransactionID, &tx.TargetTransactionID, &tx.EntryID,
		&tx.Metadata, &tx.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan transaction row: %w", err)
	}
	return &tx, nil
}
