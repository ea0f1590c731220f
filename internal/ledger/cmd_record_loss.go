package ledger

import (
	"context"
	"fmt"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/jackc/pgx/v5"
)

// ExecuteRecordLoss writes a zero-amount audit entry for a lost entry. The
// stake was already consumed at entry creation, so no credits move.
func (e *Engine) ExecuteRecordLoss(ctx context.Context, tx pgx.Tx, params domain.RecordLossParams) (*domain.CommandResult, error) {
	user, err := e.LockUserForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("record loss: %w", err)
	}

	if params.ExternalTransactionID != "" {
		existing, err := e.FindExistingTransaction(ctx, tx, domain.IdempotencyKey{
			UserID:                params.UserID,
			ExternalTransactionID: params.ExternalTransactionID,
		})
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &domain.CommandResult{Transaction: existing, User: user, Idempotent: true}, nil
		}
	}

	entryID := params.EntryID
	entry, updatedUser, err := e.PostLedgerEntry(ctx, tx, domain.PostLedgerEntryParams{
		UserID:                params.UserID,
		Type:                  domain.TxSettlementLoss,
		Amount:                0,
		Delta:                 0,
		ExternalTransactionID: strPtr(params.ExternalTransactionID),
		EntryID:               &entryID,
		Metadata:              ensureJSON(params.Metadata),
	})
	if err != nil {
		return nil, fmt.Errorf("record loss post: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, User: updatedUser}, nil
}
