package ledger

import (
	"context"
	"fmt"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/jackc/pgx/v5"
)

// ExecuteCreditPayout credits a settled entry's winnings. Idempotent on the
// external transaction id so a re-run sweep cannot double-pay.
func (e *Engine) ExecuteCreditPayout(ctx context.Context, tx pgx.Tx, params domain.CreditPayoutParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	user, err := e.LockUserForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("credit payout: %w", err)
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
		Type:                  domain.TxEntryPayout,
		Amount:                params.Amount,
		Delta:                 params.Amount,
		ExternalTransactionID: strPtr(params.ExternalTransactionID),
		EntryID:               &entryID,
		Metadata:              ensureJSON(params.Metadata),
	})
	if err != nil {
		return nil, fmt.Errorf("credit payout post: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, User: updatedUser}, nil
}
