package ledger

import (
	"context"
	"fmt"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/jackc/pgx/v5"
)

// ExecuteRefundStake returns a cancelled entry's stake to the user.
// TargetTransactionID points at the original stake debit for auditability.
func (e *Engine) ExecuteRefundStake(ctx context.Context, tx pgx.Tx, params domain.RefundStakeParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	user, err := e.LockUserForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("refund stake: %w", err)
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
		Type:                  domain.TxEntryRefund,
		Amount:                params.Amount,
		Delta:                 params.Amount,
		ExternalTransactionID: strPtr(params.ExternalTransactionID),
		TargetTransactionID:   params.TargetTransactionID,
		EntryID:               &entryID,
		Metadata:              ensureJSON(params.Metadata),
	})
	if err != nil {
		return nil, fmt.Errorf("refund stake post: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, User: updatedUser}, nil
}
