package ledger

import (
	"context"
	"fmt"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/jackc/pgx/v5"
)

// ExecuteDebitStake deducts an entry stake from the user's credits. The
// balance check happens under the row lock, so two concurrent stakes for the
// same user can never overdraw.
func (e *Engine) ExecuteDebitStake(ctx context.Context, tx pgx.Tx, params domain.DebitStakeParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, domain.ErrInvalidStake()
	}

	user, err := e.LockUserForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("debit stake: %w", err)
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

	if user.Credits < params.Amount {
		return nil, domain.ErrInsufficientFunds()
	}

	entryID := params.EntryID
	entry, updatedUser, err := e.PostLedgerEntry(ctx, tx, domain.PostLedgerEntryParams{
		UserID:                params.UserID,
		Type:                  domain.TxEntryStake,
		Amount:                params.Amount,
		Delta:                 -params.Amount,
		ExternalTransactionID: strPtr(params.ExternalTransactionID),
		EntryID:               &entryID,
		Metadata:              ensureJSON(params.Metadata),
	})
	if err != nil {
		return nil, fmt.Errorf("debit stake post: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, User: updatedUser}, nil
}
