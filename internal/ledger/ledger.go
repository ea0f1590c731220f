package ledger

import (
	"context"
	"fmt"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/JonathanDunkleberger/Kimi/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Engine provides the 3 foundational ledger operations:
//  1. LockUserForUpdate — row-level pessimistic lock
//  2. FindExistingTransaction — idempotency check
//  3. PostLedgerEntry — atomic credit update + append-only insert + outbox event
type Engine struct {
	users        repository.UserRepository
	transactions repository.TransactionRepository
	outbox       repository.OutboxRepository
}

// NewEngine creates a ledger engine with the given repositories.
func NewEngine(
	users repository.UserRepository,
	transactions repository.TransactionRepository,
	outbox repository.OutboxRepository,
) *Engine {
	return &Engine{
		users:        users,
		transactions: transactions,
		outbox:       outbox,
	}
}

// LockUserForUpdate acquires a row-level lock and returns the user.
// Must be called within a transaction.
func (e *Engine) LockUserForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.User, error) {
	user, err := e.users.LockForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound("user", userID.String())
	}
	return user, nil
}

// FindExistingTransaction checks if a transaction with the same idempotency key
// exists. Returns nil if no duplicate found.
func (e *Engine) FindExistingTransaction(ctx context.Context, tx pgx.Tx, key domain.IdempotencyKey) (*domain.Transaction, error) {
	existing, err := e.transactions.FindExisting(ctx, tx, key)
	if err != nil {
		return nil, fmt.Errorf("find existing transaction: %w", err)
	}
	return existing, nil
}

// PostLedgerEntry atomically updates the user's credits and inserts a ledger
// entry. This is the core write primitive — all commands delegate to it.
//
// Steps:
//  1. Apply the credit delta with server-side arithmetic
//  2. Insert the transaction with the post-update balance snapshot
//  3. Insert an outbox event
//
// All 3 steps run within the caller's transaction.
func (e *Engine) PostLedgerEntry(ctx context.Context, tx pgx.Tx, params domain.PostLedgerEntryParams) (*domain.Transaction, *domain.User, error) {
	updatedUser, err := e.users.UpdateCredits(ctx, tx, params.UserID, params.Delta)
	if err != nil {
		return nil, nil, fmt.Errorf("update credits: %w", err)
	}
	if updatedUser == nil {
		return nil, nil, domain.ErrNotFound("user", params.UserID.String())
	}

	entry, err := e.transactions.Insert(ctx, tx, params, updatedUser.Credits)
	if err != nil {
		return nil, nil, fmt.Errorf("insert transaction: %w", err)
	}

	if err := e.outbox.Insert(ctx, tx, domain.NewTransactionPostedEvent(entry)); err != nil {
		return nil, nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return entry, updatedUser, nil
}
