package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionType enumerates all ledger transaction types.
type TransactionType string

const (
	TxSignupCredit TransactionType = "signup_credit"
	TxEntryStake   TransactionType = "entry_stake"
	TxEntryPayout  TransactionType = "entry_payout"
	TxEntryRefund  TransactionType = "entry_refund"
	// TxSettlementLoss is a zero-amount audit entry: the stake was consumed at
	// entry creation, so a loss moves no credits.
	TxSettlementLoss TransactionType = "settlement_loss"
)

// Transaction represents a transactions row (append-only ledger entry).
// BalanceAfter snapshots the user's credits after the entry was applied.
type Transaction struct {
	ID                    uuid.UUID       `json:"id"`
	UserID                uuid.UUID       `json:"user_id"`
	Type                  TransactionType `json:"type"`
	Amount                int64           `json:"amount"`
	BalanceAfter          int64           `json:"balance_after"`
	ExternalTransactionID *string         `json:"external_transaction_id,omitempty"`
	TargetTransactionID   *uuid.UUID      `json:"target_transaction_id,omitempty"`
	EntryID               *uuid.UUID      `json:"entry_id,omitempty"`
	Metadata              json.RawMessage `json:"metadata"`
	CreatedAt             time.Time       `json:"created_at"`
}

// IdempotencyKey is the composite key used for ledger deduplication.
type IdempotencyKey struct {
	UserID                uuid.UUID
	ExternalTransactionID string
}

// PostLedgerEntryParams is the input to the atomic PostLedgerEntry operation.
// Delta is the signed credit movement applied server-side.
type PostLedgerEntryParams struct {
	UserID                uuid.UUID
	Type                  TransactionType
	Amount                int64
	Delta                 int64
	ExternalTransactionID *string
	TargetTransactionID   *uuid.UUID
	EntryID               *uuid.UUID
	Metadata              json.RawMessage
}

// CommandResult is the return value from all ledger commands.
type CommandResult struct {
	Transaction *Transaction
	User        *User
	Idempotent  bool // true if this was a duplicate that returned the existing tx
}

// DebitStakeParams holds the input for ExecuteDebitStake.
type DebitStakeParams struct {
	UserID                uuid.UUID
	Amount                int64
	ExternalTransactionID string
	EntryID               uuid.UUID
	Metadata              json.RawMessage
}

// CreditPayoutParams holds the input for ExecuteCreditPayout.
type CreditPayoutParams struct {
	UserID                uuid.UUID
	Amount                int64
	ExternalTransactionID string
	EntryID               uuid.UUID
	Metadata              json.RawMessage
}

// RefundStakeParams holds the input for ExecuteRefundStake.
type RefundStakeParams struct {
	UserID                uuid.UUID
	Amount                int64
	ExternalTransactionID string
	EntryID               uuid.UUID
	TargetTransactionID   *uuid.UUID
	Metadata              json.RawMessage
}

// RecordLossParams holds the input for ExecuteRecordLoss.
type RecordLossParams struct {
	UserID                uuid.UUID
	ExternalTransactionID string
	EntryID               uuid.UUID
	Metadata              json.RawMessage
}
