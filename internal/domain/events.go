package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Aggregate types for outbox events.
const (
	AggregateLedger = "ledger"
	AggregateEntry  = "entry"
	AggregateLine   = "line"
)

// Event types for outbox events.
const (
	EventTransactionPosted = "transaction_posted"
	EventEntryCreated      = "entry_created"
	EventEntrySettled      = "entry_settled"
	EventLinePublished     = "line_published"
	EventLineStatusChanged = "line_status_changed"
)

// OutboxDraft is an event staged in the transactional outbox. It is written in
// the same database transaction as the state change it describes and published
// to Kafka by the outbox poller.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewTransactionPostedEvent creates the standard ledger event for a posted entry.
func NewTransactionPostedEvent(tx *Transaction) OutboxDraft {
	payload, _ := json.Marshal(tx)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateLedger,
		AggregateID:   tx.UserID.String(),
		EventType:     EventTransactionPosted,
		PartitionKey:  tx.UserID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewEntryCreatedEvent creates an entry lifecycle event.
func NewEntryCreatedEvent(e *Entry) OutboxDraft {
	payload, _ := json.Marshal(e)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateEntry,
		AggregateID:   e.ID.String(),
		EventType:     EventEntryCreated,
		PartitionKey:  e.UserID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewEntrySettledEvent creates the terminal entry event with the payout amount.
func NewEntrySettledEvent(e *Entry, payout int64) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"entry_id": e.ID.String(),
		"user_id":  e.UserID.String(),
		"status":   e.Status,
		"payout":   payout,
		"note":     e.SettlementNote,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateEntry,
		AggregateID:   e.ID.String(),
		EventType:     EventEntrySettled,
		PartitionKey:  e.UserID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewLinePublishedEvent creates a line publication event.
func NewLinePublishedEvent(l *Line) OutboxDraft {
	payload, _ := json.Marshal(l)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateLine,
		AggregateID:   l.ID.String(),
		EventType:     EventLinePublished,
		PartitionKey:  l.MatchID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewLineStatusEvent creates a line status transition event.
func NewLineStatusEvent(l *Line, from LineStatus) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{
		"line_id": l.ID.String(),
		"from":    string(from),
		"to":      string(l.Status),
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateLine,
		AggregateID:   l.ID.String(),
		EventType:     EventLineStatusChanged,
		PartitionKey:  l.MatchID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
