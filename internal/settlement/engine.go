// Package settlement grades open entries against final stats and moves the
// resulting credits through the ledger. Settling an entry is idempotent: the
// terminal status write is guarded by the row lock and a status predicate, and
// every ledger credit carries an idempotency key derived from the entry.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/JonathanDunkleberger/Kimi/internal/ledger"
	"github.com/JonathanDunkleberger/Kimi/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Engine settles entries.
type Engine struct {
	pool    *pgxpool.Pool
	entries repository.EntryRepository
	outbox  repository.OutboxRepository
	ledger  *ledger.Engine
	feed    ResultFeed
	logger  *slog.Logger
}

// NewEngine creates a settlement Engine.
func NewEngine(
	pool *pgxpool.Pool,
	entries repository.EntryRepository,
	outbox repository.OutboxRepository,
	ledgerEngine *ledger.Engine,
	feed ResultFeed,
	logger *slog.Logger,
) *Engine {
	return &Engine{pool: pool, entries: entries, outbox: outbox, ledger: ledgerEngine, feed: feed, logger: logger}
}

type statKey struct {
	matchID  uuid.UUID
	playerID uuid.UUID
	stat     string
}

// SettleEntry grades one entry and applies the outcome. Repeat calls on a
// settled entry return ErrAlreadySettled, which callers treat as success with
// no effect. Transient feed failures abort before any write so the entry can
// be retried.
func (s *Engine) SettleEntry(ctx context.Context, entryID uuid.UUID) (*domain.Entry, error) {
	e, err := s.entries.FindByID(ctx, s.pool, entryID)
	if err != nil {
		return nil, domain.ErrInternal("find entry", err)
	}
	if e == nil {
		return nil, domain.ErrNotFound("entry", entryID.String())
	}
	if e.Status.Terminal() {
		return nil, domain.ErrAlreadySettled("entry", entryID.String())
	}

	// Fetch finals before opening the transaction; feed calls can be slow and
	// must not hold row locks. The status re-check under the lock catches any
	// settlement that raced us here.
	finals := make(map[statKey]*float64, len(e.Legs))
	for _, leg := range e.Legs {
		key := statKey{matchID: leg.MatchID, playerID: leg.PlayerID, stat: leg.Stat}
		if _, done := finals[key]; done {
			continue
		}
		value, err := s.feed.FinalStat(ctx, leg.MatchID, leg.PlayerID, leg.Stat)
		switch {
		case errors.Is(err, ErrStatUnavailable):
			finals[key] = nil
		case err != nil:
			return nil, domain.ErrInternal("result feed", err)
		default:
			finals[key] = &value
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	e, err = s.entries.LockForUpdate(ctx, tx, entryID)
	if err != nil {
		return nil, domain.ErrInternal("lock entry", err)
	}
	if e == nil {
		return nil, domain.ErrNotFound("entry", entryID.String())
	}
	if e.Status.Terminal() {
		return nil, domain.ErrAlreadySettled("entry", entryID.String())
	}

	for i := range e.Legs {
		leg := &e.Legs[i]
		final := finals[statKey{matchID: leg.MatchID, playerID: leg.PlayerID, stat: leg.Stat}]
		result := ResolveLeg(*leg, final)
		leg.Result = &result
		leg.PlayerFinal = final
	}

	outcome := ResolveEntry(e)
	if outcome.Status == domain.EntryOpen {
		return nil, domain.ErrInternal("entry did not resolve", fmt.Errorf("entry %s: %s", entryID, outcome.Note))
	}

	if err := s.applyOutcome(ctx, tx, e, outcome); err != nil {
		return nil, err
	}

	now := time.Now()
	e.Status = outcome.Status
	e.SettledAt = &now
	if outcome.Note != "" {
		note := outcome.Note
		e.SettlementNote = &note
	}
	if err := s.entries.MarkSettled(ctx, tx, e); err != nil {
		return nil, err
	}
	if err := s.outbox.Insert(ctx, tx, domain.NewEntrySettledEvent(e, outcome.Payout)); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("entry settled",
		"entry_id", e.ID, "user_id", e.UserID, "status", e.Status,
		"payout", outcome.Payout, "note", outcome.Note)
	return e, nil
}

func (s *Engine) applyOutcome(ctx context.Context, tx pgx.Tx, e *domain.Entry, outcome Outcome) error {
	switch outcome.Status {
	case domain.EntryWon:
		_, err := s.ledger.ExecuteCreditPayout(ctx, tx, domain.CreditPayoutParams{
			UserID:                e.UserID,
			Amount:                outcome.Payout,
			ExternalTransactionID: fmt.Sprintf("entry_payout:%s", e.ID),
			EntryID:               e.ID,
		})
		return err
	case domain.EntryCancelled:
		_, err := s.ledger.ExecuteRefundStake(ctx, tx, domain.RefundStakeParams{
			UserID:                e.UserID,
			Amount:                e.Stake,
			ExternalTransactionID: fmt.Sprintf("entry_refund:%s", e.ID),
			EntryID:               e.ID,
		})
		return err
	case domain.EntryLost:
		_, err := s.ledger.ExecuteRecordLoss(ctx, tx, domain.RecordLossParams{
			UserID:                e.UserID,
			ExternalTransactionID: fmt.Sprintf("settlement_loss:%s", e.ID),
			EntryID:               e.ID,
		})
		return err
	default:
		return domain.ErrInternal("unknown outcome", fmt.Errorf("status %s", outcome.Status))
	}
}
