// Package entry builds multi-leg entries. Creation is all-or-nothing: the
// validation re-checks, the stake debit and the entry insert happen in one
// database transaction against one observed clock reading.
package entry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/JonathanDunkleberger/Kimi/internal/ledger"
	"github.com/JonathanDunkleberger/Kimi/internal/lockclock"
	"github.com/JonathanDunkleberger/Kimi/internal/policy"
	"github.com/JonathanDunkleberger/Kimi/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LegInput is one requested pick.
type LegInput struct {
	LineID uuid.UUID `json:"line_id"`
	Side   string    `json:"side"`
}

// CreateInput is the request to create an entry.
type CreateInput struct {
	Stake      int64      `json:"stake"`
	PayoutRule string     `json:"payout_rule"`
	Legs       []LegInput `json:"legs"`
}

// Builder validates and persists new entries.
type Builder struct {
	pool         *pgxpool.Pool
	entries      repository.EntryRepository
	lines        repository.LineRepository
	matches      repository.MatchRepository
	transactions repository.TransactionRepository
	outbox       repository.OutboxRepository
	ledger       *ledger.Engine
	clock        lockclock.Clock
	limits       policy.StakeLimitPolicy
	logger       *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(
	pool *pgxpool.Pool,
	entries repository.EntryRepository,
	lines repository.LineRepository,
	matches repository.MatchRepository,
	transactions repository.TransactionRepository,
	outbox repository.OutboxRepository,
	engine *ledger.Engine,
	clock lockclock.Clock,
	limits policy.StakeLimitPolicy,
	logger *slog.Logger,
) *Builder {
	return &Builder{
		pool:         pool,
		entries:      entries,
		lines:        lines,
		matches:      matches,
		transactions: transactions,
		outbox:       outbox,
		ledger:       engine,
		clock:        clock,
		limits:       limits,
		logger:       logger,
	}
}

// Create validates the request and, if every check passes, snapshots the legs,
// debits the stake and inserts the entry atomically. Checks run in a fixed
// order so a request failing several ways always reports the same error:
// stake, leg count, duplicate legs, line availability, lock windows, funds.
func (b *Builder) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*domain.Entry, error) {
	if input.Stake <= 0 {
		return nil, domain.ErrInvalidStake()
	}

	rule, err := domain.ParsePayoutRule(input.PayoutRule)
	if err != nil {
		return nil, err
	}
	if len(input.Legs) != rule.LegCount() {
		return nil, domain.ErrLegCountMismatch(rule, len(input.Legs))
	}

	seen := make(map[uuid.UUID]bool, len(input.Legs))
	for _, leg := range input.Legs {
		if seen[leg.LineID] {
			return nil, domain.ErrDuplicateLeg(leg.LineID.String())
		}
		seen[leg.LineID] = true
		if err := domain.ValidateSide(domain.Side(leg.Side)); err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
	}

	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	// One clock reading for every lock check in this entry.
	now := time.Now()

	lineIDs := make([]uuid.UUID, 0, len(input.Legs))
	for _, leg := range input.Legs {
		lineIDs = append(lineIDs, leg.LineID)
	}
	lineByID, err := b.lines.FindByIDs(ctx, tx, lineIDs)
	if err != nil {
		return nil, domain.ErrInternal("find lines", err)
	}

	legs := make([]domain.Leg, 0, len(input.Legs))
	for _, req := range input.Legs {
		line := lineByID[req.LineID]
		if line == nil || !line.Bettable() {
			return nil, domain.ErrLineUnavailable(req.LineID.String())
		}
		legs = append(legs, domain.Leg{
			LineID:    line.ID,
			PlayerID:  line.PlayerID,
			MatchID:   line.MatchID,
			Stat:      line.Stat,
			Side:      domain.Side(req.Side),
			LineValue: line.LineValue,
		})
	}

	e := &domain.Entry{
		ID:         uuid.New(),
		UserID:     userID,
		Stake:      input.Stake,
		PayoutRule: rule,
		Legs:       legs,
		Status:     domain.EntryOpen,
		CreatedAt:  now,
	}

	matchByID, err := b.matches.FindByIDs(ctx, tx, e.MatchIDs())
	if err != nil {
		return nil, domain.ErrInternal("find matches", err)
	}
	for _, matchID := range e.MatchIDs() {
		m := matchByID[matchID]
		if m == nil {
			return nil, domain.ErrLineUnavailable(matchID.String())
		}
		if m.Status != domain.MatchScheduled || b.clock.Locked(now, m.StartsAt) {
			return nil, domain.ErrEntryLocked(matchID.String())
		}
	}

	dailyStaked, err := b.transactions.DailySumByType(ctx, tx, userID, domain.TxEntryStake)
	if err != nil {
		return nil, domain.ErrInternal("daily stake sum", err)
	}
	if eval := policy.EvaluateStakeLimits(b.limits, input.Stake, dailyStaked); !eval.Allowed {
		return nil, domain.ErrStakeLimit(eval.BreachedLimit, eval.LimitValue)
	}

	// The balance check and debit run under the user row lock inside the same
	// transaction, so insufficient funds surfaces last and nothing partial
	// survives a rollback.
	if _, err := b.ledger.ExecuteDebitStake(ctx, tx, domain.DebitStakeParams{
		UserID:                userID,
		Amount:                input.Stake,
		ExternalTransactionID: fmt.Sprintf("entry_stake:%s", e.ID),
		EntryID:               e.ID,
		Metadata:              stakeMetadata(e),
	}); err != nil {
		return nil, err
	}

	if err := b.entries.Insert(ctx, tx, e); err != nil {
		return nil, domain.ErrInternal("insert entry", err)
	}
	if err := b.outbox.Insert(ctx, tx, domain.NewEntryCreatedEvent(e)); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	b.logger.Info("entry created",
		"entry_id", e.ID, "user_id", userID, "stake", e.Stake,
		"rule", e.PayoutRule, "legs", len(e.Legs))
	return e, nil
}

// Get returns an entry, scoped to its owner.
func (b *Builder) Get(ctx context.Context, userID, entryID uuid.UUID) (*domain.Entry, error) {
	e, err := b.entries.FindByID(ctx, b.pool, entryID)
	if err != nil {
		return nil, domain.ErrInternal("find entry", err)
	}
	if e == nil || e.UserID != userID {
		return nil, domain.ErrNotFound("entry", entryID.String())
	}
	return e, nil
}

// ListForUser returns the user's entries, newest first.
func (b *Builder) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	entries, err := b.entries.ListByUser(ctx, b.pool, userID, limit)
	if err != nil {
		return nil, domain.ErrInternal("list entries", err)
	}
	return entries, nil
}

func stakeMetadata(e *domain.Entry) json.RawMessage {
	raw, _ := json.Marshal(map[string]interface{}{
		"payout_rule": e.PayoutRule,
		"leg_count":   len(e.Legs),
	})
	return raw
}
