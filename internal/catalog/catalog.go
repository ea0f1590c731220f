// Package catalog owns published lines and their status transitions. Lines
// enter through Publish, close for wagers through Freeze/Pull, and leave
// through Settle exactly once.
package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/JonathanDunkleberger/Kimi/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Catalog is the line catalog service.
type Catalog struct {
	pool    *pgxpool.Pool
	lines   repository.LineRepository
	matches repository.MatchRepository
	roster  repository.RosterRepository
	outbox  repository.OutboxRepository
	logger  *slog.Logger
}

// New creates a Catalog.
func New(
	pool *pgxpool.Pool,
	lines repository.LineRepository,
	matches repository.MatchRepository,
	roster repository.RosterRepository,
	outbox repository.OutboxRepository,
	logger *slog.Logger,
) *Catalog {
	return &Catalog{pool: pool, lines: lines, matches: matches, roster: roster, outbox: outbox, logger: logger}
}

// PublishInput holds the fields for publishing a new line.
type PublishInput struct {
	PlayerID  uuid.UUID `json:"player_id"`
	MatchID   uuid.UUID `json:"match_id"`
	Stat      string    `json:"stat"`
	LineValue float64   `json:"line_value"`
	POver     float64   `json:"p_over"`
	ShadeBps  int       `json:"shade_bps"`
}

// Publish creates an OPEN line. Republishing the same (player, match, stat) is
// allowed and creates a new row; dedup is the publisher's concern.
func (c *Catalog) Publish(ctx context.Context, input PublishInput) (*domain.Line, error) {
	if err := domain.ValidateStatKey(input.Stat); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if input.LineValue <= 0 {
		return nil, domain.ErrValidation("line value must be positive")
	}
	if input.POver < 0 || input.POver > 1 {
		return nil, domain.ErrValidation("p_over must be in [0, 1]")
	}

	player, err := c.roster.FindPlayerByID(ctx, c.pool, input.PlayerID)
	if err != nil {
		return nil, domain.ErrInternal("find player", err)
	}
	if player == nil {
		return nil, domain.ErrNotFound("player", input.PlayerID.String())
	}

	match, err := c.matches.FindByID(ctx, c.pool, input.MatchID)
	if err != nil {
		return nil, domain.ErrInternal("find match", err)
	}
	if match == nil {
		return nil, domain.ErrNotFound("match", input.MatchID.String())
	}

	line := &domain.Line{
		ID:        uuid.New(),
		PlayerID:  input.PlayerID,
		MatchID:   input.MatchID,
		Stat:      input.Stat,
		LineValue: input.LineValue,
		POver:     input.POver,
		ShadeBps:  input.ShadeBps,
		Status:    domain.LineOpen,
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := c.lines.Insert(ctx, tx, line); err != nil {
		return nil, domain.ErrInternal("insert line", err)
	}
	if err := c.outbox.Insert(ctx, tx, domain.NewLinePublishedEvent(line)); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	c.logger.Info("line published",
		"line_id", line.ID, "player_id", line.PlayerID, "match_id", line.MatchID,
		"stat", line.Stat, "value", line.LineValue)
	return line, nil
}

// Get returns a line by id.
func (c *Catalog) Get(ctx context.Context, lineID uuid.UUID) (*domain.Line, error) {
	line, err := c.lines.FindByID(ctx, c.pool, lineID)
	if err != nil {
		return nil, domain.ErrInternal("find line", err)
	}
	if line == nil {
		return nil, domain.ErrNotFound("line", lineID.String())
	}
	return line, nil
}

// Freeze transitions a line to FROZEN.
func (c *Catalog) Freeze(ctx context.Context, lineID uuid.UUID) (*domain.Line, error) {
	return c.transition(ctx, lineID, domain.LineFrozen)
}

// Pull transitions a line to PULLED.
func (c *Catalog) Pull(ctx context.Context, lineID uuid.UUID) (*domain.Line, error) {
	return c.transition(ctx, lineID, domain.LinePulled)
}

// Settle transitions a line to SETTLED exactly once. Re-settling reports
// ALREADY_SETTLED without re-applying side effects.
func (c *Catalog) Settle(ctx context.Context, lineID uuid.UUID) (*domain.Line, error) {
	return c.transition(ctx, lineID, domain.LineSettled)
}

// transition locks the line row, validates the state change and records it
// with an outbox event, all in one transaction.
func (c *Catalog) transition(ctx context.Context, lineID uuid.UUID, next domain.LineStatus) (*domain.Line, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	line, err := c.lines.LockForUpdate(ctx, tx, lineID)
	if err != nil {
		return nil, domain.ErrInternal("lock line", err)
	}
	if line == nil {
		return nil, domain.ErrNotFound("line", lineID.String())
	}

	if line.Status == domain.LineSettled {
		if next == domain.LineSettled {
			return nil, domain.ErrAlreadySettled("line", lineID.String())
		}
		return nil, domain.ErrConflict("line is settled")
	}
	if !line.CanTransitionTo(next) {
		return nil, domain.ErrConflict("line cannot transition from " + string(line.Status) + " to " + string(next))
	}

	from := line.Status
	line.Status = next
	line.UpdatedAt = time.Now()

	if err := c.lines.UpdateStatus(ctx, tx, lineID, next); err != nil {
		return nil, domain.ErrInternal("update line status", err)
	}
	if err := c.outbox.Insert(ctx, tx, domain.NewLineStatusEvent(line, from)); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	c.logger.Info("line status changed", "line_id", lineID, "from", from, "to", next)
	return line, nil
}
