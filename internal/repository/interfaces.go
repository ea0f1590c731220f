package repository

import (
	"context"
	"time"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// UserRepository provides access to users.
type UserRepository interface {
	// FindByID returns a user by ID.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.User, error)

	// FindByUsername returns a user by username.
	FindByUsername(ctx context.Context, db DBTX, username string) (*domain.User, error)

	// LockForUpdate acquires a row-level lock (SELECT FOR UPDATE) and returns the user.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error)

	// Create inserts a new user.
	Create(ctx context.Context, db DBTX, user *domain.User) error

	// UpdateCredits atomically applies a signed delta using server-side arithmetic.
	UpdateCredits(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta int64) (*domain.User, error)
}

// TransactionRepository provides access to the append-only ledger.
type TransactionRepository interface {
	// FindExisting checks the idempotency index for a duplicate transaction.
	FindExisting(ctx context.Context, db DBTX, key domain.IdempotencyKey) (*domain.Transaction, error)

	// Insert creates a new ledger entry with a balance snapshot.
	Insert(ctx context.Context, db DBTX, params domain.PostLedgerEntryParams, balanceAfter int64) (*domain.Transaction, error)

	// FindByID returns a transaction by ID.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Transaction, error)

	// ListByUser returns transactions for a user, newest first.
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.Transaction, error)

	// DailySumByType returns the total amount of the given type for a user
	// since the start of the current UTC day.
	DailySumByType(ctx context.Context, db DBTX, userID uuid.UUID, txType domain.TransactionType) (int64, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event within the caller's transaction.
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error
}

// LineRepository provides access to published lines.
type LineRepository interface {
	// FindByID returns a line by ID.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Line, error)

	// FindByIDs returns the lines for the given IDs, keyed by ID.
	FindByIDs(ctx context.Context, db DBTX, ids []uuid.UUID) (map[uuid.UUID]*domain.Line, error)

	// LockForUpdate acquires a row-level lock and returns the line.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Line, error)

	// Insert creates a new line.
	Insert(ctx context.Context, db DBTX, line *domain.Line) error

	// UpdateStatus sets the line status and bumps updated_at.
	UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.LineStatus) error

	// ListByMatch returns lines for a match, newest first.
	ListByMatch(ctx context.Context, db DBTX, matchID uuid.UUID) ([]domain.Line, error)

	// ListOpenByMatch returns OPEN lines for a match.
	ListOpenByMatch(ctx context.Context, db DBTX, matchID uuid.UUID) ([]domain.Line, error)
}

// MatchRepository provides access to matches.
type MatchRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Match, error)
	FindByIDs(ctx context.Context, db DBTX, ids []uuid.UUID) (map[uuid.UUID]*domain.Match, error)
	Insert(ctx context.Context, db DBTX, m *domain.Match) error
	UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.MatchStatus) error

	// ListBetween returns matches starting inside [from, to), soonest first.
	ListBetween(ctx context.Context, db DBTX, from, to time.Time) ([]domain.Match, error)

	// ListByStatus returns matches with the given status.
	ListByStatus(ctx context.Context, db DBTX, status domain.MatchStatus) ([]domain.Match, error)
}

// RosterRepository provides access to teams and players.
type RosterRepository interface {
	FindTeamByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Team, error)
	FindPlayerByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Player, error)
	FindPlayersByIDs(ctx context.Context, db DBTX, ids []uuid.UUID) (map[uuid.UUID]*domain.Player, error)
	ListActivePlayersByTeams(ctx context.Context, db DBTX, teamIDs []uuid.UUID) ([]domain.Player, error)
	InsertTeam(ctx context.Context, db DBTX, t *domain.Team) error
	InsertPlayer(ctx context.Context, db DBTX, p *domain.Player) error
}

// EntryRepository provides access to entries. Legs are stored as an ordered
// JSONB snapshot, never joined live back to lines.
type EntryRepository interface {
	// Insert creates an entry with its leg snapshots.
	Insert(ctx context.Context, db DBTX, e *domain.Entry) error

	// FindByID returns an entry by ID.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Entry, error)

	// LockForUpdate acquires a row-level lock and returns the entry.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Entry, error)

	// ListByUser returns a user's entries, newest first.
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.Entry, error)

	// ListOpenByMatch returns OPEN entries with at least one leg on the match.
	ListOpenByMatch(ctx context.Context, db DBTX, matchID uuid.UUID) ([]domain.Entry, error)

	// MarkSettled writes the terminal status, resolved legs, settled_at and
	// settlement note. Callers must hold the row lock.
	MarkSettled(ctx context.Context, tx pgx.Tx, e *domain.Entry) error
}
