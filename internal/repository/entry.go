package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type entryRepo struct{}

// NewEntryRepository returns a pgx-backed EntryRepository.
func NewEntryRepository() EntryRepository {
	return &entryRepo{}
}

const entryColumns = `id, user_id, stake, payout_rule, legs, status, created_at, settled_at, settlement_note`

func (r *entryRepo) Insert(ctx context.Context, db DBTX, e *domain.Entry) error {
	legs, err := json.Marshal(e.Legs)
	if err != nil {
		return fmt.Errorf("marshal legs: %w", err)
	}
	_, err = db.Exec(ctx, `
		INSERT INTO entries (id, user_id, stake, payout_rule, legs, status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.UserID, e.Stake, string(e.PayoutRule), legs, string(e.Status))
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func (r *entryRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Entry, error) {
	row := db.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM entries WHERE id = $1`, id)
	return scanEntry(row)
}

func (r *entryRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Entry, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM entries WHERE id = $1 FOR UPDATE`, id)
	return scanEntry(row)
}

func (r *entryRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := db.Query(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// ListOpenByMatch uses a containment probe on the legs JSONB so the sweep
// only loads entries that actually reference the match.
func (r *entryRepo) ListOpenByMatch(ctx context.Context, db DBTX, matchID uuid.UUID) ([]domain.Entry, error) {
	rows, err := db.Query(ctx, `
		SELECT `+entryColumns+`
		FROM entries
		WHERE status = 'OPEN'
		  AND legs @> $1
		ORDER BY created_at ASC`,
		fmt.Sprintf(`[{"match_id":"%s"}]`, matchID))
	if err != nil {
		return nil, fmt.Errorf("query open entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (r *entryRepo) MarkSettled(ctx context.Context, tx pgx.Tx, e *domain.Entry) error {
	legs, err := json.Marshal(e.Legs)
	if err != nil {
		return fmt.Errorf("marshal legs: %w", err)
	}
	tag, err := tx.Exec(ctx, `
		UPDATE entries
		SET status = $1, legs = $2, settled_at = $3, settlement_note = $4
		WHERE id = $5 AND status = 'OPEN'`,
		string(e.Status), legs, e.SettledAt, e.SettlementNote, e.ID)
	if err != nil {
		return fmt.Errorf("mark entry settled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadySettled("entry", e.ID.String())
	}
	return nil
}

func collectEntries(rows pgx.Rows) ([]domain.Entry, error) {
	var entries []domain.Entry
	for rows.Next() {
		e, err := scanEntryRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var e domain.Entry
	var legs []byte
	err := row.Scan(&e.ID, &e.UserID, &e.Stake, &e.PayoutRule, &legs,
		&e.Status, &e.CreatedAt, &e.SettledAt, &e.SettlementNote)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan entry: %w", err)
	}
	if err := json.Unmarshal(legs, &e.Legs); err != nil {
		return nil, fmt.Errorf("unmarshal legs: %w", err)
	}
	return &e, nil
}

func scanEntryRow(rows pgx.Rows) (*domain.Entry, error) {
	var e domain.Entry
	var legs []byte
	err := rows.Scan(&e.ID, &e.UserID, &e.Stake, &e.PayoutRule, &legs,
		&e.Status, &e.CreatedAt, &e.SettledAt, &e.SettlementNote)
	if err != nil {
		return nil, fmt.Errorf("scan entry row: %w", err)
	}
	if err := json.Unmarshal(legs, &e.Legs); err != nil {
		return nil, fmt.Errorf("unmarshal legs: %w", err)
	}
	return &e, nil
}
