package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type matchRepo struct{}

// NewMatchRepository returns a pgx-backed MatchRepository.
func NewMatchRepository() MatchRepository {
	return &matchRepo{}
}

const matchColumns = `id, ext_id, starts_at, format, event_name, team1_id, team2_id, status, created_at`

func (r *matchRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Match, error) {
	row := db.QueryRow(ctx, `
		SELECT `+matchColumns+`
		FROM matches WHERE id = $1`, id)
	return scanMatch(row)
}

func (r *matchRepo) FindByIDs(ctx context.Context, db DBTX, ids []uuid.UUID) (map[uuid.UUID]*domain.Match, error) {
	rows, err := db.Query(ctx, `
		SELECT `+matchColumns+`
		FROM matches WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]*domain.Match, len(ids))
	for rows.Next() {
		m, err := scanMatchRow(rows)
		if err != nil {
			return nil, err
		}
		out[m.ID] = m
	}
	return out, rows.Err()
}

func (r *matchRepo) Insert(ctx context.Context, db DBTX, m *domain.Match) error {
	_, err := db.Exec(ctx, `
		INSERT INTO matches (id, ext_id, starts_at, format, event_name, team1_id, team2_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.ExtID, m.StartsAt, m.Format, m.EventName, m.Team1ID, m.Team2ID, string(m.Status))
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

func (r *matchRepo) UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.MatchStatus) error {
	tag, err := db.Exec(ctx, `
		UPDATE matches SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("update match status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("match", id.String())
	}
	return nil
}

func (r *matchRepo) ListBetween(ctx context.Context, db DBTX, from, to time.Time) ([]domain.Match, error) {
	rows, err := db.Query(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE starts_at >= $1 AND starts_at < $2
		ORDER BY starts_at ASC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *matchRepo) ListByStatus(ctx context.Context, db DBTX, status domain.MatchStatus) ([]domain.Match, error) {
	rows, err := db.Query(ctx, `
		SELECT `+matchColumns+`
		FROM matches WHERE status = $1
		ORDER BY starts_at ASC`, string(status))
	if err != nil {
		return nil, fmt.Errorf("query matches by status: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func collectMatches(rows pgx.Rows) ([]domain.Match, error) {
	var matches []domain.Match
	for rows.Next() {
		m, err := scanMatchRow(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func scanMatch(row pgx.Row) (*domain.Match, error) {
	var m domain.Match
	err := row.Scan(&m.ID, &m.ExtID, &m.StartsAt, &m.Format, &m.EventName,
		&m.Team1ID, &m.Team2ID, &m.Status, &m.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan match: %w", err)
	}
	return &m, nil
}

func scanMatchRow(rows pgx.Rows) (*domain.Match, error) {
	var m domain.Match
	err := rows.Scan(&m.ID, &m.ExtID, &m.StartsAt, &m.Format, &m.EventName,
		&m.Team1ID, &m.Team2ID, &m.Status, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan match row: %w", err)
	}
	return &m, nil
}
