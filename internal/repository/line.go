package repository

import (
	"context"
	"fmt"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type lineRepo struct{}

// NewLineRepository returns a pgx-backed LineRepository.
func NewLineRepository() LineRepository {
	return &lineRepo{}
}

const lineColumns = `id, player_id, match_id, stat, line_value, p_over, shade_bps, status, posted_at, updated_at`

func (r *lineRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Line, error) {
	row := db.QueryRow(ctx, `
		SELECT `+lineColumns+`
		FROM lines WHERE id = $1`, id)
	return scanLine(row)
}

func (r *lineRepo) FindByIDs(ctx context.Context, db DBTX, ids []uuid.UUID) (map[uuid.UUID]*domain.Line, error) {
	rows, err := db.Query(ctx, `
		SELECT `+lineColumns+`
		FROM lines WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query lines: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]*domain.Line, len(ids))
	for rows.Next() {
		l, err := scanLineRow(rows)
		if err != nil {
			return nil, err
		}
		out[l.ID] = l
	}
	return out, rows.Err()
}

func (r *lineRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Line, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+lineColumns+`
		FROM lines WHERE id = $1 FOR UPDATE`, id)
	return scanLine(row)
}

func (r *lineRepo) Insert(ctx context.Context, db DBTX, line *domain.Line) error {
	_, err := db.Exec(ctx, `
		INSERT INTO lines (id, player_id, match_id, stat, line_value, p_over, shade_bps, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		line.ID, line.PlayerID, line.MatchID, line.Stat,
		line.LineValue, line.POver, line.ShadeBps, string(line.Status))
	if err != nil {
		return fmt.Errorf("insert line: %w", err)
	}
	return nil
}

func (r *lineRepo) UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.LineStatus) error {
	tag, err := db.Exec(ctx, `
		UPDATE lines SET status = $1, updated_at = now() WHERE id = $2`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("update line status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("line", id.String())
	}
	return nil
}

func (r *lineRepo) ListByMatch(ctx context.Context, db DBTX, matchID uuid.UUID) ([]domain.Line, error) {
	return r.listByMatch(ctx, db, matchID, false)
}

func (r *lineRepo) ListOpenByMatch(ctx context.Context, db DBTX, matchID uuid.UUID) ([]domain.Line, error) {
	return r.listByMatch(ctx, db, matchID, true)
}

func (r *lineRepo) listByMatch(ctx context.Context, db DBTX, matchID uuid.UUID, openOnly bool) ([]domain.Line, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM lines WHERE match_id = $1`
	if openOnly {
		query += ` AND status = 'OPEN'`
	}
	query += ` ORDER BY posted_at DESC`

	rows, err := db.Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("query lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.Line
	for rows.Next() {
		l, err := scanLineRow(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *l)
	}
	return lines, rows.Err()
}

func scanLine(row pgx.Row) (*domain.Line, error) {
	var l domain.Line
	err := row.Scan(&l.ID, &l.PlayerID, &l.MatchID, &l.Stat,
		&l.LineValue, &l.POver, &l.ShadeBps, &l.Status, &l.PostedAt, &l.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan line: %w", err)
	}
	return &l, nil
}

func scanLineRow(rows pgx.Rows) (*domain.Line, error) {
	var l domain.Line
	err := rows.Scan(&l.ID, &l.PlayerID, &l.MatchID, &l.Stat,
		&l.LineValue, &l.POver, &l.ShadeBps, &l.Status, &l.PostedAt, &l.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan line row: %w", err)
	}
	return &l, nil
}
