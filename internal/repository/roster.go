package repository

import (
	"context"
	"fmt"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type rosterRepo struct{}

// NewRosterRepository returns a pgx-backed RosterRepository.
func NewRosterRepository() RosterRepository {
	return &rosterRepo{}
}

func (r *rosterRepo) FindTeamByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Team, error) {
	row := db.QueryRow(ctx, `
		SELECT id, name, slug, logo_url, created_at
		FROM teams WHERE id = $1`, id)
	var t domain.Team
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.LogoURL, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan team: %w", err)
	}
	return &t, nil
}

const playerColumns = `id, handle, team_id, slug, ext_id, active, avatar_url, created_at`

func (r *rosterRepo) FindPlayerByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Player, error) {
	row := db.QueryRow(ctx, `
		SELECT `+playerColumns+`
		FROM players WHERE id = $1`, id)
	return scanPlayer(row)
}

func (r *rosterRepo) FindPlayersByIDs(ctx context.Context, db DBTX, ids []uuid.UUID) (map[uuid.UUID]*domain.Player, error) {
	rows, err := db.Query(ctx, `
		SELECT `+playerColumns+`
		FROM players WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]*domain.Player, len(ids))
	for rows.Next() {
		var p domain.Player
		if err := rows.Scan(&p.ID, &p.Handle, &p.TeamID, &p.Slug, &p.ExtID, &p.Active, &p.AvatarURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan player row: %w", err)
		}
		out[p.ID] = &p
	}
	return out, rows.Err()
}

func (r *rosterRepo) ListActivePlayersByTeams(ctx context.Context, db DBTX, teamIDs []uuid.UUID) ([]domain.Player, error) {
	rows, err := db.Query(ctx, `
		SELECT `+playerColumns+`
		FROM players WHERE team_id = ANY($1) AND active
		ORDER BY handle`, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("query team players: %w", err)
	}
	defer rows.Close()

	var out []domain.Player
	for rows.Next() {
		var p domain.Player
		if err := rows.Scan(&p.ID, &p.Handle, &p.TeamID, &p.Slug, &p.ExtID, &p.Active, &p.AvatarURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan player row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *rosterRepo) InsertTeam(ctx context.Context, db DBTX, t *domain.Team) error {
	_, err := db.Exec(ctx, `
		INSERT INTO teams (id, name, slug, logo_url)
		VALUES ($1, $2, $3, $4)`,
		t.ID, t.Name, t.Slug, t.LogoURL)
	if err != nil {
		return fmt.Errorf("insert team: %w", err)
	}
	return nil
}

func (r *rosterRepo) InsertPlayer(ctx context.Context, db DBTX, p *domain.Player) error {
	_, err := db.Exec(ctx, `
		INSERT INTO players (id, handle, team_id, slug, ext_id, active, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Handle, p.TeamID, p.Slug, p.ExtID, p.Active, p.AvatarURL)
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

func scanPlayer(row pgx.Row) (*domain.Player, error) {
	var p domain.Player
	err := row.Scan(&p.ID, &p.Handle, &p.TeamID, &p.Slug, &p.ExtID, &p.Active, &p.AvatarURL, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan player: %w", err)
	}
	return &p, nil
}
