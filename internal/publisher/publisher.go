// Package publisher turns model projections into published lines. It is the
// admin-triggered counterpart to the settlement sweep: the sweep closes lines
// down, the publisher opens them up.
package publisher

import (
	"context"
	"log/slog"
	"time"

	"github.com/JonathanDunkleberger/Kimi/internal/catalog"
	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/JonathanDunkleberger/Kimi/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Projection is one priced stat for a player in a match.
type Projection struct {
	PlayerID  uuid.UUID `json:"player_id"`
	Stat      string    `json:"stat"`
	LineValue float64   `json:"line_value"`
	POver     float64   `json:"p_over"`
}

// Projector prices player stats for a match.
type Projector interface {
	ProjectMatch(ctx context.Context, match domain.Match, players []domain.Player) ([]Projection, error)
}

// Publisher publishes lines for upcoming matches.
type Publisher struct {
	pool      *pgxpool.Pool
	matches   repository.MatchRepository
	roster    repository.RosterRepository
	lines     repository.LineRepository
	catalog   *catalog.Catalog
	projector Projector
	shadeBps  int
	logger    *slog.Logger
}

// New creates a Publisher. shadeBps is the house margin applied to every
// published line.
func New(
	pool *pgxpool.Pool,
	matches repository.MatchRepository,
	roster repository.RosterRepository,
	lines repository.LineRepository,
	cat *catalog.Catalog,
	projector Projector,
	shadeBps int,
	logger *slog.Logger,
) *Publisher {
	return &Publisher{
		pool:      pool,
		matches:   matches,
		roster:    roster,
		lines:     lines,
		catalog:   cat,
		projector: projector,
		shadeBps:  shadeBps,
		logger:    logger,
	}
}

// PublishResult summarises one publish pass.
type PublishResult struct {
	Matches        int `json:"matches"`
	LinesPublished int `json:"lines_published"`
	LinesSkipped   int `json:"lines_skipped"`
}

// PublishUpcoming prices and publishes lines for SCHEDULED matches starting
// inside [from, to). A (player, stat) that already has an open line on the
// match is skipped, so re-running the pass is safe.
func (p *Publisher) PublishUpcoming(ctx context.Context, from, to time.Time) (PublishResult, error) {
	var res PublishResult

	matches, err := p.matches.ListBetween(ctx, p.pool, from, to)
	if err != nil {
		return res, domain.ErrInternal("list matches", err)
	}

	for _, m := range matches {
		if m.Status != domain.MatchScheduled {
			continue
		}
		var teamIDs []uuid.UUID
		if m.Team1ID != nil {
			teamIDs = append(teamIDs, *m.Team1ID)
		}
		if m.Team2ID != nil {
			teamIDs = append(teamIDs, *m.Team2ID)
		}
		if len(teamIDs) == 0 {
			continue
		}
		players, err := p.roster.ListActivePlayersByTeams(ctx, p.pool, teamIDs)
		if err != nil {
			return res, domain.ErrInternal("list team players", err)
		}
		if len(players) == 0 {
			continue
		}

		projections, err := p.projector.ProjectMatch(ctx, m, players)
		if err != nil {
			p.logger.Error("projection failed", "match_id", m.ID, "error", err)
			continue
		}

		existing, err := p.openKeys(ctx, m.ID)
		if err != nil {
			return res, err
		}

		res.Matches++
		for _, proj := range projections {
			key := lineKey{playerID: proj.PlayerID, stat: proj.Stat}
			if existing[key] {
				res.LinesSkipped++
				continue
			}
			_, err := p.catalog.Publish(ctx, catalog.PublishInput{
				PlayerID:  proj.PlayerID,
				MatchID:   m.ID,
				Stat:      proj.Stat,
				LineValue: proj.LineValue,
				POver:     proj.POver,
				ShadeBps:  p.shadeBps,
			})
			if err != nil {
				p.logger.Error("publish line failed",
					"match_id", m.ID, "player_id", proj.PlayerID, "stat", proj.Stat, "error", err)
				continue
			}
			existing[key] = true
			res.LinesPublished++
		}
	}

	p.logger.Info("publish pass complete",
		"matches", res.Matches, "published", res.LinesPublished, "skipped", res.LinesSkipped)
	return res, nil
}

type lineKey struct {
	playerID uuid.UUID
	stat     string
}

func (p *Publisher) openKeys(ctx context.Context, matchID uuid.UUID) (map[lineKey]bool, error) {
	open, err := p.lines.ListOpenByMatch(ctx, p.pool, matchID)
	if err != nil {
		return nil, domain.ErrInternal("list open lines", err)
	}
	keys := make(map[lineKey]bool, len(open))
	for _, l := range open {
		keys[lineKey{playerID: l.PlayerID, stat: l.Stat}] = true
	}
	return keys, nil
}
