package catalog

import (
	"context"
	"time"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/JonathanDunkleberger/Kimi/internal/lockclock"
	"github.com/google/uuid"
)

// BoardLine is a line enriched with player and lock context for display.
type BoardLine struct {
	domain.Line
	PlayerHandle string     `json:"player_handle"`
	TeamID       *uuid.UUID `json:"team_id,omitempty"`
	Locked       bool       `json:"locked"`
	LocksAt      time.Time  `json:"locks_at"`
}

// BoardMatch groups a match's open lines with its teams.
type BoardMatch struct {
	Match domain.Match `json:"match"`
	Team1 *domain.Team `json:"team1,omitempty"`
	Team2 *domain.Team `json:"team2,omitempty"`
	Lines []BoardLine  `json:"lines"`
}

// Board lists matches starting inside [from, to) with their OPEN lines,
// soonest first. Matches without open lines are skipped. The lock flag is
// computed against now at read time; it is advisory, placement re-checks it.
func (c *Catalog) Board(ctx context.Context, from, to time.Time, clock lockclock.Clock) ([]BoardMatch, error) {
	matches, err := c.matches.ListBetween(ctx, c.pool, from, to)
	if err != nil {
		return nil, domain.ErrInternal("list matches", err)
	}

	now := time.Now()
	board := make([]BoardMatch, 0, len(matches))
	teams := map[uuid.UUID]*domain.Team{}

	for _, m := range matches {
		lines, err := c.lines.ListOpenByMatch(ctx, c.pool, m.ID)
		if err != nil {
			return nil, domain.ErrInternal("list lines", err)
		}
		if len(lines) == 0 {
			continue
		}

		playerIDs := make([]uuid.UUID, 0, len(lines))
		for _, l := range lines {
			playerIDs = append(playerIDs, l.PlayerID)
		}
		players, err := c.roster.FindPlayersByIDs(ctx, c.pool, playerIDs)
		if err != nil {
			return nil, domain.ErrInternal("find players", err)
		}

		bm := BoardMatch{Match: m, Lines: make([]BoardLine, 0, len(lines))}
		if m.Team1ID != nil {
			if bm.Team1, err = c.teamCached(ctx, teams, *m.Team1ID); err != nil {
				return nil, err
			}
		}
		if m.Team2ID != nil {
			if bm.Team2, err = c.teamCached(ctx, teams, *m.Team2ID); err != nil {
				return nil, err
			}
		}

		for _, l := range lines {
			bl := BoardLine{
				Line:    l,
				Locked:  clock.Locked(now, m.StartsAt),
				LocksAt: clock.LocksAt(m.StartsAt),
			}
			if p := players[l.PlayerID]; p != nil {
				bl.PlayerHandle = p.Handle
				bl.TeamID = p.TeamID
			}
			bm.Lines = append(bm.Lines, bl)
		}
		board = append(board, bm)
	}
	return board, nil
}

func (c *Catalog) teamCached(ctx context.Context, cache map[uuid.UUID]*domain.Team, id uuid.UUID) (*domain.Team, error) {
	if t, ok := cache[id]; ok {
		return t, nil
	}
	t, err := c.roster.FindTeamByID(ctx, c.pool, id)
	if err != nil {
		return nil, domain.ErrInternal("find team", err)
	}
	cache[id] = t
	return t, nil
}
