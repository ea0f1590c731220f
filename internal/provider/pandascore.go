// Package provider holds clients for external services: the esports data API
// that supplies final match stats and the projection model API that prices
// lines.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/JonathanDunkleberger/Kimi/internal/guard"
	"github.com/JonathanDunkleberger/Kimi/internal/repository"
	"github.com/JonathanDunkleberger/Kimi/internal/settlement"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var scopeRegex = regexp.MustCompile(`^([a-z_]+)_(match|(?:m[1-5])+)$`)

// ParseStatScope splits a scoped stat key into its metric and the map numbers
// it covers. A nil map list means the whole match.
func ParseStatScope(stat string) (metric string, maps []int, err error) {
	m := scopeRegex.FindStringSubmatch(stat)
	if m == nil {
		return "", nil, fmt.Errorf("invalid stat key: %s", stat)
	}
	metric = m[1]
	if m[2] == "match" {
		return metric, nil, nil
	}
	for _, part := range strings.Split(strings.TrimPrefix(m[2], "m"), "m") {
		n, _ := strconv.Atoi(part)
		maps = append(maps, n)
	}
	return metric, maps, nil
}

const statsUpstream = "stats-feed"

// StatsClient fetches finished match stats from the esports data API. The
// circuit breaker trips after repeated upstream failures so sweeps fail fast
// instead of timing out per entry.
type StatsClient struct {
	baseURL string
	token   string
	http    *http.Client
	breaker *guard.CircuitBreaker
	pool    *pgxpool.Pool
	roster  repository.RosterRepository
	matches repository.MatchRepository
	logger  *slog.Logger
}

// NewStatsClient creates a StatsClient. Implements settlement.ResultFeed.
func NewStatsClient(
	baseURL, token string,
	pool *pgxpool.Pool,
	roster repository.RosterRepository,
	matches repository.MatchRepository,
	logger *slog.Logger,
) *StatsClient {
	return &StatsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		breaker: guard.NewCircuitBreaker(5, 30*time.Second),
		pool:    pool,
		roster:  roster,
		matches: matches,
		logger:  logger,
	}
}

// matchDetail mirrors the fields of the upstream match payload we read.
type matchDetail struct {
	Games []gameDetail `json:"games"`
}

type gameDetail struct {
	Position int               `json:"position"`
	Finished bool              `json:"finished"`
	Players  []gamePlayerStats `json:"players"`
}

type gamePlayerStats struct {
	Player struct {
		ID int `json:"id"`
	} `json:"player"`
	Kills   float64 `json:"kills"`
	Deaths  float64 `json:"deaths"`
	Assists float64 `json:"assists"`
}

// FinalStat resolves a scoped stat key to the player's final value: per-map
// values are summed across the maps the key names, or across all finished maps
// for a whole-match key. Missing ext IDs, missing upstream data and maps that
// never finished all report ErrStatUnavailable.
func (c *StatsClient) FinalStat(ctx context.Context, matchID, playerID uuid.UUID, stat string) (float64, error) {
	metric, maps, err := ParseStatScope(stat)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", settlement.ErrStatUnavailable, err)
	}

	match, err := c.matches.FindByID(ctx, c.pool, matchID)
	if err != nil {
		return 0, fmt.Errorf("find match: %w", err)
	}
	if match == nil || match.ExtID == nil {
		return 0, fmt.Errorf("%w: match %s has no external id", settlement.ErrStatUnavailable, matchID)
	}

	player, err := c.roster.FindPlayerByID(ctx, c.pool, playerID)
	if err != nil {
		return 0, fmt.Errorf("find player: %w", err)
	}
	if player == nil || player.ExtID == nil {
		return 0, fmt.Errorf("%w: player %s has no external id", settlement.ErrStatUnavailable, playerID)
	}
	playerExtID, err := strconv.Atoi(*player.ExtID)
	if err != nil {
		return 0, fmt.Errorf("%w: player ext id %q not numeric", settlement.ErrStatUnavailable, *player.ExtID)
	}

	detail, err := c.fetchMatch(ctx, *match.ExtID)
	if err != nil {
		return 0, err
	}
	return sumMetric(detail, metric, maps, playerExtID)
}

// sumMetric totals a player's per-map values for the named metric across the
// selected maps, or across all finished maps when maps is nil. A selected map
// that never finished and a player absent from every counted map both report
// ErrStatUnavailable.
func sumMetric(detail *matchDetail, metric string, maps []int, playerExtID int) (float64, error) {
	wanted := make(map[int]bool, len(maps))
	for _, n := range maps {
		wanted[n] = true
	}

	var total float64
	var found bool
	for _, game := range detail.Games {
		if maps != nil && !wanted[game.Position] {
			continue
		}
		if !game.Finished {
			if maps == nil {
				continue
			}
			return 0, fmt.Errorf("%w: map %d not finished", settlement.ErrStatUnavailable, game.Position)
		}
		for _, p := range game.Players {
			if p.Player.ID != playerExtID {
				continue
			}
			found = true
			switch metric {
			case "kills":
				total += p.Kills
			case "deaths":
				total += p.Deaths
			case "assists":
				total += p.Assists
			default:
				return 0, fmt.Errorf("%w: unknown metric %s", settlement.ErrStatUnavailable, metric)
			}
		}
	}
	if !found {
		return 0, fmt.Errorf("%w: player %d absent from counted maps", settlement.ErrStatUnavailable, playerExtID)
	}
	return total, nil
}

func (c *StatsClient) fetchMatch(ctx context.Context, extID string) (*matchDetail, error) {
	if res := c.breaker.Check(ctx, statsUpstream); !res.Allowed {
		return nil, fmt.Errorf("fetch match %s: %s", extID, res.Reason)
	}
	detail, err := c.doFetchMatch(ctx, extID)
	if err != nil && !errors.Is(err, settlement.ErrStatUnavailable) {
		c.breaker.RecordFailure(statsUpstream)
		return nil, err
	}
	c.breaker.RecordSuccess(statsUpstream)
	return detail, err
}

func (c *StatsClient) doFetchMatch(ctx context.Context, extID string) (*matchDetail, error) {
	url := fmt.Sprintf("%s/lol/matches/%s", c.baseURL, extID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch match %s: %w", extID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: match %s not found upstream", settlement.ErrStatUnavailable, extID)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch match %s: status %d", extID, resp.StatusCode)
	}

	var detail matchDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, fmt.Errorf("decode match %s: %w", extID, err)
	}
	return &detail, nil
}
