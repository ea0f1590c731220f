package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/JonathanDunkleberger/Kimi/internal/publisher"
)

// ModelClient calls the projection model service. Implements
// publisher.Projector.
type ModelClient struct {
	baseURL string
	http    *http.Client
}

// NewModelClient creates a ModelClient.
func NewModelClient(baseURL string) *ModelClient {
	return &ModelClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type projectRequest struct {
	MatchID  string   `json:"match_id"`
	Format   string   `json:"format"`
	StartsAt string   `json:"starts_at"`
	Players  []string `json:"player_ids"`
}

// ProjectMatch asks the model service to price stats for all listed players.
func (c *ModelClient) ProjectMatch(ctx context.Context, match domain.Match, players []domain.Player) ([]publisher.Projection, error) {
	reqBody := projectRequest{
		MatchID:  match.ID.String(),
		Format:   match.Format,
		StartsAt: match.StartsAt.UTC().Format(time.RFC3339),
	}
	for _, p := range players {
		reqBody.Players = append(reqBody.Players, p.ID.String())
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal projection request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/projections", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("project match %s: %w", match.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("project match %s: status %d", match.ID, resp.StatusCode)
	}

	var projections []publisher.Projection
	if err := json.NewDecoder(resp.Body).Decode(&projections); err != nil {
		return nil, fmt.Errorf("decode projections: %w", err)
	}
	return projections, nil
}
