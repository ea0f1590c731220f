//go:build integration

package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// StatsStub fakes the esports stats API. Tests register match payloads by
// external ID; anything unregistered returns 404.
type StatsStub struct {
	Server *httptest.Server

	mu      sync.Mutex
	matches map[string]StubMatch
}

// StubMatch is the per-match payload the stats client reads.
type StubMatch struct {
	Games []StubGame `json:"games"`
}

type StubGame struct {
	Position int              `json:"position"`
	Finished bool             `json:"finished"`
	Players  []StubGamePlayer `json:"players"`
}

type StubGamePlayer struct {
	Player  StubPlayerRef `json:"player"`
	Kills   float64       `json:"kills"`
	Deaths  float64       `json:"deaths"`
	Assists float64       `json:"assists"`
}

type StubPlayerRef struct {
	ID int `json:"id"`
}

// NewStatsStub starts the stub server.
func NewStatsStub() *StatsStub {
	s := &StatsStub{matches: make(map[string]StubMatch)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// SetMatch registers the payload served for a match external ID.
func (s *StatsStub) SetMatch(extID string, m StubMatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[extID] = m
}

func (s *StatsStub) handle(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// expects lol/matches/{extID}
	if len(parts) != 3 || parts[0] != "lol" || parts[1] != "matches" {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	m, ok := s.matches[parts[2]]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m)
}

// FinishedGame builds a single-player finished game for SetMatch.
func FinishedGame(position, playerExtID int, kills, deaths, assists float64) StubGame {
	return StubGame{
		Position: position,
		Finished: true,
		Players: []StubGamePlayer{{
			Player:  StubPlayerRef{ID: playerExtID},
			Kills:   kills,
			Deaths:  deaths,
			Assists: assists,
		}},
	}
}
