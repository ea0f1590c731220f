//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/JonathanDunkleberger/Kimi/internal/auth"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SignupUser creates a user through the API and returns the token and user ID.
func (env *TestEnv) SignupUser(username, password string) (token string, userID uuid.UUID) {
	env.t.Helper()
	resp := env.POST("/auth/signup", map[string]string{
		"username": username,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("SignupUser: expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		Token  string    `json:"token"`
		UserID uuid.UUID `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("SignupUser: decode: %v", err)
	}
	return result.Token, result.UserID
}

// LoginUser authenticates an existing user and returns the token.
func (env *TestEnv) LoginUser(username, password string) string {
	env.t.Helper()
	resp := env.POST("/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("LoginUser: expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("LoginUser: decode: %v", err)
	}
	return result.Token
}

// AdminToken creates an admin_users row and returns a valid admin token for it.
func (env *TestEnv) AdminToken(role string) string {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte("adminpass123"), bcrypt.DefaultCost)
	if err != nil {
		env.t.Fatalf("AdminToken: bcrypt: %v", err)
	}

	id := uuid.New()
	_, err = env.Pool.Exec(ctx, `
		INSERT INTO admin_users (id, username, password_hash, role, active)
		VALUES ($1, $2, $3, $4, true)`,
		id, "admin-"+id.String()[:8], string(hash), role)
	if err != nil {
		env.t.Fatalf("AdminToken: insert: %v", err)
	}

	token, err := env.JWTMgr.GenerateToken(auth.RealmAdmin, id, "testadmin", role)
	if err != nil {
		env.t.Fatalf("AdminToken: generate: %v", err)
	}
	return token
}

// SeedTeam inserts a team directly and returns its ID.
func (env *TestEnv) SeedTeam(name string) uuid.UUID {
	env.t.Helper()
	id := uuid.New()
	_, err := env.Pool.Exec(context.Background(), `
		INSERT INTO teams (id, name, slug) VALUES ($1, $2, $3)`,
		id, name, name+"-"+id.String()[:8])
	if err != nil {
		env.t.Fatalf("SeedTeam: %v", err)
	}
	return id
}

// SeedPlayer inserts an active player with a numeric external ID.
func (env *TestEnv) SeedPlayer(handle string, teamID uuid.UUID, extID string) uuid.UUID {
	env.t.Helper()
	id := uuid.New()
	_, err := env.Pool.Exec(context.Background(), `
		INSERT INTO players (id, handle, team_id, slug, ext_id, active)
		VALUES ($1, $2, $3, $4, $5, true)`,
		id, handle, teamID, handle+"-"+id.String()[:8], extID)
	if err != nil {
		env.t.Fatalf("SeedPlayer: %v", err)
	}
	return id
}

// SeedMatch inserts a match and returns its ID.
func (env *TestEnv) SeedMatch(team1, team2 uuid.UUID, startsAt time.Time, status, extID string) uuid.UUID {
	env.t.Helper()
	id := uuid.New()
	_, err := env.Pool.Exec(context.Background(), `
		INSERT INTO matches (id, ext_id, starts_at, format, event_name, team1_id, team2_id, status)
		VALUES ($1, $2, $3, 'BO3', 'Test Event', $4, $5, $6)`,
		id, extID, startsAt, team1, team2, status)
	if err != nil {
		env.t.Fatalf("SeedMatch: %v", err)
	}
	return id
}

// SeedLine inserts an OPEN line and returns its ID.
func (env *TestEnv) SeedLine(playerID, matchID uuid.UUID, stat string, lineValue, pOver float64) uuid.UUID {
	env.t.Helper()
	id := uuid.New()
	_, err := env.Pool.Exec(context.Background(), `
		INSERT INTO lines (id, player_id, match_id, stat, line_value, p_over, shade_bps, status)
		VALUES ($1, $2, $3, $4, $5, $6, 200, 'OPEN')`,
		id, playerID, matchID, stat, lineValue, pOver)
	if err != nil {
		env.t.Fatalf("SeedLine: %v", err)
	}
	return id
}

// SetMatchStatus flips a match's status directly.
func (env *TestEnv) SetMatchStatus(matchID uuid.UUID, status string) {
	env.t.Helper()
	_, err := env.Pool.Exec(context.Background(),
		`UPDATE matches SET status = $1 WHERE id = $2`, status, matchID)
	if err != nil {
		env.t.Fatalf("SetMatchStatus: %v", err)
	}
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST performs a POST request with optional auth token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.request("POST", path, body, token, nil)
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	return env.request("GET", path, nil, token, nil)
}

// AuthPOST performs an authenticated POST request.
func (env *TestEnv) AuthPOST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.request("POST", path, body, token, nil)
}

// PostWithHeaders performs a POST with extra headers (e.g. Idempotency-Key).
func (env *TestEnv) PostWithHeaders(path string, body interface{}, token string, headers map[string]string) *http.Response {
	env.t.Helper()
	return env.request("POST", path, body, token, headers)
}

// AuthPATCH performs an authenticated PATCH request.
func (env *TestEnv) AuthPATCH(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.request("PATCH", path, body, token, nil)
}

func (env *TestEnv) request(method, path string, body interface{}, token string, headers map[string]string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}
