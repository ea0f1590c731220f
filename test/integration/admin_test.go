//go:build integration

package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/JonathanDunkleberger/Kimi/test/integration/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminPublishLine(t *testing.T) {
	env := testutil.NewTestEnv(t)
	t1 := env.SeedTeam("100 Thieves")
	t2 := env.SeedTeam("Team Liquid")
	p1 := env.SeedPlayer("Quid", t1, "501")
	matchID := env.SeedMatch(t1, t2, time.Now().UTC().Add(6*time.Hour), "SCHEDULED", "7001")

	adminToken := env.AdminToken("admin")
	resp := env.AuthPOST("/admin/lines", map[string]interface{}{
		"player_id":  p1,
		"match_id":   matchID,
		"stat":       "kills_m1m2",
		"line_value": 8.5,
		"p_over":     0.48,
		"shade_bps":  200,
	}, adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var line struct {
		ID     uuid.UUID `json:"id"`
		Stat   string    `json:"stat"`
		Status string    `json:"status"`
	}
	testutil.DecodeJSON(t, resp, &line)
	assert.Equal(t, "kills_m1m2", line.Stat)
	assert.Equal(t, "OPEN", line.Status)
}

func TestAdminPublishLine_RejectsBadStatKey(t *testing.T) {
	env := testutil.NewTestEnv(t)
	t1 := env.SeedTeam("EDG")
	t2 := env.SeedTeam("RNG")
	p1 := env.SeedPlayer("Meiko", t1, "502")
	matchID := env.SeedMatch(t1, t2, time.Now().UTC().Add(6*time.Hour), "SCHEDULED", "7002")

	adminToken := env.AdminToken("admin")
	resp := env.AuthPOST("/admin/lines", map[string]interface{}{
		"player_id":  p1,
		"match_id":   matchID,
		"stat":       "KILLS_MATCH",
		"line_value": 8.5,
		"p_over":     0.48,
	}, adminToken)
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestAdminLineLifecycle(t *testing.T) {
	env := testutil.NewTestEnv(t)
	t1 := env.SeedTeam("NRG")
	t2 := env.SeedTeam("FlyQuest")
	p1 := env.SeedPlayer("Palafox", t1, "503")
	matchID := env.SeedMatch(t1, t2, time.Now().UTC().Add(6*time.Hour), "SCHEDULED", "7003")
	lineID := env.SeedLine(p1, matchID, "kills_match", 10.5, 0.50)

	adminToken := env.AdminToken("admin")
	path := "/admin/lines/" + lineID.String()

	// OPEN -> FROZEN -> OPEN is allowed; PULLED is not re-openable.
	resp := env.AuthPOST(path+"/freeze", nil, adminToken)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = env.AuthPOST(path+"/pull", nil, adminToken)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = env.AuthPOST(path+"/settle", nil, adminToken)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	// Settling again is benign.
	resp = env.AuthPOST(path+"/settle", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var repeat struct {
		Status string `json:"status"`
	}
	testutil.DecodeJSON(t, resp, &repeat)
	assert.Equal(t, "already_settled", repeat.Status)

	// Any other transition after SETTLED conflicts.
	resp = env.AuthPOST(path+"/freeze", nil, adminToken)
	testutil.AssertStatus(t, resp, http.StatusConflict)
	resp.Body.Close()
}

func TestAdminCreateMatchAndRoster(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.AdminToken("admin")

	resp := env.AuthPOST("/admin/teams", map[string]string{"name": "Karmine Corp"}, adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var team struct {
		ID uuid.UUID `json:"id"`
	}
	testutil.DecodeJSON(t, resp, &team)

	resp = env.AuthPOST("/admin/players", map[string]interface{}{
		"handle": "Caliste", "team_id": team.ID, "ext_id": "601",
	}, adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = env.AuthPOST("/admin/matches", map[string]interface{}{
		"starts_at":  time.Now().UTC().Add(24 * time.Hour),
		"format":     "BO5",
		"event_name": "LEC Finals",
		"team1_id":   team.ID,
	}, adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var match struct {
		ID     uuid.UUID `json:"id"`
		Status string    `json:"status"`
	}
	testutil.DecodeJSON(t, resp, &match)
	assert.Equal(t, "SCHEDULED", match.Status)

	resp = env.AuthPATCH("/admin/matches/"+match.ID.String()+"/status",
		map[string]string{"status": "LIVE"}, adminToken)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = env.AuthPATCH("/admin/matches/"+match.ID.String()+"/status",
		map[string]string{"status": "PAUSED"}, adminToken)
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()
}

func TestAdminRunRoutes_RequireAdminRole(t *testing.T) {
	env := testutil.NewTestEnv(t)
	operatorToken := env.AdminToken("operator")

	resp := env.AuthPOST("/admin/run/settle", nil, operatorToken)
	testutil.AssertStatus(t, resp, http.StatusForbidden)
	resp.Body.Close()

	// Catalog routes stay open to any back-office realm token.
	t1 := env.SeedTeam("Vitality")
	t2 := env.SeedTeam("BDS")
	p1 := env.SeedPlayer("Carzzy", t1, "504")
	matchID := env.SeedMatch(t1, t2, time.Now().UTC().Add(6*time.Hour), "SCHEDULED", "7004")
	lineID := env.SeedLine(p1, matchID, "kills_match", 10.5, 0.50)

	resp = env.AuthPOST("/admin/lines/"+lineID.String()+"/freeze", nil, operatorToken)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()
}
