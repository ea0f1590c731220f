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

// placeEntry creates an entry through the API and returns its ID.
func placeEntry(t *testing.T, env *testutil.TestEnv, token string, stake int64, rule string, legs ...map[string]interface{}) uuid.UUID {
	t.Helper()
	resp := env.AuthPOST("/entries", entryBody(stake, rule, legs...), token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID uuid.UUID `json:"id"`
	}
	testutil.DecodeJSON(t, resp, &created)
	return created.ID
}

// twoPlayerGame builds a finished game carrying stats for both fixture players.
func twoPlayerGame(position int, p1Kills, p2Assists float64) testutil.StubGame {
	return testutil.StubGame{
		Position: position,
		Finished: true,
		Players: []testutil.StubGamePlayer{
			{Player: testutil.StubPlayerRef{ID: 101}, Kills: p1Kills},
			{Player: testutil.StubPlayerRef{ID: 102}, Assists: p2Assists},
		},
	}
}

func TestSettleEntry_Won(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedEntryFixture(env, time.Now().UTC().Add(4*time.Hour))
	token, userID := env.SignupUser("winner", "securepass123")

	entryID := placeEntry(t, env, token, 100, "2LEG_3X",
		legBody(fx.Line1, "OVER"), legBody(fx.Line2, "UNDER"))

	env.SetMatchStatus(fx.MatchID, "FINAL")
	// Chovy 15 kills (over 12.5), Faker 18 assists (under 20.5): both legs hit.
	env.Stats.SetMatch("8001", testutil.StubMatch{
		Games: []testutil.StubGame{twoPlayerGame(1, 15, 18)},
	})

	adminToken := env.AdminToken("admin")
	resp := env.AuthPOST("/admin/entries/"+entryID.String()+"/settle", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var settled struct {
		Status string `json:"status"`
		Legs   []struct {
			Result      string   `json:"result"`
			PlayerFinal *float64 `json:"player_final"`
		} `json:"legs"`
	}
	testutil.DecodeJSON(t, resp, &settled)
	assert.Equal(t, "WON", settled.Status)
	require.Len(t, settled.Legs, 2)
	assert.Equal(t, "OVER", settled.Legs[0].Result)
	assert.Equal(t, "UNDER", settled.Legs[1].Result)

	// 1000 signup - 100 stake + 300 payout.
	testutil.AssertCredits(t, env, userID, 1200)
	assert.Equal(t, 3, testutil.CountTransactions(t, env, userID))
}

func TestSettleEntry_Lost(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedEntryFixture(env, time.Now().UTC().Add(4*time.Hour))
	token, userID := env.SignupUser("loser", "securepass123")

	entryID := placeEntry(t, env, token, 100, "2LEG_3X",
		legBody(fx.Line1, "OVER"), legBody(fx.Line2, "UNDER"))

	env.SetMatchStatus(fx.MatchID, "FINAL")
	// Chovy only 8 kills: the OVER leg misses.
	env.Stats.SetMatch("8001", testutil.StubMatch{
		Games: []testutil.StubGame{twoPlayerGame(1, 8, 18)},
	})

	adminToken := env.AdminToken("admin")
	resp := env.AuthPOST("/admin/entries/"+entryID.String()+"/settle", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, "LOST", testutil.EntryStatus(t, env, entryID))
	testutil.AssertCredits(t, env, userID, 900)
}

func TestSettleEntry_AllVoidRefunds(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedEntryFixture(env, time.Now().UTC().Add(4*time.Hour))
	token, userID := env.SignupUser("voided", "securepass123")

	entryID := placeEntry(t, env, token, 100, "2LEG_3X",
		legBody(fx.Line1, "OVER"), legBody(fx.Line2, "UNDER"))

	env.SetMatchStatus(fx.MatchID, "FINAL")
	// Neither fixture player appears in the finished data: both legs void.
	env.Stats.SetMatch("8001", testutil.StubMatch{
		Games: []testutil.StubGame{testutil.FinishedGame(1, 999, 3, 1, 2)},
	})

	adminToken := env.AdminToken("admin")
	resp := env.AuthPOST("/admin/entries/"+entryID.String()+"/settle", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, "CANCELLED", testutil.EntryStatus(t, env, entryID))
	// Full stake refunded.
	testutil.AssertCredits(t, env, userID, 1000)
}

func TestSettleEntry_PartialVoidReprices(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedEntryFixture(env, time.Now().UTC().Add(4*time.Hour))

	// Third line whose player never shows up in the stats.
	ghostTeam := env.SeedTeam("Ghosts")
	ghost := env.SeedPlayer("NoShow", ghostTeam, "777")
	line3 := env.SeedLine(ghost, fx.MatchID, "kills_match", 9.5, 0.50)

	token, userID := env.SignupUser("repriced", "securepass123")
	entryID := placeEntry(t, env, token, 100, "3LEG_5X",
		legBody(fx.Line1, "OVER"), legBody(fx.Line2, "UNDER"), legBody(line3, "OVER"))

	env.SetMatchStatus(fx.MatchID, "FINAL")
	env.Stats.SetMatch("8001", testutil.StubMatch{
		Games: []testutil.StubGame{twoPlayerGame(1, 15, 18)},
	})

	adminToken := env.AdminToken("admin")
	resp := env.AuthPOST("/admin/entries/"+entryID.String()+"/settle", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Two surviving legs both hit: paid at the two-leg tier, not the original.
	assert.Equal(t, "WON", testutil.EntryStatus(t, env, entryID))
	testutil.AssertCredits(t, env, userID, 1200)
}

func TestSettleEntry_RepeatIsBenign(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedEntryFixture(env, time.Now().UTC().Add(4*time.Hour))
	token, userID := env.SignupUser("repeat", "securepass123")

	entryID := placeEntry(t, env, token, 100, "2LEG_3X",
		legBody(fx.Line1, "OVER"), legBody(fx.Line2, "UNDER"))

	env.SetMatchStatus(fx.MatchID, "FINAL")
	env.Stats.SetMatch("8001", testutil.StubMatch{
		Games: []testutil.StubGame{twoPlayerGame(1, 15, 18)},
	})

	adminToken := env.AdminToken("admin")
	for i := 0; i < 2; i++ {
		resp := env.AuthPOST("/admin/entries/"+entryID.String()+"/settle", nil, adminToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	// Paid exactly once.
	testutil.AssertCredits(t, env, userID, 1200)
}

func TestSweep_SettlesFinalMatches(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedEntryFixture(env, time.Now().UTC().Add(4*time.Hour))
	token, userID := env.SignupUser("swept", "securepass123")

	placeEntry(t, env, token, 100, "2LEG_3X",
		legBody(fx.Line1, "OVER"), legBody(fx.Line2, "UNDER"))

	env.SetMatchStatus(fx.MatchID, "FINAL")
	env.Stats.SetMatch("8001", testutil.StubMatch{
		Games: []testutil.StubGame{twoPlayerGame(1, 15, 18)},
	})

	adminToken := env.AdminToken("admin")
	resp := env.AuthPOST("/admin/run/settle", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Matches        int `json:"matches"`
		EntriesSettled int `json:"entries_settled"`
		LinesSettled   int `json:"lines_settled"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, 1, result.Matches)
	assert.Equal(t, 1, result.EntriesSettled)
	assert.Equal(t, 2, result.LinesSettled)

	testutil.AssertCredits(t, env, userID, 1200)

	// The board lines on the match are retired too.
	var status string
	err := env.Pool.QueryRow(t.Context(),
		"SELECT status FROM lines WHERE id = $1", fx.Line1).Scan(&status)
	require.NoError(t, err)
	assert.Equal(t, "SETTLED", status)
}

func TestSweep_WaitsForAllMatchesFinal(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedEntryFixture(env, time.Now().UTC().Add(4*time.Hour))

	// Second match with its own line for a cross-match entry.
	t3 := env.SeedTeam("DRX")
	t4 := env.SeedTeam("KT")
	p3 := env.SeedPlayer("Deft", t3, "301")
	match2 := env.SeedMatch(t3, t4, time.Now().UTC().Add(5*time.Hour), "SCHEDULED", "8002")
	line3 := env.SeedLine(p3, match2, "kills_match", 11.5, 0.50)

	token, _ := env.SignupUser("crossmatch", "securepass123")
	entryID := placeEntry(t, env, token, 100, "2LEG_3X",
		legBody(fx.Line1, "OVER"), legBody(line3, "OVER"))

	// Only the first match finishes.
	env.SetMatchStatus(fx.MatchID, "FINAL")
	env.Stats.SetMatch("8001", testutil.StubMatch{
		Games: []testutil.StubGame{twoPlayerGame(1, 15, 18)},
	})

	adminToken := env.AdminToken("admin")
	resp := env.AuthPOST("/admin/run/settle", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		EntriesSettled int `json:"entries_settled"`
		EntriesSkipped int `json:"entries_skipped"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, 0, result.EntriesSettled)
	assert.Equal(t, 1, result.EntriesSkipped)
	assert.Equal(t, "OPEN", testutil.EntryStatus(t, env, entryID))
}
