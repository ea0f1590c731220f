//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/JonathanDunkleberger/Kimi/test/integration/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup_Success(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.POST("/auth/signup", map[string]string{
		"username": "newuser", "password": "securepass123",
	}, "")

	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Token    string    `json:"token"`
		UserID   uuid.UUID `json:"user_id"`
		Username string    `json:"username"`
		Credits  int64     `json:"credits"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.NotEmpty(t, result.Token)
	assert.NotEqual(t, uuid.Nil, result.UserID)
	assert.Equal(t, "newuser", result.Username)
	assert.Equal(t, int64(1000), result.Credits)
}

func TestSignup_GrantsLedgeredCredits(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, userID := env.SignupUser("granted", "securepass123")

	testutil.AssertCredits(t, env, userID, 1000)
	assert.Equal(t, 1, testutil.CountTransactions(t, env, userID))
}

func TestSignup_DuplicateUsername(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.SignupUser("taken", "securepass123")

	resp := env.POST("/auth/signup", map[string]string{
		"username": "taken", "password": "otherpass123",
	}, "")
	testutil.AssertStatus(t, resp, http.StatusConflict)
	testutil.AssertErrorCode(t, resp, "CONFLICT")
}

func TestSignup_ShortPassword(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.POST("/auth/signup", map[string]string{
		"username": "shorty", "password": "abc",
	}, "")
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestLogin_Success(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.SignupUser("loginuser", "securepass123")

	token := env.LoginUser("loginuser", "securepass123")
	assert.NotEmpty(t, token)

	resp := env.AuthGET("/users/me", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me struct {
		Username string `json:"username"`
		Credits  int64  `json:"credits"`
	}
	testutil.DecodeJSON(t, resp, &me)
	assert.Equal(t, "loginuser", me.Username)
	assert.Equal(t, int64(1000), me.Credits)
}

func TestLogin_WrongPassword(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.SignupUser("badpw", "securepass123")

	resp := env.POST("/auth/login", map[string]string{
		"username": "badpw", "password": "wrongpass123",
	}, "")
	testutil.AssertStatus(t, resp, http.StatusUnauthorized)
	testutil.AssertErrorCode(t, resp, "UNAUTHORIZED")
}

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.SignupUser("lockme", "securepass123")

	for i := 0; i < 5; i++ {
		resp := env.POST("/auth/login", map[string]string{
			"username": "lockme", "password": "wrongpass123",
		}, "")
		resp.Body.Close()
	}

	// Even the correct password is refused while locked.
	resp := env.POST("/auth/login", map[string]string{
		"username": "lockme", "password": "securepass123",
	}, "")
	testutil.AssertStatus(t, resp, http.StatusLocked)
	testutil.AssertErrorCode(t, resp, "ACCOUNT_LOCKED")
}

func TestUserRoutes_RequireToken(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.GET("/users/me")
	testutil.AssertStatus(t, resp, http.StatusUnauthorized)
	resp.Body.Close()
}

func TestUserToken_RejectedOnAdminRoutes(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.SignupUser("notadmin", "securepass123")

	resp := env.AuthPOST("/admin/teams", map[string]string{"name": "Sneaky"}, token)
	testutil.AssertStatus(t, resp, http.StatusUnauthorized)
	resp.Body.Close()
}

func TestTransactions_ListsSignupGrant(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.SignupUser("txuser", "securepass123")

	resp := env.AuthGET("/users/me/transactions", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Transactions []struct {
			Type   string `json:"type"`
			Amount int64  `json:"amount"`
		} `json:"transactions"`
	}
	testutil.DecodeJSON(t, resp, &result)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, int64(1000), result.Transactions[0].Amount)
}
