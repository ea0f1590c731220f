package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour, time.Hour)
	userID := uuid.New()

	token, err := mgr.GenerateToken(RealmUser, userID, "rekkles_fan", "")
	require.NoError(t, err)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, RealmUser, claims.Realm)
	assert.Equal(t, "rekkles_fan", claims.Username)
}

func TestValidateTokenForRealm(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour, time.Hour)

	userToken, err := mgr.GenerateToken(RealmUser, uuid.New(), "someone", "")
	require.NoError(t, err)
	adminToken, err := mgr.GenerateToken(RealmAdmin, uuid.New(), "ops", "admin")
	require.NoError(t, err)

	t.Run("matching realm passes", func(t *testing.T) {
		_, err := mgr.ValidateTokenForRealm(adminToken, RealmAdmin)
		assert.NoError(t, err)
	})

	t.Run("user token rejected on admin realm", func(t *testing.T) {
		_, err := mgr.ValidateTokenForRealm(userToken, RealmAdmin)
		assert.Error(t, err)
	})

	t.Run("admin token rejected on user realm", func(t *testing.T) {
		_, err := mgr.ValidateTokenForRealm(adminToken, RealmUser)
		assert.Error(t, err)
	})
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour, time.Hour)
	other := NewJWTManager("other-secret", time.Hour, time.Hour)

	token, err := mgr.GenerateToken(RealmUser, uuid.New(), "someone", "")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := other.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := mgr.ValidateToken("not.a.token")
		assert.Error(t, err)
	})
}

func TestExpiredTokenRejected(t *testing.T) {
	mgr := NewJWTManager("test-secret", -time.Minute, time.Hour)

	token, err := mgr.GenerateToken(RealmUser, uuid.New(), "someone", "")
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	assert.Error(t, err)
}

func TestUnknownRealmRejected(t *testing.T) {
	mgr := NewJWTManager("test-secret", time.Hour, time.Hour)
	_, err := mgr.GenerateToken(Realm("affiliate"), uuid.New(), "someone", "")
	assert.Error(t, err)
}
