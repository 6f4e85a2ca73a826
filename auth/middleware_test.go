package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/foodgram-go/config"
)

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:            "unit-test-secret",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: 24 * time.Hour,
	}
}

// echoUserID responds with 200 and records the user ID it saw, if any.
func echoUserID(seen *int64, found *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		*seen, *found = id, ok
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireUser(t *testing.T) {
	cfg := testAuthConfig()
	svc := NewService(nil, *cfg)

	tokens, err := svc.generateTokens(42)
	require.NoError(t, err)

	t.Run("valid access token passes", func(t *testing.T) {
		var seen int64
		var found bool
		handler := RequireUser(cfg)(echoUserID(&seen, &found))

		r := httptest.NewRequest("GET", "/api/users/me/", nil)
		r.Header.Set("Authorization", "Bearer "+tokens.AuthToken)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, found)
		assert.Equal(t, int64(42), seen)
	})

	t.Run("missing header is 401", func(t *testing.T) {
		var seen int64
		var found bool
		handler := RequireUser(cfg)(echoUserID(&seen, &found))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/users/me/", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"detail":"authorization header is missing"}`, w.Body.String())
	})

	t.Run("malformed header is 401", func(t *testing.T) {
		handler := RequireUser(cfg)(http.NotFoundHandler())
		r := httptest.NewRequest("GET", "/api/users/me/", nil)
		r.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token is 401", func(t *testing.T) {
		handler := RequireUser(cfg)(http.NotFoundHandler())
		r := httptest.NewRequest("GET", "/api/users/me/", nil)
		r.Header.Set("Authorization", "Bearer not.a.jwt")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("refresh token is not an access credential", func(t *testing.T) {
		handler := RequireUser(cfg)(http.NotFoundHandler())
		r := httptest.NewRequest("GET", "/api/users/me/", nil)
		r.Header.Set("Authorization", "Bearer "+tokens.RefreshToken)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token signed with another secret is 401", func(t *testing.T) {
		otherCfg := &config.AuthConfig{JWTSecret: "other", AccessTokenDuration: time.Hour, RefreshTokenDuration: time.Hour}
		otherTokens, err := NewService(nil, *otherCfg).generateTokens(42)
		require.NoError(t, err)

		handler := RequireUser(cfg)(http.NotFoundHandler())
		r := httptest.NewRequest("GET", "/api/users/me/", nil)
		r.Header.Set("Authorization", "Bearer "+otherTokens.AuthToken)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestMaybeUser(t *testing.T) {
	cfg := testAuthConfig()
	svc := NewService(nil, *cfg)

	tokens, err := svc.generateTokens(7)
	require.NoError(t, err)

	t.Run("anonymous request passes through", func(t *testing.T) {
		var seen int64
		var found bool
		handler := MaybeUser(cfg)(echoUserID(&seen, &found))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/recipes/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, found)
	})

	t.Run("valid token annotates context", func(t *testing.T) {
		var seen int64
		var found bool
		handler := MaybeUser(cfg)(echoUserID(&seen, &found))

		r := httptest.NewRequest("GET", "/api/recipes/", nil)
		r.Header.Set("Authorization", "Bearer "+tokens.AuthToken)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.True(t, found)
		assert.Equal(t, int64(7), seen)
	})

	t.Run("invalid token stays anonymous", func(t *testing.T) {
		var seen int64
		var found bool
		handler := MaybeUser(cfg)(echoUserID(&seen, &found))

		r := httptest.NewRequest("GET", "/api/recipes/", nil)
		r.Header.Set("Authorization", "Bearer broken")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, found)
	})
}

func TestValidateTokenTypeEnforcement(t *testing.T) {
	svc := NewService(nil, *testAuthConfig())
	tokens, err := svc.generateTokens(5)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(tokens.AuthToken, "access")
	require.NoError(t, err)
	assert.Equal(t, int64(5), claims.UserID)

	_, err = svc.ValidateToken(tokens.AuthToken, "refresh")
	assert.Error(t, err)

	claims, err = svc.ValidateToken(tokens.RefreshToken, "refresh")
	require.NoError(t, err)
	assert.Equal(t, int64(5), claims.UserID)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	cfg := &config.AuthConfig{
		JWTSecret:            "unit-test-secret",
		AccessTokenDuration:  -time.Minute, // already expired at issue time
		RefreshTokenDuration: time.Hour,
	}
	svc := NewService(nil, *cfg)
	tokens, err := svc.generateTokens(5)
	require.NoError(t, err)

	_, err = svc.ValidateToken(tokens.AuthToken, "access")
	assert.Error(t, err)
}
