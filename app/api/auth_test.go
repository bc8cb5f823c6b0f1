package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Quiz-Night-Club/quiz-engine/app/shared/observability"
	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
	"github.com/Quiz-Night-Club/quiz-engine/config"
)

const testSecret = "test-secret"

func newTestServer() *Server {
	cfg := &config.Config{}
	cfg.JWT.Secret = testSecret
	cfg.HTTP.BuzzerRatePerSecond = 5
	cfg.HTTP.BuzzerRateBurst = 2
	return &Server{
		cfg:     cfg,
		logger:  observability.NoOpLogger,
		limiter: newBuzzerLimiter(cfg.HTTP.BuzzerRatePerSecond, cfg.HTTP.BuzzerRateBurst),
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestIssueToken_RoundTrip(t *testing.T) {
	claims := Claims{
		GameID:   types.NewGameID(),
		PlayerID: "p1",
		Role:     RolePlayer,
	}
	token, err := IssueToken(testSecret, claims, time.Hour)
	require.NoError(t, err)

	parsed, err := parseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, claims, parsed)
}

func TestParseToken_RejectsWrongSecret(t *testing.T) {
	token, err := IssueToken(testSecret, Claims{GameID: types.NewGameID(), Role: RoleOrganizer}, time.Hour)
	require.NoError(t, err)

	_, err = parseToken("other-secret", token)
	require.Error(t, err)
}

func TestParseToken_RejectsExpired(t *testing.T) {
	token, err := IssueToken(testSecret, Claims{GameID: types.NewGameID(), Role: RoleOrganizer}, -time.Minute)
	require.NoError(t, err)

	_, err = parseToken(testSecret, token)
	require.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer()
	handler := s.authMiddleware(okHandler())

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token passes", func(t *testing.T) {
		token, err := IssueToken(testSecret, Claims{GameID: types.NewGameID(), Role: RoleOrganizer}, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	s := newTestServer()
	handler := s.authMiddleware(s.requireRole(RoleOrganizer)(okHandler()))

	token, err := IssueToken(testSecret, Claims{GameID: types.NewGameID(), PlayerID: "p1", Role: RolePlayer}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRateLimitMiddleware_BoundsPresses(t *testing.T) {
	s := newTestServer()
	handler := s.authMiddleware(s.rateLimitMiddleware(okHandler()))

	token, err := IssueToken(testSecret, Claims{GameID: types.NewGameID(), PlayerID: "spammer", Role: RolePlayer}, time.Hour)
	require.NoError(t, err)

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	// Burst of 2, then throttled.
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[3])
}

func TestBuzzerLimiter_IsPerPlayer(t *testing.T) {
	limiter := newBuzzerLimiter(1, 1)
	require.True(t, limiter.allow("p1"))
	require.False(t, limiter.allow("p1"))
	require.True(t, limiter.allow("p2"))
}
