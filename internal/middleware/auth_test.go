package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestIssueAndParseSession(t *testing.T) {
	token, err := IssueSession(testSecret, 42, time.Hour)
	require.NoError(t, err)

	uid, err := ParseSession(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), uid)
}

func TestParseSessionRejectsWrongSecret(t *testing.T) {
	token, err := IssueSession(testSecret, 42, time.Hour)
	require.NoError(t, err)

	_, err = ParseSession([]byte("other-secret"), token)
	assert.Error(t, err)
}

func TestParseSessionRejectsExpired(t *testing.T) {
	token, err := IssueSession(testSecret, 42, -time.Minute)
	require.NoError(t, err)

	_, err = ParseSession(testSecret, token)
	assert.Error(t, err)
}

func TestParseSessionRejectsGarbage(t *testing.T) {
	_, err := ParseSession(testSecret, "not-a-token")
	assert.Error(t, err)
}

func sessionTestHandler(t *testing.T, wantUID int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantUID, UserIDFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionAuthAllowsValidCookie(t *testing.T) {
	token, err := IssueSession(testSecret, 7, time.Hour)
	require.NoError(t, err)

	handler := SessionAuth(testSecret)(sessionTestHandler(t, 7))

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionAuthRejectsMissingCookie(t *testing.T) {
	handler := SessionAuth(testSecret)(sessionTestHandler(t, 0))

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthRejectsTamperedToken(t *testing.T) {
	token, err := IssueSession([]byte("attacker"), 7, time.Hour)
	require.NoError(t, err)

	handler := SessionAuth(testSecret)(sessionTestHandler(t, 0))

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthSkipsPublicPaths(t *testing.T) {
	handler := SessionAuth(testSecret)(sessionTestHandler(t, 0))

	for _, path := range []string{"/health", "/metrics", "/login"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
