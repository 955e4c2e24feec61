package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func isAdmin(id int64) bool { return id == 1 }

func protected(t *testing.T) http.Handler {
	return AdminAuth(testSecret, isAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := AdminID(r.Context())
		require.True(t, ok)
		assert.Equal(t, int64(1), id)
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestAdminAuth(t *testing.T) {
	valid, err := IssueAdminToken(testSecret, 1, time.Hour)
	require.NoError(t, err)
	notAdmin, err := IssueAdminToken(testSecret, 2, time.Hour)
	require.NoError(t, err)
	expired, err := IssueAdminToken(testSecret, 1, -time.Minute)
	require.NoError(t, err)
	wrongKey, err := IssueAdminToken("other-secret", 1, time.Hour)
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{UserID: 1}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, AdminClaims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid admin", "Bearer " + valid, http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong key", "Bearer " + wrongKey, http.StatusUnauthorized},
		{"no expiry", "Bearer " + noExpiry, http.StatusUnauthorized},
		{"unexpected algorithm", "Bearer " + hs512, http.StatusUnauthorized},
		{"not an admin", "Bearer " + notAdmin, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/admin/auctions/3/bids/last", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			protected(t).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAdminAuth_NoSecret(t *testing.T) {
	token, err := IssueAdminToken(testSecret, 1, time.Hour)
	require.NoError(t, err)

	h := AdminAuth("", isAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	req := httptest.NewRequest(http.MethodDelete, "/admin/auctions/3/bids/last", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminID_Missing(t *testing.T) {
	_, ok := AdminID(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
