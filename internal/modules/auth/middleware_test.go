package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func protected(t *testing.T) (http.Handler, *Identity) {
	t.Helper()
	var seen Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		require.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusOK)
	})
	return RequireAuth(testSecret)(next), &seen
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	handler, seen := protected(t)
	userID := uuid.New()

	token, err := GenerateToken(userID, RoleVendor, testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, seen.UserID)
	assert.Equal(t, RoleVendor, seen.Role)
}

func TestRequireAuthRejectsBadCredentials(t *testing.T) {
	handler, _ := protected(t)

	expired, err := GenerateToken(uuid.New(), RoleCustomer, testSecret, -time.Minute)
	require.NoError(t, err)
	wrongSecret, err := GenerateToken(uuid.New(), RoleCustomer, "other", time.Hour)
	require.NoError(t, err)

	cases := map[string]string{
		"no header":     "",
		"not bearer":    "Basic abc123",
		"empty token":   "Bearer ",
		"garbage token": "Bearer not.a.jwt",
		"expired token": "Bearer " + expired,
		"wrong secret":  "Bearer " + wrongSecret,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAuth(testSecret)(RequireAdmin(next))

	call := func(role Role) int {
		token, err := GenerateToken(uuid.New(), role, testSecret, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call(RoleAdmin))
	assert.Equal(t, http.StatusForbidden, call(RoleVendor), "vendors are not admins")
	assert.Equal(t, http.StatusForbidden, call(RoleCustomer), "no bypass for signed-in customers")
}

func TestRequireAdminWithoutAuthContext(t *testing.T) {
	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("must not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
