package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tlwd-backend/internal/handler/http/auth"
	"tlwd-backend/internal/handler/http/respond"
	authservice "tlwd-backend/internal/service/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func mustToken(t *testing.T, tokens *authservice.Tokens, id, role string) string {
	t.Helper()
	tok, err := tokens.Issue(id, role)
	require.NoError(t, err)
	return tok
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) respond.Envelope {
	t.Helper()
	var env respond.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestAdmin(t *testing.T) {
	tokens := authservice.NewTokens(testSecret, time.Hour)
	expired := authservice.NewTokens(testSecret, time.Hour)
	expired.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	var seen auth.User
	h := auth.Admin(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"admin", "Bearer " + mustToken(t, tokens, "u1", "admin"), http.StatusOK, ""},
		{"super admin lowercase scheme", "bearer " + mustToken(t, tokens, "u2", "super-admin"), http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "Not authorized to access this route"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Not authorized to access this route"},
		{"garbage token", "Bearer nope", http.StatusUnauthorized, "Not authorized to access this route"},
		{"expired", "Bearer " + mustToken(t, expired, "u1", "admin"), http.StatusUnauthorized, "Not authorized to access this route"},
		{"editor role", "Bearer " + mustToken(t, tokens, "u3", "editor"), http.StatusForbidden, "Not authorized as admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/team", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.message != "" {
				env := decode(t, rec)
				assert.False(t, env.Success)
				assert.Equal(t, tt.message, env.Message)
			}
		})
	}

	assert.Equal(t, "u2", seen.ID)
	assert.Equal(t, "super-admin", seen.Role)
}

func TestAdminOnly_WithoutProtect(t *testing.T) {
	h := auth.AdminOnly(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("must not be called")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/admin/team/x", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWithUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := auth.UserFromContext(req.Context())
	assert.False(t, ok)

	ctx := auth.WithUser(req.Context(), auth.User{ID: "u1", Role: "admin"})
	u, ok := auth.UserFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, auth.User{ID: "u1", Role: "admin"}, u)
}
