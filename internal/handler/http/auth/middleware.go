package auth

import (
	"context"
	"net/http"
	"strings"

	"tlwd-backend/internal/handler/http/respond"
	"tlwd-backend/internal/observability/metrics"
	authservice "tlwd-backend/internal/service/auth"
)

type ctxKey string

const ctxUser ctxKey = "user"

// User is the verified identity attached to the request context by Protect.
type User struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// TokenParser verifies a bearer token. *authservice.Tokens satisfies it.
type TokenParser interface {
	Parse(token string) (*authservice.Claims, error)
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxUser, u)
}

// UserFromContext returns the identity set by Protect.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxUser).(User)
	return u, ok
}

// Protect requires a valid "Authorization: Bearer <jwt>" header. Every
// failure looks the same to the client.
func Protect(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				metrics.RecordAuthRequest("missing_token")
				respond.Error(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}
			claims, err := tokens.Parse(token)
			if err != nil {
				metrics.RecordAuthRequest("invalid_token")
				respond.Error(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}
			ctx := WithUser(r.Context(), User{ID: claims.ID, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly must run after Protect. It lets admin and super-admin through.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok || !authservice.IsAdminRole(u.Role) {
			metrics.RecordAuthRequest("forbidden")
			recordAdminDenial(u.Role, r.Method)
			respond.Error(w, http.StatusForbidden, "Not authorized as admin")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Admin chains Protect and AdminOnly, the guard for every /api/admin route.
func Admin(tokens TokenParser) func(http.Handler) http.Handler {
	protect := Protect(tokens)
	return func(next http.Handler) http.Handler {
		return protect(AdminOnly(next))
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
