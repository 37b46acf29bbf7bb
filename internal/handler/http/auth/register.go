package auth

import (
	"log/slog"
	"net/http"

	authservice "tlwd-backend/internal/service/auth"
)

// Register mounts /api/auth. limit wraps login against password guessing;
// pass nil to leave it unlimited.
func Register(mux *http.ServeMux, svc *authservice.AuthService, limit func(http.Handler) http.Handler, logger *slog.Logger) {
	if limit == nil {
		limit = func(h http.Handler) http.Handler { return h }
	}
	protect := Protect(svc.Tokens)

	mux.Handle("POST /api/auth/login", limit(LoginHandler{Svc: svc, Logger: logger}))
	mux.Handle("GET /api/auth/me", protect(MeHandler{svc}))
	mux.Handle("POST /api/auth/logout", protect(LogoutHandler{}))
	mux.Handle("POST /api/auth/refresh", protect(RefreshHandler{svc}))
	mux.Handle("PUT /api/auth/password", protect(PasswordHandler{svc}))
}
