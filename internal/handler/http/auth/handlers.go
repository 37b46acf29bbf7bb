package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/handler/http/bind"
	"tlwd-backend/internal/handler/http/requestid"
	"tlwd-backend/internal/handler/http/respond"
	"tlwd-backend/internal/observability/metrics"
	authservice "tlwd-backend/internal/service/auth"
)

type userDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

func toUserDTO(u *entity.User) userDTO {
	return userDTO{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

// fail maps the 401 sentinels of the auth service and defers the rest to respond.Fail.
func fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authservice.ErrInvalidCredentials), errors.Is(err, authservice.ErrInvalidCurrentPassword):
		respond.Fail(w, respond.NewAppError(http.StatusUnauthorized, err.Error(), err))
	default:
		respond.Fail(w, err)
	}
}

type LoginHandler struct {
	Svc    *authservice.AuthService
	Logger *slog.Logger
}

// ServeHTTP ログイン
func (h LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("request_id", requestid.FromContext(r.Context())))

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := bind.JSON(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}

	res, err := h.Svc.Login(r.Context(), authservice.Credentials{Email: req.Email, Password: req.Password})
	recordLogin(start, err)
	if err != nil {
		metrics.RecordAuthRequest("failure")
		logger.Warn("authentication failed",
			slog.String("reason", respond.Message(err)),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		fail(w, err)
		return
	}

	metrics.RecordAuthRequest("success")
	logger.Info("authentication successful",
		slog.String("user_id", res.User.ID),
		slog.String("role", res.User.Role),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	respond.OK(w, "Login successful", map[string]any{
		"token": res.Token,
		"user":  toUserDTO(res.User),
	})
}

type MeHandler struct{ Svc *authservice.AuthService }

func (h MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromContext(r.Context())
	user, err := h.Svc.Me(r.Context(), u.ID)
	if err != nil {
		fail(w, err)
		return
	}
	respond.OK(w, "Success", toUserDTO(user))
}

// LogoutHandler is stateless; the client discards its token.
type LogoutHandler struct{}

func (LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, "Logout successful", nil)
}

type RefreshHandler struct{ Svc *authservice.AuthService }

func (h RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromContext(r.Context())
	token, err := h.Svc.Refresh(r.Context(), u.ID)
	if err != nil {
		fail(w, err)
		return
	}
	metrics.RecordAuthRequest("refresh")
	respond.OK(w, "Token refreshed", map[string]string{"token": token})
}

type PasswordHandler struct{ Svc *authservice.AuthService }

func (h PasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := bind.JSON(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	u, _ := UserFromContext(r.Context())
	if err := h.Svc.ChangePassword(r.Context(), u.ID, req.CurrentPassword, req.NewPassword); err != nil {
		fail(w, err)
		return
	}
	respond.OK(w, "Password updated successfully", nil)
}
