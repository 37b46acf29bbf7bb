// Package contact serves the public contact form.
package contact

import (
	"log/slog"
	"net/http"
	"time"

	"tlwd-backend/internal/handler/http/bind"
	"tlwd-backend/internal/handler/http/respond"
	"tlwd-backend/internal/observability/logging"
	contactUC "tlwd-backend/internal/usecase/contact"
)

type DTO struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type SubmitHandler struct {
	Svc    *contactUC.Service
	Logger *slog.Logger
}

// ServeHTTP お問い合わせ送信
func (h SubmitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := bind.JSON(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	m, err := h.Svc.Submit(r.Context(), contactUC.Input{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		respond.Fail(w, err)
		return
	}
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logging.WithRequestID(r.Context(), logger).Info("contact message received",
		slog.String("contact_id", m.ID))
	respond.Created(w, "Message sent successfully", DTO{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	})
}

func Register(mux *http.ServeMux, svc *contactUC.Service, limit func(http.Handler) http.Handler, logger *slog.Logger) {
	mux.Handle("POST /api/contact", limit(SubmitHandler{Svc: svc, Logger: logger}))
}
