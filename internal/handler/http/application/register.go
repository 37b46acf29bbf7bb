package application

import (
	"log/slog"
	"net/http"

	"tlwd-backend/internal/handler/http/upload"
	appUC "tlwd-backend/internal/usecase/application"
)

// Register mounts the apply route and the admin application routes.
func Register(mux *http.ServeMux, svc *appUC.Service, uploads upload.Parser,
	admin, limit func(http.Handler) http.Handler, logger *slog.Logger) {
	mux.Handle("POST /api/opportunities/{id}/apply", limit(ApplyHandler{Svc: svc, Uploads: uploads, Logger: logger}))

	mux.Handle("GET /api/admin/applications", admin(ListHandler{svc}))
	mux.Handle("GET /api/admin/applications/{id}", admin(GetHandler{svc}))
	mux.Handle("PATCH /api/admin/applications/{id}/status", admin(StatusHandler{svc}))
	mux.Handle("DELETE /api/admin/applications/{id}", admin(DeleteHandler{svc}))
}
