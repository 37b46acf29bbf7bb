package subscriber

import (
	"log/slog"
	"net/http"

	"tlwd-backend/internal/common/pagination"
	"tlwd-backend/internal/handler/http/upload"
	subUC "tlwd-backend/internal/usecase/subscriber"
)

// Register mounts the newsletter and admin subscriber routes.
func Register(mux *http.ServeMux, svc *subUC.Service, paginationCfg pagination.Config, uploads upload.Parser,
	admin, limit func(http.Handler) http.Handler, logger *slog.Logger) {
	mux.Handle("POST /api/newsletter/subscribe", limit(SubscribeHandler{svc}))
	mux.Handle("POST /api/newsletter/unsubscribe", limit(UnsubscribeHandler{svc}))

	mux.Handle("GET /api/admin/subscribers", admin(ListHandler{Svc: svc, Pagination: paginationCfg}))
	mux.Handle("GET /api/admin/subscribers/export", admin(ExportHandler{svc}))
	mux.Handle("POST /api/admin/subscribers/import", admin(ImportHandler{Svc: svc, Uploads: uploads, Logger: logger}))
	mux.Handle("POST /api/admin/subscribers/broadcast", admin(BroadcastHandler{svc}))
	mux.Handle("DELETE /api/admin/subscribers/{id}", admin(DeleteHandler{svc}))
}
