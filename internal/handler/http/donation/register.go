package donation

import (
	"log/slog"
	"net/http"

	"tlwd-backend/internal/common/pagination"
	donationUC "tlwd-backend/internal/usecase/donation"
)

// Register mounts the donation routes. admin gates the /api/admin routes;
// limit throttles checkout initialisation.
func Register(mux *http.ServeMux, svc *donationUC.Service, paginationCfg pagination.Config,
	admin, limit func(http.Handler) http.Handler, logger *slog.Logger) {
	mux.Handle("POST /api/donations/initialize", limit(InitializeHandler{Svc: svc, Logger: logger}))
	mux.Handle("GET /api/donations/verify/{reference}", VerifyHandler{svc})

	mux.Handle("GET /api/admin/donations", admin(ListHandler{Svc: svc, Pagination: paginationCfg}))
	mux.Handle("GET /api/admin/donations/export", admin(ExportHandler{svc}))
}
