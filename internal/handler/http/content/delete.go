package content

import (
	"log/slog"
	"net/http"

	"tlwd-backend/internal/handler/http/pathutil"
	"tlwd-backend/internal/handler/http/respond"
	"tlwd-backend/internal/observability/logging"
	contentUC "tlwd-backend/internal/usecase/content"
)

type DeleteHandler struct {
	Svc    *contentUC.Service
	Logger *slog.Logger
}

// ServeHTTP レコード削除
func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		respond.Fail(w, err)
		return
	}
	logging.WithRequestID(r.Context(), loggerOr(h.Logger)).Info("content deleted",
		slog.String("content_type", h.Svc.Type.Name),
		slog.String("id", id))
	respond.OK(w, h.Svc.Type.Display+" deleted successfully", nil)
}
