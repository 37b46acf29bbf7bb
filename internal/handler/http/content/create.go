package content

import (
	"log/slog"
	"net/http"

	"tlwd-backend/internal/handler/http/respond"
	"tlwd-backend/internal/handler/http/upload"
	"tlwd-backend/internal/observability/logging"
	contentUC "tlwd-backend/internal/usecase/content"
)

type CreateHandler struct {
	Svc     *contentUC.Service
	Uploads upload.Parser
	Logger  *slog.Logger
}

// ServeHTTP レコード作成
func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(r, h.Svc, h.Uploads)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	rec, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	logging.WithRequestID(r.Context(), loggerOr(h.Logger)).Info("content created",
		slog.String("content_type", h.Svc.Type.Name),
		slog.String("id", rec.ID),
		slog.Bool("with_asset", in.Asset != nil))
	respond.Created(w, h.Svc.Type.Display+" created successfully", Record(rec))
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
