package subscriber

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"

	"tlwd-backend/internal/common/pagination"
	"tlwd-backend/internal/handler/http/bind"
	"tlwd-backend/internal/handler/http/pathutil"
	"tlwd-backend/internal/handler/http/respond"
	"tlwd-backend/internal/handler/http/upload"
	"tlwd-backend/internal/observability/logging"
	subUC "tlwd-backend/internal/usecase/subscriber"
)

type ListHandler struct {
	Svc        *subUC.Service
	Pagination pagination.Config
}

// ServeHTTP 購読者一覧
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.ParseQueryParams(r, h.Pagination)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	res, err := h.Svc.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("status")), params)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	dtos := make([]DTO, 0, len(res.Data))
	for _, s := range res.Data {
		dtos = append(dtos, toDTO(s))
	}
	respond.Paginated(w, "Success", dtos, res.Pagination)
}

type DeleteHandler struct{ Svc *subUC.Service }

// ServeHTTP 購読者削除
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
	respond.OK(w, "Subscriber deleted successfully", nil)
}

type ExportHandler struct{ Svc *subUC.Service }

// ServeHTTP アクティブ購読者の CSV エクスポート
func (h ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, err := h.Svc.ExportActive(r.Context())
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.Attachment(w, "text/csv", "subscribers.csv", data)
}

type ImportHandler struct {
	Svc     *subUC.Service
	Uploads upload.Parser
	Logger  *slog.Logger
}

// ServeHTTP CSV から購読者を一括登録
func (h ImportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parser := h.Uploads
	parser.Accept = upload.CSV
	file, err := parser.File(r, "file", "Please upload a CSV file")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	res, err := h.Svc.Import(r.Context(), bytes.NewReader(file.Data))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logging.WithRequestID(r.Context(), logger).Info("subscribers imported",
		slog.Int("imported", res.Imported),
		slog.Int("reactivated", res.Reactivated),
		slog.Int("skipped", res.Skipped),
		slog.Int("invalid", res.Invalid))
	respond.OK(w, "Subscribers imported successfully", res)
}

type BroadcastHandler struct{ Svc *subUC.Service }

// ServeHTTP ニュースレター一斉配信
func (h BroadcastHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Body    string `json:"body"`
		CTAText string `json:"ctaText"`
		CTAURL  string `json:"ctaUrl"`
		Image   string `json:"image"`
	}
	if err := bind.JSON(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	res, err := h.Svc.Broadcast(r.Context(), subUC.BroadcastInput{
		Title:   req.Title,
		Body:    req.Body,
		CTAText: req.CTAText,
		CTAURL:  req.CTAURL,
		Image:   req.Image,
	})
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.OK(w, "Newsletter sent successfully", res)
}
