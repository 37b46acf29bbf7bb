package content

import (
	"log/slog"
	"net/http"

	"tlwd-backend/internal/common/pagination"
	"tlwd-backend/internal/handler/http/respond"
	"tlwd-backend/internal/observability/logging"
	contentUC "tlwd-backend/internal/usecase/content"
)

// ListHandler is the admin listing. It is always paginated.
type ListHandler struct {
	Svc        *contentUC.Service
	Pagination pagination.Config
	Logger     *slog.Logger
}

// ServeHTTP 管理画面一覧
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.ParseQueryParams(r, h.Pagination)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	opts := listOptions(r)
	opts.Params = &params

	res, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		logging.WithRequestID(r.Context(), h.logger()).Error("list content failed",
			slog.String("content_type", h.Svc.Type.Name),
			slog.Any("error", err))
		respond.Fail(w, err)
		return
	}
	respond.Paginated(w, "Success", Records(res.Data), *res.Pagination)
}

func (h ListHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// PublicListHandler lists the publicly visible records. Without page or
// limit in the query every match is returned, unless Paginate is set.
type PublicListHandler struct {
	Svc        *contentUC.Service
	Pagination pagination.Config
	Paginate   bool
}

// ServeHTTP 公開一覧
func (h PublicListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)
	if h.Paginate || wantsPage(r) {
		params, err := pagination.ParseQueryParams(r, h.Pagination)
		if err != nil {
			respond.Fail(w, err)
			return
		}
		opts.Params = &params
	}

	res, err := h.Svc.PublicList(r.Context(), opts)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	if res.Pagination != nil {
		respond.Paginated(w, "Success", Records(res.Data), *res.Pagination)
		return
	}
	respond.OK(w, "Success", Records(res.Data))
}
