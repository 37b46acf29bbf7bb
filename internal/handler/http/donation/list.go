package donation

import (
	"net/http"

	"tlwd-backend/internal/common/pagination"
	"tlwd-backend/internal/handler/http/respond"
	donationUC "tlwd-backend/internal/usecase/donation"
)

type ListHandler struct {
	Svc        *donationUC.Service
	Pagination pagination.Config
}

// ServeHTTP 寄付一覧（status, method, from, to で絞り込み）
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params, err := pagination.ParseQueryParams(r, h.Pagination)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	q := r.URL.Query()
	filters, err := donationUC.ParseFilters(q.Get("status"), q.Get("method"), q.Get("from"), q.Get("to"))
	if err != nil {
		respond.Fail(w, err)
		return
	}

	res, err := h.Svc.List(r.Context(), filters, params)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	dtos := make([]DTO, 0, len(res.Data))
	for _, d := range res.Data {
		dtos = append(dtos, ToDTO(d))
	}
	respond.Paginated(w, "Success", dtos, res.Pagination)
}
