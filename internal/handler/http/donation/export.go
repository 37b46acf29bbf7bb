package donation

import (
	"net/http"

	"tlwd-backend/internal/handler/http/respond"
	donationUC "tlwd-backend/internal/usecase/donation"
)

type ExportHandler struct{ Svc *donationUC.Service }

// ServeHTTP 寄付 CSV エクスポート
func (h ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters, err := donationUC.ParseFilters(q.Get("status"), q.Get("method"), q.Get("from"), q.Get("to"))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	data, err := h.Svc.Export(r.Context(), filters)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.Attachment(w, "text/csv", "donations.csv", data)
}
