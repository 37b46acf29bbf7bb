package donation

import (
	"net/http"

	"tlwd-backend/internal/handler/http/respond"
	donationUC "tlwd-backend/internal/usecase/donation"
)

type VerifyHandler struct{ Svc *donationUC.Service }

// ServeHTTP 決済結果の照合
func (h VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res, err := h.Svc.Verify(r.Context(), r.PathValue("reference"))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.OK(w, "Payment verified successfully", res)
}
