package content

import (
	"net/http"

	"tlwd-backend/internal/handler/http/pathutil"
	"tlwd-backend/internal/handler/http/respond"
	"tlwd-backend/internal/handler/http/upload"
	contentUC "tlwd-backend/internal/usecase/content"
)

type UpdateHandler struct {
	Svc     *contentUC.Service
	Uploads upload.Parser
}

// ServeHTTP レコード部分更新
func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	in, err := decodeInput(r, h.Svc, h.Uploads)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	rec, err := h.Svc.Update(r.Context(), id, in)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.OK(w, h.Svc.Type.Display+" updated successfully", Record(rec))
}
