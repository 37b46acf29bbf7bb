// Package setting exposes the site settings object.
package setting

import (
	"net/http"

	"tlwd-backend/internal/handler/http/bind"
	"tlwd-backend/internal/handler/http/respond"
	settingUC "tlwd-backend/internal/usecase/setting"
)

type GetHandler struct{ Svc *settingUC.Service }

// ServeHTTP 設定一覧（公開・管理共通）
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	values, err := h.Svc.All(r.Context())
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.OK(w, "Success", values)
}

type UpdateHandler struct{ Svc *settingUC.Service }

// ServeHTTP 設定の一括更新
func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var values map[string]any
	if err := bind.JSON(r, &values); err != nil {
		respond.Fail(w, err)
		return
	}
	updated, err := h.Svc.Update(r.Context(), values)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.OK(w, "Settings updated successfully", updated)
}

func Register(mux *http.ServeMux, svc *settingUC.Service, admin func(http.Handler) http.Handler) {
	mux.Handle("GET /api/settings", GetHandler{svc})
	mux.Handle("GET /api/admin/settings", admin(GetHandler{svc}))
	mux.Handle("PUT /api/admin/settings", admin(UpdateHandler{svc}))
}
