package application

import (
	"net/http"
	"strings"

	"tlwd-backend/internal/handler/http/bind"
	"tlwd-backend/internal/handler/http/pathutil"
	"tlwd-backend/internal/handler/http/respond"
	appUC "tlwd-backend/internal/usecase/application"
)

type ListHandler struct{ Svc *appUC.Service }

// ServeHTTP 応募一覧（?status= で絞り込み）
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	items, err := h.Svc.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("status")))
	if err != nil {
		respond.Fail(w, err)
		return
	}
	dtos := make([]DTO, 0, len(items))
	for _, a := range items {
		dtos = append(dtos, toDTO(a))
	}
	respond.OK(w, "Success", dtos)
}

type GetHandler struct{ Svc *appUC.Service }

// ServeHTTP 応募詳細
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	a, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.OK(w, "Success", toDTO(a))
}

type StatusHandler struct{ Svc *appUC.Service }

// ServeHTTP 応募ステータス更新
func (h StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ID(r, "id")
	if err != nil {
		respond.Fail(w, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := bind.JSON(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	a, err := h.Svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.OK(w, "Application status updated successfully", toDTO(a))
}

type DeleteHandler struct{ Svc *appUC.Service }

// ServeHTTP 応募削除（CV も削除）
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
	respond.OK(w, "Application deleted successfully", nil)
}
