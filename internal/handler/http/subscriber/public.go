package subscriber

import (
	"errors"
	"net/http"

	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/handler/http/bind"
	"tlwd-backend/internal/handler/http/respond"
	subUC "tlwd-backend/internal/usecase/subscriber"
)

type SubscribeHandler struct{ Svc *subUC.Service }

// ServeHTTP ニュースレター購読
func (h SubscribeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email  string `json:"email"`
		Source string `json:"source"`
	}
	if err := bind.JSON(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	sub, err := h.Svc.Subscribe(r.Context(), req.Email, req.Source)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	respond.Created(w, "Successfully subscribed to newsletter", toDTO(sub))
}

type UnsubscribeHandler struct{ Svc *subUC.Service }

// ServeHTTP 購読解除
func (h UnsubscribeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := bind.JSON(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	if req.Email == "" {
		// リンク経由 (?email=) の解除にも対応
		req.Email = r.URL.Query().Get("email")
	}
	if _, err := h.Svc.Unsubscribe(r.Context(), req.Email); err != nil {
		if errors.Is(err, subUC.ErrSubscriberNotFound) {
			err = &entity.NotFoundError{Resource: "Email"}
		}
		respond.Fail(w, err)
		return
	}
	respond.OK(w, "Successfully unsubscribed", nil)
}
