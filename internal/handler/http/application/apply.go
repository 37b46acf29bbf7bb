package application

import (
	"fmt"
	"log/slog"
	"net/http"

	"tlwd-backend/internal/handler/http/bind"
	"tlwd-backend/internal/handler/http/pathutil"
	"tlwd-backend/internal/handler/http/respond"
	"tlwd-backend/internal/handler/http/upload"
	"tlwd-backend/internal/observability/logging"
	appUC "tlwd-backend/internal/usecase/application"
)

type ApplyHandler struct {
	Svc     *appUC.Service
	Uploads upload.Parser
	Logger  *slog.Logger
}

// ServeHTTP 募集への応募（multipart の cv は任意）
func (h ApplyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ID(r, "id")
	if err != nil {
		// 存在しない募集と同じ扱い
		respond.Fail(w, appUC.ErrOpportunityNotAvailable)
		return
	}

	in := appUC.SubmitInput{OpportunityID: id}
	if upload.IsMultipart(r) {
		form, err := h.Uploads.Parse(r, "cv")
		if err != nil {
			respond.Fail(w, err)
			return
		}
		in.Name = text(form.Fields, "name")
		in.Email = text(form.Fields, "email")
		in.Phone = text(form.Fields, "phone")
		in.CoverLetter = text(form.Fields, "coverLetter")
		in.CV = form.Asset
	} else {
		var req struct {
			Name        string `json:"name"`
			Email       string `json:"email"`
			Phone       string `json:"phone"`
			CoverLetter string `json:"coverLetter"`
		}
		if err := bind.JSON(r, &req); err != nil {
			respond.Fail(w, err)
			return
		}
		in.Name, in.Email, in.Phone, in.CoverLetter = req.Name, req.Email, req.Phone, req.CoverLetter
	}

	a, err := h.Svc.Submit(r.Context(), in)
	if err != nil {
		respond.Fail(w, err)
		return
	}
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logging.WithRequestID(r.Context(), logger).Info("application submitted",
		slog.String("application_id", a.ID),
		slog.String("opportunity_id", a.OpportunityID),
		slog.Bool("with_cv", a.CVURL != ""))
	respond.Created(w, "Application submitted successfully", toDTO(a))
}

func text(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
