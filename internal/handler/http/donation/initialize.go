package donation

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"tlwd-backend/internal/handler/http/bind"
	"tlwd-backend/internal/handler/http/respond"
	"tlwd-backend/internal/observability/logging"
	donationUC "tlwd-backend/internal/usecase/donation"
)

type InitializeHandler struct {
	Svc    *donationUC.Service
	Logger *slog.Logger
}

// ServeHTTP 寄付の開始（Paystack チェックアウト URL を返す）
func (h InitializeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount    json.RawMessage `json:"amount"`
		Email     string          `json:"email"`
		Name      string          `json:"name"`
		Method    string          `json:"method"`
		Reference string          `json:"reference"`
	}
	if err := bind.JSON(r, &req); err != nil {
		respond.Fail(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		respond.Fail(w, err)
		return
	}

	res, err := h.Svc.Initialize(r.Context(), donationUC.InitializeInput{
		Amount:    amount,
		Email:     req.Email,
		Name:      req.Name,
		Method:    req.Method,
		Reference: req.Reference,
	})
	if err != nil {
		respond.Fail(w, err)
		return
	}
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logging.WithRequestID(r.Context(), logger).Info("donation initialized",
		slog.String("reference", res.Reference),
		slog.Float64("amount", amount))
	respond.OK(w, "Payment initialized successfully", res)
}

// parseAmount accepts a JSON number or a numeric string. A missing amount is
// 0 so the use case reports it together with a missing email. NaN and
// infinities are rejected.
func parseAmount(raw json.RawMessage) (float64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" || s == `""` {
		return 0, nil
	}
	var unquoted string
	if err := json.Unmarshal(raw, &unquoted); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, donationUC.ErrInvalidAmount
	}
	return f, nil
}
