// Package proxy streams Cloudinary hosted PDFs through the API so the
// frontends can embed raw uploads.
package proxy

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tlwd-backend/internal/handler/http/respond"
	"tlwd-backend/internal/observability/logging"
	"tlwd-backend/internal/resilience/circuitbreaker"
)

const allowedDomain = "cloudinary.com"

// upstreamError carries a non-2xx status from the asset host.
type upstreamError struct{ code int }

func (e *upstreamError) Error() string { return fmt.Sprintf("upstream status %d", e.code) }

// PDFHandler answers GET /api/proxy/pdf?url=.
type PDFHandler struct {
	Client  *http.Client
	Breaker *circuitbreaker.CircuitBreaker
	Logger  *slog.Logger
}

// NewPDFHandler uses a 30s client and the default breaker settings.
func NewPDFHandler(logger *slog.Logger) *PDFHandler {
	cfg := circuitbreaker.DefaultConfig("pdf-proxy")
	cfg.IsSuccessful = func(err error) bool {
		var ue *upstreamError
		return err == nil || (errors.As(err, &ue) && ue.code < http.StatusInternalServerError)
	}
	return &PDFHandler{
		Client:  &http.Client{Timeout: 30 * time.Second},
		Breaker: circuitbreaker.New(cfg),
		Logger:  logger,
	}
}

// Allowed reports whether raw is an http(s) URL on a Cloudinary host.
func Allowed(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == allowedDomain || strings.HasSuffix(host, "."+allowedDomain)
}

func (h *PDFHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("url"))
	if raw == "" {
		respond.Error(w, http.StatusBadRequest, "URL is required")
		return
	}
	if !Allowed(raw) {
		respond.Error(w, http.StatusBadRequest, "Only Cloudinary URLs are allowed")
		return
	}

	resp, err := h.fetch(r, raw)
	if err != nil {
		code := http.StatusInternalServerError
		var ue *upstreamError
		if errors.As(err, &ue) {
			code = ue.code
		}
		h.logger(r).Warn("pdf proxy failed",
			slog.String("url", raw),
			slog.Any("error", err))
		respond.Error(w, code, "Failed to fetch PDF from source")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	w.Header().Set("Content-Type", "application/pdf")
	if resp.ContentLength > 0 {
		w.Header().Set("Content-Length", fmt.Sprint(resp.ContentLength))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger(r).Warn("pdf proxy stream interrupted",
			slog.String("url", raw),
			slog.Any("error", err))
	}
}

// fetch returns a 2xx response whose body the caller must close.
func (h *PDFHandler) fetch(r *http.Request, raw string) (*http.Response, error) {
	do := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, raw, nil)
		if err != nil {
			return nil, err
		}
		resp, err := h.client().Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_ = resp.Body.Close()
			return nil, &upstreamError{code: resp.StatusCode}
		}
		return resp, nil
	}
	if h.Breaker == nil {
		return do()
	}
	return circuitbreaker.Call(h.Breaker, do)
}

func (h *PDFHandler) client() *http.Client {
	if h.Client != nil {
		return h.Client
	}
	return http.DefaultClient
}

func (h *PDFHandler) logger(r *http.Request) *slog.Logger {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return logging.WithRequestID(r.Context(), logger)
}

func Register(mux *http.ServeMux, h *PDFHandler) {
	mux.Handle("GET /api/proxy/pdf", h)
}
