package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"tlwd-backend/internal/handler/http/middleware"
)

func newCORSHandler(t *testing.T) (http.Handler, *bool) {
	t.Helper()
	called := new(bool)
	policy := middleware.NewOriginPolicy(middleware.DefaultAllowedOrigins, "https://frontend.example/")
	cfg := middleware.DefaultCORSConfig(policy, slog.New(slog.NewTextHandler(io.Discard, nil)))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
	return middleware.CORS(cfg)(next), called
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantOrigin  string
		wantMethods string
		wantNext    bool
	}{
		{
			name:       "no origin passes through",
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "allowed origin echoed",
			method:     http.MethodGet,
			origin:     "https://tlwdfoundation.org",
			wantStatus: http.StatusOK,
			wantOrigin: "https://tlwdfoundation.org",
			wantNext:   true,
		},
		{
			name:       "env origin with trailing slash configured",
			method:     http.MethodPost,
			origin:     "https://frontend.example",
			wantStatus: http.StatusOK,
			wantOrigin: "https://frontend.example",
			wantNext:   true,
		},
		{
			name:        "preflight answered with 204",
			method:      http.MethodOptions,
			origin:      "https://tlwd-pr-7.vercel.app",
			preflight:   true,
			wantStatus:  http.StatusNoContent,
			wantOrigin:  "https://tlwd-pr-7.vercel.app",
			wantMethods: "GET, POST, PUT, DELETE, PATCH, OPTIONS",
		},
		{
			name:       "rejected origin gets no headers",
			method:     http.MethodGet,
			origin:     "https://evil.example",
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, called := newCORSHandler(t)
			req := httptest.NewRequest(tt.method, "/api/blog", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", "POST")
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantMethods, rec.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, tt.wantNext, *called)
			if tt.wantOrigin != "" {
				assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}

func TestCORS_PreflightHeaders(t *testing.T) {
	h, _ := newCORSHandler(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, "Content-Type, Authorization, X-Requested-With, Accept, Origin", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}
