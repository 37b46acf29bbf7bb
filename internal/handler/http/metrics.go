package http

import (
	"net/http"
	"strconv"
	"time"

	"tlwd-backend/internal/handler/http/pathutil"
	"tlwd-backend/internal/handler/http/responsewriter"
	"tlwd-backend/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsMiddleware records request count, latency and sizes. Paths are
// normalized first so record ids do not become label values.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		rw := responsewriter.Wrap(w)
		start := time.Now()
		next.ServeHTTP(rw, r)

		requestSize := 0
		if r.ContentLength > 0 {
			requestSize = int(r.ContentLength)
		}
		metrics.RecordHTTPRequest(
			r.Method,
			pathutil.NormalizePath(r.URL.Path),
			strconv.Itoa(rw.StatusCode()),
			time.Since(start),
			requestSize,
			rw.BytesWritten(),
		)
	})
}

// MetricsHandler serves the Prometheus exposition format on /metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
