// Package requestid tags every request with an id that ends up in the
// response header, the logs and the trace.
package requestid

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

// Header carries the id in both directions.
const Header = "X-Request-ID"

type ctxKey struct{}

// Upstream proxies (Vercel, Render) send their own ids; only log-safe ones are kept.
var saneID = regexp.MustCompile(`^[A-Za-z0-9._\-]{1,128}$`)

// FromContext returns "" outside Middleware.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func Valid(id string) bool { return saneID.MatchString(id) }

// Middleware reuses the caller's id when Valid, otherwise mints a UUID v4.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if !Valid(id) {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}
