package middleware

import (
	"net/http"
	"strings"

	"tlwd-backend/pkg/security/csp"
)

// SecurityConfig selects the Content-Security-Policy per path prefix.
type SecurityConfig struct {
	DefaultPolicy csp.Policy
	// PathPolicies override DefaultPolicy; the longest matching prefix wins.
	PathPolicies map[string]csp.Policy
	// HSTS adds Strict-Transport-Security. Leave off for plain-HTTP dev servers.
	HSTS bool
}

type renderedPolicy struct {
	prefix string
	header string
	value  string
}

// SecurityHeaders sets the hardening headers sent on every response. Policies
// are rendered once up front.
//
// X-Frame-Options is not set. Embedding of proxied PDFs is governed by
// frame-ancestors alone.
func SecurityHeaders(cfg SecurityConfig) func(http.Handler) http.Handler {
	fallback := &renderedPolicy{header: cfg.DefaultPolicy.Header(), value: cfg.DefaultPolicy.String()}
	paths := make([]renderedPolicy, 0, len(cfg.PathPolicies))
	for prefix, policy := range cfg.PathPolicies {
		paths = append(paths, renderedPolicy{prefix: prefix, header: policy.Header(), value: policy.String()})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Cross-Origin-Resource-Policy", "cross-origin")
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			h.Set("Origin-Agent-Cluster", "?1")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-DNS-Prefetch-Control", "off")
			h.Set("X-Download-Options", "noopen")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
			h.Set("X-XSS-Protection", "0")
			if cfg.HSTS {
				h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
			}

			if p := selectPolicy(r.URL.Path, paths, fallback); p != nil && p.value != "" {
				h.Set(p.header, p.value)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func selectPolicy(path string, paths []renderedPolicy, fallback *renderedPolicy) *renderedPolicy {
	var matched *renderedPolicy
	for i := range paths {
		if strings.HasPrefix(path, paths[i].prefix) && (matched == nil || len(paths[i].prefix) > len(matched.prefix)) {
			matched = &paths[i]
		}
	}
	if matched != nil {
		return matched
	}
	return fallback
}
