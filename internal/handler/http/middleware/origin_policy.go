package middleware

import (
	"net/url"
	"strings"
)

// DefaultAllowedOrigins are the sites that talk to the API in production and
// the usual local dev servers.
var DefaultAllowedOrigins = []string{
	"https://life-we-deserve-site.vercel.app",
	"https://admin-tlwd.vercel.app",
	"http://localhost:5173",
	"http://localhost:5174",
	"http://localhost:3000",
	"http://localhost:8080",
	"https://www.tlwdfoundation.org",
	"https://tlwdfoundation.org",
}

// OriginPolicy admits an origin when it is listed explicitly, is a Vercel
// preview deployment, or points at the local machine.
//
//	p := NewOriginPolicy(DefaultAllowedOrigins, os.Getenv("FRONTEND_URL"), os.Getenv("ADMIN_URL"))
//	p.IsAllowed("https://tlwd-pr-42.vercel.app") // true
//	p.IsAllowed("http://127.0.0.1:5500")        // true
//	p.IsAllowed("https://evil.example")         // false
type OriginPolicy struct {
	allowed []string
}

// NewOriginPolicy builds a policy from the configured list plus any extra
// origins (FRONTEND_URL, ADMIN_URL). Blank entries are ignored.
func NewOriginPolicy(origins []string, extra ...string) *OriginPolicy {
	p := &OriginPolicy{}
	seen := make(map[string]bool)
	for _, origin := range append(append([]string(nil), origins...), extra...) {
		origin = normalizeOrigin(origin)
		if origin == "" || seen[origin] {
			continue
		}
		seen[origin] = true
		p.allowed = append(p.allowed, origin)
	}
	return p
}

func (p *OriginPolicy) IsAllowed(origin string) bool {
	origin = normalizeOrigin(origin)
	if origin == "" {
		return false
	}
	for _, allowed := range p.allowed {
		if origin == allowed {
			return true
		}
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Hostname()
	switch {
	case strings.HasSuffix(host, ".vercel.app"):
		return true
	case host == "localhost", host == "127.0.0.1", host == "::1":
		return true
	}
	return false
}

// GetAllowedOrigins returns a copy of the explicit list in normalized form.
func (p *OriginPolicy) GetAllowedOrigins() []string {
	return append([]string(nil), p.allowed...)
}

// normalizeOrigin lowercases and drops surrounding blanks and a trailing slash.
func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(origin)), "/")
}
