package pathutil

import (
	"regexp"
	"strings"
)

// route rewrites every path matching re to template, which may refer to
// capture groups.
type route struct {
	re       *regexp.Regexp
	template string
}

// A UUID, a legacy 24-hex object id, or digits.
const idSegment = `(?:[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}|[0-9a-fA-F]{24}|\d+)`

func mustRoute(expr, template string) route {
	return route{re: regexp.MustCompile(`^` + expr + `$`), template: template}
}

// Most specific first. The last entry covers every content type.
var routes = []route{
	mustRoute(`/api/donations/verify/[^/]+`, "/api/donations/verify/:reference"),
	mustRoute(`/api/admin/blog/`+idSegment+`/comments/`+idSegment+`/approve`, "/api/admin/blog/:id/comments/:commentId/approve"),
	mustRoute(`/api/admin/blog/`+idSegment+`/comments/`+idSegment, "/api/admin/blog/:id/comments/:commentId"),
	mustRoute(`/api/(admin/)?blog/`+idSegment+`/comments`, "/api/${1}blog/:id/comments"),
	mustRoute(`/api/admin/applications/`+idSegment+`/status`, "/api/admin/applications/:id/status"),
	mustRoute(`/api/opportunities/`+idSegment+`/apply`, "/api/opportunities/:id/apply"),
	mustRoute(`/api/(admin/)?([a-z][a-z-]*)/`+idSegment, "/api/${1}${2}/:id"),
}

// NormalizePath collapses ids and payment references into placeholders so
// metric and span labels stay bounded. The query string and one trailing
// slash are dropped; unknown paths pass through.
//
//	NormalizePath("/api/admin/partners/3f2a...")   // "/api/admin/partners/:id"
//	NormalizePath("/api/blog/3f2a.../?page=1")     // "/api/blog/:id"
//	NormalizePath("/api/admin/donations/export")   // unchanged
func NormalizePath(path string) string {
	path, _, _ = strings.Cut(path, "?")
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	for _, rt := range routes {
		if rt.re.MatchString(path) {
			return rt.re.ReplaceAllString(path, rt.template)
		}
	}
	return path
}
