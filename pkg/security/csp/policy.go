// Package csp renders Content-Security-Policy header values.
package csp

import (
	"maps"
	"slices"
	"strings"
)

// order fixes rendering so the header is stable and diffable. Directives
// outside it are never rendered.
var order = []string{
	"default-src",
	"base-uri",
	"font-src",
	"form-action",
	"frame-ancestors",
	"img-src",
	"object-src",
	"script-src",
	"script-src-attr",
	"style-src",
	"connect-src",
	"report-uri",
	"upgrade-insecure-requests",
}

// Policy is an immutable set of directives. Every With* call returns a copy,
// so a Policy may be shared between goroutines.
//
//	p := csp.Policy{}.
//	    With("default-src", "'self'").
//	    With("frame-ancestors", "'self'", "https://tlwdfoundation.org")
//	p.String() // "default-src 'self'; frame-ancestors 'self' https://tlwdfoundation.org"
type Policy struct {
	directives map[string][]string
	reportOnly bool
}

// With replaces the sources of name. No sources removes it. A directive
// that takes no value, such as upgrade-insecure-requests, is set with an
// empty string source.
func (p Policy) With(name string, sources ...string) Policy {
	next := p.clone()
	if len(sources) == 0 {
		delete(next.directives, name)
		return next
	}
	next.directives[name] = slices.Clone(sources)
	return next
}

// ReportOnly switches the header to Content-Security-Policy-Report-Only.
func (p Policy) ReportOnly() Policy {
	next := p.clone()
	next.reportOnly = true
	return next
}

func (p Policy) clone() Policy {
	next := Policy{directives: maps.Clone(p.directives), reportOnly: p.reportOnly}
	if next.directives == nil {
		next.directives = make(map[string][]string)
	}
	return next
}

func (p Policy) String() string {
	var parts []string
	for _, name := range order {
		sources, ok := p.directives[name]
		if !ok {
			continue
		}
		parts = append(parts, strings.TrimSpace(name+" "+strings.Join(sources, " ")))
	}
	return strings.Join(parts, "; ")
}

// Header is the response header the policy belongs in.
func (p Policy) Header() string {
	if p.reportOnly {
		return "Content-Security-Policy-Report-Only"
	}
	return "Content-Security-Policy"
}

// APIPolicy is the self-only baseline sent on every API response.
// frameAncestors let the public site and the admin embed proxied PDFs.
func APIPolicy(frameAncestors ...string) Policy {
	return Policy{}.
		With("default-src", "'self'").
		With("base-uri", "'self'").
		With("font-src", "'self'", "https:", "data:").
		With("form-action", "'self'").
		With("frame-ancestors", append([]string{"'self'"}, frameAncestors...)...).
		With("img-src", "'self'", "data:").
		With("object-src", "'none'").
		With("script-src", "'self'").
		With("script-src-attr", "'none'").
		With("style-src", "'self'", "https:", "'unsafe-inline'").
		With("upgrade-insecure-requests", "")
}
