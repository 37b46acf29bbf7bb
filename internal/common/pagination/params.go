package pagination

import (
	"fmt"
	"net/http"
	"strconv"

	"tlwd-backend/internal/domain/entity"
)

// Params selects one page.
type Params struct {
	Page  int
	Limit int
}

// Offset is the number of rows before the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParseQueryParams reads ?page= and ?limit=. Missing values take the
// defaults; malformed or out of range values are a *entity.ValidationError.
func ParseQueryParams(r *http.Request, cfg Config) (Params, error) {
	q := r.URL.Query()
	p := Params{Page: cfg.DefaultPage, Limit: cfg.DefaultLimit}

	if v, ok, err := queryInt(q.Get("page")); ok {
		if err != nil {
			return p, errPage
		}
		p.Page = v
	}
	if v, ok, err := queryInt(q.Get("limit")); ok {
		if err != nil {
			return p, limitError(cfg)
		}
		p.Limit = v
	}
	return p, p.Validate(cfg)
}

// Validate checks p against cfg without changing it.
func (p Params) Validate(cfg Config) error {
	if p.Page < 1 {
		return errPage
	}
	if p.Limit < 1 || p.Limit > cfg.MaxLimit {
		return limitError(cfg)
	}
	return nil
}

// WithDefaults fills zero fields from cfg and caps the limit. Services call
// it so internal callers may pass a zero Params.
func (p Params) WithDefaults(cfg Config) Params {
	if p.Page <= 0 {
		p.Page = cfg.DefaultPage
	}
	if p.Limit <= 0 {
		p.Limit = cfg.DefaultLimit
	}
	p.Limit = min(p.Limit, cfg.MaxLimit)
	return p
}

var errPage = &entity.ValidationError{Field: "page", Message: "page must be a positive integer"}

func limitError(cfg Config) error {
	return &entity.ValidationError{Field: "limit", Message: fmt.Sprintf("limit must be between 1 and %d", cfg.MaxLimit)}
}

func queryInt(s string) (int, bool, error) {
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(s)
	return v, true, err
}
