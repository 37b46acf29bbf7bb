package repository

import (
	"context"

	"tlwd-backend/internal/domain/entity"
)

// ContentQuery selects records of a single content type.
// Zero values mean "no constraint"; Limit 0 returns every match.
type ContentQuery struct {
	Type     string
	Statuses []string
	// Equals matches Fields[key] as text.
	Equals map[string]string
	// Search matches Term case-insensitively against any of Fields.
	SearchFields []string
	SearchTerm   string
	SortField    string
	SortDesc     bool
	Limit        int
	Offset       int
}

type ContentRepository interface {
	Get(ctx context.Context, contentType, id string) (*entity.ContentRecord, error)
	List(ctx context.Context, q ContentQuery) ([]*entity.ContentRecord, error)
	Count(ctx context.Context, q ContentQuery) (int64, error)
	Create(ctx context.Context, rec *entity.ContentRecord) error
	Update(ctx context.Context, rec *entity.ContentRecord) error
	Delete(ctx context.Context, contentType, id string) error
	// IncrementField adds delta to a numeric field and returns the new value.
	IncrementField(ctx context.Context, contentType, id, field string, delta int64) (int64, error)
}
