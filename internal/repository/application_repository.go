package repository

import (
	"context"

	"tlwd-backend/internal/domain/entity"
)

type ApplicationRepository interface {
	Create(ctx context.Context, a *entity.Application) error
	// Get and List fill OpportunityTitle and OpportunityType.
	Get(ctx context.Context, id string) (*entity.Application, error)
	List(ctx context.Context, status string) ([]*entity.Application, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, status string) (int64, error)
}
