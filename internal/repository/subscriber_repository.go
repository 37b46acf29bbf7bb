package repository

import (
	"context"

	"tlwd-backend/internal/domain/entity"
)

type SubscriberRepository interface {
	Get(ctx context.Context, id string) (*entity.Subscriber, error)
	GetByEmail(ctx context.Context, email string) (*entity.Subscriber, error)
	Create(ctx context.Context, s *entity.Subscriber) error
	// Update persists status, source and the subscribe/unsubscribe timestamps.
	Update(ctx context.Context, s *entity.Subscriber) error
	Delete(ctx context.Context, id string) error
	// List orders by subscribed_at DESC. An empty status lists everyone.
	List(ctx context.Context, status string, limit, offset int) ([]*entity.Subscriber, error)
	Count(ctx context.Context, status string) (int64, error)
}
