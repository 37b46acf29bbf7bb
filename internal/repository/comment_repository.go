package repository

import (
	"context"

	"tlwd-backend/internal/domain/entity"
)

type CommentRepository interface {
	Create(ctx context.Context, c *entity.Comment) error
	Get(ctx context.Context, id string) (*entity.Comment, error)
	// ListByPost orders newest first. An empty status lists every comment.
	ListByPost(ctx context.Context, postID, status string) ([]*entity.Comment, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	DeleteByPost(ctx context.Context, postID string) (int64, error)
}
