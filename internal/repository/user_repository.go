package repository

import (
	"context"

	"tlwd-backend/internal/domain/entity"
)

type UserRepository interface {
	Get(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
}
