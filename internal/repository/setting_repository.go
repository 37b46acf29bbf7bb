package repository

import (
	"context"

	"tlwd-backend/internal/domain/entity"
)

type SettingRepository interface {
	List(ctx context.Context) ([]*entity.Setting, error)
	Upsert(ctx context.Context, s *entity.Setting) error
}
