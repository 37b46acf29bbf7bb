package repository

import (
	"context"

	"tlwd-backend/internal/domain/entity"
)

type ContactRepository interface {
	Create(ctx context.Context, m *entity.ContactMessage) error
}
