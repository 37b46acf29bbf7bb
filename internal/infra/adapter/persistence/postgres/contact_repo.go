package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/repository"
)

type ContactRepo struct{ db *sql.DB }

func NewContactRepo(db *sql.DB) repository.ContactRepository {
	return &ContactRepo{db: db}
}

func (repo *ContactRepo) Create(ctx context.Context, m *entity.ContactMessage) error {
	const query = `
INSERT INTO contacts (id, name, email, subject, message, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = time.Now().UTC()
	if _, err := repo.db.ExecContext(ctx, query, m.ID, m.Name, m.Email, m.Subject, m.Message, m.CreatedAt); err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}
