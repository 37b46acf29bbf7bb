package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/repository"
)

type ApplicationRepo struct{ db *sql.DB }

func NewApplicationRepo(db *sql.DB) repository.ApplicationRepository {
	return &ApplicationRepo{db: db}
}

// applications join their opportunity for title/type; a deleted opportunity yields empty strings.
const applicationSelect = `
SELECT a.id, a.opportunity_id, COALESCE(o.data->>'title', ''), COALESCE(o.data->>'type', ''),
       a.name, a.email, a.phone, a.cover_letter, a.cv_url, a.cv_public_id, a.status,
       a.created_at, a.updated_at
FROM applications a
LEFT JOIN content_records o ON o.id = a.opportunity_id AND o.content_type = 'opportunities'`

func scanApplication(row rowScanner) (*entity.Application, error) {
	var a entity.Application
	if err := row.Scan(&a.ID, &a.OpportunityID, &a.OpportunityTitle, &a.OpportunityType,
		&a.Name, &a.Email, &a.Phone, &a.CoverLetter, &a.CVURL, &a.CVHandle, &a.Status,
		&a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (repo *ApplicationRepo) Create(ctx context.Context, a *entity.Application) error {
	const query = `
INSERT INTO applications (id, opportunity_id, name, email, phone, cover_letter, cv_url, cv_public_id, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	if _, err := repo.db.ExecContext(ctx, query,
		a.ID, a.OpportunityID, a.Name, a.Email, a.Phone, a.CoverLetter, a.CVURL, a.CVHandle,
		a.Status, a.CreatedAt, a.UpdatedAt,
	); err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *ApplicationRepo) Get(ctx context.Context, id string) (*entity.Application, error) {
	query := applicationSelect + `
WHERE a.id = $1
LIMIT 1`
	a, err := scanApplication(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return a, nil
}

func (repo *ApplicationRepo) List(ctx context.Context, status string) ([]*entity.Application, error) {
	query := applicationSelect
	var args []interface{}
	if status != "" {
		query += "\nWHERE a.status = $1"
		args = append(args, status)
	}
	query += "\nORDER BY a.created_at DESC"

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	apps := make([]*entity.Application, 0, 50)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (repo *ApplicationRepo) UpdateStatus(ctx context.Context, id, status string) error {
	const query = `UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3`
	res, err := repo.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("UpdateStatus: no rows affected")
	}
	return nil
}

func (repo *ApplicationRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM applications WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}

func (repo *ApplicationRepo) Count(ctx context.Context, status string) (int64, error) {
	query := `SELECT COUNT(*) FROM applications`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	var n int64
	if err := repo.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}
