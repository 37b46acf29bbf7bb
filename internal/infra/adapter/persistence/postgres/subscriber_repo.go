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

type SubscriberRepo struct{ db *sql.DB }

func NewSubscriberRepo(db *sql.DB) repository.SubscriberRepository {
	return &SubscriberRepo{db: db}
}

const subscriberColumns = `id, email, status, source, subscribed_at, unsubscribed_at, created_at, updated_at`

func scanSubscriber(row rowScanner) (*entity.Subscriber, error) {
	var s entity.Subscriber
	var unsub sql.NullTime
	if err := row.Scan(&s.ID, &s.Email, &s.Status, &s.Source, &s.SubscribedAt, &unsub,
		&s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if unsub.Valid {
		t := unsub.Time
		s.UnsubscribedAt = &t
	}
	return &s, nil
}

func (repo *SubscriberRepo) getBy(ctx context.Context, op, column string, v any) (*entity.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + `
FROM subscribers
WHERE ` + column + ` = $1
LIMIT 1`
	s, err := scanSubscriber(repo.db.QueryRowContext(ctx, query, v))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func (repo *SubscriberRepo) Get(ctx context.Context, id string) (*entity.Subscriber, error) {
	return repo.getBy(ctx, "Get", "id", id)
}

func (repo *SubscriberRepo) GetByEmail(ctx context.Context, email string) (*entity.Subscriber, error) {
	return repo.getBy(ctx, "GetByEmail", "email", email)
}

func (repo *SubscriberRepo) Create(ctx context.Context, s *entity.Subscriber) error {
	const query = `
INSERT INTO subscribers (id, email, status, source, subscribed_at, unsubscribed_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	if s.SubscribedAt.IsZero() {
		s.SubscribedAt = now
	}
	if _, err := repo.db.ExecContext(ctx, query,
		s.ID, s.Email, s.Status, s.Source, s.SubscribedAt, s.UnsubscribedAt, s.CreatedAt, s.UpdatedAt,
	); err != nil {
		return fmt.Errorf("Create: %w", conflictOr(err, "Email already subscribed"))
	}
	return nil
}

func (repo *SubscriberRepo) Update(ctx context.Context, s *entity.Subscriber) error {
	const query = `
UPDATE subscribers
SET status = $1, source = $2, subscribed_at = $3, unsubscribed_at = $4, updated_at = $5
WHERE id = $6`
	s.UpdatedAt = time.Now().UTC()
	res, err := repo.db.ExecContext(ctx, query,
		s.Status, s.Source, s.SubscribedAt, s.UnsubscribedAt, s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

func (repo *SubscriberRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM subscribers WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}

func (repo *SubscriberRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.Subscriber, error) {
	var args []interface{}
	query := `SELECT ` + subscriberColumns + `
FROM subscribers`
	if status != "" {
		query += "\nWHERE status = $1"
		args = append(args, status)
	}
	query += "\nORDER BY subscribed_at DESC"
	if limit > 0 {
		query += fmt.Sprintf("\nLIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, limit, offset)
	}

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	subs := make([]*entity.Subscriber, 0, 100)
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (repo *SubscriberRepo) Count(ctx context.Context, status string) (int64, error) {
	query := `SELECT COUNT(*) FROM subscribers`
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
