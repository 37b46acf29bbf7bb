package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/repository"
)

type ContentRepo struct {
	db *sql.DB
	qb *ContentQueryBuilder
}

func NewContentRepo(db *sql.DB) repository.ContentRepository {
	return &ContentRepo{db: db, qb: NewContentQueryBuilder()}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(row rowScanner) (*entity.ContentRecord, error) {
	var rec entity.ContentRecord
	var data []byte
	if err := row.Scan(&rec.ID, &rec.Type, &rec.Status, &data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Fields = map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &rec.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal data: %w", err)
		}
	}
	return &rec, nil
}

func (repo *ContentRepo) Get(ctx context.Context, contentType, id string) (*entity.ContentRecord, error) {
	const query = `
SELECT id, content_type, status, data, created_at, updated_at
FROM content_records
WHERE content_type = $1 AND id = $2
LIMIT 1`
	rec, err := scanContent(repo.db.QueryRowContext(ctx, query, contentType, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return rec, nil
}

func (repo *ContentRepo) List(ctx context.Context, q repository.ContentQuery) ([]*entity.ContentRecord, error) {
	where, args, err := repo.qb.BuildWhereClause(q)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	orderBy, orderArgs, err := repo.qb.BuildOrderBy(q, len(args)+1)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	args = append(args, orderArgs...)

	query := `
SELECT id, content_type, status, data, created_at, updated_at
FROM content_records
` + where + `
` + orderBy
	if q.Limit > 0 {
		query += fmt.Sprintf("\nLIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	capHint := q.Limit
	if capHint <= 0 {
		capHint = 50
	}
	records := make([]*entity.ContentRecord, 0, capHint)
	for rows.Next() {
		rec, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (repo *ContentRepo) Count(ctx context.Context, q repository.ContentQuery) (int64, error) {
	where, args, err := repo.qb.BuildWhereClause(q)
	if err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	query := "SELECT COUNT(*) FROM content_records " + where

	var n int64
	if err := repo.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}

func (repo *ContentRepo) Create(ctx context.Context, rec *entity.ContentRecord) error {
	const query = `
INSERT INTO content_records (id, content_type, status, data, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = rec.CreatedAt

	data, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("Create: marshal data: %w", err)
	}
	if _, err := repo.db.ExecContext(ctx, query,
		rec.ID, rec.Type, rec.Status, data, rec.CreatedAt, rec.UpdatedAt,
	); err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *ContentRepo) Update(ctx context.Context, rec *entity.ContentRecord) error {
	const query = `
UPDATE content_records
SET status = $1, data = $2, updated_at = $3
WHERE content_type = $4 AND id = $5`
	data, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("Update: marshal data: %w", err)
	}
	rec.UpdatedAt = time.Now().UTC()
	res, err := repo.db.ExecContext(ctx, query, rec.Status, data, rec.UpdatedAt, rec.Type, rec.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

func (repo *ContentRepo) Delete(ctx context.Context, contentType, id string) error {
	const query = `DELETE FROM content_records WHERE content_type = $1 AND id = $2`
	res, err := repo.db.ExecContext(ctx, query, contentType, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}

func (repo *ContentRepo) IncrementField(ctx context.Context, contentType, id, field string, delta int64) (int64, error) {
	const query = `
UPDATE content_records
SET data = jsonb_set(data, ARRAY[$1::text], to_jsonb(COALESCE((data->>($1::text))::bigint, 0) + $2))
WHERE content_type = $3 AND id = $4
RETURNING (data->>($1::text))::bigint`
	if !jsonKeyPattern.MatchString(field) {
		return 0, fmt.Errorf("IncrementField: invalid field %q", field)
	}
	var n int64
	err := repo.db.QueryRowContext(ctx, query, field, delta, contentType, id).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, entity.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("IncrementField: %w", err)
	}
	return n, nil
}
