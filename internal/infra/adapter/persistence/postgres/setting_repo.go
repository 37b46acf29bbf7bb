package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/repository"
)

type SettingRepo struct{ db *sql.DB }

func NewSettingRepo(db *sql.DB) repository.SettingRepository {
	return &SettingRepo{db: db}
}

func (repo *SettingRepo) List(ctx context.Context) ([]*entity.Setting, error) {
	const query = `
SELECT key, value, category, updated_at
FROM settings
ORDER BY key ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	settings := make([]*entity.Setting, 0, 20)
	for rows.Next() {
		var s entity.Setting
		var raw []byte
		if err := rows.Scan(&s.Key, &raw, &s.Category, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		if err := json.Unmarshal(raw, &s.Value); err != nil {
			return nil, fmt.Errorf("List: unmarshal %s: %w", s.Key, err)
		}
		settings = append(settings, &s)
	}
	return settings, rows.Err()
}

func (repo *SettingRepo) Upsert(ctx context.Context, s *entity.Setting) error {
	const query = `
INSERT INTO settings (key, value, category, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	raw, err := json.Marshal(s.Value)
	if err != nil {
		return fmt.Errorf("Upsert: marshal %s: %w", s.Key, err)
	}
	s.UpdatedAt = time.Now().UTC()
	if _, err := repo.db.ExecContext(ctx, query, s.Key, raw, s.Category, s.UpdatedAt); err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}
