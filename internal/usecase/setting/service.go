// Package setting stores site-wide key/value options.
package setting

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/repository"
)

// DefaultCategory is recorded for keys written through Update.
const DefaultCategory = "general"

var ErrNoSettings = &entity.ValidationError{Field: "settings", Message: "No settings provided"}

type Service struct {
	Repo repository.SettingRepository
}

// All returns every setting as a flat key/value object.
func (s *Service) All(ctx context.Context) (map[string]any, error) {
	items, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	out := make(map[string]any, len(items))
	for _, it := range items {
		out[it.Key] = it.Value
	}
	return out, nil
}

// Update upserts every key in values and returns the resulting settings.
func (s *Service) Update(ctx context.Context, values map[string]any) (map[string]any, error) {
	if len(values) == 0 {
		return nil, ErrNoSettings
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		if strings.TrimSpace(k) == "" {
			return nil, &entity.ValidationError{Field: "key", Message: "Setting keys must not be empty"}
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := s.Repo.Upsert(ctx, &entity.Setting{Key: k, Value: values[k], Category: DefaultCategory}); err != nil {
			return nil, fmt.Errorf("upsert setting %q: %w", k, err)
		}
	}
	return s.All(ctx)
}
