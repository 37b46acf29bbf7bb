package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"tlwd-backend/internal/domain/entity"
)

// NoopStore keeps uploads in memory and hands out memory:// URLs.
type NoopStore struct {
	mu     sync.Mutex
	assets map[string]entity.Asset
}

func NewNoopStore() *NoopStore {
	return &NoopStore{assets: make(map[string]entity.Asset)}
}

func (s *NoopStore) Upload(_ context.Context, asset entity.Asset, folder string) (*entity.StoredAsset, error) {
	handle := folderPath(folder, uuid.NewString())
	s.mu.Lock()
	s.assets[handle] = asset
	s.mu.Unlock()
	return &entity.StoredAsset{
		URL:    "memory://" + handle,
		Handle: handle,
		Bytes:  int64(len(asset.Data)),
		Kind:   entity.AssetKind(asset.ContentType),
	}, nil
}

func (s *NoopStore) Delete(_ context.Context, handle string) error {
	s.mu.Lock()
	delete(s.assets, handle)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored assets.
func (s *NoopStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assets)
}
