// Package content implements the schema-driven CRUD use cases shared by every
// content type declared in the content type table.
package content

import (
	"context"

	"tlwd-backend/internal/domain/entity"
)

// NotFound returns the error reported when id does not resolve for a type.
func NotFound(display string) error {
	return &entity.NotFoundError{Resource: display}
}

// AssetStore is the upload collaborator.
type AssetStore interface {
	Upload(ctx context.Context, asset entity.Asset, folder string) (*entity.StoredAsset, error)
	// Delete removes a previously uploaded asset. An empty handle is a no-op.
	Delete(ctx context.Context, handle string) error
}

// DeleteHook runs after a record has been removed, e.g. to cascade to
// comments. Failures are logged by the service.
type DeleteHook func(ctx context.Context, rec *entity.ContentRecord) error
