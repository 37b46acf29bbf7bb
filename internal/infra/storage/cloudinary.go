package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.opentelemetry.io/otel/attribute"

	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/observability/metrics"
	"tlwd-backend/internal/observability/tracing"
	"tlwd-backend/internal/resilience/circuitbreaker"
)

// Cloudinary uploads assets through the Cloudinary SDK.
//
// Handles are the Cloudinary public id. Non-image assets carry their
// resource type as a prefix ("raw:TLWDF/resources/x.pdf") so Delete can
// address the right endpoint in one call.
type Cloudinary struct {
	client  *cloudinary.Cloudinary
	root    string
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

func NewCloudinary(cfg CloudinaryConfig, logger *slog.Logger) (*Cloudinary, error) {
	client, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary client: %w", err)
	}
	if cfg.BaseURL != "" {
		client.Upload.Config.API.UploadPrefix = strings.TrimRight(cfg.BaseURL, "/")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cloudinary{
		client:  client,
		root:    cfg.RootFolder,
		breaker: circuitbreaker.New(circuitbreaker.CloudinaryConfig()),
		logger:  logger,
	}, nil
}

// Upload stores asset under folder (prefixed with the root folder).
func (c *Cloudinary) Upload(ctx context.Context, asset entity.Asset, folder string) (_ *entity.StoredAsset, err error) {
	target := folderPath(c.root, folder)
	ctx, end := tracing.StartClient(ctx, "cloudinary upload", attribute.String("cloudinary.folder", target))
	defer func() { end(err) }()

	res, err := circuitbreaker.Call(c.breaker, func() (*uploader.UploadResult, error) {
		res, err := c.client.Upload.Upload(ctx, bytes.NewReader(asset.Data), uploader.UploadParams{Folder: target})
		if err != nil {
			return nil, err
		}
		if res.Error.Message != "" {
			return nil, errors.New(res.Error.Message)
		}
		return res, nil
	})
	if err != nil {
		metrics.RecordAssetOperation("upload", false)
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	metrics.RecordAssetOperation("upload", true)

	kind := res.ResourceType
	if kind == "raw" || kind == "" {
		kind = entity.AssetKind(asset.ContentType)
	}
	size := int64(res.Bytes)
	if size == 0 {
		size = asset.Size
	}
	return &entity.StoredAsset{
		URL:    res.SecureURL,
		Handle: encodeHandle(res.ResourceType, res.PublicID),
		Bytes:  size,
		Kind:   kind,
		Format: res.Format,
	}, nil
}

// Delete destroys the asset identified by handle.
func (c *Cloudinary) Delete(ctx context.Context, handle string) (err error) {
	if handle == "" {
		return nil
	}
	resourceType, publicID := decodeHandle(handle)
	ctx, end := tracing.StartClient(ctx, "cloudinary destroy",
		attribute.String("cloudinary.resource_type", resourceType))
	defer func() { end(err) }()

	res, err := circuitbreaker.Call(c.breaker, func() (*uploader.DestroyResult, error) {
		res, err := c.client.Upload.Destroy(ctx, uploader.DestroyParams{
			PublicID:     publicID,
			ResourceType: resourceType,
		})
		if err != nil {
			return nil, err
		}
		if res.Error.Message != "" {
			return nil, errors.New(res.Error.Message)
		}
		return res, nil
	})
	if err != nil {
		metrics.RecordAssetOperation("delete", false)
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if res.Result != "ok" {
		metrics.RecordAssetOperation("delete", false)
		return fmt.Errorf("cloudinary destroy %s: %s", publicID, res.Result)
	}
	metrics.RecordAssetOperation("delete", true)
	return nil
}

// encodeHandle leaves image ids untouched so handles written before the
// prefix existed keep working.
func encodeHandle(resourceType, publicID string) string {
	if resourceType == "" || resourceType == "image" {
		return publicID
	}
	return resourceType + ":" + publicID
}

func decodeHandle(handle string) (resourceType, publicID string) {
	for _, rt := range []string{"raw", "video"} {
		if rest, ok := strings.CutPrefix(handle, rt+":"); ok {
			return rt, rest
		}
	}
	return "image", handle
}
