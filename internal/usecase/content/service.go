package content

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"tlwd-backend/internal/common/pagination"
	"tlwd-backend/internal/config"
	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/repository"
	"tlwd-backend/internal/usecase/notify"
)

// maxSlugAttempts bounds the numeric suffixes tried before falling back to
// the record id.
const maxSlugAttempts = 20

// Input carries the decoded request fields and an optional uploaded file.
// Fields uses JSON names; a "status" key is handled separately.
type Input struct {
	Fields map[string]any
	Asset  *entity.Asset
}

// ListOptions narrows a listing. Params nil returns every match.
type ListOptions struct {
	Params  *pagination.Params
	Status  string
	Type    string
	Filters map[string]string
	Search  string
}

// ListResult is one page of records. Pagination is nil for unpaginated lists.
type ListResult struct {
	Data       []*entity.ContentRecord
	Pagination *pagination.Metadata
}

// Service provides CRUD for a single content type.
type Service struct {
	Type        *config.ContentType
	Repo        repository.ContentRepository
	Assets      AssetStore
	Events      notify.Publisher
	DeleteHooks []DeleteHook
	Logger      *slog.Logger
}

// List returns admin records in the type's sort order.
func (s *Service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	q := s.query(opts)
	if opts.Status != "" {
		q.Statuses = entity.PublicStatusSet(opts.Status)
	}
	return s.list(ctx, q, opts.Params)
}

// PublicList returns the publicly visible records with the asset handle
// removed. opts.Status overrides the type's public status.
func (s *Service) PublicList(ctx context.Context, opts ListOptions) (*ListResult, error) {
	status := opts.Status
	if status == "" {
		status = s.Type.PublicStatus
	}
	q := s.query(opts)
	q.Statuses = entity.PublicStatusSet(status)

	res, err := s.list(ctx, q, opts.Params)
	if err != nil {
		return nil, err
	}
	for i, rec := range res.Data {
		res.Data[i] = s.publicView(rec)
	}
	return res, nil
}

func (s *Service) query(opts ListOptions) repository.ContentQuery {
	q := repository.ContentQuery{
		Type:      s.Type.Name,
		SortField: s.Type.Sort.Field,
		SortDesc:  s.Type.Sort.Desc,
	}
	if len(opts.Filters) > 0 {
		q.Equals = make(map[string]string, len(opts.Filters)+1)
		for k, v := range opts.Filters {
			if _, declared := s.Type.Fields[k]; declared && v != "" {
				q.Equals[k] = v
			}
		}
	}
	if opts.Type != "" && s.Type.TypeField != "" {
		if q.Equals == nil {
			q.Equals = map[string]string{}
		}
		q.Equals[s.Type.TypeField] = opts.Type
	}
	if term := strings.TrimSpace(opts.Search); term != "" {
		q.SearchTerm = term
		q.SearchFields = s.textFields()
	}
	return q
}

func (s *Service) list(ctx context.Context, q repository.ContentQuery, params *pagination.Params) (*ListResult, error) {
	if params == nil {
		records, err := s.Repo.List(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", s.Type.Name, err)
		}
		return &ListResult{Data: records}, nil
	}

	total, err := s.Repo.Count(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("count %s: %w", s.Type.Name, err)
	}
	q.Limit = params.Limit
	q.Offset = params.Offset()
	records, err := s.Repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.Type.Name, err)
	}
	meta := pagination.NewMetadata(*params, total)
	return &ListResult{Data: records, Pagination: &meta}, nil
}

// Get returns a record for the admin API.
func (s *Service) Get(ctx context.Context, id string) (*entity.ContentRecord, error) {
	rec, err := s.Repo.Get(ctx, s.Type.Name, id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.Type.Name, err)
	}
	if rec == nil {
		return nil, NotFound(s.Type.Display)
	}
	return rec, nil
}

// PublicGet returns a publicly visible record, or NotFound when the record
// is missing or not public. Types with a view counter count the view.
func (s *Service) PublicGet(ctx context.Context, id string) (*entity.ContentRecord, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Type.PublicStatus != "" && !entity.IsPublicStatus(rec.Status, s.Type.PublicStatus) {
		return nil, NotFound(s.Type.Display)
	}

	if field := s.Type.ViewCounter; field != "" {
		n, err := s.Repo.IncrementField(ctx, s.Type.Name, id, field, 1)
		if err != nil {
			s.logger().Warn("failed to increment view counter",
				slog.String("content_type", s.Type.Name),
				slog.String("id", id),
				slog.Any("error", err))
		} else {
			if rec.Fields == nil {
				rec.Fields = map[string]any{}
			}
			rec.Fields[field] = float64(n)
		}
	}
	return s.publicView(rec), nil
}

// Create validates and stores a new record. The asset, when attached, is
// uploaded before the record is persisted and removed again if persisting fails.
func (s *Service) Create(ctx context.Context, in Input) (*entity.ContentRecord, error) {
	fields, status, err := s.prepare(in.Fields)
	if err != nil {
		return nil, err
	}
	for k, v := range fields {
		if v == nil {
			delete(fields, k)
		}
	}
	for k, v := range s.Type.Defaults {
		if _, ok := fields[k]; ok {
			continue
		}
		// YAML decodes numbers as int; store them the way JSON would
		if val, err := Coerce(k, s.Type.Kind(k), v); err == nil && val != nil {
			fields[k] = val
		}
	}
	if status == "" {
		status = s.Type.DefaultStatus
	}
	for _, f := range s.Type.Required {
		if blank(fields[f]) {
			return nil, &entity.ValidationError{Field: f, Message: f + " is required"}
		}
	}
	if s.Type.Asset != nil && s.Type.Asset.Required && in.Asset == nil {
		return nil, &entity.ValidationError{Field: s.Type.AssetField(), Message: "Please upload a file"}
	}

	var stored *entity.StoredAsset
	if in.Asset != nil && s.Type.Asset != nil {
		stored, err = s.Assets.Upload(ctx, *in.Asset, s.Type.Folder)
		if err != nil {
			return nil, fmt.Errorf("upload asset: %w", err)
		}
		s.mergeAsset(fields, in.Asset, stored)
	}

	rec := &entity.ContentRecord{Type: s.Type.Name, Status: status, Fields: fields}
	if err := s.applySlug(ctx, rec, true); err != nil {
		s.discard(ctx, stored)
		return nil, err
	}
	if err := s.Repo.Create(ctx, rec); err != nil {
		s.discard(ctx, stored)
		return nil, fmt.Errorf("create %s: %w", s.Type.Name, err)
	}

	s.publish(ctx, notify.EventCreated, rec)
	if entity.IsPublicStatus(rec.Status, s.Type.PublicStatus) {
		s.publish(ctx, notify.EventPublished, rec)
	}
	return rec, nil
}

// Update applies the fields present in in to the record. A new asset
// replaces the old one; failing to delete the old one is only logged. The
// new upload is removed again if persisting fails.
func (s *Service) Update(ctx context.Context, id string, in Input) (*entity.ContentRecord, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields, status, err := s.prepare(in.Fields)
	if err != nil {
		return nil, err
	}
	for _, f := range s.Type.Required {
		if v, present := fields[f]; present && blank(v) {
			return nil, &entity.ValidationError{Field: f, Message: f + " is required"}
		}
	}

	rec := existing.Clone()
	var stored *entity.StoredAsset
	if in.Asset != nil && s.Type.Asset != nil {
		if old := existing.String(s.Type.HandleField()); old != "" {
			if err := s.Assets.Delete(ctx, old); err != nil {
				s.logger().Warn("failed to delete replaced asset",
					slog.String("content_type", s.Type.Name),
					slog.String("id", id),
					slog.String("handle", old),
					slog.Any("error", err))
			}
		}
		stored, err = s.Assets.Upload(ctx, *in.Asset, s.Type.Folder)
		if err != nil {
			return nil, fmt.Errorf("upload asset: %w", err)
		}
		s.mergeAsset(fields, in.Asset, stored)
	}

	for k, v := range fields {
		if v == nil {
			delete(rec.Fields, k)
			continue
		}
		rec.Fields[k] = v
	}
	if status != "" {
		rec.Status = status
	}
	if err := s.applySlug(ctx, rec, false); err != nil {
		s.discard(ctx, stored)
		return nil, err
	}
	if err := s.Repo.Update(ctx, rec); err != nil {
		s.discard(ctx, stored)
		return nil, fmt.Errorf("update %s: %w", s.Type.Name, err)
	}

	wasPublic := entity.IsPublicStatus(existing.Status, s.Type.PublicStatus)
	if !wasPublic && entity.IsPublicStatus(rec.Status, s.Type.PublicStatus) {
		s.publish(ctx, notify.EventPublished, rec)
	}
	return rec, nil
}

// Delete removes the record, its asset and anything attached through DeleteHooks.
func (s *Service) Delete(ctx context.Context, id string) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if handle := rec.String(s.Type.HandleField()); handle != "" && s.Assets != nil {
		if err := s.Assets.Delete(ctx, handle); err != nil {
			s.logger().Warn("failed to delete asset",
				slog.String("content_type", s.Type.Name),
				slog.String("id", id),
				slog.String("handle", handle),
				slog.Any("error", err))
		}
	}
	if err := s.Repo.Delete(ctx, s.Type.Name, id); err != nil {
		return fmt.Errorf("delete %s: %w", s.Type.Name, err)
	}
	for _, hook := range s.DeleteHooks {
		if err := hook(ctx, rec); err != nil {
			s.logger().Warn("delete hook failed",
				slog.String("content_type", s.Type.Name),
				slog.String("id", id),
				slog.Any("error", err))
		}
	}
	return nil
}

// prepare coerces declared fields and canonicalises status. Undeclared keys,
// including client-supplied asset URL and handle, are dropped.
func (s *Service) prepare(raw map[string]any) (map[string]any, string, error) {
	fields := make(map[string]any, len(raw))
	var status string
	for k, v := range raw {
		if k == "status" {
			str, _ := v.(string)
			if strings.TrimSpace(str) == "" {
				continue
			}
			canonical, err := entity.CanonicalStatus(str, s.Type.Statuses)
			if err != nil {
				return nil, "", err
			}
			status = canonical
			continue
		}
		if k == s.Type.AssetField() || k == s.Type.HandleField() {
			continue
		}
		kind, declared := s.Type.Fields[k]
		if !declared {
			continue
		}
		val, err := Coerce(k, kind, v)
		if err != nil {
			return nil, "", err
		}
		fields[k] = val
	}
	return fields, status, nil
}

func (s *Service) mergeAsset(fields map[string]any, asset *entity.Asset, stored *entity.StoredAsset) {
	fields[s.Type.AssetField()] = stored.URL
	fields[s.Type.HandleField()] = stored.Handle
	for field, src := range s.Type.Asset.Meta {
		switch src {
		case config.MetaFilename:
			fields[field] = asset.Filename
		case config.MetaSize:
			size := stored.Bytes
			if size == 0 {
				size = asset.Size
			}
			fields[field] = float64(size)
		case config.MetaMIME:
			fields[field] = asset.ContentType
		case config.MetaKind:
			kind := stored.Kind
			if kind == "" {
				kind = entity.AssetKind(asset.ContentType)
			}
			fields[field] = kind
		}
	}
}

// applySlug fills the slug field from its source. On create the slug is made
// unique within the type with a numeric suffix; on update only an explicit
// slug is normalised.
func (s *Service) applySlug(ctx context.Context, rec *entity.ContentRecord, create bool) error {
	spec := s.Type.Slug
	if spec == nil {
		return nil
	}
	current := rec.String(spec.Field)
	if !create {
		if current != "" {
			rec.Fields[spec.Field] = entity.Slugify(current)
		}
		return nil
	}

	base := entity.Slugify(current)
	if base == "" {
		base = entity.Slugify(rec.String(spec.From))
	}
	if base == "" {
		return nil
	}
	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		n, err := s.Repo.Count(ctx, repository.ContentQuery{
			Type:   s.Type.Name,
			Equals: map[string]string{spec.Field: candidate},
		})
		if err != nil {
			return fmt.Errorf("check slug: %w", err)
		}
		if n == 0 {
			rec.Fields[spec.Field] = candidate
			return nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
	return &entity.ConflictError{Message: "Could not generate a unique slug for " + base}
}

// publicView hides the asset deletion handle.
func (s *Service) publicView(rec *entity.ContentRecord) *entity.ContentRecord {
	handle := s.Type.HandleField()
	if handle == "" {
		return rec
	}
	if _, ok := rec.Fields[handle]; !ok {
		return rec
	}
	out := rec.Clone()
	delete(out.Fields, handle)
	return out
}

func (s *Service) textFields() []string {
	out := make([]string, 0, len(s.Type.Fields))
	for name, kind := range s.Type.Fields {
		if kind == config.KindString {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Service) discard(ctx context.Context, stored *entity.StoredAsset) {
	if stored == nil || stored.Handle == "" {
		return
	}
	if err := s.Assets.Delete(ctx, stored.Handle); err != nil {
		s.logger().Warn("failed to remove orphaned asset",
			slog.String("content_type", s.Type.Name),
			slog.String("handle", stored.Handle),
			slog.Any("error", err))
	}
}

func (s *Service) publish(ctx context.Context, kind string, rec *entity.ContentRecord) {
	if s.Events == nil {
		return
	}
	s.Events.Publish(ctx, notify.Event{Kind: kind, ContentType: s.Type, Record: rec.Clone()})
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
