package content_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tlwd-backend/internal/common/pagination"
	"tlwd-backend/internal/config"
	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/repository"
	contentUC "tlwd-backend/internal/usecase/content"
	"tlwd-backend/internal/usecase/notify"
)

/*────────────────────  インメモリスタブ  ────────────────────*/

type stubRepo struct {
	data      map[string]*entity.ContentRecord
	nextID    int
	createErr error
	updateErr error
	lastQuery repository.ContentQuery
}

func newStubRepo(recs ...*entity.ContentRecord) *stubRepo {
	s := &stubRepo{data: map[string]*entity.ContentRecord{}}
	for _, r := range recs {
		s.data[r.ID] = r
	}
	return s
}

func (s *stubRepo) Get(_ context.Context, ct, id string) (*entity.ContentRecord, error) {
	r, ok := s.data[id]
	if !ok || r.Type != ct {
		return nil, nil
	}
	return r.Clone(), nil
}

func (s *stubRepo) match(q repository.ContentQuery) []*entity.ContentRecord {
	var out []*entity.ContentRecord
	for _, r := range s.data {
		if r.Type != q.Type {
			continue
		}
		if len(q.Statuses) > 0 && !contains(q.Statuses, r.Status) {
			continue
		}
		ok := true
		for k, v := range q.Equals {
			if fmt.Sprint(r.Fields[k]) != v {
				ok = false
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *stubRepo) List(_ context.Context, q repository.ContentQuery) ([]*entity.ContentRecord, error) {
	s.lastQuery = q
	out := s.match(q)
	if q.Limit > 0 {
		if q.Offset > len(out) {
			q.Offset = len(out)
		}
		end := q.Offset + q.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[q.Offset:end]
	}
	return out, nil
}

func (s *stubRepo) Count(_ context.Context, q repository.ContentQuery) (int64, error) {
	return int64(len(s.match(q))), nil
}

func (s *stubRepo) Create(_ context.Context, rec *entity.ContentRecord) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	rec.ID = fmt.Sprintf("r%d", s.nextID)
	s.data[rec.ID] = rec.Clone()
	return nil
}

func (s *stubRepo) Update(_ context.Context, rec *entity.ContentRecord) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.data[rec.ID] = rec.Clone()
	return nil
}

func (s *stubRepo) Delete(_ context.Context, _ string, id string) error {
	delete(s.data, id)
	return nil
}

func (s *stubRepo) IncrementField(_ context.Context, _ string, id, field string, delta int64) (int64, error) {
	r := s.data[id]
	n, _ := r.Fields[field].(float64)
	n += float64(delta)
	r.Fields[field] = n
	return int64(n), nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// fakeAssets records calls in order so delete-before-upload can be asserted.
type fakeAssets struct {
	mu        sync.Mutex
	calls     []string
	deleteErr error
	uploadErr error
	n         int
}

func (f *fakeAssets) Upload(_ context.Context, a entity.Asset, folder string) (*entity.StoredAsset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "upload:"+folder+"/"+a.Filename)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.n++
	return &entity.StoredAsset{
		URL:    fmt.Sprintf("https://cdn.example.com/%s/%d", folder, f.n),
		Handle: fmt.Sprintf("%s/%d", folder, f.n),
		Bytes:  a.Size,
		Kind:   entity.AssetKind(a.ContentType),
	}, nil
}

func (f *fakeAssets) Delete(_ context.Context, handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete:"+handle)
	return f.deleteErr
}

type fakePublisher struct {
	events []notify.Event
}

func (p *fakePublisher) Publish(_ context.Context, ev notify.Event) {
	p.events = append(p.events, ev)
}

func (p *fakePublisher) kinds() []string {
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Kind)
	}
	return out
}

func loadType(t *testing.T, name string) *config.ContentType {
	t.Helper()
	reg, err := config.LoadContentTypes("")
	require.NoError(t, err)
	ct, ok := reg.Lookup(name)
	require.True(t, ok, name)
	return ct
}

func newService(t *testing.T, name string, repo *stubRepo) (*contentUC.Service, *fakeAssets, *fakePublisher) {
	assets := &fakeAssets{}
	pub := &fakePublisher{}
	return &contentUC.Service{Type: loadType(t, name), Repo: repo, Assets: assets, Events: pub}, assets, pub
}

func jpeg(name string) *entity.Asset {
	return &entity.Asset{Filename: name, ContentType: "image/jpeg", Size: 3, Data: []byte("abc")}
}

/*────────────────────  Create  ────────────────────*/

func TestCreate_WithoutAsset(t *testing.T) {
	svc, assets, pub := newService(t, "team", newStubRepo())

	rec, err := svc.Create(context.Background(), contentUC.Input{Fields: map[string]any{
		"name":   "Ada",
		"role":   "Director",
		"status": "active",
		"bogus":  "dropped",
	}})
	require.NoError(t, err)

	assert.Equal(t, "Active", rec.Status, "status is stored in canonical spelling")
	assert.Equal(t, "Team Member", rec.Fields["type"], "default applied")
	assert.NotContains(t, rec.Fields, "bogus")
	assert.NotContains(t, rec.Fields, "image")
	assert.Empty(t, assets.calls)
	assert.Equal(t, []string{notify.EventCreated, notify.EventPublished}, pub.kinds())
}

func TestCreate_WithAsset(t *testing.T) {
	svc, assets, _ := newService(t, "team", newStubRepo())

	rec, err := svc.Create(context.Background(), contentUC.Input{
		Fields: map[string]any{"name": "Ada", "role": "Director", "imagePublicId": "spoofed"},
		Asset:  jpeg("ada.jpg"),
	})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/team/1", rec.Fields["image"])
	assert.Equal(t, "team/1", rec.Fields["imagePublicId"])
	assert.Equal(t, []string{"upload:team/ada.jpg"}, assets.calls)
}

func TestCreate_PartnerUsesLogoField(t *testing.T) {
	svc, _, _ := newService(t, "partners", newStubRepo())

	rec, err := svc.Create(context.Background(), contentUC.Input{
		Fields: map[string]any{"name": "Acme", "homepage": "true"},
		Asset:  jpeg("acme.png"),
	})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/partners/1", rec.Fields["logo"])
	assert.Equal(t, "partners/1", rec.Fields["logoPublicId"])
	assert.NotContains(t, rec.Fields, "image")
	assert.Equal(t, true, rec.Fields["homepage"])
	assert.Equal(t, "Bronze", rec.Fields["tier"])
}

func TestCreate_AssetMetadata(t *testing.T) {
	svc, _, _ := newService(t, "media", newStubRepo())

	rec, err := svc.Create(context.Background(), contentUC.Input{
		Fields: map[string]any{"alt": "logo"},
		Asset:  &entity.Asset{Filename: "report.pdf", ContentType: "application/pdf", Size: 2048},
	})
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", rec.Fields["filename"])
	assert.Equal(t, float64(2048), rec.Fields["size"])
	assert.Equal(t, "document", rec.Fields["type"])
	assert.Equal(t, "media/1", rec.Fields["publicId"])
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name      string
		ctype     string
		in        contentUC.Input
		wantField string
	}{
		{
			name:      "missing required",
			ctype:     "team",
			in:        contentUC.Input{Fields: map[string]any{"name": "Ada"}},
			wantField: "role",
		},
		{
			name:      "blank required",
			ctype:     "team",
			in:        contentUC.Input{Fields: map[string]any{"name": "  ", "role": "x"}},
			wantField: "name",
		},
		{
			name:      "unknown status",
			ctype:     "team",
			in:        contentUC.Input{Fields: map[string]any{"name": "Ada", "role": "x", "status": "archived"}},
			wantField: "status",
		},
		{
			name:      "bad number",
			ctype:     "hero-slides",
			in:        contentUC.Input{Fields: map[string]any{"title": "Hi", "order": "first"}, Asset: jpeg("a.jpg")},
			wantField: "order",
		},
		{
			name:      "required asset",
			ctype:     "hero-slides",
			in:        contentUC.Input{Fields: map[string]any{"title": "Hi"}},
			wantField: "image",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, assets, pub := newService(t, tt.ctype, newStubRepo())

			_, err := svc.Create(context.Background(), tt.in)
			require.Error(t, err)
			var ve *entity.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.wantField, ve.Field)
			assert.Empty(t, assets.calls)
			assert.Empty(t, pub.events)
		})
	}
}

func TestCreate_UploadFailurePropagates(t *testing.T) {
	repo := newStubRepo()
	svc, assets, _ := newService(t, "team", repo)
	assets.uploadErr = errors.New("cloudinary down")

	_, err := svc.Create(context.Background(), contentUC.Input{
		Fields: map[string]any{"name": "Ada", "role": "x"},
		Asset:  jpeg("a.jpg"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cloudinary down")
	assert.Empty(t, repo.data)
}

func TestCreate_PersistFailureRemovesUploadedAsset(t *testing.T) {
	repo := newStubRepo()
	repo.createErr = errors.New("db down")
	svc, assets, pub := newService(t, "team", repo)

	_, err := svc.Create(context.Background(), contentUC.Input{
		Fields: map[string]any{"name": "Ada", "role": "x"},
		Asset:  jpeg("a.jpg"),
	})
	require.Error(t, err)
	assert.Equal(t, []string{"upload:team/a.jpg", "delete:team/1"}, assets.calls)
	assert.Empty(t, pub.events)
}

func TestCreate_BlogSlugAndDraft(t *testing.T) {
	repo := newStubRepo(&entity.ContentRecord{
		ID: "old", Type: "blog", Status: "Published",
		Fields: map[string]any{"slug": "clean-water"},
	})
	svc, _, pub := newService(t, "blog", repo)

	rec, err := svc.Create(context.Background(), contentUC.Input{Fields: map[string]any{
		"title": "Clean Water!", "author": "Ada", "category": "News", "content": "<p>x</p>",
	}})
	require.NoError(t, err)

	assert.Equal(t, "clean-water-2", rec.Fields["slug"])
	assert.Equal(t, "Draft", rec.Status)
	assert.Equal(t, float64(0), rec.Fields["views"])
	assert.Equal(t, []string{notify.EventCreated}, pub.kinds(), "drafts are not published")
}

/*────────────────────  Update  ────────────────────*/

func TestUpdate_NotFound(t *testing.T) {
	svc, _, _ := newService(t, "team", newStubRepo())

	_, err := svc.Update(context.Background(), "missing", contentUC.Input{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrNotFound))
	assert.Equal(t, "Team Member not found", err.Error())
}

func TestUpdate_PartialFields(t *testing.T) {
	repo := newStubRepo(&entity.ContentRecord{
		ID: "t1", Type: "team", Status: "Active",
		Fields: map[string]any{"name": "Ada", "role": "Director", "bio": "old"},
	})
	svc, assets, _ := newService(t, "team", repo)

	rec, err := svc.Update(context.Background(), "t1", contentUC.Input{Fields: map[string]any{"bio": "new", "status": "INACTIVE"}})
	require.NoError(t, err)

	want := map[string]any{"name": "Ada", "role": "Director", "bio": "new"}
	if diff := cmp.Diff(want, rec.Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Inactive", rec.Status)
	assert.Empty(t, assets.calls)
}

func TestUpdate_ReplacesAssetDeletingOldFirst(t *testing.T) {
	repo := newStubRepo(&entity.ContentRecord{
		ID: "t1", Type: "team", Status: "Active",
		Fields: map[string]any{"name": "Ada", "role": "x", "image": "https://old", "imagePublicId": "team/old"},
	})
	svc, assets, _ := newService(t, "team", repo)

	rec, err := svc.Update(context.Background(), "t1", contentUC.Input{Asset: jpeg("new.jpg")})
	require.NoError(t, err)

	assert.Equal(t, []string{"delete:team/old", "upload:team/new.jpg"}, assets.calls)
	assert.Equal(t, "team/1", rec.Fields["imagePublicId"])
}

func TestUpdate_OldAssetDeleteFailureIsTolerated(t *testing.T) {
	repo := newStubRepo(&entity.ContentRecord{
		ID: "t1", Type: "team", Status: "Active",
		Fields: map[string]any{"name": "Ada", "role": "x", "imagePublicId": "team/old"},
	})
	svc, assets, _ := newService(t, "team", repo)
	assets.deleteErr = errors.New("gone")

	rec, err := svc.Update(context.Background(), "t1", contentUC.Input{Asset: jpeg("new.jpg")})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/team/1", rec.Fields["image"])
	assert.Equal(t, "https://cdn.example.com/team/1", repo.data["t1"].Fields["image"])
}

func TestUpdate_PersistFailureRemovesNewAsset(t *testing.T) {
	repo := newStubRepo(&entity.ContentRecord{
		ID: "t1", Type: "team", Status: "Active",
		Fields: map[string]any{"name": "Ada", "role": "x", "image": "https://old", "imagePublicId": "team/old"},
	})
	repo.updateErr = errors.New("db down")
	svc, assets, pub := newService(t, "team", repo)

	_, err := svc.Update(context.Background(), "t1", contentUC.Input{Asset: jpeg("n.jpg")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Equal(t, []string{"delete:team/old", "upload:team/n.jpg", "delete:team/1"}, assets.calls)
	assert.Empty(t, pub.events)
}

func TestUpdate_PersistFailureWithoutAsset(t *testing.T) {
	repo := newStubRepo(&entity.ContentRecord{
		ID: "t1", Type: "team", Status: "Active",
		Fields: map[string]any{"name": "Ada", "role": "x"},
	})
	repo.updateErr = errors.New("db down")
	svc, assets, _ := newService(t, "team", repo)

	_, err := svc.Update(context.Background(), "t1", contentUC.Input{Fields: map[string]any{"bio": "b"}})
	require.Error(t, err)
	assert.Empty(t, assets.calls)
}

func TestUpdate_PublishTransition(t *testing.T) {
	repo := newStubRepo(&entity.ContentRecord{
		ID: "b1", Type: "blog", Status: "Draft",
		Fields: map[string]any{"title": "T", "author": "A", "category": "C", "content": "x", "slug": "t"},
	})
	svc, _, pub := newService(t, "blog", repo)

	_, err := svc.Update(context.Background(), "b1", contentUC.Input{Fields: map[string]any{"status": "published"}})
	require.NoError(t, err)
	assert.Equal(t, []string{notify.EventPublished}, pub.kinds())

	_, err = svc.Update(context.Background(), "b1", contentUC.Input{Fields: map[string]any{"title": "T2"}})
	require.NoError(t, err)
	assert.Len(t, pub.events, 1, "already public records are not announced again")
}

func TestUpdate_BlankRequiredRejected(t *testing.T) {
	repo := newStubRepo(&entity.ContentRecord{ID: "t1", Type: "team", Status: "Active", Fields: map[string]any{"name": "Ada", "role": "x"}})
	svc, _, _ := newService(t, "team", repo)

	_, err := svc.Update(context.Background(), "t1", contentUC.Input{Fields: map[string]any{"name": ""}})
	assert.True(t, errors.Is(err, entity.ErrValidationFailed))
}

/*────────────────────  Delete  ────────────────────*/

func TestDelete_RemovesAssetAndRunsHooks(t *testing.T) {
	repo := newStubRepo(&entity.ContentRecord{
		ID: "b1", Type: "blog", Status: "Published",
		Fields: map[string]any{"imagePublicId": "blog/1"},
	})
	svc, assets, _ := newService(t, "blog", repo)
	var hooked []string
	svc.DeleteHooks = []contentUC.DeleteHook{func(_ context.Context, rec *entity.ContentRecord) error {
		hooked = append(hooked, rec.ID)
		return errors.New("ignored")
	}}

	require.NoError(t, svc.Delete(context.Background(), "b1"))
	assert.Equal(t, []string{"delete:blog/1"}, assets.calls)
	assert.Equal(t, []string{"b1"}, hooked)
	assert.Empty(t, repo.data)
}

func TestDelete_NotFound(t *testing.T) {
	svc, _, _ := newService(t, "team", newStubRepo())
	assert.True(t, errors.Is(svc.Delete(context.Background(), "nope"), entity.ErrNotFound))
}

/*────────────────────  Lists  ────────────────────*/

func TestPublicList_StatusToleranceAndHandleHidden(t *testing.T) {
	repo := newStubRepo(
		&entity.ContentRecord{ID: "o1", Type: "opportunities", Status: "Open", Fields: map[string]any{"imagePublicId": "x"}},
		&entity.ContentRecord{ID: "o2", Type: "opportunities", Status: "open", Fields: map[string]any{}},
		&entity.ContentRecord{ID: "o3", Type: "opportunities", Status: "Closed", Fields: map[string]any{}},
	)
	svc, _, _ := newService(t, "opportunities", repo)

	res, err := svc.PublicList(context.Background(), contentUC.ListOptions{})
	require.NoError(t, err)
	require.Len(t, res.Data, 2)
	assert.Nil(t, res.Pagination)
	assert.NotContains(t, res.Data[0].Fields, "imagePublicId")
	assert.Contains(t, repo.data["o1"].Fields, "imagePublicId", "stored record untouched")
}

func TestPublicList_OnlyTheSameStatus(t *testing.T) {
	tests := []struct {
		name    string
		ct      string
		records map[string]string
		want    []string
	}{
		{
			name:    "opportunities show Open only",
			ct:      "opportunities",
			records: map[string]string{"o1": "Open", "o2": "open", "o3": "Active", "o4": "published"},
			want:    []string{"o1", "o2"},
		},
		{
			name:    "blog shows Published only",
			ct:      "blog",
			records: map[string]string{"b1": "Published", "b2": "Active", "b3": "open"},
			want:    []string{"b1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newStubRepo()
			for id, status := range tt.records {
				repo.data[id] = &entity.ContentRecord{ID: id, Type: tt.ct, Status: status, Fields: map[string]any{}}
			}
			svc, _, _ := newService(t, tt.ct, repo)

			res, err := svc.PublicList(context.Background(), contentUC.ListOptions{})
			require.NoError(t, err)
			var got []string
			for _, r := range res.Data {
				got = append(got, r.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestList_StatusFilterKeepsCaseVariantsOnly(t *testing.T) {
	repo := newStubRepo(
		&entity.ContentRecord{ID: "t1", Type: "team", Status: "Active", Fields: map[string]any{}},
		&entity.ContentRecord{ID: "t2", Type: "team", Status: "active", Fields: map[string]any{}},
		&entity.ContentRecord{ID: "t3", Type: "team", Status: "Published", Fields: map[string]any{}},
	)
	svc, _, _ := newService(t, "team", repo)

	res, err := svc.List(context.Background(), contentUC.ListOptions{Status: "active"})
	require.NoError(t, err)
	require.Len(t, res.Data, 2)
	assert.Equal(t, "t1", res.Data[0].ID)
	assert.Equal(t, "t2", res.Data[1].ID)
}

func TestPublicList_TypeFilter(t *testing.T) {
	repo := newStubRepo(
		&entity.ContentRecord{ID: "t1", Type: "team", Status: "Active", Fields: map[string]any{"type": "Board"}},
		&entity.ContentRecord{ID: "t2", Type: "team", Status: "active", Fields: map[string]any{"type": "Team Member"}},
	)
	svc, _, _ := newService(t, "team", repo)

	res, err := svc.PublicList(context.Background(), contentUC.ListOptions{Type: "Board"})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "t1", res.Data[0].ID)
}

func TestList_PaginatedWithSort(t *testing.T) {
	var recs []*entity.ContentRecord
	for i := 1; i <= 5; i++ {
		recs = append(recs, &entity.ContentRecord{ID: fmt.Sprintf("s%d", i), Type: "impact-stories", Status: "published", Fields: map[string]any{}})
	}
	repo := newStubRepo(recs...)
	svc, _, _ := newService(t, "impact-stories", repo)

	res, err := svc.List(context.Background(), contentUC.ListOptions{Params: &pagination.Params{Page: 2, Limit: 2}})
	require.NoError(t, err)

	assert.Len(t, res.Data, 2)
	require.NotNil(t, res.Pagination)
	assert.Equal(t, pagination.Metadata{Page: 2, Limit: 2, Total: 5, TotalPages: 3, HasNextPage: true, HasPrevPage: true}, *res.Pagination)
	assert.Equal(t, "year", repo.lastQuery.SortField)
	assert.True(t, repo.lastQuery.SortDesc)
	assert.Equal(t, 2, repo.lastQuery.Offset)
}

/*────────────────────  Public get  ────────────────────*/

func TestPublicGet_CountsViews(t *testing.T) {
	repo := newStubRepo(&entity.ContentRecord{
		ID: "b1", Type: "blog", Status: "Published",
		Fields: map[string]any{"views": float64(4), "imagePublicId": "h"},
	})
	svc, _, _ := newService(t, "blog", repo)

	rec, err := svc.PublicGet(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, float64(5), rec.Fields["views"])
	assert.NotContains(t, rec.Fields, "imagePublicId")
}

func TestPublicGet_HiddenWhenNotPublic(t *testing.T) {
	repo := newStubRepo(&entity.ContentRecord{ID: "b1", Type: "blog", Status: "Draft", Fields: map[string]any{}})
	svc, _, _ := newService(t, "blog", repo)

	_, err := svc.PublicGet(context.Background(), "b1")
	assert.True(t, errors.Is(err, entity.ErrNotFound))
}
