package application_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tlwd-backend/internal/domain/entity"
	apphttp "tlwd-backend/internal/handler/http/application"
	"tlwd-backend/internal/handler/http/upload"
	"tlwd-backend/internal/infra/notifier"
	"tlwd-backend/internal/repository"
	appUC "tlwd-backend/internal/usecase/application"
)

/*────────────────────  インメモリスタブ  ────────────────────*/

type memApplications struct {
	mu   sync.Mutex
	byID map[string]*entity.Application
}

func (m *memApplications) Create(_ context.Context, a *entity.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memApplications) Get(_ context.Context, id string) (*entity.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.byID[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (m *memApplications) List(_ context.Context, status string) ([]*entity.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Application
	for _, a := range m.byID {
		if status == "" || a.Status == status {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *memApplications) UpdateStatus(_ context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id].Status = status
	return nil
}

func (m *memApplications) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

func (m *memApplications) Count(_ context.Context, status string) (int64, error) {
	items, _ := m.List(context.Background(), status)
	return int64(len(items)), nil
}

// opportunities は Get だけを使う
type opportunities struct {
	repository.ContentRepository
	recs map[string]*entity.ContentRecord
}

func (o opportunities) Get(_ context.Context, _, id string) (*entity.ContentRecord, error) {
	return o.recs[id], nil
}

type stubAssets struct {
	uploaded []string
	deleted  []string
}

func (s *stubAssets) Upload(_ context.Context, a entity.Asset, folder string) (*entity.StoredAsset, error) {
	s.uploaded = append(s.uploaded, folder+"/"+a.Filename)
	return &entity.StoredAsset{URL: "https://res.cloudinary.com/demo/" + a.Filename, Handle: folder + "/cv-1"}, nil
}

func (s *stubAssets) Delete(_ context.Context, handle string) error {
	s.deleted = append(s.deleted, handle)
	return nil
}

type stubMailer struct{ sent []notifier.Message }

func (s *stubMailer) Send(_ context.Context, msg notifier.Message) (*notifier.Delivery, error) {
	s.sent = append(s.sent, msg)
	return &notifier.Delivery{ID: "msg"}, nil
}

/*────────────────────  ヘルパ  ────────────────────*/

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fixture struct {
	mux    *http.ServeMux
	repo   *memApplications
	assets *stubAssets
	mailer *stubMailer
	openID string
	shutID string
}

func passthrough(h http.Handler) http.Handler { return h }

func newFixture(t *testing.T, apps ...*entity.Application) *fixture {
	t.Helper()
	f := &fixture{
		repo:   &memApplications{byID: map[string]*entity.Application{}},
		assets: &stubAssets{},
		mailer: &stubMailer{},
		openID: uuid.NewString(),
		shutID: uuid.NewString(),
	}
	for _, a := range apps {
		f.repo.byID[a.ID] = a
	}
	opps := opportunities{recs: map[string]*entity.ContentRecord{
		f.openID: {ID: f.openID, Type: appUC.OpportunityType, Status: "Open",
			Fields: map[string]any{"title": "Program Officer", "type": "Job"}},
		f.shutID: {ID: f.shutID, Type: appUC.OpportunityType, Status: "Closed",
			Fields: map[string]any{"title": "Intern", "type": "Internship"}},
	}}
	svc := &appUC.Service{
		Repo:          f.repo,
		Opportunities: opps,
		Assets:        f.assets,
		Mailer:        f.mailer,
		Templates:     notifier.Templates{FrontendURL: "https://tlwdfoundation.org"},
	}
	f.mux = http.NewServeMux()
	apphttp.Register(f.mux, svc, upload.Parser{}, passthrough, passthrough, nil)
	return f
}

func (f *fixture) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rr := httptest.NewRecorder()
	f.mux.ServeHTTP(rr, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return rr, env
}

func jsonReq(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func pending(email string) *entity.Application {
	return &entity.Application{
		ID: uuid.NewString(), OpportunityID: uuid.NewString(), OpportunityTitle: "Program Officer",
		Name: "Applicant", Email: email, Status: entity.ApplicationPending, CVHandle: "applications/" + email,
	}
}

/*────────────────────  テストケース  ────────────────────*/

func TestApply_JSON(t *testing.T) {
	f := newFixture(t)

	rr, env := f.do(t, jsonReq(http.MethodPost, "/api/opportunities/"+f.openID+"/apply",
		`{"name":"Ada","email":"ADA@x.org","phone":"0800","coverLetter":"Hello"}`))

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Application submitted successfully", env.Message)
	var dto apphttp.DTO
	require.NoError(t, json.Unmarshal(env.Data, &dto))
	assert.Equal(t, "ada@x.org", dto.Email)
	assert.Equal(t, entity.ApplicationPending, dto.Status)
	assert.Equal(t, apphttp.OpportunityRef{ID: f.openID, Title: "Program Officer", Type: "Job"}, dto.Opportunity)
	assert.Empty(t, dto.CV)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, []string{"ada@x.org"}, f.mailer.sent[0].To)
}

func TestApply_MultipartWithCV(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Ada"))
	require.NoError(t, mw.WriteField("email", "ada@x.org"))
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="cv"; filename="ada.pdf"`)
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/opportunities/"+f.openID+"/apply", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr, env := f.do(t, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var dto apphttp.DTO
	require.NoError(t, json.Unmarshal(env.Data, &dto))
	assert.Equal(t, "https://res.cloudinary.com/demo/ada.pdf", dto.CV)
	assert.Equal(t, []string{appUC.CVFolder + "/ada.pdf"}, f.assets.uploaded)
}

func TestApply_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		id       string
		body     string
		wantCode int
		wantMsg  string
	}{
		{"missing name", f.openID, `{"email":"a@x.org"}`, http.StatusBadRequest, "Name and email are required"},
		{"invalid email", f.openID, `{"name":"A","email":"nope"}`, http.StatusBadRequest, "Please provide a valid email"},
		{"closed opportunity", f.shutID, `{"name":"A","email":"a@x.org"}`, http.StatusNotFound, "Opportunity not available"},
		{"unknown opportunity", uuid.NewString(), `{"name":"A","email":"a@x.org"}`, http.StatusNotFound, "Opportunity not available"},
		{"malformed id", "abc", `{"name":"A","email":"a@x.org"}`, http.StatusNotFound, "Opportunity not available"},
		{"invalid body", f.openID, `{"name":`, http.StatusBadRequest, "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, env := f.do(t, jsonReq(http.MethodPost, "/api/opportunities/"+tt.id+"/apply", tt.body))
			assert.Equal(t, tt.wantCode, rr.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantMsg, env.Message)
		})
	}
	assert.Empty(t, f.repo.byID)
}

func TestList(t *testing.T) {
	a, b := pending("a@x.org"), pending("b@x.org")
	b.Status = entity.ApplicationShortlisted
	f := newFixture(t, a, b)

	rr, env := f.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/applications", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var all []apphttp.DTO
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 2)

	rr, env = f.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/applications?status=shortlisted", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var filtered []apphttp.DTO
	require.NoError(t, json.Unmarshal(env.Data, &filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, "b@x.org", filtered[0].Email)

	rr, env = f.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/applications?status=Hired", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid status", env.Message)
}

func TestGet(t *testing.T) {
	a := pending("a@x.org")
	f := newFixture(t, a)

	rr, env := f.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/applications/"+a.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var dto apphttp.DTO
	require.NoError(t, json.Unmarshal(env.Data, &dto))
	assert.Equal(t, a.ID, dto.ID)

	rr, env = f.do(t, httptest.NewRequest(http.MethodGet, "/api/admin/applications/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Application not found", env.Message)
}

func TestUpdateStatus(t *testing.T) {
	a := pending("a@x.org")
	f := newFixture(t, a)
	path := "/api/admin/applications/" + a.ID + "/status"

	tests := []struct {
		name       string
		body       string
		wantCode   int
		wantMsg    string
		wantStatus string
	}{
		{"shortlist", `{"status":"shortlisted"}`, http.StatusOK, "Application status updated successfully", entity.ApplicationShortlisted},
		{"reject", `{"status":"Rejected"}`, http.StatusOK, "Application status updated successfully", entity.ApplicationRejected},
		{"unknown status", `{"status":"Hired"}`, http.StatusBadRequest, "Invalid status", entity.ApplicationRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, env := f.do(t, jsonReq(http.MethodPatch, path, tt.body))
			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Equal(t, tt.wantMsg, env.Message)
			assert.Equal(t, tt.wantStatus, f.repo.byID[a.ID].Status)
		})
	}
}

func TestDelete(t *testing.T) {
	a := pending("a@x.org")
	f := newFixture(t, a)

	rr, env := f.do(t, httptest.NewRequest(http.MethodDelete, "/api/admin/applications/"+a.ID, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Application deleted successfully", env.Message)
	assert.Empty(t, f.repo.byID)
	assert.Equal(t, []string{"applications/a@x.org"}, f.assets.deleted)

	rr, _ = f.do(t, httptest.NewRequest(http.MethodDelete, "/api/admin/applications/"+a.ID, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, env = f.do(t, httptest.NewRequest(http.MethodDelete, "/api/admin/applications/nope", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid id", env.Message)
}
