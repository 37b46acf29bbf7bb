package donation_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tlwd-backend/internal/common/pagination"
	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/infra/notifier"
	"tlwd-backend/internal/repository"
	donUC "tlwd-backend/internal/usecase/donation"
)

/*────────────────────  インメモリスタブ  ────────────────────*/

type stubRepo struct {
	mu      sync.Mutex
	data    map[string]*entity.Donation
	updates int
	pending []*entity.Donation
	after   time.Time
	before  time.Time
}

func newStub(ds ...*entity.Donation) *stubRepo {
	s := &stubRepo{data: map[string]*entity.Donation{}}
	for _, d := range ds {
		s.data[d.Reference] = d
	}
	return s
}

func (s *stubRepo) Create(_ context.Context, d *entity.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.data[d.Reference]; dup {
		return &entity.ConflictError{Message: "Donation reference already exists"}
	}
	d.ID = "d-" + d.Reference
	cp := *d
	s.data[d.Reference] = &cp
	return nil
}

func (s *stubRepo) GetByReference(_ context.Context, ref string) (*entity.Donation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.data[ref]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (s *stubRepo) UpdateVerification(_ context.Context, d *entity.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	cp := *d
	s.data[d.Reference] = &cp
	return nil
}

func (s *stubRepo) List(_ context.Context, f repository.DonationFilters, limit, offset int) ([]*entity.Donation, error) {
	var out []*entity.Donation
	for _, d := range s.data {
		if f.Status == nil || *f.Status == d.Status {
			out = append(out, d)
		}
	}
	if limit > 0 && offset < len(out) {
		end := offset + limit
		if end > len(out) {
			end = len(out)
		}
		out = out[offset:end]
	}
	return out, nil
}

func (s *stubRepo) Count(ctx context.Context, f repository.DonationFilters) (int64, error) {
	out, _ := s.List(ctx, f, 0, 0)
	return int64(len(out)), nil
}

func (s *stubRepo) ListPending(_ context.Context, after, before time.Time, _ int) ([]*entity.Donation, error) {
	s.after, s.before = after, before
	return s.pending, nil
}

func (s *stubRepo) SumSuccessful(context.Context) (float64, error) { return 0, nil }

type fakeGateway struct {
	initErr   error
	verify    map[string]*donUC.Verification
	verifyErr error
	initReqs  []donUC.InitializeRequest
}

func (g *fakeGateway) Initialize(_ context.Context, req donUC.InitializeRequest) (*donUC.Authorization, error) {
	g.initReqs = append(g.initReqs, req)
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &donUC.Authorization{
		AuthorizationURL: "https://checkout.paystack.com/" + req.Reference,
		AccessCode:       "ac",
		Reference:        req.Reference,
	}, nil
}

func (g *fakeGateway) Verify(_ context.Context, ref string) (*donUC.Verification, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.verify[ref], nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []notifier.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg notifier.Message) (*notifier.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	if m.err != nil {
		return nil, m.err
	}
	return &notifier.Delivery{ID: "x"}, nil
}

func verification(status string) *donUC.Verification {
	return &donUC.Verification{
		Status:          status,
		GatewayResponse: "Approved",
		Channel:         "card",
		Raw:             json.RawMessage(`{"status":"` + status + `"}`),
	}
}

var fixedNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func newService(repo *stubRepo, gw *fakeGateway, mailer *fakeMailer) *donUC.Service {
	return &donUC.Service{
		Repo:      repo,
		Gateway:   gw,
		Mailer:    mailer,
		Templates: notifier.Templates{FrontendURL: "https://tlwd.org"},
		Now:       func() time.Time { return fixedNow },
	}
}

/*────────────────────  Initialize  ────────────────────*/

func TestInitialize_Success(t *testing.T) {
	repo := newStub()
	gw := &fakeGateway{}
	svc := newService(repo, gw, &fakeMailer{})

	res, err := svc.Initialize(context.Background(), donUC.InitializeInput{Amount: 5000, Email: "A@B.com", Name: "Ada"})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^TLWD-\d+$`), res.Reference)
	assert.True(t, strings.HasPrefix(res.Reference, "TLWD-1746100800000"))
	assert.Equal(t, "https://checkout.paystack.com/"+res.Reference, res.AuthorizationURL)

	stored := repo.data[res.Reference]
	require.NotNil(t, stored)
	assert.Equal(t, entity.DonationPending, stored.Status)
	assert.Equal(t, "a@b.com", stored.Email)
	assert.Equal(t, entity.MethodCard, stored.Method)
	require.Len(t, gw.initReqs, 1)
	assert.Equal(t, float64(5000), gw.initReqs[0].Amount)
}

func TestInitialize_SuppliedReference(t *testing.T) {
	repo := newStub()
	svc := newService(repo, &fakeGateway{}, &fakeMailer{})

	res, err := svc.Initialize(context.Background(), donUC.InitializeInput{Amount: 100, Email: "a@b.com", Reference: "custom-1", Method: "bank transfer"})
	require.NoError(t, err)
	assert.Equal(t, "custom-1", res.Reference)
	assert.Equal(t, entity.MethodBankTransfer, repo.data["custom-1"].Method)
}

func TestInitialize_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   donUC.InitializeInput
		msg  string
	}{
		{"missing amount", donUC.InitializeInput{Email: "a@b.com"}, "Amount and email are required"},
		{"missing email", donUC.InitializeInput{Amount: 10}, "Amount and email are required"},
		{"negative amount", donUC.InitializeInput{Amount: -5, Email: "a@b.com"}, "Amount must be a positive number"},
		{"NaN amount", donUC.InitializeInput{Amount: math.NaN(), Email: "a@b.com"}, "Amount must be a positive number"},
		{"infinite amount", donUC.InitializeInput{Amount: math.Inf(1), Email: "a@b.com"}, "Amount must be a positive number"},
		{"negative infinity", donUC.InitializeInput{Amount: math.Inf(-1), Email: "a@b.com"}, "Amount must be a positive number"},
		{"bad email", donUC.InitializeInput{Amount: 5, Email: "nope"}, "Please provide a valid email"},
		{"bad method", donUC.InitializeInput{Amount: 5, Email: "a@b.com", Method: "cash"}, "Method must be one of: Card, Bank Transfer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newStub()
			svc := newService(repo, &fakeGateway{}, &fakeMailer{})

			_, err := svc.Initialize(context.Background(), tt.in)
			var ve *entity.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.msg, ve.Message)
			assert.Empty(t, repo.data)
		})
	}
}

func TestInitialize_GatewayFailureKeepsPendingRecord(t *testing.T) {
	repo := newStub()
	gw := &fakeGateway{initErr: errors.New("paystack unavailable")}
	svc := newService(repo, gw, &fakeMailer{})
	svc.NewReference = func() string { return "TLWD-1" }

	_, err := svc.Initialize(context.Background(), donUC.InitializeInput{Amount: 10, Email: "a@b.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paystack unavailable")
	require.Contains(t, repo.data, "TLWD-1")
	assert.Equal(t, entity.DonationPending, repo.data["TLWD-1"].Status)
}

/*────────────────────  Verify  ────────────────────*/

func pendingDonation(ref string) *entity.Donation {
	return &entity.Donation{Reference: ref, Amount: 5000, Email: "a@b.com", Name: "Ada", Method: entity.MethodBankTransfer, Status: entity.DonationPending}
}

func TestVerify_Success_SendsReceiptOnce(t *testing.T) {
	repo := newStub(pendingDonation("R1"))
	gw := &fakeGateway{verify: map[string]*donUC.Verification{"R1": verification("success")}}
	mailer := &fakeMailer{}
	svc := newService(repo, gw, mailer)

	res, err := svc.Verify(context.Background(), "R1")
	require.NoError(t, err)
	assert.Equal(t, entity.DonationSuccessful, res.Status)
	assert.True(t, res.Changed)
	assert.Equal(t, float64(5000), res.Amount)

	stored := repo.data["R1"]
	assert.Equal(t, entity.DonationSuccessful, stored.Status)
	assert.Equal(t, entity.MethodCard, stored.Method, "method refined from channel")
	assert.JSONEq(t, `{"status":"success"}`, string(stored.GatewayData))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"a@b.com"}, mailer.sent[0].To)
	assert.Contains(t, mailer.sent[0].HTML, "R1")

	// 再検証しても領収書は再送しない
	res, err = svc.Verify(context.Background(), "R1")
	require.NoError(t, err)
	assert.Equal(t, entity.DonationSuccessful, res.Status)
	assert.False(t, res.Changed)
	assert.Len(t, mailer.sent, 1)
}

func TestVerify_FailedStatuses(t *testing.T) {
	for _, status := range []string{"failed", "abandoned", "reversed"} {
		t.Run(status, func(t *testing.T) {
			repo := newStub(pendingDonation("R1"))
			gw := &fakeGateway{verify: map[string]*donUC.Verification{"R1": verification(status)}}
			mailer := &fakeMailer{}
			svc := newService(repo, gw, mailer)

			res, err := svc.Verify(context.Background(), "R1")
			require.NoError(t, err)
			assert.Equal(t, entity.DonationFailed, res.Status)
			assert.Empty(t, mailer.sent)
		})
	}
}

func TestVerify_OngoingStaysPendingButPersists(t *testing.T) {
	repo := newStub(pendingDonation("R1"))
	gw := &fakeGateway{verify: map[string]*donUC.Verification{"R1": verification("ongoing")}}
	svc := newService(repo, gw, &fakeMailer{})

	res, err := svc.Verify(context.Background(), "R1")
	require.NoError(t, err)
	assert.Equal(t, entity.DonationPending, res.Status)
	assert.Equal(t, 1, repo.updates)
	assert.JSONEq(t, `{"status":"ongoing"}`, string(repo.data["R1"].GatewayData))
}

func TestVerify_TerminalNeverRegresses(t *testing.T) {
	d := pendingDonation("R1")
	d.Status = entity.DonationSuccessful
	repo := newStub(d)
	gw := &fakeGateway{verify: map[string]*donUC.Verification{"R1": verification("ongoing")}}
	svc := newService(repo, gw, &fakeMailer{})

	res, err := svc.Verify(context.Background(), "R1")
	require.NoError(t, err)
	assert.Equal(t, entity.DonationSuccessful, res.Status)
}

func TestVerify_ReceiptFailureDoesNotFailVerify(t *testing.T) {
	repo := newStub(pendingDonation("R1"))
	gw := &fakeGateway{verify: map[string]*donUC.Verification{"R1": verification("success")}}
	svc := newService(repo, gw, &fakeMailer{err: errors.New("mail down")})

	res, err := svc.Verify(context.Background(), "R1")
	require.NoError(t, err)
	assert.Equal(t, entity.DonationSuccessful, res.Status)
}

func TestVerify_NotFound(t *testing.T) {
	svc := newService(newStub(), &fakeGateway{}, &fakeMailer{})

	_, err := svc.Verify(context.Background(), "missing")
	assert.True(t, errors.Is(err, entity.ErrNotFound))
	assert.Equal(t, "Donation not found", err.Error())
}

func TestVerify_GatewayError(t *testing.T) {
	repo := newStub(pendingDonation("R1"))
	svc := newService(repo, &fakeGateway{verifyErr: errors.New("timeout")}, &fakeMailer{})

	_, err := svc.Verify(context.Background(), "R1")
	require.Error(t, err)
	assert.Equal(t, 0, repo.updates)
}

/*────────────────────  Sweep / admin  ────────────────────*/

func TestReconcileStale(t *testing.T) {
	repo := newStub(pendingDonation("A"), pendingDonation("B"), pendingDonation("C"))
	repo.pending = []*entity.Donation{repo.data["A"], repo.data["B"], repo.data["C"], pendingDonation("GONE")}
	gw := &fakeGateway{verify: map[string]*donUC.Verification{
		"A": verification("success"),
		"B": verification("abandoned"),
		"C": verification("ongoing"),
	}}
	svc := newService(repo, gw, &fakeMailer{})

	res, err := svc.ReconcileStale(context.Background(), 30*time.Minute, 72*time.Hour, 50)
	require.NoError(t, err)

	assert.Equal(t, donUC.SweepResult{Checked: 4, Successful: 1, Failed: 1, Pending: 1, Errors: 1}, *res)
	assert.Equal(t, fixedNow.Add(-72*time.Hour), repo.after)
	assert.Equal(t, fixedNow.Add(-30*time.Minute), repo.before)
}

func TestList_Paginated(t *testing.T) {
	repo := newStub(pendingDonation("A"), pendingDonation("B"), pendingDonation("C"))
	svc := newService(repo, &fakeGateway{}, &fakeMailer{})

	res, err := svc.List(context.Background(), repository.DonationFilters{}, pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, res.Data, 2)
	assert.Equal(t, int64(3), res.Pagination.Total)
	assert.True(t, res.Pagination.HasNextPage)
}

func TestExport(t *testing.T) {
	d := pendingDonation("R1")
	d.CreatedAt = fixedNow
	svc := newService(newStub(d), &fakeGateway{}, &fakeMailer{})

	out, err := svc.Export(context.Background(), repository.DonationFilters{})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Reference,Donor Name,Email,Amount,Method,Status,Date", strings.TrimSpace(lines[0]))
	assert.Equal(t, "R1,Ada,a@b.com,5000,Bank Transfer,Pending,2025-05-01", strings.TrimSpace(lines[1]))
}

func TestParseFilters(t *testing.T) {
	f, err := donUC.ParseFilters("successful", "card", "2025-01-01", "2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, entity.DonationSuccessful, *f.Status)
	assert.Equal(t, entity.MethodCard, *f.Method)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *f.From)
	assert.Equal(t, time.Date(2025, 1, 31, 23, 59, 59, 999999999, time.UTC), *f.To)

	_, err = donUC.ParseFilters("", "", "yesterday", "")
	assert.ErrorIs(t, err, entity.ErrValidationFailed)

	f, err = donUC.ParseFilters("", "", "", "")
	require.NoError(t, err)
	assert.Nil(t, f.Status)
	assert.Nil(t, f.From)
}
