package donation

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"tlwd-backend/internal/common/csvexport"
	"tlwd-backend/internal/common/pagination"
	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/infra/notifier"
	"tlwd-backend/internal/observability/metrics"
	"tlwd-backend/internal/repository"
)

// ReferencePrefix starts every generated reference.
const ReferencePrefix = "TLWD-"

// InitializeInput is a public donation request. Amount is in Naira.
type InitializeInput struct {
	Amount    float64
	Email     string
	Name      string
	Method    string
	Reference string
}

// InitializeResult is returned to the donor's browser.
type InitializeResult struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code,omitempty"`
}

// VerifyResult reports the reconciled donation.
type VerifyResult struct {
	Reference       string  `json:"reference"`
	Status          string  `json:"status"`
	Amount          float64 `json:"amount"`
	GatewayResponse string  `json:"gatewayResponse,omitempty"`
	// Changed is true when the stored status moved.
	Changed bool `json:"-"`
}

// ListResult is one page of donations, newest first.
type ListResult struct {
	Data       []*entity.Donation
	Pagination pagination.Metadata
}

// SweepResult counts the outcomes of ReconcileStale.
type SweepResult struct {
	Checked    int
	Successful int
	Failed     int
	Pending    int
	Errors     int
}

// Service provides donation use cases.
type Service struct {
	Repo      repository.DonationRepository
	Gateway   Gateway
	Mailer    notifier.Mailer
	Templates notifier.Templates
	Logger    *slog.Logger
	Now       func() time.Time
	// NewReference overrides reference generation.
	NewReference func() string
}

// Initialize records a Pending donation and asks the gateway for a checkout
// URL. The Pending record is kept when the gateway call fails.
func (s *Service) Initialize(ctx context.Context, in InitializeInput) (*InitializeResult, error) {
	email := entity.NormalizeEmail(in.Email)
	if in.Amount == 0 || email == "" {
		return nil, ErrAmountAndEmailRequired
	}
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) || in.Amount < 0 {
		return nil, ErrInvalidAmount
	}
	if err := entity.ValidateEmail("email", email); err != nil {
		return nil, err
	}
	method, err := CanonicalMethod(in.Method)
	if err != nil {
		return nil, err
	}

	ref := strings.TrimSpace(in.Reference)
	if ref == "" {
		ref = s.newReference()
	}

	d := &entity.Donation{
		Reference: ref,
		Amount:    in.Amount,
		Email:     email,
		Name:      strings.TrimSpace(in.Name),
		Method:    method,
		Status:    entity.DonationPending,
		CreatedAt: s.now(),
	}
	if err := s.Repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create donation: %w", err)
	}
	metrics.RecordDonationInitialized()

	auth, err := s.Gateway.Initialize(ctx, InitializeRequest{
		Email:     d.Email,
		Amount:    d.Amount,
		Reference: d.Reference,
		Name:      d.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize payment: %w", err)
	}
	return &InitializeResult{
		Reference:        d.Reference,
		AuthorizationURL: auth.AuthorizationURL,
		AccessCode:       auth.AccessCode,
	}, nil
}

// Verify asks the gateway for the current status of reference and stores
// the reconciled result. A receipt is mailed when the donation becomes
// Successful; mail failure does not affect the result.
func (s *Service) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, &entity.ValidationError{Field: "reference", Message: "Reference is required"}
	}
	d, err := s.Repo.GetByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("get donation: %w", err)
	}
	if d == nil {
		return nil, ErrDonationNotFound
	}

	v, err := s.Gateway.Verify(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}

	previous := d.Status
	d.Status = Reconcile(previous, v.Status)
	d.Method = MethodFromChannel(v.Channel, d.Method)
	if len(v.Raw) > 0 {
		d.GatewayData = v.Raw
	}
	if err := s.Repo.UpdateVerification(ctx, d); err != nil {
		return nil, fmt.Errorf("update donation: %w", err)
	}
	metrics.RecordDonationVerified(d.Status)

	if d.Status == entity.DonationSuccessful && previous != entity.DonationSuccessful {
		s.sendReceipt(ctx, d)
	}
	return &VerifyResult{
		Reference:       d.Reference,
		Status:          d.Status,
		Amount:          d.Amount,
		GatewayResponse: v.GatewayResponse,
		Changed:         d.Status != previous,
	}, nil
}

func (s *Service) sendReceipt(ctx context.Context, d *entity.Donation) {
	if s.Mailer == nil {
		return
	}
	msg, err := s.Templates.DonationReceipt(d.Email, d.Name, d.Amount, d.Reference)
	if err == nil {
		_, err = s.Mailer.Send(ctx, msg)
	}
	if err != nil {
		s.logger().WarnContext(ctx, "donation receipt email failed",
			slog.String("reference", d.Reference),
			slog.Any("error", err))
	}
}

// ReconcileStale verifies Pending donations created between maxAge and
// staleAfter ago, at most limit of them. Each is verified once; errors are
// counted and the sweep moves on.
func (s *Service) ReconcileStale(ctx context.Context, staleAfter, maxAge time.Duration, limit int) (*SweepResult, error) {
	now := s.now()
	pending, err := s.Repo.ListPending(ctx, now.Add(-maxAge), now.Add(-staleAfter), limit)
	if err != nil {
		return nil, fmt.Errorf("list pending donations: %w", err)
	}

	res := &SweepResult{}
	for _, d := range pending {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		res.Checked++
		out, err := s.Verify(ctx, d.Reference)
		if err != nil {
			res.Errors++
			metrics.RecordDonationReconciled("error")
			s.logger().WarnContext(ctx, "stale donation verification failed",
				slog.String("reference", d.Reference),
				slog.Any("error", err))
			continue
		}
		switch out.Status {
		case entity.DonationSuccessful:
			res.Successful++
		case entity.DonationFailed:
			res.Failed++
		default:
			res.Pending++
		}
		metrics.RecordDonationReconciled(strings.ToLower(out.Status))
	}
	return res, nil
}

// List pages through donations matching f, newest first.
func (s *Service) List(ctx context.Context, f repository.DonationFilters, params pagination.Params) (*ListResult, error) {
	total, err := s.Repo.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("count donations: %w", err)
	}
	items, err := s.Repo.List(ctx, f, params.Limit, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	return &ListResult{Data: items, Pagination: pagination.NewMetadata(params, total)}, nil
}

// Export renders every donation matching f as CSV.
func (s *Service) Export(ctx context.Context, f repository.DonationFilters) ([]byte, error) {
	items, err := s.Repo.List(ctx, f, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	rows := make([][]string, 0, len(items))
	for _, d := range items {
		rows = append(rows, []string{
			d.Reference,
			d.Name,
			d.Email,
			strconv.FormatFloat(d.Amount, 'f', -1, 64),
			d.Method,
			d.Status,
			d.CreatedAt.Format(csvexport.DateLayout),
		})
	}
	return csvexport.Encode(
		[]string{"Reference", "Donor Name", "Email", "Amount", "Method", "Status", "Date"},
		rows,
	)
}

// ParseFilters validates admin query filters. Dates accept RFC 3339 or
// YYYY-MM-DD; a date-only "to" covers the whole day.
func ParseFilters(status, method, from, to string) (repository.DonationFilters, error) {
	var f repository.DonationFilters
	if status != "" {
		canonical, err := entity.CanonicalStatus(status, entity.DonationStatuses)
		if err != nil {
			return f, err
		}
		f.Status = &canonical
	}
	if method != "" {
		canonical, err := CanonicalMethod(method)
		if err != nil {
			return f, err
		}
		f.Method = &canonical
	}
	if from != "" {
		t, _, err := parseDate(from)
		if err != nil {
			return f, &entity.ValidationError{Field: "from", Message: "from must be a date (YYYY-MM-DD)"}
		}
		f.From = &t
	}
	if to != "" {
		t, dateOnly, err := parseDate(to)
		if err != nil {
			return f, &entity.ValidationError{Field: "to", Message: "to must be a date (YYYY-MM-DD)"}
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = &t
	}
	return f, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(csvexport.DateLayout, s)
	return t, true, err
}

// newReference returns TLWD-<unix millis><4 random digits>.
func (s *Service) newReference() string {
	if s.NewReference != nil {
		return s.NewReference()
	}
	suffix := int64(0)
	if n, err := rand.Int(rand.Reader, big.NewInt(10000)); err == nil {
		suffix = n.Int64()
	}
	return fmt.Sprintf("%s%d%04d", ReferencePrefix, s.now().UnixMilli(), suffix)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
