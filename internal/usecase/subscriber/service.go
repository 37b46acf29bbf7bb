package subscriber

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"tlwd-backend/internal/common/csvexport"
	"tlwd-backend/internal/common/pagination"
	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/infra/notifier"
	"tlwd-backend/internal/observability/metrics"
	"tlwd-backend/internal/repository"
)

// DefaultMaxConcurrent bounds broadcast sends when MaxConcurrent is unset.
const DefaultMaxConcurrent = 10

// ImportSource is recorded for imported rows without a source column.
const ImportSource = "Import"

// Service provides subscriber management use cases.
type Service struct {
	Repo      repository.SubscriberRepository
	Mailer    notifier.Mailer
	Templates notifier.Templates
	// MaxConcurrent limits in-flight sends during Broadcast.
	MaxConcurrent int
	Pagination    pagination.Config
	Logger        *slog.Logger
	Now           func() time.Time
}

// ListResult is one page of subscribers.
type ListResult struct {
	Data       []*entity.Subscriber
	Pagination pagination.Metadata
}

// BroadcastInput is a newsletter issue.
type BroadcastInput struct {
	Title   string
	Body    string
	CTAText string
	CTAURL  string
	Image   string
}

// BroadcastResult counts per-recipient outcomes.
type BroadcastResult struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}

// ImportResult counts what happened to each imported row.
type ImportResult struct {
	Imported    int `json:"imported"`
	Reactivated int `json:"reactivated"`
	Skipped     int `json:"skipped"`
	Invalid     int `json:"invalid"`
}

type outcome int

const (
	created outcome = iota
	reactivated
)

// Subscribe signs email up. An Unsubscribed record is reactivated in place;
// an Active one is ErrAlreadySubscribed. A welcome mail is attempted and its
// failure only logged.
func (s *Service) Subscribe(ctx context.Context, email, source string) (*entity.Subscriber, error) {
	sub, _, err := s.subscribe(ctx, email, source)
	if err != nil {
		return nil, err
	}
	s.sendWelcome(ctx, sub.Email)
	return sub, nil
}

func (s *Service) subscribe(ctx context.Context, email, source string) (*entity.Subscriber, outcome, error) {
	email = entity.NormalizeEmail(email)
	if err := entity.ValidateEmail("email", email); err != nil {
		return nil, 0, err
	}
	source = strings.TrimSpace(source)
	if source == "" {
		source = entity.DefaultSubscriberSource
	}

	existing, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, 0, fmt.Errorf("get subscriber: %w", err)
	}
	now := s.now()

	if existing != nil {
		if existing.Status == entity.SubscriberActive {
			return nil, 0, ErrAlreadySubscribed
		}
		existing.Status = entity.SubscriberActive
		existing.Source = source
		existing.SubscribedAt = now
		existing.UnsubscribedAt = nil
		if err := s.Repo.Update(ctx, existing); err != nil {
			return nil, 0, fmt.Errorf("reactivate subscriber: %w", err)
		}
		return existing, reactivated, nil
	}

	sub := &entity.Subscriber{
		Email:        email,
		Status:       entity.SubscriberActive,
		Source:       source,
		SubscribedAt: now,
	}
	if err := s.Repo.Create(ctx, sub); err != nil {
		// 同時登録で一意制約に当たった場合
		if errors.Is(err, entity.ErrConflict) {
			return nil, 0, ErrAlreadySubscribed
		}
		return nil, 0, fmt.Errorf("create subscriber: %w", err)
	}
	return sub, created, nil
}

func (s *Service) sendWelcome(ctx context.Context, email string) {
	if s.Mailer == nil {
		return
	}
	msg, err := s.Templates.Welcome(email)
	if err == nil {
		_, err = s.Mailer.Send(ctx, msg)
	}
	if err != nil {
		s.logger().WarnContext(ctx, "welcome email failed",
			slog.String("email", email),
			slog.Any("error", err))
	}
}

// Unsubscribe marks email Unsubscribed.
func (s *Service) Unsubscribe(ctx context.Context, email string) (*entity.Subscriber, error) {
	email = entity.NormalizeEmail(email)
	if email == "" {
		return nil, &entity.ValidationError{Field: "email", Message: "Email is required"}
	}
	sub, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get subscriber: %w", err)
	}
	if sub == nil {
		return nil, ErrSubscriberNotFound
	}

	now := s.now()
	sub.Status = entity.SubscriberUnsubscribed
	sub.UnsubscribedAt = &now
	if err := s.Repo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("unsubscribe: %w", err)
	}
	return sub, nil
}

// List pages through subscribers, newest first. status may be empty.
func (s *Service) List(ctx context.Context, status string, params pagination.Params) (*ListResult, error) {
	if status != "" {
		canonical, err := entity.CanonicalStatus(status, entity.SubscriberStatuses)
		if err != nil {
			return nil, err
		}
		status = canonical
	}
	params = params.WithDefaults(s.paginationConfig())

	total, err := s.Repo.Count(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("count subscribers: %w", err)
	}
	subs, err := s.Repo.List(ctx, status, params.Limit, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return &ListResult{Data: subs, Pagination: pagination.NewMetadata(params, total)}, nil
}

// ActiveCount returns the number of Active subscribers.
func (s *Service) ActiveCount(ctx context.Context) (int64, error) {
	n, err := s.Repo.Count(ctx, entity.SubscriberActive)
	if err != nil {
		return 0, fmt.Errorf("count active subscribers: %w", err)
	}
	return n, nil
}

// Delete removes a subscriber permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	sub, err := s.Repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get subscriber: %w", err)
	}
	if sub == nil {
		return ErrSubscriberNotFound
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	return nil
}

// ExportActive renders every Active subscriber as CSV.
func (s *Service) ExportActive(ctx context.Context) ([]byte, error) {
	subs, err := s.Repo.List(ctx, entity.SubscriberActive, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	rows := make([][]string, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, []string{sub.Email, sub.Source, sub.SubscribedAt.Format(csvexport.DateLayout)})
	}
	return csvexport.Encode([]string{"Email", "Source", "Subscribed Date"}, rows)
}

// Import subscribes every address in a CSV document. The first column is
// the email and an optional second column the source; a header row is
// skipped. No welcome mail is sent.
func (s *Service) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	rows, err := csvexport.ReadRows(r)
	if err != nil {
		return nil, &entity.ValidationError{Field: "file", Message: "Invalid CSV file"}
	}

	res := &ImportResult{}
	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		source := ImportSource
		if len(row) > 1 && row[1] != "" {
			source = row[1]
		}
		_, out, err := s.subscribe(ctx, row[0], source)
		switch {
		case err == nil && out == reactivated:
			res.Reactivated++
		case err == nil:
			res.Imported++
		case errors.Is(err, ErrAlreadySubscribed):
			res.Skipped++
		case errors.Is(err, entity.ErrValidationFailed):
			res.Invalid++
		default:
			return nil, err
		}
	}
	return res, nil
}

func isHeader(row []string) bool {
	return !strings.Contains(row[0], "@") && strings.Contains(strings.ToLower(row[0]), "email")
}

// Broadcast sends one copy of in to every Active subscriber. Sends run
// concurrently, each failure is isolated, and the call returns after every
// attempt has settled.
func (s *Service) Broadcast(ctx context.Context, in BroadcastInput) (*BroadcastResult, error) {
	if err := entity.RequireFields("Title and body are required", "title", in.Title, "body", in.Body); err != nil {
		return nil, err
	}

	subs, err := s.Repo.List(ctx, entity.SubscriberActive, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list active subscribers: %w", err)
	}
	if len(subs) == 0 {
		return nil, ErrNoActiveSubscribers
	}

	start := time.Now()
	issue := notifier.Broadcast{
		Title:   in.Title,
		Body:    in.Body,
		CTAText: in.CTAText,
		CTAURL:  in.CTAURL,
		Image:   in.Image,
	}

	var ok, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.maxConcurrent())
	for _, sub := range subs {
		email := sub.Email
		g.Go(func() error {
			msg, err := s.Templates.Newsletter(email, issue)
			if err == nil {
				_, err = s.Mailer.Send(ctx, msg)
			}
			if err != nil {
				failed.Add(1)
				metrics.RecordNewsletterSend(false)
				s.logger().WarnContext(ctx, "newsletter send failed",
					slog.String("email", email),
					slog.Any("error", err))
				return nil
			}
			ok.Add(1)
			metrics.RecordNewsletterSend(true)
			return nil
		})
	}
	_ = g.Wait()
	metrics.RecordBroadcastDuration(time.Since(start))

	res := &BroadcastResult{
		Successful: int(ok.Load()),
		Failed:     int(failed.Load()),
		Total:      len(subs),
	}
	s.logger().InfoContext(ctx, "newsletter broadcast finished",
		slog.String("title", in.Title),
		slog.Int("successful", res.Successful),
		slog.Int("failed", res.Failed),
		slog.Int("total", res.Total))
	return res, nil
}

func (s *Service) maxConcurrent() int {
	if s.MaxConcurrent > 0 {
		return s.MaxConcurrent
	}
	return DefaultMaxConcurrent
}

func (s *Service) paginationConfig() pagination.Config {
	if s.Pagination.MaxLimit == 0 {
		return pagination.DefaultConfig()
	}
	return s.Pagination
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
