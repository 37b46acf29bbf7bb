// Package application handles submissions against open opportunities.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/infra/notifier"
	"tlwd-backend/internal/repository"
	"tlwd-backend/internal/usecase/content"
)

const (
	// OpportunityType is the content type applications are submitted against.
	OpportunityType = "opportunities"
	// CVFolder is the asset folder for uploaded CVs.
	CVFolder = "applications"
)

var (
	ErrOpportunityNotAvailable = &entity.NotFoundError{Resource: "Opportunity", Message: "Opportunity not available"}
	ErrApplicationNotFound     = &entity.NotFoundError{Resource: "Application"}
	ErrInvalidStatus           = &entity.ValidationError{Field: "status", Message: "Invalid status"}
)

// SubmitInput is a public application.
type SubmitInput struct {
	OpportunityID string
	Name          string
	Email         string
	Phone         string
	CoverLetter   string
	CV            *entity.Asset
}

type Service struct {
	Repo          repository.ApplicationRepository
	Opportunities repository.ContentRepository
	Assets        content.AssetStore
	Mailer        notifier.Mailer
	Templates     notifier.Templates
	Logger        *slog.Logger
}

// Submit stores an application for an Open opportunity and mails a
// confirmation to the applicant. The confirmation is best effort.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*entity.Application, error) {
	name := strings.TrimSpace(in.Name)
	email := entity.NormalizeEmail(in.Email)
	if err := entity.RequireFields("Name and email are required", "name", name, "email", email); err != nil {
		return nil, err
	}
	if err := entity.ValidateEmail("email", email); err != nil {
		return nil, err
	}

	opp, err := s.Opportunities.Get(ctx, OpportunityType, in.OpportunityID)
	if err != nil {
		return nil, fmt.Errorf("get opportunity: %w", err)
	}
	if opp == nil || !strings.EqualFold(opp.Status, "open") {
		return nil, ErrOpportunityNotAvailable
	}

	a := &entity.Application{
		OpportunityID:    opp.ID,
		OpportunityTitle: opp.String("title"),
		OpportunityType:  opp.String("type"),
		Name:             name,
		Email:            email,
		Phone:            strings.TrimSpace(in.Phone),
		CoverLetter:      in.CoverLetter,
		Status:           entity.ApplicationPending,
	}
	if in.CV != nil {
		stored, err := s.Assets.Upload(ctx, *in.CV, CVFolder)
		if err != nil {
			return nil, fmt.Errorf("upload cv: %w", err)
		}
		a.CVURL, a.CVHandle = stored.URL, stored.Handle
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		s.removeCV(ctx, a.CVHandle)
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.sendConfirmation(ctx, a)
	return a, nil
}

func (s *Service) sendConfirmation(ctx context.Context, a *entity.Application) {
	if s.Mailer == nil {
		return
	}
	msg, err := s.Templates.ApplicationConfirmation(a.Email, a.Name, a.OpportunityTitle)
	if err == nil {
		_, err = s.Mailer.Send(ctx, msg)
	}
	if err != nil {
		s.logger().WarnContext(ctx, "application confirmation email failed",
			slog.String("application_id", a.ID),
			slog.Any("error", err))
	}
}

// List returns applications, newest first. status may be empty.
func (s *Service) List(ctx context.Context, status string) ([]*entity.Application, error) {
	if status != "" {
		canonical, err := entity.CanonicalStatus(status, entity.ApplicationStatuses)
		if err != nil {
			return nil, ErrInvalidStatus
		}
		status = canonical
	}
	items, err := s.Repo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, id string) (*entity.Application, error) {
	a, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	if a == nil {
		return nil, ErrApplicationNotFound
	}
	return a, nil
}

// UpdateStatus moves an application to Pending, Shortlisted or Rejected.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*entity.Application, error) {
	canonical, err := entity.CanonicalStatus(status, entity.ApplicationStatuses)
	if err != nil {
		return nil, ErrInvalidStatus
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateStatus(ctx, id, canonical); err != nil {
		return nil, fmt.Errorf("update application status: %w", err)
	}
	a.Status = canonical
	return a, nil
}

// Delete removes the application and, best effort, its CV.
func (s *Service) Delete(ctx context.Context, id string) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	s.removeCV(ctx, a.CVHandle)
	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	return nil
}

// Count returns the number of applications in status ("" for all).
func (s *Service) Count(ctx context.Context, status string) (int64, error) {
	return s.Repo.Count(ctx, status)
}

func (s *Service) removeCV(ctx context.Context, handle string) {
	if handle == "" || s.Assets == nil {
		return
	}
	if err := s.Assets.Delete(ctx, handle); err != nil {
		s.logger().WarnContext(ctx, "failed to delete cv",
			slog.String("handle", handle),
			slog.Any("error", err))
	}
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
