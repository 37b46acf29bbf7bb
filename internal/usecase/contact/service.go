// Package contact handles the public contact form.
package contact

import (
	"context"
	"fmt"
	"strings"

	"tlwd-backend/internal/domain/entity"
	"tlwd-backend/internal/infra/notifier"
	"tlwd-backend/internal/repository"
)

type Input struct {
	Name    string
	Email   string
	Subject string
	Message string
}

type Service struct {
	Repo      repository.ContactRepository
	Mailer    notifier.Mailer
	Templates notifier.Templates
}

// Submit stores the message and forwards it to the admin mailbox. Unlike
// receipts, a failed send fails the call.
func (s *Service) Submit(ctx context.Context, in Input) (*entity.ContactMessage, error) {
	m := &entity.ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   entity.NormalizeEmail(in.Email),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
	}
	if err := entity.RequireFields("All fields are required",
		"name", m.Name, "email", m.Email, "subject", m.Subject, "message", m.Message); err != nil {
		return nil, err
	}
	if err := entity.ValidateEmail("email", m.Email); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("store contact message: %w", err)
	}

	msg, err := s.Templates.Contact(m.Name, m.Email, m.Subject, m.Message)
	if err != nil {
		return nil, fmt.Errorf("render contact email: %w", err)
	}
	if _, err := s.Mailer.Send(ctx, msg); err != nil {
		return nil, fmt.Errorf("send contact email: %w", err)
	}
	return m, nil
}
