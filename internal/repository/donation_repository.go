package repository

import (
	"context"
	"time"

	"tlwd-backend/internal/domain/entity"
)

// DonationFilters narrows admin listings. Nil pointers are ignored.
type DonationFilters struct {
	Status *string
	Method *string
	From   *time.Time
	To     *time.Time
}

type DonationRepository interface {
	Create(ctx context.Context, d *entity.Donation) error
	GetByReference(ctx context.Context, reference string) (*entity.Donation, error)
	// UpdateVerification stores the reconciled status, method and raw gateway payload.
	UpdateVerification(ctx context.Context, d *entity.Donation) error
	List(ctx context.Context, f DonationFilters, limit, offset int) ([]*entity.Donation, error)
	Count(ctx context.Context, f DonationFilters) (int64, error)
	// ListPending returns Pending donations created in [after, before], oldest first.
	ListPending(ctx context.Context, after, before time.Time, limit int) ([]*entity.Donation, error)
	SumSuccessful(ctx context.Context) (float64, error)
}
