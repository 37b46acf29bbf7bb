// Package donation implements the donation flow: initialising a checkout with
// the payment gateway, reconciling the local record against the gateway's
// verdict, and the admin listing and export.
package donation

import "tlwd-backend/internal/domain/entity"

// Sentinel errors for donation use case operations.
var (
	// ErrDonationNotFound is returned when a reference does not resolve.
	ErrDonationNotFound = &entity.NotFoundError{Resource: "Donation"}

	// ErrAmountAndEmailRequired is returned by Initialize for a missing amount or email.
	ErrAmountAndEmailRequired = &entity.ValidationError{Field: "amount", Message: "Amount and email are required"}

	// ErrInvalidAmount is returned for a negative or non-finite amount.
	ErrInvalidAmount = &entity.ValidationError{Field: "amount", Message: "Amount must be a positive number"}
)
