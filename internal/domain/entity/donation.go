package entity

import (
	"encoding/json"
	"time"
)

// Donation statuses. A donation starts Pending and moves to exactly one
// terminal state.
const (
	DonationPending    = "Pending"
	DonationSuccessful = "Successful"
	DonationFailed     = "Failed"
)

// Donation methods.
const (
	MethodCard         = "Card"
	MethodBankTransfer = "Bank Transfer"
)

var (
	DonationStatuses = []string{DonationPending, DonationSuccessful, DonationFailed}
	DonationMethods  = []string{MethodCard, MethodBankTransfer}
)

// Donation is a payment attempt tracked against the gateway by Reference.
// Amount is in major currency units (Naira).
type Donation struct {
	ID          string
	Reference   string
	Amount      float64
	Email       string
	Name        string
	Method      string
	Status      string
	GatewayData json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsTerminal reports whether the donation has left Pending.
func (d *Donation) IsTerminal() bool {
	return d.Status == DonationSuccessful || d.Status == DonationFailed
}
