package donation

import (
	"context"
	"encoding/json"
)

// Gateway is the payment provider.
type Gateway interface {
	// Initialize registers a transaction and returns the checkout redirect.
	Initialize(ctx context.Context, req InitializeRequest) (*Authorization, error)
	// Verify fetches the provider's current view of a transaction.
	Verify(ctx context.Context, reference string) (*Verification, error)
}

// InitializeRequest is sent to the gateway. Amount is in Naira.
type InitializeRequest struct {
	Email     string
	Amount    float64
	Reference string
	Name      string
}

// Authorization is the gateway's answer to Initialize.
type Authorization struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Verification is the gateway's authoritative transaction status.
type Verification struct {
	Status          string
	GatewayResponse string
	// Channel is the payment channel the payer used (card, bank_transfer, ...).
	Channel string
	Raw     json.RawMessage
}
