// Package payment talks to the Paystack transaction API.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"tlwd-backend/internal/observability/tracing"
	"tlwd-backend/internal/resilience/circuitbreaker"
	"tlwd-backend/internal/usecase/donation"
)

const defaultPaystackBaseURL = "https://api.paystack.co"

// PaystackConfig configures the client.
type PaystackConfig struct {
	SecretKey string
	BaseURL   string
	// CallbackURL is where Paystack redirects the donor after checkout.
	CallbackURL string
	Timeout     time.Duration
}

// Paystack implements donation.Gateway. Every call is attempted once.
type Paystack struct {
	config     PaystackConfig
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	logger     *slog.Logger
}

func NewPaystack(cfg PaystackConfig, logger *slog.Logger) *Paystack {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultPaystackBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Paystack{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    circuitbreaker.New(circuitbreaker.PaystackConfig()),
		logger:     logger,
	}
}

// envelope is the common Paystack response shape.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// GatewayError is a response with status:false or a non-2xx code.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("paystack: %s (status %d)", e.Message, e.StatusCode)
}

type initializeBody struct {
	Email       string         `json:"email"`
	Amount      int64          `json:"amount"`
	Reference   string         `json:"reference"`
	CallbackURL string         `json:"callback_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Initialize converts the amount to kobo and registers the transaction.
func (p *Paystack) Initialize(ctx context.Context, req donation.InitializeRequest) (*donation.Authorization, error) {
	body := initializeBody{
		Email:       req.Email,
		Amount:      int64(math.Round(req.Amount * 100)),
		Reference:   req.Reference,
		CallbackURL: p.config.CallbackURL,
	}
	if req.Name != "" {
		body.Metadata = map[string]any{"donor_name": req.Name}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("paystack initialize: %w", err)
	}

	env, err := circuitbreaker.Call(p.breaker, func() (*envelope, error) {
		return p.do(ctx, http.MethodPost, "/transaction/initialize", payload)
	})
	if err != nil {
		return nil, fmt.Errorf("paystack initialize: %w", err)
	}

	var auth donation.Authorization
	if err := json.Unmarshal(env.Data, &auth); err != nil {
		return nil, fmt.Errorf("paystack initialize: decode data: %w", err)
	}
	if auth.AuthorizationURL == "" {
		return nil, errors.New("paystack initialize: no authorization url in response")
	}
	return &auth, nil
}

type verifyData struct {
	Status          string `json:"status"`
	GatewayResponse string `json:"gateway_response"`
	Channel         string `json:"channel"`
}

// Verify returns the transaction status. Raw holds the full response body.
func (p *Paystack) Verify(ctx context.Context, reference string) (*donation.Verification, error) {
	env, err := circuitbreaker.Call(p.breaker, func() (*envelope, error) {
		return p.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	})
	if err != nil {
		return nil, fmt.Errorf("paystack verify: %w", err)
	}

	var data verifyData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("paystack verify: decode data: %w", err)
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("paystack verify: %w", err)
	}
	p.logger.DebugContext(ctx, "paystack verification",
		slog.String("reference", reference),
		slog.String("status", data.Status),
		slog.String("channel", data.Channel))

	return &donation.Verification{
		Status:          data.Status,
		GatewayResponse: data.GatewayResponse,
		Channel:         data.Channel,
		Raw:             raw,
	}, nil
}

func (p *Paystack) do(ctx context.Context, method, path string, payload []byte) (_ *envelope, err error) {
	ctx, end := tracing.StartClient(ctx, "paystack "+method,
		attribute.String("http.method", method), attribute.String("paystack.path", path))
	defer func() { end(err) }()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.config.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.config.SecretKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: "unreadable response"}
	}
	if resp.StatusCode >= 300 || !env.Status {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &GatewayError{StatusCode: resp.StatusCode, Message: msg}
	}
	return &env, nil
}
