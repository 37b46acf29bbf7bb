package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"tlwd-backend/internal/observability/tracing"
	"tlwd-backend/internal/resilience/circuitbreaker"
)

// ResendConfig configures the Resend client.
type ResendConfig struct {
	APIKey string
	// Endpoint overrides the API base URL (tests point it at httptest).
	Endpoint string
	// From is used when a Message leaves From empty.
	From              string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// ResendMailer sends email through the Resend SDK.
type ResendMailer struct {
	config  ResendConfig
	client  *resend.Client
	limiter *rate.Limiter
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewResendMailer builds a mailer with the configured rate limit
// (default 2 req/s, burst 5) and the Resend circuit breaker. One token
// bucket is shared by every send so a newsletter fan-out stays inside the
// provider quota.
func NewResendMailer(config ResendConfig, logger *slog.Logger) *ResendMailer {
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 2
	}
	if config.Burst <= 0 {
		config.Burst = 5
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{
		Timeout:   config.Timeout,
		Transport: &probeTransport{next: http.DefaultTransport},
	}
	client := resend.NewCustomClient(httpClient, config.APIKey)
	if config.Endpoint != "" {
		if u, err := url.Parse(strings.TrimRight(config.Endpoint, "/") + "/"); err == nil {
			client.BaseURL = u
		}
	}

	cbCfg := circuitbreaker.ResendConfig()
	cbCfg.IsSuccessful = func(err error) bool { return !countsAgainstProvider(err) }

	return &ResendMailer{
		config:  config,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		breaker: circuitbreaker.New(cbCfg),
		logger:  logger,
	}
}

// Send delivers msg once. Errors are a *ProviderError, a breaker rejection,
// a transport error, or ctx expiring while waiting for a token.
func (m *ResendMailer) Send(ctx context.Context, msg Message) (*Delivery, error) {
	if len(msg.To) == 0 {
		return nil, &ProviderError{StatusCode: http.StatusBadRequest, Message: "message has no recipients"}
	}
	if msg.From == "" {
		msg.From = m.config.From
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for send slot: %w", err)
	}

	delivery, err := circuitbreaker.Call(m.breaker, func() (*Delivery, error) {
		return m.send(ctx, msg)
	})
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) && pe.RateLimited() {
			m.logger.WarnContext(ctx, "mail provider rate limit hit",
				slog.Duration("retry_after", pe.RetryAfter))
		}
		return nil, err
	}
	return delivery, nil
}

func (m *ResendMailer) send(ctx context.Context, msg Message) (_ *Delivery, err error) {
	ctx, end := tracing.StartClient(ctx, "resend send", attribute.Int("mail.recipients", len(msg.To)))
	defer func() { end(err) }()

	probe := &responseProbe{}
	sent, err := m.client.Emails.SendWithContext(withProbe(ctx, probe), &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})

	switch {
	case probe.status == http.StatusTooManyRequests:
		return nil, &ProviderError{StatusCode: probe.status, Message: "rate limit exceeded", RetryAfter: probe.retryAfter}
	case probe.status >= 400:
		return nil, &ProviderError{StatusCode: probe.status, Message: probe.message}
	case err != nil:
		return nil, fmt.Errorf("send email: %w", err)
	case sent == nil || sent.Id == "":
		return nil, errors.New("mail provider returned no message id")
	default:
		return &Delivery{ID: sent.Id}, nil
	}
}

// responseProbe captures the status of the provider's answer. The SDK
// flattens error responses into plain strings, which hides whether a
// failure is a rejected message or a provider outage.
type responseProbe struct {
	status     int
	retryAfter time.Duration
	message    string
}

type probeKey struct{}

func withProbe(ctx context.Context, p *responseProbe) context.Context {
	return context.WithValue(ctx, probeKey{}, p)
}

type probeTransport struct {
	next http.RoundTripper
}

func (t *probeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	p, ok := req.Context().Value(probeKey{}).(*responseProbe)
	if !ok {
		return resp, nil
	}
	p.status = resp.StatusCode
	if resp.StatusCode < 400 {
		return resp, nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(raw))
	p.retryAfter = retryAfter(resp)
	p.message = providerMessage(raw)
	return resp, nil
}

func providerMessage(raw []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return clip(string(raw), 200)
}
