// Package circuitbreaker wraps github.com/sony/gobreaker for the outbound
// provider clients. Calls are never retried here.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

var (
	stateGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "tlwd",
		Subsystem: "circuit_breaker",
		Name:      "state",
		Help:      "Breaker state per provider: 0 closed, 1 half-open, 2 open.",
	}, []string{"name"})

	rejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tlwd",
		Subsystem: "circuit_breaker",
		Name:      "rejected_total",
		Help:      "Calls refused without reaching the provider.",
	}, []string{"name"})
)

// Config trips the breaker once at least MinRequests calls were seen in
// Interval and the failure ratio reaches FailureThreshold, or once
// ConsecutiveFailures calls failed in a row. Zero disables either rule. It
// stays open for Timeout, then admits MaxRequests probes.
type Config struct {
	Name                string
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	FailureThreshold    float64
	MinRequests         uint32
	ConsecutiveFailures uint32

	// IsSuccessful decides whether an error counts against the provider.
	// Nil means only a nil error is a success.
	IsSuccessful func(err error) bool
}

func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// CloudinaryConfig admits fewer probes since uploads are large and slow.
func CloudinaryConfig() Config {
	cfg := DefaultConfig("cloudinary")
	cfg.MaxRequests = 2
	cfg.Interval = time.Minute
	return cfg
}

// PaystackConfig trips late and recovers fast because a donor is waiting on
// every call.
func PaystackConfig() Config {
	cfg := DefaultConfig("paystack")
	cfg.Interval = time.Minute
	cfg.Timeout = 30 * time.Second
	cfg.FailureThreshold = 0.8
	cfg.MinRequests = 10
	return cfg
}

// ResendConfig tolerates the bursts of a newsletter broadcast.
func ResendConfig() Config {
	cfg := DefaultConfig("resend")
	cfg.MaxRequests = 5
	cfg.FailureThreshold = 0.5
	cfg.MinRequests = 10
	return cfg
}

// CircuitBreaker guards one provider.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

func New(cfg Config) *CircuitBreaker {
	stateGauge.WithLabelValues(cfg.Name).Set(0)
	return &CircuitBreaker{
		name: cfg.Name,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				if cfg.ConsecutiveFailures > 0 && c.ConsecutiveFailures >= cfg.ConsecutiveFailures {
					return true
				}
				return cfg.FailureThreshold > 0 && c.Requests >= cfg.MinRequests &&
					float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureThreshold
			},
			IsSuccessful: cfg.IsSuccessful,
			OnStateChange: func(name string, from, to gobreaker.State) {
				stateGauge.WithLabelValues(name).Set(float64(to))
				slog.Warn("circuit breaker state changed",
					slog.String("circuit", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		}),
	}
}

// Call runs fn unless the breaker is open or saturated, in which case the
// error satisfies IsRejected.
func Call[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.breaker.Execute(func() (any, error) {
		return fn()
	})
	if IsRejected(err) {
		rejectedTotal.WithLabelValues(cb.name).Inc()
	}
	v, _ := res.(T)
	return v, err
}

func (cb *CircuitBreaker) State() gobreaker.State { return cb.breaker.State() }

func (cb *CircuitBreaker) Name() string { return cb.name }

// IsRejected reports whether err came from the breaker refusing the call.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
