package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"tlwd-backend/internal/handler/http/middleware"
	"tlwd-backend/internal/handler/http/respond"
	"tlwd-backend/internal/observability/metrics"
)

type client struct {
	mu       sync.Mutex
	bucket   *rate.Limiter
	lastSeen time.Time
}

// RateLimiter gives every client a token bucket holding limit tokens that
// refills completely over window. It guards the public write endpoints
// (login, subscribe, contact, donation initialize, apply, comment).
type RateLimiter struct {
	name      string
	limit     int
	window    time.Duration
	extractor middleware.IPExtractor
	clients   sync.Map // ip -> *client
	now       func() time.Time
}

// NewRateLimiter allows limit requests per window per client. A nil extractor
// keys on the TCP peer address. name labels tlwd_http_rate_limited_total.
func NewRateLimiter(name string, limit int, window time.Duration, extractor middleware.IPExtractor) *RateLimiter {
	if extractor == nil {
		extractor = &middleware.RemoteAddrExtractor{}
	}
	return &RateLimiter{
		name:      name,
		limit:     limit,
		window:    window,
		extractor: extractor,
		now:       time.Now,
	}
}

// Limit answers over-limit requests with a 429 envelope and Retry-After.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(rl.window.Seconds()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, err := rl.extractor.ExtractIP(r)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !rl.allow(ip) {
			metrics.RecordRateLimited(rl.name)
			w.Header().Set("Retry-After", retryAfter)
			respond.Error(w, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ip string) bool {
	now := rl.now()
	v, ok := rl.clients.Load(ip)
	if !ok {
		every := rl.window / time.Duration(rl.limit)
		v, _ = rl.clients.LoadOrStore(ip, &client{bucket: rate.NewLimiter(rate.Every(every), rl.limit)})
	}
	c := v.(*client)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSeen = now
	return c.bucket.AllowN(now, 1)
}

// Cleanup forgets clients idle for two windows, whose buckets are full again,
// and returns how many were dropped.
func (rl *RateLimiter) Cleanup() int {
	cutoff := rl.now().Add(-2 * rl.window)
	removed := 0
	rl.clients.Range(func(key, value any) bool {
		c := value.(*client)
		c.mu.Lock()
		idle := c.lastSeen.Before(cutoff)
		c.mu.Unlock()
		if idle {
			rl.clients.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (rl *RateLimiter) RunCleanup(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.Cleanup(); n > 0 {
				logger.Debug("rate limit cleanup", slog.String("limiter", rl.name), slog.Int("removed", n))
			}
		}
	}
}
