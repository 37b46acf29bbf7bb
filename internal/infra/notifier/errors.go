package notifier

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"
)

// ProviderError is a non-2xx answer from the mail provider.
type ProviderError struct {
	StatusCode int
	Message    string
	// RetryAfter is set for 429 answers.
	RetryAfter time.Duration
}

func (e *ProviderError) Error() string {
	if e.RateLimited() {
		return fmt.Sprintf("mail provider: %s (status %d, retry after %v)", e.Message, e.StatusCode, e.RetryAfter)
	}
	return fmt.Sprintf("mail provider: %s (status %d)", e.Message, e.StatusCode)
}

// RateLimited reports a 429.
func (e *ProviderError) RateLimited() bool { return e.StatusCode == http.StatusTooManyRequests }

// ClientFault reports a rejected message (bad address, unverified domain).
// Resending it unchanged fails again.
func (e *ProviderError) ClientFault() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && !e.RateLimited()
}

// countsAgainstProvider decides what opens the circuit breaker: everything
// except client faults.
func countsAgainstProvider(err error) bool {
	if err == nil {
		return false
	}
	var pe *ProviderError
	return !errors.As(err, &pe) || !pe.ClientFault()
}

// retryAfter reads Retry-After in seconds. Missing or malformed means 1s.
func retryAfter(resp *http.Response) time.Duration {
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return time.Second
}

// clip shortens s to at most n bytes on a rune boundary, marking the cut
// with "...".
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := max(n-3, 0)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
