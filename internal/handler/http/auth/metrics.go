package auth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// bcrypt dominates; the buckets bracket cost 10..12.
	loginDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tlwd",
		Subsystem: "auth",
		Name:      "login_duration_seconds",
		Help:      "Login handling time including the password comparison.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
	}, []string{"result"})

	adminDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tlwd",
		Subsystem: "auth",
		Name:      "admin_denials_total",
		Help:      "Requests to /api/admin routes refused after authentication, by role and method.",
	}, []string{"role", "method"})
)

func recordLogin(start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	loginDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}

// recordAdminDenial counts an authenticated non-admin hitting an admin
// route. An empty role is recorded as "none".
func recordAdminDenial(role, method string) {
	if role == "" {
		role = "none"
	}
	adminDenials.WithLabelValues(role, method).Inc()
}
