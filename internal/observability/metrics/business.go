package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DonationsInitializedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "donations",
		Name:      "initialized_total",
		Help:      "Donations handed to Paystack for checkout.",
	})

	DonationsVerifiedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "donations",
		Name:      "verified_total",
		Help:      "Verify calls by the status the donation resolved to.",
	}, []string{"status"})

	// result: successful, failed, pending, error
	DonationsReconciledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "donations",
		Name:      "reconciled_total",
		Help:      "Stale donations checked by the reconciliation worker.",
	}, []string{"result"})

	NewsletterSendsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "newsletter",
		Name:      "sends_total",
		Help:      "Individual newsletter emails attempted.",
	}, []string{"result"})

	BroadcastDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "newsletter",
		Name:      "broadcast_duration_seconds",
		Help:      "Wall time of one broadcast to every active subscriber.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	AssetOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "assets",
		Name:      "operations_total",
		Help:      "Uploads and deletions against the media host.",
	}, []string{"op", "result"})

	AuthRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "requests_total",
		Help:      "Logins and token checks by result.",
	}, []string{"result"})
)

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func RecordDonationInitialized() {
	DonationsInitializedTotal.Inc()
}

// RecordDonationVerified counts a verification by the status it resolved to.
func RecordDonationVerified(status string) {
	DonationsVerifiedTotal.WithLabelValues(status).Inc()
}

// RecordDonationReconciled counts one donation checked by the worker.
// Result is the resolved status in lower case, or "error".
func RecordDonationReconciled(result string) {
	DonationsReconciledTotal.WithLabelValues(result).Inc()
}

func RecordNewsletterSend(success bool) {
	NewsletterSendsTotal.WithLabelValues(result(success)).Inc()
}

func RecordBroadcastDuration(duration time.Duration) {
	BroadcastDuration.Observe(duration.Seconds())
}

// RecordAssetOperation counts an upload or delete against the media host.
func RecordAssetOperation(op string, success bool) {
	AssetOperationsTotal.WithLabelValues(op, result(success)).Inc()
}

// RecordAuthRequest counts an authentication attempt: success,
// invalid_credentials, invalid_token or forbidden.
func RecordAuthRequest(result string) {
	AuthRequestsTotal.WithLabelValues(result).Inc()
}
