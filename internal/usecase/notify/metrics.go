package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatcher collectors. Breaker state lives in tlwd_circuit_breaker_state{name="listener:<name>"}.
var (
	eventDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tlwd",
			Subsystem: "notify",
			Name:      "dispatched_total",
			Help:      "Total number of content events dispatched to listeners",
		},
		[]string{"listener"},
	)

	eventHandledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tlwd",
			Subsystem: "notify",
			Name:      "handled_total",
			Help:      "Total number of content events handled by listeners",
		},
		[]string{"listener", "status"}, // status: success|failure
	)

	eventHandleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tlwd",
			Subsystem: "notify",
			Name:      "handle_duration_seconds",
			Help:      "Listener handling duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 120}, // broadcasts can take minutes
		},
		[]string{"listener"},
	)

	eventDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tlwd",
			Subsystem: "notify",
			Name:      "dropped_total",
			Help:      "Total number of dropped content events",
		},
		[]string{"listener", "reason"}, // reason: pool_full|circuit_open
	)

	activeHandlers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tlwd",
			Subsystem: "notify",
			Name:      "active_goroutines",
			Help:      "Number of active listener goroutines",
		},
	)

	listenersRegistered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tlwd",
			Subsystem: "notify",
			Name:      "listeners",
			Help:      "Number of registered content event listeners",
		},
	)
)

// RecordDispatch records an event handed to a listener.
func RecordDispatch(listener string) {
	eventDispatchedTotal.WithLabelValues(listener).Inc()
}

// RecordSuccess records a successful Handle call and its duration.
func RecordSuccess(listener string, duration time.Duration) {
	eventHandledTotal.WithLabelValues(listener, "success").Inc()
	eventHandleDuration.WithLabelValues(listener).Observe(duration.Seconds())
}

// RecordFailure records a failed Handle call and its duration.
func RecordFailure(listener string, duration time.Duration) {
	eventHandledTotal.WithLabelValues(listener, "failure").Inc()
	eventHandleDuration.WithLabelValues(listener).Observe(duration.Seconds())
}

// RecordDropped records an event that never reached the listener.
func RecordDropped(listener string, reason string) {
	eventDroppedTotal.WithLabelValues(listener, reason).Inc()
}

// IncrementActiveGoroutines increments the active goroutines gauge by 1.
func IncrementActiveGoroutines() {
	activeHandlers.Inc()
}

// DecrementActiveGoroutines decrements the active goroutines gauge by 1.
func DecrementActiveGoroutines() {
	activeHandlers.Dec()
}

// SetListenersRegistered sets the number of registered listeners.
func SetListenersRegistered(count float64) {
	listenersRegistered.Set(count)
}
