package notify

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"tlwd-backend/internal/handler/http/requestid"
	"tlwd-backend/internal/resilience/circuitbreaker"
)

const (
	// A listener failing this many events in a row is skipped for breakerCooldown.
	breakerTrip     = 5
	breakerCooldown = 5 * time.Minute

	slotWait       = 5 * time.Second
	handlerTimeout = 10 * time.Minute // a newsletter broadcast walks every subscriber
)

// Service dispatches content events to listeners asynchronously.
type Service interface {
	Publisher

	// GetListenerHealth reports the breaker of every listener.
	GetListenerHealth() []ListenerHealthStatus

	// Shutdown stops accepting work and waits for in-flight events to
	// finish or for ctx to expire.
	Shutdown(ctx context.Context) error
}

type ListenerHealthStatus struct {
	Name               string `json:"name"`
	State              string `json:"state"`
	CircuitBreakerOpen bool   `json:"circuitBreakerOpen"`
}

type subscription struct {
	listener Listener
	breaker  *circuitbreaker.CircuitBreaker
}

type service struct {
	subs   []subscription
	slots  chan struct{}
	wg     sync.WaitGroup
	done   context.Context
	stop   context.CancelFunc
	logger *slog.Logger
}

// NewService runs at most maxConcurrent listener calls at a time; zero or
// less means 10.
func NewService(listeners []Listener, maxConcurrent int, logger *slog.Logger) Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	done, stop := context.WithCancel(context.Background())

	svc := &service{
		slots:  make(chan struct{}, maxConcurrent),
		done:   done,
		stop:   stop,
		logger: logger,
	}
	for _, l := range listeners {
		svc.subs = append(svc.subs, subscription{
			listener: l,
			breaker: circuitbreaker.New(circuitbreaker.Config{
				Name:                "listener:" + l.Name(),
				MaxRequests:         1,
				Timeout:             breakerCooldown,
				ConsecutiveFailures: breakerTrip,
			}),
		})
	}
	SetListenersRegistered(float64(len(listeners)))
	return svc
}

// Publish returns immediately. Invalid events and events published after
// Shutdown are logged and dropped.
func (s *service) Publish(ctx context.Context, ev Event) {
	if ev.ContentType == nil || ev.Record == nil {
		s.logger.Warn("Invalid event",
			slog.Bool("nil_content_type", ev.ContentType == nil),
			slog.Bool("nil_record", ev.Record == nil))
		return
	}
	if s.done.Err() != nil {
		s.logger.Warn("Event dropped: dispatcher shut down",
			slog.String("content_type", ev.ContentType.Name),
			slog.String("record_id", ev.Record.ID))
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	// 非同期処理でもリクエストIDを引き継ぐ
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	for _, sub := range s.subs {
		s.wg.Add(1)
		go s.dispatch(reqID, sub, ev)
	}
}

func (s *service) dispatch(reqID string, sub subscription, ev Event) {
	defer s.wg.Done()
	IncrementActiveGoroutines()
	defer DecrementActiveGoroutines()

	name := sub.listener.Name()
	log := s.logger.With(
		slog.String("request_id", reqID),
		slog.String("listener", name),
		slog.String("event", ev.Kind),
		slog.String("content_type", ev.ContentType.Name),
		slog.String("record_id", ev.Record.ID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic in event listener",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	select {
	case s.slots <- struct{}{}:
		defer func() { <-s.slots }()
	case <-time.After(slotWait):
		log.Warn("Event dropped: worker pool full")
		RecordDropped(name, "pool_full")
		return
	}

	ctx, cancel := context.WithTimeout(s.done, handlerTimeout)
	defer cancel()
	ctx = requestid.WithRequestID(ctx, reqID)

	start := time.Now()
	RecordDispatch(name)
	_, err := circuitbreaker.Call(sub.breaker, func() (struct{}, error) {
		return struct{}{}, sub.listener.Handle(ctx, ev)
	})
	elapsed := time.Since(start)

	switch {
	case circuitbreaker.IsRejected(err):
		log.Warn("Event dropped: listener circuit open")
		RecordDropped(name, "circuit_open")
	case err != nil:
		RecordFailure(name, elapsed)
		log.Warn("Event listener failed", slog.Duration("duration", elapsed), slog.Any("error", err))
	default:
		RecordSuccess(name, elapsed)
		log.Debug("Event listener finished", slog.Duration("duration", elapsed))
	}
}

func (s *service) GetListenerHealth() []ListenerHealthStatus {
	out := make([]ListenerHealthStatus, 0, len(s.subs))
	for _, sub := range s.subs {
		state := sub.breaker.State()
		out = append(out, ListenerHealthStatus{
			Name:               sub.listener.Name(),
			State:              state.String(),
			CircuitBreakerOpen: state == gobreaker.StateOpen,
		})
	}
	return out
}

func (s *service) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down event dispatcher")
	s.stop()

	drained := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		s.logger.Info("Event dispatcher shutdown complete")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Event dispatcher shutdown timeout")
		return ctx.Err()
	}
}
