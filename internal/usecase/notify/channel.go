// Package notify dispatches content events to listeners in the background.
// The newsletter Announcer is the listener that turns new or newly published
// content into a subscriber broadcast.
package notify

import (
	"context"
	"time"

	"tlwd-backend/internal/config"
	"tlwd-backend/internal/domain/entity"
)

// Event kinds. They match the announce triggers of the content type table.
const (
	EventCreated   = config.AnnounceOnCreated
	EventPublished = config.AnnounceOnPublished
)

// Event describes a persisted change to a content record.
type Event struct {
	Kind        string
	ContentType *config.ContentType
	Record      *entity.ContentRecord
	OccurredAt  time.Time
}

// Publisher accepts events without blocking the caller.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Listener reacts to content events.
//
// Thread Safety:
//   - Handle must be safe for concurrent use by multiple goroutines
//
// Context Handling:
//   - Implementations must respect context cancellation and timeout
//   - the request id of the originating request is available via requestid.FromContext
type Listener interface {
	// Name identifies the listener in logs, metrics and health output.
	Name() string

	// Handle processes one event. Returning an error counts towards the
	// listener's circuit breaker; it never reaches the publisher.
	Handle(ctx context.Context, ev Event) error
}
