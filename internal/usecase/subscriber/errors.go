// Package subscriber provides the newsletter use cases: subscription
// lifecycle, admin listing, CSV import/export and broadcast fan-out.
package subscriber

import "tlwd-backend/internal/domain/entity"

// Sentinel errors for subscriber use case operations.
var (
	// ErrAlreadySubscribed is returned when an Active subscriber signs up again.
	ErrAlreadySubscribed = &entity.ConflictError{Message: "Email already subscribed"}

	// ErrSubscriberNotFound is returned by Unsubscribe and Delete.
	ErrSubscriberNotFound = &entity.NotFoundError{Resource: "Subscriber"}

	// ErrNoActiveSubscribers is returned by Broadcast when nobody would receive it.
	ErrNoActiveSubscribers = &entity.NotFoundError{Resource: "Subscriber", Message: "No active subscribers found"}
)
