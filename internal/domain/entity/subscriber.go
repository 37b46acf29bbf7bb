package entity

import "time"

const (
	SubscriberActive       = "Active"
	SubscriberUnsubscribed = "Unsubscribed"

	// DefaultSubscriberSource is recorded when the caller does not say where
	// the signup came from.
	DefaultSubscriberSource = "Website"
)

var SubscriberStatuses = []string{SubscriberActive, SubscriberUnsubscribed}

// Subscriber is a newsletter recipient. Email is stored normalised
// (lower-case, trimmed) and is unique.
type Subscriber struct {
	ID             string
	Email          string
	Status         string
	Source         string
	SubscribedAt   time.Time
	UnsubscribedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
