// Package notifier delivers transactional and newsletter email.
//
// Mailer is the outbound-mail collaborator. The Resend implementation applies
// a token-bucket rate limit and a circuit breaker and attempts each message once;
// NoOpMailer is used when no provider key is configured.
package notifier

import "context"

// Message is a single email. Every recipient in To receives the same copy.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Delivery is the provider's acknowledgement of an accepted message.
type Delivery struct {
	ID string
}

// Mailer sends one message per call and reports the provider outcome.
type Mailer interface {
	Send(ctx context.Context, msg Message) (*Delivery, error)
}
