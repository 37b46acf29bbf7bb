package notifier

import (
	"context"
	"log/slog"
)

// NoOpMailer accepts every message without sending it.
// It is used when RESEND_API_KEY is unset so local runs need no credentials.
type NoOpMailer struct {
	Logger *slog.Logger
}

func NewNoOpMailer(logger *slog.Logger) *NoOpMailer {
	return &NoOpMailer{Logger: logger}
}

func (n *NoOpMailer) Send(ctx context.Context, msg Message) (*Delivery, error) {
	if n.Logger != nil {
		n.Logger.DebugContext(ctx, "mail delivery disabled, dropping message",
			slog.String("subject", msg.Subject),
			slog.Int("recipients", len(msg.To)))
	}
	return &Delivery{ID: "noop"}, nil
}
