// Package logging configures slog for both binaries.
//
//	logger := logging.NewLogger()
//	slog.SetDefault(logger)
//
//	// inside a handler
//	logging.WithRequestID(r.Context(), logger).Info("donation initialized",
//	    slog.String("reference", ref))
//
// Attributes named like credentials (password, *_secret, token, ...) are
// written as [REDACTED].
package logging
