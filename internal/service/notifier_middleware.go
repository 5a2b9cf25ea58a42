package service

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// NotifierMiddleware implements [DECORATOR_PATTERN] to add observability
// to outbound notifications without touching the transport.
type NotifierMiddleware struct {
	Next   Notifier
	Logger *slog.Logger
}

// NewNotifierMiddleware creates a new logging decorator for the Notifier.
func NewNotifierMiddleware(next Notifier, logger *slog.Logger) Notifier {
	return &NotifierMiddleware{
		Next:   next,
		Logger: logger,
	}
}

// Notify wraps the send with execution timing and outcome logging.
func (m *NotifierMiddleware) Notify(ctx context.Context, content string) error {
	start := time.Now()

	// [EXECUTION] Pass the content to the underlying notifier
	err := m.Next.Notify(ctx, content)

	// [OBSERVABILITY] Scoped logging for delivery auditing
	duration := time.Since(start)

	switch {
	case errors.Is(err, ErrNotifierDisabled):
		m.Logger.Info("NOTIFICATION_SKIPPED",
			"reason", "disabled",
		)
	case err != nil:
		m.Logger.Error("NOTIFICATION_FAILED",
			"err", err,
			"content_len", len(content),
			"duration_ms", duration.Milliseconds(),
		)
	default:
		m.Logger.Debug("NOTIFICATION_SENT",
			"duration_ms", duration.Milliseconds(),
		)
	}

	return err
}
