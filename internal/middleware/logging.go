package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tally/internal/metrics"
	"github.com/mmynk/tally/internal/storage"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// ActionIDKey is the context key for the correlation ID of the running action.
const ActionIDKey contextKey = "action_id"

// GetActionID extracts the action ID from the context.
// Returns empty string if not found.
func GetActionID(ctx context.Context) string {
	id, _ := ctx.Value(ActionIDKey).(string)
	return id
}

// ActionFunc is one controller action.
type ActionFunc func(ctx context.Context) error

// Instrument runs fn under a fresh action ID and logs the outcome.
// Persistence failures log at error level, rejected input at warn level.
// m may be nil.
func Instrument(ctx context.Context, m *metrics.Metrics, action string, fn ActionFunc) error {
	start := time.Now()
	id := uuid.NewString()
	ctx = context.WithValue(ctx, ActionIDKey, id)

	err := fn(ctx)

	elapsed := time.Since(start)
	outcome := metrics.OutcomeOK
	if err != nil {
		var perr *storage.PersistenceError
		if errors.As(err, &perr) {
			outcome = metrics.OutcomeFailed
			slog.Error("Action failed",
				"action", action,
				"action_id", id,
				"error", err,
				"duration_ms", elapsed.Milliseconds(),
			)
		} else {
			outcome = metrics.OutcomeRejected
			slog.Warn("Action rejected",
				"action", action,
				"action_id", id,
				"error", err,
				"duration_ms", elapsed.Milliseconds(),
			)
		}
	} else {
		slog.Info("Action ok",
			"action", action,
			"action_id", id,
			"duration_ms", elapsed.Milliseconds(),
		)
	}

	if m != nil {
		m.Observe(action, outcome, elapsed)
	}
	return err
}
