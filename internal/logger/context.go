// internal/logger/context.go
//
// Request-scoped logger helpers.
//
// Usage
// -----
//
//	ctx = logger.WithContext(ctx, log.With("request_id", id))
//
//	// Downstream code retrieves it.
//	logger.FromContext(ctx).Infow("signup stored")
//
// Notes
// -----
// • FromContext never returns nil.  Without a stored logger it falls back
//   to the process-wide sugared logger installed by New.
// • Oxford commas, two spaces after periods.

package logger

import (
	"context"

	"go.uber.org/zap"
)

// ctxKey is unexported to avoid context-key collisions.
type ctxKey struct{}

// WithContext returns a copy of ctx carrying l.
func WithContext(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored by WithContext or zap.S().
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.SugaredLogger); ok && l != nil {
		return l
	}
	return zap.S()
}
