package logger

import "context"

type contextKey struct{}

// LogContext carries per-operation fields that the *Ctx logging functions
// attach to every record.
type LogContext struct {
	OpID      string // unique id of the dual-store operation
	Operation string // operation name (mkdir, write, move, ...)
}

// WithContext returns a copy of ctx carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, contextKey{}, lc)
}

// FromContext extracts the LogContext from ctx, or nil if none was attached.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(contextKey{}).(*LogContext)
	return lc
}
