package dedup

import "context"

// Logger provides structured logging for the deduplication use case.
// This interface allows the engine to log warnings and info messages
// with structured fields for better observability in production.
type Logger interface {
	// LogWarning logs a warning message with structured fields.
	// Fields typically include error details, IDs, and context.
	LogWarning(ctx context.Context, message string, fields map[string]interface{})

	// LogInfo logs an informational message with structured fields.
	// Fields typically include operation details and metadata.
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
}

// NopLogger discards all log output. Used when no logger is injected.
type NopLogger struct{}

// LogWarning implements Logger.
func (NopLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {}

// LogInfo implements Logger.
func (NopLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {}
