package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across the toolkit.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldRunID = "run_id"

	// Models and sampling
	FieldModel      = "model"
	FieldFamily     = "family"
	FieldParam      = "param"
	FieldChain      = "chain"
	FieldChains     = "chains"
	FieldDraws      = "draws"
	FieldWarmup     = "warmup"
	FieldAcceptance = "acceptance"

	// Diagnostics
	FieldRhat    = "rhat"
	FieldESS     = "ess"
	FieldParetoK = "pareto_k"
	FieldLooic   = "looic"

	// Data
	FieldRows    = "rows"
	FieldColumns = "columns"
	FieldDropped = "dropped"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount = "count"

	// Files and paths
	FieldFile = "file"
	FieldPath = "path"
)

// Context keys for propagating logging context
type contextKey string

const (
	runIDKey contextKey = "logger_run_id"
)

// WithRunID adds a run ID to the context for logging
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if runID, ok := ctx.Value(runIDKey).(string); ok && runID != "" {
		fields = append(fields, FieldRunID, runID)
	}

	return fields
}

// FromContext returns a logger with fields extracted from context.
// Use this to get a logger that automatically includes run_id.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return Logger
	}
	return Logger.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	type Runner struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func NewRunner() *Runner {
//	    return &Runner{
//	        logger: logger.ComponentLogger("growth"),
//	    }
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
// Use for sub-operations that need extra context fields.
//
// Example:
//
//	fitLogger := logger.ChildLogger(baseLogger, "model", m.Name())
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
