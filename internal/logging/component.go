package logging

import (
	"time"

	"cogmem/internal/cogerrors"
)

// EnhancedLogger is a component-stamped logger with helpers for the
// module's structured error type and timed operations.
type EnhancedLogger struct {
	Logger
	errFields []interface{}
}

// NewEnhancedLogger creates an enhanced logger for a component.
func NewEnhancedLogger(component string) *EnhancedLogger {
	return &EnhancedLogger{Logger: WithComponent(component)}
}

// WithError returns a logger whose next emission carries the error's
// message, and for CoreError values its category and retryability.
func (l *EnhancedLogger) WithError(err error) *EnhancedLogger {
	if err == nil {
		return l
	}
	fields := []interface{}{"error", err.Error()}
	if coreErr, ok := err.(*cogerrors.CoreError); ok {
		fields = append(fields,
			"category", string(coreErr.Category()),
			"retryable", coreErr.Retryable(),
		)
	}
	return &EnhancedLogger{Logger: l.Logger, errFields: fields}
}

func (l *EnhancedLogger) Error(msg string, fields ...interface{}) {
	l.Logger.Error(msg, append(fields, l.errFields...)...)
}

func (l *EnhancedLogger) Warn(msg string, fields ...interface{}) {
	l.Logger.Warn(msg, append(fields, l.errFields...)...)
}

// LogOperation logs an operation's start, completion, and duration,
// returning fn's error unchanged.
func (l *EnhancedLogger) LogOperation(operation string, fn func() error) error {
	start := time.Now()
	l.Info("starting operation", "operation", operation)

	err := fn()
	duration := time.Since(start)

	if err != nil {
		l.WithError(err).Error("operation failed",
			"operation", operation,
			"duration_ms", duration.Milliseconds(),
		)
		return err
	}

	l.Info("operation completed",
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
	)
	return nil
}
