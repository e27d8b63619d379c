// Package logging provides the leveled structured logger used across
// the memory core, decay engine, and CLI. Output is one line per entry,
// either JSON or key=value text, selected by configuration.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Logger is the interface the rest of the module logs through. Fields
// are alternating key/value pairs.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
	Fatal(msg string, fields ...interface{})
	WithComponent(component string) Logger
}

// Entry is one rendered log line.
type Entry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Component string                 `json:"component,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// StructuredLogger writes leveled entries to stderr.
type StructuredLogger struct {
	level     Level
	component string
	useJSON   bool
}

// New creates a logger at the given level. Format is "json" or "text".
func New(level Level, format string) Logger {
	return &StructuredLogger{level: level, useJSON: format == "json"}
}

// WithComponent returns a copy of the logger stamped with a component
// name.
func (l *StructuredLogger) WithComponent(component string) Logger {
	return &StructuredLogger{level: l.level, component: component, useJSON: l.useJSON}
}

func (l *StructuredLogger) Debug(msg string, fields ...interface{}) {
	l.emit(LevelDebug, msg, fields...)
}

func (l *StructuredLogger) Info(msg string, fields ...interface{}) {
	l.emit(LevelInfo, msg, fields...)
}

func (l *StructuredLogger) Warn(msg string, fields ...interface{}) {
	l.emit(LevelWarn, msg, fields...)
}

func (l *StructuredLogger) Error(msg string, fields ...interface{}) {
	l.emit(LevelError, msg, fields...)
}

func (l *StructuredLogger) Fatal(msg string, fields ...interface{}) {
	l.emit(LevelFatal, msg, fields...)
	os.Exit(1)
}

func (l *StructuredLogger) emit(level Level, msg string, fields ...interface{}) {
	if level < l.level {
		return
	}

	fieldMap := make(map[string]interface{}, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		fieldMap[fmt.Sprintf("%v", fields[i])] = fields[i+1]
	}

	entry := Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level.String(),
		Message:   msg,
		Component: l.component,
		Fields:    fieldMap,
	}

	if l.useJSON {
		data, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to marshal log entry: %v\n", err)
			return
		}
		fmt.Fprintln(os.Stderr, string(data))
		return
	}

	parts := []string{entry.Timestamp, "[" + entry.Level + "]"}
	if entry.Component != "" {
		parts = append(parts, "component:"+entry.Component)
	}
	parts = append(parts, entry.Message)
	for k, v := range entry.Fields {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	fmt.Fprintln(os.Stderr, strings.Join(parts, " "))
}

var defaultLogger Logger = New(LevelInfo, "text")

// Configure replaces the default logger, applied once at startup from
// the loaded LoggingConfig.
func Configure(level, format string) {
	defaultLogger = New(ParseLevel(level), format)
}

// WithComponent derives a component logger from the default logger.
func WithComponent(component string) Logger {
	return defaultLogger.WithComponent(component)
}

// Package-level convenience functions logging through the default
// logger.
func Debug(msg string, fields ...interface{}) { defaultLogger.Debug(msg, fields...) }
func Info(msg string, fields ...interface{})  { defaultLogger.Info(msg, fields...) }
func Warn(msg string, fields ...interface{})  { defaultLogger.Warn(msg, fields...) }
func Error(msg string, fields ...interface{}) { defaultLogger.Error(msg, fields...) }
func Fatal(msg string, fields ...interface{}) { defaultLogger.Fatal(msg, fields...) }
