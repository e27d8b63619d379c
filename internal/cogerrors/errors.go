// Package cogerrors provides the structured error categories used across
// the memory core, decay engine, graphs, and scope router.
package cogerrors

import (
	"errors"
	"fmt"
	"runtime"
	"time"
)

// Category classifies an error for handling strategy, matching the four
// kinds a caller of the operation surface can observe: NotFound,
// InvalidArgument, BackendUnavailable, PersistenceError.
type Category string

const (
	CategoryNotFound           Category = "not_found"
	CategoryInvalidArgument    Category = "invalid_argument"
	CategoryBackendUnavailable Category = "backend_unavailable"
	CategoryPersistence        Category = "persistence_error"
)

// Context carries debugging metadata alongside a CoreError.
type Context struct {
	Operation  string
	Component  string
	Timestamp  time.Time
	StackTrace string
}

// CoreError wraps an underlying error with a category and component
// context.
type CoreError struct {
	Err     error
	Cat     Category
	Context Context
}

func (e *CoreError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Context.Component, e.Context.Operation, e.Err.Error())
}

func (e *CoreError) Unwrap() error {
	return e.Err
}

// Category returns the error's category.
func (e *CoreError) Category() Category {
	return e.Cat
}

// Retryable reports whether the caller may usefully retry the operation.
// Only backend-unavailable and persistence errors are retryable; bad
// arguments and missing ids never become valid by retrying.
func (e *CoreError) Retryable() bool {
	return e.Cat == CategoryBackendUnavailable || e.Cat == CategoryPersistence
}

func newError(err error, component, operation string, cat Category) *CoreError {
	return &CoreError{
		Err: err,
		Cat: cat,
		Context: Context{
			Operation:  operation,
			Component:  component,
			Timestamp:  time.Now().UTC(),
			StackTrace: stackTrace(),
		},
	}
}

// NotFound wraps err (or a default message if nil) as a not-found error.
func NotFound(component, operation, message string) *CoreError {
	return newError(errors.New(message), component, operation, CategoryNotFound)
}

// InvalidArgument wraps a bad-argument condition.
func InvalidArgument(component, operation, message string) *CoreError {
	return newError(errors.New(message), component, operation, CategoryInvalidArgument)
}

// BackendUnavailable wraps an embedding/index backend failure.
func BackendUnavailable(component, operation string, err error) *CoreError {
	return newError(err, component, operation, CategoryBackendUnavailable)
}

// Persistence wraps an I/O failure on save/load.
func Persistence(component, operation string, err error) *CoreError {
	return newError(err, component, operation, CategoryPersistence)
}

// Is reports whether err carries the given category, unwrapping as needed.
func Is(err error, cat Category) bool {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Cat == cat
	}
	return false
}

func stackTrace() string {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
