package errors

import (
	stderrors "errors"
	"fmt"
)

// Error is the structured error type used by the engine.
type Error struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a new Error with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the ErrorCode from err, unwrapping as needed.
// Returns ErrCodeInternal for errors that are not *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// --- Common Error Constructors ---

// StepFailed wraps an error produced by a step function for a single item.
func StepFailed(step string, cause error) *Error {
	return &Error{
		Code:    ErrCodeStepFailed,
		Message: fmt.Sprintf("step %q failed", step),
		Details: map[string]any{"step": step},
		Cause:   cause,
	}
}

// WorkerFailed wraps a parallel worker process failure.
func WorkerFailed(step string, cause error) *Error {
	return &Error{
		Code:    ErrCodeWorkerFailed,
		Message: fmt.Sprintf("worker process for step %q failed", step),
		Details: map[string]any{"step": step},
		Cause:   cause,
	}
}

// InvalidStep reports a step appended with the wrong kind.
func InvalidStep(step string, want, got string) *Error {
	return &Error{
		Code:    ErrCodeInvalidStep,
		Message: fmt.Sprintf("step %q has kind %s, want %s", step, got, want),
		Details: map[string]any{"step": step, "want": want, "got": got},
	}
}

// EmptyPipeline reports execution of a pipeline without steps.
func EmptyPipeline() *Error {
	return New(ErrCodeEmptyPipeline, "cannot execute a pipeline with no steps")
}

// NotSerializable reports an item that cannot cross the process boundary.
func NotSerializable(step string, cause error) *Error {
	return &Error{
		Code:    ErrCodeNotSerializable,
		Message: fmt.Sprintf("input for parallel step %q is not serializable", step),
		Details: map[string]any{"step": step},
		Cause:   cause,
	}
}

// NotRegistered reports a missing worker registry entry.
func NotRegistered(kind, name string) *Error {
	return &Error{
		Code:    ErrCodeNotRegistered,
		Message: fmt.Sprintf("%s %q is not registered for parallel execution", kind, name),
		Details: map[string]any{"kind": kind, "name": name},
	}
}

// ContextClosed reports reuse of a run context after its run ended.
func ContextClosed() *Error {
	return New(ErrCodeContextClosed, "run context was already consumed by a previous execution")
}
