package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Step execution errors
const (
	// ErrCodeStepFailed indicates a step function returned an error for one item.
	ErrCodeStepFailed ErrorCode = "STEP_FAILED"
	// ErrCodeWorkerFailed indicates a parallel worker process could not be
	// spawned or crashed before producing a response.
	ErrCodeWorkerFailed ErrorCode = "WORKER_FAILED"
)

// Configuration misuse (fail fast at build or submission time)
const (
	// ErrCodeInvalidStep indicates a step of the wrong kind was appended.
	ErrCodeInvalidStep ErrorCode = "INVALID_STEP"
	// ErrCodeEmptyPipeline indicates execution of a pipeline with no steps.
	ErrCodeEmptyPipeline ErrorCode = "EMPTY_PIPELINE"
	// ErrCodeNotSerializable indicates an item cannot cross a process boundary.
	ErrCodeNotSerializable ErrorCode = "NOT_SERIALIZABLE"
	// ErrCodeNotRegistered indicates a parallel step or transferred type is
	// missing from the worker registry.
	ErrCodeNotRegistered ErrorCode = "NOT_REGISTERED"
	// ErrCodeContextClosed indicates a run context was reused after its run ended.
	ErrCodeContextClosed ErrorCode = "CONTEXT_CLOSED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an engine bug or unexpected state.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)
