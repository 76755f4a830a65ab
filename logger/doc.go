// Package logger wraps zerolog with the structured logging conventions used
// by the pipekit engine: component-tagged loggers, a small field vocabulary,
// and a discard logger for suppressing step output during concurrent runs.
package logger
