// Package errors provides the structured error type used across pipekit.
// Errors carry a machine-readable code so callers can distinguish step
// failures from engine misconfiguration without string matching.
package errors
