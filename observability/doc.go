// Package observability bootstraps OpenTelemetry tracing and metrics for
// pipeline runs and provides the metric instruments recorded per stage.
package observability
