// Package process executes worker subprocesses for the pipeline's parallel
// execution mode. It captures stdout/stderr, feeds stdin, and terminates the
// whole process group with SIGTERM before falling back to SIGKILL.
package process
