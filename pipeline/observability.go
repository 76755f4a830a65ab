package pipeline

import (
	"time"

	"github.com/openscenario/pipekit/logger"
	"github.com/openscenario/pipekit/observability"
)

// Step decorators for tracing, metrics and logging. Each returns a new step
// with the same name, kind and mode whose function wraps the original.
// Decorated parallel steps must be registered in their decorated form so the
// worker resolves the same function the builder appended.

// WithTracing wraps a step with OpenTelemetry span creation. Each invocation
// creates a span named "{prefix}.{stepName}" parented to the run's context.
func WithTracing(step *Step, prefix string) *Step {
	spanName := prefix + "." + step.name
	return wrapStep(step, func(rc *RunContext, invoke func() error) error {
		ctx, span := observability.StartSpan(rc.Context(), spanName)
		defer span.End()

		observability.SetSpanAttribute(ctx, observability.AttrStepName, step.name)
		observability.SetSpanAttribute(ctx, observability.AttrStepKind, step.kind.String())
		observability.SetSpanAttribute(ctx, observability.AttrStepMode, step.mode.String())

		err := invoke()
		if err != nil {
			observability.SetSpanError(ctx, err)
		}
		return err
	})
}

// WithMetrics wraps a step with metric recording: invocation durations and
// errors, labeled by step name and mode.
func WithMetrics(step *Step, metrics *observability.Metrics) *Step {
	return wrapStep(step, func(rc *RunContext, invoke func() error) error {
		start := time.Now()
		err := invoke()
		duration := time.Since(start)

		status := "ok"
		if err != nil {
			status = "error"
			metrics.RecordError(rc.Context(), step.name)
		}
		metrics.RecordStage(rc.Context(), step.name, step.mode.String(), status, duration)
		return err
	})
}

// WithLogging wraps a step with per-invocation logging: step name, duration
// and success or failure.
func WithLogging(step *Step, log *logger.Logger) *Step {
	return wrapStep(step, func(_ *RunContext, invoke func() error) error {
		start := time.Now()
		err := invoke()
		duration := time.Since(start)

		if err != nil {
			log.Error("step failed", logger.ErrorFields(step.name, err))
			return err
		}
		log.Debug("step completed", logger.DurationFields(step.name, duration))
		return nil
	})
}

// wrapStep rebuilds a step with its function routed through around. The
// wrapped step keeps the original name and mode but gets its own identity.
func wrapStep(step *Step, around func(rc *RunContext, invoke func() error) error) *Step {
	wrapped := newStep(step.name, step.kind, WithMode(step.mode))
	switch step.kind {
	case KindMap:
		inner := step.mapFn
		wrapped.mapFn = func(rc *RunContext, item *Container) (out []*Container, err error) {
			err = around(rc, func() error {
				out, err = inner(rc, item)
				return err
			})
			return out, err
		}
	case KindFilter:
		inner := step.filterFn
		wrapped.filterFn = func(rc *RunContext, item *Container) (keep bool, err error) {
			err = around(rc, func() error {
				keep, err = inner(rc, item)
				return err
			})
			return keep, err
		}
	case KindFold:
		inner := step.foldFn
		wrapped.foldFn = func(rc *RunContext, items []*Container) (out []*Container, err error) {
			err = around(rc, func() error {
				out, err = inner(rc, items)
				return err
			})
			return out, err
		}
	}
	return wrapped
}
