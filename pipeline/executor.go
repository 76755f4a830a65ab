package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/openscenario/pipekit/errors"
	"github.com/openscenario/pipekit/logger"
	"github.com/openscenario/pipekit/version"
)

// Execute runs the pipeline over the initial item collection and returns the
// final collection plus per-stage timings.
//
// Each stage applies one step to the whole live collection. The items fed
// into stage i+1 are the flattening, in input order, of each input item's
// output sequence from stage i, regardless of the stage's execution mode.
// The first step failure aborts the run: there is no retry and no partial
// success. Steps that want "skip this item on expected failure" semantics
// catch the failure themselves and return no outputs.
//
// The run context is consumed: its temporary storage is released before
// Execute returns, on success and failure alike, and reusing it fails with
// CONTEXT_CLOSED.
func (p *Pipeline) Execute(ctx context.Context, rc *RunContext, items []any) (*Result, error) {
	if p.buildErr != nil {
		return nil, p.buildErr
	}
	if len(p.steps) == 0 {
		return nil, errors.EmptyPipeline()
	}
	if rc == nil {
		rc = NewRunContext(nil)
	}
	if !rc.begin(ctx) {
		return nil, errors.ContextClosed()
	}
	defer rc.close()

	log := rc.runLog.WithComponent("executor").WithFields(logger.Fields(logger.FieldRun, rc.id))
	result := &Result{State: StateRunning}
	current := Wrap(items)
	runStart := time.Now()

	log.Info("run started", logger.Fields(
		logger.FieldItems, len(current),
		"steps", len(p.steps),
		"engine", version.Short(),
	))

	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			result.State = StateAborted
			result.Duration = time.Since(runStart)
			return result, err
		}

		mode := p.effectiveMode(step, rc.cfg)
		rc.setStepLogger(mode)

		start := time.Now()
		out, err := p.runStage(ctx, rc, step, mode, current)
		elapsed := time.Since(start)

		stage := StageResult{
			Stage:    i,
			Step:     step.name,
			Kind:     step.kind,
			Mode:     mode,
			In:       len(current),
			Out:      len(out),
			Duration: elapsed,
			Err:      err,
		}
		result.Stages = append(result.Stages, stage)

		if err != nil {
			result.State = StateAborted
			result.Values = current
			result.Duration = time.Since(runStart)
			log.Error("run aborted", logger.Fields(
				logger.FieldStage, i,
				logger.FieldStep, step.name,
				logger.FieldError, err.Error(),
			))
			return result, err
		}

		log.Debug("stage completed", logger.Fields(
			logger.FieldStage, i,
			logger.FieldStep, step.name,
			logger.FieldMode, mode.String(),
			logger.FieldItems, len(out),
			logger.FieldDuration, elapsed.Milliseconds(),
		))
		current = out
	}

	result.Values = current
	result.State = StateCompleted
	result.Duration = time.Since(runStart)
	log.Info("run completed", logger.Fields(
		logger.FieldItems, len(current),
		logger.FieldDuration, result.Duration.Milliseconds(),
	))
	return result, nil
}

// effectiveMode resolves the mode a stage actually runs with. Debug forces
// the whole run sequential; a disabled pool forces the steps declared for it
// sequential as well.
func (p *Pipeline) effectiveMode(step *Step, cfg *Config) ExecutionMode {
	if step.kind == KindFold || cfg.Debug {
		return ModeSequential
	}
	switch step.mode {
	case ModeConcurrent:
		if cfg.Threads <= 0 {
			return ModeSequential
		}
	case ModeParallel:
		if cfg.Processes <= 0 {
			return ModeSequential
		}
	}
	return step.mode
}

func (p *Pipeline) runStage(ctx context.Context, rc *RunContext, step *Step, mode ExecutionMode, items []*Container) ([]*Container, error) {
	if step.kind == KindFold {
		return p.runFold(rc, step, items)
	}
	switch mode {
	case ModeConcurrent:
		return p.runPooled(ctx, rc, step, items, rc.cfg.Threads, invokeInProcess)
	case ModeParallel:
		return p.runParallel(ctx, rc, step, items)
	default:
		return p.runSequential(rc, step, items)
	}
}

func (p *Pipeline) runFold(rc *RunContext, step *Step, items []*Container) ([]*Container, error) {
	out, err := step.foldFn(rc, items)
	if err != nil {
		return nil, errors.StepFailed(step.name, err)
	}
	return out, nil
}

func (p *Pipeline) runSequential(rc *RunContext, step *Step, items []*Container) ([]*Container, error) {
	var out []*Container
	for _, item := range items {
		res, err := invokeInProcess(rc, step, item)
		if err != nil {
			return nil, err
		}
		out = append(out, res...)
	}
	return out, nil
}

// taskFunc runs one step over one item and returns the item's output
// sequence. Dropped items return an empty sequence.
type taskFunc func(rc *RunContext, step *Step, item *Container) ([]*Container, error)

// runPooled dispatches one task per item onto a bounded goroutine pool.
// Completion order is unspecified; outputs land in an index-addressed slice
// so the flattened result always follows input order.
func (p *Pipeline) runPooled(ctx context.Context, rc *RunContext, step *Step, items []*Container, limit int, task taskFunc) ([]*Container, error) {
	outs := make([][]*Container, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := task(rc, step, item)
			if err != nil {
				return err
			}
			outs[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return flatten(outs), nil
}

func (p *Pipeline) runParallel(ctx context.Context, rc *RunContext, step *Step, items []*Container) ([]*Container, error) {
	// Fail fast before spawning anything: the step must be resolvable by the
	// worker binary and every item must survive the process boundary.
	registered, ok := lookupStep(step.name)
	if !ok || !registered.Equal(step) {
		return nil, errors.NotRegistered("step", step.name)
	}
	for _, item := range items {
		if _, err := encodeContainer(item); err != nil {
			return nil, err
		}
	}

	return p.runPooled(ctx, rc, step, items, rc.cfg.Processes, p.invokeWorker)
}

// invokeInProcess applies a map or filter step to one item on the calling
// goroutine.
func invokeInProcess(rc *RunContext, step *Step, item *Container) ([]*Container, error) {
	switch step.kind {
	case KindMap:
		out, err := step.mapFn(rc, item)
		if err != nil {
			return nil, errors.StepFailed(step.name, err)
		}
		return out, nil
	case KindFilter:
		keep, err := step.filterFn(rc, item)
		if err != nil {
			return nil, errors.StepFailed(step.name, err)
		}
		if !keep {
			return nil, nil
		}
		return []*Container{item}, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInternal, "step %q: kind %s cannot run per item", step.name, step.kind)
	}
}

func flatten(outs [][]*Container) []*Container {
	var flat []*Container
	for _, out := range outs {
		flat = append(flat, out...)
	}
	return flat
}
