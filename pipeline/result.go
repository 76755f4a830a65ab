package pipeline

import (
	"fmt"
	"io"
	"time"
)

// RunState tracks a pipeline run through its lifecycle.
type RunState int

const (
	// StatePending is a run that has not started.
	StatePending RunState = iota
	// StateRunning is a run with at least one stage in flight.
	StateRunning
	// StateCompleted is a run whose every stage finished.
	StateCompleted
	// StateAborted is a run terminated by an unrecovered failure. The item
	// collection is not authoritative beyond the last completed stage.
	StateAborted
)

func (s RunState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("RunState(%d)", int(s))
	}
}

// StageResult records one stage's execution for the timing report.
type StageResult struct {
	// Stage is the zero-based position in the pipeline.
	Stage int
	// Step is the step name.
	Step string
	// Kind is the step kind.
	Kind StepKind
	// Mode is the mode the stage actually ran with, after debug and pool
	// overrides.
	Mode ExecutionMode
	// In and Out count items entering and leaving the stage.
	In, Out int
	// Duration is the stage's wall-clock time.
	Duration time.Duration
	// Err is the failure that aborted the run, if this stage failed.
	Err error
}

// Result is the outcome of a pipeline run: the final item collection plus
// the per-stage timing report. On an aborted run the collection holds the
// output of the last fully-completed stage.
type Result struct {
	// State is the terminal run state.
	State RunState
	// Values is the final item collection.
	Values []*Container
	// Stages holds one entry per executed (or failed) stage.
	Stages []StageResult
	// Duration is the whole run's wall-clock time.
	Duration time.Duration
}

// Errors returns the failures recorded across stages. Under the default
// policy a run aborts on the first failure, so this holds at most one entry.
func (r *Result) Errors() []error {
	var errs []error
	for _, stage := range r.Stages {
		if stage.Err != nil {
			errs = append(errs, stage.Err)
		}
	}
	return errs
}

// WriteReport writes the cumulative wall-clock time per step, in pipeline
// order, followed by any recorded failures.
func (r *Result) WriteReport(w io.Writer) error {
	var order []string
	totals := make(map[string]time.Duration)
	for _, stage := range r.Stages {
		if _, ok := totals[stage.Step]; !ok {
			order = append(order, stage.Step)
		}
		totals[stage.Step] += stage.Duration
	}

	for _, name := range order {
		if _, err := fmt.Fprintf(w, "%-60s %10.2fs\n", name, totals[name].Seconds()); err != nil {
			return err
		}
	}
	for _, stage := range r.Stages {
		if stage.Err == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "stage %d (%s) failed: %v\n", stage.Stage, stage.Step, stage.Err); err != nil {
			return err
		}
	}
	return nil
}
