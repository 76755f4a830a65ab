package pipeline

import (
	"fmt"

	"github.com/google/uuid"
)

// StepKind identifies the shape of a step.
type StepKind int

const (
	// KindMap transforms one item into zero or more items.
	KindMap StepKind = iota
	// KindFilter keeps or drops one item.
	KindFilter
	// KindFold replaces the whole item collection at once.
	KindFold
)

func (k StepKind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindFilter:
		return "filter"
	case KindFold:
		return "fold"
	default:
		return fmt.Sprintf("StepKind(%d)", int(k))
	}
}

// ExecutionMode is a step's declared execution policy.
type ExecutionMode int

const (
	// ModeConcurrent distributes item tasks over a pool of goroutines.
	ModeConcurrent ExecutionMode = iota
	// ModeParallel distributes item tasks over isolated worker processes.
	// Meant for steps wrapping non-reentrant native engines that cannot run
	// more than once per process.
	ModeParallel
	// ModeSequential runs item tasks one at a time on the calling goroutine.
	ModeSequential
)

func (m ExecutionMode) String() string {
	switch m {
	case ModeConcurrent:
		return "concurrent"
	case ModeParallel:
		return "parallel"
	case ModeSequential:
		return "sequential"
	default:
		return fmt.Sprintf("ExecutionMode(%d)", int(m))
	}
}

// MapFunc transforms one item into zero or more items.
// Returning a nil slice drops the item's lineage: no downstream step sees it
// and no error is recorded.
type MapFunc func(rc *RunContext, item *Container) ([]*Container, error)

// FilterFunc decides whether an item continues to the next stage.
type FilterFunc func(rc *RunContext, item *Container) (bool, error)

// FoldFunc observes the entire current collection and returns its
// replacement. Folds always run sequentially.
type FoldFunc func(rc *RunContext, items []*Container) ([]*Container, error)

// Predicate is the extension point for user-supplied filter logic. Many
// concrete predicates can share one filter step identity while remaining
// independently substitutable.
type Predicate interface {
	Matches(item *Container) bool
}

// Step is a single unit of work in a pipeline: a wrapped step function plus
// its kind and declared execution mode.
//
// Steps are compared by identity, not name: the same function may appear
// several times in one pipeline, and step values travel between processes,
// so neither names nor pointers are reliable keys.
type Step struct {
	id   uuid.UUID
	name string
	kind StepKind
	mode ExecutionMode

	mapFn    MapFunc
	filterFn FilterFunc
	foldFn   FoldFunc
}

// Name returns the human-readable step name. Names may repeat.
func (s *Step) Name() string { return s.name }

// Kind returns the step's shape.
func (s *Step) Kind() StepKind { return s.kind }

// Mode returns the step's declared execution mode.
func (s *Step) Mode() ExecutionMode { return s.mode }

// ID returns the step's unique identity.
func (s *Step) ID() uuid.UUID { return s.id }

// Equal reports whether two steps are the same step value.
func (s *Step) Equal(other *Step) bool {
	if other == nil {
		return false
	}
	return s.id == other.id
}

func (s *Step) String() string {
	return fmt.Sprintf("%s (%s)", s.name, s.id)
}

// StepOption configures a step at construction time.
type StepOption func(*Step)

// WithMode sets the step's execution mode. Map and filter steps default to
// ModeConcurrent.
func WithMode(mode ExecutionMode) StepOption {
	return func(s *Step) { s.mode = mode }
}

func newStep(name string, kind StepKind, opts ...StepOption) *Step {
	s := &Step{
		id:   uuid.New(),
		name: name,
		kind: kind,
		mode: ModeConcurrent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Map declares a map step.
func Map(name string, fn MapFunc, opts ...StepOption) *Step {
	s := newStep(name, KindMap, opts...)
	s.mapFn = fn
	return s
}

// Filter declares a filter step from a raw filter function.
func Filter(name string, fn FilterFunc, opts ...StepOption) *Step {
	s := newStep(name, KindFilter, opts...)
	s.filterFn = fn
	return s
}

// FilterPredicate declares a filter step backed by a Predicate. Successive
// filter steps compose as logical AND: an item must pass every one.
func FilterPredicate(name string, pred Predicate, opts ...StepOption) *Step {
	return Filter(name, func(_ *RunContext, item *Container) (bool, error) {
		return pred.Matches(item), nil
	}, opts...)
}

// Fold declares a fold step. Folds take no mode: they always run
// sequentially on the controlling goroutine with the full collection, so a
// non-sequential fold cannot even be expressed.
func Fold(name string, fn FoldFunc) *Step {
	s := newStep(name, KindFold, WithMode(ModeSequential))
	s.foldFn = fn
	return s
}

// MapWithArgs declares a map step whose function takes a static
// configuration value. The returned builder binds the configuration once at
// pipeline-build time; it is then supplied identically to every invocation.
//
//	simulate := pipeline.MapWithArgs("simulate", simulateFn)
//	p.Map(simulate(SimulationArgs{Steps: 500}))
func MapWithArgs[A any](name string, fn func(rc *RunContext, args A, item *Container) ([]*Container, error), opts ...StepOption) func(A) *Step {
	return func(args A) *Step {
		return Map(name, func(rc *RunContext, item *Container) ([]*Container, error) {
			return fn(rc, args, item)
		}, opts...)
	}
}

// FilterWithArgs declares a filter step whose function takes a static
// configuration value, bound once at pipeline-build time.
func FilterWithArgs[A any](name string, fn func(rc *RunContext, args A, item *Container) (bool, error), opts ...StepOption) func(A) *Step {
	return func(args A) *Step {
		return Filter(name, func(rc *RunContext, item *Container) (bool, error) {
			return fn(rc, args, item)
		}, opts...)
	}
}

// FoldWithArgs declares a fold step with a bound configuration value.
func FoldWithArgs[A any](name string, fn func(rc *RunContext, args A, items []*Container) ([]*Container, error)) func(A) *Step {
	return func(args A) *Step {
		return Fold(name, func(rc *RunContext, items []*Container) ([]*Container, error) {
			return fn(rc, args, items)
		})
	}
}

// One wraps a single output container for a map step that emits exactly one
// item per input.
func One(c *Container) []*Container {
	return []*Container{c}
}
