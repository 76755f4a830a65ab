package pipeline

import (
	"github.com/openscenario/pipekit/errors"
)

// Pipeline is an ordered sequence of steps. It is built incrementally and
// must not be mutated once Execute begins.
type Pipeline struct {
	steps    []*Step
	buildErr error
}

// New creates an empty pipeline.
func New() *Pipeline {
	return &Pipeline{}
}

// Append adds a step of any kind to the end of the pipeline.
func (p *Pipeline) Append(s *Step) *Pipeline {
	p.steps = append(p.steps, s)
	return p
}

// Map appends a map step. Appending a step of another kind is a build error
// surfaced by Execute.
func (p *Pipeline) Map(s *Step) *Pipeline {
	return p.appendKind(s, KindMap)
}

// Filter appends a filter step.
func (p *Pipeline) Filter(s *Step) *Pipeline {
	return p.appendKind(s, KindFilter)
}

// Fold appends a fold step.
func (p *Pipeline) Fold(s *Step) *Pipeline {
	return p.appendKind(s, KindFold)
}

func (p *Pipeline) appendKind(s *Step, want StepKind) *Pipeline {
	if s.kind != want {
		if p.buildErr == nil {
			p.buildErr = errors.InvalidStep(s.name, want.String(), s.kind.String())
		}
		return p
	}
	return p.Append(s)
}

// Concat appends every step of other, preserving order. The receiving
// pipeline is returned; other is left unchanged.
func (p *Pipeline) Concat(other *Pipeline) *Pipeline {
	p.steps = append(p.steps, other.steps...)
	if p.buildErr == nil {
		p.buildErr = other.buildErr
	}
	return p
}

// Len returns the number of steps.
func (p *Pipeline) Len() int { return len(p.steps) }

// Steps returns a copy of the step sequence.
func (p *Pipeline) Steps() []*Step {
	out := make([]*Step, len(p.steps))
	copy(out, p.steps)
	return out
}
