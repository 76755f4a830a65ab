package pipeline

import (
	"encoding/json"
	"reflect"
	"sync"

	"github.com/openscenario/pipekit/errors"
)

// Steps executed in ModeParallel cross a process boundary: the worker binary
// resolves the step by name and rebuilds every transferred value from JSON.
// Both sides of the boundary therefore share two registries, populated at
// program start (typically from init functions or early in main, before
// WorkerMain runs).

var stepRegistry = struct {
	mu    sync.RWMutex
	steps map[string]*Step
}{steps: make(map[string]*Step)}

// RegisterStep makes a step resolvable inside worker processes. Names must
// be unique among registered steps.
func RegisterStep(s *Step) (*Step, error) {
	stepRegistry.mu.Lock()
	defer stepRegistry.mu.Unlock()
	if prev, ok := stepRegistry.steps[s.name]; ok && !prev.Equal(s) {
		return nil, errors.Newf(errors.ErrCodeInvalidStep, "step %q is already registered", s.name)
	}
	stepRegistry.steps[s.name] = s
	return s, nil
}

// MustRegisterStep is RegisterStep for package-level step declarations.
//
//	var simulateStep = pipeline.MustRegisterStep(
//		pipeline.Map("simulate", simulate, pipeline.WithMode(pipeline.ModeParallel)))
func MustRegisterStep(s *Step) *Step {
	registered, err := RegisterStep(s)
	if err != nil {
		panic(err)
	}
	return registered
}

func lookupStep(name string) (*Step, bool) {
	stepRegistry.mu.RLock()
	defer stepRegistry.mu.RUnlock()
	s, ok := stepRegistry.steps[name]
	return s, ok
}

type typeEntry struct {
	rtype  reflect.Type
	decode func(data []byte) (any, error)
}

var typeRegistry = struct {
	mu     sync.RWMutex
	byName map[string]typeEntry
	names  map[reflect.Type]string
}{byName: make(map[string]typeEntry), names: make(map[reflect.Type]string)}

// RegisterType makes values of type T transferable to and from worker
// processes under the given name, in the spirit of gob.Register. Primaries
// and attachments of parallel steps must be registered on both sides of the
// process boundary, which registration at program start guarantees.
func RegisterType[T any](name string) {
	rtype := typeOf[T]()
	typeRegistry.mu.Lock()
	defer typeRegistry.mu.Unlock()
	typeRegistry.byName[name] = typeEntry{
		rtype: rtype,
		decode: func(data []byte) (any, error) {
			var v T
			if err := json.Unmarshal(data, &v); err != nil {
				return nil, err
			}
			return v, nil
		},
	}
	typeRegistry.names[rtype] = name
}

func typeNameFor(t reflect.Type) (string, bool) {
	typeRegistry.mu.RLock()
	defer typeRegistry.mu.RUnlock()
	name, ok := typeRegistry.names[t]
	return name, ok
}

func decodeRegistered(name string, data []byte) (any, error) {
	typeRegistry.mu.RLock()
	entry, ok := typeRegistry.byName[name]
	typeRegistry.mu.RUnlock()
	if !ok {
		return nil, errors.NotRegistered("type", name)
	}
	return entry.decode(data)
}

func registeredType(name string) (reflect.Type, bool) {
	typeRegistry.mu.RLock()
	defer typeRegistry.mu.RUnlock()
	entry, ok := typeRegistry.byName[name]
	return entry.rtype, ok
}
