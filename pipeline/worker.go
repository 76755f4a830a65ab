package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/openscenario/pipekit/errors"
	"github.com/openscenario/pipekit/logger"
	"github.com/openscenario/pipekit/process"
)

// WorkerEnv is the environment variable that switches a binary into worker
// mode. The engine sets it when spawning ModeParallel tasks.
const WorkerEnv = "PIPEKIT_WORKER"

// containerPayload is the wire form of a Container. Types are referenced by
// their registered names.
type containerPayload struct {
	PrimaryType string                     `json:"primary_type"`
	Primary     json.RawMessage            `json:"primary"`
	Attachments map[string]json.RawMessage `json:"attachments,omitempty"`
}

// taskEnvelope is what a worker process reads from stdin.
type taskEnvelope struct {
	Step   string           `json:"step"`
	Config *Config          `json:"config"`
	Item   containerPayload `json:"item"`
}

// taskResponse is what a worker process writes to stdout. A step failure
// travels in Error with a zero exit code; a nonzero exit means the worker
// itself broke.
type taskResponse struct {
	Outputs []containerPayload `json:"outputs,omitempty"`
	Keep    bool               `json:"keep"`
	Error   string             `json:"error,omitempty"`
}

func encodeContainer(c *Container) (containerPayload, error) {
	payload := containerPayload{}

	primaryType := reflect.TypeOf(c.primary)
	name, ok := typeNameFor(primaryType)
	if !ok {
		return payload, errors.NotRegistered("type", fmt.Sprintf("%v", primaryType))
	}
	raw, err := json.Marshal(c.primary)
	if err != nil {
		return payload, errors.New(errors.ErrCodeNotSerializable, "primary value is not serializable").WithCause(err)
	}
	payload.PrimaryType = name
	payload.Primary = raw

	var encodeErr error
	c.each(func(t reflect.Type, v any) {
		if encodeErr != nil {
			return
		}
		attachmentName, ok := typeNameFor(t)
		if !ok {
			encodeErr = errors.NotRegistered("type", fmt.Sprintf("%v", t))
			return
		}
		data, err := json.Marshal(v)
		if err != nil {
			encodeErr = errors.New(errors.ErrCodeNotSerializable, "attachment is not serializable").WithCause(err)
			return
		}
		if payload.Attachments == nil {
			payload.Attachments = make(map[string]json.RawMessage)
		}
		payload.Attachments[attachmentName] = data
	})
	return payload, encodeErr
}

func decodeContainer(payload containerPayload) (*Container, error) {
	primary, err := decodeRegistered(payload.PrimaryType, payload.Primary)
	if err != nil {
		return nil, err
	}
	c := NewContainer(primary)
	for name, raw := range payload.Attachments {
		v, err := decodeRegistered(name, raw)
		if err != nil {
			return nil, err
		}
		rtype, _ := registeredType(name)
		c.add(rtype, v)
	}
	return c, nil
}

// WorkerMain is the worker-mode entry point. Host binaries call it first
// thing in main, after registering steps and types; when the process was
// spawned as a worker it handles exactly one task and exits, and WorkerMain
// reports true to the (unreachable) caller. In a normal process it is a
// cheap no-op returning false.
func WorkerMain() bool {
	if os.Getenv(WorkerEnv) == "" {
		return false
	}
	os.Exit(runWorker(os.Stdin, os.Stdout))
	return true
}

// runWorker executes a single task: decode, run the registered step
// sequentially, encode. Step failures are reported in-band; only protocol
// and registry problems produce a nonzero exit.
func runWorker(in io.Reader, out io.Writer) int {
	var env taskEnvelope
	if err := json.NewDecoder(in).Decode(&env); err != nil {
		fmt.Fprintf(os.Stderr, "pipekit worker: decoding task: %v\n", err)
		return 1
	}

	step, ok := lookupStep(env.Step)
	if !ok {
		fmt.Fprintf(os.Stderr, "pipekit worker: %v\n", errors.NotRegistered("step", env.Step))
		return 1
	}

	item, err := decodeContainer(env.Item)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipekit worker: decoding item: %v\n", err)
		return 1
	}

	cfg := env.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	rc := NewRunContext(cfg)
	rc.setStepLogger(ModeParallel)
	defer rc.close()

	resp := taskResponse{}
	switch step.kind {
	case KindMap:
		outputs, err := step.mapFn(rc, item)
		if err != nil {
			resp.Error = err.Error()
			break
		}
		for _, o := range outputs {
			payload, err := encodeContainer(o)
			if err != nil {
				fmt.Fprintf(os.Stderr, "pipekit worker: encoding output: %v\n", err)
				return 1
			}
			resp.Outputs = append(resp.Outputs, payload)
		}
	case KindFilter:
		keep, err := step.filterFn(rc, item)
		if err != nil {
			resp.Error = err.Error()
			break
		}
		resp.Keep = keep
	default:
		fmt.Fprintf(os.Stderr, "pipekit worker: step %q: folds never run in workers\n", env.Step)
		return 1
	}

	if err := json.NewEncoder(out).Encode(resp); err != nil {
		fmt.Fprintf(os.Stderr, "pipekit worker: encoding response: %v\n", err)
		return 1
	}
	return 0
}

// invokeWorker runs one item task in a freshly spawned worker process.
func (p *Pipeline) invokeWorker(rc *RunContext, step *Step, item *Container) ([]*Container, error) {
	payload, err := encodeContainer(item)
	if err != nil {
		return nil, err
	}
	env := taskEnvelope{Step: step.name, Config: rc.cfg, Item: payload}
	input, err := json.Marshal(env)
	if err != nil {
		return nil, errors.NotSerializable(step.name, err)
	}

	binary, err := os.Executable()
	if err != nil {
		return nil, errors.WorkerFailed(step.name, err)
	}

	res, err := process.Run(rc.ctx, process.Command{
		Binary: binary,
		Env:    []string{WorkerEnv + "=1"},
		Stdin:  bytes.NewReader(input),
	})
	if err != nil {
		return nil, errors.WorkerFailed(step.name, err)
	}
	if len(res.Stderr) > 0 {
		rc.stepLog.Debug("worker stderr", logger.Fields(
			logger.FieldStep, step.name,
			"stderr", string(bytes.TrimSpace(res.Stderr)),
		))
	}

	var resp taskResponse
	if err := json.Unmarshal(res.Stdout, &resp); err != nil {
		return nil, errors.WorkerFailed(step.name, err)
	}
	if resp.Error != "" {
		return nil, errors.StepFailed(step.name, fmt.Errorf("%s", resp.Error))
	}

	if step.kind == KindFilter {
		if !resp.Keep {
			return nil, nil
		}
		return []*Container{item}, nil
	}

	outputs := make([]*Container, 0, len(resp.Outputs))
	for _, outPayload := range resp.Outputs {
		c, err := decodeContainer(outPayload)
		if err != nil {
			return nil, errors.WorkerFailed(step.name, err)
		}
		outputs = append(outputs, c)
	}
	return outputs, nil
}
