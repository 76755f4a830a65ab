package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/openscenario/pipekit/logger"
)

// Config is the run-level configuration shared by every step invocation.
// It is serializable so parallel workers receive the same view.
type Config struct {
	// Threads sizes the goroutine pool for ModeConcurrent steps.
	// Zero disables the pool: concurrent steps then run sequentially.
	Threads int `json:"threads" yaml:"threads" mapstructure:"threads" validate:"gte=0"`
	// Processes sizes the worker-process pool for ModeParallel steps.
	// Zero disables the pool: parallel steps then run sequentially in-process.
	Processes int `json:"processes" yaml:"processes" mapstructure:"processes" validate:"gte=0"`
	// Debug forces the whole run to sequential execution and unblocks step
	// log output that is otherwise suppressed during concurrent stages.
	Debug bool `json:"debug" yaml:"debug" mapstructure:"debug"`
	// WorkDir is the parent directory for the per-run temporary root.
	// Empty means the system temp directory.
	WorkDir string `json:"work_dir" yaml:"work_dir" mapstructure:"work_dir"`
	// Settings carries free-form domain configuration for steps.
	Settings map[string]string `json:"settings,omitempty" yaml:"settings" mapstructure:"settings"`
	// Logging configures the run logger.
	Logging logger.Config `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// DefaultConfig returns a config with both pools enabled and sized from the
// available cores.
func DefaultConfig() *Config {
	return &Config{
		Threads:   2 * runtime.GOMAXPROCS(0),
		Processes: runtime.GOMAXPROCS(0),
	}
}

// Setting returns a domain setting value, or def when unset.
func (c *Config) Setting(key, def string) string {
	if v, ok := c.Settings[key]; ok {
		return v
	}
	return def
}

// RunContext is the execution context created once per run and passed to
// every step invocation. It exposes the read-only run configuration and
// scoped temporary-directory allocation.
//
// A RunContext is single use: Execute consumes it, and the temporary root
// (with all its contents) is removed when the run ends, on both success and
// failure paths.
type RunContext struct {
	id  string
	cfg *Config

	runLog  *logger.Logger
	stepLog *logger.Logger
	ctx     context.Context

	mu       sync.Mutex
	tempRoot string
	consumed bool
	closed   bool
}

// NewRunContext creates a run context. A nil cfg selects DefaultConfig.
func NewRunContext(cfg *Config) *RunContext {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := logger.New(&cfg.Logging)
	rc := &RunContext{
		id:     uuid.NewString()[:8],
		cfg:    cfg,
		runLog: log,
		ctx:    context.Background(),
	}
	rc.stepLog = log
	return rc
}

// ID returns the short run identifier, used in log fields and temp paths.
func (rc *RunContext) ID() string { return rc.id }

// Config returns the shared run configuration. Steps must treat it as
// read-only.
func (rc *RunContext) Config() *Config { return rc.cfg }

// Logger returns the logger steps should write diagnostics to. During
// concurrent and parallel stages outside debug mode this logger discards
// everything, so interleaved output from many tasks never reaches the
// console.
func (rc *RunContext) Logger() *logger.Logger { return rc.stepLog }

// Context returns the context.Context of the running execution.
func (rc *RunContext) Context() context.Context { return rc.ctx }

// TempDir returns a named temporary directory under the per-run root,
// creating it if needed. The whole root is removed when the run ends.
// Concurrently scheduled tasks must use distinct names to avoid collisions.
func (rc *RunContext) TempDir(name string) (string, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.closed {
		return "", os.ErrClosed
	}
	if rc.tempRoot == "" {
		root, err := os.MkdirTemp(rc.cfg.WorkDir, "pipekit-"+rc.id+"-")
		if err != nil {
			return "", err
		}
		rc.tempRoot = root
	}
	dir := filepath.Join(rc.tempRoot, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// begin marks the context as consumed by a run. A second run on the same
// context fails.
func (rc *RunContext) begin(ctx context.Context) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.consumed {
		return false
	}
	rc.consumed = true
	rc.ctx = ctx
	return true
}

// setStepLogger swaps the step-visible logger for the coming stage. Stages
// run one at a time, so the swap never races with step invocations.
func (rc *RunContext) setStepLogger(mode ExecutionMode) {
	if rc.cfg.Debug || mode == ModeSequential {
		rc.stepLog = rc.runLog
		return
	}
	rc.stepLog = logger.Discard()
}

// close tears down the per-run temporary root. Cleanup failure is logged,
// never escalated: it must not mask the primary run error.
func (rc *RunContext) close() {
	rc.mu.Lock()
	root := rc.tempRoot
	rc.tempRoot = ""
	rc.closed = true
	rc.mu.Unlock()

	if root == "" {
		return
	}
	if err := os.RemoveAll(root); err != nil {
		rc.runLog.Warn("failed to remove temporary run directory",
			logger.Fields(logger.FieldRun, rc.id, "path", root, logger.FieldError, err.Error()))
	}
}
