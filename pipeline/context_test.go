package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openscenario/pipekit/logger"
)

// quietConfig keeps test runs silent and both pools small.
func quietConfig() *Config {
	return &Config{
		Threads:   4,
		Processes: 2,
		Logging:   logger.Config{Level: "error"},
	}
}

func TestDefaultConfigEnablesPools(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Threads <= 0 {
		t.Errorf("Threads = %d, want > 0", cfg.Threads)
	}
	if cfg.Processes <= 0 {
		t.Errorf("Processes = %d, want > 0", cfg.Processes)
	}
}

func TestConfigSetting(t *testing.T) {
	cfg := &Config{Settings: map[string]string{"solver": "fast"}}
	if got := cfg.Setting("solver", "exact"); got != "fast" {
		t.Errorf("Setting(solver) = %q, want %q", got, "fast")
	}
	if got := cfg.Setting("missing", "exact"); got != "exact" {
		t.Errorf("Setting(missing) = %q, want default", got)
	}
}

func TestTempDirScopedToRun(t *testing.T) {
	work := t.TempDir()
	cfg := quietConfig()
	cfg.WorkDir = work
	rc := NewRunContext(cfg)

	dir, err := rc.TempDir("meshes")
	if err != nil {
		t.Fatalf("TempDir: %v", err)
	}
	if !strings.HasPrefix(dir, work) {
		t.Errorf("temp dir %q not under work dir %q", dir, work)
	}
	if filepath.Base(dir) != "meshes" {
		t.Errorf("temp dir %q, want leaf %q", dir, "meshes")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("temp dir not created: %v", err)
	}

	again, err := rc.TempDir("meshes")
	if err != nil || again != dir {
		t.Errorf("second TempDir(meshes) = (%q, %v), want same path", again, err)
	}

	rc.close()
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("temp dir survived close: %v", err)
	}
}

func TestTempDirAfterClose(t *testing.T) {
	rc := NewRunContext(quietConfig())
	rc.close()
	if _, err := rc.TempDir("late"); err == nil {
		t.Error("TempDir succeeded on a closed context")
	}
}

func TestCloseWithoutTempDir(t *testing.T) {
	rc := NewRunContext(quietConfig())
	// Nothing allocated; close must be a no-op.
	rc.close()
}

func TestStepLoggerSuppression(t *testing.T) {
	rc := NewRunContext(quietConfig())

	rc.setStepLogger(ModeConcurrent)
	if rc.Logger() == rc.runLog {
		t.Error("concurrent stage kept the run logger")
	}
	rc.setStepLogger(ModeSequential)
	if rc.Logger() != rc.runLog {
		t.Error("sequential stage did not restore the run logger")
	}

	rc.cfg.Debug = true
	rc.setStepLogger(ModeParallel)
	if rc.Logger() != rc.runLog {
		t.Error("debug mode did not unblock step logging")
	}
}

func TestNewRunContextNilConfig(t *testing.T) {
	rc := NewRunContext(nil)
	if rc.Config() == nil {
		t.Fatal("nil config not defaulted")
	}
	if rc.ID() == "" {
		t.Error("run id empty")
	}
}
