package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newBufferLogger(level zerolog.Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return FromZerolog(zerolog.New(&buf).Level(level)), &buf
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stderr" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{Level: "verbose", Format: "json"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid level")
	}
	cfg = Config{Level: "debug", Format: "yaml"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid format")
	}
	cfg = Config{Level: "debug", Format: "json"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLogger_Fields(t *testing.T) {
	l, buf := newBufferLogger(zerolog.DebugLevel)
	l.Info("stage done", Fields("step", "convert", "items", 3))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}
	if entry["step"] != "convert" {
		t.Errorf("step field missing: %v", entry)
	}
	if entry["items"] != float64(3) {
		t.Errorf("items field missing: %v", entry)
	}
}

func TestLogger_WithComponent(t *testing.T) {
	l, buf := newBufferLogger(zerolog.DebugLevel)
	l.WithComponent("executor").Debug("dispatch")
	if !strings.Contains(buf.String(), `"component":"executor"`) {
		t.Errorf("component tag missing: %s", buf.String())
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(zerolog.WarnLevel)
	l.Debug("hidden")
	l.Info("hidden too")
	l.Warn("visible")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("low-level events leaked: %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn event missing: %s", out)
	}
}

func TestDiscard(t *testing.T) {
	// Must not panic and must not write anywhere observable.
	l := Discard()
	l.Error("dropped", Fields("step", "x"))
	l.WithComponent("worker").Info("dropped")
}

func TestFields_OddArguments(t *testing.T) {
	m := Fields("a", 1, "dangling")
	if len(m) != 1 || m["a"] != 1 {
		t.Errorf("unexpected map: %v", m)
	}
}

func TestErrorAndDurationFields(t *testing.T) {
	m := ErrorFields("simulate", errTest{})
	if m[FieldStep] != "simulate" || m[FieldError] != "test error" {
		t.Errorf("unexpected error fields: %v", m)
	}
	d := DurationFields("simulate", 1500*1000*1000)
	if d[FieldDuration] != int64(1500) {
		t.Errorf("unexpected duration fields: %v", d)
	}
}

type errTest struct{}

func (errTest) Error() string { return "test error" }
