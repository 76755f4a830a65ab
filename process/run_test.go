package process

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRun_CapturesStdout(t *testing.T) {
	res, err := Run(context.Background(), Command{
		Binary: "sh",
		Args:   []string{"-c", "echo hello"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(res.Stdout)) != "hello" {
		t.Errorf("unexpected stdout: %q", res.Stdout)
	}
	if res.ExitCode != 0 {
		t.Errorf("unexpected exit code: %d", res.ExitCode)
	}
}

func TestRun_Stdin(t *testing.T) {
	res, err := Run(context.Background(), Command{
		Binary: "cat",
		Stdin:  strings.NewReader("payload"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Stdout) != "payload" {
		t.Errorf("unexpected stdout: %q", res.Stdout)
	}
}

func TestRun_NonzeroExit(t *testing.T) {
	res, err := Run(context.Background(), Command{
		Binary: "sh",
		Args:   []string{"-c", "echo oops >&2; exit 3"},
	})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Code != 3 {
		t.Errorf("unexpected code: %d", exitErr.Code)
	}
	if res == nil || res.ExitCode != 3 {
		t.Errorf("result should carry the exit code: %+v", res)
	}
	if !strings.Contains(exitErr.Error(), "oops") {
		t.Errorf("stderr missing from message: %s", exitErr.Error())
	}
}

func TestRun_MissingBinary(t *testing.T) {
	res, err := Run(context.Background(), Command{Binary: "definitely-not-a-binary-pipekit"})
	if err == nil {
		t.Fatal("expected spawn error")
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		t.Errorf("spawn failure must not be an ExitError: %v", err)
	}
	if res != nil {
		t.Errorf("no result expected for spawn failure, got %+v", res)
	}
}

func TestRun_EmptyBinary(t *testing.T) {
	if _, err := Run(context.Background(), Command{}); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestRun_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Run(ctx, Command{
		Binary:      "sleep",
		Args:        []string{"10"},
		GracePeriod: time.Second,
	})
	if err == nil {
		t.Fatal("expected error from canceled context")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("process was not terminated promptly")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
}

func TestRun_Env(t *testing.T) {
	res, err := Run(context.Background(), Command{
		Binary: "sh",
		Args:   []string{"-c", "echo $PIPEKIT_TEST_VAR"},
		Env:    []string{"PIPEKIT_TEST_VAR=42"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(res.Stdout)) != "42" {
		t.Errorf("env not propagated: %q", res.Stdout)
	}
}
