package tasks

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/wahoodash/internal/shared"
)

func shellJob(script string) Job {
	return Job{Executable: "/bin/sh", Args: []string{"-c", script}}
}

func newTestRunner(timeout time.Duration) *ProcessRunner {
	return NewProcessRunner(ProcessRunnerOpts{
		Timeout:   timeout,
		WaitDelay: 500 * time.Millisecond,
		Logger:    shared.NewLogger(io.Discard),
	})
}

func TestProcessRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}

	t.Run("NewProcessRunner defaults", func(t *testing.T) {
		r := NewProcessRunner(ProcessRunnerOpts{})
		if r.Timeout() != shared.DefaultTimeout {
			t.Errorf("expected default timeout %s, got %s", shared.DefaultTimeout, r.Timeout())
		}
		if len(r.redact) != 1 || r.redact[0] != "--token" {
			t.Errorf("expected --token to be redacted by default, got %v", r.redact)
		}
	})

	t.Run("exit zero captures stdout exactly", func(t *testing.T) {
		outcome, err := newTestRunner(5*time.Second).Run(context.Background(), shellJob(`printf 'hello\nworld'`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !outcome.Succeeded() {
			t.Errorf("expected success, got %+v", outcome)
		}
		if outcome.Stdout != "hello\nworld" {
			t.Errorf("expected exact stdout, got %q", outcome.Stdout)
		}
		if outcome.PID <= 0 {
			t.Errorf("expected pid to be recorded, got %d", outcome.PID)
		}
	})

	t.Run("nonzero exit keeps code and both streams", func(t *testing.T) {
		outcome, err := newTestRunner(5*time.Second).Run(context.Background(), shellJob(`echo partial; echo boom >&2; exit 3`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if outcome.ExitCode == nil || *outcome.ExitCode != 3 {
			t.Fatalf("expected exit code 3, got %v", outcome.ExitCode)
		}
		if outcome.Succeeded() {
			t.Error("expected failure")
		}
		if outcome.Stdout != "partial\n" {
			t.Errorf("expected stdout, got %q", outcome.Stdout)
		}
		if outcome.Stderr != "boom\n" {
			t.Errorf("expected stderr, got %q", outcome.Stderr)
		}
	})

	t.Run("large output is not truncated", func(t *testing.T) {
		script := `i=0; while [ $i -lt 5000 ]; do echo "line $i"; i=$((i+1)); done`
		outcome, err := newTestRunner(10*time.Second).Run(context.Background(), shellJob(script))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if lines := strings.Count(outcome.Stdout, "\n"); lines != 5000 {
			t.Errorf("expected 5000 lines, got %d", lines)
		}
	})

	t.Run("timeout kills the process", func(t *testing.T) {
		start := time.Now()
		outcome, err := newTestRunner(200*time.Millisecond).Run(context.Background(), shellJob(`echo started; sleep 30`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !outcome.TimedOut {
			t.Fatal("expected timed out outcome")
		}
		if outcome.ExitCode != nil {
			t.Errorf("expected no exit code on timeout, got %d", *outcome.ExitCode)
		}
		if outcome.Succeeded() {
			t.Error("timed out outcome must not succeed")
		}
		if elapsed := time.Since(start); elapsed > 10*time.Second {
			t.Errorf("expected prompt return after timeout, took %s", elapsed)
		}
	})

	t.Run("timeout also kills children", func(t *testing.T) {
		start := time.Now()
		outcome, err := newTestRunner(200*time.Millisecond).Run(context.Background(), shellJob(`sleep 30 & wait`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !outcome.TimedOut {
			t.Error("expected timed out outcome")
		}
		if elapsed := time.Since(start); elapsed > 5*time.Second {
			t.Errorf("child held the job open for %s", elapsed)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(100*time.Millisecond, cancel)

		outcome, err := newTestRunner(10*time.Second).Run(ctx, shellJob(`sleep 30`))
		if !errors.Is(err, shared.ErrCanceled) {
			t.Fatalf("expected ErrCanceled, got %v", err)
		}
		if outcome == nil || outcome.TimedOut {
			t.Errorf("expected non-timeout outcome, got %+v", outcome)
		}
	})

	t.Run("spawn failure", func(t *testing.T) {
		_, err := newTestRunner(time.Second).Run(context.Background(), Job{Executable: "/nonexistent/wahoo-extractor"})
		if !errors.Is(err, shared.ErrSpawnFailed) {
			t.Errorf("expected ErrSpawnFailed, got %v", err)
		}
	})

	t.Run("empty executable", func(t *testing.T) {
		_, err := newTestRunner(time.Second).Run(context.Background(), Job{})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("runs in job dir", func(t *testing.T) {
		dir := t.TempDir()
		job := shellJob(`pwd`)
		job.Dir = dir

		outcome, err := newTestRunner(5*time.Second).Run(context.Background(), job)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want, _ := filepath.EvalSymlinks(dir)
		got, _ := filepath.EvalSymlinks(strings.TrimSpace(outcome.Stdout))
		if got != want {
			t.Errorf("expected cwd %s, got %s", want, got)
		}
	})

	t.Run("passes env", func(t *testing.T) {
		job := shellJob(`printf '%s' "$WAHOO_TEST_VALUE"`)
		job.Env = []string{"WAHOO_TEST_VALUE=42"}

		outcome, err := newTestRunner(5*time.Second).Run(context.Background(), job)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if outcome.Stdout != "42" {
			t.Errorf("expected env value, got %q", outcome.Stdout)
		}
	})
}
