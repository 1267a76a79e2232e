//go:build linux || darwin || freebsd || netbsd || openbsd

package tasks

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"
)

func TestProcessRunnerReapsOnTimeout(t *testing.T) {
	outcome, err := newTestRunner(200*time.Millisecond).Run(context.Background(), shellJob(`sleep 30`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !outcome.TimedOut {
		t.Fatal("expected timed out outcome")
	}

	if err := syscall.Kill(outcome.PID, 0); !errors.Is(err, syscall.ESRCH) {
		t.Errorf("expected process %d to be gone, got %v", outcome.PID, err)
	}
}
