package tasks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wahoodash/internal/shared"
)

// Job describes one invocation of the external extraction program.
type Job struct {
	Executable string
	Args       []string
	Dir        string   // working directory; empty means the current one
	Env        []string // nil inherits the parent environment
}

// Outcome is the terminal state of a [Job].
//
// ExitCode is nil when the process was killed on timeout.
type Outcome struct {
	ExitCode *int
	Stdout   string
	Stderr   string
	TimedOut bool
	PID      int
	Duration time.Duration
}

// Succeeded reports whether the process exited on its own with status 0.
func (o *Outcome) Succeeded() bool {
	return !o.TimedOut && o.ExitCode != nil && *o.ExitCode == 0
}

// JobRunner spawns and supervises an external process.
type JobRunner interface {
	// Run blocks until the process exits, the runner's timeout elapses, or ctx is canceled.
	Run(ctx context.Context, job Job) (*Outcome, error)
}

// ProcessRunner implements [JobRunner] with [exec.CommandContext].
type ProcessRunner struct {
	timeout   time.Duration
	waitDelay time.Duration
	redact    []string
	logger    *log.Logger
}

// ProcessRunnerOpts configures a [ProcessRunner].
type ProcessRunnerOpts struct {
	Timeout     time.Duration // hard wall-clock limit (default 60s)
	WaitDelay   time.Duration // how long to wait for output pipes after a kill (default 2s)
	RedactFlags []string      // flags whose values are hidden in logs (default --token)
	Logger      *log.Logger
}

// NewProcessRunner creates a new [ProcessRunner].
func NewProcessRunner(opts ProcessRunnerOpts) *ProcessRunner {
	if opts.Timeout <= 0 {
		opts.Timeout = shared.DefaultTimeout
	}
	if opts.WaitDelay <= 0 {
		opts.WaitDelay = 2 * time.Second
	}
	if opts.RedactFlags == nil {
		opts.RedactFlags = []string{"--token"}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &ProcessRunner{
		timeout:   opts.Timeout,
		waitDelay: opts.WaitDelay,
		redact:    opts.RedactFlags,
		logger:    shared.WithLogger(opts.Logger, "component", "runner"),
	}
}

// Timeout returns the configured hard limit.
func (r *ProcessRunner) Timeout() time.Duration {
	return r.timeout
}

// Run spawns the job and waits for it.
//
// Output is accumulated while the process runs; the call returns once the process has exited
// and been reaped. On timeout the process (and its process group where supported) is killed and
// the outcome has TimedOut set. If ctx is canceled first the process is killed and the error wraps
// [shared.ErrCanceled]. A process that cannot be started yields an error wrapping [shared.ErrSpawnFailed].
func (r *ProcessRunner) Run(ctx context.Context, job Job) (*Outcome, error) {
	if job.Executable == "" {
		return nil, fmt.Errorf("%w: executable", shared.ErrMissingArgument)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, job.Executable, job.Args...)
	cmd.Dir = job.Dir
	cmd.Env = job.Env
	cmd.WaitDelay = r.waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	configureProcess(cmd)

	logger := r.logger.With("executable", job.Executable)
	logger.Debug("starting job", "args", shared.RedactArgs(job.Args, r.redact...), "timeout", r.timeout)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrSpawnFailed, job.Executable, err)
	}

	outcome := &Outcome{PID: cmd.Process.Pid}
	waitErr := cmd.Wait()

	outcome.Duration = time.Since(start)
	outcome.Stdout = stdout.String()
	outcome.Stderr = stderr.String()
	logger = logger.With("pid", outcome.PID, "duration", outcome.Duration)

	if waitErr == nil {
		code := 0
		outcome.ExitCode = &code
		logger.Debug("job exited", "code", code)
		return outcome, nil
	}

	if ctx.Err() != nil {
		logger.Warn("job canceled", "err", ctx.Err())
		return outcome, fmt.Errorf("%w: %v", shared.ErrCanceled, ctx.Err())
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		outcome.TimedOut = true
		logger.Warn("job timed out and was killed", "timeout", r.timeout)
		return outcome, nil
	}

	// Exited on its own with a nonzero status, or exited cleanly but left its
	// output pipes open past WaitDelay (exec.ErrWaitDelay).
	if cmd.ProcessState != nil {
		code := cmd.ProcessState.ExitCode()
		outcome.ExitCode = &code
		logger.Debug("job exited", "code", code, "err", waitErr)
		return outcome, nil
	}

	return outcome, fmt.Errorf("failed to wait for %s: %w", job.Executable, waitErr)
}
