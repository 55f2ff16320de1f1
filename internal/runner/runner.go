// Package runner executes one external command at a time on a background
// goroutine and reports its exit code and captured output.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"ribscan/internal/logger"
)

// ErrBusy is returned when a runner is asked to start while a process it
// launched is still running.
var ErrBusy = errors.New("runner busy")

// waitDelay bounds how long a cancelled process may keep its output pipes
// open through orphaned children.
const waitDelay = 2 * time.Second

// Result holds the outcome of a single invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
	Duration time.Duration
}

// LaunchFailed reports whether the process could not be started at all.
func (r Result) LaunchFailed() bool {
	if r.Err == nil {
		return false
	}
	var exitErr *exec.ExitError
	return !errors.As(r.Err, &exitErr)
}

type Runner struct {
	name   string
	goos   string
	logger logger.Logger

	mu   sync.Mutex
	busy bool
}

type Option func(*Runner)

// WithGOOS overrides the host OS used to decide on shell invocation.
func WithGOOS(goos string) Option {
	return func(r *Runner) {
		r.goos = goos
	}
}

func WithLogger(log logger.Logger) Option {
	return func(r *Runner) {
		r.logger = log
	}
}

func New(name string, opts ...Option) *Runner {
	r := &Runner{
		name:   name,
		goos:   runtime.GOOS,
		logger: logger.NoOp{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start runs cmd in the background. The returned channel receives exactly
// one Result and is then closed.
func (r *Runner) Start(ctx context.Context, cmd Command) <-chan Result {
	done := make(chan Result, 1)

	r.mu.Lock()
	if r.busy {
		r.mu.Unlock()
		done <- Result{ExitCode: -1, Err: fmt.Errorf("%s: %w", r.name, ErrBusy)}
		close(done)
		return done
	}
	r.busy = true
	r.mu.Unlock()

	go func() {
		defer close(done)

		result := r.Run(ctx, cmd)

		r.mu.Lock()
		r.busy = false
		r.mu.Unlock()

		done <- result
	}()

	return done
}

// Run executes cmd and blocks until it exits or ctx is cancelled.
func (r *Runner) Run(ctx context.Context, cmd Command) Result {
	name, args := execArgs(r.goos, cmd)

	r.logger.Info("Runner", "starting process", map[string]interface{}{
		"runner":  r.name,
		"command": cmd.String(),
	})

	var stdout, stderr bytes.Buffer
	proc := exec.CommandContext(ctx, name, args...)
	proc.Stdout = &stdout
	proc.Stderr = &stderr
	proc.WaitDelay = waitDelay

	start := time.Now()
	err := proc.Run()

	result := Result{
		Stdout:   decode(stdout.Bytes()),
		Stderr:   decode(stderr.Bytes()),
		Duration: time.Since(start),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		result.Err = fmt.Errorf("%s exited: %w", cmd.Program(), err)
	default:
		result.ExitCode = -1
		result.Err = fmt.Errorf("start %s: %w", cmd.Program(), err)
	}

	if ctx.Err() != nil && result.Err != nil {
		result.Err = fmt.Errorf("%w: %w", ctx.Err(), result.Err)
	}

	fields := map[string]interface{}{
		"runner":      r.name,
		"exit_code":   result.ExitCode,
		"duration_ms": result.Duration.Milliseconds(),
	}
	if result.LaunchFailed() {
		r.logger.Error("Runner", result.Err, fields)
	} else {
		r.logger.Info("Runner", "process finished", fields)
	}

	return result
}

func decode(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}
