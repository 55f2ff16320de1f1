// Package workflow drives the scan-then-email cycle: generate an output
// name, run the scanner, inspect its stdout, and on success open an email
// draft with the PDF attached.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ribscan/internal/artifact"
	"ribscan/internal/events"
	"ribscan/internal/logger"
	"ribscan/internal/runner"
	"ribscan/internal/settings"
)

const (
	StatusEmailing  = "Switch to the Write: window to Send your Email attachment..."
	StatusCancelled = "Scan cancelled"
)

// ErrCycleInFlight is returned by Start when a cycle has not finished yet.
var ErrCycleInFlight = errors.New("scan cycle already in progress")

// View is the UI surface driven by the orchestrator. All calls are made
// through the Dispatcher.
type View interface {
	SetStartEnabled(enabled bool)
	// SetCancelEnabled overrides the cancel control while start is disabled.
	SetCancelEnabled(enabled bool)
	SetScanProgress(active bool)
	SetEmailProgress(active bool)
	SetStatus(text string)
	// ShowScanError presents one blocking alert. Successive calls must be
	// presented in call order.
	ShowScanError(message string)
}

// Runner runs one external command in the background.
type Runner interface {
	Start(ctx context.Context, cmd runner.Command) <-chan runner.Result
}

// Dispatcher runs fn on the UI goroutine.
type Dispatcher func(fn func())

// Inspector examines the file the scanner produced.
type Inspector func(path string) (artifact.Info, error)

type Orchestrator struct {
	scan  Runner
	email Runner
	view  View

	dispatch  Dispatcher
	publisher events.Publisher
	inspect   Inspector
	logger    logger.Logger
	now       func() time.Time
	newID     func() string

	mu       sync.Mutex
	settings settings.Settings
	state    State
	job      *Job
	cancel   context.CancelFunc
}

type Option func(*Orchestrator)

func WithDispatcher(d Dispatcher) Option {
	return func(o *Orchestrator) {
		o.dispatch = d
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(o *Orchestrator) {
		o.publisher = p
	}
}

func WithInspector(i Inspector) Option {
	return func(o *Orchestrator) {
		o.inspect = i
	}
}

func WithLogger(log logger.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = log
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(o *Orchestrator) {
		o.newID = gen
	}
}

func New(scan, email Runner, view View, s settings.Settings, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		scan:     scan,
		email:    email,
		view:     view,
		settings: s,
		state:    StateIdle,
		dispatch: func(fn func()) { fn() },
		inspect:  artifact.Inspect,
		logger:   logger.NoOp{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SetSettings replaces the settings used by the next cycle.
func (o *Orchestrator) SetSettings(s settings.Settings) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.settings = s
}

func (o *Orchestrator) Settings() settings.Settings {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.settings
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Start begins a new cycle. It must be called on the UI goroutine.
func (o *Orchestrator) Start(ctx context.Context) (Job, error) {
	o.mu.Lock()
	if o.state != StateIdle {
		o.mu.Unlock()
		return Job{}, ErrCycleInFlight
	}

	s := o.settings
	job := NewJob(o.newID(), s.PDFFolder, o.now())
	cycleCtx, cancel := context.WithCancel(ctx)

	o.state = StateScanning
	o.job = &job
	o.cancel = cancel
	o.mu.Unlock()

	o.view.SetStartEnabled(false)
	o.view.SetScanProgress(true)
	o.view.SetStatus("Creating " + job.OutputPath)

	cmd := ScanCommand(s.ScannerCommand, job.OutputPath)
	o.logger.Info("Workflow", "scan started", map[string]interface{}{
		"job_id":  job.ID,
		"output":  job.OutputPath,
		"command": cmd.String(),
	})
	o.publish(EventScanStarted, job, map[string]interface{}{"command": cmd.Argv()})

	done := o.scan.Start(cycleCtx, cmd)
	go func() {
		res := <-done
		o.dispatch(func() {
			o.scanFinished(cycleCtx, job, s, res)
		})
	}()

	return job, nil
}

// Cancel aborts a cycle that is still scanning. The scanner is killed and
// the cycle ends without emailing. Once the email client has been launched
// the cycle is left to finish on its own.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	cancel := o.cancel
	job := o.job
	state := o.state
	o.mu.Unlock()

	if cancel == nil || state != StateScanning {
		return
	}

	fields := map[string]interface{}{}
	if job != nil {
		fields["job_id"] = job.ID
	}
	o.logger.Info("Workflow", "cancel requested", fields)
	cancel()
}

func (o *Orchestrator) Shutdown() {
	o.Cancel()
}

func (o *Orchestrator) scanFinished(ctx context.Context, job Job, s settings.Settings, res runner.Result) {
	o.setState(StateScanComplete)

	o.view.SetScanProgress(false)
	o.view.SetStatus("")

	fields := map[string]interface{}{
		"job_id":    job.ID,
		"exit_code": res.ExitCode,
	}

	switch {
	case ctx.Err() != nil:
		o.logger.Info("Workflow", "scan cancelled", fields)
		o.publish(EventScanFailed, job, map[string]interface{}{"reason": "cancelled"})
		o.finish(job, StatusCancelled)
		return

	case res.LaunchFailed():
		o.logger.Error("Workflow", res.Err, fields)
		o.publish(EventScanFailed, job, map[string]interface{}{"reason": "launch_failed"})
		o.view.ShowScanError(fmt.Sprintf("Could not start scanner: %v", res.Err))
		o.finish(job, "")
		return

	case res.Stdout != "":
		messages := ScanErrors(res.Stdout)
		o.logger.Warning("Workflow", "scanner reported errors", map[string]interface{}{
			"job_id": job.ID,
			"errors": messages,
		})
		o.publish(EventScanFailed, job, map[string]interface{}{
			"reason": "scanner_output",
			"errors": messages,
		})
		for _, msg := range messages {
			o.view.ShowScanError(msg)
		}
		o.finish(job, "")
		return
	}

	// The scanner reports errors on stdout only; its exit code and stderr
	// do not decide success.
	if res.ExitCode != 0 || res.Stderr != "" {
		o.logger.Warning("Workflow", "scanner exit code and stderr ignored", map[string]interface{}{
			"job_id":    job.ID,
			"exit_code": res.ExitCode,
			"stderr":    res.Stderr,
		})
	}

	o.checkArtifact(job)
	o.publish(EventScanSucceeded, job, nil)
	o.startEmail(ctx, job, s)
}

func (o *Orchestrator) checkArtifact(job Job) {
	info, err := o.inspect(job.OutputPath)
	if err != nil {
		o.logger.Warning("Workflow", "scan output not readable", map[string]interface{}{
			"job_id": job.ID,
			"output": job.OutputPath,
			"error":  err.Error(),
		})
		return
	}

	fields := map[string]interface{}{
		"job_id": job.ID,
		"output": info.Path,
		"bytes":  info.Size,
		"mime":   info.MIME,
	}
	if !info.IsPDF() {
		o.logger.Warning("Workflow", "scan output is not a PDF", fields)
		return
	}
	o.logger.Debug("Workflow", "scan output inspected", fields)
}

func (o *Orchestrator) startEmail(ctx context.Context, job Job, s settings.Settings) {
	o.setState(StateEmailing)

	o.view.SetCancelEnabled(false)
	o.view.SetEmailProgress(true)
	o.view.SetStatus(StatusEmailing)

	cmd := EmailCommand(s.EmailCommand, job.OutputPath)
	o.logger.Info("Workflow", "email started", map[string]interface{}{
		"job_id":  job.ID,
		"command": cmd.String(),
	})
	o.publish(EventEmailStarted, job, map[string]interface{}{"command": cmd.Argv()})

	// The compose window holds the user's unsent message; neither Cancel
	// nor shutdown may kill it.
	done := o.email.Start(context.WithoutCancel(ctx), cmd)
	go func() {
		res := <-done
		o.dispatch(func() {
			o.logger.Debug("Workflow", "email client exited", map[string]interface{}{
				"job_id":    job.ID,
				"exit_code": res.ExitCode,
			})
			o.finish(job, "")
		})
	}()
}

// finish ends the cycle and returns to Idle. The start control is
// re-enabled exactly once per cycle, here.
func (o *Orchestrator) finish(job Job, status string) {
	o.mu.Lock()
	o.state = StateDone
	cancel := o.cancel
	o.cancel = nil
	o.job = nil
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	o.view.SetEmailProgress(false)
	o.view.SetStatus(status)
	o.publish(EventCycleDone, job, map[string]interface{}{
		"elapsed_ms": o.now().Sub(job.StartedAt).Milliseconds(),
	})
	o.logger.Info("Workflow", "cycle done", map[string]interface{}{"job_id": job.ID})

	o.setState(StateIdle)
	o.view.SetStartEnabled(true)
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = s
}

func (o *Orchestrator) publish(eventType string, job Job, data map[string]interface{}) {
	if o.publisher == nil {
		return
	}

	payload := map[string]interface{}{
		"job_id": job.ID,
		"output": job.OutputPath,
	}
	for k, v := range data {
		payload[k] = v
	}
	o.publisher.Publish(events.Event{Type: eventType, Data: payload})
}
