package workflow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ribscan/internal/artifact"
	"ribscan/internal/events"
	"ribscan/internal/runner"
	"ribscan/internal/settings"
)

type fakeRunner struct {
	mu     sync.Mutex
	cmds   []runner.Command
	result func(ctx context.Context, cmd runner.Command) runner.Result
}

func returning(res runner.Result) *fakeRunner {
	return &fakeRunner{result: func(context.Context, runner.Command) runner.Result { return res }}
}

func (f *fakeRunner) Start(ctx context.Context, cmd runner.Command) <-chan runner.Result {
	f.mu.Lock()
	f.cmds = append(f.cmds, cmd)
	f.mu.Unlock()

	ch := make(chan runner.Result, 1)
	go func() {
		defer close(ch)
		ch <- f.result(ctx, cmd)
	}()
	return ch
}

func (f *fakeRunner) commands() []runner.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]runner.Command(nil), f.cmds...)
}

type fakeView struct {
	mu     sync.Mutex
	calls  []string
	alerts []string
	cycles chan struct{}
}

func newFakeView() *fakeView {
	return &fakeView{cycles: make(chan struct{}, 8)}
}

func (v *fakeView) record(call string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls = append(v.calls, call)
}

func (v *fakeView) SetStartEnabled(enabled bool) {
	v.record(fmt.Sprintf("start:%t", enabled))
	if enabled {
		v.cycles <- struct{}{}
	}
}

func (v *fakeView) SetCancelEnabled(enabled bool) { v.record(fmt.Sprintf("cancel:%t", enabled)) }
func (v *fakeView) SetScanProgress(active bool)  { v.record(fmt.Sprintf("scan:%t", active)) }
func (v *fakeView) SetEmailProgress(active bool) { v.record(fmt.Sprintf("email:%t", active)) }
func (v *fakeView) SetStatus(text string)        { v.record("status:" + text) }

func (v *fakeView) ShowScanError(message string) {
	v.record("alert:" + message)
	v.mu.Lock()
	v.alerts = append(v.alerts, message)
	v.mu.Unlock()
}

func (v *fakeView) snapshot() ([]string, []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.calls...), append([]string(nil), v.alerts...)
}

func (v *fakeView) count(call string) int {
	calls, _ := v.snapshot()
	n := 0
	for _, c := range calls {
		if c == call {
			n++
		}
	}
	return n
}

func (v *fakeView) waitCycle(t *testing.T) {
	t.Helper()
	select {
	case <-v.cycles:
	case <-time.After(5 * time.Second):
		t.Fatal("cycle did not finish")
	}
}

type fakePublisher struct {
	mu    sync.Mutex
	types []string
}

func (p *fakePublisher) Publish(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.types = append(p.types, e.Type)
}

var fixedStart = time.Date(2026, time.October, 19, 10, 11, 12, 0, time.Local)

func testSettings(t *testing.T) settings.Settings {
	return settings.Settings{
		PDFFolder:      t.TempDir(),
		ScannerCommand: "/opt/naps2/naps2.console",
		EmailCommand:   "/usr/bin/thunderbird",
	}
}

func pdfInspector(path string) (artifact.Info, error) {
	return artifact.Info{Path: path, Size: 1024, MIME: "application/pdf"}, nil
}

func newTestOrchestrator(scan, email Runner, view View, s settings.Settings, opts ...Option) *Orchestrator {
	base := []Option{
		WithClock(func() time.Time { return fixedStart }),
		WithIDGenerator(func() string { return "job-1" }),
		WithInspector(pdfInspector),
	}
	return New(scan, email, view, s, append(base, opts...)...)
}

func TestSuccessfulScanDispatchesOneEmail(t *testing.T) {
	s := testSettings(t)
	scan := returning(runner.Result{})
	email := returning(runner.Result{})
	view := newFakeView()

	o := newTestOrchestrator(scan, email, view, s)

	job, err := o.Start(context.Background())
	require.NoError(t, err)
	view.waitCycle(t)

	want := filepath.Join(s.PDFFolder, "2026-10-19_10.11.12.pdf")
	assert.Equal(t, want, job.OutputPath)
	assert.Equal(t, "job-1", job.ID)

	require.Len(t, scan.commands(), 1)
	assert.Equal(t, []string{s.ScannerCommand, "-o", want}, scan.commands()[0].Argv())

	require.Len(t, email.commands(), 1)
	assert.Equal(t, []string{s.EmailCommand, "-compose", "attachment='" + want + "'"}, email.commands()[0].Argv())

	calls, alerts := view.snapshot()
	assert.Empty(t, alerts)
	assert.Equal(t, []string{"start:false", "scan:true", "status:Creating " + want}, calls[:3])
	assert.Contains(t, calls, "email:true")
	assert.Contains(t, calls, "status:"+StatusEmailing)
	assert.Equal(t, "start:true", calls[len(calls)-1])
	assert.Equal(t, 1, view.count("start:true"))
	assert.Equal(t, 1, view.count("start:false"))
	assert.Equal(t, StateIdle, o.State())
}

func TestScannerOutputAlertsInOrderAndSkipsEmail(t *testing.T) {
	s := testSettings(t)
	scan := returning(runner.Result{Stdout: "Paper jam\nLow battery\n"})
	email := returning(runner.Result{})
	view := newFakeView()

	o := newTestOrchestrator(scan, email, view, s)

	_, err := o.Start(context.Background())
	require.NoError(t, err)
	view.waitCycle(t)

	_, alerts := view.snapshot()
	assert.Equal(t, []string{"Paper jam", "Low battery"}, alerts)
	assert.Empty(t, email.commands())
	assert.Equal(t, 1, view.count("start:true"))
	assert.Zero(t, view.count("email:true"))
	assert.Equal(t, StateIdle, o.State())
}

func TestBlankScannerOutputStillSkipsEmail(t *testing.T) {
	scan := returning(runner.Result{Stdout: "\n\r\n"})
	email := returning(runner.Result{})
	view := newFakeView()

	o := newTestOrchestrator(scan, email, view, testSettings(t))

	_, err := o.Start(context.Background())
	require.NoError(t, err)
	view.waitCycle(t)

	_, alerts := view.snapshot()
	assert.Empty(t, alerts)
	assert.Empty(t, email.commands())
}

func TestExitCodeAndStderrDoNotBlockEmail(t *testing.T) {
	scan := returning(runner.Result{ExitCode: 2, Stderr: "driver warning"})
	email := returning(runner.Result{})
	view := newFakeView()

	o := newTestOrchestrator(scan, email, view, testSettings(t))

	_, err := o.Start(context.Background())
	require.NoError(t, err)
	view.waitCycle(t)

	assert.Len(t, email.commands(), 1)
}

func TestLaunchFailureAlertsOnceAndSkipsEmail(t *testing.T) {
	scan := returning(runner.Result{ExitCode: -1, Err: errors.New(`exec: "naps2.console": executable file not found in $PATH`)})
	email := returning(runner.Result{})
	view := newFakeView()

	o := newTestOrchestrator(scan, email, view, testSettings(t))

	_, err := o.Start(context.Background())
	require.NoError(t, err)
	view.waitCycle(t)

	_, alerts := view.snapshot()
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0], "Could not start scanner")
	assert.Empty(t, email.commands())
	assert.Equal(t, 1, view.count("start:true"))
}

func TestUnreadableArtifactDoesNotBlockEmail(t *testing.T) {
	scan := returning(runner.Result{})
	email := returning(runner.Result{})
	view := newFakeView()

	o := newTestOrchestrator(scan, email, view, testSettings(t),
		WithInspector(func(path string) (artifact.Info, error) {
			return artifact.Info{}, errors.New("missing")
		}),
	)

	_, err := o.Start(context.Background())
	require.NoError(t, err)
	view.waitCycle(t)

	assert.Len(t, email.commands(), 1)
}

func TestStartWhileCycleInFlight(t *testing.T) {
	release := make(chan struct{})
	scan := &fakeRunner{result: func(context.Context, runner.Command) runner.Result {
		<-release
		return runner.Result{}
	}}
	email := returning(runner.Result{})
	view := newFakeView()

	o := newTestOrchestrator(scan, email, view, testSettings(t))

	_, err := o.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateScanning, o.State())

	_, err = o.Start(context.Background())
	assert.ErrorIs(t, err, ErrCycleInFlight)

	close(release)
	view.waitCycle(t)

	assert.Len(t, scan.commands(), 1)
	assert.Len(t, email.commands(), 1)
	assert.Equal(t, 1, view.count("start:false"))
	assert.Equal(t, 1, view.count("start:true"))
}

func TestCancelDuringScanSkipsEmail(t *testing.T) {
	started := make(chan struct{})
	scan := &fakeRunner{result: func(ctx context.Context, _ runner.Command) runner.Result {
		close(started)
		<-ctx.Done()
		return runner.Result{ExitCode: -1, Err: ctx.Err()}
	}}
	email := returning(runner.Result{})
	view := newFakeView()

	o := newTestOrchestrator(scan, email, view, testSettings(t))

	_, err := o.Start(context.Background())
	require.NoError(t, err)
	<-started

	o.Cancel()
	view.waitCycle(t)

	calls, alerts := view.snapshot()
	assert.Empty(t, alerts)
	assert.Empty(t, email.commands())
	assert.Contains(t, calls, "status:"+StatusCancelled)
	assert.Equal(t, StateIdle, o.State())
}

func TestShutdownWhileEmailingLeavesEmailRunning(t *testing.T) {
	emailing := make(chan context.Context, 1)
	release := make(chan struct{})
	email := &fakeRunner{result: func(ctx context.Context, _ runner.Command) runner.Result {
		emailing <- ctx
		<-release
		return runner.Result{Err: ctx.Err()}
	}}
	view := newFakeView()

	o := newTestOrchestrator(returning(runner.Result{}), email, view, testSettings(t))

	_, err := o.Start(context.Background())
	require.NoError(t, err)

	var emailCtx context.Context
	select {
	case emailCtx = <-emailing:
	case <-time.After(5 * time.Second):
		t.Fatal("email client not started")
	}
	require.Equal(t, StateEmailing, o.State())

	o.Shutdown()
	o.Cancel()
	assert.NoError(t, emailCtx.Err())
	assert.Equal(t, StateEmailing, o.State())

	close(release)
	view.waitCycle(t)

	calls, _ := view.snapshot()
	assert.Contains(t, calls, "cancel:false")
	assert.NotContains(t, calls, "status:"+StatusCancelled)
	assert.NoError(t, emailCtx.Err())
}

func TestCancelWhenIdleIsNoop(t *testing.T) {
	view := newFakeView()
	o := newTestOrchestrator(returning(runner.Result{}), returning(runner.Result{}), view, testSettings(t))

	assert.NotPanics(t, o.Cancel)
	calls, _ := view.snapshot()
	assert.Empty(t, calls)
}

func TestSettingsChangeAppliesToNextCycle(t *testing.T) {
	release := make(chan struct{})
	scan := &fakeRunner{result: func(context.Context, runner.Command) runner.Result {
		<-release
		return runner.Result{}
	}}
	email := returning(runner.Result{})
	view := newFakeView()

	first := testSettings(t)
	o := newTestOrchestrator(scan, email, view, first)

	_, err := o.Start(context.Background())
	require.NoError(t, err)

	second := settings.Settings{
		PDFFolder:      t.TempDir(),
		ScannerCommand: "/usr/local/bin/naps2",
		EmailCommand:   "/usr/local/bin/thunderbird",
	}
	o.SetSettings(second)
	close(release)
	view.waitCycle(t)

	require.Len(t, email.commands(), 1)
	assert.Equal(t, first.EmailCommand, email.commands()[0].Program())

	_, err = o.Start(context.Background())
	require.NoError(t, err)
	view.waitCycle(t)

	require.Len(t, email.commands(), 2)
	assert.Equal(t, second.EmailCommand, email.commands()[1].Program())
	assert.Equal(t, second.ScannerCommand, scan.commands()[1].Program())
}

func TestEventsPublishedPerTransition(t *testing.T) {
	pub := &fakePublisher{}
	view := newFakeView()
	o := newTestOrchestrator(returning(runner.Result{}), returning(runner.Result{}), view, testSettings(t),
		WithPublisher(pub))

	_, err := o.Start(context.Background())
	require.NoError(t, err)
	view.waitCycle(t)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.Equal(t, []string{EventScanStarted, EventScanSucceeded, EventEmailStarted, EventCycleDone}, pub.types)
}

func TestDispatcherIsUsedForCompletions(t *testing.T) {
	var mu sync.Mutex
	dispatched := 0
	dispatch := func(fn func()) {
		mu.Lock()
		dispatched++
		mu.Unlock()
		fn()
	}

	view := newFakeView()
	o := newTestOrchestrator(returning(runner.Result{}), returning(runner.Result{}), view, testSettings(t),
		WithDispatcher(dispatch))

	_, err := o.Start(context.Background())
	require.NoError(t, err)
	view.waitCycle(t)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, dispatched)
}
