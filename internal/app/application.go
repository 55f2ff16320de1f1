package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"ribscan/internal/config"
	"ribscan/internal/events"
	"ribscan/internal/gui"
	"ribscan/internal/logger"
	"ribscan/internal/runner"
	"ribscan/internal/settings"
	"ribscan/internal/shutdown"
	"ribscan/internal/workflow"
)

const (
	AppName    = "Ribscan"
	AppID      = "com.ribstone.ribscan"
	AppVersion = "1.0.0"

	IconFile = "icon.png"

	WindowWidth  = 560
	WindowHeight = 300

	eventBufferSize = 64
)

type Application struct {
	fyneApp fyne.App
	window  fyne.Window
	logger  logger.Logger

	guiManager   *gui.Manager
	store        *settings.Store
	orchestrator *workflow.Orchestrator
	bus          *events.Bus
	shutdown     *shutdown.Manager

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApplication builds the desktop application from runtime options.
func NewApplication(cfg config.Config, log logger.Logger) (*Application, error) {
	return newApplication(fyneapp.NewWithID(AppID), cfg, log)
}

func newApplication(fyneApp fyne.App, cfg config.Config, log logger.Logger) (*Application, error) {
	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(WindowWidth, WindowHeight))
	window.CenterOnScreen()
	window.SetMaster()

	log.Info("Application", "starting application", map[string]interface{}{
		"version":       AppVersion,
		"settings_file": cfg.SettingsFile,
		"log_level":     cfg.LogLevel,
	})

	store, err := settings.NewStore(cfg.SettingsFile, settings.WithLogger(log))
	if err != nil {
		return nil, err
	}
	current, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	guiManager := gui.NewManager(window, log)
	guiManager.SetSettings(current)

	bus := events.NewBus(eventBufferSize, log)
	bus.Subscribe(events.Wildcard, auditHandler(log))

	orchestrator := workflow.New(
		runner.New("scan", runner.WithLogger(log)),
		runner.New("email", runner.WithLogger(log)),
		guiManager,
		current,
		workflow.WithDispatcher(fyne.Do),
		workflow.WithPublisher(bus),
		workflow.WithLogger(log),
	)

	ctx, cancel := context.WithCancel(context.Background())

	a := &Application{
		fyneApp:      fyneApp,
		window:       window,
		logger:       log,
		guiManager:   guiManager,
		store:        store,
		orchestrator: orchestrator,
		bus:          bus,
		shutdown:     shutdown.NewManager(log),
		ctx:          ctx,
		cancel:       cancel,
	}

	a.shutdown.Register("events", bus)
	a.shutdown.Register("workflow", orchestrator)
	a.shutdown.Register("context", shutdown.Func(cancel))

	a.setupHandlers()
	a.setupMenus()
	a.loadIcon()

	log.Info("Application", "initialization complete", map[string]interface{}{
		"settings_path": store.Path(),
	})
	return a, nil
}

func (a *Application) setupHandlers() {
	handlers := NewHandlers(a.ctx, a.orchestrator, a.store, a.guiManager, a.logger)

	a.guiManager.SetStartHandler(handlers.HandleStart)
	a.guiManager.SetCancelHandler(handlers.HandleCancel)
	a.guiManager.SetSaveHandler(handlers.HandleSave)
}

func (a *Application) loadIcon() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}

	path := filepath.Join(wd, IconFile)
	if _, err := os.Stat(path); err != nil {
		return
	}

	icon, err := fyne.LoadResourceFromPath(path)
	if err != nil {
		a.logger.Warning("Application", "icon not loaded", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return
	}
	a.fyneApp.SetIcon(icon)
	a.window.SetIcon(icon)
}

// Run shows the window and blocks until the UI loop exits.
func (a *Application) Run() error {
	a.window.SetCloseIntercept(func() {
		a.logger.Info("Application", "shutdown requested", nil)
		a.shutdown.Shutdown()
		a.window.Close()
	})
	a.fyneApp.Lifecycle().SetOnStopped(a.shutdown.Shutdown)
	a.shutdown.Listen(func() {
		fyne.Do(a.fyneApp.Quit)
	})

	a.window.SetContent(a.guiManager.GetMainContainer())
	a.window.Show()

	a.logger.Info("Application", "GUI displayed", nil)
	a.fyneApp.Run()

	return nil
}

// Shutdown runs the shutdown sequence without quitting the UI loop.
func (a *Application) Shutdown() {
	a.shutdown.Shutdown()
}

func auditHandler(log logger.Logger) events.Handler {
	return events.HandlerFunc("audit", func(e events.Event) {
		fields := map[string]interface{}{
			"event": e.Type,
			"at":    e.Timestamp,
		}
		for k, v := range e.Data {
			fields[k] = v
		}
		log.Debug("Events", "workflow event", fields)
	})
}
