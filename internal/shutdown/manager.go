package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"ribscan/internal/logger"
)

const componentTimeout = 10 * time.Second

type Shutdownable interface {
	Shutdown()
}

// Func adapts a plain function into a Shutdownable.
type Func func()

func (f Func) Shutdown() { f() }

type component struct {
	name string
	c    Shutdownable
}

type Manager struct {
	components []component
	logger     logger.Logger
	timeout    time.Duration
	mu         sync.Mutex
	done       chan struct{}
}

func NewManager(log logger.Logger) *Manager {
	return &Manager{
		logger:  log,
		timeout: componentTimeout,
		done:    make(chan struct{}),
	}
}

// Register adds a component. Components shut down in reverse registration
// order.
func (m *Manager) Register(name string, c Shutdownable) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.components = append(m.components, component{name: name, c: c})
}

// Listen runs the shutdown sequence on SIGINT or SIGTERM and then calls
// onSignal, typically to quit the UI loop.
func (m *Manager) Listen(onSignal func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			m.logger.Info("ShutdownManager", "shutdown signal received", map[string]interface{}{
				"signal": sig.String(),
			})
			m.Shutdown()
			if onSignal != nil {
				onSignal()
			}
		case <-m.done:
		}
		signal.Stop(sigChan)
	}()
}

// Shutdown stops every registered component once. Later calls return
// immediately.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.done:
		return
	default:
		close(m.done)
	}

	m.logger.Info("ShutdownManager", "shutdown sequence initiated", map[string]interface{}{
		"components": len(m.components),
	})

	for i := len(m.components) - 1; i >= 0; i-- {
		comp := m.components[i]

		done := make(chan struct{})
		go func() {
			defer close(done)
			comp.c.Shutdown()
		}()

		select {
		case <-done:
			m.logger.Debug("ShutdownManager", "component stopped", map[string]interface{}{
				"component": comp.name,
			})
		case <-time.After(m.timeout):
			m.logger.Warning("ShutdownManager", "component shutdown timeout", map[string]interface{}{
				"component": comp.name,
			})
		}
	}

	m.logger.Info("ShutdownManager", "shutdown sequence completed", nil)
}
