// Package events is a small in-process publish/subscribe bus. Handlers are
// registered against named event types and run off the publisher's goroutine.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ribscan/internal/logger"
)

type Event struct {
	Type      string
	Timestamp time.Time
	Data      map[string]interface{}
}

// Publisher is the side of the bus producers depend on.
type Publisher interface {
	Publish(event Event)
}

type Handler interface {
	Handle(event Event)
	ID() string
}

type handlerFunc struct {
	id string
	fn func(Event)
}

func (h handlerFunc) Handle(event Event) { h.fn(event) }
func (h handlerFunc) ID() string         { return h.id }

// HandlerFunc adapts a function into a Handler identified by id.
func HandlerFunc(id string, fn func(Event)) Handler {
	return handlerFunc{id: id, fn: fn}
}

// Wildcard subscribers receive every event type.
const Wildcard = "*"

type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
	buffer      chan Event
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	logger      logger.Logger
}

func NewBus(bufferSize int, log logger.Logger) *Bus {
	ctx, cancel := context.WithCancel(context.Background())

	bus := &Bus{
		subscribers: make(map[string][]Handler),
		buffer:      make(chan Event, bufferSize),
		ctx:         ctx,
		cancel:      cancel,
		logger:      log,
	}

	bus.startWorker()
	return bus
}

// Publish enqueues event. It never blocks; events are dropped when the
// buffer is full or the bus is shut down.
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case <-b.ctx.Done():
		return
	default:
	}

	select {
	case b.buffer <- event:
	default:
	}
}

func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Shutdown stops the worker. Pending events are discarded.
func (b *Bus) Shutdown() {
	b.cancel()
	b.wg.Wait()
}

func (b *Bus) startWorker() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		for {
			select {
			case event := <-b.buffer:
				b.dispatchEvent(event)
			case <-b.ctx.Done():
				return
			}
		}
	}()
}

// dispatchEvent delivers in subscription order on the worker goroutine, so
// a single handler observes events in publish order.
func (b *Bus) dispatchEvent(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subscribers[event.Type])+len(b.subscribers[Wildcard]))
	handlers = append(handlers, b.subscribers[event.Type]...)
	handlers = append(handlers, b.subscribers[Wildcard]...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Warning("EventBus", "handler panicked", map[string]interface{}{
						"handler": h.ID(),
						"event":   event.Type,
						"panic":   fmt.Sprint(r),
					})
				}
			}()
			h.Handle(event)
		}(handler)
	}
}
