// Package events provides a claim event bus implementation using Go channels.
package events

import (
	"context"
	"sync"

	domainClaims "github.com/pharmafield/expenseflow/internal/domain/claims"
)

// Bus provides a publish-subscribe system for claim events. Subscribers
// receive on buffered channels; slow subscribers drop events rather than
// block lifecycle operations.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[domainClaims.ClaimEventType][]chan *domainClaims.ClaimEvent
	handlers    map[domainClaims.ClaimEventType][]domainClaims.EventHandler
	bufferSize  int
	closed      bool
}

// Option configures the Bus.
type Option func(*Bus)

// WithBufferSize sets the subscriber channel buffer size.
func WithBufferSize(size int) Option {
	return func(b *Bus) {
		b.bufferSize = size
	}
}

// Wildcard subscribes to every event type.
const Wildcard domainClaims.ClaimEventType = "*"

// New creates a new Bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		subscribers: make(map[domainClaims.ClaimEventType][]chan *domainClaims.ClaimEvent),
		handlers:    make(map[domainClaims.ClaimEventType][]domainClaims.EventHandler),
		bufferSize:  100,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Subscribe creates a channel to receive events of the given type.
func (b *Bus) Subscribe(eventType domainClaims.ClaimEventType) <-chan *domainClaims.ClaimEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan *domainClaims.ClaimEvent, b.bufferSize)
	b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a channel to receive all events.
func (b *Bus) SubscribeAll() <-chan *domainClaims.ClaimEvent {
	return b.Subscribe(Wildcard)
}

// On registers a handler for events of the given type. Handlers run on
// their own goroutine per event.
func (b *Bus) On(eventType domainClaims.ClaimEventType, handler domainClaims.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit publishes an event to all subscribers and handlers.
func (b *Bus) Emit(event *domainClaims.ClaimEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, ch := range b.subscribers[event.Type] {
		select {
		case ch <- event:
		default:
			// Channel full, skip (non-blocking)
		}
	}

	for _, ch := range b.subscribers[Wildcard] {
		select {
		case ch <- event:
		default:
		}
	}

	for _, handler := range b.handlers[event.Type] {
		go handler(event)
	}

	for _, handler := range b.handlers[Wildcard] {
		go handler(event)
	}
}

// EmitWithContext publishes an event unless the context is already done.
func (b *Bus) EmitWithContext(ctx context.Context, event *domainClaims.ClaimEvent) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		b.Emit(event)
		return nil
	}
}

// Close closes all subscriber channels and stops the bus.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true

	for _, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}

	b.subscribers = make(map[domainClaims.ClaimEventType][]chan *domainClaims.ClaimEvent)
	b.handlers = make(map[domainClaims.ClaimEventType][]domainClaims.EventHandler)
}
