// Package events provides synchronous listener fan-out for the desktop
// core components.
//
// Each state-owning component (window registry, application registry,
// lifecycle engine, input router) embeds an Emitter and exposes a
// Subscribe operation returning an unsubscribe handle. Delivery is
// synchronous and in registration order; a panicking listener is
// recovered and logged so one faulty subscriber cannot break the chain.
package events

import (
	"sync"

	"go.uber.org/zap"
)

// Listener receives emitted events
type Listener[T any] func(event T)

// Emitter fans events out to subscribed listeners
type Emitter[T any] struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener[T]
	order     []int
	logger    *zap.Logger
}

// New creates an emitter. The logger may be nil.
func New[T any](logger *zap.Logger) *Emitter[T] {
	return &Emitter[T]{
		listeners: make(map[int]Listener[T]),
		logger:    logger,
	}
}

// Subscribe registers a listener and returns an unsubscribe handle.
// Unsubscribing twice is harmless.
func (e *Emitter[T]) Subscribe(fn Listener[T]) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = fn
	e.order = append(e.order, id)
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, ok := e.listeners[id]; !ok {
			return
		}
		delete(e.listeners, id)
		for i, v := range e.order {
			if v == id {
				e.order = append(e.order[:i], e.order[i+1:]...)
				break
			}
		}
	}
}

// Emit delivers the event to every listener in registration order.
// Listeners run synchronously on the caller's goroutine; panics are
// recovered per listener.
func (e *Emitter[T]) Emit(event T) {
	e.mu.RLock()
	fns := make([]Listener[T], 0, len(e.order))
	for _, id := range e.order {
		if fn, ok := e.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	e.mu.RUnlock()

	for _, fn := range fns {
		e.invoke(fn, event)
	}
}

func (e *Emitter[T]) invoke(fn Listener[T], event T) {
	defer func() {
		if r := recover(); r != nil && e.logger != nil {
			e.logger.Error("event listener panicked", zap.Any("panic", r))
		}
	}()
	fn(event)
}

// Len returns the number of subscribed listeners
func (e *Emitter[T]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}
