package event

import (
	"reflect"
	"sync"
)

// Bus routes typed events to handlers. Handlers receive the event and a
// context value C supplied by whoever dispatches.
//
// Emit delivers synchronously. Post queues into the back buffer; SwapBuffers
// moves it to the front and DispatchAll delivers the front buffer in post
// order.
type Bus[C any] struct {
	mu       sync.Mutex // only protects handler registration
	handlers map[reflect.Type][]any
	front    []func(b *Bus[C], ctx C)
	back     []func(b *Bus[C], ctx C)
}

func NewBus[C any]() *Bus[C] {
	return &Bus[C]{
		handlers: make(map[reflect.Type][]any),
	}
}

// Subscribe registers a handler for events of type T. Handlers run in the
// order they were subscribed.
func Subscribe[T, C any](b *Bus[C], fn func(T, C)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], fn)
}

// Emit calls every handler of T with ev and ctx and returns how many ran.
// An event nobody subscribed to is dropped.
func Emit[T, C any](b *Bus[C], ev T, ctx C) int {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.mu.Lock()
	handlers := b.handlers[t]
	b.mu.Unlock()
	for _, h := range handlers {
		h.(func(T, C))(ev, ctx)
	}
	return len(handlers)
}

// Post queues ev for the next DispatchAll after a SwapBuffers.
func Post[T, C any](b *Bus[C], ev T) {
	b.back = append(b.back, func(b *Bus[C], ctx C) { Emit(b, ev, ctx) })
}

// Handlers returns the number of handlers subscribed to T.
func Handlers[T, C any](b *Bus[C]) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[reflect.TypeOf((*T)(nil)).Elem()])
}

// SwapBuffers rotates back→front and clears the new back buffer.
func (b *Bus[C]) SwapBuffers() {
	b.front, b.back = b.back, b.front[:0]
}

// DispatchAll delivers the front buffer. Events posted by handlers land in
// the back buffer and wait for the next swap.
func (b *Bus[C]) DispatchAll(ctx C) {
	for i, deliver := range b.front {
		deliver(b, ctx)
		b.front[i] = nil
	}
	b.front = b.front[:0]
}

// Pending returns the number of posted events not yet swapped in.
func (b *Bus[C]) Pending() int { return len(b.back) }
