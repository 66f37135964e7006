package mooremachine

import (
	"unsafe"

	"github.com/enetx/g"
)

// HandlerFunc is the shape of an event-emitter callback: a node-style
// "handler(...args)" with no return value.
type HandlerFunc func(args ...any)

// Emitter is the host event-emitter abstraction a StateHandle registers
// against via On, and that the FSM itself also implements so that
// stateChanged (and any other FSM-level event) can be observed, or so one
// FSM's events can be wired directly into another's handle.On calls.
type Emitter interface {
	On(event EventName, fn HandlerFunc)
	Once(event EventName, fn HandlerFunc)
	RemoveListener(event EventName, fn HandlerFunc)
	Emit(event EventName, args ...any)
	Listeners(event EventName) g.Slice[HandlerFunc]
}

// EventEmitter is the reference Emitter implementation. Host applications
// may supply their own (e.g. one bridging into an existing pub/sub bus)
// in place of it via WithEmitter.
type EventEmitter struct {
	listeners *g.MapSafe[EventName, g.Slice[HandlerFunc]]
}

// NewEventEmitter returns an empty EventEmitter.
func NewEventEmitter() *EventEmitter {
	return &EventEmitter{listeners: g.NewMapSafe[EventName, g.Slice[HandlerFunc]]()}
}

// On subscribes fn to event. fn is appended after any handlers already
// registered for event.
func (e *EventEmitter) On(event EventName, fn HandlerFunc) {
	entry := e.listeners.Entry(event)
	entry.OrDefault()
	entry.AndModify(func(s *g.Slice[HandlerFunc]) { *s = s.Append(fn) })
}

// Once subscribes fn to event such that it fires at most once, removing
// itself before invoking fn.
func (e *EventEmitter) Once(event EventName, fn HandlerFunc) {
	var wrapper HandlerFunc
	wrapper = func(args ...any) {
		e.RemoveListener(event, wrapper)
		fn(args...)
	}
	e.On(event, wrapper)
}

// RemoveListener removes the handler previously registered for event whose
// underlying function value is identical to fn. Go has no notion of
// function equality, so identity is compared via the closure pointer a
// func value holds, which (unlike reflect.ValueOf(fn).Pointer(), the
// shared code pointer) tells apart separate closures created from the
// same function literal; callers must pass back the exact closure value
// used at registration, which is how StateHandle always uses it.
func (e *EventEmitter) RemoveListener(event EventName, fn HandlerFunc) {
	target := *(*unsafe.Pointer)(unsafe.Pointer(&fn))

	entry := e.listeners.Entry(event)
	entry.OrDefault()
	entry.AndModify(func(s *g.Slice[HandlerFunc]) {
		kept := g.NewSlice[HandlerFunc]()
		for h := range s.Iter() {
			if *(*unsafe.Pointer)(unsafe.Pointer(&h)) != target {
				kept = kept.Append(h)
			}
		}
		*s = kept
	})
}

// Emit invokes, in registration order, every handler currently subscribed
// to event. The listener list is snapshotted first, so a handler that
// removes itself (as Once's wrapper does) or registers a new listener
// does not perturb the in-progress dispatch.
func (e *EventEmitter) Emit(event EventName, args ...any) {
	handlers := e.listeners.Get(event)
	if handlers.IsNone() {
		return
	}

	for h := range handlers.Some().Clone().Iter() {
		h(args...)
	}
}

// Listeners returns the handlers currently subscribed to event.
func (e *EventEmitter) Listeners(event EventName) g.Slice[HandlerFunc] {
	handlers := e.listeners.Get(event)
	if handlers.IsNone() {
		return nil
	}

	return handlers.Some().Clone()
}
