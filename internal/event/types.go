package event

import (
	"reflect"
	"unsafe"
)

// Flow is the control signal a handler returns.
type Flow int

const (
	// Continue lets remaining handlers run and the event keep bubbling.
	Continue Flow = iota

	// Stop skips the remaining handlers on the current path and ends
	// bubbling.
	Stop
)

// String returns a human-readable flow name.
func (f Flow) String() string {
	switch f {
	case Continue:
		return "continue"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

// Outcome is the result of invoking the handlers on one path.
type Outcome int

const (
	// Unhandled means no subscription on the path matched the event.
	Unhandled Outcome = iota

	// Handled means at least one handler ran and none asked to stop.
	Handled

	// Halted means a handler returned Stop.
	Halted
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case Unhandled:
		return "unhandled"
	case Handled:
		return "handled"
	case Halted:
		return "halted"
	default:
		return "unknown"
	}
}

// Handler is the interface for event handlers.
//
// Handlers run synchronously on the caller's stack. An error returned by a
// handler aborts the dispatch and is returned unmodified to the caller of
// TriggerSync or BroadcastSync.
type Handler interface {
	Handle(evt *Event) (Flow, error)
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(evt *Event) (Flow, error)

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(evt *Event) (Flow, error) {
	return f(evt)
}

// ObserverFunc adapts a function that never stops propagation or fails.
type ObserverFunc func(evt *Event)

// Handle implements the Handler interface.
func (f ObserverFunc) Handle(evt *Event) (Flow, error) {
	f(evt)
	return Continue, nil
}

// sameHandler reports whether a and b refer to the same handler.
// Function-backed handlers compare by func value: a named function is
// always the same handler, while each closure or method value is its own
// handler, even when built from the same literal or method.
func sameHandler(a, b Handler) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Func:
		return funcData(a) == funcData(b)
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}

	if va.Type().Comparable() {
		return a == b
	}
	return false
}

// funcData returns the data word of h, which for a func-backed handler
// points at the closure object rather than the shared code.
func funcData(h Handler) unsafe.Pointer {
	return (*[2]unsafe.Pointer)(unsafe.Pointer(&h))[1]
}

// Stats contains event space counters.
type Stats struct {
	// Triggers is the number of completed or aborted bubbling runs,
	// including those spawned by broadcasts.
	Triggers uint64

	// Broadcasts is the number of broadcasts started.
	Broadcasts uint64

	// HandlersInvoked is the total number of handler executions.
	HandlersInvoked uint64

	// HandlerErrors is the number of handlers that returned errors.
	HandlerErrors uint64

	// Subscriptions is the current number of registered subscriptions.
	Subscriptions int
}
