package event

import (
	"github.com/dshills/evan/internal/event/path"
)

// Kind identifies how a subscription behaves.
type Kind int

const (
	// KindPersistent stays registered until removed.
	KindPersistent Kind = iota

	// KindOnce is removed as soon as its handler has run once.
	KindOnce

	// KindDelegate is registered on a capture path but only fires for
	// events whose original path lies at or below its delegate path.
	KindDelegate
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindPersistent:
		return "persistent"
	case KindOnce:
		return "once"
	case KindDelegate:
		return "delegate"
	default:
		return "unknown"
	}
}

// subscriptionState represents the lifecycle of a subscription record.
type subscriptionState int

const (
	stateActive subscriptionState = iota

	// stateSpent marks a one-shot record whose handler is running.
	stateSpent

	stateCancelled
)

// Subscription identifies a registered handler.
// It is returned by On, One and Delegate and can be passed to
// Space.Unsubscribe.
type Subscription struct {
	id        string
	eventName string
	path      path.Path
	kind      Kind
}

// ID returns the unique subscription identifier.
func (s Subscription) ID() string {
	return s.id
}

// EventName returns the subscribed event name.
func (s Subscription) EventName() string {
	return s.eventName
}

// Path returns the path the subscription is registered on.
// For delegated subscriptions this is the capture path.
func (s Subscription) Path() path.Path {
	return s.path
}

// Kind returns the subscription kind.
func (s Subscription) Kind() Kind {
	return s.kind
}

// IsZero returns true for the zero Subscription.
func (s Subscription) IsZero() bool {
	return s.id == ""
}

// subscription is a record owned by the registry.
type subscription struct {
	id        string
	eventName string
	path      path.Path
	delegate  path.Path
	kind      Kind
	handler   Handler
	state     subscriptionState
}

func (s *subscription) token() Subscription {
	return Subscription{id: s.id, eventName: s.eventName, path: s.path, kind: s.kind}
}

func (s *subscription) isActive() bool {
	return s.state == stateActive
}

// covers reports whether a delegated subscription should fire for evt.
// It fires when the event originated at or below the delegate path, or when
// the event belongs to a broadcast whose root contains the delegate path.
func (s *subscription) covers(evt *Event) bool {
	if evt.hasTarget && evt.original.IsUnder(s.delegate) {
		return true
	}
	return evt.hasBroadcast && s.delegate.IsUnder(evt.broadcast)
}
