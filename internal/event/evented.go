package event

import (
	"github.com/dshills/evan/internal/event/path"
)

// Participant is implemented by anything that can subscribe to and fire
// events at its own path in a Space.
type Participant interface {
	// EventSpace returns the space the participant lives in.
	EventSpace() *Space

	// EventPath returns the participant's path.
	EventPath() path.Path

	On(eventName string, h Handler) (Subscription, error)
	One(eventName string, h Handler) (Subscription, error)
	Off(eventName string, handlers ...Handler) int
	Delegate(eventName string, delegate path.Path, h Handler) (Subscription, error)
	SpawnEvent(eventName string) (*Event, error)
	TriggerSync(eventName string, data any) error
	BroadcastSync(eventName string, data any) error
}

// Evented binds a Space to a path. Host types embed or hold an Evented to
// gain subscribe and trigger behavior at their own path.
type Evented struct {
	space  *Space
	path   path.Path
	sender any
}

// Ensure Evented implements Participant.
var _ Participant = (*Evented)(nil)

// NewEvented creates a participant at p in space.
func NewEvented(space *Space, p path.Path) (*Evented, error) {
	if space == nil {
		return nil, invalidArgument("event space cannot be nil")
	}
	return &Evented{space: space, path: p}, nil
}

// Relative returns a participant in the same space at p, which must lie at
// or below the receiver's path. The sender is inherited.
func (e *Evented) Relative(p path.Path) (*Evented, error) {
	if !p.IsUnder(e.path) {
		return nil, invalidArgument("path %q is not relative to %q", p.String(), e.path.String())
	}
	return &Evented{space: e.space, path: p, sender: e.sender}, nil
}

// SetSender sets the sender attached to events fired by the participant.
func (e *Evented) SetSender(sender any) *Evented {
	e.sender = sender
	return e
}

// EventSpace implements Participant.
func (e *Evented) EventSpace() *Space {
	return e.space
}

// EventPath implements Participant.
func (e *Evented) EventPath() path.Path {
	return e.path
}

// On subscribes h to eventName at the participant's path.
func (e *Evented) On(eventName string, h Handler) (Subscription, error) {
	return e.space.On(eventName, e.path, h)
}

// One subscribes h once to eventName at the participant's path.
func (e *Evented) One(eventName string, h Handler) (Subscription, error) {
	return e.space.One(eventName, e.path, h)
}

// Off removes subscriptions to eventName at the participant's path.
func (e *Evented) Off(eventName string, handlers ...Handler) int {
	return e.space.Off(eventName, e.path, handlers...)
}

// Delegate captures eventName at the participant's path on behalf of delegate.
func (e *Evented) Delegate(eventName string, delegate path.Path, h Handler) (Subscription, error) {
	return e.space.Delegate(eventName, e.path, delegate, h)
}

// SpawnEvent creates an event carrying the participant's sender.
func (e *Evented) SpawnEvent(eventName string) (*Event, error) {
	evt, err := e.space.SpawnEvent(eventName)
	if err != nil {
		return nil, err
	}
	return evt.SetSender(e.sender), nil
}

// TriggerSync fires eventName at the participant's path.
func (e *Evented) TriggerSync(eventName string, data any) error {
	evt, err := e.SpawnEvent(eventName)
	if err != nil {
		return err
	}
	return evt.TriggerSyncOn(e.path, data)
}

// BroadcastSync broadcasts eventName from the participant's path.
func (e *Evented) BroadcastSync(eventName string, data any) error {
	evt, err := e.SpawnEvent(eventName)
	if err != nil {
		return err
	}
	return evt.BroadcastSyncOn(e.path, data)
}
