package event

import (
	"github.com/dshills/evan/internal/event/path"
)

// Event is a single dispatch instance bound to one Space and one event name.
//
// An Event carries mutable dispatch state: the path it was targeted at, the
// path it is currently visiting while bubbling, the broadcast root when it
// was spawned by a broadcast, and the data passed to handlers. That state is
// cleared when TriggerSync returns, so handlers must not read path state
// from an Event after the call that delivered it has finished.
//
// Events are not safe for concurrent use.
type Event struct {
	id    string
	name  string
	space *Space

	canBubble bool
	data      any
	sender    any
	payload   map[string]any

	original  path.Path
	current   path.Path
	broadcast path.Path

	hasTarget    bool
	hasBroadcast bool

	originalEvent *Event

	handled          bool
	defaultPrevented bool
}

// NewEvent creates an unbound event in space.
func NewEvent(space *Space, name string) (*Event, error) {
	if space == nil {
		return nil, invalidArgument("event space cannot be nil")
	}
	if err := checkEventName(name); err != nil {
		return nil, err
	}

	return &Event{
		id:        space.newID(),
		name:      name,
		space:     space,
		canBubble: true,
		payload:   make(map[string]any),
	}, nil
}

// ID returns the unique event identifier.
func (e *Event) ID() string {
	return e.id
}

// Name returns the event name.
func (e *Event) Name() string {
	return e.name
}

// Space returns the space the event belongs to.
func (e *Event) Space() *Space {
	return e.space
}

// CanBubble reports whether the event visits ancestors of its target.
func (e *Event) CanBubble() bool {
	return e.canBubble
}

// Data returns the data of the current dispatch.
func (e *Event) Data() any {
	return e.data
}

// Sender returns the sender, if any.
func (e *Event) Sender() any {
	return e.sender
}

// Payload returns the payload map. Unlike Data, the payload persists
// across triggers and is shared with clones and broadcast-spawned events.
func (e *Event) Payload() map[string]any {
	return e.payload
}

// PayloadItem returns a single payload value.
func (e *Event) PayloadItem(key string) (any, bool) {
	v, ok := e.payload[key]
	return v, ok
}

// OriginalPath returns the path the event was targeted at.
func (e *Event) OriginalPath() path.Path {
	return e.original
}

// CurrentPath returns the path currently being visited.
func (e *Event) CurrentPath() path.Path {
	return e.current
}

// BroadcastPath returns the broadcast root and whether the event belongs
// to a broadcast.
func (e *Event) BroadcastPath() (path.Path, bool) {
	return e.broadcast, e.hasBroadcast
}

// HasTarget reports whether a target path is set.
func (e *Event) HasTarget() bool {
	return e.hasTarget
}

// OriginalEvent returns the event that caused this one, or nil.
func (e *Event) OriginalEvent() *Event {
	return e.originalEvent
}

// OriginalEventByName walks the chain of originating events and returns
// the first one named name, or nil.
func (e *Event) OriginalEventByName(name string) *Event {
	for evt := e.originalEvent; evt != nil; evt = evt.originalEvent {
		if evt.name == name {
			return evt
		}
	}
	return nil
}

// Handled reports whether any handler has received the event.
func (e *Event) Handled() bool {
	return e.handled
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// AllowBubbling sets whether the event bubbles towards the root.
func (e *Event) AllowBubbling(allow bool) *Event {
	e.canBubble = allow
	return e
}

// SetTargetPath sets the original path and resets the current path to it.
func (e *Event) SetTargetPath(target path.Path) *Event {
	e.original = target
	e.current = target.Clone()
	e.hasTarget = true
	return e
}

// SetBroadcastPath marks the event as part of a broadcast rooted at root.
func (e *Event) SetBroadcastPath(root path.Path) *Event {
	e.broadcast = root
	e.hasBroadcast = true
	return e
}

// SetData sets the data for the next dispatch.
func (e *Event) SetData(data any) *Event {
	e.data = data
	return e
}

// SetSender sets the sender.
func (e *Event) SetSender(sender any) *Event {
	e.sender = sender
	return e
}

// SetPayloadItem sets a single payload value.
func (e *Event) SetPayloadItem(key string, value any) *Event {
	e.payload[key] = value
	return e
}

// SetPayloadItems merges items into the payload.
func (e *Event) SetPayloadItems(items map[string]any) *Event {
	for k, v := range items {
		e.payload[k] = v
	}
	return e
}

// SetOriginalEvent sets the event that caused this one.
func (e *Event) SetOriginalEvent(origin *Event) *Event {
	e.originalEvent = origin
	return e
}

// PreventDefault flags that default behavior should not run.
func (e *Event) PreventDefault() *Event {
	e.defaultPrevented = true
	return e
}

// Clone returns a copy of the event with its own current path.
// The payload map is shared with the clone.
func (e *Event) Clone() *Event {
	return e.CloneAt(e.current)
}

// CloneAt returns a copy of the event whose current path is a copy of current.
func (e *Event) CloneAt(current path.Path) *Event {
	clone := *e
	clone.id = e.space.newID()
	clone.current = current.Clone()
	return &clone
}

// TriggerSync dispatches the event at its pre-set target path.
// It returns ErrNotReady if no target path is set.
func (e *Event) TriggerSync() error {
	if !e.hasTarget {
		return ErrNotReady
	}
	return e.bubble()
}

// TriggerSyncOn sets target and data and dispatches the event.
func (e *Event) TriggerSyncOn(target path.Path, data any) error {
	e.SetTargetPath(target).SetData(data)
	return e.bubble()
}

// bubble asks the space to invoke handlers at the current path and at every
// ancestor down to the root, innermost first. It stops after the first
// level when bubbling is disallowed or when a handler returns Stop.
// Dispatch state is reset on return, whatever the outcome.
func (e *Event) bubble() error {
	defer e.reset()
	e.space.stats.Triggers++

	for {
		outcome, err := e.space.CallHandlers(e)
		if outcome != Unhandled {
			e.handled = true
		}
		if err != nil {
			return err
		}
		if outcome == Halted || !e.canBubble || e.current.IsRoot() {
			return nil
		}

		next, err := e.current.Shrink()
		if err != nil {
			return err
		}
		e.current = next
	}
}

func (e *Event) reset() {
	e.current = path.Path{}
	e.original = path.Path{}
	e.broadcast = path.Path{}
	e.data = nil
	e.hasTarget = false
	e.hasBroadcast = false
}
