package event

import (
	"log/slog"

	"github.com/dshills/evan/internal/event/path"
)

// BroadcastSync broadcasts the event from its pre-set target path using the
// current data. It returns ErrNotReady if no target path is set.
func (e *Event) BroadcastSync() error {
	if !e.hasTarget {
		return ErrNotReady
	}
	root, data := e.original, e.data
	e.reset()
	return e.broadcastFrom(root, data)
}

// BroadcastSyncOn broadcasts the event to every subscribed path at or below
// root.
//
// Each subscribed descendant receives its own non-bubbling event, triggered
// in the order the paths were first subscribed. A final bubbling event is
// then triggered at root itself so that ancestors and delegates above root
// observe the broadcast. All spawned events share the name, data, payload
// and sender of e and point back to e's originating event. The first
// handler error aborts the remaining events.
func (e *Event) BroadcastSyncOn(root path.Path, data any) error {
	return e.broadcastFrom(root, data)
}

func (e *Event) broadcastFrom(root path.Path, data any) error {
	space := e.space
	space.stats.Broadcasts++

	var targets []path.Path
	for _, p := range space.PathsUnder(e.name, root) {
		if !p.Equal(root) {
			targets = append(targets, p)
		}
	}

	space.logger.Debug("broadcast planned",
		slog.String("event", e.name),
		slog.String("root", root.String()),
		slog.Int("descendants", len(targets)),
	)

	events := make([]*Event, 0, len(targets)+1)
	for _, target := range targets {
		events = append(events, e.spawnBroadcastEvent(data, root, target))
	}
	events = append(events, e.spawnMainBroadcastEvent(data, root))

	for _, evt := range events {
		if err := evt.bubble(); err != nil {
			return err
		}
		if evt.handled {
			e.handled = true
		}
		if evt.defaultPrevented {
			e.defaultPrevented = true
		}
	}
	return nil
}

// spawnBroadcastEvent creates a non-bubbling event for one subscribed
// descendant of root.
func (e *Event) spawnBroadcastEvent(data any, root, target path.Path) *Event {
	return e.spawn().
		AllowBubbling(false).
		SetBroadcastPath(root).
		SetTargetPath(target).
		SetData(data)
}

// spawnMainBroadcastEvent creates the bubbling event fired at root.
func (e *Event) spawnMainBroadcastEvent(data any, root path.Path) *Event {
	return e.spawn().
		SetBroadcastPath(root).
		SetTargetPath(root).
		SetData(data)
}

// spawn creates an event that stands in for e. It shares e's originating
// event rather than pointing back at e.
func (e *Event) spawn() *Event {
	return &Event{
		id:            e.space.newID(),
		name:          e.name,
		space:         e.space,
		canBubble:     true,
		sender:        e.sender,
		payload:       e.payload,
		originalEvent: e.originalEvent,
	}
}
