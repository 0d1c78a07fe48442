package event

import (
	"fmt"
	"log/slog"

	"github.com/dshills/evan/internal/event/path"
)

// Space is an addressable event namespace.
//
// A Space owns the subscriptions for every path and event name and is the
// only component that can invoke handlers. Spaces are single-threaded:
// handlers run on the caller's stack and may re-enter the space to
// subscribe, unsubscribe or trigger further events.
type Space struct {
	registry *registry
	logger   *slog.Logger
	newID    func() string
	stats    Stats
}

// NewSpace creates an empty event space.
func NewSpace(opts ...SpaceOption) *Space {
	cfg := defaultSpaceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Space{
		registry: newRegistry(),
		logger:   cfg.logger,
		newID:    cfg.newID,
	}
}

// On subscribes a handler to eventName at p.
// The handler stays registered until removed with Off or Unsubscribe.
func (s *Space) On(eventName string, p path.Path, h Handler) (Subscription, error) {
	return s.subscribe(eventName, p, path.Path{}, h, KindPersistent)
}

// One subscribes a handler that is removed after its first invocation.
func (s *Space) One(eventName string, p path.Path, h Handler) (Subscription, error) {
	return s.subscribe(eventName, p, path.Path{}, h, KindOnce)
}

// Delegate registers h at capture so that it only fires for events whose
// original path is at or below delegate. Broadcasts rooted at or above
// delegate also reach it. The delegate path must lie at or below capture.
func (s *Space) Delegate(eventName string, capture, delegate path.Path, h Handler) (Subscription, error) {
	if !delegate.IsUnder(capture) {
		return Subscription{}, invalidArgument("delegate path %q is not under capture path %q",
			delegate.String(), capture.String())
	}
	return s.subscribe(eventName, capture, delegate, h, KindDelegate)
}

func (s *Space) subscribe(eventName string, p, delegate path.Path, h Handler, kind Kind) (Subscription, error) {
	if err := checkEventName(eventName); err != nil {
		return Subscription{}, err
	}
	if err := checkHandler(h); err != nil {
		return Subscription{}, err
	}

	sub := &subscription{
		id:        s.newID(),
		eventName: eventName,
		path:      p.Clone(),
		delegate:  delegate.Clone(),
		kind:      kind,
		handler:   h,
		state:     stateActive,
	}
	s.registry.add(sub)

	s.logger.Debug("subscribed",
		slog.String("event", eventName),
		slog.String("path", p.String()),
		slog.String("kind", kind.String()),
		slog.String("id", sub.id),
	)

	return sub.token(), nil
}

// Off removes subscriptions for eventName at exactly p.
// With no handlers every subscription at (p, eventName) is removed;
// otherwise only subscriptions whose handler is one of handlers.
// It returns the number of subscriptions removed. Removing nothing is
// not an error.
func (s *Space) Off(eventName string, p path.Path, handlers ...Handler) int {
	removed := s.registry.remove(eventName, p, handlers...)
	if removed > 0 {
		s.logger.Debug("unsubscribed",
			slog.String("event", eventName),
			slog.String("path", p.String()),
			slog.Int("count", removed),
		)
	}
	return removed
}

// Unsubscribe removes exactly the subscription identified by sub.
// It returns false if the subscription was already removed.
func (s *Space) Unsubscribe(sub Subscription) bool {
	if sub.IsZero() {
		return false
	}
	ok := s.registry.removeByID(sub.id)
	if ok {
		s.logger.Debug("unsubscribed",
			slog.String("event", sub.eventName),
			slog.String("path", sub.path.String()),
			slog.String("id", sub.id),
		)
	}
	return ok
}

// SpawnEvent creates an unbound event for eventName in this space.
func (s *Space) SpawnEvent(eventName string) (*Event, error) {
	return NewEvent(s, eventName)
}

// CallHandlers invokes the handlers subscribed to evt's name at evt's
// current path, in registration order.
//
// The handler list is snapshotted before the first handler runs, so
// handlers may freely subscribe and unsubscribe. Subscriptions removed
// during the pass are skipped; ones added during the pass are not invoked
// until the next pass. A handler error is returned unmodified and aborts
// the pass.
func (s *Space) CallHandlers(evt *Event) (Outcome, error) {
	if evt == nil {
		return Unhandled, invalidArgument("event cannot be nil")
	}

	outcome := Unhandled
	for _, sub := range s.registry.snapshot(evt.name, evt.current) {
		if !sub.isActive() {
			continue
		}
		if sub.kind == KindDelegate && !sub.covers(evt) {
			continue
		}

		outcome = Handled
		flow, err := s.invoke(sub, evt)
		if err != nil {
			return outcome, err
		}
		if flow == Stop {
			return Halted, nil
		}
	}
	return outcome, nil
}

// invoke runs a single subscription. One-shot subscriptions are marked
// spent before the handler runs and removed once it returns, including
// when it fails or panics.
func (s *Space) invoke(sub *subscription, evt *Event) (Flow, error) {
	s.stats.HandlersInvoked++

	if sub.kind == KindOnce {
		sub.state = stateSpent
		defer s.registry.removeRecord(sub)
	}

	flow, err := sub.handler.Handle(evt)
	if err != nil {
		s.stats.HandlerErrors++
	}
	return flow, err
}

// PathsUnder returns the distinct paths at or below root that hold at least
// one subscription for eventName, in the order they were first subscribed.
func (s *Space) PathsUnder(eventName string, root path.Path) []path.Path {
	return s.registry.pathsUnder(eventName, root)
}

// HandlerCount returns the number of subscriptions for eventName at exactly p.
func (s *Space) HandlerCount(eventName string, p path.Path) int {
	return s.registry.countAt(eventName, p)
}

// EventNames returns the sorted names of all events with subscriptions.
func (s *Space) EventNames() []string {
	return s.registry.eventNames()
}

// Stats returns a snapshot of the space counters.
func (s *Space) Stats() Stats {
	st := s.stats
	st.Subscriptions = s.registry.count()
	return st
}

// Logger returns the logger used by the space.
func (s *Space) Logger() *slog.Logger {
	return s.logger
}

// ParsePath converts v into a concrete path. It accepts the inputs of
// path.From and reports malformed input as ErrInvalidArgument.
func ParsePath(v any) (path.Path, error) {
	p, err := path.From(v)
	if err != nil {
		return path.Path{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return p, nil
}
