package event

import (
	"sort"

	"github.com/dshills/evan/internal/event/path"
)

// registry manages subscriptions keyed by canonical path and event name.
// It is not safe for concurrent use.
type registry struct {
	// canonical path -> event name -> subscriptions in registration order
	entries map[string]map[string][]*subscription

	// event name -> paths holding at least one subscription
	indexes map[string]*path.Index

	byID map[string]*subscription
}

func newRegistry() *registry {
	return &registry{
		entries: make(map[string]map[string][]*subscription),
		indexes: make(map[string]*path.Index),
		byID:    make(map[string]*subscription),
	}
}

// add appends a subscription. Registration order is invocation order.
func (r *registry) add(sub *subscription) {
	key := sub.path.String()

	byEvent := r.entries[key]
	if byEvent == nil {
		byEvent = make(map[string][]*subscription)
		r.entries[key] = byEvent
	}
	byEvent[sub.eventName] = append(byEvent[sub.eventName], sub)

	idx := r.indexes[sub.eventName]
	if idx == nil {
		idx = path.NewIndex()
		r.indexes[sub.eventName] = idx
	}
	idx.Insert(sub.path)

	r.byID[sub.id] = sub
}

// remove removes subscriptions at (eventName, p). With no handlers every
// subscription there is removed, otherwise only those whose handler matches.
// Returns the number of subscriptions removed.
func (r *registry) remove(eventName string, p path.Path, handlers ...Handler) int {
	subs := r.entries[p.String()][eventName]
	if len(subs) == 0 {
		return 0
	}

	kept := subs[:0:0]
	removed := 0
	for _, sub := range subs {
		if len(handlers) == 0 || matchesAny(sub.handler, handlers) {
			sub.state = stateCancelled
			delete(r.byID, sub.id)
			removed++
			continue
		}
		kept = append(kept, sub)
	}

	r.store(eventName, p, kept)
	return removed
}

// removeByID removes a single subscription by ID.
func (r *registry) removeByID(id string) bool {
	sub, ok := r.byID[id]
	if !ok {
		return false
	}
	r.removeRecord(sub)
	return true
}

// removeRecord removes one specific record if it is still registered.
func (r *registry) removeRecord(target *subscription) {
	if _, ok := r.byID[target.id]; !ok {
		return
	}

	subs := r.entries[target.path.String()][target.eventName]
	kept := make([]*subscription, 0, len(subs))
	for _, sub := range subs {
		if sub != target {
			kept = append(kept, sub)
		}
	}

	target.state = stateCancelled
	delete(r.byID, target.id)
	r.store(target.eventName, target.path, kept)
}

// store replaces the list at (eventName, p) and prunes empty entries.
func (r *registry) store(eventName string, p path.Path, subs []*subscription) {
	key := p.String()
	if len(subs) > 0 {
		r.entries[key][eventName] = subs
		return
	}

	byEvent := r.entries[key]
	delete(byEvent, eventName)
	if len(byEvent) == 0 {
		delete(r.entries, key)
	}

	if idx := r.indexes[eventName]; idx != nil {
		idx.Delete(p)
		if idx.Len() == 0 {
			delete(r.indexes, eventName)
		}
	}
}

// snapshot returns a copy of the subscriptions at (eventName, p) so callers
// can iterate while handlers add or remove subscriptions.
func (r *registry) snapshot(eventName string, p path.Path) []*subscription {
	subs := r.entries[p.String()][eventName]
	if len(subs) == 0 {
		return nil
	}
	result := make([]*subscription, len(subs))
	copy(result, subs)
	return result
}

// pathsUnder returns the subscribed paths for eventName at or below root,
// in the order they were first subscribed.
func (r *registry) pathsUnder(eventName string, root path.Path) []path.Path {
	idx := r.indexes[eventName]
	if idx == nil {
		return nil
	}
	return idx.Under(root)
}

// count returns the total number of subscriptions.
func (r *registry) count() int {
	return len(r.byID)
}

// countAt returns the number of subscriptions at (eventName, p).
func (r *registry) countAt(eventName string, p path.Path) int {
	return len(r.entries[p.String()][eventName])
}

// eventNames returns every event name with at least one subscription.
func (r *registry) eventNames() []string {
	if len(r.indexes) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.indexes))
	for name := range r.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func matchesAny(h Handler, handlers []Handler) bool {
	for _, candidate := range handlers {
		if sameHandler(h, candidate) {
			return true
		}
	}
	return false
}
