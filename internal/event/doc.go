// Package event provides hierarchical, synchronous event dispatch.
//
// Events travel over a tree of dot-separated paths instead of flat names.
// A Space holds the subscriptions; an Event is one dispatch instance bound
// to a Space and an event name.
//
// # Bubbling
//
// An event triggered at a path notifies the handlers at that path and then
// at every ancestor, innermost first, ending at the root path:
//
//	document.body.paragraph
//	document.body
//	document
//	(root)
//
// A handler returning Stop ends the dispatch after the current path.
// Events with bubbling disabled only visit their target.
//
// # Broadcasting
//
// A broadcast from a root path reaches every subscribed path below it.
// Each descendant receives its own non-bubbling event, in the order the
// paths were first subscribed, and then one bubbling event is fired at the
// root itself:
//
//	space.On("changed", path.MustParse("ui.panel.button"), h1)
//	space.On("changed", path.MustParse("ui.panel"), h2)
//
//	evt, _ := space.SpawnEvent("changed")
//	evt.BroadcastSyncOn(path.MustParse("ui"), nil) // h1, then h2
//
// # Delegation
//
// A delegated subscription lives at a capture path but only fires for
// events whose original path is at or below its delegate path:
//
//	space.Delegate("click", path.MustParse("form"), path.MustParse("form.submit"), h)
//
// # Subscriptions
//
// Subscriptions at the same path and event name run in registration order.
// Registering a handler twice invokes it twice. One-shot subscriptions are
// removed after their first invocation. A handler may subscribe and
// unsubscribe during dispatch; the handler list of each path is
// snapshotted before it is walked.
//
// # Concurrency
//
// A Space and its Events are not safe for concurrent use. Everything runs
// on the caller's stack, and handlers may re-enter the Space.
package event
