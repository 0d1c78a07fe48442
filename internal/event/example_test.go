package event_test

import (
	"fmt"

	"github.com/dshills/evan/internal/event"
	"github.com/dshills/evan/internal/event/path"
)

// Example_bubbling demonstrates an event visiting each ancestor of its target.
func Example_bubbling() {
	space := event.NewSpace()

	for _, p := range []string{"document", "document.body", "document.body.paragraph"} {
		_, _ = space.On("click", path.MustParse(p), event.ObserverFunc(func(evt *event.Event) {
			fmt.Printf("%s (target %s)\n", evt.CurrentPath(), evt.OriginalPath())
		}))
	}

	evt, _ := space.SpawnEvent("click")
	if err := evt.TriggerSyncOn(path.MustParse("document.body.paragraph"), nil); err != nil {
		fmt.Println("trigger failed:", err)
	}

	// Output:
	// document.body.paragraph (target document.body.paragraph)
	// document.body (target document.body.paragraph)
	// document (target document.body.paragraph)
}

// Example_stopPropagation shows a handler ending the dispatch.
func Example_stopPropagation() {
	space := event.NewSpace()

	_, _ = space.On("key", path.MustParse("editor"), event.ObserverFunc(func(*event.Event) {
		fmt.Println("editor")
	}))
	_, _ = space.On("key", path.MustParse("editor.input"), event.HandlerFunc(func(*event.Event) (event.Flow, error) {
		fmt.Println("input consumed the key")
		return event.Stop, nil
	}))

	evt, _ := space.SpawnEvent("key")
	_ = evt.TriggerSyncOn(path.MustParse("editor.input"), "x")

	// Output: input consumed the key
}

// Example_broadcast demonstrates reaching every subscribed descendant.
func Example_broadcast() {
	space := event.NewSpace()

	for _, p := range []string{"test.event", "test.event.foo", "test.event.foo.bar", "test.foo.bar", "test.event.hello"} {
		_, _ = space.On("my-event", path.MustParse(p), event.ObserverFunc(func(evt *event.Event) {
			fmt.Println(evt.CurrentPath())
		}))
	}

	evt, _ := space.SpawnEvent("my-event")
	_ = evt.BroadcastSyncOn(path.MustParse("test.event"), nil)

	// Output:
	// test.event.foo
	// test.event.foo.bar
	// test.event.hello
	// test.event
}

// Example_delegate shows a handler scoped to a descendant of its capture path.
func Example_delegate() {
	space := event.NewSpace()

	_, _ = space.Delegate("click", path.MustParse("form"), path.MustParse("form.submit"),
		event.ObserverFunc(func(evt *event.Event) {
			fmt.Println("submit clicked via", evt.CurrentPath())
		}))

	evt, _ := space.SpawnEvent("click")
	_ = evt.TriggerSyncOn(path.MustParse("form.reset"), nil)
	_ = evt.TriggerSyncOn(path.MustParse("form.submit"), nil)

	// Output: submit clicked via form
}
