package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/evan/internal/event/path"
)

func TestEvent_BroadcastSync_Order(t *testing.T) {
	s := NewSpace()
	var triggered []string
	h := ObserverFunc(func(evt *Event) {
		triggered = append(triggered, evt.CurrentPath().String())
	})

	for _, p := range []string{
		"test.event",
		"test.event.foo",
		"test.event.foo.bar",
		"test.foo.bar",
		"test.event.hello",
	} {
		mustOn(t, s, "my-event", p, h)
	}

	evt, err := s.SpawnEvent("my-event")
	require.NoError(t, err)
	require.NoError(t, evt.BroadcastSyncOn(path.MustParse("test.event"), nil))

	assert.Equal(t, []string{
		"test.event.foo",
		"test.event.foo.bar",
		"test.event.hello",
		"test.event",
	}, triggered)
	assert.True(t, evt.Handled())
}

func TestEvent_BroadcastSync_Subtree(t *testing.T) {
	s := NewSpace()
	rec := &recorder{}

	mustOn(t, s, "evt", "r", rec.handler("r"))
	mustOn(t, s, "evt", "r.a", rec.handler("a"))
	mustOn(t, s, "evt", "r.a.b", rec.handler("b"))
	mustOn(t, s, "evt", "r.c", rec.handler("c"))
	mustOn(t, s, "evt", "x", rec.handler("x"))
	mustOn(t, s, "evt", "", rec.handler("root"))

	evt, err := s.SpawnEvent("evt")
	require.NoError(t, err)
	require.NoError(t, evt.BroadcastSyncOn(path.MustParse("r"), nil))

	// descendants do not bubble, the main event at r does
	assert.Equal(t, []string{"a@r.a", "b@r.a.b", "c@r.c", "r@r", "root@"}, rec.hits)

	st := s.Stats()
	assert.EqualValues(t, 1, st.Broadcasts)
	assert.EqualValues(t, 4, st.Triggers)
}

func TestEvent_BroadcastSync_SpawnedEvents(t *testing.T) {
	s := NewSpace()
	origin, err := s.SpawnEvent("origin")
	require.NoError(t, err)

	type seen struct {
		current   string
		original  string
		broadcast string
		bubbles   bool
	}
	var events []seen
	var spawned []*Event

	h := ObserverFunc(func(evt *Event) {
		bp, ok := evt.BroadcastPath()
		require.True(t, ok)
		events = append(events, seen{
			current:   evt.CurrentPath().String(),
			original:  evt.OriginalPath().String(),
			broadcast: bp.String(),
			bubbles:   evt.CanBubble(),
		})
		spawned = append(spawned, evt)
		assert.Equal(t, "data", evt.Data())
		assert.Equal(t, "sender", evt.Sender())
		assert.Same(t, origin, evt.OriginalEvent())
		evt.SetPayloadItem(evt.CurrentPath().String(), true)
	})
	mustOn(t, s, "evt", "r.a", h)
	mustOn(t, s, "evt", "r", h)

	evt, err := s.SpawnEvent("evt")
	require.NoError(t, err)
	evt.SetSender("sender").SetOriginalEvent(origin)
	require.NoError(t, evt.BroadcastSyncOn(path.MustParse("r"), "data"))

	assert.Equal(t, []seen{
		{"r.a", "r.a", "r", false},
		{"r", "r", "r", true},
	}, events)

	require.Len(t, spawned, 2)
	assert.NotSame(t, evt, spawned[0])
	assert.NotSame(t, spawned[0], spawned[1])
	assert.NotEqual(t, spawned[0].ID(), spawned[1].ID())

	// the payload map is shared with the initiator
	assert.Equal(t, map[string]any{"r.a": true, "r": true}, evt.Payload())
}

func TestEvent_BroadcastSync_OriginalEvent(t *testing.T) {
	tests := []struct {
		name   string
		origin bool
	}{
		{"initiator without origin", false},
		{"initiator with origin", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSpace()
			evt, err := s.SpawnEvent("evt")
			require.NoError(t, err)

			var want *Event
			if tt.origin {
				want, err = s.SpawnEvent("cause")
				require.NoError(t, err)
				evt.SetOriginalEvent(want)
			}

			var got []*Event
			h := ObserverFunc(func(e *Event) { got = append(got, e.OriginalEvent()) })
			mustOn(t, s, "evt", "r.a", h)
			mustOn(t, s, "evt", "r", h)

			require.NoError(t, evt.BroadcastSyncOn(path.MustParse("r"), nil))
			require.Len(t, got, 2)
			for _, parent := range got {
				assert.Same(t, want, parent)
				assert.NotSame(t, evt, parent)
			}
		})
	}
}

func TestEvent_BroadcastSync_Delegates(t *testing.T) {
	s := NewSpace()
	rec := &recorder{}

	// delegate at an ancestor of the broadcast root
	_, err := s.Delegate("evt", path.MustParse("app"), path.MustParse("app.form.submit"), rec.handler("submit"))
	require.NoError(t, err)
	_, err = s.Delegate("evt", path.MustParse("app"), path.MustParse("app.menu"), rec.handler("menu"))
	require.NoError(t, err)

	evt, err := s.SpawnEvent("evt")
	require.NoError(t, err)
	require.NoError(t, evt.BroadcastSyncOn(path.MustParse("app.form"), nil))

	assert.Equal(t, []string{"submit@app"}, rec.hits)
}

func TestEvent_BroadcastSync_StopOnlyAffectsOneEvent(t *testing.T) {
	s := NewSpace()
	rec := &recorder{}

	mustOn(t, s, "evt", "r.a", rec.stopper("a"))
	mustOn(t, s, "evt", "r.b", rec.handler("b"))
	mustOn(t, s, "evt", "r", rec.stopper("r"))
	mustOn(t, s, "evt", "", rec.handler("root"))

	evt, err := s.SpawnEvent("evt")
	require.NoError(t, err)
	require.NoError(t, evt.BroadcastSyncOn(path.MustParse("r"), nil))

	assert.Equal(t, []string{"a@r.a", "b@r.b", "r@r"}, rec.hits)
}

func TestEvent_BroadcastSync_ErrorAborts(t *testing.T) {
	s := NewSpace()
	rec := &recorder{}
	boom := errors.New("boom")

	mustOn(t, s, "evt", "r.a", rec.handler("a"))
	mustOn(t, s, "evt", "r.b", HandlerFunc(func(*Event) (Flow, error) { return Continue, boom }))
	mustOn(t, s, "evt", "r.c", rec.handler("c"))
	mustOn(t, s, "evt", "r", rec.handler("r"))

	evt, err := s.SpawnEvent("evt")
	require.NoError(t, err)
	err = evt.BroadcastSyncOn(path.MustParse("r"), nil)

	assert.Same(t, boom, err)
	assert.Equal(t, []string{"a@r.a"}, rec.hits)
}

func TestEvent_BroadcastSync_PresetTarget(t *testing.T) {
	s := NewSpace()
	rec := &recorder{}
	mustOn(t, s, "evt", "r.a", rec.handler("a"))

	evt, err := s.SpawnEvent("evt")
	require.NoError(t, err)
	assert.ErrorIs(t, evt.BroadcastSync(), ErrNotReady)

	var data any
	mustOn(t, s, "evt", "r", ObserverFunc(func(e *Event) { data = e.Data() }))

	require.NoError(t, evt.SetTargetPath(path.MustParse("r")).SetData(42).BroadcastSync())
	assert.Equal(t, []string{"a@r.a"}, rec.hits)
	assert.Equal(t, 42, data)
	assert.False(t, evt.HasTarget())
	assert.Nil(t, evt.Data())
}

func TestEvent_BroadcastSync_Empty(t *testing.T) {
	s := NewSpace()
	evt, err := s.SpawnEvent("evt")
	require.NoError(t, err)

	require.NoError(t, evt.BroadcastSyncOn(path.MustParse("nothing.here"), nil))
	assert.False(t, evt.Handled())
}

func TestEvent_BroadcastSync_FromRoot(t *testing.T) {
	s := NewSpace()
	rec := &recorder{}
	mustOn(t, s, "evt", "b", rec.handler("b"))
	mustOn(t, s, "evt", "a.x", rec.handler("ax"))
	mustOn(t, s, "evt", "", rec.handler("root"))

	evt, err := s.SpawnEvent("evt")
	require.NoError(t, err)
	require.NoError(t, evt.BroadcastSyncOn(path.Root(), nil))

	assert.Equal(t, []string{"b@b", "ax@a.x", "root@"}, rec.hits)
}
