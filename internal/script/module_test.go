package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/evan/internal/event"
	"github.com/dshills/evan/internal/event/path"
)

func newModule(t *testing.T) (*State, *event.Space, *Module) {
	t.Helper()
	state := NewState()
	t.Cleanup(state.Close)

	space := event.NewSpace()
	mod := NewModule(state, space)
	require.NoError(t, mod.Install())

	require.NoError(t, state.DoString(`log = {}`))
	return state, space, mod
}

// logged returns the Lua global log as Go strings.
func logged(t *testing.T, state *State) []string {
	t.Helper()
	tbl, ok := state.GetGlobal("log").(*lua.LTable)
	require.True(t, ok)

	var result []string
	for i := 1; i <= tbl.Len(); i++ {
		result = append(result, tbl.RawGetInt(i).String())
	}
	return result
}

func TestModule_OnAndTrigger(t *testing.T) {
	state, space, mod := newModule(t)

	require.NoError(t, state.DoString(`
		evan.on("changed", "a.b", function(evt)
			table.insert(log, evt.name .. "@" .. evt.current .. " from " .. evt.original .. " data=" .. tostring(evt.data.n))
		end)
		evan.on("changed", "a", function(evt)
			table.insert(log, "parent@" .. evt.current)
		end)
		handled = evan.trigger("changed", "a.b.c", {n = 7})
	`))

	assert.Equal(t, []string{
		"changed@a.b from a.b.c data=7",
		"parent@a",
	}, logged(t, state))
	assert.Equal(t, lua.LTrue, state.GetGlobal("handled"))
	assert.Equal(t, 2, mod.Subscriptions())
	assert.Equal(t, 1, space.HandlerCount("changed", path.MustParse("a.b")))
}

func TestModule_StopPropagation(t *testing.T) {
	state, _, _ := newModule(t)

	require.NoError(t, state.DoString(`
		evan.on("key", "editor", function(evt) table.insert(log, "editor") end)
		evan.on("key", "editor.input", function(evt)
			table.insert(log, "input")
			return false
		end)
		evan.trigger("key", "editor.input")
	`))

	assert.Equal(t, []string{"input"}, logged(t, state))
}

func TestModule_OneAndOff(t *testing.T) {
	state, space, mod := newModule(t)

	require.NoError(t, state.DoString(`
		evan.one("tick", "clock", function(evt) table.insert(log, "once") end)
		id = evan.on("tick", "clock", function(evt) table.insert(log, "always") end)
		evan.trigger("tick", "clock")
		evan.trigger("tick", "clock")
		removed = evan.off(id)
		again = evan.off(id)
		evan.trigger("tick", "clock")
	`))

	assert.Equal(t, []string{"once", "always", "always"}, logged(t, state))
	assert.Equal(t, lua.LTrue, state.GetGlobal("removed"))
	assert.Equal(t, lua.LFalse, state.GetGlobal("again"))
	assert.Equal(t, 0, mod.Subscriptions())
	assert.Equal(t, 0, space.Stats().Subscriptions)
}

func TestModule_OffAll(t *testing.T) {
	state, space, mod := newModule(t)

	require.NoError(t, state.DoString(`
		evan.on("evt", "a", function() end)
		evan.on("evt", "a", function() end)
		evan.on("evt", "b", function() end)
		count = evan.off("evt", "a")
	`))

	assert.Equal(t, lua.LNumber(2), state.GetGlobal("count"))
	assert.Equal(t, 1, mod.Subscriptions())
	assert.Equal(t, 1, space.Stats().Subscriptions)
}

func TestModule_DelegateAndBroadcast(t *testing.T) {
	state, _, _ := newModule(t)

	require.NoError(t, state.DoString(`
		evan.delegate("click", "form", "form.submit", function(evt)
			table.insert(log, "submit via " .. evt.current)
		end)
		evan.on("refresh", "ui.a", function(evt) table.insert(log, "a in " .. evt.broadcast) end)
		evan.on("refresh", "ui.b", function(evt) table.insert(log, "b in " .. evt.broadcast) end)

		evan.trigger("click", "form.reset")
		evan.trigger("click", "form.submit")
		evan.broadcast("refresh", "ui")

		paths = evan.paths_under("refresh", "ui")
	`))

	assert.Equal(t, []string{"submit via form", "a in ui", "b in ui"}, logged(t, state))

	paths, ok := state.GetGlobal("paths").(*lua.LTable)
	require.True(t, ok)
	assert.Equal(t, 2, paths.Len())
	assert.Equal(t, "ui.a", paths.RawGetInt(1).String())
}

func TestModule_NestedTriggerRecordsOrigin(t *testing.T) {
	state, space, _ := newModule(t)

	var origin *event.Event
	_, err := space.On("inner", path.MustParse("b"), event.ObserverFunc(func(evt *event.Event) {
		origin = evt.OriginalEventByName("outer")
	}))
	require.NoError(t, err)

	require.NoError(t, state.DoString(`
		evan.on("outer", "a", function(evt)
			evt:set_payload("seen", true)
			evan.trigger("inner", "b")
		end)
	`))

	evt, err := space.SpawnEvent("outer")
	require.NoError(t, err)
	require.NoError(t, evt.TriggerSyncOn(path.MustParse("a"), nil))

	assert.Same(t, evt, origin)
	assert.Equal(t, true, evt.Payload()["seen"])
	assert.Nil(t, state.CurrentEvent())
}

func TestModule_Errors(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"wildcard path", `evan.on("evt", "a.**", function() end)`},
		{"empty event name", `evan.on("", "a", function() end)`},
		{"missing handler", `evan.on("evt", "a")`},
		{"delegate outside capture", `evan.delegate("evt", "a", "b", function() end)`},
		{"handler error", `
			evan.on("evt", "a", function() error("boom") end)
			evan.trigger("evt", "a")
		`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, _, _ := newModule(t)
			assert.Error(t, state.DoString(tt.code))
		})
	}
}

func TestModule_Cleanup(t *testing.T) {
	state, space, mod := newModule(t)

	require.NoError(t, state.DoString(`
		evan.on("evt", "a", function() end)
		evan.one("evt", "b", function() end)
	`))
	require.Equal(t, 2, space.Stats().Subscriptions)

	mod.Cleanup()
	assert.Equal(t, 0, space.Stats().Subscriptions)
	assert.Equal(t, 0, mod.Subscriptions())
}
