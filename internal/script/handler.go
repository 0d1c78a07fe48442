package script

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/evan/internal/event"
)

// Handler is an event.Handler that calls a Lua function.
//
// The function receives a table describing the event:
//
//	evt.name       event name
//	evt.current    path being visited
//	evt.original   path the event was targeted at
//	evt.broadcast  broadcast root, or nil
//	evt.data       event data
//	evt.payload    copy of the payload
//
// and the methods evt:set_payload(key, value) and evt:prevent_default().
// Returning false stops propagation; a Lua error aborts the dispatch.
type Handler struct {
	state  *State
	bridge *Bridge
	fn     *lua.LFunction
	name   string
}

// Ensure Handler implements event.Handler.
var _ event.Handler = (*Handler)(nil)

// NewHandler wraps fn. The name appears in error messages.
func NewHandler(state *State, fn *lua.LFunction, name string) *Handler {
	return &Handler{
		state:  state,
		bridge: NewBridge(state.L),
		fn:     fn,
		name:   name,
	}
}

// Name returns the handler name.
func (h *Handler) Name() string {
	return h.name
}

// Handle implements event.Handler.
func (h *Handler) Handle(evt *event.Event) (event.Flow, error) {
	h.state.pushEvent(evt)
	defer h.state.popEvent()

	results, err := h.state.Call(h.fn, h.eventTable(evt))
	if err != nil {
		return event.Continue, fmt.Errorf("lua handler %q: %w", h.name, err)
	}

	if len(results) > 0 && results[0] == lua.LFalse {
		return event.Stop, nil
	}
	return event.Continue, nil
}

// eventTable builds the table passed to the Lua function.
func (h *Handler) eventTable(evt *event.Event) *lua.LTable {
	L := h.state.L
	t := L.NewTable()

	t.RawSetString("name", lua.LString(evt.Name()))
	t.RawSetString("current", lua.LString(evt.CurrentPath().String()))
	t.RawSetString("original", lua.LString(evt.OriginalPath().String()))
	if bp, ok := evt.BroadcastPath(); ok {
		t.RawSetString("broadcast", lua.LString(bp.String()))
	}
	t.RawSetString("data", h.bridge.ToLuaValue(evt.Data()))
	t.RawSetString("payload", h.bridge.ToLuaValue(evt.Payload()))
	t.RawSetString("handled", lua.LBool(evt.Handled()))

	t.RawSetString("set_payload", L.NewFunction(func(L *lua.LState) int {
		L.CheckTable(1)
		key := L.CheckString(2)
		evt.SetPayloadItem(key, h.bridge.ToGoValue(L.Get(3)))
		return 0
	}))
	t.RawSetString("prevent_default", L.NewFunction(func(L *lua.LState) int {
		evt.PreventDefault()
		return 0
	}))

	return t
}

// CompileHandler compiles src into a Handler.
//
// src is either a chunk yielding a function ("function(evt) ... end" or
// "return function(evt) ... end") or a function body, in which case the
// event table is available as evt.
func CompileHandler(state *State, name, src string) (*Handler, error) {
	if state.IsClosed() {
		return nil, ErrStateClosed
	}

	code := strings.TrimSpace(src)
	switch {
	case strings.HasPrefix(code, "return"):
	case strings.HasPrefix(code, "function"):
		code = "return " + code
	default:
		code = "return function(evt)\n" + code + "\nend"
	}

	chunk, err := state.L.LoadString(code)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", name, err)
	}

	results, err := state.Call(chunk)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", name, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("compile %q: %w", name, ErrNotFunction)
	}
	fn, ok := results[0].(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("compile %q: %w (got %s)", name, ErrNotFunction, results[0].Type())
	}

	return NewHandler(state, fn, name), nil
}
