package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/evan/internal/event"
	"github.com/dshills/evan/internal/event/path"
)

// ModuleName is the global name of the Lua module.
const ModuleName = "evan"

// Module exposes an event.Space to Lua as the global table evan:
//
//	evan.on(name, path, fn)                  -> id
//	evan.one(name, path, fn)                 -> id
//	evan.delegate(name, capture, target, fn) -> id
//	evan.off(id)                             -> bool
//	evan.off(name, path)                     -> count
//	evan.trigger(name, path [, data])        -> handled
//	evan.broadcast(name, path [, data])      -> handled
//	evan.paths_under(name, root)             -> {path, ...}
//
// Events fired from inside a Lua handler record the handled event as
// their originating event.
type Module struct {
	state  *State
	space  *event.Space
	bridge *Bridge

	subs    map[string]event.Subscription
	handler int
}

// NewModule creates a module binding space to state.
func NewModule(state *State, space *event.Space) *Module {
	return &Module{
		state:  state,
		space:  space,
		bridge: NewBridge(state.L),
		subs:   make(map[string]event.Subscription),
	}
}

// Install registers the module as a global in the Lua state.
func (m *Module) Install() error {
	if m.state.IsClosed() {
		return ErrStateClosed
	}

	L := m.state.L
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"on":          m.on,
		"one":         m.one,
		"delegate":    m.delegate,
		"off":         m.off,
		"trigger":     m.trigger,
		"broadcast":   m.broadcast,
		"paths_under": m.pathsUnder,
	})
	L.SetGlobal(ModuleName, mod)
	return nil
}

// Cleanup removes every subscription created through the module.
func (m *Module) Cleanup() {
	for id, sub := range m.subs {
		m.space.Unsubscribe(sub)
		delete(m.subs, id)
	}
}

// Subscriptions returns the number of live subscriptions created from Lua.
func (m *Module) Subscriptions() int {
	return len(m.subs)
}

func (m *Module) checkPath(L *lua.LState, n int) path.Path {
	p, err := event.ParsePath(L.CheckString(n))
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return p
}

func (m *Module) newHandler(fn *lua.LFunction, eventName string) *Handler {
	m.handler++
	return NewHandler(m.state, fn, fmt.Sprintf("%s#%d", eventName, m.handler))
}

func (m *Module) track(L *lua.LState, sub event.Subscription, err error) int {
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	m.subs[sub.ID()] = sub
	L.Push(lua.LString(sub.ID()))
	return 1
}

// on(name, path, fn) -> id
func (m *Module) on(L *lua.LState) int {
	name := L.CheckString(1)
	p := m.checkPath(L, 2)
	fn := L.CheckFunction(3)

	sub, err := m.space.On(name, p, m.newHandler(fn, name))
	return m.track(L, sub, err)
}

// one(name, path, fn) -> id
func (m *Module) one(L *lua.LState) int {
	name := L.CheckString(1)
	p := m.checkPath(L, 2)
	fn := L.CheckFunction(3)

	h := m.newHandler(fn, name)
	var sub event.Subscription
	var err error
	sub, err = m.space.One(name, p, event.HandlerFunc(func(evt *event.Event) (event.Flow, error) {
		delete(m.subs, sub.ID())
		return h.Handle(evt)
	}))
	return m.track(L, sub, err)
}

// delegate(name, capture, target, fn) -> id
func (m *Module) delegate(L *lua.LState) int {
	name := L.CheckString(1)
	capture := m.checkPath(L, 2)
	target := m.checkPath(L, 3)
	fn := L.CheckFunction(4)

	sub, err := m.space.Delegate(name, capture, target, m.newHandler(fn, name))
	return m.track(L, sub, err)
}

// off(id) -> bool
// off(name, path) -> count
func (m *Module) off(L *lua.LState) int {
	if L.GetTop() < 2 {
		id := L.CheckString(1)
		sub, ok := m.subs[id]
		if ok {
			delete(m.subs, id)
			ok = m.space.Unsubscribe(sub)
		}
		L.Push(lua.LBool(ok))
		return 1
	}

	name := L.CheckString(1)
	p := m.checkPath(L, 2)
	removed := m.space.Off(name, p)
	for id, sub := range m.subs {
		if sub.EventName() == name && sub.Path().Equal(p) {
			delete(m.subs, id)
		}
	}
	L.Push(lua.LNumber(removed))
	return 1
}

// trigger(name, path [, data]) -> handled
func (m *Module) trigger(L *lua.LState) int {
	return m.fire(L, func(evt *event.Event, p path.Path, data any) error {
		return evt.TriggerSyncOn(p, data)
	})
}

// broadcast(name, path [, data]) -> handled
func (m *Module) broadcast(L *lua.LState) int {
	return m.fire(L, func(evt *event.Event, p path.Path, data any) error {
		return evt.BroadcastSyncOn(p, data)
	})
}

func (m *Module) fire(L *lua.LState, dispatch func(*event.Event, path.Path, any) error) int {
	name := L.CheckString(1)
	p := m.checkPath(L, 2)
	data := m.bridge.ToGoValue(L.Get(3))

	evt, err := m.space.SpawnEvent(name)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	if origin := m.state.CurrentEvent(); origin != nil {
		evt.SetOriginalEvent(origin).SetSender(origin.Sender())
	}

	if err := dispatch(evt, p, data); err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}

	L.Push(lua.LBool(evt.Handled()))
	return 1
}

// paths_under(name, root) -> {path, ...}
func (m *Module) pathsUnder(L *lua.LState) int {
	name := L.CheckString(1)
	root := m.checkPath(L, 2)

	paths := m.space.PathsUnder(name, root)
	t := L.CreateTable(len(paths), 0)
	for i, p := range paths {
		t.RawSetInt(i+1, lua.LString(p.String()))
	}
	L.Push(t)
	return 1
}
