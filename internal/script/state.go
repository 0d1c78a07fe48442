package script

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/evan/internal/event"
)

// DefaultTimeout bounds a single outermost Lua call.
const DefaultTimeout = 5 * time.Second

// State wraps gopher-lua with the safe standard libraries only.
//
// gopher-lua's LState is not goroutine-safe. A State must be used from a
// single goroutine. Calls may nest: a Lua handler that triggers an event
// can cause further Lua handlers to run on the same State.
type State struct {
	L *lua.LState

	timeout time.Duration
	output  io.Writer

	// depth counts nested calls; the timeout applies to the outermost one.
	depth int

	// events is the stack of events being handled by Lua handlers.
	events []*event.Event

	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithTimeout sets the timeout for outermost calls. Zero disables it.
func WithTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// WithOutput redirects Lua's print to w.
func WithOutput(w io.Writer) StateOption {
	return func(s *State) {
		s.output = w
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	state := &State{
		timeout: DefaultTimeout,
		output:  io.Discard,
	}
	for _, opt := range opts {
		opt(state)
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})
	state.L = L

	openSafeLibraries(L)
	state.installPrint()

	return state
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// base opens these; they load code from disk or strings
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// installPrint replaces print with a version writing to the state's output.
func (s *State) installPrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		fmt.Fprintln(s.output, strings.Join(parts, "\t"))
		return 0
	}))
}

// DoString executes a Lua chunk.
func (s *State) DoString(code string) error {
	if s.closed {
		return ErrStateClosed
	}

	fn, err := s.L.LoadString(code)
	if err != nil {
		return err
	}
	_, err = s.Call(fn)
	return err
}

// Call calls fn with args and returns its results.
// Returns an empty slice (not nil) if the function returns no values.
func (s *State) Call(fn *lua.LFunction, args ...lua.LValue) ([]lua.LValue, error) {
	if s.closed {
		return nil, ErrStateClosed
	}

	if s.depth == 0 && s.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		s.L.SetContext(ctx)
		defer func() {
			s.L.RemoveContext()
			cancel()
		}()
	}
	s.depth++
	defer func() { s.depth-- }()

	// Record stack top before pushing anything
	stackTop := s.L.GetTop()

	s.L.Push(fn)
	for _, arg := range args {
		s.L.Push(arg)
	}

	if err := s.L.PCall(len(args), lua.MultRet, nil); err != nil {
		if ctx := s.L.Context(); ctx != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		}
		return nil, err
	}

	// Collect return values (only the new values added after the call)
	nRet := s.L.GetTop() - stackTop
	if nRet <= 0 {
		return []lua.LValue{}, nil
	}
	results := make([]lua.LValue, nRet)
	for i := 0; i < nRet; i++ {
		results[i] = s.L.Get(stackTop + i + 1)
	}
	s.L.Pop(nRet)

	return results, nil
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// SetGlobal sets a global variable.
func (s *State) SetGlobal(name string, value lua.LValue) {
	if s.closed {
		return
	}
	s.L.SetGlobal(name, value)
}

// CurrentEvent returns the event a Lua handler on this state is handling,
// or nil when no handler is running.
func (s *State) CurrentEvent() *event.Event {
	if len(s.events) == 0 {
		return nil
	}
	return s.events[len(s.events)-1]
}

func (s *State) pushEvent(evt *event.Event) {
	s.events = append(s.events, evt)
}

func (s *State) popEvent() {
	s.events = s.events[:len(s.events)-1]
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	return s.closed
}

// Close releases all resources associated with the Lua state.
// After Close is called, all other methods will return ErrStateClosed.
func (s *State) Close() {
	if s.closed {
		return
	}
	s.L.Close()
	s.closed = true
}
