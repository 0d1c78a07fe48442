package scenario

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dshills/evan/internal/event"
	"github.com/dshills/evan/internal/event/path"
	"github.com/dshills/evan/internal/script"
	"github.com/dshills/evan/internal/trace"
)

// Runner executes scenarios.
// The zero value is usable: it logs nothing and records into a fresh
// recorder for each run.
type Runner struct {
	// Logger receives run diagnostics and is passed to the event space.
	Logger *slog.Logger
	// Recorder, when set, is reset at the start of each run and receives
	// every handler invocation.
	Recorder *trace.Recorder
	// ScriptTimeout bounds each Lua handler call. Zero uses
	// script.DefaultTimeout; a negative value disables the limit.
	ScriptTimeout time.Duration
	// ScriptOutput receives Lua print output. Nil discards it.
	ScriptOutput io.Writer
}

// Session is a scenario wired into a live event space.
type Session struct {
	scenario *Scenario
	logger   *slog.Logger
	space    *event.Space
	state    *script.State
	module   *script.Module
	recorder *trace.Recorder

	subs map[string]event.Subscription
	step int
}

// Prepare builds an event space holding the scenario's subscriptions.
// The caller must Close the session.
func (r *Runner) Prepare(sc *Scenario) (*Session, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	recorder := r.Recorder
	if recorder == nil {
		recorder = trace.NewRecorder()
	}
	recorder.Reset()

	var opts []script.StateOption
	switch {
	case r.ScriptTimeout > 0:
		opts = append(opts, script.WithTimeout(r.ScriptTimeout))
	case r.ScriptTimeout < 0:
		opts = append(opts, script.WithTimeout(0))
	}
	if r.ScriptOutput != nil {
		opts = append(opts, script.WithOutput(r.ScriptOutput))
	}

	s := &Session{
		scenario: sc,
		logger:   logger.With("scenario", sc.Name),
		space:    event.NewSpace(event.WithLogger(logger)),
		state:    script.NewState(opts...),
		recorder: recorder,
		subs:     make(map[string]event.Subscription, len(sc.Subscriptions)),
	}
	s.module = script.NewModule(s.state, s.space)
	if err := s.module.Install(); err != nil {
		s.Close()
		return nil, err
	}

	for _, spec := range sc.Subscriptions {
		if err := s.subscribe(spec); err != nil {
			s.Close()
			return nil, fmt.Errorf("subscription %q: %w", spec.Label, err)
		}
	}
	return s, nil
}

// Scenario returns the scenario the session was prepared from.
func (s *Session) Scenario() *Scenario {
	return s.scenario
}

// Space returns the session's event space.
func (s *Session) Space() *event.Space {
	return s.space
}

// Close releases the Lua state and removes all subscriptions.
func (s *Session) Close() {
	if s.module != nil {
		s.module.Cleanup()
	}
	for label, sub := range s.subs {
		s.space.Unsubscribe(sub)
		delete(s.subs, label)
	}
	s.state.Close()
}

func (s *Session) subscribe(spec SubscriptionSpec) error {
	h, err := s.handler(spec)
	if err != nil {
		return err
	}

	capture, err := path.Parse(spec.Path)
	if err != nil {
		return err
	}

	var sub event.Subscription
	switch spec.KindOrDefault() {
	case KindOne:
		sub, err = s.space.One(spec.Event, capture, h)
	case KindDelegate:
		var delegate path.Path
		delegate, err = path.Parse(spec.Delegate)
		if err != nil {
			return err
		}
		sub, err = s.space.Delegate(spec.Event, capture, delegate, h)
	default:
		sub, err = s.space.On(spec.Event, capture, h)
	}
	if err != nil {
		return err
	}
	s.subs[spec.Label] = sub
	return nil
}

// handler builds the event handler for spec. Every invocation is recorded
// before the action runs so nested dispatches appear in call order.
func (s *Session) handler(spec SubscriptionSpec) (event.Handler, error) {
	action := spec.ActionOrDefault()

	var lua *script.Handler
	if action == ActionLua {
		var err error
		lua, err = script.CompileHandler(s.state, spec.Label, spec.Script)
		if err != nil {
			return nil, err
		}
	}

	return event.HandlerFunc(func(evt *event.Event) (event.Flow, error) {
		i := s.recorder.Record(s.entry(spec.Label, evt))

		flow := event.Continue
		var err error
		switch action {
		case ActionStop:
			flow = event.Stop
		case ActionFail:
			msg := spec.Message
			if msg == "" {
				msg = spec.Label
			}
			err = fmt.Errorf("%w: %s", ErrHandlerFailed, msg)
		case ActionLua:
			flow, err = lua.Handle(evt)
		}

		switch {
		case err != nil:
			s.recorder.SetOutcome(i, "error")
		case flow == event.Stop:
			s.recorder.SetOutcome(i, "stop")
		}
		return flow, err
	}), nil
}

func (s *Session) entry(label string, evt *event.Event) trace.Entry {
	e := trace.Entry{
		Step:     s.step,
		Label:    label,
		Event:    evt.Name(),
		Current:  evt.CurrentPath().String(),
		Original: evt.OriginalPath().String(),
		Outcome:  "continue",
	}
	if root, ok := evt.BroadcastPath(); ok {
		e.Broadcast = root.String()
	}
	return e
}

// Exec executes one step and checks its expectations.
func (s *Session) Exec(i int, step Step) StepResult {
	s.step = i
	before := s.recorder.Len()
	res := StepResult{Index: i, Step: step}

	s.logger.Debug("step", "index", i, "op", string(step.Op), "event", step.Event, "path", step.Path)

	p, err := path.Parse(step.Path)
	if err != nil {
		res.Err = err
	} else {
		switch step.Op {
		case OpTrigger, OpBroadcast:
			res.Err = s.dispatch(&res, step, p)
		case OpOff:
			res.Removed = s.off(step, p)
		default:
			res.Err = fmt.Errorf("%w: unknown op %q", ErrInvalidScenario, step.Op)
		}
	}

	res.Entries = s.recorder.Entries()[before:]
	for _, e := range res.Entries {
		res.Hits = append(res.Hits, e.Hit())
	}
	res.check()

	if !res.Passed {
		s.logger.Warn("step failed", "index", i, "reason", res.Failure)
	}
	return res
}

func (s *Session) dispatch(res *StepResult, step Step, p path.Path) error {
	evt, err := s.space.SpawnEvent(step.Event)
	if err != nil {
		return err
	}
	evt.AllowBubbling(!step.NoBubble).SetPayloadItems(step.Payload)

	if step.Op == OpBroadcast {
		err = evt.BroadcastSyncOn(p, step.Data)
	} else {
		err = evt.TriggerSyncOn(p, step.Data)
	}
	res.Handled = evt.Handled()
	res.DefaultPrevented = evt.DefaultPrevented()
	return err
}

func (s *Session) off(step Step, p path.Path) int {
	if step.Label != "" {
		sub, ok := s.subs[step.Label]
		if !ok {
			return 0
		}
		delete(s.subs, step.Label)
		if s.space.Unsubscribe(sub) {
			return 1
		}
		return 0
	}
	return s.space.Off(step.Event, p)
}

// Run prepares a session, executes every step and returns the report.
// The error is non-nil only when the scenario could not be wired; failed
// expectations are reported through Report.Failed.
func (r *Runner) Run(sc *Scenario) (*Report, error) {
	s, err := r.Prepare(sc)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	report := &Report{Scenario: sc.Name, Source: sc.Source}
	for i, step := range sc.Steps {
		report.Steps = append(report.Steps, s.Exec(i, step))
	}
	report.Stats = s.space.Stats()

	s.logger.Info("scenario finished",
		"steps", len(report.Steps),
		"failed", len(report.Failures()),
		"handlers_invoked", report.Stats.HandlersInvoked,
	)
	return report, nil
}

// StepResult is the outcome of one step.
type StepResult struct {
	Index int
	Step  Step

	// Entries are the handler invocations caused by the step.
	Entries []trace.Entry
	// Hits are Entries in label@currentPath form.
	Hits []string

	Handled          bool
	DefaultPrevented bool
	// Removed counts subscriptions removed by an off step.
	Removed int
	Err     error

	Passed  bool
	Failure string
}

func (r *StepResult) check() {
	r.Passed = true

	switch {
	case r.Step.ExpectError != "":
		if r.Err == nil {
			r.fail("expected error containing %q, got none", r.Step.ExpectError)
			return
		}
		if !strings.Contains(r.Err.Error(), r.Step.ExpectError) {
			r.fail("expected error containing %q, got %q", r.Step.ExpectError, r.Err.Error())
			return
		}
	case r.Err != nil:
		r.fail("unexpected error: %v", r.Err)
		return
	}

	if !r.Step.Checked() {
		return
	}
	want := r.Step.Expect
	if !slices.Equal(r.Hits, want) {
		r.fail("hits %s, want %s", formatHits(r.Hits), formatHits(want))
	}
}

func (r *StepResult) fail(format string, args ...any) {
	r.Passed = false
	r.Failure = fmt.Sprintf(format, args...)
}

func formatHits(hits []string) string {
	return "[" + strings.Join(hits, " ") + "]"
}

// Report is the outcome of a scenario run.
type Report struct {
	Scenario string
	Source   string
	Steps    []StepResult
	Stats    event.Stats
}

// Failed reports whether any step failed.
func (r *Report) Failed() bool {
	return len(r.Failures()) > 0
}

// Failures returns the failed steps.
func (r *Report) Failures() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if !s.Passed {
			failed = append(failed, s)
		}
	}
	return failed
}

// Entries returns every recorded handler invocation of the run.
func (r *Report) Entries() []trace.Entry {
	var entries []trace.Entry
	for _, s := range r.Steps {
		entries = append(entries, s.Entries...)
	}
	return entries
}

// Err returns an ErrExpectation error describing the first failed step,
// or nil when every step passed.
func (r *Report) Err() error {
	failed := r.Failures()
	if len(failed) == 0 {
		return nil
	}
	first := failed[0]
	return fmt.Errorf("%w: scenario %q step %d (%s): %s, %d of %d steps failed",
		ErrExpectation, r.Scenario, first.Index, first.Step, first.Failure, len(failed), len(r.Steps))
}
