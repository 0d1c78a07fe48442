// Package scenario describes, loads and runs event dispatch scenarios.
//
// A scenario declares a set of labelled subscriptions and a sequence of
// steps (trigger, broadcast, off). Running it wires the subscriptions into a
// fresh event.Space, executes the steps in order and compares the handler
// hits of each step against its expectations.
//
// Scenarios are written in TOML:
//
//	name = "bubbling"
//
//	[[subscriptions]]
//	label = "leaf"
//	event = "changed"
//	path  = "a.b"
//
//	[[steps]]
//	op     = "trigger"
//	event  = "changed"
//	path   = "a.b"
//	expect = ["leaf@a.b"]
//
// or in the equivalent JSON document.
package scenario

import (
	"fmt"
	"strings"
)

// Kind selects how a subscription is registered.
type Kind string

const (
	// KindOn is a persistent subscription.
	KindOn Kind = "on"
	// KindOne fires once and then removes itself.
	KindOne Kind = "one"
	// KindDelegate fires only for events originating under Delegate.
	KindDelegate Kind = "delegate"
)

// Action is what a scripted subscription does when it runs.
type Action string

const (
	// ActionRecord records the hit and continues.
	ActionRecord Action = "record"
	// ActionStop records the hit and stops propagation.
	ActionStop Action = "stop"
	// ActionFail records the hit and returns an error.
	ActionFail Action = "fail"
	// ActionLua records the hit and runs Script as a Lua handler.
	ActionLua Action = "lua"
)

// Op is a step operation.
type Op string

const (
	// OpTrigger triggers an event at Path and lets it bubble.
	OpTrigger Op = "trigger"
	// OpBroadcast broadcasts an event to every subscribed path under Path.
	OpBroadcast Op = "broadcast"
	// OpOff removes the subscription named by Label, or every subscription
	// for Event at Path.
	OpOff Op = "off"
)

// Scenario is a named list of subscriptions and steps.
type Scenario struct {
	Name          string             `toml:"name" validate:"required"`
	Description   string             `toml:"description"`
	Subscriptions []SubscriptionSpec `toml:"subscriptions" validate:"dive"`
	Steps         []Step             `toml:"steps" validate:"min=1,dive"`

	// Source is the file the scenario was loaded from, if any.
	Source string `toml:"-"`
}

// SubscriptionSpec declares one labelled subscription.
type SubscriptionSpec struct {
	Label    string `toml:"label" validate:"required,excludesall=@"`
	Event    string `toml:"event" validate:"required"`
	Path     string `toml:"path"`
	Kind     Kind   `toml:"kind" validate:"omitempty,oneof=on one delegate"`
	Delegate string `toml:"delegate"`
	Action   Action `toml:"action" validate:"omitempty,oneof=record stop fail lua"`
	Script   string `toml:"script"`
	Message  string `toml:"message"`
}

// Step is one operation of a scenario.
type Step struct {
	Op       Op             `toml:"op" validate:"required,oneof=trigger broadcast off"`
	Event    string         `toml:"event"`
	Path     string         `toml:"path"`
	Data     any            `toml:"data"`
	Payload  map[string]any `toml:"payload"`
	NoBubble bool           `toml:"no_bubble"`
	Label    string         `toml:"label"`

	// Expect lists the hits the step must produce, in order, as
	// label@currentPath. A nil Expect is not checked unless ExpectNone
	// is set.
	Expect     []string `toml:"expect"`
	ExpectNone bool     `toml:"expect_none"`

	// ExpectError, when set, must be a substring of the step's error.
	ExpectError string `toml:"expect_error"`
}

// KindOrDefault returns the subscription kind, defaulting to KindOn.
func (s SubscriptionSpec) KindOrDefault() Kind {
	if s.Kind == "" {
		return KindOn
	}
	return s.Kind
}

// ActionOrDefault returns the subscription action, defaulting to
// ActionLua when a script is present and ActionRecord otherwise.
func (s SubscriptionSpec) ActionOrDefault() Action {
	if s.Action != "" {
		return s.Action
	}
	if s.Script != "" {
		return ActionLua
	}
	return ActionRecord
}

// Checked reports whether the step's hits are compared with Expect.
func (s Step) Checked() bool {
	return s.Expect != nil || s.ExpectNone
}

// String returns a short description such as "trigger changed@a.b".
func (s Step) String() string {
	switch {
	case s.Op == OpOff && s.Label != "":
		return fmt.Sprintf("off %s", s.Label)
	default:
		return fmt.Sprintf("%s %s@%s", s.Op, s.Event, s.Path)
	}
}

// SplitHit splits a label@path expectation.
func SplitHit(hit string) (label, p string, ok bool) {
	return strings.Cut(hit, "@")
}
