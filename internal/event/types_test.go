package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type structHandler struct{ id int }

func (h structHandler) Handle(*Event) (Flow, error) { return Continue, nil }

type sliceHandler []int

func (h sliceHandler) Handle(*Event) (Flow, error) { return Continue, nil }

type counter struct{ hits int }

func (c *counter) onChange(*Event) { c.hits++ }

func TestSameHandler(t *testing.T) {
	ptr := &structHandler{id: 1}
	first, second := &counter{}, &counter{}
	method := ObserverFunc(first.onChange)

	var closures []ObserverFunc
	for i := range 2 {
		closures = append(closures, func(*Event) { _ = i })
	}

	tests := []struct {
		name     string
		a, b     Handler
		expected bool
	}{
		{"same func", ObserverFunc(keepHandler), ObserverFunc(keepHandler), true},
		{"different funcs", ObserverFunc(keepHandler), ObserverFunc(dropHandler), false},
		{"different adapter types", ObserverFunc(keepHandler), HandlerFunc(func(*Event) (Flow, error) { return Continue, nil }), false},
		{"same closure", closures[0], closures[0], true},
		{"closures from one literal", closures[0], closures[1], false},
		{"same method value", method, method, true},
		{"method on different receivers", method, ObserverFunc(second.onChange), false},
		{"same pointer", ptr, ptr, true},
		{"different pointers", ptr, &structHandler{id: 1}, false},
		{"equal values", structHandler{id: 1}, structHandler{id: 1}, true},
		{"different values", structHandler{id: 1}, structHandler{id: 2}, false},
		{"uncomparable values", sliceHandler{1}, sliceHandler{1}, false},
		{"nil and nil", nil, nil, true},
		{"nil and handler", nil, ptr, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sameHandler(tt.a, tt.b))
		})
	}
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "continue", Continue.String())
	assert.Equal(t, "stop", Stop.String())
	assert.Equal(t, "unknown", Flow(9).String())

	assert.Equal(t, "unhandled", Unhandled.String())
	assert.Equal(t, "handled", Handled.String())
	assert.Equal(t, "halted", Halted.String())
	assert.Equal(t, "unknown", Outcome(9).String())

	assert.Equal(t, "persistent", KindPersistent.String())
	assert.Equal(t, "once", KindOnce.String())
	assert.Equal(t, "delegate", KindDelegate.String())
	assert.Equal(t, "unknown", Kind(9).String())
}
