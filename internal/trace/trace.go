// Package trace records the handler invocations of a scenario run and
// renders them as text or JSON.
package trace

import "sync"

// Entry describes one handler invocation.
type Entry struct {
	// Step is the zero-based index of the scenario step that caused it.
	Step int `json:"step"`
	// Label names the subscription that ran.
	Label string `json:"label"`
	// Event is the event name.
	Event string `json:"event"`
	// Current is the path the event was at when the handler ran.
	Current string `json:"current"`
	// Original is the path the event was first triggered at.
	Original string `json:"original"`
	// Broadcast is the broadcast root, empty outside a broadcast.
	Broadcast string `json:"broadcast,omitempty"`
	// Outcome is what the handler did: continue, stop or error.
	Outcome string `json:"outcome"`
}

// Hit returns the entry in label@current form.
func (e Entry) Hit() string {
	return e.Label + "@" + e.Current
}

// Recorder collects entries in invocation order.
//
// Thread-safety: all methods are safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends an entry and returns its index.
func (r *Recorder) Record(e Entry) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return len(r.entries) - 1
}

// SetOutcome replaces the outcome of the entry at index i.
// Out of range indexes are ignored.
func (r *Recorder) SetOutcome(i int, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i >= 0 && i < len(r.entries) {
		r.entries[i].Outcome = outcome
	}
}

// Entries returns a copy of all recorded entries.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]Entry, len(r.entries))
	copy(result, r.entries)
	return result
}

// ForStep returns the entries recorded for the given step.
func (r *Recorder) ForStep(step int) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []Entry
	for _, e := range r.entries {
		if e.Step == step {
			result = append(result, e)
		}
	}
	return result
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Reset discards all entries.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
