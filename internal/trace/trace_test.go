package trace

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func sampleEntries() []Entry {
	return []Entry{
		{Step: 0, Label: "h1", Event: "my-event", Current: "a.b", Original: "a.b", Outcome: "continue"},
		{Step: 0, Label: "parent", Event: "my-event", Current: "a", Original: "a.b", Outcome: "stop"},
		{Step: 1, Label: "h1", Event: "my-event", Current: "a.b", Original: "a.b", Broadcast: "a", Outcome: "continue"},
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	for _, e := range sampleEntries() {
		r.Record(e)
	}

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, sampleEntries(), r.Entries())
	assert.Len(t, r.ForStep(0), 2)
	assert.Len(t, r.ForStep(1), 1)
	assert.Empty(t, r.ForStep(2))

	entries := r.Entries()
	entries[0].Label = "changed"
	assert.Equal(t, "h1", r.Entries()[0].Label, "Entries must return a copy")

	r.SetOutcome(1, "error")
	r.SetOutcome(7, "ignored")
	assert.Equal(t, "error", r.Entries()[1].Outcome)

	r.Reset()
	assert.Zero(t, r.Len())
	assert.Empty(t, r.Entries())
}

func TestRecorder_RecordIndex(t *testing.T) {
	r := NewRecorder()
	assert.Equal(t, 0, r.Record(Entry{Label: "a"}))
	assert.Equal(t, 1, r.Record(Entry{Label: "b"}))
}

func TestRecorder_Concurrent(t *testing.T) {
	r := NewRecorder()
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Record(Entry{Step: i})
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, r.Len())
}

func TestEntry_Hit(t *testing.T) {
	assert.Equal(t, "h1@a.b", Entry{Label: "h1", Current: "a.b"}.Hit())
}

func TestRenderJSON(t *testing.T) {
	out, err := RenderJSON(sampleEntries(), false)
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(out))

	doc := gjson.ParseBytes(out)
	assert.Equal(t, int64(3), doc.Get("count").Int())
	assert.Equal(t, "parent", doc.Get("entries.1.label").String())
	assert.Equal(t, "stop", doc.Get("entries.1.outcome").String())
	assert.False(t, doc.Get("entries.0.broadcast").Exists())
	assert.Equal(t, "a", doc.Get("entries.2.broadcast").String())
	assert.NotContains(t, string(out), "\n")
}

func TestRenderJSON_Pretty(t *testing.T) {
	out, err := RenderJSON(sampleEntries(), true)
	require.NoError(t, err)
	assert.Contains(t, string(out), "\n")
	assert.Equal(t, "h1", gjson.GetBytes(out, "entries.0.label").String())
}

func TestRenderJSON_Empty(t *testing.T) {
	out, err := RenderJSON(nil, false)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":0,"entries":[]}`, string(out))
}

func TestAppendJSON_Prefix(t *testing.T) {
	doc, err := AppendJSON([]byte(`{"name":"x"}`), "steps.0.trace", sampleEntries()[:1])
	require.NoError(t, err)
	assert.Equal(t, "x", gjson.GetBytes(doc, "name").String())
	assert.Equal(t, int64(1), gjson.GetBytes(doc, "steps.0.trace.count").Int())
	assert.Equal(t, "a.b", gjson.GetBytes(doc, "steps.0.trace.entries.0.current").String())
}

func TestRenderText_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, sampleEntries(), false))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.NotContains(t, buf.String(), "\x1b[")

	assert.True(t, strings.HasPrefix(lines[0], "#0  h1    "), lines[0])
	assert.Contains(t, lines[0], "continue")
	assert.NotContains(t, lines[0], "original=")
	assert.Contains(t, lines[1], "original=a.b")
	assert.Contains(t, lines[2], "broadcast=a")
}

func TestRenderText_Color(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, sampleEntries(), true))
	assert.Contains(t, buf.String(), "\x1b[")
}
