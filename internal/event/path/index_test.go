package path

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pathStrings(paths []Path) []string {
	if paths == nil {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.String()
	}
	return out
}

func TestIndex_ZeroValue(t *testing.T) {
	var x Index

	assert.False(t, x.Contains(MustParse("a")))
	assert.False(t, x.Delete(MustParse("a")))
	assert.Empty(t, x.Under(Root()))
	assert.Equal(t, 0, x.Len())

	require.True(t, x.Insert(MustParse("a.b")))
	assert.True(t, x.Contains(MustParse("a.b")))
	assert.Equal(t, 1, x.Len())
}

func TestIndex_Insert(t *testing.T) {
	x := NewIndex()

	tests := []struct {
		path     string
		expected bool
	}{
		{"test.event", true},
		{"test.event.foo", true},
		{"test.event", false}, // duplicate
		{"", true},            // root
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, x.Insert(MustParse(tt.path)), "Insert(%q)", tt.path)
	}
	assert.Equal(t, 3, x.Len())
}

func TestIndex_Delete(t *testing.T) {
	x := NewIndex()
	x.Insert(MustParse("a.b.c"))
	x.Insert(MustParse("a.b"))

	assert.True(t, x.Delete(MustParse("a.b.c")))
	assert.False(t, x.Delete(MustParse("a.b.c")), "already deleted")
	assert.False(t, x.Delete(MustParse("a")), "intermediate node is not a member")
	assert.True(t, x.Contains(MustParse("a.b")))
	assert.Equal(t, 1, x.Len())

	assert.True(t, x.Delete(MustParse("a.b")))
	assert.Empty(t, x.root.children, "empty nodes should be pruned")
}

func TestIndex_Under_InsertionOrder(t *testing.T) {
	x := NewIndex()
	for _, p := range []string{
		"test.event",
		"test.event.foo",
		"test.event.foo.bar",
		"test.foo.bar",
		"test.event.hello",
	} {
		x.Insert(MustParse(p))
	}

	assert.Equal(t,
		[]string{"test.event", "test.event.foo", "test.event.foo.bar", "test.event.hello"},
		pathStrings(x.Under(MustParse("test.event"))),
	)
	assert.Equal(t,
		[]string{"test.foo.bar"},
		pathStrings(x.Under(MustParse("test.foo"))),
	)
	assert.Nil(t, x.Under(MustParse("nothing")))
}

func TestIndex_Under_ReinsertMovesToEnd(t *testing.T) {
	x := NewIndex()
	x.Insert(MustParse("r.a"))
	x.Insert(MustParse("r.b"))
	x.Delete(MustParse("r.a"))
	x.Insert(MustParse("r.a"))

	assert.Equal(t, []string{"r.b", "r.a"}, pathStrings(x.Under(MustParse("r"))))
}

func TestIndex_Match(t *testing.T) {
	x := NewIndex()
	for _, p := range []string{"a.x.z", "a.z", "a.x", "b.z"} {
		x.Insert(MustParse(p))
	}

	assert.Equal(t, []string{"a.x.z", "a.z"}, pathStrings(x.Match(MustParseQuery("a.**.z"))))
	assert.Equal(t, []string{"a.x.z", "a.z", "b.z"}, pathStrings(x.Match(MustParseQuery("**.z"))))
	assert.Equal(t, []string{"a.x"}, pathStrings(x.Match(MustParseQuery("a.x"))))
	assert.Nil(t, x.Match(MustParseQuery("c")))
}

func TestIndex_All(t *testing.T) {
	x := NewIndex()
	x.Insert(MustParse("b"))
	x.Insert(Root())
	x.Insert(MustParse("a.c"))

	assert.Equal(t, []string{"b", "", "a.c"}, pathStrings(x.All()))
}
