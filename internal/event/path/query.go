package path

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Query is a path pattern that may contain one Wildcard segment.
// A query without a wildcard matches exactly one path.
type Query struct {
	segments []string
	wildcard int // index of the Wildcard segment, -1 if absent
	str      string
}

// ParseQuery parses a dot-separated query string.
func ParseQuery(s string) (Query, error) {
	if s == "" {
		return Query{wildcard: -1}, nil
	}
	return queryFromSegments(s, strings.Split(s, Separator))
}

// MustParseQuery is like ParseQuery but panics on malformed input.
func MustParseQuery(s string) Query {
	q, err := ParseQuery(s)
	if err != nil {
		panic(err)
	}
	return q
}

// QueryFromSegments builds a query from an explicit segment sequence.
func QueryFromSegments(segments ...string) (Query, error) {
	if len(segments) == 0 {
		return Query{wildcard: -1}, nil
	}
	return queryFromSegments(strings.Join(segments, Separator), segments)
}

// Under returns the query matching root and every path below it.
func Under(root Path) Query {
	segs := make([]string, 0, len(root.segments)+1)
	segs = append(segs, root.segments...)
	segs = append(segs, Wildcard)
	return Query{
		segments: segs,
		wildcard: len(root.segments),
		str:      strings.Join(segs, Separator),
	}
}

func queryFromSegments(input string, raw []string) (Query, error) {
	q := Query{segments: make([]string, len(raw)), wildcard: -1}
	for i, seg := range raw {
		switch {
		case seg == "":
			return Query{}, invalid(input, "empty segment")
		case seg == Wildcard:
			if q.wildcard >= 0 {
				return Query{}, invalid(input, "more than one wildcard")
			}
			q.wildcard = i
		default:
			seg = norm.NFC.String(seg)
			if strings.Contains(seg, Separator) {
				return Query{}, invalid(input, "segment contains separator")
			}
		}
		q.segments[i] = seg
	}
	q.str = strings.Join(q.segments, Separator)
	return q, nil
}

// String returns the canonical string form.
func (q Query) String() string {
	return q.str
}

// HasWildcard returns true if the query contains the Wildcard segment.
func (q Query) HasWildcard() bool {
	return q.wildcard >= 0
}

// Prefix returns the concrete segments before the wildcard as a Path.
// For a query without wildcard this is the whole query.
func (q Query) Prefix() Path {
	end := len(q.segments)
	if q.wildcard >= 0 {
		end = q.wildcard
	}
	if end == 0 {
		return Path{}
	}
	segs := q.segments[:end:end]
	return Path{segments: segs, str: strings.Join(segs, Separator)}
}

// Match returns true if p satisfies the query.
func (q Query) Match(p Path) bool {
	if q.wildcard < 0 {
		return q.str == p.str
	}

	head := q.segments[:q.wildcard]
	tail := q.segments[q.wildcard+1:]
	if len(p.segments) < len(head)+len(tail) {
		return false
	}
	for i, seg := range head {
		if p.segments[i] != seg {
			return false
		}
	}
	offset := len(p.segments) - len(tail)
	for i, seg := range tail {
		if p.segments[offset+i] != seg {
			return false
		}
	}
	return true
}
