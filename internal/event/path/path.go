package path

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// Separator is the character used to separate path segments.
	Separator = "."

	// Wildcard matches any number of segments, including zero. It is only
	// valid inside a Query.
	Wildcard = "**"
)

// Path is an immutable hierarchical identifier.
// The zero value is the root path.
type Path struct {
	segments []string
	str      string
}

// Root returns the empty path.
func Root() Path {
	return Path{}
}

// Parse parses a dot-separated path string.
// The empty string yields the root path.
func Parse(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	return fromSegments(s, strings.Split(s, Separator))
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// FromSegments builds a path from an explicit segment sequence.
func FromSegments(segments ...string) (Path, error) {
	if len(segments) == 0 {
		return Path{}, nil
	}
	return fromSegments(strings.Join(segments, Separator), segments)
}

// From accepts a Path, a path string or a segment slice and returns the
// corresponding Path. A Path argument is returned unchanged.
func From(v any) (Path, error) {
	switch val := v.(type) {
	case Path:
		return val, nil
	case *Path:
		if val == nil {
			return Path{}, invalid("<nil>", "nil path")
		}
		return *val, nil
	case string:
		return Parse(val)
	case []string:
		return FromSegments(val...)
	case []any:
		segs := make([]string, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return Path{}, invalid(fmt.Sprint(v), fmt.Sprintf("segment %d is %T, not string", i, item))
			}
			segs[i] = s
		}
		return FromSegments(segs...)
	default:
		return Path{}, invalid(fmt.Sprint(v), fmt.Sprintf("cannot build path from %T", v))
	}
}

func fromSegments(input string, raw []string) (Path, error) {
	segs := make([]string, len(raw))
	for i, seg := range raw {
		if seg == "" {
			return Path{}, invalid(input, "empty segment")
		}
		if seg == Wildcard {
			return Path{}, invalid(input, "wildcard in concrete path")
		}
		seg = norm.NFC.String(seg)
		if strings.Contains(seg, Separator) {
			return Path{}, invalid(input, "segment contains separator")
		}
		segs[i] = seg
	}
	return Path{segments: segs, str: strings.Join(segs, Separator)}, nil
}

// String returns the canonical string form.
func (p Path) String() string {
	return p.str
}

// Segments returns a copy of the path segments.
func (p Path) Segments() []string {
	if len(p.segments) == 0 {
		return nil
	}
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

// Len returns the number of segments.
func (p Path) Len() int {
	return len(p.segments)
}

// IsRoot returns true for the empty path.
func (p Path) IsRoot() bool {
	return len(p.segments) == 0
}

// Equal reports whether both paths have the same canonical string.
func (p Path) Equal(other Path) bool {
	return p.str == other.str
}

// Clone returns a path with equal content and its own backing storage.
func (p Path) Clone() Path {
	return Path{segments: p.Segments(), str: p.str}
}

// Last returns the final segment, or "" for the root.
func (p Path) Last() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Shrink returns a new path with the last segment removed.
//
// Example: "document.body.p" -> "document.body"
func (p Path) Shrink() (Path, error) {
	if len(p.segments) == 0 {
		return Path{}, invalid(p.str, "cannot shrink empty path")
	}
	segs := p.segments[:len(p.segments)-1:len(p.segments)-1]
	return Path{segments: segs, str: strings.Join(segs, Separator)}, nil
}

// Child returns a new path with segment appended.
func (p Path) Child(segment string) (Path, error) {
	c, err := fromSegments(segment, []string{segment})
	if err != nil {
		return Path{}, err
	}
	return p.Append(c), nil
}

// Append returns a new path made of p followed by other.
func (p Path) Append(other Path) Path {
	if other.IsRoot() {
		return p
	}
	if p.IsRoot() {
		return other
	}
	segs := make([]string, 0, len(p.segments)+len(other.segments))
	segs = append(segs, p.segments...)
	segs = append(segs, other.segments...)
	return Path{segments: segs, str: p.str + Separator + other.str}
}

// HasPrefix returns true if prefix matches the leading segments of p.
// Every path has the root as prefix.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.segments) > len(p.segments) {
		return false
	}
	for i, seg := range prefix.segments {
		if p.segments[i] != seg {
			return false
		}
	}
	return true
}

// IsUnder returns true if p is root or lies below it in the hierarchy.
func (p Path) IsUnder(root Path) bool {
	return p.HasPrefix(root)
}

// RelativeTo returns the part of p below root.
func (p Path) RelativeTo(root Path) (Path, error) {
	if !p.HasPrefix(root) {
		return Path{}, invalid(p.str, fmt.Sprintf("not under %q", root.str))
	}
	segs := p.segments[len(root.segments):]
	if len(segs) == 0 {
		return Path{}, nil
	}
	return Path{segments: segs, str: strings.Join(segs, Separator)}, nil
}
