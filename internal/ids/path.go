package ids

import (
	"fmt"
	"strings"
)

// Path addresses a dotted reference: a qualified module reference
// ("alias.module", resolved by the Import Resolver) or an endpoint pair
// ("inst_literal.pin_literal", resolved by the Binding Verifier).
type Path struct {
	segments []string
}

// NewPath constructs a path from its ordered segments.
func NewPath(segments ...string) Path {
	return Path{segments: segments}
}

// ParseDotted splits a raw "a.b.c"-style reference into a Path. Per ADR-0015
// an endpoint atom must split on the *last* '.' only, so this helper is not
// used for endpoint splitting — see SplitLastDot.
func ParseDotted(raw string) Path {
	return NewPath(strings.Split(raw, ".")...)
}

// SplitLastDot splits an endpoint atom on its last '.' into (instance
// literal, pin literal), as required by ADR-0015. Returns false if the atom
// does not contain exactly one logical split point (i.e. no '.' at all).
func SplitLastDot(atom string) (inst string, pin string, ok bool) {
	idx := strings.LastIndex(atom, ".")
	if idx < 0 {
		return "", "", false
	}

	return atom[:idx], atom[idx+1:], true
}

// Depth returns the number of segments in this path.
func (p Path) Depth() int { return len(p.segments) }

// Head returns the first (outermost) segment.
func (p Path) Head() string { return p.segments[0] }

// Tail returns the last (innermost) segment.
func (p Path) Tail() string { return p.segments[len(p.segments)-1] }

// Segments returns a copy of the path's segments.
func (p Path) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)

	return out
}

// String renders the path using '.' as the separator.
func (p Path) String() string {
	return strings.Join(p.segments, ".")
}

// Equals reports whether two paths have identical segments.
func (p Path) Equals(other Path) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}

	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}

	return true
}

// EndpointKey builds the canonical (inst_literal, pin_literal) identity used
// by ADR-0012 to test endpoint ownership: two endpoint atoms own the same
// instance pin iff their EndpointKey values are equal.
func EndpointKey(instLiteral, pinLiteral string) string {
	return fmt.Sprintf("%s.%s", instLiteral, pinLiteral)
}
