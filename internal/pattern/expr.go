// Package pattern implements the PatternExpr model shared across every IR:
// compact syntax — enum `<a|b|c>`, numeric range `<N:M>` and named
// reference `<@name>` — that the Atomizer later expands into atoms. This
// package owns parsing and the static invariants; expansion (which needs
// access to a module's named-pattern table) lives in package atomize.
package pattern

import "fmt"

// GroupKind distinguishes the three forms a pattern group may take.
type GroupKind uint8

const (
	// GroupEnum is an ordered list of literal alternatives: <a|b|c>.
	GroupEnum GroupKind = iota
	// GroupRange is an inclusive integer range: <N:M>.
	GroupRange
	// GroupNamedRef is a reference to a module-local named pattern: <@name>.
	GroupNamedRef
)

// Group is one bracketed `<...>` unit within a pattern expression.
type Group struct {
	Kind GroupKind
	// Enum holds the ordered literal alternatives when Kind == GroupEnum.
	Enum []string
	// RangeStart/RangeEnd are the inclusive bounds when Kind == GroupRange.
	// Direction is inferred by RangeStart <= RangeEnd (ascending) or not
	// (descending).
	RangeStart int
	RangeEnd   int
	// Name is the referenced pattern's name when Kind == GroupNamedRef.
	Name string
	// AxisID, when non-empty, is the tagged axis identity this group
	// carries (ADR-0020). The parser leaves it empty for every group kind,
	// and it is not filled in later: the axis of a GroupNamedRef is read
	// from the owning module's named-pattern table during expansion.
	AxisID string
}

// Ascending reports the declared direction of a range group.
func (g Group) Ascending() bool { return g.RangeStart <= g.RangeEnd }

// Len returns the number of atoms this group alone expands to.
func (g Group) Len() int {
	switch g.Kind {
	case GroupEnum:
		return len(g.Enum)
	case GroupRange:
		if g.Ascending() {
			return g.RangeEnd - g.RangeStart + 1
		}

		return g.RangeStart - g.RangeEnd + 1
	default:
		// Named references have no intrinsic length until resolved.
		return -1
	}
}

// Values returns the ordered list of atom parts this group expands to: for
// GroupEnum these are its literal alternatives, for GroupRange these are the
// integers in declaration direction (e.g. <3:0> -> 3,2,1,0).
func (g Group) Values() []Part {
	switch g.Kind {
	case GroupEnum:
		out := make([]Part, len(g.Enum))
		for i, s := range g.Enum {
			out[i] = Part{Str: s}
		}

		return out
	case GroupRange:
		n := g.Len()
		out := make([]Part, n)

		if g.Ascending() {
			for i := 0; i < n; i++ {
				out[i] = Part{Int: g.RangeStart + i, IsInt: true}
			}
		} else {
			for i := 0; i < n; i++ {
				out[i] = Part{Int: g.RangeStart - i, IsInt: true}
			}
		}

		return out
	default:
		return nil
	}
}

// Part is a single substitution value contributed by one group to one atom.
// It is a typed sum (str | int) so downstream renderers (spec ADR-0018) can
// detect numeric semantics without re-parsing the literal.
type Part struct {
	Str   string
	Int   int
	IsInt bool
}

// String renders the part's textual form.
func (p Part) String() string {
	if p.IsInt {
		return fmt.Sprintf("%d", p.Int)
	}

	return p.Str
}

// Token is one element of a Segment: either a literal run of text, or a
// bracketed Group.
type Token struct {
	IsGroup bool
	Literal string
	Group   Group
}

// Segment is a sequence of tokens concatenated literally with no implicit
// joiner (ADR-0009).
type Segment []Token

// Expr is a full pattern expression: a sequence of segments, split on
// top-level splice (';') characters. A net LHS must have exactly
// one segment (ADR-0022); endpoint lists may have more.
type Expr struct {
	Raw      string
	Segments []Segment
}

// Spliced reports whether this expression contains more than one segment.
func (e Expr) Spliced() bool { return len(e.Segments) > 1 }
