// Package atomize implements the Pattern Expander: it expands
// enum `<a|b|c>` and range `<N:M>` groups, substitutes named patterns
// `<@name>`, and produces an AtomizedGraph of single-atom entities, each
// carrying pattern-origin provenance and participating in broadcast binding
// when a net's pattern expands to a different atom count than the endpoint
// binding it.
package atomize

import (
	"github.com/asdl-lang/asdlc/internal/ids"
	"github.com/asdl-lang/asdlc/internal/pattern"
)

// Origin is the provenance tuple recorded on every atom. Identity is the expanded literal, never this tuple —
// Origin exists purely so renderers and tooling can reconstruct how an atom
// was produced without re-parsing its literal.
type Origin struct {
	ExprID       ids.ExprID
	SegmentIndex int
	AtomIndex    int
	BaseName     string
	PatternParts []pattern.Part
}

// Atom is one fully-expanded literal produced from a pattern expression.
type Atom struct {
	Literal string
	Origin  Origin
	// AxisCoords maps an axis key (either an explicit tag or, absent a tag,
	// the referenced named-pattern's own name — ADR-0019/0020) to this
	// atom's ordinal position within that axis's own enumeration. Only
	// groups that originated from a `<@name>` reference contribute an
	// entry; inline enum/range groups never carry an axis key.
	AxisCoords map[string]int
}

// resolvedGroup is a pattern.Group together with the axis key it
// contributes to broadcast binding, if any.
type resolvedGroup struct {
	group   pattern.Group
	axisKey string // "" if this group does not participate in axis matching
	isNamed bool
}
