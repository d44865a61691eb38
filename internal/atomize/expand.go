package atomize

import (
	"fmt"
	"strings"

	"github.com/asdl-lang/asdlc/internal/ids"
	"github.com/asdl-lang/asdlc/internal/pattern"
	"github.com/asdl-lang/asdlc/internal/patterned"
)

// namedPatternResolver looks up a module-local named pattern by name.
type namedPatternResolver func(name string) (patterned.NamedPattern, bool)

// expandExpr expands every segment of expr independently (ADR-0022: splice
// ';' produces independent atom lists, concatenated, never a cartesian join
// across segments) and concatenates the results in segment order.
func expandExpr(exprID ids.ExprID, expr pattern.Expr, resolve namedPatternResolver) ([]Atom, error) {
	var out []Atom

	for segIdx, seg := range expr.Segments {
		atoms, err := expandSegment(exprID, segIdx, seg, resolve)
		if err != nil {
			return nil, err
		}

		out = append(out, atoms...)
	}

	return out, nil
}

// expandSegment resolves every group token in seg (substituting <@name>
// references against resolve) and computes the cartesian product over the
// resolved groups' Values(), in declaration order (left-most group varies
// slowest, matching nested-loop iteration a reader would expect from the
// source text order).
func expandSegment(exprID ids.ExprID, segIdx int, seg pattern.Segment, resolve namedPatternResolver) ([]Atom, error) {
	var groups []resolvedGroup

	for _, tok := range seg {
		if !tok.IsGroup {
			continue
		}

		rg, err := resolveGroup(tok.Group, resolve)
		if err != nil {
			return nil, err
		}

		groups = append(groups, rg)
	}

	if len(groups) == 0 {
		return []Atom{{
			Literal: literalOf(seg),
			Origin: Origin{
				ExprID: exprID, SegmentIndex: segIdx, AtomIndex: 0,
				BaseName: literalOf(seg),
			},
		}}, nil
	}

	lens := make([]int, len(groups))
	total := 1

	for i, g := range groups {
		n := g.group.Len()
		if n < 0 {
			return nil, fmt.Errorf("group %d in segment has no resolvable length", i)
		}

		lens[i] = n
		total *= n
	}

	atoms := make([]Atom, total)
	indices := make([]int, len(groups))

	for atomIdx := 0; atomIdx < total; atomIdx++ {
		atoms[atomIdx] = buildAtom(exprID, segIdx, atomIdx, seg, groups, indices)
		incrementMixedRadix(indices, lens)
	}

	return atoms, nil
}

// resolveGroup turns a parsed pattern.Group into a resolvedGroup, expanding
// GroupNamedRef against the module's named-pattern table and determining its
// axis key for broadcast binding (ADR-0019/0020): an explicit axis id tag
// wins, otherwise the referenced pattern's own name is the axis key, so two
// identical `<@name>` references naturally share identity without tagging.
func resolveGroup(g pattern.Group, resolve namedPatternResolver) (resolvedGroup, error) {
	if g.Kind != pattern.GroupNamedRef {
		return resolvedGroup{group: g}, nil
	}

	np, ok := resolve(g.Name)
	if !ok {
		return resolvedGroup{}, fmt.Errorf("named pattern %q is not declared", g.Name)
	}

	if len(np.Expr.Segments) != 1 || len(np.Expr.Segments[0]) != 1 || !np.Expr.Segments[0][0].IsGroup {
		return resolvedGroup{}, fmt.Errorf("named pattern %q must be a single group", g.Name)
	}

	inner := np.Expr.Segments[0][0].Group

	axisKey := np.AxisID
	if axisKey == "" {
		axisKey = g.Name
	}

	return resolvedGroup{group: inner, axisKey: axisKey, isNamed: true}, nil
}

// buildAtom materializes the atom at the given mixed-radix coordinate.
func buildAtom(exprID ids.ExprID, segIdx, atomIdx int, seg pattern.Segment, groups []resolvedGroup, indices []int) Atom {
	var lit strings.Builder
	var base strings.Builder

	parts := make([]pattern.Part, 0, len(groups))
	coords := map[string]int{}
	groupPos := 0

	for _, tok := range seg {
		if !tok.IsGroup {
			lit.WriteString(tok.Literal)
			base.WriteString(tok.Literal)

			continue
		}

		rg := groups[groupPos]
		idx := indices[groupPos]
		vals := rg.group.Values()
		part := vals[idx]

		lit.WriteString(part.String())
		parts = append(parts, part)

		if rg.axisKey != "" {
			coords[rg.axisKey] = idx
		}

		groupPos++
	}

	return Atom{
		Literal: lit.String(),
		Origin: Origin{
			ExprID: exprID, SegmentIndex: segIdx, AtomIndex: atomIdx,
			BaseName: base.String(), PatternParts: parts,
		},
		AxisCoords: coords,
	}
}

// literalOf concatenates a group-free segment's literal tokens.
func literalOf(seg pattern.Segment) string {
	var b strings.Builder
	for _, tok := range seg {
		b.WriteString(tok.Literal)
	}

	return b.String()
}

// incrementMixedRadix advances indices to the next coordinate in a
// mixed-radix counter with per-position bounds lens, left-most position
// slowest (so the first-declared group is the outer loop).
func incrementMixedRadix(indices, lens []int) {
	for i := len(indices) - 1; i >= 0; i-- {
		indices[i]++
		if indices[i] < lens[i] {
			return
		}

		indices[i] = 0
	}
}
