package atomize

import "fmt"

// bindBroadcast resolves, for every endpoint atom, which net atom it
// connects to. Four
// cases are handled:
//
//   - Equal atom counts: positional identity (index i binds to index i).
//   - A single net atom: every endpoint atom binds to it.
//   - Endpoint count is an integer multiple of net count, and every net
//     axis key has a matching endpoint axis key of equal length: each
//     endpoint atom's coordinate on the shared axes selects its net atom,
//     independent of the two sides' absolute literal values (ADR-0020's
//     whole point — two differently-ranged tagged axes share identity by
//     ordinal position, not by value).
//   - Anything else is a length mismatch, E-PARAM-LEN.
func bindBroadcast(netAtoms, endpointAtoms []Atom) ([]int, error) {
	n, k := len(netAtoms), len(endpointAtoms)

	if n == k {
		out := make([]int, k)
		for i := range out {
			out[i] = i
		}

		return out, nil
	}

	if n == 1 {
		return make([]int, k), nil
	}

	if n == 0 || k%n != 0 {
		return nil, fmt.Errorf("net has %d atom(s) but endpoint expands to %d: lengths are not compatible for broadcast", n, k)
	}

	netAxisKeys := axisKeyOrder(netAtoms)
	if len(netAxisKeys) == 0 {
		return nil, fmt.Errorf("net has %d atom(s) but endpoint expands to %d and net carries no named axis to broadcast over", n, k)
	}

	for _, key := range netAxisKeys {
		if axisLen(netAtoms, key) != axisLen(endpointAtoms, key) {
			return nil, fmt.Errorf("shared axis %q has mismatched length between net (%d) and endpoint (%d)", key, axisLen(netAtoms, key), axisLen(endpointAtoms, key))
		}
	}

	netByCoord := map[string]int{}

	for i, a := range netAtoms {
		netByCoord[coordKey(a, netAxisKeys)] = i
	}

	out := make([]int, k)

	for i, a := range endpointAtoms {
		key := coordKey(a, netAxisKeys)

		idx, ok := netByCoord[key]
		if !ok {
			return nil, fmt.Errorf("endpoint atom %q has no matching net atom on shared axes %v", a.Literal, netAxisKeys)
		}

		out[i] = idx
	}

	return out, nil
}

// bindParamBroadcast resolves, for every instance atom, which atom of an
// instance-scoped pattern parameter it reads. Unlike bindBroadcast this is
// not axis-keyed: a pattern-valued instance parameter must expand to either
// exactly one atom (broadcast: every instance atom reads the same value) or
// exactly instCount atoms (positional: instance atom i reads parameter atom
// i). Any other length is E-PARAM-LEN.
func bindParamBroadcast(instCount, paramCount int) ([]int, error) {
	out := make([]int, instCount)

	switch paramCount {
	case 1:
		return out, nil
	case instCount:
		for i := range out {
			out[i] = i
		}

		return out, nil
	default:
		return nil, fmt.Errorf("parameter pattern expands to %d atom(s) but instance expands to %d: length must be 1 (broadcast) or %d", paramCount, instCount, instCount)
	}
}

// axisKeyOrder returns the distinct axis keys carried by atoms, in first-seen
// order, restricted to keys every atom in the slice agrees on (a net's own
// atoms all share the same axis key set, since they come from one expr).
func axisKeyOrder(atoms []Atom) []string {
	if len(atoms) == 0 {
		return nil
	}

	var keys []string

	for k := range atoms[0].AxisCoords {
		keys = append(keys, k)
	}

	return keys
}

// axisLen returns the number of distinct coordinate values atoms take on for
// the given axis key, i.e. that axis's own length.
func axisLen(atoms []Atom, key string) int {
	seen := map[int]bool{}
	for _, a := range atoms {
		seen[a.AxisCoords[key]] = true
	}

	return len(seen)
}

// coordKey builds a lookup key from an atom's coordinates on exactly the
// given ordered axis keys.
func coordKey(a Atom, keys []string) string {
	s := ""
	for _, k := range keys {
		s += fmt.Sprintf("%s=%d;", k, a.AxisCoords[k])
	}

	return s
}
