package pattern

import "strings"

// HasGroup reports whether raw contains at least one '<...>' pattern group,
// i.e. whether it needs to go through Parse/expansion at all rather than
// being treated as a plain literal.
func HasGroup(raw string) bool {
	return strings.ContainsRune(raw, '<')
}
