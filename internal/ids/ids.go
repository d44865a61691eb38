// Package ids defines the stable string identifiers assigned during graph
// construction and preserved across every pass: file, module,
// device, instance, net, endpoint and expression ids. Keeping these as
// distinct named string types (rather than a single bare string) lets the
// compiler catch an id of the wrong kind being threaded into the wrong map
// at build time.
package ids

import "fmt"

// FileID stably identifies a source file within a linked program.
type FileID string

// ModuleID stably identifies a hierarchical or primitive module/device
// definition, scoped to its owning file.
type ModuleID string

// DeviceID stably identifies a primitive device definition.
type DeviceID string

// InstID stably identifies an instance declaration (pre-atomization) or a
// single atom thereof (post-atomization).
type InstID string

// NetID stably identifies a net declaration (pre-atomization) or a single
// atom thereof (post-atomization).
type NetID string

// EndpointID stably identifies an endpoint declaration or atom.
type EndpointID string

// ExprID stably identifies a registration in a module's pattern-expression
// table.
type ExprID string

// Counter allocates sequential, stable ids under a single prefix.
// The PatternedGraph Builder creates a fresh Counter per module and per
// device, prefixed with the file id and name, so ids never
// leak identity across independent compiles, since passes hold no shared
// mutable state.
type Counter struct {
	prefix string
	next   uint64
}

// NewCounter constructs a counter that mints ids of the form "<prefix>#N".
func NewCounter(prefix string) *Counter {
	return &Counter{prefix: prefix}
}

// Next mints the next id in sequence.
func (c *Counter) Next() string {
	id := fmt.Sprintf("%s#%d", c.prefix, c.next)
	c.next++

	return id
}
