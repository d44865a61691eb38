// Package patterned implements the PatternedGraph Builder: it
// lowers each linked module from the AST into a pattern-preserving graph —
// declared ports, nets, instances, endpoints and a module-local
// pattern-expression table — assigning stable ids and recording source
// spans for diagnostics.
package patterned

import (
	"github.com/asdl-lang/asdlc/internal/ids"
	"github.com/asdl-lang/asdlc/internal/linker"
	"github.com/asdl-lang/asdlc/internal/paramvalue"
	"github.com/asdl-lang/asdlc/internal/pattern"
	"github.com/asdl-lang/asdlc/internal/source"
)

// ExprKind classifies what a pattern-table entry was registered for.
type ExprKind uint8

const (
	ExprNet ExprKind = iota
	ExprInst
	ExprEndpoint
	ExprParam
)

// ExprEntry is one row of a module's pattern-expression table.
type ExprEntry struct {
	ID     ids.ExprID
	Raw    string
	Kind   ExprKind
	Parsed pattern.Expr
	Span   source.Span
}

// ParamEntry is an instance or device parameter value: either a literal
// ParamValue or a reference into the pattern table (when the raw text
// contains pattern syntax or an unresolved module variable at this stage —
// by the time the builder finishes, module-variable references have
// already been substituted, per ADR-0016).
type ParamEntry struct {
	IsPattern bool
	Value     paramvalue.Value
	ExprID    ids.ExprID
}

// Net is a declared net, not yet atomized.
type Net struct {
	ID              ids.NetID
	NameExprID      ids.ExprID
	PortIntroducing bool
	Implicit        bool // auto-vivified from an endpoint reference, not declared under `nets:`
	Span            source.Span
}

// Instance is a reference to a module/device inside another module, not yet
// atomized.
type Instance struct {
	ID         ids.InstID
	NameExprID ids.ExprID
	RefKind    linker.RefKind
	RefRaw     string
	RefFileID  ids.FileID
	RefName    string
	Parameters *paramvalue.OrderedMap[ParamEntry]
	Span       source.Span
}

// Endpoint is a (net, instance_port) pair, not yet atomized.
type Endpoint struct {
	ID         ids.EndpointID
	NetID      ids.NetID
	PortExprID ids.ExprID
	ConnLabel  string
	HasLabel   bool
	Default    bool
	Span       source.Span
}

// Module is a PatternedGraph module: the canonical, pattern-preserving form
// of an ast.Module.
type Module struct {
	Name       string
	Cell       string
	View       string
	HasView    bool
	FileID     ids.FileID
	Ports      []string
	Nets       []*Net
	Instances  []*Instance
	Endpoints  []*Endpoint
	Parameters *paramvalue.OrderedMap[ParamEntry]
	ExprTable  map[ids.ExprID]*ExprEntry
	// GlobalParameters carries the entry file's top-level global parameter
	// declarations; empty for all but the entry
	// module's owning file.
	GlobalParameters *paramvalue.OrderedMap[paramvalue.Value]
	// NamedPatterns is the module-local `patterns:` table, parsed but not
	// yet expanded (expansion is the Atomizer's job).
	NamedPatterns map[string]NamedPattern
}

// NamedPattern is a parsed module-local pattern definition, optionally
// tagged with an axis id for broadcast binding (ADR-0019/0020).
type NamedPattern struct {
	Expr   pattern.Expr
	AxisID string
}

// Device is a primitive module.
type Device struct {
	Name          string
	Ports         []string
	Parameters    *paramvalue.OrderedMap[ParamEntry]
	Variables     *paramvalue.OrderedMap[string]
	SpiceTemplate string
	PDK           string
	HasPDK        bool
}

// File is one linked source file lowered into PatternedGraph form.
type File struct {
	ID      ids.FileID
	Path    string
	Modules map[string]*Module
	Devices map[string]*Device
}

// Graph is the root of the linked program.
type Graph struct {
	Entry ids.FileID
	Files map[ids.FileID]*File
	Order []ids.FileID
}
