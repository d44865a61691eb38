// Package ast defines the parsed AST tree the core compiler consumes: a
// Go struct tree keyed to source spans, standing in for whatever
// the external YAML surface parser produces. Nothing in this package parses
// YAML — see internal/astyaml for the reference loader used by the CLI and
// by tests.
package ast

import (
	"github.com/asdl-lang/asdlc/internal/source"
)

// ParamSpec is an instance or device parameter value as written by the
// author: either a resolved ParamValue, or a raw string that may still
// contain module-variable references ("{v}") and/or pattern syntax
// (enum/range/named-ref groups), normalized identically whether it was
// written via the quoted inline shorthand or the structured
// {ref, parameters: {...}} form (ADR-0031).
type ParamSpec struct {
	// Raw holds the author's literal text. Variable substitution and
	// pattern expansion both operate on this text;
	// Raw is always populated, even for values that turn out to carry no
	// variables or patterns at all.
	Raw  string
	Span source.Span
}

// NamedPatternDef is a module-local `patterns:` table entry. AxisID, when
// non-empty, marks this pattern as a tagged axis (ADR-0020): a broadcast
// binding may cross two differently-ranged groups sharing the same AxisID.
type NamedPatternDef struct {
	Name     string
	ExprRaw  string
	AxisID   string
	Span     source.Span
}

// Instance is a reference to a module/device inside another module.
// RefRaw is the author's unresolved reference text; the Import Resolver
// populates RefKind/RefID out-of-band (see linker.ResolvedInstance) rather
// than mutating this struct, keeping the AST itself immutable.
type Instance struct {
	NameRaw    string
	RefRaw     string
	Parameters []NamedParam
	Span       source.Span
}

// NamedParam is one key=value entry of an instance or device's parameter
// list, preserving declaration order.
type NamedParam struct {
	Name  string
	Value ParamSpec
}

// Net is a named electrical connection. A '$'-prefixed NameRaw marks it as
// port-introducing.
type Net struct {
	NameRaw string
	Span    source.Span
}

// PortIntroducing reports whether this net's name is '$'-prefixed.
func (n Net) PortIntroducing() bool {
	return len(n.NameRaw) > 0 && n.NameRaw[0] == '$'
}

// Endpoint connects a net to an instance pin, i.e. the edge in the
// connectivity graph. PortRaw is pattern-bearing text of the form
// "<instance-pattern>.<pin-pattern>"; ConnLabel is an optional author-facing
// label carried through to diagnostics and the compile log.
type Endpoint struct {
	NetRaw    string
	PortRaw   string
	ConnLabel string
	HasLabel  bool
	// Default marks an endpoint introduced via `instance_defaults` rather
	// than an explicit `nets:`/`endpoints:` declaration (ADR-0007).
	Default bool
	Span    source.Span
}

// Module is a named reusable circuit: either primitive (a Device) or
// hierarchical (declared here). Name is the symbol as written, which may be
// "cell" or "cell@view" (ADR-0032); use Cell()/View() to split it.
type Module struct {
	Name         string
	// PortsDeclared distinguishes an explicit empty `ports: []` (valid, per
	// ADR-0023) from an absent `ports:` key (invalid); the external YAML
	// loader is responsible for setting this correctly since Go slices
	// cannot otherwise distinguish nil-as-absent from nil-as-empty.
	PortsDeclared bool
	Ports        []string
	Nets         []Net
	Instances    []Instance
	Endpoints    []Endpoint
	Patterns     map[string]NamedPatternDef
	Variables    []NamedParam
	Parameters   []NamedParam
	// GlobalParameters is populated only for the entry file's top-level
	// declarations; it is empty for ordinary modules.
	GlobalParameters []NamedParam
	Span             source.Span
}

// Cell returns the identity portion of Name, i.e. everything before an '@'.
func (m Module) Cell() string {
	for i, r := range m.Name {
		if r == '@' {
			return m.Name[:i]
		}
	}

	return m.Name
}

// View returns the view portion of Name (after '@'), or "" if none was
// given.
func (m Module) View() string {
	for i, r := range m.Name {
		if r == '@' {
			return m.Name[i+1:]
		}
	}

	return ""
}

// Device is a primitive module rendered from a backend template rather than
// composed of instances.
type Device struct {
	Name          string
	Ports         []string
	Parameters    []NamedParam
	Variables     []NamedParam
	SpiceTemplate string
	PDK           string
	HasPDK        bool
	Span          source.Span
}

// ModelAliasEntry resolves a local `model_alias` name to a module or device,
// either by bare name in the same file or as "alias.module" in an imported
// file.
type ModelAliasEntry struct {
	Alias      string
	ModuleName string
	Span       source.Span
}

// File is one parsed ASDL source file.
type File struct {
	ID          string
	Path        string
	Imports     map[string]string // alias -> import path, e.g. "lib/file.asdl"
	ModelAlias  []ModelAliasEntry
	Modules     []Module
	Devices     []Device
}
