package atomize

import (
	"github.com/asdl-lang/asdlc/internal/ids"
	"github.com/asdl-lang/asdlc/internal/linker"
	"github.com/asdl-lang/asdlc/internal/paramvalue"
)

// Net is one fully-expanded net atom.
type Net struct {
	ID              ids.NetID
	Name            string
	Origin          Origin
	PortIntroducing bool
	Implicit        bool
}

// Instance is one fully-expanded instance atom, with every parameter
// resolved to a concrete value for this specific atom (a pattern-valued
// parameter binds by length alone: a single parameter atom is broadcast to
// every instance atom, and one atom per instance atom binds positionally).
type Instance struct {
	ID         ids.InstID
	Name       string
	Origin     Origin
	RefKind    linker.RefKind
	RefFileID  ids.FileID
	RefName    string
	RefRaw     string
	Parameters *paramvalue.OrderedMap[paramvalue.Value]
}

// Endpoint is one fully-expanded (net atom, instance atom, pin) edge.
type Endpoint struct {
	ID        ids.EndpointID
	NetName   string
	InstName  string
	PinName   string
	ConnLabel string
	HasLabel  bool
	Default   bool
}

// Module is an atomized module: every pattern expanded, every atom a
// concrete, collision-checked literal.
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
	Parameters *paramvalue.OrderedMap[paramvalue.Value]

	GlobalParameters *paramvalue.OrderedMap[paramvalue.Value]
}

// Device is a primitive module, unchanged by atomization except for
// resolved (non-pattern) parameter values — devices have no nets, instances
// or endpoints of their own.
type Device struct {
	Name          string
	Ports         []string
	Parameters    *paramvalue.OrderedMap[paramvalue.Value]
	Variables     *paramvalue.OrderedMap[string]
	SpiceTemplate string
	PDK           string
	HasPDK        bool
}

// File is one atomized source file.
type File struct {
	ID      ids.FileID
	Path    string
	Modules map[string]*Module
	Devices map[string]*Device
}

// Graph is the root AtomizedGraph.
type Graph struct {
	Entry ids.FileID
	Files map[ids.FileID]*File
	Order []ids.FileID
}
