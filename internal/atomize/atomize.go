package atomize

import (
	"fmt"

	"github.com/asdl-lang/asdlc/internal/ids"
	"github.com/asdl-lang/asdlc/internal/paramvalue"
	"github.com/asdl-lang/asdlc/internal/patterned"
	"github.com/asdl-lang/asdlc/internal/source"
)

// component is the Atomizer's stage index for diagnostic ordering.
const component = 3

// Atomize expands every pattern in a PatternedGraph into concrete atoms:
// instance and net declarations become one entry per atom,
// endpoints are re-split on a per-atom basis, and literal collisions within
// a module are reported as fatal errors regardless of whether the colliding
// atoms came from the same pattern expression (ADR-0011).
func Atomize(pg *patterned.Graph) (*Graph, []source.Diagnostic) {
	a := &atomizer{sink: source.NewSink()}

	out := &Graph{Entry: pg.Entry, Files: map[ids.FileID]*File{}, Order: pg.Order}

	for fileID, f := range pg.Files {
		out.Files[fileID] = a.atomizeFile(fileID, f)
	}

	return out, a.sink.All()
}

type atomizer struct {
	sink *source.Sink
}

func (a *atomizer) atomizeFile(fileID ids.FileID, f *patterned.File) *File {
	out := &File{ID: fileID, Path: f.Path, Modules: map[string]*Module{}, Devices: map[string]*Device{}}

	for name, m := range f.Modules {
		out.Modules[name] = a.atomizeModule(fileID, m)
	}

	for name, d := range f.Devices {
		out.Devices[name] = a.atomizeDevice(fileID, d)
	}

	return out
}

func (a *atomizer) atomizeDevice(fileID ids.FileID, d *patterned.Device) *Device {
	return &Device{
		Name: d.Name, Ports: d.Ports,
		Parameters:    a.resolveLiteralParams(fileID, d.Parameters),
		Variables:     d.Variables,
		SpiceTemplate: d.SpiceTemplate, PDK: d.PDK, HasPDK: d.HasPDK,
	}
}

func (a *atomizer) atomizeModule(fileID ids.FileID, m *patterned.Module) *Module {
	resolve := func(name string) (patterned.NamedPattern, bool) {
		np, ok := m.NamedPatterns[name]

		return np, ok
	}

	out := &Module{
		Name: m.Name, Cell: m.Cell, View: m.View, HasView: m.HasView,
		FileID: fileID, Ports: m.Ports,
	}

	netAtomsByID := map[ids.NetID][]Atom{}
	netLiterals := map[string]bool{}

	for _, n := range m.Nets {
		entry := m.ExprTable[n.NameExprID]

		atoms, err := expandExpr(n.NameExprID, entry.Parsed, resolve)
		if err != nil {
			a.reportf(fileID, entry.Span, "P03-PATTERN", "net %q: %v", entry.Raw, err)

			continue
		}

		netAtomsByID[n.ID] = atoms

		for i, atom := range atoms {
			if netLiterals[atom.Literal] {
				a.reportf(fileID, n.Span, "E-COLL-NET", "net literal %q is produced by more than one net declaration", atom.Literal)

				continue
			}

			netLiterals[atom.Literal] = true

			out.Nets = append(out.Nets, &Net{
				ID: ids.NetID(fmt.Sprintf("%s/%d", n.ID, i)), Name: atom.Literal, Origin: atom.Origin,
				PortIntroducing: n.PortIntroducing, Implicit: n.Implicit,
			})
		}
	}

	instAtomsByID := map[ids.InstID][]Atom{}
	instLiterals := map[string]bool{}

	for _, inst := range m.Instances {
		entry := m.ExprTable[inst.NameExprID]

		atoms, err := expandExpr(inst.NameExprID, entry.Parsed, resolve)
		if err != nil {
			a.reportf(fileID, entry.Span, "P03-PATTERN", "instance %q: %v", entry.Raw, err)

			continue
		}

		instAtomsByID[inst.ID] = atoms

		paramsPerAtom := a.resolveInstanceParams(fileID, inst, atoms, m.ExprTable, resolve)

		for i, atom := range atoms {
			if instLiterals[atom.Literal] {
				a.reportf(fileID, inst.Span, "E-COLL-INST", "instance literal %q is produced by more than one instance declaration", atom.Literal)

				continue
			}

			instLiterals[atom.Literal] = true

			out.Instances = append(out.Instances, &Instance{
				ID: ids.InstID(fmt.Sprintf("%s/%d", inst.ID, i)), Name: atom.Literal, Origin: atom.Origin,
				RefKind: inst.RefKind, RefFileID: inst.RefFileID, RefName: inst.RefName, RefRaw: inst.RefRaw,
				Parameters: paramsPerAtom[i],
			})
		}
	}

	for _, ep := range m.Endpoints {
		entry, ok := m.ExprTable[ep.PortExprID]
		if !ok {
			continue
		}

		a.atomizeEndpoint(fileID, out, ep, entry, netAtomsByID, resolve)
	}

	out.Parameters = a.resolveLiteralParams(fileID, m.Parameters)
	out.GlobalParameters = m.GlobalParameters

	return out
}

func (a *atomizer) atomizeEndpoint(fileID ids.FileID, out *Module, ep *patterned.Endpoint, entry *patterned.ExprEntry,
	netAtomsByID map[ids.NetID][]Atom, resolve namedPatternResolver) {
	atoms, err := expandExpr(ep.PortExprID, entry.Parsed, resolve)
	if err != nil {
		a.reportf(fileID, ep.Span, "P03-PATTERN", "endpoint %q: %v", entry.Raw, err)

		return
	}

	netAtoms := netAtomsByID[ep.NetID]

	binding, err := bindBroadcast(netAtoms, atoms)
	if err != nil {
		a.reportf(fileID, ep.Span, "E-PARAM-LEN", "endpoint binding: %v", err)

		return
	}

	for i, atom := range atoms {
		inst, pin, ok := ids.SplitLastDot(atom.Literal)
		if !ok {
			a.reportf(fileID, ep.Span, "E-END-INST", "endpoint atom %q is not of the form instance.pin", atom.Literal)

			continue
		}

		netAtom := netAtoms[binding[i]]

		out.Endpoints = append(out.Endpoints, &Endpoint{
			ID: ids.EndpointID(fmt.Sprintf("%s/%d", ep.ID, i)), NetName: netAtom.Literal, InstName: inst, PinName: pin,
			ConnLabel: ep.ConnLabel, HasLabel: ep.HasLabel, Default: ep.Default,
		})
	}
}

// resolveInstanceParams expands every pattern-valued parameter of inst
// against the instance's own name atoms, producing one OrderedMap per atom.
// A non-pattern parameter is simply replicated across every atom.
func (a *atomizer) resolveInstanceParams(fileID ids.FileID, inst *patterned.Instance, instAtoms []Atom,
	exprTable map[ids.ExprID]*patterned.ExprEntry, resolve namedPatternResolver) []*paramvalue.OrderedMap[paramvalue.Value] {
	out := make([]*paramvalue.OrderedMap[paramvalue.Value], len(instAtoms))
	for i := range out {
		out[i] = paramvalue.NewOrderedMap[paramvalue.Value]()
	}

	if inst.Parameters == nil {
		return out
	}

	for _, name := range inst.Parameters.Keys() {
		entry, _ := inst.Parameters.Get(name)

		if !entry.IsPattern {
			for i := range out {
				out[i].Set(name, entry.Value)
			}

			continue
		}

		a.bindPatternParam(fileID, name, entry, instAtoms, exprTable, resolve, out)
	}

	return out
}

// bindPatternParam expands a pattern-valued parameter and binds it across
// instAtoms (ADR-0010): a parameter pattern expanding to a single atom
// broadcasts that one value to every instance atom; one expanding to
// exactly len(instAtoms) atoms binds positionally, instance atom i to
// parameter atom i. Any other length is E-PARAM-LEN. This is a plain
// length-based bind, distinct from bindBroadcast's axis-keyed net/endpoint
// broadcast: an instance-parameter pattern has no axis of its own to key
// against — only its expanded length relates it to the instance pattern.
func (a *atomizer) bindPatternParam(fileID ids.FileID, name string, entry patterned.ParamEntry, instAtoms []Atom,
	exprTable map[ids.ExprID]*patterned.ExprEntry, resolve namedPatternResolver, out []*paramvalue.OrderedMap[paramvalue.Value]) {
	exprEntry, ok := exprTable[entry.ExprID]
	if !ok {
		a.reportf(fileID, source.Span{}, "P03-PATTERN", "parameter %q: missing pattern registration", name)

		return
	}

	atoms, err := expandExpr(entry.ExprID, exprEntry.Parsed, resolve)
	if err != nil {
		a.reportf(fileID, source.Span{}, "P03-PATTERN", "parameter %q: %v", name, err)

		return
	}

	binding, err := bindParamBroadcast(len(instAtoms), len(atoms))
	if err != nil {
		a.reportf(fileID, source.Span{}, "E-PARAM-LEN", "parameter %q: %v", name, err)

		return
	}

	for i := range instAtoms {
		out[i].Set(name, paramvalue.String(atoms[binding[i]].Literal))
	}
}

func (a *atomizer) resolveLiteralParams(fileID ids.FileID, params *paramvalue.OrderedMap[patterned.ParamEntry]) *paramvalue.OrderedMap[paramvalue.Value] {
	out := paramvalue.NewOrderedMap[paramvalue.Value]()

	if params == nil {
		return out
	}

	for _, name := range params.Keys() {
		entry, _ := params.Get(name)

		if !entry.IsPattern {
			out.Set(name, entry.Value)

			continue
		}
		// A module- or device-level parameter carrying an unexpanded pattern
		// has no broadcast partner at this scope.
		a.reportf(fileID, source.Span{}, "P03-PARAM-SCOPE", "parameter %q carries pattern syntax outside an instance context", name)
	}

	return out
}

func (a *atomizer) reportf(fileID ids.FileID, span source.Span, code, format string, args ...any) {
	a.sink.Report(source.Diagnostic{
		Code: code, Severity: source.Error, Component: component, File: string(fileID), Span: span, HasSpan: span.Length() > 0,
		Message: fmt.Sprintf(format, args...),
	})
}
