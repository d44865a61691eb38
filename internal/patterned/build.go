package patterned

import (
	"fmt"
	"strconv"

	"github.com/asdl-lang/asdlc/internal/ast"
	"github.com/asdl-lang/asdlc/internal/ids"
	"github.com/asdl-lang/asdlc/internal/linker"
	"github.com/asdl-lang/asdlc/internal/paramvalue"
	"github.com/asdl-lang/asdlc/internal/pattern"
	"github.com/asdl-lang/asdlc/internal/source"
)

// component is the PatternedGraph Builder's stage index for diagnostic
// ordering.
const component = 2

// Build lowers a LinkedProgram into the canonical PatternedGraph: every
// port, net, instance, endpoint and pattern-bearing string is
// assigned a stable id and a source span.
func Build(linked *linker.LinkedProgram) (*Graph, []source.Diagnostic) {
	b := &builder{sink: source.NewSink()}

	graph := &Graph{Entry: linked.Entry, Files: map[ids.FileID]*File{}, Order: linked.Order}

	for fileID, lf := range linked.Files {
		graph.Files[fileID] = b.buildFile(fileID, lf)
	}

	if linked.Entry != "" {
		if entryFile := graph.Files[linked.Entry]; entryFile != nil {
			b.attachGlobalParameters(linked.Entry, linked.Files[linked.Entry], entryFile)
		}
	}

	return graph, b.sink.All()
}

type builder struct {
	sink *source.Sink
}

func (b *builder) buildFile(fileID ids.FileID, lf *linker.LinkedFile) *File {
	f := &File{ID: fileID, Path: lf.AST.Path, Modules: map[string]*Module{}, Devices: map[string]*Device{}}

	for mi, m := range lf.AST.Modules {
		f.Modules[m.Name] = b.buildModule(fileID, lf, mi, m)
	}

	for _, d := range lf.AST.Devices {
		f.Devices[d.Name] = b.buildDevice(fileID, d)
	}

	return f
}

func (b *builder) buildModule(fileID ids.FileID, lf *linker.LinkedFile, moduleIdx int, m ast.Module) *Module {
	counter := ids.NewCounter(fmt.Sprintf("%s/%s/expr", fileID, m.Name))
	exprTable := map[ids.ExprID]*ExprEntry{}

	if !m.PortsDeclared {
		b.sink.Report(source.Diagnostic{
			Code: "P02-PORTS-NONE", Severity: source.Error, Component: component, File: string(fileID), Span: m.Span, HasSpan: true,
			Message: fmt.Sprintf("module %q must declare an explicit ports list (possibly empty)", m.Name),
		})
	}

	varValues, varDiags := resolveVariables(m.Variables, string(fileID), component)
	for _, d := range varDiags {
		b.sink.Report(d)
	}

	namedPatterns := map[string]NamedPattern{}

	for name, def := range m.Patterns {
		expr, err := pattern.Parse(def.ExprRaw)
		if err != nil {
			b.sink.Report(source.Diagnostic{
				Code: "P02-PATTERN", Severity: source.Error, Component: component, File: string(fileID), Span: def.Span, HasSpan: true,
				Message: err.Error(),
			})

			continue
		}

		namedPatterns[name] = NamedPattern{Expr: expr, AxisID: def.AxisID}
	}

	mod := &Module{
		Name: m.Name, Cell: m.Cell(), View: m.View(), HasView: m.View() != "",
		FileID: fileID, Ports: append([]string(nil), m.Ports...),
		ExprTable: exprTable, NamedPatterns: namedPatterns,
	}

	mod.Parameters = b.buildParams(fileID, m.Parameters, varValues, exprTable, counter)

	netByRaw := map[string]*Net{}

	for _, n := range m.Nets {
		id := ids.NetID(counter.Next())
		exprID := b.registerExpr(exprTable, counter, n.NameRaw, ExprNet, n.Span, fileID)
		net := &Net{ID: id, NameExprID: exprID, PortIntroducing: n.PortIntroducing(), Span: n.Span}
		mod.Nets = append(mod.Nets, net)
		netByRaw[n.NameRaw] = net
	}

	for ii, inst := range m.Instances {
		mod.Instances = append(mod.Instances, b.buildInstance(fileID, lf, moduleIdx, ii, inst, varValues, exprTable, counter))
	}

	for _, ep := range m.Endpoints {
		known := len(netByRaw)
		mod.Endpoints = append(mod.Endpoints, b.buildEndpoint(fileID, ep, netByRaw, exprTable, counter))

		if len(netByRaw) > known {
			mod.Nets = append(mod.Nets, netByRaw[ep.NetRaw])
		}
	}

	return mod
}

func (b *builder) buildInstance(fileID ids.FileID, lf *linker.LinkedFile, moduleIdx, instIdx int, inst ast.Instance,
	varValues map[string]string, exprTable map[ids.ExprID]*ExprEntry, counter *ids.Counter) *Instance {
	id := ids.InstID(counter.Next())
	nameExprID := b.registerExpr(exprTable, counter, inst.NameRaw, ExprInst, inst.Span, fileID)

	params := paramvalue.NewOrderedMap[ParamEntry]()

	for _, p := range inst.Parameters {
		raw := p.Value.Raw

		if subst, diags := substituteParam(raw, varValues, string(fileID), p.Value.Span, component); len(diags) == 0 {
			raw = subst
		} else {
			for _, d := range diags {
				b.sink.Report(d)
			}
		}

		params.Set(p.Name, b.buildParamEntry(fileID, raw, p.Value.Span, exprTable, counter))
	}

	key := fmt.Sprintf("%d:%d", moduleIdx, instIdx)

	resolved, ok := lf.InstanceRefs[key]

	out := &Instance{ID: id, NameExprID: nameExprID, RefRaw: inst.RefRaw, Parameters: params, Span: inst.Span}

	if ok {
		out.RefKind = resolved.Kind
		out.RefFileID = resolved.FileID
		out.RefName = resolved.Name
	}

	return out
}

func (b *builder) buildEndpoint(fileID ids.FileID, ep ast.Endpoint, netByRaw map[string]*Net,
	exprTable map[ids.ExprID]*ExprEntry, counter *ids.Counter) *Endpoint {
	id := ids.EndpointID(counter.Next())
	portExprID := b.registerExpr(exprTable, counter, ep.PortRaw, ExprEndpoint, ep.Span, fileID)

	net, ok := netByRaw[ep.NetRaw]
	if !ok {
		// Implicit net vivification: any net referenced
		// by an endpoint that was not explicitly declared under `nets:` is
		// auto-declared here, in encounter order.
		net = &Net{
			ID:              ids.NetID(counter.Next()),
			NameExprID:      b.registerExpr(exprTable, counter, ep.NetRaw, ExprNet, ep.Span, fileID),
			PortIntroducing: len(ep.NetRaw) > 0 && ep.NetRaw[0] == '$',
			Implicit:        true,
			Span:            ep.Span,
		}
		netByRaw[ep.NetRaw] = net
	}

	return &Endpoint{
		ID: id, NetID: net.ID, PortExprID: portExprID,
		ConnLabel: ep.ConnLabel, HasLabel: ep.HasLabel, Default: ep.Default, Span: ep.Span,
	}
}

func (b *builder) buildDevice(fileID ids.FileID, d ast.Device) *Device {
	counter := ids.NewCounter(fmt.Sprintf("%s/device/%s/expr", fileID, d.Name))
	exprTable := map[ids.ExprID]*ExprEntry{}
	vars := paramvalue.NewOrderedMap[string]()

	for _, v := range d.Variables {
		vars.Set(v.Name, v.Value.Raw)
	}

	return &Device{
		Name: d.Name, Ports: append([]string(nil), d.Ports...),
		Parameters: b.buildParams(fileID, d.Parameters, map[string]string{}, exprTable, counter),
		Variables: vars, SpiceTemplate: d.SpiceTemplate, PDK: d.PDK, HasPDK: d.HasPDK,
	}
}

func (b *builder) buildParams(fileID ids.FileID, params []ast.NamedParam, varValues map[string]string,
	exprTable map[ids.ExprID]*ExprEntry, counter *ids.Counter) *paramvalue.OrderedMap[ParamEntry] {
	out := paramvalue.NewOrderedMap[ParamEntry]()

	for _, p := range params {
		raw := p.Value.Raw
		if subst, diags := substituteParam(raw, varValues, string(fileID), p.Value.Span, component); len(diags) == 0 {
			raw = subst
		} else {
			for _, d := range diags {
				b.sink.Report(d)
			}
		}

		out.Set(p.Name, b.buildParamEntry(fileID, raw, p.Value.Span, exprTable, counter))
	}

	return out
}

// buildParamEntry decides whether a (post-substitution) raw parameter value
// is a plain literal or still carries pattern syntax, registering it in the
// pattern table in the latter case.
func (b *builder) buildParamEntry(fileID ids.FileID, raw string, span source.Span,
	exprTable map[ids.ExprID]*ExprEntry, counter *ids.Counter) ParamEntry {
	if !pattern.HasGroup(raw) {
		return ParamEntry{Value: literalValue(raw)}
	}

	exprID := b.registerExpr(exprTable, counter, raw, ExprParam, span, fileID)

	return ParamEntry{IsPattern: true, ExprID: exprID}
}

func (b *builder) registerExpr(exprTable map[ids.ExprID]*ExprEntry, counter *ids.Counter, raw string,
	kind ExprKind, span source.Span, fileID ids.FileID) ids.ExprID {
	id := ids.ExprID(counter.Next())

	parsed, err := pattern.Parse(raw)
	if err != nil {
		b.sink.Report(source.Diagnostic{
			Code: "P02-PATTERN", Severity: source.Error, Component: component, File: string(fileID), Span: span, HasSpan: true,
			Message: err.Error(),
		})
	}

	if kind == ExprNet && parsed.Spliced() {
		b.sink.Report(source.Diagnostic{
			Code: "E-NET-SPLICE", Severity: source.Error, Component: component, File: string(fileID), Span: span, HasSpan: true,
			Message: fmt.Sprintf("net name %q must not contain a splice ';'", raw),
		})
	}

	exprTable[id] = &ExprEntry{ID: id, Raw: raw, Kind: kind, Parsed: parsed, Span: span}

	return id
}

func (b *builder) attachGlobalParameters(fileID ids.FileID, lf *linker.LinkedFile, f *File) {
	if len(lf.AST.Modules) == 0 {
		return
	}
	// Global parameters are a file-level concept carried on the AST's
	// synthetic top module (see astyaml for how these are populated); we
	// look for them on every module and merge, since only the entry file's
	// declarations are meaningful.
	for _, m := range lf.AST.Modules {
		if len(m.GlobalParameters) == 0 {
			continue
		}

		mod, ok := f.Modules[m.Name]
		if !ok {
			continue
		}

		mod.GlobalParameters = paramvalue.NewOrderedMap[paramvalue.Value]()

		for _, p := range m.GlobalParameters {
			mod.GlobalParameters.Set(p.Name, literalValue(p.Value.Raw))
		}
	}
}

// literalValue infers the most specific ParamValue kind a raw literal
// string supports: bool, then int, then float, falling back to string.
// This is the one place the builder "types" author-supplied text, since
// ParamValue is a closed sum and downstream passes (e.g. global-parameter
// rendering, §4.6) key off Kind() rather than re-parsing strings.
func literalValue(raw string) paramvalue.Value {
	switch raw {
	case "true":
		return paramvalue.Bool(true)
	case "false":
		return paramvalue.Bool(false)
	}

	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return paramvalue.Int(i)
	}

	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return paramvalue.Float(f)
	}

	return paramvalue.String(raw)
}
