// Package netlist implements the NetlistIR Lowerer: it projects
// the View Binder's reachable, realized modules into a flat, emission-ready
// IR — concrete port bindings per instance call, deterministic parameter
// ordering, and resolved entry-file global parameter references.
package netlist

import (
	"fmt"

	"github.com/asdl-lang/asdlc/internal/atomize"
	"github.com/asdl-lang/asdlc/internal/paramvalue"
	"github.com/asdl-lang/asdlc/internal/source"
	"github.com/asdl-lang/asdlc/internal/viewbind"
)

// component is the NetlistIR Lowerer's stage index for diagnostic ordering.
const component = 6

// PortBinding is one (port, net) pair for an instance call, ordered per the
// referenced module/device's declared port order (spec invariant: "port
// order preservation").
type PortBinding struct {
	Port string
	Net  string
}

// Call is one instance-call statement in a module body.
type Call struct {
	InstName       string
	RefEmittedName string
	IsDevice       bool
	Ports          []PortBinding
	Parameters     *paramvalue.OrderedMap[paramvalue.Value]
	HasParams      bool
	Origin         atomize.Origin
}

// Module is one emitted (non-device) netlist module.
type Module struct {
	EmittedName string
	Realization viewbind.Realization
	Ports       []string
	Parameters  *paramvalue.OrderedMap[paramvalue.Value]
	Body        []Call
}

// GlobalParam is one entry of the entry file's global_parameters table.
type GlobalParam struct {
	Name  string
	Value paramvalue.Value
}

// Program is the flat NetlistIR Lowerer output.
type Program struct {
	Top              string
	Modules          []*Module
	GlobalParameters []GlobalParam
}

// Lower projects a bound view program into a flat Program.
func Lower(bp *viewbind.Program) (*Program, []source.Diagnostic) {
	l := &lowerer{sink: source.NewSink(), bp: bp}

	var modules []*Module

	for _, bm := range bp.Modules {
		if bm.IsDevice {
			continue
		}

		modules = append(modules, l.lowerModule(bm))
	}

	top := bp.ByKey[bp.Top.Key()]

	prog := &Program{Modules: modules}
	if top != nil {
		prog.Top = top.EmittedName
	}

	if top != nil && top.Module != nil && top.Module.GlobalParameters != nil {
		for _, name := range top.Module.GlobalParameters.Keys() {
			v, _ := top.Module.GlobalParameters.Get(name)
			prog.GlobalParameters = append(prog.GlobalParameters, GlobalParam{Name: name, Value: v})
		}
	}

	globals := paramvalue.NewOrderedMap[paramvalue.Value]()
	for _, g := range prog.GlobalParameters {
		globals.Set(g.Name, g.Value)
	}

	for _, m := range modules {
		l.resolveGlobalRefs(m, globals)
	}

	return prog, l.sink.All()
}

type lowerer struct {
	sink *source.Sink
	bp   *viewbind.Program
}

func (l *lowerer) lowerModule(bm *viewbind.BoundModule) *Module {
	out := &Module{
		EmittedName: bm.EmittedName, Realization: bm.Realization,
		Ports: bm.Module.Ports, Parameters: bm.Module.Parameters,
	}

	endpointsByInst := map[string]map[string]string{}
	for _, ep := range bm.Module.Endpoints {
		m, ok := endpointsByInst[ep.InstName]
		if !ok {
			m = map[string]string{}
			endpointsByInst[ep.InstName] = m
		}

		m[ep.PinName] = ep.NetName
	}

	for _, inst := range bm.Module.Instances {
		out.Body = append(out.Body, l.lowerCall(bm, inst, endpointsByInst[inst.Name]))
	}

	return out
}

func (l *lowerer) lowerCall(bm *viewbind.BoundModule, inst *atomize.Instance, nets map[string]string) Call {
	ref := bm.Children[inst.Name]
	target := l.bp.ByKey[ref.Key]

	call := Call{
		InstName: inst.Name, IsDevice: ref.IsDevice, Parameters: inst.Parameters,
		HasParams: inst.Parameters != nil && inst.Parameters.Len() > 0, Origin: inst.Origin,
	}

	var ports []string

	switch {
	case target == nil:
		l.reportf("G01-MISSING-REF", "instance %q at module %q has no resolved target", inst.Name, bm.EmittedName)
	case target.IsDevice:
		call.RefEmittedName = target.Device.Name
		ports = target.Device.Ports
	default:
		call.RefEmittedName = target.EmittedName
		ports = target.Module.Ports
	}

	for _, p := range ports {
		call.Ports = append(call.Ports, PortBinding{Port: p, Net: nets[p]})
	}

	return call
}

// resolveGlobalRefs validates every "!{name}" reference in a string-valued
// instance parameter against the entry file's global_parameters table,
// reporting E-GLOBAL-UNDEF for an unresolved reference. The reference
// itself is rewritten to the bare placeholder "{name}", not the global's
// value: the emitted netlist leaves the simulator to bind the use site
// against the separately-emitted ".param name=value" declaration rather
// than inlining the literal at every call site.
func (l *lowerer) resolveGlobalRefs(m *Module, globals *paramvalue.OrderedMap[paramvalue.Value]) {
	for _, call := range m.Body {
		if call.Parameters == nil {
			continue
		}

		for _, name := range call.Parameters.Keys() {
			v, _ := call.Parameters.Get(name)
			if v.Kind() != paramvalue.KindString {
				continue
			}

			resolved, missing, ok := substituteGlobalRefs(v.AsString(), globals)
			if !ok {
				l.reportf("E-GLOBAL-UNDEF", "instance %q parameter %q references undefined global parameter %q", call.InstName, name, missing)

				continue
			}

			call.Parameters.Set(name, paramvalue.String(resolved))
		}
	}
}

// substituteGlobalRefs rewrites every "!{name}" in raw to the bare "{name}"
// placeholder, validating name against globals but leaving the value
// itself unresolved (worked example: "v=!{vdd}" renders to "v={vdd}").
func substituteGlobalRefs(raw string, globals *paramvalue.OrderedMap[paramvalue.Value]) (out string, missing string, ok bool) {
	runes := []rune(raw)
	result := make([]rune, 0, len(runes))

	for i := 0; i < len(runes); i++ {
		if runes[i] != '!' || i+1 >= len(runes) || runes[i+1] != '{' {
			result = append(result, runes[i])

			continue
		}

		end := -1

		for j := i + 2; j < len(runes); j++ {
			if runes[j] == '}' {
				end = j

				break
			}
		}

		if end < 0 {
			result = append(result, runes[i])

			continue
		}

		name := string(runes[i+2 : end])

		if _, found := globals.Get(name); !found {
			return "", name, false
		}

		result = append(result, '{')
		result = append(result, []rune(name)...)
		result = append(result, '}')
		i = end
	}

	return string(result), "", true
}

func (l *lowerer) reportf(code, format string, args ...any) {
	l.sink.Report(source.Diagnostic{
		Code: code, Severity: source.Error, Component: component,
		Message: fmt.Sprintf(format, args...),
	})
}
