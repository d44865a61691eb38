// Package verify implements the Binding Verifier: having
// atomized every pattern into concrete instance/net/endpoint atoms, it
// checks that every endpoint names an instance that actually exists, that no
// instance pin is bound twice (save for an explicit instance_defaults
// override, which is a warning rather than an error), and that every pin
// name is a real port of the instance's resolved module or device.
package verify

import (
	"fmt"

	"github.com/asdl-lang/asdlc/internal/atomize"
	"github.com/asdl-lang/asdlc/internal/ids"
	"github.com/asdl-lang/asdlc/internal/linker"
	"github.com/asdl-lang/asdlc/internal/source"
)

// component is the Binding Verifier's stage index for diagnostic ordering
//.
const component = 4

// Verify checks an AtomizedGraph and returns a graph with any
// instance_defaults endpoint that was overridden by an explicit binding
// removed, so later stages see only the endpoints that actually apply.
func Verify(ag *atomize.Graph) (*atomize.Graph, []source.Diagnostic) {
	v := &verifier{sink: source.NewSink(), ag: ag}

	for _, f := range ag.Files {
		for _, m := range f.Modules {
			v.verifyModule(f.ID, m)
		}
	}

	return ag, v.sink.All()
}

type verifier struct {
	sink *source.Sink
	ag   *atomize.Graph
}

func (v *verifier) verifyModule(fileID ids.FileID, m *atomize.Module) {
	instByName := make(map[string]*atomize.Instance, len(m.Instances))
	for _, inst := range m.Instances {
		instByName[inst.Name] = inst
	}

	seen := map[string]*atomize.Endpoint{}
	var kept []*atomize.Endpoint

	for _, ep := range m.Endpoints {
		key := ids.EndpointKey(ep.InstName, ep.PinName)

		if prior, ok := seen[key]; ok {
			if prior.Default && !ep.Default {
				v.reportf(fileID, source.Warning, "P04-DEFAULT-OVERRIDE",
					"explicit endpoint %s overrides an instance_defaults binding", key)
				seen[key] = ep

				kept = replaceEndpoint(kept, prior, ep)

				continue
			}

			v.reportf(fileID, source.Error, "E-END-DUP", "instance pin %s is bound by more than one endpoint", key)

			continue
		}

		seen[key] = ep
		kept = append(kept, ep)

		inst, ok := instByName[ep.InstName]
		if !ok {
			v.reportf(fileID, source.Error, "E-END-INST", "endpoint references undeclared instance %q", ep.InstName)

			continue
		}

		v.checkPort(fileID, inst, ep.PinName)
	}

	m.Endpoints = kept
}

func (v *verifier) checkPort(fileID ids.FileID, inst *atomize.Instance, pin string) {
	ports, ok := v.resolvePorts(inst)
	if !ok {
		// Unresolved reference was already reported by the linker as
		// E0448; nothing further to say here.
		return
	}

	for _, p := range ports {
		if p == pin {
			return
		}
	}

	v.reportf(fileID, source.Error, "E-PORT-MISS", "instance %q has no port %q", inst.Name, pin)
}

func (v *verifier) resolvePorts(inst *atomize.Instance) ([]string, bool) {
	refFile, ok := v.ag.Files[inst.RefFileID]
	if !ok {
		return nil, false
	}

	switch inst.RefKind {
	case linker.RefModule:
		mod, ok := refFile.Modules[inst.RefName]
		if !ok {
			return nil, false
		}

		return mod.Ports, true
	case linker.RefDevice:
		dev, ok := refFile.Devices[inst.RefName]
		if !ok {
			return nil, false
		}

		return dev.Ports, true
	default:
		return nil, false
	}
}

func (v *verifier) reportf(fileID ids.FileID, sev source.Severity, code, format string, args ...any) {
	v.sink.Report(source.Diagnostic{
		Code: code, Severity: sev, Component: component, File: string(fileID),
		Message: fmt.Sprintf(format, args...),
	})
}

func replaceEndpoint(list []*atomize.Endpoint, old, next *atomize.Endpoint) []*atomize.Endpoint {
	for i, e := range list {
		if e == old {
			list[i] = next

			return list
		}
	}

	return append(list, next)
}
