package driver

import (
	"testing"

	"github.com/asdl-lang/asdlc/internal/ast"
	"github.com/asdl-lang/asdlc/internal/config"
	"github.com/asdl-lang/asdlc/internal/ids"
	"github.com/asdl-lang/asdlc/internal/linker"
)

type errNotFound string

func (e errNotFound) Error() string { return "not found: " + string(e) }

func memLoader(files map[string]*ast.File) linker.Loader {
	return func(fileID ids.FileID) (*ast.File, error) {
		f, ok := files[string(fileID)]
		if !ok {
			return nil, errNotFound(string(fileID))
		}

		return f, nil
	}
}

func fullBackendConfig() config.BackendConfig {
	return config.BackendConfig{
		"ngspice": {
			SystemDevices: map[string]config.SystemDevice{
				"__netlist_header__":       {Template: "* netlist for {top}\n"},
				"__netlist_footer__":       {Template: "* end\n"},
				"__subckt_header__":        {Template: ".subckt {name} {ports}\n"},
				"__subckt_header_params__": {Template: ".subckt {name} {ports} {params}\n"},
				"__subckt_footer__":        {Template: ".ends {name}\n"},
				"__top_header__":           {Template: "* top {name}\n"},
				"__top_footer__":           {Template: "* end top\n"},
				"__subckt_call__":          {Template: "X{name} {ports} {ref}\n"},
				"__subckt_call_params__":   {Template: "X{name} {ports} {ref} {params}\n"},
			},
		},
	}
}

func TestCompileReachesStateLoggedOnCleanDesign(t *testing.T) {
	files := map[string]*ast.File{
		"top.asdl": {
			Modules: []ast.Module{{
				Name: "amp", PortsDeclared: true, Ports: []string{"IN", "OUT"},
				Instances: []ast.Instance{{NameRaw: "M1", RefRaw: "nfet"}},
				Endpoints: []ast.Endpoint{
					{NetRaw: "IN", PortRaw: "M1.G"},
					{NetRaw: "OUT", PortRaw: "M1.D"},
				},
			}},
			Devices: []ast.Device{{Name: "nfet", Ports: []string{"D", "G", "S", "B"}}},
		},
	}

	result := Compile(Options{
		Entry: "top.asdl", EntryPath: "top.asdl", Loader: memLoader(files),
		TopCell: "amp", Backend: "ngspice", BackendConfig: fullBackendConfig(),
	})

	if result.State != StateLogged {
		t.Fatalf("expected StateLogged, got %s (diagnostics: %+v)", result.State, result.Diagnostics)
	}

	if result.Rendered == "" {
		t.Fatalf("expected non-empty rendered text")
	}

	if result.Log == nil || result.Log.SchemaVersion == 0 {
		t.Fatalf("expected a populated compile log")
	}
}

func TestCompileInvokesOnTransitionForEveryStageInOrder(t *testing.T) {
	files := map[string]*ast.File{
		"top.asdl": {
			Modules: []ast.Module{{
				Name: "amp", PortsDeclared: true, Ports: []string{"IN", "OUT"},
				Instances: []ast.Instance{{NameRaw: "M1", RefRaw: "nfet"}},
				Endpoints: []ast.Endpoint{
					{NetRaw: "IN", PortRaw: "M1.G"},
					{NetRaw: "OUT", PortRaw: "M1.D"},
				},
			}},
			Devices: []ast.Device{{Name: "nfet", Ports: []string{"D", "G", "S", "B"}}},
		},
	}

	var seen []State

	result := Compile(Options{
		Entry: "top.asdl", EntryPath: "top.asdl", Loader: memLoader(files),
		TopCell: "amp", Backend: "ngspice", BackendConfig: fullBackendConfig(),
		OnTransition: func(s State) { seen = append(seen, s) },
	})

	want := []State{
		StateLinked, StatePatterned, StateAtomized, StateVerified,
		StateBound, StateLowered, StateRendered, StateLogged,
	}

	if len(seen) != len(want) {
		t.Fatalf("expected %d transitions, got %d: %v", len(want), len(seen), seen)
	}

	for i, s := range want {
		if seen[i] != s {
			t.Fatalf("expected transition %d to be %s, got %s (full sequence: %v)", i, s, seen[i], seen)
		}
	}

	if result.State != StateLogged {
		t.Fatalf("expected StateLogged, got %s", result.State)
	}
}

func TestCompileAbortsOnLinkFailurePreservingNoGraphs(t *testing.T) {
	result := Compile(Options{
		Entry: "missing.asdl", EntryPath: "missing.asdl", Loader: memLoader(map[string]*ast.File{}),
	})

	if result.State != StateAborted {
		t.Fatalf("expected StateAborted, got %s", result.State)
	}

	if result.Linked != nil {
		t.Fatalf("expected no linked program to survive a link failure")
	}
}

func TestCompileAbortsOnVerifyFailurePreservingPriorGraphs(t *testing.T) {
	files := map[string]*ast.File{
		"top.asdl": {
			Modules: []ast.Module{{
				Name: "amp", PortsDeclared: true, Ports: []string{"IN"},
				Endpoints: []ast.Endpoint{{NetRaw: "IN", PortRaw: "GHOST.G"}},
			}},
		},
	}

	result := Compile(Options{
		Entry: "top.asdl", EntryPath: "top.asdl", Loader: memLoader(files),
		TopCell: "amp", Backend: "ngspice", BackendConfig: fullBackendConfig(),
	})

	if result.State != StateAborted {
		t.Fatalf("expected StateAborted on undeclared instance, got %s", result.State)
	}

	if result.Atomized == nil {
		t.Fatalf("expected the atomized graph to survive a verify-stage abort")
	}

	if result.Bound != nil {
		t.Fatalf("expected no bound program past the aborted stage")
	}

	found := false

	for _, d := range result.Diagnostics {
		if d.Code == "E-END-INST" {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected E-END-INST among diagnostics, got %+v", result.Diagnostics)
	}
}

func TestStateStringNamesEveryState(t *testing.T) {
	want := []string{
		"Parsed", "Linked", "Patterned", "Atomized", "Verified",
		"Bound", "Lowered", "Rendered", "Logged", "Aborted",
	}

	for i, name := range want {
		if got := State(i).String(); got != name {
			t.Errorf("State(%d).String() = %q, want %q", i, got, name)
		}
	}

	if got := State(99).String(); got != "Unknown" {
		t.Fatalf("expected 'Unknown' for an out-of-range state, got %q", got)
	}
}
