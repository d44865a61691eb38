package atomize

import (
	"testing"

	"github.com/asdl-lang/asdlc/internal/ast"
	"github.com/asdl-lang/asdlc/internal/ids"
	"github.com/asdl-lang/asdlc/internal/linker"
	"github.com/asdl-lang/asdlc/internal/patterned"
)

func buildFixture(t *testing.T, files map[string]*ast.File, entry string) *patterned.Graph {
	t.Helper()

	loader := func(fileID ids.FileID) (*ast.File, error) {
		f, ok := files[string(fileID)]
		if !ok {
			return nil, errNotFound(string(fileID))
		}

		return f, nil
	}

	prog, diags := linker.Link(ids.FileID(entry), loader, linker.SearchRoots{})
	if prog == nil {
		t.Fatalf("link failed: %+v", diags)
	}

	pg, pdiags := patterned.Build(prog)
	if len(pdiags) != 0 {
		t.Fatalf("build failed: %+v", pdiags)
	}

	return pg
}

type errNotFound string

func (e errNotFound) Error() string { return "not found: " + string(e) }

// TestAtomizeEnumExpansion covers enum-group expansion across an instance
// and its endpoint.
func TestAtomizeEnumExpansion(t *testing.T) {
	files := map[string]*ast.File{
		"top.asdl": {
			Modules: []ast.Module{{
				Name: "amp", PortsDeclared: true, Ports: []string{"VDD", "VSS", "IN", "OUT"},
				Instances: []ast.Instance{{
					NameRaw: "M<P|N>", RefRaw: "nfet",
					Parameters: []ast.NamedParam{{Name: "m", Value: ast.ParamSpec{Raw: "<1|2>"}}},
				}},
				Endpoints: []ast.Endpoint{{NetRaw: "IN", PortRaw: "M<P|N>.G"}},
			}},
			Devices: []ast.Device{{Name: "nfet", Ports: []string{"D", "G", "S", "B"}}},
		},
	}

	graph, diags := Atomize(buildFixture(t, files, "top.asdl"))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}

	mod := graph.Files["top.asdl"].Modules["amp"]
	if len(mod.Instances) != 2 {
		t.Fatalf("expected 2 instance atoms, got %d", len(mod.Instances))
	}

	if mod.Instances[0].Name != "MP" || mod.Instances[1].Name != "MN" {
		t.Fatalf("expected atoms MP, MN in that order, got %q, %q", mod.Instances[0].Name, mod.Instances[1].Name)
	}

	mVal, ok := mod.Instances[0].Parameters.Get("m")
	if !ok || mVal.AsString() != "1" {
		t.Fatalf("expected MP.m == 1, got %+v (ok=%v)", mVal, ok)
	}

	mVal2, ok := mod.Instances[1].Parameters.Get("m")
	if !ok || mVal2.AsString() != "2" {
		t.Fatalf("expected MN.m == 2, got %+v (ok=%v)", mVal2, ok)
	}

	if len(mod.Endpoints) != 2 {
		t.Fatalf("expected 2 endpoint atoms, got %d", len(mod.Endpoints))
	}

	for _, ep := range mod.Endpoints {
		if ep.NetName != "IN" {
			t.Errorf("expected endpoint net 'IN', got %q", ep.NetName)
		}

		if ep.PinName != "G" {
			t.Errorf("expected endpoint pin 'G', got %q", ep.PinName)
		}
	}

	if mod.Endpoints[0].InstName != "MP" || mod.Endpoints[1].InstName != "MN" {
		t.Fatalf("expected endpoint instances MP, MN in order, got %q, %q", mod.Endpoints[0].InstName, mod.Endpoints[1].InstName)
	}
}

// TestAtomizeBroadcastsSingleAtomParamAcrossInstances covers a
// pattern-valued instance parameter that expands to exactly one atom
// broadcasting across every atom of a multi-atom instance pattern, distinct
// from the axis-keyed net/endpoint broadcast.
func TestAtomizeBroadcastsSingleAtomParamAcrossInstances(t *testing.T) {
	files := map[string]*ast.File{
		"top.asdl": {
			Modules: []ast.Module{{
				Name: "amp", PortsDeclared: true, Ports: []string{"VDD", "VSS", "IN", "OUT"},
				Instances: []ast.Instance{{
					NameRaw: "M<0:2>", RefRaw: "nfet",
					Parameters: []ast.NamedParam{{Name: "w", Value: ast.ParamSpec{Raw: "<5>"}}},
				}},
			}},
			Devices: []ast.Device{{Name: "nfet", Ports: []string{"D", "G", "S", "B"}}},
		},
	}

	graph, diags := Atomize(buildFixture(t, files, "top.asdl"))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}

	mod := graph.Files["top.asdl"].Modules["amp"]
	if len(mod.Instances) != 3 {
		t.Fatalf("expected 3 instance atoms, got %d", len(mod.Instances))
	}

	for _, inst := range mod.Instances {
		v, ok := inst.Parameters.Get("w")
		if !ok || v.AsString() != "5" {
			t.Errorf("expected instance %q to broadcast w=5, got %+v (ok=%v)", inst.Name, v, ok)
		}
	}
}

// TestAtomizeRangeReversal covers a descending numeric range group.
func TestAtomizeRangeReversal(t *testing.T) {
	files := map[string]*ast.File{
		"top.asdl": {
			Modules: []ast.Module{{
				Name: "bank", PortsDeclared: true, Ports: []string{"A", "B"},
				Instances: []ast.Instance{{NameRaw: "R<3:0>", RefRaw: "res"}},
			}},
			Devices: []ast.Device{{Name: "res", Ports: []string{"A", "B"}}},
		},
	}

	graph, diags := Atomize(buildFixture(t, files, "top.asdl"))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}

	mod := graph.Files["top.asdl"].Modules["bank"]

	want := []string{"R3", "R2", "R1", "R0"}
	if len(mod.Instances) != len(want) {
		t.Fatalf("expected %d instance atoms, got %d", len(want), len(mod.Instances))
	}

	for i, w := range want {
		if mod.Instances[i].Name != w {
			t.Errorf("atom %d: want %q, got %q", i, w, mod.Instances[i].Name)
		}
	}
}

// TestAtomizeLiteralCollision covers two differently
// written instance patterns that both expand to literal "M_1" must fail.
func TestAtomizeLiteralCollision(t *testing.T) {
	files := map[string]*ast.File{
		"top.asdl": {
			Modules: []ast.Module{{
				Name: "amp", PortsDeclared: true, Ports: []string{"A"},
				Instances: []ast.Instance{
					{NameRaw: "M_<1>", RefRaw: "nfet"},
					{NameRaw: "M_<1:1>", RefRaw: "nfet"},
				},
			}},
			Devices: []ast.Device{{Name: "nfet", Ports: []string{"D", "G", "S", "B"}}},
		},
	}

	_, diags := Atomize(buildFixture(t, files, "top.asdl"))

	found := false

	for _, d := range diags {
		if d.Code == "E-COLL-INST" {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected E-COLL-INST, got %+v", diags)
	}
}

func TestAtomizeNetCollision(t *testing.T) {
	files := map[string]*ast.File{
		"top.asdl": {
			Modules: []ast.Module{{
				Name: "amp", PortsDeclared: true, Ports: []string{"A"},
				Nets: []ast.Net{
					{NameRaw: "N<1>"},
					{NameRaw: "N<1:1>"},
				},
			}},
		},
	}

	_, diags := Atomize(buildFixture(t, files, "top.asdl"))

	found := false

	for _, d := range diags {
		if d.Code == "E-COLL-NET" {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected E-COLL-NET, got %+v", diags)
	}
}

func TestAtomizeEndpointLengthMismatch(t *testing.T) {
	files := map[string]*ast.File{
		"top.asdl": {
			Modules: []ast.Module{{
				Name: "amp", PortsDeclared: true, Ports: []string{"A"},
				Nets:      []ast.Net{{NameRaw: "N<0:1>"}},
				Instances: []ast.Instance{{NameRaw: "M<0:2>", RefRaw: "nfet"}},
				Endpoints: []ast.Endpoint{{NetRaw: "N<0:1>", PortRaw: "M<0:2>.G"}},
			}},
			Devices: []ast.Device{{Name: "nfet", Ports: []string{"D", "G", "S", "B"}}},
		},
	}

	_, diags := Atomize(buildFixture(t, files, "top.asdl"))

	found := false

	for _, d := range diags {
		if d.Code == "E-PARAM-LEN" {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected E-PARAM-LEN, got %+v", diags)
	}
}

func TestAtomizeIdempotentOnSingleAtomModule(t *testing.T) {
	// ADR-0013: atomizing an already-atomized (pattern-free) module is a
	// no-op producing the same single atom each time.
	files := map[string]*ast.File{
		"top.asdl": {
			Modules: []ast.Module{{
				Name: "buf", PortsDeclared: true, Ports: []string{"IN", "OUT"},
				Instances: []ast.Instance{{NameRaw: "X1", RefRaw: "nfet"}},
			}},
			Devices: []ast.Device{{Name: "nfet", Ports: []string{"D", "G", "S", "B"}}},
		},
	}

	g1, _ := Atomize(buildFixture(t, files, "top.asdl"))
	g2, _ := Atomize(buildFixture(t, files, "top.asdl"))

	m1 := g1.Files["top.asdl"].Modules["buf"]
	m2 := g2.Files["top.asdl"].Modules["buf"]

	if len(m1.Instances) != 1 || len(m2.Instances) != 1 {
		t.Fatalf("expected exactly 1 instance atom both times")
	}

	if m1.Instances[0].Name != m2.Instances[0].Name {
		t.Fatalf("expected deterministic atom name, got %q vs %q", m1.Instances[0].Name, m2.Instances[0].Name)
	}
}
