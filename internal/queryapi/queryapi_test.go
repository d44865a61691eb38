package queryapi

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/asdl-lang/asdlc/internal/ast"
	"github.com/asdl-lang/asdlc/internal/config"
	"github.com/asdl-lang/asdlc/internal/driver"
	"github.com/asdl-lang/asdlc/internal/ids"
	"github.com/asdl-lang/asdlc/internal/linker"
)

type errNotFound string

func (e errNotFound) Error() string { return "not found: " + string(e) }

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

// hierarchicalResult compiles a 2-level design: top -> buf (hierarchical) ->
// nfet (device), so tree/refs/net-trace queries have something to walk.
func hierarchicalResult(t *testing.T) *driver.Result {
	t.Helper()

	files := map[string]*ast.File{
		"top.asdl": {
			Modules: []ast.Module{
				{
					Name: "top", PortsDeclared: true, Ports: []string{"IN", "OUT"},
					Instances: []ast.Instance{{NameRaw: "X1", RefRaw: "buf"}},
					Endpoints: []ast.Endpoint{
						{NetRaw: "IN", PortRaw: "X1.A"},
						{NetRaw: "OUT", PortRaw: "X1.Z"},
					},
				},
				{
					Name: "buf", PortsDeclared: true, Ports: []string{"A", "Z"},
					Instances: []ast.Instance{{NameRaw: "M1", RefRaw: "nfet"}},
					Endpoints: []ast.Endpoint{
						{NetRaw: "A", PortRaw: "M1.G"},
						{NetRaw: "Z", PortRaw: "M1.D"},
					},
				},
			},
			Devices: []ast.Device{{Name: "nfet", Ports: []string{"D", "G", "S", "B"}}},
		},
	}

	loader := func(fileID ids.FileID) (*ast.File, error) {
		f, ok := files[string(fileID)]
		if !ok {
			return nil, errNotFound(string(fileID))
		}

		return f, nil
	}

	result := driver.Compile(driver.Options{
		Entry: ids.FileID("top.asdl"), EntryPath: "top.asdl", Loader: linker.Loader(loader),
		TopCell: "top", Backend: "ngspice", BackendConfig: fullBackendConfig(),
	})

	if result.State != driver.StateLogged {
		t.Fatalf("expected a clean compile, got %s: %+v", result.State, result.Diagnostics)
	}

	return result
}

func TestTreeWalksHierarchyRootFirst(t *testing.T) {
	r := hierarchicalResult(t)

	env, err := Tree(r, StageEmitted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	node, ok := env.Data.(*treeNode)
	if !ok {
		t.Fatalf("expected *treeNode payload, got %T", env.Data)
	}

	if node.Cell != "top" || node.Emitted != "top" {
		t.Fatalf("expected root 'top', got %+v", node)
	}

	if len(node.Children) != 1 || node.Children[0].Cell != "buf" {
		t.Fatalf("expected one child 'buf', got %+v", node.Children)
	}

	grandchild := node.Children[0].Children
	if len(grandchild) != 1 || !grandchild[0].IsDevice || grandchild[0].Cell != "nfet" {
		t.Fatalf("expected device grandchild 'nfet', got %+v", grandchild)
	}
}

func TestTreeNotFoundWhenNotBound(t *testing.T) {
	if _, err := Tree(&driver.Result{}, StageEmitted); err == nil {
		t.Fatalf("expected NotFound when Bound is nil")
	}
}

func TestBindingsListsEveryInstantiationSite(t *testing.T) {
	r := hierarchicalResult(t)

	env, err := Bindings(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.Kind != "bindings" || env.SchemaVersion != SchemaVersion {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	data, err := json.Marshal(env.Data)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}

	if !strings.Contains(string(data), `"path":"/top/X1"`) || !strings.Contains(string(data), `"cell":"buf"`) {
		t.Fatalf("expected a binding entry for /top/X1 -> buf, got %s", data)
	}
}

func TestEmitPlanCoversEveryReachableRealization(t *testing.T) {
	r := hierarchicalResult(t)

	env, err := EmitPlan(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.Kind != "emit-plan" {
		t.Fatalf("expected kind 'emit-plan', got %q", env.Kind)
	}
}

func TestRefsListsInstancesOfAModule(t *testing.T) {
	r := hierarchicalResult(t)

	env, err := Refs(r, "top")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.Kind != "refs" {
		t.Fatalf("expected kind 'refs', got %q", env.Kind)
	}
}

func TestRefsNotFoundForUnknownModule(t *testing.T) {
	r := hierarchicalResult(t)

	if _, err := Refs(r, "nonexistent"); err == nil {
		t.Fatalf("expected NotFound for an unbound module key")
	}
}

func TestInstanceReturnsParametersAndTarget(t *testing.T) {
	r := hierarchicalResult(t)

	env, err := Instance(r, "top", "X1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected map[string]any payload, got %T", env.Data)
	}

	if data["ref"] != "buf" || data["is_device"] != false {
		t.Fatalf("unexpected instance payload: %+v", data)
	}
}

func TestInstanceNotFoundForUnknownInstance(t *testing.T) {
	r := hierarchicalResult(t)

	if _, err := Instance(r, "top", "GHOST"); err == nil {
		t.Fatalf("expected NotFound for an unknown instance name")
	}
}

func TestNetReturnsEndpointsForKnownNet(t *testing.T) {
	r := hierarchicalResult(t)

	env, err := Net(r, "top", "IN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.Kind != "net" {
		t.Fatalf("expected kind 'net', got %q", env.Kind)
	}
}

func TestNetNotFoundForUnknownNet(t *testing.T) {
	r := hierarchicalResult(t)

	if _, err := Net(r, "top", "GHOST_NET"); err == nil {
		t.Fatalf("expected NotFound for an unknown net name")
	}
}

func TestNetTraceFollowsHierarchyBoundary(t *testing.T) {
	r := hierarchicalResult(t)

	env, err := NetTrace(r, "top", "IN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if env.Kind != "net-trace" {
		t.Fatalf("expected kind 'net-trace', got %q", env.Kind)
	}
}

func TestNetTraceNotFoundWhenStartIsUnbound(t *testing.T) {
	if _, err := NetTrace(&driver.Result{}, "top", "IN"); err == nil {
		t.Fatalf("expected NotFound when Bound is nil")
	}
}
