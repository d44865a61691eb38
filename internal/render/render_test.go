package render

import (
	"strings"
	"testing"

	"github.com/asdl-lang/asdlc/internal/atomize"
	"github.com/asdl-lang/asdlc/internal/config"
	"github.com/asdl-lang/asdlc/internal/netlist"
	"github.com/asdl-lang/asdlc/internal/pattern"
	"github.com/asdl-lang/asdlc/internal/paramvalue"
)

func fullBackend() config.BackendConfig {
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

func simpleProgram() *netlist.Program {
	params := paramvalue.NewOrderedMap[paramvalue.Value]()
	params.Set("w", paramvalue.String("10u"))

	return &netlist.Program{
		Top: "amp",
		Modules: []*netlist.Module{{
			EmittedName: "amp",
			Ports:       []string{"IN", "OUT"},
			Body: []netlist.Call{{
				InstName: "M1", RefEmittedName: "nfet", IsDevice: true, HasParams: true, Parameters: params,
				Ports: []netlist.PortBinding{{Port: "D", Net: "OUT"}, {Port: "G", Net: "IN"}},
			}},
		}},
	}
}

func TestRenderProducesExpectedText(t *testing.T) {
	out, diags := Render(simpleProgram(), "ngspice", fullBackend())
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}

	if !strings.Contains(out, "* netlist for amp") {
		t.Errorf("expected header to substitute top name, got: %s", out)
	}

	if !strings.Contains(out, "* top amp") {
		t.Errorf("expected top subckt to use top header, got: %s", out)
	}

	if !strings.Contains(out, "XM1 OUT IN nfet w=10u") {
		t.Errorf("expected call line with params, got: %s", out)
	}

	if !strings.Contains(out, "* end top") || !strings.Contains(out, "* end\n") {
		t.Errorf("expected both top and netlist footers, got: %s", out)
	}
}

func TestRenderEmitsGlobalParamDeclAfterHeader(t *testing.T) {
	cfg := fullBackend()
	b := cfg["ngspice"]
	b.SystemDevices["__global_param_decl__"] = config.SystemDevice{Template: ".param {name}={value}\n"}
	cfg["ngspice"] = b

	prog := simpleProgram()
	prog.GlobalParameters = []netlist.GlobalParam{{Name: "vdd", Value: paramvalue.Float(1.8)}}

	out, diags := Render(prog, "ngspice", cfg)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}

	header := strings.Index(out, "* netlist for amp")
	decl := strings.Index(out, ".param vdd=1.8")

	if header == -1 || decl == -1 || decl < header {
		t.Fatalf("expected '.param vdd=1.8' right after the netlist header, got: %s", out)
	}
}

func TestRenderGlobalParamDeclDefaultsWhenBackendOmitsTemplate(t *testing.T) {
	prog := simpleProgram()
	prog.GlobalParameters = []netlist.GlobalParam{{Name: "vdd", Value: paramvalue.Float(1.8)}}

	out, diags := Render(prog, "ngspice", fullBackend())
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}

	if !strings.Contains(out, ".param vdd=1.8\n") {
		t.Fatalf("expected default global param declaration format, got: %s", out)
	}
}

func TestRenderMissingRequiredTemplateReportsError(t *testing.T) {
	cfg := fullBackend()
	b := cfg["ngspice"]
	delete(b.SystemDevices, "__subckt_call__")
	cfg["ngspice"] = b

	_, diags := Render(simpleProgram(), "ngspice", cfg)

	found := false

	for _, d := range diags {
		if d.Code == "E-BACKEND-MISS" {
			found = true
		}
	}

	if !found {
		t.Fatalf("expected E-BACKEND-MISS, got %+v", diags)
	}
}

func TestSubstitutePlaceholdersLeavesUnknownPlaceholderLiteral(t *testing.T) {
	out := substitutePlaceholders("{known} and {unknown}", map[string]string{"known": "X"})
	if out != "X and {unknown}" {
		t.Fatalf("expected unknown placeholder passthrough, got %q", out)
	}
}

func TestCollapseBlankPlaceholderSpacing(t *testing.T) {
	out := collapseBlankPlaceholderSpacing(".subckt amp IN OUT  \n")
	if out != ".subckt amp IN OUT\n" {
		t.Fatalf("expected collapsed trailing blank substitution, got %q", out)
	}
}

func TestRenderAtomBracketedNumericPolicy(t *testing.T) {
	cfg := config.BackendConfig{"ngspice": {BracketedNumeric: true}}
	r := &renderer{cfg: cfg, backend: "ngspice"}

	origin := atomize.Origin{BaseName: "M", PatternParts: []pattern.Part{{Int: 3, IsInt: true}}}

	if got := r.renderAtom("M3", origin); got != "M[3]" {
		t.Fatalf("expected bracketed numeric form, got %q", got)
	}

	r2 := &renderer{cfg: config.BackendConfig{"ngspice": {BracketedNumeric: false}}, backend: "ngspice"}
	if got := r2.renderAtom("M3", origin); got != "M3" {
		t.Fatalf("expected literal passthrough when policy disabled, got %q", got)
	}
}

func TestRenderParamsSortsKeysDeterministically(t *testing.T) {
	params := paramvalue.NewOrderedMap[paramvalue.Value]()
	params.Set("w", paramvalue.String("10u"))
	params.Set("l", paramvalue.String("180n"))

	if got := renderParams(params); got != "l=180n w=10u" {
		t.Fatalf("expected sorted param rendering, got %q", got)
	}

	if got := renderParams(nil); got != "" {
		t.Fatalf("expected empty string for nil params, got %q", got)
	}
}
