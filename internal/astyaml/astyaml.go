// Package astyaml is the reference YAML surface-syntax loader: it turns an
// ASDL ".asdl" YAML document into the internal/ast tree the core compiler
// consumes. This package is explicitly an external collaborator —
// the core never imports it — but the CLI and the test suite both use it to
// get real ASTs without hand-building internal/ast literals.
package astyaml

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/asdl-lang/asdlc/internal/ast"
	"github.com/asdl-lang/asdlc/internal/ids"
	"github.com/asdl-lang/asdlc/internal/source"
)

// rawFile mirrors the on-disk YAML shape. Ports uses a pointer so a
// present-but-empty `ports: []` can be told apart from an absent `ports:`
// key (ADR-0023) — yaml.v3 leaves an absent key's pointer nil.
type rawFile struct {
	Imports          map[string]string    `yaml:"imports"`
	ModelAlias       []rawModelAlias      `yaml:"model_alias"`
	Modules          []rawModule          `yaml:"modules"`
	Devices          []rawDevice          `yaml:"devices"`
}

type rawModelAlias struct {
	Alias  string `yaml:"alias"`
	Module string `yaml:"module"`
}

type rawModule struct {
	Name             string                    `yaml:"name"`
	Ports            *[]string                 `yaml:"ports"`
	Nets             []rawNet                  `yaml:"nets"`
	Instances        []rawInstance             `yaml:"instances"`
	Endpoints        []rawEndpoint             `yaml:"endpoints"`
	Patterns         map[string]rawNamedPattern `yaml:"patterns"`
	Variables        yaml.Node                 `yaml:"variables"`
	Parameters       yaml.Node                 `yaml:"parameters"`
	GlobalParameters yaml.Node                 `yaml:"global_parameters"`
}

type rawNamedPattern struct {
	Expr   string `yaml:"expr"`
	AxisID string `yaml:"axis_id"`
}

type rawNet struct {
	Name string `yaml:"name"`
}

type rawInstance struct {
	Name       string     `yaml:"name"`
	Ref        string     `yaml:"ref"`
	Parameters yaml.Node  `yaml:"parameters"`
}

type rawEndpoint struct {
	Net     string `yaml:"net"`
	Port    string `yaml:"port"`
	Label   string `yaml:"label"`
	Default bool   `yaml:"default"`
}

type rawDevice struct {
	Name          string    `yaml:"name"`
	Ports         []string  `yaml:"ports"`
	Parameters    yaml.Node `yaml:"parameters"`
	Variables     yaml.Node `yaml:"variables"`
	SpiceTemplate string    `yaml:"spice_template"`
	PDK           string    `yaml:"pdk"`
}

// Load parses the YAML document at path into an internal/ast.File. It
// implements linker.Loader once bound to a path-from-fileID scheme (see
// NewLoader).
func Load(path string) (*ast.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	f := &ast.File{ID: path, Path: path, Imports: raw.Imports}

	for _, ma := range raw.ModelAlias {
		f.ModelAlias = append(f.ModelAlias, ast.ModelAliasEntry{Alias: ma.Alias, ModuleName: ma.Module})
	}

	for _, m := range raw.Modules {
		f.Modules = append(f.Modules, toModule(m))
	}

	for _, d := range raw.Devices {
		f.Devices = append(f.Devices, toDevice(d))
	}

	return f, nil
}

func toModule(m rawModule) ast.Module {
	out := ast.Module{Name: m.Name}

	if m.Ports != nil {
		out.PortsDeclared = true
		out.Ports = *m.Ports
	}

	for _, n := range m.Nets {
		out.Nets = append(out.Nets, ast.Net{NameRaw: n.Name})
	}

	for _, inst := range m.Instances {
		out.Instances = append(out.Instances, ast.Instance{
			NameRaw: inst.Name, RefRaw: inst.Ref, Parameters: toParams(inst.Parameters),
		})
	}

	for _, ep := range m.Endpoints {
		out.Endpoints = append(out.Endpoints, ast.Endpoint{
			NetRaw: ep.Net, PortRaw: ep.Port, ConnLabel: ep.Label,
			HasLabel: ep.Label != "", Default: ep.Default, Span: nodeSpan(nil),
		})
	}

	if len(m.Patterns) > 0 {
		out.Patterns = map[string]ast.NamedPatternDef{}
		for name, p := range m.Patterns {
			out.Patterns[name] = ast.NamedPatternDef{Name: name, ExprRaw: p.Expr, AxisID: p.AxisID}
		}
	}

	out.Variables = toParams(m.Variables)
	out.Parameters = toParams(m.Parameters)
	out.GlobalParameters = toParams(m.GlobalParameters)

	return out
}

func toDevice(d rawDevice) ast.Device {
	return ast.Device{
		Name: d.Name, Ports: d.Ports, Parameters: toParams(d.Parameters),
		Variables: toParams(d.Variables), SpiceTemplate: d.SpiceTemplate,
		PDK: d.PDK, HasPDK: d.PDK != "",
	}
}

// toParams decodes a mapping node of name -> scalar-or-{ref,parameters} into
// NamedParams in declaration order, normalizing the quoted inline shorthand
// and the structured form identically (ADR-0031). A mapping node's Content
// alternates key, value nodes; we walk it directly (rather than decoding
// into a Go map) purely to preserve declaration order, since yaml.v3 maps
// into Go maps lose key order.
func toParams(n yaml.Node) []ast.NamedParam {
	if n.Kind != yaml.MappingNode {
		return nil
	}

	var out []ast.NamedParam

	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		val := n.Content[i+1]

		out = append(out, ast.NamedParam{
			Name:  key,
			Value: ast.ParamSpec{Raw: scalarOrRef(val), Span: nodeSpan(val)},
		})
	}

	return out
}

// scalarOrRef normalizes a parameter value node to its raw text: a bare
// scalar renders as its literal text; the structured {ref, parameters: {…}}
// form (ADR-0031) is not itself a ParamValue/PatternExpr, so this loader
// only handles the scalar shorthand — structured instance parameter blocks
// arrive pre-split via rawInstance.Parameters instead.
func scalarOrRef(n *yaml.Node) string {
	if n == nil {
		return ""
	}

	return n.Value
}

func nodeSpan(n *yaml.Node) source.Span {
	if n == nil {
		return source.NewSpan(0, 0)
	}

	return source.NewSpan(n.Line, n.Line)
}

// NewLoader builds a linker.Loader that resolves a file id directly as a
// filesystem path — the scheme this loader and the CLI both use, since
// ASDL has no separate logical module-id namespace distinct from paths.
func NewLoader() func(fileID ids.FileID) (*ast.File, error) {
	return func(fileID ids.FileID) (*ast.File, error) {
		return Load(string(fileID))
	}
}
