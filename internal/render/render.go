// Package render implements the Renderer: it applies a
// backend's textual templates to a lowered NetlistIR Program, producing the
// final emitted text.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/asdl-lang/asdlc/internal/atomize"
	"github.com/asdl-lang/asdlc/internal/config"
	"github.com/asdl-lang/asdlc/internal/netlist"
	"github.com/asdl-lang/asdlc/internal/paramvalue"
	"github.com/asdl-lang/asdlc/internal/source"
)

// component is the Renderer's stage index for diagnostic ordering.
const component = 7

// Render applies backendName's templates (from cfg) to prog, returning the
// full emitted text.
func Render(prog *netlist.Program, backendName string, cfg config.BackendConfig) (string, []source.Diagnostic) {
	r := &renderer{sink: source.NewSink(), backend: backendName, cfg: cfg}

	for _, key := range config.RequiredKeys {
		if _, ok := cfg.Template(backendName, key); !ok {
			r.reportf("E-BACKEND-MISS", "backend %q is missing required template %q", backendName, key)
		}
	}

	if r.sink.HasErrors() {
		return "", r.sink.All()
	}

	var out strings.Builder

	out.WriteString(r.apply("__netlist_header__", map[string]string{"backend": backendName, "top": prog.Top}))

	for _, g := range prog.GlobalParameters {
		out.WriteString(r.renderGlobalParam(g))
	}

	for _, m := range prog.Modules {
		out.WriteString(r.renderModule(m, m.EmittedName == prog.Top))
	}

	out.WriteString(r.apply("__netlist_footer__", map[string]string{"backend": backendName, "top": prog.Top}))

	return collapseBlankPlaceholderSpacing(out.String()), r.sink.All()
}

type renderer struct {
	sink    *source.Sink
	backend string
	cfg     config.BackendConfig
}

func (r *renderer) renderModule(m *netlist.Module, isTop bool) string {
	var out strings.Builder

	ports := strings.Join(m.Ports, " ")
	params := renderParams(m.Parameters)

	if isTop {
		out.WriteString(r.apply("__top_header__", map[string]string{"name": m.EmittedName, "ports": ports, "params": params}))
	} else if params != "" {
		out.WriteString(r.apply("__subckt_header_params__", map[string]string{"name": m.EmittedName, "ports": ports, "params": params}))
	} else {
		out.WriteString(r.apply("__subckt_header__", map[string]string{"name": m.EmittedName, "ports": ports, "params": params}))
	}

	for _, call := range m.Body {
		out.WriteString(r.renderCall(call))
	}

	if isTop {
		out.WriteString(r.apply("__top_footer__", map[string]string{"name": m.EmittedName}))
	} else {
		out.WriteString(r.apply("__subckt_footer__", map[string]string{"name": m.EmittedName}))
	}

	return out.String()
}

// defaultGlobalParamDecl is used when a backend declares no
// "__global_param_decl__" template of its own: the key is optional (unlike
// the nine keys in config.RequiredKeys) since not every backend needs
// entry-file globals, but a compile that has them still needs somewhere to
// put the declaration.
const defaultGlobalParamDecl = ".param {name}={value}\n"

// renderGlobalParam renders one entry-file global parameter declaration,
// emitted right after the netlist header and before any module body so a
// "!{name}" reference resolved earlier in the pipeline to the literal
// placeholder "{name}" has something to bind against.
func (r *renderer) renderGlobalParam(g netlist.GlobalParam) string {
	tmpl, ok := r.cfg.Template(r.backend, "__global_param_decl__")
	if !ok {
		tmpl = defaultGlobalParamDecl
	}

	return substitutePlaceholders(tmpl, map[string]string{"name": g.Name, "value": g.Value.Render()})
}

func (r *renderer) renderCall(call netlist.Call) string {
	var nets []string
	for _, pb := range call.Ports {
		nets = append(nets, pb.Net)
	}

	bindings := map[string]string{
		"name":   r.renderAtom(call.InstName, call.Origin),
		"ports":  strings.Join(nets, " "),
		"ref":    call.RefEmittedName,
		"params": renderParams(call.Parameters),
	}

	if call.HasParams {
		return r.apply("__subckt_call_params__", bindings)
	}

	return r.apply("__subckt_call__", bindings)
}

// renderAtom applies the ADR-0018 bracketed-numeric policy for this
// backend: only instance-call names carry pattern_origin far enough through
// the pipeline to support it (see DESIGN.md).
func (r *renderer) renderAtom(literal string, origin atomize.Origin) string {
	b, ok := r.cfg[r.backend]
	if !ok || !b.BracketedNumeric {
		return literal
	}

	var nums []string

	for _, p := range origin.PatternParts {
		if p.IsInt {
			nums = append(nums, strconv.Itoa(p.Int))
		}
	}

	if len(nums) == 0 || origin.BaseName == "" {
		return literal
	}

	return origin.BaseName + "[" + strings.Join(nums, ",") + "]"
}

func renderParams(params *paramvalue.OrderedMap[paramvalue.Value]) string {
	if params == nil || params.Len() == 0 {
		return ""
	}

	var toks []string

	for _, k := range params.SortedKeys() {
		v, _ := params.Get(k)
		toks = append(toks, fmt.Sprintf("%s=%s", k, v.Render()))
	}

	return strings.Join(toks, " ")
}

func (r *renderer) apply(key string, bindings map[string]string) string {
	tmpl, _ := r.cfg.Template(r.backend, key)

	return substitutePlaceholders(tmpl, bindings)
}

// substitutePlaceholders replaces every "{name}" in tmpl found in bindings;
// an unrecognized placeholder is left as literal text.
func substitutePlaceholders(tmpl string, bindings map[string]string) string {
	var b strings.Builder

	runes := []rune(tmpl)
	i := 0

	for i < len(runes) {
		if runes[i] != '{' {
			b.WriteRune(runes[i])
			i++

			continue
		}

		end := -1

		for j := i + 1; j < len(runes); j++ {
			if runes[j] == '}' {
				end = j

				break
			}
		}

		if end < 0 {
			b.WriteRune(runes[i])
			i++

			continue
		}

		name := string(runes[i+1 : end])

		if v, ok := bindings[name]; ok {
			b.WriteString(v)
		} else {
			b.WriteString("{" + name + "}")
		}

		i = end + 1
	}

	return b.String()
}

// collapseBlankPlaceholderSpacing collapses runs of horizontal whitespace
// left behind when an empty {ports}/{params} substitution sits between two
// spaces in a template.
func collapseBlankPlaceholderSpacing(s string) string {
	lines := strings.Split(s, "\n")

	for i, line := range lines {
		fields := strings.Fields(line)
		leading := len(line) - len(strings.TrimLeft(line, " \t"))
		lines[i] = line[:leading] + strings.Join(fields, " ")
	}

	return strings.Join(lines, "\n")
}

func (r *renderer) reportf(code, format string, args ...any) {
	r.sink.Report(source.Diagnostic{
		Code: code, Severity: source.Error, Component: component,
		Message: fmt.Sprintf(format, args...),
	})
}
