package patterned

import (
	"fmt"
	"strings"

	"github.com/asdl-lang/asdlc/internal/ast"
	"github.com/asdl-lang/asdlc/internal/source"
)

// resolveVariables implements a bounded two-pass resolver: each variable's
// raw text may itself reference other variables
// via "{name}"; resolution is plain string replacement (no arithmetic),
// with a visiting set to detect self-referential cycles.
func resolveVariables(vars []ast.NamedParam, fileID string, component int) (map[string]string, []source.Diagnostic) {
	raw := make(map[string]string, len(vars))
	spans := make(map[string]source.Span, len(vars))

	for _, v := range vars {
		raw[v.Name] = v.Value.Raw
		spans[v.Name] = v.Value.Span
	}

	resolved := make(map[string]string, len(vars))
	visiting := make(map[string]bool, len(vars))

	var diags []source.Diagnostic

	var resolve func(name string) (string, bool)

	resolve = func(name string) (string, bool) {
		if v, ok := resolved[name]; ok {
			return v, true
		}

		text, ok := raw[name]
		if !ok {
			return "", false
		}

		if visiting[name] {
			diags = append(diags, source.Diagnostic{
				Code: "E-VAR-CYCLE", Severity: source.Error, Component: component, File: fileID,
				Span: spans[name], HasSpan: true,
				Message: fmt.Sprintf("variable %q participates in a substitution cycle", name),
			})

			return "", false
		}

		visiting[name] = true
		defer delete(visiting, name)

		out, ok := substitute(text, func(ref string) (string, bool) {
			return resolve(ref)
		})

		if !ok {
			diags = append(diags, source.Diagnostic{
				Code: "E-VAR-UNDEF", Severity: source.Error, Component: component, File: fileID,
				Span: spans[name], HasSpan: true,
				Message: fmt.Sprintf("variable %q references an undefined variable", name),
			})

			return "", false
		}

		resolved[name] = out

		return out, true
	}

	for _, v := range vars {
		resolve(v.Name)
	}

	return resolved, diags
}

// substitute replaces every "{name}" occurrence in text using lookup; a
// "!{name}" global-parameter reference is copied through unchanged. It
// returns false if any reference cannot be resolved.
func substitute(text string, lookup func(name string) (string, bool)) (string, bool) {
	var b strings.Builder

	runes := []rune(text)
	i := 0

	for i < len(runes) {
		if runes[i] != '{' || (i > 0 && runes[i-1] == '!') {
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
			// Unbalanced brace: treat literally rather than erroring.
			b.WriteRune(runes[i])
			i++

			continue
		}

		name := string(runes[i+1 : end])

		val, ok := lookup(name)
		if !ok {
			return "", false
		}

		b.WriteString(val)
		i = end + 1
	}

	return b.String(), true
}

// substituteParam applies a resolved variable map to one parameter's raw
// text. Unlike resolveVariables (which may legitimately fail closed on an
// undefined reference within the variable table itself), an undefined
// reference encountered here is reported against the parameter's own span.
func substituteParam(raw string, vars map[string]string, fileID string, span source.Span, component int) (string, []source.Diagnostic) {
	var missing string

	out, ok := substitute(raw, func(name string) (string, bool) {
		v, found := vars[name]
		if !found {
			missing = name
		}

		return v, found
	})

	if !ok {
		return raw, []source.Diagnostic{{
			Code: "E-VAR-UNDEF", Severity: source.Error, Component: component, File: fileID, Span: span, HasSpan: true,
			Message: fmt.Sprintf("undefined variable %q", missing),
		}}
	}

	return out, nil
}
