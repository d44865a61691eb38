// Package cliutil provides the small terminal-formatting layer the CLI uses
// to print diagnostics: TTY detection and ANSI colorization, scoped to what
// a line-oriented diagnostic printer needs (one-line colored diagnostics,
// not a full-screen widget terminal).
package cliutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/asdl-lang/asdlc/internal/driver"
	"github.com/asdl-lang/asdlc/internal/source"
)

// ansiEscape is a minimal escape-code builder, grounded on
// pkg/util/termio/escapes.go's AnsiEscape but stripped to foreground color
// and bold/reset since the CLI never needs cursor movement or background
// colors.
type ansiEscape struct {
	escape string
	count  uint
}

func newAnsiEscape() ansiEscape { return ansiEscape{"\033", 0} }

func resetEscape() string { return "\033[0m" }

func boldEscape() ansiEscape { return ansiEscape{"\033[1", 1} }

const (
	colorRed    = uint(1)
	colorGreen  = uint(2)
	colorYellow = uint(3)
	colorBlue   = uint(4)
)

func (a ansiEscape) fgColour(col uint) ansiEscape {
	col += 30

	var escape string
	if a.count > 0 {
		escape = fmt.Sprintf("%s;%d", a.escape, col)
	} else {
		escape = fmt.Sprintf("%s[%d", a.escape, col)
	}

	return ansiEscape{escape, a.count + 1}
}

func (a ansiEscape) String() string { return a.escape + "m" }

// IsTTY reports whether w is a terminal capable of ANSI output.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

func severityColor(sev source.Severity) ansiEscape {
	switch sev {
	case source.Error:
		return newAnsiEscape().fgColour(colorRed)
	case source.Warning:
		return newAnsiEscape().fgColour(colorYellow)
	default:
		return newAnsiEscape().fgColour(colorBlue)
	}
}

// FormatDiagnostic renders one diagnostic as a single line, colorized if
// color is true.
func FormatDiagnostic(d source.Diagnostic, color bool) string {
	var b strings.Builder

	if color {
		b.WriteString(severityColor(d.Severity).String())
		b.WriteString(boldEscape().String())
	}

	b.WriteString(d.Severity.String())

	if color {
		b.WriteString(resetEscape())
	}

	b.WriteString(": ")
	b.WriteString(d.Code)

	if d.File != "" {
		b.WriteString(" (")
		b.WriteString(d.File)

		if d.HasSpan {
			b.WriteString(fmt.Sprintf(":%d", d.Span.Start()))
		}

		b.WriteString(")")
	}

	b.WriteString(": ")
	b.WriteString(d.Message)

	return b.String()
}

// PrintDiagnostics writes every diagnostic in diags to w, one per line,
// colorizing output only when w is a TTY.
func PrintDiagnostics(w io.Writer, diags []source.Diagnostic) {
	color := IsTTY(w)
	for _, d := range diags {
		fmt.Fprintln(w, FormatDiagnostic(d, color))
	}
}

// PrintSummary writes the final compile state and a diagnostic count
// summary line, colorized to green/red by success.
func PrintSummary(w io.Writer, r *driver.Result) {
	errs, warns := 0, 0

	for _, d := range r.Diagnostics {
		switch d.Severity {
		case source.Error:
			errs++
		case source.Warning:
			warns++
		}
	}

	color := IsTTY(w)
	label := r.State.String()

	if color {
		esc := newAnsiEscape().fgColour(colorRed)
		if r.State != driver.StateAborted {
			esc = newAnsiEscape().fgColour(colorGreen)
		}

		fmt.Fprintf(w, "%s%s%s%s: %d error(s), %d warning(s)\n", esc.String(), boldEscape().String(), label, resetEscape(), errs, warns)

		return
	}

	fmt.Fprintf(w, "%s: %d error(s), %d warning(s)\n", label, errs, warns)
}
