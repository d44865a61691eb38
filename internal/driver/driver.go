// Package driver implements the top-level compile state machine: Parsed →
// Linked → Patterned → Atomized → Verified → Bound →
// Lowered → Rendered → Logged, aborting to Aborted on the first stage that
// reports a fatal diagnostic while preserving every graph built so far for
// inspection tooling (query/visualizer).
package driver

import (
	"github.com/asdl-lang/asdlc/internal/atomize"
	"github.com/asdl-lang/asdlc/internal/complog"
	"github.com/asdl-lang/asdlc/internal/config"
	"github.com/asdl-lang/asdlc/internal/ids"
	"github.com/asdl-lang/asdlc/internal/linker"
	"github.com/asdl-lang/asdlc/internal/netlist"
	"github.com/asdl-lang/asdlc/internal/patterned"
	"github.com/asdl-lang/asdlc/internal/render"
	"github.com/asdl-lang/asdlc/internal/source"
	"github.com/asdl-lang/asdlc/internal/verify"
	"github.com/asdl-lang/asdlc/internal/viewbind"
)

// State names one node of the compile state machine.
type State uint8

const (
	StateParsed State = iota
	StateLinked
	StatePatterned
	StateAtomized
	StateVerified
	StateBound
	StateLowered
	StateRendered
	StateLogged
	StateAborted
)

// String renders a State's name, used in CLI/-v output and the query tool.
func (s State) String() string {
	names := [...]string{
		"Parsed", "Linked", "Patterned", "Atomized", "Verified",
		"Bound", "Lowered", "Rendered", "Logged", "Aborted",
	}
	if int(s) < len(names) {
		return names[s]
	}

	return "Unknown"
}

// Options configures one compile.
type Options struct {
	Entry         ids.FileID
	EntryPath     string
	Loader        linker.Loader
	SearchRoots   linker.SearchRoots
	TopCell       string
	Profile       config.Profile
	Backend       string
	BackendConfig config.BackendConfig

	// OnTransition, if set, is called with the new state immediately after
	// Compile reaches it — including StateAborted. It is the sole hook the
	// core offers an operator-facing progress logger; Compile itself never
	// logs, so this stays optional and dependency-free.
	OnTransition func(State)
}

// Result carries the final state reached and every intermediate graph
// produced along the way, so a failed compile still exposes its partial
// state to inspection tools.
type Result struct {
	State       State
	Diagnostics []source.Diagnostic

	Linked    *linker.LinkedProgram
	Patterned *patterned.Graph
	Atomized  *atomize.Graph
	Bound     *viewbind.Program
	Netlist   *netlist.Program
	Rendered  string
	Log       *complog.Log
}

// Compile runs every pass in sequence, stopping at the first one whose
// diagnostics include a fatal error.
func Compile(opts Options) *Result {
	r := &Result{State: StateParsed}

	notify := func(s State) {
		r.State = s
		if opts.OnTransition != nil {
			opts.OnTransition(s)
		}
	}

	abort := func() *Result {
		notify(StateAborted)

		return r
	}

	linked, diags := linker.Link(opts.Entry, opts.Loader, opts.SearchRoots)
	r.Diagnostics = append(r.Diagnostics, diags...)

	if linked == nil || hasErrors(diags) {
		return abort()
	}

	r.Linked = linked
	notify(StateLinked)

	pg, diags := patterned.Build(linked)
	r.Diagnostics = append(r.Diagnostics, diags...)
	r.Patterned = pg

	if hasErrors(diags) {
		return abort()
	}

	notify(StatePatterned)

	ag, diags := atomize.Atomize(pg)
	r.Diagnostics = append(r.Diagnostics, diags...)
	r.Atomized = ag

	if hasErrors(diags) {
		return abort()
	}

	notify(StateAtomized)

	ag, diags = verify.Verify(ag)
	r.Diagnostics = append(r.Diagnostics, diags...)
	r.Atomized = ag

	if hasErrors(diags) {
		return abort()
	}

	notify(StateVerified)

	bp, diags := viewbind.Bind(ag, opts.TopCell, opts.Profile)
	r.Diagnostics = append(r.Diagnostics, diags...)
	r.Bound = bp

	if bp == nil || hasErrors(diags) {
		return abort()
	}

	notify(StateBound)

	np, diags := netlist.Lower(bp)
	r.Diagnostics = append(r.Diagnostics, diags...)
	r.Netlist = np

	if hasErrors(diags) {
		return abort()
	}

	notify(StateLowered)

	text, diags := render.Render(np, opts.Backend, opts.BackendConfig)
	r.Diagnostics = append(r.Diagnostics, diags...)
	r.Rendered = text

	if hasErrors(diags) {
		return abort()
	}

	notify(StateRendered)

	r.Log = complog.Build(bp, r.Diagnostics)
	notify(StateLogged)

	return r
}

func hasErrors(diags []source.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == source.Error {
			return true
		}
	}

	return false
}
