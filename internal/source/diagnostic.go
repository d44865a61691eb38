package source

import (
	"fmt"
	"sort"
)

// Severity classifies a Diagnostic. Severity is a property of the Code, not
// of the call site that raised it.
type Severity uint8

const (
	// Error diagnostics abort the compile driver between pass transitions.
	Error Severity = iota
	// Warning diagnostics never abort compilation.
	Warning
	// Info diagnostics are purely informational.
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "info"
	}
}

// Diagnostic is a single structured error, warning or info message produced
// by a compiler pass. It always carries the code that determines its
// severity, an optional span for highlighting, and freeform structured
// parameters so a renderer can format the message without re-deriving
// context.
type Diagnostic struct {
	Code       string
	Severity   Severity
	File       string // FileID; empty if not associated with a file
	Span       Span
	HasSpan    bool
	Message    string
	Params     map[string]any
	Suggestion string
	// Component records the pass (stage) index that raised this diagnostic,
	// used only as a secondary sort key.
	Component int
}

// Error implements the error interface so a Diagnostic can be returned or
// wrapped as a plain Go error where convenient.
func (d Diagnostic) Error() string {
	if d.HasSpan {
		return fmt.Sprintf("%s: %s (%s)", d.Code, d.Message, d.Span)
	}

	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

// Sink is the append-only diagnostic buffer threaded by reference through a
// compilation. It is never a package-level global: each compile call
// constructs its own.
type Sink struct {
	diagnostics []Diagnostic
}

// NewSink constructs an empty diagnostic sink.
func NewSink() *Sink {
	return &Sink{}
}

// Report appends a diagnostic to the sink.
func (s *Sink) Report(d Diagnostic) {
	s.diagnostics = append(s.diagnostics, d)
}

// Errorf is a convenience for reporting a simple, spanless error diagnostic.
func (s *Sink) Errorf(code, format string, args ...any) {
	s.Report(Diagnostic{Code: code, Severity: Error, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any diagnostic in the sink has Error severity.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diagnostics {
		if d.Severity == Error {
			return true
		}
	}

	return false
}

// All returns every diagnostic reported so far, in deterministic order:
// (file, span.start, component, code).
func (s *Sink) All() []Diagnostic {
	out := make([]Diagnostic, len(s.diagnostics))
	copy(out, s.diagnostics)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.File != b.File {
			return a.File < b.File
		}

		if a.Span.Start() != b.Span.Start() {
			return a.Span.Start() < b.Span.Start()
		}

		if a.Component != b.Component {
			return a.Component < b.Component
		}

		return a.Code < b.Code
	})

	return out
}

// Append merges the diagnostics of another sink into this one.
func (s *Sink) Append(other *Sink) {
	if other == nil {
		return
	}

	s.diagnostics = append(s.diagnostics, other.diagnostics...)
}
