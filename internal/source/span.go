// Package source provides the span, file and diagnostic machinery shared by
// every compiler pass: source-position tracking (spans, enclosing-line
// lookup, structured syntax errors) generalized to ASDL's multi-file,
// multi-stage diagnostics.
package source

import "fmt"

// Span represents a contiguous slice of a source file, measured in rune
// offsets. It is deliberately a value type so diagnostics can be copied
// freely between passes.
type Span struct {
	start int
	end   int
}

// NewSpan constructs a span, checking the basic invariant that start <= end.
func NewSpan(start, end int) Span {
	if start > end {
		panic("invalid span: start > end")
	}

	return Span{start, end}
}

// Start returns the first rune offset covered by this span.
func (s Span) Start() int { return s.start }

// End returns one past the last rune offset covered by this span.
func (s Span) End() int { return s.end }

// Length returns the number of runes covered by this span.
func (s Span) Length() int { return s.end - s.start }

// String renders the span as "start:end".
func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.start, s.end)
}
