package source

import "testing"

func TestSinkHasErrors(t *testing.T) {
	s := NewSink()

	if s.HasErrors() {
		t.Fatalf("expected empty sink to have no errors")
	}

	s.Report(Diagnostic{Code: "P07-SHADOW", Severity: Warning})

	if s.HasErrors() {
		t.Fatalf("expected warning-only sink to have no errors")
	}

	s.Report(Diagnostic{Code: "E0441", Severity: Error})

	if !s.HasErrors() {
		t.Fatalf("expected sink with an error diagnostic to report HasErrors")
	}
}

func TestSinkErrorf(t *testing.T) {
	s := NewSink()
	s.Errorf("E0448", "unresolved reference %q", "foo")

	all := s.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(all))
	}

	if all[0].Code != "E0448" || all[0].Severity != Error {
		t.Fatalf("unexpected diagnostic: %+v", all[0])
	}

	if all[0].Message != `unresolved reference "foo"` {
		t.Fatalf("unexpected message: %q", all[0].Message)
	}
}

func TestSinkOrdering(t *testing.T) {
	s := NewSink()
	s.Report(Diagnostic{Code: "Z", File: "b", Span: NewSpan(5, 6), HasSpan: true})
	s.Report(Diagnostic{Code: "A", File: "a", Span: NewSpan(10, 11), HasSpan: true})
	s.Report(Diagnostic{Code: "B", File: "a", Span: NewSpan(1, 2), HasSpan: true})
	s.Report(Diagnostic{Code: "C", File: "a", Span: NewSpan(1, 2), HasSpan: true, Component: 1})

	all := s.All()

	wantFiles := []string{"a", "a", "a", "b"}
	for i, f := range wantFiles {
		if all[i].File != f {
			t.Fatalf("position %d: expected file %q, got %q", i, f, all[i].File)
		}
	}
	// Within file "a", span.Start 1 sorts before 10; among the two at 1:2,
	// component 0 (code "B") sorts before component 1 (code "C").
	if all[0].Code != "B" || all[1].Code != "C" || all[2].Code != "A" {
		t.Fatalf("unexpected intra-file order: %v, %v, %v", all[0].Code, all[1].Code, all[2].Code)
	}
}

func TestSinkAppend(t *testing.T) {
	s1 := NewSink()
	s1.Errorf("X", "first")

	s2 := NewSink()
	s2.Errorf("Y", "second")

	s1.Append(s2)

	if len(s1.All()) != 2 {
		t.Fatalf("expected 2 diagnostics after append, got %d", len(s1.All()))
	}
	// Append(nil) must be a no-op, not a panic.
	s1.Append(nil)

	if len(s1.All()) != 2 {
		t.Fatalf("expected Append(nil) to be a no-op")
	}
}

func TestDiagnosticError(t *testing.T) {
	d := Diagnostic{Code: "E1", Message: "boom"}
	if d.Error() != "E1: boom" {
		t.Fatalf("unexpected Error() string: %q", d.Error())
	}

	d2 := Diagnostic{Code: "E2", Message: "boom", HasSpan: true, Span: NewSpan(1, 3)}
	if d2.Error() != "E2: boom (1:3)" {
		t.Fatalf("unexpected Error() string: %q", d2.Error())
	}
}

func TestSeverityString(t *testing.T) {
	cases := map[Severity]string{Error: "error", Warning: "warning", Info: "info"}
	for sev, want := range cases {
		if got := sev.String(); got != want {
			t.Errorf("Severity(%d).String() = %q, want %q", sev, got, want)
		}
	}
}
