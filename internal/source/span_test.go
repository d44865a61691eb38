package source

import "testing"

func TestSpanAccessors(t *testing.T) {
	s := NewSpan(3, 9)

	if s.Start() != 3 {
		t.Errorf("Start() = %d, want 3", s.Start())
	}

	if s.End() != 9 {
		t.Errorf("End() = %d, want 9", s.End())
	}

	if s.Length() != 6 {
		t.Errorf("Length() = %d, want 6", s.Length())
	}

	if s.String() != "3:9" {
		t.Errorf("String() = %q, want %q", s.String(), "3:9")
	}
}

func TestNewSpanPanicsOnInvertedRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for start > end")
		}
	}()

	NewSpan(5, 2)
}
