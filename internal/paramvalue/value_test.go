package paramvalue

import "testing"

func TestRenderInt(t *testing.T) {
	if got := Int(42).Render(); got != "42" {
		t.Fatalf("expected '42', got %q", got)
	}
}

func TestRenderFloat(t *testing.T) {
	if got := Float(1.8).Render(); got != "1.8" {
		t.Fatalf("expected '1.8', got %q", got)
	}
}

func TestRenderString(t *testing.T) {
	if got := String("nfet").Render(); got != "nfet" {
		t.Fatalf("expected 'nfet', got %q", got)
	}
}

func TestRenderBool(t *testing.T) {
	if got := Bool(true).Render(); got != "true" {
		t.Fatalf("expected 'true', got %q", got)
	}

	if got := Bool(false).Render(); got != "false" {
		t.Fatalf("expected 'false', got %q", got)
	}
}

func TestKind(t *testing.T) {
	cases := []struct {
		v    Value
		want Kind
	}{
		{Int(1), KindInt},
		{Float(1.0), KindFloat},
		{String("x"), KindString},
		{Bool(true), KindBool},
	}

	for _, c := range cases {
		if got := c.v.Kind(); got != c.want {
			t.Errorf("Kind() = %v, want %v", got, c.want)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Int(3).Equal(Int(3)) {
		t.Fatalf("expected Int(3) == Int(3)")
	}

	if Int(3).Equal(Int(4)) {
		t.Fatalf("expected Int(3) != Int(4)")
	}

	if Int(3).Equal(String("3")) {
		t.Fatalf("expected values of different kinds to be unequal")
	}

	if !String("a").Equal(String("a")) {
		t.Fatalf("expected String(a) == String(a)")
	}

	if !Bool(true).Equal(Bool(true)) {
		t.Fatalf("expected Bool(true) == Bool(true)")
	}

	if !Float(1.5).Equal(Float(1.5)) {
		t.Fatalf("expected Float(1.5) == Float(1.5)")
	}
}
