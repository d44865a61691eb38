package paramvalue

import "testing"

func TestOrderedMapPreservesInsertionOrder(t *testing.T) {
	m := NewOrderedMap[Value]()
	m.Set("vdd", Float(1.8))
	m.Set("vss", Float(0))
	m.Set("m", Int(2))

	want := []string{"vdd", "vss", "m"}
	got := m.Keys()

	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(got))
	}

	for i, k := range want {
		if got[i] != k {
			t.Errorf("key %d: want %q, got %q", i, k, got[i])
		}
	}
}

func TestOrderedMapOverwritePreservesPosition(t *testing.T) {
	m := NewOrderedMap[Value]()
	m.Set("a", Int(1))
	m.Set("b", Int(2))
	m.Set("a", Int(99))

	if m.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", m.Len())
	}

	got := m.Keys()
	if got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected order [a b], got %v", got)
	}

	v, ok := m.Get("a")
	if !ok || v.AsInt() != 99 {
		t.Fatalf("expected overwritten value 99, got %+v (ok=%v)", v, ok)
	}
}

func TestOrderedMapGetHas(t *testing.T) {
	m := NewOrderedMap[Value]()

	if m.Has("missing") {
		t.Fatalf("expected Has to report false for missing key")
	}

	if _, ok := m.Get("missing"); ok {
		t.Fatalf("expected Get to report false for missing key")
	}

	m.Set("k", String("v"))

	if !m.Has("k") {
		t.Fatalf("expected Has to report true after Set")
	}
}

func TestOrderedMapSortedKeys(t *testing.T) {
	m := NewOrderedMap[Value]()
	m.Set("zebra", Int(1))
	m.Set("apple", Int(2))
	m.Set("mango", Int(3))

	want := []string{"apple", "mango", "zebra"}
	got := m.SortedKeys()

	for i, k := range want {
		if got[i] != k {
			t.Errorf("sorted key %d: want %q, got %q", i, k, got[i])
		}
	}
	// SortedKeys must not mutate declaration order.
	decl := m.Keys()
	if decl[0] != "zebra" || decl[1] != "apple" || decl[2] != "mango" {
		t.Fatalf("SortedKeys mutated declaration order: %v", decl)
	}
}
