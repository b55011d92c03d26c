package value

import "testing"

func TestCanonicalDeterministic(t *testing.T) {
	a := MapOf("b", 2, "a", 1)
	b := MapOf("a", 1, "b", 2)
	if CanonicalString(a) != CanonicalString(b) {
		t.Fatalf("expected equal canonical forms, got %q vs %q", CanonicalString(a), CanonicalString(b))
	}
	if got := CanonicalString(a); got != `{"a":1,"b":2}` {
		t.Fatalf("unexpected canonical form: %q", got)
	}
}

func TestCanonicalOmitsAbsentKeys(t *testing.T) {
	m := Map{{Key: "a", Val: Int(1)}, {Key: "b", Val: nil}}
	if got := CanonicalString(m); got != `{"a":1}` {
		t.Fatalf("expected absent value omitted, got %q", got)
	}
}

func TestCanonicalRealVsInt(t *testing.T) {
	if got := CanonicalString(Real(3)); got != "3" {
		t.Fatalf("expected integral real to encode as '3', got %q", got)
	}
	if got := CanonicalString(Real(3.5)); got != "3.5" {
		t.Fatalf("expected '3.5', got %q", got)
	}
	if got := CanonicalString(Int(3)); got != "3" {
		t.Fatalf("expected '3', got %q", got)
	}
}

func TestCanonicalStringEscaping(t *testing.T) {
	got := CanonicalString(String("a\"b\\c\nd"))
	want := `"a\"b\\c\nd"`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestEqualAcrossIntReal(t *testing.T) {
	if !Equal(Int(3), Real(3.0)) {
		t.Fatal("expected Int(3) == Real(3.0)")
	}
	if Equal(Int(3), Real(3.5)) {
		t.Fatal("expected Int(3) != Real(3.5)")
	}
}

func TestHashDeterministic(t *testing.T) {
	a := MapOf("name", "Alice", "id", 1)
	b := MapOf("id", 1, "name", "Alice")
	if Hash(a) != Hash(b) {
		t.Fatalf("expected same hash for structurally equal values")
	}
}

func TestMapSetOrdersByKey(t *testing.T) {
	var m Map
	m = m.Set("z", Int(1))
	m = m.Set("a", Int(2))
	m = m.Set("m", Int(3))
	keys := m.Keys()
	want := []string{"a", "m", "z"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("keys not sorted: got %v want %v", keys, want)
		}
	}
}

func TestToAnyFromAnyRoundTrip(t *testing.T) {
	orig := MapOf("name", "Alice", "age", 30, "active", true, "tags", []any{"a", "b"})
	a := ToAny(orig)
	back := FromAny(a)
	if CanonicalString(orig) != CanonicalString(back) {
		t.Fatalf("round trip mismatch: %q vs %q", CanonicalString(orig), CanonicalString(back))
	}
}
