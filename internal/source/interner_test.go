package source

import (
	"fmt"
	"testing"
)

func TestInternerBasic(t *testing.T) {
	interner := NewInterner()

	// NoStringID зарезервирован под пустую строку
	if s, ok := interner.Lookup(NoStringID); !ok || s != "" {
		t.Errorf("NoStringID must map to the empty string, got %q, ok=%v", s, ok)
	}

	id1 := interner.Intern("eba_met:mi53")
	if id1 == NoStringID {
		t.Error("non-empty string must not get NoStringID")
	}
	if id2 := interner.Intern("eba_met:mi53"); id1 != id2 {
		t.Errorf("same string interned twice: %d != %d", id1, id2)
	}
	if s, ok := interner.Lookup(id1); !ok || s != "eba_met:mi53" {
		t.Errorf("Lookup() = %q, ok=%v", s, ok)
	}
	if id3 := interner.Intern("eba_met:ei4"); id3 == id1 {
		t.Error("different strings must get different IDs")
	}
	if interner.Len() != 3 {
		t.Errorf("Len() = %d, want 3", interner.Len())
	}
}

func TestInternerKey(t *testing.T) {
	interner := NewInternerSize(4)

	a := interner.InternKey("concept", "c1", "EUR")
	b := interner.InternKey("concept", "c1", "EUR")
	c := interner.InternKey("concept", "c1EUR")
	if a != b {
		t.Errorf("equal composite keys must share an ID: %d != %d", a, b)
	}
	if a == c {
		t.Error("part boundaries must be significant")
	}

	parts := interner.KeyParts(a)
	if fmt.Sprint(parts) != "[concept c1 EUR]" {
		t.Errorf("KeyParts() = %v", parts)
	}
	if interner.KeyParts(NoStringID) != nil {
		t.Error("KeyParts(NoStringID) must be nil")
	}
}

func TestInternerHas(t *testing.T) {
	interner := NewInterner()
	id := interner.Intern("x")
	if !interner.Has(id) {
		t.Error("Has() must accept issued IDs")
	}
	if interner.Has(id + 1) {
		t.Error("Has() must reject unknown IDs")
	}
	snap := interner.Snapshot()
	snap[1] = "mutated"
	if s, _ := interner.Lookup(id); s != "x" {
		t.Error("Snapshot must return a copy")
	}
}
