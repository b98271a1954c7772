package cbor

import "testing"

func TestMapSetGetLastWriteWins(t *testing.T) {
	m := NewMap()
	m.Set(uint64(1), "first")
	m.Set(uint64(2), "second")
	m.Set(uint64(1), "updated")

	if m.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", m.Len())
	}

	v, ok := m.Get(uint64(1))
	if !ok || v != "updated" {
		t.Fatalf("expected updated value for key 1, got %v (ok=%v)", v, ok)
	}

	entries := m.Entries()
	if entries[0].Key != uint64(1) {
		t.Fatalf("expected key 1 to keep its original position, got %v", entries[0].Key)
	}
}

func TestMapByteStringKeys(t *testing.T) {
	m := NewMap()
	m.Set([]byte("a"), 1)
	m.Set([]byte("a"), 2)

	if m.Len() != 1 {
		t.Fatalf("expected byte-string keys to compare by content, got %d entries", m.Len())
	}
}

func TestSetAddDeduplicates(t *testing.T) {
	s := NewSet()
	s.Add(uint64(1))
	s.Add(uint64(2))
	s.Add(uint64(1))

	if s.Len() != 2 {
		t.Fatalf("expected 2 unique elements, got %d", s.Len())
	}
}

func TestMapFreeze(t *testing.T) {
	m := NewMap()
	if m.Frozen() {
		t.Fatal("new map should not be frozen")
	}
	m.freeze()
	if !m.Frozen() {
		t.Fatal("expected map to be frozen")
	}
}
