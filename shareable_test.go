package cbor

import "testing"

func TestShareableRegistryReserveBind(t *testing.T) {
	var reg shareableRegistry
	idx := reg.reserve()
	reg.bind(idx, "value")

	v, err := reg.get(uint64(idx))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "value" {
		t.Fatalf("expected bound value, got %v", v)
	}
}

func TestShareableRegistryOutOfRange(t *testing.T) {
	var reg shareableRegistry
	if _, err := reg.get(0); err != ErrShareableIndex {
		t.Fatalf("expected ErrShareableIndex, got %v", err)
	}
}

func TestShareableTrackerFirstSeenThenBackReference(t *testing.T) {
	tr := newShareableTracker()
	shared := []interface{}{1, 2, 3}

	_, status, idx := tr.enter(shared, true)
	if status != shareFirstSeen {
		t.Fatalf("expected shareFirstSeen, got %v", status)
	}
	if idx != 0 {
		t.Fatalf("expected index 0, got %d", idx)
	}

	key, status2, idx2 := tr.enter(shared, true)
	tr.leave(key)
	if status2 != shareBackReference {
		t.Fatalf("expected shareBackReference on second encounter, got %v", status2)
	}
	if idx2 != 0 {
		t.Fatalf("expected back reference to index 0, got %d", idx2)
	}
}

func TestShareableTrackerCyclicWithoutSharing(t *testing.T) {
	tr := newShareableTracker()
	shared := []interface{}{1}

	key, status, _ := tr.enter(shared, false)
	if status != shareFirstSeen {
		t.Fatalf("expected shareFirstSeen on first encounter, got %v", status)
	}

	_, status2, _ := tr.enter(shared, false)
	if status2 != shareCyclic {
		t.Fatalf("expected shareCyclic re-encountering an in-flight value without sharing, got %v", status2)
	}
	tr.leave(key)
}

func TestContainerIdentityScalarsDoNotQualify(t *testing.T) {
	if _, ok := containerIdentity(42); ok {
		t.Fatal("scalar values should not have container identity")
	}
	if _, ok := containerIdentity("text"); ok {
		t.Fatal("strings should not have container identity")
	}
}
