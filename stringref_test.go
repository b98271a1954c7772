package cbor

import "testing"

func TestStringRefStackRegisterAndLookup(t *testing.T) {
	var stack stringRefStack
	stack.push()
	stack.register("hello")
	stack.register("ab") // shorter than stringRefMinLength, ignored

	v, err := stack.lookup(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "hello" {
		t.Fatalf("expected 'hello', got %v", v)
	}

	if _, err := stack.lookup(1); err != ErrStringRefIndex {
		t.Fatalf("expected ErrStringRefIndex for the skipped short string, got %v", err)
	}

	stack.pop()
	if stack.active() {
		t.Fatal("expected no active namespace after pop")
	}
}

func TestStringRefLookupWithoutNamespace(t *testing.T) {
	var stack stringRefStack
	if _, err := stack.lookup(0); err != ErrNoStringRefNamespace {
		t.Fatalf("expected ErrNoStringRefNamespace, got %v", err)
	}
}

func TestStringRefEncodeNamespaceFindAdd(t *testing.T) {
	ns := newStringRefEncodeNamespace()
	idx := ns.add([]byte("repeated string"))

	found, ok := ns.find([]byte("repeated string"))
	if !ok || found != idx {
		t.Fatalf("expected to find index %d, got %d (ok=%v)", idx, found, ok)
	}

	if _, ok := ns.find([]byte("never added")); ok {
		t.Fatal("did not expect to find an unregistered string")
	}
}

func TestQualifiesForReference(t *testing.T) {
	short := []byte("ab")
	if qualifiesForReference(short, 0) {
		t.Fatal("strings shorter than the minimum should never qualify")
	}

	long := []byte("this is a reasonably long repeated string")
	if !qualifiesForReference(long, 0) {
		t.Fatal("expected a long string to qualify for a low index reference")
	}
}
