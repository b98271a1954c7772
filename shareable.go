package cbor

import "reflect"

// shareableRegistry is the decoder-side arena for tag-28/29 shared values
// (spec.md §3 "Shareable registry (decoder)"). Tag 28 allocates the next
// slot before decoding its child. For an array or map child, decode.go
// binds the slot to the container itself before filling it in (arrays are
// pre-sized to their definite length, maps are pointers from creation), so
// a tag-29 self-reference nested inside the child observes the live,
// still-filling container and a cyclic structure such as L = [L] round-
// trips correctly (spec.md §8 "Cyclic structure"). Every other value type
// binds only once it finishes decoding.
type shareableRegistry struct {
	slots []interface{}
}

// reserve allocates the next slot, filling it with a placeholder, and
// returns its index.
func (r *shareableRegistry) reserve() int {
	idx := len(r.slots)
	r.slots = append(r.slots, UndefinedValue)
	return idx
}

// bind stores the fully-decoded value at idx.
func (r *shareableRegistry) bind(idx int, v interface{}) {
	r.slots[idx] = v
}

// get returns the value at idx, or ErrShareableIndex if idx is out of range.
func (r *shareableRegistry) get(idx uint64) (interface{}, error) {
	if idx >= uint64(len(r.slots)) {
		return nil, ErrShareableIndex
	}
	return r.slots[idx], nil
}

// identityKey pairs a reflect.Type with the pointer backing a reference-kind
// value, so the encoder's shareable tracker can detect when two Go values
// are the *same* container rather than merely equal ones.
type identityKey struct {
	typ reflect.Type
	ptr uintptr
}

// shareableTracker is the encoder-side identity map for tags 28/29
// (spec.md §3 "Shareable registry (encoder)"). It distinguishes three
// states for a container: never seen, currently being encoded (would be a
// cycle without sharing), and already fully encoded (emit a back-reference).
type shareableTracker struct {
	index    map[identityKey]int // assigned index once registered
	inFlight map[identityKey]bool // true while a container's own encode is in progress
	next     int
}

func newShareableTracker() *shareableTracker {
	return &shareableTracker{
		index:    make(map[identityKey]int),
		inFlight: make(map[identityKey]bool),
	}
}

// containerIdentity extracts an identity key for values that can
// participate in sharing: pointers, maps, slices, and channels have a
// meaningful backing address; everything else returns ok=false.
func containerIdentity(v interface{}) (identityKey, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan:
		if rv.IsNil() {
			return identityKey{}, false
		}
		return identityKey{typ: rv.Type(), ptr: rv.Pointer()}, true
	default:
		return identityKey{}, false
	}
}

// shareStatus reports what the encoder should do for v, given identity
// tracking over the set of containers already visited by this Encode call.
type shareStatus int

const (
	// shareNone means v does not participate in identity tracking (not a
	// reference kind).
	shareNone shareStatus = iota
	// shareFirstSeen means this is the first encounter: with value sharing
	// enabled, wrap with tag 28 (the index was already assigned, see
	// enter's returned index); with sharing disabled, encode normally.
	shareFirstSeen
	// shareBackReference means v was already seen (either mid-encode, a
	// cycle, or previously completed, ordinary re-use); emit tag 29 with
	// the returned index.
	shareBackReference
	// shareCyclic means v is still being encoded by an enclosing call and
	// value sharing is disabled: a genuine cyclic-structure error.
	shareCyclic
)

// enter is called when the encoder begins encoding v. With valueSharing true
// every repeat encounter resolves to a back-reference; with it false, a
// container still being encoded is a cyclic structure error and a container
// that has already finished encoding is reported as shareFirstSeen again.
// The returned int is the shareable index: valid for shareBackReference and,
// with valueSharing true, for shareFirstSeen; meaningless otherwise.
//
// The index for a container is assigned at first encounter (mirroring the
// decoder, which allocates a slot before decoding the child) so that a
// self-reference found while still encoding that same container's children
// resolves to the correct index.
func (t *shareableTracker) enter(v interface{}, valueSharing bool) (identityKey, shareStatus, int) {
	key, ok := containerIdentity(v)
	if !ok {
		return identityKey{}, shareNone, 0
	}
	if idx, seen := t.index[key]; seen {
		return key, shareBackReference, idx
	}
	if t.inFlight[key] {
		return key, shareCyclic, 0
	}
	t.inFlight[key] = true
	if valueSharing {
		idx := t.next
		t.next++
		t.index[key] = idx
		return key, shareFirstSeen, idx
	}
	return key, shareFirstSeen, 0
}

// leave marks key as no longer in flight (called after the value finishes
// encoding).
func (t *shareableTracker) leave(key identityKey) {
	delete(t.inFlight, key)
}

// forceRegister unconditionally assigns the next shareable index to key,
// regardless of the encoder's valueSharing setting, used by MakeShareable
// to let a caller mark a value as shareable even when sharing is off by
// default.
func (t *shareableTracker) forceRegister(key identityKey) int {
	idx := t.next
	t.next++
	t.index[key] = idx
	t.inFlight[key] = true
	return idx
}
