package cbor

// Undefined represents the CBOR "undefined" simple value (major type 7,
// additional info 23). It is distinct from nil (CBOR "null").
type Undefined struct{}

// UndefinedValue is the canonical Undefined instance returned by the decoder.
var UndefinedValue = Undefined{}

// BreakMarker represents the reserved 0xFF byte that terminates
// indefinite-length containers. The decoder never returns it: break bytes
// are consumed by CborReader while a container is being collected.
type BreakMarker struct{}

// Tag is the generic fallback representation of a semantic tag for which no
// built-in or registered handler claims the tag number.
type Tag struct {
	Number  CborTag
	Content interface{}
}

// Tuple is an immutable ordered sequence, produced when an array is decoded
// in an immutable context (map keys, set elements). It carries the same
// element type as a mutable array ([]interface{}) but under a distinct type
// so callers can tell the two apart.
type Tuple []interface{}

// valuesEqual reports whether two decoded CBOR values are equal for the
// purposes of map-key deduplication and set membership. It compares byte
// strings and text strings by content and primitives by value; every other
// value (containers, tags, big integers) compares unequal, even to the same
// instance, so non-scalar keys are never merged.
func valuesEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case []byte:
		bv, ok := b.([]byte)
		return ok && string(av) == string(bv)
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case uint64:
		bv, ok := b.(uint64)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case SimpleValue:
		bv, ok := b.(SimpleValue)
		return ok && av == bv
	case nil:
		return b == nil
	case Undefined:
		_, ok := b.(Undefined)
		return ok
	default:
		return false
	}
}

// Map is an ordered map preserving the insertion order of the first
// occurrence of each key, as required by the decoder (spec.md §4.2) and
// used as the canonical in-memory representation for CBOR major type 5.
type Map struct {
	keys   []interface{}
	values []interface{}
	frozen bool
}

// NewMap creates an empty, mutable Map.
func NewMap() *Map {
	return &Map{}
}

// Frozen reports whether the map was produced in an immutable decode
// context (e.g. a map used as a map key or set element).
func (m *Map) Frozen() bool {
	return m.frozen
}

// Len returns the number of entries in the map.
func (m *Map) Len() int {
	return len(m.keys)
}

// Set inserts or updates a key. If the key already exists (per valuesEqual),
// its value is overwritten but its position is left unchanged, matching the
// decoder's "last one wins" duplicate-key rule.
func (m *Map) Set(key, value interface{}) {
	for i, k := range m.keys {
		if valuesEqual(k, key) {
			m.values[i] = value
			return
		}
	}
	m.keys = append(m.keys, key)
	m.values = append(m.values, value)
}

// Get looks up a key, returning its value and whether it was present.
func (m *Map) Get(key interface{}) (interface{}, bool) {
	for i, k := range m.keys {
		if valuesEqual(k, key) {
			return m.values[i], true
		}
	}
	return nil, false
}

// Entry is one (key, value) pair in insertion order.
type Entry struct {
	Key   interface{}
	Value interface{}
}

// Entries returns the map's entries in insertion order.
func (m *Map) Entries() []Entry {
	out := make([]Entry, len(m.keys))
	for i := range m.keys {
		out[i] = Entry{Key: m.keys[i], Value: m.values[i]}
	}
	return out
}

// freeze marks the map as immutable in place and returns it, used by the
// decoder when building a map inside an immutable context.
func (m *Map) freeze() *Map {
	m.frozen = true
	return m
}

// SetValue is an ordered collection of unique elements (CBOR tag 258). A
// frozen set is the same shape produced in an immutable decode context; both
// share this type, distinguished by the Frozen flag, mirroring Map.
type SetValue struct {
	items  []interface{}
	frozen bool
}

// NewSet creates an empty, mutable set.
func NewSet() *SetValue {
	return &SetValue{}
}

// Frozen reports whether the set was produced in an immutable decode
// context.
func (s *SetValue) Frozen() bool {
	return s.frozen
}

// Len returns the number of elements in the set.
func (s *SetValue) Len() int {
	return len(s.items)
}

// Add inserts v if not already present (per valuesEqual).
func (s *SetValue) Add(v interface{}) {
	for _, existing := range s.items {
		if valuesEqual(existing, v) {
			return
		}
	}
	s.items = append(s.items, v)
}

// Items returns the set's elements in insertion order.
func (s *SetValue) Items() []interface{} {
	out := make([]interface{}, len(s.items))
	copy(out, s.items)
	return out
}

func (s *SetValue) freeze() *SetValue {
	s.frozen = true
	return s
}
