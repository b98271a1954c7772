package cbor

import "github.com/cbor-core/cbor/internal/stringhash"

// stringRefMinLength is the shortest byte/text string ever worth tracking in
// a string-reference namespace (spec.md §3: "Strings shorter than 3 bytes
// are never referenced.").
const stringRefMinLength = 3

// --- decode side -----------------------------------------------------

// stringRefNamespace is one tag-256 scope: an ordered list of previously
// decoded long byte/text strings, indexed by tag-25 references.
type stringRefNamespace struct {
	entries []interface{}
}

// stringRefStack is the decoder's stack of open namespaces (spec.md §4.2
// "String references").
type stringRefStack struct {
	frames []*stringRefNamespace
}

func (s *stringRefStack) push() {
	s.frames = append(s.frames, &stringRefNamespace{})
}

func (s *stringRefStack) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *stringRefStack) active() bool {
	return len(s.frames) > 0
}

// register records a qualifying byte/text string in the innermost open
// namespace. No-op if no namespace is open or the value is too short.
func (s *stringRefStack) register(v interface{}) {
	if !s.active() {
		return
	}
	if stringByteLen(v) < stringRefMinLength {
		return
	}
	frame := s.frames[len(s.frames)-1]
	frame.entries = append(frame.entries, v)
}

// lookup resolves a tag-25 index against the innermost open namespace.
func (s *stringRefStack) lookup(idx uint64) (interface{}, error) {
	if !s.active() {
		return nil, ErrNoStringRefNamespace
	}
	frame := s.frames[len(s.frames)-1]
	if idx >= uint64(len(frame.entries)) {
		return nil, ErrStringRefIndex
	}
	return frame.entries[idx], nil
}

func stringByteLen(v interface{}) int {
	switch s := v.(type) {
	case []byte:
		return len(s)
	case string:
		return len(s)
	default:
		return -1
	}
}

// --- encode side -------------------------------------------------------

// stringRefEncodeEntry is one previously-emitted candidate in an encode-side
// namespace, keyed by content hash for O(1) average lookup.
type stringRefEncodeEntry struct {
	index int
}

// stringRefEncodeNamespace tracks, within one tag-256 scope, every
// byte/text string emitted so far and the index it would be referenced by.
type stringRefEncodeNamespace struct {
	byHash map[uint64][]stringRefCandidate
	count  int
}

type stringRefCandidate struct {
	bytes []byte
	index int
}

func newStringRefEncodeNamespace() *stringRefEncodeNamespace {
	return &stringRefEncodeNamespace{byHash: make(map[uint64][]stringRefCandidate)}
}

// find returns the assigned index for raw, if raw was already registered.
func (n *stringRefEncodeNamespace) find(raw []byte) (int, bool) {
	h := stringhash.ID(raw)
	for _, c := range n.byHash[h] {
		if string(c.bytes) == string(raw) {
			return c.index, true
		}
	}
	return 0, false
}

// add registers raw under the next sequential index and returns it.
func (n *stringRefEncodeNamespace) add(raw []byte) int {
	idx := n.count
	n.count++
	h := stringhash.ID(raw)
	cp := make([]byte, len(raw))
	copy(cp, raw)
	n.byHash[h] = append(n.byHash[h], stringRefCandidate{bytes: cp, index: idx})
	return idx
}

// stringRefEncodeStack mirrors stringRefStack on the encode side.
type stringRefEncodeStack struct {
	frames []*stringRefEncodeNamespace
}

func (s *stringRefEncodeStack) push() {
	s.frames = append(s.frames, newStringRefEncodeNamespace())
}

func (s *stringRefEncodeStack) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *stringRefEncodeStack) active() bool {
	return len(s.frames) > 0
}

func (s *stringRefEncodeStack) top() *stringRefEncodeNamespace {
	return s.frames[len(s.frames)-1]
}

// argByteLen returns the number of bytes a CBOR header needs to encode the
// unsigned argument n (the 1-byte initial byte is NOT included), following
// the shortest-form rules of spec.md §4.1.
func argByteLen(n uint64) int {
	switch {
	case n < 24:
		return 0
	case n <= 0xFF:
		return 1
	case n <= 0xFFFF:
		return 2
	case n <= 0xFFFFFFFF:
		return 4
	default:
		return 8
	}
}

// stringEncodingCost is the total byte length of emitting a byte/text
// string of length l as itself (1-byte initial byte + argument + content).
func stringEncodingCost(l int) int {
	return 1 + argByteLen(uint64(l)) + l
}

// stringRefCost is the total byte length of emitting tag(25) + idx.
// Tag 25 itself needs argByteLen(25) extra bytes beyond its own initial
// byte (25 > 23, so always at least 1 extra byte).
func stringRefCost(idx int) int {
	return 1 + argByteLen(25) + 1 + argByteLen(uint64(idx))
}

// qualifiesForReference reports whether referencing a previously-seen string at idx is
// strictly shorter than re-emitting raw (spec.md §3/§4.3).
func qualifiesForReference(raw []byte, idx int) bool {
	if len(raw) < stringRefMinLength {
		return false
	}
	return stringRefCost(idx) < stringEncodingCost(len(raw))
}
