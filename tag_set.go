package cbor

// decodeSet handles tag 258: an array becomes a set, or a frozen set when
// decoded in an immutable context (spec.md §4.2 "Immutable decoding", §4.4).
func decodeSet(child interface{}, immutable bool) (interface{}, error) {
	arr, ok := asArray(child)
	if !ok {
		return nil, ErrTagPayloadMismatch
	}
	s := NewSet()
	for _, item := range arr {
		s.Add(item)
	}
	if immutable {
		s.freeze()
	}
	return s, nil
}
