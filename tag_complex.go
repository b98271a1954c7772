package cbor

// decodeComplex handles tag 43000: [real, imaginary] -> complex128
// (spec.md §4.4).
func decodeComplex(child interface{}) (interface{}, error) {
	arr, ok := asArray(child)
	if !ok || len(arr) != 2 {
		return nil, ErrTagPayloadMismatch
	}
	re, err := asFloat64(arr[0])
	if err != nil {
		return nil, err
	}
	im, err := asFloat64(arr[1])
	if err != nil {
		return nil, err
	}
	return complex(re, im), nil
}

func asFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case uint64:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, ErrTagPayloadMismatch
	}
}
