package cbor

import "math/big"

// DecimalFraction is the decoded form of tag 4: a decimal number
// mantissa * 10^Exponent (spec.md §4.3/§4.4).
type DecimalFraction struct {
	Exponent int64
	Mantissa *big.Int
}

// BigFloat is the decoded form of tag 5: a binary floating-point number
// mantissa * 2^Exponent (spec.md §4.3/§4.4).
type BigFloat struct {
	Exponent int64
	Mantissa *big.Int
}

// decimalPairFrom extracts the exponent and mantissa from a decoded
// [exponent, mantissa] array, as used by tags 4 and 5.
func decimalPairFrom(child interface{}) (int64, *big.Int, error) {
	arr, ok := child.([]interface{})
	if !ok {
		if t, ok := child.(Tuple); ok {
			arr = []interface{}(t)
		} else {
			return 0, nil, ErrTagPayloadMismatch
		}
	}
	if len(arr) != 2 {
		return 0, nil, ErrTagPayloadMismatch
	}
	exp, err := asInt64(arr[0])
	if err != nil {
		return 0, nil, err
	}
	mant, err := asBigInt(arr[1])
	if err != nil {
		return 0, nil, err
	}
	return exp, mant, nil
}

func asInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case uint64:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, ErrTagPayloadMismatch
	}
}

func asBigInt(v interface{}) (*big.Int, error) {
	switch n := v.(type) {
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case int64:
		return big.NewInt(n), nil
	case *big.Int:
		return n, nil
	default:
		return nil, ErrTagPayloadMismatch
	}
}

// bigIntToValue converts a *big.Int back into the smallest native integer
// representation (uint64/int64) if it fits. A negative value whose
// magnitude exceeds math.MaxInt64 still fits CBOR's major-type-1 range
// (magnitude up to uint64 max) but has no Go int64 representation, so it is
// left as *big.Int for encodeBigInt/WriteBigInt to encode via their own
// uint64-magnitude check rather than truncating it here.
func bigIntToValue(v *big.Int) interface{} {
	if fitsUint64(v) {
		return v.Uint64()
	}
	if v.IsInt64() {
		return v.Int64()
	}
	return v
}

// Rational is the decoded form of tag 30: [numerator, denominator].
// math/big.Rat already carries exactly this shape, so it is reused
// directly rather than introducing a parallel type (spec.md §4.4).
type Rational = big.Rat

func rationalFrom(child interface{}) (*Rational, error) {
	arr, ok := child.([]interface{})
	if !ok {
		if t, ok2 := child.(Tuple); ok2 {
			arr = []interface{}(t)
		} else {
			return nil, ErrTagPayloadMismatch
		}
	}
	if len(arr) != 2 {
		return nil, ErrTagPayloadMismatch
	}
	num, err := asBigInt(arr[0])
	if err != nil {
		return nil, err
	}
	den, err := asBigInt(arr[1])
	if err != nil {
		return nil, err
	}
	return new(big.Rat).SetFrac(num, den), nil
}
