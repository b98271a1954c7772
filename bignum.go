package cbor

import "math/big"

// bignumFromTag builds the arbitrary-precision integer represented by tag 2
// (unsigned) or tag 3 (negative, value = -1-n) wrapping a big-endian byte
// string, per spec.md §3/§4.4.
func bignumFromTag(tagNum CborTag, payload []byte) (*big.Int, error) {
	magnitude := new(big.Int).SetBytes(payload)
	switch tagNum {
	case TagUnsignedBignum:
		return magnitude, nil
	case TagNegativeBignum:
		// -1 - n
		result := new(big.Int).Add(magnitude, big.NewInt(1))
		return result.Neg(result), nil
	default:
		return nil, ErrTagPayloadMismatch
	}
}

// bignumToTag returns the tag number and big-endian magnitude payload used
// to encode an arbitrary-precision integer outside int64/uint64 range
// (spec.md §4.3 "Integer encoding").
func bignumToTag(v *big.Int) (CborTag, []byte) {
	if v.Sign() >= 0 {
		return TagUnsignedBignum, v.Bytes()
	}
	// encode magnitude of -1-v, i.e. -(v+1)
	magnitude := new(big.Int).Neg(v)
	magnitude.Sub(magnitude, big.NewInt(1))
	return TagNegativeBignum, magnitude.Bytes()
}

// fitsUint64 reports whether v is non-negative and representable in uint64.
func fitsUint64(v *big.Int) bool {
	return v.Sign() >= 0 && v.IsUint64()
}

// fitsInt64Negative reports whether v is negative and -1-v fits in uint64
// (i.e. v is representable by CBOR major type 1 without a bignum tag).
func fitsInt64Negative(v *big.Int) bool {
	if v.Sign() >= 0 {
		return false
	}
	magnitude := new(big.Int).Neg(v)
	magnitude.Sub(magnitude, big.NewInt(1))
	return magnitude.IsUint64()
}
