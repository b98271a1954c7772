package cbor

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncodeScalars(t *testing.T) {
	data, err := Encode(uint64(10))
	require.NoError(t, err)
	require.Equal(t, []byte{0x0a}, data)

	data, err = Encode(int64(-1))
	require.NoError(t, err)
	require.Equal(t, []byte{0x20}, data)

	data, err = Encode(true)
	require.NoError(t, err)
	require.Equal(t, []byte{0xf5}, data)

	data, err = Encode(nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0xf6}, data)
}

func TestEncodeDecodeRoundTripContainers(t *testing.T) {
	m := NewMap()
	m.Set(uint64(1), "one")
	m.Set(uint64(2), []interface{}{uint64(3), uint64(4)})

	data, err := Encode(m)
	require.NoError(t, err)

	back, err := DecodeBytes(data)
	require.NoError(t, err)

	decoded := back.(*Map)
	v, ok := decoded.Get(uint64(1))
	require.True(t, ok)
	require.Equal(t, "one", v)
}

func TestEncodeBigIntRoundTrip(t *testing.T) {
	huge, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	data, err := Encode(huge)
	require.NoError(t, err)

	back, err := DecodeBytes(data)
	require.NoError(t, err)

	require.Equal(t, 0, huge.Cmp(back.(*big.Int)))
}

func TestEncodeNoEncoderForUnknownType(t *testing.T) {
	type custom struct{ X int }
	_, err := Encode(custom{X: 1})
	require.ErrorIs(t, err, ErrNoEncoder)
}

func TestEncodeValueSharingBackReference(t *testing.T) {
	shared := []interface{}{uint64(1), uint64(2)}
	container := []interface{}{shared, shared}

	enc := NewEncoder(WithValueSharing(true))
	data, err := enc.Encode(container)
	require.NoError(t, err)

	back, err := DecodeBytes(data)
	require.NoError(t, err)

	arr := back.([]interface{})
	first := arr[0].([]interface{})
	second := arr[1].([]interface{})
	require.Equal(t, first, second)
}

func TestEncodeCyclicStructureWithoutSharingErrors(t *testing.T) {
	cyclic := make([]interface{}, 1)
	cyclic[0] = cyclic

	enc := NewEncoder(WithValueSharing(false))
	_, err := enc.Encode(cyclic)
	require.ErrorIs(t, err, ErrCyclicStructure)
}

func TestEncodeStringReferencesCompressRepeats(t *testing.T) {
	long := "this string is long enough to be worth referencing twice over"
	container := []interface{}{long, long}

	withRefs := NewEncoder(WithStringReferences(true))
	dataWithRefs, err := withRefs.Encode(container)
	require.NoError(t, err)

	plain, err := NewEncoder().Encode(container)
	require.NoError(t, err)

	require.Less(t, len(dataWithRefs), len(plain))

	back, err := DecodeBytes(dataWithRefs)
	require.NoError(t, err)
	arr := back.([]interface{})
	require.Equal(t, long, arr[0])
	require.Equal(t, long, arr[1])
}

func TestEncodeTimeNaiveWithoutDefaultZoneErrors(t *testing.T) {
	naive := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)
	_, err := NewEncoder().Encode(naive)
	require.ErrorIs(t, err, ErrNaiveDatetime)
}

func TestEncodeTimeUTCRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)
	data, err := Encode(now)
	require.NoError(t, err)

	back, err := DecodeBytes(data)
	require.NoError(t, err)

	decoded := back.(time.Time)
	require.True(t, now.Equal(decoded))
}

func TestEncodeMakeShareableForcesWrapping(t *testing.T) {
	inner := []interface{}{uint64(1)}
	data, err := NewEncoder().Encode(MakeShareable(inner))
	require.NoError(t, err)

	back, err := DecodeBytes(data)
	require.NoError(t, err)
	require.Equal(t, []interface{}{uint64(1)}, back)
}

func TestEncodeDatetimeAsTimestamp(t *testing.T) {
	when := time.Date(2013, 3, 21, 20, 4, 0, 0, time.UTC)
	enc := NewEncoder(WithDatetimeAsTimestamp(true))
	data, err := enc.Encode(when)
	require.NoError(t, err)
	require.Equal(t, []byte{0xc1, 0x1a, 0x51, 0x4b, 0x67, 0xb0}, data)

	back, err := DecodeBytes(data)
	require.NoError(t, err)
	require.True(t, when.Equal(back.(time.Time)))
}

func TestEncodeDateAsDatetime(t *testing.T) {
	d := Date(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	enc := NewEncoder(WithDateAsDatetime(true), WithDefaultTimeZone(time.UTC))
	data, err := enc.Encode(d)
	require.NoError(t, err)

	back, err := DecodeBytes(data)
	require.NoError(t, err)
	decoded := back.(time.Time)
	require.True(t, time.Time(d).Equal(decoded))
}

func TestEncodeDateAsDatetimeCombinedWithTimestamp(t *testing.T) {
	d := Date(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	enc := NewEncoder(WithDateAsDatetime(true), WithDatetimeAsTimestamp(true), WithDefaultTimeZone(time.UTC))
	data, err := enc.Encode(d)
	require.NoError(t, err)

	back, err := DecodeBytes(data)
	require.NoError(t, err)
	require.True(t, time.Time(d).Equal(back.(time.Time)))
}

func TestEncodeIndefiniteArrayRoundTrip(t *testing.T) {
	enc := NewEncoder(WithIndefiniteContainers(true))
	data, err := enc.Encode([]interface{}{uint64(1), uint64(2)})
	require.NoError(t, err)
	require.Equal(t, byte(0x9f), data[0])
	require.Equal(t, byte(0xff), data[len(data)-1])

	back, err := DecodeBytes(data)
	require.NoError(t, err)
	require.Equal(t, []interface{}{uint64(1), uint64(2)}, back)
}

func TestEncodeIndefiniteMapRoundTrip(t *testing.T) {
	m := NewMap()
	m.Set(uint64(1), "one")

	enc := NewEncoder(WithIndefiniteContainers(true))
	data, err := enc.Encode(m)
	require.NoError(t, err)
	require.Equal(t, byte(0xbf), data[0])
	require.Equal(t, byte(0xff), data[len(data)-1])

	back, err := DecodeBytes(data)
	require.NoError(t, err)
	v, ok := back.(*Map).Get(uint64(1))
	require.True(t, ok)
	require.Equal(t, "one", v)
}

func TestEncodeFallbackEncoder(t *testing.T) {
	type custom struct{ X int }
	enc := NewEncoder(WithFallbackEncoder(func(v interface{}) (interface{}, error) {
		c, ok := v.(custom)
		if !ok {
			return nil, ErrNoEncoder
		}
		return uint64(c.X), nil
	}))

	data, err := enc.Encode(custom{X: 7})
	require.NoError(t, err)

	back, err := DecodeBytes(data)
	require.NoError(t, err)
	require.Equal(t, uint64(7), back)
}

func TestEncodeNegativeBignumUsesShortestForm(t *testing.T) {
	// One less than math.MinInt64: its magnitude (-1-v) is exactly
	// math.MaxInt64+1, which fits uint64, so it must use plain major type 1
	// rather than falling back to a tag-3 bignum.
	v, ok := new(big.Int).SetString("-9223372036854775809", 10)
	require.True(t, ok)

	data, err := Encode(v)
	require.NoError(t, err)
	require.Equal(t, []byte{0x3b, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, data)

	back, err := DecodeBytes(data)
	require.NoError(t, err)
	require.Equal(t, 0, v.Cmp(back.(*big.Int)))
}
