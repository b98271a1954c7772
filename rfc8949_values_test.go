package cbor

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// Same RFC 8949 Appendix A corpus as rfc8949_test.go, but driven through
// DecodeBytes/Encode - the Go-value engine in decode.go/encode.go - rather
// than the wire-level CborReader/CborWriter those tests exercise directly.
func TestRFC8949AppendixThroughDecoderEncoder(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want interface{}
	}{
		{name: "0", hex: "00", want: uint64(0)},
		{name: "1", hex: "01", want: uint64(1)},
		{name: "10", hex: "0a", want: uint64(10)},
		{name: "23", hex: "17", want: uint64(23)},
		{name: "24", hex: "1818", want: uint64(24)},
		{name: "25", hex: "1819", want: uint64(25)},
		{name: "100", hex: "1864", want: uint64(100)},
		{name: "1000", hex: "1903e8", want: uint64(1000)},
		{name: "1000000", hex: "1a000f4240", want: uint64(1000000)},
		{name: "-1", hex: "20", want: int64(-1)},
		{name: "-10", hex: "29", want: int64(-10)},
		{name: "-100", hex: "3863", want: int64(-100)},
		{name: "-1000", hex: "3903e7", want: int64(-1000)},
		{name: "false", hex: "f4", want: false},
		{name: "true", hex: "f5", want: true},
		{name: "null", hex: "f6", want: nil},
		{name: `""`, hex: "60", want: ""},
		{name: `"a"`, hex: "6161", want: "a"},
		{name: `"IETF"`, hex: "6449455446", want: "IETF"},
		{name: "[]", hex: "80", want: []interface{}{}},
		{name: "[1,2,3]", hex: "83010203", want: []interface{}{uint64(1), uint64(2), uint64(3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := hex.DecodeString(tt.hex)
			require.NoError(t, err)

			got, err := DecodeBytes(data)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)

			if tt.want == nil {
				return
			}
			reencoded, err := Encode(tt.want)
			require.NoError(t, err)
			require.Equal(t, data, reencoded)
		})
	}
}

// The bignum vectors (Appendix A) round-trip through the Decoder/Encoder as
// *big.Int rather than through CborReader.ReadBigInt/CborWriter.WriteBigInt
// directly.
func TestRFC8949AppendixBignumsThroughDecoderEncoder(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want string // decimal
	}{
		{name: "18446744073709551615", hex: "1bffffffffffffffff", want: "18446744073709551615"},
		{name: "18446744073709551616", hex: "c249010000000000000000", want: "18446744073709551616"},
		{name: "-18446744073709551616", hex: "3bffffffffffffffff", want: "-18446744073709551616"},
		{name: "-18446744073709551617", hex: "c349010000000000000000", want: "-18446744073709551617"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := hex.DecodeString(tt.hex)
			require.NoError(t, err)

			got, err := DecodeBytes(data)
			require.NoError(t, err)

			want, ok := new(big.Int).SetString(tt.want, 10)
			require.True(t, ok)

			switch v := got.(type) {
			case *big.Int:
				require.Equal(t, 0, want.Cmp(v))
			case uint64:
				require.Equal(t, 0, want.Cmp(new(big.Int).SetUint64(v)))
			case int64:
				require.Equal(t, 0, want.Cmp(big.NewInt(v)))
			default:
				t.Fatalf("unexpected decoded type %T", got)
			}

			reencoded, err := Encode(want)
			require.NoError(t, err)
			require.Equal(t, data, reencoded)
		})
	}
}
