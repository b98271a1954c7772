package cbor

import (
	"bytes"
	"net/netip"
	"regexp"

	uuid "github.com/satori/go.uuid"
)

// tagDecodeFunc converts an already-decoded tag child (the item following
// the tag's initial bytes) into its semantic Go representation.
type tagDecodeFunc func(child interface{}) (interface{}, error)

// tagDecoders holds the tags whose semantics are a pure function of their
// decoded child, with no dependency on decoder state (spec.md §4.4
// "Built-in semantic tags"). Tags 25, 28, 29, 256 and 258 are handled
// directly by the decode engine because their meaning depends on the
// shareable registry, the string-reference stack, or an immutable-context
// flag that this signature cannot carry; tag 55799 is handled as an inert
// wrapper that is stripped without consulting this table at all.
var tagDecoders = map[CborTag]tagDecodeFunc{
	TagDateTimeString:      decodeDateTimeString,
	TagUnixTime:            decodeUnixTime,
	TagUnsignedBignum:      bignumDecoder(TagUnsignedBignum),
	TagNegativeBignum:      bignumDecoder(TagNegativeBignum),
	TagDecimalFraction:     decodeDecimalFraction,
	TagBigFloat:            decodeBigFloat,
	TagExpectedBase64URL:   decodeTextHint,
	TagExpectedBase64:      decodeTextHint,
	TagExpectedBase16:      decodeTextHint,
	TagEncodedCborData:     decodeEmbeddedCbor,
	TagURI:                 decodeTextHint,
	TagBase64URL:           decodeTextHint,
	TagBase64:              decodeTextHint,
	TagRegularExpression:   decodeRegex,
	TagMIMEMessage:         decodeMIME,
	TagRational:            decodeRational,
	TagUUID:                decodeUUID,
	TagIPAddress:           decodeIPAddress,
	TagIPNetwork:           decodeIPNetwork,
	TagDeprecatedIPAddress: decodeDeprecatedIPAddress,
	TagDeprecatedIPNetwork: decodeDeprecatedIPNetwork,
	TagDate:                decodeEpochDate,
	TagISODate:             decodeISODate,
	TagComplex:             decodeComplex,
}

// decodeTextHint handles the tags that merely hint at a target text
// encoding (21-23, 32-34) without changing the decoded representation: the
// text/byte string is returned unchanged (spec.md §4.4 "Encoding hints").
func decodeTextHint(child interface{}) (interface{}, error) {
	return child, nil
}

func decodeDecimalFraction(child interface{}) (interface{}, error) {
	exp, mant, err := decimalPairFrom(child)
	if err != nil {
		return nil, err
	}
	return DecimalFraction{Exponent: exp, Mantissa: mant}, nil
}

func decodeBigFloat(child interface{}) (interface{}, error) {
	exp, mant, err := decimalPairFrom(child)
	if err != nil {
		return nil, err
	}
	return BigFloat{Exponent: exp, Mantissa: mant}, nil
}

func decodeRational(child interface{}) (interface{}, error) {
	return rationalFrom(child)
}

// bignumDecoder returns the handler for tag 2 or 3: the byte-string payload
// becomes a *big.Int via bignumFromTag.
func bignumDecoder(tagNum CborTag) tagDecodeFunc {
	return func(child interface{}) (interface{}, error) {
		raw, ok := child.([]byte)
		if !ok {
			return nil, ErrTagPayloadMismatch
		}
		return bignumFromTag(tagNum, raw)
	}
}

// EncodedCBOR is the decoded form of tag 24: a byte string holding an
// embedded, not-yet-parsed CBOR item (spec.md §4.4 "Embedded CBOR"). It is
// kept lazy rather than eagerly decoded, since the caller may not need the
// nested value and may want to apply different decode options to it.
type EncodedCBOR []byte

// Decode parses the embedded item using dec's options.
func (e EncodedCBOR) Decode(dec *Decoder) (interface{}, error) {
	return dec.Decode(bytes.NewReader(e))
}

func decodeEmbeddedCbor(child interface{}) (interface{}, error) {
	raw, ok := child.([]byte)
	if !ok {
		return nil, ErrTagPayloadMismatch
	}
	return EncodedCBOR(raw), nil
}

// encodeTagForValue reports the semantic tag and wire content to use for a
// native Go value that the encoder should represent with a built-in tag,
// mirroring tagDecoders on the encode side (spec.md §4.3 "Type dispatch").
// ok is false for values with no built-in tag mapping (they may still have
// a registered custom encoder).
func encodeTagForValue(v interface{}) (tag CborTag, content interface{}, ok bool) {
	switch val := v.(type) {
	case DecimalFraction:
		return TagDecimalFraction, []interface{}{val.Exponent, bigIntToValue(val.Mantissa)}, true
	case BigFloat:
		return TagBigFloat, []interface{}{val.Exponent, bigIntToValue(val.Mantissa)}, true
	case *Rational:
		return TagRational, []interface{}{bigIntToValue(val.Num()), bigIntToValue(val.Denom())}, true
	case Rational:
		return TagRational, []interface{}{bigIntToValue(val.Num()), bigIntToValue(val.Denom())}, true
	case *regexp.Regexp:
		return TagRegularExpression, val.String(), true
	case MIMEMessage:
		return TagMIMEMessage, val.Body, true
	case uuid.UUID:
		return TagUUID, uuidBytes(val), true
	case netip.Addr:
		if val.Is4() {
			b := val.As4()
			return TagIPAddress, b[:], true
		}
		b := val.As16()
		return TagIPAddress, b[:], true
	case netip.Prefix:
		addr := val.Addr()
		var raw []byte
		if addr.Is4() {
			b := addr.As4()
			raw = b[:]
		} else {
			b := addr.As16()
			raw = b[:]
		}
		return TagIPNetwork, []interface{}{raw, int64(val.Bits())}, true
	case DeprecatedIPNetwork:
		m := NewMap()
		m.Set([]byte(val.Address), []byte(val.Mask))
		return TagDeprecatedIPNetwork, m, true
	case complex128:
		return TagComplex, []interface{}{real(val), imag(val)}, true
	case *SetValue:
		return TagSet, val.Items(), true
	default:
		return 0, nil, false
	}
}
