package cbor

import (
	"io"
	"math"
	"math/big"
	"strings"
	"unicode/utf8"
)

// defaultMaxDepth bounds container nesting during decode (spec.md §5
// "Resource limits"). DecodeBytes and DecodeSequence build their CborReader
// with its own default nesting limit of 64, which is checked as well, so a
// document nested deeper than 64 containers fails with
// ErrNestingDepthExceeded before this limit is reached.
const defaultMaxDepth = 1000

// StrErrorsPolicy controls how the decoder reacts to a text string whose
// bytes are not valid UTF-8 (spec.md §5 "Text validation").
type StrErrorsPolicy int

const (
	// StrErrorsStrict rejects the document with ErrInvalidUtf8.
	StrErrorsStrict StrErrorsPolicy = iota
	// StrErrorsReplace substitutes U+FFFD for each invalid byte sequence.
	StrErrorsReplace
	// StrErrorsIgnore passes the bytes through as a Go string unchanged,
	// even though that string will not be valid UTF-8.
	StrErrorsIgnore
)

// TagHookFunc lets a caller intercept a semantic tag before the built-in
// dispatch table runs. Returning handled=false falls through to the
// built-in tagDecoders entry (if any) or the generic Tag{} wrapper.
type TagHookFunc func(tag CborTag, content interface{}) (value interface{}, handled bool, err error)

// ObjectHookFunc post-processes every fully decoded value (scalars,
// containers, and tag results alike) before it is returned to its parent,
// letting a caller map the generic value model onto application types
// (spec.md §6 "Object hook").
type ObjectHookFunc func(v interface{}) (interface{}, error)

// Decoder decodes CBOR-encoded data items into the package's generic value
// model (spec.md §4 "Decoding").
type Decoder struct {
	maxDepth        int
	conformanceMode CborConformanceMode
	strErrors       StrErrorsPolicy
	tagHook         TagHookFunc
	objectHook      ObjectHookFunc
	readaheadSize   int
}

// DecOption configures a Decoder.
type DecOption func(*Decoder)

// WithDecodeMaxDepth overrides the maximum container nesting depth.
func WithDecodeMaxDepth(depth int) DecOption {
	return func(d *Decoder) { d.maxDepth = depth }
}

// WithDecodeConformanceMode sets the conformance mode CborReader applies to
// the raw framing (shortest-form, UTF-8 validity, and indefinite-length
// checks).
func WithDecodeConformanceMode(mode CborConformanceMode) DecOption {
	return func(d *Decoder) { d.conformanceMode = mode }
}

// WithStrErrorsPolicy sets how invalid UTF-8 in text strings is handled.
func WithStrErrorsPolicy(p StrErrorsPolicy) DecOption {
	return func(d *Decoder) { d.strErrors = p }
}

// WithTagHook installs a hook consulted before built-in tag dispatch.
func WithTagHook(fn TagHookFunc) DecOption {
	return func(d *Decoder) { d.tagHook = fn }
}

// WithObjectHook installs a hook applied to every decoded value.
func WithObjectHook(fn ObjectHookFunc) DecOption {
	return func(d *Decoder) { d.objectHook = fn }
}

// WithDecodeReadaheadSize sets the buffer size used when a Decoder reads
// from an io.Reader. 0 disables buffering.
func WithDecodeReadaheadSize(size int) DecOption {
	return func(d *Decoder) { d.readaheadSize = size }
}

// NewDecoder creates a Decoder with the given options applied over the
// package defaults.
func NewDecoder(opts ...DecOption) *Decoder {
	d := &Decoder{
		maxDepth:        defaultMaxDepth,
		conformanceMode: ConformanceLax,
		strErrors:       StrErrorsStrict,
		readaheadSize:   defaultReadaheadSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// decodeContext carries per-call decoder state: the shareable registry and
// the string-reference namespace stack, both scoped to a single top-level
// Decode call (spec.md §3 "Scoping").
type decodeContext struct {
	dec        *Decoder
	shareables shareableRegistry
	stringRefs stringRefStack
	depth      int
}

// Decode reads exactly one top-level CBOR item from r.
func (d *Decoder) Decode(r io.Reader) (interface{}, error) {
	src := NewByteSource(r, d.readaheadSize)
	data, err := src.ReadAll()
	if err != nil {
		return nil, err
	}
	return d.DecodeBytes(data)
}

// DecodeBytes decodes exactly one top-level CBOR item from data and
// reports an error if trailing bytes remain.
func (d *Decoder) DecodeBytes(data []byte) (interface{}, error) {
	if len(data) == 0 {
		return nil, ErrEOF
	}
	reader := NewCborReader(data, WithReaderConformanceMode(d.conformanceMode))
	ctx := &decodeContext{dec: d}
	v, err := decodeValue(reader, ctx, false)
	if err != nil {
		return nil, err
	}
	if reader.BytesRemaining() > 0 {
		return nil, ErrNotAtEnd
	}
	return v, nil
}

// DecodeSequence decodes every top-level item in data in turn (RFC 8742
// CBOR sequences), stopping at end of input.
func (d *Decoder) DecodeSequence(data []byte) ([]interface{}, error) {
	reader := NewCborReader(data, WithReaderConformanceMode(d.conformanceMode), WithReaderAllowMultipleRootValues(true))
	var items []interface{}
	for reader.BytesRemaining() > 0 {
		ctx := &decodeContext{dec: d}
		v, err := decodeValue(reader, ctx, false)
		if err != nil {
			return items, err
		}
		items = append(items, v)
	}
	return items, nil
}

func (d *Decoder) enterDepth(ctx *decodeContext) error {
	ctx.depth++
	if ctx.depth > d.maxDepth {
		return ErrTooDeep
	}
	return nil
}

func (d *Decoder) leaveDepth(ctx *decodeContext) {
	ctx.depth--
}

// decodeValue decodes one data item, recursing into containers. immutable
// marks whether the resulting value must be a frozen/Tuple form because it
// will be used as a map key or set element (spec.md §4.2 "Immutable
// decoding").
func decodeValue(r *CborReader, ctx *decodeContext, immutable bool) (interface{}, error) {
	state, err := r.PeekState()
	if err != nil {
		return nil, err
	}

	var value interface{}

	switch state {
	case StateUnsignedInteger:
		value, err = r.ReadUint64()

	case StateNegativeInteger:
		value, err = decodeNegativeInteger(r)

	case StateByteString, StateStartIndefiniteLengthByteString:
		var raw []byte
		raw, err = r.ReadByteString()
		if err == nil {
			value = raw
			ctx.stringRefs.register(value)
		}

	case StateTextString, StateStartIndefiniteLengthTextString:
		var s string
		s, err = r.ReadTextString()
		if err == nil {
			s, err = applyStrErrorsPolicy(s, ctx.dec.strErrors)
		}
		if err == nil {
			value = s
			ctx.stringRefs.register(value)
		}

	case StateStartArray:
		value, err = decodeArray(r, ctx, immutable, nil)

	case StateStartMap:
		value, err = decodeMap(r, ctx, immutable, nil)

	case StateTag:
		value, err = decodeTag(r, ctx, immutable)

	case StateSimpleValue:
		value, err = r.ReadSimpleValue()

	case StateBoolean:
		value, err = r.ReadBoolean()

	case StateNull:
		err = r.ReadNull()
		value = nil

	case StateUndefinedValue:
		err = r.ReadUndefined()
		value = UndefinedValue

	case StateHalfPrecisionFloat, StateSinglePrecisionFloat, StateDoublePrecisionFloat:
		value, err = r.ReadFloat()

	default:
		return nil, ErrInvalidCbor
	}

	if err != nil {
		return nil, err
	}

	if ctx.dec.objectHook != nil {
		return ctx.dec.objectHook(value)
	}
	return value, nil
}

// decodeNegativeInteger mirrors CborReader.ReadInt64 but falls back to
// *big.Int instead of ErrOverflow when the magnitude exceeds int64, since
// the value model has no fixed-width integer ceiling (spec.md §4.3
// "Integer decoding").
func decodeNegativeInteger(r *CborReader) (interface{}, error) {
	state, err := r.PeekState()
	if err != nil {
		return nil, err
	}
	if state != StateNegativeInteger {
		return nil, &TypeMismatchError{Expected: StateNegativeInteger, Actual: state}
	}

	raw, err := r.readArgumentValue(MajorTypeNegativeInteger)
	if err != nil {
		return nil, err
	}
	r.advanceContainer()

	if raw > math.MaxInt64 {
		magnitude := new(big.Int).SetUint64(raw)
		magnitude.Add(magnitude, big.NewInt(1))
		magnitude.Neg(magnitude)
		return magnitude, nil
	}
	return -1 - int64(raw), nil
}

func applyStrErrorsPolicy(s string, policy StrErrorsPolicy) (string, error) {
	if utf8.ValidString(s) {
		return s, nil
	}
	switch policy {
	case StrErrorsReplace:
		return strings.ToValidUTF8(s, string(utf8.RuneError)), nil
	case StrErrorsIgnore:
		return s, nil
	default:
		return "", ErrInvalidUtf8
	}
}

// decodeArray decodes a CBOR array. reserved, when non-nil, is a shareable
// slot already allocated for this array by a wrapping tag-28; a
// definite-length array is pre-sized and bound into that slot before any
// element decodes, so a tag-29 self-reference nested inside the array
// observes the same, eventually-complete backing slice instead of the
// registry's placeholder (spec.md §8 "Cyclic structure"). Indefinite-length
// arrays cannot be pre-sized and so cannot be bound before they are filled;
// a tag-29 self-reference nested inside an indefinite-length array receives
// the registry's placeholder rather than the array.
func decodeArray(r *CborReader, ctx *decodeContext, immutable bool, reserved *int) (interface{}, error) {
	if err := ctx.dec.enterDepth(ctx); err != nil {
		return nil, err
	}
	defer ctx.dec.leaveDepth(ctx)

	length, err := r.ReadStartArray()
	if err != nil {
		return nil, err
	}

	var items []interface{}
	if length >= 0 {
		items = make([]interface{}, length)
		if reserved != nil {
			ctx.shareables.bind(*reserved, interface{}(items))
		}
		for i := 0; i < length; i++ {
			item, err := decodeValue(r, ctx, immutable)
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
	} else {
		for {
			state, err := r.PeekState()
			if err != nil {
				return nil, err
			}
			if state == StateEndArray {
				break
			}
			item, err := decodeValue(r, ctx, immutable)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}

	if err := r.ReadEndArray(); err != nil {
		return nil, err
	}

	if immutable {
		result := Tuple(items)
		if reserved != nil {
			ctx.shareables.bind(*reserved, result)
		}
		return result, nil
	}
	if reserved != nil {
		ctx.shareables.bind(*reserved, items)
	}
	return items, nil
}

// decodeMap decodes a CBOR map. reserved, when non-nil, is a shareable slot
// already allocated for this map by a wrapping tag-28. *Map is always a
// pointer, so binding it into the slot immediately after creation (before
// any entry decodes) already gives it stable identity: later Set calls and
// freeze mutate the same pointee, so a tag-29 self-reference nested inside
// the map's own values resolves to the live map (spec.md §8 "Cyclic
// structure").
func decodeMap(r *CborReader, ctx *decodeContext, immutable bool, reserved *int) (interface{}, error) {
	if err := ctx.dec.enterDepth(ctx); err != nil {
		return nil, err
	}
	defer ctx.dec.leaveDepth(ctx)

	length, err := r.ReadStartMap()
	if err != nil {
		return nil, err
	}

	m := NewMap()
	if reserved != nil {
		ctx.shareables.bind(*reserved, m)
	}
	count := 0
	for {
		if length >= 0 {
			if count >= length {
				break
			}
		} else {
			state, err := r.PeekState()
			if err != nil {
				return nil, err
			}
			if state == StateEndMap {
				break
			}
		}
		// Map keys are always decoded immutable so equality comparisons
		// never observe a key mutating underneath them.
		key, err := decodeValue(r, ctx, true)
		if err != nil {
			return nil, err
		}
		val, err := decodeValue(r, ctx, immutable)
		if err != nil {
			return nil, err
		}
		m.Set(key, val)
		count++
	}

	if err := r.ReadEndMap(); err != nil {
		return nil, err
	}

	if immutable {
		m.freeze()
	}
	return m, nil
}

// decodeShareableChild decodes the value wrapped by a tag-28 shareable. For
// an array or map child it calls decodeArray/decodeMap directly with idx so
// the container is bound into the shareable registry before it is filled,
// rather than only after decodeValue returns (spec.md §8 "Cyclic
// structure"); every other value type has no stable identity to give early
// and decodes as normal.
func decodeShareableChild(r *CborReader, ctx *decodeContext, immutable bool, idx int) (interface{}, error) {
	state, err := r.PeekState()
	if err != nil {
		return nil, err
	}

	var value interface{}
	switch state {
	case StateStartArray:
		value, err = decodeArray(r, ctx, immutable, &idx)
	case StateStartMap:
		value, err = decodeMap(r, ctx, immutable, &idx)
	default:
		return decodeValue(r, ctx, immutable)
	}
	if err != nil {
		return nil, err
	}
	if ctx.dec.objectHook != nil {
		return ctx.dec.objectHook(value)
	}
	return value, nil
}

func decodeTag(r *CborReader, ctx *decodeContext, immutable bool) (interface{}, error) {
	tag, err := r.ReadTag()
	if err != nil {
		return nil, err
	}

	switch tag {
	case TagSelfDescribedCbor:
		return decodeValue(r, ctx, immutable)

	case TagShareable:
		idx := ctx.shareables.reserve()
		child, err := decodeShareableChild(r, ctx, immutable, idx)
		if err != nil {
			return nil, err
		}
		ctx.shareables.bind(idx, child)
		return child, nil

	case TagSharedRef:
		idxValue, err := decodeValue(r, ctx, immutable)
		if err != nil {
			return nil, err
		}
		idx, ok := idxValue.(uint64)
		if !ok {
			return nil, ErrTagPayloadMismatch
		}
		return ctx.shareables.get(idx)

	case TagStringRefNamespace:
		ctx.stringRefs.push()
		child, err := decodeValue(r, ctx, immutable)
		ctx.stringRefs.pop()
		if err != nil {
			return nil, err
		}
		return child, nil

	case TagStringRef:
		idxValue, err := decodeValue(r, ctx, immutable)
		if err != nil {
			return nil, err
		}
		idx, ok := idxValue.(uint64)
		if !ok {
			return nil, ErrTagPayloadMismatch
		}
		return ctx.stringRefs.lookup(idx)

	case TagSet:
		child, err := decodeValue(r, ctx, true)
		if err != nil {
			return nil, err
		}
		return decodeSet(child, immutable)
	}

	child, err := decodeValue(r, ctx, immutable)
	if err != nil {
		return nil, err
	}

	if ctx.dec.tagHook != nil {
		if v, handled, herr := ctx.dec.tagHook(tag, child); handled {
			return v, herr
		}
	}

	if handler, ok := tagDecoders[tag]; ok {
		return handler(child)
	}

	return Tag{Number: tag, Content: child}, nil
}

// Decode decodes exactly one top-level CBOR item from r using the package
// default decoder settings.
func Decode(r io.Reader) (interface{}, error) {
	return NewDecoder().Decode(r)
}

// DecodeBytes decodes exactly one top-level CBOR item from data using the
// package default decoder settings.
func DecodeBytes(data []byte) (interface{}, error) {
	return NewDecoder().DecodeBytes(data)
}
