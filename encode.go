package cbor

import (
	"bytes"
	"io"
	"math/big"
	"reflect"
	"sort"
	"time"
)

// EncodeFunc converts a registered Go type into a substitute value that is
// then re-encoded through the normal dispatch, mirroring tagDecoders on the
// decode side (spec.md §4.3 "Custom encoders").
type EncodeFunc func(v interface{}) (interface{}, error)

// Encoder encodes native Go values and this package's generic value model
// into CBOR (spec.md §3 "Encoding").
type Encoder struct {
	conformanceMode      CborConformanceMode
	valueSharing         bool
	stringReferences     bool
	datetimeAsTimestamp  bool
	dateAsDatetime       bool
	indefiniteContainers bool
	defaultTimeZone      *time.Location
	customEncoders       map[reflect.Type]EncodeFunc
	fallbackEncoder      EncodeFunc
	initialCapacity      int
}

// EncOption configures an Encoder.
type EncOption func(*Encoder)

// WithEncodeConformanceMode sets the conformance mode, including
// ConformanceCanonical for RFC 8949 deterministic encoding (spec.md §4.3
// "Canonical encoding").
func WithEncodeConformanceMode(mode CborConformanceMode) EncOption {
	return func(e *Encoder) { e.conformanceMode = mode }
}

// WithValueSharing enables tag 28/29 value-sharing output: repeated
// encounters of the same container (by identity) encode as a back
// reference instead of an error or redundant copy.
func WithValueSharing(enabled bool) EncOption {
	return func(e *Encoder) { e.valueSharing = enabled }
}

// WithStringReferences wraps the entire encoded document in a tag-256
// string-reference namespace and compresses qualifying repeated strings
// with tag 25 back references (spec.md §3 "String references").
func WithStringReferences(enabled bool) EncOption {
	return func(e *Encoder) { e.stringReferences = enabled }
}

// WithDefaultTimeZone supplies the zone used to resolve a time.Time whose
// Location is time.Local, which otherwise has no well-defined UTC offset
// to encode (spec.md §4.3 "Date/time").
func WithDefaultTimeZone(loc *time.Location) EncOption {
	return func(e *Encoder) { e.defaultTimeZone = loc }
}

// WithDatetimeAsTimestamp encodes time.Time as tag 1 (epoch seconds, spec.md
// §4.3 "Dates") instead of the default tag-0 RFC 3339 text.
func WithDatetimeAsTimestamp(enabled bool) EncOption {
	return func(e *Encoder) { e.datetimeAsTimestamp = enabled }
}

// WithDateAsDatetime promotes a Date (spec.md §4.3 "Dates") to midnight in
// the encoder's default timezone, encoded as a datetime (tag 0 or, combined
// with WithDatetimeAsTimestamp, tag 1) instead of the default tag-1004 ISO
// calendar-date text.
func WithDateAsDatetime(enabled bool) EncOption {
	return func(e *Encoder) { e.dateAsDatetime = enabled }
}

// WithIndefiniteContainers emits every array and map as an indefinite-
// length container (spec.md §4.3 "Indefinite containers") instead of the
// default definite-length form. Incompatible with ConformanceCanonical/
// ConformanceCtap2Canonical, which require definite lengths: in those modes
// encodeMap ignores this option and writes definite-length maps, while an
// array fails with ErrIndefiniteLengthNotAllowed from
// WriteStartIndefiniteLengthArray.
func WithIndefiniteContainers(enabled bool) EncOption {
	return func(e *Encoder) { e.indefiniteContainers = enabled }
}

// WithFallbackEncoder installs fn as the last resort for a value with no
// matching custom encoder and no built-in tag mapping (spec.md §4.3
// "Fallback"), mirroring the decode side's ObjectHookFunc. fn's substitute
// return value is re-encoded through the normal dispatch; ErrNoEncoder
// still applies if no fallback is installed.
func WithFallbackEncoder(fn EncodeFunc) EncOption {
	return func(e *Encoder) { e.fallbackEncoder = fn }
}

// WithEncoder registers fn to encode every value whose concrete type
// exactly matches the type of sample. Exact-type matching only: an
// interface satisfied by sample's type does not trigger fn for other
// concrete types (spec.md §14 "Type dispatch").
func WithEncoder(sample interface{}, fn EncodeFunc) EncOption {
	t := reflect.TypeOf(sample)
	return func(e *Encoder) { e.customEncoders[t] = fn }
}

// NewEncoder creates an Encoder with the given options applied over the
// package defaults.
func NewEncoder(opts ...EncOption) *Encoder {
	e := &Encoder{
		conformanceMode: ConformanceLax,
		customEncoders:  make(map[reflect.Type]EncodeFunc),
		initialCapacity: defaultReadaheadSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// encodeContext carries per-call encoder state, scoped to a single
// top-level Encode call, mirroring decodeContext.
type encodeContext struct {
	shareables *shareableTracker
	stringRefs stringRefEncodeStack
}

func newEncodeContext() *encodeContext {
	return &encodeContext{shareables: newShareableTracker()}
}

// Encode serializes v to a new byte slice.
func (e *Encoder) Encode(v interface{}) ([]byte, error) {
	w := NewCborWriter(WithConformanceMode(e.conformanceMode), WithInitialCapacity(e.initialCapacity))
	ctx := newEncodeContext()

	if e.stringReferences {
		ctx.stringRefs.push()
		if err := w.WriteTag(TagStringRefNamespace); err != nil {
			return nil, err
		}
	}

	if err := encodeValue(e, w, ctx, v); err != nil {
		return nil, err
	}

	if e.stringReferences {
		ctx.stringRefs.pop()
	}

	return w.BytesCopy(), nil
}

// EncodeTo serializes v and writes it to sink, flushing afterward.
func (e *Encoder) EncodeTo(sink ByteSink, v interface{}) error {
	data, err := e.Encode(v)
	if err != nil {
		return err
	}
	if _, err := sink.Write(data); err != nil {
		return err
	}
	return sink.Flush()
}

// Shareable marks its Value as a value-sharing candidate regardless of the
// Encoder's WithValueSharing setting, for callers that want an explicit
// tag-28 wrapper on a value whose later reuse they manage themselves
// (spec.md §6 "Explicit sharing").
type Shareable struct {
	Value interface{}
}

// MakeShareable wraps v so the encoder always emits a tag-28 wrapper
// around it, even when value sharing is otherwise disabled.
func MakeShareable(v interface{}) Shareable {
	return Shareable{Value: v}
}

func encodeValue(e *Encoder, w *CborWriter, ctx *encodeContext, v interface{}) error {
	if v == nil {
		return w.WriteNull()
	}

	if shareable, ok := v.(Shareable); ok {
		if err := w.WriteTag(TagShareable); err != nil {
			return err
		}
		if key, ok := containerIdentity(shareable.Value); ok {
			ctx.shareables.forceRegister(key)
		}
		return encodeDispatch(e, w, ctx, shareable.Value)
	}

	if rv := reflect.ValueOf(v); rv.IsValid() {
		if fn, ok := e.customEncoders[rv.Type()]; ok {
			substitute, err := fn(v)
			if err != nil {
				return err
			}
			return encodeValue(e, w, ctx, substitute)
		}
	}

	key, status, idx := ctx.shareables.enter(v, e.valueSharing)
	switch status {
	case shareBackReference:
		if err := w.WriteTag(TagSharedRef); err != nil {
			return err
		}
		return w.WriteUint64(uint64(idx))
	case shareCyclic:
		return ErrCyclicStructure
	}

	wrapShareable := status == shareFirstSeen && e.valueSharing
	if wrapShareable {
		if err := w.WriteTag(TagShareable); err != nil {
			return err
		}
	}

	err := encodeDispatch(e, w, ctx, v)

	if status == shareFirstSeen {
		ctx.shareables.leave(key)
	}
	return err
}

func encodeDispatch(e *Encoder, w *CborWriter, ctx *encodeContext, v interface{}) error {
	switch val := v.(type) {
	case bool:
		return w.WriteBoolean(val)
	case SimpleValue:
		return w.WriteSimpleValue(val)
	case Undefined:
		return w.WriteUndefined()
	case BreakMarker:
		return ErrNoEncoder

	case string:
		return encodeString(e, w, ctx, val)
	case []byte:
		return encodeByteString(e, w, ctx, val)

	case int:
		return w.WriteInt64(int64(val))
	case int8:
		return w.WriteInt64(int64(val))
	case int16:
		return w.WriteInt64(int64(val))
	case int32:
		return w.WriteInt64(int64(val))
	case int64:
		return w.WriteInt64(val)
	case uint:
		return w.WriteUint64(uint64(val))
	case uint8:
		return w.WriteUint64(uint64(val))
	case uint16:
		return w.WriteUint64(uint64(val))
	case uint32:
		return w.WriteUint64(uint64(val))
	case uint64:
		return w.WriteUint64(val)
	case float32:
		return w.WriteFloat(float64(val))
	case float64:
		return w.WriteFloat(val)

	case *big.Int:
		return encodeBigInt(w, val)

	case []interface{}:
		return encodeArray(e, w, ctx, val)
	case Tuple:
		return encodeArray(e, w, ctx, []interface{}(val))
	case *Map:
		return encodeMap(e, w, ctx, val)

	case Tag:
		if err := w.WriteTag(val.Number); err != nil {
			return err
		}
		return encodeValue(e, w, ctx, val.Content)

	case time.Time:
		return encodeTime(e, w, ctx, val)

	case Date:
		return encodeDate(e, w, ctx, val)

	default:
		if tag, content, ok := encodeTagForValue(v); ok {
			if err := w.WriteTag(tag); err != nil {
				return err
			}
			return encodeValue(e, w, ctx, content)
		}
		if e.fallbackEncoder != nil {
			substitute, err := e.fallbackEncoder(v)
			if err != nil {
				return err
			}
			return encodeValue(e, w, ctx, substitute)
		}
		return ErrNoEncoder
	}
}

func encodeString(e *Encoder, w *CborWriter, ctx *encodeContext, s string) error {
	raw := []byte(s)
	if ctx.stringRefs.active() {
		ns := ctx.stringRefs.top()
		if idx, found := ns.find(raw); found && qualifiesForReference(raw, idx) {
			if err := w.WriteTag(TagStringRef); err != nil {
				return err
			}
			return w.WriteUint64(uint64(idx))
		}
		if len(raw) >= stringRefMinLength {
			ns.add(raw)
		}
	}
	return w.WriteTextString(s)
}

func encodeByteString(e *Encoder, w *CborWriter, ctx *encodeContext, raw []byte) error {
	if ctx.stringRefs.active() {
		ns := ctx.stringRefs.top()
		if idx, found := ns.find(raw); found && qualifiesForReference(raw, idx) {
			if err := w.WriteTag(TagStringRef); err != nil {
				return err
			}
			return w.WriteUint64(uint64(idx))
		}
		if len(raw) >= stringRefMinLength {
			ns.add(raw)
		}
	}
	return w.WriteByteString(raw)
}

func encodeBigInt(w *CborWriter, v *big.Int) error {
	if fitsUint64(v) {
		return w.WriteUint64(v.Uint64())
	}
	if fitsInt64Negative(v) {
		return w.WriteBigInt(v)
	}
	tag, payload := bignumToTag(v)
	if err := w.WriteTag(tag); err != nil {
		return err
	}
	return w.WriteByteString(payload)
}

func encodeArray(e *Encoder, w *CborWriter, ctx *encodeContext, items []interface{}) error {
	if e.indefiniteContainers {
		if err := w.WriteStartIndefiniteLengthArray(); err != nil {
			return err
		}
	} else if err := w.WriteStartArray(len(items)); err != nil {
		return err
	}
	for _, item := range items {
		if err := encodeValue(e, w, ctx, item); err != nil {
			return err
		}
	}
	return w.WriteEndArray()
}

func encodeMap(e *Encoder, w *CborWriter, ctx *encodeContext, m *Map) error {
	entries := m.Entries()

	if e.conformanceMode != ConformanceCanonical && e.conformanceMode != ConformanceCtap2Canonical {
		if e.indefiniteContainers {
			if err := w.WriteStartIndefiniteLengthMap(); err != nil {
				return err
			}
		} else if err := w.WriteStartMap(len(entries)); err != nil {
			return err
		}
		for _, entry := range entries {
			if err := encodeValue(e, w, ctx, entry.Key); err != nil {
				return err
			}
			if err := encodeValue(e, w, ctx, entry.Value); err != nil {
				return err
			}
		}
		return w.WriteEndMap()
	}

	if err := w.WriteStartMap(len(entries)); err != nil {
		return err
	}

	type encodedEntry struct {
		keyBytes []byte
		valBytes []byte
	}
	encoded := make([]encodedEntry, len(entries))
	for i, entry := range entries {
		kw := NewCborWriter(WithConformanceMode(e.conformanceMode))
		if err := encodeValue(e, kw, ctx, entry.Key); err != nil {
			return err
		}
		vw := NewCborWriter(WithConformanceMode(e.conformanceMode))
		if err := encodeValue(e, vw, ctx, entry.Value); err != nil {
			return err
		}
		encoded[i] = encodedEntry{keyBytes: kw.Bytes(), valBytes: vw.Bytes()}
	}

	sort.SliceStable(encoded, func(i, j int) bool {
		return bytes.Compare(encoded[i].keyBytes, encoded[j].keyBytes) < 0
	})

	for i := 1; i < len(encoded); i++ {
		if bytes.Equal(encoded[i-1].keyBytes, encoded[i].keyBytes) {
			return ErrCanonicalKeyCollision
		}
	}

	for _, entry := range encoded {
		if err := w.WriteRaw(entry.keyBytes); err != nil {
			return err
		}
		if err := w.WriteRaw(entry.valBytes); err != nil {
			return err
		}
	}
	return w.WriteEndMap()
}

func encodeTime(e *Encoder, w *CborWriter, ctx *encodeContext, t time.Time) error {
	if t.Location() == time.Local {
		if e.defaultTimeZone == nil {
			return ErrNaiveDatetime
		}
		t = t.In(e.defaultTimeZone)
	}
	if e.datetimeAsTimestamp {
		if err := w.WriteTag(TagUnixTime); err != nil {
			return err
		}
		return encodeValue(e, w, ctx, unixTimeValue(t))
	}
	if err := w.WriteTag(TagDateTimeString); err != nil {
		return err
	}
	return w.WriteTextString(formatOffsetDatetime(t))
}

// encodeDate encodes a Date (spec.md §4.3 "Dates"). By default it is a
// tag-1004 ISO calendar-date string; with WithDateAsDatetime it is promoted
// to midnight in the encoder's default timezone (or UTC with none set) and
// encoded the same way a time.Time would be.
func encodeDate(e *Encoder, w *CborWriter, ctx *encodeContext, d Date) error {
	if !e.dateAsDatetime {
		if err := w.WriteTag(TagISODate); err != nil {
			return err
		}
		return w.WriteTextString(d.String())
	}
	loc := e.defaultTimeZone
	if loc == nil {
		loc = time.UTC
	}
	y, mo, day := time.Time(d).Date()
	t := time.Date(y, mo, day, 0, 0, 0, 0, loc)
	if e.datetimeAsTimestamp {
		if err := w.WriteTag(TagUnixTime); err != nil {
			return err
		}
		return encodeValue(e, w, ctx, unixTimeValue(t))
	}
	if err := w.WriteTag(TagDateTimeString); err != nil {
		return err
	}
	return w.WriteTextString(formatOffsetDatetime(t))
}

// Encode serializes v using the package default encoder settings.
func Encode(v interface{}) ([]byte, error) {
	return NewEncoder().Encode(v)
}

// EncodeTo serializes v using the package default encoder settings and
// writes it to w.
func EncodeTo(w io.Writer, v interface{}) error {
	sink := NewByteSink(w, defaultReadaheadSize)
	return NewEncoder().EncodeTo(sink, v)
}
