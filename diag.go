package cbor

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// DiagnosticOptions configures DiagnosticNotation rendering.
type DiagnosticOptions struct {
	// Pretty indents nested containers across multiple lines.
	Pretty bool
	// SortKeys renders map entries ordered by the diagnostic text of their
	// keys instead of insertion order, for stable diffing.
	SortKeys bool
}

// DiagnosticNotation renders a decoded value as CBOR's extended diagnostic
// notation (RFC 8949 §8), a lossy but human-readable textual form used by
// the downstream inspection tool rather than by the codec itself.
func DiagnosticNotation(v interface{}, opts DiagnosticOptions) string {
	var b strings.Builder
	writeDiagnostic(&b, v, opts, 0)
	return b.String()
}

func indent(b *strings.Builder, opts DiagnosticOptions, depth int) {
	if opts.Pretty {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat("  ", depth))
	}
}

func writeDiagnostic(b *strings.Builder, v interface{}, opts DiagnosticOptions, depth int) {
	switch val := v.(type) {
	case nil:
		b.WriteString("null")
	case Undefined:
		b.WriteString("undefined")
	case bool:
		b.WriteString(strconv.FormatBool(val))
	case uint64:
		b.WriteString(strconv.FormatUint(val, 10))
	case int64:
		b.WriteString(strconv.FormatInt(val, 10))
	case float64:
		b.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case *big.Int:
		b.WriteString(val.String())
	case string:
		b.WriteString(strconv.Quote(val))
	case []byte:
		b.WriteString("h'")
		b.WriteString(hex.EncodeToString(val))
		b.WriteByte('\'')
	case SimpleValue:
		fmt.Fprintf(b, "simple(%d)", val)
	case []interface{}:
		writeDiagnosticArray(b, val, opts, depth)
	case Tuple:
		writeDiagnosticArray(b, []interface{}(val), opts, depth)
	case *Map:
		writeDiagnosticMap(b, val, opts, depth)
	case *SetValue:
		b.WriteByte('<')
		b.WriteByte('<')
		writeDiagnosticArray(b, val.Items(), opts, depth)
		b.WriteByte('>')
		b.WriteByte('>')
	case Tag:
		fmt.Fprintf(b, "%d(", val.Number)
		writeDiagnostic(b, val.Content, opts, depth)
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "%v", val)
	}
}

func writeDiagnosticArray(b *strings.Builder, items []interface{}, opts DiagnosticOptions, depth int) {
	b.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			b.WriteByte(',')
		}
		indent(b, opts, depth+1)
		writeDiagnostic(b, item, opts, depth+1)
	}
	if len(items) > 0 {
		indent(b, opts, depth)
	}
	b.WriteByte(']')
}

func writeDiagnosticMap(b *strings.Builder, m *Map, opts DiagnosticOptions, depth int) {
	entries := m.Entries()
	if opts.SortKeys {
		sorted := append([]Entry(nil), entries...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return DiagnosticNotation(sorted[i].Key, DiagnosticOptions{}) < DiagnosticNotation(sorted[j].Key, DiagnosticOptions{})
		})
		entries = sorted
	}

	b.WriteByte('{')
	for i, entry := range entries {
		if i > 0 {
			b.WriteByte(',')
		}
		indent(b, opts, depth+1)
		writeDiagnostic(b, entry.Key, opts, depth+1)
		b.WriteString(": ")
		writeDiagnostic(b, entry.Value, opts, depth+1)
	}
	if len(entries) > 0 {
		indent(b, opts, depth)
	}
	b.WriteByte('}')
}
