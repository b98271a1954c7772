// Command cborcat is a downstream diagnostic tool: it reads CBOR data and
// prints it in extended diagnostic notation (RFC 8949 §8), optionally as a
// sequence of top-level items, with terminal color highlighting.
package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	cbor "github.com/cbor-core/cbor"
)

// CLI defines the cborcat command-line interface. Kept minimal: an input
// file (or stdin), and flags that mirror the decoder's own knobs.
type CLI struct {
	Input     string `arg:"" optional:"" help:"Input file (defaults to stdin)"`
	Output    string `short:"o" help:"Output file (defaults to stdout)"`
	Pretty    bool   `short:"p" help:"Indent nested containers across multiple lines"`
	SortKeys  bool   `help:"Render map entries sorted by their rendered key text"`
	Sequence  bool   `help:"Decode a sequence of concatenated top-level items (RFC 8742)"`
	Base64    bool   `help:"Treat input as base64-encoded CBOR rather than raw bytes"`
	IgnoreTag string `help:"Semantic tag number to strip before rendering, may be repeated by rerunning" default:""`
	MMap      bool   `help:"Memory-map the input file instead of reading it into memory"`
	NoColor   bool   `help:"Disable colored output"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("cborcat"),
		kong.Description("Render CBOR data as diagnostic notation."),
	)

	if err := run(&cli); err != nil {
		fmt.Fprintln(os.Stderr, "cborcat:", err)
		os.Exit(1)
	}
}

func run(cli *CLI) error {
	data, closeInput, err := readInput(cli)
	if err != nil {
		return err
	}
	if closeInput != nil {
		defer closeInput()
	}

	if cli.Base64 {
		decoded, err := decodeBase64(data)
		if err != nil {
			return fmt.Errorf("decode base64 input: %w", err)
		}
		data = decoded
	}

	dec := cbor.NewDecoder()
	out, err := openOutput(cli.Output)
	if err != nil {
		return err
	}
	defer out.Close()

	opts := cbor.DiagnosticOptions{Pretty: cli.Pretty, SortKeys: cli.SortKeys}

	strip := func(v interface{}) interface{} { return v }
	if cli.IgnoreTag != "" {
		tagNum, err := strconv.ParseUint(cli.IgnoreTag, 10, 64)
		if err != nil {
			return fmt.Errorf("--ignore-tag: %w", err)
		}
		strip = func(v interface{}) interface{} { return stripTag(v, cbor.CborTag(tagNum)) }
	}

	if cli.Sequence {
		items, err := dec.DecodeSequence(data)
		if err != nil {
			return fmt.Errorf("decode sequence: %w", err)
		}
		for _, item := range items {
			printDiagnostic(out, strip(item), opts, cli.NoColor)
		}
		return nil
	}

	value, err := dec.DecodeBytes(data)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	printDiagnostic(out, strip(value), opts, cli.NoColor)
	return nil
}

// stripTag removes every occurrence of tag inside tag contents, arrays and
// maps of value's tree, replacing a Tag wrapper with its own content; Tuple
// and set elements are not searched.
func stripTag(value interface{}, tag cbor.CborTag) interface{} {
	switch v := value.(type) {
	case cbor.Tag:
		content := stripTag(v.Content, tag)
		if v.Number == tag {
			return content
		}
		return cbor.Tag{Number: v.Number, Content: content}
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = stripTag(item, tag)
		}
		return out
	case *cbor.Map:
		out := cbor.NewMap()
		for _, entry := range v.Entries() {
			out.Set(stripTag(entry.Key, tag), stripTag(entry.Value, tag))
		}
		return out
	default:
		return v
	}
}

func decodeBase64(data []byte) ([]byte, error) {
	return base64.StdEncoding.DecodeString(string(data))
}

func printDiagnostic(out *os.File, value interface{}, opts cbor.DiagnosticOptions, noColor bool) {
	text := cbor.DiagnosticNotation(value, opts)
	if noColor {
		fmt.Fprintln(out, text)
		return
	}
	highlighter := color.New(color.FgHiCyan)
	highlighter.EnableColor()
	fmt.Fprintln(out, highlighter.SprintFunc()(text))
}

func readInput(cli *CLI) ([]byte, func() error, error) {
	if cli.Input == "" {
		data, err := readAllStdin()
		return data, nil, err
	}

	if cli.MMap {
		src, err := cbor.OpenMmapByteSource(cli.Input)
		if err != nil {
			return nil, nil, fmt.Errorf("mmap %q: %w", cli.Input, err)
		}
		data, err := src.ReadAll()
		if err != nil {
			src.Close()
			return nil, nil, err
		}
		return data, src.Close, nil
	}

	f, err := os.Open(cli.Input)
	if err != nil {
		return nil, nil, fmt.Errorf("open %q: %w", cli.Input, err)
	}
	defer f.Close()

	src := cbor.NewByteSource(f, 0)
	data, err := src.ReadAll()
	return data, nil, err
}

func readAllStdin() ([]byte, error) {
	src := cbor.NewByteSource(os.Stdin, 0)
	return src.ReadAll()
}

func openOutput(path string) (*os.File, error) {
	if path == "" {
		return os.Stdout, nil
	}
	return os.Create(path)
}
