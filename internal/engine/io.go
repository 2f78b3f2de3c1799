package engine

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/term"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// maxInputSize is a safety limit to prevent memory exhaustion (100 MB).
const maxInputSize = 100 * 1024 * 1024

const (
	DefaultEncodeOutput = "obfuscated.bat"
	DefaultDecodeOutput = "deobfuscated.bat"
)

// utf8BOM is the UTF-8 Byte Order Mark (EF BB BF).
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var (
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// normalizeText turns raw file bytes into UTF-8 text. Notepad and
// PowerShell redirection often save batch files as UTF-16 with a BOM; those
// are transcoded. A UTF-8 BOM is dropped so it cannot glue itself to the
// first character of the first line.
func normalizeText(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, utf16LEBOM) || bytes.HasPrefix(data, utf16BEBOM) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return nil, fmt.Errorf("decoding UTF-16 input: %w", err)
		}
		return out, nil
	}
	return bytes.TrimPrefix(data, utf8BOM), nil
}

// readAllInput returns the source text: stdin, the input file, or the
// literal command when no file is named.
func readAllInput(opts Options) ([]byte, error) {
	if opts.UseStdin {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, errors.New("stdin is a terminal; pipe a script in or pass a file")
		}
		data, err := io.ReadAll(io.LimitReader(bufio.NewReader(os.Stdin), maxInputSize+1))
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		if len(data) > maxInputSize {
			return nil, fmt.Errorf("input too large (>%d bytes, safety limit)", maxInputSize)
		}
		return normalizeText(data)
	}
	if opts.InputFile == "" {
		return []byte(opts.Command), nil
	}
	fi, err := os.Stat(opts.InputFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", opts.InputFile)
		}
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("input is a directory, not a file: %s", opts.InputFile)
	}
	if fi.Size() > maxInputSize {
		return nil, fmt.Errorf("file too large (%d bytes, max %d)", fi.Size(), maxInputSize)
	}
	data, err := os.ReadFile(opts.InputFile)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return normalizeText(data)
}

// validateUTF8 checks that data is valid UTF-8. Empty input is fine for
// encoding (it yields a preamble-only document) but not for decoding.
func validateUTF8(data []byte, decode bool) error {
	if decode && len(data) == 0 {
		return errors.New("file is empty")
	}
	if !utf8.Valid(data) {
		return errors.New("file is not valid UTF-8; save it as UTF-8 or UTF-16 with BOM")
	}
	return nil
}

// ResolveInput decides whether arg names a file or is a literal command,
// the way the CLI accepts either: an existing path wins, "-" means stdin.
func ResolveInput(opts *Options, arg string) {
	switch {
	case arg == "-":
		opts.UseStdin = true
	case arg == "":
	default:
		if fi, err := os.Stat(arg); err == nil && !fi.IsDir() {
			opts.InputFile = arg
			return
		}
		opts.Command = arg
	}
}

func outputName(opts Options) string {
	if opts.OutputFile != "" {
		return opts.OutputFile
	}
	if opts.Decode {
		return DefaultDecodeOutput
	}
	return DefaultEncodeOutput
}

func writeOutput(opts Options, text string) (string, error) {
	if opts.UseStdout {
		_, err := io.WriteString(os.Stdout, text)
		return "<stdout>", err
	}
	name := outputName(opts)
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(name, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("writing output: %w", err)
	}
	return name, nil
}

func inputLabel(opts Options) string {
	switch {
	case opts.UseStdin:
		return "<stdin>"
	case opts.InputFile != "":
		return opts.InputFile
	default:
		return "<command>"
	}
}
