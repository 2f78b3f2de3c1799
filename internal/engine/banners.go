package engine

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

const (
	version = "1.0.0"
	author  = "BenzoXdev"
)

// banner is the colored banner for CLI output. It reads the color codes at
// call time, after init has cleared them for non-terminals.
func banner() string {
	return Cyan + "ObfusBat" + Reset + " | v." + version + " | " + Gray + "https://github.com/BenzoXdev/obfusbat" + Reset
}

// Version returns the version string.
func Version() string {
	return version
}

// VersionFull returns version with Go and platform info.
func VersionFull() string {
	return fmt.Sprintf("ObfusBat v%s by %s (%s/%s, %s)", version, author, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

var sentinelHints = []struct {
	err  error
	hint string
}{
	{ErrAnchorNotFound, "The input is not obfuscated by this tool (missing set/space/equals preamble). Check the file, or drop --deobfuscate to encode it."},
	{ErrTokenSpaceExhausted, "The token length range is too small for the alphabet. Raise --max (e.g. --min 2 --max 4)."},
	{ErrInvalidTokenBounds, "Token lengths need 1 <= --min <= --max."},
	{ErrAborted, "Lines using variables or labels need confirmation. Re-run with --yes to keep them as-is."},
	{errVerifyFailed, "The decoded output differs from the source. Report the script; --seed reproduces the run."},
}

var messageHints = []struct {
	substr string
	hint   string
}{
	{"file not found", "Check the input path. A value that is not an existing file is encoded as a literal command."},
	{"not valid UTF-8", "Re-save the file as UTF-8 (with or without BOM) or UTF-16 with BOM."},
	{"file is empty", "Decoding needs an obfuscated script; the input has no content."},
	{"too large", "Split the script; inputs over 100 MB are refused."},
	{"stdin is a terminal", "Pipe a script: type script.bat | obfusbat -"},
	{"config", "Check obfusbat.cue: unknown keys and out-of-range values are rejected."},
}

// ErrorHint returns a one-line suggestion for err, or "".
func ErrorHint(err error) string {
	if err == nil {
		return ""
	}
	for _, h := range sentinelHints {
		if errors.Is(err, h.err) {
			return h.hint
		}
	}
	msg := err.Error()
	for _, h := range messageHints {
		if strings.Contains(msg, h.substr) {
			return h.hint
		}
	}
	return ""
}
