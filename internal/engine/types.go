package engine

import (
	"log/slog"
	mathrand "math/rand"
)

type Options struct {
	InputFile    string
	Command      string // literal command text, used when no input file is given
	OutputFile   string
	UseStdin     bool
	UseStdout    bool
	Decode       bool
	MinTokenLen  int
	MaxTokenLen  int
	EchoOff      bool // insert "@echo off" after the opening watermarks
	AssumeYes    bool // keep opaque lines without asking
	FullAlphabet bool // define every Substitutable character, not just the ones used
	Seed         int64
	Seeded       bool
	Quiet        bool
	Profile      string
	Report       string // "", "json" or "yaml"
	DryRun       bool   // analyze only, no transformation or output
	Recommend    bool   // print analysis and suggested settings, no output
	Verify       bool   // decode the fresh output and compare with the source
	LogFile      string // optional JSON log file
	LogLevel     string
	Journal      bool
}

// bounds returns the token length range, falling back to the defaults for
// unset values.
func (o *Options) bounds() (int, int) {
	min, max := o.MinTokenLen, o.MaxTokenLen
	if min == 0 {
		min = DefaultMinTokenLen
	}
	if max == 0 {
		max = DefaultMaxTokenLen
		if max < min {
			max = min * 2
		}
	}
	return min, max
}

// Ctx is the obfuscation context of one encode or decode operation: the
// three anchor aliases plus the token state. It is created per call and
// never shared.
type Ctx struct {
	Rng      *mathrand.Rand
	Opts     *Options
	Tokens   *TokenGenerator
	Alphabet *Alphabet
	Logger   *slog.Logger

	Keyword string // stands for "set"
	Space   string // stands for " "
	Equals  string // stands for "="
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
