package engine

import (
	"fmt"
	"log/slog"
	"strings"
)

// Watermarks open and close every encoded document. They are base64 of
// "This file was obfuscated via ..." and "This file can be programatically
// deobfuscated via ...".
const (
	Watermark1 = ":: VGhpcyBmaWxlIHdhcyBvYmZ1c2NhdGVkIHZpYSBodHRwczovL2dpdGh1Yi5jb20vYmVuem9YZGV2L29iZnVzYmF0"
	Watermark2 = ":: VGhpcyBmaWxlIGNhbiBiZSBwcm9ncmFtYXRpY2FsbHkgZGVvYmZ1c2NhdGVkIHZpYSBodHRwczovL2dpdGh1Yi5jb20vYmVuem9YZGV2L29iZnVzYmF0"

	// MaxLineLen is the cmd.exe single-line limit. It is reported, not enforced.
	MaxLineLen = 8191

	echoOffLine = "@echo off"
)

const opaqueWarning = "Because of the way this obfuscation method works, variables you define or use " +
	"in your scripts, including environment variables, and labels cannot be obfuscated. " +
	"Lines containing them are written as-is to preserve functionality."

// EncodeResult is the encoded document plus what the run produced.
type EncodeResult struct {
	Text        string
	Seed        int64
	Keyword     string
	Space       string
	Equals      string
	Definitions int   // definition statements for Alphabet characters
	Blobs       int   // definition statements for percent blobs
	Tokens      int   // every token issued, anchors included
	OpaqueLines []int // 1-based source lines copied unmodified
	Warnings    []string
}

// Encoder rewrites batch source as references to generated variables.
// An Encoder holds configuration only; every Encode call builds its own
// Ctx, so one Encoder may serve concurrent calls on independent inputs.
type Encoder struct {
	Opts    Options
	Confirm Confirmer
	Logger  *slog.Logger
}

func NewEncoder(opts Options, confirm Confirmer, logger *slog.Logger) *Encoder {
	if logger == nil {
		logger = discardLogger()
	}
	return &Encoder{Opts: opts, Confirm: confirm, Logger: logger}
}

// Encode obfuscates src.
func (e *Encoder) Encode(src string) (*EncodeResult, error) {
	opts := e.Opts
	min, max := opts.bounds()
	seed := opts.Seed
	rng := InitRNG(&seed, opts.Seeded)
	gen, err := NewTokenGenerator(rng, min, max)
	if err != nil {
		return nil, err
	}
	ctx := &Ctx{Rng: rng, Opts: &opts, Tokens: gen, Logger: e.Logger}
	for _, dst := range []*string{&ctx.Keyword, &ctx.Space, &ctx.Equals} {
		if *dst, err = gen.Generate(); err != nil {
			return nil, fmt.Errorf("anchor aliases: %w", err)
		}
	}
	if ctx.Alphabet, err = BuildAlphabet(gen); err != nil {
		return nil, fmt.Errorf("alphabet: %w", err)
	}
	e.Logger.Debug("alphabet built", "min", min, "max", max, "tokens", gen.Issued())

	res := &EncodeResult{Seed: seed, Keyword: ctx.Keyword, Space: ctx.Space, Equals: ctx.Equals}
	w := &bodyWriter{ctx: ctx, used: map[rune]bool{}}
	if err := e.rewriteBody(ctx, w, src, res); err != nil {
		return nil, err
	}

	out := []string{Watermark1, Watermark2}
	if opts.EchoOff {
		out = append(out, echoOffLine)
	}
	out = append(out, ctx.preamble()...)
	for _, r := range SubstitutableChars {
		if !opts.FullAlphabet && !w.used[r] {
			continue
		}
		tok, _ := ctx.Alphabet.Lookup(r)
		out = append(out, ctx.define(tok, string(r)))
		res.Definitions++
	}
	out = append(out, w.blobDefs...)
	out = append(out, w.body.String(), Watermark1, Watermark2)

	res.Text = strings.Join(out, "\n")
	res.Blobs = len(w.blobDefs)
	res.Tokens = gen.Issued()
	res.Warnings = append(res.Warnings, lineLengthWarnings(res.Text)...)
	return res, nil
}

// rewriteBody applies the per-line policy: opaque lines first, then lines
// holding stray delimiters, then plain per-character substitution.
func (e *Encoder) rewriteBody(ctx *Ctx, w *bodyWriter, src string, res *EncodeResult) error {
	confirmed := false
	for i, line := range strings.Split(src, "\n") {
		switch {
		case isOpaqueLine(line):
			if !confirmed {
				if err := e.confirmOpaque(i+1, line); err != nil {
					return err
				}
				confirmed = true
			}
			e.Logger.Debug("opaque line kept", "line", i+1)
			res.OpaqueLines = append(res.OpaqueLines, i+1)
			w.body.WriteString(line)
		case strings.ContainsRune(line, Delimiter):
			if err := w.writeBlobLine(line); err != nil {
				return err
			}
		default:
			for _, r := range line {
				w.writeChar(r)
			}
		}
		w.body.WriteByte('\n')
	}
	return nil
}

func (e *Encoder) confirmOpaque(line int, text string) error {
	if e.Opts.AssumeYes {
		return nil
	}
	cause := &AmbiguousLineError{Line: line, Text: text}
	if e.Confirm == nil {
		return fmt.Errorf("%w: %w", ErrAborted, cause)
	}
	ok, err := e.Confirm.Confirm(opaqueWarning)
	if err != nil {
		return fmt.Errorf("confirm: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %w", ErrAborted, cause)
	}
	return nil
}

type bodyWriter struct {
	ctx      *Ctx
	body     strings.Builder
	used     map[rune]bool
	blobDefs []string
}

func (w *bodyWriter) writeChar(r rune) {
	if !IsExtended(r) || Classify(r) == PassThrough {
		w.body.WriteRune(r)
		return
	}
	tok, _ := w.ctx.Alphabet.Lookup(r)
	w.used[r] = true
	w.ref(tok)
}

// writeBlobLine substitutes a line that holds delimiters without forming a
// variable reference. Each delimiter and the character after it become one
// blob with its own fresh token.
func (w *bodyWriter) writeBlobLine(line string) error {
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		if runes[i] != Delimiter {
			w.writeChar(runes[i])
			continue
		}
		end := min(i+2, len(runes))
		tok, err := w.ctx.Tokens.Generate()
		if err != nil {
			return fmt.Errorf("blob token: %w", err)
		}
		w.blobDefs = append(w.blobDefs, w.ctx.define(tok, string(runes[i:end])))
		w.ref(tok)
		i = end - 1
	}
	return nil
}

func (w *bodyWriter) ref(tok string) {
	w.body.WriteRune(Delimiter)
	w.body.WriteString(tok)
	w.body.WriteRune(Delimiter)
}

// preamble defines the keyword, space and equals aliases, each in terms of
// the ones before it.
func (c *Ctx) preamble() []string {
	return []string{
		"set " + c.Keyword + "=set",
		"%" + c.Keyword + "% " + c.Space + "= ",
		"%" + c.Keyword + "%%" + c.Space + "%" + c.Equals + "==",
	}
}

// define renders the definition statement shape:
// %keyword%%space%name%equals%value
func (c *Ctx) define(name, value string) string {
	return "%" + c.Keyword + "%%" + c.Space + "%" + name + "%" + c.Equals + "%" + value
}

func lineLengthWarnings(doc string) []string {
	var out []string
	for i, l := range strings.Split(doc, "\n") {
		if n := len([]rune(l)); n > MaxLineLen {
			out = append(out, fmt.Sprintf("line %d is %d characters long; cmd.exe truncates lines over %d", i+1, n, MaxLineLen))
		}
	}
	return out
}

// EncodeString encodes src without prompting: opaque lines abort unless
// opts.AssumeYes is set.
func EncodeString(src string, opts Options) (string, error) {
	res, err := NewEncoder(opts, nil, nil).Encode(src)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}
