package engine

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var errVerifyFailed = errors.New("verify failed")

// VerifyRoundTrip decodes an encoded document and compares it with the
// source line by line. Opaque lines are skipped: they were never
// substituted, so the scheme makes no promise about them.
func VerifyRoundTrip(src string, res *EncodeResult) error {
	dec, err := NewDecoder(nil).Decode(res.Text)
	if err != nil {
		return fmt.Errorf("%w: %w", errVerifyFailed, err)
	}
	want := strings.Split(src, "\n")
	got := strings.Split(dec.Text, "\n")
	if len(want) != len(got) {
		return fmt.Errorf("%w: decoded %d lines, source has %d", errVerifyFailed, len(got), len(want))
	}
	opaque := make(map[int]bool, len(res.OpaqueLines))
	for _, n := range res.OpaqueLines {
		opaque[n] = true
	}
	for i := range want {
		if opaque[i+1] {
			continue
		}
		if want[i] != got[i] {
			return fmt.Errorf("%w: line %d differs: got %q want %q", errVerifyFailed, i+1, got[i], want[i])
		}
	}
	return nil
}

func runVerify(opts Options, src string, res *EncodeResult) error {
	err := VerifyRoundTrip(src, res)
	if opts.Quiet {
		return err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sVerify:%s FAIL (%v)\n", Red, Reset, err)
		return err
	}
	fmt.Fprintf(os.Stderr, "%sVerify:%s PASS (decoded output matches source)\n", Green, Reset)
	return nil
}
