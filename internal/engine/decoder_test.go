package engine

import (
	"errors"
	"strings"
	"testing"
)

// handDoc assembles a hand-written document with aliases K, S and E.
func handDoc(lines ...string) string {
	head := []string{"set K=set", "%K% S= ", "%K%%S%E=="}
	return strings.Join(append(head, lines...), "\n")
}

// TestDecodeMissingAnchor checks that each absent preamble line is named.
func TestDecodeMissingAnchor(t *testing.T) {
	res, err := NewEncoder(seeded(6), nil, nil).Encode("echo x")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(res.Text, "\n")
	for i, anchor := range []Anchor{AnchorKeyword, AnchorSpace, AnchorEquals} {
		broken := append(append([]string{}, lines[:2+i]...), lines[3+i:]...)
		_, err := DecodeString(strings.Join(broken, "\n"))
		if !errors.Is(err, ErrAnchorNotFound) {
			t.Fatalf("%s: got %v, want ErrAnchorNotFound", anchor, err)
		}
		var ae *AnchorError
		if !errors.As(err, &ae) || ae.Anchor != anchor {
			t.Errorf("%s: got %v", anchor, err)
		}
	}
	if _, err := DecodeString("echo not obfuscated"); !errors.Is(err, ErrAnchorNotFound) {
		t.Errorf("plain text: got %v", err)
	}
}

// TestDecodeUnknownReference checks that an undefined %NAME% stays literal
// instead of being split into characters.
func TestDecodeUnknownReference(t *testing.T) {
	res, err := NewDecoder(nil).Decode(handDoc(
		"%K%%S%ab%E%x",
		"echo %QQ% %ab%",
		"echo %QQ%",
	))
	if err != nil {
		t.Fatal(err)
	}
	if want := "echo %QQ% x\necho %QQ%"; res.Text != want {
		t.Errorf("got %q want %q", res.Text, want)
	}
	if res.Verbatim != 1 {
		t.Errorf("verbatim=%d want 1", res.Verbatim)
	}
	if len(res.Issues) != 1 || !errors.Is(res.Issues[0], ErrUnrecognizedLine) {
		t.Fatalf("issues: %v", res.Issues)
	}
	var ue *UnresolvedError
	if !errors.As(res.Issues[0], &ue) || ue.Token != "QQ" || ue.Line != 5 {
		t.Errorf("unresolved: %v", res.Issues[0])
	}
}

// TestDecodeMalformedDefinition checks that a broken definition is reported
// and skipped without aborting the decode.
func TestDecodeMalformedDefinition(t *testing.T) {
	res, err := NewDecoder(nil).Decode(handDoc(
		"%K%%S%ab%E%x",
		"%K%%S%cd%X%y",
		"%K%%S%%E%z",
		"%K%%S%ef%E%",
		"%ab%%ab%",
	))
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "xx" {
		t.Errorf("text: got %q", res.Text)
	}
	if res.Definitions != 1 || len(res.Issues) != 3 {
		t.Fatalf("definitions=%d issues=%v", res.Definitions, res.Issues)
	}
	for _, issue := range res.Issues {
		if !errors.Is(issue, ErrMalformedDefinition) {
			t.Errorf("issue %v is not a malformed definition", issue)
		}
	}
	if !errors.Is(res.Err(), ErrMalformedDefinition) {
		t.Error("Err should join the issues")
	}
}

// TestDecodeBlobValues checks two-character definition values.
func TestDecodeBlobValues(t *testing.T) {
	res, err := NewDecoder(nil).Decode(handDoc(
		"%K%%S%ab%E%e",
		"%K%%S%pp%E%%%",
		"%K%%S%pq%E%%",
		"%ab%%pp%%ab%%pq%",
	))
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "e%%e%" {
		t.Errorf("got %q", res.Text)
	}
	if res.Err() != nil {
		t.Errorf("unexpected issues: %v", res.Err())
	}
}

// TestDecodeCRLF checks documents saved with Windows line endings.
func TestDecodeCRLF(t *testing.T) {
	in := strings.ReplaceAll(handDoc("%K%%S%ab%E%x", "%ab%%ab%", "plain", ""), "\n", "\r\n")
	got, err := DecodeString(in)
	if err != nil {
		t.Fatal(err)
	}
	if want := "xx\r\nplain"; got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

// TestDecodeWatermarks checks that current and legacy watermarks, and
// anything before the preamble, are dropped.
func TestDecodeWatermarks(t *testing.T) {
	body := handDoc("%K%%S%ab%E%x", "%ab%")
	for _, marks := range [][]string{
		{Watermark1, Watermark2},
		{":: " + legacyWatermarks[0], ":: " + legacyWatermarks[1]},
	} {
		in := strings.Join([]string{marks[0], marks[1], "@echo off", body, marks[0], marks[1]}, "\n")
		got, err := DecodeString(in)
		if err != nil {
			t.Fatal(err)
		}
		if got != "x" {
			t.Errorf("got %q want x", got)
		}
	}
}

// TestDecodeLine checks the delimiter parity rule piece by piece.
func TestDecodeLine(t *testing.T) {
	table := map[string]string{"ab": "x", "cd": " "}
	cases := []struct {
		in, want string
		resolved int
	}{
		{"%ab%%cd%%ab%", "x x", 3},
		{"%ab%>%ab%", "x>x", 2},
		{"echo %PATH%", "echo %PATH%", 0},
		{"100% done", "100% done", 0},
		{"%ab%%", "x%", 1},
		{"a%%b", "a%%b", 0},
	}
	for _, c := range cases {
		got, resolved, _ := decodeLine(c.in, table)
		if got != c.want || resolved != c.resolved {
			t.Errorf("decodeLine(%q) = %q,%d want %q,%d", c.in, got, resolved, c.want, c.resolved)
		}
	}
}

// TestLooksLikeToken checks the unresolved-reference heuristic.
func TestLooksLikeToken(t *testing.T) {
	for in, want := range map[string]bool{"AB": true, "a b": false, "": false, "x>y": false, "~dp0": true} {
		if got := looksLikeToken(in); got != want {
			t.Errorf("looksLikeToken(%q) = %v", in, got)
		}
	}
}
