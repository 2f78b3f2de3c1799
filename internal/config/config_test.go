package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCue(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	first := writeCue(t, dir, "a.cue", `
min_token_length: 4
profile: "tight"
warn: false
`)
	second := writeCue(t, dir, "b.cue", `
min_token_length: 9
max_token_length: 20
log_file: "/tmp/obfusbat.log"
`)
	f, err := Load([]string{first, second})
	if err != nil {
		t.Fatal(err)
	}
	if f.MinTokenLength == nil || *f.MinTokenLength != 4 {
		t.Fatalf("min: got %v", f.MinTokenLength)
	}
	if f.MaxTokenLength == nil || *f.MaxTokenLength != 20 {
		t.Fatalf("max: got %v", f.MaxTokenLength)
	}
	if f.Profile == nil || *f.Profile != "tight" {
		t.Fatalf("profile: got %v", f.Profile)
	}
	if f.Warn == nil || *f.Warn {
		t.Fatalf("warn: got %v", f.Warn)
	}
	if f.LogFile == nil || *f.LogFile != "/tmp/obfusbat.log" {
		t.Fatalf("log_file: got %v", f.LogFile)
	}
	if f.EchoOff != nil || f.Journal != nil || f.EncodeOutput != nil {
		t.Fatal("unset keys must stay nil")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"unknown.cue": `colour: "red"`,
		"range.cue":   `min_token_length: 0`,
		"enum.cue":    `profile: "loud"`,
		"syntax.cue":  `min_token_length: `,
	} {
		if _, err := Load([]string{writeCue(t, dir, name, content)}); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	if _, err := Load([]string{filepath.Join(dir, "missing.cue")}); err == nil {
		t.Error("missing file: expected error")
	}
}

func TestLoadEmpty(t *testing.T) {
	f, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.MinTokenLength != nil || f.Profile != nil {
		t.Fatal("no files means no values")
	}
}

func TestLoaderAssignFirst(t *testing.T) {
	dir := t.TempDir()
	p := writeCue(t, dir, "c.cue", `decode_output: "clean.bat"`)
	loader := NewLoader([]string{p}, Schema())

	var s string
	if err := loader.AssignFirst("decode_output", &s); err != nil {
		t.Fatal(err)
	}
	if s != "clean.bat" {
		t.Fatalf("got %q", s)
	}
	if err := loader.AssignFirst("encode_output", &s); !errors.Is(err, ErrValueNotFound) {
		t.Fatalf("got %v", err)
	}
	paths, err := loader.Paths()
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != p {
		t.Fatalf("got %v", paths)
	}
}

func TestDiscover(t *testing.T) {
	if got := Discover("/explicit.cue"); len(got) != 1 || got[0] != "/explicit.cue" {
		t.Fatalf("got %v", got)
	}
	dir := t.TempDir()
	want := writeCue(t, dir, "obfusbat.cue", `echo_off: true`)
	t.Chdir(dir)
	got := Discover("")
	if len(got) == 0 || got[0] != want {
		t.Fatalf("got %v, want %s first", got, want)
	}
}
