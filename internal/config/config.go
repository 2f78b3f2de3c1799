// Package config resolves obfusbat settings from CUE files.
package config

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"
)

//go:embed schema.cue
var schema string

// Schema returns the embedded CUE schema.
func Schema() string { return schema }

var fileNames = []string{"obfusbat.cue", ".obfusbat.cue"}

// File is the settings a config file may carry. Nil means unset.
type File struct {
	MinTokenLength *int
	MaxTokenLength *int
	EchoOff        *bool
	Warn           *bool
	FullAlphabet   *bool
	Profile        *string
	LogLevel       *string
	LogFile        *string
	Journal        *bool
	Report         *string
	EncodeOutput   *string
	DecodeOutput   *string
}

// Discover lists existing config files: explicit first when given,
// otherwise the working directory, the user config dir and /etc.
func Discover(explicit string) []string {
	if explicit != "" {
		return []string{explicit}
	}
	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, dir)
	}
	dirs = append(dirs, "/etc")

	var paths []string
	for _, dir := range dirs {
		for _, name := range fileNames {
			p := filepath.Join(dir, name)
			if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
				paths = append(paths, p)
			}
		}
	}
	return paths
}

// Load reads every key from the first file in paths that sets it.
func Load(paths []string) (File, error) {
	var f File
	if len(paths) == 0 {
		return f, nil
	}
	l := NewLoader(paths, schema)
	if _, err := l.Paths(); err != nil {
		return f, err
	}
	for _, field := range []struct {
		path string
		dst  any
	}{
		{"min_token_length", &f.MinTokenLength},
		{"max_token_length", &f.MaxTokenLength},
		{"echo_off", &f.EchoOff},
		{"warn", &f.Warn},
		{"full_alphabet", &f.FullAlphabet},
		{"profile", &f.Profile},
		{"log_level", &f.LogLevel},
		{"log_file", &f.LogFile},
		{"journal", &f.Journal},
		{"report", &f.Report},
		{"encode_output", &f.EncodeOutput},
		{"decode_output", &f.DecodeOutput},
	} {
		if err := assignOptional(l, field.path, field.dst); err != nil {
			return f, err
		}
	}
	return f, nil
}

// assignOptional decodes into a **T, allocating only when the key exists.
func assignOptional(l Loader, path string, dst any) error {
	switch p := dst.(type) {
	case **int:
		return assign(l, path, p)
	case **bool:
		return assign(l, path, p)
	case **string:
		return assign(l, path, p)
	}
	return errors.New("config: unsupported field type for " + path)
}

func assign[T any](l Loader, path string, dst **T) error {
	var v T
	err := l.AssignFirst(path, &v)
	if errors.Is(err, ErrValueNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	*dst = &v
	return nil
}
