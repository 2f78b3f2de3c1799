package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

var ErrValueNotFound = errors.New("value not found")

// Loader compiles CUE files lazily, once, and validates each against a
// closed schema.
type Loader struct {
	getRoots func() ([]rootInfo, error)
}

type rootInfo struct {
	value cue.Value
	path  string
}

func NewLoader(filePaths []string, schemaSrc string) Loader {
	return Loader{
		getRoots: sync.OnceValues(func() (ret []rootInfo, err error) {
			ctx := cuecontext.New()
			var schema cue.Value
			if schemaSrc != "" {
				schema = ctx.CompileString("close({" + schemaSrc + "})")
				if err := schema.Err(); err != nil {
					return nil, fmt.Errorf("config schema: %w", err)
				}
			}
			for _, filePath := range filePaths {
				content, err := os.ReadFile(filePath)
				if err != nil {
					return nil, fmt.Errorf("read config %s: %w", filePath, err)
				}
				value := ctx.CompileBytes(content, cue.Filename(filePath))
				if err := value.Err(); err != nil {
					return nil, fmt.Errorf("parse config %s: %w", filePath, err)
				}
				if schema.Exists() {
					if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
						return nil, fmt.Errorf("validate config %s: %w", filePath, err)
					}
				}
				ret = append(ret, rootInfo{value: value, path: filePath})
			}
			return
		}),
	}
}

// Paths returns the files that compiled successfully.
func (l Loader) Paths() ([]string, error) {
	roots, err := l.getRoots()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(roots))
	for _, r := range roots {
		paths = append(paths, r.path)
	}
	return paths, nil
}

// AssignFirst decodes the value at path from the first file defining it.
func (l Loader) AssignFirst(path string, target any) error {
	roots, err := l.getRoots()
	if err != nil {
		return err
	}
	cuePath := cue.ParsePath(path)
	for _, info := range roots {
		value := info.value.LookupPath(cuePath)
		if !value.Exists() || value.Err() != nil {
			continue
		}
		if err := value.Decode(target); err != nil {
			return fmt.Errorf("config %s: %s: %w", info.path, path, err)
		}
		return nil
	}
	return ErrValueNotFound
}
