package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrTokenSpaceExhausted means no unused token fits the length bounds.
	ErrTokenSpaceExhausted = errors.New("token space exhausted")
	// ErrInvalidTokenBounds rejects min < 1 or max < min.
	ErrInvalidTokenBounds = errors.New("invalid token length bounds")
	// ErrAnchorNotFound means the input is not output of this encoder.
	ErrAnchorNotFound = errors.New("anchor not found")
	// ErrMalformedDefinition marks a definition line that could not be parsed.
	ErrMalformedDefinition = errors.New("malformed definition")
	// ErrUnrecognizedLine marks a body line that matched no known shape.
	ErrUnrecognizedLine = errors.New("unrecognized line")
	// ErrAmbiguousUserSyntax marks a source line that defines or uses
	// variables or labels and cannot be substituted.
	ErrAmbiguousUserSyntax = errors.New("ambiguous user syntax")
	// ErrAborted is returned when the caller declines to continue.
	ErrAborted = errors.New("obfuscation aborted")
)

// Anchor names one of the three preamble aliases.
type Anchor string

const (
	AnchorKeyword Anchor = "keyword"
	AnchorSpace   Anchor = "space"
	AnchorEquals  Anchor = "equals"
)

// AnchorError reports which preamble statement is missing.
type AnchorError struct {
	Anchor Anchor
}

func (e *AnchorError) Error() string {
	return fmt.Sprintf("%s alias: %v", e.Anchor, ErrAnchorNotFound)
}

func (e *AnchorError) Unwrap() error { return ErrAnchorNotFound }

// DefinitionError describes one unparseable definition line (1-based).
type DefinitionError struct {
	Line   int
	Text   string
	Reason string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("line %d: %v: %s", e.Line, ErrMalformedDefinition, e.Reason)
}

func (e *DefinitionError) Unwrap() error { return ErrMalformedDefinition }

// UnresolvedError records a reference to a token with no definition.
type UnresolvedError struct {
	Line  int
	Token string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("line %d: %v: unknown token %q kept literal", e.Line, ErrUnrecognizedLine, e.Token)
}

func (e *UnresolvedError) Unwrap() error { return ErrUnrecognizedLine }

// AmbiguousLineError is the first source line that had to stay opaque.
type AmbiguousLineError struct {
	Line int
	Text string
}

func (e *AmbiguousLineError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, ErrAmbiguousUserSyntax, e.Text)
}

func (e *AmbiguousLineError) Unwrap() error { return ErrAmbiguousUserSyntax }
