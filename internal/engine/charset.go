package engine

import (
	"github.com/samber/lo"
)

// Class is the substitution class of a character.
type Class int

const (
	// Substitutable characters are aliased by a generated token.
	Substitutable Class = iota
	// PassThrough characters stay literal: they either delimit a token
	// reference or break cmd.exe parsing when wrapped in one.
	PassThrough
)

func (c Class) String() string {
	if c == PassThrough {
		return "passthrough"
	}
	return "substitutable"
}

// Delimiter marks a token reference (%name%).
const Delimiter = '%'

// Extended is the full printable set in its fixed enumeration order:
// letters, digits, punctuation, space and the two line terminators.
var Extended = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~" +
	" \n\r")

// Letters is the token alphabet.
var Letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// PassThroughChars are copied literally and never substituted.
var PassThroughChars = []rune{'<', '>', '|', Delimiter, '^', '&', '\n', '\r'}

var (
	extendedSet    = lo.SliceToMap(Extended, func(r rune) (rune, struct{}) { return r, struct{}{} })
	passThroughSet = lo.SliceToMap(PassThroughChars, func(r rune) (rune, struct{}) { return r, struct{}{} })

	// SubstitutableChars is Extended minus PassThroughChars, in enumeration order.
	SubstitutableChars = lo.Without(Extended, PassThroughChars...)
)

// IsExtended reports whether r belongs to the Extended set. Characters
// outside it are copied through verbatim without an Alphabet lookup.
func IsExtended(r rune) bool {
	_, ok := extendedSet[r]
	return ok
}

// Classify returns the class of r. Membership is data only; the result
// never depends on context.
func Classify(r rune) Class {
	if _, ok := passThroughSet[r]; ok {
		return PassThrough
	}
	return Substitutable
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func containsPassThrough(s string) bool {
	for _, r := range s {
		if Classify(r) == PassThrough {
			return true
		}
	}
	return false
}
