package engine

import (
	"github.com/samber/lo"
)

// Alphabet maps every Extended character to its token, or to the
// character itself for PassThrough characters. It is read-only once built.
type Alphabet struct {
	entries map[rune]string
}

// BuildAlphabet walks Extended in enumeration order and draws one token per
// Substitutable character from g.
func BuildAlphabet(g *TokenGenerator) (*Alphabet, error) {
	a := &Alphabet{entries: make(map[rune]string, len(Extended))}
	for _, r := range Extended {
		if Classify(r) == PassThrough {
			a.entries[r] = string(r)
			continue
		}
		tok, err := g.Generate()
		if err != nil {
			return nil, err
		}
		a.entries[r] = tok
	}
	return a, nil
}

// Lookup returns the entry for r. ok is false outside the Extended set.
func (a *Alphabet) Lookup(r rune) (string, bool) {
	v, ok := a.entries[r]
	return v, ok
}

// Len is the number of entries (always len(Extended)).
func (a *Alphabet) Len() int { return len(a.entries) }

// Tokens returns the Substitutable tokens in enumeration order.
func (a *Alphabet) Tokens() []string {
	return lo.Map(SubstitutableChars, func(r rune, _ int) string { return a.entries[r] })
}
