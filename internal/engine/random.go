package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	mathrand "math/rand"
	"time"
)

const (
	DefaultMinTokenLen = 7
	DefaultMaxTokenLen = 109

	// maxDraws bounds the retries for one token once the space is not yet
	// full. Only a nearly saturated space ever gets close to it.
	maxDraws = 1 << 16
)

// InitRNG initializes the RNG. In deterministic mode (seeded=true) uses *seedOpt.
// In random mode, generates a seed (crypto/rand or time) and writes it to *seedOpt for reproducibility.
func InitRNG(seedOpt *int64, seeded bool) *mathrand.Rand {
	if seeded && seedOpt != nil {
		return mathrand.New(mathrand.NewSource(*seedOpt))
	}
	var seed int64
	var b [8]byte
	if _, err := crand.Read(b[:]); err == nil {
		seed = int64(binary.LittleEndian.Uint64(b[:]))
	} else {
		seed = time.Now().UnixNano()
	}
	if seedOpt != nil {
		*seedOpt = seed
	}
	return mathrand.New(mathrand.NewSource(seed))
}

// ValidateBounds checks a token length range.
func ValidateBounds(min, max int) error {
	if min < 1 || max < min {
		return fmt.Errorf("%w: min=%d max=%d (need 1 <= min <= max)", ErrInvalidTokenBounds, min, max)
	}
	return nil
}

// TokenGenerator issues letter-only tokens with lengths in [min,max] that
// never repeat within one run. It owns the used set; one generator serves
// exactly one encode operation and is not safe for concurrent use.
type TokenGenerator struct {
	rng      *mathrand.Rand
	min, max int
	used     map[string]struct{}
	capacity int
	taken    int // entries of used whose length is in [min,max]
}

// NewTokenGenerator returns a generator with the reserved cmd.exe names
// already marked as used.
func NewTokenGenerator(r *mathrand.Rand, min, max int) (*TokenGenerator, error) {
	if err := ValidateBounds(min, max); err != nil {
		return nil, err
	}
	g := &TokenGenerator{
		rng:      r,
		min:      min,
		max:      max,
		used:     make(map[string]struct{}, 128),
		capacity: tokenSpace(min, max),
	}
	for _, name := range reservedNames {
		g.markUsed(name)
	}
	return g, nil
}

// Generate draws a length uniformly from [min,max], then that many letters,
// retrying until the token is unused. The accepted token is recorded
// before it is returned.
func (g *TokenGenerator) Generate() (string, error) {
	if g.taken >= g.capacity {
		return "", fmt.Errorf("%w: all %d tokens of length %d..%d issued", ErrTokenSpaceExhausted, g.capacity, g.min, g.max)
	}
	buf := make([]rune, g.max)
	for range maxDraws {
		n := g.min + g.rng.Intn(g.max-g.min+1)
		for i := 0; i < n; i++ {
			buf[i] = Letters[g.rng.Intn(len(Letters))]
		}
		tok := string(buf[:n])
		if g.Used(tok) {
			continue
		}
		g.markUsed(tok)
		return tok, nil
	}
	return "", fmt.Errorf("%w: no unused token after %d draws (length %d..%d)", ErrTokenSpaceExhausted, maxDraws, g.min, g.max)
}

// Used reports whether tok (case-insensitively) was already issued or reserved.
func (g *TokenGenerator) Used(tok string) bool {
	_, ok := g.used[tokenKey(tok)]
	return ok
}

// Issued returns the number of tokens handed out, reserved names excluded.
func (g *TokenGenerator) Issued() int {
	return len(g.used) - len(reservedNames)
}

func (g *TokenGenerator) markUsed(tok string) {
	k := tokenKey(tok)
	if _, ok := g.used[k]; ok {
		return
	}
	g.used[k] = struct{}{}
	if n := len(k); n >= g.min && n <= g.max {
		g.taken++
	}
}

// tokenSpace counts case-folded letter strings with length in [min,max],
// saturating at math.MaxInt.
func tokenSpace(min, max int) int {
	total, pow := 0, 1
	for l := 1; l <= max; l++ {
		if pow > math.MaxInt/26 {
			return math.MaxInt
		}
		pow *= 26
		if l < min {
			continue
		}
		if total > math.MaxInt-pow {
			return math.MaxInt
		}
		total += pow
	}
	return total
}
