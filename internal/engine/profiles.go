package engine

import (
	"fmt"
	"sort"
	"strings"
)

// profile is a token-length preset. Longer tokens mean more noise per
// character and longer lines; cmd.exe stops reading a line at 8191
// characters, so the large presets only suit short commands.
type profile struct {
	min, max     int
	fullAlphabet bool
	desc         string
}

var profiles = map[string]profile{
	"default":  {min: DefaultMinTokenLen, max: DefaultMaxTokenLen, desc: "7..109 letters per token"},
	"tight":    {min: 4, max: 12, desc: "short tokens for long scripts"},
	"noisy":    {min: 64, max: 255, desc: "long tokens, short commands only"},
	"paranoid": {min: 128, max: 512, fullAlphabet: true, desc: "very long tokens and the full alphabet"},
}

// ProfileNames lists the presets in a stable order.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// applyProfileDefaults fills token bounds the user did not set from the
// named preset.
func applyProfileDefaults(opts *Options) error {
	name := strings.ToLower(strings.TrimSpace(opts.Profile))
	if name == "" {
		return nil
	}
	p, ok := profiles[name]
	if !ok {
		return fmt.Errorf("invalid --profile: %s (%s)", opts.Profile, strings.Join(ProfileNames(), "|"))
	}
	if opts.MinTokenLen == 0 {
		opts.MinTokenLen = p.min
	}
	if opts.MaxTokenLen == 0 {
		opts.MaxTokenLen = p.max
	}
	if p.fullAlphabet {
		opts.FullAlphabet = true
	}
	return nil
}

// recommendProfile picks a preset so the longest encoded line should stay
// under the cmd.exe limit.
func recommendProfile(longestLine int) string {
	for _, name := range []string{"noisy", "default", "tight"} {
		p := profiles[name]
		// each character costs a reference of average token length plus two delimiters
		if longestLine*((p.min+p.max)/2+2) < MaxLineLen {
			return name
		}
	}
	return "tight"
}
