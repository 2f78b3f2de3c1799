package engine

import (
	"os"

	"golang.org/x/term"
)

// Terminal colors. init clears them when NO_COLOR is set, TERM is dumb or
// stderr is not a terminal, so redirected output stays plain.
var (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
	Gray   = "\033[90m"
)

func init() {
	if colorEnabled() {
		return
	}
	for _, c := range []*string{&Reset, &Bold, &Red, &Green, &Yellow, &Cyan, &Gray} {
		*c = ""
	}
}

func colorEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}
