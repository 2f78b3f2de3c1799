package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

// Confirmer asks whether an encode may continue after a warning.
type Confirmer interface {
	Confirm(warning string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(warning string) (bool, error)

func (f ConfirmFunc) Confirm(warning string) (bool, error) { return f(warning) }

// TerminalConfirmer prompts on the controlling terminal. Without a
// terminal on stdin it declines, so piped runs never hang.
type TerminalConfirmer struct {
	Stderr io.Writer
}

func (c TerminalConfirmer) Confirm(warning string) (bool, error) {
	stderr := c.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	fmt.Fprintf(stderr, "\n%s[!]--> WARNING:%s %s\n", Yellow, Reset, warning)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(stderr, "%sstdin is not a terminal; re-run with --yes to keep these lines.%s\n", Gray, Reset)
		return false, nil
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "\nContinue Anyway? [Y/N] ~> ",
		Stdout: stderr,
	})
	if err != nil {
		return false, err
	}
	defer rl.Close()
	answer, err := rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return parseYes(answer), nil
}

func parseYes(answer string) bool {
	return strings.Contains(strings.ToLower(answer), "y")
}
