package ui

import (
	"os"

	"golang.org/x/term"
)

// Mode says whether fstage may prompt and render interactive UI.
type Mode int

const (
	// ModeNonInteractive: piped stdio, CI, or an explicit opt-out. Prompts
	// fall back to plain line input.
	ModeNonInteractive Mode = iota
	// ModeInteractive: a human on a real terminal.
	ModeInteractive
)

// Environment variables that force non-interactive mode when set.
// FSTAGE_NON_INTERACTIVE must be "1"; for the others any value counts.
var nonInteractiveEnv = []string{"CI", "NO_COLOR"}

// DetectMode decides the interaction mode from the environment and from
// whether both stdin and stdout are terminals. Opt-outs win over terminal
// detection, so a CI job on a pty still gets plain output.
func DetectMode() Mode {
	if os.Getenv("FSTAGE_NON_INTERACTIVE") == "1" {
		return ModeNonInteractive
	}
	for _, key := range nonInteractiveEnv {
		if os.Getenv(key) != "" {
			return ModeNonInteractive
		}
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return ModeNonInteractive
	}
	return ModeInteractive
}

// IsInteractive reports whether DetectMode returns ModeInteractive.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
