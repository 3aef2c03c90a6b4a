// Package logging implements fstage.Logger for the CLI: a stderr console
// logger and a silent one. Command output proper (trees, diff sets) goes to
// stdout elsewhere; everything here is commentary and stays on stderr.
package logging

import (
	"fmt"
	"os"
	"sync"
)

// ConsoleLogger writes to stderr, one line per call. Verbose lines are
// emitted only when enabled at construction. Safe for concurrent use.
type ConsoleLogger struct {
	verbose bool
	mu      sync.Mutex
}

// NewConsoleLogger returns a logger whose Verbose method is a no-op unless
// verbose is true.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return &ConsoleLogger{verbose: verbose}
}

// print holds the mutex for the whole line so concurrent callers cannot
// interleave output.
func (l *ConsoleLogger) print(prefix, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, prefix+format+"\n", args...)
		return
	}
	fmt.Fprint(os.Stderr, prefix+format+"\n")
}

// Verbose logs diagnostic detail, gated by the verbose flag.
func (l *ConsoleLogger) Verbose(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.print("[VERBOSE] ", format, args)
}

// Info logs normal progress messages.
func (l *ConsoleLogger) Info(format string, args ...interface{}) {
	l.print("", format, args)
}

// Error logs failures.
func (l *ConsoleLogger) Error(format string, args ...interface{}) {
	l.print("[ERROR] ", format, args)
}
