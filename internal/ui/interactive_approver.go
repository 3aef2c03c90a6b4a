package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vvka-141/fstage/pkg/fstage"
)

// InteractiveApprover implements the Approver interface for console-based
// interactive confirmation. It prompts the user to type the root path of the
// affected subtree to confirm destructive operations.
type InteractiveApprover struct {
	verbose bool
	input   io.Reader
	output  io.Writer
}

// NewInteractiveApprover creates a new InteractiveApprover.
func NewInteractiveApprover(verbose bool) fstage.Approver {
	return &InteractiveApprover{
		verbose: verbose,
		input:   os.Stdin,
		output:  os.Stderr,
	}
}

// RequestApproval prompts the user to type the root path to confirm.
// At a real terminal the prompt is a bubbletea input; with piped or injected
// stdin it falls back to a plain line read.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, rootPath string) (bool, error) {
	if a.input != os.Stdin || !IsInteractive() {
		return a.requestPlain(ctx, rootPath)
	}

	program := tea.NewProgram(newConfirmModel(rootPath), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	final, err := program.Run()
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, fmt.Errorf("approval prompt failed: %w", err)
	}

	m, ok := final.(confirmModel)
	if !ok || m.cancelled {
		fmt.Fprintln(a.output, ErrorStyle.Render(SymbolCross+" Operation cancelled."))
		return false, nil
	}
	if !m.confirmed {
		fmt.Fprintf(a.output, "%s Input does not match root path '%s'. Operation cancelled.\n", SymbolCross, rootPath)
		return false, nil
	}
	fmt.Fprintln(a.output, SuccessStyle.Render(SymbolCheck+" Confirmed. Applying staged changes..."))
	return true, nil
}

// requestPlain is the non-TUI path used for piped stdin.
func (a *InteractiveApprover) requestPlain(ctx context.Context, rootPath string) (bool, error) {
	fmt.Fprintf(a.output, "\n⚠ WARNING: You are about to modify the filesystem under '%s'\n", rootPath)
	fmt.Fprintln(a.output, "Applied changes may permanently delete files in this subtree!")
	fmt.Fprintf(a.output, "To confirm, type the root path '%s' and press Enter: ", rootPath)

	// Read user input with context cancellation support
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(a.input)
		input, err := reader.ReadString('\n')
		if err != nil {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		if input == rootPath {
			fmt.Fprintln(a.output, "✓ Confirmed. Applying staged changes...")
			return true, nil
		}
		fmt.Fprintf(a.output, "✗ Input '%s' does not match root path '%s'. Operation cancelled.\n", input, rootPath)
		return false, nil
	}
}

// Verify InteractiveApprover implements the Approver interface at compile time
var _ fstage.Approver = (*InteractiveApprover)(nil)
