package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vvka-141/fstage/pkg/fstage"
)

// ForcedApprover implements the Approver interface for forced (non-interactive)
// approval. It displays a countdown and automatically approves after the countdown,
// used when the --force flag is provided.
type ForcedApprover struct {
	verbose bool
	output  io.Writer
	sleepFn func(time.Duration)
}

// NewForcedApprover creates a new ForcedApprover.
func NewForcedApprover(verbose bool) fstage.Approver {
	return &ForcedApprover{
		verbose: verbose,
		output:  os.Stderr,
		sleepFn: time.Sleep,
	}
}

// RequestApproval displays a countdown and automatically approves after the countdown.
func (a *ForcedApprover) RequestApproval(ctx context.Context, rootPath string) (bool, error) {
	fmt.Fprintln(a.output)
	fmt.Fprintf(a.output, "⚠ DANGER: staged changes will be applied under '%s'\n", rootPath)
	fmt.Fprintln(a.output)

	countdownSeconds := int(fstage.DefaultForceApprovalCountdown.Seconds())
	for i := countdownSeconds; i > 0; i-- {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
			fmt.Fprintf(a.output, "\rApplying in: %d seconds... (Press Ctrl+C to cancel)", i)
			a.sleepFn(1 * time.Second)
		}
	}
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	fmt.Fprintf(a.output, "\r✓ Proceeding with staged changes...                              \n")
	return true, nil
}

// Verify ForcedApprover implements the Approver interface at compile time
var _ fstage.Approver = (*ForcedApprover)(nil)
