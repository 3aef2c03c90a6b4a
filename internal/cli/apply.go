package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/fstage/internal/fsio"
	"github.com/vvka-141/fstage/internal/logging"
	"github.com/vvka-141/fstage/internal/ui"
	"github.com/vvka-141/fstage/pkg/fstage"
)

var applyCmd = &cobra.Command{
	Use:   "apply <treefile>",
	Short: "Apply staged changes to the filesystem",
	Long: `Apply loads a staging file and commits its action queue against the
real filesystem, in order, after interactive approval.

Approval requires typing the root path of the affected subtree. With
--force the prompt is replaced by a countdown, for CI/CD pipelines.

If an action fails under the rethrow policy, apply stops immediately and
later actions are not executed; the subtree may be left partially
modified. Use 'fstage preview' first.

Examples:
  fstage apply staged.yaml
  fstage apply staged.yaml --force
  fstage apply staged.yaml --timeout 10m`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

var applyFlags struct {
	force   bool
	timeout time.Duration
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().BoolVar(&applyFlags.force, "force", false,
		"Skip the interactive approval prompt\n"+
			"Replaces it with a countdown; use for CI/CD pipelines")
	applyCmd.Flags().DurationVar(&applyFlags.timeout, "timeout", 3*time.Minute,
		"Catastrophic failure protection timeout (default 3m)\n"+
			"Prevents indefinite hangs on unresponsive filesystems\n"+
			"Examples: 30s, 5m, 1h30m")
}

func runApply(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)
	fsys := fsio.OS{}

	doc, queue, err := loadStaging(fsys, args[0])
	if err != nil {
		return err
	}
	if queue.Len() == 0 {
		logger.Info("nothing staged, nothing to apply")
		return nil
	}

	var approver fstage.Approver
	if applyFlags.force {
		approver = ui.NewForcedApprover(verbose)
	} else {
		approver = ui.NewInteractiveApprover(verbose)
	}

	ctx, cancel := context.WithTimeout(context.Background(), applyFlags.timeout)
	defer cancel()

	// Handle interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling apply...")
		cancel()
	}()

	approved, err := approver.RequestApproval(ctx, doc.Root)
	if err != nil {
		return fmt.Errorf("approval failed: %w", err)
	}
	if !approved {
		return fstage.ErrApprovalDenied
	}

	if err := queue.Apply(fsys, doc.Root, logger); err != nil {
		return err
	}
	logger.Info("applied %d staged action(s) under %s", queue.Len(), doc.Root)
	return nil
}
