package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/fstage/internal/config"
	"github.com/vvka-141/fstage/internal/fsio"
	"github.com/vvka-141/fstage/internal/logging"
	"github.com/vvka-141/fstage/internal/pathtree"
	"github.com/vvka-141/fstage/internal/treediff"
	"github.com/vvka-141/fstage/pkg/fstage"
)

var diffCmd = &cobra.Command{
	Use:   "diff <left> <right>",
	Short: "Compare two directory trees",
	Long: `Diff scans two directories and classifies their relative paths:
entries present on one side only, and common entries split by content
(same/different) and by modification time (left-newer/right-newer).

Content comparison digests file bytes with the configured algorithm
(fstage.yaml 'digest', or FSTAGE_DIGEST; default sha-256).

Examples:
  fstage diff ./backup ./live
  fstage diff ./a ./b --on-error skip`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

var diffFlags struct {
	onError string
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().StringVar(&diffFlags.onError, "on-error", "",
		"Per-path I/O failure policy: rethrow|skip|terminate\n"+
			"(default: skip, so one unreadable file does not abort the comparison)")
}

func runDiff(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)
	fsys := fsio.OS{}

	cfg, err := config.LoadWithOverrides(args[0])
	if err != nil {
		return err
	}
	calc, err := cfg.Calculator()
	if err != nil {
		return err
	}

	opts := treediff.Options{}
	if diffFlags.onError != "" {
		policy, err := fstage.ParseErrorPolicy(diffFlags.onError)
		if err != nil {
			return err
		}
		opts = treediff.WithPolicy(policy)
	}

	left, err := pathtree.Scan(fsys, args[0])
	if err != nil {
		return fmt.Errorf("scan of left tree failed: %w", err)
	}
	right, err := pathtree.Scan(fsys, args[1])
	if err != nil {
		return fmt.Errorf("scan of right tree failed: %w", err)
	}

	logger.Verbose("comparing %s (%d entries) against %s (%d entries)",
		left.Path(), len(left.Descendants()), right.Path(), len(right.Descendants()))

	res, err := treediff.Diff(fsys, calc, left, right, opts)
	if err != nil {
		return fmt.Errorf("diff failed: %w", err)
	}

	renderPathSet(os.Stdout, "Only in "+left.Path(), res.LeftOnly.Sorted())
	renderPathSet(os.Stdout, "Only in "+right.Path(), res.RightOnly.Sorted())
	renderPathSet(os.Stdout, "Different", res.Different.Sorted())
	if verbose {
		renderPathSet(os.Stdout, "Same", res.Same.Sorted())
		renderPathSet(os.Stdout, "Left newer", res.LeftNewer.Sorted())
		renderPathSet(os.Stdout, "Right newer", res.RightNewer.Sorted())
	}
	fmt.Fprintf(os.Stdout, "%d common, %d left-only, %d right-only, %d different\n",
		len(res.Common), len(res.LeftOnly), len(res.RightOnly), len(res.Different))
	return nil
}
