package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vvka-141/fstage/internal/config"
	"github.com/vvka-141/fstage/internal/dupes"
	"github.com/vvka-141/fstage/internal/fsio"
	"github.com/vvka-141/fstage/internal/logging"
	"github.com/vvka-141/fstage/internal/ui"
	"github.com/vvka-141/fstage/pkg/fstage"
)

var dupesCmd = &cobra.Command{
	Use:   "dupes <path>",
	Short: "Find duplicate files under a directory",
	Long: `Dupes digests every regular file under the given directory and prints
groups of files sharing the same content digest.

Two files with equal digests are reported as duplicates without a
byte-for-byte verification pass.

Examples:
  fstage dupes ./photos
  fstage dupes /var/data --on-error terminate`,
	Args: cobra.ExactArgs(1),
	RunE: runDupes,
}

var dupesFlags struct {
	onError string
}

func init() {
	rootCmd.AddCommand(dupesCmd)

	dupesCmd.Flags().StringVar(&dupesFlags.onError, "on-error", "",
		"Per-file I/O failure policy: rethrow|skip|terminate\n"+
			"(default: skip, so one unreadable file does not abort the scan)")
}

func runDupes(cmd *cobra.Command, args []string) error {
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

	finder := dupes.NewFinder(calc, fsys)
	if dupesFlags.onError != "" {
		policy, err := fstage.ParseErrorPolicy(dupesFlags.onError)
		if err != nil {
			return err
		}
		finder = dupes.NewFinderWithPolicy(calc, fsys, policy)
	}

	logger.Verbose("scanning %s for duplicates with %s", args[0], calc.Algorithm())
	groups, err := finder.Find(args[0])
	if err != nil {
		return fmt.Errorf("duplicate scan failed: %w", err)
	}

	// Each group appears once, keyed by its first path.
	seen := make(map[string]bool)
	var leaders []string
	for p, group := range groups {
		if len(group) < 2 || p != group[0] {
			continue
		}
		if !seen[p] {
			seen[p] = true
			leaders = append(leaders, p)
		}
	}
	sort.Strings(leaders)

	if len(leaders) == 0 {
		fmt.Fprintln(os.Stdout, "No duplicates found.")
		return nil
	}
	for _, leader := range leaders {
		fmt.Fprintf(os.Stdout, "%d identical files:\n", len(groups[leader]))
		for _, p := range groups[leader] {
			fmt.Fprintf(os.Stdout, "  %s %s\n", ui.SymbolBullet, p)
		}
	}
	fmt.Fprintf(os.Stdout, "%d duplicate group(s)\n", len(leaders))
	return nil
}
