package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vvka-141/fstage/internal/fsio"
	"github.com/vvka-141/fstage/internal/logging"
	"github.com/vvka-141/fstage/internal/pathtree"
)

var treeCmd = &cobra.Command{
	Use:   "tree <path>",
	Short: "Print the path tree of a directory",
	Long: `Tree scans a directory into an in-memory path tree and prints it.

The listing never follows symlinks; links are shown with their targets.

Examples:
  fstage tree ./photos
  fstage tree /var/data -v`,
	Args: cobra.ExactArgs(1),
	RunE: runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)

	root, err := pathtree.Scan(fsio.OS{}, args[0])
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	logger.Verbose("scanned %d entries under %s", len(root.Descendants()), root.Path())
	renderTree(os.Stdout, root)
	return nil
}
