package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vvka-141/fstage/internal/actions"
	"github.com/vvka-141/fstage/internal/config"
	"github.com/vvka-141/fstage/internal/fsio"
	"github.com/vvka-141/fstage/internal/logging"
	"github.com/vvka-141/fstage/internal/pathtree"
	"github.com/vvka-141/fstage/internal/treefile"
	"github.com/vvka-141/fstage/pkg/fstage"
)

var previewCmd = &cobra.Command{
	Use:   "preview <treefile>",
	Short: "Preview staged changes without touching the filesystem",
	Long: `Preview loads a staging file, projects its action queue onto an
in-memory copy of the tree, and prints the tree as it would look after
apply. The real filesystem is never modified.

The tree is scanned from the staging file's root path; if that path does
not exist yet, the tree declared in the staging file is used instead.

Examples:
  fstage preview staged.yaml
  fstage preview staged.yaml -v`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

// loadStaging loads a staging document and materializes its action queue,
// with option defaults taken from project config next to the file.
func loadStaging(fsys fsio.FS, path string) (*treefile.Document, *actions.Queue, error) {
	doc, err := treefile.Load(fsys, filepath.ToSlash(path))
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.LoadWithOverrides(filepath.Dir(path))
	if err != nil {
		return nil, nil, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, nil, err
	}

	queue, err := doc.Queue(treefile.Defaults{
		Policy:      policy,
		FollowLinks: cfg.FollowLinks,
		Overwrite:   cfg.Overwrite,
	})
	if err != nil {
		return nil, nil, err
	}
	return doc, queue, nil
}

// stagingTree resolves the tree a staging document operates on: the scanned
// root when it exists on disk, the declared tree otherwise.
func stagingTree(fsys fsio.FS, doc *treefile.Document, logger fstage.Logger) (*pathtree.Node, error) {
	root, err := pathtree.Scan(fsys, doc.Root)
	if err == nil {
		return root, nil
	}
	if !errors.Is(err, fstage.ErrNotFound) {
		return nil, err
	}
	logger.Verbose("root %s does not exist yet, using declared tree", doc.Root)
	return doc.Tree()
}

func runPreview(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewConsoleLogger(verbose)
	fsys := fsio.OS{}

	doc, queue, err := loadStaging(fsys, args[0])
	if err != nil {
		return err
	}
	root, err := stagingTree(fsys, doc, logger)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	logger.Verbose("projecting %d staged action(s) onto %s", queue.Len(), root.Path())
	for i, a := range queue.Actions() {
		logger.Verbose("  %d. %s", i+1, a)
	}

	renderTree(os.Stdout, queue.Preview(root))
	fmt.Fprintf(os.Stdout, "%d staged action(s); nothing applied\n", queue.Len())
	return nil
}
