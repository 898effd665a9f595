package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cbout22/repofiles/internal/fileops"
	"github.com/cbout22/repofiles/internal/pathcheck"
)

// newMvCmd creates the `mv` command.
// Usage: repofiles mv <owner/repo> <source>... <destination>
func newMvCmd() *cobra.Command {
	var branch string

	cmd := &cobra.Command{
		Use:   "mv <owner/repo> <source>... <destination>",
		Short: "Move files or folders inside a repository",
		Long: `Moves the given files or folders to a destination folder inside the
same repository. The destination "" or "/" means the repository root.

Moves are copy-then-delete per file: a mid-batch failure leaves
already-moved files in place, never loses content.

Example:
  repofiles mv octocat/hello docs/old-notes.md archive`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMv(cmd.Context(), args[0], args[1:len(args)-1], args[len(args)-1], branch)
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "main", "branch to operate on")
	return cmd
}

func runMv(ctx context.Context, repoArg string, sources []string, dest, branch string) error {
	repo, err := parseRepo(repoArg)
	if err != nil {
		return err
	}
	for _, src := range sources {
		if err := pathcheck.ValidateRelPath(src); err != nil {
			return err
		}
	}
	dest = pathcheck.Normalize(dest)
	if dest != "" {
		if err := pathcheck.ValidateRelPath(dest); err != nil {
			return err
		}
	}

	engine, client, err := newEngine()
	if err != nil {
		return err
	}

	// Stat each source so we know whether it is a file or a folder.
	items := make([]fileops.Item, 0, len(sources))
	for _, src := range sources {
		info, err := client.Stat(ctx, repo.Owner, repo.Name, pathcheck.Normalize(src), branch)
		if err != nil {
			return fmt.Errorf("inspecting %s: %w", src, err)
		}
		items = append(items, fileops.Item{
			Path: pathcheck.Normalize(src),
			Type: fileops.ItemType(info.Type),
			SHA:  info.SHA,
		})
	}

	// Advisory pre-check, the same rules the engine enforces. Failing
	// here costs nothing; the engine re-verifies authoritatively.
	if check := precheck(items, dest); check.Invalid {
		return fmt.Errorf("invalid destination %q: %s", dest, check.Reason)
	}

	fmt.Printf("🔄 Moving %d item(s) to %q...\n\n", len(items), displayFolder(dest))

	result, err := engine.MoveBatch(ctx, repo, branch, items, dest)
	if result != nil {
		for _, d := range result.Details {
			if d.Status == string(fileops.StatusMoved) {
				fmt.Printf("  ✅ %s → %s\n", d.Src, d.Dest)
			} else {
				fmt.Printf("  ⏭️  %s (%s)\n", d.Src, d.Status)
			}
		}
	}
	if err != nil {
		return fmt.Errorf("move aborted (already-moved files stay moved): %w", err)
	}

	fmt.Printf("\n✅ Moved %d, skipped %d.\n", result.Moved, result.Skipped)
	return nil
}

// precheck runs the shared destination rules. The no-op rule only
// applies when every source lives in the same folder, mirroring the
// "current folder" a browsing UI would have.
func precheck(items []fileops.Item, dest string) pathcheck.Result {
	var dirs []string
	for _, it := range items {
		if it.Type == fileops.TypeDir {
			dirs = append(dirs, it.Path)
		}
	}

	folder, uniform := sharedFolder(items)
	if uniform {
		return pathcheck.Destination(dest, folder, dirs)
	}
	return pathcheck.DirCycle(dest, dirs)
}

// sharedFolder reports the containing folder common to all items, if any.
func sharedFolder(items []fileops.Item) (string, bool) {
	if len(items) == 0 {
		return "", false
	}
	folder := pathcheck.ContainingFolder(items[0].Path)
	for _, it := range items[1:] {
		if pathcheck.ContainingFolder(it.Path) != folder {
			return "", false
		}
	}
	return folder, true
}

// displayFolder renders the root folder the way the UI does.
func displayFolder(p string) string {
	if p == "" {
		return "Root"
	}
	return p
}
