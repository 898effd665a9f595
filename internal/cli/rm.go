package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cbout22/repofiles/internal/fileops"
	"github.com/cbout22/repofiles/internal/pathcheck"
)

// newRmCmd creates the `rm` command.
// Usage: repofiles rm <owner/repo> <path>... --yes
func newRmCmd() *cobra.Command {
	var branch string
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <owner/repo> <path>...",
		Short: "Delete files or folders from a repository",
		Long: `Deletes the given files or folders in a single commit: either the
branch advances to a tree without them, or nothing changes at all.

Example:
  repofiles rm octocat/hello old-drafts readme-draft.md --yes`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRm(cmd.Context(), args[0], args[1:], branch, yes)
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "main", "branch to operate on")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}

func runRm(ctx context.Context, repoArg string, paths []string, branch string, yes bool) error {
	repo, err := parseRepo(repoArg)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := pathcheck.ValidateRelPath(p); err != nil {
			return err
		}
	}
	if !yes {
		return fmt.Errorf("refusing to delete %d item(s) without --yes", len(paths))
	}

	engine, client, err := newEngine()
	if err != nil {
		return err
	}

	items := make([]fileops.Item, 0, len(paths))
	for _, p := range paths {
		info, err := client.Stat(ctx, repo.Owner, repo.Name, pathcheck.Normalize(p), branch)
		if err != nil {
			return fmt.Errorf("inspecting %s: %w", p, err)
		}
		items = append(items, fileops.Item{
			Path: pathcheck.Normalize(p),
			Type: fileops.ItemType(info.Type),
		})
	}

	result, err := engine.DeleteBatch(ctx, repo, branch, items)
	if err != nil {
		return fmt.Errorf("delete aborted, branch unchanged: %w", err)
	}

	if result.Deleted == 0 {
		fmt.Println("📋 Nothing to delete, the items are already absent.")
		return nil
	}
	fmt.Printf("✅ Deleted %d file(s) in one commit.\n", result.Deleted)
	return nil
}
