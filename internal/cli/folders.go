package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// newFoldersCmd creates the `folders` command.
// Usage: repofiles folders <owner/repo> [--ref main]
func newFoldersCmd() *cobra.Command {
	var ref string

	cmd := &cobra.Command{
		Use:   "folders <owner/repo>",
		Short: "List the folders of a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFolders(cmd.Context(), args[0], ref)
		},
	}

	cmd.Flags().StringVar(&ref, "ref", "main", "branch to list")
	return cmd
}

func runFolders(ctx context.Context, repoArg, ref string) error {
	repo, err := parseRepo(repoArg)
	if err != nil {
		return err
	}

	engine, _, err := newEngine()
	if err != nil {
		return err
	}

	folders, truncated, err := engine.ListFolders(ctx, repo, ref)
	if err != nil {
		return err
	}

	fmt.Println("📁 Root")
	for _, f := range folders {
		fmt.Printf("📁 %s\n", f)
	}
	if truncated {
		fmt.Println("\n⚠️  The listing was truncated by GitHub; some folders may be missing.")
	}
	return nil
}
