package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

// NewRootCmd creates the top-level `repofiles` command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "repofiles",
		Short: "Move, delete and browse files in GitHub repositories",
		Long: `repofiles manages files inside a remote GitHub repository through the
REST API: batch moves, atomic batch deletes and folder listings. Run it
as a one-shot CLI against your own repositories, or start the HTTP
service with 'repofiles serve'.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMvCmd())
	root.AddCommand(newRmCmd())
	root.AddCommand(newFoldersCmd())

	return root
}

// Execute runs the root command.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
