// Command cogmemctl is an operator CLI for offline maintenance of a
// cogmem data directory: running a decay pass, reporting stats, and
// exporting/importing a scope's documents. It talks to the Go API
// directly; no RPC surface is involved.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "cogmemctl",
		Short: "Operator CLI for a cogmem memory store",
	}

	root.PersistentFlags().String("scope", "project", "scope to operate on: project or user")
	root.PersistentFlags().String("data-dir", "", "override the scope's data directory")

	root.AddCommand(newDecayCommand())
	root.AddCommand(newStatsCommand())
	root.AddCommand(newCheckpointsCommand())
	root.AddCommand(newExportCommand())
	root.AddCommand(newImportCommand())

	return root
}
