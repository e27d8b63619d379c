package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cogmem/internal/config"
	"cogmem/internal/persistence"
)

func newCheckpointsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "checkpoints",
		Short: "List recorded consistency checkpoints for a scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			dataDir, scope, err := resolveDataDir(cmd, cfg)
			if err != nil {
				return err
			}

			store, err := persistence.NewCheckpointStore(filepath.Join(dataDir, checkpointFile))
			if err != nil {
				return err
			}
			defer store.Close()

			history, err := store.History(limit)
			if err != nil {
				return err
			}

			headerColor := color.New(color.FgCyan, color.Bold)
			headerColor.Fprintf(cmd.OutOrStdout(), "cogmem checkpoints for scope %q\n", scope)
			if len(history) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "  no checkpoints recorded yet")
				return nil
			}
			for _, cp := range history {
				takenAt := time.UnixMilli(cp.TakenAt).UTC().Format(time.RFC3339)
				fmt.Fprintf(cmd.OutOrStdout(), "  #%-4d %s  memories=%d facts=%d edges=%d\n",
					cp.ID, takenAt, cp.MemoryCount, cp.FactCount, cp.EdgeCount)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of checkpoints to list, newest first")
	return cmd
}
