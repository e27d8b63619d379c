package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cogmem/internal/config"
	"cogmem/internal/persistence"
)

func newExportCommand() *cobra.Command {
	var exportDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Archive a scope's data directory into a tar.gz export",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			dataDir, scope, err := resolveDataDir(cmd, cfg)
			if err != nil {
				return err
			}

			mgr := persistence.NewExportManager(exportDir)
			metadata, err := mgr.Export(dataDir, string(scope))
			if err != nil {
				return err
			}

			successColor := color.New(color.FgGreen, color.Bold)
			successColor.Fprintf(cmd.OutOrStdout(), "exported scope %q\n", scope)
			fmt.Fprintf(cmd.OutOrStdout(), "  files:  %d\n", metadata.FileCount)
			fmt.Fprintf(cmd.OutOrStdout(), "  size:   %d bytes\n", metadata.Size)
			fmt.Fprintf(cmd.OutOrStdout(), "  to:     %s\n", exportDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&exportDir, "export-dir", "./cogmem-exports", "directory to write the archive and its metadata into")
	return cmd
}
