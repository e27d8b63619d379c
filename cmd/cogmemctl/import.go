package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cogmem/internal/config"
	"cogmem/internal/persistence"
)

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <archive>",
		Short: "Restore a scope's data directory from a tar.gz export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			dataDir, scope, err := resolveDataDir(cmd, cfg)
			if err != nil {
				return err
			}

			mgr := persistence.NewExportManager("")
			restored, err := mgr.Import(args[0], dataDir)
			if err != nil {
				return err
			}

			successColor := color.New(color.FgGreen, color.Bold)
			successColor.Fprintf(cmd.OutOrStdout(), "imported scope %q\n", scope)
			fmt.Fprintf(cmd.OutOrStdout(), "  files restored: %d\n", restored)
			fmt.Fprintf(cmd.OutOrStdout(), "  into:            %s\n", dataDir)
			return nil
		},
	}
}
