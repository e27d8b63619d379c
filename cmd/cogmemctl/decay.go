package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cogmem/internal/config"
	"cogmem/internal/logging"
	"cogmem/internal/memorycore"
	"cogmem/internal/types"
)

func newDecayCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "decay",
		Short: "Run a batch decay pass over a scope's memories and facts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			logging.Configure(cfg.Logging.Level, cfg.Logging.Format)
			dataDir, scope, err := resolveDataDir(cmd, cfg)
			if err != nil {
				return err
			}

			core, _, err := openCore(cmd.Context(), dataDir, cfg)
			if err != nil {
				return err
			}

			runPass := func() error {
				result := core.ApplyDecay()
				if err := recordCheckpoint(dataDir, core); err != nil {
					logging.Warn("checkpoint record failed", "error", err.Error())
				}
				printDecayResult(cmd, scope, result)
				return nil
			}

			if err := runPass(); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			ticker := time.NewTicker(cfg.Decay.ApplyDecayInterval)
			defer ticker.Stop()
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case <-ticker.C:
					if err := runPass(); err != nil {
						return err
					}
				}
			}
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep running, repeating the pass at the configured decay interval")
	return cmd
}

func printDecayResult(cmd *cobra.Command, scope types.Scope, result memorycore.DecayResult) {
	successColor := color.New(color.FgGreen, color.Bold)
	successColor.Fprintf(cmd.OutOrStdout(), "decay pass complete for scope %q\n", scope)
	fmt.Fprintf(cmd.OutOrStdout(), "  memories changed: %d\n", result.Changed)
	fmt.Fprintf(cmd.OutOrStdout(), "  facts changed:    %d\n", result.FactsChanged)
	fmt.Fprintf(cmd.OutOrStdout(), "  edges pruned:     %d\n", result.EdgesPruned)
}
