package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cogmem/internal/config"
	"cogmem/internal/types"
)

// sectorOrder returns the sectors present in counts in the canonical
// table order, so output is stable across runs.
func sectorOrder(counts map[types.Sector]int) []types.Sector {
	var out []types.Sector
	for _, s := range types.AllSectors() {
		if _, ok := counts[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Report memory, fact, and waypoint counts for a scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			dataDir, scope, err := resolveDataDir(cmd, cfg)
			if err != nil {
				return err
			}

			core, _, err := openCore(cmd.Context(), dataDir, cfg)
			if err != nil {
				return err
			}
			stats := core.Stats()

			headerColor := color.New(color.FgCyan, color.Bold)
			sectionColor := color.New(color.FgYellow)
			headerColor.Fprintf(cmd.OutOrStdout(), "cogmem stats for scope %q\n", scope)
			fmt.Fprintf(cmd.OutOrStdout(), "  memories: %d\n", stats.MemoryCount)

			sectionColor.Fprintln(cmd.OutOrStdout(), "  by sector:")
			for _, sec := range sectorOrder(stats.BySector) {
				fmt.Fprintf(cmd.OutOrStdout(), "    %-11s %d\n", sec, stats.BySector[sec])
			}

			sectionColor.Fprintln(cmd.OutOrStdout(), "  by tenant:")
			for tenant, count := range stats.ByTenant {
				fmt.Fprintf(cmd.OutOrStdout(), "    %-11s %d\n", tenant, count)
			}

			sectionColor.Fprintln(cmd.OutOrStdout(), "  temporal:")
			fmt.Fprintf(cmd.OutOrStdout(), "    total facts:       %d\n", stats.Temporal.TotalFacts)
			fmt.Fprintf(cmd.OutOrStdout(), "    active facts:      %d\n", stats.Temporal.ActiveFacts)
			fmt.Fprintf(cmd.OutOrStdout(), "    closed facts:      %d\n", stats.Temporal.ClosedFacts)
			fmt.Fprintf(cmd.OutOrStdout(), "    unique subjects:   %d\n", stats.Temporal.UniqueSubjects)
			fmt.Fprintf(cmd.OutOrStdout(), "    unique predicates: %d\n", stats.Temporal.UniquePredicates)

			sectionColor.Fprintln(cmd.OutOrStdout(), "  waypoints:")
			fmt.Fprintf(cmd.OutOrStdout(), "    total nodes:   %d\n", stats.Waypoints.TotalNodes)
			fmt.Fprintf(cmd.OutOrStdout(), "    total edges:   %d\n", stats.Waypoints.TotalEdges)
			fmt.Fprintf(cmd.OutOrStdout(), "    average weight: %.3f\n", stats.Waypoints.AverageWeight)
			return nil
		},
	}
}
