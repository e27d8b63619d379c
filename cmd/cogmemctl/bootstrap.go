package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"cogmem/internal/config"
	"cogmem/internal/memorycore"
	"cogmem/internal/persistence"
	"cogmem/internal/types"
	"cogmem/internal/vectorindex"
)

const checkpointFile = "checkpoints.db"

// resolveDataDir picks the scope's data directory: the --data-dir
// override if given, otherwise the configured default for --scope.
func resolveDataDir(cmd *cobra.Command, cfg *config.CoreConfig) (string, types.Scope, error) {
	scopeFlag, _ := cmd.Flags().GetString("scope")
	dataDirFlag, _ := cmd.Flags().GetString("data-dir")

	scope := types.Scope(scopeFlag)
	if !scope.Valid() {
		scope = types.ScopeProject
	}

	if dataDirFlag != "" {
		return dataDirFlag, scope, nil
	}
	if scope == types.ScopeUser {
		return cfg.Scope.UserDataDir, scope, nil
	}
	return cfg.Scope.ProjectDataDir, scope, nil
}

// openCore builds a memory core over the given scope's on-disk
// documents, using the configured embedding backend stack.
func openCore(ctx context.Context, dataDir string, cfg *config.CoreConfig) (*memorycore.Core, *persistence.DocumentStore, error) {
	store, err := persistence.NewDocumentStore(dataDir)
	if err != nil {
		return nil, nil, err
	}

	memories, err := store.LoadMemories()
	if err != nil {
		return nil, nil, err
	}
	facts, err := store.LoadFacts()
	if err != nil {
		return nil, nil, err
	}
	edges, err := store.LoadWaypoints()
	if err != nil {
		return nil, nil, err
	}

	backend, err := vectorindex.Build(ctx, cfg.Vector)
	if err != nil {
		return nil, nil, err
	}

	core := memorycore.New(backend, store)
	core.Tune(memorycore.Tuning{
		ReinforceBoost:    cfg.Decay.ReinforceBoost,
		FactDecayRate:     cfg.Decay.FactConfidenceDecayRate,
		WaypointMinWeight: cfg.Decay.WaypointMinWeight,
	})
	core.Load(memories, facts, edges)

	if err := core.Reindex(ctx); err != nil {
		return nil, nil, err
	}

	return core, store, nil
}

// recordCheckpoint writes the core's current document state into the
// scope's SQLite checkpoint side-store.
func recordCheckpoint(dataDir string, core *memorycore.Core) error {
	checkpoints, err := persistence.NewCheckpointStore(filepath.Join(dataDir, checkpointFile))
	if err != nil {
		return err
	}
	defer checkpoints.Close()

	memories, facts, edges := core.Document()
	return checkpoints.Record(persistence.Snapshot{Memories: memories, Facts: facts, Edges: edges})
}
