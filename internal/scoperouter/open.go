package scoperouter

import (
	"context"
	"os"
	"path/filepath"

	"cogmem/internal/config"
	"cogmem/internal/memorycore"
	"cogmem/internal/persistence"
	"cogmem/internal/vectorindex"
)

// Open builds a fully wired router from configuration: one embedding
// backend per scope, a project core rooted at the detected project
// root (or the COGMEM_PROJECT_DATA_DIR override), and a user core
// under the user's home directory. Both cores restore their persisted
// documents and reindex before the router is returned.
func Open(ctx context.Context, cfg *config.CoreConfig) (*Router, error) {
	// Each scope owns an independent index; a shared backend would let
	// one core's full rebuild clobber the other's chunks.
	projectVector := cfg.Vector
	projectVector.QdrantCollection = cfg.Vector.QdrantCollection + "_project"
	projectBackend, err := vectorindex.Build(ctx, projectVector)
	if err != nil {
		return nil, err
	}

	userVector := cfg.Vector
	userVector.QdrantCollection = cfg.Vector.QdrantCollection + "_user"
	userBackend, err := vectorindex.Build(ctx, userVector)
	if err != nil {
		return nil, err
	}

	projectDir := cfg.Scope.ProjectDataDir
	if !filepath.IsAbs(projectDir) {
		cwd, err := os.Getwd()
		if err != nil {
			cwd = "."
		}
		projectDir = filepath.Join(FindProjectRoot(cwd), projectDir)
	}

	project, err := openCore(ctx, projectDir, projectBackend, cfg.Decay)
	if err != nil {
		return nil, err
	}
	user, err := openCore(ctx, cfg.Scope.UserDataDir, userBackend, cfg.Decay)
	if err != nil {
		return nil, err
	}

	// Encoding is stateless across backends, so the classifier and
	// recall dedup can borrow either scope's backend.
	router, err := New(ctx, project, user, projectBackend)
	if err != nil {
		return nil, err
	}
	router.classifier.Threshold = cfg.Scope.ClassifierThreshold
	return router, nil
}

func openCore(ctx context.Context, dataDir string, backend vectorindex.Backend, decayCfg config.DecayConfig) (*memorycore.Core, error) {
	store, err := persistence.NewDocumentStore(dataDir)
	if err != nil {
		return nil, err
	}

	memories, err := store.LoadMemories()
	if err != nil {
		return nil, err
	}
	facts, err := store.LoadFacts()
	if err != nil {
		return nil, err
	}
	edges, err := store.LoadWaypoints()
	if err != nil {
		return nil, err
	}

	core := memorycore.New(backend, store)
	core.Tune(memorycore.Tuning{
		ReinforceBoost:    decayCfg.ReinforceBoost,
		FactDecayRate:     decayCfg.FactConfidenceDecayRate,
		WaypointMinWeight: decayCfg.WaypointMinWeight,
	})
	core.Load(memories, facts, edges)

	if err := core.Reindex(ctx); err != nil {
		return nil, err
	}
	return core, nil
}
