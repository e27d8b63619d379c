// Package memorycore implements the memory core: the component that
// owns the sector classifier, decay engine, waypoint graph, and
// temporal graph for a single scope, and exposes the store/search/list
// operation surface.
package memorycore

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"cogmem/internal/cogerrors"
	"cogmem/internal/decay"
	"cogmem/internal/logging"
	"cogmem/internal/sector"
	"cogmem/internal/temporal"
	"cogmem/internal/types"
	"cogmem/internal/vectorindex"
	"cogmem/internal/waypoint"
)

const (
	msPerDay           = 86_400_000
	listDecayWindowMs  = msPerDay * 30
	searchFetchFactor  = 3
	waypointTopN       = 5
	expansionSeedCount = 5
	defaultListLimit   = 50
)

// Persister is the narrow interface memorycore needs from the
// persistence layer: write the full in-memory document on every
// mutation.
type Persister interface {
	SaveMemories(memories map[string]*types.Memory) error
	SaveFacts(facts map[string]*types.Fact) error
	SaveWaypoints(edges map[string]map[string]*types.Edge) error
}

// Tuning carries the decay/reinforcement knobs configuration can
// override; zero values fall back to the built-in defaults.
type Tuning struct {
	ReinforceBoost    float64
	FactDecayRate     float64
	WaypointMinWeight float64
}

// Core is one memory core instance: the unit the scope router
// instantiates twice (project, user).
type Core struct {
	memories map[string]*types.Memory
	waypoint *waypoint.Graph
	temporal *temporal.Graph
	backend  vectorindex.Backend
	persist  Persister
	tuning   Tuning
	log      *logging.EnhancedLogger
}

// New creates a memory core backed by the given embedding backend and
// optional persister (nil disables persistence, useful for tests).
func New(backend vectorindex.Backend, persist Persister) *Core {
	return &Core{
		memories: make(map[string]*types.Memory),
		waypoint: waypoint.New(),
		temporal: temporal.New(),
		backend:  backend,
		persist:  persist,
		tuning: Tuning{
			ReinforceBoost: decay.DefaultReinforceBoost,
			FactDecayRate:  0.01,
		},
		log: logging.NewEnhancedLogger("memorycore"),
	}
}

// Tune overrides the core's decay/reinforcement parameters; zero
// fields keep their current values.
func (c *Core) Tune(t Tuning) {
	if t.ReinforceBoost > 0 {
		c.tuning.ReinforceBoost = t.ReinforceBoost
	}
	if t.FactDecayRate > 0 {
		c.tuning.FactDecayRate = t.FactDecayRate
	}
	if t.WaypointMinWeight > 0 {
		c.tuning.WaypointMinWeight = t.WaypointMinWeight
	}
}

func nowMs() int64 { return time.Now().UnixMilli() }

// StoreOptions carries store's optional arguments.
type StoreOptions struct {
	Tags     []string
	Metadata types.Metadata
	Sector   types.Sector
	TenantID string
}

// StoreResult is what store returns.
type StoreResult struct {
	ID              string
	PrimarySector   types.Sector
	Confidence      float64
	CreatedAt       time.Time
	WaypointsFormed int
}

// Store classifies and persists a new memory, rebuilds the embedding
// index, and wires bidirectional waypoints to its top-5 nearest
// existing neighbours above the similarity threshold.
func (c *Core) Store(ctx context.Context, content string, opts StoreOptions) (*StoreResult, error) {
	if content == "" {
		return nil, cogerrors.InvalidArgument("memorycore", "store", "content is required")
	}

	explicit := opts.Sector
	if explicit == "" {
		if v, ok := opts.Metadata["sector"]; ok {
			if s, ok := v.(string); ok {
				explicit = types.Sector(s)
			}
		}
	}
	cls := sector.Classify(content, explicit)

	now := time.Now()
	m := &types.Memory{
		ID:                uuid.NewString(),
		Content:           content,
		TenantID:          opts.TenantID,
		Tags:              append([]string(nil), opts.Tags...),
		Metadata:          opts.Metadata,
		CreatedAt:         now,
		UpdatedAt:         now,
		PrimarySector:     cls.Primary,
		AdditionalSectors: cls.Additional,
		SectorConfidence:  cls.Confidence,
		Salience:          1.0,
		DecayLambda:       cls.DecayLambda,
		LastSeenAt:        now.UnixMilli(),
		Coactivations:     0,
	}

	c.memories[m.ID] = m
	if err := c.persistMemories(); err != nil {
		return nil, err
	}

	waypointsFormed := 0
	if c.backend != nil {
		if err := c.rebuildIndex(ctx); err != nil {
			c.log.WithError(err).Error("index rebuild failed after store; metadata persisted without index update")
		} else {
			waypointsFormed = c.wireNearestWaypoints(ctx, m)
		}
	}

	return &StoreResult{
		ID:              m.ID,
		PrimarySector:   m.PrimarySector,
		Confidence:      m.SectorConfidence,
		CreatedAt:       m.CreatedAt,
		WaypointsFormed: waypointsFormed,
	}, nil
}

// rebuildIndex re-encodes every stored memory into the backend,
// matching the chunking contract's build-once-and-query requirement.
func (c *Core) rebuildIndex(ctx context.Context) error {
	chunks := make([]vectorindex.Chunk, 0, len(c.memories))
	for _, m := range c.memories {
		chunks = append(chunks, vectorindex.Chunk{Text: encodeChunk(m)})
	}
	return c.backend.Rebuild(ctx, chunks)
}

// wireNearestWaypoints searches the just-rebuilt index for the newly
// stored memory's own content and creates a bidirectional waypoint to
// each hit whose position-derived similarity 1-0.1*rank is >= 0.75.
// The rank is the raw result position, so the slot taken by the
// memory's own chunk still counts: the first real neighbour scores
// 0.9, not 1.0.
func (c *Core) wireNearestWaypoints(ctx context.Context, m *types.Memory) int {
	hits, err := c.backend.Search(ctx, m.Content, waypointTopN+1)
	if err != nil {
		return 0
	}

	formed := 0
	for rank, h := range hits {
		sim := 1 - 0.1*float64(rank)
		if sim < waypoint.SimilarityThreshold {
			continue
		}
		id, ok := decodeChunkID(h.Text)
		if !ok || id == m.ID {
			continue
		}
		if err := c.waypoint.Create(m.ID, id, waypoint.InitialWeight, true, nowMs()); err == nil {
			formed++
		}
	}
	if formed > 0 {
		_ = c.persistWaypoints()
	}
	return formed
}

// SearchOptions carries search's optional arguments.
type SearchOptions struct {
	Limit           int
	Tags            []string
	Sector          types.Sector
	ExpandWaypoints bool
	TenantID        string
}

// SearchHit is one ranked search result.
type SearchHit struct {
	Memory *types.Memory
	Score  float64
	Path   []string // non-nil when reached via waypoint expansion
}

// Search runs the ranking pipeline: vector hits filtered by tenant,
// sector, and tags, scored by rank position, cross-sector penalty, and
// salience, then optionally extended through waypoint expansion.
func (c *Core) Search(ctx context.Context, query string, opts SearchOptions) ([]SearchHit, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	if c.backend == nil {
		return nil, nil
	}

	querySector := sector.Classify(query, opts.Sector).Primary

	hits, err := c.backend.Search(ctx, query, limit*searchFetchFactor)
	if err != nil {
		return nil, nil // backend unavailable: degrade to an empty result
	}

	results := make([]SearchHit, 0, limit)
	seen := make(map[string]bool)
	var seeds []string

	for rank, h := range hits {
		id, ok := decodeChunkID(h.Text)
		if !ok {
			continue
		}
		m, ok := c.memories[id]
		if !ok {
			continue
		}
		if !c.passesFilters(m, opts) {
			continue
		}

		base := 1 - 0.05*float64(rank)
		penalty := sector.Penalty(querySector, m.PrimarySector)
		final := base * penalty * (0.5 + 0.5*m.Salience)

		results = append(results, SearchHit{Memory: m, Score: final})
		seen[id] = true
		if len(seeds) < expansionSeedCount {
			seeds = append(seeds, id)
		}
	}

	if opts.ExpandWaypoints && len(seeds) > 0 {
		expansions := c.waypoint.Expand(seeds, limit, 0)
		for _, e := range expansions {
			if seen[e.ID] {
				continue
			}
			m, ok := c.memories[e.ID]
			if !ok {
				continue
			}
			if !c.passesFilters(m, opts) {
				continue
			}
			results = append(results, SearchHit{Memory: m, Score: e.Weight * 0.5, Path: e.Path})
			seen[e.ID] = true
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}

	now := nowMs()
	for _, r := range results {
		decay.Reinforce(r.Memory, c.tuning.ReinforceBoost, now)
		if r.Path != nil {
			c.waypoint.Reinforce(r.Path, now)
		}
		c.propagateReinforcement(r.Memory, now)
	}
	if len(results) > 0 {
		_ = c.persistMemories()
		_ = c.persistWaypoints()
	}

	return results, nil
}

// propagateReinforcement lets a retrieved memory's salience spill over
// to its waypoint neighbours: each neighbour gains a weight- and
// recency-scaled fraction of the salience gap, positive boosts only.
func (c *Core) propagateReinforcement(source *types.Memory, now int64) {
	for _, n := range c.waypoint.Neighbours(source.ID) {
		target, ok := c.memories[n.ID]
		if !ok {
			continue
		}
		deltaDays := float64(now-target.LastSeenAt) / msPerDay
		if deltaDays < 0 {
			deltaDays = 0
		}
		boost := decay.PropagatedBoost(source.Salience, target.Salience, n.Weight, deltaDays)
		if boost > 0 {
			target.Salience += boost
			target.ClampSalience()
		}
	}
}

func (c *Core) passesFilters(m *types.Memory, opts SearchOptions) bool {
	if opts.TenantID != "" && m.TenantID != opts.TenantID {
		return false
	}
	if opts.Sector != "" && m.PrimarySector != opts.Sector {
		return false
	}
	for _, t := range opts.Tags {
		if !m.HasTag(t) {
			return false
		}
	}
	return true
}

// Get retrieves a memory by id, tenant-scoped.
func (c *Core) Get(id, tenantID string) (*types.Memory, bool) {
	m, ok := c.memories[id]
	if !ok || (tenantID != "" && m.TenantID != tenantID) {
		return nil, false
	}
	return m, true
}

// Delete removes a memory and cascades to its waypoints.
func (c *Core) Delete(ctx context.Context, id, tenantID string) (bool, error) {
	m, ok := c.Get(id, tenantID)
	if !ok {
		return false, nil
	}
	delete(c.memories, m.ID)
	c.waypoint.RemoveMemory(m.ID)

	if err := c.persistMemories(); err != nil {
		return false, err
	}
	if err := c.persistWaypoints(); err != nil {
		return false, err
	}
	if c.backend != nil {
		if err := c.rebuildIndex(ctx); err != nil {
			c.log.WithError(err).Error("index rebuild failed after delete")
		}
	}
	return true, nil
}

// DeleteAll removes every memory (optionally tenant-scoped) and
// returns the count removed.
func (c *Core) DeleteAll(ctx context.Context, tenantID string) (int, error) {
	count := 0
	for id, m := range c.memories {
		if tenantID != "" && m.TenantID != tenantID {
			continue
		}
		delete(c.memories, id)
		c.waypoint.RemoveMemory(id)
		count++
	}
	if count == 0 {
		return 0, nil
	}
	if err := c.persistMemories(); err != nil {
		return 0, err
	}
	if err := c.persistWaypoints(); err != nil {
		return 0, err
	}
	if c.backend != nil {
		if err := c.rebuildIndex(ctx); err != nil {
			c.log.WithError(err).Error("index rebuild failed after delete_all")
		}
	}
	return count, nil
}

// ListOptions filters and pages List.
type ListOptions struct {
	TenantID string
	Tags     []string
	Sector   types.Sector
	Offset   int
	Limit    int
}

// List filters, ranks by recency-weighted salience, and pages memories.
func (c *Core) List(opts ListOptions) []*types.Memory {
	filtered := make([]*types.Memory, 0, len(c.memories))
	for _, m := range c.memories {
		if opts.TenantID != "" && m.TenantID != opts.TenantID {
			continue
		}
		if opts.Sector != "" && m.PrimarySector != opts.Sector {
			continue
		}
		ok := true
		for _, t := range opts.Tags {
			if !m.HasTag(t) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		filtered = append(filtered, m)
	}

	now := nowMs()
	sort.Slice(filtered, func(i, j int) bool {
		return RecencyWeightedRank(filtered[i], now) > RecencyWeightedRank(filtered[j], now)
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	start := opts.Offset
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end]
}

// RecencyWeightedRank is List's ordering key: salience scaled by
// 1 - age/30 days, where age is the time since last_seen_at (the key
// goes negative once age exceeds 30 days). Exported so
// the scope router can merge-listings from both cores under one order.
func RecencyWeightedRank(m *types.Memory, nowMs int64) float64 {
	age := float64(nowMs-m.LastSeenAt) / listDecayWindowMs
	rank := m.Salience * (1 - age)
	return math.Max(rank, -1e9)
}

// DecayResult summarizes an apply_decay call.
type DecayResult struct {
	Changed      int
	FactsChanged int
	EdgesPruned  int
}

// ApplyDecay runs C2 batch decay, C4 confidence decay, and C3
// weak-edge pruning, returning how many memories actually changed.
func (c *Core) ApplyDecay() DecayResult {
	mgr := decay.NewManager()
	memList := make([]*types.Memory, 0, len(c.memories))
	for _, m := range c.memories {
		memList = append(memList, m)
	}
	now := nowMs()
	run := mgr.RunBatch(memList, now)

	factsChanged := c.temporal.ApplyConfidenceDecay(c.tuning.FactDecayRate, now)
	edgesPruned := c.waypoint.PruneWeakEdges(c.tuning.WaypointMinWeight)

	if run.Changed > 0 {
		_ = c.persistMemories()
	}
	if factsChanged > 0 {
		_ = c.persistFacts()
	}
	if edgesPruned > 0 {
		_ = c.persistWaypoints()
	}

	return DecayResult{Changed: run.Changed, FactsChanged: factsChanged, EdgesPruned: edgesPruned}
}

// Reinforce boosts a memory's salience directly (the reinforce
// operation), returning the new salience.
func (c *Core) Reinforce(id string, boost float64) (float64, error) {
	m, ok := c.memories[id]
	if !ok {
		return 0, cogerrors.NotFound("memorycore", "reinforce", "memory not found: "+id)
	}
	if boost != 0 && (boost < 0.01 || boost > 0.5) {
		return 0, cogerrors.InvalidArgument("memorycore", "reinforce", "boost must be in [0.01, 0.5]")
	}
	if boost == 0 {
		boost = c.tuning.ReinforceBoost
	}
	decay.Reinforce(m, boost, nowMs())
	_ = c.persistMemories()
	return m.Salience, nil
}

// StoreFact inserts a temporal fact.
func (c *Core) StoreFact(subject, predicate, object string, validFrom int64, confidence float64, metadata types.Metadata) (*types.Fact, error) {
	f, err := c.temporal.Insert(subject, predicate, object, validFrom, confidence, metadata, nowMs())
	if err != nil {
		return nil, err
	}
	_ = c.persistFacts()
	return f, nil
}

// QueryFacts returns facts matching selector active at `at`.
func (c *Core) QueryFacts(sel temporal.Selector, at int64, minConfidence float64) []*types.Fact {
	return c.temporal.QueryAtTime(sel, at, minConfidence)
}

// GetTimeline returns a subject's fact history ordered by valid_from.
func (c *Core) GetTimeline(subject, predicate string) []*types.Fact {
	return c.temporal.Timeline(subject, predicate)
}

// Stats reports aggregate counters for the stats operation: total
// memory count plus the by_user/by_sector breakdowns, and the nested
// waypoint and temporal graph aggregates.
type Stats struct {
	MemoryCount int
	BySector    map[types.Sector]int
	ByTenant    map[string]int
	Temporal    temporal.Stats
	Waypoints   waypoint.Stats
}

// Stats aggregates the core's current state.
func (c *Core) Stats() Stats {
	bySector := make(map[types.Sector]int)
	byTenant := make(map[string]int)
	for _, m := range c.memories {
		bySector[m.PrimarySector]++
		byTenant[m.TenantID]++
	}
	return Stats{
		MemoryCount: len(c.memories),
		BySector:    bySector,
		ByTenant:    byTenant,
		Temporal:    c.temporal.Stats(),
		Waypoints:   c.waypoint.Stats(),
	}
}

// Load restores the core's state from persisted documents, used on
// startup.
func (c *Core) Load(memories map[string]*types.Memory, facts map[string]*types.Fact, edges map[string]map[string]*types.Edge) {
	if memories == nil {
		memories = make(map[string]*types.Memory)
	}
	c.memories = memories
	c.temporal.Load(facts)
	c.waypoint.Load(edges)
}

// Document returns the core's current state as the three persisted
// documents, the inverse of Load; used by the CLI's checkpoint
// recording.
func (c *Core) Document() (map[string]*types.Memory, map[string]*types.Fact, map[string]map[string]*types.Edge) {
	memories := make(map[string]*types.Memory, len(c.memories))
	for id, m := range c.memories {
		memories[id] = m
	}
	return memories, c.temporal.All(), c.waypoint.Snapshot()
}

// Reindex rebuilds the embedding backend's index from the core's
// current in-memory documents using the chunking contract.
// Callers that restore a core from disk (the CLI, a server's startup
// path) must call this once after Load so Search's id recovery works;
// Store/Delete already keep the index current as they mutate.
func (c *Core) Reindex(ctx context.Context) error {
	if c.backend == nil {
		return nil
	}
	return c.rebuildIndex(ctx)
}

func (c *Core) persistMemories() error {
	if c.persist == nil {
		return nil
	}
	if err := c.persist.SaveMemories(c.memories); err != nil {
		return cogerrors.Persistence("memorycore", "save_memories", err)
	}
	return nil
}

func (c *Core) persistFacts() error {
	if c.persist == nil {
		return nil
	}
	if err := c.persist.SaveFacts(c.temporal.All()); err != nil {
		return cogerrors.Persistence("memorycore", "save_facts", err)
	}
	return nil
}

func (c *Core) persistWaypoints() error {
	if c.persist == nil {
		return nil
	}
	if err := c.persist.SaveWaypoints(c.waypoint.Snapshot()); err != nil {
		return cogerrors.Persistence("memorycore", "save_waypoints", err)
	}
	return nil
}
