// Package scoperouter implements the scope router: two
// independent memory core instances (project, user), a semantic
// classifier that picks between them, and the merge/dedup/boost rules
// used when recalling across both.
package scoperouter

import (
	"context"
	"sort"
	"time"

	"cogmem/internal/cogerrors"
	"cogmem/internal/memorycore"
	"cogmem/internal/temporal"
	"cogmem/internal/types"
	"cogmem/internal/vectorindex"
)

const projectScoreBoost = 1.2
const dedupSimilarityCeiling = 0.9

// Router owns the project and user memory cores and routes operations
// between them.
type Router struct {
	Project    *memorycore.Core
	User       *memorycore.Core
	classifier *Classifier
	backend    vectorindex.Backend
}

// New creates a router wired to the given project/user cores, sharing
// one embedding backend for classification and dedup.
func New(ctx context.Context, project, user *memorycore.Core, backend vectorindex.Backend) (*Router, error) {
	classifier, err := NewClassifier(ctx, backend)
	if err != nil {
		return nil, err
	}
	return &Router{Project: project, User: user, classifier: classifier, backend: backend}, nil
}

func (r *Router) coreFor(scope types.Scope) *memorycore.Core {
	if scope == types.ScopeProject {
		return r.Project
	}
	return r.User
}

// metadataScope reads an explicit scope override out of caller
// metadata, accepting only the two stored scope values.
func metadataScope(metadata types.Metadata) (types.Scope, bool) {
	v, ok := metadata["scope"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	scope := types.Scope(s)
	if !scope.Valid() {
		return "", false
	}
	return scope, true
}

// StoreResult is what Store returns: the underlying store result plus
// which scope it landed in and (when scope was "auto") the
// classification record.
type StoreResult struct {
	*memorycore.StoreResult
	Scope          types.Scope
	Classification *Classification
}

// Store classifies (if scope is auto) and stores content in the
// chosen core. An explicit scope in metadata always overrides the
// semantic classifier, with confidence 1.
func (r *Router) Store(ctx context.Context, content string, scope types.Scope, opts memorycore.StoreOptions) (*StoreResult, error) {
	var classification *Classification
	target := scope

	if scope == types.ScopeAuto || scope == "" {
		if override, ok := metadataScope(opts.Metadata); ok {
			classification = &Classification{Scope: override, Confidence: 1}
			target = override
		} else {
			cls, err := r.classifier.Classify(ctx, content)
			if err != nil {
				return nil, err
			}
			classification = &cls
			target = cls.Scope
		}
	} else if !scope.Valid() {
		return nil, cogerrors.InvalidArgument("scoperouter", "store", "scope must be project, user, or auto")
	}

	result, err := r.coreFor(target).Store(ctx, content, opts)
	if err != nil {
		return nil, err
	}
	return &StoreResult{StoreResult: result, Scope: target, Classification: classification}, nil
}

// RecallHit tags a memorycore search hit with the scope it came from.
type RecallHit struct {
	memorycore.SearchHit
	Scope types.Scope
}

// Recall fetches ceil(1.5*limit) from each core, boosts project
// scores by 1.2, dedups by embedding similarity, and truncates to
// limit.
func (r *Router) Recall(ctx context.Context, query string, opts memorycore.SearchOptions) ([]RecallHit, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	fetch := (limit*3 + 1) / 2 // ceil(1.5*limit)

	fetchOpts := opts
	fetchOpts.Limit = fetch

	projectHits, err := r.Project.Search(ctx, query, fetchOpts)
	if err != nil {
		return nil, err
	}
	userHits, err := r.User.Search(ctx, query, fetchOpts)
	if err != nil {
		return nil, err
	}

	tagged := make([]RecallHit, 0, len(projectHits)+len(userHits))
	for _, h := range projectHits {
		h.Score *= projectScoreBoost
		tagged = append(tagged, RecallHit{SearchHit: h, Scope: types.ScopeProject})
	}
	for _, h := range userHits {
		tagged = append(tagged, RecallHit{SearchHit: h, Scope: types.ScopeUser})
	}

	sort.Slice(tagged, func(i, j int) bool { return tagged[i].Score > tagged[j].Score })

	deduped, err := r.dedup(ctx, tagged)
	if err != nil {
		return nil, err
	}

	if len(deduped) > limit {
		deduped = deduped[:limit]
	}
	return deduped, nil
}

// dedup greedily keeps a result iff its embedding's max cosine
// similarity to every already-kept result is below
// dedupSimilarityCeiling.
func (r *Router) dedup(ctx context.Context, hits []RecallHit) ([]RecallHit, error) {
	if len(hits) == 0 {
		return hits, nil
	}

	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Memory.Content
	}
	vecs, err := r.backend.Encode(ctx, texts)
	if err != nil {
		return hits, nil // BackendUnavailable: skip dedup rather than fail recall
	}

	var kept []RecallHit
	var keptVecs [][]float32
	for i, h := range hits {
		tooSimilar := false
		for _, kv := range keptVecs {
			if cosine(vecs[i], kv) >= dedupSimilarityCeiling {
				tooSimilar = true
				break
			}
		}
		if tooSimilar {
			continue
		}
		kept = append(kept, h)
		keptVecs = append(keptVecs, vecs[i])
	}
	return kept, nil
}

// Get looks the id up in the project core first, then the user core,
// returning the memory and the scope it was found in.
func (r *Router) Get(id, tenantID string) (*types.Memory, types.Scope, bool) {
	if m, ok := r.Project.Get(id, tenantID); ok {
		return m, types.ScopeProject, true
	}
	if m, ok := r.User.Get(id, tenantID); ok {
		return m, types.ScopeUser, true
	}
	return nil, "", false
}

// Delete removes the memory from whichever core holds it.
func (r *Router) Delete(ctx context.Context, id, tenantID string) (bool, error) {
	ok, err := r.Project.Delete(ctx, id, tenantID)
	if err != nil || ok {
		return ok, err
	}
	return r.User.Delete(ctx, id, tenantID)
}

// DeleteAll clears one core when scope is project/user, or both when
// it is auto/empty, returning the total removed.
func (r *Router) DeleteAll(ctx context.Context, scope types.Scope, tenantID string) (int, error) {
	if scope.Valid() {
		return r.coreFor(scope).DeleteAll(ctx, tenantID)
	}
	projectCount, err := r.Project.DeleteAll(ctx, tenantID)
	if err != nil {
		return projectCount, err
	}
	userCount, err := r.User.DeleteAll(ctx, tenantID)
	return projectCount + userCount, err
}

// ListedMemory tags a listed memory with its scope.
type ListedMemory struct {
	*types.Memory
	Scope types.Scope
}

// List merges both cores' listings under the same recency-weighted
// salience order, then pages the combined result.
func (r *Router) List(opts memorycore.ListOptions) []ListedMemory {
	fetchOpts := opts
	fetchOpts.Offset = 0
	fetchOpts.Limit = opts.Offset + opts.Limit
	if opts.Limit <= 0 {
		fetchOpts.Limit = 0
	}

	var merged []ListedMemory
	for _, m := range r.Project.List(fetchOpts) {
		merged = append(merged, ListedMemory{Memory: m, Scope: types.ScopeProject})
	}
	for _, m := range r.User.List(fetchOpts) {
		merged = append(merged, ListedMemory{Memory: m, Scope: types.ScopeUser})
	}

	now := time.Now().UnixMilli()
	sort.Slice(merged, func(i, j int) bool {
		return memorycore.RecencyWeightedRank(merged[i].Memory, now) > memorycore.RecencyWeightedRank(merged[j].Memory, now)
	})

	start := opts.Offset
	if start > len(merged) {
		start = len(merged)
	}
	end := len(merged)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}
	return merged[start:end]
}

// Reinforce boosts the memory in whichever core holds it, returning
// the new salience and the scope it was found in.
func (r *Router) Reinforce(id string, boost float64) (float64, types.Scope, error) {
	if salience, err := r.Project.Reinforce(id, boost); err == nil {
		return salience, types.ScopeProject, nil
	} else if cogerrors.Is(err, cogerrors.CategoryInvalidArgument) {
		return 0, "", err
	}
	salience, err := r.User.Reinforce(id, boost)
	if err != nil {
		return 0, "", err
	}
	return salience, types.ScopeUser, nil
}

// DecayResult pairs each scope's apply_decay outcome.
type DecayResult struct {
	Project memorycore.DecayResult
	User    memorycore.DecayResult
}

// ApplyDecay runs a batch decay pass over both cores.
func (r *Router) ApplyDecay() DecayResult {
	return DecayResult{Project: r.Project.ApplyDecay(), User: r.User.ApplyDecay()}
}

// FactHit tags a fact with the scope it was found in.
type FactHit struct {
	*types.Fact
	Scope types.Scope
}

// StoreFact inserts a fact into one core, chosen by scope (defaulting
// to project when scope is auto/empty).
func (r *Router) StoreFact(scope types.Scope, subject, predicate, object string, validFrom int64, confidence float64, metadata types.Metadata) (*FactHit, error) {
	target := scope
	if target == types.ScopeAuto || target == "" {
		target = types.ScopeProject
	}
	f, err := r.coreFor(target).StoreFact(subject, predicate, object, validFrom, confidence, metadata)
	if err != nil {
		return nil, err
	}
	return &FactHit{Fact: f, Scope: target}, nil
}

// QueryFacts fans out to both cores, tagging each result with its scope.
func (r *Router) QueryFacts(sel temporal.Selector, at int64, minConfidence float64) []FactHit {
	var out []FactHit
	for _, f := range r.Project.QueryFacts(sel, at, minConfidence) {
		out = append(out, FactHit{Fact: f, Scope: types.ScopeProject})
	}
	for _, f := range r.User.QueryFacts(sel, at, minConfidence) {
		out = append(out, FactHit{Fact: f, Scope: types.ScopeUser})
	}
	return out
}

// GetTimeline fans out to both cores and merges, tagging scope.
func (r *Router) GetTimeline(subject, predicate string) []FactHit {
	var out []FactHit
	for _, f := range r.Project.GetTimeline(subject, predicate) {
		out = append(out, FactHit{Fact: f, Scope: types.ScopeProject})
	}
	for _, f := range r.User.GetTimeline(subject, predicate) {
		out = append(out, FactHit{Fact: f, Scope: types.ScopeUser})
	}
	return out
}

// Stats reports both cores' aggregates side by side.
type Stats struct {
	Project memorycore.Stats
	User    memorycore.Stats
}

// Stats collects stats for both the project and user cores.
func (r *Router) Stats() Stats {
	return Stats{Project: r.Project.Stats(), User: r.User.Stats()}
}
