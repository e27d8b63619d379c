// Package temporal implements the temporal knowledge graph:
// (subject, predicate, object) facts with validity windows, point-in-time
// queries, automatic closure of conflicting facts, and confidence decay.
package temporal

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"cogmem/internal/cogerrors"
	"cogmem/internal/types"
	"github.com/google/uuid"
)

const msPerDay = 86_400_000

// Graph stores facts in a flat map keyed by fact id.
type Graph struct {
	mu    sync.RWMutex
	facts map[string]*types.Fact
}

// New creates an empty temporal graph.
func New() *Graph {
	return &Graph{facts: make(map[string]*types.Fact)}
}

// ParseValidFrom accepts a ms-epoch integer (as a base-10 string),
// ISO-8601 (optionally with a trailing Z), or returns an error for
// anything else.
func ParseValidFrom(raw string, now time.Time) (int64, error) {
	if raw == "" {
		return now.UnixMilli(), nil
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ms, nil
	}
	formats := []string{time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}
	for _, f := range formats {
		if t, err := time.Parse(f, raw); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, cogerrors.InvalidArgument("temporal", "parse_valid_from", "unrecognized timestamp: "+raw)
}

// Insert records a new fact, closing any existing open fact for the
// same (subject, predicate) whose valid_from is strictly earlier than
// the new fact's. Existing facts that start later are left untouched:
// this is an append-only historical record, not a rewrite.
func (g *Graph) Insert(subject, predicate, object string, validFrom int64, confidence float64, metadata types.Metadata, nowMs int64) (*types.Fact, error) {
	if subject == "" || predicate == "" {
		return nil, cogerrors.InvalidArgument("temporal", "insert", "subject and predicate are required")
	}
	if confidence <= 0 {
		confidence = 1
	}
	if confidence < types.MinConfidence {
		confidence = types.MinConfidence
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, f := range g.facts {
		if f.Subject != subject || f.Predicate != predicate || !f.IsOpen() {
			continue
		}
		if f.ValidFrom < validFrom {
			closedAt := validFrom - 1
			f.ValidTo = &closedAt
			f.LastUpdated = nowMs
		}
	}

	fact := &types.Fact{
		ID:          uuid.NewString(),
		Subject:     subject,
		Predicate:   predicate,
		Object:      object,
		ValidFrom:   validFrom,
		ValidTo:     nil,
		Confidence:  confidence,
		LastUpdated: nowMs,
		Metadata:    metadata,
	}
	g.facts[fact.ID] = fact
	return fact, nil
}

// Selector filters QueryAtTime / Timeline results; empty fields match
// anything.
type Selector struct {
	Subject   string
	Predicate string
	Object    string
}

// QueryAtTime returns every fact matching selector that was active at
// instant `at` with confidence >= minConfidence.
func (g *Graph) QueryAtTime(sel Selector, at int64, minConfidence float64) []*types.Fact {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []*types.Fact
	for _, f := range g.facts {
		if !matches(f, sel) {
			continue
		}
		if !f.ActiveAt(at) {
			continue
		}
		if f.Confidence < minConfidence {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Timeline returns every fact matching subject (and predicate, if
// given) sorted ascending by valid_from.
func (g *Graph) Timeline(subject, predicate string) []*types.Fact {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []*types.Fact
	for _, f := range g.facts {
		if f.Subject != subject {
			continue
		}
		if predicate != "" && f.Predicate != predicate {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ValidFrom < out[j].ValidFrom })
	return out
}

// Invalidate closes a fact at validTo. Reports whether
// the fact existed.
func (g *Graph) Invalidate(id string, validTo int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	f, ok := g.facts[id]
	if !ok {
		return false
	}
	f.ValidTo = &validTo
	f.LastUpdated = validTo
	return true
}

// ApplyConfidenceDecay decays the confidence of every open fact by
// rate per elapsed day since valid_from, floored at types.MinConfidence.
func (g *Graph) ApplyConfidenceDecay(rate float64, nowMs int64) int {
	if rate <= 0 {
		rate = 0.01
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	changed := 0
	for _, f := range g.facts {
		if !f.IsOpen() || f.Confidence <= types.MinConfidence {
			continue
		}
		days := float64(nowMs-f.ValidFrom) / msPerDay
		if days < 0 {
			days = 0
		}
		next := f.Confidence * (1 - rate*days)
		if next < types.MinConfidence {
			next = types.MinConfidence
		}
		if next != f.Confidence {
			f.Confidence = next
			f.LastUpdated = nowMs
			changed++
		}
	}
	return changed
}

// Stats reports total/active/closed fact counts and the distinct
// subject and predicate counts.
type Stats struct {
	TotalFacts       int
	ActiveFacts      int
	ClosedFacts      int
	UniqueSubjects   int
	UniquePredicates int
}

// Stats computes the graph's current aggregates.
func (g *Graph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	subjects := make(map[string]struct{})
	predicates := make(map[string]struct{})
	active := 0
	for _, f := range g.facts {
		subjects[f.Subject] = struct{}{}
		predicates[f.Predicate] = struct{}{}
		if f.IsOpen() {
			active++
		}
	}
	total := len(g.facts)
	return Stats{
		TotalFacts:       total,
		ActiveFacts:      active,
		ClosedFacts:      total - active,
		UniqueSubjects:   len(subjects),
		UniquePredicates: len(predicates),
	}
}

// All returns every fact, for persistence snapshotting.
func (g *Graph) All() map[string]*types.Fact {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make(map[string]*types.Fact, len(g.facts))
	for k, v := range g.facts {
		out[k] = v
	}
	return out
}

// Load replaces the graph's contents, used to restore from disk.
func (g *Graph) Load(facts map[string]*types.Fact) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if facts == nil {
		facts = make(map[string]*types.Fact)
	}
	g.facts = facts
}

func matches(f *types.Fact, sel Selector) bool {
	if sel.Subject != "" && f.Subject != sel.Subject {
		return false
	}
	if sel.Predicate != "" && f.Predicate != sel.Predicate {
		return false
	}
	if sel.Object != "" && f.Object != sel.Object {
		return false
	}
	return true
}
