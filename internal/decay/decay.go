// Package decay implements salience-based exponential decay and
// diminishing-returns reinforcement for memories, plus reinforcement
// propagation along waypoint edges.
package decay

import (
	"math"
	"time"

	"cogmem/internal/types"
)

// Tier is the decay-rate bucket a memory falls into based on recency
// and coactivation/salience history.
type Tier string

const (
	TierHot  Tier = "hot"
	TierWarm Tier = "warm"
	TierCold Tier = "cold"
)

// Default per-tier decay rates, overridden by a sector-specific lambda
// when the caller supplies one.
const (
	HotLambda  = 0.005
	WarmLambda = 0.02
	ColdLambda = 0.05
)

const msPerDay = 86_400_000

// DefaultReinforceBoost is the diminishing-returns boost applied to
// salience on retrieval.
const DefaultReinforceBoost = 0.15

// PropagationGamma scales propagated reinforcement between neighbours.
const PropagationGamma = 0.1

// SelectTier classifies a memory into hot/warm/cold given the current
// time: hot is recent and high-value, warm is recent or still salient,
// cold is everything else.
func SelectTier(m *types.Memory, nowMs int64) Tier {
	daysSince := float64(nowMs-m.LastSeenAt) / msPerDay
	isRecent := daysSince < 6
	isHighValue := m.Coactivations > 5 || m.Salience > 0.7

	switch {
	case isRecent && isHighValue:
		return TierHot
	case isRecent || m.Salience > 0.4:
		return TierWarm
	default:
		return TierCold
	}
}

// lambdaForTier returns the tier's default decay rate.
func lambdaForTier(tier Tier) float64 {
	switch tier {
	case TierHot:
		return HotLambda
	case TierWarm:
		return WarmLambda
	default:
		return ColdLambda
	}
}

// EffectiveLambda resolves the decay rate to apply to m at nowMs: the
// sector-specific lambda if m carries a positive DecayLambda, otherwise
// the tier default.
func EffectiveLambda(m *types.Memory, nowMs int64) float64 {
	if m.DecayLambda > 0 {
		return m.DecayLambda
	}
	return lambdaForTier(SelectTier(m, nowMs))
}

// Decay applies the exponential salience-resistant decay formula to m
// in place and reports whether the change was large enough to count as
// dirty (|new-old| > 0.001).
func Decay(m *types.Memory, nowMs int64) (dirty bool) {
	lambda := EffectiveLambda(m, nowMs)
	days := float64(nowMs-m.LastSeenAt) / msPerDay
	if days < 0 {
		days = 0
	}

	old := m.Salience
	next := old * math.Exp(-lambda*days/(old+0.1))
	next = clamp01(next)

	m.Salience = next
	return math.Abs(next-old) > 0.001
}

// Reinforce applies a diminishing-returns salience boost on retrieval:
// salience <- min(1, salience + boost*(1-salience)); also bumps
// last_seen_at and coactivations.
func Reinforce(m *types.Memory, boost float64, nowMs int64) {
	if boost <= 0 {
		boost = DefaultReinforceBoost
	}
	m.Salience = clamp01(m.Salience + boost*(1-m.Salience))
	m.LastSeenAt = nowMs
	m.Coactivations++
}

// PropagatedBoost computes the positive reinforcement, if any, that
// should flow from source S to neighbour T along a waypoint of the
// given weight, given the days elapsed since T was last accessed.
func PropagatedBoost(salienceSource, salienceTarget, weight, deltaTDays float64) float64 {
	b := PropagationGamma * (salienceSource - salienceTarget) * math.Exp(-0.02*deltaTDays) * weight
	if b < 0 {
		return 0
	}
	return b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// NowMs returns the current time as milliseconds since epoch, the unit
// used throughout the decay and temporal-graph timestamps.
func NowMs() int64 {
	return time.Now().UnixMilli()
}
