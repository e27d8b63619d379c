package decay

import (
	"math"
	"testing"

	"cogmem/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemory(salience float64, lastSeenAt int64) *types.Memory {
	return &types.Memory{
		ID:         "m1",
		Salience:   salience,
		LastSeenAt: lastSeenAt,
	}
}

func TestReinforce_DiminishingReturnsBound(t *testing.T) {
	m := newMemory(0.5, 0)

	Reinforce(m, 0.15, 1000)
	assert.InDelta(t, 0.575, m.Salience, 1e-9)

	for i := 0; i < 9; i++ {
		Reinforce(m, 0.15, 1000)
	}
	assert.InDelta(t, 0.9016, m.Salience, 1e-3)
	assert.Less(t, m.Salience, 1.0)
}

func TestReinforce_ClosedFormLaw(t *testing.T) {
	boost := 0.2
	s0 := 0.3
	m := newMemory(s0, 0)
	k := 7
	for i := 0; i < k; i++ {
		Reinforce(m, boost, 0)
	}
	want := 1 - (1-s0)*math.Pow(1-boost, float64(k))
	assert.InDelta(t, want, m.Salience, 1e-9)
}

func TestReinforce_BumpsLastSeenAndCoactivations(t *testing.T) {
	m := newMemory(0.4, 0)
	Reinforce(m, 0.1, 5000)
	assert.Equal(t, int64(5000), m.LastSeenAt)
	assert.Equal(t, 1, m.Coactivations)
}

func TestDecay_Monotonicity(t *testing.T) {
	now := int64(30 * msPerDay)
	older := newMemory(0.6, 0)
	newer := newMemory(0.6, 20*msPerDay)

	Decay(older, now)
	Decay(newer, now)

	assert.Less(t, older.Salience, newer.Salience)
}

func TestDecay_NeverIncreases(t *testing.T) {
	m := newMemory(0.5, 0)
	old := m.Salience
	Decay(m, 10*msPerDay)
	assert.LessOrEqual(t, m.Salience, old)
}

func TestDecay_StaysInBounds(t *testing.T) {
	m := newMemory(1.0, 0)
	Decay(m, 10_000*msPerDay)
	assert.GreaterOrEqual(t, m.Salience, 0.0)
	assert.LessOrEqual(t, m.Salience, 1.0)
}

func TestSelectTier(t *testing.T) {
	now := int64(10 * msPerDay)

	hot := &types.Memory{Salience: 0.8, LastSeenAt: 9 * msPerDay, Coactivations: 0}
	require.Equal(t, TierHot, SelectTier(hot, now))

	warm := &types.Memory{Salience: 0.5, LastSeenAt: 0, Coactivations: 0}
	require.Equal(t, TierWarm, SelectTier(warm, now))

	cold := &types.Memory{Salience: 0.1, LastSeenAt: 0, Coactivations: 0}
	require.Equal(t, TierCold, SelectTier(cold, now))
}

func TestEffectiveLambda_SectorOverridesTier(t *testing.T) {
	m := &types.Memory{Salience: 0.9, LastSeenAt: 0, DecayLambda: 0.123}
	assert.Equal(t, 0.123, EffectiveLambda(m, 0))
}

func TestPropagatedBoost_OnlyPositiveApplied(t *testing.T) {
	b := PropagatedBoost(0.2, 0.8, 0.5, 0)
	assert.Equal(t, 0.0, b)

	b2 := PropagatedBoost(0.8, 0.2, 0.5, 0)
	assert.Greater(t, b2, 0.0)
}

func TestManager_RunBatchCountsDirtyOnly(t *testing.T) {
	mgr := NewManager()
	unchanged := newMemory(0.0, 100)
	changed := newMemory(0.9, 0)

	result := mgr.RunBatch([]*types.Memory{unchanged, changed}, 100*msPerDay)
	assert.Equal(t, 2, result.Scanned)
	assert.Equal(t, 1, result.Changed)
}
