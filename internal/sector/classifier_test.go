package sector

import (
	"testing"

	"cogmem/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_PrimarySectorBySample(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		primary types.Sector
	}{
		{"episodic", "Yesterday I went to the store", types.SectorEpisodic},
		{"semantic", "Python is a programming language", types.SectorSemantic},
		{"procedural", "How to install Python: first download the installer", types.SectorProcedural},
		{"emotional", "I feel so happy today!", types.SectorEmotional},
		{"reflective", "I realized that the pattern connects everything", types.SectorReflective},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify(tt.text, "")
			assert.Equal(t, tt.primary, result.Primary)
		})
	}
}

func TestClassify_NoMatchDefaultsToSemantic(t *testing.T) {
	result := Classify("xyz qqq zzz", "")
	require.Equal(t, types.SectorSemantic, result.Primary)
	assert.InDelta(t, 0.2, result.Confidence, 1e-9)
}

func TestClassify_ExplicitOverrideWinsWithFullConfidence(t *testing.T) {
	result := Classify("Yesterday I went to the store", types.SectorProcedural)
	require.Equal(t, types.SectorProcedural, result.Primary)
	assert.Equal(t, 1.0, result.Confidence)
	assert.True(t, result.ExplicitOverride)
}

func TestClassify_InvalidExplicitSectorFallsBackToPatterns(t *testing.T) {
	result := Classify("Yesterday I went to the store", types.Sector("bogus"))
	assert.Equal(t, types.SectorEpisodic, result.Primary)
	assert.False(t, result.ExplicitOverride)
}

func TestPenalty_IdentityOnDiagonal(t *testing.T) {
	for _, s := range types.AllSectors() {
		assert.Equal(t, 1.0, Penalty(s, s), "penalty(%s,%s) should be 1", s, s)
	}
}

func TestPenalty_DefaultsForMissingEntry(t *testing.T) {
	assert.Equal(t, defaultPenalty, Penalty(types.Sector("unknown"), types.SectorSemantic))
}

func TestPenalty_MatchesPenaltyTable(t *testing.T) {
	assert.InDelta(t, 0.4, Penalty(types.SectorSemantic, types.SectorEmotional), 1e-9)
	assert.InDelta(t, 0.8, Penalty(types.SectorSemantic, types.SectorProcedural), 1e-9)
	assert.InDelta(t, 1.0, Penalty(types.SectorProcedural, types.SectorProcedural), 1e-9)
	assert.InDelta(t, 0.3, Penalty(types.SectorEmotional, types.SectorProcedural), 1e-9)
}
