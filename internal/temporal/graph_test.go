package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ms(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).UnixMilli()
}

func TestInsert_TemporalEvolutionScenario(t *testing.T) {
	g := New()

	_, err := g.Insert("Alice", "works_at", "Google", ms(2020, 1, 1), 1, nil, ms(2020, 1, 1))
	require.NoError(t, err)

	_, err = g.Insert("Alice", "works_at", "Meta", ms(2024, 1, 1), 1, nil, ms(2024, 1, 1))
	require.NoError(t, err)

	at2022 := g.QueryAtTime(Selector{Subject: "Alice", Predicate: "works_at"}, ms(2022, 6, 1), 0.1)
	require.Len(t, at2022, 1)
	assert.Equal(t, "Google", at2022[0].Object)

	now := g.QueryAtTime(Selector{Subject: "Alice", Predicate: "works_at"}, time.Now().UnixMilli(), 0.1)
	require.Len(t, now, 1)
	assert.Equal(t, "Meta", now[0].Object)
}

func TestInsert_AtMostOneOpenFactPerSubjectPredicate(t *testing.T) {
	g := New()
	_, err := g.Insert("Bob", "likes", "tea", ms(2020, 1, 1), 1, nil, ms(2020, 1, 1))
	require.NoError(t, err)
	_, err = g.Insert("Bob", "likes", "coffee", ms(2021, 1, 1), 1, nil, ms(2021, 1, 1))
	require.NoError(t, err)

	open := 0
	for _, f := range g.All() {
		if f.IsOpen() {
			open++
		}
	}
	assert.Equal(t, 1, open)
}

func TestInsert_OutOfOrderLeavesLaterFactUntouched(t *testing.T) {
	g := New()
	_, err := g.Insert("Carol", "lives_in", "Paris", ms(2022, 1, 1), 1, nil, ms(2022, 1, 1))
	require.NoError(t, err)

	// Inserting an earlier-starting fact must not close the later one.
	_, err = g.Insert("Carol", "lives_in", "Rome", ms(2019, 1, 1), 1, nil, ms(2019, 1, 1))
	require.NoError(t, err)

	open := 0
	for _, f := range g.All() {
		if f.IsOpen() {
			open++
		}
	}
	assert.Equal(t, 2, open)
}

func TestValidToAlwaysAfterValidFrom(t *testing.T) {
	g := New()
	_, err := g.Insert("Dan", "title", "Engineer", ms(2020, 1, 1), 1, nil, ms(2020, 1, 1))
	require.NoError(t, err)
	_, err = g.Insert("Dan", "title", "Manager", ms(2021, 1, 1), 1, nil, ms(2021, 1, 1))
	require.NoError(t, err)

	for _, f := range g.All() {
		if f.ValidTo != nil {
			assert.Greater(t, *f.ValidTo, f.ValidFrom)
		}
	}
}

func TestQueryAtTime_SelectorIsCaseSensitive(t *testing.T) {
	g := New()
	_, err := g.Insert("alice", "works_at", "Google", ms(2020, 1, 1), 1, nil, ms(2020, 1, 1))
	require.NoError(t, err)

	hits := g.QueryAtTime(Selector{Subject: "Alice"}, ms(2021, 1, 1), 0.1)
	assert.Empty(t, hits)

	hits = g.QueryAtTime(Selector{Subject: "alice"}, ms(2021, 1, 1), 0.1)
	assert.Len(t, hits, 1)
}

func TestTimeline_SortedAscending(t *testing.T) {
	g := New()
	_, _ = g.Insert("Eve", "role", "dev", ms(2022, 1, 1), 1, nil, ms(2022, 1, 1))
	_, _ = g.Insert("Eve", "role", "lead", ms(2020, 1, 1), 1, nil, ms(2020, 1, 1))

	timeline := g.Timeline("Eve", "role")
	require.Len(t, timeline, 2)
	assert.True(t, timeline[0].ValidFrom < timeline[1].ValidFrom)
}

func TestInvalidate(t *testing.T) {
	g := New()
	f, _ := g.Insert("Frank", "status", "active", ms(2020, 1, 1), 1, nil, ms(2020, 1, 1))

	assert.True(t, g.Invalidate(f.ID, ms(2021, 1, 1)))
	assert.False(t, g.Invalidate("missing", ms(2021, 1, 1)))

	got := g.All()[f.ID]
	require.NotNil(t, got.ValidTo)
	assert.Equal(t, ms(2021, 1, 1), *got.ValidTo)
}

func TestApplyConfidenceDecay_FloorsAtMinConfidence(t *testing.T) {
	g := New()
	f, _ := g.Insert("Grace", "trusts", "Heidi", 0, 1.0, nil, 0)

	changed := g.ApplyConfidenceDecay(0.5, 1000*msPerDay)
	assert.Equal(t, 1, changed)

	got := g.All()[f.ID]
	assert.Equal(t, 0.1, got.Confidence)
}

func TestParseValidFrom_AcceptsMsAndISO(t *testing.T) {
	now := time.Now()

	ms1, err := ParseValidFrom("1700000000000", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), ms1)

	ms2, err := ParseValidFrom("2024-01-01T00:00:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), ms2)

	_, err = ParseValidFrom("not-a-time", now)
	assert.Error(t, err)
}
