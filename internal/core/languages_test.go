package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositeScore(t *testing.T) {
	got, err := CompositeScore(0, 10, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got)

	got, err = CompositeScore(1000, 7, DefaultSizeWeight, DefaultCountWeight)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, got)

	got, err = CompositeScore(0, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = CompositeScore(400, 9, 0.5, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 60.0, got, 1e-9)
}

func TestCompositeScore_RejectsBadWeights(t *testing.T) {
	_, err := CompositeScore(1, 1, -1, 0)
	assert.ErrorIs(t, err, ErrInvalidWeight)

	_, err = CompositeScore(1, 1, 1, -0.5)
	assert.ErrorIs(t, err, ErrInvalidWeight)

	_, err = CompositeScore(1, 1, math.NaN(), 0)
	assert.ErrorIs(t, err, ErrInvalidWeight)

	_, err = CompositeScore(-1, 1, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidMetric)
}

func TestCompositeScore_RejectsOverflow(t *testing.T) {
	_, err := CompositeScore(0, 2, 1, 2000)
	assert.ErrorIs(t, err, ErrInvalidWeight)

	_, err = CompositeScore(300, 2, 200, 0)
	assert.ErrorIs(t, err, ErrInvalidWeight)

	got, err := CompositeScore(300, 2, 10, 10)
	require.NoError(t, err)
	assert.False(t, math.IsInf(got, 0))

	_, err = ScoreLanguages([]LanguageAggregate{
		{LanguageUsage: LanguageUsage{Name: "Small", Size: 100}},
		{LanguageUsage: LanguageUsage{Name: "Big", Size: 300}},
	}, 200, 0)
	assert.ErrorIs(t, err, ErrInvalidWeight)
}

func TestScoreLanguages_RecomputesFromSums(t *testing.T) {
	merged, err := MergeLanguages([][]LanguageUsage{
		{{Name: "Go", Size: 9, Count: 1}},
		{{Name: "Go", Size: 16, Count: 3}},
	})
	require.NoError(t, err)

	scored, err := ScoreLanguages(merged, 0.5, 1)
	require.NoError(t, err)
	require.Len(t, scored, 1)

	assert.InDelta(t, 20.0, scored[0].Score, 1e-9)
	assert.Zero(t, merged[0].Score)
}

func TestBuildTable_StableDescending(t *testing.T) {
	in := []LanguageAggregate{
		{LanguageUsage: LanguageUsage{Name: "X"}, Score: 10},
		{LanguageUsage: LanguageUsage{Name: "Y"}, Score: 10},
		{LanguageUsage: LanguageUsage{Name: "Z"}, Score: 5},
	}

	for range 5 {
		table := BuildTable(in)
		assert.Equal(t, []string{"X", "Y", "Z"}, names(table))
	}

	in2 := []LanguageAggregate{in[2], in[0], in[1]}
	table := BuildTable(in2)
	assert.Equal(t, []string{"X", "Y", "Z"}, names(table))
	assert.Equal(t, "Z", in2[0].Name)
}

func TestRankedLanguages_TopAndWithout(t *testing.T) {
	table := RankedLanguages{
		{LanguageUsage: LanguageUsage{Name: "Go"}, Score: 3},
		{LanguageUsage: LanguageUsage{Name: "HTML"}, Score: 2},
		{LanguageUsage: LanguageUsage{Name: "Lua"}, Score: 1},
	}

	assert.Equal(t, []string{"Go", "HTML"}, names(table.Top(2)))
	assert.Len(t, table.Top(0), 3)
	assert.Len(t, table.Top(10), 3)

	assert.Equal(t, []string{"Go", "Lua"}, names(table.Without(" html ")))
	assert.Equal(t, 6.0, table.TotalScore())
}

func names(r RankedLanguages) []string {
	out := make([]string, len(r))
	for i, l := range r {
		out[i] = l.Name
	}
	return out
}
