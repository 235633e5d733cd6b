package analysis

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/nucleus-tools-mcp/internal/profile"
	"github.com/ironsheep/nucleus-tools-mcp/internal/segment"
)

func flatNucleus(t *testing.T, path string, total int, spans ...segment.Span) *Nucleus {
	t.Helper()

	p := make(profile.Profile, total)
	for i := range p {
		p[i] = 180
	}

	r, err := segment.FromSpans(total, spans)
	require.NoError(t, err)

	return &Nucleus{Path: path, Profile: p, Ring: r}
}

func TestBuildPopulation_Squares(t *testing.T) {
	t.Parallel()

	p, m := newTestPipeline(t)

	results, err := p.AnalyzeBatch(context.Background(), squareSet(t), 3)
	require.NoError(t, err)

	nuclei := Nuclei(results)
	require.Len(t, nuclei, 3)

	pop, err := p.BuildPopulation(nuclei)
	require.NoError(t, err)

	assert.Equal(t, 100, pop.Length)
	assert.True(t, pop.SegmentCountsMatch)
	assert.Equal(t, 3, pop.Summary.Count)
	require.Len(t, pop.Summary.Median, 100)
	assert.InDelta(t, 90, pop.Summary.Median[0], 1e-9)
	assert.InDelta(t, 180, pop.Summary.Median[12], 1e-9)

	for i, member := range pop.Members {
		require.NoError(t, member.Err)
		assert.Equal(t, len(nuclei[i].Profile), member.OriginalLength)
		assert.Equal(t, 100, member.Ring.Total())

		for _, s := range member.Ring.Segments() {
			assert.Equal(t, 25, s.Length(), member.Path)
		}
	}

	// The nuclei keep their own rings.
	assert.Equal(t, 80, nuclei[0].Ring.Total())
	assert.InDelta(t, 3, testutil.ToFloat64(m.Rescales.WithLabelValues("ok")), 0)
}

func TestBuildPopulation_MismatchAndRejection(t *testing.T) {
	t.Parallel()

	p, m := newTestPipeline(t)

	nuclei := []*Nucleus{
		flatNucleus(t, "tight", 40, segment.Span{Start: 0, End: 3}, segment.Span{Start: 3, End: 20}, segment.Span{Start: 20, End: 0}),
		flatNucleus(t, "pair", 20, segment.Span{Start: 0, End: 10}, segment.Span{Start: 10, End: 0}),
		flatNucleus(t, "triple", 20, segment.Span{Start: 0, End: 5}, segment.Span{Start: 5, End: 10}, segment.Span{Start: 10, End: 0}),
	}

	pop, err := p.BuildPopulation(nuclei)
	require.NoError(t, err)

	assert.Equal(t, 20, pop.Length)
	assert.False(t, pop.SegmentCountsMatch)

	require.ErrorIs(t, pop.Members[0].Err, segment.ErrRescale)
	assert.Nil(t, pop.Members[0].Ring)
	assert.Equal(t, 40, pop.Members[0].OriginalLength)

	assert.InDelta(t, 2, testutil.ToFloat64(m.Rescales.WithLabelValues("ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Rescales.WithLabelValues("rescale")), 0)
}

func TestBuildPopulation_Empty(t *testing.T) {
	t.Parallel()

	p, _ := newTestPipeline(t)

	_, err := p.BuildPopulation(nil)
	require.ErrorIs(t, err, ErrEmptyPopulation)
}
