package segment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sixteenRing(t *testing.T) *Ring {
	t.Helper()

	return mustRing(t, 16, Span{0, 4}, Span{4, 8}, Span{8, 12}, Span{12, 0})
}

func TestMerge_Adjacent(t *testing.T) {
	t.Parallel()

	r := sixteenRing(t)
	ids := r.IDs()

	merged, err := r.Merge(ids[0], ids[1])
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{0, 8}, {8, 12}, {12, 0}}, bounds(r))
	assert.Equal(t, []uuid.UUID{merged, ids[2], ids[3]}, r.IDs())
	requireClosed(t, r)

	s, ok := r.SegmentNamed("Seg_0")
	require.True(t, ok)
	assert.Equal(t, merged, s.ID())

	sources := s.MergeSources()
	require.Len(t, sources, 2)
	assert.Equal(t, ids[0], sources[0].ID())
	assert.Equal(t, ids[1], sources[1].ID())
}

func TestMerge_AcrossSeam(t *testing.T) {
	t.Parallel()

	r := sixteenRing(t)
	ids := r.IDs()

	merged, err := r.Merge(ids[3], ids[0])
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{12, 4}, {4, 8}, {8, 12}}, bounds(r))
	assert.Equal(t, merged, r.IDs()[0])
	requireClosed(t, r)
}

func TestMerge_Rejects(t *testing.T) {
	t.Parallel()

	r := sixteenRing(t)
	ids := r.IDs()
	before := bounds(r)

	_, err := r.Merge(ids[0], ids[2])
	require.ErrorIs(t, err, ErrNotAdjacent)

	_, err = r.Merge(ids[1], ids[0])
	require.ErrorIs(t, err, ErrNotAdjacent)

	_, err = r.Merge(ids[0], uuid.New())
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, r.SetLocked(ids[1], true))
	_, err = r.Merge(ids[0], ids[1])
	require.ErrorIs(t, err, ErrLocked)

	assert.Equal(t, before, bounds(r))
	assert.Equal(t, ids, r.IDs())
}

func TestMerge_TwoSegmentRing(t *testing.T) {
	t.Parallel()

	r := mustRing(t, 10, Span{0, 5}, Span{5, 0})
	ids := r.IDs()

	merged, err := r.Merge(ids[0], ids[1])
	require.NoError(t, err)

	require.True(t, r.IsWhole())
	s, err := r.Segment(merged)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Start())
	assert.Equal(t, 0, s.End())
	assert.Equal(t, 10, s.Length())

	_, err = r.Merge(merged, merged)
	require.ErrorIs(t, err, ErrNotAdjacent)

	require.NoError(t, r.Unmerge(merged))
	assert.Equal(t, ids, r.IDs())
	assert.Equal(t, [][2]int{{0, 5}, {5, 0}}, bounds(r))
}

func TestUnmerge_Restores(t *testing.T) {
	t.Parallel()

	r := sixteenRing(t)
	ids := r.IDs()

	merged, err := r.Merge(ids[0], ids[1])
	require.NoError(t, err)
	require.NoError(t, r.Unmerge(merged))

	assert.Equal(t, ids, r.IDs())
	assert.Equal(t, [][2]int{{0, 4}, {4, 8}, {8, 12}, {12, 0}}, bounds(r))
	requireClosed(t, r)
}

func TestUnmerge_Nested(t *testing.T) {
	t.Parallel()

	r := sixteenRing(t)
	ids := r.IDs()

	inner, err := r.Merge(ids[0], ids[1])
	require.NoError(t, err)

	outer, err := r.Merge(inner, ids[2])
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 12}, {12, 0}}, bounds(r))

	s, err := r.Segment(outer)
	require.NoError(t, err)
	assert.True(t, s.HasMergeSource(ids[0]))
	assert.True(t, s.HasMergeSource(inner))

	src, err := s.MergeSource(ids[1])
	require.NoError(t, err)
	assert.Equal(t, 4, src.Start())

	require.NoError(t, r.Unmerge(outer))
	assert.Equal(t, []uuid.UUID{inner, ids[2], ids[3]}, r.IDs())

	require.NoError(t, r.Unmerge(inner))
	assert.Equal(t, ids, r.IDs())
}

func TestUnmerge_Rejects(t *testing.T) {
	t.Parallel()

	r := sixteenRing(t)
	ids := r.IDs()

	require.ErrorIs(t, r.Unmerge(ids[2]), ErrNotFound)
	require.ErrorIs(t, r.Unmerge(uuid.New()), ErrNotFound)

	merged, err := r.Merge(ids[0], ids[1])
	require.NoError(t, err)
	require.NoError(t, r.Update(merged, 0, 9))

	before := bounds(r)
	require.ErrorIs(t, r.Unmerge(merged), ErrInvalidSegment)
	assert.Equal(t, before, bounds(r))

	require.NoError(t, r.Update(merged, 0, 8))
	require.NoError(t, r.SetLocked(merged, true))
	require.ErrorIs(t, r.Unmerge(merged), ErrLocked)

	require.NoError(t, r.SetLocked(merged, false))
	require.NoError(t, r.Unmerge(merged))
}

func TestSplit(t *testing.T) {
	t.Parallel()

	r := mustRing(t, 30, Span{0, 10}, Span{10, 20}, Span{20, 0})
	ids := r.IDs()

	first, second, err := r.Split(ids[0], 5)
	require.NoError(t, err)

	assert.NotEqual(t, ids[0], first)
	assert.NotEqual(t, first, second)
	assert.Equal(t, []uuid.UUID{first, second, ids[1], ids[2]}, r.IDs())
	assert.Equal(t, [][2]int{{0, 5}, {5, 10}, {10, 20}, {20, 0}}, bounds(r))
	requireClosed(t, r)
}

func TestSplit_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		index int
		want  error
	}{
		{"at start", 0, ErrTooShort},
		{"at end", 10, ErrTooShort},
		{"short first half", 2, ErrTooShort},
		{"short second half", 8, ErrTooShort},
		{"outside segment", 15, ErrOutOfRange},
		{"outside profile", 31, ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := mustRing(t, 30, Span{0, 10}, Span{10, 20}, Span{20, 0})

			_, _, err := r.Split(r.IDs()[0], tt.index)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, 3, r.Len())
		})
	}
}

func TestSplit_Locked(t *testing.T) {
	t.Parallel()

	r := mustRing(t, 30, Span{0, 10}, Span{10, 20}, Span{20, 0})
	require.NoError(t, r.SetLocked(r.IDs()[0], true))

	_, _, err := r.Split(r.IDs()[0], 5)
	require.ErrorIs(t, err, ErrLocked)
}

func TestSplit_WholeRing(t *testing.T) {
	t.Parallel()

	r, err := NewWholeRing(10, 0)
	require.NoError(t, err)

	_, _, err = r.Split(r.IDs()[0], 4)
	require.NoError(t, err)

	assert.Equal(t, [][2]int{{0, 4}, {4, 0}}, bounds(r))
	requireClosed(t, r)
}
