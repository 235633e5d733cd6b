package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		i, length int
		want      int
	}{
		{"zero", 0, 10, 0},
		{"inside", 9, 10, 9},
		{"length wraps to zero", 10, 10, 0},
		{"beyond", 25, 10, 5},
		{"negative", -1, 10, 9},
		{"far negative", -21, 10, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Wrap(tt.i, tt.length))
		})
	}
}

// TestWrap_Symmetry checks wrap is the identity inside the profile and
// periodic outside it.
func TestWrap_Symmetry(t *testing.T) {
	t.Parallel()

	for total := 1; total <= 25; total++ {
		for i := range total {
			assert.Equal(t, i, Wrap(i, total))
			assert.Equal(t, Wrap(i, total), Wrap(i+total, total))
			assert.Equal(t, Wrap(i, total), Wrap(i-total, total))
		}
	}
}

func TestWrap_PanicsOnNonPositiveLength(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { Wrap(3, 0) })
	assert.Panics(t, func() { Wrap(3, -4) })
}

func TestSpanLength(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5, SpanLength(0, 5, 10))
	assert.Equal(t, 5, SpanLength(5, 0, 10))
	assert.Equal(t, 4, SpanLength(8, 2, 10))
	assert.Equal(t, 10, SpanLength(4, 4, 10))
}

func TestWraps(t *testing.T) {
	t.Parallel()

	assert.False(t, Wraps(0, 5))
	assert.True(t, Wraps(5, 0))
	assert.True(t, Wraps(4, 4))
}

func TestContains(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		start, end, index int
		want              bool
	}{
		{"inside", 2, 6, 4, true},
		{"at start", 2, 6, 2, true},
		{"at end", 2, 6, 6, true},
		{"after", 2, 6, 7, false},
		{"wrapping tail", 8, 2, 9, true},
		{"wrapping zero", 8, 2, 0, true},
		{"wrapping gap", 8, 2, 5, false},
		{"whole profile", 4, 4, 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Contains(tt.start, tt.end, tt.index, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContains_OutOfRange(t *testing.T) {
	t.Parallel()

	_, err := Contains(2, 6, 11, 10)
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = Contains(2, 6, -1, 10)
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = Contains(2, 6, 3, 0)
	require.ErrorIs(t, err, ErrOutOfRange)
}

// TestSpanLength_MatchesIteration compares the wrap-aware formula with a
// brute-force walk over every span of small profiles.
func TestSpanLength_MatchesIteration(t *testing.T) {
	t.Parallel()

	for total := 1; total <= 12; total++ {
		for start := range total {
			for end := range total {
				s, err := New(start, end, total)
				require.NoError(t, err)

				count := 0
				for range s.Indices() {
					count++
				}

				assert.Equal(t, SpanLength(start, end, total), count-1, "span %d-%d/%d", start, end, total)
				assert.Equal(t, end <= start, s.Wraps())
			}
		}
	}
}
