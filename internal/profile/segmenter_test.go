package profile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/nucleus-tools-mcp/internal/segment"
)

// withDips returns a flat profile of length n at 180 degrees with a
// triangular dip of the given depth centred on each key. Negative depths
// make peaks.
func withDips(n, width int, dips map[int]float64) Profile {
	p := make(Profile, n)
	for i := range p {
		p[i] = 180
	}

	for centre, depth := range dips {
		for d := -width; d <= width; d++ {
			i := ((centre+d)%n + n) % n
			p[i] = 180 - depth*(1-math.Abs(float64(d))/float64(width+1))
		}
	}

	return p
}

var exactOptions = SegmentOptions{MinLength: 10, Deviation: 5}

func TestBoundaries(t *testing.T) {
	t.Parallel()

	p := withDips(100, 2, map[int]float64{0: 90, 25: 80, 50: -80, 75: 85})

	assert.Equal(t, []int{0, 25, 50, 75}, Boundaries(p, exactOptions))
}

func TestBoundaries_MinLength(t *testing.T) {
	t.Parallel()

	// 45 is too close to 38 and 93 too close to the landmark.
	p := withDips(100, 2, map[int]float64{0: 90, 25: 60, 38: 60, 45: 60, 93: 60})

	assert.Equal(t, []int{0, 25, 38}, Boundaries(p, exactOptions))
}

func TestBoundaries_Deviation(t *testing.T) {
	t.Parallel()

	p := withDips(100, 2, map[int]float64{0: 90, 50: 3})

	assert.Equal(t, []int{0}, Boundaries(p, exactOptions))
	assert.Nil(t, Boundaries(Profile{}, exactOptions))
}

func TestBoundaries_RaisesMinLength(t *testing.T) {
	t.Parallel()

	p := withDips(40, 0, map[int]float64{0: 90, 2: 60, 20: 60})

	got := Boundaries(p, SegmentOptions{MinLength: 1, Deviation: 5})
	assert.Equal(t, []int{0, 20}, got)
}

func TestSegment(t *testing.T) {
	t.Parallel()

	p := withDips(100, 2, map[int]float64{0: 90, 25: 80, 50: -80, 75: 85})

	r, err := Segment(p, exactOptions)
	require.NoError(t, err)
	require.NoError(t, r.Validate())

	assert.Equal(t, 100, r.Total())
	require.Equal(t, 4, r.Len())

	want := [][2]int{{0, 25}, {25, 50}, {50, 75}, {75, 0}}
	for i, s := range r.Segments() {
		assert.Equal(t, want[i], [2]int{s.Start(), s.End()}, "segment %d", i)
		assert.Equal(t, i, s.Position())
	}
}

func TestSegment_Whole(t *testing.T) {
	t.Parallel()

	r, err := Segment(withDips(60, 2, map[int]float64{0: 90}), exactOptions)
	require.NoError(t, err)

	require.True(t, r.IsWhole())
	s := r.Segments()[0]
	assert.Equal(t, 0, s.Start())
	assert.Equal(t, 0, s.End())
	assert.Equal(t, 60, r.Total())

	_, err = Segment(Profile{}, exactOptions)
	require.ErrorIs(t, err, ErrEmptyProfile)
}

func TestSegment_SquareBorder(t *testing.T) {
	t.Parallel()

	p, err := Angles(squareBorder(t), 0.05)
	require.NoError(t, err)

	r, err := Segment(p.Offset(p.Landmark()), DefaultSegmentOptions())
	require.NoError(t, err)

	// One segment per side.
	require.Equal(t, 4, r.Len())
	for _, s := range r.Segments() {
		assert.Equal(t, 20, s.Length(), "side %s", s.Name())
	}

	// The edited ring stays closed.
	first := r.Segments()[0]
	require.NoError(t, r.Update(first.ID(), first.Start(), first.End()+2))
	assert.Equal(t, 22, first.End())
	assert.NoError(t, r.Validate())
	assert.GreaterOrEqual(t, r.Segments()[1].Length(), segment.MinimumSegmentLength)
}
