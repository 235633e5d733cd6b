package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/nucleus-tools-mcp/internal/detection"
	"github.com/ironsheep/nucleus-tools-mcp/internal/imaging"
)

// traceMask returns the border of the largest component of a mask in which
// fill reports foreground pixels.
func traceMask(t *testing.T, width, height int, fill func(x, y int) bool) []detection.Point {
	t.Helper()

	m := imaging.NewMask(width, height)
	for y := range height {
		for x := range width {
			m.Set(x, y, fill(x, y))
		}
	}

	labels, comps := detection.LabelComponents(m)
	require.NotEmpty(t, comps)

	return detection.TraceBorder(labels, comps[0])
}

func squareBorder(t *testing.T) []detection.Point {
	t.Helper()

	return traceMask(t, 40, 40, func(x, y int) bool {
		return x >= 10 && x <= 30 && y >= 10 && y <= 30
	})
}

func TestAngles_Square(t *testing.T) {
	t.Parallel()

	border := squareBorder(t)
	require.Len(t, border, 80)
	require.Equal(t, detection.Point{X: 10, Y: 10}, border[0])

	p, err := Angles(border, 0.05)
	require.NoError(t, err)
	require.Len(t, p, 80)

	for _, corner := range []int{0, 20, 40, 60} {
		assert.InDelta(t, 90, p[corner], 1e-9, "corner %d", corner)
	}

	for _, edge := range []int{10, 30, 50, 70} {
		assert.InDelta(t, 180, p[edge], 1e-9, "edge %d", edge)
	}

	for i, v := range p {
		assert.LessOrEqual(t, v, 180+1e-9, "convex shape has no reflex angle at %d", i)
	}

	assert.Equal(t, 0, p.Landmark())
}

func TestAngles_ConcaveCorner(t *testing.T) {
	t.Parallel()

	// Square with its lower right quadrant removed; the notch corner is (20,20).
	border := traceMask(t, 40, 40, func(x, y int) bool {
		inSquare := x >= 10 && x <= 30 && y >= 10 && y <= 30
		inNotch := x > 20 && y > 20
		return inSquare && !inNotch
	})

	p, err := Angles(border, 0.05)
	require.NoError(t, err)

	notch := -1
	for i, pt := range border {
		if pt == (detection.Point{X: 20, Y: 20}) {
			notch = i
		}
	}
	require.NotEqual(t, -1, notch)

	assert.InDelta(t, 270, p[notch], 1e-9)

	top := 0
	for i, v := range p {
		if v > p[top] {
			top = i
		}
	}
	assert.Equal(t, notch, top)
}

func TestAngles_Errors(t *testing.T) {
	t.Parallel()

	border := squareBorder(t)

	_, err := Angles(border[:MinBorderLength-1], 0.05)
	require.ErrorIs(t, err, ErrBorderTooShort)

	for _, prop := range []float64{0, -0.1, 0.5, 0.9} {
		_, err := Angles(border, prop)
		require.ErrorIs(t, err, ErrInvalidWindow, "proportion %v", prop)
	}
}

func TestProfile_Landmark(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, Profile{180, 170, 60, 90, 60}.Landmark())
	assert.Equal(t, 0, Profile{}.Landmark())
}

func TestProfile_Offset(t *testing.T) {
	t.Parallel()

	p := Profile{1, 2, 3, 4}

	assert.Equal(t, Profile{2, 3, 4, 1}, p.Offset(1))
	assert.Equal(t, Profile{4, 1, 2, 3}, p.Offset(-1))
	assert.Equal(t, Profile{2, 3, 4, 1}, p.Offset(5))
	assert.Equal(t, Profile{1, 2, 3, 4}, p.Offset(0))
	assert.Equal(t, Profile{1, 2, 3, 4}, p, "original untouched")
	assert.Empty(t, Profile{}.Offset(3))
}

func TestProfile_Smooth(t *testing.T) {
	t.Parallel()

	p := Profile{0, 0, 3, 0, 0}

	assert.InDeltaSlice(t, []float64{0, 1, 1, 1, 0}, p.Smooth(1), 1e-9)
	assert.Equal(t, p, p.Smooth(0))

	wrapped := Profile{3, 0, 0, 0, 0}.Smooth(1)
	assert.InDeltaSlice(t, []float64{1, 1, 0, 0, 1}, wrapped, 1e-9)
}

func TestProfile_Interpolate(t *testing.T) {
	t.Parallel()

	p := Profile{0, 10, 20, 30}

	up, err := p.Interpolate(8)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 5, 10, 15, 20, 25, 30, 15}, up, 1e-9)

	same, err := p.Interpolate(4)
	require.NoError(t, err)
	assert.Equal(t, p, same)

	down, err := p.Interpolate(2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 20}, down, 1e-9)

	_, err = p.Interpolate(0)
	require.ErrorIs(t, err, ErrInvalidLength)

	_, err = Profile{}.Interpolate(4)
	require.ErrorIs(t, err, ErrEmptyProfile)
}
