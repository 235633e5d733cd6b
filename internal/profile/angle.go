package profile

import (
	"errors"
	"fmt"
	"math"

	"github.com/ironsheep/nucleus-tools-mcp/internal/detection"
)

// Sentinel errors.
var (
	ErrBorderTooShort = errors.New("border too short to profile")
	ErrInvalidWindow  = errors.New("invalid angle window")
	ErrEmptyProfile   = errors.New("empty profile")
	ErrInvalidLength  = errors.New("invalid profile length")
)

// MinBorderLength is the shortest border that can be profiled.
const MinBorderLength = 12

// Profile is a circular sequence of values, one per border point.
type Profile []float64

// Angles builds the interior angle profile of a clockwise border.
//
// The angle at point i is measured between the points i-w and i+w, where
// w = round(windowProportion × len(border)), at least 1. Angles are in
// degrees in [0, 360).
func Angles(border []detection.Point, windowProportion float64) (Profile, error) {
	n := len(border)
	if n < MinBorderLength {
		return nil, fmt.Errorf("%w: %d points, need %d", ErrBorderTooShort, n, MinBorderLength)
	}

	if math.IsNaN(windowProportion) || windowProportion <= 0 || windowProportion >= 0.5 {
		return nil, fmt.Errorf("%w: proportion %v must be in (0, 0.5)", ErrInvalidWindow, windowProportion)
	}

	w := max(1, int(math.Round(windowProportion*float64(n))))
	if 2*w >= n {
		return nil, fmt.Errorf("%w: window %d on a border of %d", ErrInvalidWindow, w, n)
	}

	p := make(Profile, n)
	for i := range border {
		p[i] = interiorAngle(border[(i-w+n)%n], border[i], border[(i+w)%n])
	}

	return p, nil
}

// interiorAngle returns the angle at p inside a clockwise (on screen) border
// passing through a, p and b in that order.
func interiorAngle(a, p, b detection.Point) float64 {
	ax, ay := float64(a.X-p.X), float64(a.Y-p.Y)
	bx, by := float64(b.X-p.X), float64(b.Y-p.Y)

	la, lb := math.Hypot(ax, ay), math.Hypot(bx, by)
	if la == 0 || lb == 0 {
		return 180
	}

	cos := math.Max(-1, math.Min(1, (ax*bx+ay*by)/(la*lb)))
	theta := math.Acos(cos) * 180 / math.Pi

	if ax*by-ay*bx > 0 {
		return math.Mod(360-theta, 360)
	}

	return theta
}

// Landmark returns the index of the smallest value, the sharpest convex tip
// of an angle profile. Ties resolve to the lowest index.
func (p Profile) Landmark() int {
	best := 0
	for i, v := range p {
		if v < p[best] {
			best = i
		}
	}

	return best
}

// Offset returns a copy of p re-indexed so that index becomes zero.
func (p Profile) Offset(index int) Profile {
	n := len(p)
	out := make(Profile, n)
	if n == 0 {
		return out
	}

	index = ((index % n) + n) % n
	copy(out, p[index:])
	copy(out[n-index:], p[:index])

	return out
}

// Smooth returns the circular moving average of p over 2*radius+1 values.
func (p Profile) Smooth(radius int) Profile {
	n := len(p)
	out := make(Profile, n)
	if radius <= 0 || n == 0 {
		copy(out, p)
		return out
	}

	width := float64(2*radius + 1)
	for i := range p {
		sum := 0.0
		for k := -radius; k <= radius; k++ {
			sum += p[((i+k)%n+n)%n]
		}
		out[i] = sum / width
	}

	return out
}

// Interpolate resamples p onto length points by circular linear interpolation.
func (p Profile) Interpolate(length int) (Profile, error) {
	n := len(p)
	if n == 0 {
		return nil, ErrEmptyProfile
	}

	if length <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}

	out := make(Profile, length)
	for i := range out {
		pos := float64(i) * float64(n) / float64(length)
		lo := int(math.Floor(pos))
		frac := pos - float64(lo)
		out[i] = p[lo%n]*(1-frac) + p[(lo+1)%n]*frac
	}

	return out, nil
}
