package profile

import (
	"fmt"
	"math"

	"github.com/ironsheep/nucleus-tools-mcp/internal/segment"
)

// SegmentOptions controls Segment.
type SegmentOptions struct {
	// MinLength is the shortest segment that may be created. Values below
	// segment.MinimumSegmentLength are raised to it.
	MinLength int

	// Deviation is how far, in degrees, an extremum must lie from a straight
	// line (180) to become a boundary.
	Deviation float64

	// SmoothRadius is the moving average radius applied before extrema are
	// searched for. Zero disables smoothing.
	SmoothRadius int
}

// DefaultSegmentOptions returns the options used when none are configured.
func DefaultSegmentOptions() SegmentOptions {
	return SegmentOptions{MinLength: 10, Deviation: 5, SmoothRadius: 2}
}

// Boundaries returns the boundary indices for p, in ascending order.
//
// Index zero, the landmark of an offset profile, is always the first boundary.
// Further boundaries are local extrema within MinLength/2 points on either
// side that deviate from 180 degrees by at least Deviation, kept greedily in
// index order while every gap, including the one that wraps back to zero, is
// at least MinLength.
func Boundaries(p Profile, opts SegmentOptions) []int {
	n := len(p)
	if n == 0 {
		return nil
	}

	minLength := max(opts.MinLength, segment.MinimumSegmentLength)
	reach := max(1, minLength/2)
	s := p.Smooth(opts.SmoothRadius)

	bounds := []int{0}
	for i := 1; i < n; i++ {
		if math.Abs(s[i]-180) < opts.Deviation {
			continue
		}

		if !isExtremum(s, i, reach) {
			continue
		}

		if i-bounds[len(bounds)-1] >= minLength && n-i >= minLength {
			bounds = append(bounds, i)
		}
	}

	return bounds
}

// isExtremum reports whether s[i] is a local minimum or maximum within reach
// points on either side. On a plateau only the first point qualifies.
func isExtremum(s Profile, i, reach int) bool {
	n := len(s)
	isMin, isMax := true, true

	for k := 1; k <= reach && (isMin || isMax); k++ {
		before := s[((i-k)%n+n)%n]
		after := s[(i+k)%n]

		if s[i] >= before || s[i] > after {
			isMin = false
		}

		if s[i] <= before || s[i] < after {
			isMax = false
		}
	}

	return isMin || isMax
}

// Segment divides an offset profile into a linked ring.
//
// With fewer than two boundaries the ring is a single segment starting and
// ending at the landmark.
func Segment(p Profile, opts SegmentOptions) (*segment.Ring, error) {
	if len(p) == 0 {
		return nil, ErrEmptyProfile
	}

	bounds := Boundaries(p, opts)
	if len(bounds) < 2 {
		return segment.NewWholeRing(len(p), 0)
	}

	spans := make([]segment.Span, len(bounds))
	for i, b := range bounds {
		spans[i] = segment.Span{Start: b, End: bounds[(i+1)%len(bounds)]}
	}

	ring, err := segment.FromSpans(len(p), spans)
	if err != nil {
		return nil, fmt.Errorf("segment profile: %w", err)
	}

	return ring, nil
}
