package segment

import (
	"fmt"
	"math"
)

// Rescale returns a copy of the ring projected onto a profile of newTotal
// indices. The receiver is not modified.
//
// The first segment's start is mapped proportionally onto the new profile.
// Walking the ring from there, each segment receives round(newTotal × share)
// steps, where share is its fraction of the original profile, and keeps its
// id, lock flag and merge history. The result is linked again, so any
// rounding drift is absorbed by the first segment. A whole-profile ring is
// simply re-anchored at the projected landmark.
//
// Returns ErrOutOfRange for a non-positive newTotal and ErrRescale when the
// rounding would leave a segment below MinimumSegmentLength.
func (r *Ring) Rescale(newTotal int) (*Ring, error) {
	if newTotal <= 0 {
		return nil, fmt.Errorf("%w: profile length %d", ErrOutOfRange, newTotal)
	}

	if newTotal == r.total {
		return r.Copy(), nil
	}

	if len(r.segments) == 1 {
		return &Ring{total: newTotal, segments: []*Segment{r.segments[0].project(newTotal)}}, nil
	}

	cursor := projectIndex(r.segments[0].start, r.total, newTotal)
	scaled := make([]*Segment, len(r.segments))

	for i, s := range r.segments {
		share := float64(s.Length()) / float64(r.total)
		steps := int(math.Round(share * float64(newTotal)))

		if steps < MinimumSegmentLength {
			return nil, fmt.Errorf("%w: %s would be %d long in a %d profile", ErrRescale, s, steps, newTotal)
		}

		ns := s.project(newTotal)
		ns.start = cursor
		ns.end = Wrap(cursor+steps, newTotal)
		scaled[i] = ns
		cursor = ns.end
	}

	ring, err := Link(scaled)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRescale, err)
	}

	return ring, nil
}
