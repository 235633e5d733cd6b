package segment

import (
	"fmt"

	"github.com/google/uuid"
)

// Update moves the boundaries of the segment with the given id to newStart
// and newEnd, carrying each moved boundary into the neighbour that shares it.
//
// The edit is validated against the whole neighbourhood before anything is
// changed. Rejections are returned as *UpdateError and leave the ring
// unmodified:
//
//   - ErrLocked: the segment, or a neighbour whose boundary would move, is locked
//   - ErrTooShort: the segment itself would fall below MinimumSegmentLength
//   - ErrPreviousTooShort / ErrNextTooShort: a neighbour would fall below it
//   - ErrInversion: the new end would not come after the new start
//   - ErrNeighborInversion: a boundary would cross the far end of a neighbour
//   - ErrPartialCoverage: a whole-profile segment would stop covering the profile
//
// Requesting the current boundaries is a no-op and always succeeds, even on a
// locked segment. Indices outside [0, Total()] fail with ErrOutOfRange and an
// unknown id with ErrNotFound.
func (r *Ring) Update(id uuid.UUID, newStart, newEnd int) error {
	_, err := r.update(id, newStart, newEnd)

	return err
}

// update performs Update and returns the number of propagation steps taken.
func (r *Ring) update(id uuid.UUID, newStart, newEnd int) (int, error) {
	i, err := r.indexOf(id)
	if err != nil {
		return 0, err
	}

	if !inRange(newStart, r.total) || !inRange(newEnd, r.total) {
		return 0, fmt.Errorf("%w: [%d, %d] outside profile of length %d", ErrOutOfRange, newStart, newEnd, r.total)
	}

	newStart, newEnd = Wrap(newStart, r.total), Wrap(newEnd, r.total)

	if err := r.check(i, newStart, newEnd); err != nil {
		return 0, &UpdateError{ID: id, Start: newStart, End: newEnd, Err: err}
	}

	return r.propagate(i, newStart, newEnd), nil
}

// check decides whether segment i may move to [start, end] without breaking
// any ring invariant. It never mutates the ring.
func (r *Ring) check(i, start, end int) error {
	seg := r.segments[i]

	startMoves, endMoves := start != seg.start, end != seg.end
	if !startMoves && !endMoves {
		return nil
	}

	if seg.locked {
		return ErrLocked
	}

	if len(r.segments) == 1 {
		if start != end {
			return ErrPartialCoverage
		}

		return nil
	}

	prev, next := r.segments[r.prevIndex(i)], r.segments[r.nextIndex(i)]

	if startMoves && prev.locked {
		return fmt.Errorf("%w: previous segment %s", ErrLocked, prev.Name())
	}

	if endMoves && next.locked {
		return fmt.Errorf("%w: next segment %s", ErrLocked, next.Name())
	}

	if SpanLength(start, end, r.total) < MinimumSegmentLength {
		return ErrTooShort
	}

	if len(r.segments) == 2 {
		return r.checkPair(start, end, startMoves)
	}

	if startMoves && SpanLength(prev.start, start, r.total) < MinimumSegmentLength {
		return ErrPreviousTooShort
	}

	if endMoves && SpanLength(end, next.end, r.total) < MinimumSegmentLength {
		return ErrNextTooShort
	}

	// Measure the new boundaries from the previous segment's start. The three
	// segments together occupy [0, window] in this frame and the new
	// boundaries must stay strictly inside it, start before end.
	window := SpanLength(prev.start, next.end, r.total)
	ps := forward(prev.start, start, r.total)

	pe := forward(prev.start, end, r.total)
	if pe == 0 {
		pe = r.total
	}

	if ps == 0 || ps >= window || pe >= window {
		return ErrNeighborInversion
	}

	if pe <= ps {
		return ErrInversion
	}

	return nil
}

// checkPair validates an edit in a two-segment ring, where the other segment
// is both previous and next and always becomes [end, start].
func (r *Ring) checkPair(start, end int, startMoves bool) error {
	if start == end {
		return ErrInversion
	}

	if SpanLength(end, start, r.total) < MinimumSegmentLength {
		if startMoves {
			return ErrPreviousTooShort
		}

		return ErrNextTooShort
	}

	return nil
}

// propagate sets segment i to [start, end] and carries any moved boundary
// into the neighbour sharing it. A call that changes nothing stops the
// chain, so walking back into an already-updated segment terminates. It
// returns the number of calls made.
func (r *Ring) propagate(i, start, end int) int {
	seg := r.segments[i]
	if seg.start == start && seg.end == end {
		return 1
	}

	startMoved, endMoved := seg.start != start, seg.end != end
	seg.start, seg.end = start, end
	calls := 1

	if startMoved {
		p := r.prevIndex(i)
		calls += r.propagate(p, r.segments[p].start, start)
	}

	if endMoved {
		n := r.nextIndex(i)
		calls += r.propagate(n, end, r.segments[n].end)
	}

	return calls
}
