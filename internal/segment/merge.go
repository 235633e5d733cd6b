package segment

import (
	"fmt"

	"github.com/google/uuid"
)

// Merge replaces two adjacent segments with a single new segment spanning
// both. The originals are recorded as the new segment's merge sources, first
// then second. Merging the two segments of a two-segment ring yields a
// whole-profile ring.
//
// second must directly follow first. Returns the id of the merged segment.
func (r *Ring) Merge(first, second uuid.UUID) (uuid.UUID, error) {
	i, err := r.indexOf(first)
	if err != nil {
		return uuid.Nil, err
	}

	j, err := r.indexOf(second)
	if err != nil {
		return uuid.Nil, err
	}

	if len(r.segments) < 2 || r.nextIndex(i) != j {
		return uuid.Nil, fmt.Errorf("%w: %s does not follow %s", ErrNotAdjacent, r.segments[j], r.segments[i])
	}

	a, b := r.segments[i], r.segments[j]
	if a.locked || b.locked {
		return uuid.Nil, fmt.Errorf("%w: cannot merge %s and %s", ErrLocked, a, b)
	}

	merged := &Segment{
		id:           uuid.New(),
		start:        a.start,
		end:          b.end,
		total:        r.total,
		mergeSources: []*Segment{a.Copy(), b.Copy()},
	}

	segments := make([]*Segment, 0, len(r.segments)-1)
	if j == 0 {
		segments = append(segments, merged)
		segments = append(segments, r.segments[1:i]...)
	} else {
		segments = append(segments, r.segments[:i]...)
		segments = append(segments, merged)
		segments = append(segments, r.segments[j+1:]...)
	}

	if err := r.replace(segments); err != nil {
		return uuid.Nil, err
	}

	return merged.id, nil
}

// Unmerge replaces a merged segment with its merge sources, which must tile
// it exactly and each satisfy the minimum length.
func (r *Ring) Unmerge(id uuid.UUID) error {
	i, err := r.indexOf(id)
	if err != nil {
		return err
	}

	seg := r.segments[i]
	if seg.locked {
		return fmt.Errorf("%w: cannot unmerge %s", ErrLocked, seg)
	}

	if len(seg.mergeSources) == 0 {
		return fmt.Errorf("%w: %s has no merge sources", ErrNotFound, seg)
	}

	sources := seg.MergeSources()
	if sources[0].start != seg.start || sources[len(sources)-1].end != seg.end {
		return fmt.Errorf("%w: merge sources of %s do not reach its boundaries", ErrInvalidSegment, seg)
	}

	for k := 1; k < len(sources); k++ {
		if sources[k].start != sources[k-1].end {
			return fmt.Errorf("%w: merge sources of %s are not contiguous", ErrInvalidSegment, seg)
		}
	}

	segments := make([]*Segment, 0, len(r.segments)+len(sources)-1)
	segments = append(segments, r.segments[:i]...)
	segments = append(segments, sources...)
	segments = append(segments, r.segments[i+1:]...)

	return r.replace(segments)
}

// Split divides a segment at index into two new segments with fresh ids.
// Both halves must satisfy the minimum length. Returns the ids of the halves
// in ring order.
func (r *Ring) Split(id uuid.UUID, index int) (uuid.UUID, uuid.UUID, error) {
	i, err := r.indexOf(id)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	seg := r.segments[i]
	if seg.locked {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: cannot split %s", ErrLocked, seg)
	}

	if err := seg.requireContains(index); err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	index = Wrap(index, r.total)
	if index == seg.start || index == seg.end {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: split at boundary %d of %s", ErrTooShort, index, seg)
	}

	if SpanLength(seg.start, index, r.total) < MinimumSegmentLength ||
		SpanLength(index, seg.end, r.total) < MinimumSegmentLength {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: split of %s at %d", ErrTooShort, seg, index)
	}

	first := &Segment{id: uuid.New(), start: seg.start, end: index, total: r.total}
	second := &Segment{id: uuid.New(), start: index, end: seg.end, total: r.total}

	segments := make([]*Segment, 0, len(r.segments)+1)
	segments = append(segments, r.segments[:i]...)
	segments = append(segments, first, second)
	segments = append(segments, r.segments[i+1:]...)

	if err := r.replace(segments); err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	return first.id, second.id, nil
}

// replace validates a candidate segment list and, only if it is valid,
// installs it as the ring's contents.
func (r *Ring) replace(segments []*Segment) error {
	candidate, err := linkOwned(r.total, segments)
	if err != nil {
		return err
	}

	r.segments = candidate.segments

	return nil
}
