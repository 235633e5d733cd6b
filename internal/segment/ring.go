package segment

import (
	"fmt"

	"github.com/google/uuid"
)

// Span is a raw pair of boundary indices produced by a profile builder.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Ring is the ordered, circular set of segments covering one profile.
//
// Neighbours are resolved by position in the ring: the segment after the
// last one is the first. Every mutating method either succeeds completely or
// leaves the ring as it was.
type Ring struct {
	total    int
	segments []*Segment
}

// Link builds a ring from two or more segments whose boundaries already
// meet end to start.
//
// The segments are copied; the caller's values are not modified. The first
// segment's start is moved to the last segment's end to close the ring, and
// positions are assigned in order from zero. Returns ErrLinking if fewer than
// two segments are given, their profile lengths differ, or the closed ring
// breaks an invariant (a gap, an overlap, a duplicate id or a segment shorter
// than MinimumSegmentLength).
func Link(segments []*Segment) (*Ring, error) {
	if len(segments) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 segments, got %d", ErrLinking, len(segments))
	}

	if segments[0] == nil {
		return nil, fmt.Errorf("%w: nil segment at 0", ErrLinking)
	}

	total := segments[0].total
	copies := make([]*Segment, len(segments))

	for i, s := range segments {
		if s == nil {
			return nil, fmt.Errorf("%w: nil segment at %d", ErrLinking, i)
		}

		if s.total != total {
			return nil, fmt.Errorf("%w: segment %d has profile length %d, expected %d", ErrLinking, i, s.total, total)
		}

		copies[i] = s.Copy()
	}

	copies[0].start = copies[len(copies)-1].end

	r, err := linkOwned(total, copies)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLinking, err)
	}

	return r, nil
}

// linkOwned validates segments already owned by the caller and wraps them in
// a ring without copying.
func linkOwned(total int, segments []*Segment) (*Ring, error) {
	r := &Ring{total: total, segments: segments}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	r.renumber()

	return r, nil
}

// FromSpans creates fresh segments for each span and links them.
func FromSpans(total int, spans []Span) (*Ring, error) {
	segments := make([]*Segment, len(spans))

	for i, sp := range spans {
		s, err := New(sp.Start, sp.End, total)
		if err != nil {
			return nil, fmt.Errorf("%w: span %d: %w", ErrLinking, i, err)
		}

		segments[i] = s
	}

	return Link(segments)
}

// NewWholeRing returns a ring holding a single segment that spans the whole
// profile, starting and ending at landmark.
func NewWholeRing(total, landmark int) (*Ring, error) {
	return NewWholeRingWithID(uuid.New(), total, landmark)
}

// NewWholeRingWithID is NewWholeRing with a caller-supplied segment id.
func NewWholeRingWithID(id uuid.UUID, total, landmark int) (*Ring, error) {
	s, err := NewWithID(id, landmark, landmark, total)
	if err != nil {
		return nil, err
	}

	return &Ring{total: total, segments: []*Segment{s}}, nil
}

// Total returns the profile length.
func (r *Ring) Total() int { return r.total }

// Len returns the number of segments.
func (r *Ring) Len() int { return len(r.segments) }

// IsWhole reports whether the ring is a single segment spanning the profile.
func (r *Ring) IsWhole() bool { return len(r.segments) == 1 }

// Segments returns the ring's segments in traversal order. The segments are
// owned by the ring: their boundaries can only change through ring methods.
func (r *Ring) Segments() []*Segment {
	out := make([]*Segment, len(r.segments))
	copy(out, r.segments)

	return out
}

// IDs returns the segment ids in traversal order.
func (r *Ring) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(r.segments))
	for i, s := range r.segments {
		ids[i] = s.id
	}

	return ids
}

// Segment returns the segment with the given id.
func (r *Ring) Segment(id uuid.UUID) (*Segment, error) {
	i, err := r.indexOf(id)
	if err != nil {
		return nil, err
	}

	return r.segments[i], nil
}

// SegmentAt returns the segment at the given ring position.
func (r *Ring) SegmentAt(position int) (*Segment, error) {
	if position < 0 || position >= len(r.segments) {
		return nil, fmt.Errorf("%w: position %d of %d", ErrNotFound, position, len(r.segments))
	}

	return r.segments[position], nil
}

// SegmentNamed returns the segment with the given name, if any.
func (r *Ring) SegmentNamed(name string) (*Segment, bool) {
	for _, s := range r.segments {
		if s.Name() == name {
			return s, true
		}
	}

	return nil, false
}

// Next returns the segment following the one with the given id.
func (r *Ring) Next(id uuid.UUID) (*Segment, error) {
	i, err := r.indexOf(id)
	if err != nil {
		return nil, err
	}

	return r.segments[r.nextIndex(i)], nil
}

// Prev returns the segment preceding the one with the given id.
func (r *Ring) Prev(id uuid.UUID) (*Segment, error) {
	i, err := r.indexOf(id)
	if err != nil {
		return nil, err
	}

	return r.segments[r.prevIndex(i)], nil
}

// SegmentContaining returns the segment that owns index. A shared boundary
// belongs to the segment that starts there.
func (r *Ring) SegmentContaining(index int) (*Segment, error) {
	if !inRange(index, r.total) {
		return nil, fmt.Errorf("%w: index %d outside profile of length %d", ErrOutOfRange, index, r.total)
	}

	index = Wrap(index, r.total)
	if len(r.segments) == 1 {
		return r.segments[0], nil
	}

	for _, s := range r.segments {
		if index != s.end && contains(s.start, s.end, index) {
			return s, nil
		}
	}

	return nil, fmt.Errorf("%w: no segment contains index %d", ErrNotFound, index)
}

// SetLocked locks or unlocks the segment with the given id.
func (r *Ring) SetLocked(id uuid.UUID, locked bool) error {
	s, err := r.Segment(id)
	if err != nil {
		return err
	}

	s.locked = locked

	return nil
}

// SegmentCountsMatch reports whether o divides its profile into the same
// number of segments as r.
func (r *Ring) SegmentCountsMatch(o *Ring) bool {
	return o != nil && len(r.segments) == len(o.segments)
}

// TotalCombinedLength returns the number of indices produced by iterating
// every segment. Shared boundaries are counted twice, so a consistent ring
// reports Total() + Len().
func (r *Ring) TotalCombinedLength() int {
	sum := 0
	for _, s := range r.segments {
		sum += s.Length() + 1
	}

	return sum
}

// Copy returns an independent deep copy of the ring. Ids, positions, locks
// and merge histories are preserved.
func (r *Ring) Copy() *Ring {
	c := &Ring{total: r.total, segments: make([]*Segment, len(r.segments))}
	for i, s := range r.segments {
		c.segments[i] = s.Copy()
	}

	return c
}

// Offset re-indexes the ring so that every boundary moves by amount. Segment
// lengths are unchanged, so locked segments are moved too.
func (r *Ring) Offset(amount int) {
	for _, s := range r.segments {
		s.shift(amount)
	}
}

// Validate checks every ring invariant and returns the first violation,
// wrapped in ErrInvalidSegment.
func (r *Ring) Validate() error {
	if r.total <= 0 {
		return fmt.Errorf("%w: profile length %d", ErrInvalidSegment, r.total)
	}

	if len(r.segments) == 0 {
		return fmt.Errorf("%w: ring has no segments", ErrInvalidSegment)
	}

	seen := make(map[uuid.UUID]struct{}, len(r.segments))
	for i, s := range r.segments {
		if s.total != r.total {
			return fmt.Errorf("%w: segment %d has profile length %d, expected %d", ErrInvalidSegment, i, s.total, r.total)
		}

		if s.start < 0 || s.start >= r.total || s.end < 0 || s.end >= r.total {
			return fmt.Errorf("%w: segment %d bounds [%d, %d]", ErrInvalidSegment, i, s.start, s.end)
		}

		if _, dup := seen[s.id]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidSegment, s.id)
		}

		seen[s.id] = struct{}{}
	}

	if len(r.segments) == 1 {
		if s := r.segments[0]; s.start != s.end {
			return fmt.Errorf("%w: single segment [%d, %d] does not span the profile", ErrInvalidSegment, s.start, s.end)
		}

		return nil
	}

	sum := 0
	for i, s := range r.segments {
		prev := r.segments[r.prevIndex(i)]
		if prev.end != s.start {
			return fmt.Errorf("%w: segment %d starts at %d but previous ends at %d", ErrInvalidSegment, i, s.start, prev.end)
		}

		if s.start == s.end || s.Length() < MinimumSegmentLength {
			return fmt.Errorf("%w: segment %d length %d below minimum %d", ErrInvalidSegment, i, s.Length(), MinimumSegmentLength)
		}

		sum += s.Length()
	}

	if sum != r.total {
		return fmt.Errorf("%w: segments cover %d steps of a %d profile", ErrInvalidSegment, sum, r.total)
	}

	return nil
}

func (r *Ring) String() string {
	return fmt.Sprintf("Ring(%d segments over %d)", len(r.segments), r.total)
}

func (r *Ring) renumber() {
	for i, s := range r.segments {
		s.position = i
	}
}

func (r *Ring) indexOf(id uuid.UUID) (int, error) {
	for i, s := range r.segments {
		if s.id == id {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (r *Ring) nextIndex(i int) int {
	return (i + 1) % len(r.segments)
}

func (r *Ring) prevIndex(i int) int {
	return (i - 1 + len(r.segments)) % len(r.segments)
}
