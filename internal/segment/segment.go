package segment

import (
	"fmt"
	"iter"
	"math"
	"strconv"

	"github.com/google/uuid"
)

// namePrefix is prepended to a segment's ring position to form its name.
const namePrefix = "Seg_"

// Segment is a contiguous arc of a profile, bounded by inclusive start and
// end indices.
//
// The id is assigned at creation and survives copies and rescaling. Start
// and end can only be changed through the Ring that owns the segment; the
// lock flag and merge history may be changed directly.
type Segment struct {
	id           uuid.UUID
	start        int
	end          int
	total        int
	locked       bool
	position     int
	mergeSources []*Segment
}

// New creates a segment with a fresh id covering start to end on a profile
// of the given length.
func New(start, end, total int) (*Segment, error) {
	return NewWithID(uuid.New(), start, end, total)
}

// NewWithID creates a segment with a caller-supplied id.
//
// Start and end must lie in [0, total]; an index equal to total is stored as
// zero. Returns ErrInvalidSegment for a non-positive total, a nil id, or
// indices outside the profile.
func NewWithID(id uuid.UUID, start, end, total int) (*Segment, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: nil id", ErrInvalidSegment)
	}

	if total <= 0 {
		return nil, fmt.Errorf("%w: profile length %d", ErrInvalidSegment, total)
	}

	if !inRange(start, total) || !inRange(end, total) {
		return nil, fmt.Errorf("%w: [%d, %d] outside profile of length %d", ErrInvalidSegment, start, end, total)
	}

	return &Segment{
		id:    id,
		start: Wrap(start, total),
		end:   Wrap(end, total),
		total: total,
	}, nil
}

// ID returns the segment's stable identifier.
func (s *Segment) ID() uuid.UUID { return s.id }

// Start returns the first index of the segment.
func (s *Segment) Start() int { return s.start }

// End returns the last index of the segment.
func (s *Segment) End() int { return s.end }

// Total returns the length of the profile the segment is defined against.
func (s *Segment) Total() int { return s.total }

// Position returns the segment's ordinal in ring traversal order.
func (s *Segment) Position() int { return s.position }

// Name returns the display name derived from the ring position, e.g. "Seg_0".
func (s *Segment) Name() string {
	return namePrefix + strconv.Itoa(s.position)
}

// IsLocked reports whether the segment rejects boundary changes.
func (s *Segment) IsLocked() bool { return s.locked }

// SetLocked pins or releases the segment's boundaries.
func (s *Segment) SetLocked(locked bool) { s.locked = locked }

// Length returns the number of steps from start to end. A segment whose
// start and end coincide spans the whole profile.
func (s *Segment) Length() int {
	return SpanLength(s.start, s.end, s.total)
}

// Wraps reports whether the segment passes through index zero.
func (s *Segment) Wraps() bool {
	return Wraps(s.start, s.end)
}

// Contains reports whether index lies within the segment, endpoints included.
func (s *Segment) Contains(index int) (bool, error) {
	return Contains(s.start, s.end, index, s.total)
}

// Indices yields every index from start to end inclusive, wrapping through
// zero when the segment wraps. Each call starts a fresh sequence of
// Length()+1 indices, so a boundary index is produced by both segments that
// share it.
func (s *Segment) Indices() iter.Seq[int] {
	start, length, total := s.start, s.Length(), s.total

	return func(yield func(int) bool) {
		for i := 0; i <= length; i++ {
			if !yield(Wrap(start+i, total)) {
				return
			}
		}
	}
}

// ProportionalIndex returns the index reached after walking
// round(fraction × Length()) steps from the start. Fraction must lie in
// [0, 1].
func (s *Segment) ProportionalIndex(fraction float64) (int, error) {
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return 0, fmt.Errorf("%w: fraction %v", ErrOutOfRange, fraction)
	}

	steps := int(math.Round(fraction * float64(s.Length())))

	return Wrap(s.start+steps, s.total), nil
}

// IndexProportion is the inverse of ProportionalIndex: the fraction of the
// segment's length between its start and index.
func (s *Segment) IndexProportion(index int) (float64, error) {
	ok, err := s.Contains(index)
	if err != nil {
		return 0, err
	}

	if !ok {
		return 0, fmt.Errorf("%w: index %d not in %s", ErrOutOfRange, index, s)
	}

	return float64(forward(s.start, Wrap(index, s.total), s.total)) / float64(s.Length()), nil
}

// MidpointIndex returns the index halfway along the segment, rounding
// towards the start.
func (s *Segment) MidpointIndex() int {
	return Wrap(s.start+s.Length()/2, s.total)
}

// ShortestDistanceToStart returns the fewest steps between index and the
// segment start, travelling in either direction around the profile.
func (s *Segment) ShortestDistanceToStart(index int) (int, error) {
	return s.shortestDistance(s.start, index)
}

// ShortestDistanceToEnd returns the fewest steps between index and the
// segment end, travelling in either direction around the profile.
func (s *Segment) ShortestDistanceToEnd(index int) (int, error) {
	return s.shortestDistance(s.end, index)
}

func (s *Segment) shortestDistance(boundary, index int) (int, error) {
	if !inRange(index, s.total) {
		return 0, fmt.Errorf("%w: index %d outside profile of length %d", ErrOutOfRange, index, s.total)
	}

	index = Wrap(index, s.total)

	return min(forward(boundary, index, s.total), forward(index, boundary, s.total)), nil
}

// InternalDistanceToStart returns the steps from the segment start to index
// without leaving the segment.
func (s *Segment) InternalDistanceToStart(index int) (int, error) {
	if err := s.requireContains(index); err != nil {
		return 0, err
	}

	return forward(s.start, Wrap(index, s.total), s.total), nil
}

// InternalDistanceToEnd returns the steps from index to the segment end
// without leaving the segment.
func (s *Segment) InternalDistanceToEnd(index int) (int, error) {
	if err := s.requireContains(index); err != nil {
		return 0, err
	}

	index = Wrap(index, s.total)
	if index == s.end && s.start == s.end {
		return 0, nil
	}

	return s.Length() - forward(s.start, index, s.total), nil
}

func (s *Segment) requireContains(index int) error {
	ok, err := s.Contains(index)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: index %d not in %s", ErrOutOfRange, index, s)
	}

	return nil
}

// AddMergeSource records src as one of the segments combined to form s.
// A deep copy is stored. The source must share the profile length and lie
// within s.
func (s *Segment) AddMergeSource(src *Segment) error {
	if src == nil {
		return fmt.Errorf("%w: nil merge source", ErrInvalidSegment)
	}

	if src.total != s.total {
		return fmt.Errorf("%w: merge source length %d does not match %d", ErrInvalidSegment, src.total, s.total)
	}

	if !contains(s.start, s.end, src.start) || !contains(s.start, s.end, src.end) {
		return fmt.Errorf("%w: merge source %s outside %s", ErrInvalidSegment, src, s)
	}

	s.mergeSources = append(s.mergeSources, src.Copy())

	return nil
}

// MergeSources returns copies of the segments recorded as merged into s, in
// the order they were added.
func (s *Segment) MergeSources() []*Segment {
	out := make([]*Segment, len(s.mergeSources))
	for i, m := range s.mergeSources {
		out[i] = m.Copy()
	}

	return out
}

// HasMergeSources reports whether s has any recorded merge history.
func (s *Segment) HasMergeSources() bool {
	return len(s.mergeSources) > 0
}

// ClearMergeSources discards the merge history.
func (s *Segment) ClearMergeSources() {
	s.mergeSources = nil
}

// HasMergeSource reports whether a segment with the given id appears anywhere
// in the merge history, searching recursively.
func (s *Segment) HasMergeSource(id uuid.UUID) bool {
	return s.findMergeSource(id) != nil
}

// MergeSource returns a copy of the merge source with the given id, searching
// recursively. Returns ErrNotFound if no such source exists.
func (s *Segment) MergeSource(id uuid.UUID) (*Segment, error) {
	m := s.findMergeSource(id)
	if m == nil {
		return nil, fmt.Errorf("%w: merge source %s in %s", ErrNotFound, id, s)
	}

	return m.Copy(), nil
}

func (s *Segment) findMergeSource(id uuid.UUID) *Segment {
	for _, m := range s.mergeSources {
		if m.id == id {
			return m
		}

		if found := m.findMergeSource(id); found != nil {
			return found
		}
	}

	return nil
}

// SameEntity reports whether o is the same logical segment as s.
func (s *Segment) SameEntity(o *Segment) bool {
	return o != nil && s.id == o.id
}

// Equal reports whether o covers the same span of the same profile length.
func (s *Segment) Equal(o *Segment) bool {
	return o != nil && s.start == o.start && s.end == o.end && s.total == o.total
}

// Copy returns a deep copy of s, merge history included. The id is kept.
func (s *Segment) Copy() *Segment {
	c := *s
	if s.mergeSources != nil {
		c.mergeSources = make([]*Segment, len(s.mergeSources))
		for i, m := range s.mergeSources {
			c.mergeSources[i] = m.Copy()
		}
	}

	return &c
}

func (s *Segment) String() string {
	return fmt.Sprintf("%s[%d-%d/%d]", s.Name(), s.start, s.end, s.total)
}

// shift moves the segment and its merge history by amount indices.
func (s *Segment) shift(amount int) {
	s.start = Wrap(s.start+amount, s.total)
	s.end = Wrap(s.end+amount, s.total)

	for _, m := range s.mergeSources {
		m.shift(amount)
	}
}

// project returns a copy of s with every boundary, merge history included,
// mapped proportionally onto a profile of newTotal indices.
func (s *Segment) project(newTotal int) *Segment {
	c := &Segment{
		id:       s.id,
		start:    projectIndex(s.start, s.total, newTotal),
		end:      projectIndex(s.end, s.total, newTotal),
		total:    newTotal,
		locked:   s.locked,
		position: s.position,
	}

	for _, m := range s.mergeSources {
		c.mergeSources = append(c.mergeSources, m.project(newTotal))
	}

	return c
}

func projectIndex(index, total, newTotal int) int {
	return Wrap(int(math.Round(float64(index)*float64(newTotal)/float64(total))), newTotal)
}
