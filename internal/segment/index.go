package segment

import "fmt"

// MinimumSegmentLength is the shortest length allowed for any segment in a
// ring of two or more segments.
const MinimumSegmentLength = 3

// Wrap maps any index, including negative ones, onto [0, length).
// It panics if length is not positive.
func Wrap(i, length int) int {
	if length <= 0 {
		panic(fmt.Sprintf("segment: wrap with non-positive length %d", length))
	}

	r := i % length
	if r < 0 {
		r += length
	}

	return r
}

// SpanLength returns the number of steps from start to end, wrapping through
// zero when end is not after start. A span whose ends coincide covers the
// whole profile.
func SpanLength(start, end, total int) int {
	if end > start {
		return end - start
	}

	return end + (total - start)
}

// Wraps reports whether a span from start to end passes through index zero.
func Wraps(start, end int) bool {
	return end <= start
}

// Contains reports whether index lies on the arc from start to end
// inclusive. Indices outside [0, total] are rejected with ErrOutOfRange.
func Contains(start, end, index, total int) (bool, error) {
	if total <= 0 {
		return false, fmt.Errorf("%w: profile length %d", ErrOutOfRange, total)
	}

	for _, v := range [...]int{start, end, index} {
		if v < 0 || v > total {
			return false, fmt.Errorf("%w: index %d outside profile of length %d", ErrOutOfRange, v, total)
		}
	}

	return contains(Wrap(start, total), Wrap(end, total), Wrap(index, total)), nil
}

// contains is Contains for indices already known to be in [0, total).
func contains(start, end, index int) bool {
	if Wraps(start, end) {
		return index >= start || index <= end
	}

	return index >= start && index <= end
}

// forward returns the number of steps needed to walk from one index to
// another in increasing order.
func forward(from, to, total int) int {
	return Wrap(to-from, total)
}

func inRange(index, total int) bool {
	return index >= 0 && index <= total
}
