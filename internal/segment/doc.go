// Package segment implements the circular segment model used to divide a
// nucleus border profile into named arcs.
//
// A profile is a closed sequence of border positions of some total length.
// A Ring divides that profile into contiguous Segments linked in circular
// order: every segment's end is the next segment's start, so a ring of n
// segments has n shared boundary indices. A Ring may also hold exactly one
// segment that spans the whole profile (start == end), which is how an
// unsegmented border is represented.
//
// # Index Convention
//
// Indices run from 0 to total-1. A segment covers the indices from Start to
// End inclusive, passing through 0 when it wraps (End <= Start). Length is the
// number of steps from Start to End, so the lengths of all segments in a ring
// of two or more segments sum to the profile length. Boundary indices are
// counted by both adjacent segments when iterating, which is why
// TotalCombinedLength reports total + segment count.
//
// # Editing
//
// Ring.Update moves a segment's boundaries and carries the shared boundaries
// into the neighbouring segments. Every check is performed before anything is
// mutated: a rejected edit leaves the ring untouched and returns an
// *UpdateError whose cause is one of the sentinel errors (ErrLocked,
// ErrTooShort, ErrPreviousTooShort, ErrNextTooShort, ErrInversion,
// ErrNeighborInversion, ErrPartialCoverage). Indices outside the profile are
// reported with ErrOutOfRange and indicate a caller bug rather than an edit
// conflict.
//
// # Rescaling
//
// Ring.Rescale projects a ring onto a profile of a different length, keeping
// each segment's share of the border as closely as integer rounding allows.
// Segment ids survive rescaling so that segments can be compared across
// nuclei with different border lengths.
//
// # Thread Safety
//
// A Ring is not safe for concurrent mutation. Give each goroutine its own
// ring (Ring.Copy) when processing nuclei in parallel.
package segment
