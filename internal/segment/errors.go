package segment

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Edit conflicts. These are expected outcomes of Ring.Update and friends and
// are returned wrapped in an *UpdateError.
var (
	ErrLocked            = errors.New("segment is locked")
	ErrTooShort          = errors.New("segment would be shorter than the minimum length")
	ErrPreviousTooShort  = errors.New("previous segment would be shorter than the minimum length")
	ErrNextTooShort      = errors.New("next segment would be shorter than the minimum length")
	ErrInversion         = errors.New("segment boundaries would invert")
	ErrNeighborInversion = errors.New("neighbouring segment boundaries would invert")
	ErrPartialCoverage   = errors.New("single segment must span the whole profile")
	ErrNotAdjacent       = errors.New("segments are not adjacent")
	ErrRescale           = errors.New("cannot rescale ring")
)

// Contract violations. These indicate the caller passed data that breaks the
// package's preconditions.
var (
	ErrOutOfRange     = errors.New("index out of range")
	ErrLinking        = errors.New("cannot link segments")
	ErrNotFound       = errors.New("segment not found")
	ErrInvalidSegment = errors.New("invalid segment")
)

// UpdateError describes a rejected boundary edit. The ring is unchanged when
// an UpdateError is returned.
type UpdateError struct {
	ID    uuid.UUID
	Start int
	End   int
	Err   error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update segment %s to [%d, %d]: %v", e.ID, e.Start, e.End, e.Err)
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}

// reasons maps edit conflicts to short labels, most specific first.
var reasons = []struct {
	err   error
	label string
}{
	{ErrLocked, "locked"},
	{ErrPreviousTooShort, "previous_too_short"},
	{ErrNextTooShort, "next_too_short"},
	{ErrTooShort, "too_short"},
	{ErrNeighborInversion, "neighbor_inversion"},
	{ErrInversion, "inversion"},
	{ErrPartialCoverage, "partial_coverage"},
	{ErrNotAdjacent, "not_adjacent"},
	{ErrRescale, "rescale"},
	{ErrOutOfRange, "out_of_range"},
	{ErrLinking, "linking"},
	{ErrNotFound, "not_found"},
	{ErrInvalidSegment, "invalid_segment"},
}

// Reason returns a short label for err suitable for metrics and tool
// responses, "ok" for nil and "unknown" for errors from outside the package.
func Reason(err error) string {
	if err == nil {
		return "ok"
	}

	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.label
		}
	}

	return "unknown"
}

// IsRejection reports whether err is an expected edit conflict that a caller
// should present to the user rather than treat as a bug.
func IsRejection(err error) bool {
	for _, target := range []error{
		ErrLocked, ErrTooShort, ErrPreviousTooShort, ErrNextTooShort,
		ErrInversion, ErrNeighborInversion, ErrPartialCoverage, ErrNotAdjacent, ErrRescale,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
