package segment

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUpdateError_Unwrap(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	err := error(&UpdateError{ID: id, Start: 2, End: 8, Err: ErrNextTooShort})

	assert.ErrorIs(t, err, ErrNextTooShort)
	assert.NotErrorIs(t, err, ErrTooShort)
	assert.Contains(t, err.Error(), id.String())

	var ue *UpdateError
	assert.True(t, errors.As(err, &ue))
	assert.Equal(t, 8, ue.End)
}

func TestReason(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{&UpdateError{Err: ErrLocked}, "locked"},
		{&UpdateError{Err: fmt.Errorf("%w: next segment Seg_2", ErrLocked)}, "locked"},
		{&UpdateError{Err: ErrPreviousTooShort}, "previous_too_short"},
		{&UpdateError{Err: ErrNextTooShort}, "next_too_short"},
		{&UpdateError{Err: ErrTooShort}, "too_short"},
		{&UpdateError{Err: ErrInversion}, "inversion"},
		{&UpdateError{Err: ErrNeighborInversion}, "neighbor_inversion"},
		{fmt.Errorf("%w: %w", ErrRescale, ErrLinking), "rescale"},
		{fmt.Errorf("%w: %w", ErrLinking, ErrInvalidSegment), "linking"},
		{ErrOutOfRange, "out_of_range"},
		{errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Reason(tt.err))
	}
}

func TestIsRejection(t *testing.T) {
	t.Parallel()

	assert.True(t, IsRejection(&UpdateError{Err: ErrLocked}))
	assert.True(t, IsRejection(fmt.Errorf("%w: x", ErrRescale)))
	assert.False(t, IsRejection(ErrOutOfRange))
	assert.False(t, IsRejection(ErrNotFound))
	assert.False(t, IsRejection(nil))
}
