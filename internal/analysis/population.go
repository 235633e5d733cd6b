package analysis

import (
	"errors"
	"log/slog"

	"github.com/ironsheep/nucleus-tools-mcp/internal/profile"
	"github.com/ironsheep/nucleus-tools-mcp/internal/segment"
)

// ErrEmptyPopulation is returned when no nuclei are given.
var ErrEmptyPopulation = errors.New("population has no nuclei")

// Member is one nucleus projected onto the population's profile length.
type Member struct {
	Path           string
	OriginalLength int

	// Ring is the nucleus ring rescaled to the population length, nil when
	// rescaling was rejected.
	Ring *segment.Ring

	// Err records why the ring could not be rescaled.
	Err error
}

// Population is a set of nuclei brought onto a common profile length.
type Population struct {
	// Length is the median profile length of the members.
	Length int

	// Summary holds per-index quartiles of the members' angle profiles.
	Summary *profile.Summary

	Members []Member

	// SegmentCountsMatch reports whether every rescaled ring has the same
	// number of segments, so segments can be compared by position.
	SegmentCountsMatch bool
}

// BuildPopulation computes the median profile of nuclei and rescales each
// ring onto the median length. The input rings are not modified. A rescale
// rejection is recorded on the member and counted, but does not fail the
// population.
func (p *Pipeline) BuildPopulation(nuclei []*Nucleus) (*Population, error) {
	if len(nuclei) == 0 {
		return nil, ErrEmptyPopulation
	}

	lengths := make([]int, len(nuclei))
	profiles := make([]profile.Profile, len(nuclei))

	for i, n := range nuclei {
		lengths[i] = len(n.Profile)
		profiles[i] = n.Profile
	}

	length, err := profile.MedianLength(lengths)
	if err != nil {
		return nil, err
	}

	summary, err := profile.Aggregate(profiles, length)
	if err != nil {
		return nil, err
	}

	pop := &Population{
		Length:             length,
		Summary:            summary,
		Members:            make([]Member, len(nuclei)),
		SegmentCountsMatch: true,
	}

	var reference *segment.Ring

	for i, n := range nuclei {
		m := Member{Path: n.Path, OriginalLength: n.Ring.Total()}

		m.Ring, m.Err = n.Ring.Rescale(length)
		p.metrics.Rescales.WithLabelValues(segment.Reason(m.Err)).Inc()

		if m.Err != nil {
			p.logger.Info("ring not rescaled",
				slog.String("path", n.Path),
				slog.Int("from", n.Ring.Total()),
				slog.Int("to", length),
				slog.Any("error", m.Err))
		} else if reference == nil {
			reference = m.Ring
		} else if !reference.SegmentCountsMatch(m.Ring) {
			pop.SegmentCountsMatch = false
		}

		pop.Members[i] = m
	}

	return pop, nil
}
