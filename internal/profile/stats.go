package profile

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// ErrNoProfiles is returned when a population has no members.
var ErrNoProfiles = errors.New("no profiles to aggregate")

// Summary holds per-index quartiles of a population of profiles after
// interpolation onto a common length.
type Summary struct {
	Length int     `json:"length"`
	Count  int     `json:"count"`
	Q25    Profile `json:"q25"`
	Median Profile `json:"median"`
	Q75    Profile `json:"q75"`
}

// Aggregate interpolates every profile to length and computes the lower
// quartile, median and upper quartile at each index. Quantiles use the
// empirical estimator, so every value comes from a member of the population.
func Aggregate(profiles []Profile, length int) (*Summary, error) {
	if len(profiles) == 0 {
		return nil, ErrNoProfiles
	}

	if length <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}

	resampled := make([]Profile, len(profiles))
	for i, p := range profiles {
		r, err := p.Interpolate(length)
		if err != nil {
			return nil, fmt.Errorf("profile %d: %w", i, err)
		}
		resampled[i] = r
	}

	sum := &Summary{
		Length: length,
		Count:  len(profiles),
		Q25:    make(Profile, length),
		Median: make(Profile, length),
		Q75:    make(Profile, length),
	}

	column := make([]float64, len(resampled))
	for i := range length {
		for j, r := range resampled {
			column[j] = r[i]
		}
		slices.Sort(column)

		sum.Q25[i] = stat.Quantile(0.25, stat.Empirical, column, nil)
		sum.Median[i] = stat.Quantile(0.5, stat.Empirical, column, nil)
		sum.Q75[i] = stat.Quantile(0.75, stat.Empirical, column, nil)
	}

	return sum, nil
}

// Median returns the per-index median of profiles interpolated to length.
func Median(profiles []Profile, length int) (Profile, error) {
	sum, err := Aggregate(profiles, length)
	if err != nil {
		return nil, err
	}

	return sum.Median, nil
}

// MedianLength returns the median of lengths, rounded to the nearest integer.
func MedianLength(lengths []int) (int, error) {
	if len(lengths) == 0 {
		return 0, ErrNoProfiles
	}

	vals := make([]float64, len(lengths))
	for i, l := range lengths {
		vals[i] = float64(l)
	}
	slices.Sort(vals)

	return int(math.Round(stat.Quantile(0.5, stat.Empirical, vals, nil))), nil
}
