// Package profile measures nuclear shape as a function of position along the
// border and divides it into segments.
//
// An angle profile holds, for every border point, the interior angle formed
// with the points a fixed window ahead and behind: 180 degrees on a straight
// run, less on a convex tip, more in a notch. The sharpest tip is the
// reference landmark; profiles are re-indexed so that it sits at index zero
// before they are compared or segmented.
//
// Segmentation places boundaries at pronounced local extrema of the smoothed
// profile, subject to a minimum segment length, and links the resulting
// spans into a segment.Ring. Population statistics interpolate profiles of
// different lengths onto a common length and take per-index quantiles.
package profile
