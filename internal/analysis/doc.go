// Package analysis takes micrographs from file to segmented nucleus profiles.
//
// A Pipeline runs the per-image steps in order: load and cache the image,
// build a binary mask, select the nucleus and trace its border, compute the
// angle profile, re-index it from the landmark and segment it into a
// segment.Ring. AnalyzeBatch runs the pipeline over many images on a bounded
// worker pool; each nucleus and its ring belong to the goroutine that built
// them until the batch returns.
//
// BuildPopulation then brings a set of nuclei onto a common profile length:
// it computes the median profile and rescales every ring onto the median
// length so segments can be compared index for index.
package analysis
