// Package imaging turns micrographs into binary nucleus masks.
//
// It loads and caches images, converts colour to stain intensity, smooths and
// thresholds the intensity image, and cleans the result with a morphological
// opening. It also crops thumbnails around detected nuclei. All coordinates
// use (0,0) at the top-left corner, X increasing rightward and Y downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// Mask coordinates are relative to the top-left of the source image bounds.
//
// # Stain Intensity
//
// Brightfield stains are matched by colour: the distance in CIE L*a*b* to the
// configured stain colour, via go-colorful. Fluorescence images are usually a
// single channel and are scored by lightness, optionally inverted.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images.
package imaging
