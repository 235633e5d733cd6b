// Package detection finds nuclei in binary masks and traces their borders.
//
// # Pipeline
//
//  1. Labelling: 8-connected components of the mask via iterative flood fill
//  2. Selection: components below a minimum area, and optionally those touching
//     the image edge, are discarded
//  3. Tracing: Moore-neighbour tracing of the outer border, clockwise on screen
//  4. Measurement: perimeter, circularity and maximum Feret diameter
//
// The traced border is the profile that nucleus morphology is measured along:
// its length is the profile length and its first point is index zero until a
// landmark is chosen.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// Coordinates are relative to the mask, which starts at the top-left of the
// source image bounds.
package detection
