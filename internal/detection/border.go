package detection

// clockwise lists the Moore neighbourhood starting east and turning clockwise
// on screen (Y grows downward): E, SE, S, SW, W, NW, N, NE.
var clockwise = [8]Point{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

func direction(from, to Point) int {
	d := Point{X: to.X - from.X, Y: to.Y - from.Y}
	for i, n := range clockwise {
		if n == d {
			return i
		}
	}

	return 0
}

// TraceBorder returns the outer border of a labelled component as an ordered
// closed sequence of pixels, clockwise on screen, starting at the top-most
// then left-most pixel. The last point is adjacent to the first and is not
// repeated. Pixels on one-pixel-wide spurs appear once per pass.
//
// # Algorithm
//
// Moore-neighbour tracing: from the current border pixel, the eight
// neighbours are scanned clockwise beginning just after the background pixel
// we entered from; the first pixel of the component becomes the next border
// pixel and the last background pixel scanned becomes the new backtrack.
// Tracing stops when the start pixel is about to be left in the same
// direction as on the first step (Jacob's stopping criterion), so borders
// that pass through the start pixel twice are still traced completely.
func TraceBorder(labels *Labels, c Component) []Point {
	start, ok := firstPixel(labels, c)
	if !ok {
		return nil
	}

	inside := func(p Point) bool { return labels.At(p.X, p.Y) == c.Label }

	step := func(cur, back Point) (Point, Point, bool) {
		d := direction(cur, back)
		for k := 1; k <= 8; k++ {
			n := clockwise[(d+k)%8]
			next := Point{X: cur.X + n.X, Y: cur.Y + n.Y}
			if inside(next) {
				return next, back, true
			}
			back = next
		}

		return Point{}, Point{}, false
	}

	border := []Point{start}

	first, back, ok := step(start, Point{X: start.X - 1, Y: start.Y})
	if !ok {
		return border
	}

	// Each pixel is entered at most once from each of its eight neighbours.
	limit := 8*c.Area + 8
	cur := first

	for range limit {
		if cur == start {
			if next, _, _ := step(cur, back); next == first {
				break
			}
		}

		border = append(border, cur)
		cur, back, _ = step(cur, back)
	}

	return border
}

// firstPixel finds the top-most, then left-most pixel of the component.
func firstPixel(labels *Labels, c Component) (Point, bool) {
	for y := c.Bounds.Y1; y < c.Bounds.Y2; y++ {
		for x := c.Bounds.X1; x < c.Bounds.X2; x++ {
			if labels.At(x, y) == c.Label {
				return Point{X: x, Y: y}, true
			}
		}
	}

	return Point{}, false
}
