package detection

import "math"

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Perimeter returns the length of a closed border, including the step from
// the last point back to the first.
func Perimeter(border []Point) float64 {
	if len(border) < 2 {
		return 0
	}

	total := 0.0
	for i, p := range border {
		total += Distance(p, border[(i+1)%len(border)])
	}
	return total
}

// Circularity returns 4*pi*area / perimeter^2, which is 1 for a perfect disc
// and smaller for elongated or irregular shapes. Returns 0 for a zero perimeter.
func Circularity(area int, perimeter float64) float64 {
	if perimeter == 0 {
		return 0
	}
	return 4 * math.Pi * float64(area) / (perimeter * perimeter)
}

// MaxFeret returns the largest distance between any two border points,
// the caliper diameter of the nucleus.
func MaxFeret(border []Point) float64 {
	best := 0.0
	for i := range border {
		for j := i + 1; j < len(border); j++ {
			best = math.Max(best, Distance(border[i], border[j]))
		}
	}
	return best
}
