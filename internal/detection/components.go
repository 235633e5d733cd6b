package detection

import (
	"sort"

	"github.com/ironsheep/nucleus-tools-mcp/internal/imaging"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// (X1, Y1) is the top-left corner (inclusive) and (X2, Y2) the bottom-right
// corner (exclusive), matching image.Rectangle.
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge (exclusive)
	Y2 int `json:"y2"` // Bottom edge (exclusive)
}

// Width returns X2 - X1.
func (b Bounds) Width() int { return b.X2 - b.X1 }

// Height returns Y2 - Y1.
func (b Bounds) Height() int { return b.Y2 - b.Y1 }

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Component is one 8-connected region of foreground pixels in a mask.
type Component struct {
	// Label identifies the component in a Labels map. Labels start at 1.
	Label int `json:"label"`

	// Area is the number of pixels in the component.
	Area int `json:"area"`

	// Bounds is the bounding box enclosing the component.
	Bounds Bounds `json:"bounds"`

	// CentroidX and CentroidY are the mean pixel coordinates.
	CentroidX float64 `json:"centroid_x"`
	CentroidY float64 `json:"centroid_y"`

	// TouchesEdge reports whether any pixel lies on the image border, in which
	// case the nucleus is probably cut off.
	TouchesEdge bool `json:"touches_edge"`
}

// Labels maps every mask pixel to the label of its component, 0 for background.
type Labels struct {
	Width  int
	Height int
	Pix    []int
}

// At returns the label at (x, y), or 0 outside the map.
func (l *Labels) At(x, y int) int {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return 0
	}

	return l.Pix[y*l.Width+x]
}

// LabelComponents finds the connected components of a binary mask.
//
// Connectivity is 8-connected (includes diagonals). Components are returned in
// descending order of area; ties keep raster order of their first pixel.
func LabelComponents(m *imaging.Mask) (*Labels, []Component) {
	labels := &Labels{Width: m.Width, Height: m.Height, Pix: make([]int, m.Width*m.Height)}
	components := make([]Component, 0)

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.At(x, y) && labels.At(x, y) == 0 {
				c := floodFill(m, labels, x, y, len(components)+1)
				components = append(components, c)
			}
		}
	}

	sort.SliceStable(components, func(i, j int) bool {
		return components[i].Area > components[j].Area
	})

	return labels, components
}

// floodFill performs iterative flood-fill from a starting point, writing
// label into every reached pixel and returning the component's statistics.
//
// Uses a stack-based approach (not recursive) to avoid stack overflow on
// large nuclei.
func floodFill(m *imaging.Mask, labels *Labels, startX, startY, label int) Component {
	c := Component{
		Label:  label,
		Bounds: Bounds{X1: startX, Y1: startY, X2: startX + 1, Y2: startY + 1},
	}

	var sumX, sumY int

	stack := []Point{{X: startX, Y: startY}}
	labels.Pix[startY*labels.Width+startX] = label

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		c.Area++
		sumX += p.X
		sumY += p.Y
		c.Bounds.X1 = min(c.Bounds.X1, p.X)
		c.Bounds.Y1 = min(c.Bounds.Y1, p.Y)
		c.Bounds.X2 = max(c.Bounds.X2, p.X+1)
		c.Bounds.Y2 = max(c.Bounds.Y2, p.Y+1)

		if p.X == 0 || p.Y == 0 || p.X == m.Width-1 || p.Y == m.Height-1 {
			c.TouchesEdge = true
		}

		// 8-connected neighbors
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := p.X+dx, p.Y+dy
				if (dx == 0 && dy == 0) || !m.At(nx, ny) || labels.At(nx, ny) != 0 {
					continue
				}
				labels.Pix[ny*labels.Width+nx] = label
				stack = append(stack, Point{X: nx, Y: ny})
			}
		}
	}

	c.CentroidX = float64(sumX) / float64(c.Area)
	c.CentroidY = float64(sumY) / float64(c.Area)

	return c
}
