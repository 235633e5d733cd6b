package detection

import (
	"errors"
	"fmt"

	"github.com/ironsheep/nucleus-tools-mcp/internal/imaging"
)

// ErrNoNucleus is returned when a mask holds no component that qualifies as
// a nucleus.
var ErrNoNucleus = errors.New("no nucleus found")

// Options controls which mask components are accepted as nuclei.
type Options struct {
	// MinArea is the smallest accepted component, in pixels.
	MinArea int

	// ExcludeEdge rejects components touching the image border.
	ExcludeEdge bool
}

// Nucleus is a detected nucleus with its traced border and shape measures.
type Nucleus struct {
	Component

	// Border is the ordered, clockwise outer border.
	Border []Point `json:"-"`

	// BorderLength is len(Border), the length of the profile built from it.
	BorderLength int `json:"border_length"`

	Perimeter   float64 `json:"perimeter"`
	Circularity float64 `json:"circularity"`
	MaxFeret    float64 `json:"max_feret"`
}

// DetectNuclei returns every qualifying component of the mask as a nucleus,
// largest first.
func DetectNuclei(m *imaging.Mask, opts Options) []*Nucleus {
	labels, components := LabelComponents(m)

	nuclei := make([]*Nucleus, 0, len(components))
	for _, c := range components {
		if c.Area < opts.MinArea || (opts.ExcludeEdge && c.TouchesEdge) {
			continue
		}

		border := TraceBorder(labels, c)
		perimeter := Perimeter(border)

		nuclei = append(nuclei, &Nucleus{
			Component:    c,
			Border:       border,
			BorderLength: len(border),
			Perimeter:    perimeter,
			Circularity:  Circularity(c.Area, perimeter),
			MaxFeret:     MaxFeret(border),
		})
	}

	return nuclei
}

// DetectNucleus returns the largest qualifying nucleus in the mask.
func DetectNucleus(m *imaging.Mask, opts Options) (*Nucleus, error) {
	nuclei := DetectNuclei(m, opts)
	if len(nuclei) == 0 {
		return nil, fmt.Errorf("%w: no component of at least %d pixels", ErrNoNucleus, opts.MinArea)
	}

	return nuclei[0], nil
}
