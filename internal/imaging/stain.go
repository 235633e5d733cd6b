package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// StainOptions selects how pixel colour is turned into stain intensity.
type StainOptions struct {
	// StainHex is the colour of the nuclear stain, e.g. "#2B1D6E" for
	// haematoxylin. When empty, CIE L* lightness is used instead, which suits
	// single-channel fluorescence images.
	StainHex string

	// Invert treats dark pixels as stained in lightness mode. Brightfield
	// images need it; fluorescence images do not.
	Invert bool
}

// StainIntensity maps every pixel of img to how strongly it shows the
// nuclear stain, scaled to 0-255.
//
// Parameters:
//   - img: Source image, any colour model.
//   - opts: Stain colour or lightness mode.
//
// Returns:
//   - *image.Gray: Intensity image with the same bounds as img, origin preserved.
//   - error: Non-nil if StainHex is not a valid hex colour.
//
// # Algorithm
//
// In colour mode each pixel is converted to CIE L*a*b* and its distance to the
// stain colour is measured with DistanceLab. The distance is normalised by the
// largest distance from the stain to pure black or white, so the stain itself
// scores 255 and the most different achromatic colour scores 0.
//
// In lightness mode the score is the pixel's L* (or 1 - L* when inverted).
//
// Fully transparent pixels always score 0.
func StainIntensity(img image.Image, opts StainOptions) (*image.Gray, error) {
	score, err := stainScorer(opts)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	out := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}

			v := math.Max(0, math.Min(1, score(c)))
			out.Pix[out.PixOffset(x, y)] = uint8(math.Round(v * 255))
		}
	}

	return out, nil
}

func stainScorer(opts StainOptions) (func(colorful.Color) float64, error) {
	if opts.StainHex == "" {
		if opts.Invert {
			return func(c colorful.Color) float64 {
				l, _, _ := c.Lab()
				return 1 - l
			}, nil
		}

		return func(c colorful.Color) float64 {
			l, _, _ := c.Lab()
			return l
		}, nil
	}

	stain, err := colorful.Hex(opts.StainHex)
	if err != nil {
		return nil, fmt.Errorf("invalid stain colour %q: %w", opts.StainHex, err)
	}

	white := colorful.Color{R: 1, G: 1, B: 1}
	black := colorful.Color{}
	span := math.Max(stain.DistanceLab(white), stain.DistanceLab(black))

	return func(c colorful.Color) float64 {
		return 1 - c.DistanceLab(stain)/span
	}, nil
}

// Smooth applies a Gaussian blur with the given sigma to an intensity image.
// A non-positive sigma returns a copy of g.
func Smooth(g *image.Gray, sigma float64) *image.Gray {
	if sigma <= 0 {
		out := image.NewGray(g.Bounds())
		copy(out.Pix, g.Pix)

		return out
	}

	blurred := imaging.Blur(g, sigma)

	// imaging returns an NRGBA anchored at the origin with equal channels.
	bounds := g.Bounds()
	out := image.NewGray(bounds)

	for y := range bounds.Dy() {
		for x := range bounds.Dx() {
			out.Pix[out.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)] = blurred.Pix[blurred.PixOffset(x, y)]
		}
	}

	return out
}
