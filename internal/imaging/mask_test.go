package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestOtsu(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range g.Pix {
		if i < 60 {
			g.Pix[i] = 40
		} else {
			g.Pix[i] = 200
		}
	}

	got := Otsu(g)
	if got < 40 || got >= 200 {
		t.Errorf("Otsu: got %d, want a level in [40, 200)", got)
	}

	uniform := image.NewGray(image.Rect(0, 0, 4, 4))
	if got := Otsu(uniform); got != 0 {
		t.Errorf("Otsu of uniform image: got %d, want 0", got)
	}
}

func TestBuildMask_BrightNucleus(t *testing.T) {
	img := createEllipseImage(80, 60, 40, 30, 20, 12, color.White, color.Black)

	result, err := BuildMask(img, MaskOptions{BlurSigma: 1})
	if err != nil {
		t.Fatalf("BuildMask failed: %v", err)
	}

	m := result.Mask
	if m.Width != 80 || m.Height != 60 {
		t.Fatalf("mask size: got %dx%d, want 80x60", m.Width, m.Height)
	}
	if !m.At(40, 30) {
		t.Error("nucleus centre not in mask")
	}
	if m.At(2, 2) {
		t.Error("background corner in mask")
	}

	// Ellipse area is pi*20*12, about 754 pixels.
	if n := m.Count(); n < 650 || n > 860 {
		t.Errorf("mask area: got %d, want about 754", n)
	}
	if result.Threshold < 1 || result.Threshold > 255 {
		t.Errorf("threshold out of range: %d", result.Threshold)
	}
}

func TestBuildMask_DarkNucleusWithOpening(t *testing.T) {
	img := createEllipseImage(80, 60, 40, 30, 20, 12, color.Black, color.White)
	img.Set(5, 5, color.Black) // single-pixel speck

	result, err := BuildMask(img, MaskOptions{
		Stain:      StainOptions{Invert: true},
		OpenRadius: 1,
	})
	if err != nil {
		t.Fatalf("BuildMask failed: %v", err)
	}

	if !result.Mask.At(40, 30) {
		t.Error("nucleus centre not in mask")
	}
	if result.Mask.At(5, 5) {
		t.Error("opening did not remove speck")
	}
}

func TestBuildMask_FixedThreshold(t *testing.T) {
	img := createInMemoryImage(4, 4, color.Gray{Y: 100})

	high, err := BuildMask(img, MaskOptions{Threshold: 250})
	if err != nil {
		t.Fatalf("BuildMask failed: %v", err)
	}
	if high.Mask.Count() != 0 {
		t.Errorf("got %d foreground pixels above 250, want 0", high.Mask.Count())
	}

	low, err := BuildMask(img, MaskOptions{Threshold: 1})
	if err != nil {
		t.Fatalf("BuildMask failed: %v", err)
	}
	if low.Mask.Count() != 16 {
		t.Errorf("got %d foreground pixels above 1, want 16", low.Mask.Count())
	}
}

func TestBuildMask_Errors(t *testing.T) {
	if _, err := BuildMask(image.NewRGBA(image.Rectangle{}), MaskOptions{}); err != ErrEmptyImage {
		t.Errorf("empty image: got %v, want ErrEmptyImage", err)
	}

	img := createInMemoryImage(4, 4, color.White)
	if _, err := BuildMask(img, MaskOptions{Threshold: 300}); err == nil {
		t.Error("expected error for threshold above 255")
	}
	if _, err := BuildMask(img, MaskOptions{Stain: StainOptions{StainHex: "#zz"}}); err == nil {
		t.Error("expected error for invalid stain")
	}
}

func TestMask_Bounds(t *testing.T) {
	m := NewMask(3, 2)
	m.Set(2, 1, true)
	m.Set(5, 5, true)

	if !m.At(2, 1) || m.At(-1, 0) || m.At(3, 0) {
		t.Error("unexpected At results")
	}
	if m.Count() != 1 {
		t.Errorf("Count: got %d, want 1", m.Count())
	}
}
