package raster

import (
	"testing"

	"golang.org/x/image/draw"
)

func TestGaussianBlurTinyRadiusIsNoop(t *testing.T) {
	img := New(8, 8)
	img.Pix[0] = 200
	out := GaussianBlur(img, 0.3)
	if out.Pix[0] != 200 {
		t.Fatal("radius below threshold must return the image unblurred")
	}
}

func TestGaussianBlurSpreads(t *testing.T) {
	img := New(9, 9)
	i := img.PixOffset(4, 4)
	img.Pix[i] = 255
	out := GaussianBlur(img, 3)
	center := out.Pix[out.PixOffset(4, 4)]
	neighbor := out.Pix[out.PixOffset(5, 4)]
	if center == 255 {
		t.Fatal("blur must reduce the peak")
	}
	if neighbor == 0 {
		t.Fatal("blur must spread energy to neighbors")
	}
	if neighbor > center {
		t.Fatalf("peak must stay dominant: center %d, neighbor %d", center, neighbor)
	}
}

func TestEllipseMask(t *testing.T) {
	m := EllipseMask(20, 20, 10, 10, 8, 8, 0.2)
	if m.Pix[10*m.Stride+10] != 255 {
		t.Fatalf("mask must be opaque at the center, got %d", m.Pix[10*m.Stride+10])
	}
	if m.Pix[0] != 0 {
		t.Fatalf("mask must be transparent at the corner, got %d", m.Pix[0])
	}
}

func TestAddClampSaturates(t *testing.T) {
	dst := New(2, 2)
	for i := 0; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 250
	}
	overlay := NewOverlay(2, 2)
	for i := 0; i < len(overlay.Pix); i += 4 {
		overlay.Pix[i] = 200
		overlay.Pix[i+3] = 255
	}
	AddClamp(dst, overlay)
	if dst.Pix[0] != 255 {
		t.Fatalf("additive blend must clamp at 255, got %d", dst.Pix[0])
	}
}

func TestFitToFrameAspectFill(t *testing.T) {
	// wide source into a tall frame: width must be cropped, not letterboxed
	src := New(200, 100)
	out := FitToFrame(src, 50, 100, draw.BiLinear)
	b := out.Bounds()
	if b.Dx() != 50 || b.Dy() != 100 {
		t.Fatalf("expected exact 50x100 output, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestOverOffsetAlphaBlends(t *testing.T) {
	dst := New(2, 2) // black
	src := New(2, 2)
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i] = 255
	}
	OverOffsetAlpha(dst, src, 0, 0, 0.5)
	if dst.Pix[0] < 120 || dst.Pix[0] > 135 {
		t.Fatalf("expected ~50%% red blend, got %d", dst.Pix[0])
	}
	OverOffsetAlpha(dst, src, 0, 0, 0) // below threshold: no-op
	if dst.Pix[1] != 0 {
		t.Fatal("zero alpha must not touch dst")
	}
}

func TestOverOffsetAlphaShifts(t *testing.T) {
	dst := New(4, 4)
	src := New(4, 4)
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i] = 255
	}
	OverOffsetAlpha(dst, src, 2, 2, 1.0)
	if dst.Pix[dst.PixOffset(0, 0)] != 0 {
		t.Fatal("pixels above the offset must be untouched")
	}
	if dst.Pix[dst.PixOffset(3, 3)] == 0 {
		t.Fatal("offset region must be blended")
	}
}

func TestCloneIsDeep(t *testing.T) {
	a := New(4, 4)
	b := Clone(a)
	b.Pix[0] = 99
	if a.Pix[0] == 99 {
		t.Fatal("clone must not share pixels")
	}
}

func TestSoftDiscStampsWithin(t *testing.T) {
	dst := NewOverlay(21, 21)
	SoftDisc(dst, 10, 10, 5, 255, 0, 0, 1.0)
	if dst.Pix[dst.PixOffset(10, 10)+3] == 0 {
		t.Fatal("disc center must be stamped")
	}
	if dst.Pix[dst.PixOffset(0, 0)+3] != 0 {
		t.Fatal("far corner must stay empty")
	}
}
