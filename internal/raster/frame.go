// Package raster holds the pixel-level primitives the compositor builds on:
// frame buffers, resampling, Gaussian blur, masks, and soft drawing ops.
// All frames are opaque RGBA; overlays carry alpha that composition consumes.
package raster

import (
	"image"

	"golang.org/x/image/draw"
)

// New allocates a zeroed opaque frame.
func New(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

// NewOverlay allocates a fully transparent overlay of the same size.
func NewOverlay(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// Clone deep-copies a frame.
func Clone(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// Resize resamples src to w×h with the given scaler.
func Resize(src image.Image, w, h int, scaler draw.Scaler) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	scaler.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// FitToFrame scales src to fill w×h preserving aspect ratio, then center
// crops the overflow.
func FitToFrame(src image.Image, w, h int, scaler draw.Scaler) *image.RGBA {
	sb := src.Bounds()
	srcRatio := float64(sb.Dx()) / float64(sb.Dy())
	dstRatio := float64(w) / float64(h)

	var rw, rh int
	if srcRatio > dstRatio {
		rh = h
		rw = int(float64(h) * srcRatio)
	} else {
		rw = w
		rh = int(float64(w) / srcRatio)
	}
	if rw < w {
		rw = w
	}
	if rh < h {
		rh = h
	}
	resized := Resize(src, rw, rh, scaler)

	left := (rw - w) / 2
	top := (rh - h) / 2
	dst := New(w, h)
	draw.Draw(dst, dst.Bounds(), resized, image.Pt(left, top), draw.Src)
	return dst
}

// SubImage copies the clamped rectangle out of src.
func SubImage(src *image.RGBA, r image.Rectangle) *image.RGBA {
	r = r.Intersect(src.Bounds())
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), src, r.Min, draw.Src)
	return dst
}

// OverOffsetAlpha blends src over dst at an (dx, dy) offset with a uniform
// extra alpha. Source pixel alpha is honored on top of it; a no-op below the
// composition threshold.
func OverOffsetAlpha(dst, src *image.RGBA, dx, dy int, alpha float64) {
	if alpha <= 0.001 {
		return
	}
	if alpha > 1 {
		alpha = 1
	}
	db := dst.Bounds()
	sb := src.Bounds()
	for sy := sb.Min.Y; sy < sb.Max.Y; sy++ {
		y := sy + dy
		if y < db.Min.Y || y >= db.Max.Y {
			continue
		}
		for sx := sb.Min.X; sx < sb.Max.X; sx++ {
			x := sx + dx
			if x < db.Min.X || x >= db.Max.X {
				continue
			}
			si := src.PixOffset(sx, sy)
			a := alpha * float64(src.Pix[si+3]) / 255
			if a <= 0.0012 {
				continue
			}
			di := dst.PixOffset(x, y)
			dst.Pix[di+0] = lerp8(dst.Pix[di+0], src.Pix[si+0], a)
			dst.Pix[di+1] = lerp8(dst.Pix[di+1], src.Pix[si+1], a)
			dst.Pix[di+2] = lerp8(dst.Pix[di+2], src.Pix[si+2], a)
		}
	}
}

// AddClamp additively composites an overlay onto dst, weighting each source
// pixel by its own alpha and clamping at white. Used for light-emitting
// layers (glow, flares, particles, trails).
func AddClamp(dst, overlay *image.RGBA) {
	n := len(dst.Pix)
	if len(overlay.Pix) < n {
		n = len(overlay.Pix)
	}
	for i := 0; i+3 < n; i += 4 {
		a := uint32(overlay.Pix[i+3])
		if a == 0 {
			continue
		}
		for c := 0; c < 3; c++ {
			sum := uint32(dst.Pix[i+c]) + uint32(overlay.Pix[i+c])*a/255
			if sum > 255 {
				sum = 255
			}
			dst.Pix[i+c] = uint8(sum)
		}
	}
}

// Scale multiplies every RGB channel by f (clamped), leaving alpha alone.
func Scale(dst *image.RGBA, f float64) {
	if f < 0 {
		f = 0
	}
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := float64(dst.Pix[i+c]) * f
			if v > 255 {
				v = 255
			}
			dst.Pix[i+c] = uint8(v)
		}
	}
}

func lerp8(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}
