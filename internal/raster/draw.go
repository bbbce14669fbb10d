package raster

import (
	"image"
	"math"
)

const minAxis = 1e-6 // guards zero-radius ellipses and degenerate divisors

// SoftDisc stamps a quadratically feathered disc into an overlay. Alpha
// peaks at the center and falls to zero at radius r. Overlapping stamps keep
// the maximum alpha so clusters do not blow out.
func SoftDisc(dst *image.RGBA, cx, cy, r float64, cr, cg, cb uint8, alpha float64) {
	if r < 0.5 || alpha <= 0.001 {
		return
	}
	if alpha > 1 {
		alpha = 1
	}
	b := dst.Bounds()
	x0 := clampInt(int(cx-r), b.Min.X, b.Max.X-1)
	x1 := clampInt(int(cx+r)+1, b.Min.X, b.Max.X)
	y0 := clampInt(int(cy-r), b.Min.Y, b.Max.Y-1)
	y1 := clampInt(int(cy+r)+1, b.Min.Y, b.Max.Y)
	r2 := r * r
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			d2 := dx*dx + dy*dy
			if d2 >= r2 {
				continue
			}
			a := alpha * (1 - d2/r2)
			ai := uint8(a*255 + 0.5)
			i := dst.PixOffset(x, y)
			if ai > dst.Pix[i+3] {
				dst.Pix[i+0] = cr
				dst.Pix[i+1] = cg
				dst.Pix[i+2] = cb
				dst.Pix[i+3] = ai
			}
		}
	}
}

// StampSprite draws a sprite centered at (cx, cy), scaled to diameter size,
// modulating its alpha. Used for custom particle sprites.
func StampSprite(dst, sprite *image.RGBA, cx, cy, size, alpha float64) {
	if size < 1 || alpha <= 0.001 {
		return
	}
	sb := sprite.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw == 0 || sh == 0 {
		return
	}
	b := dst.Bounds()
	half := size / 2
	x0 := clampInt(int(cx-half), b.Min.X, b.Max.X-1)
	x1 := clampInt(int(cx+half)+1, b.Min.X, b.Max.X)
	y0 := clampInt(int(cy-half), b.Min.Y, b.Max.Y-1)
	y1 := clampInt(int(cy+half)+1, b.Min.Y, b.Max.Y)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			// nearest-neighbor sample from the sprite
			u := (float64(x) + 0.5 - (cx - half)) / size
			v := (float64(y) + 0.5 - (cy - half)) / size
			if u < 0 || u >= 1 || v < 0 || v >= 1 {
				continue
			}
			si := sprite.PixOffset(sb.Min.X+int(u*float64(sw)), sb.Min.Y+int(v*float64(sh)))
			a := alpha * float64(sprite.Pix[si+3]) / 255
			ai := uint8(a*255 + 0.5)
			if ai == 0 {
				continue
			}
			di := dst.PixOffset(x, y)
			if ai > dst.Pix[di+3] {
				dst.Pix[di+0] = sprite.Pix[si+0]
				dst.Pix[di+1] = sprite.Pix[si+1]
				dst.Pix[di+2] = sprite.Pix[si+2]
				dst.Pix[di+3] = ai
			}
		}
	}
}

// EllipseMask builds an alpha mask that is opaque inside the ellipse and
// feathers to zero over the outer featherFrac of the radius. Degenerate axes
// are clamped so the mask is never built from a zero divisor.
func EllipseMask(w, h int, cx, cy, rx, ry, featherFrac float64) *image.Alpha {
	if rx < minAxis {
		rx = minAxis
	}
	if ry < minAxis {
		ry = minAxis
	}
	if featherFrac < 0.01 {
		featherFrac = 0.01
	}
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	inner := 1 - featherFrac
	for y := 0; y < h; y++ {
		ny := (float64(y) + 0.5 - cy) / ry
		for x := 0; x < w; x++ {
			nx := (float64(x) + 0.5 - cx) / rx
			d := math.Sqrt(nx*nx + ny*ny)
			var a float64
			switch {
			case d <= inner:
				a = 1
			case d >= 1:
				a = 0
			default:
				a = (1 - d) / featherFrac
			}
			mask.Pix[y*mask.Stride+x] = uint8(a*255 + 0.5)
		}
	}
	return mask
}
