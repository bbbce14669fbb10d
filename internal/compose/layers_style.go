package compose

import (
	"image"

	"github.com/lumastudio/beatframe/internal/effects"
)

// Layer 10: glitch. Chromatic aberration (red left, blue right), optional
// darkened scan lines, optional displaced horizontal slices. Slice geometry
// comes from the compositor's seeded noise stream, so the jitter is
// frame-to-frame chaotic but reproducible across renders of the same job.
func (c *Compositor) applyGlitch(frame *image.RGBA, v *effects.Values) {
	if !v.Glitch.Active || v.Glitch.Intensity <= offThreshold {
		return
	}
	w, h := c.w, c.h

	shift := int(v.Glitch.Chromatic)
	if shift > 0 {
		src := make([]uint8, len(frame.Pix))
		copy(src, frame.Pix)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := frame.PixOffset(x, y)
				rx := clampInt(x+shift, 0, w-1)
				bx := clampInt(x-shift, 0, w-1)
				frame.Pix[i+0] = src[frame.PixOffset(rx, y)+0]
				frame.Pix[i+2] = src[frame.PixOffset(bx, y)+2]
			}
		}
	}

	if v.Glitch.ScanLines {
		keep := 1 - v.Glitch.ScanOpacity
		for y := 0; y < h; y += 3 {
			i := frame.PixOffset(0, y)
			for x := 0; x < w; x++ {
				frame.Pix[i+0] = uint8(float64(frame.Pix[i+0]) * keep)
				frame.Pix[i+1] = uint8(float64(frame.Pix[i+1]) * keep)
				frame.Pix[i+2] = uint8(float64(frame.Pix[i+2]) * keep)
				i += 4
			}
		}
	}

	if v.Glitch.Slice {
		n := 3 + int(v.Glitch.Intensity*5)
		for s := 0; s < n; s++ {
			sy := c.rng.Intn(maxInt(h-20, 1))
			sh := 5 + c.rng.Intn(16)
			dx := c.rng.Intn(41) - 20
			if dx == 0 {
				continue
			}
			shiftRows(frame, sy, minInt(sy+sh, h), dx)
		}
	}
}

// Layer 11: film grain. Per-pixel Gaussian luminance noise with a per-channel
// color variation component. Size>1 applies the same sample to a block so the
// grain reads coarser.
func (c *Compositor) applyGrain(frame *image.RGBA, v *effects.Values) {
	if !v.Grain.Enabled || v.Grain.Intensity <= offThreshold {
		return
	}
	block := int(v.Grain.Size)
	if block < 1 {
		block = 1
	}
	amp := v.Grain.Intensity * 32 // noise sigma in 8-bit units
	for y := 0; y < c.h; y += block {
		for x := 0; x < c.w; x += block {
			n := c.rng.NormFloat64() * amp
			cr := c.rng.NormFloat64() * amp * v.Grain.ColorVar
			cb := c.rng.NormFloat64() * amp * v.Grain.ColorVar
			for by := y; by < y+block && by < c.h; by++ {
				for bx := x; bx < x+block && bx < c.w; bx++ {
					i := frame.PixOffset(bx, by)
					frame.Pix[i+0] = addClamp8(frame.Pix[i+0], n+cr)
					frame.Pix[i+1] = addClamp8(frame.Pix[i+1], n)
					frame.Pix[i+2] = addClamp8(frame.Pix[i+2], n+cb)
				}
			}
		}
	}
}

// Layer 12: strobe flash. Whole-frame color wash with radial falloff from
// center, opacity capped well below full white so content stays legible.
func (c *Compositor) applyStrobe(frame *image.RGBA, v *effects.Values) {
	if !v.Strobe.Active || v.Strobe.Intensity <= offThreshold {
		return
	}
	peak := 0.3 * v.Strobe.Intensity
	cx := float64(c.w) / 2
	cy := float64(c.h) / 2
	maxR2 := cx*cx + cy*cy
	col := v.Strobe.Color
	for y := 0; y < c.h; y++ {
		dy := float64(y) - cy
		for x := 0; x < c.w; x++ {
			dx := float64(x) - cx
			a := peak * (1 - 0.5*(dx*dx+dy*dy)/maxR2)
			i := frame.PixOffset(x, y)
			frame.Pix[i+0] = mix8(frame.Pix[i+0], col.R, a)
			frame.Pix[i+1] = mix8(frame.Pix[i+1], col.G, a)
			frame.Pix[i+2] = mix8(frame.Pix[i+2], col.B, a)
		}
	}
}

// Layer 13: vignette. Quadratic darkening toward the corners; the envelope
// already folded the pulse into Strength.
func (c *Compositor) applyVignette(frame *image.RGBA, v *effects.Values) {
	if v.Vignette.Strength <= offThreshold {
		return
	}
	cx := float64(c.w) / 2
	cy := float64(c.h) / 2
	maxR2 := cx*cx + cy*cy
	for y := 0; y < c.h; y++ {
		dy := float64(y) - cy
		for x := 0; x < c.w; x++ {
			dx := float64(x) - cx
			f := 1 - v.Vignette.Strength*(dx*dx+dy*dy)/maxR2
			if f >= 0.999 {
				continue
			}
			if f < 0 {
				f = 0
			}
			i := frame.PixOffset(x, y)
			frame.Pix[i+0] = uint8(float64(frame.Pix[i+0]) * f)
			frame.Pix[i+1] = uint8(float64(frame.Pix[i+1]) * f)
			frame.Pix[i+2] = uint8(float64(frame.Pix[i+2]) * f)
		}
	}
}

// shiftRows displaces rows [y0,y1) horizontally by dx, filling the vacated
// edge with the nearest surviving column.
func shiftRows(frame *image.RGBA, y0, y1, dx int) {
	b := frame.Bounds()
	w := b.Dx()
	row := make([]uint8, w*4)
	for y := y0; y < y1; y++ {
		i := frame.PixOffset(b.Min.X, b.Min.Y+y)
		copy(row, frame.Pix[i:i+w*4])
		for x := 0; x < w; x++ {
			sx := clampInt(x-dx, 0, w-1)
			copy(frame.Pix[i+x*4:i+x*4+4], row[sx*4:sx*4+4])
		}
	}
}

func addClamp8(v uint8, d float64) uint8 {
	r := float64(v) + d
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
