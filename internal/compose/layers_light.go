package compose

import (
	"image"
	"math"

	"github.com/lumastudio/beatframe/internal/effects"
	"github.com/lumastudio/beatframe/internal/raster"
	"github.com/lumastudio/beatframe/internal/vision"
)

// Sobel kernel pair. The weights are normative; matching them matters for
// parity, not just the qualitative edge look.
var (
	sobelX = [3][3]float64{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	sobelY = [3][3]float64{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}
)

const edgeThreshold = 100.0 // gradient magnitude, 8-bit luma domain

// Layer 5: neon outline. Gradient-magnitude edges are thresholded, dilated
// to the configured width, colorized, and composited twice: a wide blurred
// glow pass beneath a crisp edge pass.
func (c *Compositor) applyOutline(frame *image.RGBA, v *effects.Values) {
	if v.Outline.Intensity <= offThreshold {
		return
	}
	gray := luma(frame)
	w, h := c.w, c.h

	edges := image.NewAlpha(image.Rect(0, 0, w, h))
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				row := (y + ky) * w
				for kx := -1; kx <= 1; kx++ {
					p := float64(gray[row+x+kx])
					gx += p * sobelX[ky+1][kx+1]
					gy += p * sobelY[ky+1][kx+1]
				}
			}
			if math.Sqrt(gx*gx+gy*gy) >= edgeThreshold {
				edges.Pix[y*edges.Stride+x] = 255
			}
		}
	}

	for pass := 0; pass < int(v.Outline.Width/2); pass++ {
		edges = dilate(edges, w, h)
	}

	overlay := raster.NewOverlay(w, h)
	col := v.Outline.Color
	for y := 0; y < h; y++ {
		row := y * edges.Stride
		for x := 0; x < w; x++ {
			if edges.Pix[row+x] == 0 {
				continue
			}
			i := overlay.PixOffset(x, y)
			overlay.Pix[i+0] = col.R
			overlay.Pix[i+1] = col.G
			overlay.Pix[i+2] = col.B
			overlay.Pix[i+3] = 255
		}
	}

	glow := raster.GaussianBlur(overlay, v.Outline.GlowRadius)
	scaleAlpha(glow, v.Outline.Intensity*0.7)
	crisp := raster.GaussianBlur(overlay, 1)
	scaleAlpha(crisp, v.Outline.Intensity)

	raster.AddClamp(frame, glow)
	raster.AddClamp(frame, crisp)
}

// Layer 6: echo trail. The clean frame (no echo, no particles yet) is
// snapshotted first so echoes never compound or contain bursts; prior
// snapshots are then blended in, oldest first, offset and faded by age.
// Toggling the effect off clears the buffer immediately.
func (c *Compositor) applyEcho(frame *image.RGBA, v *effects.Values) {
	if !v.Echo.Enabled {
		c.echo.Clear()
		return
	}
	c.echo.Push(frame)

	// diagonal offset proportional to frame size
	offset := c.w / 150
	if offset < 2 {
		offset = 2
	}
	c.echo.Compose(frame, v.Echo.TrailCount, offset, v.Echo.Intensity, v.Echo.Decay)
}

// Layer 7: particle burst. Each trigger whose activation window contains the
// current time spawns exactly once, keyed by its sequence index in the
// parameter record; the simulation then advances and draws.
func (c *Compositor) applyParticles(frame *image.RGBA, v *effects.Values, t, dt float64) {
	if v.Burst.Count > 0 {
		cx, cy, rx, ry := c.boundsEllipse(v.Bounds)
		for _, ev := range v.Burst.Active {
			if c.particles.Spawned(ev.Index) {
				continue
			}
			c.particles.SpawnBurst(ev.Index, cx, cy, rx, ry,
				v.Burst.Count, v.Burst.Colors,
				v.Burst.SizeMin, v.Burst.SizeMax,
				v.Burst.Speed, v.Burst.Lifetime, t)
		}
	}
	c.particles.Update(t, dt)
	if c.particles.Len() == 0 {
		return
	}
	overlay := raster.NewOverlay(c.w, c.h)
	c.particles.Draw(overlay, t)
	scaleAlpha(overlay, math.Max(v.Burst.Intensity, 0.3))
	raster.AddClamp(frame, overlay)
}

// Layer 8: orbiting energy trails. Each trail is an arc sampled along an
// ellipse hugging the subject bounds, phase advancing with time×speed,
// alpha fading toward the tail and the color blending toward the next
// palette entry, softened with a light blur.
func (c *Compositor) applyOrbit(frame *image.RGBA, v *effects.Values, t float64) {
	if !v.Orbit.Enabled || v.Orbit.Intensity <= offThreshold || v.Orbit.TrailCount == 0 {
		return
	}
	_, _, brx, bry := c.boundsEllipse(v.Bounds)
	cx := clamp01(v.Orbit.CenterX) * float64(c.w)
	cy := clamp01(v.Orbit.CenterY) * float64(c.h)
	rx := brx + v.Orbit.Radius
	ry := bry + v.Orbit.Radius

	colors := v.Orbit.Colors
	if len(colors) == 0 {
		colors = []vision.RGB{{R: 255, G: 200, B: 100}}
	}
	overlay := raster.NewOverlay(c.w, c.h)
	const arcSpan = 1.2 // radians of visible tail per trail
	const samples = 24
	for k := 0; k < v.Orbit.TrailCount; k++ {
		head := 2*math.Pi*float64(k)/float64(v.Orbit.TrailCount) + t*v.Orbit.Speed*2*math.Pi
		headCol := colors[k%len(colors)]
		tailCol := colors[(k+1)%len(colors)]
		for j := 0; j < samples; j++ {
			frac := float64(j) / samples
			theta := head - frac*arcSpan
			px := cx + math.Cos(theta)*rx
			py := cy + math.Sin(theta)*ry
			alpha := v.Orbit.Intensity * (1 - frac)
			col := vision.Lerp(headCol, tailCol, frac)
			raster.SoftDisc(overlay, px, py, v.Orbit.Width+1, col.R, col.G, col.B, alpha)
		}
	}
	blurred := raster.GaussianBlur(overlay, 2)
	raster.AddClamp(frame, blurred)
}

// Layer 9: light flares. Concentric fading discs plus a horizontal streak at
// each flare point, blurred into bloom.
func (c *Compositor) applyFlares(frame *image.RGBA, v *effects.Values) {
	if v.Flares.Intensity <= offThreshold || len(v.Flares.Points) == 0 {
		return
	}
	overlay := raster.NewOverlay(c.w, c.h)
	discs := [4]struct{ r, a float64 }{
		{1.0, 0.12}, {0.65, 0.22}, {0.4, 0.38}, {0.18, 0.6},
	}
	for pi, pt := range v.Flares.Points {
		px := clamp01(pt.X) * float64(c.w)
		py := clamp01(pt.Y) * float64(c.h)
		pstr := pt.Intensity
		if pstr <= 0 {
			pstr = 1
		}
		col := v.Flares.Colors[pi%maxInt(1, len(v.Flares.Colors))]
		for _, d := range discs {
			raster.SoftDisc(overlay, px, py, v.Flares.Size*d.r, col.R, col.G, col.B,
				v.Flares.Intensity*d.a*pstr)
		}
		// horizontal streak fading from the flare center
		half := v.Flares.Size * 1.5
		steps := 30
		for j := 0; j <= steps; j++ {
			u := float64(j)/float64(steps)*2 - 1 // -1..1
			raster.SoftDisc(overlay, px+u*half, py, 2.5, col.R, col.G, col.B,
				v.Flares.Intensity*0.4*(1-math.Abs(u))*pstr)
		}
	}
	blurred := raster.GaussianBlur(overlay, 3)
	raster.AddClamp(frame, blurred)
}

func luma(img *image.RGBA) []uint8 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			// Rec. 601 integer luma
			out[y*w+x] = uint8((299*uint32(img.Pix[i]) + 587*uint32(img.Pix[i+1]) + 114*uint32(img.Pix[i+2])) / 1000)
		}
	}
	return out
}

func dilate(src *image.Alpha, w, h int) *image.Alpha {
	dst := image.NewAlpha(src.Rect)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var v uint8
			for ky := -1; ky <= 1 && v == 0; ky++ {
				yy := y + ky
				if yy < 0 || yy >= h {
					continue
				}
				for kx := -1; kx <= 1; kx++ {
					xx := x + kx
					if xx < 0 || xx >= w {
						continue
					}
					if src.Pix[yy*src.Stride+xx] != 0 {
						v = 255
						break
					}
				}
			}
			dst.Pix[y*dst.Stride+x] = v
		}
	}
	return dst
}
