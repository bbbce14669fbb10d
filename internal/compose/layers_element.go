package compose

import (
	"image"
	"math"

	"github.com/lumastudio/beatframe/internal/effects"
	"github.com/lumastudio/beatframe/internal/raster"
)

// Layer 1: background dim + blur. A blurred-ellipse mask keeps the subject
// sharp while the surround is darkened and softened.
func (c *Compositor) applyBackgroundDim(frame *image.RGBA, v *effects.Values) {
	if !v.Dim.Enabled || (v.Dim.Amount <= offThreshold && v.Dim.Blur <= offThreshold) {
		return
	}
	cx, cy, rx, ry := c.boundsEllipse(v.Bounds)
	background := raster.GaussianBlur(frame, v.Dim.Blur)
	raster.Scale(background, 1-v.Dim.Amount)

	// Slightly oversized, heavily feathered mask so the subject edge melts
	// into the dimmed surround instead of cutting hard.
	mask := raster.EllipseMask(c.w, c.h, cx, cy, rx*1.15, ry*1.15, 0.35)
	for y := 0; y < c.h; y++ {
		row := y * mask.Stride
		for x := 0; x < c.w; x++ {
			outside := 1 - float64(mask.Pix[row+x])/255
			if outside <= 0.004 {
				continue
			}
			i := frame.PixOffset(x, y)
			frame.Pix[i+0] = mix8(frame.Pix[i+0], background.Pix[i+0], outside)
			frame.Pix[i+1] = mix8(frame.Pix[i+1], background.Pix[i+1], outside)
			frame.Pix[i+2] = mix8(frame.Pix[i+2], background.Pix[i+2], outside)
		}
	}
}

// Layer 2: ripple distortion. Every destination pixel computes its
// elliptical-normalized distance from the wave center and samples the source
// displaced tangentially by a Gaussian-windowed sine around each wavefront.
// Nearest/clamped sampling; degenerate wavelengths are clamped.
func (c *Compositor) applyRipple(frame *image.RGBA, v *effects.Values) *image.RGBA {
	if len(v.Ripple.Waves) == 0 || v.Ripple.Intensity <= offThreshold {
		return frame
	}
	_, _, rx, ry := c.boundsEllipse(v.Bounds)
	meanR := (rx + ry) / 2

	out := image.NewRGBA(frame.Bounds())
	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			fx := float64(x) + 0.5
			fy := float64(y) + 0.5
			var ox, oy float64
			for _, w := range v.Ripple.Waves {
				wcx := clamp01(w.CenterX) * float64(c.w)
				wcy := clamp01(w.CenterY) * float64(c.h)
				dx := fx - wcx
				dy := fy - wcy
				// elliptical-normalized distance rescaled to pixel units
				nd := math.Sqrt((dx/rx)*(dx/rx) + (dy/ry)*(dy/ry))
				dist := nd * meanR
				if dist < 1e-6 {
					continue
				}
				lambda := w.Wavelength
				if lambda < 1e-6 {
					lambda = 1e-6
				}
				arg := dist - w.Radius
				disp := w.Amplitude *
					math.Sin(2*math.Pi*arg/lambda) *
					math.Exp(-(arg*arg)/(2*lambda*lambda))
				if math.Abs(disp) < 1e-4 {
					continue
				}
				// tangential displacement around the wave center
				ed := math.Hypot(dx, dy)
				if ed < 1e-6 {
					continue
				}
				ox += -dy / ed * disp
				oy += dx / ed * disp
			}
			ox *= v.Ripple.Intensity
			oy *= v.Ripple.Intensity
			sx := clampInt(int(fx+ox), 0, c.w-1)
			sy := clampInt(int(fy+oy), 0, c.h-1)
			si := frame.PixOffset(sx, sy)
			di := out.PixOffset(x, y)
			copy(out.Pix[di:di+4], frame.Pix[si:si+4])
		}
	}
	return out
}

// Layer 3: element scale. The subject region is cropped with a feathered
// elliptical mask, resampled by the pulse scale, and re-composited centered.
func (c *Compositor) applyScale(frame *image.RGBA, v *effects.Values) {
	scale := v.Scale.Scale
	if math.Abs(scale-1) < offThreshold {
		return
	}
	rect := c.boundsRect(v.Bounds)
	if rect.Empty() {
		return
	}
	sub := raster.SubImage(frame, rect)
	nw := int(float64(rect.Dx()) * scale)
	nh := int(float64(rect.Dy()) * scale)
	if nw < 1 || nh < 1 {
		return
	}
	scaled := raster.Resize(sub, nw, nh, c.scaler)
	mask := raster.EllipseMask(nw, nh, float64(nw)/2, float64(nh)/2, float64(nw)/2, float64(nh)/2, 0.15)

	// centered on the original subject center
	ox := rect.Min.X + rect.Dx()/2 - nw/2
	oy := rect.Min.Y + rect.Dy()/2 - nh/2
	for y := 0; y < nh; y++ {
		fy := oy + y
		if fy < 0 || fy >= c.h {
			continue
		}
		row := y * mask.Stride
		for x := 0; x < nw; x++ {
			fx := ox + x
			if fx < 0 || fx >= c.w {
				continue
			}
			a := float64(mask.Pix[row+x]) / 255
			if a <= 0.004 {
				continue
			}
			si := scaled.PixOffset(x, y)
			di := frame.PixOffset(fx, fy)
			frame.Pix[di+0] = mix8(frame.Pix[di+0], scaled.Pix[si+0], a)
			frame.Pix[di+1] = mix8(frame.Pix[di+1], scaled.Pix[si+1], a)
			frame.Pix[di+2] = mix8(frame.Pix[di+2], scaled.Pix[si+2], a)
		}
	}
}

// Layer 4: element glow. Concentric alpha-decreasing ellipses around the
// subject, blurred, then added as emitted light.
func (c *Compositor) applyGlow(frame *image.RGBA, v *effects.Values) {
	if v.Glow.Intensity <= offThreshold {
		return
	}
	cx, cy, rx, ry := c.boundsEllipse(v.Bounds)
	overlay := raster.NewOverlay(c.w, c.h)
	const rings = 5
	for i := 0; i < rings; i++ {
		grow := v.Glow.Radius * float64(i+1) / rings
		alpha := v.Glow.Intensity * (1 - float64(i)/rings) * 0.35
		stampEllipse(overlay, cx, cy, rx+grow, ry+grow, 0.4, v.Glow.Color, alpha)
	}
	blurred := raster.GaussianBlur(overlay, v.Glow.Radius/2)
	raster.AddClamp(frame, blurred)
}

func mix8(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}
