package compose

import (
	"image"
	"math"
	"math/rand"

	"golang.org/x/image/draw"

	"github.com/lumastudio/beatframe/internal/effects"
	"github.com/lumastudio/beatframe/internal/raster"
	"github.com/lumastudio/beatframe/internal/vision"
)

// Values below this are treated as "off" so float noise cannot re-enable a
// layer that should be a strict no-op.
const offThreshold = 1e-3

// Compositor applies the thirteen layers in their fixed order and owns the
// particle and echo state for one render job. Not safe for concurrent use;
// each job must create its own instance.
type Compositor struct {
	w, h   int
	params *effects.Parameters

	particles *ParticleSystem
	echo      *EchoBuffer
	rng       *rand.Rand // glitch slices + film grain noise
	scaler    draw.Scaler
}

// New builds a compositor for a w×h frame. The seed fixes both the particle
// simulation and the style-layer noise so identical jobs render identical
// frame sequences. highQuality selects Catmull-Rom resampling; preview mode
// uses bilinear.
func New(w, h int, params *effects.Parameters, seed int64, sprite *image.RGBA, highQuality bool) *Compositor {
	var scaler draw.Scaler = draw.BiLinear
	if highQuality {
		scaler = draw.CatmullRom
	}
	return &Compositor{
		w:         w,
		h:         h,
		params:    params,
		particles: NewParticleSystem(seed, sprite),
		echo:      NewEchoBuffer(params.Echo.TrailCount),
		rng:       rand.New(rand.NewSource(seed + 1)),
		scaler:    scaler,
	}
}

// Frame renders the composite for time t. dt is the step since the previous
// frame and drives the particle simulation. The base image is not mutated.
//
// Layer order is load-bearing: glow sits below the outline, and the echo
// snapshot is captured before particles so trails never contain bursts.
func (c *Compositor) Frame(base *image.RGBA, t, dt float64) *image.RGBA {
	v := c.params.At(t)
	frame := raster.Clone(base)

	c.applyBackgroundDim(frame, &v)
	frame = c.applyRipple(frame, &v)
	c.applyScale(frame, &v)
	c.applyGlow(frame, &v)
	c.applyOutline(frame, &v)
	c.applyEcho(frame, &v)
	c.applyParticles(frame, &v, t, dt)
	c.applyOrbit(frame, &v, t)
	c.applyFlares(frame, &v)
	c.applyGlitch(frame, &v)
	c.applyGrain(frame, &v)
	c.applyStrobe(frame, &v)
	c.applyVignette(frame, &v)

	return frame
}

// boundsEllipse converts normalized subject bounds to a pixel-space ellipse,
// clamped defensively: callers may pass out-of-range bounds.
func (c *Compositor) boundsEllipse(b vision.SubjectBounds) (cx, cy, rx, ry float64) {
	x := clamp01(b.X)
	y := clamp01(b.Y)
	w := clamp01(b.W)
	h := clamp01(b.H)
	if x+w > 1 {
		w = 1 - x
	}
	if y+h > 1 {
		h = 1 - y
	}
	cx = (x + w/2) * float64(c.w)
	cy = (y + h/2) * float64(c.h)
	rx = math.Max(w/2*float64(c.w), 1)
	ry = math.Max(h/2*float64(c.h), 1)
	return
}

// boundsRect is the clamped pixel rectangle of the subject bounds.
func (c *Compositor) boundsRect(b vision.SubjectBounds) image.Rectangle {
	cx, cy, rx, ry := c.boundsEllipse(b)
	r := image.Rect(int(cx-rx), int(cy-ry), int(cx+rx)+1, int(cy+ry)+1)
	return r.Intersect(image.Rect(0, 0, c.w, c.h))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// scaleAlpha multiplies an overlay's alpha channel by f before additive
// composition.
func scaleAlpha(overlay *image.RGBA, f float64) {
	if f >= 1 {
		return
	}
	if f < 0 {
		f = 0
	}
	for i := 3; i < len(overlay.Pix); i += 4 {
		overlay.Pix[i] = uint8(float64(overlay.Pix[i])*f + 0.5)
	}
}

// stampEllipse max-merges a feathered, colorized ellipse into an overlay.
func stampEllipse(overlay *image.RGBA, cx, cy, rx, ry, feather float64, col vision.RGB, alpha float64) {
	if alpha <= offThreshold {
		return
	}
	b := overlay.Bounds()
	mask := raster.EllipseMask(b.Dx(), b.Dy(), cx, cy, rx, ry, feather)
	for y := 0; y < b.Dy(); y++ {
		row := y * mask.Stride
		for x := 0; x < b.Dx(); x++ {
			m := mask.Pix[row+x]
			if m == 0 {
				continue
			}
			a := uint8(float64(m)*alpha + 0.5)
			i := overlay.PixOffset(b.Min.X+x, b.Min.Y+y)
			if a > overlay.Pix[i+3] {
				overlay.Pix[i+0] = col.R
				overlay.Pix[i+1] = col.G
				overlay.Pix[i+2] = col.B
				overlay.Pix[i+3] = a
			}
		}
	}
}
