// Package vision carries the image-understanding contract: where the subject
// sits, which points emit light, and which colors dominate. The analysis
// itself happens in an external collaborator; this package only shapes and
// defaults its output.
package vision

import (
	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit color triple used by effect tunables.
type RGB struct {
	R, G, B uint8
}

// SubjectBounds is a normalized rectangle locating the subject.
// Out-of-range values are allowed here; the compositor clamps to pixel
// bounds when anchoring effects.
type SubjectBounds struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (b SubjectBounds) CenterX() float64 { return b.X + b.W/2 }
func (b SubjectBounds) CenterY() float64 { return b.Y + b.H/2 }

// GlowPoint is a normalized light-emitting point in the image.
type GlowPoint struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Intensity float64 `json:"intensity"`
}

// Context is the opaque image-analysis result consumed by the parameter
// builder. Colors are hex strings as produced by the analyzer.
type Context struct {
	Bounds     SubjectBounds `json:"bounds"`
	GlowPoints []GlowPoint   `json:"glow_points"`
	Colors     []string      `json:"colors"`
	Mood       string        `json:"mood"`
}

// DefaultBounds is a centered box covering the middle half of the frame.
func DefaultBounds() SubjectBounds {
	return SubjectBounds{X: 0.25, Y: 0.25, W: 0.5, H: 0.5}
}

// DefaultContext is used when no image analysis is available.
func DefaultContext() Context {
	return Context{
		Bounds: DefaultBounds(),
		Colors: []string{"#FFFFFF", "#FFD700", "#FF6B35"},
		Mood:   "neutral",
	}
}

// ParseHex converts a "#RRGGBB" string to an RGB triple. Malformed input
// degrades to warm white rather than erroring; palette noise is not fatal.
func ParseHex(hex string) RGB {
	c, err := colorful.Hex(hex)
	if err != nil {
		return RGB{255, 200, 100}
	}
	r, g, b := c.RGB255()
	return RGB{r, g, b}
}

// Palette converts the context's hex colors to RGB, capped at n entries.
// An empty palette yields the single warm-white default.
func (c Context) Palette(n int) []RGB {
	if len(c.Colors) == 0 {
		return []RGB{{255, 200, 100}}
	}
	if n > len(c.Colors) {
		n = len(c.Colors)
	}
	out := make([]RGB, 0, n)
	for _, h := range c.Colors[:n] {
		out = append(out, ParseHex(h))
	}
	return out
}

// Lerp blends two colors in RGB space; t is clamped to [0,1].
func Lerp(a, b RGB, t float64) RGB {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	m := ca.BlendRgb(cb, t)
	r, g, bb := m.RGB255()
	return RGB{r, g, bb}
}
