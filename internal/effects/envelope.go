package effects

import (
	"github.com/lumastudio/beatframe/internal/vision"
)

// Envelope evaluation. At(t) is pure: it may be called at any time, in any
// order, and returns baselines before the first trigger and after the last.
// Overlapping triggers combine by max, never by sum, so stacked beats do not
// over-saturate. Disabled effects produce the zero value of their field
// group; consumers treat zero and absent identically.

// Pulse windows, attack fractions and lifetimes below are design constants
// shared with the compositor. Changing them changes visual parity.
const (
	glowWindow    = 0.3
	glowAttack    = 0.05
	scaleWindow   = 0.2
	scaleAttack   = 0.05
	outlineWindow = 0.25
	outlineAttack = 0.03
	flareWindow   = 0.4
	flareAttack   = 0.05
	vignWindow    = 0.3
	vignAttack    = 0.05
	rippleLife    = 2.0
)

type GlowValue struct {
	Intensity float64
	Radius    float64
	Color     vision.RGB
}

type ScaleValue struct {
	Scale float64
}

type OutlineValue struct {
	Intensity  float64
	Width      float64
	GlowRadius float64
	Color      vision.RGB
}

type EchoValue struct {
	Enabled    bool
	TrailCount int
	Spacing    float64
	Decay      float64
	Intensity  float64
}

// BurstEvent describes one trigger whose activation window contains the
// query time. Index is the trigger's position in the parameter record and is
// the stable de-duplication key for spawning.
type BurstEvent struct {
	Index    int
	Progress float64
	Strength float64
}

type BurstValue struct {
	Active    []BurstEvent
	Count     int
	Colors    []vision.RGB
	SizeMin   float64
	SizeMax   float64
	Speed     float64
	Lifetime  float64
	Intensity float64
	OriginX   float64
	OriginY   float64
}

type OrbitValue struct {
	Enabled    bool
	TrailCount int
	Colors     []vision.RGB
	Width      float64
	Radius     float64
	Speed      float64
	Intensity  float64
	CenterX    float64
	CenterY    float64
}

type FlareValue struct {
	Intensity float64
	Points    []vision.GlowPoint
	Colors    []vision.RGB
	Size      float64
}

type GlitchValue struct {
	Active      bool
	Intensity   float64
	Chromatic   float64
	RGBSplit    float64
	ScanLines   bool
	ScanOpacity float64
	Slice       bool
}

// RippleWave is one in-flight ripple at the query time.
type RippleWave struct {
	Radius     float64
	Amplitude  float64
	Wavelength float64
	CenterX    float64
	CenterY    float64
}

type RippleValue struct {
	Waves     []RippleWave
	Intensity float64
}

type GrainValue struct {
	Enabled   bool
	Intensity float64
	Size      float64
	ColorVar  float64
}

type StrobeValue struct {
	Active    bool
	Intensity float64
	Color     vision.RGB
}

type VignetteValue struct {
	Strength float64
}

type DimValue struct {
	Enabled bool
	Amount  float64
	Blur    float64
}

// Values is the complete envelope output for one query time. One field group
// per effect so producers and consumers agree on shape at compile time.
type Values struct {
	Glow     GlowValue
	Scale    ScaleValue
	Outline  OutlineValue
	Echo     EchoValue
	Burst    BurstValue
	Orbit    OrbitValue
	Flares   FlareValue
	Glitch   GlitchValue
	Ripple   RippleValue
	Grain    GrainValue
	Strobe   StrobeValue
	Vignette VignetteValue
	Dim      DimValue
	Bounds   vision.SubjectBounds
}

// linearPulse is the shared attack/decay shape: linear ramp over the attack
// phase, linear fall over the remainder of the window. Returns 0 outside.
func linearPulse(dt, attack, window float64) float64 {
	if dt < 0 || dt >= window {
		return 0
	}
	if dt < attack {
		return dt / attack
	}
	return 1 - (dt-attack)/(window-attack)
}

// At evaluates every effect envelope at time t.
func (p *Parameters) At(t float64) Values {
	v := Values{Bounds: p.Bounds}

	if p.Glow.Enabled {
		intensity := 0.3 // resting glow
		for _, tr := range p.Glow.Triggers {
			pulse := linearPulse(t-tr.Time, glowAttack, glowWindow) * tr.Strength
			if 0.3+pulse*0.7 > intensity {
				intensity = 0.3 + pulse*0.7
			}
		}
		v.Glow = GlowValue{
			Intensity: intensity * p.Glow.Intensity,
			Radius:    p.Glow.Radius,
			Color:     p.Glow.Color,
		}
	}

	v.Scale.Scale = 1.0
	if p.Scale.Enabled {
		cur := p.Scale.BaseScale
		span := p.Scale.MaxScale - p.Scale.BaseScale
		for _, tr := range p.Scale.Triggers {
			dt := t - tr.Time
			if dt < 0 || dt >= scaleWindow {
				continue
			}
			var add float64
			if dt < scaleAttack {
				add = (dt / scaleAttack) * span * tr.Strength
			} else {
				// quadratic ease-out for a smoother settle
				progress := (dt - scaleAttack) / (scaleWindow - scaleAttack)
				add = (1 - progress*progress) * span * tr.Strength
			}
			if p.Scale.BaseScale+add > cur {
				cur = p.Scale.BaseScale + add
			}
		}
		v.Scale.Scale = cur
	}

	if p.Outline.Enabled {
		intensity := 0.5 // resting outline
		for _, tr := range p.Outline.Triggers {
			pulse := linearPulse(t-tr.Time, outlineAttack, outlineWindow)
			if 0.5+pulse*0.5*tr.Strength > intensity {
				intensity = 0.5 + pulse*0.5*tr.Strength
			}
		}
		v.Outline = OutlineValue{
			Intensity:  intensity * p.Outline.Intensity,
			Width:      p.Outline.Width,
			GlowRadius: p.Outline.GlowRadius,
			Color:      p.Outline.Color,
		}
	}

	if p.Echo.Enabled {
		v.Echo = EchoValue{
			Enabled:    true,
			TrailCount: p.Echo.TrailCount,
			Spacing:    p.Echo.TrailSpacing,
			Decay:      p.Echo.OpacityDecay,
			Intensity:  p.Echo.Intensity,
		}
	}

	if p.Burst.Enabled {
		var active []BurstEvent
		for i, tr := range p.Burst.Triggers {
			dt := t - tr.Time
			if dt >= 0 && dt < p.Burst.Lifetime {
				active = append(active, BurstEvent{
					Index:    i,
					Progress: dt / p.Burst.Lifetime,
					Strength: tr.Strength,
				})
			}
		}
		v.Burst = BurstValue{
			Active:    active,
			Count:     p.Burst.ParticleCount,
			Colors:    p.Burst.Colors,
			SizeMin:   p.Burst.SizeMin,
			SizeMax:   p.Burst.SizeMax,
			Speed:     p.Burst.Speed,
			Lifetime:  p.Burst.Lifetime,
			Intensity: p.Burst.Intensity,
			OriginX:   p.Burst.OriginX,
			OriginY:   p.Burst.OriginY,
		}
	}

	if p.Orbit.Enabled {
		v.Orbit = OrbitValue{
			Enabled:    true,
			TrailCount: p.Orbit.TrailCount,
			Colors:     p.Orbit.Colors,
			Width:      p.Orbit.Width,
			Radius:     p.Orbit.OrbitRadius,
			Speed:      p.Orbit.Speed,
			Intensity:  p.Orbit.Intensity,
			CenterX:    p.Orbit.CenterX,
			CenterY:    p.Orbit.CenterY,
		}
	}

	if p.Flares.Enabled {
		intensity := 0.0
		for _, tr := range p.Flares.Triggers {
			pulse := linearPulse(t-tr.Time, flareAttack, flareWindow) * tr.Strength
			if pulse > intensity {
				intensity = pulse
			}
		}
		v.Flares = FlareValue{
			Intensity: intensity * p.Flares.Intensity,
			Points:    p.Flares.Points,
			Colors:    p.Flares.Colors,
			Size:      p.Flares.Size,
		}
	}

	if p.Glitch.Enabled {
		for _, tr := range p.Glitch.Triggers {
			// Half-open window; earliest trigger in the sorted list wins.
			if tr.Time <= t && t < tr.Time+tr.Duration {
				v.Glitch = GlitchValue{
					Active:      true,
					Intensity:   tr.Strength,
					Chromatic:   p.Glitch.ChromaticAberration * tr.Strength,
					RGBSplit:    p.Glitch.RGBSplit * tr.Strength,
					ScanLines:   p.Glitch.ScanLines,
					ScanOpacity: p.Glitch.ScanLineOpacity,
					Slice:       p.Glitch.SliceDisplacement,
				}
				break
			}
		}
	}

	if p.Ripple.Enabled {
		var waves []RippleWave
		for _, tr := range p.Ripple.Triggers {
			dt := t - tr.Time
			if dt < 0 || dt >= rippleLife {
				continue
			}
			fade := 1 - dt/rippleLife
			waves = append(waves, RippleWave{
				Radius:     dt * p.Ripple.Speed,
				Amplitude:  p.Ripple.Amplitude * tr.Strength * fade,
				Wavelength: p.Ripple.Wavelength,
				CenterX:    p.Ripple.CenterX,
				CenterY:    p.Ripple.CenterY,
			})
		}
		v.Ripple = RippleValue{Waves: waves, Intensity: p.Ripple.Intensity}
	}

	if p.Grain.Enabled {
		v.Grain = GrainValue{
			Enabled:   true,
			Intensity: p.Grain.Intensity,
			Size:      p.Grain.GrainSize,
			ColorVar:  p.Grain.ColorVariation,
		}
	}

	if p.Strobe.Enabled {
		for _, tr := range p.Strobe.Triggers {
			if tr.Time <= t && t < tr.Time+p.Strobe.FlashDuration {
				v.Strobe = StrobeValue{
					Active:    true,
					Intensity: p.Strobe.Intensity,
					Color:     p.Strobe.Color,
				}
				break
			}
		}
	}

	if p.Vignette.Enabled {
		strength := p.Vignette.BaseStrength
		for _, tr := range p.Vignette.Triggers {
			pulse := linearPulse(t-tr.Time, vignAttack, vignWindow)
			s := p.Vignette.BaseStrength + p.Vignette.PulseStrength*pulse*tr.Strength
			if s > strength {
				strength = s
			}
		}
		v.Vignette.Strength = strength
	}

	if p.Dim.Enabled {
		v.Dim = DimValue{
			Enabled: true,
			Amount:  p.Dim.DimAmount,
			Blur:    p.Dim.BlurAmount,
		}
	}

	return v
}
