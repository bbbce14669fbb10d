package effects

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumastudio/beatframe/internal/audio"
	"github.com/lumastudio/beatframe/internal/vision"
)

func testFeatures() *audio.Features {
	return &audio.Features{
		Duration:       10,
		Tempo:          120,
		BeatTimes:      []float64{0.5, 1.0, 1.5, 2.0},
		BeatStrengths:  []float64{0.4, 0.9, 0.6, 1.0},
		OnsetTimes:     []float64{0.6, 1.1},
		OnsetStrengths: []float64{0.8, 0.95},
	}
}

func TestBuildParametersIntensityMaps(t *testing.T) {
	cases := []struct {
		name      string
		intensity float64
		check     func(t *testing.T, p *Parameters)
	}{
		{"glow radius half", 0.5, func(t *testing.T, p *Parameters) {
			assert.InDelta(t, 65.0, p.Glow.Radius, 1e-9)
		}},
		{"glow radius full", 1.0, func(t *testing.T, p *Parameters) {
			assert.InDelta(t, 100.0, p.Glow.Radius, 1e-9)
		}},
		{"scale max half", 0.5, func(t *testing.T, p *Parameters) {
			assert.InDelta(t, 1.075, p.Scale.MaxScale, 1e-9)
		}},
		{"outline width full", 1.0, func(t *testing.T, p *Parameters) {
			assert.InDelta(t, 6.0, p.Outline.Width, 1e-9)
			assert.InDelta(t, 20.0, p.Outline.GlowRadius, 1e-9)
		}},
		{"echo trails half", 0.5, func(t *testing.T, p *Parameters) {
			assert.Equal(t, 5, p.Echo.TrailCount)
			assert.InDelta(t, 0.055, p.Echo.TrailSpacing, 1e-9)
			assert.InDelta(t, 0.7, p.Echo.OpacityDecay, 1e-9)
		}},
		{"burst full", 1.0, func(t *testing.T, p *Parameters) {
			assert.Equal(t, 100, p.Burst.ParticleCount)
			assert.InDelta(t, 300.0, p.Burst.Speed, 1e-9)
			assert.InDelta(t, 1.4, p.Burst.Lifetime, 1e-9)
		}},
		{"orbit half", 0.5, func(t *testing.T, p *Parameters) {
			assert.Equal(t, 8, p.Orbit.TrailCount)
			assert.InDelta(t, 100.0, p.Orbit.OrbitRadius, 1e-9)
			assert.InDelta(t, 1.0, p.Orbit.Speed, 1e-9)
		}},
		{"ripple wavelength inverse", 1.0, func(t *testing.T, p *Parameters) {
			assert.InDelta(t, 30.0, p.Ripple.Wavelength, 1e-9)
			assert.InDelta(t, 20.0, p.Ripple.Amplitude, 1e-9)
		}},
		{"vignette strengths half", 0.5, func(t *testing.T, p *Parameters) {
			assert.InDelta(t, 0.3, p.Vignette.BaseStrength, 1e-9)
			assert.InDelta(t, 0.2, p.Vignette.PulseStrength, 1e-9)
		}},
		{"dim full", 1.0, func(t *testing.T, p *Parameters) {
			assert.InDelta(t, 0.6, p.Dim.DimAmount, 1e-9)
			assert.InDelta(t, 5.0, p.Dim.BlurAmount, 1e-9)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			togs := Toggles{}
			all := []*Toggle{
				&togs.ElementGlow, &togs.ElementScale, &togs.NeonOutline,
				&togs.EchoTrail, &togs.ParticleBurst, &togs.EnergyTrails,
				&togs.LightFlares, &togs.Glitch, &togs.RippleWave,
				&togs.FilmGrain, &togs.StrobeFlash, &togs.VignettePulse,
				&togs.BackgroundDim,
			}
			for _, tg := range all {
				tg.Enabled = true
				tg.Intensity = tc.intensity
			}
			p := BuildParameters(testFeatures(), togs, nil)
			tc.check(t, p)
		})
	}
}

func TestBuildParametersGlowThresholdInverse(t *testing.T) {
	togs := Toggles{ElementGlow: Toggle{Enabled: true, Intensity: 1}}
	p := BuildParameters(testFeatures(), togs, nil)
	// full intensity -> threshold 0 -> every beat triggers
	require.Len(t, p.Glow.Triggers, 4)

	togs.ElementGlow.Intensity = 0
	p = BuildParameters(testFeatures(), togs, nil)
	// zero intensity -> threshold 0.3 -> only beats >= 0.3
	require.Len(t, p.Glow.Triggers, 4)

	f := testFeatures()
	f.BeatStrengths = []float64{0.1, 0.9, 0.2, 1.0}
	p = BuildParameters(f, togs, nil)
	require.Len(t, p.Glow.Triggers, 2)
}

func TestBuildParametersStrobeThreshold(t *testing.T) {
	togs := Toggles{StrobeFlash: Toggle{Enabled: true, Intensity: 1}}
	p := BuildParameters(testFeatures(), togs, nil)
	// only beats with strength >= 0.8 survive: 0.9 and 1.0
	require.Len(t, p.Strobe.Triggers, 2)
}

func TestBuildParametersNilInputs(t *testing.T) {
	p := BuildParameters(nil, DefaultToggles(), nil)
	assert.Zero(t, p.Duration)
	assert.Empty(t, p.Glow.Triggers)
	assert.Empty(t, p.Burst.Triggers)
	assert.Equal(t, vision.DefaultBounds(), p.Bounds)
	// flares fall back to the subject center when no glow points exist
	require.Len(t, p.Flares.Points, 1)
	assert.InDelta(t, 0.5, p.Flares.Points[0].X, 1e-9)
}

func TestBuildParametersDeterministic(t *testing.T) {
	togs := DefaultToggles()
	ctx := &vision.Context{
		Bounds:     vision.SubjectBounds{X: 0.1, Y: 0.2, W: 0.3, H: 0.4},
		Colors:     []string{"#FF0000", "#00FF00", "#0000FF"},
		GlowPoints: []vision.GlowPoint{{X: 0.5, Y: 0.5, Intensity: 0.8}},
	}
	a := BuildParameters(testFeatures(), togs, ctx)
	b := BuildParameters(testFeatures(), togs, ctx)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical inputs must produce identical parameter records")
	}
}

func TestBuildParametersContextPalette(t *testing.T) {
	ctx := &vision.Context{
		Bounds: vision.DefaultBounds(),
		Colors: []string{"#FF0000", "#00FF00"},
	}
	togs := Toggles{
		ElementGlow: Toggle{Enabled: true, Intensity: 1},
		NeonOutline: Toggle{Enabled: true, Intensity: 1},
	}
	p := BuildParameters(testFeatures(), togs, ctx)
	assert.Equal(t, vision.RGB{R: 255, G: 0, B: 0}, p.Glow.Color)
	assert.Equal(t, vision.RGB{R: 0, G: 255, B: 0}, p.Outline.Color)
}
