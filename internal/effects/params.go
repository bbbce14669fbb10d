package effects

import (
	"github.com/lumastudio/beatframe/internal/audio"
	"github.com/lumastudio/beatframe/internal/vision"
)

// Parameter records: one per effect, derived once per render job and
// immutable for its duration. All intensity-to-tunable maps in this file are
// load-bearing; changing them changes the rendered output.

type GlowParams struct {
	Enabled   bool
	Intensity float64
	Color     vision.RGB
	Radius    float64
	Triggers  []Trigger
}

type ScaleParams struct {
	Enabled   bool
	Intensity float64
	BaseScale float64
	MaxScale  float64
	Triggers  []Trigger
}

type OutlineParams struct {
	Enabled    bool
	Intensity  float64
	Color      vision.RGB
	Width      float64
	GlowRadius float64
	Triggers   []Trigger
}

type EchoParams struct {
	Enabled      bool
	Intensity    float64
	TrailCount   int
	TrailSpacing float64
	OpacityDecay float64
}

type BurstParams struct {
	Enabled       bool
	Intensity     float64
	ParticleCount int
	Colors        []vision.RGB
	SizeMin       float64
	SizeMax       float64
	Speed         float64
	Lifetime      float64
	Triggers      []Trigger
	OriginX       float64
	OriginY       float64
}

type OrbitParams struct {
	Enabled     bool
	Intensity   float64
	TrailCount  int
	Colors      []vision.RGB
	Width       float64
	OrbitRadius float64
	Speed       float64 // revolutions per second
	CenterX     float64
	CenterY     float64
}

type FlareParams struct {
	Enabled   bool
	Intensity float64
	Points    []vision.GlowPoint
	Colors    []vision.RGB
	Size      float64
	Triggers  []Trigger
}

type GlitchParams struct {
	Enabled             bool
	Intensity           float64
	ChromaticAberration float64
	RGBSplit            float64
	ScanLines           bool
	ScanLineOpacity     float64
	SliceDisplacement   bool
	Triggers            []GlitchTrigger
}

type RippleParams struct {
	Enabled    bool
	Intensity  float64
	CenterX    float64
	CenterY    float64
	Wavelength float64
	Amplitude  float64
	Speed      float64 // pixels per second
	Triggers   []Trigger
}

type GrainParams struct {
	Enabled        bool
	Intensity      float64
	GrainSize      float64
	ColorVariation float64
}

type StrobeParams struct {
	Enabled       bool
	Intensity     float64
	FlashDuration float64
	Color         vision.RGB
	Triggers      []Trigger
}

type VignetteParams struct {
	Enabled       bool
	Intensity     float64
	BaseStrength  float64
	PulseStrength float64
	Triggers      []Trigger
}

type DimParams struct {
	Enabled    bool
	Intensity  float64
	DimAmount  float64
	BlurAmount float64
}

// Parameters is the full effect configuration for one render job.
type Parameters struct {
	Duration float64
	FPS      int
	Bounds   vision.SubjectBounds

	Glow     GlowParams
	Scale    ScaleParams
	Outline  OutlineParams
	Echo     EchoParams
	Burst    BurstParams
	Orbit    OrbitParams
	Flares   FlareParams
	Glitch   GlitchParams
	Ripple   RippleParams
	Grain    GrainParams
	Strobe   StrobeParams
	Vignette VignetteParams
	Dim      DimParams
}

// BuildParameters derives all thirteen effect records from the audio
// features, the user toggles, and the image context. Deterministic and
// side-effect free; nil context falls back to centered bounds and the
// neutral palette. Absent or empty feature lists degrade to empty trigger
// lists, not errors.
func BuildParameters(f *audio.Features, togs Toggles, ctx *vision.Context) *Parameters {
	c := vision.DefaultContext()
	if ctx != nil {
		c = *ctx
	}
	bounds := c.Bounds
	palette := c.Palette(5)
	primary := palette[0]

	var beats, beatStr, onsets, onsetStr []float64
	duration := 0.0
	if f != nil {
		beats, beatStr = f.BeatTimes, f.BeatStrengths
		onsets, onsetStr = f.OnsetTimes, f.OnsetStrengths
		duration = f.Duration
	}

	p := &Parameters{
		Duration: duration,
		FPS:      30,
		Bounds:   bounds,
	}

	// Element glow: threshold scales inversely with intensity so that at
	// full intensity every beat triggers.
	p.Glow = GlowParams{
		Enabled:   togs.ElementGlow.Enabled,
		Intensity: togs.ElementGlow.Intensity,
		Color:     primary,
		Radius:    30 + togs.ElementGlow.Intensity*70,
		Triggers:  extractTriggers(beats, beatStr, 0.3*(1-togs.ElementGlow.Intensity), togs.ElementGlow),
	}

	// Element scale: every beat pulses.
	p.Scale = ScaleParams{
		Enabled:   togs.ElementScale.Enabled,
		Intensity: togs.ElementScale.Intensity,
		BaseScale: 1.0,
		MaxScale:  1.0 + togs.ElementScale.Intensity*0.15,
		Triggers:  extractTriggers(beats, beatStr, 0, togs.ElementScale),
	}

	outlineColor := vision.RGB{R: 0, G: 255, B: 255}
	if len(palette) > 1 {
		outlineColor = palette[1]
	}
	p.Outline = OutlineParams{
		Enabled:    togs.NeonOutline.Enabled,
		Intensity:  togs.NeonOutline.Intensity,
		Color:      outlineColor,
		Width:      2 + togs.NeonOutline.Intensity*4,
		GlowRadius: 5 + togs.NeonOutline.Intensity*15,
		Triggers:   extractTriggers(beats, beatStr, 0.4, togs.NeonOutline),
	}

	p.Echo = EchoParams{
		Enabled:      togs.EchoTrail.Enabled,
		Intensity:    togs.EchoTrail.Intensity,
		TrailCount:   3 + int(togs.EchoTrail.Intensity*5),
		TrailSpacing: 0.03 + (1-togs.EchoTrail.Intensity)*0.05,
		OpacityDecay: 0.6 + (1-togs.EchoTrail.Intensity)*0.2,
	}

	p.Burst = BurstParams{
		Enabled:       togs.ParticleBurst.Enabled,
		Intensity:     togs.ParticleBurst.Intensity,
		ParticleCount: int(30 + togs.ParticleBurst.Intensity*70),
		Colors:        capColors(palette, 3),
		SizeMin:       2 + togs.ParticleBurst.Intensity*2,
		SizeMax:       8 + togs.ParticleBurst.Intensity*8,
		Speed:         150 + togs.ParticleBurst.Intensity*150,
		Lifetime:      0.8 + togs.ParticleBurst.Intensity*0.6,
		Triggers:      extractTriggers(beats, beatStr, 0.5, togs.ParticleBurst),
		OriginX:       bounds.CenterX(),
		OriginY:       bounds.CenterY(),
	}

	p.Orbit = OrbitParams{
		Enabled:     togs.EnergyTrails.Enabled,
		Intensity:   togs.EnergyTrails.Intensity,
		TrailCount:  4 + int(togs.EnergyTrails.Intensity*8),
		Colors:      capColors(palette, 2),
		Width:       1 + togs.EnergyTrails.Intensity*3,
		OrbitRadius: 50 + togs.EnergyTrails.Intensity*100,
		Speed:       0.5 + togs.EnergyTrails.Intensity*1.0,
		CenterX:     bounds.CenterX(),
		CenterY:     bounds.CenterY(),
	}

	flarePoints := c.GlowPoints
	if len(flarePoints) == 0 {
		flarePoints = []vision.GlowPoint{{X: bounds.CenterX(), Y: bounds.CenterY(), Intensity: 1}}
	}
	p.Flares = FlareParams{
		Enabled:   togs.LightFlares.Enabled,
		Intensity: togs.LightFlares.Intensity,
		Points:    flarePoints,
		Colors:    append([]vision.RGB{{R: 255, G: 255, B: 200}}, capColors(palette, 1)...),
		Size:      50 + togs.LightFlares.Intensity*100,
		Triggers:  extractTriggers(beats, beatStr, 0.6, togs.LightFlares),
	}

	p.Glitch = GlitchParams{
		Enabled:             togs.Glitch.Enabled,
		Intensity:           togs.Glitch.Intensity,
		ChromaticAberration: 3 + togs.Glitch.Intensity*10,
		RGBSplit:            2 + togs.Glitch.Intensity*6,
		ScanLines:           togs.Glitch.Intensity > 0.3,
		ScanLineOpacity:     0.05 + togs.Glitch.Intensity*0.1,
		SliceDisplacement:   togs.Glitch.Intensity > 0.4,
		Triggers:            extractGlitchTriggers(onsets, onsetStr, togs.Glitch),
	}

	p.Ripple = RippleParams{
		Enabled:    togs.RippleWave.Enabled,
		Intensity:  togs.RippleWave.Intensity,
		CenterX:    bounds.CenterX(),
		CenterY:    bounds.CenterY(),
		Wavelength: 30 + (1-togs.RippleWave.Intensity)*40,
		Amplitude:  5 + togs.RippleWave.Intensity*15,
		Speed:      150 + togs.RippleWave.Intensity*150,
		Triggers:   extractTriggers(beats, beatStr, 0.5, togs.RippleWave),
	}

	p.Grain = GrainParams{
		Enabled:        togs.FilmGrain.Enabled,
		Intensity:      togs.FilmGrain.Intensity,
		GrainSize:      1 + togs.FilmGrain.Intensity*2,
		ColorVariation: 0.05 + togs.FilmGrain.Intensity*0.15,
	}

	// Strobe fires only on the strongest beats.
	p.Strobe = StrobeParams{
		Enabled:       togs.StrobeFlash.Enabled,
		Intensity:     togs.StrobeFlash.Intensity,
		FlashDuration: 0.03 + togs.StrobeFlash.Intensity*0.05,
		Color:         vision.RGB{R: 255, G: 255, B: 255},
		Triggers:      extractTriggers(beats, beatStr, 0.8, togs.StrobeFlash),
	}

	p.Vignette = VignetteParams{
		Enabled:       togs.VignettePulse.Enabled,
		Intensity:     togs.VignettePulse.Intensity,
		BaseStrength:  0.2 + togs.VignettePulse.Intensity*0.2,
		PulseStrength: 0.1 + togs.VignettePulse.Intensity*0.2,
		Triggers:      extractTriggers(beats, beatStr, 0, togs.VignettePulse),
	}

	p.Dim = DimParams{
		Enabled:    togs.BackgroundDim.Enabled,
		Intensity:  togs.BackgroundDim.Intensity,
		DimAmount:  0.2 + togs.BackgroundDim.Intensity*0.4,
		BlurAmount: 1 + togs.BackgroundDim.Intensity*4,
	}

	return p
}

func capColors(palette []vision.RGB, n int) []vision.RGB {
	if n > len(palette) {
		n = len(palette)
	}
	out := make([]vision.RGB, n)
	copy(out, palette[:n])
	return out
}
