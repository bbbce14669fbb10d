package effects

import (
	"math"
	"testing"
)

func scaleParams(beat, strength, intensity float64) *Parameters {
	togs := Toggles{ElementScale: Toggle{Enabled: true, Intensity: intensity}}
	p := BuildParameters(nil, togs, nil)
	p.Scale.Triggers = []Trigger{{Time: beat, Strength: strength}}
	return p
}

func TestScalePulseRisesAndSettles(t *testing.T) {
	p := scaleParams(1.0, 1.0, 1.0) // max scale 1.15, attack 0.05, window 0.2

	// before the beat: exactly base scale
	if v := p.At(0.99); v.Scale.Scale != 1.0 {
		t.Fatalf("expected 1.0 before the beat, got %v", v.Scale.Scale)
	}
	// mid-attack: strictly between base and max
	v := p.At(1.02)
	if v.Scale.Scale <= 1.0 || v.Scale.Scale >= 1.15 {
		t.Fatalf("expected scale in (1.0,1.15) mid-attack, got %v", v.Scale.Scale)
	}
	// peak at end of attack
	if v := p.At(1.05); math.Abs(v.Scale.Scale-1.15) > 1e-9 {
		t.Fatalf("expected peak 1.15 at attack end, got %v", v.Scale.Scale)
	}
	// decay is quadratic ease-out: early decay stays near the peak
	early := p.At(1.06).Scale.Scale
	late := p.At(1.20).Scale.Scale
	if early <= late {
		t.Fatalf("decay must be monotonic: early %v, late %v", early, late)
	}
	if early < 1.14 {
		t.Fatalf("ease-out should hold near the peak just after attack, got %v", early)
	}
	// fully settled after the window
	if v := p.At(1.3); v.Scale.Scale != 1.0 {
		t.Fatalf("expected exactly 1.0 after the window, got %v", v.Scale.Scale)
	}
}

func TestScaleOverlappingTriggersTakeMax(t *testing.T) {
	p := scaleParams(1.0, 1.0, 1.0)
	p.Scale.Triggers = []Trigger{
		{Time: 1.0, Strength: 1.0},
		{Time: 1.02, Strength: 1.0},
	}
	// both windows cover t=1.05; combining must never exceed the single-
	// trigger maximum
	if v := p.At(1.05); v.Scale.Scale > 1.15+1e-9 {
		t.Fatalf("overlapping pulses must max-combine, not sum: got %v", v.Scale.Scale)
	}
}

func TestGlowBaselineAndPulse(t *testing.T) {
	togs := Toggles{ElementGlow: Toggle{Enabled: true, Intensity: 1}}
	p := BuildParameters(nil, togs, nil)
	p.Glow.Triggers = []Trigger{{Time: 2.0, Strength: 1.0}}

	// resting glow between beats
	if v := p.At(0.5); math.Abs(v.Glow.Intensity-0.3) > 1e-9 {
		t.Fatalf("expected resting glow 0.3, got %v", v.Glow.Intensity)
	}
	// full pulse at attack end
	if v := p.At(2.05); math.Abs(v.Glow.Intensity-1.0) > 1e-9 {
		t.Fatalf("expected peak glow 1.0, got %v", v.Glow.Intensity)
	}
	// back to baseline after the window
	if v := p.At(2.5); math.Abs(v.Glow.Intensity-0.3) > 1e-9 {
		t.Fatalf("expected baseline after window, got %v", v.Glow.Intensity)
	}
}

func TestStrobeHalfOpenWindow(t *testing.T) {
	togs := Toggles{StrobeFlash: Toggle{Enabled: true, Intensity: 1}}
	p := BuildParameters(nil, togs, nil)
	p.Strobe.Triggers = []Trigger{{Time: 2.0, Strength: 1.0}}
	// flash duration 0.03 + 1.0*0.05 = 0.08

	if !p.At(2.0).Strobe.Active {
		t.Fatal("strobe must be active at the trigger instant")
	}
	if !p.At(2.05).Strobe.Active {
		t.Fatal("strobe must be active inside the flash window")
	}
	if p.At(1.999).Strobe.Active {
		t.Fatal("strobe must be inactive before the trigger")
	}
	if p.At(2.09).Strobe.Active {
		t.Fatal("strobe must be inactive after the flash window")
	}
}

func TestGlitchFirstMatchWins(t *testing.T) {
	togs := Toggles{Glitch: Toggle{Enabled: true, Intensity: 1}}
	p := BuildParameters(nil, togs, nil)
	p.Glitch.Triggers = []GlitchTrigger{
		{Time: 1.0, Duration: 0.5, Strength: 0.8},
		{Time: 1.2, Duration: 0.5, Strength: 1.0},
	}
	v := p.At(1.3) // both windows cover 1.3
	if !v.Glitch.Active {
		t.Fatal("expected active glitch")
	}
	if v.Glitch.Intensity != 0.8 {
		t.Fatalf("earliest covering trigger must win, got strength %v", v.Glitch.Intensity)
	}
}

func TestRippleWaveExpansionAndExpiry(t *testing.T) {
	togs := Toggles{RippleWave: Toggle{Enabled: true, Intensity: 1}}
	p := BuildParameters(nil, togs, nil)
	p.Ripple.Triggers = []Trigger{{Time: 0, Strength: 1.0}}
	// speed 300 px/s at full intensity

	v := p.At(0.5)
	if len(v.Ripple.Waves) != 1 {
		t.Fatalf("expected 1 live wave, got %d", len(v.Ripple.Waves))
	}
	if math.Abs(v.Ripple.Waves[0].Radius-150) > 1e-9 {
		t.Fatalf("expected radius 150 at t=0.5, got %v", v.Ripple.Waves[0].Radius)
	}
	// amplitude fades linearly over the 2s life
	if math.Abs(v.Ripple.Waves[0].Amplitude-15) > 1e-9 {
		t.Fatalf("expected amplitude 20*0.75=15, got %v", v.Ripple.Waves[0].Amplitude)
	}
	if got := p.At(2.0).Ripple.Waves; len(got) != 0 {
		t.Fatalf("wave must expire at its 2s life, got %d live", len(got))
	}
}

func TestBurstActiveWindow(t *testing.T) {
	togs := Toggles{ParticleBurst: Toggle{Enabled: true, Intensity: 1}}
	p := BuildParameters(nil, togs, nil)
	p.Burst.Triggers = []Trigger{{Time: 1.0, Strength: 0.9}, {Time: 1.2, Strength: 1.0}}
	// lifetime 1.4 at full intensity

	v := p.At(1.3)
	if len(v.Burst.Active) != 2 {
		t.Fatalf("expected both triggers active at t=1.3, got %d", len(v.Burst.Active))
	}
	if v.Burst.Active[0].Index != 0 || v.Burst.Active[1].Index != 1 {
		t.Fatal("active events must carry stable trigger indices")
	}
	if got := p.At(3.0).Burst.Active; len(got) != 0 {
		t.Fatalf("expected no active bursts long after triggers, got %d", len(got))
	}
}

func TestVignetteBaseAndPulse(t *testing.T) {
	togs := Toggles{VignettePulse: Toggle{Enabled: true, Intensity: 1}}
	p := BuildParameters(nil, togs, nil)
	p.Vignette.Triggers = []Trigger{{Time: 1.0, Strength: 1.0}}
	// base 0.4, pulse headroom 0.3 at full intensity

	if v := p.At(0.5); math.Abs(v.Vignette.Strength-0.4) > 1e-9 {
		t.Fatalf("expected base strength 0.4, got %v", v.Vignette.Strength)
	}
	if v := p.At(1.05); math.Abs(v.Vignette.Strength-0.7) > 1e-9 {
		t.Fatalf("expected peak 0.7, got %v", v.Vignette.Strength)
	}
}

func TestDisabledEffectsStayZero(t *testing.T) {
	p := BuildParameters(testFeatures(), AllOff(), nil)
	v := p.At(1.0)
	if v.Glow.Intensity != 0 || v.Outline.Intensity != 0 || v.Flares.Intensity != 0 {
		t.Fatal("disabled effects must evaluate to zero intensity")
	}
	if v.Scale.Scale != 1.0 {
		t.Fatalf("disabled scale must stay at 1.0, got %v", v.Scale.Scale)
	}
	if v.Echo.Enabled || v.Grain.Enabled || v.Dim.Enabled || v.Strobe.Active || v.Glitch.Active {
		t.Fatal("disabled binary effects must stay off")
	}
}
