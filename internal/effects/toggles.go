// Package effects turns audio-derived events and user toggles into per-effect
// parameter records, and evaluates those records into instantaneous envelope
// values for the compositor.
package effects

// Toggle is one user-controlled effect switch with an intensity dial.
type Toggle struct {
	Enabled   bool    `json:"enabled"`
	Intensity float64 `json:"intensity"`
}

// Toggles holds the thirteen effect switches. The field order mirrors the
// compositing order groups: element, particle, style, background.
type Toggles struct {
	ElementGlow  Toggle `json:"element_glow"`
	ElementScale Toggle `json:"element_scale"`
	NeonOutline  Toggle `json:"neon_outline"`
	EchoTrail    Toggle `json:"echo_trail"`

	ParticleBurst Toggle `json:"particle_burst"`
	EnergyTrails  Toggle `json:"energy_trails"`
	LightFlares   Toggle `json:"light_flares"`

	Glitch        Toggle `json:"glitch"`
	RippleWave    Toggle `json:"ripple_wave"`
	FilmGrain     Toggle `json:"film_grain"`
	StrobeFlash   Toggle `json:"strobe_flash"`
	VignettePulse Toggle `json:"vignette_pulse"`

	BackgroundDim Toggle `json:"background_dim"`
}

// DefaultToggles is the out-of-the-box configuration: a gentle glow, scale
// pulse, particle bursts, vignette and background dim; everything else off.
func DefaultToggles() Toggles {
	return Toggles{
		ElementGlow:   Toggle{true, 0.5},
		ElementScale:  Toggle{true, 0.3},
		NeonOutline:   Toggle{false, 0.5},
		EchoTrail:     Toggle{false, 0.4},
		ParticleBurst: Toggle{true, 0.5},
		EnergyTrails:  Toggle{false, 0.4},
		LightFlares:   Toggle{false, 0.3},
		Glitch:        Toggle{false, 0.3},
		RippleWave:    Toggle{false, 0.4},
		FilmGrain:     Toggle{false, 0.2},
		StrobeFlash:   Toggle{false, 0.3},
		VignettePulse: Toggle{true, 0.4},
		BackgroundDim: Toggle{true, 0.3},
	}
}

// AllOff returns every toggle disabled at zero intensity.
func AllOff() Toggles {
	return Toggles{}
}
