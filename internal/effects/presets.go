package effects

// Preset is a curated toggle combination exposed by the server UI.
type Preset struct {
	Key         string             `json:"key"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	Effects     map[string]float64 `json:"effects"` // effect key -> intensity
}

// Presets is the built-in catalog. Keys match the Toggles JSON field names.
var Presets = []Preset{
	{
		Key: "clean_minimal", Name: "Clean & Minimal", Category: "mood",
		Description: "Subtle glow with gentle vignette",
		Effects:     map[string]float64{"element_glow": 0.4, "vignette_pulse": 0.3, "background_dim": 0.2},
	},
	{
		Key: "lofi_chill", Name: "Lo-Fi Chill", Category: "mood",
		Description: "Vintage vibes with film grain",
		Effects:     map[string]float64{"film_grain": 0.5, "vignette_pulse": 0.4, "background_dim": 0.3, "element_glow": 0.3},
	},
	{
		Key: "high_energy_edm", Name: "High Energy EDM", Category: "genre",
		Description: "Explosive particles and strobes",
		Effects:     map[string]float64{"particle_burst": 1.0, "strobe_flash": 0.7, "element_scale": 0.8, "glitch": 0.5, "vignette_pulse": 0.6},
	},
	{
		Key: "synthwave", Name: "Synthwave Retro", Category: "genre",
		Description: "Neon outlines with retro grain",
		Effects:     map[string]float64{"neon_outline": 0.9, "film_grain": 0.3, "vignette_pulse": 0.5, "element_glow": 0.4, "background_dim": 0.4},
	},
	{
		Key: "cyberpunk", Name: "Cyberpunk", Category: "genre",
		Description: "Neon, glitch, and energy trails",
		Effects:     map[string]float64{"neon_outline": 0.8, "glitch": 0.6, "energy_trails": 0.7, "background_dim": 0.5, "vignette_pulse": 0.4},
	},
	{
		Key: "psychedelic", Name: "Psychedelic Trip", Category: "mood",
		Description: "Ripples, trails, and swirling energy",
		Effects:     map[string]float64{"ripple_wave": 0.9, "energy_trails": 0.8, "echo_trail": 0.7, "element_glow": 0.5, "glitch": 0.3},
	},
	{
		Key: "cinematic", Name: "Cinematic Epic", Category: "mood",
		Description: "Lens flares with dramatic vignette",
		Effects:     map[string]float64{"light_flares": 0.8, "vignette_pulse": 0.7, "background_dim": 0.5, "element_glow": 0.4, "element_scale": 0.3},
	},
	{
		Key: "epic_drop", Name: "Epic Drop", Category: "theme",
		Description: "Build to maximum impact",
		Effects:     map[string]float64{"strobe_flash": 0.8, "element_scale": 0.9, "particle_burst": 1.0, "ripple_wave": 0.7, "vignette_pulse": 0.6},
	},
}

// ApplyPreset returns a Toggles with only the preset's effects enabled at
// their curated intensities. Unknown keys are ignored.
func ApplyPreset(p Preset) Toggles {
	t := AllOff()
	for key, intensity := range p.Effects {
		tog := Toggle{Enabled: true, Intensity: intensity}
		switch key {
		case "element_glow":
			t.ElementGlow = tog
		case "element_scale":
			t.ElementScale = tog
		case "neon_outline":
			t.NeonOutline = tog
		case "echo_trail":
			t.EchoTrail = tog
		case "particle_burst":
			t.ParticleBurst = tog
		case "energy_trails":
			t.EnergyTrails = tog
		case "light_flares":
			t.LightFlares = tog
		case "glitch":
			t.Glitch = tog
		case "ripple_wave":
			t.RippleWave = tog
		case "film_grain":
			t.FilmGrain = tog
		case "strobe_flash":
			t.StrobeFlash = tog
		case "vignette_pulse":
			t.VignettePulse = tog
		case "background_dim":
			t.BackgroundDim = tog
		}
	}
	return t
}

// FindPreset looks a preset up by key.
func FindPreset(key string) (Preset, bool) {
	for _, p := range Presets {
		if p.Key == key {
			return p, true
		}
	}
	return Preset{}, false
}
