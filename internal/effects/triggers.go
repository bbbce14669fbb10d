package effects

// Trigger is a discrete audio event scaled by toggle intensity. Triggers are
// ordered by time and may share timestamps.
type Trigger struct {
	Time     float64 `json:"time"`
	Strength float64 `json:"strength"`
}

// GlitchTrigger additionally carries how long the glitch stays on.
type GlitchTrigger struct {
	Time     float64 `json:"time"`
	Duration float64 `json:"duration"`
	Strength float64 `json:"strength"`
}

// extractTriggers filters (time, strength) events against an inclusive
// threshold and scales the surviving strengths by the toggle intensity.
// A disabled toggle or mismatched event/strength lists yield an empty list;
// malformed input is degraded, never an error.
func extractTriggers(times, strengths []float64, threshold float64, tog Toggle) []Trigger {
	if !tog.Enabled {
		return nil
	}
	n := len(times)
	if len(strengths) < n {
		n = len(strengths)
	}
	var out []Trigger
	for i := 0; i < n; i++ {
		if strengths[i] >= threshold {
			out = append(out, Trigger{Time: times[i], Strength: strengths[i] * tog.Intensity})
		}
	}
	return out
}

// extractGlitchTriggers keeps strong transients (strength > 0.7), then
// down-samples by a stride derived from intensity so that higher intensity
// yields denser glitches. Each trigger carries a strength-scaled duration.
func extractGlitchTriggers(times, strengths []float64, tog Toggle) []GlitchTrigger {
	if !tog.Enabled {
		return nil
	}
	n := len(times)
	if len(strengths) < n {
		n = len(strengths)
	}
	stride := int(4 - tog.Intensity*3)
	if stride < 1 {
		stride = 1
	}
	var out []GlitchTrigger
	kept := 0
	for i := 0; i < n; i++ {
		if strengths[i] <= 0.7 {
			continue
		}
		if kept%stride == 0 {
			out = append(out, GlitchTrigger{
				Time:     times[i],
				Duration: 0.05 + strengths[i]*0.1,
				Strength: strengths[i] * tog.Intensity,
			})
		}
		kept++
	}
	return out
}
