// Package audio defines the feature contract produced by the external audio
// analyzer. Beat and onset detection are not done here; features arrive as
// JSON across a process boundary and are consumed read-only by the effect
// parameter builder.
package audio

import (
	"encoding/json"
	"fmt"
	"os"
)

// EnergyPoint is one sample of a time-energy curve.
type EnergyPoint struct {
	Time   float64 `json:"t"`
	Energy float64 `json:"e"`
}

// Features is the full analysis result for one audio region.
type Features struct {
	Duration   float64 `json:"duration"`
	SampleRate int     `json:"sample_rate"`
	Tempo      float64 `json:"tempo"`

	BeatTimes      []float64 `json:"beat_times"`
	BeatStrengths  []float64 `json:"beat_strengths"`
	OnsetTimes     []float64 `json:"onset_times"`
	OnsetStrengths []float64 `json:"onset_strengths"`

	EnergyEnvelope []EnergyPoint `json:"energy_envelope"`
	BassEnergy     []EnergyPoint `json:"bass_energy"`
	MidEnergy      []EnergyPoint `json:"mid_energy"`
	HighEnergy     []EnergyPoint `json:"high_energy"`

	// Derived scalar metrics. Producers may omit them; ComputeMetrics
	// fills them from the raw curves.
	OnsetDensity         float64 `json:"onset_density"`
	AverageBass          float64 `json:"average_bass"`
	AverageMid           float64 `json:"average_mid"`
	AverageHigh          float64 `json:"average_high"`
	DynamicRange         float64 `json:"dynamic_range"`
	BeatStrengthVariance float64 `json:"beat_strength_variance"`
	AverageEnergy        float64 `json:"average_energy"`
}

// Load reads a features JSON file written by the analyzer.
func Load(path string) (*Features, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f Features
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode audio features: %w", err)
	}
	f.ComputeMetrics()
	return &f, nil
}

// ComputeMetrics derives the scalar metrics from the raw feature curves.
// Metrics already present are overwritten; the curves are the source of
// truth. Empty curves yield zeros, never errors.
func (f *Features) ComputeMetrics() {
	if f.Duration > 0 {
		f.OnsetDensity = float64(len(f.OnsetTimes)) / f.Duration
	} else {
		f.OnsetDensity = 0
	}
	f.AverageBass = meanEnergy(f.BassEnergy)
	f.AverageMid = meanEnergy(f.MidEnergy)
	f.AverageHigh = meanEnergy(f.HighEnergy)
	f.AverageEnergy = meanEnergy(f.EnergyEnvelope)
	f.DynamicRange = energyRange(f.EnergyEnvelope)
	f.BeatStrengthVariance = variance(f.BeatStrengths)
}

func meanEnergy(pts []EnergyPoint) float64 {
	if len(pts) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range pts {
		sum += p.Energy
	}
	return sum / float64(len(pts))
}

func energyRange(pts []EnergyPoint) float64 {
	if len(pts) == 0 {
		return 0
	}
	lo, hi := pts[0].Energy, pts[0].Energy
	for _, p := range pts[1:] {
		if p.Energy < lo {
			lo = p.Energy
		}
		if p.Energy > hi {
			hi = p.Energy
		}
	}
	return hi - lo
}

func variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	v := 0.0
	for _, x := range xs {
		d := x - mean
		v += d * d
	}
	return v / float64(len(xs))
}
