package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestComputeMetrics(t *testing.T) {
	f := Features{
		Duration:      10,
		OnsetTimes:    []float64{1, 2, 3, 4, 5},
		BeatStrengths: []float64{0.5, 0.5, 1.0, 1.0},
		EnergyEnvelope: []EnergyPoint{
			{Time: 0, Energy: 0.2}, {Time: 1, Energy: 0.8}, {Time: 2, Energy: 0.5},
		},
		BassEnergy: []EnergyPoint{{Time: 0, Energy: 0.4}, {Time: 1, Energy: 0.6}},
	}
	f.ComputeMetrics()

	if math.Abs(f.OnsetDensity-0.5) > 1e-9 {
		t.Fatalf("expected onset density 0.5/s, got %v", f.OnsetDensity)
	}
	if math.Abs(f.AverageBass-0.5) > 1e-9 {
		t.Fatalf("expected average bass 0.5, got %v", f.AverageBass)
	}
	if math.Abs(f.AverageEnergy-0.5) > 1e-9 {
		t.Fatalf("expected average energy 0.5, got %v", f.AverageEnergy)
	}
	if math.Abs(f.DynamicRange-0.6) > 1e-9 {
		t.Fatalf("expected dynamic range 0.6, got %v", f.DynamicRange)
	}
	if math.Abs(f.BeatStrengthVariance-0.0625) > 1e-9 {
		t.Fatalf("expected beat variance 0.0625, got %v", f.BeatStrengthVariance)
	}
}

func TestComputeMetricsEmpty(t *testing.T) {
	var f Features
	f.ComputeMetrics()
	if f.OnsetDensity != 0 || f.AverageBass != 0 || f.DynamicRange != 0 || f.BeatStrengthVariance != 0 {
		t.Fatal("empty features must yield zero metrics, not errors")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.json")
	body := `{
		"duration": 12.5,
		"tempo": 128,
		"beat_times": [0.5, 1.0],
		"beat_strengths": [0.8, 0.9],
		"onset_times": [0.6],
		"onset_strengths": [0.7],
		"energy_envelope": [{"t": 0, "e": 0.3}, {"t": 1, "e": 0.9}]
	}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.Duration != 12.5 || f.Tempo != 128 {
		t.Fatalf("scalar fields mismatch: %+v", f)
	}
	if len(f.BeatTimes) != 2 || f.BeatTimes[1] != 1.0 {
		t.Fatalf("beat times mismatch: %v", f.BeatTimes)
	}
	// metrics are derived on load
	if math.Abs(f.AverageEnergy-0.6) > 1e-9 {
		t.Fatalf("expected derived average energy 0.6, got %v", f.AverageEnergy)
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed JSON must error")
	}
}
