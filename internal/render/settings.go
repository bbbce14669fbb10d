// Package render drives the per-frame loop for one clip: it fits the source
// image to the output frame, walks the timeline through a Compositor, and
// writes numbered PNG frames for the encoder.
package render

import (
	"fmt"

	"golang.org/x/image/draw"
)

// AspectRatio selects the output frame geometry.
type AspectRatio string

const (
	AspectPortrait  AspectRatio = "9:16"
	AspectSquare    AspectRatio = "1:1"
	AspectLandscape AspectRatio = "16:9"
	AspectSocial    AspectRatio = "4:5"
)

// Dims returns the full-resolution output size. Unknown ratios fall back to
// portrait, the dominant short-video format.
func (a AspectRatio) Dims() (w, h int) {
	switch a {
	case AspectSquare:
		return 1080, 1080
	case AspectLandscape:
		return 1920, 1080
	case AspectSocial:
		return 1080, 1350
	default:
		return 1080, 1920
	}
}

// Quality is the encode tier. It also selects the resampling filter for the
// scale layer via Settings.HighQuality.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// CRF maps the tier to an x264 constant rate factor.
func (q Quality) CRF() int {
	switch q {
	case QualityLow:
		return 28
	case QualityHigh:
		return 18
	default:
		return 23
	}
}

// Settings collects the per-job render knobs.
type Settings struct {
	Aspect  AspectRatio `json:"aspect_ratio" yaml:"aspect_ratio"`
	FPS     int         `json:"fps" yaml:"fps"`
	Quality Quality     `json:"quality" yaml:"quality"`
	Preview bool        `json:"preview" yaml:"preview"`
	Seed    int64       `json:"seed" yaml:"seed"`
}

// DefaultSettings matches the shipped preview path: portrait, 30fps, medium.
func DefaultSettings() Settings {
	return Settings{
		Aspect:  AspectPortrait,
		FPS:     30,
		Quality: QualityMedium,
	}
}

// Dims returns the working frame size, halved in preview mode.
func (s Settings) Dims() (w, h int) {
	w, h = s.Aspect.Dims()
	if s.Preview {
		w /= 2
		h /= 2
	}
	return
}

// HighQuality reports whether the job gets the slower Catmull-Rom resampler.
// Preview always takes the fast bilinear path regardless of tier.
func (s Settings) HighQuality() bool {
	return !s.Preview && s.Quality == QualityHigh
}

// Scaler is the resampler matching HighQuality.
func (s Settings) Scaler() draw.Scaler {
	if s.HighQuality() {
		return draw.CatmullRom
	}
	return draw.BiLinear
}

// Validate rejects settings the sequencer cannot run with.
func (s Settings) Validate() error {
	if s.FPS < 1 || s.FPS > 120 {
		return fmt.Errorf("render: fps %d out of range [1,120]", s.FPS)
	}
	switch s.Aspect {
	case AspectPortrait, AspectSquare, AspectLandscape, AspectSocial:
	default:
		return fmt.Errorf("render: unknown aspect ratio %q", s.Aspect)
	}
	switch s.Quality {
	case QualityLow, QualityMedium, QualityHigh:
	default:
		return fmt.Errorf("render: unknown quality %q", s.Quality)
	}
	return nil
}
