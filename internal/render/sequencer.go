package render

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/lumastudio/beatframe/internal/compose"
	"github.com/lumastudio/beatframe/internal/effects"
	"github.com/lumastudio/beatframe/internal/raster"
)

// ProgressFunc is invoked synchronously after each frame is written. It must
// return quickly; slow callbacks stall the render loop.
type ProgressFunc func(frame, total int)

// Sequencer renders the frame sequence for one job. One compositor instance
// lives for the whole sequence so particle and echo state carries across
// frames.
type Sequencer struct {
	settings Settings
	params   *effects.Parameters
	sprite   *image.RGBA
}

// NewSequencer binds settings and a parameter set. sprite may be nil; a
// non-nil sprite replaces the default soft-disc particle.
func NewSequencer(settings Settings, params *effects.Parameters, sprite *image.RGBA) (*Sequencer, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if params == nil {
		return nil, fmt.Errorf("render: nil parameters")
	}
	return &Sequencer{settings: settings, params: params, sprite: sprite}, nil
}

// FrameCount is the number of frames the sequence will produce.
func (s *Sequencer) FrameCount() int {
	n := int(s.params.Duration * float64(s.settings.FPS))
	if n < 1 {
		n = 1
	}
	return n
}

// Run renders every frame to dir as frame_%05d.png. The source image is
// aspect-filled and center-cropped once up front; each frame then composites
// the timeline at t = i/fps. Cancelling ctx stops between frames.
func (s *Sequencer) Run(ctx context.Context, src image.Image, dir string, progress ProgressFunc) error {
	w, h := s.settings.Dims()
	base := raster.FitToFrame(src, w, h, s.settings.Scaler())

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("render: frame dir: %w", err)
	}

	comp := compose.New(w, h, s.params, s.settings.Seed, s.sprite, s.settings.HighQuality())
	total := s.FrameCount()
	dt := 1.0 / float64(s.settings.FPS)

	log.Info().
		Int("frames", total).
		Int("fps", s.settings.FPS).
		Int("width", w).
		Int("height", h).
		Bool("preview", s.settings.Preview).
		Msg("render start")

	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("render: cancelled at frame %d/%d: %w", i, total, ctx.Err())
		default:
		}

		t := float64(i) * dt
		frame := comp.Frame(base, t, dt)
		if err := writePNG(&enc, filepath.Join(dir, fmt.Sprintf("frame_%05d.png", i)), frame); err != nil {
			return err
		}
		if progress != nil {
			progress(i+1, total)
		}
	}

	log.Info().Int("frames", total).Str("dir", dir).Msg("render done")
	return nil
}

func writePNG(enc *png.Encoder, path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: frame file: %w", err)
	}
	if err := enc.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("render: encode %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("render: close %s: %w", filepath.Base(path), err)
	}
	return nil
}
