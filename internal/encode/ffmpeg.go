// Package encode hands a rendered frame directory to ffmpeg and muxes the
// audio clip in. Encoding is delegated entirely to the external binary; this
// package only builds arguments and surfaces failures.
package encode

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/lumastudio/beatframe/internal/render"
)

// Job describes one encode invocation.
type Job struct {
	FrameDir   string  // directory containing frame_%05d.png
	AudioPath  string  // source audio file; empty renders silent video
	AudioStart float64 // seconds into the audio file
	Duration   float64 // clip length in seconds
	FPS        int
	Quality    render.Quality
	Preview    bool
	OutPath    string
	FFmpegPath string // ffmpeg binary override; empty resolves from PATH
}

func binaryPath(j Job) string {
	if j.FFmpegPath != "" {
		return j.FFmpegPath
	}
	return "ffmpeg"
}

// BuildArgs assembles the ffmpeg argument list for a job. Split out from
// Encode so the exact command line is testable without an ffmpeg binary.
func BuildArgs(j Job) []string {
	args := []string{
		"-y",
		"-framerate", strconv.Itoa(j.FPS),
		"-i", filepath.Join(j.FrameDir, "frame_%05d.png"),
	}
	if j.AudioPath != "" {
		args = append(args,
			"-ss", formatSeconds(j.AudioStart),
			"-t", formatSeconds(j.Duration),
			"-i", j.AudioPath,
		)
	}
	crf := j.Quality.CRF()
	preset := "slow"
	if j.Preview {
		crf = render.QualityLow.CRF()
		preset = "ultrafast"
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", preset,
		"-crf", strconv.Itoa(crf),
		"-pix_fmt", "yuv420p",
	)
	if j.AudioPath != "" {
		args = append(args,
			"-c:a", "aac",
			"-b:a", "192k",
			"-shortest",
		)
	}
	return append(args, j.OutPath)
}

// Encode runs ffmpeg for the job. A non-zero exit is terminal; the error
// carries ffmpeg's stderr verbatim so codec problems are diagnosable from the
// failure alone. Cancelling ctx kills the process.
func Encode(ctx context.Context, j Job) error {
	args := BuildArgs(j)
	log.Info().
		Str("out", j.OutPath).
		Bool("preview", j.Preview).
		Str("quality", string(j.Quality)).
		Msg("encode start")

	cmd := exec.CommandContext(ctx, binaryPath(j), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("encode: cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("encode: ffmpeg: %w: %s", err, stderr.String())
	}

	log.Info().Str("out", j.OutPath).Msg("encode done")
	return nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
