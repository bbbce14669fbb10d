// renderclip renders one clip offline: features JSON + image in, mp4 out.
// Useful for batch generation and for diffing renders across changes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lumastudio/beatframe/internal/audio"
	"github.com/lumastudio/beatframe/internal/effects"
	"github.com/lumastudio/beatframe/internal/encode"
	"github.com/lumastudio/beatframe/internal/render"
	"github.com/lumastudio/beatframe/internal/vision"
)

func main() {
	var (
		imagePath    = flag.String("image", "", "source image (png/jpeg)")
		featuresPath = flag.String("features", "", "audio features JSON")
		contextPath  = flag.String("context", "", "optional image context JSON")
		togglesPath  = flag.String("toggles", "", "optional toggles JSON")
		preset       = flag.String("preset", "", "named toggle preset (overrides -toggles)")
		audioPath    = flag.String("audio", "", "optional audio file to mux")
		clipStart    = flag.Float64("start", 0, "seconds into the audio")
		duration     = flag.Float64("duration", 0, "clip length; 0 uses the features duration")
		aspect       = flag.String("aspect", "9:16", "aspect ratio: 9:16 | 1:1 | 16:9 | 4:5")
		fps          = flag.Int("fps", 30, "frames per second")
		quality      = flag.String("quality", "medium", "encode quality: low | medium | high")
		preview      = flag.Bool("preview", false, "half resolution, fast encode")
		spritePath   = flag.String("sprite", "", "optional particle sprite PNG")
		ffmpegBin    = flag.String("ffmpeg", "", "ffmpeg binary; empty uses PATH")
		seed         = flag.Int64("seed", 0, "particle/noise seed")
		outPath      = flag.String("out", "out.mp4", "output video path")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if *imagePath == "" || *featuresPath == "" {
		log.Fatal().Msg("-image and -features are required")
	}

	features, err := audio.Load(*featuresPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load features")
	}
	features.ComputeMetrics()
	if *duration > 0 && *duration < features.Duration {
		features.Duration = *duration
	}

	var ctx *vision.Context
	if *contextPath != "" {
		c, err := loadJSON[vision.Context](*contextPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load context")
		}
		ctx = c
	}

	togs := effects.DefaultToggles()
	switch {
	case *preset != "":
		p, ok := effects.FindPreset(*preset)
		if !ok {
			log.Fatal().Str("preset", *preset).Msg("unknown preset")
		}
		togs = effects.ApplyPreset(p)
	case *togglesPath != "":
		t, err := loadJSON[effects.Toggles](*togglesPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load toggles")
		}
		togs = *t
	}

	src, err := loadImage(*imagePath)
	if err != nil {
		log.Fatal().Err(err).Msg("load image")
	}

	settings := render.Settings{
		Aspect:  render.AspectRatio(*aspect),
		FPS:     *fps,
		Quality: render.Quality(*quality),
		Preview: *preview,
		Seed:    *seed,
	}
	var sprite *image.RGBA
	if *spritePath != "" {
		if img, err := loadImage(*spritePath); err != nil {
			// a broken sprite should not sink the render
			log.Warn().Err(err).Str("path", *spritePath).Msg("sprite load failed; using soft disc")
		} else {
			sprite = image.NewRGBA(img.Bounds())
			draw.Draw(sprite, sprite.Bounds(), img, img.Bounds().Min, draw.Src)
		}
	}

	params := effects.BuildParameters(features, togs, ctx)
	seq, err := render.NewSequencer(settings, params, sprite)
	if err != nil {
		log.Fatal().Err(err).Msg("sequencer")
	}

	frameDir, err := os.MkdirTemp("", "beatframe-frames-")
	if err != nil {
		log.Fatal().Err(err).Msg("temp dir")
	}
	defer os.RemoveAll(frameDir)

	total := seq.FrameCount()
	err = seq.Run(context.Background(), src, frameDir, func(frame, _ int) {
		if frame%30 == 0 || frame == total {
			fmt.Fprintf(os.Stderr, "\rframe %d/%d", frame, total)
		}
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		log.Fatal().Err(err).Msg("render")
	}

	err = encode.Encode(context.Background(), encode.Job{
		FrameDir:   frameDir,
		AudioPath:  *audioPath,
		AudioStart: *clipStart,
		Duration:   features.Duration,
		FPS:        *fps,
		Quality:    settings.Quality,
		Preview:    *preview,
		OutPath:    *outPath,
		FFmpegPath: *ffmpegBin,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("encode")
	}
	log.Info().Str("out", filepath.Clean(*outPath)).Msg("clip written")
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func loadJSON[T any](path string) (*T, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
