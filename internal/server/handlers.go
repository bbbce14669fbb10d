package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lumastudio/beatframe/internal/audio"
	"github.com/lumastudio/beatframe/internal/config"
	"github.com/lumastudio/beatframe/internal/effects"
	"github.com/lumastudio/beatframe/internal/encode"
	"github.com/lumastudio/beatframe/internal/render"
	"github.com/lumastudio/beatframe/internal/vision"
)

var (
	imageExts  = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}
	audioExts  = map[string]bool{".mp3": true, ".wav": true, ".m4a": true, ".ogg": true, ".flac": true}
	spriteExts = map[string]bool{".png": true} // sprites need an alpha channel
)

// Server wires the session store, websocket hub, and render settings behind
// an HTTP mux.
type Server struct {
	cfg   *config.Config
	store *Store
	hub   *ProgressHub
	sem   chan struct{} // bounds concurrent render jobs
}

func New(cfg *config.Config) *Server {
	workers := cfg.Render.Workers
	if workers < 1 {
		workers = 1
	}
	return &Server{
		cfg:   cfg,
		store: NewStore(cfg.Server.DataDir),
		hub:   NewProgressHub(),
		sem:   make(chan struct{}, workers),
	}
}

// Store exposes the session registry for the reaper loop in main.
func (s *Server) Store() *Store { return s.store }

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/presets", s.handlePresets)
	mux.HandleFunc("POST /api/sessions", s.handleCreate)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDelete)
	mux.HandleFunc("POST /api/sessions/{id}/image", s.handleUploadImage)
	mux.HandleFunc("POST /api/sessions/{id}/audio", s.handleUploadAudio)
	mux.HandleFunc("POST /api/sessions/{id}/sprite", s.handleUploadSprite)
	mux.HandleFunc("POST /api/sessions/{id}/features", s.handleFeatures)
	mux.HandleFunc("POST /api/sessions/{id}/context", s.handleContext)
	mux.HandleFunc("POST /api/sessions/{id}/toggles", s.handleToggles)
	mux.HandleFunc("POST /api/sessions/{id}/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/sessions/{id}/export", s.handleExport)
	mux.HandleFunc("GET /api/sessions/{id}/status", s.handleStatus)
	mux.HandleFunc("GET /api/sessions/{id}/download", s.handleDownload)
	mux.HandleFunc("GET /api/sessions/{id}/progress", s.hub.HandleWS)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, effects.Presets)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Create()
	if err != nil {
		httpError(w, http.StatusInternalServerError, err)
		return
	}
	log.Info().Str("session", sess.ID).Msg("session created")
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.store.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	s.store.Delete(id)
	s.hub.CloseSession(id)
	log.Info().Str("session", id).Msg("session deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, "image", imageExts, func(sess *Session, path string) {
		sess.ImagePath = path
	})
}

func (s *Server) handleUploadAudio(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, "audio", audioExts, func(sess *Session, path string) {
		sess.AudioPath = path
	})
}

// handleUploadSprite stores a custom particle sprite for the session; bursts
// stamp it in place of the procedural soft disc.
func (s *Server) handleUploadSprite(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, "sprite", spriteExts, func(sess *Session, path string) {
		sess.SpritePath = path
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, field string, allowed map[string]bool, set func(*Session, string)) {
	id := r.PathValue("id")
	if _, ok := s.store.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	limit := int64(s.cfg.Server.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	file, hdr, err := r.FormFile(field)
	if err != nil {
		httpError(w, http.StatusBadRequest, fmt.Errorf("missing %s file: %w", field, err))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(hdr.Filename))
	if !allowed[ext] {
		httpError(w, http.StatusUnsupportedMediaType, fmt.Errorf("file type %q not allowed", ext))
		return
	}
	dst := filepath.Join(s.store.Dir(id), field+ext)
	out, err := os.Create(dst)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err)
		return
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		httpError(w, http.StatusInternalServerError, fmt.Errorf("store upload: %w", err))
		return
	}
	s.store.Update(id, func(sess *Session) { set(sess, dst) })
	log.Info().Str("session", id).Str("file", hdr.Filename).Str("kind", field).Msg("upload stored")
	writeJSON(w, http.StatusOK, map[string]string{"path": filepath.Base(dst)})
}

func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.store.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	var f audio.Features
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		httpError(w, http.StatusBadRequest, fmt.Errorf("decode features: %w", err))
		return
	}
	f.ComputeMetrics()
	s.store.Update(id, func(sess *Session) { sess.Features = &f })
	writeJSON(w, http.StatusOK, map[string]any{"duration": f.Duration, "tempo": f.Tempo})
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.store.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	var c vision.Context
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		httpError(w, http.StatusBadRequest, fmt.Errorf("decode context: %w", err))
		return
	}
	s.store.Update(id, func(sess *Session) { sess.Context = &c })
	w.WriteHeader(http.StatusNoContent)
}

// handleToggles accepts either a full toggle map or {"preset": "name"}.
func (s *Server) handleToggles(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.store.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	var body struct {
		Preset  string           `json:"preset"`
		Toggles *effects.Toggles `json:"toggles"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpError(w, http.StatusBadRequest, fmt.Errorf("decode toggles: %w", err))
		return
	}
	var togs effects.Toggles
	switch {
	case body.Preset != "":
		p, ok := effects.FindPreset(body.Preset)
		if !ok {
			httpError(w, http.StatusBadRequest, fmt.Errorf("unknown preset %q", body.Preset))
			return
		}
		togs = effects.ApplyPreset(p)
	case body.Toggles != nil:
		togs = *body.Toggles
	default:
		httpError(w, http.StatusBadRequest, fmt.Errorf("toggles or preset required"))
		return
	}
	s.store.Update(id, func(sess *Session) { sess.Toggles = togs })
	writeJSON(w, http.StatusOK, togs)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	s.startJob(w, r, true)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.startJob(w, r, false)
}

type jobRequest struct {
	Aspect    string  `json:"aspect_ratio"`
	Quality   string  `json:"quality"`
	FPS       int     `json:"fps"`
	ClipStart float64 `json:"clip_start"`
	Duration  float64 `json:"duration"`
	Seed      int64   `json:"seed"`
}

func (s *Server) startJob(w http.ResponseWriter, r *http.Request, preview bool) {
	id := r.PathValue("id")
	sess, ok := s.store.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if sess.Status == StatusRendering || sess.Status == StatusEncoding {
		httpError(w, http.StatusConflict, fmt.Errorf("job already running"))
		return
	}
	if sess.ImagePath == "" || sess.Features == nil {
		httpError(w, http.StatusPreconditionFailed, fmt.Errorf("image and features required before rendering"))
		return
	}

	var req jobRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // empty body keeps defaults
	}
	settings := render.Settings{
		Aspect:  render.AspectRatio(firstNonEmpty(req.Aspect, s.cfg.Render.Aspect)),
		FPS:     firstPositive(req.FPS, s.cfg.Render.FPS),
		Quality: render.Quality(firstNonEmpty(req.Quality, s.cfg.Render.Quality)),
		Preview: preview,
		Seed:    req.Seed,
	}
	if err := settings.Validate(); err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}

	duration := req.Duration
	if duration <= 0 {
		duration = sess.ClipDuration
	}
	s.store.Update(id, func(sess *Session) {
		sess.Status = StatusRendering
		sess.Progress = 0
		sess.Error = ""
		sess.ClipStart = req.ClipStart
		sess.ClipDuration = duration
	})

	go s.runJob(id, settings, req.ClipStart, duration)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": StatusRendering})
}

// runJob executes one render+encode on a worker slot. All progress flows
// through the store and the websocket hub; HTTP never blocks on rendering.
func (s *Server) runJob(id string, settings render.Settings, clipStart, duration float64) {
	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	fail := func(err error) {
		log.Error().Err(err).Str("session", id).Msg("job failed")
		s.store.Update(id, func(sess *Session) {
			sess.Status = StatusError
			sess.Error = err.Error()
		})
		s.hub.Broadcast(id, ProgressEvent{Stage: StatusError, Message: err.Error()})
	}

	sess, ok := s.store.Get(id)
	if !ok {
		return
	}
	src, err := loadImage(sess.ImagePath)
	if err != nil {
		fail(fmt.Errorf("load image: %w", err))
		return
	}

	features := *sess.Features
	if duration > 0 && duration < features.Duration {
		features.Duration = duration
	}
	params := effects.BuildParameters(&features, sess.Toggles, sess.Context)

	var sprite *image.RGBA
	if sess.SpritePath != "" {
		if img, err := loadImage(sess.SpritePath); err != nil {
			// a broken sprite should not sink the render
			log.Warn().Err(err).Str("session", id).Msg("sprite load failed; using soft disc")
		} else {
			sprite = image.NewRGBA(img.Bounds())
			draw.Draw(sprite, sprite.Bounds(), img, img.Bounds().Min, draw.Src)
		}
	}

	seq, err := render.NewSequencer(settings, params, sprite)
	if err != nil {
		fail(err)
		return
	}
	frameDir := filepath.Join(s.store.Dir(id), "frames")
	total := seq.FrameCount()
	err = seq.Run(context.Background(), src, frameDir, func(frame, _ int) {
		p := float64(frame) / float64(total)
		s.store.Update(id, func(sess *Session) { sess.Progress = p })
		if frame%5 == 0 || frame == total {
			s.hub.Broadcast(id, ProgressEvent{Stage: StatusRendering, Progress: p})
		}
	})
	if err != nil {
		fail(err)
		return
	}

	s.store.Update(id, func(sess *Session) {
		sess.Status = StatusEncoding
		sess.Progress = 0
	})
	s.hub.Broadcast(id, ProgressEvent{Stage: StatusEncoding})

	out := filepath.Join(s.store.Dir(id), "output.mp4")
	err = encode.Encode(context.Background(), encode.Job{
		FrameDir:   frameDir,
		AudioPath:  sess.AudioPath,
		AudioStart: clipStart,
		Duration:   duration,
		FPS:        settings.FPS,
		Quality:    settings.Quality,
		Preview:    settings.Preview,
		OutPath:    out,
		FFmpegPath: s.cfg.FFmpeg,
	})
	if err != nil {
		fail(err)
		return
	}
	_ = os.RemoveAll(frameDir)

	s.store.Update(id, func(sess *Session) {
		sess.Status = StatusDone
		sess.Progress = 1
		sess.OutPath = out
	})
	s.hub.Broadcast(id, ProgressEvent{Stage: StatusDone, Progress: 1})
	log.Info().Str("session", id).Str("out", out).Msg("job complete")
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if sess.Status != StatusDone || sess.OutPath == "" {
		httpError(w, http.StatusConflict, fmt.Errorf("no finished output"))
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="beatframe.mp4"`)
	http.ServeFile(w, r, sess.OutPath)
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

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstPositive(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}
