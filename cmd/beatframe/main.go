package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lumastudio/beatframe/internal/config"
	"github.com/lumastudio/beatframe/internal/server"
)

func main() {
	// ---- Flags (remain usable; config.yaml can override most) ----
	var (
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		dataDir    = flag.String("data-dir", "data", "session uploads and rendered output")
		fps        = flag.Int("fps", 30, "default render frames per second")
		aspect     = flag.String("aspect", "9:16", "default aspect ratio: 9:16 | 1:1 | 16:9 | 4:5")
		quality    = flag.String("quality", "medium", "default encode quality: low | medium | high")
		workers    = flag.Int("workers", 2, "concurrent render jobs")
		logLevel   = flag.String("log-level", "info", "zerolog level")
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Load config.yaml (optional) ----
	cfg := config.Default()
	if c, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
		cfg.Server.Addr = *addr
		cfg.Server.DataDir = *dataDir
		cfg.Render.FPS = *fps
		cfg.Render.Aspect = *aspect
		cfg.Render.Quality = *quality
		cfg.Render.Workers = *workers
		cfg.LogLevel = *logLevel
	} else {
		cfg = c
	}

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := os.MkdirAll(cfg.Server.DataDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Server.DataDir).Msg("data dir")
	}

	srv := server.New(cfg)

	httpSrv := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     withCORS(srv.Routes()),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// ---- Session reaper ----
	reapEvery := time.Hour
	maxIdle := time.Duration(cfg.Server.SessionHours) * time.Hour
	if maxIdle <= 0 {
		maxIdle = 24 * time.Hour
	}
	go func() {
		ticker := time.NewTicker(reapEvery)
		defer ticker.Stop()
		for range ticker.C {
			srv.Store().Reap(maxIdle)
		}
	}()

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("HTTP server starting")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Graceful shutdown ----
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	s := <-ch
	log.Info().Str("signal", s.String()).Msg("shutting down")
	_ = httpSrv.Close()
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
