// Package server exposes the render pipeline over HTTP: session lifecycle,
// media uploads, preview/export jobs on background goroutines, and progress
// via polling or websocket push.
package server

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lumastudio/beatframe/internal/audio"
	"github.com/lumastudio/beatframe/internal/effects"
	"github.com/lumastudio/beatframe/internal/vision"
)

// Job lifecycle states reported by the status endpoint.
const (
	StatusCreated   = "created"
	StatusRendering = "rendering"
	StatusEncoding  = "encoding"
	StatusDone      = "done"
	StatusError     = "error"
)

// Session is one user's working state. Field access goes through the Store
// lock; the render goroutine copies what it needs up front.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Touched   time.Time `json:"-"`

	ImagePath  string `json:"-"`
	AudioPath  string `json:"-"`
	SpritePath string `json:"-"`

	Features *audio.Features `json:"-"`
	Context  *vision.Context `json:"-"`
	Toggles  effects.Toggles `json:"toggles"`

	ClipStart    float64 `json:"clip_start"`
	ClipDuration float64 `json:"clip_duration"`

	Status   string  `json:"status"`
	Progress float64 `json:"progress"` // 0..1 within the current phase
	Error    string  `json:"error,omitempty"`
	OutPath  string  `json:"-"`
}

// Store is an in-memory session registry backed by per-session directories
// under dataDir.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	dataDir  string
}

func NewStore(dataDir string) *Store {
	return &Store{sessions: map[string]*Session{}, dataDir: dataDir}
}

// Dir is the session's scratch directory (uploads, frames, output).
func (s *Store) Dir(id string) string { return filepath.Join(s.dataDir, id) }

// Create registers a new session with default toggles and a fresh directory.
// Returns a copy; the live record stays behind the store lock.
func (s *Store) Create() (Session, error) {
	sess := &Session{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now(),
		Touched:      time.Now(),
		Toggles:      effects.DefaultToggles(),
		ClipDuration: 15,
		Status:       StatusCreated,
	}
	if err := os.MkdirAll(s.Dir(sess.ID), 0o755); err != nil {
		return Session{}, fmt.Errorf("server: session dir: %w", err)
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return *sess, nil
}

// Get returns a snapshot of the session and bumps its idle timer. Callers
// get a value copy so reads (status marshaling, job setup) never race the
// render goroutine mutating the live record through Update.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	sess.Touched = time.Now()
	return *sess, true
}

// Update mutates a session under the store lock.
func (s *Store) Update(id string, fn func(*Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	fn(sess)
	return true
}

// Delete removes the session and its files.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	if err := os.RemoveAll(s.Dir(id)); err != nil {
		log.Warn().Err(err).Str("session", id).Msg("session cleanup")
	}
}

// Reap deletes sessions idle longer than maxIdle. Run periodically from main.
func (s *Store) Reap(maxIdle time.Duration) {
	cutoff := time.Now().Add(-maxIdle)
	s.mu.Lock()
	var stale []string
	for id, sess := range s.sessions {
		if sess.Touched.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	for _, id := range stale {
		if err := os.RemoveAll(s.Dir(id)); err != nil {
			log.Warn().Err(err).Str("session", id).Msg("session cleanup")
		}
	}
	if len(stale) > 0 {
		log.Info().Int("count", len(stale)).Msg("reaped idle sessions")
	}
}
