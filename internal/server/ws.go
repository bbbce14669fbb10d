package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ProgressEvent is one websocket push. Progress is 0..1 within the stage.
type ProgressEvent struct {
	Stage    string  `json:"stage"`
	Progress float64 `json:"progress"`
	Message  string  `json:"message,omitempty"`
}

// ProgressHub fans render progress out to websocket clients grouped by
// session.
type ProgressHub struct {
	mu      sync.RWMutex
	clients map[string]map[*websocket.Conn]bool
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{clients: map[string]map[*websocket.Conn]bool{}}
}

// HandleWS upgrades the connection and keeps it registered until the client
// goes away. Reads are drained only to detect the close.
func (h *ProgressHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	if h.clients[id] == nil {
		h.clients[id] = map[*websocket.Conn]bool{}
	}
	h.clients[id][conn] = true
	h.mu.Unlock()

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients[id], conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends the event to every client watching the session.
func (h *ProgressHub) Broadcast(id string, ev ProgressEvent) {
	b, _ := json.Marshal(ev)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[id] {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Str("session", id).Msg("write progress")
		}
	}
}

// CloseSession drops all clients for a deleted session.
func (h *ProgressHub) CloseSession(id string) {
	h.mu.Lock()
	conns := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()
	for c := range conns {
		c.Close()
	}
}
