package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/tailorcam/internal/metrics"
	"github.com/ayusman/tailorcam/internal/session"
)

const (
	eventsInterval = 66 * time.Millisecond
	writeTimeout   = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EventsHandler pushes session snapshots to WebSocket clients whenever the
// session changes.
type EventsHandler struct {
	session *session.Session
	metrics *metrics.Metrics
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
	stopCh  chan struct{}
	once    sync.Once
}

// NewEventsHandler creates an EventsHandler and starts its broadcaster.
func NewEventsHandler(sess *session.Session, m *metrics.Metrics) *EventsHandler {
	h := &EventsHandler{
		session: sess,
		metrics: m,
		clients: make(map[*websocket.Conn]bool),
		stopCh:  make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// The current state goes out before the client joins the broadcast.
	h.mu.Lock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(h.session.Snapshot()); err != nil {
		h.mu.Unlock()
		return
	}
	h.clients[conn] = true
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.EventClients.Add(1)
		defer h.metrics.EventClients.Add(-1)
	}

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *EventsHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcaster.
func (h *EventsHandler) Close() {
	h.once.Do(func() { close(h.stopCh) })
}

// broadcast sends the snapshot to all clients when its version changes.
func (h *EventsHandler) broadcast() {
	ticker := time.NewTicker(eventsInterval)
	defer ticker.Stop()

	var last uint64
	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
		}

		snap := h.session.Snapshot()
		if snap.Version == last {
			continue
		}
		last = snap.Version

		h.mu.RLock()
		for conn := range h.clients {
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(snap); err != nil {
				conn.Close()
			}
		}
		h.mu.RUnlock()
	}
}
