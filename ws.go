package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// writeWait bounds every write to a client so a stalled reader is dropped
// instead of holding up the broadcast.
const writeWait = 5 * time.Second

type wsHub struct {
	log       *zap.Logger
	writeWait time.Duration
	mu        sync.Mutex
	clients   map[*websocket.Conn]uuid.UUID
}

func newHub(log *zap.Logger) *wsHub {
	return &wsHub{log: log, writeWait: writeWait, clients: make(map[*websocket.Conn]uuid.UUID)}
}

func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade error", zap.Error(err))
		return
	}
	// Send the most recent snapshot so the map can place markers immediately.
	// This happens before registration: a connection has one writer at a time.
	if err := writeVehicles(conn, s.currentVehicles(), s.hub.writeWait); err != nil {
		_ = conn.Close()
		return
	}
	id := s.hub.add(conn)
	s.log.Info("ws client connected", zap.Stringer("client", id), zap.String("remote", r.RemoteAddr))
	go s.hub.readPump(conn)
}

func (h *wsHub) add(c *websocket.Conn) uuid.UUID {
	id := uuid.New()
	h.mu.Lock()
	h.clients[c] = id
	h.mu.Unlock()
	return id
}

func (h *wsHub) remove(c *websocket.Conn) {
	h.mu.Lock()
	id, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		h.log.Info("ws client disconnected", zap.Stringer("client", id))
	}
}

func (h *wsHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *wsHub) broadcast(vehicles []Vehicle) {
	data, _ := json.Marshal(vehicles)
	h.mu.Lock()
	for c, id := range h.clients {
		_ = c.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug("ws write failed, dropping client", zap.Stringer("client", id), zap.Error(err))
			c.Close()
			delete(h.clients, c)
		}
	}
	h.mu.Unlock()
}

func (h *wsHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown")
		_ = c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.writeWait))
		c.Close()
		delete(h.clients, c)
	}
}

func (h *wsHub) readPump(c *websocket.Conn) {
	defer func() {
		h.remove(c)
		_ = c.Close()
	}()
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

func writeVehicles(c *websocket.Conn, v []Vehicle, wait time.Duration) error {
	data, _ := json.Marshal(v)
	_ = c.SetWriteDeadline(time.Now().Add(wait))
	return c.WriteMessage(websocket.TextMessage, data)
}
