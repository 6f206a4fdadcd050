// Package events pushes server events (settings changes, stream
// online/offline) to connected players over a WebSocket, so a toggled
// encryption flag is picked up without polling.
package events

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/eligiorbautista/drmlive/internal/domain"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 5 * time.Second
)

// Hub fans events out to all connected subscribers.
type Hub struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*subscriber]struct{}
}

// subscriber serializes writes to one WebSocket connection.
type subscriber struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (s *subscriber) send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.ws.WriteMessage(websocket.TextMessage, data)
}

func (s *subscriber) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeTimeout))
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  512,
			WriteBufferSize: 512,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		conns: make(map[*subscriber]struct{}),
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnf("events: upgrade: %v", err)
		return
	}

	sub := &subscriber{ws: ws}
	h.mu.Lock()
	h.conns[sub] = struct{}{}
	n := len(h.conns)
	h.mu.Unlock()
	zap.S().Debugf("events: subscriber connected (%d total)", n)

	go h.pingLoop(sub)
	h.readLoop(sub)
}

// Publish sends the event to every subscriber. Connections that fail to
// accept the write are dropped.
func (h *Hub) Publish(event domain.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		zap.S().Errorf("events: marshal %s: %v", event.Type, err)
		return
	}

	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.conns))
	for sub := range h.conns {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		if err := sub.send(data); err != nil {
			zap.S().Debugf("events: dropping subscriber: %v", err)
			h.drop(sub)
		}
	}
}

// Close disconnects all subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.conns {
		sub.ws.Close()
		delete(h.conns, sub)
	}
}

func (h *Hub) drop(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.conns[sub]; ok {
		delete(h.conns, sub)
		sub.ws.Close()
	}
	h.mu.Unlock()
}

// readLoop discards inbound messages; the socket is push-only. It returns
// when the peer closes the connection.
func (h *Hub) readLoop(sub *subscriber) {
	defer h.drop(sub)
	for {
		if _, _, err := sub.ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) pingLoop(sub *subscriber) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		if err := sub.ping(); err != nil {
			h.drop(sub)
			return
		}
	}
}
