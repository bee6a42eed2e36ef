package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/hexabet/internal/service"
)

// streamEvent is the wire format pushed to websocket subscribers after an
// event settles or the ledger is rewound.
type streamEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub fans settle notifications out to websocket subscribers. It registers
// itself as a tracker listener and holds connections only, no business
// state.
type Hub struct {
	upgrader    websocket.Upgrader
	logger      *logrus.Logger
	mu          sync.Mutex
	conns       map[*websocket.Conn]struct{}
	unsubscribe func()
}

// NewHub creates a hub and subscribes it to the tracker.
func NewHub(tracker *service.Tracker, logger *logrus.Logger) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
		conns:  make(map[*websocket.Conn]struct{}),
	}
	h.unsubscribe = tracker.Subscribe(h.onNotification)
	return h
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	h.logger.WithField("remote", conn.RemoteAddr().String()).Debug("Stream subscriber connected")

	// Drain control frames; any read error means the client is gone.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Close unsubscribes from the tracker and closes all connections.
func (h *Hub) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Close()
	}
	h.conns = make(map[*websocket.Conn]struct{})
}

func (h *Hub) onNotification(n service.Notification) {
	eventType := "settled"
	if n.Undone {
		eventType = "undone"
	}
	msg := streamEvent{Type: eventType, Payload: n}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.WithError(err).Debug("Dropping stream subscriber")
			h.drop(conn)
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}
