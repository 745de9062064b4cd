// Package events pushes dashboard state changes to websocket clients.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = (pongWait * 9) / 10
	sendBacklog = 64
)

// ErrQueueFull is returned when a message is dropped because the broadcast
// queue is full.
var ErrQueueFull = errors.New("event queue full")

// Message is the envelope written to every client.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type client struct {
	conn   *websocket.Conn
	send   chan *Message
	mu     sync.Mutex
	closed bool
}

// Hub fans messages out to connected websocket clients. It is also the
// dashboard's event publisher and notification surface.
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan *Message
	done       chan struct{}
	upgrader   websocket.Upgrader
	logger     *zap.Logger

	mu         sync.RWMutex
	permission dashboard.Permission
}

// NewHub creates a Hub. Call Run before serving connections.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger:     logger.Named("events"),
		permission: dashboard.PermissionDefault,
	}
}

// Run dispatches registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("event hub started")
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				c.close()
			}
			h.mu.Unlock()
			h.logger.Info("event hub stopped")
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client registered", zap.Int("clients", n))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.close()
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client unregistered", zap.Int("clients", n))

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow consumer
					delete(h.clients, c)
					c.close()
				}
			}
			h.mu.Unlock()
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues a message for every client. It drops the message when the
// queue is full rather than blocking the caller.
func (h *Hub) Broadcast(msgType string, data any) {
	if err := h.enqueue(&Message{Type: msgType, Data: data}); err != nil {
		h.logger.Warn("broadcast queue full, dropping message", zap.String("type", msgType))
	}
}

func (h *Hub) enqueue(msg *Message) error {
	select {
	case h.broadcast <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Publish implements dashboard.Publisher.
func (h *Hub) Publish(e dashboard.Event) {
	h.Broadcast(string(e.Type), e)
}

// Permission implements dashboard.Notifier.
func (h *Hub) Permission() dashboard.Permission {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.permission
}

// SetPermission records the permission the user granted or denied.
func (h *Hub) SetPermission(p dashboard.Permission) {
	h.mu.Lock()
	h.permission = p
	h.mu.Unlock()
	h.logger.Info("notification permission changed", zap.String("permission", string(p)))
}

// Notify implements dashboard.Notifier. It returns ErrQueueFull when the
// notification could not be queued.
func (h *Hub) Notify(_ context.Context, n dashboard.Notification) error {
	if err := h.enqueue(&Message{Type: "notification", Data: n}); err != nil {
		return fmt.Errorf("notify %q: %w", n.Title, err)
	}
	return nil
}

// ServeHTTP upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan *Message, sendBacklog)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(c)
	go h.readPump(c)
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump discards inbound frames; it only exists to notice disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				h.logger.Error("failed to encode message", zap.String("type", msg.Type), zap.Error(err))
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
