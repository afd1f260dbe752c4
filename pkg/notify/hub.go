package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/kasuboski/medialink/pkg/logger"
	"nhooyr.io/websocket"
)

const defaultClientBuffer = 64

// Hub broadcasts events to connected websocket clients. Slow clients drop
// events instead of stalling the broadcaster.
type Hub struct {
	mu             sync.RWMutex
	clients        map[*client]struct{}
	buffer         int
	originPatterns []string
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type HubOption func(*Hub)

// WithOriginPatterns allows cross origin websocket upgrades from matching hosts
func WithOriginPatterns(patterns ...string) HubOption {
	return func(h *Hub) {
		h.originPatterns = patterns
	}
}

// WithClientBuffer sets how many events may queue per client before drops
func WithClientBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients: make(map[*client]struct{}),
		buffer:  defaultClientBuffer,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) Notify(ctx context.Context, event Event) {
	msg, err := json.Marshal(event)
	if err != nil {
		logger.FromCtx(ctx).Warnw("failed to encode event", "event", event.Type, "error", err)
		return
	}
	h.broadcast(msg)
}

func (h *Hub) broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) addClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
	}
}

// ServeHTTP upgrades the request and streams events until the client goes away
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		log.Debugw("websocket accept failed", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, h.buffer),
	}
	h.addClient(c)
	log.Debugw("websocket client connected", "clients", h.ClientCount())

	ctx := r.Context()

	go func() {
		defer conn.Close(websocket.StatusNormalClosure, "")
		for msg := range c.send {
			if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}()

	// clients only listen; reading surfaces close frames and disconnects
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			break
		}
	}

	h.removeClient(c)
	log.Debugw("websocket client disconnected", "clients", h.ClientCount())
}
