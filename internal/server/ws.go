package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/noelvortex/internal/interaction"
	"github.com/ayusman/noelvortex/internal/morph"
	"github.com/ayusman/noelvortex/internal/resolve"
)

// WebSocket timing.
const (
	pushInterval = 33 * time.Millisecond
	writeWait    = time.Second
)

// Message types exchanged with the renderer.
const (
	MessageSnapshot = "snapshot"
	MessageError    = "error"
	MessageRegions  = "regions"
	MessageModal    = "modal"
	MessageMode     = "mode"
	MessageClose    = "close"
	MessageCamera   = "camera"
)

// Message is one WebSocket frame. The server sends snapshot and error
// messages; the renderer sends the rest.
type Message struct {
	Type     string                `json:"type"`
	Snapshot *interaction.Snapshot `json:"snapshot,omitempty"`
	Render   *morph.Frame          `json:"render,omitempty"`
	Error    string                `json:"error,omitempty"`
	Regions  []resolve.Region      `json:"regions,omitempty"`
	Layout   *resolve.ModalLayout  `json:"layout,omitempty"`
	Mode     string                `json:"mode,omitempty"`
	Enabled  *bool                 `json:"enabled,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(m Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(m)
}

// Hub pushes interaction snapshots to every connected renderer and applies
// the hit regions, modal layout and commands they send back.
type Hub struct {
	ctrl    Controller
	clients map[*client]struct{}
	mu      sync.RWMutex
	stopCh  chan struct{}
	once    sync.Once
}

// NewHub creates a Hub and starts its broadcast loop.
func NewHub(ctrl Controller) *Hub {
	h := &Hub{
		ctrl:    ctrl,
		clients: make(map[*client]struct{}),
		stopCh:  make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// Clients returns the number of connected renderers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops broadcasting and disconnects all clients.
func (h *Hub) Close() {
	h.once.Do(func() {
		close(h.stopCh)
		h.mu.Lock()
		defer h.mu.Unlock()
		for c := range h.clients {
			c.conn.Close()
			delete(h.clients, c)
		}
	})
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn}
	defer conn.Close()

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
	}()

	render := h.ctrl.Render()
	if err := c.send(Message{Type: MessageSnapshot, Snapshot: h.ctrl.Snapshot(), Render: &render}); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var m Message
		if err := json.Unmarshal(data, &m); err != nil {
			c.send(Message{Type: MessageError, Error: "invalid message"})
			continue
		}
		if err := h.handle(m); err != nil {
			c.send(Message{Type: MessageError, Error: err.Error()})
		}
	}
}

// handle applies one renderer message.
func (h *Hub) handle(m Message) error {
	switch m.Type {
	case MessageRegions:
		h.ctrl.Regions().Set(m.Regions)
	case MessageModal:
		if m.Layout == nil {
			return errors.New("layout is required")
		}
		h.ctrl.Modal().SetLayout(*m.Layout)
	case MessageMode:
		mode, err := interaction.ParseAppMode(m.Mode)
		if err != nil {
			return err
		}
		h.ctrl.Submit(interaction.SetMode{Mode: mode})
	case MessageClose:
		h.ctrl.Submit(interaction.CloseSelection{})
	case MessageCamera:
		if m.Enabled == nil {
			return errors.New("enabled is required")
		}
		return h.ctrl.SetCameraEnabled(*m.Enabled)
	default:
		return errors.New("unknown message type " + m.Type)
	}
	return nil
}

// broadcast sends each new snapshot to all connected clients.
func (h *Hub) broadcast() {
	ticker := time.NewTicker(pushInterval)
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
		}

		snap := h.ctrl.Snapshot()
		if snap == nil || snap.Seq == lastSeq {
			continue
		}
		lastSeq = snap.Seq

		h.mu.RLock()
		clients := make([]*client, 0, len(h.clients))
		for c := range h.clients {
			clients = append(clients, c)
		}
		h.mu.RUnlock()

		render := h.ctrl.Render()
		msg := Message{Type: MessageSnapshot, Snapshot: snap, Render: &render}
		for _, c := range clients {
			if err := c.send(msg); err != nil {
				slog.Debug("WebSocket send failed", "error", err)
				c.conn.Close()
			}
		}
	}
}
