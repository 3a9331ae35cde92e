package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/mindtower/pkg/graph"
	"github.com/matzehuels/mindtower/pkg/mindmap"
	"github.com/matzehuels/mindtower/pkg/observability"
	"github.com/matzehuels/mindtower/pkg/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 << 10
)

// snapshotMessage is the only message sent on the stream.
type snapshotMessage struct {
	Type    string        `json:"type"`
	MindMap graph.MindMap `json:"mindmap"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Renderers are usually served from another origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// hub fans published snapshots out to stream clients. A client whose queue
// is full when a snapshot arrives is disconnected.
type hub struct {
	store  *store.Store
	buffer int
	logger *log.Logger

	mu          sync.Mutex
	clients     map[*client]struct{}
	unsubscribe func()
	closed      bool
}

type client struct {
	id   string
	ctx  context.Context
	conn *websocket.Conn
	send chan []byte
	// last is the newest version queued for this client. Listeners may run
	// concurrently, so older snapshots can arrive after newer ones.
	last uint64
}

func newHub(st *store.Store, buffer int, logger *log.Logger) *hub {
	h := &hub{
		store:   st,
		buffer:  buffer,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
	h.unsubscribe = st.Subscribe(h.broadcast)
	return h
}

func encodeSnapshot(m mindmap.MindMap) ([]byte, error) {
	return json.Marshal(snapshotMessage{Type: "snapshot", MindMap: graph.FromMindMap(m)})
}

func (h *hub) broadcast(m mindmap.MindMap) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return
	}

	msg, err := encodeSnapshot(m)
	if err != nil {
		h.logger.Error("encode snapshot", "version", m.Version, "err", err)
		return
	}
	for c := range h.clients {
		if m.Version <= c.last {
			continue
		}
		select {
		case c.send <- msg:
			c.last = m.Version
		default:
			h.logger.Warn("dropping slow stream client", "client", c.id, "version", m.Version)
			h.removeLocked(c, true)
		}
	}
}

// register adds c and queues the current snapshot for it.
func (h *hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}

	m := h.store.Snapshot()
	msg, err := encodeSnapshot(m)
	if err != nil {
		h.logger.Error("encode snapshot", "version", m.Version, "err", err)
		return false
	}
	c.send <- msg
	c.last = m.Version
	h.clients[c] = struct{}{}
	observability.HTTP().OnStreamOpen(c.ctx)
	return true
}

func (h *hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, false)
}

func (h *hub) removeLocked(c *client, dropped bool) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	observability.HTTP().OnStreamClose(c.ctx, dropped)
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.unsubscribe()
	for c := range h.clients {
		h.removeLocked(c, false)
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Debug("websocket upgrade failed", "err", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		ctx:  context.WithoutCancel(r.Context()),
		conn: conn,
		send: make(chan []byte, h.buffer+1),
	}
	if !h.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	h.logger.Debug("stream client connected", "client", c.id)

	go h.writePump(c)
	go h.readPump(c)
}

// readPump discards client messages and detects disconnects.
func (h *hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		h.logger.Debug("stream client disconnected", "client", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("stream read error", "client", c.id, "err", err)
			}
			return
		}
	}
}

func (h *hub) writePump(c *client) {
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
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.Debug("stream write failed", "client", c.id, "err", err)
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
