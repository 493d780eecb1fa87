package fleet

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hospigo/fleetd/core/events"
	"github.com/hospigo/fleetd/infra/logger"
	"github.com/hospigo/fleetd/internal/eventbus"
)

// Message is the envelope sent to connected dashboard clients.
type Message struct {
	Type    string      `json:"type"` // "fleet_state" or "notification"
	Payload interface{} `json:"payload"`
}

// Hub relays fleet state and notification events to websocket clients.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan Message
	register   chan *client
	unregister chan *client
	mu         sync.Mutex

	bus eventbus.EventBus
	log logger.Logger
}

// NewHub creates a hub wired to the given event bus.
func NewHub(bus eventbus.EventBus, log logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan Message),
		register:   make(chan *client),
		unregister: make(chan *client),
		bus:        bus,
		log:        log,
	}
}

// Run consumes bus events and fans them out to clients until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	sub := h.bus.SubscribeBuffered(64)
	defer h.bus.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		case ev, ok := <-sub:
			if !ok {
				return
			}
			switch e := ev.(type) {
			case events.TickEvent:
				h.send(Message{Type: "fleet_state", Payload: e})
			case events.NotificationEvent:
				h.send(Message{Type: "notification", Payload: e.Notification})
			}
		case msg := <-h.broadcast:
			h.send(msg)
		}
	}
}

// send delivers msg to every client, dropping clients that cannot keep up.
func (h *Hub) send(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			close(c.send)
			delete(h.clients, c)
		}
	}
}

// Broadcast pushes a message to all connected clients.
func (h *Hub) Broadcast(msg Message) {
	h.broadcast <- msg
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The dashboard is served from a different origin in development.
		return true
	},
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

func (c *client) writePump() {
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
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if err := json.NewEncoder(w).Encode(msg); err != nil {
				_ = w.Close()
				return
			}
			// Flush queued messages into the same frame batch.
			n := len(c.send)
			for i := 0; i < n; i++ {
				_ = json.NewEncoder(w).Encode(<-c.send)
			}
			if err := w.Close(); err != nil {
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

func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// serveWS upgrades an HTTP request to a websocket client of the hub.
func serveWS(h *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("websocket upgrade: %v", err)
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan Message, 256)}
	h.register <- c
	go c.writePump()
	go c.readPump()
}
