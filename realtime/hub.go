// hub.go - Pushes cart changes to every open websocket of the cart's owner

package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"cafesantander/cart"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second    // Time allowed to write a message
	pongWait   = 60 * time.Second    // Time allowed to read the next pong
	pingPeriod = (pongWait * 9) / 10 // Must be less than pongWait
	sendBuffer = 16                  // Queued events per socket before it is dropped
)

// EventCart is the only event type sent today.
const EventCart = "cart"

// Event is the JSON frame written to sockets.
type Event struct {
	Type string        `json:"type"`
	Cart cart.Contents `json:"cart"`
}

type client struct {
	userID uint
	conn   *websocket.Conn
	send   chan []byte
}

// Hub keeps the open sockets per user. It implements cart.Notifier.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[uint]map[*client]struct{}
}

// NewHub returns a hub. checkOrigin may be nil to accept any origin.
func NewHub(checkOrigin func(*http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024, CheckOrigin: checkOrigin},
		clients:  make(map[uint]map[*client]struct{}),
	}
}

// Serve upgrades the request and blocks until the socket closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uint) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err // Upgrade already wrote the HTTP error
	}
	c := &client{userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)

	go c.writePump()
	c.readPump() // Returns on close or error
	h.unregister(c)
	return nil
}

// CartChanged queues the new contents on every socket of userID.
func (h *Hub) CartChanged(userID uint, contents cart.Contents) {
	data, err := json.Marshal(Event{Type: EventCart, Cart: contents})
	if err != nil {
		slog.Error("encode cart event", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- data:
		default:
			// Slow reader, drop it; the client refetches on reconnect
			h.removeLocked(c)
		}
	}
}

// Connections returns how many sockets userID has open.
func (h *Hub) Connections(userID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

// Close disconnects every socket.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			h.removeLocked(c)
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked closes c's queue once. h.mu must be held.
func (h *Hub) removeLocked(c *client) {
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
}

// readPump discards client frames and keeps the read deadline alive with pongs.
func (c *client) readPump() {
	defer c.conn.Close()
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

// writePump is the only writer of c.conn.
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
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
