// Package realtime carries live records between players and their sessions
// over websockets. Every frame is a binary record: one type byte followed by
// the payload.
package realtime

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-snake-server/service/i"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	defaultSendBufferSize = 32
	defaultWriteTimeout   = 5 * time.Second
	tokenParam            = "token"
)

var ErrNilAuthenticator = errors.New("authenticator is nil")

// Authenticator resolves a connection token to a player ID.
type Authenticator interface {
	Authenticate([]byte) (uuid.UUID, error)
}

// ClientRequestHandler receives records sent by a player.
type ClientRequestHandler func(uuid.UUID, byte, []byte)

// HubOption configures a Hub.
type HubOption func(*Hub)

// HubWithSendBufferSize sets how many outgoing records a slow client may lag.
func HubWithSendBufferSize(n int) HubOption {
	return func(h *Hub) {
		h.sendBufferSize = n
	}
}

// HubWithWriteTimeout bounds every frame write.
func HubWithWriteTimeout(d time.Duration) HubOption {
	return func(h *Hub) {
		h.writeTimeout = d
	}
}

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
		_ = c.conn.Close()
	})
}

// Hub accepts player connections and fans records out to them.
type Hub struct {
	addr           string
	upgrader       websocket.Upgrader
	authenticator  Authenticator
	requestHandler ClientRequestHandler
	clients        map[uuid.UUID]*client
	sendBufferSize int
	writeTimeout   time.Duration
	logger         i.Logger
	sync.RWMutex
}

// NewHub returns a hub that advertises addr as its public address.
func NewHub(addr string, logger i.Logger, options ...HubOption) *Hub {
	h := &Hub{
		addr:           addr,
		upgrader:       websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:        make(map[uuid.UUID]*client),
		sendBufferSize: defaultSendBufferSize,
		writeTimeout:   defaultWriteTimeout,
		logger:         logger,
	}
	for _, opt := range options {
		opt(h)
	}
	return h
}

func (h *Hub) SetClientRequestHandler(f func(uuid.UUID, byte, []byte)) {
	h.Lock()
	defer h.Unlock()
	h.requestHandler = f
}

func (h *Hub) SetClientAuthenticator(a Authenticator) {
	h.Lock()
	defer h.Unlock()
	h.authenticator = a
}

func (h *Hub) GetAddr() string {
	return h.addr
}

// ServeHTTP authenticates the token query parameter and upgrades the
// connection. A newer connection for the same player replaces the old one.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.RLock()
	auth := h.authenticator
	h.RUnlock()
	if auth == nil {
		h.logger.Error(ErrNilAuthenticator.Error())
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}

	id, err := auth.Authenticate([]byte(r.URL.Query().Get(tokenParam)))
	if err != nil {
		h.logger.Warning(fmt.Sprintf("rejected connection from %s: %s", r.RemoteAddr, err))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warning(fmt.Sprintf("upgrade failed for player %s: %s", id, err))
		return
	}

	c := &client{id: id, conn: conn, send: make(chan []byte, h.sendBufferSize)}
	h.register(c)
	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) register(c *client) {
	h.Lock()
	old, ok := h.clients[c.id]
	h.clients[c.id] = c
	h.Unlock()

	if ok {
		old.close()
	}
	h.logger.Info(fmt.Sprintf("player %s connected", c.id))
}

func (h *Hub) unregister(c *client) {
	h.Lock()
	if h.clients[c.id] == c {
		delete(h.clients, c.id)
	}
	h.Unlock()
	c.close()
}

func (h *Hub) readPump(c *client) {
	defer h.unregister(c)
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.BinaryMessage || len(data) == 0 {
			continue
		}

		h.RLock()
		handler := h.requestHandler
		h.RUnlock()
		if handler != nil {
			handler(c.id, data[0], data[1:])
		}
	}
}

func (h *Hub) writePump(c *client) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
			h.logger.Warning(fmt.Sprintf("writing to player %s: %s", c.id, err))
			h.unregister(c)
			return
		}
	}
}

// BroadcastToClients queues a record for every listed player that is
// connected. Records for a client whose buffer is full are dropped.
func (h *Hub) BroadcastToClients(clientIDs []uuid.UUID, typ byte, payload []byte) {
	msg := make([]byte, 0, len(payload)+1)
	msg = append(msg, typ)
	msg = append(msg, payload...)

	h.RLock()
	defer h.RUnlock()
	for _, id := range clientIDs {
		c, ok := h.clients[id]
		if !ok {
			continue
		}
		select {
		case c.send <- msg:
		default:
			h.logger.Warning(fmt.Sprintf("send buffer full for player %s, dropping record", id))
		}
	}
}

// Close disconnects every player.
func (h *Hub) Close() {
	h.Lock()
	clients := h.clients
	h.clients = make(map[uuid.UUID]*client)
	h.Unlock()

	for _, c := range clients {
		c.close()
	}
}
