package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/blockedby/npb-dashboard/internal/logger"
)

// SessionCookie carries the dashboard session id.
const SessionCookie = "npb_session"

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

type sessionMessage struct {
	sessionID string
	data      []byte
}

// Hub maintains the set of active clients and pushes messages to the tabs
// of one session
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	direct     chan sessionMessage
	count      chan chan int
	log        *logger.Logger
}

// Client is a browser tab connected to the hub
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// NewHub creates a new hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan sessionMessage, 256),
		count:      make(chan chan int),
		log:        logger.Get().Component("ws"),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.direct:
			for c := range h.clients {
				if c.sessionID == msg.sessionID {
					h.deliver(c, msg.data)
				}
			}
		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

// deliver drops clients that cannot keep up
func (h *Hub) deliver(c *Client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
		h.log.Warn().Str("session", c.sessionID).Msg("client too slow, disconnected")
	}
}

// SendTo sends a message to the clients of one session
func (h *Hub) SendTo(sessionID string, msg []byte) {
	h.direct <- sessionMessage{sessionID: sessionID, data: msg}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	reply := make(chan int)
	h.count <- reply
	return <-reply
}

// ServeWs upgrades the request and attaches the client to the caller's
// session
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	var sessionID string
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		sessionID = cookie.Value
	}

	c := &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		sessionID: sessionID,
	}
	hub.register <- c

	go c.writePump()
	go c.readPump()
}

// readPump only handles control frames; the browser never sends data
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug().Err(err).Str("session", c.sessionID).Msg("websocket closed")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
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
