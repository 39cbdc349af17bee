/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/Seednode/wordparty/games/taboo"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	clientCookieName = "wordparty_id"

	maxMessageSize = 4096
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	writeWait      = 10 * time.Second
	sendBuffer     = 64
)

var errRateLimited = errors.New("too many messages; slow down")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// envelope is the wire shape of every inbound message.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client is one websocket connection. The room and player it speaks for are
// assigned by the registry through the gateway's Bind and Unbind.
type Client struct {
	id       string
	clientID string
	conn     *websocket.Conn
	send     chan []byte
	limiter  *rate.Limiter

	mu     sync.Mutex
	room   string
	player string
	closed bool
}

func (c *Client) identity() taboo.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()

	return taboo.Conn{ID: c.id, ClientID: c.clientID, Room: c.room, Player: c.player}
}

// enqueue hands an encoded event to the write pump. A client that cannot
// keep up is dropped.
func (c *Client) enqueue(msg []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- msg:
	default:
		zap.S().Warnw("dropping slow client", "conn", c.id, "room", c.room)
		c.closeLocked()
	}
}

// reject answers a message the gateway turned away before it reached a room.
func (c *Client) reject(reason error) {
	msg, err := json.Marshal(taboo.ErrorEvent(c.id, reason))
	if err != nil {
		zap.S().Errorw("encoding rejection", "conn", c.id, "error", err)
		return
	}
	c.enqueue(msg)
}

func (c *Client) closeLocked() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Gateway is the websocket transport for a taboo.Registry.
type Gateway struct {
	cfg      *Config
	registry *taboo.Registry

	mu      sync.RWMutex
	clients map[string]*Client
}

func newGateway(cfg *Config) *Gateway {
	return &Gateway{
		cfg:     cfg,
		clients: make(map[string]*Client),
	}
}

func (g *Gateway) client(id string) *Client {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.clients[id]
}

func (g *Gateway) Send(conn string, msg []byte) {
	if c := g.client(conn); c != nil {
		c.enqueue(msg)
	}
}

func (g *Gateway) Bind(conn, code, name string) {
	if c := g.client(conn); c != nil {
		c.mu.Lock()
		c.room, c.player = code, name
		c.mu.Unlock()
	}
}

func (g *Gateway) Unbind(conn, code string) {
	if c := g.client(conn); c != nil {
		c.mu.Lock()
		if c.room == code {
			c.room, c.player = "", ""
		}
		c.mu.Unlock()
	}
}

func (g *Gateway) register(c *Client) {
	g.mu.Lock()
	g.clients[c.id] = c
	g.mu.Unlock()
}

func (g *Gateway) unregister(c *Client) {
	g.mu.Lock()
	delete(g.clients, c.id)
	g.mu.Unlock()

	c.mu.Lock()
	c.closeLocked()
	c.mu.Unlock()
}

// Len returns the number of open connections.
func (g *Gateway) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.clients)
}

func getOrSetClientID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(clientCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		zap.S().Errorw("rand.Read failed", "error", err)
		return ""
	}
	id := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     clientCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
	})

	return id
}

func (g *Gateway) serveWS() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		clientID := getOrSetClientID(w, r)

		conn, err := upgrader.Upgrade(w, r, w.Header())
		if err != nil {
			zap.S().Debugw("upgrade failed", "error", err, "remote", realIP(r))
			return
		}

		c := &Client{
			id:       uuid.NewString(),
			clientID: clientID,
			conn:     conn,
			send:     make(chan []byte, sendBuffer),
			limiter:  rate.NewLimiter(10, 20),
		}

		g.register(c)

		logf(g.cfg, "GAMES: Connection %s opened from %s", c.id, realIP(r))

		go g.writePump(c)
		g.readPump(c)
	}
}

func (g *Gateway) readPump(c *Client) {
	defer func() {
		g.registry.Disconnect(c.identity())
		g.unregister(c)
		_ = c.conn.Close()

		logf(g.cfg, "GAMES: Connection %s closed", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg envelope
		if err := c.conn.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				c.reject(taboo.ErrInvalidCommand)
				continue
			}
			return
		}

		if !c.limiter.Allow() {
			c.reject(errRateLimited)
			continue
		}

		g.registry.Dispatch(c.identity(), msg.Type, msg.Payload)
	}
}

func (g *Gateway) writePump(c *Client) {
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
