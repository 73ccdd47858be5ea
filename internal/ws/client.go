package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/lunchorder/api/internal/auth"
	"github.com/lunchorder/api/internal/middleware"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Watchers never send payloads; anything bigger than a close frame is noise.
	maxMessageSize = 512

	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers connect cross-origin from the SPA; the JWT is the gate.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one browser tab watching the order board of a single date.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	date string
	who  string
	send chan []byte
}

// greeting is the first frame a watcher receives.
type greeting struct {
	Type string `json:"type"`
	Date string `json:"date"`
}

// readLoop only exists to notice the tab going away and to keep the read
// deadline moving with pongs.
func (c *Client) readLoop() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WARNING: board watcher %s on %s: %v", c.who, c.date, err)
			}
			return
		}
	}
}

// writeLoop sends each board event as its own text frame so clients can
// JSON-decode every message independently.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWS upgrades GET /ws/days/{date}/orders into a board subscription.
// Browsers cannot set headers on a WebSocket handshake, so the access token
// is read from ?token= and falls back to the Authorization header. The token
// must still belong to a current account.
func ServeWS(hub *Hub, jwtSecret string, users middleware.UserLookup, w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	claims, err := auth.ValidateToken(jwtSecret, token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	user, ok := users.User(claims.UserID)
	if !ok {
		http.Error(w, "account no longer exists", http.StatusUnauthorized)
		return
	}

	date := chi.URLParam(r, "date")
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ERROR: websocket upgrade: %v", err)
		return
	}

	c := &Client{
		hub:  hub,
		conn: conn,
		date: date,
		who:  user.Name,
		send: make(chan []byte, sendBuffer),
	}
	hello, _ := json.Marshal(greeting{Type: "subscribed", Date: date})
	c.send <- hello
	hub.register <- c

	go c.writeLoop()
	go c.readLoop()
}
