package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/hotseat-tictactoe/internal/tictactoe"
)

const (
	sendBufferSize = 16

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type client struct {
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func (that *client) close() {
	that.closeOnce.Do(func() { close(that.send) })
}

// Hub pushes engine events to the browser views subscribed to a session.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

func NewHub(logger *slog.Logger, allowedOrigins []string) *Hub {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[origin] = struct{}{}
	}

	return &Hub{
		logger: logger.With("component", "websocket_hub"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				if _, ok := origins["*"]; ok {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
		clients: make(map[string]map[*client]struct{}),
	}
}

// Publish - sends the event to every view of the session. Views that cannot keep up are dropped.
func (that *Hub) Publish(sessionID string, event tictactoe.Event) {
	log := that.logger.With("method", "Publish", "session", sessionID)

	data, err := encode(event)
	if err != nil {
		log.Error("failed to encode event", "error", err)
		return
	}

	var slow []*client

	that.mu.RLock()
	for c := range that.clients[sessionID] {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	that.mu.RUnlock()

	for _, c := range slow {
		log.Warn("dropping slow subscriber")
		that.unsubscribe(sessionID, c)
	}
}

// ServeSession - upgrades the request and streams the session's events until the view disconnects.
func (that *Hub) ServeSession(writer http.ResponseWriter, req *http.Request, sessionID string) {
	log := that.logger.With("method", "ServeSession", "session", sessionID)

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	that.subscribe(sessionID, c)

	log.Info("WebSocket connection established")

	go that.writePump(c)
	that.readPump(sessionID, c)
}

// Subscribers - number of views currently attached to the session.
func (that *Hub) Subscribers(sessionID string) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.clients[sessionID])
}

// Close - disconnects every view of the session, used when the session is closed.
func (that *Hub) Close(sessionID string) {
	that.mu.Lock()
	clients := that.clients[sessionID]
	delete(that.clients, sessionID)
	that.mu.Unlock()

	for c := range clients {
		c.close()
	}
}

func (that *Hub) subscribe(sessionID string, c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	set, ok := that.clients[sessionID]
	if !ok {
		set = make(map[*client]struct{})
		that.clients[sessionID] = set
	}
	set[c] = struct{}{}
}

func (that *Hub) unsubscribe(sessionID string, c *client) {
	that.mu.Lock()
	if set, ok := that.clients[sessionID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(that.clients, sessionID)
		}
	}
	that.mu.Unlock()

	c.close()
}

// readPump only drains control frames; views never send game input over the socket.
func (that *Hub) readPump(sessionID string, c *client) {
	defer that.unsubscribe(sessionID, c)

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				that.logger.Warn("unexpected close", "session", sessionID, "error", err)
			}
			return
		}
	}
}

func (that *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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

func encode(event tictactoe.Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{
		Action:  "game:" + event.Kind,
		Payload: payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}
