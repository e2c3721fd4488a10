// Package gateway accepts websocket clients and routes their commands to
// game sessions.
package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gossip-lite/apps/server/internal/codec"
	"gossip-lite/apps/server/internal/lobby"
	"gossip-lite/apps/server/internal/session"
	"gossip-lite/gossip"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	readLimit    = 8192
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
	sendBuffer   = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Limits throttles inbound commands per connection.
type Limits struct {
	Rate  float64
	Burst int
}

// ClientCommand is the JSON a client sends.
type ClientCommand struct {
	Type  string `json:"type"`
	Game  string `json:"game,omitempty"`
	Level int    `json:"level,omitempty"`
	Delta int    `json:"delta,omitempty"`
	// Target is the character index for select.
	Target int `json:"target,omitempty"`

	NewGame *lobby.NewGameRequest `json:"new_game,omitempty"`
}

// Connection represents a WebSocket client connection
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Gateway *Gateway
	limiter *rate.Limiter

	mu      sync.Mutex
	session *session.Session
}

// Gateway manages WebSocket connections
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	nextConnID  uint64
	errSeq      uint64
	lobby       *lobby.Lobby
	limits      Limits
	logger      *log.Logger
}

func New(lby *lobby.Lobby, limits Limits, logger *log.Logger) *Gateway {
	if logger == nil {
		logger = log.Default()
	}
	if limits.Rate <= 0 {
		limits.Rate = 10
	}
	if limits.Burst <= 0 {
		limits.Burst = 20
	}
	return &Gateway{
		connections: make(map[string]*Connection),
		lobby:       lby,
		limits:      limits,
		logger:      logger.WithPrefix("Gateway"),
	}
}

// HandleWebSocket handles WebSocket upgrade and connection
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("upgrade failed", "err", err)
		return
	}

	g.mu.Lock()
	g.nextConnID++
	c := &Connection{
		ID:      fmt.Sprintf("conn_%d", g.nextConnID),
		Conn:    conn,
		Send:    make(chan []byte, sendBuffer),
		Gateway: g,
		limiter: rate.NewLimiter(rate.Limit(g.limits.Rate), g.limits.Burst),
	}
	g.connections[c.ID] = c
	total := len(g.connections)
	g.mu.Unlock()

	g.logger.Info("client connected", "conn", c.ID, "total", total)

	go c.readPump()
	go c.writePump()
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(readLimit)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Gateway.logger.Warn("read error", "conn", c.ID, "err", err)
			}
			break
		}
		if messageType == websocket.TextMessage {
			c.handleMessage(message)
		}
	}
}

func (c *Connection) handleMessage(data []byte) {
	if !c.limiter.Allow() {
		c.sendError("rate_limited", "too many commands")
		return
	}
	var cmd ClientCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		c.sendError("invalid_message", "invalid message format")
		return
	}
	c.Gateway.logger.Debug("command", "conn", c.ID, "type", cmd.Type)

	switch strings.ToLower(cmd.Type) {
	case "new_game":
		c.handleNewGame(cmd)
	case "join":
		c.handleJoin(cmd.Game)
	case "snapshot":
		c.handleSnapshot()
	case "select":
		c.forward(gossip.Event{Kind: gossip.EventTypeSelect, Arg: cmd.Target})
	case "value":
		c.forward(gossip.Event{Kind: gossip.EventTypeSetValue, Arg: cmd.Level})
	case "adjust":
		c.forward(gossip.Event{Kind: gossip.EventTypeAdjust, Arg: cmd.Delta})
	case "enter":
		c.forward(gossip.Event{Kind: gossip.EventTypeConfirm})
	default:
		c.sendError("unknown_command", fmt.Sprintf("unknown command %q", cmd.Type))
	}
}

func (c *Connection) handleNewGame(cmd ClientCommand) {
	req := lobby.NewGameRequest{Difficulty: int(gossip.DifficultyMedium)}
	if cmd.NewGame != nil {
		req = *cmd.NewGame
	}
	s, err := c.Gateway.lobby.Create(req)
	if err != nil {
		c.sendError("new_game_failed", err.Error())
		return
	}
	c.attach(s)
}

func (c *Connection) handleJoin(gameID string) {
	s := c.Gateway.lobby.Get(gameID)
	if s == nil {
		c.sendError("game_not_found", fmt.Sprintf("game %q not found", gameID))
		return
	}
	c.attach(s)
}

// attach moves the connection to s, leaving any previous game.
func (c *Connection) attach(s *session.Session) {
	c.mu.Lock()
	prev := c.session
	c.session = s
	c.mu.Unlock()
	if prev != nil && prev != s {
		prev.Unsubscribe(c.ID)
	}
	if err := s.Subscribe(c.ID, c.enqueue); err != nil {
		c.sendError("join_failed", err.Error())
		return
	}
	c.Gateway.logger.Info("joined game", "conn", c.ID, "game", s.ID)
}

func (c *Connection) current() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Connection) handleSnapshot() {
	s := c.current()
	if s == nil {
		c.sendError("no_game", "not in a game")
		return
	}
	if err := s.SendSnapshot(c.ID); err != nil {
		c.sendError("snapshot_failed", err.Error())
	}
}

func (c *Connection) forward(ev gossip.Event) {
	s := c.current()
	if s == nil {
		c.sendError("no_game", "not in a game")
		return
	}
	if err := s.Command(ev); err != nil {
		c.sendError("command_rejected", err.Error())
	}
}

// enqueue drops the frame when the client is too slow to drain its buffer.
func (c *Connection) enqueue(data []byte) {
	select {
	case c.Send <- data:
	default:
		c.Gateway.logger.Warn("send buffer full, frame dropped", "conn", c.ID)
	}
}

func (c *Connection) sendError(code, msg string) {
	gameID := ""
	if s := c.current(); s != nil {
		gameID = s.ID
	}
	seq := atomic.AddUint64(&c.Gateway.errSeq, 1)
	c.enqueue(codec.ErrorFrame(gameID, seq, time.Now(), code, msg))
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	if s := c.current(); s != nil {
		s.Unsubscribe(c.ID)
	}
	g.mu.Lock()
	delete(g.connections, c.ID)
	total := len(g.connections)
	g.mu.Unlock()
	close(c.Send)
	g.logger.Info("client disconnected", "conn", c.ID, "total", total)
}

// ConnectionCount returns the number of open connections.
func (g *Gateway) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.connections)
}
