package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/datadeck/datadeck-server-go/internal/config"
)

const (
	defaultWriteTimeout = 10 * time.Second
	pongWait            = 60 * time.Second
	pingPeriod          = (pongWait * 9) / 10
	maxMessageSize      = 64 * 1024
	sendBufferSize      = 256
)

// Client is one WebSocket connection attached to the hub.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	gameID string
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// GameID returns the game the client is currently attached to.
func (c *Client) GameID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameID
}

// SetGameID attaches the client to a game. An empty ID detaches it.
func (c *Client) SetGameID(gameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID = gameID
}

func (c *Client) reply(msgType, gameID string, payload any) {
	frame, err := encode(msgType, gameID, payload)
	if err != nil {
		c.hub.logger.Error("failed to encode reply", zap.String("type", msgType), zap.Error(err))
		return
	}
	if !c.enqueue(frame) {
		c.hub.logger.Warn("dropping reply for slow client", zap.String("client_id", c.id))
	}
}

// enqueue queues frame without blocking. It reports false when the client is
// closed or its buffer is full.
func (c *Client) enqueue(frame []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.detach(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read failed", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.reply(MsgError, "", ErrorPayload{
				Code:    CodeFromError(errBadRequest).String(),
				Message: "malformed message: " + err.Error(),
			})
			continue
		}
		c.hub.HandleMessage(c, msg)
	}
}

func (c *Client) writePump(writeTimeout time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// WebSocketServer exposes the hub over HTTP.
type WebSocketServer struct {
	logger   *zap.Logger
	cfg      config.WebSocketConfig
	hub      *Hub
	upgrader websocket.Upgrader
	server   *http.Server
}

// NewWebSocketServer creates the WebSocket front door for hub.
func NewWebSocketServer(cfg config.WebSocketConfig, hub *Hub, logger *zap.Logger) *WebSocketServer {
	if cfg.Path == "" {
		cfg.Path = "/ws"
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	s := &WebSocketServer{
		logger: logger,
		cfg:    cfg,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
	}
	s.server = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler serving the WebSocket endpoint and /healthz.
func (s *WebSocketServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// ListenAndServe blocks serving connections until Shutdown is called.
func (s *WebSocketServer) ListenAndServe() error {
	s.logger.Info("starting WebSocket server",
		zap.String("address", s.cfg.Address),
		zap.String("path", s.cfg.Path),
	)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *WebSocketServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *WebSocketServer) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(s.hub, conn)
	if !s.hub.attach(client) {
		conn.Close()
		return
	}

	go client.writePump(s.cfg.WriteTimeout)
	go client.readPump()
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
