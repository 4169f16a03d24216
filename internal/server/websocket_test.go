package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/datadeck/datadeck-server-go/internal/config"
)

func startTestServer(t *testing.T, cfg config.WebSocketConfig) (*httptest.Server, *Hub) {
	t.Helper()
	h := newTestHub(t, HubSettings{})
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	ws := NewWebSocketServer(cfg, h, zaptest.NewLogger(t))
	srv := httptest.NewServer(ws.Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, h
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocketRoundTrip(t *testing.T) {
	srv, _ := startTestServer(t, config.WebSocketConfig{Path: "/ws"})

	owner := dial(t, srv)
	require.NoError(t, owner.WriteJSON(WSMessage{Type: MsgCreateGame}))
	created := readMessage(t, owner)
	require.Equal(t, MsgGameState, created.Type)
	require.NotEmpty(t, created.GameID)

	watcher := dial(t, srv)
	require.NoError(t, watcher.WriteJSON(WSMessage{Type: MsgJoinGame, GameID: created.GameID}))
	assert.Equal(t, MsgGameState, readMessage(t, watcher).Type)

	require.NoError(t, owner.WriteJSON(WSMessage{Type: MsgDraw}))
	assert.Equal(t, MsgCardDrawn, readMessage(t, owner).Type)
	assert.Equal(t, MsgGameState, readMessage(t, owner).Type)

	update := readMessage(t, watcher)
	assert.Equal(t, MsgGameState, update.Type)
	assert.Equal(t, created.GameID, update.GameID)
}

func TestWebSocketMalformedMessage(t *testing.T) {
	srv, _ := startTestServer(t, config.WebSocketConfig{Path: "/ws"})

	conn := dial(t, srv)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	msg := readMessage(t, conn)
	assert.Equal(t, MsgError, msg.Type)
	assert.Contains(t, string(msg.Data), "InvalidArgument")
}

func TestWebSocketHealthz(t *testing.T) {
	srv, _ := startTestServer(t, config.WebSocketConfig{})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOriginChecker(t *testing.T) {
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	open := originChecker(nil)
	assert.True(t, open(req("https://anywhere.example")))

	wildcard := originChecker([]string{"*"})
	assert.True(t, wildcard(req("https://anywhere.example")))

	strict := originChecker([]string{"https://play.example"})
	assert.True(t, strict(req("https://play.example")))
	assert.True(t, strict(req("")))
	assert.False(t, strict(req("https://evil.example")))
}

func TestWebSocketRejectsDisallowedOrigin(t *testing.T) {
	srv, _ := startTestServer(t, config.WebSocketConfig{Path: "/ws", AllowedOrigins: []string{"https://play.example"}})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
