package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"

	"github.com/datadeck/datadeck-server-go/internal/catalog"
	"github.com/datadeck/datadeck-server-go/internal/game"
	"github.com/datadeck/datadeck-server-go/internal/game/deck"
)

// Message types sent and received over the WebSocket.
const (
	MsgCreateGame = "create_game"
	MsgJoinGame   = "join_game"
	MsgLeaveGame  = "leave_game"
	MsgDraw       = "draw"
	MsgShuffle    = "shuffle"
	MsgPlay       = "play"
	MsgAttack     = "attack"
	MsgActivate   = "activate"
	MsgState      = "state"
	MsgStats      = "stats"
	MsgListDecks  = "list_decks"
	MsgReplay     = "replay"

	MsgGameState        = "game_state"
	MsgCardDrawn        = "card_drawn"
	MsgPlayResult       = "play_result"
	MsgAttackResult     = "attack_result"
	MsgActivationResult = "activation_result"
	MsgGameStats        = "game_stats"
	MsgDecks            = "decks"
	MsgReplayFrames     = "replay_frames"
	MsgGameClosed       = "game_closed"
	MsgError            = "error"
)

// WSMessage is the envelope of every WebSocket frame.
type WSMessage struct {
	Type   string          `json:"type"`
	GameID string          `json:"game_id,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// ErrorPayload is the data of an error reply. Code is a gRPC code name.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type createGameRequest struct {
	Deck string `json:"deck"`
}

type playRequest struct {
	CardID    string   `json:"card_id"`
	TargetIDs []string `json:"target_ids"`
}

type attackRequest struct {
	AttackerID string `json:"attacker_id"`
	TargetID   string `json:"target_id"`
}

type activateRequest struct {
	CardID string `json:"card_id"`
}

type replayRequest struct {
	From  int `json:"from"`
	Limit int `json:"limit"`
}

// defaultReplayPage is the number of snapshots sent when a replay request
// has no limit.
const defaultReplayPage = 50

// ReplayFrames is one page of a game's snapshot history.
type ReplayFrames struct {
	GameID    string           `json:"game_id"`
	Total     int              `json:"total"`
	From      int              `json:"from"`
	Snapshots []*game.Snapshot `json:"snapshots"`
}

// HubSettings controls how the hub creates games.
type HubSettings struct {
	DefaultDeck string
	MaxDeckSize int
	Seed        int64
}

// Hub routes WebSocket commands to game sessions and fans state out to every
// client attached to the same game.
type Hub struct {
	logger   *zap.Logger
	manager  *game.Manager
	catalog  *catalog.Catalog
	settings HubSettings

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu      sync.RWMutex
	clients map[*Client]bool
}

// NewHub creates a hub. A nil catalog falls back to the built-in starter deck.
func NewHub(manager *game.Manager, cat *catalog.Catalog, settings HubSettings, logger *zap.Logger) *Hub {
	if cat == nil {
		cat = catalog.Default()
	}
	if settings.DefaultDeck == "" {
		settings.DefaultDeck = "starter"
	}
	return &Hub{
		logger:     logger,
		manager:    manager,
		catalog:    cat,
		settings:   settings,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
	}
}

// Run registers and unregisters clients until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("client registered", zap.String("client_id", client.id))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
			}
			h.mu.Unlock()
			h.logger.Debug("client unregistered", zap.String("client_id", client.id))

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.close()
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) attach(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleMessage executes one client command and queues the replies.
func (h *Hub) HandleMessage(client *Client, msg WSMessage) {
	h.logger.Debug("received message",
		zap.String("type", msg.Type),
		zap.String("client_id", client.id),
		zap.String("game_id", client.GameID()),
	)

	if err := h.dispatch(client, msg); err != nil {
		code := CodeFromError(err)
		if code == codes.Internal {
			h.logger.Error("command failed", zap.String("type", msg.Type), zap.Error(err))
		}
		client.reply(MsgError, client.GameID(), ErrorPayload{
			Code:    code.String(),
			Message: err.Error(),
		})
	}
}

func (h *Hub) dispatch(client *Client, msg WSMessage) error {
	switch msg.Type {
	case MsgCreateGame:
		var req createGameRequest
		if err := decode(msg.Data, &req); err != nil {
			return err
		}
		s, err := h.createGame(req.Deck)
		if err != nil {
			return err
		}
		client.SetGameID(s.ID())
		client.reply(MsgGameState, s.ID(), s.State())
		return nil

	case MsgJoinGame:
		s, err := h.manager.Get(msg.GameID)
		if err != nil {
			return err
		}
		client.SetGameID(s.ID())
		client.reply(MsgGameState, s.ID(), s.State())
		return nil

	case MsgListDecks:
		client.reply(MsgDecks, "", h.catalog.Names())
		return nil

	case MsgReplay:
		var req replayRequest
		if err := decode(msg.Data, &req); err != nil {
			return err
		}
		frames, err := h.replay(client, msg.GameID, req)
		if err != nil {
			return err
		}
		client.reply(MsgReplayFrames, frames.GameID, frames)
		return nil
	}

	s, err := h.session(client, msg)
	if err != nil {
		return err
	}

	switch msg.Type {
	case MsgLeaveGame:
		if err := h.manager.Remove(s.ID()); err != nil {
			return err
		}
		h.broadcast(s.ID(), MsgGameClosed, struct{}{})
		client.SetGameID("")

	case MsgDraw:
		card, err := s.Draw()
		if err != nil {
			return err
		}
		client.reply(MsgCardDrawn, s.ID(), card)
		h.broadcastState(s)

	case MsgShuffle:
		s.Shuffle()
		h.broadcastState(s)

	case MsgPlay:
		var req playRequest
		if err := decode(msg.Data, &req); err != nil {
			return err
		}
		res, err := s.Play(req.CardID, req.TargetIDs)
		if err != nil {
			return err
		}
		client.reply(MsgPlayResult, s.ID(), res)
		h.broadcastState(s)

	case MsgAttack:
		var req attackRequest
		if err := decode(msg.Data, &req); err != nil {
			return err
		}
		res, err := s.Attack(req.AttackerID, req.TargetID)
		if err != nil {
			return err
		}
		client.reply(MsgAttackResult, s.ID(), res)
		h.broadcastState(s)

	case MsgActivate:
		var req activateRequest
		if err := decode(msg.Data, &req); err != nil {
			return err
		}
		res, err := s.Activate(req.CardID)
		if err != nil {
			return err
		}
		client.reply(MsgActivationResult, s.ID(), res)
		h.broadcastState(s)

	case MsgState:
		client.reply(MsgGameState, s.ID(), s.State())

	case MsgStats:
		client.reply(MsgGameStats, s.ID(), s.Stats())

	default:
		return fmt.Errorf("%w: unknown message type %q", errBadRequest, msg.Type)
	}
	return nil
}

func (h *Hub) createGame(deckName string) (*game.Session, error) {
	if deckName == "" {
		deckName = h.settings.DefaultDeck
	}
	defs, err := h.catalog.Deck(deckName)
	if err != nil {
		return nil, err
	}

	var opts []deck.Option
	if h.settings.MaxDeckSize > 0 {
		opts = append(opts, deck.WithMaxSize(h.settings.MaxDeckSize))
	}
	if h.settings.Seed != 0 {
		opts = append(opts, deck.WithSeed(h.settings.Seed))
	}
	d, err := catalog.BuildDeck(defs, opts...)
	if err != nil {
		return nil, fmt.Errorf("build deck %s: %w", deckName, err)
	}
	return h.manager.Create(d)
}

// replay pages through the history of a live or finished game. Saved
// replays are checksum-verified on load.
func (h *Hub) replay(client *Client, gameID string, req replayRequest) (*ReplayFrames, error) {
	if gameID == "" {
		gameID = client.GameID()
	}
	if gameID == "" {
		return nil, fmt.Errorf("%w: no game selected", errBadRequest)
	}
	if req.From < 0 || req.Limit < 0 {
		return nil, fmt.Errorf("%w: from and limit must not be negative", errBadRequest)
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultReplayPage
	}

	r, err := h.manager.History(gameID)
	if err != nil {
		return nil, err
	}
	return &ReplayFrames{
		GameID:    gameID,
		Total:     r.Len(),
		From:      req.From,
		Snapshots: r.Frames(req.From, limit),
	}, nil
}

// session resolves the game a command addresses: the explicit game_id, or
// the game the client last created or joined.
func (h *Hub) session(client *Client, msg WSMessage) (*game.Session, error) {
	gameID := msg.GameID
	if gameID == "" {
		gameID = client.GameID()
	}
	if gameID == "" {
		return nil, fmt.Errorf("%w: no game selected", errBadRequest)
	}
	return h.manager.Get(gameID)
}

func (h *Hub) broadcastState(s *game.Session) {
	h.broadcast(s.ID(), MsgGameState, s.State())
}

func (h *Hub) broadcast(gameID, msgType string, payload any) {
	frame, err := encode(msgType, gameID, payload)
	if err != nil {
		h.logger.Error("failed to encode broadcast", zap.String("type", msgType), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.GameID() != gameID {
			continue
		}
		if !client.enqueue(frame) {
			h.logger.Warn("dropping message for slow client", zap.String("client_id", client.id))
		}
	}
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func encode(msgType, gameID string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(WSMessage{Type: msgType, GameID: gameID, Data: data})
}
