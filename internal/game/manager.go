package game

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/datadeck/datadeck-server-go/internal/game/deck"
)

// ErrSessionLimit is returned by Create when MaxSessions sessions are live.
var ErrSessionLimit = errors.New("session limit reached")

// ManagerConfig holds the settings applied to every session a Manager creates.
type ManagerConfig struct {
	StartingMana int
	// ReplayDir enables replay recording; replays are written there when a
	// session is removed. Empty disables recording.
	ReplayDir string
	// MaxSessions caps the number of live sessions. Zero means no cap.
	MaxSessions int
}

// Manager tracks live sessions by ID.
type Manager struct {
	logger   *zap.Logger
	cfg      ManagerConfig
	recorder *ReplayRecorder

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager.
func NewManager(logger *zap.Logger, cfg ManagerConfig) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		logger:   logger,
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
	if cfg.ReplayDir != "" {
		m.recorder = NewReplayRecorder(logger, cfg.ReplayDir)
	}
	return m
}

// Create starts a session over d. It fails with ErrSessionLimit when the
// configured number of sessions is already live.
func (m *Manager) Create(d *deck.Deck) (*Session, error) {
	var opts []SessionOption
	if m.recorder != nil {
		opts = append(opts, WithRecorder(m.recorder))
	}

	m.mu.Lock()
	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: max %d", ErrSessionLimit, m.cfg.MaxSessions)
	}
	s := NewSession(m.logger, d, m.cfg.StartingMana, opts...)
	m.sessions[s.ID()] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("session created",
		zap.String("game_id", s.ID()),
		zap.Int("active_sessions", count),
	)
	return s, nil
}

// Get returns the session with the given ID.
func (m *Manager) Get(gameID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[gameID]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrGameNotFound)
	}
	return s, nil
}

// Remove ends a session, saving its replay when recording is enabled.
func (m *Manager) Remove(gameID string) error {
	m.mu.Lock()
	_, ok := m.sessions[gameID]
	delete(m.sessions, gameID)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("game %s: %w", gameID, ErrGameNotFound)
	}

	if m.recorder != nil {
		m.recorder.Stop(gameID)
		if err := m.recorder.Save(gameID); err != nil {
			m.logger.Warn("failed to save replay",
				zap.String("game_id", gameID),
				zap.Error(err),
			)
			return err
		}
	}

	m.logger.Info("session removed", zap.String("game_id", gameID))
	return nil
}

// Discard ends a session without saving its replay.
func (m *Manager) Discard(gameID string) error {
	m.mu.Lock()
	_, ok := m.sessions[gameID]
	delete(m.sessions, gameID)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("game %s: %w", gameID, ErrGameNotFound)
	}
	if m.recorder != nil {
		m.recorder.Forget(gameID)
	}

	m.logger.Info("session discarded", zap.String("game_id", gameID))
	return nil
}

// List returns the IDs of all live sessions in sorted order.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Replay returns the in-memory replay of a live session.
func (m *Manager) Replay(gameID string) (*Replay, bool) {
	if m.recorder == nil {
		return nil, false
	}
	return m.recorder.Replay(gameID)
}

// LoadReplay reads and verifies a saved replay from the replay directory.
func (m *Manager) LoadReplay(gameID string) (*Replay, error) {
	if m.recorder == nil {
		return nil, ErrReplaysDisabled
	}
	r, err := m.recorder.Load(gameID)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("replay loaded",
		zap.String("game_id", gameID),
		zap.Int("snapshots", r.Len()),
	)
	return r, nil
}

// History returns the replay of a game: the live recording while the
// session runs, the saved file after it has ended.
func (m *Manager) History(gameID string) (*Replay, error) {
	if m.recorder == nil {
		return nil, ErrReplaysDisabled
	}
	if r, ok := m.recorder.Replay(gameID); ok {
		return r, nil
	}
	return m.LoadReplay(gameID)
}

// Shutdown removes every session, saving replays where enabled.
func (m *Manager) Shutdown() {
	for _, id := range m.List() {
		if err := m.Remove(id); err != nil {
			m.logger.Warn("failed to close session", zap.String("game_id", id), zap.Error(err))
		}
	}
}
