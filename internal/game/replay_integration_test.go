package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReplayRecordingDuringGameplay(t *testing.T) {
	logger := zap.NewNop()
	rr := NewReplayRecorder(logger, t.TempDir())
	s := NewSession(logger, starterDeck(t), 10, WithRecorder(rr))

	assert.True(t, rr.Active(s.ID()))

	// NewSession records the opening state
	replay, exists := rr.Replay(s.ID())
	require.True(t, exists)
	assert.Equal(t, 1, replay.Len())

	ids := drawAll(t, s)
	_, err := s.Play(ids["Goblin Warrior"], nil)
	require.NoError(t, err)
	assert.Equal(t, 6, replay.Len())

	// Rejected actions leave no snapshot
	_, err = s.Activate(ids["Fire Dragon"])
	require.Error(t, err)
	_, err = s.Attack(ids["Goblin Warrior"], ids["Goblin Warrior"])
	require.Error(t, err)
	assert.Equal(t, 6, replay.Len())

	rr.Stop(s.ID())
	s.Shuffle()
	assert.Equal(t, 6, replay.Len(), "no snapshots after stopping")
}

func TestReplayFollowsGameplay(t *testing.T) {
	logger := zap.NewNop()
	rr := NewReplayRecorder(logger, t.TempDir())
	s := NewSession(logger, starterDeck(t), 10, WithRecorder(rr))

	ids := drawAll(t, s)
	_, err := s.Play(ids["Mana Crystal"], nil)
	require.NoError(t, err)
	_, err = s.Activate(ids["Mana Crystal"])
	require.NoError(t, err)

	replay, exists := rr.Replay(s.ID())
	require.True(t, exists)
	require.Equal(t, 7, replay.Len())

	actions := make([]string, 0, replay.Len())
	for _, snap := range replay.Frames(0, 0) {
		actions = append(actions, snap.Action)
	}
	assert.Equal(t, []string{"start", "draw", "draw", "draw", "draw", "play", "activate"}, actions)

	first := replay.At(0)
	assert.Equal(t, 4, first.DeckSize)
	assert.Empty(t, first.Hand)

	played := replay.At(5)
	assert.Equal(t, 8, played.Mana)
	require.Len(t, played.Battlefield, 1)
	assert.Equal(t, "Mana Crystal", played.Battlefield[0].Name)

	assert.Equal(t, 9, replay.Last().Mana)
	require.NoError(t, VerifyReplay(replay))
}

func TestReplayCleanupOnDiscard(t *testing.T) {
	m := NewManager(zap.NewNop(), ManagerConfig{StartingMana: 10, ReplayDir: t.TempDir()})
	s, err := m.Create(starterDeck(t))
	require.NoError(t, err)
	drawAll(t, s)

	_, exists := m.Replay(s.ID())
	require.True(t, exists)

	require.NoError(t, m.Discard(s.ID()))
	_, exists = m.Replay(s.ID())
	assert.False(t, exists)

	_, err = m.LoadReplay(s.ID())
	assert.ErrorIs(t, err, ErrReplayNotFound, "discarded sessions are not saved")
	assert.ErrorIs(t, m.Discard(s.ID()), ErrGameNotFound)
}
