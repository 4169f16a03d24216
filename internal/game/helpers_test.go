package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/datadeck/datadeck-server-go/internal/game/cards"
	"github.com/datadeck/datadeck-server-go/internal/game/counters"
	"github.com/datadeck/datadeck-server-go/internal/game/deck"
	"github.com/datadeck/datadeck-server-go/internal/game/targeting"
)

// starterDeck returns the reference deck: Goblin Warrior, Lightning Bolt,
// Fire Dragon and Mana Crystal (drawn in reverse order).
func starterDeck(t *testing.T) *deck.Deck {
	t.Helper()
	goblin, err := cards.NewCreatureCard("Goblin Warrior", 3, cards.Rare, 4, 6)
	require.NoError(t, err)
	bolt, err := cards.NewSpellCard("Lightning Bolt", 3, cards.Common, cards.EffectDamage, 3, targeting.Exactly(1))
	require.NoError(t, err)
	dragon, err := cards.NewCreatureCard("Fire Dragon", 5, cards.Legendary, 7, 5)
	require.NoError(t, err)
	crystal, err := cards.NewArtifactCard("Mana Crystal", 2, cards.Epic, cards.ArtifactMana, 1, counters.Infinite)
	require.NoError(t, err)

	d := deck.New(deck.WithSeed(1))
	for _, c := range []cards.Card{goblin, bolt, dragon, crystal} {
		require.NoError(t, d.AddCard(c))
	}
	return d
}

// drawAll draws the whole deck and indexes the hand by card name.
func drawAll(t *testing.T, s *Session) map[string]string {
	t.Helper()
	ids := make(map[string]string)
	for s.State().DeckSize > 0 {
		v, err := s.Draw()
		require.NoError(t, err)
		ids[v.Name] = v.ID
	}
	return ids
}

func newTestSession(t *testing.T, startingMana int) *Session {
	t.Helper()
	return NewSession(zaptest.NewLogger(t), starterDeck(t), startingMana)
}
