package cards

import (
	"testing"

	"github.com/datadeck/datadeck-server-go/internal/game/targeting"
	"github.com/stretchr/testify/require"
)

func mustCreature(t *testing.T, name string, cost, attack, health int) *CreatureCard {
	t.Helper()
	c, err := NewCreatureCard(name, cost, Legendary, attack, health)
	require.NoError(t, err)
	return c
}

func mustBolt(t *testing.T) *SpellCard {
	t.Helper()
	s, err := NewSpellCard("Lightning Bolt", 3, Common, EffectDamage, 3, targeting.Exactly(1))
	require.NoError(t, err)
	return s
}

func mustCrystal(t *testing.T, durability int) *ArtifactCard {
	t.Helper()
	a, err := NewArtifactCard("Mana Crystal", 2, Epic, ArtifactMana, 1, durability)
	require.NoError(t, err)
	return a
}
