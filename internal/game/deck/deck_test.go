package deck

import (
	"testing"

	"github.com/datadeck/datadeck-server-go/internal/game/cards"
	"github.com/datadeck/datadeck-server-go/internal/game/counters"
	"github.com/datadeck/datadeck-server-go/internal/game/targeting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildStarterDeck(t *testing.T, opts ...Option) *Deck {
	t.Helper()
	dragon, err := cards.NewCreatureCard("Fire Dragon", 5, cards.Legendary, 7, 5)
	require.NoError(t, err)
	bolt, err := cards.NewSpellCard("Lightning Bolt", 3, cards.Common, cards.EffectDamage, 3, targeting.Exactly(1))
	require.NoError(t, err)
	crystal, err := cards.NewArtifactCard("Mana Crystal", 2, cards.Epic, cards.ArtifactMana, 1, counters.Infinite)
	require.NoError(t, err)

	d := New(opts...)
	require.NoError(t, d.AddCard(dragon))
	require.NoError(t, d.AddCard(bolt))
	require.NoError(t, d.AddCard(crystal))
	return d
}

func ids(cs []cards.Card) map[string]int {
	m := make(map[string]int, len(cs))
	for _, c := range cs {
		m[c.ID()]++
	}
	return m
}

func TestAddCard(t *testing.T) {
	d := New()
	assert.ErrorIs(t, d.AddCard(nil), ErrNotACard)
	assert.Equal(t, 0, d.Len())
}

func TestAddCard_NilPointer(t *testing.T) {
	d := New()
	assert.ErrorIs(t, d.AddCard((*cards.CreatureCard)(nil)), ErrNotACard)
	assert.ErrorIs(t, d.AddCard((*cards.SpellCard)(nil)), ErrNotACard)
	assert.ErrorIs(t, d.AddCard((*cards.ArtifactCard)(nil)), ErrNotACard)
	assert.Equal(t, 0, d.Len())

	_, err := d.Stats()
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestAddCard_MaxSize(t *testing.T) {
	d := buildStarterDeck(t, WithMaxSize(3))
	extra, err := cards.NewCreatureCard("Goblin Warrior", 3, cards.Rare, 4, 6)
	require.NoError(t, err)
	assert.ErrorIs(t, d.AddCard(extra), ErrDeckFull)
	assert.Equal(t, 3, d.Len())
}

func TestRemoveCard(t *testing.T) {
	d := buildStarterDeck(t)
	assert.True(t, d.RemoveCard("Lightning Bolt"))
	assert.False(t, d.RemoveCard("Lightning Bolt"))
	assert.False(t, d.RemoveCard("Unknown"))
	assert.Equal(t, 2, d.Len())
}

func TestRemoveCard_FirstMatchOnly(t *testing.T) {
	d := New()
	for i := 0; i < 2; i++ {
		c, err := cards.NewCreatureCard("Goblin", 1, cards.Common, 1, 1)
		require.NoError(t, err)
		require.NoError(t, d.AddCard(c))
	}
	first := d.Cards()[0]
	assert.True(t, d.RemoveCard("Goblin"))
	require.Equal(t, 1, d.Len())
	assert.NotEqual(t, first.ID(), d.Cards()[0].ID())
}

func TestShufflePreservesCards(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		d := buildStarterDeck(t, WithSeed(seed))
		before := ids(d.Cards())

		d.Shuffle()

		assert.Equal(t, 3, d.Len())
		assert.Equal(t, before, ids(d.Cards()))
	}
}

func TestShuffleIsDeterministicForSeed(t *testing.T) {
	a := New(WithSeed(42))
	b := New(WithSeed(42))
	for i := 0; i < 10; i++ {
		c, err := cards.NewCreatureCard("Card", i, cards.Common, 1, 1)
		require.NoError(t, err)
		require.NoError(t, a.AddCard(c))
		require.NoError(t, b.AddCard(c))
	}
	a.Shuffle()
	b.Shuffle()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestShuffleEmptyDeck(t *testing.T) {
	d := New()
	d.Shuffle()
	assert.Equal(t, 0, d.Len())
}

func TestDrawUntilEmpty(t *testing.T) {
	d := buildStarterDeck(t, WithSeed(7))
	d.Shuffle()
	want := ids(d.Cards())

	got := make(map[string]int)
	for d.Len() > 0 {
		c, err := d.DrawCard()
		require.NoError(t, err)
		got[c.ID()]++
	}
	assert.Equal(t, want, got)

	_, err := d.DrawCard()
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestDrawTakesLastCard(t *testing.T) {
	d := buildStarterDeck(t)
	c, err := d.DrawCard()
	require.NoError(t, err)
	assert.Equal(t, "Mana Crystal", c.Name())
	assert.Equal(t, 2, d.Len())
}

func TestStats(t *testing.T) {
	d := buildStarterDeck(t)
	s, err := d.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, s.TotalCards)
	assert.Equal(t, 1, s.Creatures)
	assert.Equal(t, 1, s.Spells)
	assert.Equal(t, 1, s.Artifacts)
	assert.InDelta(t, 10.0/3.0, s.AvgCost, 1e-9)
}

func TestStatsEmptyDeck(t *testing.T) {
	_, err := New().Stats()
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestFingerprintIgnoresInstanceIDs(t *testing.T) {
	a := buildStarterDeck(t)
	b := buildStarterDeck(t)
	assert.Equal(t, a.Fingerprint().Hash, b.Fingerprint().Hash)
	assert.Len(t, a.Fingerprint().Hash, 64)

	b.RemoveCard("Fire Dragon")
	assert.NotEqual(t, a.Fingerprint().Hash, b.Fingerprint().Hash)
}
