package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datadeck/datadeck-server-go/internal/game/cards"
	"github.com/datadeck/datadeck-server-go/internal/game/deck"
	"github.com/datadeck/datadeck-server-go/internal/game/rules"
	"github.com/datadeck/datadeck-server-go/internal/game/targeting"
)

func TestSessionFullGame(t *testing.T) {
	s := newTestSession(t, 20)
	ids := drawAll(t, s)
	require.Len(t, ids, 4)

	state := s.State()
	assert.Equal(t, 0, state.DeckSize)
	assert.Len(t, state.Hand, 4)
	assert.Equal(t, 20, state.Mana.AvailableMana)

	res, err := s.Play(ids["Goblin Warrior"], nil)
	require.NoError(t, err)
	assert.True(t, res.Played())
	assert.Equal(t, 3, res.ManaUsed)

	res, err = s.Play(ids["Fire Dragon"], nil)
	require.NoError(t, err)
	assert.Equal(t, "Creature summoned to battlefield", res.Effect())
	assert.Equal(t, 12, s.State().Mana.AvailableMana)

	attack, err := s.Attack(ids["Fire Dragon"], ids["Goblin Warrior"])
	require.NoError(t, err)
	assert.Equal(t, 7, attack.DamageDealt)
	assert.True(t, attack.CombatResolved)

	state = s.State()
	require.Len(t, state.Battlefield, 1)
	assert.Equal(t, "Fire Dragon", state.Battlefield[0].Name)
	require.Len(t, state.Graveyard, 1)
	assert.Equal(t, "Goblin Warrior", state.Graveyard[0].Name)

	_, err = s.Play(ids["Lightning Bolt"], []string{ids["Goblin Warrior"]})
	assert.ErrorIs(t, err, ErrCardNotFound)

	res, err = s.Play(ids["Lightning Bolt"], []string{ids["Fire Dragon"]})
	require.NoError(t, err)
	require.NotNil(t, res.Spell)
	assert.Equal(t, []string{"Fire Dragon"}, res.Spell.Targets)
	assert.Equal(t, 9, s.State().Mana.AvailableMana)

	state = s.State()
	assert.Equal(t, 2, state.Battlefield[0].Creature.Health)
	assert.Len(t, state.Graveyard, 2)

	_, err = s.Play(ids["Mana Crystal"], nil)
	require.NoError(t, err)
	assert.Equal(t, 7, s.State().Mana.AvailableMana)

	for i := 0; i < 2; i++ {
		act, err := s.Activate(ids["Mana Crystal"])
		require.NoError(t, err)
		assert.Equal(t, "Permanent", act.DurabilityRemaining.String())
	}
	assert.Equal(t, 9, s.State().Mana.AvailableMana)
	assert.Equal(t, 2, s.ActivationCount(ids["Mana Crystal"]))

	stats := s.Stats()
	assert.Nil(t, stats.Deck)
	assert.Equal(t, 4, stats.CardsDrawn)
	assert.Equal(t, 1, stats.SpellsCast)
	assert.Equal(t, 1, stats.CreaturesDefeated)
	assert.Equal(t, 13, stats.ManaSpent)
	assert.Equal(t, 2, stats.ManaGenerated)
}

func TestSessionPlayUnaffordable(t *testing.T) {
	s := newTestSession(t, 1)
	ids := drawAll(t, s)

	res, err := s.Play(ids["Fire Dragon"], nil)
	require.NoError(t, err)
	assert.Equal(t, cards.OutcomeNoEffect, res.Outcome)
	assert.Equal(t, 1, s.State().Mana.AvailableMana)
	assert.Len(t, s.State().Hand, 4)
	assert.Empty(t, s.State().Battlefield)
}

func TestSessionSpellTargetCountLeavesStateUntouched(t *testing.T) {
	s := newTestSession(t, 20)
	ids := drawAll(t, s)
	_, err := s.Play(ids["Goblin Warrior"], nil)
	require.NoError(t, err)
	_, err = s.Play(ids["Fire Dragon"], nil)
	require.NoError(t, err)

	_, err = s.Play(ids["Lightning Bolt"], []string{ids["Goblin Warrior"], ids["Fire Dragon"]})
	assert.ErrorIs(t, err, cards.ErrInvalidTargetCount)
	assert.Equal(t, 12, s.State().Mana.AvailableMana)
	assert.Len(t, s.State().Hand, 2)
	assert.Equal(t, 0, s.Stats().SpellsCast)
}

func TestSessionSpellOnArtifactIsInvalidTarget(t *testing.T) {
	s := newTestSession(t, 20)
	ids := drawAll(t, s)
	_, err := s.Play(ids["Mana Crystal"], nil)
	require.NoError(t, err)

	_, err = s.Play(ids["Lightning Bolt"], []string{ids["Mana Crystal"]})
	assert.ErrorIs(t, err, cards.ErrInvalidTarget)
	assert.Equal(t, 18, s.State().Mana.AvailableMana)
}

func TestSessionAttackRequiresBattlefield(t *testing.T) {
	s := newTestSession(t, 20)
	ids := drawAll(t, s)
	_, err := s.Play(ids["Goblin Warrior"], nil)
	require.NoError(t, err)

	_, err = s.Attack(ids["Fire Dragon"], ids["Goblin Warrior"])
	assert.ErrorIs(t, err, ErrNotOnBoard)

	_, err = s.Attack(ids["Goblin Warrior"], "missing")
	assert.ErrorIs(t, err, ErrCardNotFound)

	_, err = s.Play(ids["Mana Crystal"], nil)
	require.NoError(t, err)
	_, err = s.Attack(ids["Mana Crystal"], ids["Goblin Warrior"])
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestSessionSpellRejectsDuplicateTargets(t *testing.T) {
	goblin, err := cards.NewCreatureCard("Goblin", 1, cards.Common, 2, 6)
	require.NoError(t, err)
	heal, err := cards.NewSpellCard("Heal", 2, cards.Common, cards.EffectHeal, 3, targeting.Exactly(2))
	require.NoError(t, err)
	d := deck.New()
	require.NoError(t, d.AddCard(heal))
	require.NoError(t, d.AddCard(goblin))

	s := NewSession(nil, d, 10)
	ids := drawAll(t, s)
	_, err = s.Play(ids["Goblin"], nil)
	require.NoError(t, err)

	_, err = s.Play(ids["Heal"], []string{ids["Goblin"], ids["Goblin"]})
	assert.ErrorIs(t, err, cards.ErrInvalidTarget)
	assert.Equal(t, 6, goblin.Health())
	assert.Equal(t, 9, s.State().Mana.AvailableMana)
	assert.False(t, heal.Consumed())
	assert.Len(t, s.State().Hand, 1)
}

func TestSessionAttackSelf(t *testing.T) {
	s := newTestSession(t, 20)
	ids := drawAll(t, s)
	_, err := s.Play(ids["Goblin Warrior"], nil)
	require.NoError(t, err)

	_, err = s.Attack(ids["Goblin Warrior"], ids["Goblin Warrior"])
	assert.ErrorIs(t, err, ErrSelfAttack)

	state := s.State()
	require.Len(t, state.Battlefield, 1)
	assert.Equal(t, 6, state.Battlefield[0].Creature.Health)
}

func TestSessionZeroHealthCreatureStaysUntilDamaged(t *testing.T) {
	wisp, err := cards.NewCreatureCard("Wisp", 0, cards.Common, 0, 0)
	require.NoError(t, err)
	goblin, err := cards.NewCreatureCard("Goblin", 1, cards.Common, 2, 3)
	require.NoError(t, err)
	d := deck.New()
	require.NoError(t, d.AddCard(goblin))
	require.NoError(t, d.AddCard(wisp))

	s := NewSession(nil, d, 5)
	ids := drawAll(t, s)
	res, err := s.Play(ids["Wisp"], nil)
	require.NoError(t, err)
	assert.True(t, res.Played())

	// Defeat is only checked after damage, so a summoned 0-health creature stays.
	assert.True(t, wisp.Defeated())
	require.Len(t, s.State().Battlefield, 1)
	assert.Empty(t, s.State().Graveyard)

	_, err = s.Play(ids["Goblin"], nil)
	require.NoError(t, err)
	atk, err := s.Attack(ids["Goblin"], ids["Wisp"])
	require.NoError(t, err)
	assert.True(t, atk.CombatResolved)

	state := s.State()
	require.Len(t, state.Battlefield, 1)
	assert.Equal(t, "Goblin", state.Battlefield[0].Name)
	require.Len(t, state.Graveyard, 1)
	assert.Equal(t, "Wisp", state.Graveyard[0].Name)
	assert.Equal(t, 1, s.Stats().CreaturesDefeated)
}

func TestSessionActivateErrors(t *testing.T) {
	s := newTestSession(t, 20)
	ids := drawAll(t, s)

	_, err := s.Activate(ids["Mana Crystal"])
	assert.ErrorIs(t, err, ErrNotOnBoard)

	_, err = s.Play(ids["Goblin Warrior"], nil)
	require.NoError(t, err)
	_, err = s.Activate(ids["Goblin Warrior"])
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestSessionExhaustedArtifact(t *testing.T) {
	totem, err := cards.NewArtifactCard("Mana Totem", 1, cards.Uncommon, cards.ArtifactMana, 2, 1)
	require.NoError(t, err)
	d := deck.New()
	require.NoError(t, d.AddCard(totem))

	s := NewSession(nil, d, 5)
	v, err := s.Draw()
	require.NoError(t, err)
	_, err = s.Play(v.ID, nil)
	require.NoError(t, err)

	var exhausted int
	s.Events().SubscribeTyped(rules.EventArtifactExhausted, func(rules.Event) { exhausted++ })

	act, err := s.Activate(v.ID)
	require.NoError(t, err)
	assert.Equal(t, "0", act.DurabilityRemaining.String())
	assert.Equal(t, 1, exhausted)
	assert.Equal(t, 6, s.State().Mana.AvailableMana)

	_, err = s.Activate(v.ID)
	assert.ErrorIs(t, err, cards.ErrExhaustedArtifact)
	assert.Equal(t, 6, s.State().Mana.AvailableMana)
}

func TestSessionDrawEmptyDeck(t *testing.T) {
	s := NewSession(nil, deck.New(), 0)
	_, err := s.Draw()
	assert.ErrorIs(t, err, deck.ErrEmptyDeck)
}

func TestSessionPlayUnknownCard(t *testing.T) {
	s := newTestSession(t, 20)
	ids := drawAll(t, s)

	_, err := s.Play("missing", nil)
	assert.ErrorIs(t, err, ErrCardNotFound)

	_, err = s.Play(ids["Goblin Warrior"], nil)
	require.NoError(t, err)
	_, err = s.Play(ids["Goblin Warrior"], nil)
	assert.ErrorIs(t, err, ErrCardNotFound)

	_, err = s.Play(ids["Fire Dragon"], []string{ids["Goblin Warrior"]})
	assert.ErrorIs(t, err, cards.ErrUnexpectedTargets)
}

func TestSessionStatsBeforeDraw(t *testing.T) {
	s := newTestSession(t, 10)
	stats := s.Stats()
	require.NotNil(t, stats.Deck)
	assert.Equal(t, 4, stats.Deck.TotalCards)
	assert.Equal(t, 2, stats.Deck.Creatures)
	assert.InDelta(t, 13.0/4.0, stats.Deck.AvgCost, 1e-9)
}

func TestSessionEventOrder(t *testing.T) {
	s := newTestSession(t, 20)
	ids := drawAll(t, s)

	var seen []rules.EventType
	s.Events().Subscribe(func(e rules.Event) { seen = append(seen, e.Type) })

	_, err := s.Play(ids["Fire Dragon"], nil)
	require.NoError(t, err)
	assert.Equal(t, []rules.EventType{
		rules.EventManaPaid,
		rules.EventCreatureSummoned,
		rules.EventCardPlayed,
	}, seen)
}
