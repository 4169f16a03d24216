package cards

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreatureCard_Validation(t *testing.T) {
	tests := []struct {
		name    string
		card    string
		cost    int
		rarity  Rarity
		attack  int
		health  int
		wantErr error
		field   string
	}{
		{"empty name", "", 1, Common, 1, 1, ErrInvalidName, "name"},
		{"blank name", "   ", 1, Common, 1, 1, ErrInvalidName, "name"},
		{"negative cost", "Goblin", -1, Common, 1, 1, ErrInvalidCost, "cost"},
		{"empty rarity", "Goblin", 1, "", 1, 1, ErrInvalidRarity, "rarity"},
		{"unknown rarity", "Goblin", 1, "Mythic", 1, 1, ErrInvalidRarity, "rarity"},
		{"negative attack", "Goblin", 1, Common, -1, 1, ErrInvalidAttack, "attack"},
		{"negative health", "Goblin", 1, Common, 1, -1, ErrInvalidHealth, "health"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCreatureCard(tt.card, tt.cost, tt.rarity, tt.attack, tt.health)
			require.Error(t, err)
			assert.Nil(t, c, "no partially constructed card")
			assert.ErrorIs(t, err, tt.wantErr)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestNewCreatureCard_ZeroValuesAllowed(t *testing.T) {
	c, err := NewCreatureCard("Wall", 0, Common, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Cost())
	assert.True(t, c.Defeated())
}

func TestCardNameIsCapitalized(t *testing.T) {
	c, err := NewCreatureCard("fire dragon", 5, "legendary", 7, 5)
	require.NoError(t, err)
	assert.Equal(t, "Fire Dragon", c.Name())
	assert.Equal(t, Legendary, c.Rarity())
	assert.NotEmpty(t, c.ID())
}

func TestIsPlayable(t *testing.T) {
	c, err := NewCreatureCard("Goblin Warrior", 3, Rare, 4, 6)
	require.NoError(t, err)

	for mana := 0; mana <= 6; mana++ {
		assert.Equal(t, c.Cost() <= mana, c.IsPlayable(mana), "mana=%d", mana)
	}
}

func TestCardInfo(t *testing.T) {
	dragon := mustCreature(t, "Fire Dragon", 5, 7, 5)
	info := dragon.Info()
	assert.Equal(t, "Fire Dragon", info.Name)
	assert.Equal(t, 5, info.Cost)
	assert.Equal(t, Legendary, info.Rarity)
	assert.Equal(t, KindCreature, info.Type)
	require.NotNil(t, info.Creature)
	assert.Nil(t, info.Spell)
	assert.Nil(t, info.Artifact)
	assert.Equal(t, 7, info.Creature.Attack)
	assert.Equal(t, 5, info.Creature.Health)

	bolt := mustBolt(t)
	info = bolt.Info()
	assert.Equal(t, KindSpell, info.Type)
	require.NotNil(t, info.Spell)
	assert.Equal(t, "Deal 3 damage to targets (exactly 1 target)", info.Spell.Description)

	crystal := mustCrystal(t, -1)
	info = crystal.Info()
	assert.Equal(t, KindArtifact, info.Type)
	require.NotNil(t, info.Artifact)
	assert.Equal(t, "Permanent", info.Artifact.Durability)
	assert.Equal(t, "Permanent: +1 mana per turn.", info.Artifact.Description)
}

func TestValidationErrorMessage(t *testing.T) {
	_, err := NewCreatureCard("Goblin", -2, Common, 1, 1)
	require.Error(t, err)
	assert.Equal(t, "invalid cost -2: cost has to be a non-negative integer", err.Error())
}
