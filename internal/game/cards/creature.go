package cards

import "github.com/datadeck/datadeck-server-go/internal/game/mana"

const creatureSummoned = "Creature summoned to battlefield"

// CreatureCard is a card that stays on the battlefield and fights.
// Health may drop to zero or below once in play; that means the creature is defeated.
type CreatureCard struct {
	base
	attack  int
	health  int
	onBoard bool
}

// NewCreatureCard validates and creates a creature.
func NewCreatureCard(name string, cost int, rarity Rarity, attack, health int) (*CreatureCard, error) {
	b, err := newBase(name, cost, rarity)
	if err != nil {
		return nil, err
	}
	if attack < 0 {
		return nil, invalid("attack", attack, ErrInvalidAttack)
	}
	if health < 0 {
		return nil, invalid("health", health, ErrInvalidHealth)
	}
	return &CreatureCard{base: b, attack: attack, health: health}, nil
}

func (c *CreatureCard) Kind() Kind { return KindCreature }

func (c *CreatureCard) Attack() int { return c.attack }

func (c *CreatureCard) Health() int { return c.health }

// OnBoard reports whether the creature has been played.
func (c *CreatureCard) OnBoard() bool { return c.onBoard }

// Defeated reports whether health has dropped to zero or below.
func (c *CreatureCard) Defeated() bool { return c.health <= 0 }

func (c *CreatureCard) Info() Info {
	info := c.info(KindCreature)
	info.Creature = &CreatureInfo{
		Attack:  c.attack,
		Health:  c.health,
		OnBoard: c.onBoard,
	}
	return info
}

// Play summons the creature. Creatures take no targets.
func (c *CreatureCard) Play(gs *mana.GameState, targets []Card) (PlayResult, error) {
	if len(targets) > 0 {
		return PlayResult{}, ErrUnexpectedTargets
	}
	if !c.pay(gs) {
		return noEffect(), nil
	}
	c.onBoard = true
	return PlayResult{
		Outcome:    OutcomePlayed,
		CardPlayed: c.name,
		ManaUsed:   c.cost,
		Creature:   &CreaturePlay{Effect: creatureSummoned},
	}, nil
}

// AttackTarget deals this creature's attack to target's health.
// There is no retaliation and no zone check.
func (c *CreatureCard) AttackTarget(target *CreatureCard) AttackResult {
	target.health -= c.attack
	return AttackResult{
		Attacker:       c.name,
		Target:         target.name,
		DamageDealt:    c.attack,
		CombatResolved: target.health <= 0,
	}
}
