package cards

import (
	"errors"
	"fmt"
	"strings"

	"github.com/datadeck/datadeck-server-go/internal/game/mana"
	"github.com/datadeck/datadeck-server-go/internal/game/targeting"
)

// SpellEffect is the closed set of spell effects.
type SpellEffect string

const (
	EffectDamage SpellEffect = "damage"
	EffectHeal   SpellEffect = "heal"
	EffectBuff   SpellEffect = "buff"
	EffectDebuff SpellEffect = "debuff"
)

// ParseSpellEffect resolves an effect name case-insensitively.
func ParseSpellEffect(s string) (SpellEffect, bool) {
	e := SpellEffect(strings.ToLower(strings.TrimSpace(s)))
	switch e {
	case EffectDamage, EffectHeal, EffectBuff, EffectDebuff:
		return e, true
	default:
		return "", false
	}
}

// SpellCard is a single-use card that modifies creature targets.
type SpellCard struct {
	base
	effect   SpellEffect
	power    int
	policy   targeting.Policy
	consumed bool
}

// NewSpellCard validates and creates a spell.
func NewSpellCard(name string, cost int, rarity Rarity, effect SpellEffect, power int, policy targeting.Policy) (*SpellCard, error) {
	b, err := newBase(name, cost, rarity)
	if err != nil {
		return nil, err
	}
	e, ok := ParseSpellEffect(string(effect))
	if !ok {
		return nil, invalid("effect type", effect, ErrInvalidEffectType)
	}
	if power <= 0 {
		return nil, invalid("effect power", power, ErrInvalidEffectPower)
	}
	if _, err := targeting.NewPolicy(policy.Count, policy.Mode); err != nil {
		return nil, invalid("target policy", policy, ErrInvalidTargetPolicy)
	}
	return &SpellCard{base: b, effect: e, power: power, policy: policy}, nil
}

func (s *SpellCard) Kind() Kind { return KindSpell }

func (s *SpellCard) EffectType() SpellEffect { return s.effect }

func (s *SpellCard) EffectPower() int { return s.power }

func (s *SpellCard) Policy() targeting.Policy { return s.policy }

// Consumed reports whether the spell has been played.
func (s *SpellCard) Consumed() bool { return s.consumed }

// Description renders the effect, e.g. "Deal 3 damage to targets (exactly 1 target)".
func (s *SpellCard) Description() string {
	var text string
	switch s.effect {
	case EffectDamage:
		text = fmt.Sprintf("Deal %d damage", s.power)
	case EffectHeal:
		text = fmt.Sprintf("Heal %d health", s.power)
	case EffectBuff:
		text = fmt.Sprintf("Buff %d attack", s.power)
	case EffectDebuff:
		text = fmt.Sprintf("Debuff %d attack", s.power)
	default:
		text = fmt.Sprintf("Unknown %d", s.power)
	}
	return fmt.Sprintf("%s to targets (%s)", text, s.policy)
}

func (s *SpellCard) Info() Info {
	info := s.info(KindSpell)
	info.Spell = &SpellInfo{
		EffectType:  s.effect,
		EffectPower: s.power,
		Targets:     s.policy,
		Description: s.Description(),
		Consumed:    s.consumed,
	}
	return info
}

// Play casts the spell on targets. Targets are checked before any mana is
// spent, so a rejected cast leaves gs and every target untouched.
func (s *SpellCard) Play(gs *mana.GameState, targets []Card) (PlayResult, error) {
	if s.consumed {
		return PlayResult{}, ErrSpellConsumed
	}
	if gs == nil || !s.IsPlayable(gs.Available()) {
		return noEffect(), nil
	}
	creatures, err := s.checkTargets(targets)
	if err != nil {
		return PlayResult{}, err
	}
	if !s.pay(gs) {
		return noEffect(), nil
	}
	res, err := s.apply(creatures)
	if err != nil {
		return PlayResult{}, err
	}
	s.consumed = true
	return PlayResult{
		Outcome:    OutcomePlayed,
		CardPlayed: res.CardPlayed,
		ManaUsed:   res.ManaUsed,
		Spell: &SpellPlay{
			Effect:  s.Description(),
			Targets: res.Targets,
		},
	}, nil
}

// ResolveEffect applies the spell to targets without paying its cost.
// Every target must be a creature and the count must satisfy the target
// policy; both are checked before any target is modified.
func (s *SpellCard) ResolveEffect(targets []Card) (SpellResult, error) {
	if s.consumed {
		return SpellResult{}, ErrSpellConsumed
	}
	creatures, err := s.checkTargets(targets)
	if err != nil {
		return SpellResult{}, err
	}
	return s.apply(creatures)
}

func (s *SpellCard) checkTargets(targets []Card) ([]*CreatureCard, error) {
	creatures := make([]*CreatureCard, 0, len(targets))
	for _, t := range targets {
		c, ok := t.(*CreatureCard)
		if !ok || c == nil {
			return nil, ErrInvalidTarget
		}
		creatures = append(creatures, c)
	}
	if err := s.policy.Validate(len(creatures)); err != nil {
		if errors.Is(err, targeting.ErrCountMismatch) {
			return nil, fmt.Errorf("%w (%s, got %d)", ErrInvalidTargetCount, s.policy, len(creatures))
		}
		return nil, err
	}
	return creatures, nil
}

func (s *SpellCard) apply(targets []*CreatureCard) (SpellResult, error) {
	var modify func(c *CreatureCard)
	switch s.effect {
	case EffectDamage:
		modify = func(c *CreatureCard) { c.health -= s.power }
	case EffectHeal:
		modify = func(c *CreatureCard) { c.health += s.power }
	case EffectBuff:
		modify = func(c *CreatureCard) { c.attack += s.power }
	case EffectDebuff:
		modify = func(c *CreatureCard) { c.attack -= s.power }
	default:
		return SpellResult{}, ErrInvalidEffectType
	}

	names := make([]string, 0, len(targets))
	for _, c := range targets {
		modify(c)
		names = append(names, c.name)
	}
	return SpellResult{
		CardPlayed: s.name,
		ManaUsed:   s.cost,
		Targets:    names,
	}, nil
}
