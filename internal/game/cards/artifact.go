package cards

import (
	"errors"
	"fmt"
	"strings"

	"github.com/datadeck/datadeck-server-go/internal/game/counters"
	"github.com/datadeck/datadeck-server-go/internal/game/mana"
)

// ArtifactEffect is the closed set of recurring artifact effects.
type ArtifactEffect string

const (
	// ArtifactMana adds EffectPower mana to the game state on each activation.
	ArtifactMana ArtifactEffect = "mana"
)

// ParseArtifactEffect resolves an effect name case-insensitively.
func ParseArtifactEffect(s string) (ArtifactEffect, bool) {
	e := ArtifactEffect(strings.ToLower(strings.TrimSpace(s)))
	switch e {
	case ArtifactMana:
		return e, true
	default:
		return "", false
	}
}

// ArtifactCard is a permanent with a durability-gated recurring ability.
type ArtifactCard struct {
	base
	effect      ArtifactEffect
	power       int
	durability  *counters.Durability
	description string
}

// NewArtifactCard validates and creates an artifact. durability is the number
// of activations, or counters.Infinite for an ability that never wears out.
func NewArtifactCard(name string, cost int, rarity Rarity, effect ArtifactEffect, power, durability int) (*ArtifactCard, error) {
	b, err := newBase(name, cost, rarity)
	if err != nil {
		return nil, err
	}
	e, ok := ParseArtifactEffect(string(effect))
	if !ok {
		return nil, invalid("effect type", effect, ErrInvalidEffectType)
	}
	if power <= 0 {
		return nil, invalid("effect power", power, ErrInvalidEffectPower)
	}
	d, err := counters.NewDurability(durability)
	if err != nil {
		return nil, invalid("durability", durability, ErrInvalidDurability)
	}
	a := &ArtifactCard{base: b, effect: e, power: power, durability: d}
	a.description = a.describe()
	return a, nil
}

// describe is computed once at construction from the starting durability.
func (a *ArtifactCard) describe() string {
	switch a.effect {
	case ArtifactMana:
		return fmt.Sprintf("%s: +%d mana per turn.", a.durability.Label(), a.power)
	default:
		return ""
	}
}

func (a *ArtifactCard) Kind() Kind { return KindArtifact }

func (a *ArtifactCard) EffectType() ArtifactEffect { return a.effect }

func (a *ArtifactCard) EffectPower() int { return a.power }

// Durability returns the remaining uses, or counters.Infinite.
func (a *ArtifactCard) Durability() int { return a.durability.Remaining }

// Exhausted reports whether a finite durability has run out.
func (a *ArtifactCard) Exhausted() bool { return a.durability.Exhausted() }

func (a *ArtifactCard) Description() string { return a.description }

func (a *ArtifactCard) Info() Info {
	info := a.info(KindArtifact)
	info.Artifact = &ArtifactInfo{
		EffectType:  a.effect,
		EffectPower: a.power,
		Durability:  a.durability.String(),
		Description: a.description,
	}
	return info
}

// Play puts the artifact into play. Artifacts take no targets.
func (a *ArtifactCard) Play(gs *mana.GameState, targets []Card) (PlayResult, error) {
	if len(targets) > 0 {
		return PlayResult{}, ErrUnexpectedTargets
	}
	if !a.pay(gs) {
		return noEffect(), nil
	}
	return PlayResult{
		Outcome:    OutcomePlayed,
		CardPlayed: a.name,
		ManaUsed:   a.cost,
		Artifact:   &ArtifactPlay{Effect: a.description},
	}, nil
}

// ActivateAbility applies the recurring effect to gs and uses one durability.
// An artifact whose finite durability has reached zero fails with
// ErrExhaustedArtifact and changes nothing.
func (a *ArtifactCard) ActivateAbility(gs *mana.GameState) (ActivationResult, error) {
	if a.durability.Exhausted() {
		return ActivationResult{}, ErrExhaustedArtifact
	}

	switch a.effect {
	case ArtifactMana:
		if gs == nil {
			return ActivationResult{}, errors.New("activate ability: nil game state")
		}
		gs.Add(a.power)
	default:
		return ActivationResult{}, ErrInvalidEffectType
	}

	if err := a.durability.Use(); err != nil {
		return ActivationResult{}, ErrExhaustedArtifact
	}

	return ActivationResult{
		CardPlayed:       a.name,
		AbilityActivated: a.description,
		DurabilityRemaining: DurabilityRemaining{
			Permanent: a.durability.IsInfinite(),
			Uses:      a.durability.Remaining,
		},
	}, nil
}
