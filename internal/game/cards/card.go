// Package cards implements the card model: a shared base record and the
// closed set of card kinds (creature, spell, artifact) that can be played
// against a mana.GameState.
package cards

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/datadeck/datadeck-server-go/internal/game/mana"
)

// Kind tags the concrete variant of a card.
type Kind string

const (
	KindCreature Kind = "Creature"
	KindSpell    Kind = "Spell"
	KindArtifact Kind = "Artifact"
)

// Card is the capability set shared by every card kind.
type Card interface {
	ID() string
	Name() string
	Cost() int
	Rarity() Rarity
	Kind() Kind

	// IsPlayable reports whether the card's cost fits in availableMana.
	IsPlayable(availableMana int) bool

	// Info returns the reporting view of the card.
	Info() Info

	// Play pays the cost from gs and applies the card. When the cost cannot be
	// paid the result has OutcomeNoEffect and gs is untouched.
	Play(gs *mana.GameState, targets []Card) (PlayResult, error)
}

// base holds the fields common to every card. They are immutable after construction.
type base struct {
	id     string
	name   string
	cost   int
	rarity Rarity
}

func newBase(name string, cost int, rarity Rarity) (base, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return base{}, invalid("name", name, ErrInvalidName)
	}
	if cost < 0 {
		return base{}, invalid("cost", cost, ErrInvalidCost)
	}
	r, ok := ParseRarity(string(rarity))
	if !ok {
		return base{}, invalid("rarity", rarity, ErrInvalidRarity)
	}
	return base{
		id:     uuid.NewString(),
		name:   capitalize(name),
		cost:   cost,
		rarity: r,
	}, nil
}

// capitalize upper-cases the first letter of every word and leaves the rest alone.
// A Caser keeps state, so one is built per call.
func capitalize(name string) string {
	return cases.Title(language.Und, cases.NoLower).String(name)
}

func (b *base) ID() string     { return b.id }
func (b *base) Name() string   { return b.name }
func (b *base) Cost() int      { return b.cost }
func (b *base) Rarity() Rarity { return b.rarity }

func (b *base) IsPlayable(availableMana int) bool {
	return b.cost <= availableMana
}

func (b *base) info(kind Kind) Info {
	return Info{
		Name:   b.name,
		Cost:   b.cost,
		Rarity: b.rarity,
		Type:   kind,
	}
}

// pay debits the card cost. It reports false, leaving gs untouched, when the
// cost cannot be covered.
func (b *base) pay(gs *mana.GameState) bool {
	if gs == nil || !b.IsPlayable(gs.Available()) {
		return false
	}
	return gs.Spend(b.cost)
}
