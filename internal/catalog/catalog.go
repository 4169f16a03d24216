// Package catalog describes cards as plain data and builds engine cards and
// decks from those descriptions. Definitions come from a YAML deck list or
// from the Postgres card store.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/datadeck/datadeck-server-go/internal/game/cards"
	"github.com/datadeck/datadeck-server-go/internal/game/counters"
	"github.com/datadeck/datadeck-server-go/internal/game/deck"
	"github.com/datadeck/datadeck-server-go/internal/game/targeting"
)

var (
	// ErrUnknownDeck is returned when a deck name is not in the catalog.
	ErrUnknownDeck = errors.New("unknown deck")
	// ErrUnknownType is returned for a definition whose type is not a card kind.
	ErrUnknownType = errors.New("unknown card type")
)

// Durability is an artifact durability as written in a deck list: a
// non-negative count or the word "permanent".
type Durability int

// ParseDurability parses a durability written as a count or as one of
// "permanent", "infinite".
func ParseDurability(s string) (Durability, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "permanent", "infinite":
		return Durability(counters.Infinite), nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("durability %q: %w", s, err)
	}
	return Durability(n), nil
}

// UnmarshalYAML accepts an integer or one of "permanent", "infinite".
func (d *Durability) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: durability must be a scalar", value.Line)
	}
	parsed, err := ParseDurability(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = parsed
	return nil
}

// MarshalYAML writes infinite durability as "permanent".
func (d Durability) MarshalYAML() (interface{}, error) {
	if int(d) == counters.Infinite {
		return "permanent", nil
	}
	return int(d), nil
}

// Uses returns a finite durability of n uses.
func Uses(n int) *Durability {
	d := Durability(n)
	return &d
}

// Permanent returns an infinite durability.
func Permanent() *Durability {
	return Uses(counters.Infinite)
}

// Definition describes one card. Fields that do not apply to Type are ignored.
// An artifact without a durability is permanent.
type Definition struct {
	Name   string `yaml:"name" json:"name"`
	Type   string `yaml:"type" json:"type"`
	Cost   int    `yaml:"cost" json:"cost"`
	Rarity string `yaml:"rarity" json:"rarity"`

	Attack int `yaml:"attack,omitempty" json:"attack,omitempty"`
	Health int `yaml:"health,omitempty" json:"health,omitempty"`

	Effect      string      `yaml:"effect,omitempty" json:"effect,omitempty"`
	Power       int         `yaml:"power,omitempty" json:"power,omitempty"`
	TargetCount int         `yaml:"target_count,omitempty" json:"target_count,omitempty"`
	TargetMode  string      `yaml:"target_mode,omitempty" json:"target_mode,omitempty"`
	Durability  *Durability `yaml:"durability,omitempty" json:"durability,omitempty"`
}

// Build constructs the engine card described by def.
func Build(def Definition) (cards.Card, error) {
	rarity, ok := cards.ParseRarity(def.Rarity)
	if !ok {
		return nil, fmt.Errorf("%s: rarity %q: %w", def.Name, def.Rarity, cards.ErrInvalidRarity)
	}

	switch strings.ToLower(strings.TrimSpace(def.Type)) {
	case "creature":
		return cards.NewCreatureCard(def.Name, def.Cost, rarity, def.Attack, def.Health)
	case "spell":
		effect, ok := cards.ParseSpellEffect(def.Effect)
		if !ok {
			return nil, fmt.Errorf("%s: spell effect %q: %w", def.Name, def.Effect, cards.ErrInvalidEffectType)
		}
		count := def.TargetCount
		if count == 0 {
			count = 1
		}
		mode := targeting.ModeExact
		if def.TargetMode != "" {
			m, err := targeting.ParseMode(def.TargetMode)
			if err != nil {
				return nil, fmt.Errorf("%s: target mode %q: %w", def.Name, def.TargetMode, cards.ErrInvalidTargetPolicy)
			}
			mode = m
		}
		policy, err := targeting.NewPolicy(count, mode)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", def.Name, cards.ErrInvalidTargetPolicy)
		}
		return cards.NewSpellCard(def.Name, def.Cost, rarity, effect, def.Power, policy)
	case "artifact":
		effect, ok := cards.ParseArtifactEffect(def.Effect)
		if !ok {
			return nil, fmt.Errorf("%s: artifact effect %q: %w", def.Name, def.Effect, cards.ErrInvalidEffectType)
		}
		durability := counters.Infinite
		if def.Durability != nil {
			durability = int(*def.Durability)
		}
		return cards.NewArtifactCard(def.Name, def.Cost, rarity, effect, def.Power, durability)
	default:
		return nil, fmt.Errorf("%s: %q: %w", def.Name, def.Type, ErrUnknownType)
	}
}

// BuildDeck builds every definition, in order, into a new deck.
func BuildDeck(defs []Definition, opts ...deck.Option) (*deck.Deck, error) {
	d := deck.New(opts...)
	for i, def := range defs {
		card, err := Build(def)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		if err := d.AddCard(card); err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
	}
	return d, nil
}

// Catalog is a set of named deck lists.
type Catalog struct {
	Decks map[string][]Definition `yaml:"decks"`
}

// Load parses a YAML catalog and checks that every definition builds.
func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if c.Decks == nil {
		c.Decks = make(map[string][]Definition)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile reads a catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Validate builds every definition once and reports the first failure.
func (c *Catalog) Validate() error {
	for _, name := range c.Names() {
		for i, def := range c.Decks[name] {
			if _, err := Build(def); err != nil {
				return fmt.Errorf("deck %s, card %d: %w", name, i, err)
			}
		}
	}
	return nil
}

// Names returns the deck names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Decks))
	for name := range c.Decks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Deck returns the definitions of the named deck.
func (c *Catalog) Deck(name string) ([]Definition, error) {
	defs, ok := c.Decks[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownDeck)
	}
	return append([]Definition(nil), defs...), nil
}

// Marshal renders the catalog as YAML.
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Starter is the built-in deck used when no catalog file is configured.
func Starter() []Definition {
	return []Definition{
		{Name: "Fire Dragon", Type: "creature", Cost: 5, Rarity: "Legendary", Attack: 7, Health: 5},
		{Name: "Goblin Warrior", Type: "creature", Cost: 3, Rarity: "Rare", Attack: 4, Health: 6},
		{Name: "Lightning Bolt", Type: "spell", Cost: 3, Rarity: "Common", Effect: "damage", Power: 3, TargetCount: 1, TargetMode: "exactly"},
		{Name: "Healing Light", Type: "spell", Cost: 2, Rarity: "Uncommon", Effect: "heal", Power: 4, TargetCount: 2, TargetMode: "max"},
		{Name: "Mana Crystal", Type: "artifact", Cost: 2, Rarity: "Epic", Effect: "mana", Power: 1, Durability: Permanent()},
		{Name: "Mana Totem", Type: "artifact", Cost: 1, Rarity: "Uncommon", Effect: "mana", Power: 2, Durability: Uses(3)},
	}
}

// Default returns a catalog holding only the starter deck.
func Default() *Catalog {
	return &Catalog{Decks: map[string][]Definition{"starter": Starter()}}
}
