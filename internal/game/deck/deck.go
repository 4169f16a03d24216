package deck

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"time"

	"github.com/datadeck/datadeck-server-go/internal/game/cards"
)

var (
	// ErrNotACard is returned when a nil card, or a nil card pointer, is added.
	ErrNotACard = errors.New("cards in deck have to be card objects")
	// ErrEmptyDeck is returned when drawing from, or computing stats of, an empty deck.
	ErrEmptyDeck = errors.New("deck is empty")
	// ErrDeckFull is returned when adding past the configured maximum size.
	ErrDeckFull = errors.New("deck is full")
)

// Deck is an ordered collection of cards. Cards are drawn from the end.
// A Deck is not safe for concurrent use; game.Session serialises access.
type Deck struct {
	cards   []cards.Card
	rng     *rand.Rand
	maxSize int
}

// Option configures a Deck.
type Option func(*Deck)

// WithRand sets the random source used by Shuffle.
func WithRand(rng *rand.Rand) Option {
	return func(d *Deck) {
		d.rng = rng
	}
}

// WithSeed makes Shuffle deterministic for the given seed.
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// WithMaxSize limits the number of cards the deck accepts. Zero means unlimited.
func WithMaxSize(n int) Option {
	return func(d *Deck) {
		d.maxSize = n
	}
}

// New creates an empty deck.
func New(opts ...Option) *Deck {
	d := &Deck{cards: make([]cards.Card, 0, 32)}
	for _, opt := range opts {
		opt(d)
	}
	if d.rng == nil {
		d.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return d
}

// AddCard appends card to the deck.
func (d *Deck) AddCard(card cards.Card) error {
	if isNil(card) {
		return ErrNotACard
	}
	if d.maxSize > 0 && len(d.cards) >= d.maxSize {
		return fmt.Errorf("%w: max %d cards", ErrDeckFull, d.maxSize)
	}
	d.cards = append(d.cards, card)
	return nil
}

func isNil(card cards.Card) bool {
	if card == nil {
		return true
	}
	v := reflect.ValueOf(card)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// RemoveCard removes the first card named name and reports whether one was found.
func (d *Deck) RemoveCard(name string) bool {
	for i, c := range d.cards {
		if c.Name() == name {
			d.cards = append(d.cards[:i], d.cards[i+1:]...)
			return true
		}
	}
	return false
}

// Shuffle reorders the deck uniformly at random by repeatedly moving a random
// remaining card to a new sequence.
func (d *Deck) Shuffle() {
	remaining := d.cards
	shuffled := make([]cards.Card, 0, len(remaining))
	for len(remaining) > 0 {
		idx := d.rng.Intn(len(remaining))
		shuffled = append(shuffled, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	d.cards = shuffled
}

// DrawCard removes and returns the last card. The caller owns the returned card.
func (d *Deck) DrawCard() (cards.Card, error) {
	if len(d.cards) == 0 {
		return nil, ErrEmptyDeck
	}
	idx := len(d.cards) - 1
	card := d.cards[idx]
	d.cards[idx] = nil
	d.cards = d.cards[:idx]
	return card, nil
}

// Len returns the number of cards in the deck.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the deck order (last element is drawn next).
func (d *Deck) Cards() []cards.Card {
	cpy := make([]cards.Card, len(d.cards))
	copy(cpy, d.cards)
	return cpy
}

// Find returns the first card with the given ID.
func (d *Deck) Find(id string) (cards.Card, bool) {
	for _, c := range d.cards {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

// Stats summarises the deck contents.
type Stats struct {
	TotalCards int     `json:"total_cards"`
	Creatures  int     `json:"creatures"`
	Spells     int     `json:"spells"`
	Artifacts  int     `json:"artifacts"`
	AvgCost    float64 `json:"avg_cost"`
}

// Stats counts cards per kind and averages their cost.
// It fails with ErrEmptyDeck when there is nothing to average.
func (d *Deck) Stats() (Stats, error) {
	if len(d.cards) == 0 {
		return Stats{}, ErrEmptyDeck
	}
	var s Stats
	total := 0
	for _, c := range d.cards {
		switch c.Kind() {
		case cards.KindCreature:
			s.Creatures++
		case cards.KindSpell:
			s.Spells++
		case cards.KindArtifact:
			s.Artifacts++
		}
		total += c.Cost()
	}
	s.TotalCards = len(d.cards)
	s.AvgCost = float64(total) / float64(s.TotalCards)
	return s, nil
}
