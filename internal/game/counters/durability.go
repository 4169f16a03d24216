package counters

import (
	"errors"
	"strconv"
)

// Infinite is the durability sentinel for abilities that never wear out.
const Infinite = -1

// ErrExhausted is returned when a finite durability counter has no uses left.
var ErrExhausted = errors.New("durability exhausted")

// ErrInvalidDurability is returned for durability values below the Infinite sentinel.
var ErrInvalidDurability = errors.New("durability must be non-negative or -1 for infinite")

// Durability counts the remaining activations of a recurring ability.
// The count is never negative except for the Infinite sentinel.
type Durability struct {
	Name      string
	Count     int
	Remaining int
}

// NewDurability creates a counter starting at count uses.
func NewDurability(count int) (*Durability, error) {
	if count < Infinite {
		return nil, ErrInvalidDurability
	}
	return &Durability{
		Name:      "durability",
		Count:     count,
		Remaining: count,
	}, nil
}

// IsInfinite reports whether the counter uses the Infinite sentinel.
func (d *Durability) IsInfinite() bool {
	return d.Remaining == Infinite
}

// Exhausted reports whether no uses remain.
func (d *Durability) Exhausted() bool {
	return !d.IsInfinite() && d.Remaining == 0
}

// Use consumes one activation. Infinite counters are left unchanged.
func (d *Durability) Use() error {
	if d.IsInfinite() {
		return nil
	}
	if d.Remaining <= 0 {
		return ErrExhausted
	}
	d.Remaining--
	return nil
}

// Label renders the starting count: "Permanent" for infinite counters.
func (d *Durability) Label() string {
	if d.Count == Infinite {
		return "Permanent"
	}
	return strconv.Itoa(d.Count)
}

// String renders the remaining count: "Permanent" for infinite counters.
func (d *Durability) String() string {
	if d.IsInfinite() {
		return "Permanent"
	}
	return strconv.Itoa(d.Remaining)
}

// Copy creates a deep copy of the counter.
func (d *Durability) Copy() *Durability {
	return &Durability{
		Name:      d.Name,
		Count:     d.Count,
		Remaining: d.Remaining,
	}
}
