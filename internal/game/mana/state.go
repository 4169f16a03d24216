package mana

import (
	"sync"
)

// GameState is the shared economy record of a single game session.
// Every play or activation reads it and conditionally mutates it.
type GameState struct {
	mu sync.RWMutex

	availableMana int
}

// Snapshot is a point-in-time copy of a GameState.
type Snapshot struct {
	AvailableMana int `json:"available_mana"`
}

// NewGameState creates a game state with the given starting mana.
// Negative starting values are clamped to zero.
func NewGameState(availableMana int) *GameState {
	if availableMana < 0 {
		availableMana = 0
	}
	return &GameState{availableMana: availableMana}
}

// Available returns the mana currently available.
func (gs *GameState) Available() int {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.availableMana
}

// CanAfford reports whether cost can be paid right now.
func (gs *GameState) CanAfford(cost int) bool {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return cost <= gs.availableMana
}

// Spend debits cost from the available mana.
// Returns true if successful, false if insufficient mana; nothing is debited on failure.
func (gs *GameState) Spend(cost int) bool {
	if cost <= 0 {
		return true
	}
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.availableMana < cost {
		return false
	}
	gs.availableMana -= cost
	return true
}

// Add credits mana to the pool. Non-positive amounts are ignored.
func (gs *GameState) Add(amount int) {
	if amount <= 0 {
		return
	}
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.availableMana += amount
}

// Snapshot returns a copy of the current values.
func (gs *GameState) Snapshot() Snapshot {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return Snapshot{AvailableMana: gs.availableMana}
}
