package cards

import (
	"encoding/json"
	"strconv"
)

// Outcome distinguishes a successful play from an unaffordable one.
type Outcome string

const (
	OutcomePlayed   Outcome = "played"
	OutcomeNoEffect Outcome = "no_effect"
)

// PlayResult is the result of Card.Play. Exactly one of Creature, Spell or
// Artifact is set when Outcome is OutcomePlayed; none is set otherwise.
type PlayResult struct {
	Outcome    Outcome `json:"outcome"`
	CardPlayed string  `json:"card_played,omitempty"`
	ManaUsed   int     `json:"mana_used"`

	Creature *CreaturePlay `json:"creature,omitempty"`
	Spell    *SpellPlay    `json:"spell,omitempty"`
	Artifact *ArtifactPlay `json:"artifact,omitempty"`
}

// CreaturePlay is the creature-specific part of a play result.
type CreaturePlay struct {
	Effect string `json:"effect"`
}

// SpellPlay is the spell-specific part of a play result.
type SpellPlay struct {
	Effect  string   `json:"effect"`
	Targets []string `json:"targets"`
}

// ArtifactPlay is the artifact-specific part of a play result.
type ArtifactPlay struct {
	Effect string `json:"effect"`
}

func noEffect() PlayResult {
	return PlayResult{Outcome: OutcomeNoEffect}
}

// Played reports whether the card was actually played.
func (r PlayResult) Played() bool {
	return r.Outcome == OutcomePlayed
}

// Effect returns the effect text of whichever variant is set.
func (r PlayResult) Effect() string {
	switch {
	case r.Creature != nil:
		return r.Creature.Effect
	case r.Spell != nil:
		return r.Spell.Effect
	case r.Artifact != nil:
		return r.Artifact.Effect
	default:
		return ""
	}
}

// AttackResult is the outcome of one creature attacking another.
// CombatResolved is true when the target was defeated (health <= 0).
type AttackResult struct {
	Attacker       string `json:"attacker"`
	Target         string `json:"target"`
	DamageDealt    int    `json:"damage_dealt"`
	CombatResolved bool   `json:"combat_resolved"`
}

// SpellResult is the outcome of resolving a spell effect.
type SpellResult struct {
	CardPlayed string   `json:"card_played"`
	ManaUsed   int      `json:"mana_used"`
	Targets    []string `json:"targets"`
}

// ActivationResult is the outcome of activating an artifact ability.
type ActivationResult struct {
	CardPlayed          string              `json:"card_played"`
	AbilityActivated    string              `json:"ability_activated"`
	DurabilityRemaining DurabilityRemaining `json:"durability_remaining"`
}

// DurabilityRemaining is either a count of uses left or Permanent.
type DurabilityRemaining struct {
	Permanent bool
	Uses      int
}

func (d DurabilityRemaining) String() string {
	if d.Permanent {
		return "Permanent"
	}
	return strconv.Itoa(d.Uses)
}

// MarshalJSON renders Permanent as the string "Permanent" and counts as numbers.
func (d DurabilityRemaining) MarshalJSON() ([]byte, error) {
	if d.Permanent {
		return json.Marshal("Permanent")
	}
	return json.Marshal(d.Uses)
}
