package cards

import (
	"errors"
	"fmt"
)

// Construction error kinds. A failed constructor returns a *ValidationError
// wrapping exactly one of these, so callers can match with errors.Is.
var (
	ErrInvalidName         = errors.New("name cannot be empty")
	ErrInvalidCost         = errors.New("cost has to be a non-negative integer")
	ErrInvalidRarity       = errors.New("rarity has to be a known rarity")
	ErrInvalidAttack       = errors.New("attack has to be a non-negative integer")
	ErrInvalidHealth       = errors.New("health has to be a non-negative integer")
	ErrInvalidEffectType   = errors.New("unknown effect type")
	ErrInvalidEffectPower  = errors.New("effect power has to be a positive integer")
	ErrInvalidDurability   = errors.New("durability has to be non-negative (-1 means infinite)")
	ErrInvalidTargetPolicy = errors.New("invalid target policy")
)

// Operation errors. Insufficient mana is never an error; see PlayResult.
var (
	ErrInvalidTarget      = errors.New("spell targets have to be creatures")
	ErrInvalidTargetCount = errors.New("invalid number of targets")
	ErrSpellConsumed      = errors.New("spell has already been played")
	ErrExhaustedArtifact  = errors.New("artifact durability exhausted")
	ErrUnexpectedTargets  = errors.New("card does not take targets")
)

// ValidationError reports which field failed card construction.
type ValidationError struct {
	Field string
	Value any
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, value any, kind error) error {
	return &ValidationError{Field: field, Value: value, Err: kind}
}
