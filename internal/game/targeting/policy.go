package targeting

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidPolicy is returned when a policy is constructed with a bad count or mode.
	ErrInvalidPolicy = errors.New("invalid target policy")
	// ErrCountMismatch is returned when a target count does not satisfy a policy.
	ErrCountMismatch = errors.New("invalid number of targets")
)

// Mode is how a policy compares the supplied target count against its Count.
type Mode string

const (
	// ModeExact requires exactly Count targets.
	ModeExact Mode = "exactly"
	// ModeMin requires at least Count targets.
	ModeMin Mode = "min"
	// ModeMax allows at most Count targets.
	ModeMax Mode = "max"
)

// ParseMode parses a mode name. "exact" is accepted as an alias of "exactly".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exactly", "exact":
		return ModeExact, nil
	case "min":
		return ModeMin, nil
	case "max":
		return ModeMax, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidPolicy, s)
	}
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeExact, ModeMin, ModeMax:
		return true
	default:
		return false
	}
}

// Policy defines how many targets a spell must be given.
type Policy struct {
	Count int  `json:"count" yaml:"count"`
	Mode  Mode `json:"mode" yaml:"mode"`
}

// NewPolicy creates a policy, rejecting non-positive counts and unknown modes.
func NewPolicy(count int, mode Mode) (Policy, error) {
	p := Policy{Count: count, Mode: mode}
	if err := p.check(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Exactly is shorthand for a ModeExact policy. It panics on a non-positive count.
func Exactly(count int) Policy {
	p, err := NewPolicy(count, ModeExact)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Policy) check() error {
	if p.Count <= 0 {
		return fmt.Errorf("%w: count must be positive, got %d", ErrInvalidPolicy, p.Count)
	}
	if !p.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidPolicy, p.Mode)
	}
	return nil
}

// Satisfied reports whether n targets meet the policy.
func (p Policy) Satisfied(n int) bool {
	switch p.Mode {
	case ModeExact:
		return n == p.Count
	case ModeMin:
		return p.Count <= n
	case ModeMax:
		return p.Count >= n
	default:
		return false
	}
}

// Validate checks a target count against the policy.
func (p Policy) Validate(n int) error {
	if err := p.check(); err != nil {
		return err
	}
	if !p.Satisfied(n) {
		return fmt.Errorf("%w: need %s, got %d", ErrCountMismatch, p, n)
	}
	return nil
}

// String renders the policy, e.g. "exactly 1 target" or "min 2 targets".
func (p Policy) String() string {
	noun := "targets"
	if p.Count == 1 {
		noun = "target"
	}
	return fmt.Sprintf("%s %d %s", p.Mode, p.Count, noun)
}
