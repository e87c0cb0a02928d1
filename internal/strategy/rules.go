// Package strategy defines strategy configurations and the rule evaluator
// that turns them into per-bar decisions.
package strategy

import (
	"fmt"

	"github.com/newthinker/tradewind/internal/core"
)

// Operator is a comparison operator in a rule condition.
type Operator string

const (
	OpLT Operator = "<"
	OpLE Operator = "<="
	OpEQ Operator = "=="
	OpGE Operator = ">="
	OpGT Operator = ">"
)

// Valid reports whether the operator is one of the supported comparisons.
func (o Operator) Valid() bool {
	switch o {
	case OpLT, OpLE, OpEQ, OpGE, OpGT:
		return true
	}
	return false
}

// Compare applies the operator to value and threshold.
// OpEQ is an exact float comparison: upstream indicator math rarely hits an
// exact crossing, so == rules fire only on genuinely identical values.
func (o Operator) Compare(value, threshold float64) bool {
	switch o {
	case OpLT:
		return value < threshold
	case OpLE:
		return value <= threshold
	case OpEQ:
		return value == threshold
	case OpGE:
		return value >= threshold
	case OpGT:
		return value > threshold
	}
	return false
}

// Combine is the combination mode of a rule set.
type Combine string

const (
	CombineAND Combine = "AND"
	CombineOR  Combine = "OR"
)

// Condition compares one indicator value against a fixed threshold.
// Conditions are stateless and immutable.
type Condition struct {
	Indicator string   `mapstructure:"indicator"`
	Operator  Operator `mapstructure:"operator"`
	Threshold float64  `mapstructure:"threshold"`
}

// Holds evaluates the condition against a single bar. A bar that lacks the
// indicator (still inside its warmup window, or never computed) makes the
// condition false rather than erroring.
func (c Condition) Holds(bar core.Bar) bool {
	value, ok := bar.Indicator(c.Indicator)
	if !ok {
		return false
	}
	return c.Operator.Compare(value, c.Threshold)
}

// Validate checks the condition fields.
func (c Condition) Validate() error {
	if c.Indicator == "" {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("condition missing indicator"))
	}
	if !c.Operator.Valid() {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unsupported operator %q", c.Operator))
	}
	return nil
}

// RuleSet is an ordered set of conditions combined with AND or OR.
type RuleSet struct {
	Combine    Combine     `mapstructure:"combine"`
	Conditions []Condition `mapstructure:"conditions"`
}

// Evaluate reports whether the rule set triggers on the given bar.
// An empty rule set never triggers.
func (rs RuleSet) Evaluate(bar core.Bar) bool {
	if len(rs.Conditions) == 0 {
		return false
	}

	switch rs.Combine {
	case CombineOR:
		for _, c := range rs.Conditions {
			if c.Holds(bar) {
				return true
			}
		}
		return false
	default: // AND is the default combination mode
		for _, c := range rs.Conditions {
			if !c.Holds(bar) {
				return false
			}
		}
		return true
	}
}

// Empty reports whether the rule set has no conditions.
func (rs RuleSet) Empty() bool {
	return len(rs.Conditions) == 0
}

// Validate checks every condition and the combination mode.
func (rs RuleSet) Validate() error {
	if rs.Combine != "" && rs.Combine != CombineAND && rs.Combine != CombineOR {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unsupported combination mode %q", rs.Combine))
	}
	for i, c := range rs.Conditions {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("condition %d: %w", i, err)
		}
	}
	return nil
}
