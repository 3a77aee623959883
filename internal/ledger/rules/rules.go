// Package rules holds the static rule tables the ledger enforces: starting
// resources, clock sizes, and the roll consequence tables.
//
// Rules are pure data. Every slice and the resolution engine receive a Rules
// value explicitly; nothing reads a package-level table at mutation time.
package rules

import (
	"fmt"
	"slices"
)

// Approach names a rated proficiency axis.
type Approach string

const (
	ApproachForce  Approach = "force"
	ApproachGuile  Approach = "guile"
	ApproachFocus  Approach = "focus"
	ApproachSpirit Approach = "spirit"
)

// Approaches lists the fixed approach axes in display order.
func Approaches() []Approach {
	return []Approach{ApproachForce, ApproachGuile, ApproachFocus, ApproachSpirit}
}

// ValidApproach reports whether a is one of the fixed axes.
func ValidApproach(a Approach) bool {
	return slices.Contains(Approaches(), a)
}

// Position frames the risk of a roll.
type Position string

const (
	PositionControlled Position = "controlled"
	PositionRisky      Position = "risky"
	PositionDesperate  Position = "desperate"
	PositionImpossible Position = "impossible"
)

// Effect frames the magnitude of a roll.
type Effect string

const (
	EffectLimited     Effect = "limited"
	EffectStandard    Effect = "standard"
	EffectGreat       Effect = "great"
	EffectSpectacular Effect = "spectacular"
)

// Tier grades equipment cost.
type Tier string

const (
	TierCommon Tier = "common"
	TierRare   Tier = "rare"
	TierEpic   Tier = "epic"
)

// Rules is the complete rule table.
type Rules struct {
	StartingApproachDots int `yaml:"starting_approach_dots"`
	MaxApproachDots      int `yaml:"max_approach_dots"`
	DefaultLoadLimit     int `yaml:"default_load_limit"`
	MaxLoadLimit         int `yaml:"max_load_limit"`

	MinMomentum      int `yaml:"min_momentum"`
	MaxMomentum      int `yaml:"max_momentum"`
	StartMomentum    int `yaml:"start_momentum"`
	RallyMaxMomentum int `yaml:"rally_max_momentum"`

	ClockSizes           []int        `yaml:"clock_sizes"`
	HarmClockSize        int          `yaml:"harm_clock_size"`
	MaxHarmClocks        int          `yaml:"max_harm_clocks"`
	AddictionClockSize   int          `yaml:"addiction_clock_size"`
	ResetAddictionReduce int          `yaml:"reset_addiction_reduction"`
	ZeroDotsDicePool     int          `yaml:"zero_dots_dice_pool"`
	MaxDicePool          int          `yaml:"max_dice_pool"`
	TierCost             map[Tier]int `yaml:"tier_cost"`

	MomentumGain map[Position]int            `yaml:"momentum_gain"`
	Harm         map[Position]map[Effect]int `yaml:"harm"`
}

// Default returns the compiled-in rule table.
func Default() Rules {
	return Rules{
		StartingApproachDots: 12,
		MaxApproachDots:      4,
		DefaultLoadLimit:     5,
		MaxLoadLimit:         10,

		MinMomentum:      0,
		MaxMomentum:      10,
		StartMomentum:    5,
		RallyMaxMomentum: 3,

		ClockSizes:           []int{4, 6, 8, 12},
		HarmClockSize:        6,
		MaxHarmClocks:        3,
		AddictionClockSize:   8,
		ResetAddictionReduce: 2,
		ZeroDotsDicePool:     2,
		MaxDicePool:          6,
		TierCost: map[Tier]int{
			TierCommon: 1,
			TierRare:   2,
			TierEpic:   3,
		},

		MomentumGain: map[Position]int{
			PositionControlled: 1,
			PositionRisky:      2,
			PositionDesperate:  4,
			PositionImpossible: 4,
		},
		Harm: map[Position]map[Effect]int{
			PositionControlled: {EffectLimited: 0, EffectStandard: 1, EffectGreat: 2, EffectSpectacular: 3},
			PositionRisky:      {EffectLimited: 2, EffectStandard: 3, EffectGreat: 4, EffectSpectacular: 5},
			PositionDesperate:  {EffectLimited: 4, EffectStandard: 5, EffectGreat: 6, EffectSpectacular: 6},
			PositionImpossible: {EffectLimited: 5, EffectStandard: 6, EffectGreat: 6, EffectSpectacular: 6},
		},
	}
}

// ValidClockSize reports whether size is one of the configured clock sizes.
func (r Rules) ValidClockSize(size int) bool {
	return slices.Contains(r.ClockSizes, size)
}

// ClampMomentum bounds value to the configured momentum range.
func (r Rules) ClampMomentum(value int) int {
	return min(max(value, r.MinMomentum), r.MaxMomentum)
}

// ValidTier reports whether t has a configured cost.
func (r Rules) ValidTier(t Tier) bool {
	_, ok := r.TierCost[t]
	return ok
}

// HarmSegments looks up consequence segments for position and effect.
func (r Rules) HarmSegments(position Position, effect Effect) (int, bool) {
	row, ok := r.Harm[position]
	if !ok {
		return 0, false
	}
	value, ok := row[effect]
	return value, ok
}

// Validate checks the table for internal consistency.
func (r Rules) Validate() error {
	switch {
	case r.StartingApproachDots <= 0:
		return fmt.Errorf("starting approach dots must be positive")
	case r.MaxApproachDots <= 0:
		return fmt.Errorf("max approach dots must be positive")
	case r.MaxApproachDots*len(Approaches()) < r.StartingApproachDots:
		return fmt.Errorf("starting approach dots %d cannot be allocated under max %d", r.StartingApproachDots, r.MaxApproachDots)
	case r.DefaultLoadLimit < 0 || r.DefaultLoadLimit > r.MaxLoadLimit:
		return fmt.Errorf("default load limit must be in range 0..%d", r.MaxLoadLimit)
	case r.MinMomentum > r.MaxMomentum:
		return fmt.Errorf("momentum range is empty")
	case r.StartMomentum < r.MinMomentum || r.StartMomentum > r.MaxMomentum:
		return fmt.Errorf("start momentum must be in range %d..%d", r.MinMomentum, r.MaxMomentum)
	case len(r.ClockSizes) == 0:
		return fmt.Errorf("clock sizes are required")
	case !r.ValidClockSize(r.HarmClockSize):
		return fmt.Errorf("harm clock size %d is not a clock size", r.HarmClockSize)
	case !r.ValidClockSize(r.AddictionClockSize):
		return fmt.Errorf("addiction clock size %d is not a clock size", r.AddictionClockSize)
	case r.MaxHarmClocks <= 0:
		return fmt.Errorf("max harm clocks must be positive")
	case r.ResetAddictionReduce < 0:
		return fmt.Errorf("reset addiction reduction must not be negative")
	case r.ZeroDotsDicePool <= 0 || r.MaxDicePool <= 0:
		return fmt.Errorf("dice pool sizes must be positive")
	}
	for _, size := range r.ClockSizes {
		if size <= 0 {
			return fmt.Errorf("clock size %d must be positive", size)
		}
	}
	for _, position := range []Position{PositionControlled, PositionRisky, PositionDesperate} {
		if _, ok := r.MomentumGain[position]; !ok {
			return fmt.Errorf("momentum gain for %s is required", position)
		}
		for _, effect := range []Effect{EffectLimited, EffectStandard, EffectGreat} {
			value, ok := r.HarmSegments(position, effect)
			if !ok {
				return fmt.Errorf("harm for %s/%s is required", position, effect)
			}
			if value < 0 {
				return fmt.Errorf("harm for %s/%s must not be negative", position, effect)
			}
		}
	}
	return nil
}

// Outcome classifies a roll.
type Outcome string

const (
	OutcomeFailure  Outcome = "failure"
	OutcomePartial  Outcome = "partial"
	OutcomeSuccess  Outcome = "success"
	OutcomeCritical Outcome = "critical"
)

// ValidOutcome reports whether o is a known outcome.
func ValidOutcome(o Outcome) bool {
	switch o {
	case OutcomeFailure, OutcomePartial, OutcomeSuccess, OutcomeCritical:
		return true
	}
	return false
}

// ValidPosition reports whether p has a harm row.
func (r Rules) ValidPosition(p Position) bool {
	_, ok := r.Harm[p]
	return ok
}

// ValidEffect reports whether e is a column of the harm table.
func (r Rules) ValidEffect(e Effect) bool {
	_, ok := r.Harm[PositionControlled][e]
	return ok
}
