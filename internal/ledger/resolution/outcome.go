// Package resolution turns dice results into outcomes and applies their
// consequences to a store.
package resolution

import (
	"slices"

	"github.com/louisbranch/crewledger/internal/ledger/rules"
)

// MaxFace is the highest die face.
const MaxFace = 6

// Mode selects which die keys the outcome.
type Mode string

const (
	// ModeHighest keys the outcome off the highest die.
	ModeHighest Mode = "highest"
	// ModeLowest keys the outcome off the lowest die, used when the approach has no dots.
	ModeLowest Mode = "lowest"
)

// Classify maps dice to an outcome. Two or more sixes are a critical in
// either mode; otherwise the keyed die decides: 6 success, 4-5 partial,
// anything lower failure. An empty roll is a failure.
func Classify(dice []int, mode Mode) rules.Outcome {
	if len(dice) == 0 {
		return rules.OutcomeFailure
	}
	key := slices.Max(dice)
	if mode == ModeLowest {
		key = slices.Min(dice)
	}
	sixes := 0
	for _, d := range dice {
		if d == MaxFace {
			sixes++
		}
	}
	switch {
	case key == MaxFace && sixes >= 2:
		return rules.OutcomeCritical
	case key == MaxFace:
		return rules.OutcomeSuccess
	case key >= 4:
		return rules.OutcomePartial
	default:
		return rules.OutcomeFailure
	}
}

// Pool is the number of dice to roll and how to read them.
type Pool struct {
	Count int  `json:"count"`
	Mode  Mode `json:"mode"`
}

// DicePool sizes a roll from approach dots and net modifiers. A pool that
// comes to zero or less rolls the zero-dots pool and takes the lowest die.
func DicePool(dots, bonus, penalty int, r rules.Rules) Pool {
	count := dots + bonus - penalty
	if dots <= 0 || count <= 0 {
		return Pool{Count: r.ZeroDotsDicePool, Mode: ModeLowest}
	}
	return Pool{Count: min(count, r.MaxDicePool), Mode: ModeHighest}
}

// MomentumGain is the momentum a roll generates for the crew. Only failures
// and partials generate momentum.
func MomentumGain(position rules.Position, outcome rules.Outcome, r rules.Rules) int {
	if outcome != rules.OutcomeFailure && outcome != rules.OutcomePartial {
		return 0
	}
	return r.MomentumGain[position]
}

// HarmSegments looks up the harm a consequence inflicts. Unknown combinations
// inflict none.
func HarmSegments(position rules.Position, effect rules.Effect, r rules.Rules) int {
	n, _ := r.HarmSegments(position, effect)
	return n
}
