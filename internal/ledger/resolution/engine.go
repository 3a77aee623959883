package resolution

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/crewledger/internal/ledger/domain/clock"
	"github.com/louisbranch/crewledger/internal/ledger/domain/roundstate"
	"github.com/louisbranch/crewledger/internal/ledger/notify"
	"github.com/louisbranch/crewledger/internal/ledger/rules"
	"github.com/louisbranch/crewledger/internal/ledger/store"
	apperrors "github.com/louisbranch/crewledger/internal/platform/errors"
)

// DefaultHarmSubtype names harm clocks created without a subtype.
const DefaultHarmSubtype = "Harm"

// ErrStoreRequired indicates an engine was built without a store.
var ErrStoreRequired = errors.New("resolution engine requires a store")

// Engine runs roll-resolution cycles against a store.
type Engine struct {
	store  *store.Store
	rules  rules.Rules
	roller Roller
	sink   notify.Sink
}

// NewEngine builds an engine. A nil roller uses SeededRoller and a nil sink
// discards notifications.
func NewEngine(s *store.Store, roller Roller, sink notify.Sink) (*Engine, error) {
	if s == nil {
		return nil, ErrStoreRequired
	}
	if roller == nil {
		roller = SeededRoller{}
	}
	return &Engine{store: s, rules: s.Rules(), roller: roller, sink: notify.OrNop(sink)}, nil
}

// Action frames a roll.
type Action struct {
	CharacterID string         `json:"characterId"`
	Approach    rules.Approach `json:"approach"`
	Position    rules.Position `json:"position"`
	Effect      rules.Effect   `json:"effect"`
	Pushed      bool           `json:"pushed,omitempty"`
	Bonus       int            `json:"bonus,omitempty"`
	Penalty     int            `json:"penalty,omitempty"`
}

// RollResult is a classified roll.
type RollResult struct {
	Action  Action        `json:"action"`
	Pool    Pool          `json:"pool"`
	Dice    []int         `json:"dice"`
	Outcome rules.Outcome `json:"outcome"`
}

// Roll records the action plan, rolls the pool and records the outcome in
// the character's round state. Equipped item dice modifiers add to the pool.
func (e *Engine) Roll(ctx context.Context, a Action) (RollResult, error) {
	c, ok := e.store.Characters.Get(a.CharacterID)
	if !ok {
		return RollResult{}, apperrors.NotFound(apperrors.CodeCharacterNotFound, "character", a.CharacterID)
	}
	if e.store.Rounds.Get(a.CharacterID).Phase == roundstate.PhaseResolving {
		if err := e.store.Rounds.SetPhase(a.CharacterID, roundstate.PhaseComplete); err != nil {
			return RollResult{}, err
		}
	}
	err := e.store.Rounds.SetActionPlan(roundstate.SetActionPlanPayload{
		Ref:      roundstate.Ref{CharacterID: a.CharacterID},
		Approach: a.Approach,
		Position: a.Position,
		Effect:   a.Effect,
		Pushed:   a.Pushed,
	})
	if err != nil {
		return RollResult{}, err
	}

	bonus := a.Bonus
	for _, item := range c.Equipment {
		if item.Equipped && !item.Consumed {
			bonus += item.Modifiers.Dice()
		}
	}
	pool := DicePool(c.Approaches[a.Approach], bonus, a.Penalty, e.rules)
	dice, err := e.roller.Roll(ctx, pool.Count)
	if err != nil {
		return RollResult{}, fmt.Errorf("roll %d dice: %w", pool.Count, err)
	}
	outcome := Classify(dice, pool.Mode)
	if err := e.store.Rounds.RecordRoll(a.CharacterID, dice, outcome); err != nil {
		return RollResult{}, err
	}
	e.sink.Info(fmt.Sprintf("%s rolled %s: %s", c.Name, a.Approach, outcome),
		notify.F("characterId", c.ID),
		notify.F("dice", dice),
		notify.F("mode", string(pool.Mode)),
		notify.F("outcome", string(outcome)))
	return RollResult{Action: a, Pool: pool, Dice: dice, Outcome: outcome}, nil
}

// Consequence is what an outcome costs or grants.
type Consequence struct {
	Outcome  rules.Outcome  `json:"outcome"`
	Position rules.Position `json:"position"`
	Effect   rules.Effect   `json:"effect"`
	Momentum int            `json:"momentum"`
	Harm     int            `json:"harm"`
}

// Resolve looks up the consequence of an outcome. Failures and partials
// generate momentum and harm; successes and criticals generate neither.
func Resolve(outcome rules.Outcome, position rules.Position, effect rules.Effect, r rules.Rules) Consequence {
	c := Consequence{Outcome: outcome, Position: position, Effect: effect}
	if outcome == rules.OutcomeFailure || outcome == rules.OutcomePartial {
		c.Momentum = MomentumGain(position, outcome, r)
		c.Harm = HarmSegments(position, effect, r)
	}
	return c
}

// Resolve looks up the consequence of a roll using the engine rules.
func (e *Engine) Resolve(roll RollResult) Consequence {
	return Resolve(roll.Outcome, roll.Action.Position, roll.Action.Effect, e.rules)
}

// Target names who receives a consequence.
type Target struct {
	CrewID      string `json:"crewId,omitempty"`
	CharacterID string `json:"characterId,omitempty"`
	HarmSubtype string `json:"harmSubtype,omitempty"`
}

// Applied reports the store changes made by Apply.
type Applied struct {
	MomentumBefore int          `json:"momentumBefore"`
	MomentumAfter  int          `json:"momentumAfter"`
	HarmClock      *clock.Clock `json:"harmClock,omitempty"`
	Dying          bool         `json:"dying"`
}

// Apply adds momentum to the crew, capped at the rule maximum with the excess
// dropped, and marks harm on the character. A character resolving a roll
// moves to complete.
func (e *Engine) Apply(ctx context.Context, t Target, c Consequence) (Applied, error) {
	var out Applied
	if err := ctx.Err(); err != nil {
		return out, err
	}
	if c.Momentum > 0 && t.CrewID != "" {
		team, ok := e.store.Crews.Get(t.CrewID)
		if !ok {
			return out, apperrors.NotFound(apperrors.CodeCrewNotFound, "crew", t.CrewID)
		}
		out.MomentumBefore = team.CurrentMomentum
		if err := e.store.Crews.AddMomentum(t.CrewID, c.Momentum); err != nil {
			return out, err
		}
		team, _ = e.store.Crews.Get(t.CrewID)
		out.MomentumAfter = team.CurrentMomentum
		if dropped := out.MomentumBefore + c.Momentum - out.MomentumAfter; dropped > 0 {
			e.sink.Info(fmt.Sprintf("%s momentum capped at %d", team.Name, out.MomentumAfter),
				notify.F("crewId", team.ID), notify.F("dropped", dropped))
		}
	}
	if c.Harm > 0 && t.CharacterID != "" {
		harm, err := e.ApplyHarm(t.CharacterID, t.HarmSubtype, c.Harm)
		if err != nil {
			return out, err
		}
		out.HarmClock = &harm
		out.Dying = harm.Filled()
	}
	if t.CharacterID != "" && e.store.Rounds.Get(t.CharacterID).Phase == roundstate.PhaseResolving {
		if err := e.store.Rounds.SetPhase(t.CharacterID, roundstate.PhaseComplete); err != nil {
			return out, err
		}
	}
	return out, nil
}

// ApplyHarm marks segments on the character's harm clock for subtype,
// creating or repurposing one under the harm cap.
func (e *Engine) ApplyHarm(characterID, subtype string, segments int) (clock.Clock, error) {
	c, ok := e.store.Characters.Get(characterID)
	if !ok {
		return clock.Clock{}, apperrors.NotFound(apperrors.CodeCharacterNotFound, "character", characterID)
	}
	if subtype == "" {
		subtype = DefaultHarmSubtype
	}
	harm, err := e.store.Clocks.Create(clock.CreatePayload{
		EntityID:  characterID,
		ClockType: clock.TypeHarm,
		Subtype:   subtype,
	})
	if err != nil {
		return clock.Clock{}, err
	}
	if segments > 0 {
		if err := e.store.Clocks.AddSegments(harm.ID, segments); err != nil {
			return clock.Clock{}, err
		}
		harm, _ = e.store.Clocks.Get(harm.ID)
	}
	if harm.Filled() {
		e.sink.Warn(fmt.Sprintf("%s is dying", c.Name),
			notify.F("characterId", c.ID), notify.F("clockId", harm.ID))
	}
	return harm, nil
}

// UseRally spends the character's rally when the crew's momentum is at or
// below the rally threshold.
func (e *Engine) UseRally(characterID string) error {
	if _, ok := e.store.Characters.Get(characterID); !ok {
		return apperrors.NotFound(apperrors.CodeCharacterNotFound, "character", characterID)
	}
	teams := e.store.Crews.ForCharacter(characterID)
	if len(teams) == 0 {
		return apperrors.New(apperrors.CodeCharacterRallyUnavailable, "character has no crew: "+characterID)
	}
	if m := teams[0].CurrentMomentum; m > e.rules.RallyMaxMomentum {
		return apperrors.WithMetadata(apperrors.CodeCharacterRallyUnavailable,
			fmt.Sprintf("rally needs momentum at or below %d, crew has %d", e.rules.RallyMaxMomentum, m),
			map[string]string{"momentum": fmt.Sprint(m)})
	}
	return e.store.Characters.UseRally(characterID)
}
