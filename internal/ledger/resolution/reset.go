package resolution

import (
	"fmt"

	"github.com/louisbranch/crewledger/internal/ledger/domain/clock"
	"github.com/louisbranch/crewledger/internal/ledger/notify"
	apperrors "github.com/louisbranch/crewledger/internal/platform/errors"
)

// Reset step names.
const (
	StepMomentum  = "momentum"
	StepRally     = "rally"
	StepTraits    = "traits"
	StepEquipment = "equipment"
	StepAddiction = "addiction"
	StepHarm      = "harm"
)

// ResetStep is one completed mutation of a momentum reset.
type ResetStep struct {
	Step   string `json:"step"`
	Target string `json:"target"`
}

// ResetReport lists the steps a momentum reset applied, in order.
type ResetReport struct {
	CrewID string      `json:"crewId"`
	Steps  []ResetStep `json:"steps"`
}

// ResetError reports the step a momentum reset stopped at. Completed steps
// stay applied; the caller reconciles them.
type ResetError struct {
	Step      string
	Target    string
	Completed []ResetStep
	Err       error
}

func (e *ResetError) Error() string {
	return fmt.Sprintf("momentum reset stopped at %s %s after %d steps: %v", e.Step, e.Target, len(e.Completed), e.Err)
}

func (e *ResetError) Unwrap() error { return e.Err }

// MomentumReset restores the crew to its starting momentum, then for each
// member resets rally, re-enables traits and unlocks equipment, then reduces
// the crew's addiction clock and pulls filled harm clocks back to one below
// full. There is no rollback: a failing step returns a *ResetError with the
// steps already applied.
func (e *Engine) MomentumReset(crewID string) (ResetReport, error) {
	team, ok := e.store.Crews.Get(crewID)
	if !ok {
		return ResetReport{}, apperrors.NotFound(apperrors.CodeCrewNotFound, "crew", crewID)
	}
	report := ResetReport{CrewID: crewID}
	step := func(name, target string, fn func() error) error {
		if err := fn(); err != nil {
			e.sink.Error("momentum reset failed",
				notify.F("crewId", crewID), notify.F("step", name), notify.F("target", target), notify.F("err", err.Error()))
			return &ResetError{Step: name, Target: target, Completed: append([]ResetStep(nil), report.Steps...), Err: err}
		}
		report.Steps = append(report.Steps, ResetStep{Step: name, Target: target})
		return nil
	}

	if err := step(StepMomentum, crewID, func() error { return e.store.Crews.ResetMomentum(crewID) }); err != nil {
		return report, err
	}

	var members []string
	for _, id := range team.Characters {
		if _, ok := e.store.Characters.Get(id); !ok {
			e.sink.Warn("skipping missing crew member", notify.F("crewId", crewID), notify.F("characterId", id))
			continue
		}
		members = append(members, id)
	}
	for _, id := range members {
		if err := step(StepRally, id, func() error { return e.store.Characters.ResetRally(id) }); err != nil {
			return report, err
		}
		if err := step(StepTraits, id, func() error { return e.store.Characters.EnableAllTraits(id) }); err != nil {
			return report, err
		}
		if err := step(StepEquipment, id, func() error { return e.store.Characters.UnlockAllEquipment(id) }); err != nil {
			return report, err
		}
	}

	for _, addiction := range e.store.Clocks.OwnedOfType(crewID, clock.TypeAddiction) {
		if addiction.Segments == 0 {
			continue
		}
		reduce := min(addiction.Segments, e.rules.ResetAddictionReduce)
		if err := step(StepAddiction, addiction.ID, func() error {
			return e.store.Clocks.ClearSegments(addiction.ID, reduce)
		}); err != nil {
			return report, err
		}
	}

	for _, id := range members {
		for _, harm := range e.store.Clocks.OwnedOfType(id, clock.TypeHarm) {
			if !harm.Filled() {
				continue
			}
			if err := step(StepHarm, harm.ID, func() error {
				return e.store.Clocks.SetSegments(harm.ID, harm.MaxSegments-1)
			}); err != nil {
				return report, err
			}
		}
	}

	e.sink.Info(fmt.Sprintf("%s momentum reset", team.Name),
		notify.F("crewId", crewID), notify.F("steps", len(report.Steps)))
	return report, nil
}
