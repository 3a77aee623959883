// Package roundstate tracks where each character is in a roll cycle. Its
// history is exported and replayed with the entity slices but its records are
// not part of the state snapshot.
package roundstate

import (
	"slices"

	"github.com/louisbranch/crewledger/internal/ledger/domain/command"
	"github.com/louisbranch/crewledger/internal/ledger/rules"
)

// SliceName namespaces round-state command types.
const SliceName = "roundState"

// Phase is a step of the roll cycle.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseDecision  Phase = "decision"
	PhaseRolling   Phase = "rolling"
	PhaseResolving Phase = "resolving"
	PhaseComplete  Phase = "complete"
)

var transitions = map[Phase][]Phase{
	PhaseIdle:      {PhaseDecision},
	PhaseDecision:  {PhaseRolling, PhaseIdle},
	PhaseRolling:   {PhaseResolving, PhaseDecision},
	PhaseResolving: {PhaseComplete},
	PhaseComplete:  {PhaseIdle, PhaseDecision},
}

// ValidPhase reports whether p is a known phase.
func ValidPhase(p Phase) bool {
	_, ok := transitions[p]
	return ok
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Phase) bool {
	return slices.Contains(transitions[from], to)
}

// State is the round record of one character.
type State struct {
	CharacterID string         `json:"characterId"`
	Phase       Phase          `json:"phase"`
	Approach    rules.Approach `json:"approach,omitempty"`
	Position    rules.Position `json:"position,omitempty"`
	Effect      rules.Effect   `json:"effect,omitempty"`
	Pushed      bool           `json:"pushed,omitempty"`
	Dice        []int          `json:"dice,omitempty"`
	Outcome     rules.Outcome  `json:"outcome,omitempty"`
	UpdatedAt   int64          `json:"updatedAt"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	s.Dice = slices.Clone(s.Dice)
	return s
}

const (
	TypeSetPhase      command.Type = "roundState/setPhase"
	TypeSetActionPlan command.Type = "roundState/setActionPlan"
	TypeRecordRoll    command.Type = "roundState/recordRoll"
	TypeReset         command.Type = "roundState/reset"
	TypeClear         command.Type = "roundState/clear"
)

// Ref names the character a payload targets.
type Ref struct {
	CharacterID string `json:"characterId"`
}

// Target returns the character id.
func (r Ref) Target() string { return r.CharacterID }

type SetPhasePayload struct {
	Ref
	Phase Phase `json:"phase"`
}

func (SetPhasePayload) CommandType() command.Type { return TypeSetPhase }

// SetActionPlanPayload records the framing of the next roll.
type SetActionPlanPayload struct {
	Ref
	Approach rules.Approach `json:"approach"`
	Position rules.Position `json:"position"`
	Effect   rules.Effect   `json:"effect"`
	Pushed   bool           `json:"pushed,omitempty"`
}

func (SetActionPlanPayload) CommandType() command.Type { return TypeSetActionPlan }

type RecordRollPayload struct {
	Ref
	Dice    []int         `json:"dice"`
	Outcome rules.Outcome `json:"outcome"`
}

func (RecordRollPayload) CommandType() command.Type { return TypeRecordRoll }

type ResetPayload struct{ Ref }

func (ResetPayload) CommandType() command.Type { return TypeReset }

type ClearPayload struct{ Ref }

func (ClearPayload) CommandType() command.Type { return TypeClear }

// Register adds the round-state command types to registry.
func Register(registry *command.Registry) error {
	return registry.Register(
		command.Definition{Type: TypeSetPhase, Decode: command.DecodeJSON[SetPhasePayload]()},
		command.Definition{Type: TypeSetActionPlan, Decode: command.DecodeJSON[SetActionPlanPayload]()},
		command.Definition{Type: TypeRecordRoll, Decode: command.DecodeJSON[RecordRollPayload]()},
		command.Definition{Type: TypeReset, Decode: command.DecodeJSON[ResetPayload]()},
		command.Definition{Type: TypeClear, Decode: command.DecodeJSON[ClearPayload](), Delete: true},
	)
}
