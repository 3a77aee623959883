package roundstate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/louisbranch/crewledger/internal/ledger/domain/command"
	"github.com/louisbranch/crewledger/internal/ledger/rules"
	apperrors "github.com/louisbranch/crewledger/internal/platform/errors"
)

// Slice holds per-character round records and their command history.
type Slice struct {
	rules   rules.Rules
	env     *command.Env
	items   map[string]*State
	history []command.Command
	version uint64
}

// NewSlice returns an empty slice.
func NewSlice(r rules.Rules, env *command.Env) *Slice {
	if env == nil {
		env = command.NewEnv()
	}
	return &Slice{rules: r, env: env, items: make(map[string]*State)}
}

// Name returns the slice namespace.
func (s *Slice) Name() string { return SliceName }

// Version increases on every change to records or history.
func (s *Slice) Version() uint64 { return s.version }

// Get returns the round record of characterID. Characters without a record
// are idle.
func (s *Slice) Get(characterID string) State {
	if st, ok := s.items[characterID]; ok {
		return st.Clone()
	}
	return State{CharacterID: characterID, Phase: PhaseIdle}
}

// IDs returns the characters holding a round record.
func (s *Slice) IDs() command.IDSet {
	set := make(command.IDSet, len(s.items))
	for id := range s.items {
		set[id] = struct{}{}
	}
	return set
}

// History returns a copy of the command history.
func (s *Slice) History() []command.Command { return slices.Clone(s.history) }

// ReplaceHistory swaps the command history, used by pruning.
func (s *Slice) ReplaceHistory(history []command.Command) {
	s.history = slices.Clone(history)
	s.version++
}

// Hydrate drops every round record and the history.
func (s *Slice) Hydrate() {
	s.items = make(map[string]*State)
	s.history = nil
	s.version++
}

// Restore replaces the history and rebuilds round records by applying it in
// order. Commands that no longer apply stay in the history and are returned.
func (s *Slice) Restore(history []command.Command, decode func(command.Command) (command.Payload, error)) []command.Command {
	s.items = make(map[string]*State)
	s.history = slices.Clone(history)
	s.version++
	var rejected []command.Command
	for _, cmd := range history {
		payload, err := decode(cmd)
		if err == nil {
			err = s.apply(payload, cmd.Timestamp)
		}
		if err != nil {
			rejected = append(rejected, cmd)
		}
	}
	return rejected
}

// Cleanup drops records of characters not in valid.
func (s *Slice) Cleanup(valid command.IDSet) []string {
	var removed []string
	for id := range s.items {
		if !valid.Has(id) {
			delete(s.items, id)
			removed = append(removed, id)
		}
	}
	slices.Sort(removed)
	if len(removed) > 0 {
		s.version++
	}
	return removed
}

// Apply validates payload and, on acceptance, mutates the slice and appends
// cmd to history.
func (s *Slice) Apply(cmd command.Command, payload command.Payload) (bool, error) {
	if err := s.apply(payload, cmd.Timestamp); err != nil {
		s.env.Report(cmd, err)
		return false, err
	}
	s.history = append(s.history, cmd)
	s.version++
	s.env.Report(cmd, nil)
	return true, nil
}

func (s *Slice) run(payload command.Payload) error {
	cmd, err := s.env.Prepare(payload)
	if err != nil {
		return err
	}
	_, err = s.Apply(cmd, payload)
	return err
}

func (s *Slice) apply(payload command.Payload, at int64) error {
	characterID := payload.Target()
	if strings.TrimSpace(characterID) == "" {
		return apperrors.New(apperrors.CodeCharacterIDRequired, "character id is required")
	}
	current := s.Get(characterID)
	next := current
	switch p := payload.(type) {
	case SetPhasePayload:
		if !ValidPhase(p.Phase) {
			return apperrors.New(apperrors.CodeRoundPhaseInvalid, "unknown round phase: "+string(p.Phase))
		}
		if err := transition(current.Phase, p.Phase); err != nil {
			return err
		}
		next.Phase = p.Phase
	case SetActionPlanPayload:
		if err := s.validatePlan(p); err != nil {
			return err
		}
		if current.Phase != PhaseDecision {
			if err := transition(current.Phase, PhaseDecision); err != nil {
				return err
			}
		}
		next.Phase = PhaseDecision
		next.Approach, next.Position, next.Effect, next.Pushed = p.Approach, p.Position, p.Effect, p.Pushed
		next.Dice, next.Outcome = nil, ""
	case RecordRollPayload:
		if !rules.ValidOutcome(p.Outcome) {
			return apperrors.New(apperrors.CodeRoundPlanInvalid, "unknown outcome: "+string(p.Outcome))
		}
		if current.Phase != PhaseDecision && current.Phase != PhaseRolling {
			return apperrors.New(apperrors.CodeRoundTransitionInvalid,
				fmt.Sprintf("cannot record a roll while %s", current.Phase))
		}
		next.Phase = PhaseResolving
		next.Dice = slices.Clone(p.Dice)
		next.Outcome = p.Outcome
	case ResetPayload:
		next = State{CharacterID: characterID, Phase: PhaseIdle}
	case ClearPayload:
		if _, ok := s.items[characterID]; !ok {
			return apperrors.NotFound(apperrors.CodeRoundNotFound, "round state", characterID)
		}
		delete(s.items, characterID)
		return nil
	default:
		return apperrors.New(apperrors.CodeCommandTypeUnknown,
			"round-state slice cannot apply "+string(payload.CommandType()))
	}
	next.CharacterID = characterID
	next.UpdatedAt = at
	s.items[characterID] = &next
	return nil
}

func transition(from, to Phase) error {
	if !CanTransition(from, to) {
		return apperrors.WithMetadata(apperrors.CodeRoundTransitionInvalid,
			fmt.Sprintf("cannot move from %s to %s", from, to),
			map[string]string{"from": string(from), "to": string(to)})
	}
	return nil
}

func (s *Slice) validatePlan(p SetActionPlanPayload) error {
	switch {
	case !rules.ValidApproach(p.Approach):
		return apperrors.New(apperrors.CodeRoundPlanInvalid, "unknown approach: "+string(p.Approach))
	case !s.rules.ValidPosition(p.Position):
		return apperrors.New(apperrors.CodeRoundPlanInvalid, "unknown position: "+string(p.Position))
	case !s.rules.ValidEffect(p.Effect):
		return apperrors.New(apperrors.CodeRoundPlanInvalid, "unknown effect: "+string(p.Effect))
	}
	return nil
}

// SetPhase moves a character to phase along the transition table.
func (s *Slice) SetPhase(characterID string, phase Phase) error {
	return s.run(SetPhasePayload{Ref: Ref{characterID}, Phase: phase})
}

// SetActionPlan records the framing of the next roll and enters decision.
func (s *Slice) SetActionPlan(p SetActionPlanPayload) error {
	return s.run(p)
}

// RecordRoll stores rolled dice and their outcome and enters resolving.
func (s *Slice) RecordRoll(characterID string, dice []int, outcome rules.Outcome) error {
	return s.run(RecordRollPayload{Ref: Ref{characterID}, Dice: slices.Clone(dice), Outcome: outcome})
}

// Reset returns a character to idle.
func (s *Slice) Reset(characterID string) error {
	return s.run(ResetPayload{Ref{characterID}})
}

// Clear drops a character's round record.
func (s *Slice) Clear(characterID string) error {
	return s.run(ClearPayload{Ref{characterID}})
}
