// Package store aggregates the ledger slices behind one dispatch entry point.
//
// The store is the explicit handle callers pass around in place of ambient
// globals. It is not safe for concurrent use: the host serializes dispatches,
// and cross-slice operations such as DeleteCharacter commit each sub-step
// independently, so a failure partway leaves earlier sub-steps applied.
package store

import (
	"fmt"
	"time"

	"github.com/louisbranch/crewledger/internal/ledger/domain/character"
	"github.com/louisbranch/crewledger/internal/ledger/domain/clock"
	"github.com/louisbranch/crewledger/internal/ledger/domain/command"
	"github.com/louisbranch/crewledger/internal/ledger/domain/crew"
	"github.com/louisbranch/crewledger/internal/ledger/domain/roundstate"
	"github.com/louisbranch/crewledger/internal/ledger/history"
	"github.com/louisbranch/crewledger/internal/ledger/rules"
	apperrors "github.com/louisbranch/crewledger/internal/platform/errors"
	"github.com/louisbranch/crewledger/internal/platform/id"
	"github.com/louisbranch/crewledger/internal/platform/telemetry/metrics"
)

// Store owns the four slices and the shared command environment.
type Store struct {
	rules    rules.Rules
	env      *command.Env
	registry *command.Registry
	metrics  *metrics.Ledger

	Characters *character.Slice
	Crews      *crew.Slice
	Clocks     *clock.Slice
	Rounds     *roundstate.Slice
}

type options struct {
	rules   rules.Rules
	now     func() time.Time
	newID   id.Generator
	userID  string
	metrics *metrics.Ledger
}

// Option configures a Store.
type Option func(*options)

// WithRules replaces the default rule table.
func WithRules(r rules.Rules) Option {
	return func(o *options) { o.rules = r }
}

// WithClock sets the time source used to stamp commands.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator sets the id source for entities and commands.
func WithIDGenerator(gen id.Generator) Option {
	return func(o *options) { o.newID = gen }
}

// WithUser attributes new commands to userID.
func WithUser(userID string) Option {
	return func(o *options) { o.userID = userID }
}

// WithMetrics counts applied and rejected commands.
func WithMetrics(m *metrics.Ledger) Option {
	return func(o *options) { o.metrics = m }
}

// New builds an empty store.
func New(opts ...Option) (*Store, error) {
	o := options{rules: rules.Default(), now: time.Now, newID: id.MustNewID}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.rules.Validate(); err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}

	registry := command.NewRegistry()
	for _, register := range []func(*command.Registry) error{
		character.Register,
		crew.Register,
		clock.Register,
		roundstate.Register,
	} {
		if err := register(registry); err != nil {
			return nil, fmt.Errorf("register commands: %w", err)
		}
	}

	s := &Store{
		rules:    o.rules,
		registry: registry,
		metrics:  o.metrics,
	}
	s.env = &command.Env{
		Now:     o.now,
		NewID:   o.newID,
		UserID:  o.userID,
		Observe: s.observe,
	}
	s.Characters = character.NewSlice(o.rules, s.env)
	s.Crews = crew.NewSlice(o.rules, s.env)
	s.Clocks = clock.NewSlice(o.rules, s.env)
	s.Rounds = roundstate.NewSlice(o.rules, s.env)
	return s, nil
}

func (s *Store) observe(cmd command.Command, err error) {
	if err != nil {
		s.metrics.CommandRejected(string(cmd.Type), string(apperrors.KindOf(err)))
		return
	}
	s.metrics.CommandApplied(string(cmd.Type))
}

// Rules returns the rule table the store enforces.
func (s *Store) Rules() rules.Rules { return s.rules }

// Registry returns the command registry of every slice.
func (s *Store) Registry() *command.Registry { return s.registry }

// Metrics returns the metrics ledger, which may be nil.
func (s *Store) Metrics() *metrics.Ledger { return s.metrics }

// SetUser attributes subsequent commands to userID.
func (s *Store) SetUser(userID string) { s.env.UserID = userID }

// Now returns the store clock reading.
func (s *Store) Now() time.Time {
	if s.env.Now == nil {
		return time.Now()
	}
	return s.env.Now()
}

// Dispatch decodes cmd and applies it to the slice named by its type. The
// envelope is appended as-is, so replayed commands keep their ids and
// timestamps.
func (s *Store) Dispatch(cmd command.Command) (bool, error) {
	payload, err := s.registry.Decode(cmd)
	if err != nil {
		s.observe(cmd, err)
		return false, err
	}
	switch cmd.Type.Slice() {
	case character.SliceName:
		return s.Characters.Apply(cmd, payload)
	case crew.SliceName:
		return s.Crews.Apply(cmd, payload)
	case clock.SliceName:
		return s.Clocks.Apply(cmd, payload)
	case roundstate.SliceName:
		return s.Rounds.Apply(cmd, payload)
	default:
		err := apperrors.New(apperrors.CodeCommandTypeUnknown, "no slice for "+string(cmd.Type))
		s.observe(cmd, err)
		return false, err
	}
}

// DeleteCharacter removes a character with its crew memberships, owned
// clocks and round record. Each sub-step is logged as its own command.
func (s *Store) DeleteCharacter(characterID string) error {
	if _, ok := s.Characters.Get(characterID); !ok {
		return apperrors.NotFound(apperrors.CodeCharacterNotFound, "character", characterID)
	}
	if _, err := s.Crews.RemoveCharacterEverywhere(characterID); err != nil {
		return fmt.Errorf("remove %s from crews: %w", characterID, err)
	}
	if _, err := s.Clocks.DeleteOwnedBy(characterID); err != nil {
		return fmt.Errorf("delete clocks of %s: %w", characterID, err)
	}
	if s.Rounds.IDs().Has(characterID) {
		if err := s.Rounds.Clear(characterID); err != nil {
			return fmt.Errorf("clear round of %s: %w", characterID, err)
		}
	}
	return s.Characters.Delete(characterID)
}

// DeleteCrew removes a crew and the clocks it owns.
func (s *Store) DeleteCrew(crewID string) error {
	if _, ok := s.Crews.Get(crewID); !ok {
		return apperrors.NotFound(apperrors.CodeCrewNotFound, "crew", crewID)
	}
	if _, err := s.Clocks.DeleteOwnedBy(crewID); err != nil {
		return fmt.Errorf("delete clocks of %s: %w", crewID, err)
	}
	return s.Crews.Delete(crewID)
}

// Versions is a change stamp across all slices.
type Versions struct {
	Characters uint64
	Crews      uint64
	Clocks     uint64
	Rounds     uint64
}

// Versions returns the current slice versions.
func (s *Store) Versions() Versions {
	return Versions{
		Characters: s.Characters.Version(),
		Crews:      s.Crews.Version(),
		Clocks:     s.Clocks.Version(),
		Rounds:     s.Rounds.Version(),
	}
}

// RestoreRounds replaces the round-state history and rebuilds round records
// from it. Commands that no longer apply are returned.
func (s *Store) RestoreRounds(history []command.Command) []command.Command {
	return s.Rounds.Restore(history, s.registry.Decode)
}

// Sources returns every slice log paired with its live ids, in export order.
func (s *Store) Sources() []history.Source {
	return []history.Source{
		{Log: s.Characters, Live: s.Characters.IDs()},
		{Log: s.Crews, Live: s.Crews.IDs()},
		{Log: s.Clocks, Live: s.Clocks.IDs()},
		{Log: s.Rounds, Live: s.Rounds.IDs()},
	}
}

// PruneHistory empties every slice history and returns the dropped count.
func (s *Store) PruneHistory() int {
	total := 0
	for _, src := range s.Sources() {
		total += history.PruneHistory(src.Log)
	}
	return total
}

// PruneOrphanedHistory drops orphaned commands from every slice and returns
// the dropped count per slice name.
func (s *Store) PruneOrphanedHistory() map[string]int {
	dropped := make(map[string]int, 4)
	for _, src := range s.Sources() {
		dropped[src.Log.Name()] = history.PruneOrphanedHistory(src, s.registry)
	}
	return dropped
}

// Cleanup removes entities of the named slice that are absent from valid.
func (s *Store) Cleanup(slice string, valid command.IDSet) ([]string, error) {
	var target history.Cleaner
	switch slice {
	case character.SliceName:
		target = s.Characters
	case crew.SliceName:
		target = s.Crews
	case clock.SliceName:
		target = s.Clocks
	case roundstate.SliceName:
		target = s.Rounds
	default:
		return nil, fmt.Errorf("unknown slice %q", slice)
	}
	return history.Cleanup(target, valid), nil
}
