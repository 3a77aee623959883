package store

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/louisbranch/crewledger/internal/ledger/domain/character"
	"github.com/louisbranch/crewledger/internal/ledger/domain/clock"
	"github.com/louisbranch/crewledger/internal/ledger/domain/command"
	"github.com/louisbranch/crewledger/internal/ledger/domain/crew"
	"github.com/louisbranch/crewledger/internal/ledger/domain/roundstate"
	"github.com/louisbranch/crewledger/internal/ledger/rules"
	apperrors "github.com/louisbranch/crewledger/internal/platform/errors"
	"github.com/louisbranch/crewledger/internal/platform/id"
	"github.com/louisbranch/crewledger/internal/platform/telemetry/metrics"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	base := []Option{
		WithClock(func() time.Time {
			now = now.Add(time.Millisecond)
			return now
		}),
		WithIDGenerator(id.Sequence("id")),
	}
	s, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func seedCharacter(t *testing.T, s *Store) character.Character {
	t.Helper()
	c, err := s.Characters.Create(character.CreatePayload{
		Name: "Vex",
		Traits: []character.Trait{
			{Name: "Sapper", Category: character.TraitRole},
			{Name: "Hive Ganger", Category: character.TraitBackground},
		},
	})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}
	return c
}

func TestNewRejectsInvalidRules(t *testing.T) {
	r := rules.Default()
	r.HarmClockSize = 5
	if _, err := New(WithRules(r)); err == nil {
		t.Fatal("expected invalid rules error")
	}
}

func TestDispatchRoutesBySlice(t *testing.T) {
	s := newTestStore(t)
	payload, _ := json.Marshal(crew.CreatePayload{ID: "crew-x", Name: "Saints"})
	applied, err := s.Dispatch(command.Command{
		Type:      crew.TypeCreate,
		Payload:   payload,
		Timestamp: 1000,
		Version:   command.SchemaVersion,
		CommandID: "cmd-x",
	})
	if err != nil || !applied {
		t.Fatalf("dispatch = %v, %v", applied, err)
	}
	got, ok := s.Crews.Get("crew-x")
	if !ok || got.CreatedAt != 1000 {
		t.Fatalf("crew = %+v", got)
	}
	if h := s.Crews.History(); len(h) != 1 || h[0].CommandID != "cmd-x" {
		t.Fatalf("history = %+v", h)
	}
}

func TestDispatchUnknownType(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Dispatch(command.Command{Type: "ships/launch"})
	if !errors.Is(err, &apperrors.Error{Code: apperrors.CodeCommandTypeUnknown}) {
		t.Fatalf("err = %v", err)
	}
}

func TestDeleteCharacterCascades(t *testing.T) {
	s := newTestStore(t)
	c := seedCharacter(t, s)
	team, err := s.Crews.Create(crew.CreatePayload{Name: "Saints", Characters: []string{c.ID}})
	if err != nil {
		t.Fatalf("create crew: %v", err)
	}
	if _, err := s.Clocks.Create(clock.CreatePayload{EntityID: c.ID, ClockType: clock.TypeHarm, Subtype: "Shaken"}); err != nil {
		t.Fatalf("create clock: %v", err)
	}
	if err := s.Rounds.SetActionPlan(roundstate.SetActionPlanPayload{
		Ref:      roundstate.Ref{CharacterID: c.ID},
		Approach: rules.ApproachForce,
		Position: rules.PositionRisky,
		Effect:   rules.EffectStandard,
	}); err != nil {
		t.Fatalf("plan: %v", err)
	}

	if err := s.DeleteCharacter(c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := s.Characters.Get(c.ID); ok {
		t.Fatal("character still present")
	}
	if got, _ := s.Crews.Get(team.ID); got.HasMember(c.ID) {
		t.Fatal("crew still lists the character")
	}
	if len(s.Clocks.ByOwner(c.ID)) != 0 {
		t.Fatal("owned clocks still present")
	}
	if s.Rounds.IDs().Has(c.ID) {
		t.Fatal("round record still present")
	}

	lastOf := func(h []command.Command) command.Type { return h[len(h)-1].Type }
	if lastOf(s.Crews.History()) != crew.TypeRemoveCharacter {
		t.Fatal("crew removal not logged")
	}
	if lastOf(s.Clocks.History()) != clock.CommandDelete {
		t.Fatal("clock delete not logged")
	}
	if lastOf(s.Rounds.History()) != roundstate.TypeClear {
		t.Fatal("round clear not logged")
	}

	err = s.DeleteCharacter(c.ID)
	if !apperrors.IsNotFound(err) {
		t.Fatalf("second delete err = %v, want not found", err)
	}
}

func TestDeleteCharacterThenPruneKeepsDeleteCommand(t *testing.T) {
	s := newTestStore(t)
	c := seedCharacter(t, s)
	if err := s.Characters.Rename(c.ID, "Vexa"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := s.DeleteCharacter(c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	dropped := s.PruneOrphanedHistory()
	if dropped[character.SliceName] != 2 {
		t.Fatalf("dropped = %v", dropped)
	}
	h := s.Characters.History()
	if len(h) != 1 || h[0].Type != character.TypeDelete {
		t.Fatalf("history = %+v", h)
	}
}

func TestDeleteCrewDeletesOwnedClocks(t *testing.T) {
	s := newTestStore(t)
	team, _ := s.Crews.Create(crew.CreatePayload{Name: "Saints"})
	if _, err := s.Clocks.Create(clock.CreatePayload{EntityID: team.ID, ClockType: clock.TypeAddiction}); err != nil {
		t.Fatalf("create clock: %v", err)
	}
	if err := s.DeleteCrew(team.ID); err != nil {
		t.Fatalf("delete crew: %v", err)
	}
	if len(s.Clocks.List()) != 0 {
		t.Fatal("crew clocks survived")
	}
	if !apperrors.IsNotFound(s.DeleteCrew(team.ID)) {
		t.Fatal("expected not found on second delete")
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	next:
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if labels[pair.GetName()] != pair.GetValue() {
					continue next
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMetricsObserveDispatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	s := newTestStore(t, WithMetrics(m))
	c := seedCharacter(t, s)
	_ = s.Characters.UseRally(c.ID)
	_ = s.Characters.UseRally(c.ID)

	if s.Metrics() != m {
		t.Fatal("expected metrics ledger")
	}
	applied := counterValue(t, reg, "crewledger_commands_applied_total",
		map[string]string{"type": string(character.TypeUseRally)})
	if applied != 1 {
		t.Fatalf("applied useRally = %v, want 1", applied)
	}
	rejected := counterValue(t, reg, "crewledger_commands_rejected_total", map[string]string{
		"type": string(character.TypeUseRally),
		"kind": string(apperrors.KindCharacterValidation),
	})
	if rejected != 1 {
		t.Fatalf("rejected useRally = %v, want 1", rejected)
	}
}

func TestUserAttribution(t *testing.T) {
	s := newTestStore(t, WithUser("gm-1"))
	seedCharacter(t, s)
	s.SetUser("player-2")
	team, _ := s.Crews.Create(crew.CreatePayload{Name: "Saints"})
	if got := s.Characters.History()[0].UserID; got != "gm-1" {
		t.Fatalf("user = %q, want gm-1", got)
	}
	if got := s.Crews.History()[0].UserID; got != "player-2" {
		t.Fatalf("user = %q, want player-2 for %s", got, team.ID)
	}
}

func TestCleanupBySlice(t *testing.T) {
	s := newTestStore(t)
	c := seedCharacter(t, s)
	removed, err := s.Cleanup(character.SliceName, command.NewIDSet())
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if len(removed) != 1 || removed[0] != c.ID {
		t.Fatalf("removed = %v", removed)
	}
	if _, err := s.Cleanup("ships", nil); err == nil {
		t.Fatal("expected unknown slice error")
	}
}

func TestVersionsChange(t *testing.T) {
	s := newTestStore(t)
	before := s.Versions()
	seedCharacter(t, s)
	after := s.Versions()
	if after.Characters == before.Characters || after.Crews != before.Crews {
		t.Fatalf("versions %+v -> %+v", before, after)
	}
}
