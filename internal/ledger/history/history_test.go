package history

import (
	"reflect"
	"testing"

	"github.com/louisbranch/crewledger/internal/ledger/domain/character"
	"github.com/louisbranch/crewledger/internal/ledger/domain/command"
	"github.com/louisbranch/crewledger/internal/ledger/rules"
	"github.com/louisbranch/crewledger/internal/platform/id"
)

func setup(t *testing.T) (*character.Slice, *command.Registry) {
	t.Helper()
	registry := command.NewRegistry()
	if err := character.Register(registry); err != nil {
		t.Fatalf("register: %v", err)
	}
	return character.NewSlice(rules.Default(), &command.Env{NewID: id.Sequence("id")}), registry
}

func create(t *testing.T, s *character.Slice, name string) character.Character {
	t.Helper()
	c, err := s.Create(character.CreatePayload{
		Name: name,
		Traits: []character.Trait{
			{Name: "Medic", Category: character.TraitRole},
			{Name: "Orphan", Category: character.TraitBackground},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return c
}

func source(s *character.Slice) Source {
	return Source{Log: s, Live: s.IDs()}
}

func commandsFor(t *testing.T, registry *command.Registry, history []command.Command, entityID string) []command.Command {
	t.Helper()
	var out []command.Command
	for _, cmd := range history {
		target, err := registry.Target(cmd)
		if err != nil {
			t.Fatalf("target: %v", err)
		}
		if target == entityID {
			out = append(out, cmd)
		}
	}
	return out
}

func TestIsOrphanedCommand(t *testing.T) {
	s, registry := setup(t)
	c := create(t, s, "Ada")
	if err := s.Rename(c.ID, "Ada Prime"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := s.Delete(c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	history := s.History()
	live := s.IDs()

	if !IsOrphanedCommand(history[0], live, registry) {
		t.Fatal("create of deleted character should be orphaned")
	}
	if !IsOrphanedCommand(history[1], live, registry) {
		t.Fatal("rename of deleted character should be orphaned")
	}
	if IsOrphanedCommand(history[2], live, registry) {
		t.Fatal("delete command must never be orphaned")
	}
	if IsOrphanedCommand(command.Command{Type: "characters/unknown"}, live, registry) {
		t.Fatal("undecodable commands are kept")
	}
}

func TestPruneOrphanedKeepsOnlyDeleteCommand(t *testing.T) {
	s, registry := setup(t)
	gone := create(t, s, "Ada")
	kept := create(t, s, "Bex")
	if err := s.Rename(gone.ID, "Ada Prime"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := s.Delete(gone.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if got := len(Orphaned(source(s), registry)); got != 2 {
		t.Fatalf("orphaned = %d, want 2", got)
	}
	dropped := PruneOrphanedHistory(source(s), registry)
	if dropped != 2 {
		t.Fatalf("dropped = %d, want 2", dropped)
	}
	remaining := commandsFor(t, registry, s.History(), gone.ID)
	if len(remaining) != 1 || remaining[0].Type != character.TypeDelete {
		t.Fatalf("remaining for deleted entity = %+v", remaining)
	}
	if got := commandsFor(t, registry, s.History(), kept.ID); len(got) != 1 {
		t.Fatalf("commands for live entity = %d, want 1", len(got))
	}
}

func TestPruneOrphanedIsIdempotent(t *testing.T) {
	s, registry := setup(t)
	a := create(t, s, "Ada")
	create(t, s, "Bex")
	if err := s.Delete(a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	PruneOrphanedHistory(source(s), registry)
	first := s.History()
	version := s.Version()
	if dropped := PruneOrphanedHistory(source(s), registry); dropped != 0 {
		t.Fatalf("second prune dropped %d", dropped)
	}
	if !reflect.DeepEqual(first, s.History()) {
		t.Fatal("second prune changed history")
	}
	if s.Version() != version {
		t.Fatal("no-op prune must not bump the version")
	}
}

func TestPruneHistory(t *testing.T) {
	s, _ := setup(t)
	create(t, s, "Ada")
	create(t, s, "Bex")
	if n := PruneHistory(s); n != 2 {
		t.Fatalf("pruned = %d, want 2", n)
	}
	if len(s.History()) != 0 {
		t.Fatal("expected empty history")
	}
	if len(s.List()) != 2 {
		t.Fatal("pruning history must not touch entities")
	}
}

func TestCleanup(t *testing.T) {
	s, _ := setup(t)
	a := create(t, s, "Ada")
	b := create(t, s, "Bex")
	removed := Cleanup(s, command.NewIDSet(b.ID))
	if len(removed) != 1 || removed[0] != a.ID {
		t.Fatalf("removed = %v", removed)
	}
	if _, ok := s.Get(a.ID); ok {
		t.Fatal("expected a removed")
	}
}
