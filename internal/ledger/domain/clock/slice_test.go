package clock

import (
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/crewledger/internal/ledger/domain/command"
	"github.com/louisbranch/crewledger/internal/ledger/rules"
	apperrors "github.com/louisbranch/crewledger/internal/platform/errors"
	"github.com/louisbranch/crewledger/internal/platform/id"
)

func newTestSlice() *Slice {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return NewSlice(rules.Default(), &command.Env{
		Now: func() time.Time {
			now = now.Add(time.Millisecond)
			return now
		},
		NewID: id.Sequence("clock"),
	})
}

func assertCode(t *testing.T, err error, code apperrors.Code) {
	t.Helper()
	if !errors.Is(err, &apperrors.Error{Code: code}) {
		t.Fatalf("err = %v, want code %s", err, code)
	}
}

func mustCreate(t *testing.T, s *Slice, p CreatePayload) Clock {
	t.Helper()
	c, err := s.Create(p)
	if err != nil {
		t.Fatalf("create %+v: %v", p, err)
	}
	return c
}

func assertBounds(t *testing.T, s *Slice) {
	t.Helper()
	for _, c := range s.List() {
		if c.Segments < 0 || c.Segments > c.MaxSegments {
			t.Fatalf("clock %s out of bounds: %d/%d", c.ID, c.Segments, c.MaxSegments)
		}
		if c.Filled() != (c.Segments == c.MaxSegments) {
			t.Fatalf("clock %s filled mismatch", c.ID)
		}
	}
}

func TestCreateDefaultsAndClamps(t *testing.T) {
	s := newTestSlice()
	harm := mustCreate(t, s, CreatePayload{EntityID: "char-1", ClockType: TypeHarm, Subtype: "Shaken", Segments: 9})
	if harm.MaxSegments != 6 || harm.Segments != 6 || !harm.Filled() {
		t.Fatalf("harm = %+v", harm)
	}
	addiction := mustCreate(t, s, CreatePayload{EntityID: "crew-1", ClockType: TypeAddiction, Segments: -2})
	if addiction.MaxSegments != 8 || addiction.Segments != 0 {
		t.Fatalf("addiction = %+v", addiction)
	}
	assertBounds(t, s)
}

func TestCreateRejections(t *testing.T) {
	tests := []struct {
		name string
		p    CreatePayload
		code apperrors.Code
	}{
		{"missing owner", CreatePayload{ClockType: TypeProgress, MaxSegments: 4}, apperrors.CodeClockOwnerRequired},
		{"bad type", CreatePayload{EntityID: "e", ClockType: "doom", MaxSegments: 4}, apperrors.CodeClockTypeInvalid},
		{"bad size", CreatePayload{EntityID: "e", ClockType: TypeProgress, MaxSegments: 5}, apperrors.CodeClockSizeInvalid},
		{"progress needs size", CreatePayload{EntityID: "e", ClockType: TypeProgress}, apperrors.CodeClockSizeInvalid},
		{"harm needs subtype", CreatePayload{EntityID: "e", ClockType: TypeHarm}, apperrors.CodeClockSubtypeEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSlice()
			_, err := s.Create(tt.p)
			assertCode(t, err, tt.code)
			if apperrors.KindOf(err) != apperrors.KindClockValidation {
				t.Fatalf("kind = %s", apperrors.KindOf(err))
			}
			if len(s.List()) != 0 {
				t.Fatal("rejected create must not mutate")
			}
		})
	}
}

func TestSegmentMutationsStayInBounds(t *testing.T) {
	s := newTestSlice()
	c := mustCreate(t, s, CreatePayload{EntityID: "crew-1", ClockType: TypeProgress, Subtype: "Heist", MaxSegments: 8})

	steps := []struct {
		name string
		run  func() error
		want int
	}{
		{"add", func() error { return s.AddSegments(c.ID, 3) }, 3},
		{"add past max", func() error { return s.AddSegments(c.ID, 20) }, 8},
		{"clear", func() error { return s.ClearSegments(c.ID, 2) }, 6},
		{"clear past zero", func() error { return s.ClearSegments(c.ID, 99) }, 0},
		{"set past max", func() error { return s.SetSegments(c.ID, 11) }, 8},
		{"shrink", func() error { return s.SetMaxSegments(c.ID, 4) }, 4},
		{"set negative", func() error { return s.SetSegments(c.ID, -1) }, 0},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		got, _ := s.Get(c.ID)
		if got.Segments != step.want {
			t.Fatalf("%s: segments = %d, want %d", step.name, got.Segments, step.want)
		}
		assertBounds(t, s)
	}

	assertCode(t, s.AddSegments(c.ID, -1), apperrors.CodeClockAmountInvalid)
	assertCode(t, s.SetMaxSegments(c.ID, 7), apperrors.CodeClockSizeInvalid)
	assertCode(t, s.Repurpose(c.ID, "Other", nil), apperrors.CodeClockNotRepurposable)
}

func TestHarmCapRepurposesFewestSegments(t *testing.T) {
	s := newTestSlice()
	a := mustCreate(t, s, CreatePayload{EntityID: "char-1", ClockType: TypeHarm, Subtype: "Shaken", Segments: 4})
	b := mustCreate(t, s, CreatePayload{EntityID: "char-1", ClockType: TypeHarm, Subtype: "Bleeding", Segments: 2})
	mustCreate(t, s, CreatePayload{EntityID: "char-1", ClockType: TypeHarm, Subtype: "Burned", Segments: 3})

	replaced := mustCreate(t, s, CreatePayload{
		EntityID:  "char-1",
		ClockType: TypeHarm,
		Subtype:   "Broken Arm",
		Metadata:  &Metadata{Description: "fell off a gantry"},
	})
	if replaced.ID != b.ID {
		t.Fatalf("replaced id = %s, want %s", replaced.ID, b.ID)
	}
	if replaced.Segments != 2 {
		t.Fatalf("segments = %d, want 2 carried over", replaced.Segments)
	}
	if replaced.Subtype != "Broken Arm" || replaced.Metadata == nil || replaced.Metadata.Description != "fell off a gantry" {
		t.Fatalf("replaced = %+v", replaced)
	}
	if got := s.OwnedOfType("char-1", TypeHarm); len(got) != 3 {
		t.Fatalf("harm clocks = %d, want 3", len(got))
	}
	history := s.History()
	if last := history[len(history)-1]; last.Type != CommandRepurpose {
		t.Fatalf("last command = %s, want %s", last.Type, CommandRepurpose)
	}

	again := mustCreate(t, s, CreatePayload{EntityID: "char-1", ClockType: TypeHarm, Subtype: "shaken"})
	if again.ID != a.ID {
		t.Fatalf("same subtype returned %s, want %s", again.ID, a.ID)
	}
}

func TestHarmCapTieBreaksByCreationOrder(t *testing.T) {
	s := newTestSlice()
	first := mustCreate(t, s, CreatePayload{EntityID: "char-1", ClockType: TypeHarm, Subtype: "A", Segments: 1})
	mustCreate(t, s, CreatePayload{EntityID: "char-1", ClockType: TypeHarm, Subtype: "B", Segments: 1})
	mustCreate(t, s, CreatePayload{EntityID: "char-1", ClockType: TypeHarm, Subtype: "C", Segments: 1})

	replaced := mustCreate(t, s, CreatePayload{EntityID: "char-1", ClockType: TypeHarm, Subtype: "D"})
	if replaced.ID != first.ID {
		t.Fatalf("replaced %s, want earliest %s", replaced.ID, first.ID)
	}
}

func TestHarmCapEnforcedOnApply(t *testing.T) {
	s := newTestSlice()
	for _, subtype := range []string{"A", "B", "C"} {
		mustCreate(t, s, CreatePayload{EntityID: "char-1", ClockType: TypeHarm, Subtype: subtype})
	}
	p := CreatePayload{ID: "forced", EntityID: "char-1", ClockType: TypeHarm, Subtype: "D", MaxSegments: 6}
	_, err := s.Apply(command.Command{Type: CommandCreate, Timestamp: 1}, p)
	assertCode(t, err, apperrors.CodeClockHarmCapReached)
}

func TestIndexes(t *testing.T) {
	s := newTestSlice()
	harm := mustCreate(t, s, CreatePayload{EntityID: "char-1", ClockType: TypeHarm, Subtype: "Shaken"})
	progress := mustCreate(t, s, CreatePayload{EntityID: "char-1", ClockType: TypeProgress, MaxSegments: 4})
	addiction := mustCreate(t, s, CreatePayload{EntityID: "crew-1", ClockType: TypeAddiction})

	if got := s.ByOwner("char-1"); len(got) != 2 || got[0].ID != harm.ID || got[1].ID != progress.ID {
		t.Fatalf("by owner = %+v", got)
	}
	if got := s.ByType(TypeAddiction); len(got) != 1 || got[0].ID != addiction.ID {
		t.Fatalf("by type = %+v", got)
	}

	snapshot := s.Snapshot()
	fresh := newTestSlice()
	fresh.Hydrate(snapshot)
	if got := fresh.ByOwner("char-1"); len(got) != 2 || got[0].ID != harm.ID {
		t.Fatalf("hydrated by owner = %+v", got)
	}
	if got := fresh.ByType(TypeHarm); len(got) != 1 {
		t.Fatalf("hydrated by type = %+v", got)
	}

	deleted, err := s.DeleteOwnedBy("char-1")
	if err != nil {
		t.Fatalf("delete owned: %v", err)
	}
	if len(deleted) != 2 || len(s.ByOwner("char-1")) != 0 || len(s.ByType(TypeHarm)) != 0 {
		t.Fatalf("deleted = %v", deleted)
	}
}

func TestFewestSegmentsEmpty(t *testing.T) {
	if _, ok := FewestSegments(nil); ok {
		t.Fatal("expected no clock")
	}
}
