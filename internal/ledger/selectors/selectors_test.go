package selectors

import (
	"testing"
	"time"

	"github.com/louisbranch/crewledger/internal/ledger/domain/character"
	"github.com/louisbranch/crewledger/internal/ledger/domain/clock"
	"github.com/louisbranch/crewledger/internal/ledger/domain/crew"
	"github.com/louisbranch/crewledger/internal/ledger/rules"
	"github.com/louisbranch/crewledger/internal/ledger/store"
	"github.com/louisbranch/crewledger/internal/platform/id"
)

type fixture struct {
	store *store.Store
	sel   *Selectors
	char  character.Character
	crew  crew.Crew
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	s, err := store.New(
		store.WithClock(func() time.Time {
			now = now.Add(time.Hour)
			return now
		}),
		store.WithIDGenerator(id.Sequence("id")),
	)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	c, err := s.Characters.Create(character.CreatePayload{
		Name: "Vex",
		Traits: []character.Trait{
			{Name: "Sapper", Category: character.TraitRole},
			{Name: "Hive Ganger", Category: character.TraitBackground},
		},
		Equipment: []character.Equipment{
			{Name: "Shotgun", Tier: rules.TierCommon, Slots: 2, Equipped: true},
			{Name: "Stim", Tier: rules.TierCommon, Slots: 1, Category: character.EquipmentConsumable},
		},
	})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}
	team, err := s.Crews.Create(crew.CreatePayload{Name: "Saints", Characters: []string{c.ID}})
	if err != nil {
		t.Fatalf("create crew: %v", err)
	}
	sel, err := New(s, 0)
	if err != nil {
		t.Fatalf("new selectors: %v", err)
	}
	return fixture{store: s, sel: sel, char: c, crew: team}
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(nil, 10); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestLookups(t *testing.T) {
	f := newFixture(t)
	if got, ok := f.sel.Character(f.char.ID); !ok || got.Name != "Vex" {
		t.Fatalf("character = %+v, %v", got, ok)
	}
	if _, ok := f.sel.Character("missing"); ok {
		t.Fatal("expected missing character")
	}
	if got, ok := f.sel.Crew(f.crew.ID); !ok || got.Name != "Saints" {
		t.Fatalf("crew = %+v, %v", got, ok)
	}
	if got, ok := f.sel.CrewForCharacter(f.char.ID); !ok || got.ID != f.crew.ID {
		t.Fatalf("crew for character = %+v, %v", got, ok)
	}
}

func TestLookupsReturnCopies(t *testing.T) {
	f := newFixture(t)
	c, _ := f.sel.Character(f.char.ID)
	c.Approaches[rules.ApproachForce] = 4
	c.Equipment[0].Name = "Stolen"
	again, _ := f.sel.Character(f.char.ID)
	if again.Approaches[rules.ApproachForce] == 4 || again.Equipment[0].Name == "Stolen" {
		t.Fatalf("cached character was modified through a lookup: %+v", again)
	}
	team, _ := f.sel.Crew(f.crew.ID)
	team.Characters[0] = "someone-else"
	if again, _ := f.sel.Crew(f.crew.ID); again.Characters[0] != f.char.ID {
		t.Fatalf("cached crew members = %v", again.Characters)
	}
}

func TestMemoInvalidatesOnMutation(t *testing.T) {
	f := newFixture(t)
	if got := f.sel.EquippedLoad(f.char.ID); got != 2 {
		t.Fatalf("equipped load = %d, want 2", got)
	}
	stim := f.char.Equipment[1]
	if _, err := f.store.Characters.ToggleEquipped(f.char.ID, stim.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got := f.sel.EquippedLoad(f.char.ID); got != 3 {
		t.Fatalf("equipped load after toggle = %d, want 3", got)
	}
}

func TestMemoReturnsSameSliceBetweenMutations(t *testing.T) {
	f := newFixture(t)
	first := f.sel.EnabledTraits(f.char.ID)
	second := f.sel.EnabledTraits(f.char.ID)
	if len(first) != 2 || &first[0] != &second[0] {
		t.Fatal("expected memoized traits to be shared")
	}
}

func TestTraitsSplitByDisabled(t *testing.T) {
	f := newFixture(t)
	trait := f.char.Traits[0]
	if err := f.store.Characters.DisableTrait(f.char.ID, trait.ID); err != nil {
		t.Fatalf("disable: %v", err)
	}
	enabled := f.sel.EnabledTraits(f.char.ID)
	disabled := f.sel.DisabledTraits(f.char.ID)
	if len(enabled) != 1 || len(disabled) != 1 || disabled[0].ID != trait.ID {
		t.Fatalf("enabled = %+v, disabled = %+v", enabled, disabled)
	}
}

func TestCanUseRally(t *testing.T) {
	f := newFixture(t)
	if f.sel.CanUseRally(f.char.ID) {
		t.Fatal("rally should be blocked at starting momentum")
	}
	if err := f.store.Crews.SetMomentum(f.crew.ID, 3); err != nil {
		t.Fatalf("set momentum: %v", err)
	}
	if !f.sel.CanUseRally(f.char.ID) {
		t.Fatal("rally should be allowed at momentum 3")
	}
	if err := f.store.Characters.UseRally(f.char.ID); err != nil {
		t.Fatalf("use rally: %v", err)
	}
	if f.sel.CanUseRally(f.char.ID) {
		t.Fatal("rally should be spent")
	}
	if f.sel.CanUseRally("missing") {
		t.Fatal("unknown character cannot rally")
	}
}

func TestHarmSelectors(t *testing.T) {
	f := newFixture(t)
	if f.sel.IsDying(f.char.ID) {
		t.Fatal("no harm yet")
	}
	if _, ok := f.sel.FewestSegmentsHarmClock(f.char.ID); ok {
		t.Fatal("expected no harm clock")
	}
	burn, err := f.store.Clocks.Create(clock.CreatePayload{EntityID: f.char.ID, ClockType: clock.TypeHarm, Subtype: "Burn"})
	if err != nil {
		t.Fatalf("create burn: %v", err)
	}
	cut, err := f.store.Clocks.Create(clock.CreatePayload{EntityID: f.char.ID, ClockType: clock.TypeHarm, Subtype: "Cut"})
	if err != nil {
		t.Fatalf("create cut: %v", err)
	}
	if err := f.store.Clocks.AddSegments(burn.ID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := f.store.Clocks.AddSegments(cut.ID, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := f.sel.TotalHarmSegments(f.char.ID); got != 3 {
		t.Fatalf("total harm = %d, want 3", got)
	}
	if got, _ := f.sel.FewestSegmentsHarmClock(f.char.ID); got.ID != cut.ID {
		t.Fatalf("fewest = %s, want %s", got.ID, cut.ID)
	}
	if got := len(f.sel.HarmClocks(f.char.ID)); got != 2 {
		t.Fatalf("harm clocks = %d, want 2", got)
	}
	if err := f.store.Clocks.AddSegments(burn.ID, 10); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !f.sel.IsDying(f.char.ID) {
		t.Fatal("filled harm clock should mark dying")
	}
}

func TestStimsAvailable(t *testing.T) {
	f := newFixture(t)
	if !f.sel.StimsAvailable(f.crew.ID) {
		t.Fatal("no addiction clock means stims are available")
	}
	addiction, err := f.store.Clocks.Create(clock.CreatePayload{EntityID: f.crew.ID, ClockType: clock.TypeAddiction, Subtype: "Stims"})
	if err != nil {
		t.Fatalf("create addiction: %v", err)
	}
	if got := len(f.sel.ClocksByType(clock.TypeAddiction)); got != 1 {
		t.Fatalf("addiction clocks = %d, want 1", got)
	}
	if err := f.store.Clocks.SetSegments(addiction.ID, addiction.MaxSegments); err != nil {
		t.Fatalf("set segments: %v", err)
	}
	if f.sel.StimsAvailable(f.crew.ID) {
		t.Fatal("filled addiction clock should block stims")
	}
	if f.sel.StimsAvailable("missing") {
		t.Fatal("unknown crew has no stims")
	}
}

func TestAggregates(t *testing.T) {
	f := newFixture(t)
	if got := f.sel.TotalDots(f.char.ID); got != f.char.TotalDots() {
		t.Fatalf("total dots = %d, want %d", got, f.char.TotalDots())
	}
	if got := f.sel.TotalDots("missing"); got != 0 {
		t.Fatalf("missing total dots = %d", got)
	}
	stim := f.char.Equipment[1]
	if err := f.store.Characters.UseEquipment(f.char.ID, stim.ID); err != nil {
		t.Fatalf("use: %v", err)
	}
	available := f.sel.AvailableEquipment(f.char.ID)
	if len(available) != 1 || available[0].Name != "Shotgun" {
		t.Fatalf("available = %+v", available)
	}
}

func TestHistoryStats(t *testing.T) {
	empty, err := store.New()
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	sel, _ := New(empty, 8)
	stats := sel.HistoryStats()
	if stats.Total != 0 || stats.Oldest != nil || stats.Newest != nil || stats.ElapsedHours != nil {
		t.Fatalf("empty stats = %+v", stats)
	}

	f := newFixture(t)
	stats = f.sel.HistoryStats()
	if stats.Total != 2 {
		t.Fatalf("total = %d, want 2", stats.Total)
	}
	if stats.EstimatedBytes != 2*AverageBytesPerCommand {
		t.Fatalf("bytes = %d", stats.EstimatedBytes)
	}
	if stats.PerSlice[character.SliceName] != 1 || stats.PerSlice[crew.SliceName] != 1 {
		t.Fatalf("per slice = %+v", stats.PerSlice)
	}
	if stats.ElapsedHours == nil || *stats.ElapsedHours != 1 {
		t.Fatalf("elapsed = %v, want 1", stats.ElapsedHours)
	}
}

func TestOrphanedCommands(t *testing.T) {
	f := newFixture(t)
	if err := f.store.Crews.Rename(f.crew.ID, "Sinners"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := f.store.DeleteCrew(f.crew.ID); err != nil {
		t.Fatalf("delete crew: %v", err)
	}
	orphans := f.sel.OrphanedCommands()[crew.SliceName]
	if len(orphans) != 2 {
		t.Fatalf("orphans = %+v, want create and rename", orphans)
	}
	for _, cmd := range orphans {
		if cmd.Type == crew.TypeDelete {
			t.Fatal("delete commands are never orphans")
		}
	}
}
