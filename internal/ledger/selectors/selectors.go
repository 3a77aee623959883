// Package selectors computes derived read views over a store.
//
// Results are memoized in an LRU keyed by selector, argument and the slice
// versions observed at read time, so repeated reads between mutations return
// the same value without recomputing. Single-entity lookups return copies;
// returned slices are shared between callers and must not be modified.
package selectors

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/louisbranch/crewledger/internal/ledger/domain/character"
	"github.com/louisbranch/crewledger/internal/ledger/domain/clock"
	"github.com/louisbranch/crewledger/internal/ledger/domain/crew"
	"github.com/louisbranch/crewledger/internal/ledger/store"
)

// DefaultCacheSize bounds the memo cache when no size is given.
const DefaultCacheSize = 512

type key struct {
	name     string
	arg      string
	versions store.Versions
}

// Selectors reads derived views from a store.
type Selectors struct {
	store *store.Store
	cache *lru.Cache[key, any]
}

// New returns selectors over s with a memo cache of size entries.
func New(s *store.Store, size int) (*Selectors, error) {
	if s == nil {
		return nil, fmt.Errorf("store is required")
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[key, any](size)
	if err != nil {
		return nil, fmt.Errorf("selector cache: %w", err)
	}
	return &Selectors{store: s, cache: cache}, nil
}

func memo[T any](s *Selectors, name, arg string, compute func() T) T {
	k := key{name: name, arg: arg, versions: s.store.Versions()}
	if cached, ok := s.cache.Get(k); ok {
		return cached.(T)
	}
	value := compute()
	s.cache.Add(k, value)
	return value
}

type found[T any] struct {
	value T
	ok    bool
}

func cloned[T interface{ Clone() T }](r found[T]) (T, bool) {
	if !r.ok {
		var zero T
		return zero, false
	}
	return r.value.Clone(), true
}

// Character looks up a character by id.
func (s *Selectors) Character(id string) (character.Character, bool) {
	r := memo(s, "character", id, func() found[character.Character] {
		c, ok := s.store.Characters.Get(id)
		return found[character.Character]{c, ok}
	})
	return cloned(r)
}

// Crew looks up a crew by id.
func (s *Selectors) Crew(id string) (crew.Crew, bool) {
	r := memo(s, "crew", id, func() found[crew.Crew] {
		c, ok := s.store.Crews.Get(id)
		return found[crew.Crew]{c, ok}
	})
	return cloned(r)
}

// Clock looks up a clock by id.
func (s *Selectors) Clock(id string) (clock.Clock, bool) {
	r := memo(s, "clock", id, func() found[clock.Clock] {
		c, ok := s.store.Clocks.Get(id)
		return found[clock.Clock]{c, ok}
	})
	return cloned(r)
}

// EnabledTraits lists the character's available traits.
func (s *Selectors) EnabledTraits(characterID string) []character.Trait {
	return memo(s, "enabledTraits", characterID, func() []character.Trait {
		return s.traits(characterID, false)
	})
}

// DisabledTraits lists the character's soft-disabled traits.
func (s *Selectors) DisabledTraits(characterID string) []character.Trait {
	return memo(s, "disabledTraits", characterID, func() []character.Trait {
		return s.traits(characterID, true)
	})
}

func (s *Selectors) traits(characterID string, disabled bool) []character.Trait {
	c, ok := s.Character(characterID)
	if !ok {
		return nil
	}
	var out []character.Trait
	for _, trait := range c.Traits {
		if trait.Disabled == disabled {
			out = append(out, trait)
		}
	}
	return out
}

// HarmClocks lists the harm clocks owned by ownerID in creation order.
func (s *Selectors) HarmClocks(ownerID string) []clock.Clock {
	return memo(s, "harmClocks", ownerID, func() []clock.Clock {
		return s.store.Clocks.OwnedOfType(ownerID, clock.TypeHarm)
	})
}

// ClocksByType lists every clock of type t in creation order.
func (s *Selectors) ClocksByType(t clock.Type) []clock.Clock {
	return memo(s, "clocksByType", string(t), func() []clock.Clock {
		return s.store.Clocks.ByType(t)
	})
}

// CrewForCharacter returns the first crew, in creation order, listing the character.
func (s *Selectors) CrewForCharacter(characterID string) (crew.Crew, bool) {
	r := memo(s, "crewForCharacter", characterID, func() found[crew.Crew] {
		crews := s.store.Crews.ForCharacter(characterID)
		if len(crews) == 0 {
			return found[crew.Crew]{}
		}
		return found[crew.Crew]{crews[0], true}
	})
	return cloned(r)
}

// AddictionClock returns the crew's addiction clock.
func (s *Selectors) AddictionClock(crewID string) (clock.Clock, bool) {
	r := memo(s, "addictionClock", crewID, func() found[clock.Clock] {
		clocks := s.store.Clocks.OwnedOfType(crewID, clock.TypeAddiction)
		if len(clocks) == 0 {
			return found[clock.Clock]{}
		}
		return found[clock.Clock]{clocks[0], true}
	})
	return cloned(r)
}

// CanUseRally reports whether the character still has rally and its crew's
// momentum is low enough to allow it.
func (s *Selectors) CanUseRally(characterID string) bool {
	return memo(s, "canUseRally", characterID, func() bool {
		c, ok := s.Character(characterID)
		if !ok || !c.RallyAvailable {
			return false
		}
		team, ok := s.CrewForCharacter(characterID)
		if !ok {
			return false
		}
		return team.CurrentMomentum <= s.store.Rules().RallyMaxMomentum
	})
}

// IsDying reports whether any harm clock of the character is filled.
func (s *Selectors) IsDying(characterID string) bool {
	return memo(s, "isDying", characterID, func() bool {
		for _, c := range s.HarmClocks(characterID) {
			if c.Filled() {
				return true
			}
		}
		return false
	})
}

// StimsAvailable reports whether the crew may still use stims: true unless
// its addiction clock is filled. Unknown crews have none.
func (s *Selectors) StimsAvailable(crewID string) bool {
	return memo(s, "stimsAvailable", crewID, func() bool {
		if _, ok := s.Crew(crewID); !ok {
			return false
		}
		addiction, ok := s.AddictionClock(crewID)
		return !ok || !addiction.Filled()
	})
}

// TotalDots sums the character's allocated approach dots.
func (s *Selectors) TotalDots(characterID string) int {
	return memo(s, "totalDots", characterID, func() int {
		c, _ := s.Character(characterID)
		return c.TotalDots()
	})
}

// TotalHarmSegments sums marked segments over the character's harm clocks.
func (s *Selectors) TotalHarmSegments(characterID string) int {
	return memo(s, "totalHarmSegments", characterID, func() int {
		total := 0
		for _, c := range s.HarmClocks(characterID) {
			total += c.Segments
		}
		return total
	})
}

// EquippedLoad sums slots over the character's equipped items.
func (s *Selectors) EquippedLoad(characterID string) int {
	return memo(s, "equippedLoad", characterID, func() int {
		c, _ := s.Character(characterID)
		return c.EquippedLoad()
	})
}

// AvailableEquipment lists the character's items that are not consumed.
func (s *Selectors) AvailableEquipment(characterID string) []character.Equipment {
	return memo(s, "availableEquipment", characterID, func() []character.Equipment {
		c, ok := s.Character(characterID)
		if !ok {
			return nil
		}
		var out []character.Equipment
		for _, item := range c.Equipment {
			if !item.Consumed {
				out = append(out, item)
			}
		}
		return out
	})
}

// FewestSegmentsHarmClock returns the character's harm clock with the fewest
// marked segments, earliest created on ties.
func (s *Selectors) FewestSegmentsHarmClock(characterID string) (clock.Clock, bool) {
	r := memo(s, "fewestSegmentsHarmClock", characterID, func() found[clock.Clock] {
		c, ok := clock.FewestSegments(s.HarmClocks(characterID))
		return found[clock.Clock]{c, ok}
	})
	return cloned(r)
}
