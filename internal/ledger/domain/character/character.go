// Package character owns the character slice: the id-indexed characters, the
// validators that admit mutations, and the slice command history.
package character

import (
	"maps"

	"github.com/louisbranch/crewledger/internal/ledger/rules"
)

// TraitCategory classifies a trait.
type TraitCategory string

const (
	TraitRole       TraitCategory = "role"
	TraitBackground TraitCategory = "background"
	TraitScar       TraitCategory = "scar"
	TraitFlashback  TraitCategory = "flashback"
	TraitGrouped    TraitCategory = "grouped"
)

// ValidTraitCategory reports whether c is a known trait category.
func ValidTraitCategory(c TraitCategory) bool {
	switch c {
	case TraitRole, TraitBackground, TraitScar, TraitFlashback, TraitGrouped:
		return true
	}
	return false
}

// Trait is a narrative descriptor. Disabled traits are kept but not available.
type Trait struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Category    TraitCategory `json:"category"`
	Disabled    bool          `json:"disabled"`
	Description string        `json:"description,omitempty"`
	AcquiredAt  int64         `json:"acquiredAt"`
}

// EquipmentConsumable is the equipment category consumed on use.
const EquipmentConsumable = "consumable"

// Modifiers holds roll modifiers. Each axis carries a bonus or a penalty,
// never both.
type Modifiers struct {
	DiceBonus       *int `json:"diceBonus,omitempty"`
	DicePenalty     *int `json:"dicePenalty,omitempty"`
	PositionBonus   *int `json:"positionBonus,omitempty"`
	PositionPenalty *int `json:"positionPenalty,omitempty"`
	EffectBonus     *int `json:"effectBonus,omitempty"`
	EffectPenalty   *int `json:"effectPenalty,omitempty"`
}

// Dice returns the net dice modifier.
func (m Modifiers) Dice() int {
	return value(m.DiceBonus) - value(m.DicePenalty)
}

func value(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func (m Modifiers) clone() Modifiers {
	cp := func(p *int) *int {
		if p == nil {
			return nil
		}
		v := *p
		return &v
	}
	return Modifiers{
		DiceBonus:       cp(m.DiceBonus),
		DicePenalty:     cp(m.DicePenalty),
		PositionBonus:   cp(m.PositionBonus),
		PositionPenalty: cp(m.PositionPenalty),
		EffectBonus:     cp(m.EffectBonus),
		EffectPenalty:   cp(m.EffectPenalty),
	}
}

// Equipment is an item carried by a character.
type Equipment struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Tier        rules.Tier `json:"tier"`
	Category    string     `json:"category"`
	Slots       int        `json:"slots"`
	Equipped    bool       `json:"equipped"`
	Locked      bool       `json:"locked"`
	Consumed    bool       `json:"consumed"`
	AutoEquip   bool       `json:"autoEquip"`
	Modifiers   Modifiers  `json:"modifiers"`
	Description string     `json:"description,omitempty"`
}

func (e Equipment) clone() Equipment {
	e.Modifiers = e.Modifiers.clone()
	return e
}

// Character is one member of a crew.
type Character struct {
	ID                      string                 `json:"id"`
	Name                    string                 `json:"name"`
	Traits                  []Trait                `json:"traits"`
	Approaches              map[rules.Approach]int `json:"approaches"`
	UnallocatedApproachDots int                    `json:"unallocatedApproachDots"`
	Equipment               []Equipment            `json:"equipment"`
	RallyAvailable          bool                   `json:"rallyAvailable"`
	LoadLimit               int                    `json:"loadLimit"`
	CreatedAt               int64                  `json:"createdAt"`
	UpdatedAt               int64                  `json:"updatedAt"`
}

// Clone returns a deep copy of c.
func (c Character) Clone() Character {
	out := c
	if c.Traits != nil {
		out.Traits = append([]Trait(nil), c.Traits...)
	}
	if c.Approaches != nil {
		out.Approaches = maps.Clone(c.Approaches)
	}
	if c.Equipment != nil {
		out.Equipment = make([]Equipment, len(c.Equipment))
		for i, item := range c.Equipment {
			out.Equipment[i] = item.clone()
		}
	}
	return out
}

// TotalDots sums the allocated approach dots.
func (c Character) TotalDots() int {
	total := 0
	for _, dots := range c.Approaches {
		total += dots
	}
	return total
}

// EquippedLoad sums slots over equipped items.
func (c Character) EquippedLoad() int {
	load := 0
	for _, item := range c.Equipment {
		if item.Equipped {
			load += item.Slots
		}
	}
	return load
}

// Trait returns the trait with id.
func (c Character) Trait(id string) (Trait, bool) {
	i := c.traitIndex(id)
	if i < 0 {
		return Trait{}, false
	}
	return c.Traits[i], true
}

// Item returns the equipment with id.
func (c Character) Item(id string) (Equipment, bool) {
	i := c.itemIndex(id)
	if i < 0 {
		return Equipment{}, false
	}
	return c.Equipment[i].clone(), true
}

func (c Character) traitIndex(id string) int {
	for i, trait := range c.Traits {
		if trait.ID == id {
			return i
		}
	}
	return -1
}

func (c Character) itemIndex(id string) int {
	for i, item := range c.Equipment {
		if item.ID == id {
			return i
		}
	}
	return -1
}
