package character

import (
	"maps"

	"github.com/louisbranch/crewledger/internal/ledger/domain/command"
	"github.com/louisbranch/crewledger/internal/ledger/rules"
)

// PrepareCreate normalizes a create payload: names are NFC-folded, missing
// ids are generated, a missing load limit takes the rule default and item
// slots default to the tier cost.
func (s *Slice) PrepareCreate(p CreatePayload) CreatePayload {
	if p.ID == "" {
		p.ID = s.env.ID()
	}
	p.Name = command.NormalizeName(p.Name)
	limit := s.rules.DefaultLoadLimit
	if p.LoadLimit != nil {
		limit = *p.LoadLimit
	}
	p.LoadLimit = &limit
	p.Approaches = maps.Clone(p.Approaches)
	traits := make([]Trait, len(p.Traits))
	for i, trait := range p.Traits {
		traits[i] = s.prepareTrait(trait)
	}
	p.Traits = traits
	items := make([]Equipment, len(p.Equipment))
	for i, item := range p.Equipment {
		items[i] = s.prepareEquipment(item)
	}
	p.Equipment = items
	return p
}

func (s *Slice) prepareTrait(trait Trait) Trait {
	if trait.ID == "" {
		trait.ID = s.env.ID()
	}
	trait.Name = command.NormalizeName(trait.Name)
	return trait
}

func (s *Slice) prepareEquipment(item Equipment) Equipment {
	if item.ID == "" {
		item.ID = s.env.ID()
	}
	item.Name = command.NormalizeName(item.Name)
	if item.Slots == 0 {
		item.Slots = s.rules.TierCost[item.Tier]
	}
	return item.clone()
}

// Create adds a character and returns it.
func (s *Slice) Create(p CreatePayload) (Character, error) {
	p = s.PrepareCreate(p)
	if _, err := s.run(p); err != nil {
		return Character{}, err
	}
	c, _ := s.Get(p.ID)
	return c, nil
}

// Rename changes a character name.
func (s *Slice) Rename(characterID, name string) error {
	_, err := s.run(RenamePayload{Ref: Ref{characterID}, Name: command.NormalizeName(name)})
	return err
}

// Delete removes a character. Cross-slice references are the store's concern.
func (s *Slice) Delete(characterID string) error {
	_, err := s.run(DeletePayload{Ref{characterID}})
	return err
}

// SetApproach reallocates dots between an approach and the unallocated pool.
func (s *Slice) SetApproach(characterID string, approach rules.Approach, dots int) error {
	_, err := s.run(SetApproachPayload{Ref: Ref{characterID}, Approach: approach, Dots: dots})
	return err
}

// AdvanceApproach adds one dot outside the allocation pool.
func (s *Slice) AdvanceApproach(characterID string, approach rules.Approach) error {
	_, err := s.run(AdvanceApproachPayload{Ref: Ref{characterID}, Approach: approach})
	return err
}

// AddTrait appends a trait and returns it with its assigned id.
func (s *Slice) AddTrait(characterID string, trait Trait) (Trait, error) {
	trait = s.prepareTrait(trait)
	if _, err := s.run(AddTraitPayload{Ref: Ref{characterID}, Trait: trait}); err != nil {
		return Trait{}, err
	}
	return s.trait(characterID, trait.ID), nil
}

func (s *Slice) trait(characterID, traitID string) Trait {
	c, ok := s.items[characterID]
	if !ok {
		return Trait{}
	}
	trait, _ := c.Trait(traitID)
	return trait
}

// RemoveTrait hard-removes a trait.
func (s *Slice) RemoveTrait(characterID, traitID string) error {
	_, err := s.run(RemoveTraitPayload{TraitPayload{Ref{characterID}, traitID}})
	return err
}

// DisableTrait soft-disables a trait.
func (s *Slice) DisableTrait(characterID, traitID string) error {
	_, err := s.run(DisableTraitPayload{TraitPayload{Ref{characterID}, traitID}})
	return err
}

// EnableTrait re-enables a trait.
func (s *Slice) EnableTrait(characterID, traitID string) error {
	_, err := s.run(EnableTraitPayload{TraitPayload{Ref{characterID}, traitID}})
	return err
}

// EnableAllTraits re-enables every trait of a character.
func (s *Slice) EnableAllTraits(characterID string) error {
	_, err := s.run(EnableAllTraitsPayload{Ref{characterID}})
	return err
}

// GroupTraits replaces exactly three traits with one grouped trait.
func (s *Slice) GroupTraits(characterID string, traitIDs []string, grouped Trait) (Trait, error) {
	grouped = s.prepareTrait(grouped)
	grouped.Category = TraitGrouped
	p := GroupTraitsPayload{Ref: Ref{characterID}, TraitIDs: append([]string(nil), traitIDs...), Trait: grouped}
	if _, err := s.run(p); err != nil {
		return Trait{}, err
	}
	return s.trait(characterID, grouped.ID), nil
}

// AddEquipment adds an item, equipping it when it auto-equips and fits.
func (s *Slice) AddEquipment(characterID string, item Equipment) (Equipment, error) {
	item = s.prepareEquipment(item)
	if _, err := s.run(AddEquipmentPayload{Ref: Ref{characterID}, Equipment: item}); err != nil {
		return Equipment{}, err
	}
	c := s.items[characterID]
	added, _ := c.Item(item.ID)
	return added, nil
}

// RemoveEquipment removes an item unless it is equipped and locked.
func (s *Slice) RemoveEquipment(characterID, equipmentID string) error {
	_, err := s.run(RemoveEquipmentPayload{EquipmentPayload{Ref{characterID}, equipmentID}})
	return err
}

// ToggleEquipped equips or unequips an item. Equipping past the load limit is
// a no-op reported as false with a nil error.
func (s *Slice) ToggleEquipped(characterID, equipmentID string) (bool, error) {
	return s.run(ToggleEquippedPayload{EquipmentPayload{Ref{characterID}, equipmentID}})
}

// UseEquipment locks an item and consumes it when it is a consumable.
func (s *Slice) UseEquipment(characterID, equipmentID string) error {
	_, err := s.run(UseEquipmentPayload{EquipmentPayload{Ref{characterID}, equipmentID}})
	return err
}

// UnlockAllEquipment clears every lock on a character.
func (s *Slice) UnlockAllEquipment(characterID string) error {
	_, err := s.run(UnlockAllEquipmentPayload{Ref{characterID}})
	return err
}

// SetLoadLimit changes the load limit.
func (s *Slice) SetLoadLimit(characterID string, limit int) error {
	_, err := s.run(SetLoadLimitPayload{Ref: Ref{characterID}, LoadLimit: limit})
	return err
}

// UseRally spends the character's rally.
func (s *Slice) UseRally(characterID string) error {
	_, err := s.run(UseRallyPayload{Ref{characterID}})
	return err
}

// ResetRally makes rally available again.
func (s *Slice) ResetRally(characterID string) error {
	_, err := s.run(ResetRallyPayload{Ref{characterID}})
	return err
}
