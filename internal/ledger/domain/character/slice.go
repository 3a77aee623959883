package character

import (
	"slices"
	"strings"

	"github.com/louisbranch/crewledger/internal/ledger/domain/command"
	"github.com/louisbranch/crewledger/internal/ledger/rules"
	apperrors "github.com/louisbranch/crewledger/internal/platform/errors"
)

// Slice holds the characters and their command history.
//
// A Slice is not safe for concurrent use; the owner serializes dispatches.
type Slice struct {
	rules   rules.Rules
	env     *command.Env
	items   map[string]*Character
	order   []string
	history []command.Command
	version uint64
}

// NewSlice returns an empty slice.
func NewSlice(r rules.Rules, env *command.Env) *Slice {
	if env == nil {
		env = command.NewEnv()
	}
	return &Slice{
		rules: r,
		env:   env,
		items: make(map[string]*Character),
	}
}

// Name returns the slice namespace.
func (s *Slice) Name() string { return SliceName }

// Version increases on every change to entities or history.
func (s *Slice) Version() uint64 { return s.version }

// Get returns a copy of the character with id.
func (s *Slice) Get(id string) (Character, bool) {
	c, ok := s.items[id]
	if !ok {
		return Character{}, false
	}
	return c.Clone(), true
}

// List returns copies of all characters in creation order.
func (s *Slice) List() []Character {
	out := make([]Character, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].Clone())
	}
	return out
}

// IDs returns the live character ids.
func (s *Slice) IDs() command.IDSet {
	return command.NewIDSet(s.order...)
}

// Snapshot returns copies of all characters keyed by id.
func (s *Slice) Snapshot() map[string]Character {
	out := make(map[string]Character, len(s.items))
	for id, c := range s.items {
		out[id] = c.Clone()
	}
	return out
}

// History returns a copy of the command history.
func (s *Slice) History() []command.Command {
	return slices.Clone(s.history)
}

// ReplaceHistory swaps the command history, used by pruning.
func (s *Slice) ReplaceHistory(history []command.Command) {
	s.history = slices.Clone(history)
	s.version++
}

// Hydrate replaces all characters and clears history.
func (s *Slice) Hydrate(characters map[string]Character) {
	s.items = make(map[string]*Character, len(characters))
	s.order = s.order[:0]
	for id, c := range characters {
		c = c.Clone()
		c.ID = id
		s.items[id] = &c
		s.order = append(s.order, id)
	}
	slices.SortFunc(s.order, func(a, b string) int {
		ca, cb := s.items[a], s.items[b]
		if ca.CreatedAt != cb.CreatedAt {
			if ca.CreatedAt < cb.CreatedAt {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})
	s.history = nil
	s.version++
}

// Cleanup removes characters whose ids are not in valid and returns the
// removed ids. History is left untouched.
func (s *Slice) Cleanup(valid command.IDSet) []string {
	var removed []string
	kept := s.order[:0]
	for _, id := range s.order {
		if valid.Has(id) {
			kept = append(kept, id)
			continue
		}
		delete(s.items, id)
		removed = append(removed, id)
	}
	s.order = kept
	if len(removed) > 0 {
		s.version++
	}
	return removed
}

// Apply validates payload against current state and, on acceptance, mutates
// the slice and appends cmd to history. It reports false without error when
// the mutation is an accepted no-op.
func (s *Slice) Apply(cmd command.Command, payload command.Payload) (bool, error) {
	applied, err := s.apply(payload, cmd.Timestamp)
	if err != nil {
		s.env.Report(cmd, err)
		return false, err
	}
	if !applied {
		return false, nil
	}
	s.history = append(s.history, cmd)
	s.version++
	s.env.Report(cmd, nil)
	return true, nil
}

func (s *Slice) run(payload command.Payload) (bool, error) {
	cmd, err := s.env.Prepare(payload)
	if err != nil {
		return false, err
	}
	return s.Apply(cmd, payload)
}

func (s *Slice) lookup(id string) (*Character, error) {
	c, ok := s.items[id]
	if !ok {
		return nil, apperrors.NotFound(apperrors.CodeCharacterNotFound, "character", id)
	}
	return c, nil
}

func (s *Slice) lookupItem(characterID, equipmentID string) (*Character, int, error) {
	c, err := s.lookup(characterID)
	if err != nil {
		return nil, -1, err
	}
	i := c.itemIndex(equipmentID)
	if i < 0 {
		return nil, -1, apperrors.NotFound(apperrors.CodeEquipmentNotFound, "equipment", equipmentID)
	}
	return c, i, nil
}

func (s *Slice) lookupTrait(characterID, traitID string) (*Character, int, error) {
	c, err := s.lookup(characterID)
	if err != nil {
		return nil, -1, err
	}
	i := c.traitIndex(traitID)
	if i < 0 {
		return nil, -1, apperrors.NotFound(apperrors.CodeTraitNotFound, "trait", traitID)
	}
	return c, i, nil
}

func (s *Slice) apply(payload command.Payload, at int64) (bool, error) {
	switch p := payload.(type) {
	case CreatePayload:
		return true, s.create(p, at)
	case RenamePayload:
		return true, s.rename(p, at)
	case DeletePayload:
		return true, s.delete(p)
	case SetApproachPayload:
		return true, s.setApproach(p, at)
	case AdvanceApproachPayload:
		return true, s.advanceApproach(p, at)
	case AddTraitPayload:
		return true, s.addTrait(p, at)
	case RemoveTraitPayload:
		return true, s.removeTrait(p, at)
	case DisableTraitPayload:
		return true, s.setTraitDisabled(p.TraitPayload, true, at)
	case EnableTraitPayload:
		return true, s.setTraitDisabled(p.TraitPayload, false, at)
	case EnableAllTraitsPayload:
		return true, s.enableAllTraits(p, at)
	case GroupTraitsPayload:
		return true, s.groupTraits(p, at)
	case AddEquipmentPayload:
		return true, s.addEquipment(p, at)
	case RemoveEquipmentPayload:
		return true, s.removeEquipment(p, at)
	case ToggleEquippedPayload:
		return s.toggleEquipped(p, at)
	case UseEquipmentPayload:
		return true, s.useEquipment(p, at)
	case UnlockAllEquipmentPayload:
		return true, s.unlockAllEquipment(p, at)
	case SetLoadLimitPayload:
		return true, s.setLoadLimit(p, at)
	case UseRallyPayload:
		return true, s.setRally(p.Ref, false, at)
	case ResetRallyPayload:
		return true, s.setRally(p.Ref, true, at)
	default:
		return false, apperrors.New(apperrors.CodeCommandTypeUnknown,
			"character slice cannot apply "+string(payload.CommandType()))
	}
}

func (s *Slice) create(p CreatePayload, at int64) error {
	if strings.TrimSpace(p.ID) == "" {
		return apperrors.New(apperrors.CodeCharacterIDRequired, "character id is required")
	}
	if _, exists := s.items[p.ID]; exists {
		return apperrors.New(apperrors.CodeCharacterAlreadyExists, "character already exists: "+p.ID)
	}
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	if err := ValidateStartingTraits(p.Traits); err != nil {
		return err
	}
	if err := ValidateApproaches(s.rules, p.Approaches); err != nil {
		return err
	}
	limit := s.rules.DefaultLoadLimit
	if p.LoadLimit != nil {
		limit = *p.LoadLimit
	}
	if limit < 0 || limit > s.rules.MaxLoadLimit {
		return apperrors.New(apperrors.CodeCharacterLoadLimitInvalid, "load limit is out of range")
	}
	c := Character{
		ID:             p.ID,
		Name:           p.Name,
		Approaches:     make(map[rules.Approach]int, len(rules.Approaches())),
		RallyAvailable: true,
		LoadLimit:      limit,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	for _, approach := range rules.Approaches() {
		c.Approaches[approach] = p.Approaches[approach]
	}
	c.UnallocatedApproachDots = s.rules.StartingApproachDots - c.TotalDots()
	for _, trait := range p.Traits {
		if trait.AcquiredAt == 0 {
			trait.AcquiredAt = at
		}
		c.Traits = append(c.Traits, trait)
	}
	c.Equipment = []Equipment{}
	for _, item := range p.Equipment {
		if err := ValidateNewEquipment(s.rules, c, item); err != nil {
			return err
		}
		c.Equipment = append(c.Equipment, stow(c, item))
	}
	s.items[c.ID] = &c
	s.order = append(s.order, c.ID)
	return nil
}

// stow prepares item for insertion, equipping it when requested and it fits.
func stow(c Character, item Equipment) Equipment {
	item = item.clone()
	want := item.Equipped || item.AutoEquip
	item.Equipped = false
	item.Locked = false
	if want && !item.Consumed && CanEquip(c, item) {
		item.Equipped = true
		item.Locked = true
	}
	return item
}

func (s *Slice) rename(p RenamePayload, at int64) error {
	c, err := s.lookup(p.CharacterID)
	if err != nil {
		return err
	}
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	c.Name = p.Name
	c.UpdatedAt = at
	return nil
}

func (s *Slice) delete(p DeletePayload) error {
	if _, err := s.lookup(p.CharacterID); err != nil {
		return err
	}
	delete(s.items, p.CharacterID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == p.CharacterID })
	return nil
}

func (s *Slice) setApproach(p SetApproachPayload, at int64) error {
	c, err := s.lookup(p.CharacterID)
	if err != nil {
		return err
	}
	if err := ValidateSetApproach(s.rules, *c, p.Approach, p.Dots); err != nil {
		return err
	}
	diff := p.Dots - c.Approaches[p.Approach]
	c.Approaches[p.Approach] += diff
	c.UnallocatedApproachDots -= diff
	c.UpdatedAt = at
	return nil
}

func (s *Slice) advanceApproach(p AdvanceApproachPayload, at int64) error {
	c, err := s.lookup(p.CharacterID)
	if err != nil {
		return err
	}
	if err := ValidateAdvanceApproach(s.rules, *c, p.Approach); err != nil {
		return err
	}
	c.Approaches[p.Approach]++
	c.UpdatedAt = at
	return nil
}

func (s *Slice) addTrait(p AddTraitPayload, at int64) error {
	c, err := s.lookup(p.CharacterID)
	if err != nil {
		return err
	}
	if err := ValidateTrait(p.Trait); err != nil {
		return err
	}
	if c.traitIndex(p.Trait.ID) >= 0 {
		return apperrors.New(apperrors.CodeCharacterTraitDuplicate, "duplicate trait id: "+p.Trait.ID)
	}
	trait := p.Trait
	if trait.AcquiredAt == 0 {
		trait.AcquiredAt = at
	}
	c.Traits = append(c.Traits, trait)
	c.UpdatedAt = at
	return nil
}

func (s *Slice) removeTrait(p RemoveTraitPayload, at int64) error {
	c, i, err := s.lookupTrait(p.CharacterID, p.TraitID)
	if err != nil {
		return err
	}
	c.Traits = slices.Delete(c.Traits, i, i+1)
	c.UpdatedAt = at
	return nil
}

func (s *Slice) setTraitDisabled(p TraitPayload, disabled bool, at int64) error {
	c, i, err := s.lookupTrait(p.CharacterID, p.TraitID)
	if err != nil {
		return err
	}
	c.Traits[i].Disabled = disabled
	c.UpdatedAt = at
	return nil
}

func (s *Slice) enableAllTraits(p EnableAllTraitsPayload, at int64) error {
	c, err := s.lookup(p.CharacterID)
	if err != nil {
		return err
	}
	for i := range c.Traits {
		c.Traits[i].Disabled = false
	}
	c.UpdatedAt = at
	return nil
}

func (s *Slice) groupTraits(p GroupTraitsPayload, at int64) error {
	c, err := s.lookup(p.CharacterID)
	if err != nil {
		return err
	}
	if err := ValidateGroupTraits(*c, p.TraitIDs, p.Trait); err != nil {
		return err
	}
	grouped := command.NewIDSet(p.TraitIDs...)
	c.Traits = slices.DeleteFunc(c.Traits, func(t Trait) bool { return grouped.Has(t.ID) })
	trait := p.Trait
	trait.Category = TraitGrouped
	trait.Disabled = false
	if trait.AcquiredAt == 0 {
		trait.AcquiredAt = at
	}
	c.Traits = append(c.Traits, trait)
	c.UpdatedAt = at
	return nil
}

func (s *Slice) addEquipment(p AddEquipmentPayload, at int64) error {
	c, err := s.lookup(p.CharacterID)
	if err != nil {
		return err
	}
	if err := ValidateNewEquipment(s.rules, *c, p.Equipment); err != nil {
		return err
	}
	c.Equipment = append(c.Equipment, stow(*c, p.Equipment))
	c.UpdatedAt = at
	return nil
}

func (s *Slice) removeEquipment(p RemoveEquipmentPayload, at int64) error {
	c, i, err := s.lookupItem(p.CharacterID, p.EquipmentID)
	if err != nil {
		return err
	}
	if item := c.Equipment[i]; item.Equipped {
		if err := ValidateUnequip(item); err != nil {
			return err
		}
	}
	c.Equipment = slices.Delete(c.Equipment, i, i+1)
	c.UpdatedAt = at
	return nil
}

func (s *Slice) toggleEquipped(p ToggleEquippedPayload, at int64) (bool, error) {
	c, i, err := s.lookupItem(p.CharacterID, p.EquipmentID)
	if err != nil {
		return false, err
	}
	item := &c.Equipment[i]
	if item.Equipped {
		if err := ValidateUnequip(*item); err != nil {
			return false, err
		}
		item.Equipped = false
		c.UpdatedAt = at
		return true, nil
	}
	if item.Consumed {
		return false, apperrors.New(apperrors.CodeEquipmentConsumed, "equipment is consumed: "+item.Name)
	}
	if !CanEquip(*c, *item) {
		return false, nil
	}
	item.Equipped = true
	item.Locked = true
	c.UpdatedAt = at
	return true, nil
}

func (s *Slice) useEquipment(p UseEquipmentPayload, at int64) error {
	c, i, err := s.lookupItem(p.CharacterID, p.EquipmentID)
	if err != nil {
		return err
	}
	item := &c.Equipment[i]
	if item.Consumed {
		return apperrors.New(apperrors.CodeEquipmentConsumed, "equipment is consumed: "+item.Name)
	}
	item.Locked = true
	if item.Category == EquipmentConsumable {
		item.Consumed = true
		item.Equipped = false
	}
	c.UpdatedAt = at
	return nil
}

func (s *Slice) unlockAllEquipment(p UnlockAllEquipmentPayload, at int64) error {
	c, err := s.lookup(p.CharacterID)
	if err != nil {
		return err
	}
	for i := range c.Equipment {
		c.Equipment[i].Locked = false
	}
	c.UpdatedAt = at
	return nil
}

func (s *Slice) setLoadLimit(p SetLoadLimitPayload, at int64) error {
	c, err := s.lookup(p.CharacterID)
	if err != nil {
		return err
	}
	if err := ValidateLoadLimit(s.rules, *c, p.LoadLimit); err != nil {
		return err
	}
	c.LoadLimit = p.LoadLimit
	c.UpdatedAt = at
	return nil
}

func (s *Slice) setRally(ref Ref, available bool, at int64) error {
	c, err := s.lookup(ref.CharacterID)
	if err != nil {
		return err
	}
	if !available && !c.RallyAvailable {
		return apperrors.New(apperrors.CodeCharacterRallyUnavailable, "rally was already used since the last reset")
	}
	c.RallyAvailable = available
	c.UpdatedAt = at
	return nil
}
