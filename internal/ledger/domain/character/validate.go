package character

import (
	"fmt"
	"strings"

	"github.com/louisbranch/crewledger/internal/ledger/rules"
	apperrors "github.com/louisbranch/crewledger/internal/platform/errors"
)

// ValidateName rejects blank character names.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.New(apperrors.CodeCharacterNameEmpty, "character name is required")
	}
	return nil
}

// ValidateTrait checks a single trait in isolation.
func ValidateTrait(trait Trait) error {
	if strings.TrimSpace(trait.ID) == "" {
		return apperrors.New(apperrors.CodeCharacterTraitInvalid, "trait id is required")
	}
	if strings.TrimSpace(trait.Name) == "" {
		return apperrors.New(apperrors.CodeCharacterTraitInvalid, "trait name is required")
	}
	if !ValidTraitCategory(trait.Category) {
		return apperrors.WithMetadata(apperrors.CodeCharacterTraitInvalid,
			"trait category is invalid: "+string(trait.Category),
			map[string]string{"category": string(trait.Category)})
	}
	return nil
}

// ValidateStartingTraits requires at least one role and one background trait
// with unique ids.
func ValidateStartingTraits(traits []Trait) error {
	var role, background bool
	seen := make(map[string]struct{}, len(traits))
	for _, trait := range traits {
		if err := ValidateTrait(trait); err != nil {
			return err
		}
		if _, dup := seen[trait.ID]; dup {
			return apperrors.New(apperrors.CodeCharacterTraitDuplicate, "duplicate trait id: "+trait.ID)
		}
		seen[trait.ID] = struct{}{}
		switch trait.Category {
		case TraitRole:
			role = true
		case TraitBackground:
			background = true
		}
	}
	if !role || !background {
		return apperrors.New(apperrors.CodeCharacterTraitsMissing,
			"a character needs at least one role trait and one background trait")
	}
	return nil
}

// ValidateApproaches checks names, per-approach bounds and the pool total.
func ValidateApproaches(r rules.Rules, approaches map[rules.Approach]int) error {
	total := 0
	for approach, dots := range approaches {
		if !rules.ValidApproach(approach) {
			return apperrors.New(apperrors.CodeCharacterApproachInvalid, "unknown approach: "+string(approach))
		}
		if err := validateDots(r, approach, dots); err != nil {
			return err
		}
		total += dots
	}
	if total > r.StartingApproachDots {
		return apperrors.WithMetadata(apperrors.CodeCharacterDotPoolExceeded,
			fmt.Sprintf("allocated %d dots but the pool is %d", total, r.StartingApproachDots),
			map[string]string{"allocated": fmt.Sprint(total), "pool": fmt.Sprint(r.StartingApproachDots)})
	}
	return nil
}

func validateDots(r rules.Rules, approach rules.Approach, dots int) error {
	if dots < 0 || dots > r.MaxApproachDots {
		return apperrors.WithMetadata(apperrors.CodeCharacterDotsOutOfRange,
			fmt.Sprintf("%s must be between 0 and %d dots", approach, r.MaxApproachDots),
			map[string]string{"approach": string(approach), "dots": fmt.Sprint(dots)})
	}
	return nil
}

// ValidateSetApproach checks a reallocation against the unallocated pool.
func ValidateSetApproach(r rules.Rules, c Character, approach rules.Approach, dots int) error {
	if !rules.ValidApproach(approach) {
		return apperrors.New(apperrors.CodeCharacterApproachInvalid, "unknown approach: "+string(approach))
	}
	if err := validateDots(r, approach, dots); err != nil {
		return err
	}
	diff := dots - c.Approaches[approach]
	if diff > 0 && c.UnallocatedApproachDots < diff {
		return apperrors.WithMetadata(apperrors.CodeCharacterInsufficientDots,
			fmt.Sprintf("insufficient unallocated dots: need %d, have %d", diff, c.UnallocatedApproachDots),
			map[string]string{"need": fmt.Sprint(diff), "have": fmt.Sprint(c.UnallocatedApproachDots)})
	}
	return nil
}

// ValidateAdvanceApproach checks a milestone advance against the maximum.
func ValidateAdvanceApproach(r rules.Rules, c Character, approach rules.Approach) error {
	if !rules.ValidApproach(approach) {
		return apperrors.New(apperrors.CodeCharacterApproachInvalid, "unknown approach: "+string(approach))
	}
	return validateDots(r, approach, c.Approaches[approach]+1)
}

// ValidateEquipment checks a single item in isolation.
func ValidateEquipment(r rules.Rules, item Equipment) error {
	if strings.TrimSpace(item.ID) == "" {
		return apperrors.New(apperrors.CodeEquipmentIDRequired, "equipment id is required")
	}
	if strings.TrimSpace(item.Name) == "" {
		return apperrors.New(apperrors.CodeEquipmentNameEmpty, "equipment name is required")
	}
	if !r.ValidTier(item.Tier) {
		return apperrors.New(apperrors.CodeEquipmentTierInvalid, "equipment tier is invalid: "+string(item.Tier))
	}
	if item.Slots < 0 || item.Slots > r.MaxLoadLimit {
		return apperrors.New(apperrors.CodeEquipmentSlotsInvalid,
			fmt.Sprintf("equipment slots must be between 0 and %d", r.MaxLoadLimit))
	}
	return ValidateModifiers(item.Modifiers)
}

// ValidateModifiers enforces bonus/penalty exclusivity per axis and rejects
// negative magnitudes.
func ValidateModifiers(m Modifiers) error {
	axes := []struct {
		name           string
		bonus, penalty *int
	}{
		{"dice", m.DiceBonus, m.DicePenalty},
		{"position", m.PositionBonus, m.PositionPenalty},
		{"effect", m.EffectBonus, m.EffectPenalty},
	}
	for _, axis := range axes {
		if axis.bonus != nil && axis.penalty != nil {
			return apperrors.WithMetadata(apperrors.CodeEquipmentModifierInvalid,
				axis.name+" bonus and penalty are mutually exclusive",
				map[string]string{"axis": axis.name})
		}
		if (axis.bonus != nil && *axis.bonus < 0) || (axis.penalty != nil && *axis.penalty < 0) {
			return apperrors.WithMetadata(apperrors.CodeEquipmentModifierInvalid,
				axis.name+" modifier must not be negative",
				map[string]string{"axis": axis.name})
		}
	}
	return nil
}

// ValidateNewEquipment checks an item against the character inventory.
func ValidateNewEquipment(r rules.Rules, c Character, item Equipment) error {
	if err := ValidateEquipment(r, item); err != nil {
		return err
	}
	if c.itemIndex(item.ID) >= 0 {
		return apperrors.New(apperrors.CodeEquipmentDuplicate, "duplicate equipment id: "+item.ID)
	}
	return nil
}

// ValidateLoadLimit checks a load limit against the rule bounds and the
// currently equipped load.
func ValidateLoadLimit(r rules.Rules, c Character, limit int) error {
	if limit < 0 || limit > r.MaxLoadLimit {
		return apperrors.New(apperrors.CodeCharacterLoadLimitInvalid,
			fmt.Sprintf("load limit must be between 0 and %d", r.MaxLoadLimit))
	}
	if load := c.EquippedLoad(); limit < load {
		return apperrors.WithMetadata(apperrors.CodeCharacterLoadLimitBelowLoad,
			fmt.Sprintf("load limit %d is below the equipped load %d", limit, load),
			map[string]string{"limit": fmt.Sprint(limit), "load": fmt.Sprint(load)})
	}
	return nil
}

// CanEquip reports whether item fits under the load limit.
func CanEquip(c Character, item Equipment) bool {
	return c.EquippedLoad()+item.Slots <= c.LoadLimit
}

// ValidateUnequip rejects unequipping a locked item.
func ValidateUnequip(item Equipment) error {
	if item.Locked {
		return apperrors.WithMetadata(apperrors.CodeEquipmentLocked,
			"equipment is locked until the next momentum reset: "+item.Name,
			map[string]string{"equipmentId": item.ID})
	}
	return nil
}

// ValidateGroupTraits requires exactly three distinct existing traits.
func ValidateGroupTraits(c Character, traitIDs []string, grouped Trait) error {
	if len(traitIDs) != 3 {
		return apperrors.New(apperrors.CodeCharacterGroupCount,
			fmt.Sprintf("grouping requires exactly 3 traits, got %d", len(traitIDs)))
	}
	seen := make(map[string]struct{}, 3)
	for _, id := range traitIDs {
		if _, dup := seen[id]; dup {
			return apperrors.New(apperrors.CodeCharacterGroupCount, "grouping requires 3 distinct traits")
		}
		seen[id] = struct{}{}
	}
	for _, id := range traitIDs {
		if c.traitIndex(id) < 0 {
			return apperrors.NotFound(apperrors.CodeTraitNotFound, "trait", id)
		}
	}
	grouped.Category = TraitGrouped
	if err := ValidateTrait(grouped); err != nil {
		return err
	}
	if _, grouping := seen[grouped.ID]; !grouping && c.traitIndex(grouped.ID) >= 0 {
		return apperrors.New(apperrors.CodeCharacterTraitDuplicate, "duplicate trait id: "+grouped.ID)
	}
	return nil
}
