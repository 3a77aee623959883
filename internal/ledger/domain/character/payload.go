package character

import (
	"github.com/louisbranch/crewledger/internal/ledger/domain/command"
	"github.com/louisbranch/crewledger/internal/ledger/rules"
)

// SliceName namespaces character command types.
const SliceName = "characters"

const (
	TypeCreate             command.Type = "characters/create"
	TypeRename             command.Type = "characters/rename"
	TypeDelete             command.Type = "characters/delete"
	TypeSetApproach        command.Type = "characters/setApproach"
	TypeAdvanceApproach    command.Type = "characters/advanceApproach"
	TypeAddTrait           command.Type = "characters/addTrait"
	TypeRemoveTrait        command.Type = "characters/removeTrait"
	TypeDisableTrait       command.Type = "characters/disableTrait"
	TypeEnableTrait        command.Type = "characters/enableTrait"
	TypeEnableAllTraits    command.Type = "characters/enableAllTraits"
	TypeGroupTraits        command.Type = "characters/groupTraits"
	TypeAddEquipment       command.Type = "characters/addEquipment"
	TypeRemoveEquipment    command.Type = "characters/removeEquipment"
	TypeToggleEquipped     command.Type = "characters/toggleEquipped"
	TypeUseEquipment       command.Type = "characters/useEquipment"
	TypeUnlockAllEquipment command.Type = "characters/unlockAllEquipment"
	TypeSetLoadLimit       command.Type = "characters/setLoadLimit"
	TypeUseRally           command.Type = "characters/useRally"
	TypeResetRally         command.Type = "characters/resetRally"
)

// Ref names the character a payload targets.
type Ref struct {
	CharacterID string `json:"characterId"`
}

// Target returns the character id.
func (r Ref) Target() string { return r.CharacterID }

// CreatePayload captures the fields of a new character. A nil LoadLimit
// takes the rule default; an explicit zero is kept.
type CreatePayload struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Traits     []Trait                `json:"traits"`
	Approaches map[rules.Approach]int `json:"approaches"`
	Equipment  []Equipment            `json:"equipment,omitempty"`
	LoadLimit  *int                   `json:"loadLimit,omitempty"`
}

func (CreatePayload) CommandType() command.Type { return TypeCreate }
func (p CreatePayload) Target() string          { return p.ID }

type RenamePayload struct {
	Ref
	Name string `json:"name"`
}

func (RenamePayload) CommandType() command.Type { return TypeRename }

type DeletePayload struct{ Ref }

func (DeletePayload) CommandType() command.Type { return TypeDelete }

type SetApproachPayload struct {
	Ref
	Approach rules.Approach `json:"approach"`
	Dots     int            `json:"dots"`
}

func (SetApproachPayload) CommandType() command.Type { return TypeSetApproach }

type AdvanceApproachPayload struct {
	Ref
	Approach rules.Approach `json:"approach"`
}

func (AdvanceApproachPayload) CommandType() command.Type { return TypeAdvanceApproach }

type AddTraitPayload struct {
	Ref
	Trait Trait `json:"trait"`
}

func (AddTraitPayload) CommandType() command.Type { return TypeAddTrait }

// TraitPayload targets one trait of a character.
type TraitPayload struct {
	Ref
	TraitID string `json:"traitId"`
}

type RemoveTraitPayload struct{ TraitPayload }

func (RemoveTraitPayload) CommandType() command.Type { return TypeRemoveTrait }

type DisableTraitPayload struct{ TraitPayload }

func (DisableTraitPayload) CommandType() command.Type { return TypeDisableTrait }

type EnableTraitPayload struct{ TraitPayload }

func (EnableTraitPayload) CommandType() command.Type { return TypeEnableTrait }

type EnableAllTraitsPayload struct{ Ref }

func (EnableAllTraitsPayload) CommandType() command.Type { return TypeEnableAllTraits }

// GroupTraitsPayload replaces three traits with one grouped trait.
type GroupTraitsPayload struct {
	Ref
	TraitIDs []string `json:"traitIds"`
	Trait    Trait    `json:"trait"`
}

func (GroupTraitsPayload) CommandType() command.Type { return TypeGroupTraits }

type AddEquipmentPayload struct {
	Ref
	Equipment Equipment `json:"equipment"`
}

func (AddEquipmentPayload) CommandType() command.Type { return TypeAddEquipment }

// EquipmentPayload targets one item of a character.
type EquipmentPayload struct {
	Ref
	EquipmentID string `json:"equipmentId"`
}

type RemoveEquipmentPayload struct{ EquipmentPayload }

func (RemoveEquipmentPayload) CommandType() command.Type { return TypeRemoveEquipment }

type ToggleEquippedPayload struct{ EquipmentPayload }

func (ToggleEquippedPayload) CommandType() command.Type { return TypeToggleEquipped }

type UseEquipmentPayload struct{ EquipmentPayload }

func (UseEquipmentPayload) CommandType() command.Type { return TypeUseEquipment }

type UnlockAllEquipmentPayload struct{ Ref }

func (UnlockAllEquipmentPayload) CommandType() command.Type { return TypeUnlockAllEquipment }

type SetLoadLimitPayload struct {
	Ref
	LoadLimit int `json:"loadLimit"`
}

func (SetLoadLimitPayload) CommandType() command.Type { return TypeSetLoadLimit }

type UseRallyPayload struct{ Ref }

func (UseRallyPayload) CommandType() command.Type { return TypeUseRally }

type ResetRallyPayload struct{ Ref }

func (ResetRallyPayload) CommandType() command.Type { return TypeResetRally }

// Register adds the character command types to registry.
func Register(registry *command.Registry) error {
	return registry.Register(
		command.Definition{Type: TypeCreate, Decode: command.DecodeJSON[CreatePayload]()},
		command.Definition{Type: TypeRename, Decode: command.DecodeJSON[RenamePayload]()},
		command.Definition{Type: TypeDelete, Decode: command.DecodeJSON[DeletePayload](), Delete: true},
		command.Definition{Type: TypeSetApproach, Decode: command.DecodeJSON[SetApproachPayload]()},
		command.Definition{Type: TypeAdvanceApproach, Decode: command.DecodeJSON[AdvanceApproachPayload]()},
		command.Definition{Type: TypeAddTrait, Decode: command.DecodeJSON[AddTraitPayload]()},
		command.Definition{Type: TypeRemoveTrait, Decode: command.DecodeJSON[RemoveTraitPayload]()},
		command.Definition{Type: TypeDisableTrait, Decode: command.DecodeJSON[DisableTraitPayload]()},
		command.Definition{Type: TypeEnableTrait, Decode: command.DecodeJSON[EnableTraitPayload]()},
		command.Definition{Type: TypeEnableAllTraits, Decode: command.DecodeJSON[EnableAllTraitsPayload]()},
		command.Definition{Type: TypeGroupTraits, Decode: command.DecodeJSON[GroupTraitsPayload]()},
		command.Definition{Type: TypeAddEquipment, Decode: command.DecodeJSON[AddEquipmentPayload]()},
		command.Definition{Type: TypeRemoveEquipment, Decode: command.DecodeJSON[RemoveEquipmentPayload]()},
		command.Definition{Type: TypeToggleEquipped, Decode: command.DecodeJSON[ToggleEquippedPayload]()},
		command.Definition{Type: TypeUseEquipment, Decode: command.DecodeJSON[UseEquipmentPayload]()},
		command.Definition{Type: TypeUnlockAllEquipment, Decode: command.DecodeJSON[UnlockAllEquipmentPayload]()},
		command.Definition{Type: TypeSetLoadLimit, Decode: command.DecodeJSON[SetLoadLimitPayload]()},
		command.Definition{Type: TypeUseRally, Decode: command.DecodeJSON[UseRallyPayload]()},
		command.Definition{Type: TypeResetRally, Decode: command.DecodeJSON[ResetRallyPayload]()},
	)
}
