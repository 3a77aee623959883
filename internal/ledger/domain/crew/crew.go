// Package crew owns the crew slice: crew membership and the shared momentum
// pool, which is clamped to the rule range on every mutation.
package crew

import (
	"slices"

	"github.com/louisbranch/crewledger/internal/ledger/domain/command"
)

// SliceName namespaces crew command types.
const SliceName = "crews"

// Crew is a group of characters sharing momentum.
type Crew struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Characters      []string `json:"characters"`
	CurrentMomentum int      `json:"currentMomentum"`
	CreatedAt       int64    `json:"createdAt"`
	UpdatedAt       int64    `json:"updatedAt"`
}

// Clone returns a deep copy of c.
func (c Crew) Clone() Crew {
	c.Characters = slices.Clone(c.Characters)
	return c
}

// HasMember reports whether characterID belongs to the crew.
func (c Crew) HasMember(characterID string) bool {
	return slices.Contains(c.Characters, characterID)
}

const (
	TypeCreate          command.Type = "crews/create"
	TypeRename          command.Type = "crews/rename"
	TypeDelete          command.Type = "crews/delete"
	TypeAddCharacter    command.Type = "crews/addCharacter"
	TypeRemoveCharacter command.Type = "crews/removeCharacter"
	TypeSetMomentum     command.Type = "crews/setMomentum"
	TypeAddMomentum     command.Type = "crews/addMomentum"
	TypeSpendMomentum   command.Type = "crews/spendMomentum"
	TypeResetMomentum   command.Type = "crews/resetMomentum"
)

// Ref names the crew a payload targets.
type Ref struct {
	CrewID string `json:"crewId"`
}

// Target returns the crew id.
func (r Ref) Target() string { return r.CrewID }

type CreatePayload struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Characters []string `json:"characters,omitempty"`
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

// MemberPayload targets one membership.
type MemberPayload struct {
	Ref
	CharacterID string `json:"characterId"`
}

type AddCharacterPayload struct{ MemberPayload }

func (AddCharacterPayload) CommandType() command.Type { return TypeAddCharacter }

type RemoveCharacterPayload struct{ MemberPayload }

func (RemoveCharacterPayload) CommandType() command.Type { return TypeRemoveCharacter }

// MomentumPayload carries a momentum amount.
type MomentumPayload struct {
	Ref
	Amount int `json:"amount"`
}

type SetMomentumPayload struct{ MomentumPayload }

func (SetMomentumPayload) CommandType() command.Type { return TypeSetMomentum }

type AddMomentumPayload struct{ MomentumPayload }

func (AddMomentumPayload) CommandType() command.Type { return TypeAddMomentum }

type SpendMomentumPayload struct{ MomentumPayload }

func (SpendMomentumPayload) CommandType() command.Type { return TypeSpendMomentum }

type ResetMomentumPayload struct{ Ref }

func (ResetMomentumPayload) CommandType() command.Type { return TypeResetMomentum }

// Register adds the crew command types to registry.
func Register(registry *command.Registry) error {
	return registry.Register(
		command.Definition{Type: TypeCreate, Decode: command.DecodeJSON[CreatePayload]()},
		command.Definition{Type: TypeRename, Decode: command.DecodeJSON[RenamePayload]()},
		command.Definition{Type: TypeDelete, Decode: command.DecodeJSON[DeletePayload](), Delete: true},
		command.Definition{Type: TypeAddCharacter, Decode: command.DecodeJSON[AddCharacterPayload]()},
		command.Definition{Type: TypeRemoveCharacter, Decode: command.DecodeJSON[RemoveCharacterPayload]()},
		command.Definition{Type: TypeSetMomentum, Decode: command.DecodeJSON[SetMomentumPayload]()},
		command.Definition{Type: TypeAddMomentum, Decode: command.DecodeJSON[AddMomentumPayload]()},
		command.Definition{Type: TypeSpendMomentum, Decode: command.DecodeJSON[SpendMomentumPayload]()},
		command.Definition{Type: TypeResetMomentum, Decode: command.DecodeJSON[ResetMomentumPayload]()},
	)
}
