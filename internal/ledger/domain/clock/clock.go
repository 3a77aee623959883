// Package clock owns the clock slice: bounded fill counters for harm,
// addiction and progress, indexed by owner and by type.
package clock

import "github.com/louisbranch/crewledger/internal/ledger/domain/command"

// SliceName namespaces clock command types.
const SliceName = "clocks"

// Type classifies a clock.
type Type string

const (
	TypeHarm      Type = "harm"
	TypeAddiction Type = "addiction"
	TypeProgress  Type = "progress"
)

// ValidType reports whether t is a known clock type.
func ValidType(t Type) bool {
	switch t {
	case TypeHarm, TypeAddiction, TypeProgress:
		return true
	}
	return false
}

// Metadata is optional descriptive data.
type Metadata struct {
	Category    string `json:"category,omitempty"`
	IsCountdown bool   `json:"isCountdown,omitempty"`
	Description string `json:"description,omitempty"`
}

// Clock is a fill counter owned by a character or crew.
type Clock struct {
	ID          string    `json:"id"`
	EntityID    string    `json:"entityId"`
	ClockType   Type      `json:"clockType"`
	Subtype     string    `json:"subtype"`
	Segments    int       `json:"segments"`
	MaxSegments int       `json:"maxSegments"`
	Metadata    *Metadata `json:"metadata,omitempty"`
	CreatedAt   int64     `json:"createdAt"`
	UpdatedAt   int64     `json:"updatedAt"`
}

// Filled reports whether every segment is marked.
func (c Clock) Filled() bool {
	return c.Segments == c.MaxSegments
}

// Clone returns a deep copy of c.
func (c Clock) Clone() Clock {
	if c.Metadata != nil {
		md := *c.Metadata
		c.Metadata = &md
	}
	return c
}

const (
	CommandCreate         command.Type = "clocks/create"
	CommandRepurpose      command.Type = "clocks/repurpose"
	CommandAddSegments    command.Type = "clocks/addSegments"
	CommandClearSegments  command.Type = "clocks/clearSegments"
	CommandSetSegments    command.Type = "clocks/setSegments"
	CommandSetMaxSegments command.Type = "clocks/setMaxSegments"
	CommandUpdateMetadata command.Type = "clocks/updateMetadata"
	CommandDelete         command.Type = "clocks/delete"
)

// Ref names the clock a payload targets.
type Ref struct {
	ClockID string `json:"clockId"`
}

// Target returns the clock id.
func (r Ref) Target() string { return r.ClockID }

type CreatePayload struct {
	ID          string    `json:"id"`
	EntityID    string    `json:"entityId"`
	ClockType   Type      `json:"clockType"`
	Subtype     string    `json:"subtype"`
	Segments    int       `json:"segments"`
	MaxSegments int       `json:"maxSegments"`
	Metadata    *Metadata `json:"metadata,omitempty"`
}

func (CreatePayload) CommandType() command.Type { return CommandCreate }
func (p CreatePayload) Target() string          { return p.ID }

// RepurposePayload overwrites subtype and metadata of a harm clock in place.
type RepurposePayload struct {
	Ref
	Subtype  string    `json:"subtype"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

func (RepurposePayload) CommandType() command.Type { return CommandRepurpose }

// AmountPayload carries a segment delta.
type AmountPayload struct {
	Ref
	Amount int `json:"amount"`
}

type AddSegmentsPayload struct{ AmountPayload }

func (AddSegmentsPayload) CommandType() command.Type { return CommandAddSegments }

type ClearSegmentsPayload struct{ AmountPayload }

func (ClearSegmentsPayload) CommandType() command.Type { return CommandClearSegments }

type SetSegmentsPayload struct {
	Ref
	Segments int `json:"segments"`
}

func (SetSegmentsPayload) CommandType() command.Type { return CommandSetSegments }

type SetMaxSegmentsPayload struct {
	Ref
	MaxSegments int `json:"maxSegments"`
}

func (SetMaxSegmentsPayload) CommandType() command.Type { return CommandSetMaxSegments }

type UpdateMetadataPayload struct {
	Ref
	Metadata *Metadata `json:"metadata,omitempty"`
}

func (UpdateMetadataPayload) CommandType() command.Type { return CommandUpdateMetadata }

type DeletePayload struct{ Ref }

func (DeletePayload) CommandType() command.Type { return CommandDelete }

// Register adds the clock command types to registry.
func Register(registry *command.Registry) error {
	return registry.Register(
		command.Definition{Type: CommandCreate, Decode: command.DecodeJSON[CreatePayload]()},
		command.Definition{Type: CommandRepurpose, Decode: command.DecodeJSON[RepurposePayload]()},
		command.Definition{Type: CommandAddSegments, Decode: command.DecodeJSON[AddSegmentsPayload]()},
		command.Definition{Type: CommandClearSegments, Decode: command.DecodeJSON[ClearSegmentsPayload]()},
		command.Definition{Type: CommandSetSegments, Decode: command.DecodeJSON[SetSegmentsPayload]()},
		command.Definition{Type: CommandSetMaxSegments, Decode: command.DecodeJSON[SetMaxSegmentsPayload]()},
		command.Definition{Type: CommandUpdateMetadata, Decode: command.DecodeJSON[UpdateMetadataPayload]()},
		command.Definition{Type: CommandDelete, Decode: command.DecodeJSON[DeletePayload](), Delete: true},
	)
}
