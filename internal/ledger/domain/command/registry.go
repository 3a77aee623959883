package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/louisbranch/crewledger/internal/platform/errors"
)

// Decoder decodes a payload document into its typed variant.
type Decoder func(json.RawMessage) (Payload, error)

// Definition registers metadata for a command type.
type Definition struct {
	Type   Type
	Decode Decoder
	// Delete marks the terminal command of an entity lifecycle.
	Delete bool
}

// DecodeJSON returns a Decoder for the payload struct P.
func DecodeJSON[P Payload]() Decoder {
	return func(raw json.RawMessage) (Payload, error) {
		var payload P
		if len(raw) == 0 {
			raw = json.RawMessage("{}")
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	}
}

// Registry stores command definitions and decodes envelopes.
type Registry struct {
	definitions map[Type]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{definitions: make(map[Type]Definition)}
}

// Register adds a new command type definition to the registry.
func (r *Registry) Register(defs ...Definition) error {
	if r == nil {
		return errors.New("registry is required")
	}
	if r.definitions == nil {
		r.definitions = make(map[Type]Definition)
	}
	for _, def := range defs {
		def.Type = Type(strings.TrimSpace(string(def.Type)))
		if def.Type == "" {
			return ErrTypeRequired
		}
		if def.Type.Slice() == "" || def.Type.Operation() == "" {
			return fmt.Errorf("command type must be <slice>/<operation>: %s", def.Type)
		}
		if def.Decode == nil {
			return fmt.Errorf("command type %s has no decoder", def.Type)
		}
		if _, exists := r.definitions[def.Type]; exists {
			return fmt.Errorf("command type already registered: %s", def.Type)
		}
		r.definitions[def.Type] = def
	}
	return nil
}

// Lookup returns the definition for t.
func (r *Registry) Lookup(t Type) (Definition, bool) {
	if r == nil {
		return Definition{}, false
	}
	def, ok := r.definitions[t]
	return def, ok
}

// IsDelete reports whether t terminates an entity lifecycle.
func (r *Registry) IsDelete(t Type) bool {
	def, ok := r.Lookup(t)
	return ok && def.Delete
}

// DeleteType returns the delete command registered for slice.
func (r *Registry) DeleteType(slice string) (Type, bool) {
	for _, t := range r.Types() {
		if t.Slice() == slice && r.definitions[t].Delete {
			return t, true
		}
	}
	return "", false
}

// Types lists registered types in lexical order.
func (r *Registry) Types() []Type {
	if r == nil {
		return nil
	}
	types := make([]Type, 0, len(r.definitions))
	for t := range r.definitions {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Decode validates the envelope and decodes its payload variant.
func (r *Registry) Decode(cmd Command) (Payload, error) {
	if strings.TrimSpace(string(cmd.Type)) == "" {
		return nil, apperrors.Wrap(apperrors.CodeCommandTypeUnknown, "command type is required", ErrTypeRequired)
	}
	if cmd.Version > SchemaVersion {
		return nil, apperrors.WithMetadata(apperrors.CodeCommandVersion,
			fmt.Sprintf("command version %d is newer than %d", cmd.Version, SchemaVersion),
			map[string]string{"type": string(cmd.Type)})
	}
	def, ok := r.Lookup(cmd.Type)
	if !ok {
		return nil, apperrors.WithMetadata(apperrors.CodeCommandTypeUnknown,
			"command type is not registered: "+string(cmd.Type),
			map[string]string{"type": string(cmd.Type)})
	}
	payload, err := def.Decode(cmd.Payload)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeCommandPayloadInvalid,
			"payload invalid for "+string(cmd.Type), err)
	}
	if payload.CommandType() != cmd.Type {
		return nil, apperrors.New(apperrors.CodeCommandPayloadInvalid,
			fmt.Sprintf("payload type %s does not match %s", payload.CommandType(), cmd.Type))
	}
	return payload, nil
}

// Target decodes cmd and returns the id of the entity it references.
func (r *Registry) Target(cmd Command) (string, error) {
	payload, err := r.Decode(cmd)
	if err != nil {
		return "", err
	}
	return payload.Target(), nil
}
