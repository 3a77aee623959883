package crew

import (
	"slices"
	"strings"

	"github.com/louisbranch/crewledger/internal/ledger/domain/command"
	"github.com/louisbranch/crewledger/internal/ledger/rules"
	apperrors "github.com/louisbranch/crewledger/internal/platform/errors"
)

// Slice holds the crews and their command history.
type Slice struct {
	rules   rules.Rules
	env     *command.Env
	items   map[string]*Crew
	order   []string
	history []command.Command
	version uint64
}

// NewSlice returns an empty slice.
func NewSlice(r rules.Rules, env *command.Env) *Slice {
	if env == nil {
		env = command.NewEnv()
	}
	return &Slice{rules: r, env: env, items: make(map[string]*Crew)}
}

// Name returns the slice namespace.
func (s *Slice) Name() string { return SliceName }

// Version increases on every change to entities or history.
func (s *Slice) Version() uint64 { return s.version }

// Get returns a copy of the crew with id.
func (s *Slice) Get(id string) (Crew, bool) {
	c, ok := s.items[id]
	if !ok {
		return Crew{}, false
	}
	return c.Clone(), true
}

// List returns copies of all crews in creation order.
func (s *Slice) List() []Crew {
	out := make([]Crew, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].Clone())
	}
	return out
}

// IDs returns the live crew ids.
func (s *Slice) IDs() command.IDSet { return command.NewIDSet(s.order...) }

// Snapshot returns copies of all crews keyed by id.
func (s *Slice) Snapshot() map[string]Crew {
	out := make(map[string]Crew, len(s.items))
	for id, c := range s.items {
		out[id] = c.Clone()
	}
	return out
}

// ForCharacter returns the crews characterID belongs to, in creation order.
func (s *Slice) ForCharacter(characterID string) []Crew {
	var out []Crew
	for _, id := range s.order {
		if c := s.items[id]; c.HasMember(characterID) {
			out = append(out, c.Clone())
		}
	}
	return out
}

// History returns a copy of the command history.
func (s *Slice) History() []command.Command { return slices.Clone(s.history) }

// ReplaceHistory swaps the command history, used by pruning.
func (s *Slice) ReplaceHistory(history []command.Command) {
	s.history = slices.Clone(history)
	s.version++
}

// Hydrate replaces all crews and clears history.
func (s *Slice) Hydrate(crews map[string]Crew) {
	s.items = make(map[string]*Crew, len(crews))
	s.order = s.order[:0]
	for id, c := range crews {
		c = c.Clone()
		c.ID = id
		c.CurrentMomentum = s.rules.ClampMomentum(c.CurrentMomentum)
		s.items[id] = &c
		s.order = append(s.order, id)
	}
	slices.SortFunc(s.order, func(a, b string) int {
		if d := s.items[a].CreatedAt - s.items[b].CreatedAt; d != 0 {
			if d < 0 {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})
	s.history = nil
	s.version++
}

// Cleanup removes crews whose ids are not in valid and returns the removed ids.
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

// Apply validates payload and, on acceptance, mutates the slice and appends
// cmd to history.
func (s *Slice) Apply(cmd command.Command, payload command.Payload) (bool, error) {
	if err := s.apply(payload, cmd.Timestamp); err != nil {
		s.env.Report(cmd, err)
		return false, err
	}
	s.history = append(s.history, cmd)
	s.version++
	s.env.Report(cmd, nil)
	return true, nil
}

func (s *Slice) run(payload command.Payload) error {
	cmd, err := s.env.Prepare(payload)
	if err != nil {
		return err
	}
	_, err = s.Apply(cmd, payload)
	return err
}

func (s *Slice) lookup(id string) (*Crew, error) {
	c, ok := s.items[id]
	if !ok {
		return nil, apperrors.NotFound(apperrors.CodeCrewNotFound, "crew", id)
	}
	return c, nil
}

func (s *Slice) apply(payload command.Payload, at int64) error {
	if p, ok := payload.(CreatePayload); ok {
		return s.create(p, at)
	}
	c, err := s.lookup(payload.Target())
	if err != nil {
		return err
	}
	switch p := payload.(type) {
	case RenamePayload:
		if err := ValidateName(p.Name); err != nil {
			return err
		}
		c.Name = p.Name
	case DeletePayload:
		delete(s.items, c.ID)
		s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == c.ID })
		return nil
	case AddCharacterPayload:
		if strings.TrimSpace(p.CharacterID) == "" {
			return apperrors.New(apperrors.CodeCharacterIDRequired, "character id is required")
		}
		if c.HasMember(p.CharacterID) {
			return apperrors.New(apperrors.CodeCrewMemberDuplicate, "character is already a member: "+p.CharacterID)
		}
		c.Characters = append(c.Characters, p.CharacterID)
	case RemoveCharacterPayload:
		if !c.HasMember(p.CharacterID) {
			return apperrors.New(apperrors.CodeCrewMemberMissing, "character is not a member: "+p.CharacterID)
		}
		c.Characters = slices.DeleteFunc(c.Characters, func(id string) bool { return id == p.CharacterID })
	case SetMomentumPayload:
		c.CurrentMomentum = s.rules.ClampMomentum(p.Amount)
	case AddMomentumPayload:
		if err := ValidateAmount(p.Amount); err != nil {
			return err
		}
		c.CurrentMomentum = s.rules.ClampMomentum(c.CurrentMomentum + p.Amount)
	case SpendMomentumPayload:
		if err := ValidateSpend(*c, p.Amount); err != nil {
			return err
		}
		c.CurrentMomentum = s.rules.ClampMomentum(c.CurrentMomentum - p.Amount)
	case ResetMomentumPayload:
		c.CurrentMomentum = s.rules.ClampMomentum(s.rules.StartMomentum)
	default:
		return apperrors.New(apperrors.CodeCommandTypeUnknown,
			"crew slice cannot apply "+string(payload.CommandType()))
	}
	c.UpdatedAt = at
	return nil
}

func (s *Slice) create(p CreatePayload, at int64) error {
	if strings.TrimSpace(p.ID) == "" {
		return apperrors.New(apperrors.CodeCrewIDRequired, "crew id is required")
	}
	if _, exists := s.items[p.ID]; exists {
		return apperrors.New(apperrors.CodeCrewAlreadyExists, "crew already exists: "+p.ID)
	}
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	if err := ValidateMembers(p.Characters); err != nil {
		return err
	}
	c := &Crew{
		ID:              p.ID,
		Name:            p.Name,
		Characters:      append([]string{}, p.Characters...),
		CurrentMomentum: s.rules.ClampMomentum(s.rules.StartMomentum),
		CreatedAt:       at,
		UpdatedAt:       at,
	}
	s.items[c.ID] = c
	s.order = append(s.order, c.ID)
	return nil
}

// Create adds a crew and returns it.
func (s *Slice) Create(p CreatePayload) (Crew, error) {
	if p.ID == "" {
		p.ID = s.env.ID()
	}
	p.Name = command.NormalizeName(p.Name)
	p.Characters = slices.Clone(p.Characters)
	if err := s.run(p); err != nil {
		return Crew{}, err
	}
	c, _ := s.Get(p.ID)
	return c, nil
}

// Rename changes a crew name.
func (s *Slice) Rename(crewID, name string) error {
	return s.run(RenamePayload{Ref: Ref{crewID}, Name: command.NormalizeName(name)})
}

// Delete removes a crew. Owned clocks are the store's concern.
func (s *Slice) Delete(crewID string) error {
	return s.run(DeletePayload{Ref{crewID}})
}

// AddCharacter adds a member.
func (s *Slice) AddCharacter(crewID, characterID string) error {
	return s.run(AddCharacterPayload{MemberPayload{Ref{crewID}, characterID}})
}

// RemoveCharacter removes a member.
func (s *Slice) RemoveCharacter(crewID, characterID string) error {
	return s.run(RemoveCharacterPayload{MemberPayload{Ref{crewID}, characterID}})
}

// RemoveCharacterEverywhere removes characterID from every crew holding it and
// returns the crews it was removed from.
func (s *Slice) RemoveCharacterEverywhere(characterID string) ([]string, error) {
	var touched []string
	for _, c := range s.ForCharacter(characterID) {
		if err := s.RemoveCharacter(c.ID, characterID); err != nil {
			return touched, err
		}
		touched = append(touched, c.ID)
	}
	return touched, nil
}

// SetMomentum sets momentum, clamped to the rule range.
func (s *Slice) SetMomentum(crewID string, amount int) error {
	return s.run(SetMomentumPayload{MomentumPayload{Ref{crewID}, amount}})
}

// AddMomentum adds momentum; excess above the maximum is dropped.
func (s *Slice) AddMomentum(crewID string, amount int) error {
	return s.run(AddMomentumPayload{MomentumPayload{Ref{crewID}, amount}})
}

// SpendMomentum removes momentum, rejecting overdrafts.
func (s *Slice) SpendMomentum(crewID string, amount int) error {
	return s.run(SpendMomentumPayload{MomentumPayload{Ref{crewID}, amount}})
}

// ResetMomentum restores the starting momentum.
func (s *Slice) ResetMomentum(crewID string) error {
	return s.run(ResetMomentumPayload{Ref{crewID}})
}
