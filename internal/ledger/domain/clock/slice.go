package clock

import (
	"slices"
	"strings"

	"github.com/louisbranch/crewledger/internal/ledger/domain/command"
	"github.com/louisbranch/crewledger/internal/ledger/rules"
	apperrors "github.com/louisbranch/crewledger/internal/platform/errors"
)

// Slice holds the clocks, their derived indexes and the command history.
type Slice struct {
	rules   rules.Rules
	env     *command.Env
	items   map[string]*Clock
	order   []string
	byOwner map[string][]string
	byType  map[Type][]string
	history []command.Command
	version uint64
}

// NewSlice returns an empty slice.
func NewSlice(r rules.Rules, env *command.Env) *Slice {
	if env == nil {
		env = command.NewEnv()
	}
	s := &Slice{rules: r, env: env, items: make(map[string]*Clock)}
	s.reindex()
	return s
}

// Name returns the slice namespace.
func (s *Slice) Name() string { return SliceName }

// Version increases on every change to entities or history.
func (s *Slice) Version() uint64 { return s.version }

// Get returns a copy of the clock with id.
func (s *Slice) Get(id string) (Clock, bool) {
	c, ok := s.items[id]
	if !ok {
		return Clock{}, false
	}
	return c.Clone(), true
}

// List returns copies of all clocks in creation order.
func (s *Slice) List() []Clock {
	return s.collect(s.order)
}

// ByOwner returns the clocks owned by entityID in creation order.
func (s *Slice) ByOwner(entityID string) []Clock {
	return s.collect(s.byOwner[entityID])
}

// ByType returns the clocks of type t in creation order.
func (s *Slice) ByType(t Type) []Clock {
	return s.collect(s.byType[t])
}

// OwnedOfType returns the clocks of type t owned by entityID.
func (s *Slice) OwnedOfType(entityID string, t Type) []Clock {
	var out []Clock
	for _, id := range s.byOwner[entityID] {
		if c := s.items[id]; c.ClockType == t {
			out = append(out, c.Clone())
		}
	}
	return out
}

func (s *Slice) collect(ids []string) []Clock {
	out := make([]Clock, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.items[id].Clone())
	}
	return out
}

// IDs returns the live clock ids.
func (s *Slice) IDs() command.IDSet { return command.NewIDSet(s.order...) }

// Snapshot returns copies of all clocks keyed by id.
func (s *Slice) Snapshot() map[string]Clock {
	out := make(map[string]Clock, len(s.items))
	for id, c := range s.items {
		out[id] = c.Clone()
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

// Hydrate replaces all clocks, clears history and rebuilds the indexes.
func (s *Slice) Hydrate(clocks map[string]Clock) {
	s.items = make(map[string]*Clock, len(clocks))
	s.order = s.order[:0]
	for id, c := range clocks {
		c = c.Clone()
		c.ID = id
		c.Segments = Clamp(c.Segments, c.MaxSegments)
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
	s.reindex()
	s.history = nil
	s.version++
}

// Cleanup removes clocks whose ids are not in valid and returns the removed ids.
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
		s.reindex()
		s.version++
	}
	return removed
}

func (s *Slice) reindex() {
	s.byOwner = make(map[string][]string)
	s.byType = make(map[Type][]string)
	for _, id := range s.order {
		c := s.items[id]
		s.byOwner[c.EntityID] = append(s.byOwner[c.EntityID], id)
		s.byType[c.ClockType] = append(s.byType[c.ClockType], id)
	}
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

func (s *Slice) apply(payload command.Payload, at int64) error {
	if p, ok := payload.(CreatePayload); ok {
		return s.create(p, at)
	}
	c, ok := s.items[payload.Target()]
	if !ok {
		return apperrors.NotFound(apperrors.CodeClockNotFound, "clock", payload.Target())
	}
	switch p := payload.(type) {
	case RepurposePayload:
		if err := ValidateRepurpose(*c, p.Subtype); err != nil {
			return err
		}
		c.Subtype = p.Subtype
		c.Metadata = cloneMetadata(p.Metadata)
	case AddSegmentsPayload:
		if err := ValidateAmount(p.Amount); err != nil {
			return err
		}
		c.Segments = Clamp(c.Segments+p.Amount, c.MaxSegments)
	case ClearSegmentsPayload:
		if err := ValidateAmount(p.Amount); err != nil {
			return err
		}
		c.Segments = Clamp(c.Segments-p.Amount, c.MaxSegments)
	case SetSegmentsPayload:
		c.Segments = Clamp(p.Segments, c.MaxSegments)
	case SetMaxSegmentsPayload:
		if err := ValidateSize(s.rules, p.MaxSegments); err != nil {
			return err
		}
		c.MaxSegments = p.MaxSegments
		c.Segments = Clamp(c.Segments, c.MaxSegments)
	case UpdateMetadataPayload:
		c.Metadata = cloneMetadata(p.Metadata)
	case DeletePayload:
		delete(s.items, c.ID)
		s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == c.ID })
		s.reindex()
		return nil
	default:
		return apperrors.New(apperrors.CodeCommandTypeUnknown,
			"clock slice cannot apply "+string(payload.CommandType()))
	}
	c.UpdatedAt = at
	return nil
}

func (s *Slice) create(p CreatePayload, at int64) error {
	if err := ValidateCreate(s.rules, p); err != nil {
		return err
	}
	if _, exists := s.items[p.ID]; exists {
		return apperrors.New(apperrors.CodeClockAlreadyExists, "clock already exists: "+p.ID)
	}
	if p.ClockType == TypeHarm && len(s.OwnedOfType(p.EntityID, TypeHarm)) >= s.rules.MaxHarmClocks {
		return apperrors.WithMetadata(apperrors.CodeClockHarmCapReached,
			"owner already has the maximum number of harm clocks",
			map[string]string{"entityId": p.EntityID})
	}
	c := &Clock{
		ID:          p.ID,
		EntityID:    p.EntityID,
		ClockType:   p.ClockType,
		Subtype:     p.Subtype,
		Segments:    Clamp(p.Segments, p.MaxSegments),
		MaxSegments: p.MaxSegments,
		Metadata:    cloneMetadata(p.Metadata),
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	s.items[c.ID] = c
	s.order = append(s.order, c.ID)
	s.byOwner[c.EntityID] = append(s.byOwner[c.EntityID], c.ID)
	s.byType[c.ClockType] = append(s.byType[c.ClockType], c.ID)
	return nil
}

func cloneMetadata(md *Metadata) *Metadata {
	if md == nil {
		return nil
	}
	cp := *md
	return &cp
}
