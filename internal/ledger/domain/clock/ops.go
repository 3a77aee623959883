package clock

import (
	"strings"

	"github.com/louisbranch/crewledger/internal/ledger/domain/command"
)

// PrepareCreate normalizes a create payload: a missing id is generated, the
// subtype is NFC-folded and harm and addiction clocks take their rule size
// when none is given.
func (s *Slice) PrepareCreate(p CreatePayload) CreatePayload {
	if p.ID == "" {
		p.ID = s.env.ID()
	}
	p.Subtype = command.NormalizeName(p.Subtype)
	if p.MaxSegments == 0 {
		switch p.ClockType {
		case TypeHarm:
			p.MaxSegments = s.rules.HarmClockSize
		case TypeAddiction:
			p.MaxSegments = s.rules.AddictionClockSize
		}
	}
	p.Metadata = cloneMetadata(p.Metadata)
	return p
}

// FewestSegments returns the clock with the fewest marked segments. Ties go to
// the earliest clock in clocks, which callers pass in creation order.
func FewestSegments(clocks []Clock) (Clock, bool) {
	if len(clocks) == 0 {
		return Clock{}, false
	}
	best := clocks[0]
	for _, c := range clocks[1:] {
		if c.Segments < best.Segments {
			best = c
		}
	}
	return best, true
}

// Create adds a clock. Harm clocks honor the per-owner cap: a subtype the
// owner already has returns the existing clock, and a new subtype past the cap
// repurposes the owner's harm clock with the fewest segments in place.
func (s *Slice) Create(p CreatePayload) (Clock, error) {
	p = s.PrepareCreate(p)
	if p.ClockType == TypeHarm {
		harm := s.OwnedOfType(p.EntityID, TypeHarm)
		for _, existing := range harm {
			if strings.EqualFold(existing.Subtype, p.Subtype) {
				return existing, nil
			}
		}
		if len(harm) >= s.rules.MaxHarmClocks {
			target, _ := FewestSegments(harm)
			if err := s.Repurpose(target.ID, p.Subtype, p.Metadata); err != nil {
				return Clock{}, err
			}
			c, _ := s.Get(target.ID)
			return c, nil
		}
	}
	if err := s.run(p); err != nil {
		return Clock{}, err
	}
	c, _ := s.Get(p.ID)
	return c, nil
}

// Repurpose overwrites the subtype and metadata of a harm clock, keeping its
// id and segments.
func (s *Slice) Repurpose(clockID, subtype string, metadata *Metadata) error {
	return s.run(RepurposePayload{Ref: Ref{clockID}, Subtype: command.NormalizeName(subtype), Metadata: cloneMetadata(metadata)})
}

// AddSegments marks segments, clamped to the clock size.
func (s *Slice) AddSegments(clockID string, amount int) error {
	return s.run(AddSegmentsPayload{AmountPayload{Ref{clockID}, amount}})
}

// ClearSegments unmarks segments, floored at zero.
func (s *Slice) ClearSegments(clockID string, amount int) error {
	return s.run(ClearSegmentsPayload{AmountPayload{Ref{clockID}, amount}})
}

// SetSegments sets the marked segments, clamped to the clock size.
func (s *Slice) SetSegments(clockID string, segments int) error {
	return s.run(SetSegmentsPayload{Ref: Ref{clockID}, Segments: segments})
}

// SetMaxSegments resizes a clock, clamping its marked segments.
func (s *Slice) SetMaxSegments(clockID string, size int) error {
	return s.run(SetMaxSegmentsPayload{Ref: Ref{clockID}, MaxSegments: size})
}

// UpdateMetadata replaces the clock metadata.
func (s *Slice) UpdateMetadata(clockID string, metadata *Metadata) error {
	return s.run(UpdateMetadataPayload{Ref: Ref{clockID}, Metadata: cloneMetadata(metadata)})
}

// Delete removes a clock.
func (s *Slice) Delete(clockID string) error {
	return s.run(DeletePayload{Ref{clockID}})
}

// DeleteOwnedBy deletes every clock owned by entityID and returns their ids.
func (s *Slice) DeleteOwnedBy(entityID string) ([]string, error) {
	var deleted []string
	for _, c := range s.ByOwner(entityID) {
		if err := s.Delete(c.ID); err != nil {
			return deleted, err
		}
		deleted = append(deleted, c.ID)
	}
	return deleted, nil
}
