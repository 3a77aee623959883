// Package adapter moves ledger state and history across the persistence
// boundary: snapshot export and import, merged history export, and replay.
package adapter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/louisbranch/crewledger/internal/ledger/domain/character"
	"github.com/louisbranch/crewledger/internal/ledger/domain/clock"
	"github.com/louisbranch/crewledger/internal/ledger/domain/crew"
	"github.com/louisbranch/crewledger/internal/ledger/store"
)

// SchemaVersion is written into every snapshot.
const SchemaVersion = "1.0.0"

// Snapshot is the serialized entity state of a store. History is not part
// of it.
type Snapshot struct {
	SchemaVersion string                         `json:"schemaVersion"`
	Timestamp     int64                          `json:"timestamp"`
	Characters    map[string]character.Character `json:"characters"`
	Crews         map[string]crew.Crew           `json:"crews"`
	Clocks        map[string]clock.Clock         `json:"clocks"`
}

// ExportState snapshots the character, crew and clock slices.
func ExportState(s *store.Store) Snapshot {
	return Snapshot{
		SchemaVersion: SchemaVersion,
		Timestamp:     s.Now().UnixMilli(),
		Characters:    s.Characters.Snapshot(),
		Crews:         s.Crews.Snapshot(),
		Clocks:        s.Clocks.Snapshot(),
	}
}

// ImportState replaces the store's entities with the snapshot. Each slice
// drops its history and rebuilds its indexes, and round records are cleared
// until RestoreHistory rebuilds them. Snapshots from another major schema
// version are rejected.
func ImportState(s *store.Store, snap Snapshot) error {
	if err := CheckSchema(snap.SchemaVersion); err != nil {
		return err
	}
	s.Characters.Hydrate(snap.Characters)
	s.Crews.Hydrate(snap.Crews)
	s.Clocks.Hydrate(snap.Clocks)
	s.Rounds.Hydrate()
	return nil
}

// CheckSchema accepts versions sharing SchemaVersion's major number.
func CheckSchema(version string) error {
	want, err := major(SchemaVersion)
	if err != nil {
		return err
	}
	got, err := major(version)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("unsupported schema version %q: want %d.x.x", version, want)
	}
	return nil
}

func major(version string) (int, error) {
	head, _, _ := strings.Cut(strings.TrimPrefix(strings.TrimSpace(version), "v"), ".")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("invalid schema version %q", version)
	}
	return n, nil
}
