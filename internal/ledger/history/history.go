// Package history prunes slice command logs and detects orphaned commands:
// history entries whose target entity no longer exists, excluding that
// entity's own delete command.
package history

import (
	"github.com/louisbranch/crewledger/internal/ledger/domain/command"
)

// Log is a slice command history that can be rewritten by pruning.
type Log interface {
	Name() string
	History() []command.Command
	ReplaceHistory([]command.Command)
}

// Cleaner removes entities absent from an authoritative id set.
type Cleaner interface {
	Cleanup(valid command.IDSet) []string
}

// Source pairs a slice log with the ids currently alive in it.
type Source struct {
	Log  Log
	Live command.IDSet
}

// IsOrphanedCommand reports whether cmd references an entity missing from
// live. Delete commands are never orphaned, and commands the registry cannot
// decode are kept.
func IsOrphanedCommand(cmd command.Command, live command.IDSet, registry *command.Registry) bool {
	if registry.IsDelete(cmd.Type) {
		return false
	}
	target, err := registry.Target(cmd)
	if err != nil || target == "" {
		return false
	}
	return !live.Has(target)
}

// Orphaned returns the orphaned commands of src in history order.
func Orphaned(src Source, registry *command.Registry) []command.Command {
	var out []command.Command
	for _, cmd := range src.Log.History() {
		if IsOrphanedCommand(cmd, src.Live, registry) {
			out = append(out, cmd)
		}
	}
	return out
}

// PruneHistory empties the log and returns how many commands were dropped.
func PruneHistory(log Log) int {
	n := len(log.History())
	log.ReplaceHistory(nil)
	return n
}

// PruneOrphanedHistory keeps only non-orphaned commands and returns how many
// were dropped. Running it twice changes nothing the second time.
func PruneOrphanedHistory(src Source, registry *command.Registry) int {
	history := src.Log.History()
	kept := make([]command.Command, 0, len(history))
	for _, cmd := range history {
		if !IsOrphanedCommand(cmd, src.Live, registry) {
			kept = append(kept, cmd)
		}
	}
	dropped := len(history) - len(kept)
	if dropped > 0 {
		src.Log.ReplaceHistory(kept)
	}
	return dropped
}

// Cleanup removes entities absent from valid and returns their ids.
func Cleanup(target Cleaner, valid command.IDSet) []string {
	return target.Cleanup(valid)
}
