package selectors

import (
	"time"

	"github.com/louisbranch/crewledger/internal/ledger/domain/command"
	"github.com/louisbranch/crewledger/internal/ledger/history"
)

// AverageBytesPerCommand is the size estimate used for storage monitoring.
const AverageBytesPerCommand = 200

// HistoryStats summarizes the command logs. Oldest, Newest and ElapsedHours
// are nil when there is no history.
type HistoryStats struct {
	PerSlice       map[string]int `json:"perSlice"`
	Total          int            `json:"total"`
	EstimatedBytes int            `json:"estimatedBytes"`
	Oldest         *time.Time     `json:"oldest,omitempty"`
	Newest         *time.Time     `json:"newest,omitempty"`
	ElapsedHours   *float64       `json:"elapsedHours,omitempty"`
}

// HistoryStats merges every slice history into one summary.
func (s *Selectors) HistoryStats() HistoryStats {
	return memo(s, "historyStats", "", func() HistoryStats {
		stats := HistoryStats{PerSlice: make(map[string]int, 4)}
		var oldest, newest int64
		for _, src := range s.store.Sources() {
			h := src.Log.History()
			stats.PerSlice[src.Log.Name()] = len(h)
			for _, cmd := range h {
				if stats.Total == 0 || cmd.Timestamp < oldest {
					oldest = cmd.Timestamp
				}
				if stats.Total == 0 || cmd.Timestamp > newest {
					newest = cmd.Timestamp
				}
				stats.Total++
			}
		}
		stats.EstimatedBytes = stats.Total * AverageBytesPerCommand
		if stats.Total == 0 {
			return stats
		}
		first, last := time.UnixMilli(oldest).UTC(), time.UnixMilli(newest).UTC()
		elapsed := last.Sub(first).Hours()
		stats.Oldest, stats.Newest, stats.ElapsedHours = &first, &last, &elapsed
		return stats
	})
}

// OrphanedCommands returns, per slice name, the commands whose target no
// longer exists, excluding delete commands.
func (s *Selectors) OrphanedCommands() map[string][]command.Command {
	return memo(s, "orphanedCommands", "", func() map[string][]command.Command {
		out := make(map[string][]command.Command, 4)
		for _, src := range s.store.Sources() {
			out[src.Log.Name()] = history.Orphaned(src, s.store.Registry())
		}
		return out
	})
}
