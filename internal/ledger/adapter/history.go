package adapter

import (
	"context"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/louisbranch/crewledger/internal/ledger/domain/command"
	"github.com/louisbranch/crewledger/internal/ledger/notify"
	"github.com/louisbranch/crewledger/internal/ledger/store"
	apperrors "github.com/louisbranch/crewledger/internal/platform/errors"
	ledgerotel "github.com/louisbranch/crewledger/internal/platform/otel"
	"github.com/louisbranch/crewledger/internal/platform/telemetry/metrics"
)

// ExportHistory merges every slice history, including round state, into one
// list ordered by timestamp. Commands sharing a timestamp keep slice order.
func ExportHistory(s *store.Store) []command.Command {
	var merged []command.Command
	for _, src := range s.Sources() {
		merged = append(merged, src.Log.History()...)
	}
	slices.SortStableFunc(merged, func(a, b command.Command) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		}
		return 0
	})
	return merged
}

// RestoreHistory reattaches commands to the slice logs they belong to,
// replacing each log. Round records are rebuilt from the round-state log.
// Commands for unknown slices are returned first; round-state commands that
// no longer apply are returned second and stay in the log.
func RestoreHistory(s *store.Store, cmds []command.Command) (unknown, rejected []command.Command) {
	bySlice := make(map[string][]command.Command)
	logs := make(map[string]bool)
	for _, src := range s.Sources() {
		logs[src.Log.Name()] = true
	}
	for _, cmd := range cmds {
		name := cmd.Type.Slice()
		if !logs[name] {
			unknown = append(unknown, cmd)
			continue
		}
		bySlice[name] = append(bySlice[name], cmd)
	}
	for _, src := range s.Sources() {
		name := src.Log.Name()
		if name == s.Rounds.Name() {
			rejected = s.RestoreRounds(bySlice[name])
			continue
		}
		src.Log.ReplaceHistory(bySlice[name])
	}
	return unknown, rejected
}

// ReplayFailure describes a command replay could not apply.
type ReplayFailure struct {
	CommandID string       `json:"commandId"`
	Type      command.Type `json:"type"`
	Error     string       `json:"error"`
}

// ReplayResult counts replay outcomes.
type ReplayResult struct {
	Applied  int             `json:"applied"`
	Skipped  int             `json:"skipped"`
	Failed   int             `json:"failed"`
	Failures []ReplayFailure `json:"failures,omitempty"`
}

// ReplayCommands dispatches cmds in order against s. Commands whose target
// is gone, and commands that change nothing, are skipped and reported at
// info level. Other errors are reported at error level. Replay never stops
// early unless ctx is done.
func ReplayCommands(ctx context.Context, s *store.Store, cmds []command.Command, sink notify.Sink) (ReplayResult, error) {
	ctx, span := ledgerotel.Tracer().Start(ctx, "adapter.ReplayCommands")
	defer span.End()
	span.SetAttributes(attribute.Int("ledger.commands", len(cmds)))

	sink = notify.OrNop(sink)
	m := s.Metrics()
	var result ReplayResult
	for _, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "replay canceled")
			return result, err
		}
		applied, err := s.Dispatch(cmd)
		switch {
		case err == nil && applied:
			result.Applied++
			m.ReplayResult(metrics.ReplayApplied)
		case err == nil:
			result.Skipped++
			m.ReplayResult(metrics.ReplaySkipped)
			sink.Info("replay skipped command with no effect",
				notify.F("commandId", cmd.CommandID), notify.F("type", string(cmd.Type)))
		case apperrors.IsNotFound(err):
			result.Skipped++
			m.ReplayResult(metrics.ReplaySkipped)
			sink.Info("replay skipped command for missing target",
				notify.F("commandId", cmd.CommandID), notify.F("type", string(cmd.Type)), notify.F("err", err.Error()))
		default:
			result.Failed++
			result.Failures = append(result.Failures, ReplayFailure{CommandID: cmd.CommandID, Type: cmd.Type, Error: err.Error()})
			m.ReplayResult(metrics.ReplayFailed)
			sink.Error("replay failed to apply command",
				notify.F("commandId", cmd.CommandID), notify.F("type", string(cmd.Type)),
				notify.F("kind", string(apperrors.KindOf(err))), notify.F("err", err.Error()))
		}
	}
	span.SetAttributes(
		attribute.Int("ledger.replay.applied", result.Applied),
		attribute.Int("ledger.replay.skipped", result.Skipped),
		attribute.Int("ledger.replay.failed", result.Failed),
	)
	if result.Failed > 0 {
		span.SetStatus(codes.Error, "some commands failed")
	}
	return result, nil
}
