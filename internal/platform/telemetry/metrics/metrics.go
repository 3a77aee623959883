package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Replay outcome labels.
const (
	ReplayApplied = "applied"
	ReplaySkipped = "skipped"
	ReplayFailed  = "failed"
)

// Ledger holds the collectors recorded by the store and the replay adapter.
// A nil *Ledger is valid and records nothing.
type Ledger struct {
	applied  *prometheus.CounterVec
	rejected *prometheus.CounterVec
	replay   *prometheus.CounterVec
}

// New creates collectors and registers them on reg. A nil reg leaves the
// collectors unregistered, which is useful for tests.
func New(reg prometheus.Registerer) (*Ledger, error) {
	m := &Ledger{
		applied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crewledger",
			Name:      "commands_applied_total",
			Help:      "Commands applied to a ledger slice, by command type.",
		}, []string{"type"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crewledger",
			Name:      "commands_rejected_total",
			Help:      "Commands rejected before mutation, by command type and error kind.",
		}, []string{"type", "kind"}),
		replay: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crewledger",
			Name:      "replay_commands_total",
			Help:      "Commands processed during history replay, by result.",
		}, []string{"result"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, vec := range []**prometheus.CounterVec{&m.applied, &m.rejected, &m.replay} {
		registered, err := register(reg, *vec)
		if err != nil {
			return nil, err
		}
		*vec = registered
	}
	return m, nil
}

// register returns the already-registered collector when another Ledger was
// registered on reg first, so both share the exported series.
func register(reg prometheus.Registerer, vec *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return vec, nil
}

// CommandApplied records a successful dispatch.
func (m *Ledger) CommandApplied(commandType string) {
	if m == nil {
		return
	}
	m.applied.WithLabelValues(commandType).Inc()
}

// CommandRejected records a dispatch that returned an error.
func (m *Ledger) CommandRejected(commandType, kind string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(commandType, kind).Inc()
}

// ReplayResult records one replayed command outcome.
func (m *Ledger) ReplayResult(result string) {
	if m == nil {
		return
	}
	m.replay.WithLabelValues(result).Inc()
}
