package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilLedgerIsNoop(t *testing.T) {
	var m *Ledger
	m.CommandApplied("characters/create")
	m.CommandRejected("characters/create", "not-found")
	m.ReplayResult(ReplaySkipped)
}

func TestCountersIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}
	m.CommandApplied("crews/addMomentum")
	m.CommandApplied("crews/addMomentum")
	m.CommandRejected("crews/spendMomentum", "crew-validation")
	m.ReplayResult(ReplaySkipped)

	if got := testutil.ToFloat64(m.applied.WithLabelValues("crews/addMomentum")); got != 2 {
		t.Fatalf("applied = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.rejected.WithLabelValues("crews/spendMomentum", "crew-validation")); got != 1 {
		t.Fatalf("rejected = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.replay.WithLabelValues(ReplaySkipped)); got != 1 {
		t.Fatalf("replay skipped = %v, want 1", got)
	}
}

func TestNewToleratesDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := New(reg); err != nil {
		t.Fatalf("second register: %v", err)
	}
}

func TestSecondLedgerSharesRegisteredSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := New(reg)
	if err != nil {
		t.Fatalf("first register: %v", err)
	}
	second, err := New(reg)
	if err != nil {
		t.Fatalf("second register: %v", err)
	}
	second.ReplayResult(ReplayApplied)
	if got := testutil.ToFloat64(first.replay.WithLabelValues(ReplayApplied)); got != 1 {
		t.Fatalf("shared replay applied = %v, want 1", got)
	}
}
