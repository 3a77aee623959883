package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/crewledger/internal/ledger/domain/command"
	"github.com/louisbranch/crewledger/internal/ledger/storage"
	"github.com/louisbranch/crewledger/internal/ledger/store"
	ledgerotel "github.com/louisbranch/crewledger/internal/platform/otel"
	"github.com/louisbranch/crewledger/internal/platform/requestctx"
)

// DefaultNamespace prefixes persisted keys when none is configured.
const DefaultNamespace = "crewledger"

var errMissing = errors.New("no persisted ledger")

// IsMissing reports whether err means a persisted blob does not exist.
func IsMissing(err error) bool {
	return errors.Is(err, errMissing)
}

// Persister saves and loads a store through a KV backend.
type Persister struct {
	KV        storage.KV
	Namespace string
}

func (p Persister) key(name string) string {
	ns := strings.TrimSuffix(strings.TrimSpace(p.Namespace), "/")
	if ns == "" {
		ns = DefaultNamespace
	}
	return ns + "/" + name
}

// StateKey is the key holding the snapshot.
func (p Persister) StateKey() string { return p.key("state") }

// HistoryKey is the key holding the merged history.
func (p Persister) HistoryKey() string { return p.key("history") }

// Save writes the snapshot and the merged history. The two writes are not
// atomic; callers must wait for Save to return before treating the store as
// durable.
func (p Persister) Save(ctx context.Context, s *store.Store) (err error) {
	ctx, span := ledgerotel.Tracer().Start(ctx, "adapter.Persister.Save", trace.WithAttributes(p.spanAttrs(ctx)...))
	defer func() { endSpan(span, err) }()

	state, err := json.Marshal(ExportState(s))
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	history, err := json.Marshal(ExportHistory(s))
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	span.SetAttributes(attribute.Int("ledger.state.bytes", len(state)), attribute.Int("ledger.history.bytes", len(history)))
	if err := p.KV.Set(ctx, p.StateKey(), state); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if err := p.KV.Set(ctx, p.HistoryKey(), history); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// Load imports the persisted snapshot into s and reattaches the persisted
// history to its slices. A namespace with nothing saved returns an error
// matched by IsMissing and leaves s untouched.
func (p Persister) Load(ctx context.Context, s *store.Store) (err error) {
	ctx, span := ledgerotel.Tracer().Start(ctx, "adapter.Persister.Load", trace.WithAttributes(p.spanAttrs(ctx)...))
	defer func() { endSpan(span, err) }()

	raw, err := p.KV.Get(ctx, p.StateKey())
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s: %w", p.StateKey(), errMissing)
	}
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}
	history, err := p.LoadHistory(ctx)
	if err != nil && !IsMissing(err) {
		return err
	}
	if err := ImportState(s, snap); err != nil {
		return err
	}
	unknown, rejected := RestoreHistory(s, history)
	span.SetAttributes(
		attribute.Int("ledger.history.unknown", len(unknown)),
		attribute.Int("ledger.rounds.rejected", len(rejected)),
	)
	return nil
}

// LoadHistory reads the persisted merged history.
func (p Persister) LoadHistory(ctx context.Context) ([]command.Command, error) {
	raw, err := p.KV.Get(ctx, p.HistoryKey())
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", p.HistoryKey(), errMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	var cmds []command.Command
	if err := json.Unmarshal(raw, &cmds); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return cmds, nil
}

func (p Persister) spanAttrs(ctx context.Context) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String("ledger.namespace", p.key(""))}
	if user := requestctx.UserID(ctx); user != "" {
		attrs = append(attrs, attribute.String("ledger.user", user))
	}
	return attrs
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
