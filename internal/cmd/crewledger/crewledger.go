// Package crewledger parses maintenance command flags and runs ledger
// operations against a persisted store.
package crewledger

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/louisbranch/crewledger/internal/ledger/adapter"
	"github.com/louisbranch/crewledger/internal/ledger/domain/command"
	"github.com/louisbranch/crewledger/internal/ledger/notify"
	"github.com/louisbranch/crewledger/internal/ledger/rules"
	"github.com/louisbranch/crewledger/internal/ledger/selectors"
	"github.com/louisbranch/crewledger/internal/ledger/storage"
	"github.com/louisbranch/crewledger/internal/ledger/storage/memory"
	"github.com/louisbranch/crewledger/internal/ledger/storage/redis"
	"github.com/louisbranch/crewledger/internal/ledger/storage/sqlite"
	"github.com/louisbranch/crewledger/internal/ledger/store"
	entrypoint "github.com/louisbranch/crewledger/internal/platform/cmd"
	"github.com/louisbranch/crewledger/internal/platform/requestctx"
	"github.com/louisbranch/crewledger/internal/platform/telemetry/metrics"
	"github.com/louisbranch/crewledger/internal/platform/timeouts"
)

// Commands accepted as the first positional argument.
const (
	CommandStats        = "stats"
	CommandPruneOrphans = "prune-orphans"
	CommandPruneAll     = "prune-all"
	CommandReplay       = "replay"
	CommandExport       = "export"
)

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config holds crewledger command configuration.
type Config struct {
	StorageDriver string        `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath    string        `env:"SQLITE_PATH" envDefault:"data/crewledger.db"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB"`
	RulesPath     string        `env:"RULES_PATH"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	Namespace     string        `env:"NAMESPACE" envDefault:"crewledger"`
	UserID        string        `env:"USER_ID"`
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"1m"`

	Command string
	Input   string
	DryRun  bool
	Force   bool
}

// ErrReplayDropsEntities is returned when a replay would persist fewer
// entities than the loaded ledger holds and Force is not set.
var ErrReplayDropsEntities = errors.New("replay would drop persisted entities")

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.StorageDriver, "storage", cfg.StorageDriver, "storage driver (memory|sqlite|redis)")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "path to the sqlite database")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "redis address")
	fs.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "redis database number")
	fs.StringVar(&cfg.RulesPath, "rules", cfg.RulesPath, "optional YAML rules overlay")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug|info|warn|error)")
	fs.StringVar(&cfg.Namespace, "namespace", cfg.Namespace, "key prefix for persisted blobs")
	fs.StringVar(&cfg.UserID, "user", cfg.UserID, "user id stamped on new commands")
	fs.StringVar(&cfg.Input, "input", "", "replay: JSON command list to replay (- for stdin, empty for persisted history)")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "run without saving")
	fs.BoolVar(&cfg.Force, "force", false, "replay: save even when the rebuilt ledger has fewer entities")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Command = strings.TrimSpace(fs.Arg(0))
	if cfg.Timeout <= 0 {
		cfg.Timeout = timeouts.Command
	}
	return cfg, nil
}

// Run executes the configured command, writing its JSON report to out and
// logs to errOut.
func Run(ctx context.Context, cfg Config, out, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	switch cfg.Command {
	case CommandStats, CommandPruneOrphans, CommandPruneAll, CommandReplay, CommandExport:
	case "":
		return errors.New("command is required: stats|prune-orphans|prune-all|replay|export")
	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceLedger, cfg.Command, func(ctx context.Context) error {
		return run(ctx, cfg, out, errOut)
	})
}

func run(ctx context.Context, cfg Config, out, errOut io.Writer) error {
	ctx = requestctx.WithUserID(ctx, cfg.UserID)
	logger, err := newLogger(cfg.LogLevel, errOut)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	r := rules.Default()
	if cfg.RulesPath != "" {
		if r, err = rules.LoadYAML(cfg.RulesPath); err != nil {
			return err
		}
	}
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	defer logMetrics(logger, reg)

	kv, err := openKV(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = kv.Close() }()

	newStore := func() (*store.Store, error) {
		return store.New(store.WithRules(r), store.WithMetrics(m), store.WithUser(cfg.UserID))
	}
	st, err := newStore()
	if err != nil {
		return err
	}
	p := adapter.Persister{KV: kv, Namespace: cfg.Namespace}
	if err := p.Load(ctx, st); err != nil {
		if !adapter.IsMissing(err) {
			return err
		}
		logger.Info("no persisted ledger, starting empty", zap.String("namespace", cfg.Namespace))
	}

	save := func(s *store.Store) error {
		if cfg.DryRun {
			logger.Info("dry run, not saving")
			return nil
		}
		return p.Save(ctx, s)
	}

	var report any
	switch cfg.Command {
	case CommandStats:
		sel, err := selectors.New(st, 0)
		if err != nil {
			return err
		}
		orphans := make(map[string]int)
		for slice, cmds := range sel.OrphanedCommands() {
			orphans[slice] = len(cmds)
		}
		report = statsReport{
			Characters: len(st.Characters.List()),
			Crews:      len(st.Crews.List()),
			Clocks:     len(st.Clocks.List()),
			History:    sel.HistoryStats(),
			Orphans:    orphans,
		}
	case CommandPruneOrphans:
		removed := st.PruneOrphanedHistory()
		if err := save(st); err != nil {
			return err
		}
		report = map[string]any{"removed": removed}
	case CommandPruneAll:
		removed := st.PruneHistory()
		if err := save(st); err != nil {
			return err
		}
		report = map[string]any{"removed": removed}
	case CommandReplay:
		cmds, err := replayInput(ctx, cfg.Input, p)
		if err != nil {
			return err
		}
		fresh, err := newStore()
		if err != nil {
			return err
		}
		result, err := adapter.ReplayCommands(ctx, fresh, cmds, notify.NewZap(logger))
		if err != nil {
			return err
		}
		before, after := countEntities(st), countEntities(fresh)
		if after.fewerThan(before) {
			logger.Warn("replay rebuilt fewer entities than were persisted",
				zap.Int("commands", len(cmds)), zap.Any("persisted", before), zap.Any("replayed", after))
			if !cfg.Force && !cfg.DryRun {
				return fmt.Errorf("%w: persisted %+v, replayed %+v", ErrReplayDropsEntities, before, after)
			}
		}
		if err := save(fresh); err != nil {
			return err
		}
		report = result
	case CommandExport:
		report = exportReport{State: adapter.ExportState(st), History: adapter.ExportHistory(st)}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

type statsReport struct {
	Characters int                    `json:"characters"`
	Crews      int                    `json:"crews"`
	Clocks     int                    `json:"clocks"`
	History    selectors.HistoryStats `json:"history"`
	Orphans    map[string]int         `json:"orphans"`
}

type entityCounts struct {
	Characters int `json:"characters"`
	Crews      int `json:"crews"`
	Clocks     int `json:"clocks"`
}

func countEntities(s *store.Store) entityCounts {
	return entityCounts{
		Characters: len(s.Characters.List()),
		Crews:      len(s.Crews.List()),
		Clocks:     len(s.Clocks.List()),
	}
}

func (c entityCounts) fewerThan(o entityCounts) bool {
	return c.Characters < o.Characters || c.Crews < o.Crews || c.Clocks < o.Clocks
}

type exportReport struct {
	State   adapter.Snapshot  `json:"state"`
	History []command.Command `json:"history"`
}

func replayInput(ctx context.Context, input string, p adapter.Persister) ([]command.Command, error) {
	var raw []byte
	var err error
	switch input {
	case "":
		cmds, err := p.LoadHistory(ctx)
		if adapter.IsMissing(err) {
			return nil, nil
		}
		return cmds, err
	case "-":
		raw, err = io.ReadAll(os.Stdin)
	default:
		raw, err = os.ReadFile(input)
	}
	if err != nil {
		return nil, fmt.Errorf("read replay input: %w", err)
	}
	var cmds []command.Command
	if err := json.Unmarshal(raw, &cmds); err != nil {
		return nil, fmt.Errorf("decode replay input: %w", err)
	}
	return cmds, nil
}

func openKV(ctx context.Context, cfg Config) (storage.KV, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StorageDriver)) {
	case DriverMemory:
		return memory.New(), nil
	case DriverSQLite, "":
		return sqlite.Open(ctx, cfg.SQLitePath)
	case DriverRedis:
		return redis.Open(ctx, redis.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), lvl)
	return zap.New(core).With(zap.String("service", entrypoint.ServiceLedger)), nil
}

func logMetrics(logger *zap.Logger, reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		logger.Warn("gather metrics", zap.Error(err))
		return
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			fields := []zap.Field{zap.Float64("value", metric.GetCounter().GetValue())}
			for _, label := range metric.GetLabel() {
				fields = append(fields, zap.String(label.GetName(), label.GetValue()))
			}
			logger.Debug(family.GetName(), fields...)
		}
	}
}
