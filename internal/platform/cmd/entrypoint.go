// Package cmd holds the startup steps shared by crewledger commands.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/louisbranch/crewledger/internal/platform/config"
	"github.com/louisbranch/crewledger/internal/platform/otel"
	"github.com/louisbranch/crewledger/internal/platform/timeouts"
)

// ServiceLedger names the ledger in telemetry and log fields.
const ServiceLedger = "crewledger"

// ParseConfig loads CREWLEDGER_-prefixed environment defaults into cfg.
// Callers register flags on top of the loaded values and then call ParseArgs.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnvWithPrefix(cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// RunWithTelemetry sets up tracing for service, runs one operation under a
// root span and flushes spans before returning.
func RunWithTelemetry(ctx context.Context, service, operation string, run func(context.Context) error) (err error) {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("%s otel shutdown: %v", service, err)
		}
	}()

	name := service
	if operation = strings.TrimSpace(operation); operation != "" {
		name = service + "." + operation
	}
	ctx, span := otel.Tracer().Start(ctx, name)
	span.SetAttributes(attribute.String("service.operation", operation))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	return run(ctx)
}
