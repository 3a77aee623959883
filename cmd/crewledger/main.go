// Package main runs crewledger maintenance commands.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	crewledgercmd "github.com/louisbranch/crewledger/internal/cmd/crewledger"
	"github.com/louisbranch/crewledger/internal/platform/config"
)

func main() {
	log.SetPrefix("[CREWLEDGER] ")
	cfg, err := crewledgercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := crewledgercmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		config.Exitf("Error: %s: %v", cfg.Command, err)
	}
}
