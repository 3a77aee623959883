// Package timeouts holds the durations shared by crewledger entry points
// and storage backends.
package timeouts

import "time"

// StoragePing caps the connectivity check when opening a network backend.
const StoragePing = 5 * time.Second

// Shutdown caps how long telemetry may take to flush on exit.
const Shutdown = 5 * time.Second

// Command is the default budget for one maintenance command.
const Command = time.Minute
