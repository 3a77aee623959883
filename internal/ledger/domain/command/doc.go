// Package command defines the command envelope shared by every ledger slice.
//
// A command is the system of record for one accepted mutation. Slices build
// commands in two phases: Prepare normalizes the typed payload and stamps the
// envelope (timestamp, schema version, command id), then the slice applies the
// decoded payload and appends the envelope to its history. Replay reuses the
// second phase with envelopes read back from storage.
package command
