// Package telemetry groups operational observability for crewledger.
//
// The command history kept by each ledger slice is the audit record of the
// game. Telemetry is separate: it counts dispatches, rejections, and replay
// outcomes so operators can watch a host's ledger without reading history.
package telemetry
