// Package metrics exposes Prometheus collectors for ledger dispatch and replay.
//
// Collectors are registered on a caller-supplied prometheus.Registerer so
// tests and embedding hosts can use isolated registries.
package metrics
