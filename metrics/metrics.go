// Package metrics defines the Prometheus gauges/counters the CLI
// exposes over --metrics-addr (spec §6.F): total events processed by
// type, gates wired into the registry, and WAL apply/recovery counts.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// EventsTotal counts every event a Stream has dispatched (Emit
	// calls), claimed or not, labeled by event type.
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatedb_events_total",
			Help: "Total number of events dispatched through the router, by type",
		},
		[]string{"type"},
	)

	// GatesRegistered reports how many signatures the registry currently
	// holds.
	GatesRegistered = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gatedb_gates_registered",
			Help: "Number of gate signatures registered",
		},
	)

	// StatementsTotal counts top-level "sql" events by outcome
	// (ok/error), one per statement submitted through the CLI or REPL.
	StatementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatedb_statements_total",
			Help: "Total number of SQL statements processed, by outcome",
		},
		[]string{"outcome"},
	)

	// WALAppliedTotal counts WAL ops (puts, refSets, refDeletes) marked
	// applied during a normal Commit, labeled by op kind.
	WALAppliedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatedb_wal_applied_total",
			Help: "Total number of WAL operations applied during commit, by op kind",
		},
		[]string{"op"},
	)

	// WALRecoveredTotal counts WAL ops replayed by Recover on startup
	// against a log left by a crash mid-commit, labeled by op kind.
	WALRecoveredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatedb_wal_recovered_total",
			Help: "Total number of WAL operations replayed during recovery, by op kind",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(EventsTotal, GatesRegistered, StatementsTotal, WALAppliedTotal, WALRecoveredTotal)
}
