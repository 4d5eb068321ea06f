package snapshot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SnapshotWrites tracks successful writes by backend and operation
	SnapshotWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kindle_snapshot_writes_total",
			Help: "Total number of snapshot writes",
		},
		[]string{"backend", "operation"}, // "file"|"redis", "page"|"flush"|"save"
	)

	// SnapshotErrors tracks snapshot operation errors
	SnapshotErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kindle_snapshot_errors_total",
			Help: "Total number of snapshot operation errors",
		},
		[]string{"backend", "operation"}, // "load", "save", "page", "flush", "reset"
	)

	// SnapshotItems tracks the number of records in the last loaded or saved snapshot
	SnapshotItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kindle_snapshot_items",
			Help: "Number of records in the current snapshot",
		},
		[]string{"backend"},
	)
)
