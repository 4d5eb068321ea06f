// Package metrics provides the Prometheus registry used by kindle-shelf and
// a textfile exporter for one-shot CLI runs.
//
// Metrics are defined in their respective packages (catalog, pagination,
// paapi, enrich) and registered via promauto. A CLI run has no scrape
// endpoint, so the collected values are written once at exit in the
// node-exporter textfile format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by kindle-shelf.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer paired with Registry.
var Gatherer = prometheus.DefaultGatherer

// WriteTextfile writes every gathered metric to path in the text exposition
// format. The write is atomic (temp file + rename), as required by the
// node-exporter textfile collector.
func WriteTextfile(path string) error {
	if path == "" {
		return fmt.Errorf("metrics textfile path is required")
	}
	if err := prometheus.WriteToTextfile(path, Gatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Metrics Documentation
//
// Catalog Metrics (pkg/catalog):
//   - kindle_catalog_requests_total{status} (Counter): Listing calls by HTTP status
//   - kindle_catalog_request_duration_seconds (Histogram): Listing call duration
//
// Collector Metrics (pkg/pagination):
//   - kindle_catalog_pages_total (Counter): Pages consumed by the collector
//   - kindle_catalog_items_total (Counter): Items written to page sinks
//
// Lookup Metrics (pkg/paapi):
//   - kindle_paapi_requests_total{status} (Counter): Signed lookups by HTTP status
//   - kindle_paapi_request_duration_seconds (Histogram): Lookup duration
//   - kindle_paapi_errors_total{class} (Counter): Errors by class (client, server, network, decode)
//
// Enrichment Metrics (pkg/enrich):
//   - kindle_enrich_items_total{result} (Counter): Items by result (ok, failed, skipped)
//
// Snapshot Metrics (pkg/snapshot):
//   - kindle_snapshot_writes_total{backend,operation} (Counter): Pages, flushes and saves written
//   - kindle_snapshot_errors_total{backend,operation} (Counter): Failed snapshot operations
//   - kindle_snapshot_items (Gauge): Records in the last loaded or saved snapshot
