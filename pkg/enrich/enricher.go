// Package enrich attaches product metadata to catalog items.
//
// Each item is looked up independently. A failed lookup degrades that item
// to empty metadata and never affects its siblings. Lookups may run on a
// bounded worker pool; output order always equals input order.
package enrich

import (
	"context"
	"sync"
	"time"

	"github.com/Sternrassler/kindle-shelf/pkg/catalog"
	"github.com/Sternrassler/kindle-shelf/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var enrichItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "kindle_enrich_items_total",
	Help: "Total items processed by the enricher by result",
}, []string{"result"})

const (
	resultOK      = "ok"
	resultFailed  = "failed"
	resultSkipped = "skipped"
)

// Config holds enricher configuration.
type Config struct {
	// Workers is the number of concurrent lookups (default 1, sequential).
	Workers int

	// Timeout per lookup (default 15s).
	Timeout time.Duration
}

// DefaultConfig returns a sequential configuration.
func DefaultConfig() Config {
	return Config{
		Workers: 1,
		Timeout: 15 * time.Second,
	}
}

// Stats summarizes one enrichment run.
type Stats struct {
	OK       int
	Failed   int
	Skipped  int
	Duration time.Duration
}

// Enricher looks up metadata for catalog items.
type Enricher struct {
	lookup Lookup
	config Config
	logger zerolog.Logger
}

// New creates an enricher.
func New(lookup Lookup, config Config) *Enricher {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &Enricher{
		lookup: lookup,
		config: config,
		logger: logging.NewLogger(logging.ComponentEnricher),
	}
}

// Enrich returns one record per item in input order. Every record carries
// non-nil metadata, empty for failed, skipped or un-attempted items.
func (e *Enricher) Enrich(ctx context.Context, items []catalog.Item) []Record {
	records, _ := e.EnrichWithStats(ctx, items)
	return records
}

// EnrichWithStats is Enrich plus a summary of outcomes.
func (e *Enricher) EnrichWithStats(ctx context.Context, items []catalog.Item) ([]Record, Stats) {
	start := time.Now()

	records := make([]Record, len(items))
	results := make([]string, len(items))
	for i, item := range items {
		records[i] = Record{Item: item, Metadata: &Metadata{}}
		results[i] = resultSkipped
	}

	workers := e.config.Workers
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan int)

	// Each worker writes only to the slots of the indices it receives.
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go e.worker(ctx, jobs, records, results, &wg, w)
	}

feed:
	for i := range items {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	var stats Stats
	for _, r := range results {
		enrichItemsTotal.WithLabelValues(r).Inc()
		switch r {
		case resultOK:
			stats.OK++
		case resultFailed:
			stats.Failed++
		default:
			stats.Skipped++
		}
	}
	stats.Duration = time.Since(start)

	e.logger.Info().
		Int("items", len(items)).
		Int("ok", stats.OK).
		Int("failed", stats.Failed).
		Int("skipped", stats.Skipped).
		Int("workers", workers).
		Dur("duration", stats.Duration).
		Msg("Enrichment complete")

	return records, stats
}

// worker processes item indices from the queue.
func (e *Enricher) worker(ctx context.Context, jobs <-chan int, records []Record, results []string, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	processed := 0

	for i := range jobs {
		if ctx.Err() != nil {
			e.logger.Debug().
				Int("worker_id", workerID).
				Int("items_processed", processed).
				Msg("Worker stopping (context cancelled)")
			// Drain so the feeder never blocks.
			for range jobs {
			}
			return
		}

		meta, result := e.enrichOne(ctx, records[i].Item)
		records[i].Metadata = meta
		results[i] = result
		processed++
	}
}

// enrichOne never fails: errors are logged and degrade to empty metadata.
func (e *Enricher) enrichOne(ctx context.Context, item catalog.Item) (*Metadata, string) {
	code := item.ProductCode()
	if code == "" {
		e.logger.Warn().
			Str("item_id", item.ItemID).
			Msg("No product code, skipping lookup")
		return &Metadata{}, resultSkipped
	}

	lookupCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	meta, err := e.lookup.GetItem(lookupCtx, code)
	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("product_code", code).
			Str("title", item.Title).
			Msg("Lookup failed, using empty metadata")
		return &Metadata{}, resultFailed
	}
	if meta == nil {
		meta = &Metadata{}
	}

	e.logger.Debug().
		Str("product_code", code).
		Str("pages", meta.PageCount).
		Msg("Lookup succeeded")

	return meta, resultOK
}
