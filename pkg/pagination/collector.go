package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/kindle-shelf/pkg/catalog"
	"github.com/Sternrassler/kindle-shelf/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for collection runs.
var (
	catalogPagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kindle_catalog_pages_total",
		Help: "Total listing pages consumed by the collector",
	})

	catalogItemsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kindle_catalog_items_total",
		Help: "Total catalog items written to page sinks",
	})
)

// ErrMaxPagesExceeded is returned when a run keeps receiving continuation
// tokens beyond Config.MaxPages.
var ErrMaxPagesExceeded = errors.New("maximum page count exceeded")

// State is the collector state.
type State int

const (
	// StateFetching means another page must be requested.
	StateFetching State = iota

	// StateDone is terminal.
	StateDone
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StopReason explains why a run reached StateDone.
type StopReason string

const (
	// StopLastPage means the server flagged the page as last.
	StopLastPage StopReason = "last_page"

	// StopNoToken means the server returned no continuation token.
	StopNoToken StopReason = "no_token"
)

// PageFetcher fetches a single listing page. A nil token requests the first page.
type PageFetcher interface {
	FetchPage(ctx context.Context, token *string) (*catalog.Page, error)
}

// Config holds collector configuration.
type Config struct {
	// MaxPages bounds the number of pages per run.
	MaxPages int
}

// DefaultConfig returns the default collector configuration.
func DefaultConfig() Config {
	return Config{
		MaxPages: 10000,
	}
}

// Stats summarizes a finished run.
type Stats struct {
	Pages    int
	Items    int
	Reason   StopReason
	Duration time.Duration
}

// Collector walks a paginated listing from the first page to the last.
type Collector struct {
	fetcher PageFetcher
	config  Config
	logger  zerolog.Logger
}

// NewCollector creates a collector.
func NewCollector(fetcher PageFetcher, config Config) *Collector {
	if config.MaxPages <= 0 {
		config.MaxPages = DefaultConfig().MaxPages
	}

	return &Collector{
		fetcher: fetcher,
		config:  config,
		logger:  logging.NewLogger(logging.ComponentCollector),
	}
}

// Collect fetches pages until the listing is exhausted and writes each page
// to sink. The first fetch or sink error aborts the run.
func (c *Collector) Collect(ctx context.Context, sink PageSink) (Stats, error) {
	start := time.Now()
	stats := Stats{}

	var token *string
	state := StateFetching

	for state == StateFetching {
		if stats.Pages >= c.config.MaxPages {
			return stats, fmt.Errorf("%w: stopped after %d pages", ErrMaxPagesExceeded, stats.Pages)
		}

		pageNumber := stats.Pages + 1
		page, err := c.fetcher.FetchPage(ctx, token)
		if err != nil {
			return stats, fmt.Errorf("fetch page %d: %w", pageNumber, err)
		}
		if page == nil {
			page = &catalog.Page{}
		}

		if err := sink.WritePage(ctx, pageNumber, page.ItemList); err != nil {
			return stats, fmt.Errorf("write page %d: %w", pageNumber, err)
		}

		stats.Pages = pageNumber
		stats.Items += len(page.ItemList)
		catalogPagesTotal.Inc()
		catalogItemsTotal.Add(float64(len(page.ItemList)))

		c.logger.Info().
			Int("page", pageNumber).
			Int("items", len(page.ItemList)).
			Msg("Fetched page")

		var reason StopReason
		state, token, reason = next(page)
		if state == StateDone {
			stats.Reason = reason
		}
	}

	stats.Duration = time.Since(start)

	c.logger.Info().
		Int("pages", stats.Pages).
		Int("items", stats.Items).
		Str("reason", string(stats.Reason)).
		Dur("duration", stats.Duration).
		Msg("Collection complete")

	return stats, nil
}

// next applies the transition rule to a received page.
func next(page *catalog.Page) (State, *string, StopReason) {
	if page.LastPage {
		return StateDone, nil, StopLastPage
	}
	token := page.Token()
	if token == "" {
		return StateDone, nil, StopNoToken
	}
	return StateFetching, &token, ""
}
