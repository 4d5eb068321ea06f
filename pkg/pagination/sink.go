package pagination

import (
	"context"

	"github.com/Sternrassler/kindle-shelf/pkg/catalog"
)

// PageSink receives the items of each page in delivery order. Implementations
// either accumulate pages in memory or persist each page as its own unit.
type PageSink interface {
	WritePage(ctx context.Context, pageNumber int, items []catalog.Item) error
}

// Accumulator is an in-memory PageSink preserving page-then-within-page order.
type Accumulator struct {
	items []catalog.Item
	pages int
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// WritePage appends the page's items.
func (a *Accumulator) WritePage(_ context.Context, _ int, items []catalog.Item) error {
	a.items = append(a.items, items...)
	a.pages++
	return nil
}

// Items returns the accumulated items.
func (a *Accumulator) Items() []catalog.Item {
	return a.items
}

// Pages returns how many pages were written.
func (a *Accumulator) Pages() int {
	return a.pages
}

// MultiSink fans each page out to several sinks, stopping at the first error.
func MultiSink(sinks ...PageSink) PageSink {
	return multiSink(sinks)
}

type multiSink []PageSink

func (m multiSink) WritePage(ctx context.Context, pageNumber int, items []catalog.Item) error {
	for _, s := range m {
		if err := s.WritePage(ctx, pageNumber, items); err != nil {
			return err
		}
	}
	return nil
}
