package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/Sternrassler/kindle-shelf/pkg/catalog"
	"github.com/Sternrassler/kindle-shelf/pkg/enrich"
	"github.com/Sternrassler/kindle-shelf/pkg/pagination"
)

var (
	// ErrNotFound indicates that no snapshot has been written yet.
	ErrNotFound = errors.New("snapshot not found")

	// ErrInvalidDocument indicates the stored snapshot is corrupted.
	ErrInvalidDocument = errors.New("invalid snapshot document")
)

// Document is the persisted form of a pipeline run.
type Document struct {
	ItemList  []enrich.Record `json:"itemList"`
	Enriched  bool            `json:"enriched"`
	FetchedAt time.Time       `json:"fetchedAt"`
	Pages     int             `json:"pages,omitempty"`
}

// Items returns the catalog items of the document in stored order.
func (d *Document) Items() []catalog.Item {
	return enrich.Items(d.ItemList)
}

// Store loads and saves snapshots and receives collected pages.
//
// A collection run calls Reset, then WritePage once per page, then Flush.
type Store interface {
	pagination.PageSink

	// Reset discards pages buffered by an earlier run. The published
	// snapshot stays readable until Flush replaces it.
	Reset(ctx context.Context) error

	// Flush publishes the pages written since Reset as a non-enriched
	// document, replacing the previous snapshot.
	Flush(ctx context.Context) error

	// Load returns the stored snapshot, or ErrNotFound.
	Load(ctx context.Context) (*Document, error)

	// Save replaces the stored snapshot with doc.
	Save(ctx context.Context, doc *Document) error

	Close() error
}

func newDocument(records []enrich.Record, pages int) *Document {
	if records == nil {
		records = []enrich.Record{}
	}
	return &Document{
		ItemList:  records,
		FetchedAt: time.Now().UTC().Truncate(time.Second),
		Pages:     pages,
	}
}
