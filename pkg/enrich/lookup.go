package enrich

import (
	"context"

	"github.com/Sternrassler/kindle-shelf/pkg/paapi"
)

// Lookup resolves one product code to its metadata.
type Lookup interface {
	GetItem(ctx context.Context, productCode string) (*Metadata, error)
}

// ItemGetter is the part of paapi.Client used by the adapter.
type ItemGetter interface {
	GetItem(ctx context.Context, productCode string) (*paapi.Item, error)
}

// FromPAAPI adapts a product-metadata client to Lookup.
func FromPAAPI(client ItemGetter) Lookup {
	return paapiLookup{client: client}
}

type paapiLookup struct {
	client ItemGetter
}

func (l paapiLookup) GetItem(ctx context.Context, productCode string) (*Metadata, error) {
	item, err := l.client.GetItem(ctx, productCode)
	if err != nil {
		return nil, err
	}
	return &Metadata{
		PageCount:  item.PageCount(),
		Language:   item.Language(),
		GradeLevel: item.GradeLevel(),
		ReadingAge: item.ReadingAge(),
	}, nil
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, productCode string) (*Metadata, error)

// GetItem calls f.
func (f LookupFunc) GetItem(ctx context.Context, productCode string) (*Metadata, error) {
	return f(ctx, productCode)
}
