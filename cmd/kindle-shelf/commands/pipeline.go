package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Sternrassler/kindle-shelf/pkg/catalog"
	"github.com/Sternrassler/kindle-shelf/pkg/enrich"
	"github.com/Sternrassler/kindle-shelf/pkg/paapi"
	"github.com/Sternrassler/kindle-shelf/pkg/pagination"
	"github.com/Sternrassler/kindle-shelf/pkg/render"
	"github.com/Sternrassler/kindle-shelf/pkg/snapshot"
)

// collect pages through the listing into store.
func (a *app) collect(ctx context.Context, store snapshot.Store) (pagination.Stats, error) {
	client, err := catalog.New(a.cfg.CatalogClientConfig())
	if err != nil {
		return pagination.Stats{}, err
	}

	if err := store.Reset(ctx); err != nil {
		return pagination.Stats{}, err
	}

	collector := pagination.NewCollector(client, a.cfg.CollectorConfig())
	stats, err := collector.Collect(ctx, store)
	if err != nil {
		return stats, err
	}

	if err := store.Flush(ctx); err != nil {
		return stats, err
	}

	a.logger.Info().
		Int("pages", stats.Pages).
		Int("items", stats.Items).
		Str("reason", string(stats.Reason)).
		Msg("Fetched catalog")

	return stats, nil
}

// enrichStore looks up metadata for every stored item and saves the
// enriched snapshot.
func (a *app) enrichStore(ctx context.Context, store snapshot.Store) (*snapshot.Document, error) {
	client, err := paapi.New(a.cfg.PAAPIClientConfig())
	if err != nil {
		return nil, err
	}

	doc, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	enricher := enrich.New(enrich.FromPAAPI(client), a.cfg.EnricherConfig())
	records, stats := enricher.EnrichWithStats(ctx, doc.Items())
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("enrichment interrupted: %w", err)
	}

	doc.ItemList = records
	doc.Enriched = true
	if err := store.Save(ctx, doc); err != nil {
		return nil, err
	}

	a.logger.Info().
		Int("items", len(records)).
		Int("failed", stats.Failed).
		Msg("Enriched snapshot")

	return doc, nil
}

// renderStore writes the stored snapshot as an HTML document to out.
func (a *app) renderStore(ctx context.Context, store snapshot.Store, out string) error {
	doc, err := store.Load(ctx)
	if err != nil {
		return err
	}
	return a.renderDocument(doc, out)
}

func (a *app) renderDocument(doc *snapshot.Document, out string) error {
	if out == "" {
		out = a.cfg.Output.HTML
	}

	html, err := render.RenderString(doc.ItemList, a.cfg.RenderOptions())
	if err != nil {
		return err
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(out, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	a.logger.Info().
		Str("path", out).
		Int("items", len(doc.ItemList)).
		Bool("enriched", enrich.AnyEnriched(doc.ItemList)).
		Msg("HTML file generated")

	return nil
}
