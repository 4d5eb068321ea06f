// Package render turns records into a static, client-sortable HTML table.
//
// Rendering is pure: the same records and options always produce the same
// bytes. All text and attribute values are contextually escaped, so titles
// and URLs from the catalog cannot inject markup.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"github.com/Sternrassler/kindle-shelf/pkg/enrich"
)

const (
	// DefaultTitle is the page heading when none is configured.
	DefaultTitle = "Books"

	// DefaultProductURLBase is prefixed to each product code.
	DefaultProductURLBase = "https://www.amazon.co.uk/dp/"
)

//go:embed templates/table.html.tmpl
var templateFS embed.FS

var tableTemplate = template.Must(template.ParseFS(templateFS, "templates/table.html.tmpl"))

// Options configures a rendered document.
type Options struct {
	Title          string
	ProductURLBase string
}

// DefaultOptions returns the default document options.
func DefaultOptions() Options {
	return Options{
		Title:          DefaultTitle,
		ProductURLBase: DefaultProductURLBase,
	}
}

type row struct {
	ThumbnailURL string
	ProductURL   string
	Title        string
	PageCount    string
	Language     string
	GradeLevel   string
	ReadingAge   string
}

type page struct {
	Title    string
	Enriched bool
	Rows     []row
}

// Render writes the document for records to w. Metadata columns are
// included when at least one record carries metadata. Zero records produce
// a valid document with an empty table body.
func Render(w io.Writer, records []enrich.Record, opts Options) error {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.ProductURLBase == "" {
		opts.ProductURLBase = DefaultProductURLBase
	}

	data := page{
		Title:    opts.Title,
		Enriched: enrich.AnyEnriched(records),
		Rows:     make([]row, len(records)),
	}
	for i, r := range records {
		data.Rows[i] = row{
			ThumbnailURL: r.ThumbnailURL,
			ProductURL:   opts.ProductURLBase + url.PathEscape(r.ProductCode()),
			Title:        r.Title,
		}
		if r.Metadata != nil {
			data.Rows[i].PageCount = r.PageCount
			data.Rows[i].Language = r.Language
			data.Rows[i].GradeLevel = r.GradeLevel
			data.Rows[i].ReadingAge = r.ReadingAge
		}
	}

	// Execute into a buffer so w never receives a partial document.
	var buf bytes.Buffer
	if err := tableTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// RenderString renders the document into a string.
func RenderString(records []enrich.Record, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, records, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}
