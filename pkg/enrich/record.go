package enrich

import "github.com/Sternrassler/kindle-shelf/pkg/catalog"

// Metadata holds the informational fields of one title. Every field is
// empty when unknown or when the lookup failed.
type Metadata struct {
	PageCount  string `json:"pageCount"`
	Language   string `json:"language"`
	GradeLevel string `json:"gradeLevel"`
	ReadingAge string `json:"readingAge"`
}

// IsEmpty reports whether no field is known.
func (m *Metadata) IsEmpty() bool {
	return m == nil || (m.PageCount == "" && m.Language == "" && m.GradeLevel == "" && m.ReadingAge == "")
}

// Record is a catalog item merged with its metadata. Metadata is nil when
// enrichment was not run. Both are flattened into one JSON object.
type Record struct {
	catalog.Item
	*Metadata
}

// Records wraps items without metadata, preserving order.
func Records(items []catalog.Item) []Record {
	records := make([]Record, len(items))
	for i, item := range items {
		records[i] = Record{Item: item}
	}
	return records
}

// Items returns the catalog items of records, preserving order.
func Items(records []Record) []catalog.Item {
	items := make([]catalog.Item, len(records))
	for i, r := range records {
		items[i] = r.Item
	}
	return items
}

// AnyEnriched reports whether at least one record carries metadata.
func AnyEnriched(records []Record) bool {
	for _, r := range records {
		if r.Metadata != nil {
			return true
		}
	}
	return false
}
