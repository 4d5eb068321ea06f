// Package catalog models subscription catalog entries and implements the
// cookie-authenticated listing client that pages through them.
package catalog

import "strings"

// Item is a single catalog entry as delivered by the listing service.
// Items are immutable once fetched and are identified by ItemID.
type Item struct {
	// ItemID is a path-like token whose last segment is the product code,
	// e.g. "//amazon-book/B00HNXBRFE".
	ItemID string `json:"itemId"`

	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// ProductCode returns the last path segment of the item identifier.
func (i Item) ProductCode() string {
	return ProductCode(i.ItemID)
}

// ProductCode extracts the product code from a catalog identifier: everything
// after the final '/'. An identifier without '/' is returned unchanged, and a
// trailing '/' yields an empty code.
func ProductCode(itemID string) string {
	return itemID[strings.LastIndex(itemID, "/")+1:]
}

// Page is one response of the listing service.
type Page struct {
	ItemList      []Item  `json:"itemList"`
	LastPage      bool    `json:"lastPage"`
	NextPageToken *string `json:"nextPageToken"`
}

// Token returns the continuation token, or "" when the server sent none.
func (p *Page) Token() string {
	if p == nil || p.NextPageToken == nil {
		return ""
	}
	return *p.NextPageToken
}
