// Package testutil provides mock servers for the listing and lookup services.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/Sternrassler/kindle-shelf/pkg/catalog"
	"github.com/goccy/go-json"
)

// CatalogRequest is a listing request as received by MockCatalog.
type CatalogRequest struct {
	ContentTypeFilterList  []string `json:"contentTypeFilterList"`
	DeviceFamilyFilterList []string `json:"deviceFamilyFilterList"`
	SubscriptionPresent    bool     `json:"subscriptionPresent"`
	NextPageToken          *string  `json:"nextPageToken"`
}

// MockCatalog serves a fixed sequence of listing pages. Page n (1-based)
// is served for the token "page-n"; the first page for a null token.
type MockCatalog struct {
	server *httptest.Server
	mu     sync.RWMutex
	pages  [][]catalog.Item

	// FailPage answers page FailPage with FailStatus (0 disables).
	FailPage   int
	FailStatus int

	// OmitLastPage ends the listing by dropping the token instead of
	// setting lastPage on the final page.
	OmitLastPage bool

	// Tracking
	RequestCount int
	Tokens       []*string
	LastCookies  []*http.Cookie
}

// NewMockCatalog creates a mock listing server serving pages in order.
func NewMockCatalog(pages ...[]catalog.Item) *MockCatalog {
	mock := &MockCatalog{pages: pages}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the mock server URL.
func (m *MockCatalog) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCatalog) Close() {
	m.server.Close()
}

// GetRequestCount returns the number of listing requests received.
func (m *MockCatalog) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetTokens returns the continuation tokens received, nil for the first call.
func (m *MockCatalog) GetTokens() []*string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*string(nil), m.Tokens...)
}

func (m *MockCatalog) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != catalog.ListPath {
		http.NotFound(w, r)
		return
	}

	body, _ := io.ReadAll(r.Body)
	var req CatalogRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.RequestCount++
	m.Tokens = append(m.Tokens, req.NextPageToken)
	m.LastCookies = r.Cookies()
	failPage, failStatus := m.FailPage, m.FailStatus
	m.mu.Unlock()

	pageNum := 1
	if req.NextPageToken != nil {
		if _, err := fmt.Sscanf(*req.NextPageToken, "page-%d", &pageNum); err != nil || pageNum < 2 || pageNum > len(m.pages) {
			http.Error(w, "unknown token", http.StatusBadRequest)
			return
		}
	}

	if failPage == pageNum {
		w.WriteHeader(failStatus)
		_, _ = w.Write([]byte(`{"error":"mock failure"}`))
		return
	}

	page := catalog.Page{ItemList: []catalog.Item{}}
	if pageNum <= len(m.pages) && m.pages[pageNum-1] != nil {
		page.ItemList = m.pages[pageNum-1]
	}
	if pageNum < len(m.pages) {
		next := fmt.Sprintf("page-%d", pageNum+1)
		page.NextPageToken = &next
	} else if !m.OmitLastPage {
		page.LastPage = true
	}

	data, _ := json.Marshal(page)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// MakeItems builds n items with identifiers "//amazon-book/{prefix}{i}".
func MakeItems(prefix string, n int) []catalog.Item {
	items := make([]catalog.Item, n)
	for i := range items {
		code := fmt.Sprintf("%s%03d", prefix, i)
		items[i] = catalog.Item{
			ItemID:       "//amazon-book/" + code,
			Title:        "Title " + code,
			ThumbnailURL: "https://images.example/" + code + ".jpg",
		}
	}
	return items
}
