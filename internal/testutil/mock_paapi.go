package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/Sternrassler/kindle-shelf/pkg/paapi"
	"github.com/Sternrassler/kindle-shelf/pkg/signer"
	"github.com/goccy/go-json"
)

// Credentials accepted by MockPAAPI.
const (
	MockAccessKey  = "AKIDMOCK"
	MockSecretKey  = "mock-secret"
	MockPartnerTag = "mock-21"
	MockRegion     = "eu-west-1"
	MockHost       = "webservices.amazon.co.uk"
)

// MockBook is the metadata MockPAAPI returns for a product code.
type MockBook struct {
	Pages      int
	Language   string
	GradeLevel string
	ReadingAge string

	// Status, when non-zero, fails lookups for this code.
	Status int
}

// MockPAAPI is a lookup server that verifies request signatures.
type MockPAAPI struct {
	server   *httptest.Server
	verifier *signer.Signer
	mu       sync.RWMutex
	books    map[string]MockBook

	// Tracking
	RequestCount      int
	SignatureFailures int
	LastRequestHeader http.Header
}

// NewMockPAAPI creates a lookup server knowing books by product code.
func NewMockPAAPI(books map[string]MockBook) *MockPAAPI {
	verifier, err := signer.New(
		signer.Credentials{AccessKey: MockAccessKey, SecretKey: MockSecretKey},
		signer.Scope{Region: MockRegion, Service: paapi.Service},
	)
	if err != nil {
		panic(err)
	}

	mock := &MockPAAPI{verifier: verifier, books: books}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the mock server URL.
func (m *MockPAAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockPAAPI) Close() {
	m.server.Close()
}

// Config returns a client configuration pointed at the mock.
func (m *MockPAAPI) Config() paapi.Config {
	cfg := paapi.DefaultConfig(MockAccessKey, MockSecretKey, MockPartnerTag)
	cfg.BaseURL = m.URL()
	return cfg
}

// GetRequestCount returns the number of lookups received.
func (m *MockPAAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetSignatureFailures returns how many requests failed verification.
func (m *MockPAAPI) GetSignatureFailures() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.SignatureFailures
}

func (m *MockPAAPI) handle(w http.ResponseWriter, r *http.Request) {
	payload, _ := io.ReadAll(r.Body)

	m.mu.Lock()
	m.RequestCount++
	m.LastRequestHeader = r.Header.Clone()
	m.mu.Unlock()

	if r.Method != http.MethodPost || r.URL.Path != paapi.GetItemsPath {
		http.NotFound(w, r)
		return
	}

	if !m.verify(r, payload) {
		m.mu.Lock()
		m.SignatureFailures++
		m.mu.Unlock()
		writeErrors(w, http.StatusUnauthorized, "InvalidSignature", "The request signature does not match")
		return
	}

	var req struct {
		ItemIDs []string `json:"ItemIds"`
	}
	if err := json.Unmarshal(payload, &req); err != nil || len(req.ItemIDs) != 1 {
		writeErrors(w, http.StatusBadRequest, "InvalidParameterValue", "exactly one ItemId is required")
		return
	}
	code := req.ItemIDs[0]

	m.mu.RLock()
	book, ok := m.books[code]
	m.mu.RUnlock()

	if !ok {
		writeErrors(w, http.StatusOK, "InvalidParameterValue", fmt.Sprintf("The ItemId %s is not accessible through the Product Advertising API.", code))
		return
	}
	if book.Status != 0 {
		writeErrors(w, book.Status, "InternalFailure", "mock failure")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(itemBody(code, book))
}

// verify recomputes the signature from the received request.
func (m *MockPAAPI) verify(r *http.Request, payload []byte) bool {
	t, err := time.Parse(signer.AmzDateFormat, r.Header.Get("X-Amz-Date"))
	if err != nil {
		return false
	}

	want := m.verifier.Sign(signer.Input{
		Method: r.Method,
		URI:    r.URL.Path,
		Headers: map[string]string{
			"content-encoding": r.Header.Get("Content-Encoding"),
			"content-type":     r.Header.Get("Content-Type"),
			"host":             r.Host,
			"x-amz-date":       r.Header.Get("X-Amz-Date"),
			"x-amz-target":     r.Header.Get("X-Amz-Target"),
		},
		Payload: payload,
	}, t)

	return r.Header.Get("Authorization") == want.Authorization
}

func writeErrors(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	data, _ := json.Marshal(map[string]any{
		"Errors": []map[string]string{{"Code": code, "Message": message}},
	})
	_, _ = w.Write(data)
}

func itemBody(code string, book MockBook) []byte {
	info := map[string]any{}
	contentInfo := map[string]any{}
	if book.Pages > 0 {
		contentInfo["PagesCount"] = map[string]any{"DisplayValue": book.Pages, "Label": "NumberOfPages"}
	}
	if book.Language != "" {
		contentInfo["Languages"] = map[string]any{
			"DisplayValues": []map[string]string{{"DisplayValue": book.Language, "Type": "Published"}},
		}
	}
	info["ContentInfo"] = contentInfo
	if book.GradeLevel != "" {
		info["Classifications"] = map[string]any{"GradeLevel": map[string]string{"DisplayValue": book.GradeLevel}}
	}
	if book.ReadingAge != "" {
		info["ContentRating"] = map[string]any{"AudienceRating": map[string]string{"DisplayValue": book.ReadingAge}}
	}

	data, _ := json.Marshal(map[string]any{
		"ItemsResult": map[string]any{
			"Items": []map[string]any{{
				"ASIN":          code,
				"DetailPageURL": "https://www.amazon.co.uk/dp/" + code,
				"ItemInfo":      info,
			}},
		},
	})
	return data
}
