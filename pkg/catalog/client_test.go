package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cookies string
		wantErr error
	}{
		{name: "valid cookies", cookies: "session-id=123; ubid-acbuk=456"},
		{name: "missing cookies", cookies: "", wantErr: ErrMissingCookies},
		{name: "malformed cookies", cookies: "=;;", wantErr: ErrInvalidCookies},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(DefaultConfig(tt.cookies))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if client == nil {
				t.Fatal("Client is nil")
			}
		})
	}
}

func TestFetchPage_RequestShape(t *testing.T) {
	var (
		gotBody   map[string]any
		gotCookie string
		gotPath   string
		gotMethod string
		gotCT     string
		gotAccept string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotCT = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		if c, err := r.Cookie("session-id"); err == nil {
			gotCookie = c.Value
		}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"itemList":[{"itemId":"//amazon-book/B1","title":"One","thumbnailUrl":"https://img/1.jpg"}],"lastPage":false,"nextPageToken":"t2"}`))
	}))
	defer server.Close()

	cfg := DefaultConfig("session-id=abc")
	cfg.BaseURL = server.URL
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	token := "t1"
	page, err := client.FetchPage(context.Background(), &token)
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if gotPath != ListPath {
		t.Errorf("path = %s, want %s", gotPath, ListPath)
	}
	if gotCookie != "abc" {
		t.Errorf("session cookie = %q, want %q", gotCookie, "abc")
	}
	if !strings.HasPrefix(gotCT, "application/json") {
		t.Errorf("Content-Type = %q", gotCT)
	}
	if !strings.Contains(gotAccept, "application/json") {
		t.Errorf("Accept = %q", gotAccept)
	}
	if gotBody["nextPageToken"] != "t1" {
		t.Errorf("nextPageToken = %v, want t1", gotBody["nextPageToken"])
	}
	if gotBody["subscriptionPresent"] != true {
		t.Errorf("subscriptionPresent = %v, want true", gotBody["subscriptionPresent"])
	}
	if v, ok := gotBody["searchQuery"]; !ok || v != nil {
		t.Errorf("searchQuery should be an explicit null, got %v (present=%v)", v, ok)
	}

	if len(page.ItemList) != 1 || page.ItemList[0].ProductCode() != "B1" {
		t.Errorf("unexpected items: %+v", page.ItemList)
	}
	if page.LastPage {
		t.Error("LastPage should be false")
	}
	if page.Token() != "t2" {
		t.Errorf("Token() = %q, want t2", page.Token())
	}
}

func TestFetchPage_FirstPageSendsNullToken(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Write([]byte(`{"itemList":[],"lastPage":true}`))
	}))
	defer server.Close()

	cfg := DefaultConfig("session-id=abc")
	cfg.BaseURL = server.URL
	client, _ := New(cfg)

	page, err := client.FetchPage(context.Background(), nil)
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if v, ok := gotBody["nextPageToken"]; !ok || v != nil {
		t.Errorf("nextPageToken should be an explicit null, got %v (present=%v)", v, ok)
	}
	if !page.LastPage {
		t.Error("LastPage should be true")
	}
	if page.NextPageToken != nil {
		t.Error("absent token must decode as nil")
	}
}

func TestFetchPage_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{}`, wantStatus: 401},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, wantStatus: 500},
		{name: "malformed body", status: http.StatusOK, body: `<html>login</html>`, wantStatus: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			cfg := DefaultConfig("session-id=abc")
			cfg.BaseURL = server.URL
			client, _ := New(cfg)

			_, err := client.FetchPage(context.Background(), nil)
			var catErr *Error
			if !errors.As(err, &catErr) {
				t.Fatalf("FetchPage() error = %v, want *catalog.Error", err)
			}
			if catErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", catErr.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestFetchPage_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	cfg := DefaultConfig("session-id=abc")
	cfg.BaseURL = url
	client, _ := New(cfg)

	_, err := client.FetchPage(context.Background(), nil)
	var catErr *Error
	if !errors.As(err, &catErr) {
		t.Fatalf("FetchPage() error = %v, want *catalog.Error", err)
	}
	if catErr.StatusCode != 0 || catErr.Err == nil {
		t.Errorf("network error should carry no status and a cause: %+v", catErr)
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "status only",
			err:  &Error{StatusCode: 403, Message: "403 Forbidden"},
			want: "catalog listing failed (status 403): 403 Forbidden",
		},
		{
			name: "status with cause",
			err:  &Error{StatusCode: 200, Message: "decode listing response", Err: errors.New("bad json")},
			want: "catalog listing failed (status 200): decode listing response: bad json",
		},
		{
			name: "transport",
			err:  &Error{Message: "request failed", Err: errors.New("connection refused")},
			want: "catalog listing failed: request failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
