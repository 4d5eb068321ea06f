package testutil

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Sternrassler/kindle-shelf/pkg/catalog"
	"github.com/Sternrassler/kindle-shelf/pkg/paapi"
)

func TestMockCatalog_Paging(t *testing.T) {
	mock := NewMockCatalog(MakeItems("A", 2), MakeItems("B", 1))
	defer mock.Close()

	cfg := catalog.DefaultConfig("session-id=1")
	cfg.BaseURL = mock.URL()
	client, err := catalog.New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	first, err := client.FetchPage(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.ItemList) != 2 || first.LastPage || first.Token() != "page-2" {
		t.Fatalf("First page = %+v", first)
	}

	second, err := client.FetchPage(context.Background(), first.NextPageToken)
	if err != nil {
		t.Fatal(err)
	}
	if !second.LastPage || second.Token() != "" {
		t.Errorf("Second page = %+v", second)
	}

	tokens := mock.GetTokens()
	if len(tokens) != 2 || tokens[0] != nil || *tokens[1] != "page-2" {
		t.Errorf("Tokens = %v", tokens)
	}
}

func TestMockCatalog_Fail(t *testing.T) {
	mock := NewMockCatalog(MakeItems("A", 1))
	defer mock.Close()
	mock.FailPage = 1
	mock.FailStatus = http.StatusForbidden

	cfg := catalog.DefaultConfig("session-id=1")
	cfg.BaseURL = mock.URL()
	client, _ := catalog.New(cfg)

	var catErr *catalog.Error
	if _, err := client.FetchPage(context.Background(), nil); !errors.As(err, &catErr) || catErr.StatusCode != http.StatusForbidden {
		t.Errorf("FetchPage() error = %v", err)
	}
}

func TestMockPAAPI_SignedLookup(t *testing.T) {
	mock := NewMockPAAPI(map[string]MockBook{
		"B001": {Pages: 96, Language: "English", ReadingAge: "6 - 8 years"},
	})
	defer mock.Close()

	client, err := paapi.New(mock.Config())
	if err != nil {
		t.Fatal(err)
	}

	item, err := client.GetItem(context.Background(), "B001")
	if err != nil {
		t.Fatalf("GetItem() error: %v", err)
	}
	if item.PageCount() != "96" || item.Language() != "English" || item.ReadingAge() != "6 - 8 years" || item.GradeLevel() != "" {
		t.Errorf("Item = %+v", item)
	}
	if mock.GetSignatureFailures() != 0 {
		t.Errorf("Signature failures = %d", mock.GetSignatureFailures())
	}
}

func TestMockPAAPI_RejectsWrongSecret(t *testing.T) {
	mock := NewMockPAAPI(map[string]MockBook{"B001": {Pages: 1}})
	defer mock.Close()

	cfg := mock.Config()
	cfg.SecretKey = "wrong"
	client, err := paapi.New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	var apiErr *paapi.APIError
	if _, err := client.GetItem(context.Background(), "B001"); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("GetItem() error = %v", err)
	}
	if mock.GetSignatureFailures() != 1 {
		t.Errorf("Signature failures = %d, want 1", mock.GetSignatureFailures())
	}
}

func TestMockPAAPI_UnknownAndFailing(t *testing.T) {
	mock := NewMockPAAPI(map[string]MockBook{"B500": {Status: http.StatusInternalServerError}})
	defer mock.Close()

	client, _ := paapi.New(mock.Config())

	var apiErr *paapi.APIError
	if _, err := client.GetItem(context.Background(), "NOPE"); !errors.As(err, &apiErr) || apiErr.ErrorClass != paapi.ErrorClassClient {
		t.Errorf("unknown item error = %v", err)
	}
	if _, err := client.GetItem(context.Background(), "B500"); !errors.As(err, &apiErr) || apiErr.ErrorClass != paapi.ErrorClassServer {
		t.Errorf("failing item error = %v", err)
	}
}
