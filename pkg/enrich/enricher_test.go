package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sternrassler/kindle-shelf/pkg/catalog"
	"github.com/Sternrassler/kindle-shelf/pkg/paapi"
	"github.com/goccy/go-json"
)

func makeItems(n int) []catalog.Item {
	items := make([]catalog.Item, n)
	for i := range items {
		items[i] = catalog.Item{
			ItemID: fmt.Sprintf("//store/CODE%03d", i),
			Title:  fmt.Sprintf("Book %d", i),
		}
	}
	return items
}

// echoLookup returns the product code as the page count.
func echoLookup() LookupFunc {
	return func(ctx context.Context, code string) (*Metadata, error) {
		return &Metadata{PageCount: code, Language: "English"}, nil
	}
}

func TestEnrich_Sequential(t *testing.T) {
	items := makeItems(3)
	records := New(echoLookup(), DefaultConfig()).Enrich(context.Background(), items)

	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	for i, r := range records {
		if r.Title != items[i].Title {
			t.Errorf("Record %d title = %q, want %q", i, r.Title, items[i].Title)
		}
		if r.Metadata == nil || r.PageCount != items[i].ProductCode() {
			t.Errorf("Record %d metadata = %+v", i, r.Metadata)
		}
	}
}

func TestEnrich_FailureIsolation(t *testing.T) {
	items := makeItems(3)
	lookup := LookupFunc(func(ctx context.Context, code string) (*Metadata, error) {
		if code == "CODE001" {
			return nil, errors.New("lookup exploded")
		}
		return &Metadata{PageCount: "100", Language: "English", GradeLevel: "3-5", ReadingAge: "7 - 9 years"}, nil
	})

	records, stats := New(lookup, DefaultConfig()).EnrichWithStats(context.Background(), items)

	if records[1].Metadata == nil || !records[1].IsEmpty() {
		t.Errorf("Failed item should carry empty metadata, got %+v", records[1].Metadata)
	}
	for _, i := range []int{0, 2} {
		if records[i].PageCount != "100" || records[i].ReadingAge != "7 - 9 years" {
			t.Errorf("Sibling %d was affected: %+v", i, records[i].Metadata)
		}
	}
	if stats.OK != 2 || stats.Failed != 1 || stats.Skipped != 0 {
		t.Errorf("Stats = %+v", stats)
	}
}

func TestEnrich_EmptyProductCodeSkipsLookup(t *testing.T) {
	var calls atomic.Int32
	lookup := LookupFunc(func(ctx context.Context, code string) (*Metadata, error) {
		calls.Add(1)
		return &Metadata{PageCount: "1"}, nil
	})

	items := []catalog.Item{{ItemID: "//store/", Title: "Trailing slash"}}
	records, stats := New(lookup, DefaultConfig()).EnrichWithStats(context.Background(), items)

	if calls.Load() != 0 {
		t.Errorf("Expected no lookup, got %d", calls.Load())
	}
	if !records[0].IsEmpty() {
		t.Errorf("Expected empty metadata, got %+v", records[0].Metadata)
	}
	if stats.Skipped != 1 {
		t.Errorf("Stats = %+v", stats)
	}
}

func TestEnrich_WorkerPoolPreservesOrder(t *testing.T) {
	items := makeItems(50)
	lookup := LookupFunc(func(ctx context.Context, code string) (*Metadata, error) {
		// Later items finish first.
		var n int
		fmt.Sscanf(code, "CODE%d", &n)
		time.Sleep(time.Duration(50-n) * 100 * time.Microsecond)
		return &Metadata{PageCount: code}, nil
	})

	records := New(lookup, Config{Workers: 8}).Enrich(context.Background(), items)

	for i, r := range records {
		if r.ItemID != items[i].ItemID || r.PageCount != items[i].ProductCode() {
			t.Fatalf("Record %d out of order: %+v", i, r)
		}
	}
}

func TestEnrich_WorkerPoolBoundsConcurrency(t *testing.T) {
	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	lookup := LookupFunc(func(ctx context.Context, code string) (*Metadata, error) {
		mu.Lock()
		active++
		if active > maxSeen {
			maxSeen = active
		}
		mu.Unlock()

		time.Sleep(2 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
		return &Metadata{}, nil
	})

	New(lookup, Config{Workers: 3}).Enrich(context.Background(), makeItems(20))

	if maxSeen > 3 {
		t.Errorf("Expected at most 3 concurrent lookups, saw %d", maxSeen)
	}
}

func TestEnrich_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	lookup := LookupFunc(func(ctx context.Context, code string) (*Metadata, error) {
		if calls.Add(1) == 2 {
			cancel()
		}
		return &Metadata{PageCount: "9"}, nil
	})

	items := makeItems(10)
	records, stats := New(lookup, DefaultConfig()).EnrichWithStats(ctx, items)

	if len(records) != len(items) {
		t.Fatalf("Expected %d records, got %d", len(items), len(records))
	}
	if int(calls.Load()) >= len(items) {
		t.Errorf("Expected lookups to stop after cancel, got %d", calls.Load())
	}
	for i, r := range records {
		if r.Metadata == nil {
			t.Errorf("Record %d has nil metadata", i)
		}
		if r.Title != items[i].Title {
			t.Errorf("Record %d title = %q", i, r.Title)
		}
	}
	if stats.OK+stats.Failed+stats.Skipped != len(items) {
		t.Errorf("Stats do not add up: %+v", stats)
	}
}

func TestEnrich_NoItems(t *testing.T) {
	records := New(echoLookup(), Config{Workers: 4}).Enrich(context.Background(), nil)
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestEnrich_NilMetadataBecomesEmpty(t *testing.T) {
	lookup := LookupFunc(func(ctx context.Context, code string) (*Metadata, error) {
		return nil, nil
	})
	records := New(lookup, DefaultConfig()).Enrich(context.Background(), makeItems(1))
	if records[0].Metadata == nil {
		t.Error("Expected non-nil metadata")
	}
}

type fakeGetter struct {
	item *paapi.Item
	err  error
}

func (f fakeGetter) GetItem(ctx context.Context, code string) (*paapi.Item, error) {
	return f.item, f.err
}

func TestFromPAAPI(t *testing.T) {
	item := &paapi.Item{ItemInfo: &paapi.ItemInfo{
		ContentInfo: &paapi.ContentInfo{
			PagesCount: &paapi.IntValue{DisplayValue: 212},
			Languages:  &paapi.Languages{DisplayValues: []paapi.LanguageValue{{DisplayValue: "English", Type: "Published"}}},
		},
		Classifications: &paapi.Classifications{GradeLevel: &paapi.StringValue{DisplayValue: "1-2"}},
		ContentRating:   &paapi.ContentRating{AudienceRating: &paapi.StringValue{DisplayValue: "5 - 7 years"}},
	}}

	meta, err := FromPAAPI(fakeGetter{item: item}).GetItem(context.Background(), "B0")
	if err != nil {
		t.Fatal(err)
	}
	want := Metadata{PageCount: "212", Language: "English", GradeLevel: "1-2", ReadingAge: "5 - 7 years"}
	if *meta != want {
		t.Errorf("Metadata = %+v, want %+v", *meta, want)
	}

	boom := errors.New("boom")
	if _, err := FromPAAPI(fakeGetter{err: boom}).GetItem(context.Background(), "B0"); !errors.Is(err, boom) {
		t.Errorf("Expected error passthrough, got %v", err)
	}
}

func TestRecord_JSON(t *testing.T) {
	plain := Record{Item: catalog.Item{ItemID: "//store/A1", Title: "Plain"}}
	data, err := json.Marshal(plain)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != `{"itemId":"//store/A1","title":"Plain","thumbnailUrl":""}` {
		t.Errorf("Plain record JSON = %s", got)
	}

	var decoded Record
	enriched := `{"itemId":"//store/A2","title":"Rich","thumbnailUrl":"","pageCount":"10","language":"","gradeLevel":"","readingAge":""}`
	if err := json.Unmarshal([]byte(enriched), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Metadata == nil || decoded.PageCount != "10" || decoded.Title != "Rich" {
		t.Errorf("Decoded = %+v / %+v", decoded.Item, decoded.Metadata)
	}
}

func TestRecordsHelpers(t *testing.T) {
	items := makeItems(2)
	records := Records(items)
	if AnyEnriched(records) {
		t.Error("Plain records reported as enriched")
	}
	if got := Items(records); len(got) != 2 || got[1] != items[1] {
		t.Errorf("Items() = %+v", got)
	}
	records[1].Metadata = &Metadata{}
	if !AnyEnriched(records) {
		t.Error("Expected enriched")
	}
}
