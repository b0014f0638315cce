package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/LJTian/CompanyNewsHub/internal/collector"
	"github.com/LJTian/CompanyNewsHub/internal/config"
	"github.com/LJTian/CompanyNewsHub/internal/enricher"
	"github.com/LJTian/CompanyNewsHub/internal/processor"
	"github.com/LJTian/CompanyNewsHub/internal/storage"
)

type stubFetcher struct {
	name  string
	items []collector.Article
	err   error
}

func (s *stubFetcher) Name() string { return s.name }

func (s *stubFetcher) Fetch(ctx context.Context) ([]collector.Article, error) {
	return s.items, s.err
}

func article(title, source string) collector.Article {
	return collector.Article{
		Title:   title,
		URL:     "https://example.com/" + title,
		Source:  source,
		Content: collector.Content{Text: "body of " + title, Status: collector.ContentOK},
	}
}

type failingStore struct{ storage.DocumentStore }

func (failingStore) SetDocument(ctx context.Context, collection, docID string, fields map[string]any) error {
	return errors.New("disk full")
}

var fixedNow = func() time.Time {
	return time.Date(2026, 10, 16, 9, 0, 0, 0, time.FixedZone("CST", 8*3600))
}

func TestRunMergesSourcesInOrder(t *testing.T) {
	store := storage.NewMemoryStore()
	p := &Pipeline{
		Companies: []Company{{
			Name:       "TSMC",
			Collection: "NEWS",
			Fetchers: []collector.Fetcher{
				&stubFetcher{name: "technews", items: []collector.Article{article("a", "technews"), article("b", "technews")}},
				&stubFetcher{name: "yahoo_news", items: []collector.Article{article("c", "yahoo_news")}},
				&stubFetcher{name: "cnbc"},
			},
		}},
		Enricher:  &enricher.Enricher{},
		Processor: processor.NewSimpleProcessor(),
		Store:     store,
		Now:       fixedNow,
	}

	reports, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(reports) != 1 || !reports[0].Written || reports[0].Fetched != 3 {
		t.Fatalf("unexpected reports %+v", reports)
	}

	doc, err := store.GetDocument(context.Background(), "NEWS", "20261016")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if len(doc) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(doc))
	}
	for i, want := range []string{"a", "b", "c"} {
		entry := doc[processor.NewsKey(i)].(map[string]any)
		if entry["title"] != want {
			t.Fatalf("%s title = %v, want %s", processor.NewsKey(i), entry["title"], want)
		}
		if entry["price_change"] != processor.NoData {
			t.Fatalf("price_change without a provider should be %q, got %v", processor.NoData, entry["price_change"])
		}
	}
}

func TestRunSkipsEmptyCompanyAndSurvivesFetchErrors(t *testing.T) {
	store := storage.NewMemoryStore()
	p := &Pipeline{
		Companies: []Company{
			{Name: "Foxconn", Collection: "NEWS_Foxxcon", Fetchers: []collector.Fetcher{
				&stubFetcher{name: "yahoo_news", err: errors.New("boom")},
			}},
			{Name: "UMC", Collection: "NEWS_UMC", Fetchers: []collector.Fetcher{
				&stubFetcher{name: "yahoo_stock", err: errors.New("boom")},
				&stubFetcher{name: "technews", items: []collector.Article{article("u", "technews")}},
			}},
		},
		Store: store,
		Now:   fixedNow,
	}

	reports, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("fetch errors should not fail the run: %v", err)
	}
	if reports[0].Written {
		t.Fatalf("empty company should not be written")
	}
	if _, err := store.GetDocument(context.Background(), "NEWS_Foxxcon", "20261016"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected no document for empty company, got %v", err)
	}
	if !reports[1].Written {
		t.Fatalf("UMC should be written: %+v", reports[1])
	}
}

func TestRunReportsStoreErrorAndContinues(t *testing.T) {
	p := &Pipeline{
		Companies: []Company{
			{Name: "TSMC", Collection: "NEWS", Fetchers: []collector.Fetcher{
				&stubFetcher{name: "technews", items: []collector.Article{article("a", "technews")}},
			}},
			{Name: "UMC", Collection: "NEWS_UMC", Fetchers: []collector.Fetcher{
				&stubFetcher{name: "technews", items: []collector.Article{article("b", "technews")}},
			}},
		},
		Store: failingStore{},
		Now:   fixedNow,
	}

	reports, err := p.Run(context.Background())
	if err == nil {
		t.Fatalf("expected combined store error")
	}
	if len(reports) != 2 {
		t.Fatalf("second company should still run, got %d reports", len(reports))
	}
}

func TestBuildDefaultCompanies(t *testing.T) {
	companies, err := Build(config.DefaultCompanies(), Options{Timeout: time.Second})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(companies) != 3 {
		t.Fatalf("expected 3 companies, got %d", len(companies))
	}

	var names []string
	for _, f := range companies[2].Fetchers {
		names = append(names, f.Name())
	}
	if len(names) != 3 || names[0] != "yahoo_stock" || names[1] != "technews" || names[2] != "cnbc" {
		t.Fatalf("unexpected UMC source order %v", names)
	}

	stock := companies[2].Fetchers[0].(*collector.YahooStockFetcher)
	if stock.Filters.Body == nil || stock.Filters.Title == nil || stock.Filters.Body.IgnoreCase {
		t.Fatalf("yahoo stock should carry case-sensitive title and body gates: %+v", stock.Filters)
	}
	tn := companies[0].Fetchers[0].(*collector.TechNewsFetcher)
	if tn.HTTP.Delay != time.Second || tn.HTTP.Timeout != time.Second {
		t.Fatalf("unexpected technews http options %+v", tn.HTTP)
	}
}

func TestNewFetcherUnknownType(t *testing.T) {
	if _, err := NewFetcher(config.SourceConfig{Type: "rss"}, Options{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFromConfigWiresServices(t *testing.T) {
	cfg := &config.Config{HTTPTimeout: time.Second, EmbeddingAPIKey: "k"}
	p, err := FromConfig(cfg, config.DefaultCompanies(), storage.NewMemoryStore(), nil)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if p.Enricher == nil || p.Enricher.Price == nil || p.Enricher.Embedder == nil {
		t.Fatalf("enricher services not wired: %+v", p.Enricher)
	}
	if p.Enricher.Price.Tickers["TSMC"] != "2330.TW" {
		t.Fatalf("unexpected tickers %v", p.Enricher.Price.Tickers)
	}
}
