package enricher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type stubHistory struct {
	closes []float64
	err    error
	calls  int
}

func (s *stubHistory) Closes(ctx context.Context, symbol string, days int) ([]float64, error) {
	s.calls++
	return s.closes, s.err
}

func TestFormatChange(t *testing.T) {
	cases := []struct {
		last, prev float64
		want       string
	}{
		{105, 100, "+5.00 (+5.00%)"},
		{95, 100, "-5.00 (-5.00%)"},
		{100, 100, "+0.00 (+0.00%)"},
		{283.5, 280, "+3.50 (+1.25%)"},
		{148.8, 150, "-1.20 (-0.80%)"},
	}
	for _, c := range cases {
		got, err := FormatChange(decimal.NewFromFloat(c.last), decimal.NewFromFloat(c.prev))
		if err != nil {
			t.Fatalf("FormatChange(%v, %v): %v", c.last, c.prev, err)
		}
		if got != c.want {
			t.Fatalf("FormatChange(%v, %v) = %q, want %q", c.last, c.prev, got, c.want)
		}
	}

	if _, err := FormatChange(decimal.NewFromInt(1), decimal.Zero); err == nil {
		t.Fatalf("zero previous close should fail")
	}
}

func TestPriceEnricherChange(t *testing.T) {
	ctx := context.Background()
	tickers := map[string]string{"TSMC": "2330.TW"}

	p := &PriceEnricher{Tickers: tickers, Provider: &stubHistory{closes: []float64{990, 100, 105}}}
	if got := p.Change(ctx, "TSMC"); !got.OK || got.Value != "+5.00 (+5.00%)" {
		t.Fatalf("unexpected change: %+v", got)
	}

	p = &PriceEnricher{Tickers: tickers, Provider: &stubHistory{closes: []float64{105}}}
	got := p.Change(ctx, "TSMC")
	if got.OK || got.Value != NoData || !errors.Is(got.Err, ErrNotEnoughHistory) {
		t.Fatalf("expected no data for short history, got %+v", got)
	}

	p = &PriceEnricher{Tickers: tickers, Provider: &stubHistory{err: errors.New("boom")}}
	if got := p.Change(ctx, "TSMC"); got.OK || got.Value != NoData {
		t.Fatalf("expected no data on provider error, got %+v", got)
	}

	stub := &stubHistory{closes: []float64{100, 105}}
	p = &PriceEnricher{Tickers: tickers, Provider: stub}
	got = p.Change(ctx, "Unknown")
	if got.Value != NoData || !errors.Is(got.Err, ErrNoTicker) {
		t.Fatalf("expected no ticker, got %+v", got)
	}
	if stub.calls != 0 {
		t.Fatalf("provider should not be called without a ticker")
	}
}

func TestYahooChartProviderCloses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/2330.TW" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("range") != "2d" || r.URL.Query().Get("interval") != "1d" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"chart":{"result":[{"indicators":{"quote":[{"close":[1040.0,null,1045.5]}]}}],"error":null}`))
	}))
	defer srv.Close()

	p := NewYahooChartProvider(srv.URL, 5*time.Second)
	closes, err := p.Closes(context.Background(), "2330.TW", 2)
	if err != nil {
		t.Fatalf("Closes: %v", err)
	}
	if len(closes) != 2 || closes[0] != 1040 || closes[1] != 1045.5 {
		t.Fatalf("unexpected closes %v", closes)
	}

	if _, err := p.Closes(context.Background(), "9999.TW", 2); err == nil {
		t.Fatalf("expected error on 404")
	}
}

func TestPriceEnricherDefaultTickers(t *testing.T) {
	p := &PriceEnricher{Provider: &stubHistory{closes: []float64{20, 19}}}
	if got := p.Change(context.Background(), "UMC"); !got.OK || got.Value != "-1.00 (-5.00%)" {
		t.Fatalf("unexpected change with built-in tickers: %+v", got)
	}
}

func TestPriceEnricherRedisCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	now := func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) }
	tickers := map[string]string{"TSMC": "2330.TW"}
	const key = "price:2330.TW:20261016"

	// 未命中：调用行情接口并写入缓存
	stub := &stubHistory{closes: []float64{100, 105}}
	p := &PriceEnricher{Tickers: tickers, Provider: stub, Cache: rdb, Now: now}
	if got := p.Change(ctx, "TSMC"); !got.OK || got.Value != "+5.00 (+5.00%)" {
		t.Fatalf("unexpected change on cache miss: %+v", got)
	}
	if stub.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", stub.calls)
	}
	cached, err := mr.Get(key)
	if err != nil || cached != "+5.00 (+5.00%)" {
		t.Fatalf("cache not written: %q %v", cached, err)
	}
	if ttl := mr.TTL(key); ttl != priceCacheTTL {
		t.Fatalf("cache ttl = %s, want %s", ttl, priceCacheTTL)
	}

	// 命中：直接返回缓存值，不再请求接口
	if err := mr.Set(key, "-1.00 (-0.95%)"); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	if got := p.Change(ctx, "TSMC"); !got.OK || got.Value != "-1.00 (-0.95%)" {
		t.Fatalf("expected cached value, got %+v", got)
	}
	if stub.calls != 1 {
		t.Fatalf("provider should not be called on cache hit, calls = %d", stub.calls)
	}

	// Redis 不可用：读写失败只记录日志，结果仍来自接口
	mr.Close()
	p = &PriceEnricher{Tickers: tickers, Provider: &stubHistory{closes: []float64{100, 105}}, Cache: rdb, Now: now}
	if got := p.Change(ctx, "TSMC"); !got.OK || got.Value != "+5.00 (+5.00%)" {
		t.Fatalf("cache failure should not affect the result: %+v", got)
	}
}
