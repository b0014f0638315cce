package enricher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// NoData 取不到行情时写入的占位
const NoData = "no data"

const (
	yahooChartBaseURL     = "https://query1.finance.yahoo.com"
	priceMaxResponseBytes = 256 * 1024
	priceCacheTTL         = 6 * time.Hour
)

var (
	ErrNoTicker          = errors.New("enricher: no ticker for company")
	ErrNotEnoughHistory  = errors.New("enricher: fewer than two closing prices")
	errZeroPreviousClose = errors.New("enricher: previous close is zero")
)

// DefaultTickers 公司名到行情代码的固定映射
var DefaultTickers = map[string]string{
	"TSMC":    "2330.TW",
	"Foxconn": "2317.TW",
	"UMC":     "2303.TW",
}

// PriceChange 当日涨跌；OK 为 false 时 Value 为 NoData，Err 说明原因
type PriceChange struct {
	Value string
	OK    bool
	Err   error
}

func noData(err error) PriceChange {
	return PriceChange{Value: NoData, Err: err}
}

// HistoryProvider 提供最近若干个交易日的收盘价（按时间升序）
type HistoryProvider interface {
	Closes(ctx context.Context, symbol string, days int) ([]float64, error)
}

// YahooChartProvider 通过 Yahoo Finance chart 接口获取日线收盘价
type YahooChartProvider struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

func NewYahooChartProvider(baseURL string, timeout time.Duration) *YahooChartProvider {
	if baseURL == "" {
		baseURL = yahooChartBaseURL
	}
	return &YahooChartProvider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Client:    &http.Client{Timeout: timeout},
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (p *YahooChartProvider) Closes(ctx context.Context, symbol string, days int) ([]float64, error) {
	params := url.Values{"range": {fmt.Sprintf("%dd", days)}, "interval": {"1d"}}
	u := p.BaseURL + "/v8/finance/chart/" + url.PathEscape(symbol) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.UserAgent)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price: fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price: %s unexpected status %d", symbol, resp.StatusCode)
	}

	var payload chartResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, priceMaxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("price: decode %s: %w", symbol, err)
	}
	if e := payload.Chart.Error; e != nil {
		return nil, fmt.Errorf("price: %s: %s %s", symbol, e.Code, e.Description)
	}

	var closes []float64
	for _, r := range payload.Chart.Result {
		for _, q := range r.Indicators.Quote {
			// 停牌或盘中可能出现 null
			for _, c := range q.Close {
				if c != nil {
					closes = append(closes, *c)
				}
			}
		}
	}
	return closes, nil
}

// PriceEnricher 计算公司当日涨跌字符串，同一公司同一天的结果可缓存在 Redis
type PriceEnricher struct {
	Tickers  map[string]string
	Provider HistoryProvider
	Cache    *redis.Client
	Now      func() time.Time
}

func (p *PriceEnricher) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Change 返回公司当日涨跌；任何失败都降级为 NoData
func (p *PriceEnricher) Change(ctx context.Context, company string) PriceChange {
	tickers := p.Tickers
	if tickers == nil {
		tickers = DefaultTickers
	}
	symbol, ok := tickers[company]
	if !ok || symbol == "" {
		return noData(fmt.Errorf("%w: %s", ErrNoTicker, company))
	}

	cacheKey := fmt.Sprintf("price:%s:%s", symbol, p.now().Format("20060102"))
	if p.Cache != nil {
		if v, err := p.Cache.Get(ctx, cacheKey).Result(); err == nil && v != "" {
			return PriceChange{Value: v, OK: true}
		}
	}

	if p.Provider == nil {
		return noData(errors.New("enricher: no price provider"))
	}
	closes, err := p.Provider.Closes(ctx, symbol, 2)
	if err != nil {
		log.Printf("price: %s (%s): %v", company, symbol, err)
		return noData(err)
	}
	if len(closes) < 2 {
		return noData(ErrNotEnoughHistory)
	}

	last := decimal.NewFromFloat(closes[len(closes)-1])
	prev := decimal.NewFromFloat(closes[len(closes)-2])
	value, err := FormatChange(last, prev)
	if err != nil {
		return noData(err)
	}

	if p.Cache != nil {
		if err := p.Cache.Set(ctx, cacheKey, value, priceCacheTTL).Err(); err != nil {
			log.Printf("price: cache %s: %v", cacheKey, err)
		}
	}
	return PriceChange{Value: value, OK: true}
}

// FormatChange 输出带符号、两位小数的涨跌额与涨跌幅，例如 "+3.50 (+1.25%)"
func FormatChange(last, prev decimal.Decimal) (string, error) {
	if prev.IsZero() {
		return "", errZeroPreviousClose
	}
	diff := last.Sub(prev)
	pct := diff.Div(prev).Mul(decimal.NewFromInt(100))
	return signed(diff) + " (" + signed(pct) + "%)", nil
}

func signed(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	if d.Sign() < 0 && s != "0.00" {
		return "-" + s
	}
	return "+" + s
}
