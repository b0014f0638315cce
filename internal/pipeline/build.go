package pipeline

import (
	"fmt"
	"time"

	"github.com/LJTian/CompanyNewsHub/internal/collector"
	"github.com/LJTian/CompanyNewsHub/internal/config"
	"github.com/LJTian/CompanyNewsHub/internal/enricher"
	"github.com/LJTian/CompanyNewsHub/internal/processor"
	"github.com/LJTian/CompanyNewsHub/internal/storage"
	"github.com/redis/go-redis/v9"
)

// Options 构建抓取器时共用的参数
type Options struct {
	Timeout time.Duration
	// Delay 来源未单独配置停顿时使用的全局值
	Delay time.Duration
	// BaseURLs 按来源类型覆盖站点地址，主要用于测试
	BaseURLs map[string]string
	Now      func() time.Time
}

// Build 把公司配置转换为可执行的抓取计划
func Build(companies []config.Company, opts Options) ([]Company, error) {
	out := make([]Company, 0, len(companies))
	for _, c := range companies {
		pc := Company{Name: c.Name, Collection: c.Collection}
		for _, sc := range c.Sources {
			f, err := NewFetcher(sc, opts)
			if err != nil {
				return nil, fmt.Errorf("pipeline: company %s: %w", c.Name, err)
			}
			pc.Fetchers = append(pc.Fetchers, f)
		}
		out = append(out, pc)
	}
	return out, nil
}

// NewFetcher 按来源类型创建抓取器
func NewFetcher(sc config.SourceConfig, opts Options) (collector.Fetcher, error) {
	delay := sc.Delay
	if delay == 0 {
		delay = opts.Delay
	}
	httpOpts := collector.HTTPOptions{Timeout: opts.Timeout, Delay: delay}
	filters := collector.Filters{
		Title:      keywordFilter(sc.TitleKeywords, sc.IgnoreCase),
		Body:       keywordFilter(sc.BodyKeywords, sc.IgnoreCase),
		RecentOnly: sc.RecentOnly,
		Now:        opts.Now,
	}
	base := opts.BaseURLs[sc.Type]

	switch sc.Type {
	case config.SourceTechNews:
		return &collector.TechNewsFetcher{
			Keyword: sc.Keyword, Limit: sc.Limit, BaseURL: base, HTTP: httpOpts, Filters: filters,
		}, nil
	case config.SourceYahooNews:
		return &collector.YahooNewsFetcher{
			Keyword: sc.Keyword, Limit: sc.Limit, BaseURL: base, HTTP: httpOpts, Filters: filters,
		}, nil
	case config.SourceYahooStock:
		return &collector.YahooStockFetcher{
			Symbol: sc.Symbol, Limit: sc.Limit, BaseURL: base, HTTP: httpOpts, Filters: filters,
		}, nil
	case config.SourceCNBC:
		return &collector.CNBCFetcher{
			Keywords: sc.Keywords, Limit: sc.Limit, BaseURL: base, HTTP: httpOpts, Filters: filters,
		}, nil
	}
	return nil, fmt.Errorf("unknown source type %q", sc.Type)
}

func keywordFilter(keywords []string, ignoreCase bool) *collector.KeywordFilter {
	if len(keywords) == 0 {
		return nil
	}
	return &collector.KeywordFilter{Keywords: keywords, IgnoreCase: ignoreCase}
}

// FromConfig 按运行配置组装完整的流水线：抓取器、涨跌与向量补充、存储
func FromConfig(cfg *config.Config, companies []config.Company, store storage.DocumentStore, cache *redis.Client) (*Pipeline, error) {
	built, err := Build(companies, Options{Timeout: cfg.HTTPTimeout, Delay: cfg.CrawlDelay})
	if err != nil {
		return nil, err
	}

	tickers := config.Tickers(companies)
	return &Pipeline{
		Companies: built,
		Enricher: &enricher.Enricher{
			Price: &enricher.PriceEnricher{
				Tickers:  tickers,
				Provider: enricher.NewYahooChartProvider("", cfg.HTTPTimeout),
				Cache:    cache,
			},
			Embedder: enricher.NewOpenAIEmbedder(cfg.EmbeddingEndpoint, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.HTTPTimeout),
		},
		Processor: processor.NewSimpleProcessor(),
		Store:     store,
	}, nil
}
