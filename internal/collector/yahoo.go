package collector

import (
	"context"
	"log"
	"net/url"
)

const (
	yahooNewsBaseURL  = "https://tw.news.yahoo.com"
	yahooStockBaseURL = "https://tw.stock.yahoo.com"
)

// YahooNewsFetcher 抓取 Yahoo 奇摩新闻搜索结果（按时间排序）
type YahooNewsFetcher struct {
	Keyword string
	Limit   int
	BaseURL string
	HTTP    HTTPOptions
	Filters Filters
}

func (y *YahooNewsFetcher) Name() string {
	return "yahoo_news"
}

func (y *YahooNewsFetcher) Fetch(ctx context.Context) ([]Article, error) {
	log.Printf("fetch Yahoo News (%s)...", y.Keyword)
	base := orDefault(y.BaseURL, yahooNewsBaseURL)
	searchURL := base + "/search?" + url.Values{"p": {y.Keyword}, "sort": {"time"}}.Encode()

	return collectYahoo(ctx, yahooListing{
		name:      y.Name(),
		listURL:   searchURL,
		base:      base,
		selectors: []string{`li[data-testid="search-result"] a.js-content-viewer`, "h3 a"},
		limit:     y.Limit,
		http:      y.HTTP,
		filters:   y.Filters,
	})
}

// YahooStockFetcher 抓取 Yahoo 股市个股新闻页；该页汇总多只股票的新闻，
// 通常需要配合标题与正文的关键字过滤
type YahooStockFetcher struct {
	Symbol  string
	Limit   int
	BaseURL string
	HTTP    HTTPOptions
	Filters Filters
}

func (y *YahooStockFetcher) Name() string {
	return "yahoo_stock"
}

func (y *YahooStockFetcher) Fetch(ctx context.Context) ([]Article, error) {
	log.Printf("fetch Yahoo Stock news (%s)...", y.Symbol)
	base := orDefault(y.BaseURL, yahooStockBaseURL)
	listURL := base + "/quote/" + url.PathEscape(y.Symbol) + "/news"

	return collectYahoo(ctx, yahooListing{
		name:      y.Name(),
		listURL:   listURL,
		base:      base,
		selectors: []string{"li.js-stream-content a", "h3 a"},
		limit:     y.Limit,
		http:      y.HTTP,
		filters:   y.Filters,
	})
}

type yahooListing struct {
	name      string
	listURL   string
	base      string
	selectors []string
	limit     int
	http      HTTPOptions
	filters   Filters
}

// collectYahoo 两种 Yahoo 列表页共用：按标题去重，limit 计的是最终保留的文章数
func collectYahoo(ctx context.Context, l yahooListing) ([]Article, error) {
	page, err := fetchPage(ctx, l.http, l.listURL)
	if err != nil {
		log.Printf("%s: list failed: %v", l.name, err)
		return nil, nil
	}

	links := anchorLinks(page, l.base, l.selectors...)
	results := make([]Article, 0, l.limit)
	seenTitles := make(map[string]struct{})

	for _, link := range links {
		if len(results) >= l.limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if link.Title == "" {
			continue
		}
		if _, ok := seenTitles[link.Title]; ok {
			continue
		}
		if !l.filters.titleOK(link.Title) {
			continue
		}
		seenTitles[link.Title] = struct{}{}

		content, articlePage := FetchContent(ctx, l.http, link.URL, yahooRules)
		if content.Status == ContentFailed {
			log.Printf("%s: fetch %s: %v", l.name, link.URL, content.Err)
		}
		published, ok := l.filters.pageOK(articlePage, content)
		if !ok {
			continue
		}
		results = append(results, Article{
			Title:       link.Title,
			URL:         link.URL,
			Source:      l.name,
			Content:     content,
			PublishedAt: published,
		})
	}

	if len(results) == 0 {
		log.Printf("%s: got 0 items", l.name)
	}
	return results, nil
}
