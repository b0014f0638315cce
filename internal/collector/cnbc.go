package collector

import (
	"context"
	"log"
	"net/url"
	"strings"
)

const cnbcBaseURL = "https://www.cnbc.com"

// CNBCFetcher 依次抓取 CNBC 搜索页与科技/半导体频道页，标题需命中关键字
type CNBCFetcher struct {
	Keywords []string
	Limit    int
	BaseURL  string
	HTTP     HTTPOptions
	Filters  Filters
}

func (c *CNBCFetcher) Name() string {
	return "cnbc"
}

func (c *CNBCFetcher) listURLs(base string) []string {
	terms := make([]string, 0, len(c.Keywords))
	for _, k := range c.Keywords {
		terms = append(terms, url.QueryEscape(k))
	}
	return []string{
		base + "/search/?query=" + strings.Join(terms, "+"),
		base + "/technology/",
		base + "/semiconductors/",
	}
}

func (c *CNBCFetcher) Fetch(ctx context.Context) ([]Article, error) {
	log.Printf("fetch CNBC (keywords: %s)...", strings.Join(c.Keywords, ", "))
	base := orDefault(c.BaseURL, cnbcBaseURL)

	results := make([]Article, 0, c.Limit)
	seenTitles := make(map[string]struct{})
	seenURLs := make(map[string]struct{})

	for _, listURL := range c.listURLs(base) {
		if len(results) >= c.Limit {
			break
		}
		page, err := fetchPage(ctx, c.HTTP, listURL)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			log.Printf("cnbc: list %s failed: %v", listURL, err)
			continue
		}

		for _, link := range anchorLinks(page, base, "article a, h2 a, h3 a") {
			if len(results) >= c.Limit {
				break
			}
			if err := ctx.Err(); err != nil {
				return results, err
			}
			if link.Title == "" || strings.Contains(link.URL, "/video/") {
				continue
			}
			if _, ok := seenTitles[link.Title]; ok {
				continue
			}
			if _, ok := seenURLs[link.URL]; ok {
				continue
			}
			if !c.Filters.titleOK(link.Title) {
				continue
			}
			seenTitles[link.Title] = struct{}{}
			seenURLs[link.URL] = struct{}{}

			content, articlePage := FetchContent(ctx, c.HTTP, link.URL, cnbcRules)
			if content.Status == ContentFailed {
				log.Printf("cnbc: fetch %s: %v", link.URL, content.Err)
			}
			published, ok := c.Filters.pageOK(articlePage, content)
			if !ok {
				continue
			}
			results = append(results, Article{
				Title:       link.Title,
				URL:         link.URL,
				Source:      c.Name(),
				Content:     content,
				PublishedAt: published,
			})
		}
	}

	if len(results) == 0 {
		log.Printf("cnbc: got 0 items")
	}
	return results, nil
}
