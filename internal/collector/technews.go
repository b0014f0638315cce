package collector

import (
	"context"
	"log"
	"net/url"
	"strings"

	"github.com/gocolly/colly/v2"
)

const techNewsBaseURL = "https://technews.tw"

// 站内非文章页面
var techNewsExcluded = []string{"/tag/", "/page/", "/author/", "/videos/", "/about/", "/tn-rss/"}

// TechNewsFetcher 通过科技新报站内搜索抓取文章
type TechNewsFetcher struct {
	Keyword string
	Limit   int
	// BaseURL 为空时使用 https://technews.tw
	BaseURL string
	HTTP    HTTPOptions
	Filters Filters
}

func (t *TechNewsFetcher) Name() string {
	return "technews"
}

func (t *TechNewsFetcher) Fetch(ctx context.Context) ([]Article, error) {
	log.Printf("fetch TechNews (%s)...", t.Keyword)

	links, err := t.ListLinks(ctx)
	if err != nil {
		log.Printf("technews: list %q failed: %v", t.Keyword, err)
		return nil, nil
	}

	results := make([]Article, 0, len(links))
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		page, err := fetchPage(ctx, t.HTTP, link.URL)
		if err != nil {
			log.Printf("technews: fetch %s: %v", link.URL, err)
			continue
		}
		title := strings.TrimSpace(page.Find("h1.entry-title").First().Text())
		if title == "" {
			log.Printf("technews: no title on %s, skip", link.URL)
			continue
		}
		if !t.Filters.titleOK(title) {
			continue
		}

		content := ExtractContent(page, techNewsRules)
		published, ok := t.Filters.pageOK(page, content)
		if !ok {
			continue
		}
		results = append(results, Article{
			Title:       title,
			URL:         link.URL,
			Source:      t.Name(),
			Content:     content,
			PublishedAt: published,
		})
	}

	if len(results) == 0 {
		log.Printf("technews: %q got 0 items", t.Keyword)
	}
	return results, nil
}

// ListLinks 抓取搜索结果页，返回去重并截断后的站内文章链接
func (t *TechNewsFetcher) ListLinks(ctx context.Context) ([]ArticleLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base := orDefault(t.BaseURL, techNewsBaseURL)
	searchURL := base + "/google-search/?googlekeyword=" + url.QueryEscape(t.Keyword)
	prefix := base + "/"

	set := newLinkSet()
	c := newCollector(t.HTTP)
	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		href := e.Request.AbsoluteURL(e.Attr("href"))
		if !strings.HasPrefix(href, prefix) || containsAny(href, techNewsExcluded) {
			return
		}
		set.add(href, strings.TrimSpace(e.Text))
	})

	if err := c.Visit(searchURL); err != nil {
		return nil, err
	}
	return set.first(t.Limit), nil
}
