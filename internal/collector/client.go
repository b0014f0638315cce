package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

const (
	// DefaultUserAgent 固定的桌面浏览器 UA，所有来源共用
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	// DefaultTimeout 所有外部请求统一的超时
	DefaultTimeout = 10 * time.Second
)

var errNoHTML = errors.New("response is not an html document")

// HTTPOptions 各来源共用的抓取参数
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
	// Delay 每次请求完成后的停顿，降低对目标站点的压力
	Delay time.Duration
}

func (o HTTPOptions) withDefaults() HTTPOptions {
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

func newCollector(o HTTPOptions) *colly.Collector {
	o = o.withDefaults()
	c := colly.NewCollector(
		colly.UserAgent(o.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(o.Timeout)
	if o.Delay > 0 {
		if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Delay: o.Delay}); err != nil {
			log.Printf("collector: set crawl delay %s: %v", o.Delay, err)
		}
	}
	return c
}

// fetchPage 访问单个页面并返回整页 DOM；非 2xx、网络错误或非 HTML 响应均返回 error
func fetchPage(ctx context.Context, o HTTPOptions, pageURL string) (*goquery.Selection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if pageURL == "" {
		return nil, errors.New("empty url")
	}

	c := newCollector(o)
	var dom *goquery.Selection
	c.OnHTML("html", func(e *colly.HTMLElement) {
		if dom == nil {
			dom = e.DOM
		}
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("visit %s: %w", pageURL, err)
	}
	if dom == nil {
		return nil, fmt.Errorf("visit %s: %w", pageURL, errNoHTML)
	}
	return dom, nil
}

// resolveURL 把相对链接补全为绝对地址
func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return strings.TrimRight(base, "/") + href
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimRight(v, "/")
}
