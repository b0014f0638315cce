package collector

import (
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// KeywordFilter 至少命中一个关键字才保留
type KeywordFilter struct {
	Keywords   []string
	IgnoreCase bool
}

// Match nil 过滤器或空关键字列表视为全部通过
func (f *KeywordFilter) Match(text string) bool {
	if f == nil || len(f.Keywords) == 0 {
		return true
	}
	if f.IgnoreCase {
		text = strings.ToLower(text)
	}
	for _, k := range f.Keywords {
		if k == "" {
			continue
		}
		if f.IgnoreCase {
			k = strings.ToLower(k)
		}
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// DateWindow 今天与昨天两个日期（调用时按本地时钟计算）
type DateWindow struct {
	Today     string
	Yesterday string
	loc       *time.Location
}

func NewDateWindow(now time.Time) DateWindow {
	return DateWindow{
		Today:     now.Format("2006-01-02"),
		Yesterday: now.AddDate(0, 0, -1).Format("2006-01-02"),
		loc:       now.Location(),
	}
}

// Contains 判断时间换算到窗口所在时区后是否落在今天或昨天
func (w DateWindow) Contains(t time.Time) bool {
	loc := w.loc
	if loc == nil {
		loc = time.Local
	}
	d := t.In(loc).Format("2006-01-02")
	return d == w.Today || d == w.Yesterday
}

// Allow 解析页面声明的发布时间；无法解析一律拒绝
func (w DateWindow) Allow(raw string) bool {
	loc := w.loc
	if loc == nil {
		loc = time.Local
	}
	t, err := ParsePublishedDate(raw, loc)
	if err != nil {
		return false
	}
	return w.Contains(t)
}

var errBadDate = errors.New("unparsable publish date")

var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.000-0700",
}

// 不带时区的格式按 loc 解释
var publishedLocalLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePublishedDate 解析 datetime / article:published_time 等结构化日期
func ParsePublishedDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errBadDate
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	for _, layout := range publishedLocalLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errBadDate
}

// publishedDate 从页面中取发布时间属性，按常见位置依次查找
func publishedDate(page *goquery.Selection) string {
	if page == nil {
		return ""
	}
	if v := strings.TrimSpace(page.Find(`meta[property="article:published_time"]`).First().AttrOr("content", "")); v != "" {
		return v
	}
	if v := strings.TrimSpace(page.Find("time[datetime]").First().AttrOr("datetime", "")); v != "" {
		return v
	}
	return strings.TrimSpace(page.Find(`meta[itemprop="datePublished"]`).First().AttrOr("content", ""))
}

// Filters 每个来源独立配置的过滤条件
type Filters struct {
	// Title 标题需命中的关键字（列表页阶段判断）
	Title *KeywordFilter
	// Body 正文需命中的关键字（抓取正文后判断）
	Body *KeywordFilter
	// RecentOnly 只保留今天或昨天发布的文章
	RecentOnly bool
	// Now 测试时可替换的时钟
	Now func() time.Time
}

func (f Filters) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

func (f Filters) titleOK(title string) bool {
	return f.Title.Match(title)
}

// pageOK 在正文抽取后判断是否保留，同时返回解析出的发布时间（可能为零值）
func (f Filters) pageOK(page *goquery.Selection, content Content) (time.Time, bool) {
	if f.Body != nil && (content.Status != ContentOK || !f.Body.Match(content.Text)) {
		return time.Time{}, false
	}

	raw := publishedDate(page)
	now := f.now()
	published, err := ParsePublishedDate(raw, now.Location())
	if !f.RecentOnly {
		if err != nil {
			return time.Time{}, true
		}
		return published, true
	}
	if err != nil {
		return time.Time{}, false
	}
	return published, NewDateWindow(now).Contains(published)
}
