package collector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ArticleLink 列表页上发现的文章链接，仅在一次 Fetch 内存在
type ArticleLink struct {
	URL   string
	Title string
	Order int
}

// linkSet 按首次出现顺序对链接去重
type linkSet struct {
	seen  map[string]struct{}
	links []ArticleLink
}

func newLinkSet() *linkSet {
	return &linkSet{seen: make(map[string]struct{})}
}

func (s *linkSet) add(rawURL, title string) bool {
	if rawURL == "" {
		return false
	}
	if _, ok := s.seen[rawURL]; ok {
		return false
	}
	s.seen[rawURL] = struct{}{}
	s.links = append(s.links, ArticleLink{URL: rawURL, Title: title, Order: len(s.links)})
	return true
}

// first 去重之后再截断
func (s *linkSet) first(limit int) []ArticleLink {
	if limit >= 0 && len(s.links) > limit {
		return s.links[:limit]
	}
	return s.links
}

// containsAny 判断链接是否包含任一排除片段
func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if f != "" && strings.Contains(s, f) {
			return true
		}
	}
	return false
}

// anchorLinks 按选择器顺序取第一个非空结果中的链接（标题取锚文本），已按 URL 去重
func anchorLinks(page *goquery.Selection, base string, selectors ...string) []ArticleLink {
	set := newLinkSet()
	for _, sel := range selectors {
		anchors := page.Find(sel)
		if anchors.Length() == 0 {
			continue
		}
		anchors.Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok {
				return
			}
			set.add(resolveURL(base, href), strings.TrimSpace(a.Text()))
		})
		break
	}
	return set.links
}
