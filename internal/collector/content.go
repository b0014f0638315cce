package collector

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	// MaxContentChars 正文最多保留的字符数（按 rune 计）
	MaxContentChars = 1500
	// minParagraphChars 段落去除首尾空白后需超过该长度才算正文
	minParagraphChars = 40
	// minRuleMatches 规则命中节点数需超过该值才采用，否则尝试下一条
	minRuleMatches = 2

	ellipsis = "…"
)

// RuleChain 按顺序尝试的正文选择器
type RuleChain []string

var (
	techNewsRules = RuleChain{"div.entry-content p, div.entry-content h2"}
	yahooRules    = RuleChain{"article p", "p"}
	cnbcRules     = RuleChain{".ArticleBody-articleBody p", ".InlineArticleBody p", "article p", "p"}
)

// Select 返回第一条命中超过 minRuleMatches 个节点的规则结果；
// 全部未达标时使用最后一条规则的结果
func (rc RuleChain) Select(root *goquery.Selection) *goquery.Selection {
	var sel *goquery.Selection
	for _, rule := range rc {
		sel = root.Find(rule)
		if sel.Length() > minRuleMatches {
			return sel
		}
	}
	return sel
}

// ExtractText 拼接命中节点中足够长的段落，并截断到 MaxContentChars
func ExtractText(root *goquery.Selection, rules RuleChain) string {
	if root == nil {
		return ""
	}
	sel := rules.Select(root)
	if sel == nil {
		return ""
	}

	parts := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		t := strings.TrimSpace(s.Text())
		if utf8.RuneCountInString(t) > minParagraphChars {
			parts = append(parts, t)
		}
	})
	return truncateRunes(strings.Join(parts, "\n"), MaxContentChars)
}

// ExtractContent 在已获取的页面上抽取正文
func ExtractContent(root *goquery.Selection, rules RuleChain) Content {
	text := ExtractText(root, rules)
	if text == "" {
		return Content{Status: ContentEmpty}
	}
	return Content{Text: text, Status: ContentOK}
}

// FetchContent 抓取文章页并抽取正文；失败不返回 error，而是 Status=failed
func FetchContent(ctx context.Context, o HTTPOptions, pageURL string, rules RuleChain) (Content, *goquery.Selection) {
	page, err := fetchPage(ctx, o, pageURL)
	if err != nil {
		return Content{Status: ContentFailed, Err: err}, nil
	}
	return ExtractContent(page, rules), page
}

// truncateRunes 按 rune 截断，超长时追加一个省略号
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	rs := []rune(s)
	return string(rs[:limit]) + ellipsis
}
