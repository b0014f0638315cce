package processor

import (
	"fmt"
	"strings"
	"time"

	"github.com/LJTian/CompanyNewsHub/internal/collector"
)

// 缺失字段写入的占位
const (
	NoTitle            = "no title"
	NoContent          = "no content"
	ContentUnavailable = "content unavailable"
	NoData             = "no data"
)

// Record 是写入文档前的统一结构，一篇文章对应文档里的一个 news_N 字段
type Record struct {
	Title         string
	Content       string
	ContentStatus string
	URL           string
	Source        string
	PriceChange   string
	Embedding     []float32
}

// SimpleProcessor 做基础清洗并补齐占位
type SimpleProcessor struct{}

func NewSimpleProcessor() *SimpleProcessor {
	return &SimpleProcessor{}
}

// Process 保持输入顺序，不做跨来源去重
func (p *SimpleProcessor) Process(items []collector.Article) []Record {
	out := make([]Record, 0, len(items))
	for _, it := range items {
		title := toValidUTF8(strings.TrimSpace(it.Title))
		if title == "" {
			title = NoTitle
		}

		status := it.Content.Status
		if status == "" {
			status = collector.ContentEmpty
		}
		content := toValidUTF8(it.Content.Text)
		switch {
		case status == collector.ContentFailed:
			content = ContentUnavailable
		case content == "":
			content = NoContent
		}

		price := it.PriceChange
		if price == "" {
			price = NoData
		}
		embedding := it.Embedding
		if embedding == nil {
			embedding = []float32{}
		}

		out = append(out, Record{
			Title:         title,
			Content:       content,
			ContentStatus: string(status),
			URL:           it.URL,
			Source:        it.Source,
			PriceChange:   price,
			Embedding:     embedding,
		})
	}
	return out
}

// Fields 单篇文章在文档中的字段
func (r Record) Fields() map[string]any {
	return map[string]any{
		"title":          r.Title,
		"content":        r.Content,
		"content_status": r.ContentStatus,
		"url":            r.URL,
		"source":         r.Source,
		"price_change":   r.PriceChange,
		"embedding":      r.Embedding,
	}
}

// BuildDocument 以 news_1、news_2 … 作为键，顺序即合并顺序
func BuildDocument(records []Record) map[string]any {
	doc := make(map[string]any, len(records))
	for i, r := range records {
		doc[NewsKey(i)] = r.Fields()
	}
	return doc
}

// NewsKey 第 i 篇（从 0 开始）对应的字段名
func NewsKey(i int) string {
	return fmt.Sprintf("news_%d", i+1)
}

// DocumentID 文档 ID 为本地日期 YYYYMMDD
func DocumentID(t time.Time) string {
	return t.Format("20060102")
}

// toValidUTF8 将字符串规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}
