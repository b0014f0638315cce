package collector

import (
	"context"
	"time"
)

// ContentStatus 区分“抓到但为空”和“抓取失败”，替代原先的占位字符串
type ContentStatus string

const (
	ContentOK     ContentStatus = "ok"
	ContentEmpty  ContentStatus = "empty"
	ContentFailed ContentStatus = "failed"
)

// Content 正文抽取结果；Status 为 failed 时 Err 记录原因
type Content struct {
	Text   string
	Status ContentStatus
	Err    error
}

// Article 单篇新闻，采集后由 enricher 补充 PriceChange / Embedding，之后不再修改
type Article struct {
	Title   string
	URL     string
	Source  string
	Content Content

	PublishedAt time.Time

	PriceChange string
	Embedding   []float32
}

// Fetcher 抽象每一个新闻来源；失败时记录日志并返回空结果，不中断整轮采集
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]Article, error)
}
