package enricher

import (
	"context"
	"log"

	"github.com/LJTian/CompanyNewsHub/internal/collector"
)

// Enricher 为一批文章补充当日涨跌与正文向量；单篇失败只降级，不中断整批
type Enricher struct {
	Price    *PriceEnricher
	Embedder Embedder
}

// Enrich 返回补充后的新切片，不修改入参
func (e *Enricher) Enrich(ctx context.Context, company string, articles []collector.Article) []collector.Article {
	out := make([]collector.Article, len(articles))
	copy(out, articles)
	if len(out) == 0 {
		return out
	}

	change := noData(nil)
	if e.Price != nil {
		change = e.Price.Change(ctx, company)
	}
	if !change.OK {
		log.Printf("enrich: %s price change unavailable: %v", company, change.Err)
	}

	embedded := 0
	for i := range out {
		out[i].PriceChange = change.Value
		out[i].Embedding = []float32{}

		if e.Embedder == nil || out[i].Content.Status != collector.ContentOK {
			continue
		}
		vec, err := e.Embedder.Embed(ctx, out[i].Content.Text)
		if err != nil {
			log.Printf("enrich: embed %q: %v", out[i].Title, err)
			continue
		}
		out[i].Embedding = vec
		embedded++
	}

	log.Printf("enrich: %s price=%s embedded=%d/%d", company, change.Value, embedded, len(out))
	return out
}
