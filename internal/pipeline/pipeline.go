package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/LJTian/CompanyNewsHub/internal/collector"
	"github.com/LJTian/CompanyNewsHub/internal/enricher"
	"github.com/LJTian/CompanyNewsHub/internal/processor"
	"github.com/LJTian/CompanyNewsHub/internal/storage"
)

// Company 一家公司的抓取计划，Fetchers 的顺序即文档中的合并顺序
type Company struct {
	Name       string
	Collection string
	Fetchers   []collector.Fetcher
}

// Report 单个公司一轮运行的结果
type Report struct {
	Company    string
	Collection string
	DocID      string
	Fetched    int
	Written    bool
	Err        error
}

type Pipeline struct {
	Companies []Company
	Enricher  *enricher.Enricher
	Processor *processor.SimpleProcessor
	Store     storage.DocumentStore
	Now       func() time.Time
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Run 依次处理每家公司；某家写入失败不影响后续公司，最终合并返回错误
func (p *Pipeline) Run(ctx context.Context) ([]Report, error) {
	log.Println("start collect job...")

	reports := make([]Report, 0, len(p.Companies))
	var errs []error
	for _, c := range p.Companies {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		r := p.RunCompany(ctx, c)
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
		reports = append(reports, r)
	}

	log.Println("collect job done (all companies)")
	return reports, errors.Join(errs...)
}

// RunCompany 抓取、合并、补充、写入一家公司当天的文档
func (p *Pipeline) RunCompany(ctx context.Context, c Company) Report {
	docID := processor.DocumentID(p.now())
	r := Report{Company: c.Name, Collection: c.Collection, DocID: docID}

	var merged []collector.Article
	for _, f := range c.Fetchers {
		name := f.Name()
		items, err := f.Fetch(ctx)
		if err != nil {
			log.Printf("fetch %s for %s error: %v", name, c.Name, err)
			continue
		}
		log.Printf("fetch %s for %s got %d items", name, c.Name, len(items))
		merged = append(merged, items...)
	}
	r.Fetched = len(merged)

	if len(merged) == 0 {
		log.Printf("%s: no articles, skip writing %s/%s", c.Name, c.Collection, docID)
		return r
	}

	if p.Enricher != nil {
		merged = p.Enricher.Enrich(ctx, c.Name, merged)
	}

	proc := p.Processor
	if proc == nil {
		proc = processor.NewSimpleProcessor()
	}
	doc := processor.BuildDocument(proc.Process(merged))

	if p.Store == nil {
		r.Err = fmt.Errorf("pipeline: %s: no store configured", c.Name)
		return r
	}
	if err := p.Store.SetDocument(ctx, c.Collection, docID, doc); err != nil {
		log.Printf("save %s/%s error: %v", c.Collection, docID, err)
		r.Err = fmt.Errorf("pipeline: %s: %w", c.Name, err)
		return r
	}
	r.Written = true
	log.Printf("%s done, saved %d items to %s/%s", c.Name, len(doc), c.Collection, docID)
	return r
}
