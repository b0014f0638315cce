package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// 来源类型
const (
	SourceTechNews   = "technews"
	SourceYahooNews  = "yahoo_news"
	SourceYahooStock = "yahoo_stock"
	SourceCNBC       = "cnbc"
)

// Company 一家公司对应一个文档集合，来源按声明顺序抓取与合并
type Company struct {
	Name       string         `yaml:"name"`
	Collection string         `yaml:"collection"`
	Ticker     string         `yaml:"ticker"`
	Sources    []SourceConfig `yaml:"sources"`
}

type SourceConfig struct {
	Type string `yaml:"type"`

	// Keyword 搜索词（technews / yahoo_news）
	Keyword string `yaml:"keyword,omitempty"`
	// Keywords 多个搜索词（cnbc）
	Keywords []string `yaml:"keywords,omitempty"`
	// Symbol 行情代码（yahoo_stock）
	Symbol string `yaml:"symbol,omitempty"`
	Limit  int    `yaml:"limit"`

	TitleKeywords []string `yaml:"title_keywords,omitempty"`
	BodyKeywords  []string `yaml:"body_keywords,omitempty"`
	IgnoreCase    bool     `yaml:"ignore_case,omitempty"`
	RecentOnly    bool     `yaml:"recent_only,omitempty"`

	// Delay 每篇文章抓取后的停顿，为 0 时使用全局 CRAWL_DELAY
	Delay time.Duration `yaml:"delay,omitempty"`
}

type companiesFile struct {
	Companies []Company `yaml:"companies"`
}

// DefaultCompanies 内置的三家公司配置
func DefaultCompanies() []Company {
	umcTerms := []string{"聯電", "UMC", "United Microelectronics"}
	return []Company{
		{
			Name:       "TSMC",
			Collection: "NEWS",
			Ticker:     "2330.TW",
			Sources: []SourceConfig{
				{Type: SourceTechNews, Keyword: "台積電", Limit: 10, Delay: time.Second},
				{Type: SourceYahooNews, Keyword: "台積電", Limit: 10},
				{Type: SourceCNBC, Keywords: []string{"TSMC"}, Limit: 10,
					TitleKeywords: []string{"TSMC"}, IgnoreCase: true, Delay: 2 * time.Second},
			},
		},
		{
			Name:       "Foxconn",
			Collection: "NEWS_Foxxcon",
			Ticker:     "2317.TW",
			Sources: []SourceConfig{
				{Type: SourceYahooNews, Keyword: "鴻海", Limit: 15},
			},
		},
		{
			Name:       "UMC",
			Collection: "NEWS_UMC",
			Ticker:     "2303.TW",
			Sources: []SourceConfig{
				{Type: SourceYahooStock, Symbol: "2303.TW", Limit: 10,
					TitleKeywords: umcTerms, BodyKeywords: umcTerms},
				{Type: SourceTechNews, Keyword: "聯電", Limit: 8, Delay: time.Second},
				{Type: SourceCNBC, Keywords: umcTerms, Limit: 6,
					TitleKeywords: umcTerms, IgnoreCase: true, Delay: 2 * time.Second},
			},
		},
	}
}

// LoadCompanies 读取 YAML 公司配置；path 为空时返回内置配置
func LoadCompanies(path string) ([]Company, error) {
	if path == "" {
		return DefaultCompanies(), nil
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read companies file: %w", err)
	}
	return ParseCompanies(bs)
}

func ParseCompanies(bs []byte) ([]Company, error) {
	var f companiesFile
	if err := yaml.Unmarshal(bs, &f); err != nil {
		return nil, fmt.Errorf("config: parse companies: %w", err)
	}
	if len(f.Companies) == 0 {
		return nil, fmt.Errorf("config: companies file defines no company")
	}
	for i, c := range f.Companies {
		if c.Name == "" || c.Collection == "" {
			return nil, fmt.Errorf("config: company #%d needs name and collection", i+1)
		}
		for _, s := range c.Sources {
			switch s.Type {
			case SourceTechNews, SourceYahooNews, SourceYahooStock, SourceCNBC:
			default:
				return nil, fmt.Errorf("config: company %s: unknown source type %q", c.Name, s.Type)
			}
			if s.Limit <= 0 {
				return nil, fmt.Errorf("config: company %s: source %s needs a positive limit, got %d", c.Name, s.Type, s.Limit)
			}
		}
	}
	return f.Companies, nil
}

// Tickers 公司名到行情代码的映射，未配置 ticker 的公司不出现在结果中
func Tickers(companies []Company) map[string]string {
	out := make(map[string]string, len(companies))
	for _, c := range companies {
		if c.Ticker != "" {
			out[c.Name] = c.Ticker
		}
	}
	return out
}
