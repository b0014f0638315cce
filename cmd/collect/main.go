package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/LJTian/CompanyNewsHub/internal/config"
	"github.com/LJTian/CompanyNewsHub/internal/pipeline"
	"github.com/LJTian/CompanyNewsHub/internal/storage"
)

// 一个仅执行一次采集任务的命令行入口：适合手动触发或交给外部定时器调用
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	companies, err := config.LoadCompanies(cfg.CompaniesFile)
	if err != nil {
		log.Fatalf("load companies failed: %v", err)
	}

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	// 确保各个集合存在（与 cmd/api 保持一致）
	for _, c := range companies {
		if _, err := store.EnsureCollection(c.Collection, c.Name, c.Ticker); err != nil {
			log.Fatalf("ensure collection %s failed: %v", c.Collection, err)
		}
	}

	p, err := pipeline.FromConfig(cfg, companies, store, store.Redis)
	if err != nil {
		log.Fatalf("init pipeline failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 只执行一轮采集任务后退出
	reports, err := p.Run(ctx)
	for _, r := range reports {
		log.Printf("%s -> %s/%s fetched=%d written=%v", r.Company, r.Collection, r.DocID, r.Fetched, r.Written)
	}
	if err != nil {
		log.Printf("collect finished with errors: %v", err)
		os.Exit(1)
	}
}
