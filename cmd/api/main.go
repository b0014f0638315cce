package main

import (
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/LJTian/CompanyNewsHub/internal/api"
	"github.com/LJTian/CompanyNewsHub/internal/config"
	"github.com/LJTian/CompanyNewsHub/internal/pipeline"
	"github.com/LJTian/CompanyNewsHub/internal/scheduler"
	"github.com/LJTian/CompanyNewsHub/internal/storage"
	"github.com/gin-gonic/gin"
)

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

	// 确保各个集合存在
	for _, c := range companies {
		if _, err := store.EnsureCollection(c.Collection, c.Name, c.Ticker); err != nil {
			log.Fatalf("ensure collection %s failed: %v", c.Collection, err)
		}
	}

	p, err := pipeline.FromConfig(cfg, companies, store, store.Redis)
	if err != nil {
		log.Fatalf("init pipeline failed: %v", err)
	}

	// 每日定时采集
	s, err := scheduler.New(cfg.CronSpec, p)
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}
	s.Start()
	defer s.Stop()

	// API
	r := gin.Default()
	// 若配置了全局访问密码，则启用 Basic Auth 保护（/health 仍然免认证）
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}

	apiServer := api.NewServer(store, companies)
	apiServer.RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Printf("starting api server at %s ...", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}

// basicAuthMiddleware 为整个站点增加一个简单的 Basic Auth 访问密码。
// 仅当配置了 APP_BASIC_USER / APP_BASIC_PASS 时启用。
// /health 不做认证，便于健康检查。
func basicAuthMiddleware(user, pass string) gin.HandlerFunc {
	const realm = "Restricted"
	uBytes := []byte(user)
	pBytes := []byte(pass)

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		u, p, ok := c.Request.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(u), uBytes) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), pBytes) != 1 {
			c.Header("WWW-Authenticate", `Basic realm="`+realm+`"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
