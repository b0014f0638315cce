package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// ErrMissingEnv 必填环境变量缺失
var ErrMissingEnv = errors.New("config: missing required environment variable")

type Config struct {
	AppPort string

	PostgresDSN string
	RedisAddr   string

	CronSpec string

	// 外部 API
	EmbeddingAPIKey   string
	EmbeddingEndpoint string
	EmbeddingModel    string

	// 抓取
	HTTPTimeout   time.Duration
	CrawlDelay    time.Duration
	CompaniesFile string

	// Basic Auth，为空时不启用
	BasicAuthUser string
	BasicAuthPass string
}

func Load() *Config {
	cfg := &Config{
		AppPort:           getEnv("APP_PORT", "9000"),
		PostgresDSN:       os.Getenv("POSTGRES_DSN"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		CronSpec:          getEnv("CRON_SPEC", "0 8 * * *"),
		EmbeddingAPIKey:   os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingEndpoint: getEnv("EMBEDDING_ENDPOINT", "https://api.openai.com"),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		HTTPTimeout:       getDuration("HTTP_TIMEOUT", 10*time.Second),
		CrawlDelay:        getDuration("CRAWL_DELAY", 0),
		CompaniesFile:     getEnv("COMPANIES_FILE", ""),
		BasicAuthUser:     getEnv("APP_BASIC_USER", ""),
		BasicAuthPass:     getEnv("APP_BASIC_PASS", ""),
	}

	log.Printf("config loaded: port=%s cron=%s timeout=%s", cfg.AppPort, cfg.CronSpec, cfg.HTTPTimeout)
	return cfg
}

// Validate 检查必填项，返回的错误包含全部缺失的变量名
func (c *Config) Validate() error {
	var missing []string
	if c.PostgresDSN == "" {
		missing = append(missing, "POSTGRES_DSN")
	}
	if c.EmbeddingAPIKey == "" {
		missing = append(missing, "EMBEDDING_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getDuration 解析 "10s"、"1m" 等格式，非法值回退默认值
func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Printf("warn: invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}

// Now returns current time, 方便后续做可测试封装
func Now() time.Time {
	return time.Now()
}
