package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort string

	GroqAPIKey string
	GroqAPIURL string
	GroqModel  string

	RedisURL string
	// CacheTTL 默认缓存过期时间；RSS 列表单独使用 30 分钟
	CacheTTL time.Duration

	ArticleConcurrency int
	FeedsFile          string

	// 可选：headless 浏览器抽取服务，普通抓取拿不到正文时回退
	BrowserScraperURL string

	// 可选：配置后把处理结果归档到 Postgres
	PostgresDSN string

	// 可选：定时预热各分类的缓存
	WarmCronSpec string
	WarmLimit    int

	BasicAuthUser string
	BasicAuthPass string

	WebRoot string
}

func Load() *Config {
	cfg := &Config{
		AppPort:            getEnv("APP_PORT", "8000"),
		GroqAPIKey:         getEnv("GROQ_API_KEY", ""),
		GroqAPIURL:         getEnv("GROQ_API_URL", "https://api.groq.com/openai/v1/chat/completions"),
		GroqModel:          getEnv("GROQ_MODEL", "llama3-8b-8192"),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CacheTTL:           time.Duration(getEnvInt("CACHE_TTL", 3600)) * time.Second,
		ArticleConcurrency: getEnvInt("ARTICLE_CONCURRENCY", 10),
		FeedsFile:          getEnv("FEEDS_FILE", ""),
		BrowserScraperURL:  getEnv("BROWSER_SCRAPER_URL", ""),
		PostgresDSN:        getEnv("POSTGRES_DSN", ""),
		WarmCronSpec:       getEnv("WARM_CRON_SPEC", ""),
		WarmLimit:          getEnvInt("WARM_LIMIT", 3),
		BasicAuthUser:      getEnv("APP_BASIC_USER", ""),
		BasicAuthPass:      getEnv("APP_BASIC_PASS", ""),
		WebRoot:            getEnv("WEB_ROOT", ""),
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	if cfg.ArticleConcurrency <= 0 {
		cfg.ArticleConcurrency = 10
	}
	if cfg.WarmLimit < 1 || cfg.WarmLimit > 10 {
		cfg.WarmLimit = 3
	}

	if cfg.GroqAPIKey == "" {
		log.Printf("warn: GROQ_API_KEY not found in environment variables, summaries are disabled")
	}

	log.Printf("config loaded: port=%s cache_ttl=%s concurrency=%d warm=%q",
		cfg.AppPort, cfg.CacheTTL, cfg.ArticleConcurrency, cfg.WarmCronSpec)
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt 解析失败时回退到默认值，只打印告警
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("warn: invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}
