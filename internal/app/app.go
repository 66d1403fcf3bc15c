// Package app 按配置组装抓取、抽取、摘要、缓存与归档各组件，供 cmd/api 与 cmd/collect 共用
package app

import (
	"context"
	"log"
	"time"

	"github.com/LJTian/NewsLens/internal/cache"
	"github.com/LJTian/NewsLens/internal/collector"
	"github.com/LJTian/NewsLens/internal/config"
	"github.com/LJTian/NewsLens/internal/processor"
	"github.com/LJTian/NewsLens/internal/storage"
	"github.com/LJTian/NewsLens/internal/summarizer"
)

const feedUserAgent = "NewsLensBot/1.0"

type App struct {
	Cache      *cache.Gateway
	Aggregator *processor.Aggregator
	// Archive 未配置 POSTGRES_DSN 时为 nil
	Archive *storage.Store
}

// New 组装依赖。Redis 不可用不会导致启动失败，缓存层会降级为直通；
// 配置了 Postgres 但连接失败则返回错误。
func New(cfg *config.Config) (*App, error) {
	categories, err := config.LoadCategories(cfg.FeedsFile)
	if err != nil {
		return nil, err
	}

	store, err := cache.NewRedisStore(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	gw := cache.New(store, cfg.CacheTTL)

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := gw.Ping(pingCtx); err != nil {
		log.Printf("warn: redis not reachable (%v), running without cache", err)
	} else {
		log.Printf("redis connected: %s", cfg.RedisURL)
	}

	var scraper collector.Scraper = collector.NewReadabilityScraper()
	if cfg.BrowserScraperURL != "" {
		scraper = collector.FallbackScraper{
			Primary:  scraper,
			Fallback: collector.NewBrowserScraper(cfg.BrowserScraperURL),
		}
		log.Printf("browser scraper fallback enabled: %s", cfg.BrowserScraperURL)
	}

	ingestor := collector.NewIngestor(collector.NewGofeedParser(feedUserAgent), gw)
	extractor := collector.NewExtractor(scraper, gw)

	var sum *summarizer.Summarizer
	if cfg.GroqAPIKey != "" {
		sum = summarizer.New(summarizer.NewGroqClient(cfg.GroqAPIKey, cfg.GroqAPIURL, cfg.GroqModel), gw)
	} else {
		sum = summarizer.New(nil, gw)
	}

	pipeline := processor.NewPipeline(extractor, sum, gw)
	agg := processor.NewAggregator(categories, ingestor, pipeline, gw, cfg.ArticleConcurrency)

	a := &App{Cache: gw, Aggregator: agg}
	if cfg.PostgresDSN != "" {
		db, err := storage.NewStore(cfg.PostgresDSN)
		if err != nil {
			_ = gw.Close()
			return nil, err
		}
		a.Archive = db
		agg.WithArchive(db)
		log.Printf("postgres archive enabled")
	}
	return a, nil
}

func (a *App) Close() {
	if a.Archive != nil {
		if err := a.Archive.Close(); err != nil {
			log.Printf("close postgres error: %v", err)
		}
	}
	if err := a.Cache.Close(); err != nil {
		log.Printf("close redis error: %v", err)
	}
}
