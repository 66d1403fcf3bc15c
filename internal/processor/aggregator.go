package processor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/LJTian/NewsLens/internal/cache"
	"github.com/LJTian/NewsLens/internal/collector"
	"github.com/LJTian/NewsLens/internal/config"
	"golang.org/x/sync/errgroup"
)

// CategoryResult 一个分类的完整响应，整体缓存
type CategoryResult struct {
	Category string          `json:"category"`
	Articles []ArticleResult `json:"articles"`
}

// CategoryNotFoundError 请求了未配置的分类
type CategoryNotFoundError struct {
	Category  string
	Available []string
}

func (e *CategoryNotFoundError) Error() string {
	return "Category not found. Available categories: " + strings.Join(e.Available, ", ")
}

// FeedIngestor 对应 collector.Ingestor
type FeedIngestor interface {
	Fetch(ctx context.Context, feedURL string, limit int) []collector.RawArticle
}

// ArticleProcessor 对应 Pipeline
type ArticleProcessor interface {
	Process(ctx context.Context, raw collector.RawArticle) ArticleResult
}

// Archiver 可选：把新生成的分类结果持久化
type Archiver interface {
	SaveBatch(category string, articles []ArticleResult) error
}

type Aggregator struct {
	categories  []config.Category
	byName      map[string][]string
	ingestor    FeedIngestor
	pipeline    ArticleProcessor
	cache       *cache.Gateway
	concurrency int
	archive     Archiver
}

func NewAggregator(categories []config.Category, ingestor FeedIngestor, pipeline ArticleProcessor, gw *cache.Gateway, concurrency int) *Aggregator {
	if concurrency <= 0 {
		concurrency = 10
	}
	byName := make(map[string][]string, len(categories))
	for _, c := range categories {
		byName[c.Name] = c.Feeds
	}
	return &Aggregator{
		categories:  categories,
		byName:      byName,
		ingestor:    ingestor,
		pipeline:    pipeline,
		cache:       gw,
		concurrency: concurrency,
	}
}

// WithArchive 设置归档；nil 表示不归档
func (a *Aggregator) WithArchive(archive Archiver) *Aggregator {
	a.archive = archive
	return a
}

// Categories 按配置顺序返回分类名
func (a *Aggregator) Categories() []string {
	names := make([]string, 0, len(a.categories))
	for _, c := range a.categories {
		names = append(names, c.Name)
	}
	return names
}

// Fetch 返回分类下所有源的文章，顺序为"源的顺序 → 源内条目顺序"，与完成先后无关。
// refresh 为 true 时跳过分类级缓存并重新生成。
func (a *Aggregator) Fetch(ctx context.Context, category string, limit int, refresh bool) (*CategoryResult, error) {
	feeds, ok := a.byName[category]
	if !ok {
		return nil, &CategoryNotFoundError{Category: category, Available: a.Categories()}
	}

	key := cache.CategoryKey(category, limit)
	if !refresh {
		var cached CategoryResult
		if a.cache.Get(ctx, key, &cached) {
			return &cached, nil
		}
	}

	raws := a.ingestAll(ctx, feeds, limit)
	log.Printf("aggregator: %s got %d articles from %d feeds", category, len(raws), len(feeds))

	articles := make([]ArticleResult, len(raws))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, raw := range raws {
		g.Go(func() error {
			articles[i] = a.pipeline.Process(gctx, raw)
			return nil
		})
	}
	_ = g.Wait()

	res := &CategoryResult{Category: category, Articles: articles}
	a.cache.Set(ctx, key, res, 0)

	if a.archive != nil {
		if err := a.archive.SaveBatch(category, articles); err != nil {
			log.Printf("aggregator: archive %s error: %v", category, err)
		}
	}
	return res, nil
}

// ingestAll 并发拉取各个源，结果按源的顺序拼接
func (a *Aggregator) ingestAll(ctx context.Context, feeds []string, limit int) []collector.RawArticle {
	perFeed := make([][]collector.RawArticle, len(feeds))

	var wg sync.WaitGroup
	for i, feedURL := range feeds {
		wg.Add(1)
		go func(i int, feedURL string) {
			defer wg.Done()
			perFeed[i] = a.ingestor.Fetch(ctx, feedURL, limit)
		}(i, feedURL)
	}
	wg.Wait()

	var all []collector.RawArticle
	for _, list := range perFeed {
		all = append(all, list...)
	}
	return all
}

// Warm 以 refresh 方式重建所有分类的缓存，供定时任务与命令行使用
func (a *Aggregator) Warm(ctx context.Context, limit int) error {
	var failed []string
	for _, name := range a.Categories() {
		res, err := a.Fetch(ctx, name, limit, true)
		if err != nil {
			log.Printf("aggregator: warm %s error: %v", name, err)
			failed = append(failed, name)
			continue
		}
		log.Printf("aggregator: warmed %s (%d articles)", name, len(res.Articles))
	}
	if len(failed) > 0 {
		return fmt.Errorf("warm failed for %s", strings.Join(failed, ", "))
	}
	return nil
}
