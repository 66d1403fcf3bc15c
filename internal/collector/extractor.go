package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/LJTian/NewsLens/internal/cache"
)

// ErrNoContent 页面抓取成功但没有抽取到内容
var ErrNoContent = errors.New("no content extracted")

// noImageTTL 只需覆盖同一篇文章 Text 之后紧跟的 Image 调用
const noImageTTL = time.Minute

// Extractor 先查缓存再抓取文章正文与头图
type Extractor struct {
	scraper Scraper
	cache   *cache.Gateway

	// 刚抓过但没有头图的页面，进程内短暂记录，不写入缓存
	mu      sync.Mutex
	noImage map[string]time.Time
}

func NewExtractor(scraper Scraper, gw *cache.Gateway) *Extractor {
	return &Extractor{scraper: scraper, cache: gw, noImage: make(map[string]time.Time)}
}

func (x *Extractor) markNoImage(url string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	now := time.Now()
	for u, at := range x.noImage {
		if now.Sub(at) > noImageTTL {
			delete(x.noImage, u)
		}
	}
	x.noImage[url] = now
}

func (x *Extractor) recentlyNoImage(url string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	at, ok := x.noImage[url]
	return ok && time.Since(at) <= noImageTTL
}

// Text 返回文章正文。失败时返回空字符串和错误（已记录日志），调用方可改用 RSS 自带内容
func (x *Extractor) Text(ctx context.Context, url string) (string, error) {
	key := cache.ArticleContentKey(url)

	var text string
	if x.cache.Get(ctx, key, &text) {
		return text, nil
	}

	page, err := x.scraper.Scrape(ctx, url)
	if err != nil {
		log.Printf("extract: content from %s error: %v", url, err)
		return "", fmt.Errorf("extract content: %w", err)
	}

	// 顺带写入头图，后续 Image 调用直接命中缓存
	if img := strings.TrimSpace(page.TopImage); img != "" {
		x.cache.Set(ctx, cache.ArticleImageKey(url), img, 0)
	} else {
		x.markNoImage(url)
	}

	text = strings.TrimSpace(page.Text)
	if text == "" {
		log.Printf("extract: empty content from %s", url)
		return "", ErrNoContent
	}
	x.cache.Set(ctx, key, text, 0)
	return text, nil
}

// Image 返回页面的头图，与 Text 使用同样的缓存-抓取流程
func (x *Extractor) Image(ctx context.Context, url string) (string, error) {
	key := cache.ArticleImageKey(url)

	var img string
	if x.cache.Get(ctx, key, &img) {
		return img, nil
	}
	if x.recentlyNoImage(url) {
		return "", ErrNoContent
	}

	page, err := x.scraper.Scrape(ctx, url)
	if err != nil {
		log.Printf("extract: image from %s error: %v", url, err)
		return "", fmt.Errorf("extract image: %w", err)
	}

	img = strings.TrimSpace(page.TopImage)
	if img == "" {
		return "", ErrNoContent
	}
	x.cache.Set(ctx, key, img, 0)
	return img, nil
}
