package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/LJTian/NewsLens/internal/cache"
	"github.com/LJTian/NewsLens/internal/collector"
	"github.com/LJTian/NewsLens/internal/summarizer"
)

// ArticleResult 是缓存和接口返回的最小单元，可选字段为 null
type ArticleResult struct {
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	Content   *string `json:"content"`
	Summary   *string `json:"summary"`
	Published *string `json:"published"`
	Source    string  `json:"source"`
	ImageURL  *string `json:"image_url"`
}

// ContentExtractor 对应 collector.Extractor
type ContentExtractor interface {
	Text(ctx context.Context, url string) (string, error)
	Image(ctx context.Context, url string) (string, error)
}

// TextSummarizer 对应 summarizer.Summarizer
type TextSummarizer interface {
	Summarize(ctx context.Context, content string) summarizer.Result
}

var errMissingURL = errors.New("article has no url")

// Pipeline 处理单篇文章：正文 → 摘要 → 图片 → 组装，结果按文章 URL 缓存
type Pipeline struct {
	extractor  ContentExtractor
	summarizer TextSummarizer
	cache      *cache.Gateway
}

func NewPipeline(extractor ContentExtractor, s TextSummarizer, gw *cache.Gateway) *Pipeline {
	return &Pipeline{extractor: extractor, summarizer: s, cache: gw}
}

// Process 不会返回错误：任何失败都会降级为带错误说明的结果，且不影响其它文章
func (p *Pipeline) Process(ctx context.Context, raw collector.RawArticle) (res ArticleResult) {
	key := cache.ProcessedArticleKey(raw.URL)
	if raw.URL != "" && p.cache.Get(ctx, key, &res) {
		return res
	}

	defer func() {
		if r := recover(); r != nil {
			res = degraded(raw, fmt.Errorf("panic: %v", r))
		}
	}()

	res, cacheable, err := p.process(ctx, raw)
	if err != nil {
		return degraded(raw, err)
	}
	if cacheable {
		p.cache.Set(ctx, key, res, 0)
	}
	return res
}

// process 第二个返回值为 false 时结果可用但不写缓存（摘要调用失败，下次请求重试）
func (p *Pipeline) process(ctx context.Context, raw collector.RawArticle) (ArticleResult, bool, error) {
	if strings.TrimSpace(raw.URL) == "" {
		return ArticleResult{}, false, errMissingURL
	}
	cacheable := true

	// 1. 抓取正文；失败时回退到 RSS 自带内容
	content, err := p.extractor.Text(ctx, raw.URL)
	if err != nil || content == "" {
		if raw.RSSContent != nil && *raw.RSSContent != "" {
			log.Printf("processor: using rss content for %q", raw.OriginalTitle)
			content = *raw.RSSContent
		}
	}

	// 2. 有内容才生成标题和摘要
	title := raw.OriginalTitle
	var summary *string
	if content != "" {
		r := p.summarizer.Summarize(ctx, content)
		title = r.Title
		summary = &r.Summary
		cacheable = !r.Failed()
	} else {
		log.Printf("processor: no content extracted for %q", raw.OriginalTitle)
	}

	// 3. 图片：优先 RSS 条目中的图片
	image := raw.ImageURL
	if image == nil {
		if img, err := p.extractor.Image(ctx, raw.URL); err == nil && img != "" {
			image = &img
		}
	}

	res := ArticleResult{
		Title:     title,
		URL:       raw.URL,
		Published: raw.Published,
		Source:    raw.Source,
		ImageURL:  image,
	}
	if content != "" {
		res.Content = &content
	}
	res.Summary = summary
	return res, cacheable, nil
}

func degraded(raw collector.RawArticle, err error) ArticleResult {
	log.Printf("processor: article %s failed: %v", raw.URL, err)
	msg := "Error processing article: " + err.Error()
	return ArticleResult{
		Title:     raw.OriginalTitle,
		URL:       raw.URL,
		Summary:   &msg,
		Published: raw.Published,
		Source:    raw.Source,
		ImageURL:  raw.ImageURL,
	}
}
