package collector

import (
	"context"
	"log"
	"strings"

	"github.com/LJTian/NewsLens/internal/cache"
)

// Ingestor 把一个 RSS 源转换成有限数量的 RawArticle，结果按 (feedURL, limit) 缓存
type Ingestor struct {
	parser FeedParser
	cache  *cache.Gateway
}

func NewIngestor(parser FeedParser, gw *cache.Gateway) *Ingestor {
	return &Ingestor{parser: parser, cache: gw}
}

// Fetch 解析失败时只记录日志并返回空列表：单个源坏掉不影响整个分类
func (i *Ingestor) Fetch(ctx context.Context, feedURL string, limit int) []RawArticle {
	key := cache.FeedKey(feedURL, limit)

	var cached []RawArticle
	if i.cache.Get(ctx, key, &cached) {
		return cached
	}

	feed, err := i.parser.Parse(ctx, feedURL)
	if err != nil {
		log.Printf("feed: %v", err)
		return []RawArticle{}
	}

	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = feedURL
	}

	entries := feed.Entries
	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	articles := make([]RawArticle, 0, len(entries))
	for _, e := range entries {
		link := strings.TrimSpace(e.Link)
		if link == "" {
			continue
		}
		title := strings.TrimSpace(e.Title)
		if title == "" {
			title = "No title"
		}

		content := e.Content
		if strings.TrimSpace(content) == "" {
			content = e.Description
		}

		articles = append(articles, RawArticle{
			OriginalTitle: title,
			URL:           link,
			Published:     strPtr(e.Published),
			Source:        source,
			ImageURL:      strPtr(ResolveImage(e)),
			RSSContent:    strPtr(content),
		})
	}

	log.Printf("feed: %s got %d articles (limit=%d)", feedURL, len(articles), limit)
	i.cache.Set(ctx, key, articles, cache.FeedTTL)
	return articles
}
